// Package assets holds the themes and templates a document is displayed with.
//
// Built-ins are embedded: the dark and light themes under styles/, the page
// shell and the web remote control bar under templates/. A user directory
// with the same layout can shadow any of them:
//
//	<dir>/styles/<name>.css
//	<dir>/templates/page.html
//	<dir>/templates/remote.html
//
// AssetResolver searches the user directory first and the embedded files
// last, moving on only when an asset is missing. Names are bare words; the
// filesystem loader also refuses files that resolve outside its directory.
package assets
