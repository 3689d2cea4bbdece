package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// rewriteTargets lists the attributes resolved against the document directory.
var rewriteTargets = map[atom.Atom]string{
	atom.Img:    "src",
	atom.A:      "href",
	atom.Source: "src",
	atom.Video:  "src",
	atom.Audio:  "src",
}

// RewriteRelativePaths resolves relative media and link paths in an HTML
// fragment against sourceDir and turns them into file:// URLs, so the page
// can be shown from any location. Anchors, absolute paths, and URLs with a
// scheme are left alone; a fragment or query on a relative link is kept.
// If sourceDir is empty, returns the fragment unchanged.
func RewriteRelativePaths(fragment, sourceDir string) (string, error) {
	if sourceDir == "" || strings.TrimSpace(fragment) == "" {
		return fragment, nil
	}

	absSourceDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return "", err
	}

	changed := false
	for _, n := range nodes {
		if rewriteTree(n, absSourceDir) {
			changed = true
		}
	}
	if !changed {
		return fragment, nil
	}

	var buf strings.Builder
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// rewriteTree walks n and its descendants, reporting whether anything changed.
func rewriteTree(n *html.Node, sourceDir string) bool {
	changed := false
	if n.Type == html.ElementNode {
		if key, ok := rewriteTargets[n.DataAtom]; ok {
			for i, attr := range n.Attr {
				if attr.Key != key {
					continue
				}
				if resolved, ok := resolveRelative(attr.Val, sourceDir); ok {
					n.Attr[i].Val = resolved
					changed = true
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if rewriteTree(c, sourceDir) {
			changed = true
		}
	}
	return changed
}

// resolveRelative returns the file:// URL for a relative reference.
func resolveRelative(ref, sourceDir string) (string, bool) {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") {
		return "", false
	}

	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return "", false
	}

	// Windows drive paths parse as a scheme; filepath.IsAbs also covers "/abs".
	if filepath.IsAbs(u.Path) || filepath.IsAbs(filepath.FromSlash(u.Path)) {
		return "", false
	}

	abs := filepath.Join(sourceDir, filepath.FromSlash(u.Path))
	out := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(abs),
		RawQuery: u.RawQuery,
		Fragment: u.Fragment,
	}
	if !strings.HasPrefix(out.Path, "/") {
		out.Path = "/" + out.Path
	}
	return out.String(), true
}
