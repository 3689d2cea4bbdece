// Package pipeline implements the Markdown-to-HTML stages used by the viewer.
//
// Stages, in order:
//   - Markdown preprocessing (line normalization, highlight syntax)
//   - Markdown to HTML fragment conversion via Goldmark
//   - Relative path rewriting to file:// URLs
//   - Wrapping the fragment in the page shell with theme and highlight CSS
//   - Snippet injection (web remote toolbar)
//
// PlainText derives the narration text from a fragment. Display and
// narration are handled by the root mdnarrate package.
package pipeline
