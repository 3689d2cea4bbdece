package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
)

// Sentinel errors for template rendering.
var (
	ErrShellRender   = errors.New("page shell rendering failed")
	ErrSnippetRender = errors.New("snippet template rendering failed")
)

// CSSInjector defines the contract for CSS injection into HTML.
type CSSInjector interface {
	InjectCSS(ctx context.Context, htmlContent, cssContent string) string
}

// CSSInjection injects CSS as a <style> block into HTML content.
type CSSInjection struct{}

// InjectCSS inserts a <style> block into HTML content.
// Tries </head> first, then <body>, then prepends to the HTML.
func (s *CSSInjection) InjectCSS(ctx context.Context, htmlContent, cssContent string) string {
	if cssContent == "" {
		return htmlContent
	}

	if ctx.Err() != nil {
		return htmlContent
	}

	styleBlock := "<style>" + sanitizeCSS(cssContent) + "</style>"
	lowerHTML := strings.ToLower(htmlContent)

	if idx := strings.Index(lowerHTML, "</head>"); idx != -1 {
		return htmlContent[:idx] + styleBlock + htmlContent[idx:]
	}

	if pos := afterBodyTag(htmlContent, lowerHTML); pos != -1 {
		return htmlContent[:pos] + styleBlock + htmlContent[pos:]
	}

	return styleBlock + htmlContent
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// afterBodyTag returns the index just past the opening <body...> tag, or -1.
func afterBodyTag(htmlContent, lowerHTML string) int {
	idx := strings.Index(lowerHTML, "<body")
	if idx == -1 {
		return -1
	}
	closeIdx := strings.Index(htmlContent[idx:], ">")
	if closeIdx == -1 {
		return -1
	}
	return idx + closeIdx + 1
}

// ShellData holds the values substituted into the page shell.
type ShellData struct {
	Title string
	CSS   string
	Body  string // Trusted fragment produced by GoldmarkConverter
}

// ShellRenderer wraps fragments in a complete HTML document.
type ShellRenderer interface {
	Render(ctx context.Context, data *ShellData) (string, error)
}

// Shell renders the page template around a converted fragment.
type Shell struct {
	tmpl *template.Template
}

// NewShell creates a Shell from template content.
// The template sees .Title as text, .CSS as a stylesheet, and .Body as HTML.
func NewShell(tmplContent string) (*Shell, error) {
	tmpl, err := template.New("page").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}
	return &Shell{tmpl: tmpl}, nil
}

// Render executes the page template. A nil data renders an empty shell.
func (s *Shell) Render(ctx context.Context, data *ShellData) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if data == nil {
		data = &ShellData{}
	}

	view := struct {
		Title string
		CSS   template.CSS
		Body  template.HTML
	}{
		Title: data.Title,
		CSS:   template.CSS(sanitizeCSS(data.CSS)), // #nosec G203 -- stylesheet from assets or user config
		Body:  template.HTML(data.Body),            // #nosec G203 -- goldmark output without WithUnsafe
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("%w: %v", ErrShellRender, err)
	}
	return buf.String(), nil
}

// SnippetInjector defines the contract for injecting a rendered snippet.
type SnippetInjector interface {
	InjectSnippet(ctx context.Context, htmlContent string, data any) (string, error)
}

// SnippetInjection renders a template and injects it before </body>.
type SnippetInjection struct {
	tmpl *template.Template
}

// NewSnippetInjection creates a SnippetInjection from template content.
func NewSnippetInjection(name, tmplContent string) (*SnippetInjection, error) {
	tmpl, err := template.New(name).Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("parsing %s template: %w", name, err)
	}
	return &SnippetInjection{tmpl: tmpl}, nil
}

// InjectSnippet renders the template with data and inserts it before </body>.
// If data is nil, returns htmlContent unchanged.
func (s *SnippetInjection) InjectSnippet(ctx context.Context, htmlContent string, data any) (string, error) {
	if data == nil {
		return htmlContent, nil
	}

	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSnippetRender, err)
	}

	snippet := buf.String()
	lowerHTML := strings.ToLower(htmlContent)

	if idx := strings.LastIndex(lowerHTML, "</body>"); idx != -1 {
		return htmlContent[:idx] + snippet + htmlContent[idx:], nil
	}

	return htmlContent + snippet, nil
}
