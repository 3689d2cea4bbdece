package mdnarrate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-mdnarrate/internal/assets"
	"github.com/alnah/go-mdnarrate/internal/fileutil"
	"github.com/alnah/go-mdnarrate/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.ShellRenderer        = (*pipeline.Shell)(nil)
	_ pipeline.SnippetInjector      = (*pipeline.SnippetInjection)(nil)
)

// defaultTitle is the page title when the document has no heading.
const defaultTitle = "mdnarrate"

// Document is one loaded Markdown document. It is replaced wholesale on
// every load.
type Document struct {
	Path      string // Empty for built-in documents
	Source    string
	HTML      string
	PlainText string
}

// FileNotFoundError reports a document path that does not exist.
// It matches both ErrFileNotFound and fs.ErrNotExist.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return "file does not exist: " + e.Path
}

// Unwrap returns the sentinels matched by errors.Is.
func (e *FileNotFoundError) Unwrap() []error {
	return []error{ErrFileNotFound, fs.ErrNotExist}
}

// DocumentConverter turns Markdown into styled HTML pages and narration text.
// It is safe for concurrent use once created.
type DocumentConverter struct {
	styleInput        string
	assetPath         string
	assetLoader       assets.AssetLoader
	publicAssetLoader AssetLoader
	preprocessor      pipeline.MarkdownPreprocessor
	htmlConverter     pipeline.HTMLConverter
	shell             pipeline.ShellRenderer
	css               string
}

// DocumentOption configures a DocumentConverter.
type DocumentOption func(*DocumentConverter)

// WithStyle sets the theme: a built-in name ("dark", "light"), a path to a
// CSS file, or raw CSS content.
func WithStyle(style string) DocumentOption {
	return func(c *DocumentConverter) {
		c.styleInput = style
	}
}

// WithAssetPath loads styles and templates from dir, falling back to the
// embedded ones.
func WithAssetPath(dir string) DocumentOption {
	return func(c *DocumentConverter) {
		c.assetPath = dir
	}
}

// WithAssetLoader sets a custom asset loader. It takes precedence over WithAssetPath.
func WithAssetLoader(loader AssetLoader) DocumentOption {
	return func(c *DocumentConverter) {
		c.publicAssetLoader = loader
	}
}

// publicToInternalAdapter wraps public AssetLoader to internal assets.AssetLoader.
type publicToInternalAdapter struct {
	pub AssetLoader
}

func (a *publicToInternalAdapter) LoadStyle(name string) (string, error) {
	return a.pub.LoadStyle(name)
}

func (a *publicToInternalAdapter) LoadTemplate(name string) (string, error) {
	return a.pub.LoadTemplate(name)
}

// NewDocumentConverter creates a DocumentConverter.
// Returns an error if the style or page template cannot be loaded.
func NewDocumentConverter(opts ...DocumentOption) (*DocumentConverter, error) {
	c := &DocumentConverter{
		styleInput:    DefaultStyle,
		assetLoader:   assets.NewEmbeddedLoader(),
		preprocessor:  &pipeline.CommonMarkPreprocessor{},
		htmlConverter: pipeline.NewGoldmarkConverter(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.assetPath != "" {
		resolver, err := assets.NewAssetResolver(c.assetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		c.assetLoader = resolver
	}
	if c.publicAssetLoader != nil {
		c.assetLoader = &publicToInternalAdapter{pub: c.publicAssetLoader}
	}

	theme, err := c.resolveStyle()
	if err != nil {
		return nil, err
	}
	highlight, err := pipeline.HighlightCSS(pipeline.DefaultHighlightStyle)
	if err != nil {
		return nil, err
	}
	c.css = theme + "\n" + highlight

	if c.shell == nil {
		tmpl, err := c.assetLoader.LoadTemplate(assets.TemplatePage)
		if err != nil {
			return nil, fmt.Errorf("loading page template: %w", convertAssetError(err))
		}
		shell, err := pipeline.NewShell(tmpl)
		if err != nil {
			return nil, fmt.Errorf("initializing page shell: %w", err)
		}
		c.shell = shell
	}
	return c, nil
}

// resolveStyle resolves the style input (name, path, or CSS content) to CSS content.
func (c *DocumentConverter) resolveStyle() (string, error) {
	input := c.styleInput
	if input == "" {
		input = DefaultStyle
	}

	if fileutil.IsFilePath(input) {
		content, err := os.ReadFile(input) // #nosec G304 -- user-provided path
		if err != nil {
			return "", fmt.Errorf("loading style file %q: %w", input, err)
		}
		return string(content), nil
	}

	if fileutil.IsCSS(input) {
		return input, nil
	}

	css, err := c.assetLoader.LoadStyle(input)
	if err != nil {
		return "", fmt.Errorf("loading style %q: %w", input, convertAssetError(err))
	}
	return css, nil
}

// LoadTemplate returns a template from the converter's asset loader.
func (c *DocumentConverter) LoadTemplate(name string) (string, error) {
	tmpl, err := c.assetLoader.LoadTemplate(name)
	if err != nil {
		return "", convertAssetError(err)
	}
	return tmpl, nil
}

// ToHTML converts Markdown to a complete styled HTML page.
// Whitespace-only input yields the page shell with an empty body.
func (c *DocumentConverter) ToHTML(ctx context.Context, source string) (string, error) {
	return c.ToHTMLFrom(ctx, source, "")
}

// ToHTMLFrom is ToHTML with relative image and link paths resolved against
// sourceDir.
func (c *DocumentConverter) ToHTMLFrom(ctx context.Context, source, sourceDir string) (string, error) {
	fragment, err := c.fragment(ctx, source)
	if err != nil {
		return "", err
	}
	return c.page(ctx, source, fragment, sourceDir)
}

// ToPlainText converts Markdown to narration text: the HTML fragment with
// tags replaced by spaces, entities decoded, and whitespace collapsed.
func (c *DocumentConverter) ToPlainText(ctx context.Context, source string) (string, error) {
	fragment, err := c.fragment(ctx, source)
	if err != nil {
		return "", err
	}
	return pipeline.PlainText(fragment), nil
}

// Build converts source once into both the page and the narration text.
func (c *DocumentConverter) Build(ctx context.Context, path, source string) (*Document, error) {
	fragment, err := c.fragment(ctx, source)
	if err != nil {
		return nil, err
	}
	sourceDir := ""
	if path != "" {
		sourceDir = filepath.Dir(path)
	}
	page, err := c.page(ctx, source, fragment, sourceDir)
	if err != nil {
		return nil, err
	}
	return &Document{
		Path:      path,
		Source:    source,
		HTML:      page,
		PlainText: pipeline.PlainText(fragment),
	}, nil
}

// LoadFile reads a document as UTF-8 text. A missing path returns a
// *FileNotFoundError.
func (c *DocumentConverter) LoadFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := fileutil.ReadText(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &FileNotFoundError{Path: path}
		}
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return text, nil
}

// ErrorHTML renders an error page showing message.
func (c *DocumentConverter) ErrorHTML(ctx context.Context, message string) (string, error) {
	return c.ToHTML(ctx, "# Error\n\n"+escapeMarkdown(message))
}

// fragment runs preprocessing and goldmark; empty input yields "".
func (c *DocumentConverter) fragment(ctx context.Context, source string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", ctx.Err()
	}
	md := c.preprocessor.PreprocessMarkdown(ctx, source)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fragment, err := c.htmlConverter.ToHTML(ctx, md)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	return fragment, nil
}

func (c *DocumentConverter) page(ctx context.Context, source, fragment, sourceDir string) (string, error) {
	var err error
	if sourceDir != "" {
		fragment, err = pipeline.RewriteRelativePaths(fragment, sourceDir)
		if err != nil {
			return "", fmt.Errorf("rewriting relative paths: %w", err)
		}
	}
	// Highlights become <mark> only after goldmark so raw HTML stays disabled.
	fragment = pipeline.ConvertMarkPlaceholders(fragment)

	return c.shell.Render(ctx, &pipeline.ShellData{
		Title: documentTitle(source),
		CSS:   c.css,
		Body:  fragment,
	})
}

// documentTitle returns the text of the first ATX heading.
func documentTitle(source string) string {
	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "#") {
			continue
		}
		title := strings.TrimSpace(strings.Trim(line, "#"))
		if title != "" {
			return pipeline.StripMarkPlaceholders(strings.ReplaceAll(title, "==", ""))
		}
	}
	return defaultTitle
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`,
	"[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`, "#", `\#`, "=", `\=`,
)

// escapeMarkdown makes arbitrary text render literally.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
