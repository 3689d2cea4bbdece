package mdnarrate

// Notes:
// - Conversion runs the real goldmark pipeline with embedded assets; no
//   browser or engine is involved.

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode"
)

func newTestConverter(t *testing.T, opts ...DocumentOption) *DocumentConverter {
	t.Helper()
	conv, err := NewDocumentConverter(opts...)
	if err != nil {
		t.Fatalf("NewDocumentConverter() error = %v", err)
	}
	return conv
}

// ---------------------------------------------------------------------------
// ToHTML
// ---------------------------------------------------------------------------

func TestToHTML_AlwaysFullPage(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		source string
	}{
		{"empty", ""},
		{"whitespace only", "  \n\t\n"},
		{"heading", "# Hello"},
		{"table", "| a | b |\n|---|---|\n| 1 | 2 |"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			page, err := conv.ToHTML(ctx, tt.source)
			if err != nil {
				t.Fatalf("ToHTML() error = %v", err)
			}
			for _, want := range []string{"<html", "<style", "<body", "</html>"} {
				if !strings.Contains(page, want) {
					t.Errorf("page missing %q", want)
				}
			}
		})
	}
}

func TestToHTML_Deterministic(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	ctx := context.Background()
	source := "# Title\n\nSome *text* with `code` and ==highlight== :smile:\n\n- [x] done\n"

	first, err := conv.ToHTML(ctx, source)
	if err != nil {
		t.Fatal(err)
	}
	second, err := conv.ToHTML(ctx, source)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("ToHTML() output differs between calls")
	}
}

func TestToHTML_Extensions(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"table", "| a |\n|---|\n| 1 |", "<table>"},
		{"task list", "- [x] done", `type="checkbox"`},
		{"highlight", "some ==marked== text", "<mark>marked</mark>"},
		{"strikethrough", "~~gone~~", "<del>gone</del>"},
		{"code block highlight", "```go\nfunc main() {}\n```", "chroma"},
		{"title from heading", "# My Notes\n\ntext", "<title>My Notes</title>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			page, err := conv.ToHTML(ctx, tt.source)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(page, tt.want) {
				t.Errorf("page missing %q", tt.want)
			}
		})
	}
}

func TestToHTML_CancelledContext(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := conv.ToHTML(ctx, "# Title"); !errors.Is(err, context.Canceled) {
		t.Errorf("ToHTML() error = %v, want context.Canceled", err)
	}
}

// ---------------------------------------------------------------------------
// ToPlainText
// ---------------------------------------------------------------------------

func TestToPlainText(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"empty", "", ""},
		{"heading and paragraph", "# Title\n\nHello **world**.", "Title Hello world ."},
		{"entities decoded", "Fish & chips", "Fish & chips"},
		{"highlight markers removed", "a ==b== c", "a b c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := conv.ToPlainText(ctx, tt.source)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("ToPlainText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToPlainText_NoTagsOrRuns(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	tests := []struct {
		name   string
		source string
	}{
		{"welcome", WelcomeMarkdown},
		{"non-breaking spaces", "a&nbsp;&nbsp;b"},
		{"em spaces", "one\u2003\u2003two"},
		{"vertical tabs", "x\v\vy"},
		{"mixed", "# Title\n\n&nbsp; *tight* \u00a0\u2003 text&nbsp;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			text, err := conv.ToPlainText(context.Background(), tt.source)
			if err != nil {
				t.Fatal(err)
			}
			if text == "" {
				t.Fatal("no narration text")
			}
			if strings.ContainsAny(text, "<>") {
				t.Errorf("plain text contains tags: %q", text)
			}
			prevSpace := false
			for i, r := range text {
				space := unicode.IsSpace(r)
				if space && r != ' ' {
					t.Errorf("plain text has %U at byte %d: %q", r, i, text)
				}
				if space && prevSpace {
					t.Errorf("plain text has a whitespace run at byte %d: %q", i, text)
				}
				prevSpace = space
			}
			if text != strings.TrimSpace(text) {
				t.Error("plain text has surrounding whitespace")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Build and LoadFile
// ---------------------------------------------------------------------------

func TestBuild_RewritesRelativePaths(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")

	doc, err := conv.Build(context.Background(), path, "# Doc\n\n![img](pic.png)")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Path != path {
		t.Errorf("Path = %q, want %q", doc.Path, path)
	}
	if !strings.Contains(doc.HTML, "file://") {
		t.Errorf("relative image not rewritten: %s", doc.HTML)
	}
	if doc.PlainText != "Doc" {
		t.Errorf("PlainText = %q, want %q", doc.PlainText, "Doc")
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	ctx := context.Background()
	dir := t.TempDir()

	bom := filepath.Join(dir, "bom.md")
	if err := os.WriteFile(bom, []byte("\xef\xbb\xbf# Título"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := conv.LoadFile(ctx, bom)
	if err != nil {
		t.Fatal(err)
	}
	if got != "# Título" {
		t.Errorf("LoadFile() = %q, want BOM stripped", got)
	}

	_, err = conv.LoadFile(ctx, filepath.Join(dir, "missing.md"))
	if !errors.Is(err, ErrFileNotFound) || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("LoadFile(missing) error = %v, want ErrFileNotFound and fs.ErrNotExist", err)
	}
	var notFound *FileNotFoundError
	if !errors.As(err, &notFound) || !strings.HasSuffix(notFound.Path, "missing.md") {
		t.Errorf("error = %#v, want *FileNotFoundError with path", err)
	}
}

func TestErrorHTML(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	msg := (&FileNotFoundError{Path: "/tmp/a_b*c.md"}).Error()

	page, err := conv.ErrorHTML(context.Background(), msg)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(page, "does not exist") {
		t.Error("error page missing message")
	}
	if !strings.Contains(page, "/tmp/a_b*c.md") {
		t.Error("error page did not render the path literally")
	}
}

// ---------------------------------------------------------------------------
// Styles
// ---------------------------------------------------------------------------

func TestNewDocumentConverter_Styles(t *testing.T) {
	t.Parallel()

	cssFile := filepath.Join(t.TempDir(), "custom.css")
	if err := os.WriteFile(cssFile, []byte("body { color: teal; }"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		style   string
		want    string
		wantErr error
	}{
		{"light theme", "light", "<style", nil},
		{"raw css", "p { color: red; }", "color: red", nil},
		{"css file", cssFile, "color: teal", nil},
		{"unknown theme", "neon", "", ErrStyleNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conv, err := NewDocumentConverter(WithStyle(tt.style))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			page, err := conv.ToHTML(context.Background(), "text")
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(page, tt.want) {
				t.Errorf("page missing %q", tt.want)
			}
		})
	}
}

func TestNewDocumentConverter_InvalidAssetPath(t *testing.T) {
	t.Parallel()

	_, err := NewDocumentConverter(WithAssetPath(filepath.Join(t.TempDir(), "nope")))
	if !errors.Is(err, ErrInvalidAssetPath) {
		t.Errorf("error = %v, want ErrInvalidAssetPath", err)
	}
}

func TestDocumentTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		source string
		want   string
	}{
		{"# Title", "Title"},
		{"text\n## Second ##", "Second"},
		{"no heading", defaultTitle},
		{"#", defaultTitle},
		{"# A ==marked== title", "A marked title"},
	}
	for _, tt := range tests {
		if got := documentTitle(tt.source); got != tt.want {
			t.Errorf("documentTitle(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}
