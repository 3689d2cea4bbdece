package pipeline

// Notes:
// - Goldmark output is asserted with substring checks; exact markup is owned
//   by goldmark and its extensions.

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGoldmarkConverter_ToHTML(t *testing.T) {
	t.Parallel()

	conv := NewGoldmarkConverter()

	tests := []struct {
		name    string
		input   string
		want    []string
		exclude []string
	}{
		{
			name:  "heading gets an id",
			input: "# Hello World",
			want:  []string{`<h1 id="hello-world">Hello World</h1>`},
		},
		{
			name:  "table",
			input: "| a | b |\n|---|---|\n| 1 | 2 |\n",
			want:  []string{"<table>", "<td>1</td>"},
		},
		{
			name:  "strikethrough",
			input: "~~gone~~",
			want:  []string{"<del>gone</del>"},
		},
		{
			name:  "task list",
			input: "- [x] done\n- [ ] todo\n",
			want:  []string{`type="checkbox"`, "checked"},
		},
		{
			name:  "autolink",
			input: "see https://example.com now",
			want:  []string{`<a href="https://example.com">`},
		},
		{
			name:  "footnote",
			input: "text[^1]\n\n[^1]: note\n",
			want:  []string{"footnote"},
		},
		{
			name:  "definition list",
			input: "Term\n: Definition\n",
			want:  []string{"<dl>", "<dt>Term</dt>", "<dd>Definition</dd>"},
		},
		{
			name:  "emoji shortcode",
			input: "ok :smile:",
			want:  []string{"&#x1f604;"},
		},
		{
			name:    "code block uses chroma classes",
			input:   "```go\nfunc main() {}\n```\n",
			want:    []string{`class="chroma"`},
			exclude: []string{"style=\"color"},
		},
		{
			name:  "soft line breaks are not hard breaks",
			input: "one\ntwo",
			want:  []string{"one\ntwo"},
		},
		{
			name:    "raw HTML is omitted",
			input:   "<script>alert(1)</script>\n\nafter",
			want:    []string{"after"},
			exclude: []string{"<script>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := conv.ToHTML(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("ToHTML() error = %v", err)
			}
			if strings.Contains(strings.ToLower(got), "<html") {
				t.Errorf("ToHTML() should return a fragment, got %q", got)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("ToHTML() = %q, should contain %q", got, w)
				}
			}
			for _, ex := range tt.exclude {
				if strings.Contains(got, ex) {
					t.Errorf("ToHTML() = %q, should not contain %q", got, ex)
				}
			}
		})
	}
}

func TestGoldmarkConverter_ToHTML_Deterministic(t *testing.T) {
	t.Parallel()

	conv := NewGoldmarkConverter()
	input := "# Title\n\nSome *text* with `code` and a [link](x.md).\n"

	first, err := conv.ToHTML(context.Background(), input)
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := conv.ToHTML(context.Background(), input)
		if err != nil {
			t.Fatalf("ToHTML() error = %v", err)
		}
		if again != first {
			t.Fatalf("ToHTML() not deterministic:\n%q\n%q", first, again)
		}
	}
}

func TestGoldmarkConverter_ToHTML_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGoldmarkConverter().ToHTML(ctx, "# x")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ToHTML() error = %v, want context.Canceled", err)
	}
}

func TestHighlightCSS(t *testing.T) {
	t.Parallel()

	css, err := HighlightCSS(DefaultHighlightStyle)
	if err != nil {
		t.Fatalf("HighlightCSS() error = %v", err)
	}
	if !strings.Contains(css, ".chroma") {
		t.Errorf("HighlightCSS() should contain .chroma rules, got %d bytes", len(css))
	}

	// Unknown style names fall back instead of failing.
	if _, err := HighlightCSS("no-such-style"); err != nil {
		t.Errorf("HighlightCSS(unknown) error = %v, want nil", err)
	}
}
