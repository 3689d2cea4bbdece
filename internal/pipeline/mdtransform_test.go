package pipeline

import (
	"context"
	"strings"
	"testing"
)

func TestCommonMarkPreprocessor_PreprocessMarkdown(t *testing.T) {
	t.Parallel()

	p := &CommonMarkPreprocessor{}
	mark := func(s string) string { return MarkStartPlaceholder + s + MarkEndPlaceholder }

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"CRLF normalized", "a\r\nb\rc", "a\nb\nc"},
		{"blank lines compressed", "a\n\n\n\nb", "a\n\nb"},
		{"highlight converted", "this is ==key== text", "this is " + mark("key") + " text"},
		{"two highlights on one line", "==a== and ==b==", mark("a") + " and " + mark("b")},
		{"comparison in inline code kept", "use `a == b && c == d` here", "use `a == b && c == d` here"},
		{"highlight next to inline code", "==hot== `x == y`", mark("hot") + " `x == y`"},
		{
			name:  "fenced code kept",
			input: "```go\nif a == b || c == d {}\n```\n==after==",
			want:  "```go\nif a == b || c == d {}\n```\n" + mark("after"),
		},
		{
			name:  "tilde fence kept",
			input: "~~~\nx ==y== z\n~~~",
			want:  "~~~\nx ==y== z\n~~~",
		},
		{"no markers untouched", "plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := p.PreprocessMarkdown(context.Background(), tt.input); got != tt.want {
				t.Errorf("PreprocessMarkdown(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCommonMarkPreprocessor_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := "a\r\nb"
	if got := (&CommonMarkPreprocessor{}).PreprocessMarkdown(ctx, in); got != in {
		t.Errorf("PreprocessMarkdown() = %q, want input unchanged", got)
	}
}

func TestConvertAndStripMarkPlaceholders(t *testing.T) {
	t.Parallel()

	in := "x " + MarkStartPlaceholder + "y" + MarkEndPlaceholder + " z"

	if got := ConvertMarkPlaceholders(in); got != "x <mark>y</mark> z" {
		t.Errorf("ConvertMarkPlaceholders() = %q", got)
	}
	if got := StripMarkPlaceholders(in); got != "x y z" {
		t.Errorf("StripMarkPlaceholders() = %q", got)
	}
	if strings.ContainsAny(StripMarkPlaceholders(in), MarkStartPlaceholder+MarkEndPlaceholder) {
		t.Error("StripMarkPlaceholders() left placeholders behind")
	}
}
