package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// Highlight placeholders use Unicode Private Use Area characters.
// They pass through Goldmark unchanged (no WithUnsafe needed) and are
// converted to <mark> tags after HTML generation.
const (
	MarkStartPlaceholder = "\uE000" // U+E000: Private Use Area start
	MarkEndPlaceholder   = "\uE001" // U+E001: Private Use Area end
)

var (
	crlfOrCR           = regexp.MustCompile(`\r\n?`)
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)
	highlightPattern   = regexp.MustCompile(`==([^=\n]+?)==`)
	inlineCodePattern  = regexp.MustCompile("`+[^`\n]*`+")
)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// CommonMarkPreprocessor applies transformations before CommonMark conversion.
type CommonMarkPreprocessor struct{}

// PreprocessMarkdown applies all transformations to prepare Markdown for conversion.
func (p *CommonMarkPreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}

	content = normalizeLineEndings(content)
	content = convertHighlights(content)
	content = compressBlankLines(content)
	return content
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// compressBlankLines limits consecutive blank lines to 2 maximum.
func compressBlankLines(content string) string {
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

// convertHighlights transforms ==text== to placeholder markers outside of
// fenced code blocks and inline code spans.
func convertHighlights(content string) string {
	if !strings.Contains(content, "==") {
		return content
	}

	lines := strings.Split(content, "\n")
	fence := ""
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		if fence != "" {
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}
			continue
		}
		if f := fenceMarker(trimmed); f != "" {
			fence = f
			continue
		}
		lines[i] = highlightLine(line)
	}
	return strings.Join(lines, "\n")
}

// fenceMarker returns the opening fence of a code block line, or "".
func fenceMarker(line string) string {
	for _, ch := range []string{"```", "~~~"} {
		if strings.HasPrefix(line, ch) {
			n := len(line) - len(strings.TrimLeft(line, ch[:1]))
			return strings.Repeat(ch[:1], n)
		}
	}
	return ""
}

// highlightLine replaces highlights in text segments between inline code spans.
func highlightLine(line string) string {
	spans := inlineCodePattern.FindAllStringIndex(line, -1)
	if len(spans) == 0 {
		return highlightPattern.ReplaceAllString(line, MarkStartPlaceholder+"$1"+MarkEndPlaceholder)
	}

	var b strings.Builder
	last := 0
	for _, s := range spans {
		b.WriteString(highlightPattern.ReplaceAllString(line[last:s[0]], MarkStartPlaceholder+"$1"+MarkEndPlaceholder))
		b.WriteString(line[s[0]:s[1]])
		last = s[1]
	}
	b.WriteString(highlightPattern.ReplaceAllString(line[last:], MarkStartPlaceholder+"$1"+MarkEndPlaceholder))
	return b.String()
}

// ConvertMarkPlaceholders converts placeholder markers to <mark> tags.
// Called after Goldmark HTML conversion to finalize highlight markup.
func ConvertMarkPlaceholders(content string) string {
	return strings.ReplaceAll(
		strings.ReplaceAll(content, MarkStartPlaceholder, "<mark>"),
		MarkEndPlaceholder, "</mark>",
	)
}

// StripMarkPlaceholders removes placeholder markers, used for plain text output.
func StripMarkPlaceholders(content string) string {
	return strings.ReplaceAll(
		strings.ReplaceAll(content, MarkStartPlaceholder, ""),
		MarkEndPlaceholder, "",
	)
}
