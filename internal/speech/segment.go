package speech

import (
	"strings"
	"unicode"
)

// MaxSegmentRunes caps segment length; online synthesizers reject long input.
const MaxSegmentRunes = 200

// Segment is a slice of the narration text.
type Segment struct {
	Text   string
	Offset int // Rune offset of Text within the full narration text
}

// Split cuts text into segments at sentence boundaries, each at most max
// runes. Long sentences are cut at the last space before the limit, or hard
// cut when there is none. Leading and trailing whitespace is not part of any
// segment; offsets index the original text.
func Split(text string, max int) []Segment {
	if max <= 0 {
		max = MaxSegmentRunes
	}
	runes := []rune(text)
	var segments []Segment

	start := 0
	for start < len(runes) {
		for start < len(runes) && unicode.IsSpace(runes[start]) {
			start++
		}
		if start >= len(runes) {
			break
		}

		end := sentenceEnd(runes, start)
		if end-start > max {
			end = wordCut(runes, start, start+max)
		}

		seg := strings.TrimRightFunc(string(runes[start:end]), unicode.IsSpace)
		if seg != "" {
			segments = append(segments, Segment{Text: seg, Offset: start})
		}
		start = end
	}
	return segments
}

// sentenceEnd returns the index just past the sentence starting at start:
// after terminal punctuation followed by whitespace, after a newline, or
// the end of the text.
func sentenceEnd(runes []rune, start int) int {
	for i := start; i < len(runes); i++ {
		switch runes[i] {
		case '\n':
			return i + 1
		case '.', '!', '?', '…', ';', '。', '！', '？':
			j := i + 1
			for j < len(runes) && isClosing(runes[j]) {
				j++
			}
			if j >= len(runes) || unicode.IsSpace(runes[j]) {
				return j
			}
		}
	}
	return len(runes)
}

func isClosing(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '»', '”', '’', '.', '!', '?':
		return true
	}
	return false
}

// wordCut returns a cut point in (start, limit], preferring just after the
// last whitespace run.
func wordCut(runes []rune, start, limit int) int {
	for i := limit; i > start; i-- {
		if unicode.IsSpace(runes[i-1]) && i-1 > start {
			return i
		}
	}
	return limit
}
