package extract

import (
	"strings"
	"unicode/utf8"
)

// boundaryWindow bounds how far back from the hard limit we search for a
// sentence or paragraph boundary, so one boundary-free wall of text does not
// collapse the excerpt.
const boundaryWindow = 500

// TruncateAtBoundary caps text at limit characters, preferring to cut at a
// paragraph break, then a sentence end, then a word boundary inside the final
// window before falling back to a hard cut. The result never splits a UTF-8
// sequence and is deterministic for identical input.
func TruncateAtBoundary(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	cut := limit
	// back off a partial rune at the hard limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	window := cut - boundaryWindow
	if window < 0 {
		window = 0
	}
	head := text[:cut]

	if i := strings.LastIndex(head, "\n\n"); i >= window {
		return strings.TrimRight(head[:i], " \n")
	}
	if i := lastSentenceEnd(head); i >= window {
		return strings.TrimRight(head[:i+1], " \n")
	}
	if i := strings.LastIndexAny(head, " \n"); i >= window {
		return strings.TrimRight(head[:i], " \n")
	}
	return head
}

// lastSentenceEnd returns the index of the last sentence-terminating
// punctuation that is followed by whitespace or ends the string.
func lastSentenceEnd(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case '.', '!', '?':
			if i == len(s)-1 || s[i+1] == ' ' || s[i+1] == '\n' {
				return i
			}
		}
	}
	return -1
}
