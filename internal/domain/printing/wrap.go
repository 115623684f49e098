package printing

import (
	"strings"
	"unicode/utf8"
)

// Ellipsis marks truncated text
const Ellipsis = "…"

// Truncate shortens s to at most maxChars runes, ending with an ellipsis when cut
func Truncate(s string, maxChars int) string {
	if maxChars < 1 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:maxChars-1]), " ") + Ellipsis
}

// Wrap breaks s into lines of at most maxChars runes on whitespace. Words longer
// than a line are split. When more than maxLines lines would be produced the rest
// is dropped and the last kept line ends with an ellipsis; truncated reports this.
// maxLines <= 0 means no cap. An empty string yields one empty line.
func Wrap(s string, maxChars, maxLines int) (lines []string, truncated bool) {
	if maxChars < 1 {
		maxChars = 1
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}, false
	}

	var current []rune
	flush := func() {
		lines = append(lines, string(current))
		current = current[:0]
	}
	for _, word := range words {
		w := []rune(word)
		for len(w) > 0 {
			space := 0
			if len(current) > 0 {
				space = 1
			}
			if len(current)+space+len(w) <= maxChars {
				if space == 1 {
					current = append(current, ' ')
				}
				current = append(current, w...)
				w = nil
				continue
			}
			if len(current) > 0 {
				flush()
				continue
			}
			current = append(current, w[:maxChars]...)
			w = w[maxChars:]
			flush()
		}
	}
	if len(current) > 0 {
		flush()
	}

	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
		last := []rune(lines[maxLines-1])
		if len(last) >= maxChars {
			last = last[:maxChars-1]
		}
		lines[maxLines-1] = strings.TrimRight(string(last), " ") + Ellipsis
		return lines, true
	}
	return lines, false
}

func hasContent(lines []string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return true
		}
	}
	return false
}
