package printing

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		maxChars  int
		maxLines  int
		want      []string
		truncated bool
	}{
		{"fits", "Copper pipe", 20, 3, []string{"Copper pipe"}, false},
		{"breaks on spaces", "one two three four", 9, 0, []string{"one two", "three", "four"}, false},
		{"collapses whitespace", "  a   b  ", 10, 0, []string{"a b"}, false},
		{"splits long word", "abcdefghij", 4, 0, []string{"abcd", "efgh", "ij"}, false},
		{"empty", "", 10, 3, []string{""}, false},
		{"caps lines", "aa bb cc dd ee", 2, 3, []string{"aa", "bb", "c…"}, true},
		{"caps with room for ellipsis", "alpha beta gamma delta", 11, 1, []string{"alpha beta…"}, true},
		{"multibyte", "größe größe", 5, 0, []string{"größe", "größe"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, truncated := Wrap(tt.input, tt.maxChars, tt.maxLines)
			assert.Equal(t, tt.want, lines)
			assert.Equal(t, tt.truncated, truncated)
		})
	}
}

func TestWrap_LinesNeverExceedWidth(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet consectetur ", 20)
	for width := 1; width < 40; width++ {
		lines, _ := Wrap(text, width, 3)
		assert.LessOrEqual(t, len(lines), 3)
		for _, l := range lines {
			assert.LessOrEqual(t, utf8.RuneCountInString(l), width)
		}
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Service", Truncate("Service", 7))
	assert.Equal(t, "Serv…", Truncate("Service", 5))
	assert.Equal(t, "ab…", Truncate("ab cdef", 4))
	assert.Equal(t, "…", Truncate("Service", 1))
	assert.Equal(t, "", Truncate("Service", 0))
}
