package storage

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

const (
	maxTitleLen     = 30
	timestampLayout = "20060102_150405"
	fallbackTitle   = "story"
)

// SafeTitle converts a story title into a filename stem. Letters, digits,
// space, '-' and '_' are kept, spaces become underscores and the result is
// cut to 30 characters.
func SafeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}

	s := b.String()
	if runes := []rune(s); len(runes) > maxTitleLen {
		s = string(runes[:maxTitleLen])
	}
	if s == "" {
		return fallbackTitle
	}
	return s
}

// OutputNames returns the markdown and log filenames for a title written at
// t. A seq above 1 adds a "_<seq>" suffix to the stem so results sharing a
// title and second get distinct files.
func OutputNames(title string, t time.Time, seq int) (markdown, log string) {
	stem := SafeTitle(title) + "_" + t.Format(timestampLayout)
	if seq > 1 {
		stem += "_" + strconv.Itoa(seq)
	}
	return stem + ".md", stem + "_log.json"
}
