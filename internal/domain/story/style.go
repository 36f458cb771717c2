package story

import (
	"fmt"
	"strings"
)

// Style selects the output format of the generate phase.
type Style string

const (
	StyleNarrative  Style = "narrative"
	StyleScreenplay Style = "screenplay"
	StyleSatirical  Style = "satirical"
	StyleEpic       Style = "epic"
)

var styles = []Style{StyleNarrative, StyleScreenplay, StyleSatirical, StyleEpic}

var descriptions = map[Style]string{
	StyleNarrative:  "Classic prose with rich descriptions",
	StyleScreenplay: "Film screenplay format with scenes & dialogue",
	StyleSatirical:  "Comedic with biting satire and humor",
	StyleEpic:       "Grand, mythic style with elevated language",
}

// Styles returns every recognised style in menu order.
func Styles() []Style {
	out := make([]Style, len(styles))
	copy(out, styles)
	return out
}

// Valid reports whether s is one of the recognised styles.
func (s Style) Valid() bool {
	_, ok := descriptions[s]
	return ok
}

// Description returns a one-line summary of the style.
func (s Style) Description() string {
	return descriptions[s]
}

func (s Style) String() string {
	return string(s)
}

// ParseStyle converts a selector into a Style. Matching is exact.
func ParseStyle(s string) (Style, error) {
	style := Style(s)
	if !style.Valid() {
		return "", &UnknownStyleError{Style: s}
	}
	return style, nil
}

// UnknownStyleError is returned for a style outside the recognised set.
type UnknownStyleError struct {
	Style string
}

func (e *UnknownStyleError) Error() string {
	valid := make([]string, len(styles))
	for i, s := range styles {
		valid[i] = string(s)
	}
	return fmt.Sprintf("unknown style %q: choose from %s", e.Style, strings.Join(valid, ", "))
}

// Valid lists the accepted styles.
func (e *UnknownStyleError) Valid() []Style {
	return Styles()
}
