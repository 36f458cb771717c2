package phase

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MinStoryLength  = 50
	MinTargetLength = 3
)

// InputTooShortError is returned before any model call when an input is
// shorter than its minimum after trimming whitespace. Lengths are in runes.
type InputTooShortError struct {
	Field string
	Min   int
	Got   int
}

func (e *InputTooShortError) Error() string {
	return fmt.Sprintf("%s is too short: %d characters, need at least %d", e.Field, e.Got, e.Min)
}

// InputTooLongError is returned when the story exceeds the configured cap.
type InputTooLongError struct {
	Field string
	Max   int
	Got   int
}

func (e *InputTooLongError) Error() string {
	return fmt.Sprintf("%s is too long: %d characters, limit is %d", e.Field, e.Got, e.Max)
}

// ValidateStory checks the story against the minimum length and, when max is
// positive, against max.
func ValidateStory(text string, max int) error {
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	if n < MinStoryLength {
		return &InputTooShortError{Field: "story", Min: MinStoryLength, Got: n}
	}
	if max > 0 && n > max {
		return &InputTooLongError{Field: "story", Max: max, Got: n}
	}
	return nil
}

func ValidateTarget(target string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(target))
	if n < MinTargetLength {
		return &InputTooShortError{Field: "target", Min: MinTargetLength, Got: n}
	}
	return nil
}
