package story

import "strings"

// Character is a story character described independently of any setting.
type Character struct {
	Name       string `json:"name" validate:"required"`
	Archetype  string `json:"archetype" validate:"required"`
	Role       string `json:"role" validate:"required"`
	Motivation string `json:"motivation" validate:"required"`
	CoreTrait  string `json:"core_trait" validate:"required"`
}

// PlotBeat is a key story moment, described abstractly.
type PlotBeat struct {
	Description       string `json:"description" validate:"required"`
	NarrativeFunction string `json:"narrative_function" validate:"required"`
	EmotionalNote     string `json:"emotional_note" validate:"required"`
}

// Essence is the setting-independent summary produced by the extract phase.
type Essence struct {
	Title      string      `json:"title" validate:"required"`
	Logline    string      `json:"logline" validate:"required"`
	Themes     []string    `json:"themes" validate:"required"`
	Characters []Character `json:"characters" validate:"required,min=1,dive"`
	PlotBeats  []PlotBeat  `json:"plot_beats" validate:"required,min=1,dive"`
}

// HasCharacter reports whether the essence names a character called name.
// Comparison ignores case and surrounding whitespace.
func (e Essence) HasCharacter(name string) bool {
	name = strings.TrimSpace(name)
	for _, c := range e.Characters {
		if strings.EqualFold(strings.TrimSpace(c.Name), name) {
			return true
		}
	}
	return false
}

// NewCharacter is a character adapted to the target setting.
type NewCharacter struct {
	NewName        string `json:"new_name" validate:"required"`
	OriginalName   string `json:"original_name" validate:"required"`
	RoleInNewWorld string `json:"role_in_new_world" validate:"required"`
	Description    string `json:"description" validate:"required"`
}

// StoryMap is the blueprint of the story translated into the target setting.
type StoryMap struct {
	NewTitle    string            `json:"new_title" validate:"required"`
	NewLogline  string            `json:"new_logline" validate:"required"`
	Characters  []NewCharacter    `json:"characters" validate:"required,min=1,dive"`
	Setting     map[string]string `json:"setting" validate:"required"`
	PlotOutline []string          `json:"plot_outline" validate:"required,min=1,dive,required"`
}

// UnmappedCharacters returns the original_name values that do not refer to
// a character of the essence, in map order.
func (m StoryMap) UnmappedCharacters(e Essence) []string {
	var missing []string
	for _, c := range m.Characters {
		if !e.HasCharacter(c.OriginalName) {
			missing = append(missing, c.OriginalName)
		}
	}
	return missing
}

// Result is the aggregate of a successful pipeline run.
type Result struct {
	Essence   Essence  `json:"essence"`
	StoryMap  StoryMap `json:"story_map"`
	StoryText string   `json:"story_text"`
	Style     Style    `json:"style"`
}

// WordCount returns the number of whitespace separated words in the story text.
func (r Result) WordCount() int {
	return len(strings.Fields(r.StoryText))
}
