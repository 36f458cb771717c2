package phase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dotcommander/retold/internal/domain/story"
	"github.com/dotcommander/retold/internal/prompt"
	"github.com/dotcommander/retold/internal/schema"
)

// Mapper translates an essence into the target setting.
type Mapper struct {
	BasePhase
	client  Completer
	prompts Renderer
}

func NewMapper(client Completer, prompts Renderer, opts ...Option) *Mapper {
	return &Mapper{
		BasePhase: newBasePhase("map", opts...),
		client:    client,
		prompts:   prompts,
	}
}

func (m *Mapper) Execute(ctx context.Context, essence story.Essence, target string) (story.StoryMap, error) {
	if err := ValidateTarget(target); err != nil {
		return story.StoryMap{}, err
	}
	if err := m.checkContext(ctx); err != nil {
		return story.StoryMap{}, err
	}

	essenceJSON, err := json.MarshalIndent(essence, "", "  ")
	if err != nil {
		return story.StoryMap{}, fmt.Errorf("encoding essence: %w", err)
	}

	start := m.logStart(len(essenceJSON))

	p, err := m.prompts.Render(prompt.KeyMap, prompt.MapData{
		EssenceJSON: string(essenceJSON),
		Target:      target,
	})
	if err != nil {
		return story.StoryMap{}, err
	}

	raw, err := m.client.Complete(ctx, p, true)
	if err != nil {
		m.logError(start, err)
		return story.StoryMap{}, err
	}

	storyMap, err := schema.ParseStoryMap(raw)
	if err != nil {
		m.logError(start, err)
		return story.StoryMap{}, err
	}

	m.logComplete(start,
		"new_title", storyMap.NewTitle,
		"characters", len(storyMap.Characters),
		"scenes", len(storyMap.PlotOutline))

	return storyMap, nil
}
