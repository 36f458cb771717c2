package phase

import (
	"context"

	"github.com/dotcommander/retold/internal/domain/story"
	"github.com/dotcommander/retold/internal/prompt"
	"github.com/dotcommander/retold/internal/schema"
)

// Extractor pulls the setting-independent essence out of a story.
type Extractor struct {
	BasePhase
	client       Completer
	prompts      Renderer
	maxStorySize int
}

func NewExtractor(client Completer, prompts Renderer, maxStorySize int, opts ...Option) *Extractor {
	return &Extractor{
		BasePhase:    newBasePhase("extract", opts...),
		client:       client,
		prompts:      prompts,
		maxStorySize: maxStorySize,
	}
}

func (e *Extractor) Execute(ctx context.Context, text string) (story.Essence, error) {
	if err := ValidateStory(text, e.maxStorySize); err != nil {
		return story.Essence{}, err
	}
	if err := e.checkContext(ctx); err != nil {
		return story.Essence{}, err
	}

	start := e.logStart(len(text))

	p, err := e.prompts.Render(prompt.KeyExtract, prompt.ExtractData{Story: text})
	if err != nil {
		return story.Essence{}, err
	}

	raw, err := e.client.Complete(ctx, p, true)
	if err != nil {
		e.logError(start, err)
		return story.Essence{}, err
	}

	essence, err := schema.ParseEssence(raw)
	if err != nil {
		e.logError(start, err)
		return story.Essence{}, err
	}

	e.logComplete(start,
		"title", essence.Title,
		"characters", len(essence.Characters),
		"plot_beats", len(essence.PlotBeats))

	return essence, nil
}
