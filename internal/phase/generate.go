package phase

import (
	"context"
	"strings"

	"github.com/dotcommander/retold/internal/domain/story"
	"github.com/dotcommander/retold/internal/prompt"
)

// Generator writes the final text for a story map in a chosen style.
type Generator struct {
	BasePhase
	client  Completer
	prompts Renderer
}

func NewGenerator(client Completer, prompts Renderer, opts ...Option) *Generator {
	return &Generator{
		BasePhase: newBasePhase("generate", opts...),
		client:    client,
		prompts:   prompts,
	}
}

// Execute returns the model's prose verbatim.
func (g *Generator) Execute(ctx context.Context, storyMap story.StoryMap, target string, style story.Style) (string, error) {
	if !style.Valid() {
		return "", &story.UnknownStyleError{Style: string(style)}
	}
	if err := g.checkContext(ctx); err != nil {
		return "", err
	}

	data := prompt.GenerateData{
		Title:       storyMap.NewTitle,
		Target:      target,
		Characters:  CharacterList(storyMap.Characters),
		PlotOutline: strings.Join(storyMap.PlotOutline, "\n"),
	}

	p, err := g.prompts.Render(prompt.GenerateKey(style), data)
	if err != nil {
		return "", err
	}

	start := g.logStart(len(p))

	text, err := g.client.Complete(ctx, p, false)
	if err != nil {
		g.logError(start, err)
		return "", err
	}

	g.logComplete(start,
		"style", style,
		"word_count", len(strings.Fields(text)))

	return text, nil
}

// CharacterList formats characters as "- name: description" lines in order.
func CharacterList(chars []story.NewCharacter) string {
	lines := make([]string, len(chars))
	for i, c := range chars {
		lines[i] = "- " + c.NewName + ": " + c.Description
	}
	return strings.Join(lines, "\n")
}
