package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/dotcommander/retold/internal/agent"
	"github.com/dotcommander/retold/internal/config"
	"github.com/dotcommander/retold/internal/core"
	"github.com/dotcommander/retold/internal/domain/story"
	"github.com/dotcommander/retold/internal/prompt"
	"github.com/dotcommander/retold/internal/storage"
)

// pipeline bundles what a command needs to run and archive transformations.
type pipeline struct {
	orchestrator *core.Orchestrator
	archive      *storage.Archive
	model        string
}

func newPipeline(ctx context.Context, cfg *config.Config, progress io.Writer) (*pipeline, error) {
	provider, err := agent.NewProvider(ctx, agent.ProviderConfig{
		Name:      cfg.AI.Provider,
		APIKey:    cfg.AI.APIKey,
		BaseURL:   cfg.AI.BaseURL,
		Model:     cfg.AI.Model,
		Timeout:   cfg.AI.Timeout,
		RateLimit: cfg.Limits.RateLimit.RequestsPerMinute,
		Burst:     cfg.Limits.RateLimit.BurstSize,
		MaxTokens: cfg.AI.MaxTokens,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating provider: %w", err)
	}

	client := agent.New(provider,
		agent.WithRetryPolicy(agent.RetryPolicy{
			MaxAttempts: cfg.Limits.MaxRetries,
			Delay:       agent.FixedDelay(cfg.Limits.RetryDelay),
			Sleep:       agent.SleepContext,
		}),
		agent.WithAgentLogger(logger))

	prompts, err := loadPrompts(cfg.Paths.PromptsDir)
	if err != nil {
		return nil, err
	}

	orchestrator := core.New(client, prompts,
		core.WithConfig(core.OrchestratorConfig{
			MaxStorySize:      cfg.Limits.MaxStorySize,
			MaxConcurrentRuns: cfg.Limits.MaxConcurrentRuns,
		}),
		core.WithLogger(logger),
		core.WithObserver(progressObserver(progress)))

	archive := storage.NewArchive(storage.NewFileSystem(cfg.Paths.OutputDir),
		storage.WithLogger(logger))

	model := cfg.AI.Provider
	if m, ok := provider.(interface{ Model() string }); ok {
		model = fmt.Sprintf("%s/%s", cfg.AI.Provider, m.Model())
	}

	return &pipeline{orchestrator: orchestrator, archive: archive, model: model}, nil
}

// save archives a finished result. The run deadline does not apply: a run
// that completes just before total_timeout still keeps its output.
func (p *pipeline) save(ctx context.Context, runID string, result story.Result) (storage.ArchivePaths, error) {
	return p.archive.Save(context.WithoutCancel(ctx), runID, result)
}

// outputPath joins an archive-relative name with the configured output directory.
func outputPath(name string) string {
	return filepath.Join(cfg.Paths.OutputDir, name)
}

func loadPrompts(dir string) (*prompt.Registry, error) {
	if dir == "" {
		return prompt.Default()
	}
	registry, err := prompt.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("loading prompts from %s: %w", dir, err)
	}
	return registry, nil
}

var stageLabels = map[core.State]string{
	core.StateExtracting: "Extracting story essence",
	core.StateMapping:    "Mapping to the new world",
	core.StateGenerating: "Generating the story",
}

// progressObserver prints one line per working stage entered. Batch runs
// share the writer, so output is serialised.
func progressObserver(w io.Writer) core.StateObserver {
	var mu sync.Mutex
	return func(runID string, from, to core.State) {
		label, ok := stageLabels[to]
		if !ok {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, "  [%s] %s...\n", shortID(runID), label)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
