package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dotcommander/retold/internal/domain/story"
	"github.com/dotcommander/retold/internal/phase"
)

const tracerName = "github.com/dotcommander/retold/internal/core"

// OrchestratorConfig consolidates all configuration options
type OrchestratorConfig struct {
	// MaxStorySize caps the story length in characters. Zero means no cap.
	MaxStorySize int
	// MaxConcurrentRuns bounds RunBatch. Zero or less runs one job at a time.
	MaxConcurrentRuns int
}

func DefaultConfig() OrchestratorConfig {
	return OrchestratorConfig{
		MaxConcurrentRuns: 2,
	}
}

// Orchestrator sequences extract, map and generate for one story at a time.
// It holds no per-run state and may be shared between goroutines.
type Orchestrator struct {
	config    OrchestratorConfig
	extractor *phase.Extractor
	mapper    *phase.Mapper
	generator *phase.Generator
	logger    *slog.Logger
	observer  StateObserver
	tracer    trace.Tracer
	newRunID  func() string
}

type Option func(*Orchestrator)

func WithConfig(config OrchestratorConfig) Option {
	return func(o *Orchestrator) {
		o.config = config
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

func WithObserver(observer StateObserver) Option {
	return func(o *Orchestrator) {
		o.observer = observer
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *Orchestrator) {
		o.tracer = tp.Tracer(tracerName)
	}
}

// WithRunIDFunc replaces the uuid run ID generator.
func WithRunIDFunc(fn func() string) Option {
	return func(o *Orchestrator) {
		o.newRunID = fn
	}
}

// New wires the three phases to a completion adapter and a prompt registry.
func New(client phase.Completer, prompts phase.Renderer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		config:   DefaultConfig(),
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
		newRunID: func() string { return uuid.New().String() },
	}

	for _, opt := range opts {
		opt(o)
	}

	phaseLogger := phase.WithLogger(o.logger)
	o.extractor = phase.NewExtractor(client, prompts, o.config.MaxStorySize, phaseLogger)
	o.mapper = phase.NewMapper(client, prompts, phaseLogger)
	o.generator = phase.NewGenerator(client, prompts, phaseLogger)

	return o
}

// run carries everything owned by a single pipeline execution.
type run struct {
	id       string
	state    State
	logger   *slog.Logger
	observer StateObserver
}

func (r *run) transition(next State) error {
	if !r.state.CanTransition(next) {
		return &TransitionError{From: r.state, To: next}
	}
	prev := r.state
	r.state = next
	r.logger.Debug("pipeline state changed", "from", prev, "to", next)
	if r.observer != nil {
		r.observer(r.id, prev, next)
	}
	return nil
}

// Run transforms storyText into the target setting and style. Inputs are
// checked up front so an invalid story, target or style never reaches the
// model. Any failure is returned as a *PipelineError. A run ID placed on ctx
// with ContextWithRunID is used for logs, spans and errors.
func (o *Orchestrator) Run(ctx context.Context, storyText, target, style string) (story.Result, error) {
	r := &run{
		id:       o.runIDFor(ctx),
		state:    StateIdle,
		observer: o.observer,
	}
	r.logger = o.logger.With("run_id", r.id)

	ctx, span := o.tracer.Start(ctx, "retold.run", trace.WithAttributes(
		attribute.String("retold.run_id", r.id),
		attribute.String("retold.target", target),
		attribute.String("retold.style", style),
	))
	defer span.End()

	start := time.Now()
	r.logger.Info("Starting pipeline", "target", target, "style", style, "story_length", len(storyText))

	result, err := o.execute(ctx, r, storyText, target, style)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Error("Pipeline failed",
			"state", r.state,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		return story.Result{}, err
	}

	span.SetAttributes(attribute.Int("retold.word_count", result.WordCount()))
	r.logger.Info("Pipeline completed",
		"title", result.StoryMap.NewTitle,
		"word_count", result.WordCount(),
		"duration_ms", time.Since(start).Milliseconds())

	return result, nil
}

func (o *Orchestrator) execute(ctx context.Context, r *run, storyText, target, styleName string) (story.Result, error) {
	fail := func(stage Stage, err error) error {
		pe := &PipelineError{Stage: stage, State: r.state, RunID: r.id, Err: err}
		if !r.state.Terminal() && r.state != StateIdle {
			if terr := r.transition(StateFailed); terr != nil {
				pe.Err = terr
			}
		}
		return pe
	}

	if err := phase.ValidateStory(storyText, o.config.MaxStorySize); err != nil {
		return story.Result{}, fail(StageExtract, err)
	}
	if err := phase.ValidateTarget(target); err != nil {
		return story.Result{}, fail(StageMap, err)
	}
	style, err := story.ParseStyle(styleName)
	if err != nil {
		return story.Result{}, fail(StageGenerate, err)
	}

	if err := r.transition(StateExtracting); err != nil {
		return story.Result{}, fail(StageExtract, err)
	}
	var essence story.Essence
	err = o.stage(ctx, StageExtract, func(ctx context.Context) (err error) {
		essence, err = o.extractor.Execute(ctx, storyText)
		return err
	})
	if err != nil {
		return story.Result{}, fail(StageExtract, err)
	}

	if err := r.transition(StateMapping); err != nil {
		return story.Result{}, fail(StageMap, err)
	}
	var storyMap story.StoryMap
	err = o.stage(ctx, StageMap, func(ctx context.Context) (err error) {
		storyMap, err = o.mapper.Execute(ctx, essence, target)
		return err
	})
	if err != nil {
		return story.Result{}, fail(StageMap, err)
	}

	if unmapped := storyMap.UnmappedCharacters(essence); len(unmapped) > 0 {
		r.logger.Warn("mapped characters reference unknown originals", "original_names", unmapped)
	}

	if err := r.transition(StateGenerating); err != nil {
		return story.Result{}, fail(StageGenerate, err)
	}
	var text string
	err = o.stage(ctx, StageGenerate, func(ctx context.Context) (err error) {
		text, err = o.generator.Execute(ctx, storyMap, target, style)
		return err
	})
	if err != nil {
		return story.Result{}, fail(StageGenerate, err)
	}

	if err := r.transition(StateDone); err != nil {
		return story.Result{}, fail(StageGenerate, err)
	}

	return story.Result{
		Essence:   essence,
		StoryMap:  storyMap,
		StoryText: text,
		Style:     style,
	}, nil
}

// stage runs fn inside a child span.
func (o *Orchestrator) stage(ctx context.Context, stage Stage, fn func(context.Context) error) error {
	ctx, span := o.tracer.Start(ctx, "retold."+string(stage))
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
