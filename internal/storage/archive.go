package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dotcommander/retold/internal/domain/story"
)

// TransformationLog is the JSON record written next to each story.
type TransformationLog struct {
	GeneratedAt      time.Time      `json:"generated_at"`
	RunID            string         `json:"run_id"`
	OriginalContract story.Essence  `json:"original_contract"`
	ContextMap       story.StoryMap `json:"context_map"`
	StyleUsed        story.Style    `json:"style_used"`
}

// ArchivePaths are the files written for one result, relative to the
// storage base directory.
type ArchivePaths struct {
	Markdown string
	Log      string
}

// Archive persists pipeline results as a markdown document plus a JSON log.
type Archive struct {
	mu     sync.Mutex
	store  Storage
	now    func() time.Time
	logger *slog.Logger
}

type ArchiveOption func(*Archive)

func WithClock(now func() time.Time) ArchiveOption {
	return func(a *Archive) {
		a.now = now
	}
}

func WithLogger(logger *slog.Logger) ArchiveOption {
	return func(a *Archive) {
		a.logger = logger
	}
}

func NewArchive(store Storage, opts ...ArchiveOption) *Archive {
	a := &Archive{
		store:  store,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("component", "archive")
	return a
}

// maxNameAttempts bounds the suffix search for a free filename pair.
const maxNameAttempts = 1000

// Save writes both documents for result. Existing files are never replaced:
// when the title and timestamp collide with an earlier result, a numeric
// suffix is added.
func (a *Archive) Save(ctx context.Context, runID string, result story.Result) (ArchivePaths, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	mdName, logName, err := a.freeNames(ctx, result.StoryMap.NewTitle, now)
	if err != nil {
		return ArchivePaths{}, err
	}

	if err := a.store.Save(ctx, mdName, RenderMarkdown(result)); err != nil {
		return ArchivePaths{}, fmt.Errorf("saving story: %w", err)
	}

	entry := TransformationLog{
		GeneratedAt:      now,
		RunID:            runID,
		OriginalContract: result.Essence,
		ContextMap:       result.StoryMap,
		StyleUsed:        result.Style,
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return ArchivePaths{}, fmt.Errorf("encoding transformation log: %w", err)
	}
	if err := a.store.Save(ctx, logName, data); err != nil {
		return ArchivePaths{}, fmt.Errorf("saving transformation log: %w", err)
	}

	a.logger.Info("Result archived",
		"run_id", runID,
		"markdown", mdName,
		"log", logName)

	return ArchivePaths{Markdown: mdName, Log: logName}, nil
}

func (a *Archive) freeNames(ctx context.Context, title string, t time.Time) (string, string, error) {
	for seq := 1; seq <= maxNameAttempts; seq++ {
		mdName, logName := OutputNames(title, t, seq)
		if !a.store.Exists(ctx, mdName) && !a.store.Exists(ctx, logName) {
			return mdName, logName, nil
		}
	}
	return "", "", fmt.Errorf("no free filename for %q after %d attempts", SafeTitle(title), maxNameAttempts)
}

// RenderMarkdown formats a result as a titled markdown document.
func RenderMarkdown(result story.Result) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", result.StoryMap.NewTitle)
	fmt.Fprintf(&b, "*Style: %s*\n\n", capitalize(string(result.Style)))
	b.WriteString("---\n\n")
	b.WriteString(result.StoryText)
	return []byte(b.String())
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
