package core

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dotcommander/retold/internal/domain/story"
)

// Job is one (target, style) pair of a batch.
type Job struct {
	Target string
	Style  string
}

// BatchResult holds the outcome of one job. Exactly one of Result and Err is
// meaningful.
type BatchResult struct {
	Job    Job
	RunID  string
	Result story.Result
	Err    error
}

// RunBatch runs every job against the same story with at most
// MaxConcurrentRuns in flight. A failed job does not stop the others.
// Results are returned in job order.
func (o *Orchestrator) RunBatch(ctx context.Context, storyText string, jobs []Job) []BatchResult {
	results := make([]BatchResult, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	limit := o.config.MaxConcurrentRuns
	if limit < 1 {
		limit = 1
	}

	o.logger.Info("Starting batch",
		"job_count", len(jobs),
		"max_concurrent_runs", limit)
	start := time.Now()

	var g errgroup.Group
	g.SetLimit(limit)

	for i, job := range jobs {
		runID := o.newRunID()
		g.Go(func() error {
			res, err := o.Run(ContextWithRunID(ctx, runID), storyText, job.Target, job.Style)
			results[i] = BatchResult{Job: job, RunID: runID, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	o.logger.Info("Batch completed",
		"job_count", len(jobs),
		"failed", failed,
		"duration_ms", time.Since(start).Milliseconds())

	return results
}
