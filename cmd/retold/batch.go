package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dotcommander/retold/internal/core"
)

var (
	batchSource  string
	batchTargets []string
	batchStyles  []string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Transform one story into every combination of targets and styles",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		text, origin, err := loadSource(batchSource)
		if err != nil {
			return err
		}

		jobs := batchJobs(batchTargets, batchStyles)
		if len(jobs) == 0 {
			return fmt.Errorf("batch needs at least one --target and one --style")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Limits.TotalTimeout)
		defer cancel()

		p, err := newPipeline(ctx, cfg, out)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Using %s: %d jobs, %d at a time, with %s\n",
			origin, len(jobs), cfg.Limits.MaxConcurrentRuns, p.model)

		results := p.orchestrator.RunBatch(ctx, text, jobs)

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "\nTARGET\tSTYLE\tWORDS\tOUTPUT")
		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
				fmt.Fprintf(w, "%s\t%s\t-\tfailed: %v\n", r.Job.Target, r.Job.Style, r.Err)
				continue
			}
			paths, err := p.save(ctx, r.RunID, r.Result)
			if err != nil {
				failed++
				fmt.Fprintf(w, "%s\t%s\t%d\tsave failed: %v\n", r.Job.Target, r.Job.Style, r.Result.WordCount(), err)
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.Job.Target, r.Job.Style, r.Result.WordCount(), outputPath(paths.Markdown))
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d jobs failed", failed, len(jobs))
		}
		return nil
	},
}

// batchJobs returns the cartesian product of targets and styles, targets
// varying slowest.
func batchJobs(targets, styles []string) []core.Job {
	jobs := make([]core.Job, 0, len(targets)*len(styles))
	for _, target := range targets {
		for _, style := range styles {
			jobs = append(jobs, core.Job{Target: target, Style: style})
		}
	}
	return jobs
}

func init() {
	batchCmd.Flags().StringVar(&batchSource, "source", defaultSource, "Story file path, 'cinderella', or raw story text")
	batchCmd.Flags().StringArrayVar(&batchTargets, "target", nil, "Target universe (repeatable)")
	batchCmd.Flags().StringArrayVar(&batchStyles, "style", nil, "Output style (repeatable)")
}
