package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dotcommander/retold/internal/core"
)

const (
	defaultSource = "cinderella"
	defaultTarget = "Indian Education System"
)

var (
	sourceArg string
	targetArg string
	styleArg  string
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Extract, remap and regenerate a story in a new setting",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		text, origin, err := loadSource(sourceArg)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Using %s\n", origin)

		style, err := resolveStyle(styleArg, cmd.InOrStdin(), out)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Limits.TotalTimeout)
		defer cancel()

		p, err := newPipeline(ctx, cfg, out)
		if err != nil {
			return err
		}

		runID := p.orchestrator.NewRunID()
		fmt.Fprintf(out, "\nTransforming into %q as %s with %s\n", targetArg, style, p.model)

		result, err := p.orchestrator.Run(core.ContextWithRunID(ctx, runID), text, targetArg, style)
		if err != nil {
			return fmt.Errorf("pipeline failed: %w", err)
		}

		paths, err := p.save(ctx, runID, result)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "\nSuccess! %q (%d words)\n", result.StoryMap.NewTitle, result.WordCount())
		fmt.Fprintf(out, "  Story saved to: %s\n", outputPath(paths.Markdown))
		fmt.Fprintf(out, "  Log saved to:   %s\n", outputPath(paths.Log))
		return nil
	},
}

func init() {
	transformCmd.Flags().StringVar(&sourceArg, "source", defaultSource, "Story file path, 'cinderella', or raw story text")
	transformCmd.Flags().StringVar(&targetArg, "target", defaultTarget, "Target universe, e.g. 'Space Opera' or 'Cyberpunk'")
	transformCmd.Flags().StringVar(&styleArg, "style", chooseKeyword, "Output style: narrative, screenplay, satirical, epic, or 'choose' for a menu")
}
