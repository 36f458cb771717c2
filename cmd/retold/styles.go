package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dotcommander/retold/internal/domain/story"
)

var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "List the available output styles",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for i, s := range story.Styles() {
			fmt.Fprintf(out, "  %d. %-12s - %s\n", i+1, s, s.Description())
		}
	},
}
