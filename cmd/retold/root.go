package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/dotcommander/retold/internal/agent"
	"github.com/dotcommander/retold/internal/config"
	"github.com/dotcommander/retold/internal/telemetry"
)

var (
	configPath  string
	verbose     bool
	dryRun      bool
	providerArg string
	modelArg    string
	apiKeyArg   string
	outputDir   string

	cfg      *config.Config
	logger   *slog.Logger
	shutdown = func(context.Context) error { return nil }
)

var rootCmd = &cobra.Command{
	Use:           "retold",
	Short:         "Retell a story in a new setting and style with an LLM",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		if cmd.Name() == "styles" {
			return nil
		}

		var err error
		cfg, err = config.Load(configPath, flagOverrides(cmd))
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		shutdown, err = telemetry.Setup(cmd.Context(), "retold")
		if err != nil {
			return fmt.Errorf("setting up telemetry: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file (default $XDG_CONFIG_HOME/retold/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Use canned responses instead of a real provider")
	rootCmd.PersistentFlags().StringVar(&providerArg, "provider", "", "LLM provider: groq, openai, anthropic, gemini or mock")
	rootCmd.PersistentFlags().StringVar(&modelArg, "model", "", "Model name for the selected provider")
	rootCmd.PersistentFlags().StringVar(&apiKeyArg, "api-key", "", "Provider API key (optional if set in the environment)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "Directory for generated stories and logs")

	rootCmd.AddCommand(transformCmd, batchCmd, stylesCmd)
}

// Execute runs the root command with a context cancelled on interrupt.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	err := rootCmd.ExecuteContext(ctx)
	if serr := shutdown(context.Background()); serr != nil && err == nil {
		err = fmt.Errorf("flushing traces: %w", serr)
	}
	return err
}

// flagOverrides applies explicitly set flags on top of file and environment.
func flagOverrides(cmd *cobra.Command) config.Override {
	flags := cmd.Flags()
	return func(c *config.Config) {
		if flags.Changed("provider") {
			c.AI.Provider = providerArg
		}
		if flags.Changed("model") {
			c.AI.Model = modelArg
		}
		if flags.Changed("api-key") {
			c.AI.APIKey = apiKeyArg
		}
		if flags.Changed("output-dir") {
			c.Paths.OutputDir = outputDir
		}
		if dryRun {
			c.AI.Provider = agent.ProviderMock
		}
	}
}
