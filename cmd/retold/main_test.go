package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dotcommander/retold/internal/agent"
	"github.com/dotcommander/retold/internal/config"
)

func TestTransformDryRunWritesArchive(t *testing.T) {
	for _, name := range []string{
		"RETOLD_CONFIG", "RETOLD_PROVIDER", "RETOLD_API_KEY", "RETOLD_OUTPUT_DIR",
		"RETOLD_PROMPTS_DIR", "RETOLD_OTEL_ENDPOINT",
	} {
		t.Setenv(name, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	outDir := t.TempDir()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs([]string{
		"transform", "--dry-run",
		"--style", "epic",
		"--target", "Space Opera",
		"--output-dir", outDir,
	})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("transform --dry-run error = %v\noutput:\n%s", err, out.String())
	}

	for _, want := range []string{"built-in Cinderella story", "Extracting story essence", "Generating the story", "Success!"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	md, _ := filepath.Glob(filepath.Join(outDir, "*.md"))
	logs, _ := filepath.Glob(filepath.Join(outDir, "*_log.json"))
	if len(md) != 1 || len(logs) != 1 {
		t.Errorf("archive files: markdown %v, logs %v", md, logs)
	}
}

func TestStylesCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"styles"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"narrative", "screenplay", "satirical", "epic"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("styles output missing %q:\n%s", want, out.String())
		}
	}
}

func TestBatchDryRunKeepsEveryJobOutput(t *testing.T) {
	for _, name := range []string{
		"RETOLD_CONFIG", "RETOLD_PROVIDER", "RETOLD_API_KEY", "RETOLD_OUTPUT_DIR",
		"RETOLD_PROMPTS_DIR", "RETOLD_OTEL_ENDPOINT",
	} {
		t.Setenv(name, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	outDir := t.TempDir()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"batch", "--dry-run",
		"--target", "Space Opera",
		"--style", "epic", "--style", "narrative", "--style", "satirical",
		"--output-dir", outDir,
	})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("batch --dry-run error = %v\noutput:\n%s", err, out.String())
	}

	md, _ := filepath.Glob(filepath.Join(outDir, "*.md"))
	logs, _ := filepath.Glob(filepath.Join(outDir, "*_log.json"))
	if len(md) != 3 || len(logs) != 3 {
		t.Errorf("every job should keep its own files: markdown %v, logs %v", md, logs)
	}
}

func TestArchiveSaveSurvivesExpiredRunDeadline(t *testing.T) {
	outDir := t.TempDir()
	cfg = config.Default()
	cfg.AI.Provider = agent.ProviderMock
	cfg.Paths.OutputDir = outDir
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	p, err := newPipeline(context.Background(), cfg, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	result, err := p.orchestrator.Run(context.Background(), cinderella, "Space Opera", "epic")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	if _, err := p.save(ctx, "run-late", result); err != nil {
		t.Fatalf("Save() after the run deadline error = %v", err)
	}
	if md, _ := filepath.Glob(filepath.Join(outDir, "*.md")); len(md) != 1 {
		t.Errorf("markdown files = %v", md)
	}
}
