package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dotcommander/retold/internal/core"
	"github.com/dotcommander/retold/internal/domain/story"
)

func TestLoadSource(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "tale.txt")
	if err := os.WriteFile(file, []byte("A tale from disk."), 0644); err != nil {
		t.Fatal(err)
	}
	raw := strings.Repeat("A fox outwits a crow for a piece of cheese. ", 2)

	tests := []struct {
		name     string
		source   string
		want     string
		wantErr  bool
		wantFrom string
	}{
		{name: "file path", source: file, want: "A tale from disk.", wantFrom: "file"},
		{name: "keyword", source: "cinderella", want: cinderella, wantFrom: "built-in"},
		{name: "keyword any case", source: "Cinderella", want: cinderella, wantFrom: "built-in"},
		{name: "raw text", source: raw, want: raw, wantFrom: "provided"},
		{name: "too short", source: "Snow White", wantErr: true},
		{name: "directory is not a story", source: dir, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, from, err := loadSource(tt.source)
			if tt.wantErr {
				var invalid *InvalidSourceError
				if !errors.As(err, &invalid) {
					t.Fatalf("loadSource(%q) error = %v, want InvalidSourceError", tt.source, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("loadSource(%q) error = %v", tt.source, err)
			}
			if got != tt.want {
				t.Errorf("loadSource(%q) text = %q, want %q", tt.source, got, tt.want)
			}
			if !strings.Contains(from, tt.wantFrom) {
				t.Errorf("loadSource(%q) origin = %q, want it to mention %q", tt.source, from, tt.wantFrom)
			}
		})
	}
}

func TestBuiltinStoryPassesLengthCheck(t *testing.T) {
	if n := len([]rune(strings.TrimSpace(cinderella))); n < 50 {
		t.Errorf("built-in story has %d characters", n)
	}
}

func TestChooseStyle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  story.Style
	}{
		{"default on empty line", "\n", story.StyleNarrative},
		{"explicit choice", "4\n", story.StyleEpic},
		{"retries after invalid input", "9\nabc\n2\n", story.StyleScreenplay},
		{"surrounding spaces", "  3  \n", story.StyleSatirical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := chooseStyle(strings.NewReader(tt.input), &out)
			if err != nil {
				t.Fatalf("chooseStyle() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("chooseStyle() = %q, want %q", got, tt.want)
			}
			if !strings.Contains(out.String(), "Classic prose with rich descriptions") {
				t.Errorf("menu should list style descriptions, got:\n%s", out.String())
			}
		})
	}
}

func TestChooseStyleEndOfInput(t *testing.T) {
	_, err := chooseStyle(strings.NewReader("7\n"), &bytes.Buffer{})
	if !errors.Is(err, errNoStyleChosen) {
		t.Errorf("chooseStyle() error = %v, want errNoStyleChosen", err)
	}
}

func TestResolveStyleSkipsMenuForExplicitStyle(t *testing.T) {
	var out bytes.Buffer
	got, err := resolveStyle("limerick", strings.NewReader(""), &out)
	if err != nil {
		t.Fatal(err)
	}
	if got != "limerick" {
		t.Errorf("resolveStyle() = %q, explicit styles pass through for the orchestrator to check", got)
	}
	if out.Len() != 0 {
		t.Errorf("menu printed for explicit style: %q", out.String())
	}
}

func TestBatchJobs(t *testing.T) {
	jobs := batchJobs([]string{"Space Opera", "Wild West"}, []string{"epic", "screenplay"})
	want := []core.Job{
		{Target: "Space Opera", Style: "epic"},
		{Target: "Space Opera", Style: "screenplay"},
		{Target: "Wild West", Style: "epic"},
		{Target: "Wild West", Style: "screenplay"},
	}
	if len(jobs) != len(want) {
		t.Fatalf("batchJobs() = %v", jobs)
	}
	for i := range want {
		if jobs[i] != want[i] {
			t.Errorf("jobs[%d] = %+v, want %+v", i, jobs[i], want[i])
		}
	}

	if got := batchJobs(nil, []string{"epic"}); len(got) != 0 {
		t.Errorf("batchJobs with no targets = %v", got)
	}
}
