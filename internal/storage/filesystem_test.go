package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSystemSecurity(t *testing.T) {
	parent := t.TempDir()
	baseDir := filepath.Join(parent, "output")
	if err := os.Mkdir(baseDir, 0755); err != nil {
		t.Fatal(err)
	}

	outsideFile := filepath.Join(parent, "outside.txt")
	if err := os.WriteFile(outsideFile, []byte("secret"), 0644); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSystem(baseDir)
	ctx := context.Background()

	t.Run("Save prevents directory traversal", func(t *testing.T) {
		tests := []struct {
			name string
			path string
			want bool
		}{
			{"normal path", "story.md", true},
			{"subdirectory", "batch/story.md", true},
			{"parent traversal", "../story.md", false},
			{"complex traversal", "batch/../../story.md", false},
			{"absolute path", "/etc/passwd", false},
			{"hidden traversal", "batch/../../../etc/passwd", false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := fs.Save(ctx, tt.path, []byte("test"))
				if tt.want && err != nil {
					t.Errorf("expected success, got error: %v", err)
				}
				if !tt.want && !errors.Is(err, ErrInvalidPath) {
					t.Errorf("expected ErrInvalidPath for path %q, got %v", tt.path, err)
				}
			})
		}
	})

	t.Run("Load prevents directory traversal", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(baseDir, "valid.txt"), []byte("valid"), 0644); err != nil {
			t.Fatal(err)
		}

		tests := []struct {
			name string
			path string
			want bool
		}{
			{"normal path", "valid.txt", true},
			{"parent traversal", "../outside.txt", false},
			{"absolute path", outsideFile, false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := fs.Load(ctx, tt.path)
				if tt.want && err != nil {
					t.Errorf("expected success, got error: %v", err)
				}
				if !tt.want && err == nil {
					t.Errorf("expected error for path %q, got none", tt.path)
				}
			})
		}
	})
}

func TestFileSystemRoundTrip(t *testing.T) {
	fs := NewFileSystem(t.TempDir())
	ctx := context.Background()

	if err := fs.Save(ctx, "nested/dir/story.md", []byte("# Title")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !fs.Exists(ctx, "nested/dir/story.md") {
		t.Fatal("Exists() = false after Save")
	}

	got, err := fs.Load(ctx, "nested/dir/story.md")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(got) != "# Title" {
		t.Errorf("Load() = %q, want %q", got, "# Title")
	}

	if fs.Exists(ctx, "../story.md") {
		t.Error("Exists() = true for a path outside the base directory")
	}
}

func TestFileSystemHonoursCancelledContext(t *testing.T) {
	fs := NewFileSystem(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := fs.Save(ctx, "story.md", []byte("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("Save() error = %v, want context.Canceled", err)
	}
	if fs.Exists(context.Background(), "story.md") {
		t.Error("file written despite cancelled context")
	}
}

func TestSanitizePath(t *testing.T) {
	tempDir := t.TempDir()
	fs := &FileSystem{baseDir: tempDir}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"simple file", "file.txt", false},
		{"nested file", "dir/file.txt", false},
		{"dot file", ".hidden", false},
		{"parent directory", "../file.txt", true},
		{"sneaky parent", "dir/../../../etc/passwd", true},
		{"absolute path", "/etc/passwd", true},
		{"empty path", "", false},
		{"dot path", ".", false},
		{"double dot", "..", true},
		{"contains double dot", "some/..thing/file", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fs.sanitizePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("sanitizePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
				return
			}
			if err == nil && !filepath.HasPrefix(got, tempDir) {
				t.Errorf("sanitizePath(%q) = %q, not under base directory %q", tt.path, got, tempDir)
			}
		})
	}
}
