// Package prompt holds the prompt templates for the three pipeline stages.
// Templates are parsed and checked once; a Registry is read-only afterwards
// and safe for concurrent use.
package prompt

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"
	"text/template"

	"github.com/dotcommander/retold/internal/domain/story"
)

//go:embed templates
var embedded embed.FS

const (
	KeyExtract = "extract"
	KeyMap     = "map"
)

// GenerateKey returns the template key for a generation style.
func GenerateKey(s story.Style) string {
	return "generate/" + string(s)
}

// RequiredKeys lists every template a Registry must hold.
func RequiredKeys() []string {
	keys := []string{KeyExtract, KeyMap}
	for _, s := range story.Styles() {
		keys = append(keys, GenerateKey(s))
	}
	return keys
}

// ExtractData feeds the extract template.
type ExtractData struct {
	Story string
}

// MapData feeds the map template.
type MapData struct {
	EssenceJSON string
	Target      string
}

// GenerateData feeds the generate/<style> templates.
type GenerateData struct {
	Title       string
	Target      string
	Characters  string
	PlotOutline string
}

// MissingTemplateError lists required keys absent from a template source.
type MissingTemplateError struct {
	Keys []string
}

func (e *MissingTemplateError) Error() string {
	return fmt.Sprintf("missing prompt templates: %s", strings.Join(e.Keys, ", "))
}

var ErrUnknownTemplate = errors.New("unknown prompt template")

type Registry struct {
	templates map[string]*template.Template
}

// Load reads <key>.tmpl for every required key from fsys.
func Load(fsys fs.FS) (*Registry, error) {
	r := &Registry{templates: make(map[string]*template.Template)}

	var missing []string
	for _, key := range RequiredKeys() {
		content, err := fs.ReadFile(fsys, key+".tmpl")
		if errors.Is(err, fs.ErrNotExist) {
			missing = append(missing, key)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading prompt %s: %w", key, err)
		}

		tmpl, err := template.New(key).Option("missingkey=error").Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("parsing prompt %s: %w", key, err)
		}
		r.templates[key] = tmpl
	}

	if len(missing) > 0 {
		return nil, &MissingTemplateError{Keys: missing}
	}
	return r, nil
}

// LoadDir loads templates from a directory on disk.
func LoadDir(dir string) (*Registry, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("prompts directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("prompts directory %s is not a directory", dir)
	}
	return Load(os.DirFS(dir))
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

// Default returns the registry built from the embedded templates.
func Default() (*Registry, error) {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			defaultErr = err
			return
		}
		defaultRegistry, defaultErr = Load(sub)
	})
	return defaultRegistry, defaultErr
}

// Render executes the template under key with data.
func (r *Registry) Render(key string, data any) (string, error) {
	tmpl, ok := r.templates[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTemplate, key)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing prompt %s: %w", key, err)
	}
	return buf.String(), nil
}

// Keys returns the loaded template keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.templates))
	for k := range r.templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
