package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultProvider  = "groq"
	DefaultOutputDir = "output"
	DefaultTimeout   = 2 * time.Minute
)

type Config struct {
	AI     AIConfig    `yaml:"ai"`
	Paths  PathsConfig `yaml:"paths"`
	Limits Limits      `yaml:"limits"`
}

type AIConfig struct {
	Provider  string        `yaml:"provider" validate:"required,oneof=groq openai anthropic gemini mock"`
	APIKey    string        `yaml:"api_key" validate:"required_unless=Provider mock"`
	Model     string        `yaml:"model"`
	BaseURL   string        `yaml:"base_url" validate:"omitempty,url"`
	Timeout   time.Duration `yaml:"timeout" validate:"min=5s,max=1h"`
	MaxTokens int           `yaml:"max_tokens" validate:"min=0,max=200000"`
}

type PathsConfig struct {
	OutputDir  string `yaml:"output_dir" validate:"required"`
	PromptsDir string `yaml:"prompts_dir"`
}

// envOverrides are applied on top of the file after .env is loaded.
type envOverrides struct {
	Provider   string `env:"RETOLD_PROVIDER"`
	Model      string `env:"RETOLD_MODEL"`
	BaseURL    string `env:"RETOLD_BASE_URL"`
	APIKey     string `env:"RETOLD_API_KEY"`
	OutputDir  string `env:"RETOLD_OUTPUT_DIR"`
	PromptsDir string `env:"RETOLD_PROMPTS_DIR"`
}

// providerKeyVars lists the fallback key variables per provider, in lookup order.
var providerKeyVars = map[string][]string{
	"groq":      {"GROQ_API_KEY", "groq_api_key"},
	"openai":    {"OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_API_KEY"},
	"gemini":    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// Default returns a configuration that validates once an API key is set.
func Default() *Config {
	return &Config{
		AI: AIConfig{
			Provider: DefaultProvider,
			Timeout:  DefaultTimeout,
		},
		Paths: PathsConfig{
			OutputDir: DefaultOutputDir,
		},
		Limits: DefaultLimits(),
	}
}

// Override adjusts a loaded config before the provider key is resolved and
// validation runs. The CLI uses it for flags.
type Override func(*Config)

// Load reads the config file, then .env, environment overrides and the given
// overrides, then validates. An empty path resolves the file location from
// the environment; a resolved file that does not exist yields defaults. An
// explicit path must exist.
func Load(path string, overrides ...Override) (*Config, error) {
	_ = godotenv.Load()

	explicit := path != ""
	if !explicit {
		path = ResolvePath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	for _, override := range overrides {
		override(cfg)
	}
	cfg.normalize()
	cfg.resolveAPIKey()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// ResolvePath returns the config file location: RETOLD_CONFIG, then
// $XDG_CONFIG_HOME/retold/config.yaml, then ~/.config/retold/config.yaml.
func ResolvePath() string {
	if path := os.Getenv("RETOLD_CONFIG"); path != "" {
		return expandTilde(path)
	}
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "retold", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "retold", "config.yaml")
}

func (c *Config) applyEnv() error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if overrides.Provider != "" {
		c.AI.Provider = overrides.Provider
	}
	if overrides.Model != "" {
		c.AI.Model = overrides.Model
	}
	if overrides.BaseURL != "" {
		c.AI.BaseURL = overrides.BaseURL
	}
	if overrides.APIKey != "" {
		c.AI.APIKey = overrides.APIKey
	}
	if overrides.OutputDir != "" {
		c.Paths.OutputDir = overrides.OutputDir
	}
	if overrides.PromptsDir != "" {
		c.Paths.PromptsDir = overrides.PromptsDir
	}
	return nil
}

// resolveAPIKey fills an empty or placeholder key from the provider's key
// variable.
func (c *Config) resolveAPIKey() {
	key := strings.TrimSpace(c.AI.APIKey)
	if strings.HasPrefix(key, "${") {
		key = os.Getenv(strings.TrimSuffix(strings.TrimPrefix(key, "${"), "}"))
	}
	if key == "" {
		for _, name := range providerKeyVars[c.AI.Provider] {
			if v := os.Getenv(name); v != "" {
				key = v
				break
			}
		}
	}
	c.AI.APIKey = key
}

func (c *Config) normalize() {
	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	if c.AI.Provider == "" {
		c.AI.Provider = DefaultProvider
	}
	if c.Paths.OutputDir == "" {
		c.Paths.OutputDir = DefaultOutputDir
	}
	c.Paths.OutputDir = expandTilde(c.Paths.OutputDir)
	c.Paths.PromptsDir = expandTilde(c.Paths.PromptsDir)
}

// Validate checks struct constraints and that a configured prompts
// directory exists.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if c.Paths.PromptsDir != "" {
		info, err := os.Stat(c.Paths.PromptsDir)
		if err != nil {
			return fmt.Errorf("prompts directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("prompts directory %s is not a directory", c.Paths.PromptsDir)
		}
	}
	return nil
}

// expandTilde expands a leading ~/ to the user's home directory.
func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
