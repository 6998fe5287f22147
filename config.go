package scribe

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	defaults "github.com/Paranoid-AF/scribe/default"
)

// Config represents the user's scribe configuration.
type Config struct {
	Version int          `toml:"version" json:"version"`
	API     APIConfig    `toml:"api" json:"api"`
	Editor  EditorConfig `toml:"editor" json:"editor"`
	Infill  InfillConfig `toml:"infill" json:"infill"`
}

// APIConfig holds settings for the model backend.
type APIConfig struct {
	Key string `toml:"key" json:"key"`
	// URLTemplate is formatted with {0} = Version and {1} = endpoint path.
	URLTemplate     string  `toml:"url_template" json:"url_template"`
	Version         string  `toml:"version" json:"version"`
	Client          string  `toml:"client" json:"client"` // "http" or "openai"
	LanguageModel   string  `toml:"language_model" json:"language_model"`
	CompletionModel string  `toml:"completion_model" json:"completion_model,omitempty"`
	MaxTokens       int     `toml:"max_tokens" json:"max_tokens"`
	Temperature     float64 `toml:"temperature" json:"temperature,omitempty"`
}

// EditorConfig holds settings for context extraction and edits.
type EditorConfig struct {
	FormatChangedText bool `toml:"format_changed_text" json:"format_changed_text"`
	ContextAbove      int  `toml:"context_above" json:"context_above"`
	ContextBelow      int  `toml:"context_below" json:"context_below"`
}

// InfillConfig holds the fill-in-the-middle sentinel markers.
type InfillConfig struct {
	Begin string `toml:"begin" json:"begin"`
	Hole  string `toml:"hole" json:"hole"`
	End   string `toml:"end" json:"end"`
}

// ConfigDir returns the config directory path.
// Resolution order: $SCRIBE_CONFIG_DIR > $XDG_CONFIG_HOME/scribe > ~/.config/scribe
func ConfigDir() string {
	if dir := os.Getenv("SCRIBE_CONFIG_DIR"); dir != "" {
		return dir
	}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "scribe")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("/tmp", "scribe-config")
	}
	return filepath.Join(home, ".config", "scribe")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// CommandsPath returns the user command presets file path.
func CommandsPath() string {
	return filepath.Join(ConfigDir(), "commands.toml")
}

// DefaultConfig returns the default configuration from the embedded default_config.toml.
func DefaultConfig() *Config {
	var cfg Config
	if _, err := toml.NewDecoder(bytes.NewReader(defaults.DefaultConfigTOML)).Decode(&cfg); err != nil {
		panic("scribe: invalid embedded default_config.toml: " + err.Error())
	}
	return &cfg
}

// LoadConfig loads config from disk or returns defaults if not found.
// Keys missing from the file keep their default values.
func LoadConfig() (*Config, error) {
	return LoadConfigFile(ConfigPath())
}

// LoadConfigFile is LoadConfig for an explicit path.
func LoadConfigFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// ValidateConfig checks configuration for potential issues and returns warnings.
func ValidateConfig(cfg *Config) []string {
	var warnings []string
	if cfg == nil {
		return warnings
	}
	if ResolveAPIKey(cfg) == "" {
		warnings = append(warnings, "api key is not configured; set SCRIBE_API_KEY or api.key in "+ConfigPath())
	}
	if cfg.API.Client != "" && cfg.API.Client != "http" && cfg.API.Client != "openai" {
		warnings = append(warnings, fmt.Sprintf("unknown api.client %q; falling back to http", cfg.API.Client))
	}
	if cfg.Editor.ContextAbove < 0 || cfg.Editor.ContextBelow < 0 {
		warnings = append(warnings, "negative context limits are treated as zero")
	}
	if cfg.Infill.Begin == "" || cfg.Infill.Hole == "" || cfg.Infill.End == "" {
		warnings = append(warnings, "one or more infill markers are empty")
	} else if cfg.Infill.Begin == cfg.Infill.Hole || cfg.Infill.Hole == cfg.Infill.End || cfg.Infill.Begin == cfg.Infill.End {
		warnings = append(warnings, "infill markers should be distinct")
	}
	if cfg.API.MaxTokens <= 0 {
		warnings = append(warnings, "api.max_tokens is not positive; the backend default will apply")
	}
	return warnings
}

// ResolveAPIKey returns the backend API key.
// Priority: $SCRIBE_API_KEY env > config value.
func ResolveAPIKey(cfg *Config) string {
	if key := os.Getenv("SCRIBE_API_KEY"); key != "" {
		return key
	}
	if cfg != nil {
		return cfg.API.Key
	}
	return ""
}

// ResolveURLTemplate returns the backend URL template.
// Priority: $SCRIBE_API_URL env > config value.
func ResolveURLTemplate(cfg *Config) string {
	if url := os.Getenv("SCRIBE_API_URL"); url != "" {
		return url
	}
	if cfg != nil {
		return cfg.API.URLTemplate
	}
	return ""
}

// ResolveLanguageModel returns the logical language model name.
// Priority: $SCRIBE_MODEL env > config value.
func ResolveLanguageModel(cfg *Config) string {
	if model := os.Getenv("SCRIBE_MODEL"); model != "" {
		return model
	}
	if cfg != nil {
		return cfg.API.LanguageModel
	}
	return ""
}

// Resolved returns a copy of cfg with environment overrides applied.
func Resolved(cfg *Config) *Config {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := *cfg
	out.API.Key = ResolveAPIKey(cfg)
	out.API.URLTemplate = ResolveURLTemplate(cfg)
	out.API.LanguageModel = ResolveLanguageModel(cfg)
	return &out
}
