package generate

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"

	defaults "github.com/Paranoid-AF/scribe/default"
)

// Preset is a named command.
type Preset struct {
	Name        string
	Description string
	Spec        PromptSpec
}

type presetFile struct {
	Commands map[string]presetEntry `toml:"commands"`
}

type presetEntry struct {
	Description       string   `toml:"description"`
	System            string   `toml:"system"`
	User              string   `toml:"user"`
	Examples          []string `toml:"examples"`
	Mode              string   `toml:"mode"`
	Behavior          string   `toml:"behavior"`
	ContentTypePrefix bool     `toml:"content_type_prefix"`
	StripMarkdown     bool     `toml:"strip_markdown"`
}

// DefaultPresets returns the built-in commands.
func DefaultPresets() map[string]Preset {
	presets, err := decodePresets(defaults.DefaultCommandsTOML, nil)
	if err != nil {
		panic("scribe: invalid embedded default_commands.toml: " + err.Error())
	}
	return presets
}

// LoadPresets returns the built-in commands overlaid with the ones defined
// in the file at path. A missing file yields the built-ins.
func LoadPresets(path string) (map[string]Preset, error) {
	presets := DefaultPresets()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return presets, nil
		}
		return nil, err
	}
	if _, err := decodePresets(data, presets); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return presets, nil
}

// decodePresets parses data and merges the commands into into (allocated
// when nil). A command redefined in data replaces the earlier definition.
func decodePresets(data []byte, into map[string]Preset) (map[string]Preset, error) {
	var f presetFile
	if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&f); err != nil {
		return nil, err
	}
	if into == nil {
		into = make(map[string]Preset, len(f.Commands))
	}
	for name, e := range f.Commands {
		mode, err := ParseMode(e.Mode)
		if err != nil {
			return nil, fmt.Errorf("command %s: %w", name, err)
		}
		behavior, err := ParseBehavior(e.Behavior)
		if err != nil {
			return nil, fmt.Errorf("command %s: %w", name, err)
		}
		into[name] = Preset{
			Name:        name,
			Description: e.Description,
			Spec: PromptSpec{
				System:            e.System,
				UserInput:         e.User,
				Examples:          e.Examples,
				Mode:              mode,
				Behavior:          behavior,
				ContentTypePrefix: e.ContentTypePrefix,
				StripMarkdown:     e.StripMarkdown,
			},
		}
	}
	return into, nil
}

// SortedPresets returns presets ordered by name.
func SortedPresets(presets map[string]Preset) []Preset {
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
