package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadPreset resolves a preset by name.
// Search order: ~/.blocks/presets/<name>.yaml -> ./presets/<name>.yaml ->
// built-in. An unknown name falls back to the guideline preset; this
// leniency keeps engines constructible with whatever name a remote peer
// sends, at the cost of both sides needing to agree on the name for
// reproducibility.
func LoadPreset(name string) Preset {
	if name == "" {
		name = DefaultPresetName
	}

	// Try user preset directory
	if userPath := userPresetPath(name + ".yaml"); userPath != "" {
		if p, err := LoadPresetFile(userPath); err == nil {
			return p
		}
	}

	// Try local presets directory
	if p, err := LoadPresetFile(filepath.Join("presets", name+".yaml")); err == nil {
		return p
	}

	if p, ok := builtinPresets()[name]; ok {
		return p
	}
	return GuidelinePreset()
}

// LoadPresetFile loads and validates a preset from a YAML file.
func LoadPresetFile(path string) (Preset, error) {
	var p Preset

	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("config: failed to read preset %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("config: failed to parse preset %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("config: invalid preset %s: %w", path, err)
	}
	return p, nil
}

// userPresetPath returns the path to a preset in the user config directory.
func userPresetPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".blocks", "presets", filename)
}
