package config

import (
	_ "embed"
	"errors"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/guideline.yaml
var defaultGuidelineYAML []byte

//go:embed defaults/classic.yaml
var defaultClassicYAML []byte

var (
	errEmptyGravity = errors.New("config: preset has empty gravity curve")
	errBadSoftDrop  = errors.New("config: preset soft_drop_factor must be positive")
)

// DefaultPresetName is the preset used when a requested name is unknown.
const DefaultPresetName = "guideline"

// GuidelinePreset returns the modern-guideline-style ruleset.
func GuidelinePreset() Preset {
	return Preset{
		Name: "guideline",
		GravityMs: []float64{
			800, 720, 630, 550, 470, 380, 300, 220, 130, 100,
			80, 80, 70, 70, 60,
		},
		LockDelayMs:      500,
		DASMs:            167,
		ARRMs:            33,
		LineClearDelayMs: 0,
		SpawnDelayMs:     0,
		SoftDropFactor:   20,
		ScoreTable:       [5]int{0, 100, 300, 500, 800},
		TSpinScoreTable:  [4]int{400, 800, 1200, 1600},
		GarbageTable:     [5]int{0, 0, 1, 2, 4},
	}
}

// ClassicPreset returns a slower, delay-heavy ruleset in the style of
// early console versions.
func ClassicPreset() Preset {
	return Preset{
		Name: "classic",
		GravityMs: []float64{
			1000, 900, 800, 700, 600, 500, 400, 300, 200, 150,
			120, 100, 90, 80, 70,
		},
		LockDelayMs:      400,
		DASMs:            267,
		ARRMs:            100,
		LineClearDelayMs: 300,
		SpawnDelayMs:     167,
		SoftDropFactor:   10,
		ScoreTable:       [5]int{0, 40, 100, 300, 1200},
		TSpinScoreTable:  [4]int{100, 400, 800, 1200},
		GarbageTable:     [5]int{0, 0, 1, 2, 4},
	}
}

// builtinPresets returns the compiled-in presets keyed by name, preferring
// the embedded YAML and falling back to the hardcoded values if it fails
// to parse.
func builtinPresets() map[string]Preset {
	presets := map[string]Preset{
		"guideline": GuidelinePreset(),
		"classic":   ClassicPreset(),
	}
	for name, raw := range map[string][]byte{
		"guideline": defaultGuidelineYAML,
		"classic":   defaultClassicYAML,
	} {
		var p Preset
		if err := yaml.Unmarshal(raw, &p); err == nil && p.Validate() == nil {
			presets[name] = p
		}
	}
	return presets
}

// PresetNames returns the names of all built-in presets.
func PresetNames() []string {
	return []string{"guideline", "classic"}
}
