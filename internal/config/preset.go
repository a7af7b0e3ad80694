// Package config provides YAML-based ruleset presets for the blocks
// engine. A preset is immutable configuration: timing thresholds, the
// gravity curve and the score/garbage lookup tables. It is loaded once at
// engine construction and never mutated.
package config

// Preset names the ruleset variant and carries every tunable the engine
// reads. All durations are in milliseconds.
type Preset struct {
	Name string `yaml:"name"`

	// GravityMs is indexed by level-1 and clamped at the last entry.
	GravityMs []float64 `yaml:"gravity_ms"`

	LockDelayMs      float64 `yaml:"lock_delay_ms"`
	DASMs            float64 `yaml:"das_ms"`
	ARRMs            float64 `yaml:"arr_ms"`
	LineClearDelayMs float64 `yaml:"line_clear_delay_ms"`
	SpawnDelayMs     float64 `yaml:"spawn_delay_ms"`

	// SoftDropFactor divides the gravity interval while soft drop is held.
	SoftDropFactor float64 `yaml:"soft_drop_factor"`

	// ScoreTable is indexed by lines cleared at once (0-4).
	ScoreTable [5]int `yaml:"score_table"`

	// TSpinScoreTable is indexed by lines cleared at once (0-3) and used
	// instead of ScoreTable when the clear is a T-spin.
	TSpinScoreTable [4]int `yaml:"tspin_score_table"`

	// GarbageTable maps lines cleared at once (0-4) to garbage lines sent.
	GarbageTable [5]int `yaml:"garbage_table"`
}

// GravityInterval returns the gravity interval for the given 1-based
// level, clamping at the end of the curve.
func (p Preset) GravityInterval(level int) float64 {
	idx := level - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(p.GravityMs) {
		idx = len(p.GravityMs) - 1
	}
	return p.GravityMs[idx]
}

// Validate reports whether the preset is usable by an engine.
func (p Preset) Validate() error {
	if len(p.GravityMs) == 0 {
		return errEmptyGravity
	}
	if p.SoftDropFactor <= 0 {
		return errBadSoftDrop
	}
	return nil
}
