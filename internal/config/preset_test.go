package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGravityIntervalClampsAtCurveEnd(t *testing.T) {
	p := GuidelinePreset()

	if got := p.GravityInterval(1); got != p.GravityMs[0] {
		t.Errorf("level 1 interval = %v, want %v", got, p.GravityMs[0])
	}
	last := p.GravityMs[len(p.GravityMs)-1]
	if got := p.GravityInterval(len(p.GravityMs)); got != last {
		t.Errorf("final level interval = %v, want %v", got, last)
	}
	if got := p.GravityInterval(100); got != last {
		t.Errorf("past-curve interval = %v, want clamp to %v", got, last)
	}
	if got := p.GravityInterval(0); got != p.GravityMs[0] {
		t.Errorf("level 0 interval = %v, want clamp to %v", got, p.GravityMs[0])
	}
}

func TestValidateRejectsBrokenPresets(t *testing.T) {
	p := GuidelinePreset()
	p.GravityMs = nil
	if err := p.Validate(); err == nil {
		t.Error("empty gravity curve should not validate")
	}

	p = GuidelinePreset()
	p.SoftDropFactor = 0
	if err := p.Validate(); err == nil {
		t.Error("zero soft drop factor should not validate")
	}

	if err := ClassicPreset().Validate(); err != nil {
		t.Errorf("builtin classic preset should validate: %v", err)
	}
}

func TestBuiltinPresetsMatchEmbeddedYAML(t *testing.T) {
	presets := builtinPresets()
	for _, name := range PresetNames() {
		p, ok := presets[name]
		if !ok {
			t.Fatalf("missing builtin preset %q", name)
		}
		if p.Name != name {
			t.Errorf("preset %q carries name %q", name, p.Name)
		}
		if err := p.Validate(); err != nil {
			t.Errorf("builtin preset %q invalid: %v", name, err)
		}
	}
}

func TestLoadPresetFallsBackToGuideline(t *testing.T) {
	p := LoadPreset("no-such-preset")
	if p.Name != "guideline" {
		t.Errorf("unknown preset should fall back to guideline, got %q", p.Name)
	}

	p = LoadPreset("")
	if p.Name != "guideline" {
		t.Errorf("empty name should resolve to guideline, got %q", p.Name)
	}

	p = LoadPreset("classic")
	if p.Name != "classic" {
		t.Errorf("classic should resolve to itself, got %q", p.Name)
	}
}

func TestLoadPresetFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(good, []byte(`
name: custom
gravity_ms: [500, 400, 300]
lock_delay_ms: 250
das_ms: 150
arr_ms: 30
soft_drop_factor: 15
score_table: [0, 50, 150, 350, 900]
tspin_score_table: [200, 500, 900, 1300]
garbage_table: [0, 0, 1, 2, 4]
`), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := LoadPresetFile(good)
	if err != nil {
		t.Fatalf("LoadPresetFile: %v", err)
	}
	if p.Name != "custom" || p.LockDelayMs != 250 || len(p.GravityMs) != 3 {
		t.Errorf("unexpected preset: %+v", p)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("name: broken\nsoft_drop_factor: -1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPresetFile(bad); err == nil {
		t.Error("invalid preset file should not load")
	}

	if _, err := LoadPresetFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing preset file should not load")
	}
}
