package core

// FrameMs is the nominal duration of one logical frame at 60 Hz.
// Engines are stepped with real per-frame deltas during play; replays and
// the netcode layer always use this fixed value so resimulation is exact.
const FrameMs = 1000.0 / 60.0

// RuntimeConfig contains configuration passed to engines at construction.
type RuntimeConfig struct {
	Preset   string // Ruleset preset name (default "guideline")
	TickRate int    // Simulation ticks per second (default 60)
	Seed     uint32 // RNG seed for deterministic gameplay
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		Preset:   "guideline",
		TickRate: 60,
		Seed:     0, // 0 means derive from current time in the platform layer
	}
}
