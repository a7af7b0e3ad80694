package core

// SeededRNG is a deterministic pseudo-random number generator backed by a
// 32-bit linear congruential recurrence. Two generators constructed with
// the same seed produce identical sequences on every platform, which is
// what makes rollback resimulation bit-exact.
type SeededRNG struct {
	state uint32
}

// LCG constants (numerical recipes).
const (
	rngMultiplier = 1664525
	rngIncrement  = 1013904223
)

// NewSeededRNG creates a generator with the given seed.
func NewSeededRNG(seed uint32) *SeededRNG {
	return &SeededRNG{state: seed}
}

// Next advances the generator and returns the next 32-bit value.
func (r *SeededRNG) Next() uint32 {
	r.state = r.state*rngMultiplier + rngIncrement
	return r.state
}

// NextFloat returns a value in [0, 1).
func (r *SeededRNG) NextFloat() float64 {
	return float64(r.Next()) / (1 << 32)
}

// NextInt returns a value in [0, max). max must be positive.
func (r *SeededRNG) NextInt(max int) int {
	return int(r.NextFloat() * float64(max))
}

// Clone returns an independent generator with identical future output.
func (r *SeededRNG) Clone() *SeededRNG {
	return &SeededRNG{state: r.state}
}

// State exposes the raw 32-bit word for snapshotting.
func (r *SeededRNG) State() uint32 {
	return r.state
}

// SetState restores the raw 32-bit word from a snapshot.
func (r *SeededRNG) SetState(s uint32) {
	r.state = s
}
