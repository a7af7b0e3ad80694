// Package replay records and replays games as (seed, sparse input list)
// pairs. Engine determinism guarantees a replay reproduces the original
// run bit for bit when stepped at the fixed nominal frame time.
package replay

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/vovakirdan/tui-blocks/internal/blocks"
	"github.com/vovakirdan/tui-blocks/internal/core"
)

// FrameInput is one recorded input keyed by frame index. Frames without
// an entry are replayed with neutral input.
type FrameInput struct {
	Frame  int64      `json:"frame"`
	Inputs core.Input `json:"inputs"`
}

// Replay is a complete recorded game.
type Replay struct {
	Preset string       `json:"preset"`
	Seed   uint32       `json:"seed"`
	Frames []FrameInput `json:"frames"`

	// Final tallies, stored for listings without replaying.
	FinalScore int   `json:"finalScore"`
	FinalLines int   `json:"finalLines"`
	LastFrame  int64 `json:"lastFrame"`
}

// Marshal serializes the replay to JSON.
func (r Replay) Marshal() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("replay: failed to marshal: %w", err)
	}
	return data, nil
}

// Unmarshal parses a replay from JSON.
func Unmarshal(data []byte) (Replay, error) {
	var r Replay
	if err := json.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("replay: failed to parse: %w", err)
	}
	return r, nil
}

// Recorder captures inputs during live play. Neutral frames are skipped;
// the sparse list plus the seed reconstructs the run.
type Recorder struct {
	replay Replay
	frame  int64
}

// NewRecorder starts a recording for the given preset and seed.
func NewRecorder(preset string, seed uint32) *Recorder {
	return &Recorder{replay: Replay{Preset: preset, Seed: seed}}
}

// Record stores the input for the next frame and advances the counter.
// Call once per engine Update with the same input.
func (rec *Recorder) Record(in core.Input) {
	if !in.IsNeutral() {
		rec.replay.Frames = append(rec.replay.Frames, FrameInput{Frame: rec.frame, Inputs: in})
	}
	rec.frame++
}

// Finish seals the recording with the engine's final tallies.
func (rec *Recorder) Finish(e *blocks.Engine) Replay {
	rec.replay.LastFrame = rec.frame - 1
	rec.replay.FinalScore = e.Score()
	rec.replay.FinalLines = e.Lines()
	return rec.replay
}

// Player steps through a replay one frame at a time, feeding recorded
// inputs (or neutral) into a freshly constructed engine.
type Player struct {
	engine *blocks.Engine
	frames []FrameInput
	idx    int
	frame  int64
	last   int64
}

// NewPlayer constructs a playback engine for the replay. Frames are
// sorted by index so out-of-order recordings still replay correctly.
func NewPlayer(r Replay) *Player {
	frames := append([]FrameInput(nil), r.Frames...)
	sort.Slice(frames, func(i, j int) bool { return frames[i].Frame < frames[j].Frame })
	return &Player{
		engine: blocks.New(r.Preset, r.Seed),
		frames: frames,
		last:   r.LastFrame,
	}
}

// Engine exposes the playback engine for rendering.
func (p *Player) Engine() *blocks.Engine {
	return p.engine
}

// Frame returns the next frame to be replayed.
func (p *Player) Frame() int64 {
	return p.frame
}

// Done reports whether the replay has been fully consumed.
func (p *Player) Done() bool {
	return p.frame > p.last || p.engine.GameOver()
}

// Step replays one frame at the fixed nominal delta.
func (p *Player) Step() blocks.Result {
	in := core.NeutralInput()
	if p.idx < len(p.frames) && p.frames[p.idx].Frame == p.frame {
		in = p.frames[p.idx].Inputs
		p.idx++
	}
	res := p.engine.Update(core.FrameMs, in)
	p.frame++
	return res
}

// Run replays the whole recording and returns the resulting engine.
func Run(r Replay) *blocks.Engine {
	p := NewPlayer(r)
	for !p.Done() {
		p.Step()
	}
	return p.engine
}
