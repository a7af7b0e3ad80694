package netcode

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-blocks/internal/blocks"
	"github.com/vovakirdan/tui-blocks/internal/core"
)

// MaxRollbackFrames bounds how far back a late input can still trigger a
// correct rollback. Inputs older than this are accepted but never
// reconciled, which is a permanent, potentially visible desync the host
// layer must live with.
const MaxRollbackFrames = 8

// historyRetention is how many frames of records are kept before
// eviction, sized at twice the rollback window.
const historyRetention = 2 * MaxRollbackFrames

// frameRecord holds everything needed to reconstruct and re-verify one
// frame: the real inputs on record, the checksum of the inputs actually
// used, the step delta, and per-player snapshots captured immediately
// before simulating the frame.
type frameRecord struct {
	dtMs      float64
	inputs    map[core.PlayerID]core.Input
	checksum  uint32
	snapshots map[core.PlayerID]blocks.Snapshot
}

func newFrameRecord(dtMs float64) *frameRecord {
	return &frameRecord{
		dtMs:      dtMs,
		inputs:    make(map[core.PlayerID]core.Input),
		snapshots: make(map[core.PlayerID]blocks.Snapshot),
	}
}

type playerSlot struct {
	id     core.PlayerID
	engine *blocks.Engine
}

// Coordinator keeps one engine per participant in sync via rollback:
// unconfirmed remote inputs are predicted as neutral, and when a real
// input arrives for a past frame every engine is rewound to the snapshot
// preceding it and resimulated to the present.
//
// All entry points must run on one logical thread of control; the
// coordinator is not safe for concurrent calls. Queue network callbacks
// onto the tick loop instead of invoking them from another goroutine.
type Coordinator struct {
	logger *log.Logger

	local core.PlayerID

	// players keeps stable insertion order: engines read each other's
	// clear events within a frame pass, so cross-player ordering must be
	// deterministic.
	players []*playerSlot
	byID    map[core.PlayerID]*playerSlot

	history        map[int64]*frameRecord
	currentFrame   int64
	confirmedFrame int64
}

// NewCoordinator creates a coordinator whose Update records input for the
// given local player. logger may be nil.
func NewCoordinator(local core.PlayerID, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.Default()
	}
	return &Coordinator{
		logger:  logger,
		local:   local,
		byID:    make(map[core.PlayerID]*playerSlot),
		history: make(map[int64]*frameRecord),
	}
}

// AddPlayer registers a participant. The engine is cloned so the
// coordinator owns an independent instance.
func (c *Coordinator) AddPlayer(id core.PlayerID, engine *blocks.Engine) {
	if _, exists := c.byID[id]; exists {
		c.logger.Warn("player already registered", "player", id)
		return
	}
	slot := &playerSlot{id: id, engine: engine.Clone()}
	c.players = append(c.players, slot)
	c.byID[id] = slot
}

// RemovePlayer drops a participant and its history contribution.
func (c *Coordinator) RemovePlayer(id core.PlayerID) {
	slot, exists := c.byID[id]
	if !exists {
		return
	}
	delete(c.byID, id)
	for i, s := range c.players {
		if s == slot {
			c.players = append(c.players[:i], c.players[i+1:]...)
			break
		}
	}
	for _, rec := range c.history {
		delete(rec.inputs, id)
		delete(rec.snapshots, id)
	}
}

// PlayerEngine returns the coordinator-owned engine for a player, or nil.
// Callers read it for rendering; mutation goes through Update and
// OnRemoteInput only.
func (c *Coordinator) PlayerEngine(id core.PlayerID) *blocks.Engine {
	if slot, ok := c.byID[id]; ok {
		return slot.engine
	}
	return nil
}

// CurrentFrame returns the next frame to be simulated.
func (c *Coordinator) CurrentFrame() int64 {
	return c.currentFrame
}

// ConfirmedFrame returns the newest frame considered flushed from active
// rollback consideration. A heuristic, not a consensus guarantee.
func (c *Coordinator) ConfirmedFrame() int64 {
	return c.confirmedFrame
}

// Update records the local player's input for the current frame,
// simulates it, then advances the frame counter. Past frames never need
// attention here: late inputs are reconciled the moment they arrive.
// Must be invoked exactly once per local simulation tick.
func (c *Coordinator) Update(dtMs float64, localInputs core.Input) {
	if len(c.players) == 0 {
		c.logger.Warn("update with no players registered", "frame", c.currentFrame)
		c.currentFrame++
		return
	}

	rec := c.record(c.currentFrame, dtMs)
	rec.dtMs = dtMs // the record may predate this tick via an early remote input
	if _, ok := c.byID[c.local]; ok {
		rec.inputs[c.local] = localInputs
	}

	c.simulateFrame(c.currentFrame)
	c.currentFrame++
}

// OnRemoteInput records a definitive input for a player at a frame. A
// frame older than the rollback window is accepted without reconciliation;
// a past frame inside the window forces a rollback and full resimulation.
func (c *Coordinator) OnRemoteInput(id core.PlayerID, frame int64, inputs core.Input) {
	if _, ok := c.byID[id]; !ok {
		c.logger.Warn("input for unknown player", "player", id, "frame", frame)
		return
	}
	if frame < 0 {
		c.logger.Warn("input for negative frame", "player", id, "frame", frame)
		return
	}

	if frame < c.currentFrame-MaxRollbackFrames {
		c.logger.Warn("input older than rollback window, not reconciled",
			"player", id, "frame", frame, "current", c.currentFrame)
		if rec, ok := c.history[frame]; ok {
			rec.inputs[id] = inputs
		}
		return
	}

	c.record(frame, core.FrameMs).inputs[id] = inputs

	if frame < c.currentFrame {
		c.resimulate(frame)
	}
}

// record returns the frame record, creating it if absent.
func (c *Coordinator) record(frame int64, dtMs float64) *frameRecord {
	rec, ok := c.history[frame]
	if !ok {
		rec = newFrameRecord(dtMs)
		c.history[frame] = rec
	}
	return rec
}

// resimulate rewinds every engine to the snapshot captured before `from`
// and re-steps each already-simulated frame with the inputs now on
// record. A late input is the only change relative to the previous pass,
// so its frame is exactly the divergence point: frames before it used
// the same effective inputs and need no correction, while every frame
// from it onward must be restored and re-stepped, even when the arrived
// input happens to equal the neutral prediction.
func (c *Coordinator) resimulate(from int64) {
	c.rollbackTo(from)
	for f := from; f < c.currentFrame; f++ {
		c.simulateFrame(f)
	}
}

// rollbackTo restores every engine from its snapshot captured before the
// given frame. A missing snapshot is a degraded-but-safe path: the live
// engine keeps its state and resimulation proceeds from there.
func (c *Coordinator) rollbackTo(frame int64) {
	rec, ok := c.history[frame]
	if !ok {
		c.logger.Warn("no frame record for rollback target, skipping restore", "frame", frame)
		return
	}
	for _, slot := range c.players {
		snap, ok := rec.snapshots[slot.id]
		if !ok {
			c.logger.Warn("no snapshot for player at rollback target",
				"player", slot.id, "frame", frame)
			continue
		}
		slot.engine.Restore(snap)
	}
}

// simulateFrame steps every engine through one frame: gather real inputs
// (neutral where absent), snapshot each engine before stepping, step in
// insertion order, and relay garbage for any clears.
func (c *Coordinator) simulateFrame(frame int64) {
	rec := c.record(frame, core.FrameMs)

	used := make(map[core.PlayerID]core.Input, len(c.players))
	for _, slot := range c.players {
		in, real := rec.inputs[slot.id]
		if !real {
			in = core.NeutralInput()
		}
		used[slot.id] = in
	}
	rec.checksum = FrameChecksum(used)

	for _, slot := range c.players {
		rec.snapshots[slot.id] = slot.engine.Snapshot()
	}

	for _, slot := range c.players {
		res := slot.engine.Update(rec.dtMs, used[slot.id])
		if res.Kind == blocks.ResultLinesCleared {
			c.sendGarbage(slot, res)
		}
	}

	c.evictBefore(frame - historyRetention)
	if conf := frame - MaxRollbackFrames; conf > c.confirmedFrame {
		c.confirmedFrame = conf
	}
}

// sendGarbage enqueues garbage lines into every other engine for a clear,
// scaled by the attacker's preset table with a flat per-line T-spin bonus.
func (c *Coordinator) sendGarbage(from *playerSlot, res blocks.Result) {
	table := from.engine.Preset().GarbageTable
	idx := res.Lines
	if idx >= len(table) {
		idx = len(table) - 1
	}
	n := table[idx]
	if res.TSpin {
		n += res.Lines
	}
	if n <= 0 {
		return
	}
	for _, slot := range c.players {
		if slot == from {
			continue
		}
		slot.engine.EnqueueGarbage(n)
	}
}

// Resync adopts authoritative snapshots for a frame, discarding local
// prediction state that precedes it. Used when a server broadcast
// supersedes whatever the rollback window still holds.
func (c *Coordinator) Resync(frame int64, states map[core.PlayerID]blocks.Snapshot) {
	if frame < c.currentFrame {
		// Stale broadcast, local simulation is already past it.
		return
	}
	for _, slot := range c.players {
		snap, ok := states[slot.id]
		if !ok {
			c.logger.Warn("resync missing a player state", "player", slot.id, "frame", frame)
			continue
		}
		slot.engine.Restore(snap)
	}
	c.evictBefore(frame)
	c.currentFrame = frame
	c.confirmedFrame = frame
}

// evictBefore drops frame records older than the retention window.
func (c *Coordinator) evictBefore(frame int64) {
	for f := range c.history {
		if f < frame {
			delete(c.history, f)
		}
	}
}

// Checksum returns the input checksum recorded for a frame, if present.
func (c *Coordinator) Checksum(frame int64) (uint32, bool) {
	if rec, ok := c.history[frame]; ok {
		return rec.checksum, true
	}
	return 0, false
}
