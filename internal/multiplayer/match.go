package multiplayer

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-blocks/internal/blocks"
	"github.com/vovakirdan/tui-blocks/internal/core"
)

const (
	// stateInterval is how often (in ticks) the authoritative snapshots
	// are broadcast for client resync.
	stateInterval = 60

	// maxInputsPerTick caps how many input messages one side may deliver
	// per server tick. Excess is dropped.
	maxInputsPerTick = 4

	// maxFrameLead rejects inputs stamped too far ahead of or behind the
	// server's tick. A client this far off is lagging or misbehaving.
	maxFrameLead = 60

	// disqualifyThreshold ends the match when one side keeps flooding
	// invalid or excess inputs.
	disqualifyThreshold = 600

	// maxLinesPerSecond is the sustained clear-rate ceiling a board may
	// show before its state is considered corrupt.
	maxLinesPerSecond = 5
)

// MatchResult contains the outcome of a completed match.
type MatchResult struct {
	MatchID MatchID
	Reason  MatchEndReason
	Winner  core.PlayerID
	Score1  int
	Score2  int
	Lines1  int
	Lines2  int
	Ticks   int64
}

// VersusMatch is an authoritative two-player match. The server runs both
// engines itself; client states are cosmetic predictions that the relayed
// inputs and periodic snapshots keep honest.
type VersusMatch struct {
	id     MatchID
	preset string
	seed   uint32
	logger *log.Logger

	p1 SessionHandle
	p2 SessionHandle

	engines   map[core.PlayerID]*blocks.Engine
	lastInput map[core.PlayerID]core.Input
	rejected  map[core.PlayerID]int

	inputMu   sync.Mutex
	pending   map[core.PlayerID][]PlayerInputMsg
	tickQuota map[core.PlayerID]int

	tick     int64
	tickRate int

	done           chan struct{}
	doneOnce       sync.Once
	disconnectChan chan SessionID
}

// NewVersusMatch creates a match between two sessions. Both boards use
// the same preset and seed so the piece sequences match.
func NewVersusMatch(id MatchID, preset string, seed uint32, p1, p2 SessionHandle, tickRate int, logger *log.Logger) *VersusMatch {
	if logger == nil {
		logger = log.Default()
	}
	if tickRate <= 0 {
		tickRate = 60
	}
	return &VersusMatch{
		id:     id,
		preset: preset,
		seed:   seed,
		logger: logger,
		p1:     p1,
		p2:     p2,
		engines: map[core.PlayerID]*blocks.Engine{
			Player1: blocks.New(preset, seed),
			Player2: blocks.New(preset, seed),
		},
		lastInput: map[core.PlayerID]core.Input{
			Player1: core.NeutralInput(),
			Player2: core.NeutralInput(),
		},
		rejected:       map[core.PlayerID]int{},
		pending:        map[core.PlayerID][]PlayerInputMsg{},
		tickQuota:      map[core.PlayerID]int{},
		tickRate:       tickRate,
		done:           make(chan struct{}),
		disconnectChan: make(chan SessionID, 2),
	}
}

// ID returns the match identifier.
func (m *VersusMatch) ID() MatchID {
	return m.id
}

// Preset returns the preset both boards play under.
func (m *VersusMatch) Preset() string {
	return m.preset
}

// Seed returns the shared engine seed.
func (m *VersusMatch) Seed() uint32 {
	return m.seed
}

// Engine exposes one side's authoritative engine (for testing/debug).
func (m *VersusMatch) Engine(side core.PlayerID) *blocks.Engine {
	return m.engines[side]
}

// Sessions returns the host and joiner session IDs, in side order.
func (m *VersusMatch) Sessions() (SessionID, SessionID) {
	return m.p1.ID(), m.p2.ID()
}

// SendInput delivers a player's input for validation on the next tick.
// Non-blocking; invalid or excess inputs are dropped.
func (m *VersusMatch) SendInput(msg PlayerInputMsg) {
	m.inputMu.Lock()
	defer m.inputMu.Unlock()

	side := msg.Side
	if side != Player1 && side != Player2 {
		return
	}
	if m.tickQuota[side] >= maxInputsPerTick {
		m.rejected[side]++
		return
	}
	lead := msg.Frame - m.tick
	if lead > maxFrameLead || lead < -maxFrameLead {
		m.rejected[side]++
		m.logger.Warn("dropping input outside frame window",
			"match", m.id, "side", side, "frame", msg.Frame, "tick", m.tick)
		return
	}
	m.tickQuota[side]++
	m.pending[side] = append(m.pending[side], msg)
}

// PlayerDisconnected signals that a player's session has dropped.
func (m *VersusMatch) PlayerDisconnected(sessionID SessionID) {
	select {
	case m.disconnectChan <- sessionID:
	default:
	}
}

// Run starts the authoritative match loop. The callback fires once when
// the match ends for any reason.
func (m *VersusMatch) Run(onComplete func(MatchResult)) {
	defer m.doneOnce.Do(func() { close(m.done) })

	ticker := time.NewTicker(time.Second / time.Duration(m.tickRate))
	defer ticker.Stop()

	go m.monitorSessions()

	for {
		select {
		case <-ticker.C:
			result, over := m.runTick()
			if over {
				if onComplete != nil {
					onComplete(result)
				}
				return
			}

		case sessionID := <-m.disconnectChan:
			if onComplete != nil {
				onComplete(m.endedBy(sessionID, MatchEndReasonDisconnect))
			}
			return

		case <-m.done:
			return
		}
	}
}

// runTick applies one frame to both boards and reports whether the match
// is over.
func (m *VersusMatch) runTick() (MatchResult, bool) {
	inputs := m.drainInputs()

	for side, in := range inputs {
		m.relayInput(side, in)
	}

	if side, bad := m.checkConduct(); bad {
		m.logger.Warn("disqualifying player for invalid input stream", "match", m.id, "side", side)
		return m.result(MatchEndReasonDisqualified, Opponent(side)), true
	}

	for _, side := range []core.PlayerID{Player1, Player2} {
		res := m.engines[side].Update(core.FrameMs, inputs[side])
		if res.Kind == blocks.ResultLinesCleared {
			m.engines[Opponent(side)].EnqueueGarbage(garbageFor(m.engines[side], res))
		}
	}
	m.tick++

	if m.tick%stateInterval == 0 {
		if side, bad := m.validateState(); bad {
			m.logger.Warn("disqualifying player for impossible board state",
				"match", m.id, "side", side)
			return m.result(MatchEndReasonDisqualified, Opponent(side)), true
		}
		m.broadcastState()
	}

	p1Over := m.engines[Player1].GameOver()
	p2Over := m.engines[Player2].GameOver()
	if p1Over || p2Over {
		var winner core.PlayerID
		switch {
		case p1Over && p2Over:
			// Draw, no winner.
		case p1Over:
			winner = Player2
		default:
			winner = Player1
		}
		return m.result(MatchEndReasonCompleted, winner), true
	}

	return MatchResult{}, false
}

// drainInputs folds this tick's validated messages into each side's
// frame input. Hard drop, rotate and hold are edge-triggered, so queued
// presses are OR-ed together; movement uses the latest message.
func (m *VersusMatch) drainInputs() map[core.PlayerID]core.Input {
	m.inputMu.Lock()
	defer m.inputMu.Unlock()

	out := make(map[core.PlayerID]core.Input, 2)
	for _, side := range []core.PlayerID{Player1, Player2} {
		in := m.lastInput[side]
		// Edge-triggered actions never persist across ticks.
		in.HardDrop, in.Rotate, in.Hold = false, false, false

		for _, msg := range m.pending[side] {
			in.Left = msg.Inputs.Left
			in.Right = msg.Inputs.Right
			in.SoftDrop = msg.Inputs.SoftDrop
			in.HardDrop = in.HardDrop || msg.Inputs.HardDrop
			in.Rotate = in.Rotate || msg.Inputs.Rotate
			in.Hold = in.Hold || msg.Inputs.Hold
		}
		m.pending[side] = m.pending[side][:0]
		m.tickQuota[side] = 0
		m.lastInput[side] = in
		out[side] = in
	}
	return out
}

// relayInput forwards a side's effective input to the opponent's session.
func (m *VersusMatch) relayInput(side core.PlayerID, in core.Input) {
	evt := InputRelayEvent{
		MatchID: m.id,
		Side:    side,
		Frame:   m.tick,
		Inputs:  in,
	}
	if side == Player1 {
		m.p2.Send(evt)
	} else {
		m.p1.Send(evt)
	}
}

// checkConduct reports whether either side has accumulated enough
// rejected inputs to be disqualified.
func (m *VersusMatch) checkConduct() (core.PlayerID, bool) {
	m.inputMu.Lock()
	defer m.inputMu.Unlock()
	for _, side := range []core.PlayerID{Player1, Player2} {
		if m.rejected[side] >= disqualifyThreshold {
			return side, true
		}
	}
	return "", false
}

// validateState sanity-checks both boards at the broadcast cadence:
// score and line tallies must be non-negative and the clear rate must
// stay within reachable bounds. The engines are server-owned, so a
// violation means corrupted match state rather than a dishonest client.
func (m *VersusMatch) validateState() (core.PlayerID, bool) {
	elapsed := float64(m.tick) / float64(m.tickRate)
	for _, side := range []core.PlayerID{Player1, Player2} {
		e := m.engines[side]
		if e.Score() < 0 || e.Lines() < 0 {
			return side, true
		}
		if elapsed >= 1 && float64(e.Lines()) > maxLinesPerSecond*elapsed {
			return side, true
		}
	}
	return "", false
}

func (m *VersusMatch) broadcastState() {
	evt := StateEvent{
		MatchID: m.id,
		Frame:   m.tick,
		Boards: map[core.PlayerID]blocks.Snapshot{
			Player1: m.engines[Player1].Snapshot(),
			Player2: m.engines[Player2].Snapshot(),
		},
	}
	m.p1.Send(evt)
	m.p2.Send(evt)
}

func (m *VersusMatch) result(reason MatchEndReason, winner core.PlayerID) MatchResult {
	return MatchResult{
		MatchID: m.id,
		Reason:  reason,
		Winner:  winner,
		Score1:  m.engines[Player1].Score(),
		Score2:  m.engines[Player2].Score(),
		Lines1:  m.engines[Player1].Lines(),
		Lines2:  m.engines[Player2].Lines(),
		Ticks:   m.tick,
	}
}

func (m *VersusMatch) endedBy(sessionID SessionID, reason MatchEndReason) MatchResult {
	winner := Player1
	if sessionID == m.p1.ID() {
		winner = Player2
	}
	return m.result(reason, winner)
}

func (m *VersusMatch) monitorSessions() {
	select {
	case <-m.p1.Done():
		m.PlayerDisconnected(m.p1.ID())
	case <-m.p2.Done():
		m.PlayerDisconnected(m.p2.ID())
	case <-m.done:
	}
}

// Stop gracefully stops the match.
func (m *VersusMatch) Stop() {
	m.doneOnce.Do(func() { close(m.done) })
}

// garbageFor computes the attack a clear sends, from the attacker's
// preset table plus a spin bonus.
func garbageFor(attacker *blocks.Engine, res blocks.Result) int {
	table := attacker.Preset().GarbageTable
	n := 0
	if res.Lines >= 0 && res.Lines < len(table) {
		n = table[res.Lines]
	}
	if res.TSpin {
		n += res.Lines
	}
	return n
}
