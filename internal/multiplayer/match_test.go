package multiplayer

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-blocks/internal/blocks"
	"github.com/vovakirdan/tui-blocks/internal/core"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func waitEvent(t *testing.T, s *ChannelSession) SessionEvent {
	t.Helper()
	select {
	case evt := <-s.Events():
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a session event")
		return nil
	}
}

func newTestMatch() (*VersusMatch, *ChannelSession, *ChannelSession) {
	p1 := NewChannelSession("alice", 16)
	p2 := NewChannelSession("bob", 16)
	m := NewVersusMatch("m1", "guideline", 1234, p1, p2, 60, quietLogger())
	return m, p1, p2
}

func TestMatchEnginesShareSeed(t *testing.T) {
	m, _, _ := newTestMatch()

	q1 := m.Engine(Player1).NextQueue()
	q2 := m.Engine(Player2).NextQueue()
	if len(q1) != len(q2) {
		t.Fatalf("queue lengths differ: %d vs %d", len(q1), len(q2))
	}
	for i := range q1 {
		if q1[i] != q2[i] {
			t.Fatalf("piece queues diverge at %d: %v vs %v", i, q1, q2)
		}
	}
}

func TestInputRelayedToOpponent(t *testing.T) {
	m, _, p2 := newTestMatch()

	m.SendInput(PlayerInputMsg{MatchID: m.ID(), Side: Player1, Frame: 0, Inputs: core.Input{Rotate: true}})
	m.runTick()

	evt := waitEvent(t, p2)
	relay, ok := evt.(InputRelayEvent)
	if !ok {
		t.Fatalf("expected InputRelayEvent, got %T", evt)
	}
	if relay.Side != Player1 || !relay.Inputs.Rotate {
		t.Fatalf("unexpected relay: %+v", relay)
	}
}

func TestInputOutsideFrameWindowDropped(t *testing.T) {
	m, _, _ := newTestMatch()

	m.SendInput(PlayerInputMsg{MatchID: m.ID(), Side: Player2, Frame: maxFrameLead + 10, Inputs: core.Input{HardDrop: true}})
	if m.rejected[Player2] != 1 {
		t.Fatalf("expected 1 rejection, got %d", m.rejected[Player2])
	}
	if len(m.pending[Player2]) != 0 {
		t.Fatal("input outside the frame window must not be queued")
	}
}

func TestInputRateCapPerTick(t *testing.T) {
	m, _, _ := newTestMatch()

	for i := 0; i < maxInputsPerTick+3; i++ {
		m.SendInput(PlayerInputMsg{MatchID: m.ID(), Side: Player1, Frame: 0, Inputs: core.Input{Left: true}})
	}
	if len(m.pending[Player1]) != maxInputsPerTick {
		t.Fatalf("expected %d queued inputs, got %d", maxInputsPerTick, len(m.pending[Player1]))
	}
	if m.rejected[Player1] != 3 {
		t.Fatalf("expected 3 rejections, got %d", m.rejected[Player1])
	}

	// Quota resets on the next tick.
	m.runTick()
	m.SendInput(PlayerInputMsg{MatchID: m.ID(), Side: Player1, Frame: 1, Inputs: core.Input{Left: true}})
	if len(m.pending[Player1]) != 1 {
		t.Fatal("quota should reset after a tick")
	}
}

func TestEdgeActionsDoNotPersistAcrossTicks(t *testing.T) {
	m, _, _ := newTestMatch()

	m.SendInput(PlayerInputMsg{MatchID: m.ID(), Side: Player1, Frame: 0,
		Inputs: core.Input{Left: true, HardDrop: true}})
	inputs := m.drainInputs()
	if !inputs[Player1].HardDrop || !inputs[Player1].Left {
		t.Fatalf("first tick should carry the message: %+v", inputs[Player1])
	}

	inputs = m.drainInputs()
	if inputs[Player1].HardDrop {
		t.Fatal("hard drop must not repeat on the next tick")
	}
	if !inputs[Player1].Left {
		t.Fatal("held movement should persist until a new message arrives")
	}
}

func TestMatchEndsWhenBoardTopsOut(t *testing.T) {
	m, _, _ := newTestMatch()

	snap := m.Engine(Player2).Snapshot()
	snap.GameOver = true
	m.Engine(Player2).Restore(snap)

	result, over := m.runTick()
	if !over {
		t.Fatal("expected the match to end")
	}
	if result.Reason != MatchEndReasonCompleted {
		t.Fatalf("expected completed, got %v", result.Reason)
	}
	if result.Winner != Player1 {
		t.Fatalf("expected Player1 to win, got %v", result.Winner)
	}
}

func TestDisqualificationAfterSustainedFlood(t *testing.T) {
	m, _, _ := newTestMatch()

	for i := 0; i < disqualifyThreshold; i++ {
		m.SendInput(PlayerInputMsg{MatchID: m.ID(), Side: Player2, Frame: 10_000, Inputs: core.Input{Left: true}})
	}

	result, over := m.runTick()
	if !over {
		t.Fatal("expected the match to end")
	}
	if result.Reason != MatchEndReasonDisqualified {
		t.Fatalf("expected disqualified, got %v", result.Reason)
	}
	if result.Winner != Player1 {
		t.Fatalf("expected Player1 to win, got %v", result.Winner)
	}
}

func TestStateValidationEndsCorruptMatch(t *testing.T) {
	m, _, _ := newTestMatch()

	// An impossible clear rate: far more lines than any board can produce
	// in the first second of play.
	snap := m.Engine(Player1).Snapshot()
	snap.Lines = 100_000
	m.Engine(Player1).Restore(snap)

	var result MatchResult
	var over bool
	for i := 0; i < stateInterval && !over; i++ {
		result, over = m.runTick()
	}
	if !over {
		t.Fatal("expected validation to end the match at the broadcast tick")
	}
	if result.Reason != MatchEndReasonDisqualified {
		t.Fatalf("expected disqualified, got %v", result.Reason)
	}
	if result.Winner != Player2 {
		t.Fatalf("expected Player2 to win, got %v", result.Winner)
	}
}

func TestStateValidationAcceptsHonestBoards(t *testing.T) {
	m, p1, p2 := newTestMatch()

	for i := 0; i < stateInterval; i++ {
		if _, over := m.runTick(); over {
			t.Fatal("a quiet match must not end during the first broadcast interval")
		}
	}
	// The broadcast still goes out after validation passes.
	for _, s := range []*ChannelSession{p1, p2} {
		found := false
		for !found {
			if _, ok := waitEvent(t, s).(StateEvent); ok {
				found = true
			}
		}
	}
}

func TestGarbageForClears(t *testing.T) {
	e := blocks.New("guideline", 1)

	if got := garbageFor(e, blocks.Result{Kind: blocks.ResultLinesCleared, Lines: 4}); got != 4 {
		t.Fatalf("four lines should send 4 rows, got %d", got)
	}
	if got := garbageFor(e, blocks.Result{Kind: blocks.ResultLinesCleared, Lines: 2, TSpin: true}); got != 3 {
		t.Fatalf("spin double should send 1+2 rows, got %d", got)
	}
	if got := garbageFor(e, blocks.Result{Kind: blocks.ResultLinesCleared, Lines: 1}); got != 0 {
		t.Fatalf("single should send nothing, got %d", got)
	}
}
