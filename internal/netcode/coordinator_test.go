package netcode

import (
	"io"
	"reflect"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-blocks/internal/blocks"
	"github.com/vovakirdan/tui-blocks/internal/core"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func newPair(t *testing.T) *Coordinator {
	t.Helper()
	c := NewCoordinator("p1", quietLogger())
	c.AddPlayer("p1", blocks.New("guideline", 111))
	c.AddPlayer("p2", blocks.New("guideline", 222))
	return c
}

func TestAddPlayerClonesEngine(t *testing.T) {
	c := NewCoordinator("p1", quietLogger())
	original := blocks.New("guideline", 5)
	c.AddPlayer("p1", original)

	owned := c.PlayerEngine("p1")
	if owned == original {
		t.Fatal("Coordinator shares the caller's engine instead of cloning")
	}
	if !reflect.DeepEqual(owned.Snapshot(), original.Snapshot()) {
		t.Fatal("Cloned engine state differs from the original")
	}
}

func TestLateInputMatchesStraightLineSimulation(t *testing.T) {
	const n = 10
	realInput := core.Input{Left: true, Rotate: true}

	// Lateness 1 is the ordinary network case; MaxRollbackFrames is the
	// window edge.
	for _, late := range []int64{1, 3, MaxRollbackFrames} {
		// Rollback path: p2's real input for frame n-late arrives only
		// after frame n-1 has been simulated.
		rolled := newPair(t)
		for f := 0; f < n; f++ {
			rolled.Update(core.FrameMs, core.NeutralInput())
		}
		rolled.OnRemoteInput("p2", n-late, realInput)

		// Straight-line path: the same input is known before the frame runs.
		straight := newPair(t)
		for f := int64(0); f < n; f++ {
			if f == n-late {
				straight.OnRemoteInput("p2", f, realInput)
			}
			straight.Update(core.FrameMs, core.NeutralInput())
		}

		for _, id := range []core.PlayerID{"p1", "p2"} {
			got := rolled.PlayerEngine(id).Snapshot()
			want := straight.PlayerEngine(id).Snapshot()
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Lateness %d, player %s: reconciled state differs from straight-line simulation:\n%+v\n%+v", late, id, got, want)
			}
		}
	}
}

func TestLateNeutralInputLeavesStateUntouched(t *testing.T) {
	// A confirmed input equal to the neutral prediction changes nothing;
	// the resimulation must land every engine exactly where it was.
	c := newPair(t)
	const n = 10
	for f := 0; f < n; f++ {
		c.Update(core.FrameMs, core.NeutralInput())
	}
	before := map[core.PlayerID]blocks.Snapshot{
		"p1": c.PlayerEngine("p1").Snapshot(),
		"p2": c.PlayerEngine("p2").Snapshot(),
	}

	c.OnRemoteInput("p2", n-1, core.NeutralInput())

	for _, id := range []core.PlayerID{"p1", "p2"} {
		if got := c.PlayerEngine(id).Snapshot(); !reflect.DeepEqual(got, before[id]) {
			t.Errorf("Player %s: confirming the predicted input changed state", id)
		}
	}
	if c.CurrentFrame() != n {
		t.Errorf("CurrentFrame = %d, want %d", c.CurrentFrame(), n)
	}
}

func TestLateInputConvergesAcrossPeers(t *testing.T) {
	// Two coordinators simulating the same match: peer A knows its own
	// inputs immediately, peer B learns them late. After reconciliation
	// both must agree on every engine.
	const n = 8
	script := core.NewSeededRNG(31)
	inputs := make([]core.Input, n)
	for i := range inputs {
		inputs[i] = core.UnpackInput(uint8(script.Next() % 64))
		if inputs[i].Left && inputs[i].Right {
			inputs[i].Right = false
		}
	}

	a := NewCoordinator("p1", quietLogger())
	a.AddPlayer("p1", blocks.New("guideline", 1))
	a.AddPlayer("p2", blocks.New("guideline", 2))

	b := NewCoordinator("p2", quietLogger())
	b.AddPlayer("p1", blocks.New("guideline", 1))
	b.AddPlayer("p2", blocks.New("guideline", 2))

	for f := 0; f < n; f++ {
		a.Update(core.FrameMs, inputs[f])
		b.Update(core.FrameMs, core.NeutralInput())
	}
	// B receives A's inputs late, newest first to exercise out-of-order
	// delivery.
	for f := n - 1; f >= 0; f-- {
		b.OnRemoteInput("p1", int64(f), inputs[f])
	}

	for _, id := range []core.PlayerID{"p1", "p2"} {
		sa := a.PlayerEngine(id).Snapshot()
		sb := b.PlayerEngine(id).Snapshot()
		if !reflect.DeepEqual(sa, sb) {
			t.Errorf("Player %s: peers disagree after reconciliation", id)
		}
	}
}

func TestInputBeyondRollbackWindowIsIgnoredSafely(t *testing.T) {
	c := newPair(t)
	for f := 0; f < 30; f++ {
		c.Update(core.FrameMs, core.NeutralInput())
	}

	before := c.PlayerEngine("p2").Snapshot()

	// Far older than currentFrame - MaxRollbackFrames: must not crash and
	// must not rewrite history.
	c.OnRemoteInput("p2", 2, core.Input{HardDrop: true})

	if got := c.PlayerEngine("p2").Snapshot(); !reflect.DeepEqual(got, before) {
		t.Error("Out-of-window input changed live state")
	}

	// Simulation continues normally afterwards.
	c.Update(core.FrameMs, core.NeutralInput())
	if c.CurrentFrame() != 31 {
		t.Errorf("CurrentFrame = %d, want 31", c.CurrentFrame())
	}
}

func TestConfirmedFrameTrailsByWindow(t *testing.T) {
	c := newPair(t)
	for f := 0; f < 20; f++ {
		c.Update(core.FrameMs, core.NeutralInput())
	}
	want := int64(19 - MaxRollbackFrames)
	if c.ConfirmedFrame() != want {
		t.Errorf("ConfirmedFrame = %d, want %d", c.ConfirmedFrame(), want)
	}
}

func TestHistoryEviction(t *testing.T) {
	c := newPair(t)
	const n = 100
	for f := 0; f < n; f++ {
		c.Update(core.FrameMs, core.NeutralInput())
	}
	if len(c.history) > historyRetention+1 {
		t.Errorf("History holds %d records, want at most %d", len(c.history), historyRetention+1)
	}
	if _, ok := c.history[0]; ok {
		t.Error("Frame 0 record not evicted")
	}
}

func TestRemovePlayerDropsContribution(t *testing.T) {
	c := newPair(t)
	for f := 0; f < 5; f++ {
		c.Update(core.FrameMs, core.NeutralInput())
	}
	c.RemovePlayer("p2")

	if c.PlayerEngine("p2") != nil {
		t.Fatal("Removed player still has an engine")
	}
	for f, rec := range c.history {
		if _, ok := rec.inputs["p2"]; ok {
			t.Errorf("Frame %d still records removed player's input", f)
		}
	}

	// The remaining player keeps simulating.
	c.Update(core.FrameMs, core.Input{SoftDrop: true})
	if c.PlayerEngine("p1") == nil {
		t.Fatal("Remaining player lost its engine")
	}
}

func TestUpdateWithNoPlayersIsLenient(t *testing.T) {
	c := NewCoordinator("p1", quietLogger())
	c.Update(core.FrameMs, core.NeutralInput())
	c.Update(core.FrameMs, core.NeutralInput())
	if c.CurrentFrame() != 2 {
		t.Errorf("CurrentFrame = %d, want 2", c.CurrentFrame())
	}
}

func TestGarbageRelayedToOpponents(t *testing.T) {
	c := newPair(t)

	// Force a tetris for p1 at the next simulated frame by staging its
	// coordinator-owned engine directly.
	e1 := c.PlayerEngine("p1")
	snap := e1.Snapshot()
	for y := 0; y < 4; y++ {
		snap.Board[y] = 1<<blocks.BoardWidth - 1 &^ (1 << 9)
	}
	snap.HasCurrent = true
	snap.CurrentType = blocks.PieceI
	snap.CurrentRotation = 1
	snap.CurrentX = 7
	snap.CurrentY = 10
	e1.Restore(snap)

	c.Update(core.FrameMs, core.Input{HardDrop: true})

	if got := c.PlayerEngine("p2").PendingGarbage(); got != 4 {
		t.Errorf("Opponent pending garbage = %d, want 4 for a tetris", got)
	}
	if got := c.PlayerEngine("p1").PendingGarbage(); got != 0 {
		t.Errorf("Attacker received its own garbage: %d", got)
	}
}

func TestResyncAdoptsAuthoritativeState(t *testing.T) {
	c := newPair(t)
	for frame := 0; frame < 20; frame++ {
		c.Update(core.FrameMs, core.NeutralInput())
	}

	authoritative := map[core.PlayerID]blocks.Snapshot{
		"p1": blocks.New("guideline", 777).Snapshot(),
		"p2": blocks.New("guideline", 888).Snapshot(),
	}
	c.Resync(30, authoritative)

	if c.CurrentFrame() != 30 {
		t.Fatalf("expected frame 30 after resync, got %d", c.CurrentFrame())
	}
	if c.ConfirmedFrame() != 30 {
		t.Fatalf("expected confirmed frame 30, got %d", c.ConfirmedFrame())
	}
	got := c.PlayerEngine("p1").Snapshot()
	if !reflect.DeepEqual(got, authoritative["p1"]) {
		t.Fatal("p1 engine did not adopt the authoritative state")
	}

	// A stale broadcast must not rewind the simulation.
	stale := map[core.PlayerID]blocks.Snapshot{
		"p1": blocks.New("guideline", 1).Snapshot(),
		"p2": blocks.New("guideline", 2).Snapshot(),
	}
	c.Resync(10, stale)
	if c.CurrentFrame() != 30 {
		t.Fatalf("stale resync moved the frame to %d", c.CurrentFrame())
	}
	if reflect.DeepEqual(c.PlayerEngine("p1").Snapshot(), stale["p1"]) {
		t.Fatal("stale resync must not overwrite engine state")
	}
}
