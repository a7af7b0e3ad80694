package blocks

import (
	"reflect"
	"testing"

	"github.com/vovakirdan/tui-blocks/internal/core"
)

// scriptedInput derives a pseudo-random but reproducible input for frame i.
func scriptedInput(rng *core.SeededRNG) core.Input {
	b := uint8(rng.Next() % 64)
	in := core.UnpackInput(b)
	// Left and Right together is not a state the input layer produces.
	if in.Left && in.Right {
		in.Right = false
	}
	return in
}

func TestDeterminism(t *testing.T) {
	e1 := New("guideline", 12345)
	e2 := New("guideline", 12345)

	script := core.NewSeededRNG(9)
	for i := 0; i < 600; i++ {
		in := scriptedInput(script)
		r1 := e1.Update(core.FrameMs, in)
		r2 := e2.Update(core.FrameMs, in)
		if r1 != r2 {
			t.Fatalf("Frame %d: results diverged: %+v vs %+v", i, r1, r2)
		}
		if i%10 == 0 {
			s1, s2 := e1.Snapshot(), e2.Snapshot()
			if !reflect.DeepEqual(s1, s2) {
				t.Fatalf("Frame %d: snapshots diverged:\n%+v\n%+v", i, s1, s2)
			}
		}
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	e := New("guideline", 42)
	script := core.NewSeededRNG(4)
	for i := 0; i < 200; i++ {
		e.Update(core.FrameMs, scriptedInput(script))
	}

	saved := e.Snapshot()

	// Run a branch of 120 frames and record every result.
	branch := core.NewSeededRNG(8)
	var results []Result
	for i := 0; i < 120; i++ {
		results = append(results, e.Update(core.FrameMs, scriptedInput(branch)))
	}
	final := e.Snapshot()

	// Rewind and replay: the branch must be bit-identical.
	e.Restore(saved)
	branch = core.NewSeededRNG(8)
	for i := 0; i < 120; i++ {
		r := e.Update(core.FrameMs, scriptedInput(branch))
		if r != results[i] {
			t.Fatalf("Replayed frame %d: result %+v, want %+v", i, r, results[i])
		}
	}
	if got := e.Snapshot(); !reflect.DeepEqual(got, final) {
		t.Fatalf("Replayed final snapshot differs:\n%+v\n%+v", got, final)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	e := New("guideline", 17)
	clone := e.Clone()

	if !reflect.DeepEqual(e.Snapshot(), clone.Snapshot()) {
		t.Fatal("Clone snapshot differs from original")
	}

	// Stepping the clone must not affect the original.
	before := e.Snapshot()
	for i := 0; i < 60; i++ {
		clone.Update(core.FrameMs, core.Input{SoftDrop: true})
	}
	if !reflect.DeepEqual(e.Snapshot(), before) {
		t.Fatal("Stepping a clone mutated the original engine")
	}
}

// verticalI returns an I piece in its vertical rotation whose cells
// occupy the given column, starting at row y.
func verticalI(column, y int) Piece {
	return Piece{Type: PieceI, Rotation: 1, X: column - 2, Y: y}
}

func TestLineClearShiftsRowsDown(t *testing.T) {
	e := New("guideline", 1)

	// Bottom row missing only column 9; row 1 holds a recognizable pattern.
	e.board = Board{}
	e.board[0] = fullRow &^ (1 << 9)
	e.board[1] = 0b0000000011

	p := verticalI(9, 10)
	e.current = &p
	res := e.Update(core.FrameMs, core.Input{HardDrop: true})

	if res.Kind != ResultLinesCleared || res.Lines != 1 {
		t.Fatalf("Result = %+v, want exactly 1 line cleared", res)
	}
	if res.TSpin {
		t.Error("I-piece clear flagged as T-spin")
	}
	// Former row 1 contents now occupy row 0, plus the remainder of the
	// I piece in column 9.
	wantRow0 := uint16(0b0000000011 | 1<<9)
	if e.board[0] != wantRow0 {
		t.Errorf("Row 0 after clear = %010b, want %010b", e.board[0], wantRow0)
	}
}

func TestTetrisBackToBackBonus(t *testing.T) {
	setupTetris := func(e *Engine) {
		for y := 0; y < 4; y++ {
			e.board[y] = fullRow &^ (1 << 9)
		}
		p := verticalI(9, 0)
		e.current = &p
	}

	e := New("guideline", 1)
	e.board = Board{}

	setupTetris(e)
	res := e.lockPiece()
	if res.Lines != 4 {
		t.Fatalf("First clear: %d lines, want 4", res.Lines)
	}
	first := e.score // 800 base, no back-to-back, no combo bonus yet
	if first != 800 {
		t.Fatalf("First tetris scored %d, want 800", first)
	}
	if e.backToBack != 1 {
		t.Fatalf("backToBack = %d after first tetris, want 1", e.backToBack)
	}

	setupTetris(e)
	res = e.lockPiece()
	if res.Lines != 4 {
		t.Fatalf("Second clear: %d lines, want 4", res.Lines)
	}
	// Base 800 inflated by the 1.5x back-to-back multiplier, plus the
	// combo bonus 50 * 1 * level.
	second := e.score - first
	want := 800*3/2 + 50
	if second != want {
		t.Errorf("Second consecutive tetris scored %d, want %d", second, want)
	}
}

func TestBackToBackResetsOnOrdinaryClear(t *testing.T) {
	e := New("guideline", 1)
	e.board = Board{}

	for y := 0; y < 4; y++ {
		e.board[y] = fullRow &^ (1 << 9)
	}
	p := verticalI(9, 0)
	e.current = &p
	e.lockPiece()
	if e.backToBack != 1 {
		t.Fatalf("backToBack = %d, want 1", e.backToBack)
	}

	// A single-line clear is not a difficult clear.
	e.board = Board{}
	e.board[0] = fullRow &^ (1 << 9)
	q := verticalI(9, 0)
	e.current = &q
	e.lockPiece()
	if e.backToBack != 0 {
		t.Errorf("backToBack = %d after single clear, want 0", e.backToBack)
	}
}

func TestTSpinCornerDetection(t *testing.T) {
	e := New("guideline", 1)
	e.board = Board{}

	// Three of the four corners of the T's 3x3 footprint occupied.
	e.board[0] |= 1 << 0
	e.board[0] |= 1 << 2
	e.board[2] |= 1 << 0

	p := Piece{Type: PieceT, Rotation: 2, X: 0, Y: 0}
	e.current = &p
	res := e.lockPiece()

	if !res.TSpin {
		t.Fatal("Placement with 3 blocked corners not classified as T-spin")
	}
	if res.Kind != ResultLinesCleared {
		t.Errorf("T-spin result kind = %v, want ResultLinesCleared", res.Kind)
	}
	// T-spin base score with 0 lines at level 1.
	if e.score != 400 {
		t.Errorf("Zero-line T-spin scored %d, want 400", e.score)
	}
}

func TestNonTPieceNeverTSpins(t *testing.T) {
	e := New("guideline", 1)
	e.board = Board{}
	e.board[0] |= 1<<0 | 1<<2
	e.board[2] |= 1<<0 | 1<<2

	p := Piece{Type: PieceS, Rotation: 0, X: 0, Y: 0}
	if e.isTSpin(p) {
		t.Error("S piece classified as T-spin")
	}
}

func TestWallKickAgainstLeftWall(t *testing.T) {
	e := New("guideline", 1)
	e.board = Board{}

	// Vertical I hugging the left wall: a plain rotation would leave the
	// board, the (+2, 0) kick makes it fit.
	p := verticalI(0, 5)
	e.current = &p
	e.tryRotate()

	if e.current.Rotation != 2 {
		t.Fatalf("Rotation = %d, want 2 (kicked rotation accepted)", e.current.Rotation)
	}
	for _, c := range e.current.Cells() {
		if c.X < 0 || c.X >= BoardWidth {
			t.Errorf("Kicked piece cell out of bounds: %+v", c)
		}
	}
}

func TestRotationRejectedWhenNoKickFits(t *testing.T) {
	e := New("guideline", 1)
	e.board = Board{}
	// Wall in every cell except the vertical I's own column and its kick
	// landing spots.
	for y := 0; y < BoardHeight; y++ {
		e.board[y] = fullRow &^ (1 << 4)
	}

	p := verticalI(4, 5)
	e.current = &p
	before := *e.current
	e.tryRotate()

	if *e.current != before {
		t.Errorf("Rotation accepted inside a one-cell well: %+v", *e.current)
	}
}

func TestDASAndARRTiming(t *testing.T) {
	e := New("guideline", 1)
	e.board = Board{}
	p := Piece{Type: PieceO, Rotation: 0, X: 0, Y: 30}
	e.current = &p
	startX := e.current.X

	in := core.Input{Right: true}

	// First frame: immediate single-cell move.
	e.Update(core.FrameMs, in)
	if e.current.X != startX+1 {
		t.Fatalf("X = %d after first frame, want %d", e.current.X, startX+1)
	}

	// No repeat until DAS (167ms) has charged.
	for i := 0; i < 9; i++ {
		e.Update(core.FrameMs, in)
	}
	if e.current.X != startX+1 {
		t.Fatalf("X = %d during DAS charge, want %d", e.current.X, startX+1)
	}

	// Once DAS has elapsed, ARR (33ms) repeats roughly every 2 frames.
	for i := 0; i < 6; i++ {
		e.Update(core.FrameMs, in)
	}
	if e.current.X <= startX+1 {
		t.Errorf("X = %d after DAS elapsed, want repeated movement", e.current.X)
	}

	// Releasing resets both timers: next opposite press moves immediately.
	e.Update(core.FrameMs, core.Input{})
	beforeLeft := e.current.X
	e.Update(core.FrameMs, core.Input{Left: true})
	if e.current.X != beforeLeft-1 {
		t.Errorf("X = %d after fresh left press, want %d", e.current.X, beforeLeft-1)
	}
}

func TestHardDropScoresAndLocks(t *testing.T) {
	e := New("guideline", 1)
	e.board = Board{}
	p := Piece{Type: PieceO, Rotation: 0, X: 4, Y: 20}
	e.current = &p

	// O template cells sit at cy 1..2, so the drop distance to the floor
	// is 21 cells.
	e.Update(core.FrameMs, core.Input{HardDrop: true})

	if e.current != nil {
		t.Fatal("Piece still active after hard drop")
	}
	if e.score != 2*21 {
		t.Errorf("Hard drop scored %d, want %d", e.score, 2*21)
	}
	if e.board[0] == 0 {
		t.Error("Piece not merged at the bottom after hard drop")
	}
}

func TestHoldSingleUse(t *testing.T) {
	e := New("guideline", 99)
	first := e.current.Type

	e.Update(core.FrameMs, core.Input{Hold: true})
	if e.hold == nil || *e.hold != first {
		t.Fatalf("Held piece = %v, want %s", e.hold, first)
	}
	swapped := e.current.Type

	// Second hold before any lock must have no effect.
	e.Update(core.FrameMs, core.Input{Hold: true})
	if e.current.Type != swapped {
		t.Fatalf("Second hold swapped the piece: %s -> %s", swapped, e.current.Type)
	}
	if *e.hold != first {
		t.Fatalf("Second hold changed the held piece to %s", *e.hold)
	}

	// Locking re-arms hold for the next piece.
	e.Update(core.FrameMs, core.Input{HardDrop: true})
	e.Update(core.FrameMs, core.Input{}) // spawn
	if !e.canHold {
		t.Error("Hold not available again after lock and spawn")
	}
	prev := e.current.Type
	e.Update(core.FrameMs, core.Input{Hold: true})
	if e.current.Type != first {
		t.Errorf("Hold after re-arm gave %s, want previously held %s", e.current.Type, first)
	}
	if *e.hold != prev {
		t.Errorf("Held piece = %s, want %s", *e.hold, prev)
	}
}

func TestGameOverIdempotence(t *testing.T) {
	e := New("guideline", 1)

	// Block the spawn cells without completing any row.
	for y := 19; y < 24; y++ {
		e.board[y] |= 0b0001111000
	}
	e.current = nil
	e.spawnMs = 0

	res := e.Update(core.FrameMs, core.Input{})
	if res.Kind != ResultGameOver {
		t.Fatalf("Blocked spawn returned %v, want ResultGameOver", res.Kind)
	}
	if !e.gameOver {
		t.Fatal("gameOver flag not set")
	}

	frozen := e.Snapshot()
	inputs := []core.Input{
		{HardDrop: true},
		{Left: true, Rotate: true},
		{Hold: true, SoftDrop: true},
	}
	for _, in := range inputs {
		if res := e.Update(core.FrameMs, in); res.Kind != ResultGameOver {
			t.Fatalf("Post-game-over update returned %v", res.Kind)
		}
	}
	if !reflect.DeepEqual(e.Snapshot(), frozen) {
		t.Error("State changed after game over")
	}
}

func TestGarbageAppliedOnLock(t *testing.T) {
	e := New("guideline", 1)
	e.board = Board{}
	e.board[0] = 0b0000000011 // existing stack

	e.EnqueueGarbage(3)
	if e.pendingGarbage != 3 {
		t.Fatalf("pendingGarbage = %d, want 3", e.pendingGarbage)
	}

	p := Piece{Type: PieceO, Rotation: 0, X: 4, Y: 20}
	e.current = &p
	e.Update(core.FrameMs, core.Input{HardDrop: true})

	if e.pendingGarbage != 0 {
		t.Errorf("pendingGarbage = %d after lock, want 0", e.pendingGarbage)
	}
	for y := 0; y < 3; y++ {
		ones := 0
		for x := 0; x < BoardWidth; x++ {
			if e.board[y]&(1<<x) != 0 {
				ones++
			}
		}
		if ones != BoardWidth-1 {
			t.Errorf("Garbage row %d has %d filled cells, want %d", y, ones, BoardWidth-1)
		}
	}
	// The old stack shifted up above the garbage.
	if e.board[3]&0b0000000011 != 0b0000000011 {
		t.Errorf("Original stack not shifted above garbage: row 3 = %010b", e.board[3])
	}
}

func TestGarbageCapPerSend(t *testing.T) {
	e := New("guideline", 1)
	e.EnqueueGarbage(50)
	if e.pendingGarbage != maxGarbagePerSend {
		t.Errorf("pendingGarbage = %d, want cap %d", e.pendingGarbage, maxGarbagePerSend)
	}
}

func TestUnknownPresetFallsBack(t *testing.T) {
	e := New("no-such-ruleset", 1)
	if e.preset.Name != "guideline" {
		t.Errorf("Preset = %q, want guideline fallback", e.preset.Name)
	}
}

func TestDirtyRowsDrainOnRead(t *testing.T) {
	e := New("guideline", 1)
	e.board = Board{}
	p := Piece{Type: PieceO, Rotation: 0, X: 4, Y: 20}
	e.current = &p
	e.dirtyRows = make(map[int]struct{})

	e.Update(core.FrameMs, core.Input{HardDrop: true})

	rows := e.DirtyRows()
	if len(rows) == 0 {
		t.Fatal("No dirty rows after a lock")
	}
	if again := e.DirtyRows(); len(again) != 0 {
		t.Errorf("Second drain returned %d rows, want 0", len(again))
	}
}

func TestLevelDerivedFromLines(t *testing.T) {
	cases := []struct {
		lines, level int
	}{
		{0, 1}, {9, 1}, {10, 2}, {45, 5}, {139, 14}, {140, 15}, {500, 15},
	}
	for _, c := range cases {
		if got := levelForLines(c.lines); got != c.level {
			t.Errorf("levelForLines(%d) = %d, want %d", c.lines, got, c.level)
		}
	}
}
