package blocks

import (
	"github.com/vovakirdan/tui-blocks/internal/config"
	"github.com/vovakirdan/tui-blocks/internal/core"
)

// QueueLength is the fixed lookahead shown to the player.
const QueueLength = 5

// maxGarbagePerSend caps a single garbage injection.
const maxGarbagePerSend = 10

// ResultKind discriminates the per-frame outcome of Update.
type ResultKind int

const (
	// ResultContinue means the frame advanced with nothing notable.
	ResultContinue ResultKind = iota
	// ResultLinesCleared means a piece locked and cleared lines (or
	// scored a T-spin) this frame.
	ResultLinesCleared
	// ResultGameOver means the engine is terminal; every further Update
	// returns this without advancing state.
	ResultGameOver
)

// Result is what Update reports for one frame. Gameplay outcomes are
// values, never errors: the caller checks Kind every frame.
type Result struct {
	Kind  ResultKind
	Lines int
	TSpin bool
}

// Engine owns one player's board, pieces, timers and score. It is stepped
// once per fixed logical frame and is exclusively owned by its caller;
// the netcode coordinator clones engines rather than sharing them.
type Engine struct {
	preset config.Preset
	rng    *core.SeededRNG

	board   Board
	current *Piece
	queue   []PieceType
	bag     []PieceType
	hold    *PieceType
	canHold bool

	score      int
	lines      int
	level      int
	combo      int
	backToBack int

	pendingGarbage int

	lockMs    float64
	gravityMs float64
	dasMs     float64
	arrMs     float64
	spawnMs   float64 // remaining spawn/line-clear delay
	holdDir   int     // -1 left, +1 right, 0 neutral

	gameOver  bool
	elapsedMs float64

	dirtyRows map[int]struct{}
}

// New constructs an engine: empty playfield, RNG seeded, bag filled,
// lookahead populated and the first piece spawned. An unknown preset name
// silently falls back to the guideline preset; both sides of a match must
// agree on the name for reproducibility.
func New(presetName string, seed uint32) *Engine {
	e := &Engine{
		preset:    config.LoadPreset(presetName),
		rng:       core.NewSeededRNG(seed),
		level:     1,
		dirtyRows: make(map[int]struct{}),
	}
	e.queue = make([]PieceType, QueueLength)
	for i := range e.queue {
		e.queue[i] = e.drawPiece()
	}
	e.spawn()
	return e
}

// Preset returns the active ruleset.
func (e *Engine) Preset() config.Preset {
	return e.preset
}

// spawn takes the next piece from the queue and places it at the spawn
// position. A blocked spawn is the sole game-ending condition.
func (e *Engine) spawn() {
	p := SpawnPiece(e.nextFromQueue())
	if !e.board.CanPlace(p) {
		e.gameOver = true
		return
	}
	e.current = &p
	e.canHold = true
	e.lockMs = 0
	e.gravityMs = 0
}

// Update advances the simulation by one logical frame. It must be called
// once per tick with the button state held during that frame; dtMs is
// nominally core.FrameMs.
func (e *Engine) Update(dtMs float64, in core.Input) Result {
	if e.gameOver {
		return Result{Kind: ResultGameOver}
	}

	e.elapsedMs += dtMs

	// Spawn a piece if none is active, honoring spawn delay.
	if e.current == nil {
		if e.spawnMs > 0 {
			e.spawnMs -= dtMs
			if e.spawnMs > 0 {
				return Result{Kind: ResultContinue}
			}
			e.spawnMs = 0
		}
		e.spawn()
		if e.gameOver {
			return Result{Kind: ResultGameOver}
		}
	}

	if in.Rotate {
		e.tryRotate()
	}
	if in.Hold && e.canHold {
		e.holdPiece()
	}

	e.stepHorizontal(dtMs, in)

	hardDrop := false
	if in.HardDrop {
		e.hardDrop()
		hardDrop = true
	}

	e.stepGravity(dtMs, in.SoftDrop)

	return e.stepLock(dtMs, hardDrop)
}

// tryRotate attempts a clockwise rotation with wall-kick resolution: the
// unkicked origin first, then the fixed offset list for the piece class.
// If no offset fits the rotation is rejected and the piece is unchanged.
func (e *Engine) tryRotate() {
	rotated := e.current.Rotated()
	for _, k := range kickOffsets(*e.current) {
		candidate := rotated.Moved(k.X, k.Y)
		if e.board.CanPlace(candidate) {
			e.acceptMove(candidate)
			return
		}
	}
}

// holdPiece swaps the active piece with the held one, or stashes it and
// pulls from the queue when nothing is held. Allowed once per spawn.
func (e *Engine) holdPiece() {
	held := e.current.Type
	if e.hold != nil {
		p := SpawnPiece(*e.hold)
		e.current = &p
	} else {
		p := SpawnPiece(e.nextFromQueue())
		e.current = &p
	}
	e.hold = &held
	e.canHold = false
	e.lockMs = 0
	e.gravityMs = 0
}

// stepHorizontal applies DAS/ARR movement. A fresh direction moves one
// cell immediately and resets both timers; holding the same direction
// charges DAS, after which each ARR expiry attempts another cell.
func (e *Engine) stepHorizontal(dtMs float64, in core.Input) {
	dir := 0
	if in.Left {
		dir = -1
	} else if in.Right {
		dir = 1
	}

	switch {
	case dir == 0:
		e.holdDir = 0
		e.dasMs = 0
		e.arrMs = 0
	case dir != e.holdDir:
		e.tryShift(dir)
		e.holdDir = dir
		e.dasMs = 0
		e.arrMs = 0
	default:
		e.dasMs += dtMs
		if e.dasMs >= e.preset.DASMs {
			e.arrMs += dtMs
			if e.arrMs >= e.preset.ARRMs {
				e.tryShift(dir)
				e.arrMs = 0
			}
		}
	}
}

// tryShift attempts a one-cell horizontal move.
func (e *Engine) tryShift(dir int) {
	candidate := e.current.Moved(dir, 0)
	if e.board.CanPlace(candidate) {
		e.acceptMove(candidate)
	}
}

// acceptMove replaces the current piece and, if the piece is grounded,
// resets the lock timer. Repeated rotations in place therefore delay
// locking indefinitely; that matches the intended ruleset.
func (e *Engine) acceptMove(p Piece) {
	*e.current = p
	if e.grounded() {
		e.lockMs = 0
	}
}

// grounded reports whether the piece cannot fall one more cell.
func (e *Engine) grounded() bool {
	return !e.board.CanPlace(e.current.Moved(0, -1))
}

// hardDrop relocates the piece to its landing position, awarding 2 points
// per cell fallen. Lock evaluation is forced this same frame.
func (e *Engine) hardDrop() {
	distance := 0
	for e.board.CanPlace(e.current.Moved(0, -(distance + 1))) {
		distance++
	}
	if distance > 0 {
		*e.current = e.current.Moved(0, -distance)
		e.score += 2 * distance
	}
}

// stepGravity advances the gravity accumulator and drops the piece one
// cell when the interval elapses. Soft drop divides the interval. The
// accumulator resets whether or not the fall succeeded.
func (e *Engine) stepGravity(dtMs float64, softDrop bool) {
	interval := e.preset.GravityInterval(e.level)
	if softDrop {
		interval /= e.preset.SoftDropFactor
	}
	e.gravityMs += dtMs
	if e.gravityMs >= interval {
		candidate := e.current.Moved(0, -1)
		if e.board.CanPlace(candidate) {
			*e.current = candidate
		}
		e.gravityMs = 0
	}
}

// stepLock runs lock-delay evaluation: grounded frames accumulate the
// lock timer; expiry or a hard drop locks the piece.
func (e *Engine) stepLock(dtMs float64, hardDrop bool) Result {
	if !e.grounded() {
		e.lockMs = 0
		return Result{Kind: ResultContinue}
	}
	e.lockMs += dtMs
	if hardDrop || e.lockMs >= e.preset.LockDelayMs {
		return e.lockPiece()
	}
	return Result{Kind: ResultContinue}
}

// lockPiece fixes the piece into the board, evaluates T-spin, clears full
// rows, updates score and counters, applies pending garbage and clears
// the active piece.
func (e *Engine) lockPiece() Result {
	piece := *e.current
	tspin := e.isTSpin(piece)

	e.board.Merge(piece)
	for _, c := range piece.Cells() {
		e.markDirty(c.Y)
	}

	rows := e.board.FullRows()
	cleared := len(rows)
	if cleared > 0 {
		e.board.ClearRows(rows)
		e.markDirtyFrom(rows[0])
	}

	e.applyScore(cleared, tspin)

	if e.pendingGarbage > 0 {
		e.applyGarbage()
	}

	e.current = nil
	e.lockMs = 0
	e.spawnMs = e.preset.SpawnDelayMs
	if cleared > 0 {
		e.spawnMs += e.preset.LineClearDelayMs
	}

	if cleared > 0 || tspin {
		return Result{Kind: ResultLinesCleared, Lines: cleared, TSpin: tspin}
	}
	return Result{Kind: ResultContinue}
}

// isTSpin applies the simplified corner test: for a T piece, at least 3
// of the 4 corners of its 3x3 footprint must be occupied or out of
// bounds. This deliberately skips the mini distinction and does not
// require the last action to have been a rotation.
func (e *Engine) isTSpin(p Piece) bool {
	if p.Type != PieceT {
		return false
	}
	corners := [4]Cell{{0, 0}, {2, 0}, {0, 2}, {2, 2}}
	blocked := 0
	for _, c := range corners {
		x, y := p.X+c.X, p.Y+c.Y
		if x < 0 || x >= BoardWidth || y < 0 || e.board.Occupied(x, y) {
			blocked++
		}
	}
	return blocked >= 3
}

// applyScore updates score, combo, back-to-back and level after a lock.
func (e *Engine) applyScore(cleared int, tspin bool) {
	if cleared == 0 && !tspin {
		e.combo = 0
		return
	}

	var base int
	if tspin {
		idx := cleared
		if idx > 3 {
			idx = 3
		}
		base = e.preset.TSpinScoreTable[idx]
	} else {
		base = e.preset.ScoreTable[cleared]
	}
	points := base * e.level

	difficult := cleared == 4 || (tspin && cleared > 0)
	switch {
	case difficult:
		if e.backToBack > 0 {
			points = points * 3 / 2
		}
		e.backToBack++
	case cleared > 0:
		e.backToBack = 0
	}

	if cleared > 0 {
		points += 50 * e.combo * e.level
		e.combo++
		e.lines += cleared
		e.level = levelForLines(e.lines)
	} else {
		e.combo = 0
	}

	e.score += points
}

// levelForLines derives the level from cumulative lines; it never
// decreases and caps at 15.
func levelForLines(lines int) int {
	level := lines/10 + 1
	if level > 15 {
		level = 15
	}
	return level
}

// EnqueueGarbage queues n garbage lines against this engine, capped at 10
// per call. The lines materialize at the bottom of the board when the
// current piece locks, each with a gap column drawn from the engine RNG.
func (e *Engine) EnqueueGarbage(n int) {
	if n <= 0 {
		return
	}
	if n > maxGarbagePerSend {
		n = maxGarbagePerSend
	}
	e.pendingGarbage += n
}

// PendingGarbage returns the number of queued garbage lines.
func (e *Engine) PendingGarbage() int {
	return e.pendingGarbage
}

func (e *Engine) applyGarbage() {
	for i := 0; i < e.pendingGarbage; i++ {
		e.board.InsertGarbageRow(e.rng.NextInt(BoardWidth))
	}
	e.pendingGarbage = 0
	e.markDirtyFrom(0)
}

// markDirty records a touched row for the renderer.
func (e *Engine) markDirty(y int) {
	if y >= 0 && y < BoardHeight {
		e.dirtyRows[y] = struct{}{}
	}
}

// markDirtyFrom marks every row at or above y.
func (e *Engine) markDirtyFrom(y int) {
	for ; y < BoardHeight; y++ {
		e.dirtyRows[y] = struct{}{}
	}
}

// DirtyRows returns the rows changed since the last call and clears the
// tracking set. This is a one-shot read: a second call returns nothing
// until more rows change. Consuming it is optional and has no effect on
// simulation correctness.
func (e *Engine) DirtyRows() []int {
	if len(e.dirtyRows) == 0 {
		return nil
	}
	rows := make([]int, 0, len(e.dirtyRows))
	for y := range e.dirtyRows {
		rows = append(rows, y)
	}
	e.dirtyRows = make(map[int]struct{})
	return rows
}

// --- Read accessors for rendering and validation ---

// Row returns the bitmask for one board row.
func (e *Engine) Row(y int) uint16 {
	if y < 0 || y >= BoardHeight {
		return 0
	}
	return e.board[y]
}

// CurrentPiece returns the active piece, or nil between lock and spawn.
func (e *Engine) CurrentPiece() *Piece {
	if e.current == nil {
		return nil
	}
	p := *e.current
	return &p
}

// GhostPiece returns where the active piece would land on a hard drop,
// or nil between lock and spawn.
func (e *Engine) GhostPiece() *Piece {
	if e.current == nil {
		return nil
	}
	g := *e.current
	for {
		next := g.Moved(0, -1)
		if !e.board.CanPlace(next) {
			break
		}
		g = next
	}
	return &g
}

// NextQueue returns a copy of the lookahead queue.
func (e *Engine) NextQueue() []PieceType {
	out := make([]PieceType, len(e.queue))
	copy(out, e.queue)
	return out
}

// HoldPiece returns the held piece type, or nil.
func (e *Engine) HoldPiece() *PieceType {
	if e.hold == nil {
		return nil
	}
	t := *e.hold
	return &t
}

// CanHold reports whether hold is currently available.
func (e *Engine) CanHold() bool {
	return e.canHold
}

// Score returns the current score.
func (e *Engine) Score() int { return e.score }

// Lines returns cumulative lines cleared.
func (e *Engine) Lines() int { return e.lines }

// Level returns the current level.
func (e *Engine) Level() int { return e.level }

// Combo returns the current combo streak.
func (e *Engine) Combo() int { return e.combo }

// BackToBack returns the current back-to-back streak.
func (e *Engine) BackToBack() int { return e.backToBack }

// GameOver reports whether the engine is terminal.
func (e *Engine) GameOver() bool { return e.gameOver }

// ElapsedMs returns simulated wall-clock-equivalent time.
func (e *Engine) ElapsedMs() float64 { return e.elapsedMs }
