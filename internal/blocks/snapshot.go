package blocks

import (
	"github.com/vovakirdan/tui-blocks/internal/config"
	"github.com/vovakirdan/tui-blocks/internal/core"
)

// Snapshot is a fully self-contained, serializable copy of engine state.
// Restoring it reproduces the engine exactly: subsequent Update calls are
// bit-identical to an engine that never rolled back.
type Snapshot struct {
	Preset string              `json:"preset"`
	Board  [BoardHeight]uint16 `json:"board"`

	HasCurrent      bool      `json:"hasCurrent"`
	CurrentType     PieceType `json:"currentType"`
	CurrentRotation int       `json:"currentRotation"`
	CurrentX        int       `json:"currentX"`
	CurrentY        int       `json:"currentY"`

	Queue []PieceType `json:"queue"`
	Bag   []PieceType `json:"bag"`

	HasHold  bool      `json:"hasHold"`
	HoldType PieceType `json:"holdType"`
	CanHold  bool      `json:"canHold"`

	Score      int `json:"score"`
	Lines      int `json:"lines"`
	Level      int `json:"level"`
	Combo      int `json:"combo"`
	BackToBack int `json:"backToBack"`

	PendingGarbage int `json:"pendingGarbage"`

	LockMs    float64 `json:"lockMs"`
	GravityMs float64 `json:"gravityMs"`
	DASMs     float64 `json:"dasMs"`
	ARRMs     float64 `json:"arrMs"`
	SpawnMs   float64 `json:"spawnMs"`
	HoldDir   int     `json:"holdDir"`

	GameOver  bool    `json:"gameOver"`
	ElapsedMs float64 `json:"elapsedMs"`
	RNGState  uint32  `json:"rngState"`
}

// Snapshot captures the complete engine state. The copy shares nothing
// with the engine; queues and the bag are duplicated.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Preset:         e.preset.Name,
		Board:          e.board,
		Queue:          append([]PieceType(nil), e.queue...),
		Bag:            append([]PieceType(nil), e.bag...),
		CanHold:        e.canHold,
		Score:          e.score,
		Lines:          e.lines,
		Level:          e.level,
		Combo:          e.combo,
		BackToBack:     e.backToBack,
		PendingGarbage: e.pendingGarbage,
		LockMs:         e.lockMs,
		GravityMs:      e.gravityMs,
		DASMs:          e.dasMs,
		ARRMs:          e.arrMs,
		SpawnMs:        e.spawnMs,
		HoldDir:        e.holdDir,
		GameOver:       e.gameOver,
		ElapsedMs:      e.elapsedMs,
		RNGState:       e.rng.State(),
	}
	if e.current != nil {
		s.HasCurrent = true
		s.CurrentType = e.current.Type
		s.CurrentRotation = e.current.Rotation
		s.CurrentX = e.current.X
		s.CurrentY = e.current.Y
	}
	if e.hold != nil {
		s.HasHold = true
		s.HoldType = *e.hold
	}
	return s
}

// Restore loads every field from a snapshot, including RNG state and bag
// contents. The preset is reloaded by name only when it differs from the
// active one.
func (e *Engine) Restore(s Snapshot) {
	if e.preset.Name != s.Preset {
		e.preset = config.LoadPreset(s.Preset)
	}
	e.board = s.Board
	if s.HasCurrent {
		p := Piece{Type: s.CurrentType, Rotation: s.CurrentRotation, X: s.CurrentX, Y: s.CurrentY}
		e.current = &p
	} else {
		e.current = nil
	}
	e.queue = append([]PieceType(nil), s.Queue...)
	e.bag = append([]PieceType(nil), s.Bag...)
	if s.HasHold {
		t := s.HoldType
		e.hold = &t
	} else {
		e.hold = nil
	}
	e.canHold = s.CanHold
	e.score = s.Score
	e.lines = s.Lines
	e.level = s.Level
	e.combo = s.Combo
	e.backToBack = s.BackToBack
	e.pendingGarbage = s.PendingGarbage
	e.lockMs = s.LockMs
	e.gravityMs = s.GravityMs
	e.dasMs = s.DASMs
	e.arrMs = s.ARRMs
	e.spawnMs = s.SpawnMs
	e.holdDir = s.HoldDir
	e.gameOver = s.GameOver
	e.elapsedMs = s.ElapsedMs
	if e.rng == nil {
		e.rng = core.NewSeededRNG(s.RNGState)
	} else {
		e.rng.SetState(s.RNGState)
	}

	// The whole board may have changed under the renderer.
	e.markDirtyFrom(0)
}

// Clone produces a deep, independent copy of the engine: fresh playfield,
// queues, piece and RNG.
func (e *Engine) Clone() *Engine {
	clone := &Engine{
		preset:    e.preset,
		rng:       e.rng.Clone(),
		dirtyRows: make(map[int]struct{}),
	}
	s := e.Snapshot()
	clone.Restore(s)
	return clone
}
