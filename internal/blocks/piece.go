// Package blocks implements the deterministic falling-block engine: board
// state, piece movement, wall kicks, line clears, scoring and exact
// snapshot round-trips. Same seed plus same input sequence produces an
// identical engine on every platform; the netcode package depends on that.
package blocks

// PieceType identifies one of the seven tetromino variants.
type PieceType int

const (
	PieceI PieceType = iota
	PieceO
	PieceT
	PieceS
	PieceZ
	PieceJ
	PieceL
	pieceCount = 7
)

// String returns the canonical one-letter name.
func (t PieceType) String() string {
	switch t {
	case PieceI:
		return "I"
	case PieceO:
		return "O"
	case PieceT:
		return "T"
	case PieceS:
		return "S"
	case PieceZ:
		return "Z"
	case PieceJ:
		return "J"
	case PieceL:
		return "L"
	default:
		return "?"
	}
}

// Cell is an offset within a piece template. Y grows upward, matching
// board coordinates (row 0 is the bottom of the stack).
type Cell struct {
	X, Y int
}

// Piece is the active tetromino: type, rotation state 0-3 and the board
// position of its template origin. Pieces are value types replaced
// wholesale on every accepted move, which keeps snapshotting trivial.
type Piece struct {
	Type     PieceType
	Rotation int
	X, Y     int
}

// Spawn origin. Template cells land in the hidden buffer just above the
// visible 20 rows.
const (
	spawnX = 3
	spawnY = 19
)

// SpawnPiece returns a piece of the given type at the spawn position.
func SpawnPiece(t PieceType) Piece {
	return Piece{Type: t, Rotation: 0, X: spawnX, Y: spawnY}
}

// Cells returns the four absolute board cells the piece occupies.
func (p Piece) Cells() [4]Cell {
	cells := shapeTable[p.Type][p.Rotation&3]
	for i := range cells {
		cells[i].X += p.X
		cells[i].Y += p.Y
	}
	return cells
}

// Rotated returns the piece advanced one rotation state clockwise, at the
// same origin. Kick offsets are applied by the engine.
func (p Piece) Rotated() Piece {
	p.Rotation = (p.Rotation + 1) & 3
	return p
}

// Moved returns the piece translated by (dx, dy).
func (p Piece) Moved(dx, dy int) Piece {
	p.X += dx
	p.Y += dy
	return p
}

// shapeTable holds the static (type, rotation) -> template mapping,
// built once at process start from the spawn orientations.
var shapeTable [pieceCount][4][4]Cell

// spawnShapes are the rotation-0 templates. JLSTZ rotate inside a 3x3
// box, I inside 4x4, O never changes.
var spawnShapes = [pieceCount][4]Cell{
	PieceI: {{0, 2}, {1, 2}, {2, 2}, {3, 2}},
	PieceO: {{1, 1}, {2, 1}, {1, 2}, {2, 2}},
	PieceT: {{0, 1}, {1, 1}, {2, 1}, {1, 2}},
	PieceS: {{0, 1}, {1, 1}, {1, 2}, {2, 2}},
	PieceZ: {{0, 2}, {1, 2}, {1, 1}, {2, 1}},
	PieceJ: {{0, 2}, {0, 1}, {1, 1}, {2, 1}},
	PieceL: {{2, 2}, {0, 1}, {1, 1}, {2, 1}},
}

func rotateBoxSize(t PieceType) int {
	if t == PieceI || t == PieceO {
		return 4
	}
	return 3
}

// rotateCW rotates a template one step clockwise inside an n-sized box.
// With y growing upward, (x, y) maps to (y, n-1-x).
func rotateCW(cells [4]Cell, n int) [4]Cell {
	var out [4]Cell
	for i, c := range cells {
		out[i] = Cell{X: c.Y, Y: n - 1 - c.X}
	}
	return out
}

func init() {
	for t := PieceType(0); t < pieceCount; t++ {
		shapeTable[t][0] = spawnShapes[t]
		for r := 1; r < 4; r++ {
			if t == PieceO {
				// One effective rotation.
				shapeTable[t][r] = spawnShapes[t]
				continue
			}
			shapeTable[t][r] = rotateCW(shapeTable[t][r-1], rotateBoxSize(t))
		}
	}
}

// Wall kick tables (standard rotation system), indexed by the rotation
// state being left. The first entry is the unkicked origin; the first
// offset for which the rotated piece fits is accepted, otherwise the
// rotation is rejected.
var kickTableJLSTZ = [4][5]Cell{
	0: {{0, 0}, {-1, 0}, {-1, 1}, {0, -2}, {-1, -2}},
	1: {{0, 0}, {1, 0}, {1, -1}, {0, 2}, {1, 2}},
	2: {{0, 0}, {1, 0}, {1, 1}, {0, -2}, {1, -2}},
	3: {{0, 0}, {-1, 0}, {-1, -1}, {0, 2}, {-1, 2}},
}

var kickTableI = [4][5]Cell{
	0: {{0, 0}, {-2, 0}, {1, 0}, {-2, -1}, {1, 2}},
	1: {{0, 0}, {-1, 0}, {2, 0}, {-1, 2}, {2, -1}},
	2: {{0, 0}, {2, 0}, {-1, 0}, {2, 1}, {-1, -2}},
	3: {{0, 0}, {1, 0}, {-2, 0}, {1, -2}, {-2, 1}},
}

// kickOffsets returns the ordered kick attempts for rotating the piece
// clockwise out of its current state.
func kickOffsets(p Piece) [5]Cell {
	if p.Type == PieceI {
		return kickTableI[p.Rotation&3]
	}
	// O never needs kicks; its table is all-zero beyond the first try,
	// sharing the JLSTZ entries is harmless because the rotated shape is
	// identical to the original.
	return kickTableJLSTZ[p.Rotation&3]
}
