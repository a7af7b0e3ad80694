package blocks

// Board dimensions: 10 columns, 40 rows of which the top 20 are a hidden
// buffer. Row 0 is the bottom of the stack; increasing index moves up.
const (
	BoardWidth    = 10
	BoardHeight   = 40
	VisibleHeight = 20

	// fullRow is the 10-bit all-ones mask marking a clearable row.
	fullRow = 1<<BoardWidth - 1
)

// Board is the playfield, one bitmask per row. Bit x set means column x
// is occupied; only the low 10 bits of each row are meaningful.
type Board [BoardHeight]uint16

// Occupied reports whether the cell at (x, y) is filled.
// Columns outside the board and rows below 0 read as occupied (walls and
// floor); rows at or above the top read as open.
func (b *Board) Occupied(x, y int) bool {
	if x < 0 || x >= BoardWidth {
		return true
	}
	if y < 0 || y >= BoardHeight {
		return y < 0
	}
	return b[y]&(1<<x) != 0
}

// CanPlace reports whether the piece fits: every template cell must be in
// horizontal bounds, at or above the floor, and unoccupied. Cells at
// y >= 40 are treated as open; that region is not reachable in normal
// play but kick probing may briefly test it.
func (b *Board) CanPlace(p Piece) bool {
	for _, c := range p.Cells() {
		if c.X < 0 || c.X >= BoardWidth || c.Y < 0 {
			return false
		}
		if c.Y < BoardHeight && b[c.Y]&(1<<c.X) != 0 {
			return false
		}
	}
	return true
}

// Merge writes the piece into the board. Cells above the top row are
// dropped silently.
func (b *Board) Merge(p Piece) {
	for _, c := range p.Cells() {
		if c.Y >= 0 && c.Y < BoardHeight {
			b[c.Y] |= 1 << c.X
		}
	}
}

// FullRows returns the indices of completely filled rows, bottom to top.
func (b *Board) FullRows() []int {
	var rows []int
	for y := 0; y < BoardHeight; y++ {
		if b[y] == fullRow {
			rows = append(rows, y)
		}
	}
	return rows
}

// ClearRows removes the given rows (which must be sorted bottom to top)
// and shifts everything above each cleared row down by one. Clearing from
// the top down keeps lower indices valid while iterating.
func (b *Board) ClearRows(rows []int) {
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		for y := row; y < BoardHeight-1; y++ {
			b[y] = b[y+1]
		}
		b[BoardHeight-1] = 0
	}
}

// InsertGarbageRow shifts the whole stack up one row and writes a garbage
// row at the bottom: all columns filled except the gap column. Content
// shifted past the top row is lost.
func (b *Board) InsertGarbageRow(gap int) {
	for y := BoardHeight - 1; y > 0; y-- {
		b[y] = b[y-1]
	}
	b[0] = fullRow &^ (1 << gap)
}
