package game

import (
	"strings"
)

// Field is a fixed-size occupancy grid. Row 0 is the top row.
type Field struct {
	width  int
	height int
	cells  []bool // Row-major, width*height
}

// NewField returns an empty width x height field.
func NewField(width, height int) Field {
	if width <= 0 || height <= 0 {
		panic("field dimensions must be positive")
	}
	return Field{
		width:  width,
		height: height,
		cells:  make([]bool, width*height),
	}
}

// FieldFromRows builds a field from rows of '*' (occupied) and '.' (empty).
// All rows must have the same length.
func FieldFromRows(rows ...string) Field {
	if len(rows) == 0 {
		panic("field needs at least one row")
	}
	f := NewField(len(rows[0]), len(rows))
	for r, row := range rows {
		if len(row) != f.width {
			panic("field rows must have equal width")
		}
		for c, cell := range row {
			f.cells[r*f.width+c] = cell == '*'
		}
	}
	return f
}

// FieldFromMask builds a field whose cell (r, c) is occupied iff bit
// r*width+c of mask is set.
func FieldFromMask(width, height int, mask uint64) Field {
	f := NewField(width, height)
	for i := range f.cells {
		f.cells[i] = (mask>>i)&1 != 0
	}
	return f
}

func (f Field) Width() int {
	return f.width
}

func (f Field) Height() int {
	return f.height
}

// Occupied reports whether an in-bounds cell is filled.
func (f Field) Occupied(row, col int) bool {
	return f.cells[row*f.width+col]
}

// IsAvailable reports whether (row, col) is inside the field and empty.
func (f Field) IsAvailable(row, col int) bool {
	if row < 0 || row >= f.height {
		return false
	}
	if col < 0 || col >= f.width {
		return false
	}
	return !f.cells[row*f.width+col]
}

// Fits reports whether every cell of piece anchored at (row, col) with the
// given rotation is available.
func (f Field) Fits(piece Piece, row, col, rotation int) bool {
	for _, off := range piece.Offsets(rotation) {
		if !f.IsAvailable(row+off.Row, col+off.Col) {
			return false
		}
	}
	return true
}

// AddTromino occupies the cells of piece anchored at (row, col). It leaves the
// field untouched and returns false if any of those cells is unavailable.
func (f *Field) AddTromino(piece Piece, row, col, rotation int) bool {
	if !f.Fits(piece, row, col, rotation) {
		return false
	}
	for _, off := range piece.Offsets(rotation) {
		f.cells[(row+off.Row)*f.width+col+off.Col] = true
	}
	return true
}

// EmptyPositions lists the unoccupied cells in row-major order.
func (f Field) EmptyPositions() []Point {
	positions := make([]Point, 0, len(f.cells))
	for r := 0; r < f.height; r++ {
		for c := 0; c < f.width; c++ {
			if !f.cells[r*f.width+c] {
				positions = append(positions, Point{Row: r, Col: c})
			}
		}
	}
	return positions
}

func (f Field) Clone() Field {
	cells := make([]bool, len(f.cells))
	copy(cells, f.cells)
	return Field{
		width:  f.width,
		height: f.height,
		cells:  cells,
	}
}

// Equal reports whether both fields have the same dimensions and occupancy.
func (f Field) Equal(other Field) bool {
	if f.width != other.width || f.height != other.height {
		return false
	}
	for i, cell := range f.cells {
		if cell != other.cells[i] {
			return false
		}
	}
	return true
}

// Mask packs the occupancy into a bitmask, bit r*width+c for cell (r, c).
// The second result is false when the field has 64 cells or more.
func (f Field) Mask() (uint64, bool) {
	if len(f.cells) >= 64 {
		return 0, false
	}
	var mask uint64
	for i, cell := range f.cells {
		if cell {
			mask |= 1 << i
		}
	}
	return mask, true
}

// packed encodes the occupancy 8 cells per byte, for boards too large for Mask.
func (f Field) packed() string {
	buf := make([]byte, (len(f.cells)+7)/8)
	for i, cell := range f.cells {
		if cell {
			buf[i/8] |= 1 << (i % 8)
		}
	}
	return string(buf)
}

// ColumnHeights returns, per column, the distance from the floor to the top
// of the highest occupied cell.
func (f Field) ColumnHeights() []int {
	heights := make([]int, f.width)
	for c := 0; c < f.width; c++ {
		for r := 0; r < f.height; r++ {
			if f.cells[r*f.width+c] {
				heights[c] = f.height - r
				break
			}
		}
	}
	return heights
}

func (f Field) AggregateHeight() int {
	sum := 0
	for _, h := range f.ColumnHeights() {
		sum += h
	}
	return sum
}

func (f Field) MaxHeight() int {
	highest := 0
	for _, h := range f.ColumnHeights() {
		highest = max(highest, h)
	}
	return highest
}

// Holes counts empty cells that have an occupied cell somewhere above them in
// the same column.
func (f Field) Holes() int {
	holes := 0
	for c := 0; c < f.width; c++ {
		covered := false
		for r := 0; r < f.height; r++ {
			if f.cells[r*f.width+c] {
				covered = true
			} else if covered {
				holes++
			}
		}
	}
	return holes
}

// Bumpiness sums the absolute height differences of neighboring columns.
func (f Field) Bumpiness() int {
	heights := f.ColumnHeights()
	bumpiness := 0
	for c := 0; c+1 < len(heights); c++ {
		diff := heights[c] - heights[c+1]
		if diff < 0 {
			diff = -diff
		}
		bumpiness += diff
	}
	return bumpiness
}

func (f Field) rowComplete(row int) bool {
	for c := 0; c < f.width; c++ {
		if !f.cells[row*f.width+c] {
			return false
		}
	}
	return true
}

func (f Field) CompleteLines() int {
	lines := 0
	for r := 0; r < f.height; r++ {
		if f.rowComplete(r) {
			lines++
		}
	}
	return lines
}

// String renders the field with '*' for occupied and '.' for empty cells.
func (f Field) String() string {
	var b strings.Builder
	for r := 0; r < f.height; r++ {
		for c := 0; c < f.width; c++ {
			if f.cells[r*f.width+c] {
				b.WriteByte('*')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
