package game

import "fmt"

// Point is a (row, column) cell coordinate. Row 0 is the top of the field.
type Point struct {
	Row int
	Col int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.Row, p.Col)
}

// Offset is a (row, column) delta from a piece's anchor cell.
type Offset struct {
	Row int
	Col int
}

// Action places the next piece with its anchor on Position using Rotation.
type Action struct {
	Position Point
	Rotation int
}

// NullAction is never returned by AvailableActions and never valid.
var NullAction = Action{Position: Point{Row: -1, Col: -1}, Rotation: -1}

func NewAction(row, col, rotation int) Action {
	return Action{Position: Point{Row: row, Col: col}, Rotation: rotation}
}

func (a Action) IsNull() bool {
	return a == NullAction
}

func (a Action) String() string {
	return fmt.Sprintf("%s r%d", a.Position, a.Rotation)
}

// StateHash is an FNV-64a digest of a state's occupancy and next piece.
type StateHash uint64

// StateKey is the comparable, content-addressed identity of a State. Boards
// under 64 cells use the occupancy bitmask, larger boards the packed
// occupancy string.
type StateKey struct {
	Mask   uint64
	Packed string
	Piece  Piece
}

// RewardTable holds the reward for clearing 1, 2 and 3 lines at once.
type RewardTable [3]int

// RewardFunc computes the immediate reward of moving from prev to placed (the
// board right after the piece lands) and then to after (lines cleared).
type RewardFunc func(prev, placed, after State) float64
