package game

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"tromino/meta"

	"golang.org/x/exp/rand"
)

// State pairs a field with the piece that is placed next. States are values:
// every transition returns a new State with its own field.
type State struct {
	Field Field
	Next  Piece
}

func NewState(field Field, next Piece) State {
	return State{Field: field, Next: next}
}

// RandomPiece flips the fixed-probability coin between the two pieces.
func RandomPiece(rng *rand.Rand) Piece {
	return CoinPiece(rng, meta.ProbaIPiece)
}

// CoinPiece deals an I piece with probability probaI and an L piece otherwise.
func CoinPiece(rng *rand.Rand, probaI float64) Piece {
	if rng.Float64() < probaI {
		return IPiece
	}
	return LPiece
}

func (s State) Clone() State {
	return State{Field: s.Field.Clone(), Next: s.Next}
}

// WithPiece returns a copy of the state whose next piece is piece.
func (s State) WithPiece(piece Piece) State {
	return State{Field: s.Field.Clone(), Next: piece}
}

// landingPoints returns, per column, the empty cell directly above the
// topmost occupied cell, or the bottom cell when the column is empty. A column
// whose top cell is occupied has no landing point.
func (s State) landingPoints() []Point {
	f := s.Field
	points := make([]Point, 0, f.width)
	for c := 0; c < f.width; c++ {
		for r := 0; r < f.height; r++ {
			if f.Occupied(r, c) {
				if r-1 >= 0 {
					points = append(points, Point{Row: r - 1, Col: c})
				}
				break
			}
			if r == f.height-1 {
				points = append(points, Point{Row: r, Col: c})
			}
		}
	}
	return points
}

// columnClear reports whether every cell strictly above p in its column is
// empty.
func (s State) columnClear(p Point) bool {
	for r := 0; r < p.Row; r++ {
		if s.Field.Occupied(r, p.Col) {
			return false
		}
	}
	return true
}

// AvailableActions lists the placements of the next piece that can be reached
// by a straight drop and rest on the stack or the floor. Every cell of the
// piece needs a clear column above it, and at least one cell must be a
// landing point. Each satisfying (anchor, rotation) pair is emitted.
func (s State) AvailableActions() []Action {
	landing := s.landingPoints()
	actions := []Action{}
	for _, p := range s.Field.EmptyPositions() {
		for r := 0; r < s.Next.RotationCount(); r++ {
			if !s.Field.Fits(s.Next, p.Row, p.Col, r) {
				continue
			}

			accessible := true
			resting := false
			for _, off := range s.Next.Offsets(r) {
				candidate := Point{Row: p.Row + off.Row, Col: p.Col + off.Col}
				if !resting {
					for _, lp := range landing {
						if lp == candidate {
							resting = true
							break
						}
					}
				}
				if !s.columnClear(candidate) {
					accessible = false
					break
				}
			}

			if accessible && resting {
				actions = append(actions, Action{Position: p, Rotation: r})
			}
		}
	}
	return actions
}

func (s State) place(action Action) Field {
	field := s.Field.Clone()
	field.AddTromino(s.Next, action.Position.Row, action.Position.Col, action.Rotation)
	return field
}

// ApplyAction places the next piece and draws the following one with the
// coin. The action is expected to come from AvailableActions.
func (s State) ApplyAction(action Action, rng *rand.Rand) State {
	return State{Field: s.place(action), Next: RandomPiece(rng)}
}

// ApplyActionTromino places the next piece and makes piece the following one.
func (s State) ApplyActionTromino(action Action, piece Piece) State {
	return State{Field: s.place(action), Next: piece}
}

// AllStatesFromAction returns the two possible successors of action, one per
// following piece, in the order of Pieces. Lines are not cleared yet.
func (s State) AllStatesFromAction(action Action) []State {
	placed := s.place(action)
	states := make([]State, 0, len(Pieces))
	for i, piece := range Pieces {
		field := placed
		if i > 0 {
			field = placed.Clone()
		}
		states = append(states, State{Field: field, Next: piece})
	}
	return states
}

// CompleteLines clears every complete row, shifting the rows above it down
// and emptying the top row. Completeness is judged on the board before any
// row is removed.
func (s State) CompleteLines() State {
	f := s.Field
	grid := f.Clone()
	for r := 0; r < f.height; r++ {
		if !f.rowComplete(r) {
			continue
		}
		for row := r; row > 0; row-- {
			copy(grid.cells[row*f.width:(row+1)*f.width], grid.cells[(row-1)*f.width:row*f.width])
		}
		for c := 0; c < f.width; c++ {
			grid.cells[c] = false
		}
	}
	return State{Field: grid, Next: s.Next}
}

// Evaluate returns the reward for the lines completed on this board. Clearing
// more than three lines at once is rewarded like three.
func (s State) Evaluate(table RewardTable) int {
	lines := s.Field.CompleteLines()
	if lines == 0 {
		return 0
	}
	return table[min(lines, len(table))-1]
}

// Equal reports whether both states have identical occupancy and next piece.
func (s State) Equal(other State) bool {
	return s.Next == other.Next && s.Field.Equal(other.Field)
}

// Key returns the map key identifying this state by content.
func (s State) Key() StateKey {
	if mask, ok := s.Field.Mask(); ok {
		return StateKey{Mask: mask, Piece: s.Next}
	}
	return StateKey{Packed: s.Field.packed(), Piece: s.Next}
}

func (s State) Hash() StateHash {
	hasher := fnv.New64a()

	// Dimensions
	binary.Write(hasher, binary.LittleEndian, int64(s.Field.width))
	binary.Write(hasher, binary.LittleEndian, int64(s.Field.height))

	// Occupancy
	hasher.Write([]byte(s.Field.packed()))

	// Next piece
	binary.Write(hasher, binary.LittleEndian, int64(s.Next))

	return StateHash(hasher.Sum64())
}

func (s State) String() string {
	return fmt.Sprintf("Next Piece: %s\nCurrent Grid:\n%s", s.Next, s.Field)
}
