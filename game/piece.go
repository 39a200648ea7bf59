package game

// Piece is one of the two tromino kinds.
type Piece int

const (
	IPiece Piece = iota // Straight line
	LPiece              // Corner
)

// Pieces lists every piece kind in branch order.
var Pieces = []Piece{IPiece, LPiece}

var pieceOffsets = [][][]Offset{
	IPiece: {
		{{0, 0}, {0, 1}, {0, 2}}, // horizontal
		{{0, 0}, {1, 0}, {2, 0}}, // vertical
	},
	LPiece: {
		{{0, 1}, {1, 0}, {1, 1}}, // missing top-left
		{{0, 0}, {1, 0}, {1, 1}}, // missing top-right
		{{0, 0}, {0, 1}, {1, 0}}, // missing bottom-right
		{{0, 0}, {0, 1}, {1, 1}}, // missing bottom-left
	},
}

func (p Piece) RotationCount() int {
	return len(pieceOffsets[p])
}

// Offsets returns the cell offsets of the piece for rotation, taken modulo the
// rotation count. Negative rotations wrap around. The returned slice is shared
// and must not be modified.
func (p Piece) Offsets(rotation int) []Offset {
	n := p.RotationCount()
	return pieceOffsets[p][((rotation%n)+n)%n]
}

// Other returns the opposite piece kind.
func (p Piece) Other() Piece {
	if p == IPiece {
		return LPiece
	}
	return IPiece
}

func (p Piece) String() string {
	switch p {
	case IPiece:
		return "IPiece"
	case LPiece:
		return "LPiece"
	default:
		return "UnknownPiece"
	}
}
