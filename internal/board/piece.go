package board

// Color represents the color of a piece or player.
type Color uint8

const (
	White Color = iota
	Black
	NoColor Color = 2
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// forward is the rank direction a color's pawns advance in.
func (c Color) forward() int {
	if c == White {
		return 1
	}
	return -1
}

// PieceType indexes a catalog entry.
type PieceType uint8

const (
	// MaxPieceTypes bounds the catalog size so hash keys can be
	// allocated up front.
	MaxPieceTypes = 32

	NoPieceType PieceType = 0xFF
)

// Piece is the content of one board cell.
type Piece struct {
	Type  PieceType
	Color Color
}

// NoPiece is an empty cell.
var NoPiece = Piece{Type: NoPieceType, Color: NoColor}

// NewPiece creates a Piece from PieceType and Color.
func NewPiece(pt PieceType, c Color) Piece {
	if pt == NoPieceType || c >= NoColor {
		return NoPiece
	}
	return Piece{Type: pt, Color: c}
}

// IsEmpty reports whether the cell holds no piece.
func (p Piece) IsEmpty() bool {
	return p.Type == NoPieceType
}
