package board

import "fmt"

// MoveFlag classifies a move.
type MoveFlag uint8

const (
	FlagQuiet       MoveFlag = 0
	FlagKingCastle  MoveFlag = 2
	FlagQueenCastle MoveFlag = 3
	FlagCapture     MoveFlag = 4
	FlagEnPassant   MoveFlag = 5
)

func (f MoveFlag) String() string {
	switch f {
	case FlagQuiet:
		return "quiet"
	case FlagKingCastle:
		return "king-castle"
	case FlagQueenCastle:
		return "queen-castle"
	case FlagCapture:
		return "capture"
	case FlagEnPassant:
		return "en-passant"
	default:
		return fmt.Sprintf("flag(%d)", uint8(f))
	}
}

// Move is an immutable move value. Promotion is NoPieceType unless the
// move promotes.
type Move struct {
	From      Square
	To        Square
	Flag      MoveFlag
	Promotion PieceType
}

// NoMove is the null move. It also marks "the previous move gave check"
// inside a search line.
var NoMove = Move{From: NoSquare, To: NoSquare, Promotion: NoPieceType}

// NewMove creates a non-promoting move.
func NewMove(from, to Square, flag MoveFlag) Move {
	return Move{From: from, To: to, Flag: flag, Promotion: NoPieceType}
}

// NewPromotion creates a move that promotes to pt.
func NewPromotion(from, to Square, flag MoveFlag, pt PieceType) Move {
	return Move{From: from, To: to, Flag: flag, Promotion: pt}
}

// IsNull reports whether m is NoMove.
func (m Move) IsNull() bool {
	return m == NoMove
}

// IsCapture returns true if this move captures a piece.
func (m Move) IsCapture() bool {
	return m.Flag == FlagCapture || m.Flag == FlagEnPassant
}

func (m Move) IsCastling() bool {
	return m.Flag == FlagKingCastle || m.Flag == FlagQueenCastle
}

func (m Move) IsEnPassant() bool {
	return m.Flag == FlagEnPassant
}

func (m Move) IsPromotion() bool {
	return m.Promotion != NoPieceType
}

// String returns the coordinate form without the promotion label, which
// needs a catalog; see Position.MoveString.
func (m Move) String() string {
	if m.IsNull() {
		return "0000"
	}
	return m.From.String() + m.To.String()
}

// MoveList is an ordered list of moves in generation order.
type MoveList struct {
	moves []Move
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{moves: make([]Move, 0, 48)}
}

// Add appends a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves = append(ml.moves, m)
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return len(ml.moves)
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Contains returns true if the list contains the given move.
func (ml *MoveList) Contains(m Move) bool {
	for _, mv := range ml.moves {
		if mv == m {
			return true
		}
	}
	return false
}

// Moves returns the underlying slice. Callers must not modify it.
func (ml *MoveList) Moves() []Move {
	return ml.moves
}

// unitStep reduces (df, dr) to the smallest step with the same direction.
func unitStep(df, dr int) (int, int) {
	g := gcd(abs(df), abs(dr))
	if g == 0 {
		return 0, 0
	}
	return df / g, dr / g
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// DisplacerLanding returns where a displacing capture from -> to ends: one
// unit step short of the captured piece along the capture direction.
func DisplacerLanding(from, to Square) Square {
	df, dr := unitStep(to.File()-from.File(), to.Rank()-from.Rank())
	sq, ok := to.Offset(-df, -dr)
	if !ok {
		return NoSquare
	}
	return sq
}
