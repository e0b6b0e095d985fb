package board

import (
	"fmt"
	"strings"
)

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	if cr&WhiteKingSideCastle != 0 {
		sb.WriteByte('K')
	}
	if cr&WhiteQueenSideCastle != 0 {
		sb.WriteByte('Q')
	}
	if cr&BlackKingSideCastle != 0 {
		sb.WriteByte('k')
	}
	if cr&BlackQueenSideCastle != 0 {
		sb.WriteByte('q')
	}
	return sb.String()
}

// CanCastle returns true if the given side can castle in the given direction.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	return cr&castleRight(c, kingSide) != 0
}

func castleRight(c Color, kingSide bool) CastlingRights {
	if c == White {
		if kingSide {
			return WhiteKingSideCastle
		}
		return WhiteQueenSideCastle
	}
	if kingSide {
		return BlackKingSideCastle
	}
	return BlackQueenSideCastle
}

// mirror swaps the white and black rights.
func (cr CastlingRights) mirror() CastlingRights {
	return (cr&(WhiteKingSideCastle|WhiteQueenSideCastle))<<2 | (cr&(BlackKingSideCastle|BlackQueenSideCastle))>>2
}

// castlingMask[sq] is cleared from the rights whenever a piece leaves or
// is captured on sq.
var castlingMask [64]CastlingRights

func init() {
	for sq := range castlingMask {
		castlingMask[sq] = AllCastling
	}
	castlingMask[E1] &^= WhiteKingSideCastle | WhiteQueenSideCastle
	castlingMask[H1] &^= WhiteKingSideCastle
	castlingMask[A1] &^= WhiteQueenSideCastle
	castlingMask[E8] &^= BlackKingSideCastle | BlackQueenSideCastle
	castlingMask[H8] &^= BlackKingSideCastle
	castlingMask[A8] &^= BlackQueenSideCastle
}

// Position is a mutable game state. It is owned by a single call chain;
// use Copy to hand one to another goroutine.
type Position struct {
	Catalog *Catalog

	Board       [64]Piece
	Occupied    [2]Bitboard
	AllOccupied Bitboard

	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Square // square skipped by a double step, NoSquare if none
	HalfMoveClock  int
	FullMoveNumber int

	Hash       uint64
	KingSquare [2]Square
	PieceCount int

	// History holds the hash of every position since the game start,
	// the current position last.
	History []uint64

	// Played is the move log since the position was set up from startFEN;
	// Notation renders it.
	Played   []Move
	startFEN string
}

// NewPosition creates the standard starting position for cat.
func NewPosition(cat *Catalog) *Position {
	pos, err := ParseFEN(StartFEN, cat)
	if err != nil {
		panic(fmt.Sprintf("board: catalog %q cannot set up the starting array: %v", cat.Name, err))
	}
	return pos
}

// Copy creates a deep copy of the position.
func (p *Position) Copy() *Position {
	newPos := *p
	newPos.History = append(make([]uint64, 0, len(p.History)+16), p.History...)
	newPos.Played = append(make([]Move, 0, len(p.Played)+16), p.Played...)
	return &newPos
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	if sq >= NoSquare {
		return NoPiece
	}
	return p.Board[sq]
}

// IsEmpty returns true if the square is empty.
func (p *Position) IsEmpty(sq Square) bool {
	return p.AllOccupied&SquareBB(sq) == 0
}

// specAt returns the catalog entry of the piece on sq, or nil.
func (p *Position) specAt(sq Square) *PieceSpec {
	pc := p.Board[sq]
	if pc.IsEmpty() {
		return nil
	}
	return p.Catalog.Spec(pc.Type)
}

// setPiece places a piece on an empty square and updates the hash.
func (p *Position) setPiece(piece Piece, sq Square) {
	if piece.IsEmpty() {
		return
	}
	bb := SquareBB(sq)
	p.Board[sq] = piece
	p.Occupied[piece.Color] |= bb
	p.AllOccupied |= bb
	p.Hash ^= zobristPiece[piece.Color][piece.Type][sq]
	p.PieceCount++
	if piece.Type == p.Catalog.Royal() {
		p.KingSquare[piece.Color] = sq
	}
}

// removePiece clears sq and returns what was there.
func (p *Position) removePiece(sq Square) Piece {
	piece := p.Board[sq]
	if piece.IsEmpty() {
		return NoPiece
	}
	bb := SquareBB(sq)
	p.Board[sq] = NoPiece
	p.Occupied[piece.Color] &^= bb
	p.AllOccupied &^= bb
	p.Hash ^= zobristPiece[piece.Color][piece.Type][sq]
	p.PieceCount--
	return piece
}

// movePiece relocates the piece on from to the empty square to.
func (p *Position) movePiece(from, to Square) {
	p.setPiece(p.removePiece(from), to)
}

// checkKings panics unless each side's cached king square holds its king.
func (p *Position) checkKings() {
	royal := p.Catalog.Royal()
	for c := White; c <= Black; c++ {
		ksq := p.KingSquare[c]
		if ksq >= NoSquare || p.Board[ksq] != (Piece{Type: royal, Color: c}) {
			invariant(fmt.Sprintf("%s king is not on %s", c, ksq))
		}
	}
}

// label returns the FEN spelling of a piece, upper case for White.
func (p *Position) label(pc Piece) string {
	l := p.Catalog.Spec(pc.Type).Label
	if pc.Color == White {
		return strings.ToUpper(l)
	}
	return l
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteByte('\n')
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			piece := p.Board[NewSquare(file, rank)]
			if piece.IsEmpty() {
				sb.WriteString(".  ")
			} else {
				fmt.Fprintf(&sb, "%-3s", p.label(piece))
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n   a  b  c  d  e  f  g  h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.SideToMove)
	fmt.Fprintf(&sb, "Castling: %s\n", p.CastlingRights)
	fmt.Fprintf(&sb, "En passant: %s\n", p.EnPassant)
	fmt.Fprintf(&sb, "Half-move clock: %d\n", p.HalfMoveClock)
	fmt.Fprintf(&sb, "Full move: %d\n", p.FullMoveNumber)
	fmt.Fprintf(&sb, "Hash: %016x\n", p.Hash)
	return sb.String()
}

// Clear resets the position to an empty board.
func (p *Position) Clear() {
	*p = Position{
		Catalog:        p.Catalog,
		EnPassant:      NoSquare,
		FullMoveNumber: 1,
	}
	for sq := range p.Board {
		p.Board[sq] = NoPiece
	}
	p.KingSquare[White] = NoSquare
	p.KingSquare[Black] = NoSquare
}

// Validate checks if the position is valid.
func (p *Position) Validate() error {
	royal := p.Catalog.Royal()
	var kings [2]int
	for sq := A1; sq <= H8; sq++ {
		pc := p.Board[sq]
		if pc.IsEmpty() {
			continue
		}
		if pc.Type == royal {
			kings[pc.Color]++
		}
		if p.Catalog.Spec(pc.Type).Has(AbilityPawn) && (sq.Rank() == 0 || sq.Rank() == 7) {
			return fmt.Errorf("%w: pawn on %s", ErrMalformedInput, sq)
		}
	}
	if kings[White] != 1 {
		return fmt.Errorf("%w: white must have exactly one king", ErrMalformedInput)
	}
	if kings[Black] != 1 {
		return fmt.Errorf("%w: black must have exactly one king", ErrMalformedInput)
	}
	return nil
}

// Mirror returns the position with the board flipped vertically and the
// colours swapped. The history starts afresh.
func (p *Position) Mirror() *Position {
	m := &Position{Catalog: p.Catalog}
	m.Clear()
	for sq := A1; sq <= H8; sq++ {
		if pc := p.Board[sq]; !pc.IsEmpty() {
			m.setPiece(Piece{Type: pc.Type, Color: pc.Color.Other()}, sq.Mirror())
		}
	}
	m.SideToMove = p.SideToMove.Other()
	m.CastlingRights = p.CastlingRights.mirror()
	if p.EnPassant != NoSquare {
		m.EnPassant = p.EnPassant.Mirror()
	}
	m.HalfMoveClock = p.HalfMoveClock
	m.FullMoveNumber = p.FullMoveNumber
	m.resetHistory()
	return m
}

// resetHistory recomputes the hash and starts a new repetition history.
func (p *Position) resetHistory() {
	p.Hash = p.ComputeHash()
	p.History = append(make([]uint64, 0, 64), p.Hash)
	p.Played = make([]Move, 0, 64)
	p.startFEN = p.ToFEN()
}
