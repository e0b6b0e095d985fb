package board

import "fmt"

// UndoInfo holds everything UnmakeMove needs to restore the position that
// existed before a move.
type UndoInfo struct {
	Move           Move
	Moved          Piece // the piece as it stood on the origin, before promotion
	Captured       Piece
	CapturedSquare Square
	Landing        Square // where the mover ended; differs from Move.To for displacing captures

	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	FullMoveNumber int
	Hash           uint64
	KingSquare     [2]Square

	historyLen int
	playedLen  int
}

// MakeMove plays m, which must be pseudo-legal for the side to move, and
// appends to the repetition history and move log.
func (p *Position) MakeMove(m Move) UndoInfo {
	historyLen, playedLen := len(p.History), len(p.Played)
	undo := p.doMove(m)
	undo.historyLen = historyLen
	undo.playedLen = playedLen
	p.History = append(p.History, p.Hash)
	p.Played = append(p.Played, m)
	return undo
}

// UnmakeMove restores the position saved in undo.
func (p *Position) UnmakeMove(undo UndoInfo) {
	p.undoMove(undo)
	p.History = p.History[:undo.historyLen]
	p.Played = p.Played[:undo.playedLen]
}

// PlayMove plays m after checking it against the legal moves.
func (p *Position) PlayMove(m Move) (UndoInfo, error) {
	if !p.LegalMovesFrom(m.From).Contains(m) {
		return UndoInfo{}, fmt.Errorf("%w: %s", ErrIllegalMove, p.MoveString(m))
	}
	return p.MakeMove(m), nil
}

// castleRookSquares returns the rook's origin and destination for a
// castling move of the king.
func castleRookSquares(m Move) (Square, Square) {
	rank := m.From.Rank()
	if m.Flag == FlagKingCastle {
		return NewSquare(7, rank), NewSquare(5, rank)
	}
	return NewSquare(0, rank), NewSquare(3, rank)
}

// doMove changes the board and state but not the history or move log.
func (p *Position) doMove(m Move) UndoInfo {
	us := p.SideToMove
	moved := p.Board[m.From]
	if moved.IsEmpty() || moved.Color != us {
		invariant(fmt.Sprintf("move %s does not start on a %s piece", m, us))
	}
	spec := p.Catalog.Spec(moved.Type)

	undo := UndoInfo{
		Move:           m,
		Moved:          moved,
		Captured:       NoPiece,
		CapturedSquare: NoSquare,
		Landing:        m.To,
		CastlingRights: p.CastlingRights,
		EnPassant:      p.EnPassant,
		HalfMoveClock:  p.HalfMoveClock,
		FullMoveNumber: p.FullMoveNumber,
		Hash:           p.Hash,
		KingSquare:     p.KingSquare,
	}

	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}
	p.Hash ^= zobristCastling[p.CastlingRights]

	switch m.Flag {
	case FlagEnPassant:
		undo.CapturedSquare = p.epVictim()
		undo.Captured = p.removePiece(undo.CapturedSquare)
	case FlagCapture:
		undo.CapturedSquare = m.To
		undo.Captured = p.removePiece(m.To)
		if spec.Has(AbilityDisplacer) {
			undo.Landing = DisplacerLanding(m.From, m.To)
		}
	}

	p.movePiece(m.From, undo.Landing)
	if m.IsPromotion() {
		p.removePiece(undo.Landing)
		p.setPiece(NewPiece(m.Promotion, us), undo.Landing)
	}
	if m.IsCastling() {
		rookFrom, rookTo := castleRookSquares(m)
		p.movePiece(rookFrom, rookTo)
	}

	p.CastlingRights &= castlingMask[m.From]
	if undo.CapturedSquare != NoSquare {
		p.CastlingRights &= castlingMask[undo.CapturedSquare]
	}

	p.EnPassant = NoSquare
	if spec.Has(AbilityPawn) && spec.Has(AbilityEnPassant) && m.From.File() == m.To.File() && abs(m.To.Rank()-m.From.Rank()) == 2 {
		p.setEnPassant(m, us.Other())
	}

	if spec.Has(AbilityPawn) || !undo.Captured.IsEmpty() {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}
	if us == Black {
		p.FullMoveNumber++
	}

	p.SideToMove = us.Other()
	p.Hash ^= zobristSideToMove
	p.Hash ^= zobristCastling[p.CastlingRights]
	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}

	p.checkKings()
	return undo
}

// setEnPassant records the skipped square of a double step when an enemy
// pawn beside the destination could take it.
func (p *Position) setEnPassant(m Move, them Color) {
	for _, df := range []int{-1, 1} {
		n, ok := m.To.Offset(df, 0)
		if !ok {
			continue
		}
		pc := p.Board[n]
		if pc.IsEmpty() || pc.Color != them {
			continue
		}
		if s := p.Catalog.Spec(pc.Type); s.Has(AbilityPawn) && s.Has(AbilityEnPassant) {
			p.EnPassant = NewSquare(m.To.File(), (m.From.Rank()+m.To.Rank())/2)
			return
		}
	}
}

func (p *Position) undoMove(undo UndoInfo) {
	m := undo.Move
	p.SideToMove = undo.Moved.Color

	if m.IsCastling() {
		rookFrom, rookTo := castleRookSquares(m)
		p.movePiece(rookTo, rookFrom)
	}
	p.removePiece(undo.Landing)
	p.setPiece(undo.Moved, m.From)
	if !undo.Captured.IsEmpty() {
		p.setPiece(undo.Captured, undo.CapturedSquare)
	}

	p.CastlingRights = undo.CastlingRights
	p.EnPassant = undo.EnPassant
	p.HalfMoveClock = undo.HalfMoveClock
	p.FullMoveNumber = undo.FullMoveNumber
	p.Hash = undo.Hash
	p.KingSquare = undo.KingSquare

	p.checkKings()
}
