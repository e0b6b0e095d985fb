package board

import (
	"fmt"
	"strings"
)

// MoveString returns the coordinate form of m, e.g. "e2e4" or "e7e8q";
// two-letter promotion labels are appended as is ("e7e8th").
func (p *Position) MoveString(m Move) string {
	if m.IsNull() {
		return "0000"
	}
	s := m.From.String() + m.To.String()
	if m.IsPromotion() {
		s += p.Catalog.Spec(m.Promotion).Label
	}
	return s
}

// ParseMove finds the legal move written in coordinate form.
func (p *Position) ParseMove(s string) (Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 4 {
		return NoMove, fmt.Errorf("%w: move %q", ErrMalformedInput, s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	if _, err := ParseSquare(s[2:4]); err != nil {
		return NoMove, err
	}

	for _, m := range p.LegalMovesFrom(from).Moves() {
		if p.MoveString(m) == s {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("%w: %s", ErrIllegalMove, s)
}

// LogMove describes m in the engine's line format: the piece label
// (none for pawns), the origin (omitted for the king), "x" or " -> ",
// then the destination and "=LABEL" for a promotion.
func (p *Position) LogMove(m Move) string {
	pc := p.Board[m.From]
	if m.IsNull() || pc.IsEmpty() {
		return m.String()
	}
	spec := p.Catalog.Spec(pc.Type)

	var sb strings.Builder
	if !spec.Has(AbilityPawn) {
		sb.WriteString(p.label(pc))
	}
	if !spec.Has(AbilityRoyal) {
		sb.WriteString(m.From.String())
	}
	if m.IsCapture() {
		sb.WriteByte('x')
	} else {
		sb.WriteString(" -> ")
	}
	sb.WriteString(m.To.String())
	if m.IsPromotion() {
		sb.WriteByte('=')
		sb.WriteString(strings.ToUpper(p.Catalog.Spec(m.Promotion).Label))
	}
	return sb.String()
}

// SAN converts a legal move to algebraic notation with upper-case catalog
// labels: "Nf3", "exd5", "O-O", "e8=Q+", "THxe5".
func (p *Position) SAN(m Move) string {
	if m.IsNull() {
		return "-"
	}
	pc := p.Board[m.From]
	if pc.IsEmpty() {
		return p.MoveString(m)
	}

	var sb strings.Builder
	switch {
	case m.Flag == FlagKingCastle:
		sb.WriteString("O-O")
	case m.Flag == FlagQueenCastle:
		sb.WriteString("O-O-O")
	default:
		spec := p.Catalog.Spec(pc.Type)
		pawnLike := spec.Has(AbilityPawn)
		if !pawnLike {
			sb.WriteString(strings.ToUpper(spec.Label))
			sb.WriteString(p.disambiguation(m))
		}
		if m.IsCapture() {
			if pawnLike {
				sb.WriteByte('a' + byte(m.From.File()))
			}
			sb.WriteByte('x')
		}
		sb.WriteString(m.To.String())
		if m.IsPromotion() {
			sb.WriteByte('=')
			sb.WriteString(strings.ToUpper(p.Catalog.Spec(m.Promotion).Label))
		}
	}

	undo := p.doMove(m)
	if p.InCheck() {
		if p.HasLegalMoves() {
			sb.WriteByte('+')
		} else {
			sb.WriteByte('#')
		}
	}
	p.undoMove(undo)

	return sb.String()
}

// disambiguation returns the origin file, rank or square needed when
// another piece of the same type can reach the same destination.
func (p *Position) disambiguation(m Move) string {
	pc := p.Board[m.From]
	var candidates []Square

	all := p.GenerateLegalMoves()
	for _, other := range all.Moves() {
		if other.To != m.To || other.From == m.From || p.Board[other.From] != pc {
			continue
		}
		candidates = append(candidates, other.From)
	}
	if len(candidates) == 0 {
		return ""
	}

	sameFile, sameRank := false, false
	for _, sq := range candidates {
		if sq.File() == m.From.File() {
			sameFile = true
		}
		if sq.Rank() == m.From.Rank() {
			sameRank = true
		}
	}
	if !sameFile {
		return string(rune('a' + m.From.File()))
	}
	if !sameRank {
		return string(rune('1' + m.From.Rank()))
	}
	return m.From.String()
}

// Notation renders the move log as algebraic entries, one per ply.
func (p *Position) Notation() []string {
	replay, err := ParseFEN(p.startFEN, p.Catalog)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(p.Played))
	for _, m := range p.Played {
		out = append(out, replay.SAN(m))
		replay.doMove(m)
	}
	return out
}

// PGN renders the move log as a numbered game record: "1. e4 e5 2. Nf3".
func (p *Position) PGN() string {
	replay, err := ParseFEN(p.startFEN, p.Catalog)
	if err != nil {
		return ""
	}
	var sb strings.Builder
	for i, san := range p.Notation() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch {
		case replay.SideToMove == White:
			fmt.Fprintf(&sb, "%d. ", replay.FullMoveNumber)
		case i == 0:
			fmt.Fprintf(&sb, "%d... ", replay.FullMoveNumber)
		}
		sb.WriteString(san)
		replay.doMove(p.Played[i])
	}
	return sb.String()
}
