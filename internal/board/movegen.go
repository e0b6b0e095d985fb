package board

// GenerateLegalMoves generates every legal move of the side to move, in
// square order A1..H8 and catalog pattern order within a square.
func (p *Position) GenerateLegalMoves() *MoveList {
	ml := NewMoveList()
	g := p.newGenerator()
	for occ := p.Occupied[p.SideToMove]; occ != 0; {
		g.legalFrom(occ.PopLSB(), ml)
	}
	return ml
}

// LegalMovesFrom returns the legal moves of the piece on sq. An empty
// square or a piece of the side not to move yields an empty list.
func (p *Position) LegalMovesFrom(sq Square) *MoveList {
	ml := NewMoveList()
	if !sq.IsValid() || p.Board[sq].IsEmpty() || p.Board[sq].Color != p.SideToMove {
		return ml
	}
	p.newGenerator().legalFrom(sq, ml)
	return ml
}

// HasLegalMoves reports whether the side to move can move at all.
func (p *Position) HasLegalMoves() bool {
	g := p.newGenerator()
	ml := NewMoveList()
	for occ := p.Occupied[p.SideToMove]; occ != 0; {
		g.legalFrom(occ.PopLSB(), ml)
		if ml.Len() > 0 {
			return true
		}
	}
	return false
}

type generator struct {
	p         *Position
	ci        checkInfo
	protected Bitboard
	scratch   *MoveList
}

func (p *Position) newGenerator() *generator {
	return &generator{
		p:         p,
		ci:        p.computeCheckInfo(p.SideToMove),
		protected: p.ProtectedSquares(p.SideToMove.Other()),
		scratch:   NewMoveList(),
	}
}

func (g *generator) legalFrom(sq Square, ml *MoveList) {
	p := g.p
	spec := p.specAt(sq)
	royal := spec.Has(AbilityRoyal)

	g.scratch.moves = g.scratch.moves[:0]
	p.pseudoFrom(sq, g.scratch)

	for _, m := range g.scratch.moves {
		switch {
		case m.Flag == FlagCapture && spec.Has(AbilityDisplacer):
			if p.leavesKingSafe(m) {
				ml.Add(m)
			}
		case royal:
			if !g.protected.IsSet(m.To) {
				ml.Add(m)
			}
		default:
			if g.ci.legal(p, m) {
				ml.Add(m)
			}
		}
	}

	if royal && g.ci.checkers == 0 && !p.IsFrozen(sq) {
		g.castling(sq, ml)
	}
}

// castling adds O-O and O-O-O: the right is held, the partner rook stands
// on its corner, the squares between are empty and the king neither
// passes through nor lands on a guarded square.
func (g *generator) castling(ksq Square, ml *MoveList) {
	p := g.p
	us := p.SideToMove
	home := E1
	if us == Black {
		home = E8
	}
	if ksq != home {
		return
	}

	for _, kingSide := range []bool{true, false} {
		if !p.CastlingRights.CanCastle(us, kingSide) {
			continue
		}
		rookSq, dest, via := home+3, home+2, home+1
		flag := FlagKingCastle
		if !kingSide {
			rookSq, dest, via = home-4, home-2, home-1
			flag = FlagQueenCastle
		}

		rook := p.Board[rookSq]
		if rook.IsEmpty() || rook.Color != us || !p.specAt(rookSq).Has(AbilityCastle) {
			continue
		}
		if between(ksq, rookSq)&p.AllOccupied != 0 {
			continue
		}
		if g.protected.IsSet(via) || g.protected.IsSet(dest) {
			continue
		}
		ml.Add(NewMove(ksq, dest, flag))
	}
}

// between returns the squares strictly between two squares of one rank.
func between(a, b Square) Bitboard {
	if a > b {
		a, b = b, a
	}
	var bb Bitboard
	for sq := a + 1; sq < b; sq++ {
		bb |= SquareBB(sq)
	}
	return bb
}

// pseudoFrom walks every pattern of the piece on sq.
func (p *Position) pseudoFrom(sq Square, ml *MoveList) {
	spec := p.specAt(sq)
	if spec == nil || p.IsFrozen(sq) {
		return
	}
	us := p.Board[sq].Color
	pawnLike := spec.Has(AbilityPawn)
	splitCaptures := len(spec.Captures) > 0

	for _, pat := range spec.Moves {
		repeat := pat.Repeat
		if pawnLike && sq.RelativeRank(us) == 1 && repeat < 2 {
			repeat = 2
		}
		p.walk(sq, spec, pat.Vectors, repeat, true, !splitCaptures, ml)
	}
	for _, pat := range spec.Captures {
		p.walk(sq, spec, pat.Vectors, pat.Repeat, false, true, ml)
	}

	if pawnLike && spec.Has(AbilityEnPassant) && p.EnPassant != NoSquare && us == p.SideToMove {
		victim := p.epVictim()
		if victim == NoSquare || p.Board[victim].IsEmpty() || p.Board[victim].Color == us || !p.specAt(victim).Has(AbilityEnPassant) {
			return
		}
		for _, pat := range spec.AttackPatterns() {
			for _, v := range pat.Vectors {
				df, dr := v.oriented(us)
				if to, ok := sq.Offset(df, dr); ok && to == p.EnPassant && p.IsEmpty(to) {
					ml.Add(NewMove(sq, to, FlagEnPassant))
				}
			}
		}
	}
}

// walk follows each vector up to repeat steps, stopping at the board edge,
// at a friendly piece or after a capture.
func (p *Position) walk(sq Square, spec *PieceSpec, vectors []Vector, repeat int, quiet, capture bool, ml *MoveList) {
	us := p.Board[sq].Color
	capture = capture && !spec.Has(AbilityNonCapturing)

	for _, v := range vectors {
		df, dr := v.oriented(us)
		cur := sq
		for i := 0; i < repeat; i++ {
			next, ok := cur.Offset(df, dr)
			if !ok {
				break
			}
			cur = next

			target := p.Board[cur]
			if target.IsEmpty() {
				if quiet {
					p.addMove(ml, spec, sq, cur, FlagQuiet)
				}
				continue
			}

			if capture && target.Color != us {
				ts := p.Catalog.Spec(target.Type)
				switch {
				case ts.Has(AbilityUncapturable), ts.Has(AbilityRoyal):
				case spec.Has(AbilityDisplacer):
					if land := DisplacerLanding(sq, cur); land != sq && p.IsEmpty(land) {
						p.addMove(ml, spec, sq, cur, FlagCapture)
					}
				default:
					p.addMove(ml, spec, sq, cur, FlagCapture)
				}
			}
			break
		}
	}
}

// addMove adds from -> to, expanded into one move per promotion target
// when a pawn-like piece reaches the last rank.
func (p *Position) addMove(ml *MoveList, spec *PieceSpec, from, to Square, flag MoveFlag) {
	us := p.Board[from].Color
	if spec.Has(AbilityPawn) && to.RelativeRank(us) == 7 && len(p.Catalog.Promotions()) > 0 {
		for _, pt := range p.Catalog.Promotions() {
			ml.Add(NewPromotion(from, to, flag, pt))
		}
		return
	}
	ml.Add(NewMove(from, to, flag))
}
