package board

// checkInfo is what the side to move needs to know about enemy lines
// through its king. It is rebuilt for every generation pass.
type checkInfo struct {
	checkers Bitboard
	// block holds the checker and the squares between it and the king;
	// landing on one of them answers a single check.
	block Bitboard

	pinned Bitboard
	pinRay [64]Bitboard // squares a pinned piece may land on, pinners included

	// shields are enemy pieces that alone stand between our king and
	// another enemy piece. Removing one en passant is only legal when the
	// capturing pawn lands on shieldRay.
	shields   Bitboard
	shieldRay [64]Bitboard

	illegalEP Bitboard // our pawns whose en-passant capture uncovers the king
}

// epVictim returns the square of the pawn that can be taken en passant.
func (p *Position) epVictim() Square {
	if p.EnPassant == NoSquare {
		return NoSquare
	}
	sq, ok := p.EnPassant.Offset(0, p.SideToMove.Other().forward())
	if !ok {
		return NoSquare
	}
	return sq
}

// computeCheckInfo casts every capture vector of every enemy piece and
// records what it meets on its way to the king of us.
func (p *Position) computeCheckInfo(us Color) checkInfo {
	var ci checkInfo
	them := us.Other()
	ksq := p.KingSquare[us]
	victim := NoSquare
	if us == p.SideToMove {
		victim = p.epVictim()
	}

	for occ := p.Occupied[them]; occ != 0; {
		s := occ.PopLSB()
		spec := p.specAt(s)
		if spec.Has(AbilityNonCapturing) || spec.Has(AbilityRoyal) {
			continue
		}
		sBB := SquareBB(s)

		for _, pat := range spec.AttackPatterns() {
			for _, v := range pat.Vectors {
				df, dr := v.oriented(them)

				var path Bitboard
				var hits [3]Square
				n := 0
				reached := false
				cur := s
				for i := 0; i < pat.Repeat && n < len(hits); i++ {
					next, ok := cur.Offset(df, dr)
					if !ok {
						break
					}
					cur = next
					if cur == ksq {
						reached = true
						break
					}
					path |= SquareBB(cur)
					if !p.IsEmpty(cur) {
						hits[n] = cur
						n++
					}
				}
				if !reached {
					continue
				}

				if spec.Has(AbilityDisplacer) {
					land := DisplacerLanding(s, ksq)
					if land == s {
						continue
					}
					if !path.IsSet(land) {
						path |= SquareBB(land)
						if !p.IsEmpty(land) {
							if n == len(hits) {
								continue
							}
							hits[n] = land
							n++
						}
					}
				}

				switch n {
				case 0:
					ci.checkers |= sBB
					ci.block |= path | sBB

				case 1:
					h := hits[0]
					ray := path.Clear(h) | sBB
					if p.Board[h].Color == us {
						// A piece blocking several lines must stay on all of them.
						if ci.pinned.IsSet(h) {
							ci.pinRay[h] &= ray
						} else {
							ci.pinned |= SquareBB(h)
							ci.pinRay[h] = ray
						}
					} else if ci.shields.IsSet(h) {
						ci.shieldRay[h] &= ray
					} else {
						ci.shields |= SquareBB(h)
						ci.shieldRay[h] = ray
					}

				case 2:
					if victim == NoSquare {
						continue
					}
					a, b := hits[0], hits[1]
					if a == victim {
						a, b = b, a
					}
					if b != victim || p.Board[a].Color != us || a.Rank() != victim.Rank() || abs(a.File()-victim.File()) != 1 {
						continue
					}
					if p.specAt(a).Has(AbilityEnPassant) && !path.IsSet(p.EnPassant) {
						ci.illegalEP |= SquareBB(a)
					}
				}
			}
		}
	}
	return ci
}

// legal reports whether the pseudo-legal non-king move m keeps the king
// of the side to move safe.
func (ci *checkInfo) legal(p *Position, m Move) bool {
	from, land := m.From, m.To
	taken := NoSquare
	switch m.Flag {
	case FlagCapture:
		taken = m.To
	case FlagEnPassant:
		taken = p.epVictim()
		if ci.illegalEP.IsSet(from) {
			return false
		}
		if ci.shields.IsSet(taken) && !ci.shieldRay[taken].IsSet(land) {
			return false
		}
	}

	if ci.pinned.IsSet(from) && !ci.pinRay[from].IsSet(land) {
		return false
	}

	switch ci.checkers.PopCount() {
	case 0:
		return true
	case 1:
		return ci.block.IsSet(land) || taken == ci.checkers.LSB()
	default:
		return false
	}
}

// leavesKingSafe plays m and tests the king directly. Displacing captures
// take this path: they vacate two squares at once.
func (p *Position) leavesKingSafe(m Move) bool {
	us := p.SideToMove
	undo := p.doMove(m)
	safe := !p.IsSquareAttacked(p.KingSquare[us], us.Other())
	p.undoMove(undo)
	return safe
}

// InCheck returns true if the side to move is in check.
func (p *Position) InCheck() bool {
	ci := p.computeCheckInfo(p.SideToMove)
	return ci.checkers != 0
}

// Checkers returns the enemy pieces giving check to the side to move.
func (p *Position) Checkers() Bitboard {
	ci := p.computeCheckInfo(p.SideToMove)
	return ci.checkers
}

// Pinned returns the pieces of the side to move pinned to their king.
func (p *Position) Pinned() Bitboard {
	ci := p.computeCheckInfo(p.SideToMove)
	return ci.pinned
}
