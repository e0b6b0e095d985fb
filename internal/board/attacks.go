package board

// adjacentBB[sq] holds the up to eight squares touching sq.
var adjacentBB [64]Bitboard

func init() {
	for sq := A1; sq <= H8; sq++ {
		for df := -1; df <= 1; df++ {
			for dr := -1; dr <= 1; dr++ {
				if df == 0 && dr == 0 {
					continue
				}
				if n, ok := sq.Offset(df, dr); ok {
					adjacentBB[sq] |= SquareBB(n)
				}
			}
		}
	}
}

// IsFrozen reports whether the piece on sq cannot move: it touches an
// immobilizer of either colour or an enemy suppressor.
func (p *Position) IsFrozen(sq Square) bool {
	pc := p.Board[sq]
	if pc.IsEmpty() {
		return false
	}
	near := adjacentBB[sq] & p.AllOccupied
	for near != 0 {
		n := near.PopLSB()
		spec := p.specAt(n)
		if spec.Has(AbilityImmobilizer) {
			return true
		}
		if spec.Has(AbilitySuppressor) && p.Board[n].Color != pc.Color {
			return true
		}
	}
	return false
}

// ProtectedSquares returns every square a piece of color c could capture
// on if an enemy piece stood there. Rays pass through the enemy king, so a
// king cannot step back along the line it is attacked on. Freezing is
// ignored: a frozen piece still guards.
func (p *Position) ProtectedSquares(c Color) Bitboard {
	var prot Bitboard
	enemyKing := p.KingSquare[c.Other()]

	for occ := p.Occupied[c]; occ != 0; {
		sq := occ.PopLSB()
		spec := p.specAt(sq)
		if spec.Has(AbilityNonCapturing) {
			continue
		}
		displacer := spec.Has(AbilityDisplacer)

		for _, pat := range spec.AttackPatterns() {
			for _, v := range pat.Vectors {
				df, dr := v.oriented(c)
				cur := sq
				for i := 0; i < pat.Repeat; i++ {
					next, ok := cur.Offset(df, dr)
					if !ok {
						break
					}
					cur = next

					if !p.IsEmpty(cur) && p.specAt(cur).Has(AbilityUncapturable) {
						break
					}
					if !displacer {
						prot |= SquareBB(cur)
					} else if land := DisplacerLanding(sq, cur); land != sq && (p.IsEmpty(land) || land == enemyKing) {
						prot |= SquareBB(cur)
					}

					if p.IsEmpty(cur) || cur == enemyKing {
						continue
					}
					break
				}
			}
		}
	}
	return prot
}

// IsSquareAttacked reports whether color by guards sq.
func (p *Position) IsSquareAttacked(sq Square, by Color) bool {
	return p.ProtectedSquares(by).IsSet(sq)
}
