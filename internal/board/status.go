package board

// Status is the terminal classification of a position.
type Status uint8

const (
	Ongoing Status = iota
	Checkmate
	Stalemate
	DrawFiftyMoves
	DrawMaterial
	DrawRepetition
)

func (s Status) String() string {
	switch s {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case DrawFiftyMoves:
		return "draw by fifty-move rule"
	case DrawMaterial:
		return "draw by insufficient material"
	case DrawRepetition:
		return "draw by threefold repetition"
	default:
		return "ongoing"
	}
}

const (
	// FiftyMoveLimit is the half-move clock value that ends the game.
	FiftyMoveLimit = 100

	// drawScoreGate: material draws are only claimed while the static
	// score, in centipawns, is inside this band.
	drawScoreGate = 3000
	minorDrawGate = 400
	bishopsGate   = 500
)

// IsCheckmate returns true if the position is checkmate.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate returns true if the position is stalemate.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}

// IsThreefoldDraw reports whether the current position occurred at least
// three times since the last irreversible move.
func (p *Position) IsThreefoldDraw() bool {
	n := len(p.History)
	window := p.HalfMoveClock + 1
	if window > n {
		window = n
	}
	count := 0
	for _, h := range p.History[n-window:] {
		if h == p.Hash {
			count++
		}
	}
	return count >= 3
}

// IsMaterialDraw reports a draw by the fifty-move rule or by material
// that cannot force mate. score is the static evaluation in centipawns;
// lopsided positions are never called drawn.
func (p *Position) IsMaterialDraw(score int) bool {
	return p.materialStatus(score) != Ongoing
}

func (p *Position) materialStatus(score int) Status {
	score = abs(score)
	if score > drawScoreGate {
		return Ongoing
	}
	if p.HalfMoveClock >= FiftyMoveLimit {
		return DrawFiftyMoves
	}

	switch p.PieceCount {
	case 2:
		return DrawMaterial
	case 3:
		for occ := p.AllOccupied; occ != 0; {
			spec := p.specAt(occ.PopLSB())
			if !spec.Has(AbilityRoyal) && spec.IsMinor() && score < minorDrawGate {
				return DrawMaterial
			}
		}
	case 4:
		var bishops []Square
		for occ := p.AllOccupied; occ != 0; {
			sq := occ.PopLSB()
			spec := p.specAt(sq)
			if spec.Has(AbilityRoyal) {
				continue
			}
			if !spec.Has(AbilityBishop) {
				return Ongoing
			}
			bishops = append(bishops, sq)
		}
		if len(bishops) == 2 && bishops[0].IsLight() == bishops[1].IsLight() && score < bishopsGate {
			return DrawMaterial
		}
	}
	return Ongoing
}

// Status classifies the position. score is the static evaluation used to
// gate material draws.
func (p *Position) Status(score int) Status {
	if !p.HasLegalMoves() {
		if p.InCheck() {
			return Checkmate
		}
		return Stalemate
	}
	if s := p.materialStatus(score); s != Ongoing {
		return s
	}
	if p.IsThreefoldDraw() {
		return DrawRepetition
	}
	return Ongoing
}
