// Package engine implements the Faerie chess static evaluator and the
// fixed-depth negamax search.
package engine

import (
	"github.com/HenBOMB/FearieChess/internal/board"
)

const (
	// maxPhase is the game phase of the full starting material; lower
	// values blend towards the endgame tables.
	maxPhase = 24

	// bishopPairBonus is added per saturated bishop lead.
	bishopPairBonus = 100
)

// Evaluate returns the static evaluation of the position in centipawns
// from the side to move's perspective.
func Evaluate(pos *board.Position) int {
	var mgScore, egScore int
	var phase int
	var bishops [2]int

	cat := pos.Catalog
	for occ := pos.AllOccupied; occ != 0; {
		sq := occ.PopLSB()
		pc := pos.Board[sq]
		spec := cat.Spec(pc.Type)

		sign := 1
		pstSq := sq ^ 56 // tables are stored rank 8 first
		if pc.Color == board.Black {
			sign = -1
			pstSq = sq
		}

		mgScore += sign * spec.Value
		egScore += sign * spec.Value
		mg, eg := tableValues(spec, pstSq)
		mgScore += sign * mg
		egScore += sign * eg

		phase += spec.Phase
		if spec.Has(board.AbilityBishop) {
			bishops[pc.Color]++
		}
	}

	if phase > maxPhase {
		phase = maxPhase
	}
	score := (mgScore*phase + egScore*(maxPhase-phase)) / maxPhase
	score += evaluateBishopPair(bishops)

	if pos.SideToMove == board.Black {
		return -score
	}
	return score
}

// tableValues returns the midgame and endgame square bonus. A piece with
// only a midgame table uses it for both phases.
func tableValues(spec *board.PieceSpec, sq board.Square) (mg, eg int) {
	if len(spec.MG) == 64 {
		mg = spec.MG[sq]
		eg = mg
	}
	if len(spec.EG) == 64 {
		eg = spec.EG[sq]
	}
	return mg, eg
}

// evaluateBishopPair rewards the side with more bishops by one pawn at most.
func evaluateBishopPair(bishops [2]int) int {
	diff := bishops[board.White] - bishops[board.Black]
	switch {
	case diff > 1:
		diff = 1
	case diff < -1:
		diff = -1
	}
	return diff * bishopPairBonus
}

// EvaluateMaterial returns the material balance from White's perspective.
func EvaluateMaterial(pos *board.Position) int {
	score := 0
	for occ := pos.AllOccupied; occ != 0; {
		sq := occ.PopLSB()
		pc := pos.Board[sq]
		v := pos.Catalog.Spec(pc.Type).Value
		if pc.Color == board.Black {
			v = -v
		}
		score += v
	}
	return score
}

// GamePhase returns the capped phase of the position, maxPhase at the start.
func GamePhase(pos *board.Position) int {
	phase := 0
	for occ := pos.AllOccupied; occ != 0; {
		phase += pos.Catalog.Spec(pos.Board[occ.PopLSB()].Type).Phase
	}
	if phase > maxPhase {
		phase = maxPhase
	}
	return phase
}
