package engine

import (
	"github.com/HenBOMB/FearieChess/internal/board"
)

// Search constants
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 128

	// DrawScore is returned to the side to move in a repeated position.
	// It is large so the opponent steers away from repetitions.
	DrawScore = 10000

	// mateThreshold separates mate scores from evaluations.
	mateThreshold = MateScore - MaxPly

	// Stalemate is scored against the stalemated side's opponent only
	// while more than this many pieces remain.
	stalematePieces = 5
)

// searcher runs negamax on a single position. The position is mutated
// and restored in place; it must not be shared while a search runs.
type searcher struct {
	pos   *board.Position
	cache *EvalCache
	ply   int
	nodes uint64
}

// evaluate returns the static evaluation, consulting the cache first.
func (s *searcher) evaluate() int {
	if score, ok := s.cache.Probe(s.pos); ok {
		return score
	}
	score := Evaluate(s.pos)
	s.cache.Store(s.pos, score)
	return score
}

// negamax returns the score of the position for the side to move and the
// principal line below it. The line holds moves in playing order; a
// board.NoMove entry follows every move that gives check.
func (s *searcher) negamax(depth, alpha, beta int) (int, []board.Move) {
	s.nodes++
	pos := s.pos

	if depth == 0 {
		return s.evaluate(), nil
	}
	if pos.IsThreefoldDraw() {
		return DrawScore, nil
	}

	moves := pos.GenerateLegalMoves()
	if moves.Len() == 0 {
		if pos.InCheck() {
			return -MateScore + s.ply, nil
		}
		if pos.PieceCount > stalematePieces {
			return DrawScore - s.ply, nil
		}
		return 0, nil
	}

	var line []board.Move
	for _, m := range moves.Moves() {
		score, child, check := s.child(m, depth, alpha, beta)
		if score > alpha {
			alpha = score
			line = prependMove(m, check, child)
		}
		if alpha >= beta {
			break
		}
	}
	return alpha, line
}

// child plays m, searches the reply with the negated window and takes m
// back. check reports whether m gives check; it is only computed when m
// raises alpha.
func (s *searcher) child(m board.Move, depth, alpha, beta int) (score int, line []board.Move, check bool) {
	undo := s.pos.MakeMove(m)
	s.ply++
	score, line = s.negamax(depth-1, -beta, -alpha)
	score = -score
	if score > alpha {
		check = s.pos.InCheck()
	}
	s.ply--
	s.pos.UnmakeMove(undo)
	return score, line, check
}

func prependMove(m board.Move, check bool, rest []board.Move) []board.Move {
	line := make([]board.Move, 0, len(rest)+2)
	line = append(line, m)
	if check {
		line = append(line, board.NoMove)
	}
	return append(line, rest...)
}

// IsMateScore reports whether score announces a forced mate.
func IsMateScore(score int) bool {
	return score > mateThreshold || score < -mateThreshold
}

// MateDistance returns the number of moves to mate encoded in score.
func MateDistance(score int) int {
	return (MateScore - abs(score) + 1) / 2
}

// abs returns the absolute value of an integer.
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
