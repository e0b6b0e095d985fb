package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/HenBOMB/FearieChess/internal/board"
)

// ErrNoLegalMoves is returned by BestMove when the side to move is mated
// or stalemated. The Result still carries the status.
var ErrNoLegalMoves = errors.New("no legal moves")

// SearchInfo reports a new best root move.
type SearchInfo struct {
	Depth int
	Move  board.Move
	Score int
	Nodes uint64
	Time  time.Duration
	PV    []board.Move
}

// Result is the outcome of a search.
type Result struct {
	Move   board.Move
	Line   []string // the principal line in log notation, first move first
	PV     []board.Move
	Score  int // centipawns for the side to move, or a mate score
	Depth  int
	Nodes  uint64
	Status board.Status // classification of the root position
}

// Engine searches positions to a fixed depth.
type Engine struct {
	workers int
	cache   *EvalCache

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine. workers above one search the root moves in
// parallel.
func NewEngine(workers int) *Engine {
	e := &Engine{cache: NewEvalCache(evalCacheEntries)}
	e.SetWorkers(workers)
	return e
}

// evalCacheEntries bounds the shared evaluation cache.
const evalCacheEntries = 1 << 18

// Clear drops cached evaluations.
func (e *Engine) Clear() {
	e.cache.Clear()
}

// Close releases the evaluation cache. The engine must not be used after.
func (e *Engine) Close() {
	e.cache.Close()
}

// SetWorkers sets the number of root workers; values below one mean one.
func (e *Engine) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	e.workers = n
}

// Workers returns the number of root workers.
func (e *Engine) Workers() int {
	return e.workers
}

// BestMove searches a sequential engine; see Engine.BestMove.
func BestMove(pos *board.Position, depth int) (Result, error) {
	e := NewEngine(1)
	defer e.Close()
	return e.BestMove(pos, depth)
}

// BestMove finds the best move for the side to move by a negamax search of
// depth plies. pos is left unchanged. Among equally scored moves the first
// in generation order wins, with any number of workers.
func (e *Engine) BestMove(pos *board.Position, depth int) (res Result, err error) {
	if depth < 1 || depth >= MaxPly {
		return Result{Move: board.NoMove}, fmt.Errorf("%w: depth %d out of range 1..%d", board.ErrMalformedInput, depth, MaxPly-1)
	}
	defer board.RecoverInvariant(&err)

	root := pos.Copy()
	res = Result{Move: board.NoMove, Depth: depth, Status: root.Status(Evaluate(root))}

	moves := root.GenerateLegalMoves().Moves()
	if len(moves) == 0 {
		return res, fmt.Errorf("%w: %s", ErrNoLegalMoves, res.Status)
	}

	start := time.Now()
	report := func(i, score int, pv []board.Move, nodes uint64) {
		if e.OnInfo == nil {
			return
		}
		e.OnInfo(SearchInfo{
			Depth: depth,
			Move:  moves[i],
			Score: score,
			Nodes: nodes,
			Time:  time.Since(start),
			PV:    pv,
		})
	}

	var best rootResult
	if e.workers > 1 && len(moves) > 1 {
		best, err = e.searchParallel(root, moves, depth, report)
	} else {
		best = e.searchSequential(root, moves, depth, report)
	}
	if err != nil {
		return res, err
	}

	res.Move = moves[best.index]
	res.Score = best.score
	res.PV = best.line
	res.Nodes = best.nodes
	res.Line = FormatLine(root, best.line, best.score)
	return res, nil
}

// rootResult is the best root move found so far.
type rootResult struct {
	index int
	score int
	line  []board.Move
	nodes uint64
}

// searchSequential runs the root loop: the first move strictly improving
// alpha is kept. When no move improves on the initial window the first
// move is returned.
func (e *Engine) searchSequential(root *board.Position, moves []board.Move, depth int, report func(int, int, []board.Move, uint64)) rootResult {
	s := &searcher{pos: root, cache: e.cache}
	alpha, beta := -Infinity, Infinity
	best := rootResult{index: -1}

	for i, m := range moves {
		score, child, check := s.child(m, depth, alpha, beta)
		if score > alpha {
			alpha = score
			best.index = i
			best.score = score
			best.line = prependMove(m, check, child)
			report(i, score, best.line, s.nodes)
		}
	}

	if best.index < 0 {
		best = rootResult{index: 0, score: alpha, line: []board.Move{moves[0]}}
	}
	best.nodes = s.nodes
	return best
}

// FormatLine renders a principal line from pos in log notation. The first
// entry is suffixed with " M<n>" when score is a mate score; a checking
// move is suffixed with "#" when it mates and "+" otherwise.
func FormatLine(pos *board.Position, line []board.Move, score int) []string {
	replay := pos.Copy()
	out := make([]string, 0, len(line))

	for i := 0; i < len(line); i++ {
		m := line[i]
		if m.IsNull() {
			continue
		}
		text := replay.LogMove(m)
		replay.MakeMove(m)

		if i+1 < len(line) && line[i+1].IsNull() {
			i++
			if replay.HasLegalMoves() {
				text += "+"
			} else {
				text += "#"
			}
		}
		if len(out) == 0 && IsMateScore(score) {
			text += fmt.Sprintf(" M%d", MateDistance(score))
		}
		out = append(out, text)
	}
	return out
}

// Perft counts the leaf nodes of the legal move tree.
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for _, move := range moves.Moves() {
		undo := pos.MakeMove(move)
		nodes += e.Perft(pos, depth-1)
		pos.UnmakeMove(undo)
	}

	return nodes
}

// Evaluate returns the static evaluation of a position.
func (e *Engine) Evaluate(pos *board.Position) int {
	return Evaluate(pos)
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if score > mateThreshold {
		return fmt.Sprintf("Mate in %d", MateDistance(score))
	}
	if score < -mateThreshold {
		return fmt.Sprintf("Mated in %d", MateDistance(score))
	}

	// Convert centipawns to pawns
	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	return fmt.Sprintf("%s%d.%02d", sign, score/100, score%100)
}
