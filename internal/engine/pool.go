package engine

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/HenBOMB/FearieChess/internal/board"
)

// Worker owns a private copy of the root position and searches one root
// move at a time.
type Worker struct {
	id    int
	pos   *board.Position
	cache *EvalCache // shared
	nodes uint64
}

// NewWorker creates a worker searching its own copy of root.
func NewWorker(id int, root *board.Position, cache *EvalCache) *Worker {
	return &Worker{id: id, pos: root.Copy(), cache: cache}
}

// searchRoot plays the root move m and searches the reply. alpha is the
// best root score known when the task starts. It returns the score, the
// line and the nodes searched.
func (w *Worker) searchRoot(m board.Move, depth, alpha int) (int, []board.Move, uint64) {
	// One below the shared best keeps scores equal to it exact, so ties
	// are resolved by move order as in the sequential loop.
	if alpha > -Infinity {
		alpha--
	}
	s := &searcher{pos: w.pos, cache: w.cache}
	score, child, check := s.child(m, depth, alpha, Infinity)
	w.nodes += s.nodes
	return score, prependMove(m, check, child), s.nodes
}

// bestRegister is the best root result shared by the workers, with the
// nodes searched by finished tasks.
type bestRegister struct {
	mu    sync.Mutex
	best  rootResult
	nodes uint64
}

func (r *bestRegister) alpha() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.best.index < 0 {
		return -Infinity
	}
	return r.best.score
}

// offer adds the nodes of a finished task and records its root result
// when it beats the best one: a higher score, or an equal score from an
// earlier move.
func (r *bestRegister) offer(i, score int, line []board.Move, nodes uint64, report func(int, int, []board.Move, uint64)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes += nodes
	b := &r.best
	if b.index >= 0 && (score < b.score || (score == b.score && i > b.index)) {
		return
	}
	b.index, b.score, b.line = i, score, line
	report(i, score, line, r.nodes)
}

// searchParallel searches the root moves on e.workers goroutines. The
// result equals that of searchSequential.
func (e *Engine) searchParallel(root *board.Position, moves []board.Move, depth int, report func(int, int, []board.Move, uint64)) (rootResult, error) {
	workers := min(e.workers, len(moves))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers)

	idle := make(chan *Worker, workers)
	for id := 0; id < workers; id++ {
		idle <- NewWorker(id, root, e.cache)
	}

	reg := &bestRegister{best: rootResult{index: -1}}
	for i, m := range moves {
		i, m := i, m
		g.Go(func() (err error) {
			if ctx.Err() != nil {
				return nil
			}
			w := <-idle
			defer func() {
				if err != nil {
					log.Printf("[Worker %d] search of %s aborted: %v", w.id, m, err)
					w = &Worker{id: w.id, pos: root.Copy(), cache: w.cache, nodes: w.nodes}
				}
				idle <- w
			}()
			defer board.RecoverInvariant(&err)

			score, line, nodes := w.searchRoot(m, depth, reg.alpha())
			reg.offer(i, score, line, nodes, report)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return rootResult{}, err
	}

	best := reg.best
	close(idle)
	for w := range idle {
		best.nodes += w.nodes
	}
	if best.index < 0 {
		best = rootResult{index: 0, score: -Infinity, line: []board.Move{moves[0]}, nodes: best.nodes}
	}
	return best, nil
}
