package engine

import (
	"log"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/HenBOMB/FearieChess/internal/board"
)

// EvalCache holds static evaluations keyed by position hash. It is safe
// for concurrent use and shared by all workers of an engine. A nil
// *EvalCache is valid and caches nothing.
type EvalCache struct {
	cache *ristretto.Cache[uint64, int]
}

// NewEvalCache creates a cache holding up to entries evaluations. It
// returns nil if the cache cannot be built.
func NewEvalCache(entries int64) *EvalCache {
	c, err := ristretto.NewCache(&ristretto.Config[uint64, int]{
		NumCounters: entries * 10,
		MaxCost:     entries,
		BufferItems: 64,

		IgnoreInternalCost: true,
	})
	if err != nil {
		log.Printf("[EvalCache] disabled: %v", err)
		return nil
	}
	return &EvalCache{cache: c}
}

// cacheKey mixes the catalog into the position hash: equal boards of
// different catalogs evaluate differently.
func cacheKey(pos *board.Position) uint64 {
	return pos.Hash ^ pos.Catalog.Fingerprint()
}

// Probe looks up the evaluation of pos.
func (ec *EvalCache) Probe(pos *board.Position) (int, bool) {
	if ec == nil {
		return 0, false
	}
	return ec.cache.Get(cacheKey(pos))
}

// Store saves the evaluation of pos.
func (ec *EvalCache) Store(pos *board.Position, score int) {
	if ec == nil {
		return
	}
	ec.cache.Set(cacheKey(pos), score, 1)
}

// Clear drops every entry.
func (ec *EvalCache) Clear() {
	if ec == nil {
		return
	}
	ec.cache.Clear()
}

// Close stops the cache's background goroutines.
func (ec *EvalCache) Close() {
	if ec == nil {
		return
	}
	ec.cache.Close()
}
