package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/HenBOMB/FearieChess/internal/board"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	keyFirstLaunch = "first_launch"

	prefixCatalog  = "catalog/"
	prefixAnalysis = "analysis/"
)

// AnalysisTTL is how long a cached search result is kept.
const AnalysisTTL = 30 * 24 * time.Hour

// ErrNotFound is returned when a catalog or analysis is not stored.
var ErrNotFound = errors.New("not found")

// Preferences stores front-end settings.
type Preferences struct {
	Depth      int       `json:"depth"`
	Workers    int       `json:"workers"`
	Catalog    string    `json:"catalog"`
	LastPlayed time.Time `json:"last_played"`
}

// DefaultPreferences returns default preferences
func DefaultPreferences() *Preferences {
	return &Preferences{
		Depth:      4,
		Workers:    1,
		Catalog:    "faerie",
		LastPlayed: time.Now(),
	}
}

// Stats counts searches served by the front end.
type Stats struct {
	Searches  int    `json:"searches"`
	CacheHits int    `json:"cache_hits"`
	Nodes     uint64 `json:"nodes"`
}

// HitRate returns the share of searches answered from the cache (0-100).
func (s *Stats) HitRate() float64 {
	if s.Searches == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(s.Searches) * 100
}

// Analysis is a cached search result.
type Analysis struct {
	Move    string    `json:"move"` // coordinate notation
	Line    []string  `json:"line"`
	Score   int       `json:"score"`
	Depth   int       `json:"depth"`
	Nodes   uint64    `json:"nodes"`
	Created time.Time `json:"created"`
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// NewStorage opens the database in the platform data directory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Open opens or creates a database in dir.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// IsFirstLaunch returns true if this is the first launch
func (s *Storage) IsFirstLaunch() (bool, error) {
	var firstLaunch bool = true

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyFirstLaunch))
		if err == badger.ErrKeyNotFound {
			firstLaunch = true
			return nil
		}
		if err != nil {
			return err
		}
		firstLaunch = false
		return nil
	})

	return firstLaunch, err
}

// MarkFirstLaunchComplete marks that first launch setup is complete
func (s *Storage) MarkFirstLaunchComplete() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyFirstLaunch), []byte("done"))
	})
}

// putJSON stores v under key, expiring after ttl when ttl is positive.
func (s *Storage) putJSON(key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), data)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// getJSON decodes the value under key into v. found is false when the key
// does not exist.
func (s *Storage) getJSON(key string, v any) (found bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	return found, err
}

// SavePreferences saves preferences
func (s *Storage) SavePreferences(prefs *Preferences) error {
	prefs.LastPlayed = time.Now()
	return s.putJSON(keyPreferences, prefs, 0)
}

// LoadPreferences loads preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()
	_, err := s.getJSON(keyPreferences, prefs)
	return prefs, err
}

// SaveStats saves search statistics
func (s *Storage) SaveStats(stats *Stats) error {
	return s.putJSON(keyStats, stats, 0)
}

// LoadStats loads search statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*Stats, error) {
	stats := &Stats{}
	_, err := s.getJSON(keyStats, stats)
	return stats, err
}

// RecordSearch adds one search to the statistics.
func (s *Storage) RecordSearch(cacheHit bool, nodes uint64) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.Searches++
	if cacheHit {
		stats.CacheHits++
	}
	stats.Nodes += nodes

	return s.SaveStats(stats)
}

// SaveCatalog stores a catalog under its name.
func (s *Storage) SaveCatalog(cat *board.Catalog) error {
	if cat.Name == "" {
		return fmt.Errorf("%w: catalog has no name", board.ErrInvalidCatalog)
	}
	data, err := cat.MarshalIndent()
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefixCatalog+cat.Name), data)
	})
}

// LoadCatalog reads and validates the catalog stored under name.
func (s *Storage) LoadCatalog(name string) (*board.Catalog, error) {
	var data []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixCatalog + name))
		if err == badger.ErrKeyNotFound {
			return fmt.Errorf("catalog %q: %w", name, ErrNotFound)
		}
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	return board.ParseCatalog(data)
}

// ListCatalogs returns the names of the stored catalogs in key order.
func (s *Storage) ListCatalogs() ([]string, error) {
	var names []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixCatalog)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			names = append(names, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})

	return names, err
}

func analysisKey(fingerprint uint64, fen string, depth int) string {
	return fmt.Sprintf("%s%016x/%d/%s", prefixAnalysis, fingerprint, depth, fen)
}

// SaveAnalysis caches a search result for a catalog fingerprint and FEN.
func (s *Storage) SaveAnalysis(fingerprint uint64, fen string, a *Analysis) error {
	if a.Created.IsZero() {
		a.Created = time.Now()
	}
	return s.putJSON(analysisKey(fingerprint, fen, a.Depth), a, AnalysisTTL)
}

// LoadAnalysis returns the cached result of a search, or ErrNotFound.
func (s *Storage) LoadAnalysis(fingerprint uint64, fen string, depth int) (*Analysis, error) {
	a := &Analysis{}
	found, err := s.getJSON(analysisKey(fingerprint, fen, depth), a)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return a, nil
}

// DropAnalyses deletes every cached search result.
func (s *Storage) DropAnalyses() error {
	return s.db.DropPrefix([]byte(prefixAnalysis))
}
