package storage

import (
	"errors"
	"os"
	"reflect"
	"testing"

	"github.com/HenBOMB/FearieChess/internal/board"
)

func openTemp(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPreferences(t *testing.T) {
	s := openTemp(t)

	t.Run("Defaults", func(t *testing.T) {
		prefs, err := s.LoadPreferences()
		if err != nil {
			t.Fatalf("LoadPreferences: %v", err)
		}
		if prefs.Depth != 4 || prefs.Workers != 1 || prefs.Catalog != "faerie" {
			t.Errorf("unexpected defaults: %+v", prefs)
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		if err := s.SavePreferences(&Preferences{Depth: 6, Workers: 8, Catalog: "standard"}); err != nil {
			t.Fatalf("SavePreferences: %v", err)
		}
		prefs, err := s.LoadPreferences()
		if err != nil {
			t.Fatalf("LoadPreferences: %v", err)
		}
		if prefs.Depth != 6 || prefs.Workers != 8 || prefs.Catalog != "standard" {
			t.Errorf("loaded %+v", prefs)
		}
		if prefs.LastPlayed.IsZero() {
			t.Error("LastPlayed not stamped")
		}
	})
}

func TestFirstLaunch(t *testing.T) {
	s := openTemp(t)

	first, err := s.IsFirstLaunch()
	if err != nil || !first {
		t.Fatalf("IsFirstLaunch = %v, %v; want true", first, err)
	}
	if err := s.MarkFirstLaunchComplete(); err != nil {
		t.Fatalf("MarkFirstLaunchComplete: %v", err)
	}
	if first, _ := s.IsFirstLaunch(); first {
		t.Error("still first launch after marking")
	}
}

func TestStats(t *testing.T) {
	s := openTemp(t)

	stats, err := s.LoadStats()
	if err != nil {
		t.Fatalf("LoadStats: %v", err)
	}
	if stats.Searches != 0 || stats.HitRate() != 0 {
		t.Errorf("fresh stats = %+v", stats)
	}

	for _, hit := range []bool{true, false, false, true} {
		if err := s.RecordSearch(hit, 100); err != nil {
			t.Fatalf("RecordSearch: %v", err)
		}
	}
	stats, err = s.LoadStats()
	if err != nil {
		t.Fatalf("LoadStats: %v", err)
	}
	if stats.Searches != 4 || stats.CacheHits != 2 || stats.Nodes != 400 {
		t.Errorf("stats = %+v", stats)
	}
	if rate := stats.HitRate(); rate != 50 {
		t.Errorf("HitRate = %.2f, want 50", rate)
	}
}

func TestCatalogs(t *testing.T) {
	s := openTemp(t)

	if _, err := s.LoadCatalog("faerie"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadCatalog on empty store: %v", err)
	}

	for _, cat := range []*board.Catalog{board.DefaultCatalog(), board.StandardCatalog()} {
		if err := s.SaveCatalog(cat); err != nil {
			t.Fatalf("SaveCatalog(%s): %v", cat.Name, err)
		}
	}

	loaded, err := s.LoadCatalog("faerie")
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if loaded.Fingerprint() != board.DefaultCatalog().Fingerprint() {
		t.Error("stored catalog differs from the saved one")
	}

	names, err := s.ListCatalogs()
	if err != nil {
		t.Fatalf("ListCatalogs: %v", err)
	}
	if want := []string{"faerie", "standard"}; !reflect.DeepEqual(names, want) {
		t.Errorf("ListCatalogs = %v, want %v", names, want)
	}
}

func TestAnalysis(t *testing.T) {
	s := openTemp(t)
	fp := board.StandardCatalog().Fingerprint()

	if _, err := s.LoadAnalysis(fp, board.StartFEN, 3); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadAnalysis on empty store: %v", err)
	}

	want := &Analysis{Move: "e2e4", Line: []string{"e2 -> e4", "e7 -> e5"}, Score: 30, Depth: 3, Nodes: 1234}
	if err := s.SaveAnalysis(fp, board.StartFEN, want); err != nil {
		t.Fatalf("SaveAnalysis: %v", err)
	}

	got, err := s.LoadAnalysis(fp, board.StartFEN, 3)
	if err != nil {
		t.Fatalf("LoadAnalysis: %v", err)
	}
	if got.Move != want.Move || got.Score != want.Score || got.Nodes != want.Nodes || !reflect.DeepEqual(got.Line, want.Line) {
		t.Errorf("loaded %+v, want %+v", got, want)
	}
	if got.Created.IsZero() {
		t.Error("Created not stamped")
	}

	// Other depths and catalogs are separate entries.
	if _, err := s.LoadAnalysis(fp, board.StartFEN, 4); !errors.Is(err, ErrNotFound) {
		t.Errorf("depth 4: %v", err)
	}
	if _, err := s.LoadAnalysis(board.DefaultCatalog().Fingerprint(), board.StartFEN, 3); !errors.Is(err, ErrNotFound) {
		t.Errorf("other catalog: %v", err)
	}

	if err := s.DropAnalyses(); err != nil {
		t.Fatalf("DropAnalyses: %v", err)
	}
	if _, err := s.LoadAnalysis(fp, board.StartFEN, 3); !errors.Is(err, ErrNotFound) {
		t.Errorf("after drop: %v", err)
	}
}

func TestDataPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir == "" {
		t.Error("GetDataDir returned empty path")
	}

	// Verify directory exists
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("Data directory was not created: %s", dataDir)
	}

	t.Logf("Data directory: %s", dataDir)
}
