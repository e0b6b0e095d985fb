package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/HenBOMB/FearieChess/internal/board"
	"github.com/HenBOMB/FearieChess/internal/engine"
	"github.com/HenBOMB/FearieChess/internal/storage"
	"github.com/HenBOMB/FearieChess/internal/uci"
)

var (
	cpuprofile  = flag.String("cpuprofile", "", "write cpu profile to file")
	catalogName = flag.String("catalog", "", "piece catalog: faerie, standard, a stored name or a JSON file")
	dbDir       = flag.String("db", "", "database directory (default: user data dir)")
	noDB        = flag.Bool("nodb", false, "run without the database")
	workers     = flag.Int("workers", 0, "search workers (default: saved preference)")
	depth       = flag.Int("depth", 0, "default search depth (default: saved preference)")
)

func main() {
	flag.Parse()

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	store := openStorage()
	if store != nil {
		defer store.Close()
	}

	prefs := loadPreferences(store)
	if *catalogName != "" {
		prefs.Catalog = *catalogName
	}
	if *workers > 0 {
		prefs.Workers = *workers
	}
	if *depth > 0 {
		prefs.Depth = *depth
	}

	cat, err := uci.ResolveCatalog(prefs.Catalog, store)
	if err != nil {
		log.Printf("Warning: catalog %q not loaded: %v (using %s)", prefs.Catalog, err, board.DefaultCatalog().Name)
		cat = board.DefaultCatalog()
	}

	eng := engine.NewEngine(prefs.Workers)
	defer eng.Close()

	protocol := uci.New(eng, cat, store)
	protocol.SetDepth(prefs.Depth)
	if err := protocol.Run(); err != nil {
		log.Printf("Input error: %v", err)
	}
}

// openStorage opens the database, or returns nil when it is disabled or
// unavailable.
func openStorage() *storage.Storage {
	if *noDB {
		return nil
	}

	var (
		store *storage.Storage
		err   error
	)
	if *dbDir != "" {
		store, err = storage.Open(*dbDir)
	} else {
		store, err = storage.NewStorage()
	}
	if err != nil {
		log.Printf("Warning: Failed to initialize storage: %v", err)
		return nil
	}

	isFirst, err := store.IsFirstLaunch()
	if err != nil {
		log.Printf("Warning: Failed to check first launch: %v", err)
		return store
	}
	if isFirst {
		for _, cat := range []*board.Catalog{board.DefaultCatalog(), board.StandardCatalog()} {
			if err := store.SaveCatalog(cat); err != nil {
				log.Printf("Warning: Failed to store catalog %s: %v", cat.Name, err)
			}
		}
		if err := store.MarkFirstLaunchComplete(); err != nil {
			log.Printf("Warning: Failed to mark first launch complete: %v", err)
		}
	}
	return store
}

func loadPreferences(store *storage.Storage) *storage.Preferences {
	if store == nil {
		return storage.DefaultPreferences()
	}
	prefs, err := store.LoadPreferences()
	if err != nil {
		log.Printf("Warning: Failed to load preferences: %v", err)
		return storage.DefaultPreferences()
	}
	return prefs
}
