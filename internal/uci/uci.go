// Package uci implements a line-oriented text protocol, modelled on UCI,
// for driving the Faerie chess engine.
package uci

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/HenBOMB/FearieChess/internal/board"
	"github.com/HenBOMB/FearieChess/internal/engine"
	"github.com/HenBOMB/FearieChess/internal/storage"
)

const (
	defaultDepth = 4
	maxDepth     = 12
	maxWorkers   = 64
)

// UCI implements the protocol handler.
type UCI struct {
	engine   *engine.Engine
	store    *storage.Storage // nil disables caching
	catalog  *board.Catalog
	position *board.Position
	depth    int

	// undos holds the moves applied by "position ... moves", last on top.
	undos []board.UndoInfo

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	// CPU profiling
	profileFile *os.File
}

// New creates a protocol handler reading stdin and writing stdout. store
// may be nil.
func New(eng *engine.Engine, cat *board.Catalog, store *storage.Storage) *UCI {
	return &UCI{
		engine:   eng,
		store:    store,
		catalog:  cat,
		position: board.NewPosition(cat),
		depth:    defaultDepth,
		in:       os.Stdin,
		out:      os.Stdout,
		errOut:   os.Stderr,
	}
}

// SetIO redirects the protocol streams.
func (u *UCI) SetIO(in io.Reader, out, errOut io.Writer) {
	u.in, u.out, u.errOut = in, out, errOut
}

// SetDepth sets the depth used by "go" without a depth argument.
func (u *UCI) SetDepth(depth int) {
	if depth >= 1 && depth <= maxDepth {
		u.depth = depth
	}
}

// Position returns the current position.
func (u *UCI) Position() *board.Position {
	return u.position
}

// Run reads commands until "quit" or end of input.
func (u *UCI) Run() error {
	scanner := bufio.NewScanner(u.in)

	for scanner.Scan() {
		if !u.Execute(scanner.Text()) {
			break
		}
	}
	u.stopProfile()
	return scanner.Err()
}

// Execute runs one command line. It returns false on "quit".
func (u *UCI) Execute(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case "uci":
		u.handleUCI()
	case "isready":
		fmt.Fprintln(u.out, "readyok")
	case "ucinewgame":
		u.handleNewGame()
	case "position":
		u.handlePosition(args)
	case "go":
		u.handleGo(args)
	case "stop":
		// Searches run to completion before the next command is read.
	case "quit":
		return false
	case "setoption":
		u.handleSetOption(args)
	// Debug commands
	case "d":
		u.handleDisplay()
	case "moves":
		u.handleMoves(args)
	case "undo":
		u.handleUndo()
	case "perft":
		u.handlePerft(args)
	case "eval":
		u.handleEval()
	case "catalogs":
		u.handleCatalogs()
	case "clearcache":
		u.handleClearCache()
	case "stats":
		u.handleStats()
	default:
		u.infoString("Unknown command: %s", cmd)
	}
	return true
}

func (u *UCI) infoString(format string, args ...any) {
	fmt.Fprintf(u.errOut, "info string "+format+"\n", args...)
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	fmt.Fprintln(u.out, "id name FaerieChess")
	fmt.Fprintln(u.out, "id author HenBOMB")
	fmt.Fprintln(u.out)
	fmt.Fprintf(u.out, "option name Depth type spin default %d min 1 max %d\n", defaultDepth, maxDepth)
	fmt.Fprintf(u.out, "option name Workers type spin default 1 min 1 max %d\n", maxWorkers)
	fmt.Fprintf(u.out, "option name Catalog type string default %s\n", u.catalog.Name)
	fmt.Fprintln(u.out, "option name CPUProfile type string default <empty>")
	fmt.Fprintln(u.out, "uciok")
}

// handleNewGame resets the engine for a new game.
func (u *UCI) handleNewGame() {
	u.engine.Clear()
	u.position = board.NewPosition(u.catalog)
	u.undos = nil
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
//
// An unreadable FEN falls back to the starting position.
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	switch args[0] {
	case "startpos":
		u.position = board.NewPosition(u.catalog)
	case "fen":
		u.position = board.LoadFEN(strings.Join(args[1:movesAt], " "), u.catalog)
	default:
		u.infoString("Invalid position command: %s", args[0])
		return
	}
	u.undos = nil

	if movesAt == len(args) {
		return
	}
	for _, moveStr := range args[movesAt+1:] {
		undo, err := u.playMove(moveStr)
		if err != nil {
			u.infoString("Invalid move: %s (%v)", moveStr, err)
			return
		}
		u.undos = append(u.undos, undo)
	}
}

func (u *UCI) playMove(s string) (board.UndoInfo, error) {
	m, err := u.position.ParseMove(s)
	if err != nil {
		return board.UndoInfo{}, err
	}
	return u.position.PlayMove(m)
}

// handleGo searches the current position. Only "depth" is understood.
func (u *UCI) handleGo(args []string) {
	depth := u.depth
	for i := 0; i < len(args); i++ {
		if args[i] == "depth" && i+1 < len(args) {
			if d, err := strconv.Atoi(args[i+1]); err == nil {
				depth = d
			}
			i++
		}
	}
	if depth < 1 || depth > maxDepth {
		u.infoString("Depth %d out of range 1..%d", depth, maxDepth)
		fmt.Fprintln(u.out, "bestmove 0000")
		return
	}

	if a := u.cachedAnalysis(depth); a != nil {
		u.infoString("cached analysis")
		fmt.Fprintf(u.out, "info depth %d %s\n", a.Depth, scoreString(a.Score))
		u.sendLine(a.Line)
		fmt.Fprintf(u.out, "bestmove %s\n", a.Move)
		u.recordSearch(true, 0)
		return
	}

	u.engine.OnInfo = u.sendInfo
	defer func() { u.engine.OnInfo = nil }()

	res, err := u.engine.BestMove(u.position, depth)
	if errors.Is(err, engine.ErrNoLegalMoves) {
		u.infoString("%s", res.Status)
		fmt.Fprintln(u.out, "bestmove 0000")
		return
	}
	if err != nil {
		u.infoString("Search failed: %v", err)
		fmt.Fprintln(u.out, "bestmove 0000")
		return
	}

	u.sendLine(res.Line)
	move := u.position.MoveString(res.Move)
	fmt.Fprintf(u.out, "bestmove %s\n", move)

	u.saveAnalysis(&storage.Analysis{
		Move:  move,
		Line:  res.Line,
		Score: res.Score,
		Depth: depth,
		Nodes: res.Nodes,
	})
	u.recordSearch(false, res.Nodes)
}

// cacheable reports whether the search result depends only on the FEN:
// no earlier position can repeat.
func (u *UCI) cacheable() bool {
	return u.store != nil && (len(u.position.History) == 1 || u.position.HalfMoveClock == 0)
}

func (u *UCI) cachedAnalysis(depth int) *storage.Analysis {
	if !u.cacheable() {
		return nil
	}
	a, err := u.store.LoadAnalysis(u.catalog.Fingerprint(), u.position.ToFEN(), depth)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			u.infoString("Analysis cache: %v", err)
		}
		return nil
	}
	return a
}

func (u *UCI) saveAnalysis(a *storage.Analysis) {
	if !u.cacheable() {
		return
	}
	if err := u.store.SaveAnalysis(u.catalog.Fingerprint(), u.position.ToFEN(), a); err != nil {
		u.infoString("Analysis cache: %v", err)
	}
}

func (u *UCI) recordSearch(hit bool, nodes uint64) {
	if u.store == nil {
		return
	}
	if err := u.store.RecordSearch(hit, nodes); err != nil {
		u.infoString("Stats: %v", err)
	}
}

func scoreString(score int) string {
	if engine.IsMateScore(score) {
		n := engine.MateDistance(score)
		if score < 0 {
			n = -n
		}
		return fmt.Sprintf("score mate %d", n)
	}
	return fmt.Sprintf("score cp %d", score)
}

func (u *UCI) sendInfo(info engine.SearchInfo) {
	var parts []string

	parts = append(parts, fmt.Sprintf("depth %d", info.Depth))
	parts = append(parts, scoreString(info.Score))
	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", info.Time.Milliseconds()))

	if len(info.PV) > 0 {
		pv := make([]string, 0, len(info.PV))
		for _, m := range info.PV {
			if !m.IsNull() {
				pv = append(pv, u.position.MoveString(m))
			}
		}
		parts = append(parts, "pv "+strings.Join(pv, " "))
	}

	fmt.Fprintf(u.out, "info %s\n", strings.Join(parts, " "))
}

func (u *UCI) sendLine(line []string) {
	if len(line) > 0 {
		fmt.Fprintf(u.out, "info string line %s\n", strings.Join(line, ", "))
	}
}

func (u *UCI) handleSetOption(args []string) {
	var name, value string
	readingName := false
	readingValue := false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName = true
			readingValue = false
		case "value":
			readingName = false
			readingValue = true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	// Handle options
	switch strings.ToLower(name) {
	case "depth":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > maxDepth {
			u.infoString("Invalid depth: %s", value)
			return
		}
		u.depth = n
	case "workers":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > maxWorkers {
			u.infoString("Invalid worker count: %s", value)
			return
		}
		u.engine.SetWorkers(n)
	case "catalog":
		cat, err := ResolveCatalog(value, u.store)
		if err != nil {
			u.infoString("Failed to load catalog: %v", err)
			return
		}
		u.catalog = cat
		u.handleNewGame()
		u.infoString("Catalog %s loaded (%d pieces)", cat.Name, cat.Len())
	case "cpuprofile":
		u.stopProfile()
		// Start new profile if path provided
		if value != "" && value != "stop" {
			f, err := os.Create(value)
			if err != nil {
				u.infoString("Failed to create profile: %v", err)
				return
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				f.Close()
				u.infoString("Failed to start profile: %v", err)
				return
			}
			u.profileFile = f
			u.infoString("CPU profiling to %s", value)
		}
		return
	default:
		u.infoString("Unknown option: %s", name)
		return
	}
	u.savePreferences()
}

func (u *UCI) stopProfile() {
	if u.profileFile != nil {
		pprof.StopCPUProfile()
		u.profileFile.Close()
		u.infoString("CPU profile saved")
		u.profileFile = nil
	}
}

func (u *UCI) savePreferences() {
	if u.store == nil {
		return
	}
	prefs := &storage.Preferences{Depth: u.depth, Workers: u.engine.Workers(), Catalog: u.catalog.Name}
	if err := u.store.SavePreferences(prefs); err != nil {
		u.infoString("Preferences: %v", err)
	}
}

// ResolveCatalog finds a catalog by built-in name ("faerie", "standard"),
// by name in store, or reads it from a JSON file. Catalogs read from files
// are stored for later use by name.
func ResolveCatalog(name string, store *storage.Storage) (*board.Catalog, error) {
	switch name {
	case "", "faerie", "default":
		return board.DefaultCatalog(), nil
	case "standard":
		return board.StandardCatalog(), nil
	}

	if store != nil {
		cat, err := store.LoadCatalog(name)
		if err == nil {
			return cat, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}

	cat, err := board.LoadCatalogFile(name)
	if err != nil {
		return nil, err
	}
	if store != nil && cat.Name != "" {
		if err := store.SaveCatalog(cat); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

// handleDisplay prints the board, FEN, status and game record.
func (u *UCI) handleDisplay() {
	pos := u.position
	fmt.Fprint(u.out, pos.String())
	fmt.Fprintf(u.out, "Fen: %s\n", pos.ToFEN())
	fmt.Fprintf(u.out, "Status: %s\n", pos.Status(engine.Evaluate(pos)))
	if pgn := pos.PGN(); pgn != "" {
		fmt.Fprintf(u.out, "Moves: %s\n", pgn)
	}
}

// handleMoves lists the legal moves, of one square when given.
func (u *UCI) handleMoves(args []string) {
	var moves *board.MoveList
	if len(args) > 0 {
		sq, err := board.ParseSquare(args[0])
		if err != nil {
			u.infoString("Invalid square: %s", args[0])
			return
		}
		moves = u.position.LegalMovesFrom(sq)
	} else {
		moves = u.position.GenerateLegalMoves()
	}

	out := make([]string, 0, moves.Len())
	for _, m := range moves.Moves() {
		out = append(out, u.position.MoveString(m))
	}
	fmt.Fprintf(u.out, "moves %s\n", strings.Join(out, " "))
}

// handleUndo takes back the last move applied by "position ... moves".
func (u *UCI) handleUndo() {
	if len(u.undos) == 0 {
		u.infoString("Nothing to undo")
		return
	}
	last := u.undos[len(u.undos)-1]
	u.undos = u.undos[:len(u.undos)-1]
	u.position.UnmakeMove(last)
}

// handleEval prints the static evaluation for the side to move.
func (u *UCI) handleEval() {
	score := engine.Evaluate(u.position)
	fmt.Fprintf(u.out, "Evaluation: %s (cp %d, phase %d)\n", engine.ScoreToString(score), score, engine.GamePhase(u.position))
}

// handlePerft runs a perft test, listing the count below each root move.
func (u *UCI) handlePerft(args []string) {
	depth := 3
	if len(args) > 0 {
		d, err := strconv.Atoi(args[0])
		if err != nil || d < 1 {
			u.infoString("Invalid perft depth: %s", args[0])
			return
		}
		depth = d
	}

	start := time.Now()
	var nodes uint64
	for _, m := range u.position.GenerateLegalMoves().Moves() {
		undo := u.position.MakeMove(m)
		n := u.engine.Perft(u.position, depth-1)
		u.position.UnmakeMove(undo)
		fmt.Fprintf(u.out, "%s: %d\n", u.position.MoveString(m), n)
		nodes += n
	}
	elapsed := time.Since(start)

	fmt.Fprintf(u.out, "Nodes: %d\n", nodes)
	fmt.Fprintf(u.out, "Time: %v\n", elapsed)
	if elapsed > 0 {
		nps := float64(nodes) / elapsed.Seconds()
		fmt.Fprintf(u.out, "NPS: %.0f\n", nps)
	}
}

// handleCatalogs lists the built-in and stored catalogs.
func (u *UCI) handleCatalogs() {
	names := []string{board.DefaultCatalog().Name, board.StandardCatalog().Name}
	if u.store != nil {
		stored, err := u.store.ListCatalogs()
		if err != nil {
			u.infoString("Catalogs: %v", err)
		}
		for _, name := range stored {
			if !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
	}
	fmt.Fprintf(u.out, "catalogs %s\n", strings.Join(names, " "))
}

// handleClearCache drops cached evaluations and stored analyses.
func (u *UCI) handleClearCache() {
	u.engine.Clear()
	if u.store != nil {
		if err := u.store.DropAnalyses(); err != nil {
			u.infoString("Analysis cache: %v", err)
			return
		}
	}
	u.infoString("Cache cleared")
}

// handleStats prints the search statistics kept in the store.
func (u *UCI) handleStats() {
	if u.store == nil {
		u.infoString("No database")
		return
	}
	stats, err := u.store.LoadStats()
	if err != nil {
		u.infoString("Stats: %v", err)
		return
	}
	fmt.Fprintf(u.out, "Searches: %d\n", stats.Searches)
	fmt.Fprintf(u.out, "Cache hits: %d (%.1f%%)\n", stats.CacheHits, stats.HitRate())
	fmt.Fprintf(u.out, "Nodes: %d\n", stats.Nodes)
}
