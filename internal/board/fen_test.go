package board

import (
	"errors"
	"testing"
)

const faerieFEN = "r3k2r/1P4pp/3!th4/8/2J1H3/4I3/!PE5PP/R3K2R w KQkq - 0 1"

func TestFENRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		cat  *Catalog
	}{
		{"start", StartFEN, StandardCatalog()},
		{"kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", StandardCatalog()},
		{"en passant", "rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3", StandardCatalog()},
		{"black to move", "4k3/8/8/8/8/8/8/4K2R b K - 12 40", StandardCatalog()},
		{"faerie", faerieFEN, DefaultCatalog()},
		{"two-letter labels", "4k3/8/8/3!th4/1!pe6/8/!PE7/3!TH3K w - - 0 1", DefaultCatalog()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen, tc.cat)
			if err != nil {
				t.Fatalf("ParseFEN(%q): %v", tc.fen, err)
			}
			if got := pos.ToFEN(); got != tc.fen {
				t.Errorf("ToFEN() = %q, want %q", got, tc.fen)
			}
			if pos.Hash != pos.ComputeHash() {
				t.Errorf("Hash %016x does not match ComputeHash %016x", pos.Hash, pos.ComputeHash())
			}
		})
	}
}

func TestFENTruncatedFields(t *testing.T) {
	tests := []struct {
		fen  string
		want string
	}{
		{"4k3/8/8/8/8/8/8/4K3", "4k3/8/8/8/8/8/8/4K3 w - - 0 1"},
		{"4k3/8/8/8/8/8/8/4K3 b", "4k3/8/8/8/8/8/8/4K3 b - - 0 1"},
		{"r3k3/8/8/8/8/8/8/4K3 b q", "r3k3/8/8/8/8/8/8/4K3 b q - 0 1"},
		{"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1"},
	}

	for _, tc := range tests {
		pos, err := ParseFEN(tc.fen, StandardCatalog())
		if err != nil {
			t.Errorf("ParseFEN(%q): %v", tc.fen, err)
			continue
		}
		if got := pos.ToFEN(); got != tc.want {
			t.Errorf("ToFEN() = %q, want %q", got, tc.want)
		}
	}
}

func TestFENMalformed(t *testing.T) {
	bad := []string{
		"",
		"   ",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNRR w KQkq - 0 1",
		"rnbqkbnr/ppppzppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQxq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e4 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - -1 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 0",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQ1BNR w kq - 0 1",
		"4k3/8/8/8/8/8/8/4K2! w - - 0 1",
		"4k3/8/8/8/8/8/8/4K3 w - - 0 1 extra",
	}

	for _, fen := range bad {
		if _, err := ParseFEN(fen, StandardCatalog()); !errors.Is(err, ErrMalformedInput) {
			t.Errorf("ParseFEN(%q) error = %v, want ErrMalformedInput", fen, err)
		}
	}

	// Faerie labels are unknown to the orthodox catalog.
	if _, err := ParseFEN(faerieFEN, StandardCatalog()); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("faerie FEN accepted by the standard catalog: %v", err)
	}
}

func TestFENEnPassantNeedsVictim(t *testing.T) {
	bad := []struct {
		name string
		fen  string
	}{
		{"nothing behind the target", "4k3/8/8/8/8/8/4P3/4K3 w - e6 0 1"},
		{"own pawn behind the target", "4k3/8/8/3PP3/8/8/8/4K3 w - e6 0 1"},
		{"target occupied", "4k3/8/4n3/3Pp3/8/8/8/4K3 w - e6 0 1"},
		{"piece behind is not a pawn", "4k3/8/8/3Pn3/8/8/8/4K3 w - e6 0 1"},
	}
	for _, tc := range bad {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseFEN(tc.fen, StandardCatalog()); !errors.Is(err, ErrMalformedInput) {
				t.Errorf("ParseFEN error = %v, want ErrMalformedInput", err)
			}
			// The fallback must be playable.
			pos := LoadFEN(tc.fen, StandardCatalog())
			if pos.ToFEN() != StartFEN || pos.GenerateLegalMoves().Len() != 20 {
				t.Errorf("LoadFEN = %s", pos.ToFEN())
			}
		})
	}

	pos := mustFEN(t, "4k3/8/8/8/3pP3/8/8/4K3 b - e3 0 1", StandardCatalog())
	if pos.EnPassant != E3 {
		t.Errorf("en passant square = %v, want e3", pos.EnPassant)
	}
	if !pos.LegalMovesFrom(D4).Contains(NewMove(D4, E3, FlagEnPassant)) {
		t.Error("en passant capture d4xe3 missing")
	}
}

func TestEnPassantWithoutVictim(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/3P4/8/8/8/4K3 w - - 0 1", StandardCatalog())
	pos.EnPassant = E6
	for _, m := range pos.GenerateLegalMoves().Moves() {
		if m.IsEnPassant() {
			t.Errorf("en passant %v generated without a victim", m)
		}
	}
}

func TestLoadFENFallsBackToStart(t *testing.T) {
	pos := LoadFEN("not a fen", StandardCatalog())
	if got := pos.ToFEN(); got != StartFEN {
		t.Errorf("LoadFEN fallback = %q, want %q", got, StartFEN)
	}

	pos = LoadFEN("4k3/8/8/8/8/8/8/4K3 w - - 0 1", StandardCatalog())
	if got := pos.ToFEN(); got != "4k3/8/8/8/8/8/8/4K3 w - - 0 1" {
		t.Errorf("LoadFEN = %q", got)
	}
}

func TestParseSquare(t *testing.T) {
	tests := []struct {
		s    string
		want Square
	}{
		{"a1", A1}, {"h1", H1}, {"e4", E4}, {"a8", A8}, {"h8", H8},
	}
	for _, tc := range tests {
		sq, err := ParseSquare(tc.s)
		if err != nil || sq != tc.want {
			t.Errorf("ParseSquare(%q) = %v, %v; want %v", tc.s, sq, err, tc.want)
		}
		if sq.String() != tc.s {
			t.Errorf("%v.String() = %q", sq, sq.String())
		}
	}
	for _, s := range []string{"", "i1", "a9", "a", "e44"} {
		if _, err := ParseSquare(s); !errors.Is(err, ErrMalformedInput) {
			t.Errorf("ParseSquare(%q) error = %v", s, err)
		}
	}
}
