package board

import (
	"errors"
	"strings"
	"testing"
)

func TestBuiltinCatalogs(t *testing.T) {
	std := StandardCatalog()
	if std.Len() != 6 {
		t.Errorf("standard catalog has %d pieces, want 6", std.Len())
	}
	if got := std.Spec(std.Royal()).Label; got != "k" {
		t.Errorf("standard royal = %q, want k", got)
	}
	if n := len(std.Promotions()); n != 4 {
		t.Errorf("standard promotions = %d, want 4", n)
	}

	fae := DefaultCatalog()
	for _, label := range []string{"h", "i", "j", "th", "pe"} {
		if _, ok := fae.Lookup(label); !ok {
			t.Errorf("faerie catalog lacks %q", label)
		}
	}
	if pt, ok := fae.Lookup("TH"); !ok || !fae.Spec(pt).Has(AbilityDisplacer) {
		t.Error("upper-case lookup of the thief failed")
	}
	if DefaultCatalog() != fae {
		t.Error("DefaultCatalog is not shared")
	}
}

func TestCatalogDerivedValues(t *testing.T) {
	cat := StandardCatalog()
	tests := []struct {
		label string
		value int
		phase int
		minor bool
	}{
		{"p", 100, 0, false},
		{"n", 300, 1, true},
		{"b", 330, 1, true},
		{"r", 500, 2, false},
		{"q", 900, 4, false},
		{"k", 0, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.label, func(t *testing.T) {
			spec := cat.Spec(cat.MustLookup(tc.label))
			if spec.Value != tc.value {
				t.Errorf("Value = %d, want %d", spec.Value, tc.value)
			}
			if spec.Phase != tc.phase {
				t.Errorf("Phase = %d, want %d", spec.Phase, tc.phase)
			}
			if spec.IsMinor() != tc.minor {
				t.Errorf("IsMinor = %v, want %v", spec.IsMinor(), tc.minor)
			}
		})
	}
}

func TestCatalogFingerprint(t *testing.T) {
	std, fae := StandardCatalog(), DefaultCatalog()
	if std.Fingerprint() != std.Fingerprint() {
		t.Error("fingerprint is not stable")
	}
	if std.Fingerprint() == fae.Fingerprint() {
		t.Error("different catalogs share a fingerprint")
	}

	data, err := fae.MarshalIndent()
	if err != nil {
		t.Fatalf("MarshalIndent: %v", err)
	}
	again, err := ParseCatalog(data)
	if err != nil {
		t.Fatalf("ParseCatalog of encoded catalog: %v", err)
	}
	if again.Fingerprint() != fae.Fingerprint() {
		t.Error("encoding changed the fingerprint")
	}
	if strings.Join(again.Labels(), ",") != strings.Join(fae.Labels(), ",") {
		t.Errorf("labels = %v, want %v", again.Labels(), fae.Labels())
	}
}

func TestCatalogValidation(t *testing.T) {
	const king = `{"label":"k","score":0,"moves":[{"vectors":[[1,0],[0,1]],"repeat":1}],"abilities":["royal"]}`
	tests := []struct {
		name string
		json string
	}{
		{"not json", `{"pieces":`},
		{"unknown field", `{"name":"x","pieces":[` + king + `],"colour":"red"}`},
		{"no pieces", `{"name":"x","pieces":[]}`},
		{"no royal", `{"pieces":[{"label":"n","score":3,"moves":[{"vectors":[[1,2]],"repeat":1}]}]}`},
		{"two royals", `{"pieces":[` + king + `,{"label":"g","score":0,"moves":[{"vectors":[[1,0]],"repeat":1}],"abilities":["royal"]}]}`},
		{"duplicate label", `{"pieces":[` + king + `,{"label":"K","score":1,"moves":[{"vectors":[[1,0]],"repeat":1}]}]}`},
		{"long label", `{"pieces":[` + king + `,{"label":"abc","score":1,"moves":[{"vectors":[[1,0]],"repeat":1}]}]}`},
		{"digit label", `{"pieces":[` + king + `,{"label":"a1","score":1,"moves":[{"vectors":[[1,0]],"repeat":1}]}]}`},
		{"no moves", `{"pieces":[` + king + `,{"label":"x","score":1,"moves":[]}]}`},
		{"zero vector", `{"pieces":[` + king + `,{"label":"x","score":1,"moves":[{"vectors":[[0,0]],"repeat":1}]}]}`},
		{"vector too long", `{"pieces":[` + king + `,{"label":"x","score":1,"moves":[{"vectors":[[8,0]],"repeat":1}]}]}`},
		{"zero repeat", `{"pieces":[` + king + `,{"label":"x","score":1,"moves":[{"vectors":[[1,0]],"repeat":0}]}]}`},
		{"repeat too large", `{"pieces":[` + king + `,{"label":"x","score":1,"moves":[{"vectors":[[1,0]],"repeat":9}]}]}`},
		{"short table", `{"pieces":[` + king + `,{"label":"x","score":1,"moves":[{"vectors":[[1,0]],"repeat":1}],"mg":[1,2,3]}]}`},
		{"unknown ability", `{"pieces":[` + king + `,{"label":"x","score":1,"moves":[{"vectors":[[1,0]],"repeat":1}],"abilities":["flying"]}]}`},
		{"promotable royal", `{"pieces":[{"label":"k","score":0,"moves":[{"vectors":[[1,0]],"repeat":1}],"abilities":["royal"],"promotable":true}]}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tc.json))
			if !errors.Is(err, ErrInvalidCatalog) {
				t.Errorf("ParseCatalog error = %v, want ErrInvalidCatalog", err)
			}
		})
	}

	if _, err := ParseCatalog([]byte(`{"name":"tiny","pieces":[` + king + `]}`)); err != nil {
		t.Errorf("minimal catalog rejected: %v", err)
	}
}

func TestRepeatToBoardEdge(t *testing.T) {
	data := strings.ReplaceAll(string(standardCatalogJSON), `"repeat": 7`, `"repeat": 8`)
	if data == string(standardCatalogJSON) {
		t.Fatal("standard catalog has no sliding pattern")
	}
	cat, err := ParseCatalog([]byte(data))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}

	for _, fen := range []string{
		StartFEN,
		"4k3/8/8/8/8/8/8/B3K2R w K - 0 1",
		"r3k2r/8/8/3q4/8/8/8/R3K2R b KQkq - 0 1",
	} {
		want := mustFEN(t, fen, StandardCatalog()).GenerateLegalMoves().Len()
		if got := mustFEN(t, fen, cat).GenerateLegalMoves().Len(); got != want {
			t.Errorf("%s: %d moves with repeat 8, want %d", fen, got, want)
		}
	}
}

func TestLoadCatalogReader(t *testing.T) {
	cat, err := LoadCatalog(strings.NewReader(string(standardCatalogJSON)))
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if cat.Fingerprint() != StandardCatalog().Fingerprint() {
		t.Error("reader and embedded catalogs differ")
	}
	if _, err := LoadCatalogFile("/nonexistent/catalog.json"); err == nil {
		t.Error("missing file accepted")
	}
}
