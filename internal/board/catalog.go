package board

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

//go:embed catalog/faerie.json
var faerieCatalogJSON []byte

//go:embed catalog/standard.json
var standardCatalogJSON []byte

// Ability is a rule flag attached to a piece type.
type Ability uint16

const (
	AbilityRoyal        Ability = 1 << iota // the king: checks, pins and mate are computed against it
	AbilityPawn                             // double step, promotion, resets the half-move clock
	AbilityEnPassant                        // may capture and be captured en passant
	AbilityCastle                           // castling partner of the royal piece
	AbilityBishop                           // counted for bishop pair and colour-complex draws
	AbilityImmobilizer                      // freezes every adjacent piece
	AbilitySuppressor                       // freezes adjacent enemy pieces
	AbilityUncapturable                     // can never be captured
	AbilityNonCapturing                     // never captures
	AbilityDisplacer                        // lands one step short of the captured piece
)

var abilityNames = []struct {
	a    Ability
	name string
}{
	{AbilityRoyal, "royal"},
	{AbilityPawn, "pawn"},
	{AbilityEnPassant, "en_passant"},
	{AbilityCastle, "castle"},
	{AbilityBishop, "bishop"},
	{AbilityImmobilizer, "immobilizer"},
	{AbilitySuppressor, "suppressor"},
	{AbilityUncapturable, "uncapturable"},
	{AbilityNonCapturing, "noncapturing"},
	{AbilityDisplacer, "displacer"},
}

// Abilities is a set of Ability flags. It encodes to JSON as a list of names.
type Abilities Ability

func (as Abilities) Has(a Ability) bool {
	return Ability(as)&a != 0
}

func (as Abilities) Strings() []string {
	var out []string
	for _, n := range abilityNames {
		if as.Has(n.a) {
			out = append(out, n.name)
		}
	}
	return out
}

func (as Abilities) MarshalJSON() ([]byte, error) {
	names := as.Strings()
	if names == nil {
		names = []string{}
	}
	return json.Marshal(names)
}

func (as *Abilities) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	*as = 0
next:
	for _, name := range names {
		for _, n := range abilityNames {
			if n.name == name {
				*as |= Abilities(n.a)
				continue next
			}
		}
		return fmt.Errorf("%w: unknown ability %q", ErrInvalidCatalog, name)
	}
	return nil
}

// Vector is a (file, rank) step seen from White's side; positive rank
// points towards the opponent.
type Vector [2]int

// oriented returns the vector as played by c. Black mirrors vertically.
func (v Vector) oriented(c Color) (int, int) {
	if c == Black {
		return v[0], -v[1]
	}
	return v[0], v[1]
}

// MaxRepeat is the largest step count of a pattern: it slides to the
// board edge.
const MaxRepeat = 8

// Pattern is a set of direction vectors walked up to Repeat steps; 1 is a
// single step.
type Pattern struct {
	Vectors []Vector `json:"vectors"`
	Repeat  int      `json:"repeat"`
}

// PieceSpec describes one piece type of a catalog.
type PieceSpec struct {
	Label      string    `json:"label"`
	Name       string    `json:"name,omitempty"`
	Score      float64   `json:"score"` // pawns
	Moves      []Pattern `json:"moves"`
	Captures   []Pattern `json:"captures,omitempty"`
	Promotable bool      `json:"promotable,omitempty"`
	Abilities  Abilities `json:"abilities,omitempty"`
	MG         []int     `json:"mg,omitempty"` // rank 8 first, White's view
	EG         []int     `json:"eg,omitempty"`

	Type  PieceType `json:"-"`
	Value int       `json:"-"` // centipawns
	Phase int       `json:"-"`
}

// Has reports whether the piece type carries ability a.
func (s *PieceSpec) Has(a Ability) bool {
	return s.Abilities.Has(a)
}

// AttackPatterns returns the patterns the piece captures with.
func (s *PieceSpec) AttackPatterns() []Pattern {
	if len(s.Captures) > 0 {
		return s.Captures
	}
	return s.Moves
}

// IsMinor reports whether the piece alone cannot force mate.
func (s *PieceSpec) IsMinor() bool {
	return !s.Has(AbilityRoyal) && !s.Has(AbilityPawn) && s.Score < 4
}

// Catalog is the immutable set of piece types a game is played with.
type Catalog struct {
	Name   string       `json:"name"`
	Pieces []*PieceSpec `json:"pieces"`

	byLabel     map[string]PieceType
	royal       PieceType
	promotions  []PieceType
	fingerprint uint64
}

// phaseWeights maps floor(score in pawns) to the piece's game-phase weight.
var phaseWeights = [...]int{0, 0, 1, 1, 1, 2, 2, 2, 4, 4, 0, 0}

// ParseCatalog decodes and validates a JSON catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := c.init(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadCatalog reads a JSON catalog from r.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// LoadCatalogFile reads a JSON catalog from disk.
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return LoadCatalog(f)
}

var (
	faerieOnce, standardOnce sync.Once
	faerieCatalog            *Catalog
	standardCatalog          *Catalog
)

// DefaultCatalog returns the built-in Faerie catalog: the orthodox pieces
// plus herald, inquisitor, jester, thief and peasant.
func DefaultCatalog() *Catalog {
	faerieOnce.Do(func() {
		faerieCatalog = mustParseCatalog(faerieCatalogJSON)
	})
	return faerieCatalog
}

// StandardCatalog returns the six orthodox chess pieces.
func StandardCatalog() *Catalog {
	standardOnce.Do(func() {
		standardCatalog = mustParseCatalog(standardCatalogJSON)
	})
	return standardCatalog
}

func mustParseCatalog(data []byte) *Catalog {
	c, err := ParseCatalog(data)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) init() error {
	if len(c.Pieces) == 0 {
		return fmt.Errorf("%w: no pieces", ErrInvalidCatalog)
	}
	if len(c.Pieces) > MaxPieceTypes {
		return fmt.Errorf("%w: %d piece types, at most %d supported", ErrInvalidCatalog, len(c.Pieces), MaxPieceTypes)
	}

	c.byLabel = make(map[string]PieceType, len(c.Pieces))
	c.royal = NoPieceType
	c.promotions = nil

	for i, s := range c.Pieces {
		if s == nil {
			return fmt.Errorf("%w: piece %d is null", ErrInvalidCatalog, i)
		}
		s.Label = strings.ToLower(s.Label)
		if err := s.validate(); err != nil {
			return err
		}
		if _, dup := c.byLabel[s.Label]; dup {
			return fmt.Errorf("%w: duplicate label %q", ErrInvalidCatalog, s.Label)
		}

		s.Type = PieceType(i)
		s.Value = int(math.Round(s.Score * 100))
		s.Phase = 0
		if idx := int(math.Floor(s.Score)); idx >= 0 && idx < len(phaseWeights) {
			s.Phase = phaseWeights[idx]
		}
		c.byLabel[s.Label] = s.Type

		if s.Has(AbilityRoyal) {
			if c.royal != NoPieceType {
				return fmt.Errorf("%w: more than one royal piece", ErrInvalidCatalog)
			}
			c.royal = s.Type
		}
		if s.Promotable {
			c.promotions = append(c.promotions, s.Type)
		}
	}

	if c.royal == NoPieceType {
		return fmt.Errorf("%w: no royal piece", ErrInvalidCatalog)
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	c.fingerprint = xxhash.Sum64(data)
	return nil
}

func (s *PieceSpec) validate() error {
	if n := len(s.Label); n < 1 || n > 2 {
		return fmt.Errorf("%w: label %q must be one or two characters", ErrInvalidCatalog, s.Label)
	}
	for _, r := range s.Label {
		if r < 'a' || r > 'z' {
			return fmt.Errorf("%w: label %q must be letters", ErrInvalidCatalog, s.Label)
		}
	}
	if len(s.Moves) == 0 {
		return fmt.Errorf("%w: piece %q has no moves", ErrInvalidCatalog, s.Label)
	}
	for _, set := range [][]Pattern{s.Moves, s.Captures} {
		for _, p := range set {
			if p.Repeat < 1 || p.Repeat > MaxRepeat {
				return fmt.Errorf("%w: piece %q repeat %d out of range", ErrInvalidCatalog, s.Label, p.Repeat)
			}
			for _, v := range p.Vectors {
				if v == (Vector{}) {
					return fmt.Errorf("%w: piece %q has a zero vector", ErrInvalidCatalog, s.Label)
				}
				if abs(v[0]) > 7 || abs(v[1]) > 7 {
					return fmt.Errorf("%w: piece %q vector %v leaves the board", ErrInvalidCatalog, s.Label, v)
				}
			}
		}
	}
	for _, tbl := range [][]int{s.MG, s.EG} {
		if len(tbl) != 0 && len(tbl) != 64 {
			return fmt.Errorf("%w: piece %q table has %d entries", ErrInvalidCatalog, s.Label, len(tbl))
		}
	}
	if s.Has(AbilityRoyal) && s.Promotable {
		return fmt.Errorf("%w: royal piece %q cannot be a promotion target", ErrInvalidCatalog, s.Label)
	}
	return nil
}

// Len returns the number of piece types.
func (c *Catalog) Len() int {
	return len(c.Pieces)
}

// Spec returns the entry for pt. An unknown type is a programming error.
func (c *Catalog) Spec(pt PieceType) *PieceSpec {
	if int(pt) >= len(c.Pieces) {
		panic(fmt.Sprintf("board: piece type %d not in catalog %q", pt, c.Name))
	}
	return c.Pieces[pt]
}

// Lookup finds a piece type by its case-insensitive label.
func (c *Catalog) Lookup(label string) (PieceType, bool) {
	pt, ok := c.byLabel[strings.ToLower(label)]
	return pt, ok
}

// MustLookup is Lookup for labels known to exist.
func (c *Catalog) MustLookup(label string) PieceType {
	pt, ok := c.Lookup(label)
	if !ok {
		panic(fmt.Sprintf("board: label %q not in catalog %q", label, c.Name))
	}
	return pt
}

// Royal returns the royal piece type.
func (c *Catalog) Royal() PieceType {
	return c.royal
}

// Promotions returns the promotion targets in catalog order.
func (c *Catalog) Promotions() []PieceType {
	return c.promotions
}

// Labels returns the sorted piece labels.
func (c *Catalog) Labels() []string {
	out := make([]string, 0, len(c.byLabel))
	for l := range c.byLabel {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// MarshalIndent encodes the catalog in the same format ParseCatalog reads.
func (c *Catalog) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// Fingerprint is a stable 64-bit digest of the catalog contents. Two
// catalogs with equal fingerprints play the same game.
func (c *Catalog) Fingerprint() uint64 {
	return c.fingerprint
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
