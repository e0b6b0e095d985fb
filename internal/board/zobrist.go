package board

// Zobrist keys for repetition detection. The PRNG seed is fixed so hashes
// are stable across runs and can be stored.
var (
	zobristPiece      [2][MaxPieceTypes][64]uint64 // [Color][PieceType][Square]
	zobristEnPassant  [8]uint64                    // one per file
	zobristCastling   [16]uint64                   // every castling combination
	zobristSideToMove uint64                       // XOR when black to move
)

func init() {
	initZobrist()
}

type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

// xorshift64*
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := newPRNG(0x98F107A2BEEF1234) // Fixed seed

	for c := White; c <= Black; c++ {
		for pt := 0; pt < MaxPieceTypes; pt++ {
			for sq := A1; sq <= H8; sq++ {
				zobristPiece[c][pt][sq] = rng.next()
			}
		}
	}

	for file := 0; file < 8; file++ {
		zobristEnPassant[file] = rng.next()
	}

	for i := 0; i < 16; i++ {
		zobristCastling[i] = rng.next()
	}

	zobristSideToMove = rng.next()
}

// ComputeHash computes the Zobrist hash of the board, side to move,
// castling rights and en-passant file from scratch.
func (p *Position) ComputeHash() uint64 {
	var hash uint64
	occ := p.AllOccupied
	for occ != 0 {
		sq := occ.PopLSB()
		pc := p.Board[sq]
		hash ^= zobristPiece[pc.Color][pc.Type][sq]
	}
	if p.SideToMove == Black {
		hash ^= zobristSideToMove
	}
	hash ^= zobristCastling[p.CastlingRights]
	if p.EnPassant != NoSquare {
		hash ^= zobristEnPassant[p.EnPassant.File()]
	}
	return hash
}
