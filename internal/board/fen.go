package board

import (
	"fmt"
	"log"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// fenDefaults fill the trailing fields of a truncated FEN.
var fenDefaults = [6]string{"", "w", "-", "-", "0", "1"}

// ParseFEN parses a FEN string. Piece letters are catalog labels, upper
// case for White; "!" introduces a two-letter label ("!TH", "!pe").
// Missing trailing fields take their usual defaults.
func ParseFEN(fen string, cat *Catalog) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: empty FEN", ErrMalformedInput)
	}
	if len(parts) > len(fenDefaults) {
		return nil, fmt.Errorf("%w: FEN has %d fields", ErrMalformedInput, len(parts))
	}
	fields := fenDefaults
	copy(fields[:], parts)

	pos := &Position{Catalog: cat}
	pos.Clear()

	if err := parsePiecePlacement(pos, fields[0]); err != nil {
		return nil, err
	}

	switch fields[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return nil, fmt.Errorf("%w: side to move %q", ErrMalformedInput, fields[1])
	}

	if err := parseCastlingRights(pos, fields[2]); err != nil {
		return nil, err
	}

	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return nil, fmt.Errorf("invalid en passant square: %w", err)
		}
		if sq.RelativeRank(pos.SideToMove.Other()) != 2 {
			return nil, fmt.Errorf("%w: en passant square %s on the wrong rank", ErrMalformedInput, sq)
		}
		pos.EnPassant = sq
		if err := pos.checkEnPassant(); err != nil {
			return nil, err
		}
	}

	hmc, err := strconv.Atoi(fields[4])
	if err != nil || hmc < 0 {
		return nil, fmt.Errorf("%w: half-move clock %q", ErrMalformedInput, fields[4])
	}
	pos.HalfMoveClock = hmc

	fmn, err := strconv.Atoi(fields[5])
	if err != nil || fmn < 1 {
		return nil, fmt.Errorf("%w: full-move number %q", ErrMalformedInput, fields[5])
	}
	pos.FullMoveNumber = fmn

	if err := pos.Validate(); err != nil {
		return nil, err
	}
	pos.resetHistory()
	return pos, nil
}

// checkEnPassant requires an empty target square with an enemy pawn that
// can be taken en passant behind it.
func (p *Position) checkEnPassant() error {
	victim := p.epVictim()
	if !p.IsEmpty(p.EnPassant) || victim == NoSquare || p.IsEmpty(victim) {
		return fmt.Errorf("%w: no pawn to take en passant on %s", ErrMalformedInput, p.EnPassant)
	}
	pc := p.Board[victim]
	if pc.Color == p.SideToMove || !p.Catalog.Spec(pc.Type).Has(AbilityEnPassant) {
		return fmt.Errorf("%w: no pawn to take en passant on %s", ErrMalformedInput, p.EnPassant)
	}
	return nil
}

// LoadFEN is ParseFEN for untrusted input: a malformed FEN is logged and
// replaced by the starting position.
func LoadFEN(fen string, cat *Catalog) *Position {
	pos, err := ParseFEN(fen, cat)
	if err != nil {
		log.Printf("Warning: %v, using the starting position", err)
		return NewPosition(cat)
	}
	return pos
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: need 8 ranks, got %d", ErrMalformedInput, len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0

		for j := 0; j < len(rankStr); j++ {
			if file > 7 {
				return fmt.Errorf("%w: too many squares in rank %d", ErrMalformedInput, rank+1)
			}

			c := rankStr[j]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}

			label := string(c)
			if c == '!' {
				if j+2 >= len(rankStr) {
					return fmt.Errorf("%w: truncated two-letter label in rank %d", ErrMalformedInput, rank+1)
				}
				label = rankStr[j+1 : j+3]
				j += 2
			}
			pt, ok := pos.Catalog.Lookup(label)
			if !ok {
				return fmt.Errorf("%w: unknown piece %q", ErrMalformedInput, label)
			}
			color := Black
			if label == strings.ToUpper(label) {
				color = White
			}
			pos.setPiece(NewPiece(pt, color), NewSquare(file, rank))
			file++
		}

		if file != 8 {
			return fmt.Errorf("%w: rank %d has %d squares", ErrMalformedInput, rank+1, file)
		}
	}

	return nil
}

// parseCastlingRights parses the castling rights section of a FEN string.
func parseCastlingRights(pos *Position, castling string) error {
	if castling == "-" {
		pos.CastlingRights = NoCastling
		return nil
	}

	for _, c := range castling {
		switch c {
		case 'K':
			pos.CastlingRights |= WhiteKingSideCastle
		case 'Q':
			pos.CastlingRights |= WhiteQueenSideCastle
		case 'k':
			pos.CastlingRights |= BlackKingSideCastle
		case 'q':
			pos.CastlingRights |= BlackQueenSideCastle
		default:
			return fmt.Errorf("%w: castling character %q", ErrMalformedInput, c)
		}
	}

	return nil
}

// ToFEN returns the FEN representation of the position.
func (p *Position) ToFEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := p.Board[NewSquare(file, rank)]
			if piece.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			l := p.label(piece)
			if len(l) == 2 {
				sb.WriteByte('!')
			}
			sb.WriteString(l)
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(p.CastlingRights.String())

	sb.WriteByte(' ')
	sb.WriteString(p.EnPassant.String())

	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.HalfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMoveNumber))

	return sb.String()
}
