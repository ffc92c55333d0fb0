package board

import (
	"errors"
	"fmt"
	"strings"
)

const Size = 8

var ErrInvalidSquare = errors.New("invalid square")

// Position is a square on the 8x8 grid. Row 1 is White's back rank and
// column 1 is the a-file. Values outside the grid cannot be constructed;
// the zero value is a1.
type Position struct {
	idx uint8
}

func NewPosition(row, col int) (Position, error) {
	if row < 1 || row > Size || col < 1 || col > Size {
		return Position{}, fmt.Errorf("%w: row %d col %d", ErrInvalidSquare, row, col)
	}
	return Position{idx: uint8((row-1)*Size + (col - 1))}, nil
}

// MustPosition panics on out-of-range input. Intended for literals.
func MustPosition(row, col int) Position {
	p, err := NewPosition(row, col)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseSquare parses algebraic names such as "e4".
func ParseSquare(s string) (Position, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return Position{}, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	return Position{idx: (s[1]-'1')*Size + (s[0] - 'a')}, nil
}

// MustSquare is ParseSquare for literals.
func MustSquare(s string) Position {
	p, err := ParseSquare(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Position) Row() int { return int(p.idx)/Size + 1 }
func (p Position) Col() int { return int(p.idx)%Size + 1 }

// Offset returns the square dr rows and dc columns away, or false if that
// falls off the board.
func (p Position) Offset(dr, dc int) (Position, bool) {
	next, err := NewPosition(p.Row()+dr, p.Col()+dc)
	return next, err == nil
}

func (p Position) String() string {
	return string([]byte{'a' + byte(p.Col()-1), '0' + byte(p.Row())})
}

func (p Position) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Position) UnmarshalText(text []byte) error {
	parsed, err := ParseSquare(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
