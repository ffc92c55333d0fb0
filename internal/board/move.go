package board

import (
	"errors"
	"fmt"
	"unicode"

	"chessrules/internal/core"
)

var ErrInvalidMoveFormat = errors.New("invalid move format")

// Move is comparable over all three fields. Promotion is core.NoKind unless
// the move carries a pawn to its last rank.
type Move struct {
	From      Position
	To        Position
	Promotion core.Kind
}

// String returns the UCI form: e2e4, a7a8q.
func (m Move) String() string {
	s := m.From.String() + m.To.String()
	if m.Promotion != core.NoKind {
		s += string(m.Promotion.Letter())
	}
	return s
}

// ParseMove reads UCI notation. Only the four promotion letters are accepted
// in the fifth position.
func ParseMove(s string) (Move, error) {
	for _, r := range s {
		if unicode.IsControl(r) {
			return Move{}, fmt.Errorf("%w: control character", ErrInvalidMoveFormat)
		}
	}
	if len(s) < 4 || len(s) > 5 {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidMoveFormat, s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return Move{}, fmt.Errorf("%w: %v", ErrInvalidMoveFormat, err)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return Move{}, fmt.Errorf("%w: %v", ErrInvalidMoveFormat, err)
	}

	m := Move{From: from, To: to}
	if len(s) == 5 {
		k, ok := core.KindFromLetter(s[4])
		if !ok || !k.IsPromotion() {
			return Move{}, fmt.Errorf("%w: bad promotion %q", ErrInvalidMoveFormat, s[4])
		}
		m.Promotion = k
	}
	return m, nil
}

func (m Move) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Move) UnmarshalText(text []byte) error {
	parsed, err := ParseMove(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
