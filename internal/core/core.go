// Package core holds the value types shared by the rules engine and the
// service layers: colors, piece kinds, pieces and derived game states.
package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidColor = errors.New("invalid color")
	ErrInvalidKind  = errors.New("invalid piece kind")
)

type Color byte

const (
	NoColor    Color = 0
	ColorWhite Color = 'w'
	ColorBlack Color = 'b'
)

func OppositeColor(c Color) Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

func (c Color) Valid() bool {
	return c == ColorWhite || c == ColorBlack
}

// String returns the single-letter form used in FEN and on the wire.
func (c Color) String() string {
	switch c {
	case ColorWhite:
		return "w"
	case ColorBlack:
		return "b"
	default:
		return "-"
	}
}

func (c Color) Name() string {
	switch c {
	case ColorWhite:
		return "White"
	case ColorBlack:
		return "Black"
	default:
		return "None"
	}
}

// ParseColor accepts "w", "b", "white" or "black" in any case.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "w", "white":
		return ColorWhite, nil
	case "b", "black":
		return ColorBlack, nil
	default:
		return NoColor, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
}

func (c Color) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidColor, c)
	}
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Kind is the piece type. NoKind marks an empty square or an absent promotion.
type Kind byte

const (
	NoKind Kind = iota
	King
	Queen
	Bishop
	Knight
	Rook
	Pawn
)

// PromotionKinds lists the promotion choices in the order moves are generated.
var PromotionKinds = [...]Kind{Queen, Rook, Bishop, Knight}

var kindNames = [...]string{
	NoKind: "none",
	King:   "king",
	Queen:  "queen",
	Bishop: "bishop",
	Knight: "knight",
	Rook:   "rook",
	Pawn:   "pawn",
}

var kindLetters = [...]byte{
	NoKind: 0,
	King:   'k',
	Queen:  'q',
	Bishop: 'b',
	Knight: 'n',
	Rook:   'r',
	Pawn:   'p',
}

func (k Kind) Valid() bool {
	return k >= King && k <= Pawn
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Letter returns the lowercase FEN letter, or 0 for NoKind.
func (k Kind) Letter() byte {
	if int(k) < len(kindLetters) {
		return kindLetters[k]
	}
	return 0
}

func (k Kind) IsPromotion() bool {
	return k == Queen || k == Rook || k == Bishop || k == Knight
}

// KindFromLetter maps a FEN letter in either case to a kind.
func KindFromLetter(ch byte) (Kind, bool) {
	if ch >= 'A' && ch <= 'Z' {
		ch += 'a' - 'A'
	}
	for k := King; k <= Pawn; k++ {
		if kindLetters[k] == ch {
			return k, true
		}
	}
	return NoKind, false
}

// ParseKind accepts full names ("queen") and FEN letters ("q").
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) == 1 {
		if k, ok := KindFromLetter(s[0]); ok {
			return k, nil
		}
	}
	for k := King; k <= Pawn; k++ {
		if kindNames[k] == s {
			return k, nil
		}
	}
	return NoKind, fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidKind, k)
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Piece is identified by value: two white pawns are equal wherever they stand.
type Piece struct {
	Color Color `json:"color"`
	Kind  Kind  `json:"kind"`
}

func NewPiece(c Color, k Kind) Piece {
	return Piece{Color: c, Kind: k}
}

func (p Piece) IsZero() bool {
	return p.Kind == NoKind
}

// Symbol returns the FEN letter, uppercase for White.
func (p Piece) Symbol() byte {
	ch := p.Kind.Letter()
	if ch != 0 && p.Color == ColorWhite {
		ch -= 'a' - 'A'
	}
	return ch
}

func (p Piece) String() string {
	if p.IsZero() {
		return "empty"
	}
	return p.Color.Name() + " " + p.Kind.String()
}

// PieceFromSymbol decodes a FEN letter: uppercase is White, lowercase Black.
func PieceFromSymbol(ch byte) (Piece, bool) {
	k, ok := KindFromLetter(ch)
	if !ok {
		return Piece{}, false
	}
	c := ColorBlack
	if ch >= 'A' && ch <= 'Z' {
		c = ColorWhite
	}
	return Piece{Color: c, Kind: k}, true
}

// State is derived for the side to move; it is never stored on a game.
type State int

const (
	StateOngoing State = iota
	StateCheck
	StateCheckmate
	StateStalemate
)

func (s State) String() string {
	switch s {
	case StateCheck:
		return "check"
	case StateCheckmate:
		return "checkmate"
	case StateStalemate:
		return "stalemate"
	default:
		return "ongoing"
	}
}

func (s State) IsOver() bool {
	return s == StateCheckmate || s == StateStalemate
}
