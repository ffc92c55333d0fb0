package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"chessrules/internal/board"
	"chessrules/internal/core"
)

var ErrInvalidFEN = errors.New("invalid FEN")

// StartingFEN is what FEN returns for a new game.
const StartingFEN = board.StartingPlacement + " w - - 0 1"

type state struct {
	Board *board.Board `json:"board"`
	Turn  core.Color   `json:"turn"`
}

// MarshalJSON encodes the full game state: every cell and the side to move.
func (g *Game) MarshalJSON() ([]byte, error) {
	return json.Marshal(state{Board: g.board, Turn: g.turn})
}

func (g *Game) UnmarshalJSON(data []byte) error {
	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s.Board == nil {
		return errors.New("decode game: missing board")
	}
	if !s.Turn.Valid() {
		return fmt.Errorf("decode game: %w", core.ErrInvalidColor)
	}
	g.board = s.Board
	g.turn = s.Turn
	return nil
}

// FEN renders the game as a FEN record. Castling and en passant are never
// available, and clocks are not tracked, so the trailing fields are fixed.
func (g *Game) FEN() string {
	return fmt.Sprintf("%s %s - - 0 1", g.board.Placement(), g.turn)
}

// FromFEN builds a game from a FEN record. Only the placement and the side to
// move are read; White moves when the second field is absent.
func FromFEN(fen string) (*Game, error) {
	parts := strings.Fields(fen)
	if len(parts) == 0 || len(parts) > 6 {
		return nil, fmt.Errorf("%w: expected 1 to 6 fields, got %d", ErrInvalidFEN, len(parts))
	}

	b, err := board.ParsePlacement(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}

	turn := core.ColorWhite
	if len(parts) > 1 {
		if len(parts[1]) != 1 {
			return nil, fmt.Errorf("%w: turn must be 'w' or 'b'", ErrInvalidFEN)
		}
		if turn, err = core.ParseColor(parts[1]); err != nil {
			return nil, fmt.Errorf("%w: turn must be 'w' or 'b'", ErrInvalidFEN)
		}
	}

	return &Game{board: b, turn: turn}, nil
}

var ErrKingCount = errors.New("board must hold exactly one king per color")

// ValidateKings checks the precondition InCheck relies on. Boards arriving
// from storage or the network go through it before reaching a Game.
func ValidateKings(b *board.Board) error {
	for _, c := range []core.Color{core.ColorWhite, core.ColorBlack} {
		if n := b.Count(core.NewPiece(c, core.King)); n != 1 {
			return fmt.Errorf("%w: %d %s kings", ErrKingCount, n, strings.ToLower(c.Name()))
		}
	}
	return nil
}
