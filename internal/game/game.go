// Package game is the rules state machine: one board plus the side to move.
//
// A Game is not safe for concurrent use. Callers sharing a Game across
// goroutines must serialize access to it.
package game

import (
	"errors"
	"fmt"

	"chessrules/internal/board"
	"chessrules/internal/core"
	"chessrules/internal/rules"
)

var ErrInvalidMove = errors.New("invalid move")

type Game struct {
	board *board.Board
	turn  core.Color
}

// New returns a game in the standard starting position with White to move.
func New() *Game {
	return &Game{
		board: board.NewStandard(),
		turn:  core.ColorWhite,
	}
}

// NewFromBoard starts a game on a copy of b.
func NewFromBoard(b *board.Board, turn core.Color) *Game {
	return &Game{board: b.Snapshot(), turn: turn}
}

// Board returns a copy of the live board.
func (g *Game) Board() *board.Board {
	return g.board.Snapshot()
}

// SetBoard replaces the live board with a copy of b.
func (g *Game) SetBoard(b *board.Board) {
	g.board = b.Snapshot()
}

func (g *Game) Turn() core.Color {
	return g.turn
}

// SetTurn sets the side to move. Anything but white or black is refused and
// leaves the turn unchanged.
func (g *Game) SetTurn(c core.Color) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %d", core.ErrInvalidColor, c)
	}
	g.turn = c
	return nil
}

// LegalMoves returns the moves of the piece on from that do not leave its own
// king attacked. An empty square yields nil.
func (g *Game) LegalMoves(from board.Position) []board.Move {
	return legalMoves(g.board, from)
}

// AllLegalMoves returns the legal moves of every piece of the side to move.
func (g *Game) AllLegalMoves() []board.Move {
	var moves []board.Move
	g.board.ForEach(func(pos board.Position, piece core.Piece) {
		if piece.Color == g.turn {
			moves = append(moves, legalMoves(g.board, pos)...)
		}
	})
	return moves
}

func (g *Game) IsInCheck(c core.Color) bool {
	return InCheck(g.board, c)
}

func (g *Game) IsInCheckmate(c core.Color) bool {
	return InCheck(g.board, c) && !hasLegalMove(g.board, c)
}

func (g *Game) IsInStalemate(c core.Color) bool {
	return !InCheck(g.board, c) && !hasLegalMove(g.board, c)
}

// State derives the status of the side to move.
func (g *Game) State() core.State {
	check := InCheck(g.board, g.turn)
	switch {
	case check && !hasLegalMove(g.board, g.turn):
		return core.StateCheckmate
	case check:
		return core.StateCheck
	case !hasLegalMove(g.board, g.turn):
		return core.StateStalemate
	default:
		return core.StateOngoing
	}
}

// ApplyMove plays m for the side to move. On error the game is unchanged.
func (g *Game) ApplyMove(m board.Move) error {
	piece, ok := g.board.Get(m.From)
	if !ok {
		return fmt.Errorf("%w: no piece on %s", ErrInvalidMove, m.From)
	}
	if piece.Color != g.turn {
		return fmt.Errorf("%w: %s is not %s to move", ErrInvalidMove, m.From, g.turn.Name())
	}

	legal := false
	for _, candidate := range legalMoves(g.board, m.From) {
		if candidate == m {
			legal = true
			break
		}
	}
	if !legal {
		return fmt.Errorf("%w: %s", ErrInvalidMove, m)
	}

	if m.Promotion != core.NoKind {
		piece = core.NewPiece(piece.Color, m.Promotion)
	}
	g.board.Set(m.To, piece)
	g.board.Clear(m.From)
	g.turn = core.OppositeColor(g.turn)
	return nil
}

// InCheck reports whether the king of color c on b is reachable by any
// opposing piece. It panics if b has no king of that color.
func InCheck(b *board.Board, c core.Color) bool {
	king, ok := b.FindKing(c)
	if !ok {
		panic(fmt.Sprintf("game: no %s king on board %s", c.Name(), b.Placement()))
	}
	return rules.Attacks(b, core.OppositeColor(c), king)
}

func legalMoves(b *board.Board, from board.Position) []board.Move {
	piece, ok := b.Get(from)
	if !ok {
		return nil
	}

	var legal []board.Move
	for _, m := range rules.Geometry(b, from) {
		sim := b.Snapshot()
		sim.Set(m.To, piece)
		sim.Clear(m.From)
		if !InCheck(sim, piece.Color) {
			legal = append(legal, m)
		}
	}
	return legal
}

func hasLegalMove(b *board.Board, c core.Color) bool {
	found := false
	b.ForEach(func(pos board.Position, piece core.Piece) {
		if !found && piece.Color == c && len(legalMoves(b, pos)) > 0 {
			found = true
		}
	})
	return found
}
