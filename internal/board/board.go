// Package board implements the 8x8 grid, its squares and moves, and the text
// encodings used to store and display it.
package board

import (
	"fmt"
	"strings"

	"chessrules/internal/core"
)

const (
	StartingPlacement = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR"
)

var backRank = [Size]core.Kind{
	core.Rook, core.Knight, core.Bishop, core.Queen,
	core.King, core.Bishop, core.Knight, core.Rook,
}

// Board is a value-sized grid, so copying a Board copies every cell.
// The zero value is an empty board.
type Board struct {
	cells [Size * Size]core.Piece
}

func New() *Board {
	return &Board{}
}

// NewStandard returns a board holding the standard starting position.
func NewStandard() *Board {
	b := &Board{}
	b.Reset()
	return b
}

// Get returns the occupant of pos and whether the square is occupied.
func (b *Board) Get(pos Position) (core.Piece, bool) {
	p := b.cells[pos.idx]
	return p, !p.IsZero()
}

// Set overwrites a cell. Setting the zero Piece clears it.
func (b *Board) Set(pos Position, piece core.Piece) {
	b.cells[pos.idx] = piece
}

func (b *Board) Clear(pos Position) {
	b.cells[pos.idx] = core.Piece{}
}

// Reset clears the board and sets up the standard start.
func (b *Board) Reset() {
	b.cells = [Size * Size]core.Piece{}
	for col := 1; col <= Size; col++ {
		b.Set(MustPosition(1, col), core.NewPiece(core.ColorWhite, backRank[col-1]))
		b.Set(MustPosition(2, col), core.NewPiece(core.ColorWhite, core.Pawn))
		b.Set(MustPosition(7, col), core.NewPiece(core.ColorBlack, core.Pawn))
		b.Set(MustPosition(8, col), core.NewPiece(core.ColorBlack, backRank[col-1]))
	}
}

// Snapshot returns an independent copy.
func (b *Board) Snapshot() *Board {
	c := *b
	return &c
}

func (b *Board) Equal(other *Board) bool {
	if b == nil || other == nil {
		return b == other
	}
	return b.cells == other.cells
}

// ForEach calls fn for every occupied square, a1 first, h8 last.
func (b *Board) ForEach(fn func(Position, core.Piece)) {
	for i, p := range b.cells {
		if !p.IsZero() {
			fn(Position{idx: uint8(i)}, p)
		}
	}
}

// FindKing returns the first square holding a king of color c.
func (b *Board) FindKing(c core.Color) (Position, bool) {
	king := core.NewPiece(c, core.King)
	for i, p := range b.cells {
		if p == king {
			return Position{idx: uint8(i)}, true
		}
	}
	return Position{}, false
}

// Count returns how many copies of piece stand on the board.
func (b *Board) Count(piece core.Piece) int {
	n := 0
	for _, p := range b.cells {
		if p == piece {
			n++
		}
	}
	return n
}

// ToASCII creates an ASCII representation of the board, rank 8 on top
func (b *Board) ToASCII() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")

	for row := Size; row >= 1; row-- {
		sb.WriteString(fmt.Sprintf("%d ", row))
		for col := 1; col <= Size; col++ {
			piece, ok := b.Get(MustPosition(row, col))
			if !ok {
				sb.WriteString(". ")
			} else {
				sb.WriteString(fmt.Sprintf("%c ", piece.Symbol()))
			}
		}
		sb.WriteString(fmt.Sprintf(" %d\n", row))
	}
	sb.WriteString("  a b c d e f g h")

	return sb.String()
}
