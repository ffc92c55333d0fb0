package board

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"chessrules/internal/core"
)

var ErrInvalidPlacement = errors.New("invalid placement")

// ParsePlacement reads the piece placement field of a FEN record, rank 8
// first, files a to h within each rank.
func ParsePlacement(placement string) (*Board, error) {
	ranks := strings.Split(placement, "/")
	if len(ranks) != Size {
		return nil, fmt.Errorf("%w: expected 8 ranks, got %d", ErrInvalidPlacement, len(ranks))
	}

	b := New()
	for i, rank := range ranks {
		row := Size - i
		col := 1
		for j := 0; j < len(rank); j++ {
			ch := rank[j]
			if ch >= '1' && ch <= '8' {
				col += int(ch - '0')
				continue
			}
			if col > Size {
				return nil, fmt.Errorf("%w: too many pieces in rank %d", ErrInvalidPlacement, row)
			}
			piece, ok := core.PieceFromSymbol(ch)
			if !ok {
				return nil, fmt.Errorf("%w: unknown piece %q in rank %d", ErrInvalidPlacement, ch, row)
			}
			b.Set(MustPosition(row, col), piece)
			col++
		}
		if col != Size+1 {
			return nil, fmt.Errorf("%w: rank %d has %d files", ErrInvalidPlacement, row, col-1)
		}
	}
	return b, nil
}

// Placement returns the FEN piece placement field.
func (b *Board) Placement() string {
	var sb strings.Builder
	for row := Size; row >= 1; row-- {
		empty := 0
		for col := 1; col <= Size; col++ {
			piece, ok := b.Get(MustPosition(row, col))
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(piece.Symbol())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if row > 1 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

// grid is the JSON shape of a board: rows 1..8, each holding columns 1..8,
// null for an empty square.
type grid [Size][Size]*core.Piece

func (b *Board) MarshalJSON() ([]byte, error) {
	var g grid
	for row := 1; row <= Size; row++ {
		for col := 1; col <= Size; col++ {
			if piece, ok := b.Get(MustPosition(row, col)); ok {
				g[row-1][col-1] = &piece
			}
		}
	}
	return json.Marshal(g)
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var rows [][]*core.Piece
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("decode board: %w", err)
	}
	if len(rows) != Size {
		return fmt.Errorf("decode board: expected %d rows, got %d", Size, len(rows))
	}

	var decoded Board
	for r, cols := range rows {
		if len(cols) != Size {
			return fmt.Errorf("decode board: row %d has %d columns", r+1, len(cols))
		}
		for c, piece := range cols {
			if piece == nil {
				continue
			}
			if !piece.Color.Valid() || !piece.Kind.Valid() {
				return fmt.Errorf("decode board: bad piece at row %d col %d", r+1, c+1)
			}
			decoded.Set(MustPosition(r+1, c+1), *piece)
		}
	}
	*b = decoded
	return nil
}
