package board

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chessrules/internal/core"
)

func TestNewStandard_Layout(t *testing.T) {
	// Given: a freshly set up board
	b := NewStandard()

	// Then: every one of the 64 squares matches the standard start
	for row := 1; row <= Size; row++ {
		for col := 1; col <= Size; col++ {
			pos := MustPosition(row, col)
			piece, ok := b.Get(pos)

			switch row {
			case 1, 8:
				require.True(t, ok, pos.String())
				assert.Equal(t, backRank[col-1], piece.Kind, pos.String())
			case 2, 7:
				require.True(t, ok, pos.String())
				assert.Equal(t, core.Pawn, piece.Kind, pos.String())
			default:
				assert.False(t, ok, pos.String())
				continue
			}

			wantColor := core.ColorWhite
			if row >= 7 {
				wantColor = core.ColorBlack
			}
			assert.Equal(t, wantColor, piece.Color, pos.String())
		}
	}
	assert.Equal(t, StartingPlacement, b.Placement())
}

func TestBoard_SetGetClear(t *testing.T) {
	b := New()
	e4 := MustSquare("e4")
	knight := core.NewPiece(core.ColorBlack, core.Knight)

	b.Set(e4, knight)
	got, ok := b.Get(e4)
	require.True(t, ok)
	assert.Equal(t, knight, got)

	b.Clear(e4)
	_, ok = b.Get(e4)
	assert.False(t, ok)

	b.Set(e4, knight)
	b.Set(e4, core.Piece{})
	_, ok = b.Get(e4)
	assert.False(t, ok, "setting the zero piece clears the square")
}

func TestBoard_Snapshot(t *testing.T) {
	t.Run("Snapshot_EqualWithoutMutation", func(t *testing.T) {
		b := NewStandard()

		snap := b.Snapshot()

		assert.True(t, b.Equal(snap))
		if diff := cmp.Diff(b.ToASCII(), snap.ToASCII()); diff != "" {
			t.Errorf("snapshot differs (-orig +snap):\n%s", diff)
		}
	})

	t.Run("Snapshot_Independent", func(t *testing.T) {
		b := NewStandard()
		snap := b.Snapshot()

		// When: the copy is mutated
		snap.Clear(MustSquare("e2"))
		snap.Set(MustSquare("e4"), core.NewPiece(core.ColorWhite, core.Pawn))

		// Then: the original is untouched
		assert.False(t, b.Equal(snap))
		_, ok := b.Get(MustSquare("e2"))
		assert.True(t, ok)
		_, ok = b.Get(MustSquare("e4"))
		assert.False(t, ok)
	})
}

func TestBoard_FindKingAndCount(t *testing.T) {
	b := NewStandard()

	pos, ok := b.FindKing(core.ColorBlack)
	require.True(t, ok)
	assert.Equal(t, "e8", pos.String())

	assert.Equal(t, 8, b.Count(core.NewPiece(core.ColorWhite, core.Pawn)))

	_, ok = New().FindKing(core.ColorWhite)
	assert.False(t, ok)
}

func TestParsePlacement(t *testing.T) {
	tests := []struct {
		name      string
		placement string
		wantErr   bool
	}{
		{"start", StartingPlacement, false},
		{"sparse", "k7/8/1QK5/8/8/8/8/8", false},
		{"seven ranks", "8/8/8/8/8/8/8", true},
		{"short rank", "7/8/8/8/8/8/8/8", true},
		{"long rank", "ppppppppp/8/8/8/8/8/8/8", true},
		{"unknown piece", "x7/8/8/8/8/8/8/8", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ParsePlacement(tt.placement)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidPlacement)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.placement, b.Placement())
		})
	}
}

func TestBoard_JSONRoundTrip(t *testing.T) {
	// Given: a mid-game board
	b, err := ParsePlacement("r1bqkb1r/pppp1ppp/2n2n2/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R")
	require.NoError(t, err)

	// When: it is encoded and decoded
	data, err := json.Marshal(b)
	require.NoError(t, err)

	var decoded Board
	require.NoError(t, json.Unmarshal(data, &decoded))

	// Then: the boards are structurally equal
	assert.True(t, b.Equal(&decoded))
	assert.Equal(t, b.Placement(), decoded.Placement())
}

func TestBoard_JSONShape(t *testing.T) {
	b := New()
	b.Set(MustSquare("a1"), core.NewPiece(core.ColorWhite, core.Rook))

	data, err := json.Marshal(b)
	require.NoError(t, err)

	var rows [][]map[string]string
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 8)
	assert.Equal(t, map[string]string{"color": "w", "kind": "rook"}, rows[0][0])
	assert.Nil(t, rows[0][1])
}

func TestBoard_UnmarshalJSONRejectsBadInput(t *testing.T) {
	var b Board

	assert.Error(t, json.Unmarshal([]byte(`[[null]]`), &b))
	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &b))

	row := `[null,null,null,null,null,null,null,null]`
	bad := `[[{"color":"x","kind":"pawn"},null,null,null,null,null,null,null],` +
		row + `,` + row + `,` + row + `,` + row + `,` + row + `,` + row + `,` + row + `]`
	assert.Error(t, json.Unmarshal([]byte(bad), &b))
}

func TestBoard_ToASCII(t *testing.T) {
	want := "  a b c d e f g h\n" +
		"8 r n b q k b n r  8\n" +
		"7 p p p p p p p p  7\n" +
		"6 . . . . . . . .  6\n" +
		"5 . . . . . . . .  5\n" +
		"4 . . . . . . . .  4\n" +
		"3 . . . . . . . .  3\n" +
		"2 P P P P P P P P  2\n" +
		"1 R N B Q K B N R  1\n" +
		"  a b c d e f g h"

	if diff := cmp.Diff(want, NewStandard().ToASCII()); diff != "" {
		t.Errorf("ToASCII mismatch (-want +got):\n%s", diff)
	}
}
