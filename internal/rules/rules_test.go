package rules

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chessrules/internal/board"
	"chessrules/internal/core"
)

func place(t *testing.T, placement string) *board.Board {
	t.Helper()
	b, err := board.ParsePlacement(placement)
	require.NoError(t, err)
	return b
}

func destinations(moves []board.Move) []string {
	out := make([]string, 0, len(moves))
	for _, m := range moves {
		out = append(out, m.To.String())
	}
	sort.Strings(out)
	return out
}

func TestGeometry_EmptySquare(t *testing.T) {
	assert.Empty(t, Geometry(board.New(), board.MustSquare("d4")))
}

func TestGeometry_RookCenter(t *testing.T) {
	// Given: a lone rook on d4
	b := board.New()
	d4 := board.MustPosition(4, 4)
	b.Set(d4, core.NewPiece(core.ColorWhite, core.Rook))

	// When: its geometry is generated
	moves := Geometry(b, d4)

	// Then: 7 squares along the rank plus 7 along the file
	assert.Len(t, moves, 14)
	for _, m := range moves {
		assert.Equal(t, d4, m.From)
		assert.True(t, m.To.Row() == 4 || m.To.Col() == 4, m.To.String())
	}
}

func TestGeometry_SlidersStopAtPieces(t *testing.T) {
	// Rook a1 with own pawn on a3 and enemy knight on c1.
	b := place(t, "8/8/8/8/8/P7/8/R1n5")

	got := destinations(Geometry(b, board.MustSquare("a1")))

	want := []string{"a2", "b1", "c1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rook destinations (-want +got):\n%s", diff)
	}
}

func TestGeometry_BishopAndQueen(t *testing.T) {
	b := board.New()
	d4 := board.MustSquare("d4")

	b.Set(d4, core.NewPiece(core.ColorBlack, core.Bishop))
	assert.Len(t, Geometry(b, d4), 13)

	b.Set(d4, core.NewPiece(core.ColorBlack, core.Queen))
	assert.Len(t, Geometry(b, d4), 27)
}

func TestGeometry_Knight(t *testing.T) {
	b := board.New()

	b.Set(board.MustSquare("a1"), core.NewPiece(core.ColorWhite, core.Knight))
	assert.Equal(t, []string{"b3", "c2"}, destinations(Geometry(b, board.MustSquare("a1"))))

	b.Set(board.MustSquare("d4"), core.NewPiece(core.ColorWhite, core.Knight))
	assert.Len(t, Geometry(b, board.MustSquare("d4")), 8)

	// Knights jump over pieces on the starting board.
	start := board.NewStandard()
	assert.Equal(t, []string{"a3", "c3"}, destinations(Geometry(start, board.MustSquare("b1"))))
}

func TestGeometry_King(t *testing.T) {
	b := board.New()
	b.Set(board.MustSquare("e4"), core.NewPiece(core.ColorWhite, core.King))
	assert.Len(t, Geometry(b, board.MustSquare("e4")), 8)

	b.Set(board.MustSquare("h1"), core.NewPiece(core.ColorWhite, core.King))
	assert.Equal(t, []string{"g1", "g2", "h2"}, destinations(Geometry(b, board.MustSquare("h1"))))

	// Own pieces block, enemy pieces can be captured.
	b.Set(board.MustSquare("e5"), core.NewPiece(core.ColorWhite, core.Pawn))
	b.Set(board.MustSquare("d5"), core.NewPiece(core.ColorBlack, core.Pawn))
	got := destinations(Geometry(b, board.MustSquare("e4")))
	assert.NotContains(t, got, "e5")
	assert.Contains(t, got, "d5")
}

func TestGeometry_PawnSteps(t *testing.T) {
	for col := 1; col <= board.Size; col++ {
		from := board.MustPosition(2, col)
		one := board.MustPosition(3, col)
		two := board.MustPosition(4, col)

		t.Run(from.String()+"_Open", func(t *testing.T) {
			b := board.New()
			b.Set(from, core.NewPiece(core.ColorWhite, core.Pawn))

			got := destinations(Geometry(b, from))

			assert.Equal(t, []string{one.String(), two.String()}, got)
		})

		t.Run(from.String()+"_Blocked", func(t *testing.T) {
			b := board.New()
			b.Set(from, core.NewPiece(core.ColorWhite, core.Pawn))
			b.Set(one, core.NewPiece(core.ColorBlack, core.Knight))

			assert.Empty(t, Geometry(b, from))
		})
	}
}

func TestGeometry_PawnDoubleStepBlockedOnDestination(t *testing.T) {
	b := place(t, "8/8/8/8/4p3/8/4P3/8")

	assert.Equal(t, []string{"e3"}, destinations(Geometry(b, board.MustSquare("e2"))))
}

func TestGeometry_BlackPawn(t *testing.T) {
	// Black pawn on d7 with a white piece on e6 and a black piece on c6.
	b := place(t, "8/3p4/2n1B3/8/8/8/8/8")

	got := destinations(Geometry(b, board.MustSquare("d7")))

	assert.Equal(t, []string{"d5", "d6", "e6"}, got)
}

func TestGeometry_PawnOffHomeRankSingleStep(t *testing.T) {
	b := place(t, "8/8/8/8/8/3P4/8/8")

	assert.Equal(t, []string{"d4"}, destinations(Geometry(b, board.MustSquare("d3"))))
}

func TestGeometry_PawnPromotion(t *testing.T) {
	// White pawn on b7 can advance to b8 or capture on a8.
	b := place(t, "r7/1P6/8/8/8/8/8/8")

	moves := Geometry(b, board.MustSquare("b7"))

	require.Len(t, moves, 8)
	var kinds []core.Kind
	for _, m := range moves {
		assert.Equal(t, 8, m.To.Row())
		if m.To == board.MustSquare("b8") {
			kinds = append(kinds, m.Promotion)
		}
	}
	assert.Equal(t, []core.Kind{core.Queen, core.Rook, core.Bishop, core.Knight}, kinds)
}

func TestGeometry_BlackPawnPromotion(t *testing.T) {
	b := place(t, "8/8/8/8/8/8/6p1/8")

	moves := Geometry(b, board.MustSquare("g2"))

	require.Len(t, moves, 4)
	for _, m := range moves {
		assert.Equal(t, "g1", m.To.String())
		assert.True(t, m.Promotion.IsPromotion())
	}
}

func TestGeometry_DoesNotMutate(t *testing.T) {
	b := board.NewStandard()
	before := b.Snapshot()

	for row := 1; row <= board.Size; row++ {
		for col := 1; col <= board.Size; col++ {
			Geometry(b, board.MustPosition(row, col))
		}
	}

	assert.True(t, before.Equal(b))
}

func TestAttacks(t *testing.T) {
	// Black king e8, white rook e1, white bishop a4.
	b := place(t, "4k3/8/8/8/B7/8/8/4R3")

	assert.True(t, Attacks(b, core.ColorWhite, board.MustSquare("e8")))
	assert.True(t, Attacks(b, core.ColorWhite, board.MustSquare("d7")))
	assert.False(t, Attacks(b, core.ColorWhite, board.MustSquare("f7")))
	assert.False(t, Attacks(b, core.ColorBlack, board.MustSquare("e1")))
}
