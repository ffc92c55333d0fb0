package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chessrules/internal/core"
)

func TestNewPosition(t *testing.T) {
	pos, err := NewPosition(1, 1)
	require.NoError(t, err)
	assert.Equal(t, "a1", pos.String())
	assert.Equal(t, Position{}, pos, "zero value is a1")

	pos, err = NewPosition(8, 8)
	require.NoError(t, err)
	assert.Equal(t, "h8", pos.String())
	assert.Equal(t, 8, pos.Row())
	assert.Equal(t, 8, pos.Col())

	for _, rc := range [][2]int{{0, 1}, {1, 0}, {9, 1}, {1, 9}, {-3, 4}} {
		_, err := NewPosition(rc[0], rc[1])
		assert.ErrorIs(t, err, ErrInvalidSquare, "row %d col %d", rc[0], rc[1])
	}

	assert.Panics(t, func() { MustPosition(0, 0) })
}

func TestParseSquare(t *testing.T) {
	pos, err := ParseSquare("e4")
	require.NoError(t, err)
	assert.Equal(t, 4, pos.Row())
	assert.Equal(t, 5, pos.Col())

	upper, err := ParseSquare("E4")
	require.NoError(t, err)
	assert.Equal(t, pos, upper)

	for _, s := range []string{"", "e", "e9", "i1", "e44", "4e"} {
		_, err := ParseSquare(s)
		assert.ErrorIs(t, err, ErrInvalidSquare, s)
	}
}

func TestPosition_Offset(t *testing.T) {
	d4 := MustSquare("d4")

	next, ok := d4.Offset(1, -1)
	require.True(t, ok)
	assert.Equal(t, "c5", next.String())

	_, ok = MustSquare("h8").Offset(1, 0)
	assert.False(t, ok)
	_, ok = MustSquare("a1").Offset(0, -1)
	assert.False(t, ok)
}

func TestPosition_StringRoundTrip(t *testing.T) {
	for row := 1; row <= Size; row++ {
		for col := 1; col <= Size; col++ {
			pos := MustPosition(row, col)
			parsed, err := ParseSquare(pos.String())
			require.NoError(t, err)
			assert.Equal(t, pos, parsed)
		}
	}
}

func TestParseMove(t *testing.T) {
	m, err := ParseMove("e2e4")
	require.NoError(t, err)
	assert.Equal(t, Move{From: MustSquare("e2"), To: MustSquare("e4")}, m)
	assert.Equal(t, "e2e4", m.String())

	m, err = ParseMove("a7a8n")
	require.NoError(t, err)
	assert.Equal(t, core.Knight, m.Promotion)
	assert.Equal(t, "a7a8n", m.String())

	for _, s := range []string{"e2", "e2e", "e2e4e5", "e2e4k", "e2e4p", "z2e4", "e2\ne4"} {
		_, err := ParseMove(s)
		assert.ErrorIs(t, err, ErrInvalidMoveFormat, "%q", s)
	}
}
