package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	for in, want := range map[string]Color{
		"w": ColorWhite, "WHITE": ColorWhite, " b ": ColorBlack, "black": ColorBlack,
	} {
		got, err := ParseColor(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseColor("red")
	assert.ErrorIs(t, err, ErrInvalidColor)
}

func TestOppositeColor(t *testing.T) {
	assert.Equal(t, ColorBlack, OppositeColor(ColorWhite))
	assert.Equal(t, ColorWhite, OppositeColor(ColorBlack))
}

func TestPieceSymbols(t *testing.T) {
	for _, ch := range []byte("KQBNRPkqbnrp") {
		p, ok := PieceFromSymbol(ch)
		require.True(t, ok, string(ch))
		assert.Equal(t, ch, p.Symbol())
	}

	_, ok := PieceFromSymbol('x')
	assert.False(t, ok)
	assert.True(t, Piece{}.IsZero())
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Queen")
	require.NoError(t, err)
	assert.Equal(t, Queen, k)

	k, err = ParseKind("n")
	require.NoError(t, err)
	assert.Equal(t, Knight, k)

	_, err = ParseKind("dragon")
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestPiece_JSON(t *testing.T) {
	data, err := json.Marshal(NewPiece(ColorBlack, Bishop))
	require.NoError(t, err)
	assert.JSONEq(t, `{"color":"b","kind":"bishop"}`, string(data))

	var p Piece
	require.NoError(t, json.Unmarshal(data, &p))
	assert.Equal(t, NewPiece(ColorBlack, Bishop), p)

	_, err = json.Marshal(Piece{})
	assert.Error(t, err, "empty piece has no wire form")
}

func TestState(t *testing.T) {
	assert.Equal(t, "checkmate", StateCheckmate.String())
	assert.True(t, StateStalemate.IsOver())
	assert.False(t, StateCheck.IsOver())
}
