package img2ascii

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupRounded(t *testing.T) {
	tbl, err := NewBrightnessTable(CharacterSetFromString("abcd"), abcd)
	require.NoError(t, err)

	tests := []struct {
		mode       RoundingMode
		brightness float64
		want       rune
	}{
		{RoundNearest, 0.3, 'b'},
		{RoundCeiling, 0.3, 'c'},
		{RoundFloor, 0.3, 'b'},
		{RoundCeiling, 0.25, 'b'},
		{RoundFloor, 0.25, 'b'},
		{RoundCeiling, 0.51, 'd'},
		{RoundFloor, 0.99, 'c'},
		// Nothing qualifies: fall back to nearest.
		{RoundCeiling, 1.5, 'd'},
		{RoundFloor, -0.1, 'a'},
	}
	for _, tt := range tests {
		got, err := tbl.LookupRounded(tt.brightness, tt.mode)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%v(%v)", tt.mode, tt.brightness)
	}
}

func TestLookupRoundedTieBreak(t *testing.T) {
	// 'B' and 'b' share a density; every mode picks the smaller one.
	tbl, err := NewBrightnessTable(CharacterSetFromString("abBd"), abcd)
	require.NoError(t, err)

	tests := []struct {
		mode       RoundingMode
		brightness float64
	}{
		{RoundNearest, 0.25},
		{RoundCeiling, 0.1},
		{RoundCeiling, 0.25},
		{RoundFloor, 0.3},
		{RoundFloor, 0.25},
	}
	for _, tt := range tests {
		got, err := tbl.LookupRounded(tt.brightness, tt.mode)
		require.NoError(t, err)
		assert.Equal(t, 'B', got, "%v(%v)", tt.mode, tt.brightness)
	}
}

func TestLookupRoundedInvalidMode(t *testing.T) {
	tbl, err := NewBrightnessTable(CharacterSetFromString("abcd"), abcd)
	require.NoError(t, err)

	_, err = tbl.LookupRounded(0.5, RoundingMode(7))
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestParseRoundingMode(t *testing.T) {
	tests := []struct {
		in   string
		want RoundingMode
	}{
		{"", RoundNearest},
		{"nearest", RoundNearest},
		{"abs", RoundNearest},
		{"ceiling", RoundCeiling},
		{"UP", RoundCeiling},
		{"floor", RoundFloor},
		{" down ", RoundFloor},
	}
	for _, tt := range tests {
		got, err := ParseRoundingMode(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseRoundingMode("sideways")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestRoundingModeString(t *testing.T) {
	assert.Equal(t, "nearest", RoundNearest.String())
	assert.Equal(t, "ceiling", RoundCeiling.String())
	assert.Equal(t, "floor", RoundFloor.String())
	assert.Equal(t, "RoundingMode(-1)", RoundingMode(-1).String())
	assert.False(t, RoundingMode(3).Valid())
}
