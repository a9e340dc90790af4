package normalize

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToPercentOrZeroBlank(t *testing.T) {
	for _, in := range []string{"", " ", "\t", "\n  ", "%", " % "} {
		got, err := ToPercentOrZero(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, 0.0, got, "input %q", in)
	}
}

func TestToPercentOrZeroStripIsIdempotent(t *testing.T) {
	for _, in := range []string{"51.2", ".512", "0", "100", "33.333", "7"} {
		plain, err := ToPercentOrZero(in)
		require.NoError(t, err)
		withPct, err := ToPercentOrZero(in + "%")
		require.NoError(t, err)
		assert.Equal(t, plain, withPct, "input %q", in)
	}
}

func TestToPercentOrZeroRejectsGarbage(t *testing.T) {
	_, err := ToPercentOrZero("n/a")
	require.Error(t, err)

	var nerr *NormalizationError
	require.True(t, errors.As(err, &nerr))
	assert.Equal(t, "n/a", nerr.Value)
	assert.ErrorIs(t, err, ErrNotNumeric)
}

func TestToPercentage(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{".512", 51.2},
		{"0.375", 37.5},
		{"1.000", 100},
		{"51.2%", 51.2},
		{"0.5%", 0.5},
		{"", 0},
		{"47.1", 47.1},
	}
	for _, tt := range tests {
		got, err := ToPercentage(tt.in)
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, tt.in)
	}
}

func TestToHeightInches(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"6-9", 81},
		{"7-0", 84},
		{"5-11", 71},
		{" 6-2 ", 74},
	}
	for _, tt := range tests {
		got, err := ToHeightInches(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestToHeightInchesOtherFormats(t *testing.T) {
	for _, in := range []string{"", "6'9\"", "206cm", "6-", "six-nine", "6-13"} {
		_, err := ToHeightInches(in)
		assert.ErrorIs(t, err, ErrHeightFormat, "input %q", in)
	}
}

func TestToOptionalIntBlankStaysUnset(t *testing.T) {
	got, err := ToOptionalInt("  ")
	require.NoError(t, err)
	assert.False(t, got.Valid)

	got, err = ToOptionalInt("71")
	require.NoError(t, err)
	assert.Equal(t, sql.NullInt32{Int32: 71, Valid: true}, got)

	_, err = ToOptionalInt("71.5")
	assert.ErrorIs(t, err, ErrNotNumeric)
}

func TestToWeightPounds(t *testing.T) {
	got, err := ToWeightPounds("250 lb")
	require.NoError(t, err)
	assert.Equal(t, int32(250), got.Int32)

	got, err = ToWeightPounds("")
	require.NoError(t, err)
	assert.False(t, got.Valid)
}

func TestToOptionalText(t *testing.T) {
	assert.Equal(t, sql.NullString{String: "Los Angeles Lakers", Valid: true}, ToOptionalText("  Los  Angeles Lakers "))
	assert.False(t, ToOptionalText("   ").Valid)
}

func TestWithFieldLabelsError(t *testing.T) {
	_, err := ToOptionalInt("x")
	err = WithField(err, "games_played")

	var nerr *NormalizationError
	require.True(t, errors.As(err, &nerr))
	assert.Equal(t, "games_played", nerr.Field)
	assert.Contains(t, err.Error(), "games_played")
}
