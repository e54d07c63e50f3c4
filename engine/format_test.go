package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		v        float64
		decimals int
		want     string
	}{
		{0, 2, "0.00"},
		{1234.5678, 2, "1,234.57"},
		{1234567, 0, "1,234,567"},
		{-1500.3, 1, "-1,500.3"},
		{-0.001, 2, "0.00"},
		{999.999, 2, "1,000.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.v, tt.decimals), "FormatNumber(%v, %d)", tt.v, tt.decimals)
	}
	assert.Equal(t, "12,345", FormatInt(12345))
}

func TestFormatCompact(t *testing.T) {
	assert.Equal(t, "1,000", FormatCompact(1000, 1))
	assert.Equal(t, "1.5k", FormatCompact(1500, 1))
	assert.Equal(t, "2k", FormatCompact(1500, 0))
	assert.Equal(t, "12.3k", FormatCompact(12345, 1))
	assert.Equal(t, "850", FormatCompact(850, 1))
}

func TestRateText(t *testing.T) {
	g := Group{Count: 3456, Rate: 4.567}
	assert.Equal(t, "4.57\n(3.5k)", RateText(g, SmallSeriesLabel))
	assert.Equal(t, "5\n(3k)", RateText(g, LargeSeriesLabel))
	assert.Equal(t, "4.57\n(3,456)", RateText(g, PlainCountLabel))

	g = Group{Count: 640, Rate: 1.2}
	assert.Equal(t, "1.20\n(640)", RateText(g, SmallSeriesLabel))
}

func TestParseDisplayNumberRoundTrip(t *testing.T) {
	values := []float64{0, 12.5, 1234.56, 98765.43}
	for _, v := range values {
		got, err := ParseDisplayNumber(FormatNumber(v, 2))
		require.NoError(t, err)
		assert.InDelta(t, v, got, 0.005)
	}

	got, err := ParseDisplayNumber("(1.5k)")
	require.NoError(t, err)
	assert.Equal(t, 1500.0, got)

	got, err = ParseDisplayNumber("+12.50%")
	require.NoError(t, err)
	assert.Equal(t, 12.5, got)

	got, err = ParseDisplayNumber("≥7.3")
	require.NoError(t, err)
	assert.Equal(t, 7.3, got)

	_, err = ParseDisplayNumber(NoChange)
	assert.Error(t, err)
}
