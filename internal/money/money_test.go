package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndString(t *testing.T) {
	tests := []struct {
		in   string
		want Amount
	}{
		{"0", 0},
		{"0.01", 1},
		{"12.50", 1250},
		{"450.00", 45000},
		{"-3.99", -399},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse("12,50")
	require.Error(t, err)
}

func TestString(t *testing.T) {
	assert.Equal(t, "12.50", Amount(1250).String())
	assert.Equal(t, "0.00", Amount(0).String())
	assert.Equal(t, "-3.99", Amount(-399).String())
}

func TestPercent(t *testing.T) {
	// 10% of 50000 minor units.
	got := Amount(50000).Percent(decimal.NewFromInt(10))
	assert.Equal(t, Amount(5000), got)

	// Fractional percentages round half away from zero.
	got = Amount(999).Percent(decimal.RequireFromString("12.5"))
	assert.Equal(t, Amount(125), got) // 124.875 -> 125
}

func TestFromDecimalRounds(t *testing.T) {
	assert.Equal(t, Amount(1000), FromDecimal(decimal.RequireFromString("10.001")))
	assert.Equal(t, Amount(1001), FromDecimal(decimal.RequireFromString("10.005")))
}

func TestFloorZero(t *testing.T) {
	assert.Equal(t, Amount(0), Amount(-1).FloorZero())
	assert.Equal(t, Amount(7), Amount(7).FloorZero())
}

func TestMulAndMin(t *testing.T) {
	assert.Equal(t, Amount(3000), Amount(1500).Mul(2))
	assert.Equal(t, Amount(3), Min(3, 9))
	assert.Equal(t, Amount(3), Min(9, 3))
}
