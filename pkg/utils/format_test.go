package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"1234.5", "$1,234.50"},
		{"1000000", "$1,000,000.00"},
		{"-9876.54", "-$9,876.54"},
		{"0.005", "$0.01"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatUSD(decimal.RequireFromString(tt.in)))
	}
}

func TestFormatPnL(t *testing.T) {
	assert.Equal(t, "+$150.00", FormatPnL(decimal.NewFromInt(150)))
	assert.Equal(t, "-$150.00", FormatPnL(decimal.NewFromInt(-150)))
	assert.Equal(t, "$0.00", FormatPnL(decimal.Zero))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "+5.25%", FormatPercent(decimal.RequireFromString("5.25")))
	assert.Equal(t, "-3.10%", FormatPercent(decimal.RequireFromString("-3.1")))
	assert.Equal(t, "0.00%", FormatPercent(decimal.Zero))
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "10", FormatQuantity(10))
	assert.Equal(t, "1,500", FormatQuantity(1500))
	assert.Equal(t, "-2,000", FormatQuantity(-2000))
}
