package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-trader/internal/models"
)

func TestParseLeg(t *testing.T) {
	leg, err := parseLeg("AAPL240119C00195000:BTO:1:5.25")
	require.NoError(t, err)
	assert.Equal(t, "AAPL240119C00195000", leg.Symbol)
	assert.Equal(t, models.OrderBuyToOpen, leg.Type)
	assert.Equal(t, 1, leg.Quantity)
	require.True(t, leg.Price.Valid)
	assert.Equal(t, "5.25", leg.Price.Decimal.String())
}

func TestParseLegWithoutPrice(t *testing.T) {
	leg, err := parseLeg("SPY240119P00450000:sto:2")
	require.NoError(t, err)
	assert.Equal(t, models.OrderSellToOpen, leg.Type)
	assert.Equal(t, 2, leg.Quantity)
	assert.False(t, leg.Price.Valid)
}

func TestParseLegInvalid(t *testing.T) {
	tests := []string{
		"",
		"AAPL",
		"AAPL:BTO",
		"AAPL:BTO:abc",
		"AAPL:BTO:1:notaprice",
		"AAPL:BTO:1:5.25:extra",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := parseLeg(input)
			assert.Error(t, err)
		})
	}
}
