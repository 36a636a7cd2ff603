package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOptionIntrinsicValue(t *testing.T) {
	strike := decimal.NewFromInt(100)

	tests := []struct {
		name       string
		optionType OptionType
		underlying string
		want       string
	}{
		{"call ITM", OptionCall, "105.50", "5.5"},
		{"call OTM", OptionCall, "95", "0"},
		{"call at strike", OptionCall, "100", "0"},
		{"put ITM", OptionPut, "92.25", "7.75"},
		{"put OTM", OptionPut, "110", "0"},
		{"put at strike", OptionPut, "100", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt := Option{
				Symbol: "TEST240119C00100000",
				Type:   tt.optionType,
				Strike: strike,
			}
			underlying := decimal.RequireFromString(tt.underlying)
			got := opt.IntrinsicValue(underlying)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"intrinsic = %s, want %s", got, tt.want)
		})
	}
}

func TestOptionExpiresOn(t *testing.T) {
	expiry := time.Date(2024, 1, 19, 16, 0, 0, 0, time.UTC)
	opt := Option{Symbol: "AAPL240119C00195000", Expiry: expiry}

	// Same calendar day matches regardless of clock time.
	assert.True(t, opt.ExpiresOn(time.Date(2024, 1, 19, 0, 0, 0, 0, time.UTC)))
	assert.True(t, opt.ExpiresOn(time.Date(2024, 1, 19, 23, 59, 59, 0, time.UTC)))

	assert.False(t, opt.ExpiresOn(time.Date(2024, 1, 18, 23, 59, 59, 0, time.UTC)))
	assert.False(t, opt.ExpiresOn(time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)))
}

func TestOptionDaysToExpiry(t *testing.T) {
	opt := Option{Expiry: time.Date(2024, 1, 19, 16, 0, 0, 0, time.UTC)}

	assert.Equal(t, 0, opt.DaysToExpiry(time.Date(2024, 1, 19, 9, 30, 0, 0, time.UTC)))
	assert.Equal(t, 7, opt.DaysToExpiry(time.Date(2024, 1, 12, 9, 30, 0, 0, time.UTC)))
	assert.Equal(t, -1, opt.DaysToExpiry(time.Date(2024, 1, 20, 9, 30, 0, 0, time.UTC)))
}

func TestContractMultipliers(t *testing.T) {
	assert.Equal(t, 1, Equity{Symbol: "AAPL"}.ContractMultiplier())
	assert.Equal(t, 100, Option{Symbol: "AAPL240119C00195000"}.ContractMultiplier())
	assert.Equal(t, ClassEquity, Equity{}.Class())
	assert.Equal(t, ClassOption, Option{}.Class())
}

func TestMultiLegSymbol(t *testing.T) {
	assert.Equal(t, "MULTI_LEG_2_LEGS", MultiLegSymbol(2))
	assert.Equal(t, "MULTI_LEG_4_LEGS", MultiLegSymbol(4))
}

func TestValidOrderType(t *testing.T) {
	for _, valid := range []OrderType{OrderBuy, OrderSell, OrderBuyToOpen, OrderSellToOpen, OrderBuyToClose, OrderSellToClose} {
		assert.True(t, ValidOrderType(valid), "%s should be valid", valid)
	}
	assert.False(t, ValidOrderType("HOLD"))
	assert.False(t, ValidOrderType(""))
	assert.False(t, ValidOrderType("buy"))
}
