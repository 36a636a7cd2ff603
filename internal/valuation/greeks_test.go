package valuation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "paper-trader/internal/errors"
	"paper-trader/internal/models"
)

func testOption(t *testing.T, symbol string) models.Option {
	t.Helper()
	return models.Option{
		Symbol:     symbol,
		Underlying: "AAPL",
		Type:       models.OptionCall,
		Strike:     dec(t, "195"),
		Expiry:     time.Date(2024, 1, 19, 0, 0, 0, 0, time.UTC),
	}
}

func TestAggregatePortfolioGreeks(t *testing.T) {
	long := testOption(t, "AAPL240119C00195000")
	short := testOption(t, "AAPL240119C00200000")

	positions := []OptionPositionQuote{
		{
			Position:   models.Position{Symbol: long.Symbol, Quantity: 2},
			Instrument: long,
			Quote: &models.OptionQuote{
				Quote:           models.Quote{Symbol: long.Symbol},
				UnderlyingPrice: validDec(t, "190"),
				Greeks:          &models.Greeks{Delta: 0.5, Gamma: 0.02, Theta: -0.05, Vega: 0.1, Rho: 0.03},
			},
		},
		{
			Position:   models.Position{Symbol: short.Symbol, Quantity: -1},
			Instrument: short,
			Quote: &models.OptionQuote{
				Quote:           models.Quote{Symbol: short.Symbol},
				UnderlyingPrice: validDec(t, "190"),
				Greeks:          &models.Greeks{Delta: 0.3, Gamma: 0.01, Theta: -0.03, Vega: 0.08, Rho: 0.02},
			},
		},
	}

	agg := AggregatePortfolioGreeks(positions)

	assert.Equal(t, 2, agg.OptionPositions)
	assert.Equal(t, 2, agg.PositionsWithData)

	// 0.5*200 + 0.3*(-100)
	assert.InDelta(t, 70.0, agg.Delta, 1e-9)
	assert.InDelta(t, 0.02*200+0.01*(-100), agg.Gamma, 1e-9)
	assert.InDelta(t, -0.05*200+(-0.03)*(-100), agg.Theta, 1e-9)

	// Normalized sums are per-contract, unscaled.
	assert.InDelta(t, 0.8, agg.DeltaNormalized, 1e-9)

	assert.InDelta(t, 0.5*190*200+0.3*190*(-100), agg.DeltaDollars, 1e-6)
}

func TestAggregatePortfolioGreeksZeroWeightsMissingData(t *testing.T) {
	opt := testOption(t, "AAPL240119C00195000")

	positions := []OptionPositionQuote{
		// Quote lookup failed entirely.
		{Position: models.Position{Symbol: opt.Symbol, Quantity: 3}, Instrument: opt},
		// Quote present but no Greeks surface.
		{
			Position:   models.Position{Symbol: opt.Symbol, Quantity: 1},
			Instrument: opt,
			Quote:      &models.OptionQuote{Quote: models.Quote{Symbol: opt.Symbol}},
		},
		// Equities never contribute to option counts.
		{Position: models.Position{Symbol: "AAPL", Quantity: 100}, Instrument: models.Equity{Symbol: "AAPL"}},
	}

	agg := AggregatePortfolioGreeks(positions)
	assert.Equal(t, 2, agg.OptionPositions)
	assert.Equal(t, 0, agg.PositionsWithData)
	assert.Zero(t, agg.Delta)
	assert.Zero(t, agg.DeltaDollars)
}

func TestAggregatePortfolioGreeksEmpty(t *testing.T) {
	agg := AggregatePortfolioGreeks(nil)
	assert.Equal(t, 0, agg.OptionPositions)
	assert.Zero(t, agg.Delta)
}

func TestGetPositionGreeks(t *testing.T) {
	engine, s, src := newTestEngine(t, PricingFallbackToAvgCost)
	ctx := context.Background()

	opt := testOption(t, "AAPL240119C00195000")
	require.NoError(t, s.CreateAccount(ctx, &models.Account{ID: "acct-1", Owner: "test", CashBalance: dec(t, "1000")}))
	require.NoError(t, s.UpsertPosition(ctx, &models.Position{
		AccountID: "acct-1", Symbol: opt.Symbol, Quantity: 2, AvgPrice: dec(t, "5"),
	}))

	src.SetInstrument(opt)
	src.SetOptionQuote(&models.OptionQuote{
		Quote:            models.Quote{Symbol: opt.Symbol, Price: validDec(t, "6")},
		UnderlyingSymbol: "AAPL",
		UnderlyingPrice:  validDec(t, "190"),
		Greeks:           &models.Greeks{Delta: 0.5, Gamma: 0.02, Theta: -0.05, Vega: 0.1, Rho: 0.03},
	})

	greeks, err := engine.GetPositionGreeks(ctx, "acct-1", opt.Symbol)
	require.NoError(t, err)

	assert.Equal(t, 2, greeks.Quantity)
	assert.Equal(t, "AAPL", greeks.Underlying)
	assert.InDelta(t, 0.5, greeks.Contract.Delta, 1e-9)
	assert.InDelta(t, 100.0, greeks.Scaled.Delta, 1e-9)
	assert.InDelta(t, -10.0, greeks.Scaled.Theta, 1e-9)
	assert.InDelta(t, 0.5*190*200, greeks.DeltaDollars, 1e-6)
}

func TestGetPositionGreeksNonOption(t *testing.T) {
	engine, s, src := newTestEngine(t, PricingFallbackToAvgCost)
	ctx := context.Background()

	require.NoError(t, s.CreateAccount(ctx, &models.Account{ID: "acct-1", Owner: "test", CashBalance: dec(t, "1000")}))
	require.NoError(t, s.UpsertPosition(ctx, &models.Position{
		AccountID: "acct-1", Symbol: "AAPL", Quantity: 10, AvgPrice: dec(t, "150"),
	}))
	src.SetInstrument(models.Equity{Symbol: "AAPL"})

	_, err := engine.GetPositionGreeks(ctx, "acct-1", "AAPL")
	require.Error(t, err)

	var validationErr *domainerrors.ValidationError
	assert.True(t, domainerrors.As(err, &validationErr))
}

func TestGetPositionGreeksNoGreeksData(t *testing.T) {
	engine, s, src := newTestEngine(t, PricingFallbackToAvgCost)
	ctx := context.Background()

	opt := testOption(t, "AAPL240119C00195000")
	require.NoError(t, s.CreateAccount(ctx, &models.Account{ID: "acct-1", Owner: "test", CashBalance: dec(t, "1000")}))
	require.NoError(t, s.UpsertPosition(ctx, &models.Position{
		AccountID: "acct-1", Symbol: opt.Symbol, Quantity: 1, AvgPrice: dec(t, "5"),
	}))
	src.SetInstrument(opt)
	src.SetOptionQuote(&models.OptionQuote{Quote: models.Quote{Symbol: opt.Symbol}})

	greeks, err := engine.GetPositionGreeks(ctx, "acct-1", opt.Symbol)
	require.NoError(t, err)
	assert.Zero(t, greeks.Scaled.Delta)
	assert.Zero(t, greeks.DeltaDollars)
}

func TestGetPortfolioGreeksQuoteFailureZeroWeighted(t *testing.T) {
	engine, s, src := newTestEngine(t, PricingFallbackToAvgCost)
	ctx := context.Background()

	good := testOption(t, "AAPL240119C00195000")
	bad := testOption(t, "AAPL240119C00200000")

	require.NoError(t, s.CreateAccount(ctx, &models.Account{ID: "acct-1", Owner: "test", CashBalance: dec(t, "1000")}))
	require.NoError(t, s.UpsertPosition(ctx, &models.Position{
		AccountID: "acct-1", Symbol: good.Symbol, Quantity: 1, AvgPrice: dec(t, "5"),
	}))
	require.NoError(t, s.UpsertPosition(ctx, &models.Position{
		AccountID: "acct-1", Symbol: bad.Symbol, Quantity: 1, AvgPrice: dec(t, "3"),
	}))

	src.SetInstrument(good)
	src.SetInstrument(bad)
	// Only the first contract has a quote.
	src.SetOptionQuote(&models.OptionQuote{
		Quote:           models.Quote{Symbol: good.Symbol},
		UnderlyingPrice: validDec(t, "190"),
		Greeks:          &models.Greeks{Delta: 0.5},
	})

	agg, err := engine.GetPortfolioGreeks(ctx, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, 2, agg.OptionPositions)
	assert.Equal(t, 1, agg.PositionsWithData)
	assert.InDelta(t, 50.0, agg.Delta, 1e-9)
}
