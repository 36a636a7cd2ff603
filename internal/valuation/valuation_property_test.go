package valuation

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"paper-trader/internal/models"
	"paper-trader/internal/quotes"
)

// Property: unrealized P&L is linear in quantity. Valuing k units produces
// exactly k times the P&L of one unit.
func TestProperty_PnLLinearInQuantity(t *testing.T) {
	src := quotes.NewStaticSource()
	engine := NewEngine(nil, src, src, PricingFallbackToAvgCost, zerolog.Nop())

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("P&L scales with quantity", prop.ForAll(
		func(qty int, avgCents int64, priceCents int64) bool {
			avg := decimal.New(avgCents, -2)
			price := decimal.New(priceCents, -2)
			quote := &models.Quote{Symbol: "TEST", Price: decimal.NullDecimal{Decimal: price, Valid: true}}
			instrument := models.Equity{Symbol: "TEST"}

			unit, ok := engine.ValuePosition(models.Position{Symbol: "TEST", Quantity: 1, AvgPrice: avg}, instrument, quote)
			if !ok {
				return false
			}
			scaled, ok := engine.ValuePosition(models.Position{Symbol: "TEST", Quantity: qty, AvgPrice: avg}, instrument, quote)
			if !ok {
				return false
			}

			expected := unit.UnrealizedPnL.Mul(decimal.NewFromInt(int64(qty)))
			if !scaled.UnrealizedPnL.Equal(expected) {
				t.Logf("qty=%d avg=%s price=%s: pnl=%s, want %s", qty, avg, price, scaled.UnrealizedPnL, expected)
				return false
			}
			return true
		},
		gen.IntRange(-500, 500),
		gen.Int64Range(1, 100000),
		gen.Int64Range(1, 100000),
	))

	properties.Property("zero-priced quote falls back to break-even", prop.ForAll(
		func(qty int, avgCents int64) bool {
			avg := decimal.New(avgCents, -2)
			valued, ok := engine.ValuePosition(
				models.Position{Symbol: "TEST", Quantity: qty, AvgPrice: avg},
				models.Equity{Symbol: "TEST"},
				&models.Quote{Symbol: "TEST"})
			return ok && valued.UnrealizedPnL.IsZero() && valued.CurrentPrice.Equal(avg)
		},
		gen.IntRange(-500, 500),
		gen.Int64Range(1, 100000),
	))

	properties.TestingRun(t)
}

// Property: intrinsic value is never negative, and for the same strike and
// underlying the call and put intrinsics sum to |S - K|.
func TestProperty_IntrinsicValue(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("call/put intrinsics partition |S - K|", prop.ForAll(
		func(strikeCents int64, underlyingCents int64) bool {
			strike := decimal.New(strikeCents, -2)
			underlying := decimal.New(underlyingCents, -2)

			call := models.Option{Type: models.OptionCall, Strike: strike}
			put := models.Option{Type: models.OptionPut, Strike: strike}

			callVal := call.IntrinsicValue(underlying)
			putVal := put.IntrinsicValue(underlying)

			if callVal.IsNegative() || putVal.IsNegative() {
				return false
			}
			return callVal.Add(putVal).Equal(underlying.Sub(strike).Abs())
		},
		gen.Int64Range(1, 1000000),
		gen.Int64Range(1, 1000000),
	))

	properties.TestingRun(t)
}

// Property: Greeks aggregation is additive. Aggregating a concatenation of
// two position sets equals the field-wise sum of the separate aggregates.
func TestProperty_GreeksAggregationAdditive(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	buildPositions := func(deltas []float64) []OptionPositionQuote {
		opt := models.Option{Symbol: "TEST240119C00100000", Type: models.OptionCall, Strike: decimal.NewFromInt(100)}
		positions := make([]OptionPositionQuote, len(deltas))
		for i, delta := range deltas {
			qty := int(delta*20) + 1
			positions[i] = OptionPositionQuote{
				Position:   models.Position{Symbol: opt.Symbol, Quantity: qty},
				Instrument: opt,
				Quote: &models.OptionQuote{
					Quote:           models.Quote{Symbol: opt.Symbol},
					UnderlyingPrice: decimal.NullDecimal{Decimal: decimal.NewFromInt(100), Valid: true},
					Greeks:          &models.Greeks{Delta: delta, Gamma: delta / 10, Theta: -delta / 5, Vega: delta / 2, Rho: delta / 20},
				},
			}
		}
		return positions
	}

	properties.Property("aggregate(a ++ b) == aggregate(a) + aggregate(b)", prop.ForAll(
		func(deltasA, deltasB []float64) bool {
			a := buildPositions(deltasA)
			b := buildPositions(deltasB)
			combined := AggregatePortfolioGreeks(append(append([]OptionPositionQuote{}, a...), b...))
			left := AggregatePortfolioGreeks(a)
			right := AggregatePortfolioGreeks(b)

			const tol = 1e-6
			return combined.OptionPositions == left.OptionPositions+right.OptionPositions &&
				combined.PositionsWithData == left.PositionsWithData+right.PositionsWithData &&
				math.Abs(combined.Delta-(left.Delta+right.Delta)) <= tol &&
				math.Abs(combined.Gamma-(left.Gamma+right.Gamma)) <= tol &&
				math.Abs(combined.Theta-(left.Theta+right.Theta)) <= tol &&
				math.Abs(combined.Vega-(left.Vega+right.Vega)) <= tol &&
				math.Abs(combined.Rho-(left.Rho+right.Rho)) <= tol &&
				math.Abs(combined.DeltaDollars-(left.DeltaDollars+right.DeltaDollars)) <= tol
		},
		gen.SliceOf(gen.Float64Range(-1, 1)),
		gen.SliceOf(gen.Float64Range(-1, 1)),
	))

	properties.TestingRun(t)
}
