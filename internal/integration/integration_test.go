// Package integration provides end-to-end tests over the full paper-trading
// stack: SQLite store, store-backed quotes, valuation engine, and orders.
package integration

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-trader/internal/models"
	"paper-trader/internal/orders"
	"paper-trader/internal/quotes"
	"paper-trader/internal/store"
	"paper-trader/internal/valuation"
)

type testStack struct {
	store  *store.SQLiteStore
	quotes *quotes.StoreSource
	engine *valuation.Engine
	orders *orders.Service
}

func newStack(t *testing.T) *testStack {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "trader.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	src := quotes.NewStoreSource(s)
	logger := zerolog.Nop()
	return &testStack{
		store:  s,
		quotes: src,
		engine: valuation.NewEngine(s, src, s, valuation.PricingFallbackToAvgCost, logger),
		orders: orders.NewService(s, src, s, logger),
	}
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(s)
}

func validDec(t *testing.T, s string) decimal.NullDecimal {
	t.Helper()
	return decimal.NullDecimal{Decimal: dec(t, s), Valid: true}
}

func seedReferenceData(t *testing.T, stack *testStack) (string, models.Option) {
	t.Helper()
	ctx := context.Background()

	account := &models.Account{ID: "acct-e2e", Owner: "e2e", CashBalance: dec(t, "100000")}
	require.NoError(t, stack.store.CreateAccount(ctx, account))

	opt := models.Option{
		Symbol:     "AAPL240119C00195000",
		Underlying: "AAPL",
		Type:       models.OptionCall,
		Strike:     dec(t, "195"),
		Expiry:     time.Date(2024, 1, 19, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, stack.store.SaveInstrument(ctx, models.Equity{Symbol: "AAPL", Name: "Apple Inc."}))
	require.NoError(t, stack.store.SaveInstrument(ctx, opt))

	quoteDate := time.Date(2024, 1, 18, 16, 0, 0, 0, time.UTC)
	require.NoError(t, stack.store.SaveQuote(ctx, &models.Quote{
		Symbol: "AAPL", Price: validDec(t, "200"), Bid: validDec(t, "199.95"), Ask: validDec(t, "200.05"), QuoteDate: quoteDate,
	}))
	require.NoError(t, stack.store.SaveOptionQuote(ctx, &models.OptionQuote{
		Quote: models.Quote{
			Symbol: opt.Symbol, Price: validDec(t, "6.50"),
			Bid: validDec(t, "6.40"), Ask: validDec(t, "6.60"), QuoteDate: quoteDate,
		},
		UnderlyingSymbol: "AAPL",
		UnderlyingPrice:  validDec(t, "200"),
		IV:               0.28,
		Greeks:           &models.Greeks{Delta: 0.62, Gamma: 0.04, Theta: -0.11, Vega: 0.09, Rho: 0.03},
	}))

	return account.ID, opt
}

// The full loop: seed reference data, fill orders, then read the portfolio,
// Greeks exposure, and expiration outcomes off the same store.
func TestEndToEndPaperTradingFlow(t *testing.T) {
	stack := newStack(t)
	ctx := context.Background()
	accountID, opt := seedReferenceData(t, stack)

	// Buy shares at the reference quote.
	equityOrder, err := stack.orders.CreateOrder(ctx, accountID, "AAPL", models.OrderBuy, 100, decimal.NullDecimal{})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusFilled, equityOrder.Status)
	assert.True(t, equityOrder.Price.Equal(dec(t, "200")))

	// Buy a call at the reference option quote.
	optionOrder, err := stack.orders.CreateOrder(ctx, accountID, opt.Symbol, models.OrderBuyToOpen, 2, decimal.NullDecimal{})
	require.NoError(t, err)
	assert.True(t, optionOrder.Price.Equal(dec(t, "6.50")))

	// Cash: 100000 - 100*200 - 2*6.50*100 = 78700.
	account, err := stack.store.GetAccount(ctx, accountID)
	require.NoError(t, err)
	assert.True(t, account.CashBalance.Equal(dec(t, "78700")), "cash = %s", account.CashBalance)

	// Portfolio snapshot values both positions at the reference quotes.
	portfolio, err := stack.engine.GetPortfolio(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, portfolio.Positions, 2)
	// 78700 cash + 20000 shares + 1300 options.
	assert.True(t, portfolio.TotalValue.Equal(dec(t, "100000")), "total = %s", portfolio.TotalValue)
	assert.True(t, portfolio.TotalPnL.IsZero(), "pnl = %s", portfolio.TotalPnL)

	summary := stack.engine.Summarize(portfolio)
	assert.True(t, summary.InvestedValue.Equal(dec(t, "21300")))

	// Greeks exposure reflects the two filled contracts.
	greeks, err := stack.engine.GetPortfolioGreeks(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, 1, greeks.OptionPositions)
	assert.Equal(t, 1, greeks.PositionsWithData)
	assert.InDelta(t, 0.62*200, greeks.Delta, 1e-9)

	// On expiration day the call struck 195 against 200 is in the money by 5.
	report, err := stack.engine.SimulateExpiration(ctx, accountID, opt.Expiry)
	require.NoError(t, err)
	require.Len(t, report.ExpiringOptions, 1)
	assert.Equal(t, models.ActionExerciseOrAssign, report.ExpiringOptions[0].Action)
	assert.True(t, report.TotalImpact.Equal(dec(t, "1000")), "impact = %s", report.TotalImpact)

	// The dry run changed nothing.
	after, err := stack.engine.GetPortfolio(ctx, accountID)
	require.NoError(t, err)
	assert.True(t, after.TotalValue.Equal(portfolio.TotalValue))
}

func TestMultiLegOrderPersistsThroughStore(t *testing.T) {
	stack := newStack(t)
	ctx := context.Background()
	accountID, opt := seedReferenceData(t, stack)

	legs := []models.OrderLeg{
		{Symbol: opt.Symbol, Type: models.OrderBuyToOpen, Quantity: 1, Price: validDec(t, "6.50")},
		{Symbol: "AAPL240119C00200000", Type: models.OrderSellToOpen, Quantity: 1, Price: validDec(t, "4.25")},
	}

	order, err := stack.orders.CreateMultiLegOrder(ctx, accountID, legs)
	require.NoError(t, err)

	listed, err := stack.store.GetOrders(ctx, store.OrderFilter{AccountID: accountID})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, order.ID, listed[0].ID)
	assert.Equal(t, "MULTI_LEG_2_LEGS", listed[0].Symbol)
	assert.Equal(t, 2, listed[0].Quantity)
	assert.True(t, listed[0].Price.Equal(dec(t, "10.75")))
	assert.Equal(t, 2, listed[0].LegCount)
}

// Snapshots are recomputed per read, so concurrent readers over the same
// account must all see a consistent portfolio.
func TestConcurrentPortfolioReads(t *testing.T) {
	stack := newStack(t)
	ctx := context.Background()
	accountID, _ := seedReferenceData(t, stack)

	_, err := stack.orders.CreateOrder(ctx, accountID, "AAPL", models.OrderBuy, 50, decimal.NullDecimal{})
	require.NoError(t, err)

	const readers = 8
	var wg sync.WaitGroup
	results := make([]decimal.Decimal, readers)
	errs := make([]error, readers)

	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			portfolio, err := stack.engine.GetPortfolio(ctx, accountID)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = portfolio.TotalValue
		}(i)
	}
	wg.Wait()

	for i := 0; i < readers; i++ {
		require.NoError(t, errs[i])
		assert.True(t, results[i].Equal(results[0]), "reader %d saw %s, reader 0 saw %s", i, results[i], results[0])
	}
}

func TestQuoteValidationSurfacesBadReferenceData(t *testing.T) {
	stack := newStack(t)
	ctx := context.Background()
	seedReferenceData(t, stack)

	// Inject a crossed quote alongside the clean seed data.
	require.NoError(t, stack.store.SaveQuote(ctx, &models.Quote{
		Symbol:    "CROSSED",
		Price:     validDec(t, "50"),
		Bid:       validDec(t, "51"),
		Ask:       validDec(t, "49"),
		QuoteDate: time.Now(),
	}))

	violations, err := stack.store.ValidateQuotes(ctx)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, "CROSSED", violations[0].Symbol)
}
