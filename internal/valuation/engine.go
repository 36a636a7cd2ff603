// Package valuation computes portfolio snapshots, option Greeks exposure,
// and expiration-day outcomes for paper-trading accounts.
package valuation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	domainerrors "paper-trader/internal/errors"
	"paper-trader/internal/models"
	"paper-trader/internal/quotes"
	"paper-trader/internal/store"
)

// PricingPolicy names the behavior applied when a position's quote carries no
// price. The default falls back to average cost so the read path degrades to
// break-even instead of failing.
type PricingPolicy string

const (
	PricingFallbackToAvgCost PricingPolicy = "FALLBACK_AVG_COST"
	PricingRequireQuote      PricingPolicy = "REQUIRE_QUOTE"
)

// ParsePricingPolicy maps a config string to a PricingPolicy.
func ParsePricingPolicy(s string) (PricingPolicy, error) {
	switch s {
	case "", "fallback_avg_cost":
		return PricingFallbackToAvgCost, nil
	case "require_quote":
		return PricingRequireQuote, nil
	default:
		return "", fmt.Errorf("unknown pricing policy: %s", s)
	}
}

// Engine is the valuation core. All collaborators are injected; the engine
// owns no shared mutable state and performs no writes.
type Engine struct {
	store    store.DataStore
	quotes   quotes.Source
	resolver quotes.InstrumentResolver
	policy   PricingPolicy
	logger   zerolog.Logger
}

// NewEngine creates a valuation engine.
func NewEngine(s store.DataStore, src quotes.Source, resolver quotes.InstrumentResolver, policy PricingPolicy, logger zerolog.Logger) *Engine {
	if policy == "" {
		policy = PricingFallbackToAvgCost
	}
	return &Engine{
		store:    s,
		quotes:   src,
		resolver: resolver,
		policy:   policy,
		logger:   logger,
	}
}

// ValuePosition values a single position against a resolved quote. It is a
// pure function of its inputs. The second return is false when the policy
// rejects the position (no price under PricingRequireQuote).
func (e *Engine) ValuePosition(position models.Position, instrument models.Instrument, quote *models.Quote) (models.ValuedPosition, bool) {
	currentPrice := position.AvgPrice
	havePrice := false
	if quote != nil && quote.Price.Valid {
		currentPrice = quote.Price.Decimal
		havePrice = true
	}
	if !havePrice && e.policy == PricingRequireQuote {
		return models.ValuedPosition{}, false
	}

	multiplier := decimal.NewFromInt(int64(instrument.ContractMultiplier()))
	qty := decimal.NewFromInt(int64(position.Quantity))

	return models.ValuedPosition{
		Position:      position,
		Instrument:    instrument,
		CurrentPrice:  currentPrice,
		MarketValue:   currentPrice.Mul(qty).Mul(multiplier),
		UnrealizedPnL: currentPrice.Sub(position.AvgPrice).Mul(qty).Mul(multiplier),
	}, true
}

// GetPortfolio builds a fresh portfolio snapshot for an account. Positions
// whose quote cannot be resolved are skipped, not errors: one stale symbol
// must not block viewing the rest of the portfolio.
func (e *Engine) GetPortfolio(ctx context.Context, accountID string) (*models.Portfolio, error) {
	account, err := e.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("fetching account: %w", err)
	}

	positions, err := e.store.GetPositions(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("fetching positions: %w", err)
	}

	portfolio := &models.Portfolio{
		AccountID:   accountID,
		CashBalance: account.CashBalance,
		TotalValue:  account.CashBalance,
		AsOf:        time.Now(),
	}

	skipped := 0
	for _, pos := range positions {
		if pos.Quantity == 0 {
			continue
		}

		instrument := e.resolveInstrument(ctx, pos.Symbol)
		quote, err := e.lookupQuote(ctx, instrument)
		if err != nil {
			if !domainerrors.Is(err, domainerrors.ErrSymbolNotFound) {
				e.logger.Warn().Err(err).Str("symbol", pos.Symbol).Msg("Quote lookup failed, skipping position")
			} else {
				e.logger.Debug().Str("symbol", pos.Symbol).Msg("No quote for symbol, skipping position")
			}
			skipped++
			continue
		}

		valued, ok := e.ValuePosition(pos, instrument, quote)
		if !ok {
			skipped++
			continue
		}

		portfolio.Positions = append(portfolio.Positions, valued)
		portfolio.TotalValue = portfolio.TotalValue.Add(valued.MarketValue)
		portfolio.TotalPnL = portfolio.TotalPnL.Add(valued.UnrealizedPnL)
	}

	// Daily and total P&L carry the same aggregate: no since-midnight
	// baseline exists in this system.
	portfolio.DailyPnL = portfolio.TotalPnL

	e.logger.Debug().
		Str("account_id", accountID).
		Int("positions", len(portfolio.Positions)).
		Int("skipped", skipped).
		Str("total_value", portfolio.TotalValue.String()).
		Msg("Portfolio valued")

	return portfolio, nil
}

// Summarize derives the percentage view of a portfolio snapshot. Percentages
// are zero when total value is zero.
func (e *Engine) Summarize(portfolio *models.Portfolio) models.PortfolioSummary {
	summary := models.PortfolioSummary{
		AccountID:     portfolio.AccountID,
		TotalValue:    portfolio.TotalValue,
		CashBalance:   portfolio.CashBalance,
		InvestedValue: portfolio.TotalValue.Sub(portfolio.CashBalance),
		DailyPnL:      portfolio.DailyPnL,
		TotalPnL:      portfolio.TotalPnL,
		PositionCount: len(portfolio.Positions),
	}

	if !portfolio.TotalValue.IsZero() {
		hundred := decimal.NewFromInt(100)
		summary.DailyPnLPercent = portfolio.DailyPnL.Div(portfolio.TotalValue).Mul(hundred)
		summary.TotalPnLPercent = portfolio.TotalPnL.Div(portfolio.TotalValue).Mul(hundred)
	}

	return summary
}

// resolveInstrument resolves the instrument variant for a symbol. Symbols
// missing from the instrument master are treated as equities.
func (e *Engine) resolveInstrument(ctx context.Context, symbol string) models.Instrument {
	if e.resolver == nil {
		return models.Equity{Symbol: symbol}
	}
	instrument, err := e.resolver.GetInstrument(ctx, symbol)
	if err != nil {
		e.logger.Debug().Str("symbol", symbol).Msg("Instrument not in master, assuming equity")
		return models.Equity{Symbol: symbol}
	}
	return instrument
}

// lookupQuote fetches the quote appropriate to the instrument variant.
func (e *Engine) lookupQuote(ctx context.Context, instrument models.Instrument) (*models.Quote, error) {
	if instrument.Class() == models.ClassOption {
		oq, err := e.quotes.GetOptionQuote(ctx, instrument.InstrumentSymbol())
		if err != nil {
			return nil, err
		}
		q := oq.Quote
		return &q, nil
	}
	return e.quotes.GetQuote(ctx, instrument.InstrumentSymbol())
}
