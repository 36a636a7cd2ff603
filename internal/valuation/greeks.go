package valuation

import (
	"context"
	"fmt"

	domainerrors "paper-trader/internal/errors"
	"paper-trader/internal/models"
)

// OptionPositionQuote pairs a position with its resolved instrument and
// option quote. Quote is nil when the lookup failed; such positions
// contribute zero to every Greeks aggregate but are never dropped from the
// position counts.
type OptionPositionQuote struct {
	Position   models.Position
	Instrument models.Instrument
	Quote      *models.OptionQuote
}

// GetPositionGreeks returns the Greeks exposure of a single option position.
// Greeks are only meaningful for options; equities fail validation.
func (e *Engine) GetPositionGreeks(ctx context.Context, accountID, symbol string) (*models.PositionGreeks, error) {
	position, err := e.store.GetPosition(ctx, accountID, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetching position: %w", err)
	}

	instrument := e.resolveInstrument(ctx, symbol)
	option, ok := instrument.(models.Option)
	if !ok {
		return nil, domainerrors.NewValidationError("symbol", symbol, "greeks are only available for options")
	}

	quote, err := e.quotes.GetOptionQuote(ctx, symbol)
	if err != nil {
		return nil, domainerrors.NewQuoteError(symbol, err)
	}

	result := &models.PositionGreeks{
		Symbol:     symbol,
		Quantity:   position.Quantity,
		Underlying: option.Underlying,
	}
	if quote.Greeks == nil {
		return result, nil
	}

	scale := float64(position.Quantity) * float64(models.OptionMultiplier)
	result.Contract = *quote.Greeks
	result.Scaled = models.Greeks{
		Delta: quote.Greeks.Delta * scale,
		Gamma: quote.Greeks.Gamma * scale,
		Theta: quote.Greeks.Theta * scale,
		Vega:  quote.Greeks.Vega * scale,
		Rho:   quote.Greeks.Rho * scale,
	}
	if quote.UnderlyingPrice.Valid {
		underlying := quote.UnderlyingPrice.Decimal.InexactFloat64()
		result.DeltaDollars = quote.Greeks.Delta * underlying * scale
		result.GammaDollars = quote.Greeks.Gamma * underlying * scale
	}

	return result, nil
}

// AggregatePortfolioGreeks sums Greeks exposure across option positions.
// Pure function over its inputs.
func AggregatePortfolioGreeks(positions []OptionPositionQuote) models.PortfolioGreeks {
	var agg models.PortfolioGreeks

	for _, p := range positions {
		if _, ok := p.Instrument.(models.Option); !ok {
			continue
		}
		agg.OptionPositions++

		if p.Quote == nil || p.Quote.Greeks == nil {
			// Zero-weighted, still counted.
			continue
		}
		agg.PositionsWithData++

		g := p.Quote.Greeks
		scale := float64(p.Position.Quantity) * float64(models.OptionMultiplier)

		agg.Delta += g.Delta * scale
		agg.Gamma += g.Gamma * scale
		agg.Theta += g.Theta * scale
		agg.Vega += g.Vega * scale
		agg.Rho += g.Rho * scale

		agg.DeltaNormalized += g.Delta
		agg.GammaNormalized += g.Gamma
		agg.ThetaNormalized += g.Theta
		agg.VegaNormalized += g.Vega
		agg.RhoNormalized += g.Rho

		if p.Quote.UnderlyingPrice.Valid {
			underlying := p.Quote.UnderlyingPrice.Decimal.InexactFloat64()
			agg.DeltaDollars += g.Delta * underlying * scale
			agg.GammaDollars += g.Gamma * underlying * scale
		}
	}

	return agg
}

// GetPortfolioGreeks aggregates Greeks across all option positions of an
// account. Quote failures zero-weight the affected position rather than
// failing the aggregation.
func (e *Engine) GetPortfolioGreeks(ctx context.Context, accountID string) (*models.PortfolioGreeks, error) {
	positions, err := e.store.GetPositions(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("fetching positions: %w", err)
	}

	var paired []OptionPositionQuote
	for _, pos := range positions {
		instrument := e.resolveInstrument(ctx, pos.Symbol)
		entry := OptionPositionQuote{Position: pos, Instrument: instrument}
		if instrument.Class() == models.ClassOption {
			quote, err := e.quotes.GetOptionQuote(ctx, pos.Symbol)
			if err != nil {
				e.logger.Debug().Err(err).Str("symbol", pos.Symbol).Msg("Option quote unavailable for greeks")
			} else {
				entry.Quote = quote
			}
		}
		paired = append(paired, entry)
	}

	agg := AggregatePortfolioGreeks(paired)
	return &agg, nil
}
