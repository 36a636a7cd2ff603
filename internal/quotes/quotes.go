// Package quotes provides quote source interfaces and implementations.
package quotes

import (
	"context"

	"paper-trader/internal/models"
)

// Source defines the interface for quote lookups. Implementations fail with
// errors.ErrSymbolNotFound when the symbol is unknown or has no current quote.
type Source interface {
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
	GetOptionQuote(ctx context.Context, symbol string) (*models.OptionQuote, error)
}

// InstrumentResolver resolves a symbol to its Equity or Option variant.
type InstrumentResolver interface {
	GetInstrument(ctx context.Context, symbol string) (models.Instrument, error)
}
