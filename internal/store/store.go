// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"paper-trader/internal/models"
)

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Accounts
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
	UpdateCashBalance(ctx context.Context, id string, balance decimal.Decimal) error

	// Positions
	UpsertPosition(ctx context.Context, position *models.Position) error
	GetPositions(ctx context.Context, accountID string) ([]models.Position, error)
	GetPosition(ctx context.Context, accountID, symbol string) (*models.Position, error)
	DeletePosition(ctx context.Context, accountID, symbol string) error

	// Instruments
	SaveInstrument(ctx context.Context, instrument models.Instrument) error
	GetInstrument(ctx context.Context, symbol string) (models.Instrument, error)

	// Reference quotes (test data backing the store quote source)
	SaveQuote(ctx context.Context, quote *models.Quote) error
	SaveOptionQuote(ctx context.Context, quote *models.OptionQuote) error
	GetLatestQuote(ctx context.Context, symbol string) (*models.Quote, error)
	GetLatestOptionQuote(ctx context.Context, symbol string) (*models.OptionQuote, error)
	ValidateQuotes(ctx context.Context) ([]QuoteViolation, error)

	// Orders. SaveOrder commits the order record atomically; SaveOrderWithFill
	// additionally applies the position and cash effects in the same transaction.
	SaveOrder(ctx context.Context, order *models.Order) error
	SaveOrderWithFill(ctx context.Context, order *models.Order, position *models.Position, newCashBalance decimal.Decimal) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	GetOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error)

	// Lifecycle
	Close() error
}

// OrderFilter represents filters for querying orders.
type OrderFilter struct {
	AccountID string
	Symbol    string
	Status    models.OrderStatus
	From      time.Time
	To        time.Time
	Limit     int
}

// QuoteViolation flags a reference quote that fails the bid <= price <= ask
// data-quality check. Detection lives here, not in the valuation engine.
type QuoteViolation struct {
	Symbol    string
	Price     decimal.NullDecimal
	Bid       decimal.NullDecimal
	Ask       decimal.NullDecimal
	QuoteDate time.Time
	Reason    string
}
