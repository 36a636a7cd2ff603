package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position represents an open position as stored. Quantity is signed;
// negative quantities are short positions.
type Position struct {
	AccountID string
	Symbol    string
	Quantity  int
	AvgPrice  decimal.Decimal
	UpdatedAt time.Time
}

// ValuedPosition is a position with a resolved instrument and current price.
type ValuedPosition struct {
	Position
	Instrument    Instrument
	CurrentPrice  decimal.Decimal
	MarketValue   decimal.Decimal
	UnrealizedPnL decimal.Decimal
}

// Portfolio is a point-in-time snapshot of an account. It is recomputed fresh
// on every read; nothing here is cached across calls.
type Portfolio struct {
	AccountID   string
	CashBalance decimal.Decimal
	Positions   []ValuedPosition
	TotalValue  decimal.Decimal
	DailyPnL    decimal.Decimal
	TotalPnL    decimal.Decimal
	AsOf        time.Time
}

// PortfolioSummary carries the derived percentage view of a portfolio.
type PortfolioSummary struct {
	AccountID       string
	TotalValue      decimal.Decimal
	CashBalance     decimal.Decimal
	InvestedValue   decimal.Decimal
	DailyPnL        decimal.Decimal
	TotalPnL        decimal.Decimal
	DailyPnLPercent decimal.Decimal
	TotalPnLPercent decimal.Decimal
	PositionCount   int
}

// PositionGreeks is the Greeks exposure of a single option position.
type PositionGreeks struct {
	Symbol     string
	Quantity   int
	Underlying string
	// Raw per-contract Greeks from the quote.
	Contract Greeks
	// Position-level Greeks scaled by quantity x contract multiplier.
	Scaled Greeks
	// Dollar-equivalent exposures against the underlying price.
	DeltaDollars float64
	GammaDollars float64
}

// PortfolioGreeks aggregates Greeks exposure across option positions.
// Positions without Greeks contribute zero to every sum but still count.
type PortfolioGreeks struct {
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
	Rho   float64

	// Normalized sums are unscaled per-contract Greeks, for per-contract
	// risk comparison across positions.
	DeltaNormalized float64
	GammaNormalized float64
	ThetaNormalized float64
	VegaNormalized  float64
	RhoNormalized   float64

	DeltaDollars float64
	GammaDollars float64

	OptionPositions   int
	PositionsWithData int
}

// ExpirationAction classifies the outcome of an option on expiration day.
type ExpirationAction string

const (
	ActionExerciseOrAssign     ExpirationAction = "exercise_or_assign"
	ActionExpireWorthless      ExpirationAction = "expire_worthless"
	ActionManualReviewRequired ExpirationAction = "manual_review_required"
)

// ExpiringOption is the per-contract detail of an expiration scan.
type ExpiringOption struct {
	Symbol          string
	Underlying      string
	Type            OptionType
	Strike          decimal.Decimal
	Quantity        int
	UnderlyingPrice decimal.NullDecimal
	IntrinsicValue  decimal.Decimal
	Action          ExpirationAction
	PositionImpact  decimal.Decimal
	Error           string // set when Action is manual_review_required
}

// NonExpiringOption reports days to expiration for contracts not expiring on
// the processing date.
type NonExpiringOption struct {
	Symbol       string
	Expiry       time.Time
	DaysToExpiry int
}

// ExpirationReport is the result of an expiration-day dry run. The simulator
// never mutates positions, orders, or cash.
type ExpirationReport struct {
	AccountID          string
	ProcessingDate     time.Time
	DryRun             bool
	ExpiringPositions  int
	ExpiringOptions    []ExpiringOption
	NonExpiring        int
	NonExpiringDetails []NonExpiringOption
	TotalImpact        decimal.Decimal
}
