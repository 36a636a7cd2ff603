// Package models provides domain models for the paper-trading backend.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstrumentClass discriminates the instrument union.
type InstrumentClass string

const (
	ClassEquity InstrumentClass = "EQUITY"
	ClassOption InstrumentClass = "OPTION"
)

// OptionType represents the type of an option contract.
type OptionType string

const (
	OptionCall OptionType = "CALL"
	OptionPut  OptionType = "PUT"
)

// EquityMultiplier and OptionMultiplier are the contract multipliers applied
// when converting per-unit prices to position values.
const (
	EquityMultiplier = 1
	OptionMultiplier = 100
)

// Instrument is a sealed union over Equity and Option. Option-only fields
// (strike, expiry, underlying) are only reachable on the Option variant.
type Instrument interface {
	InstrumentSymbol() string
	Class() InstrumentClass
	ContractMultiplier() int
}

// Equity represents a plain share instrument.
type Equity struct {
	Symbol string
	Name   string
}

func (e Equity) InstrumentSymbol() string { return e.Symbol }
func (e Equity) Class() InstrumentClass   { return ClassEquity }
func (e Equity) ContractMultiplier() int  { return EquityMultiplier }

// Option represents a listed option contract.
type Option struct {
	Symbol     string // OCC-style contract symbol
	Underlying string
	Type       OptionType
	Strike     decimal.Decimal
	Expiry     time.Time
}

func (o Option) InstrumentSymbol() string { return o.Symbol }
func (o Option) Class() InstrumentClass   { return ClassOption }
func (o Option) ContractMultiplier() int  { return OptionMultiplier }

// IntrinsicValue returns the in-the-money value of the option at the given
// underlying price. At-the-money contracts have zero intrinsic value.
func (o Option) IntrinsicValue(underlying decimal.Decimal) decimal.Decimal {
	var intrinsic decimal.Decimal
	switch o.Type {
	case OptionCall:
		intrinsic = underlying.Sub(o.Strike)
	case OptionPut:
		intrinsic = o.Strike.Sub(underlying)
	}
	if intrinsic.IsNegative() {
		return decimal.Zero
	}
	return intrinsic
}

// ExpiresOn reports whether the option expires on the given calendar day.
func (o Option) ExpiresOn(day time.Time) bool {
	y1, m1, d1 := o.Expiry.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// DaysToExpiry returns whole calendar days from the given day to expiry.
// Negative values mean the contract is already past expiry.
func (o Option) DaysToExpiry(from time.Time) int {
	y, m, d := from.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	y, m, d = o.Expiry.Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

// Greeks represents option price sensitivities.
type Greeks struct {
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
	Rho   float64
}

// Quote represents a market quote for an instrument.
type Quote struct {
	Symbol    string
	Price     decimal.NullDecimal
	Bid       decimal.NullDecimal
	Ask       decimal.NullDecimal
	QuoteDate time.Time
}

// OptionQuote extends Quote with option-specific market data. Greeks is nil
// when the IV surface is unavailable for the contract.
type OptionQuote struct {
	Quote
	UnderlyingSymbol string
	UnderlyingPrice  decimal.NullDecimal
	IV               float64
	Greeks           *Greeks
}

// Account represents a paper-trading account.
type Account struct {
	ID          string
	Owner       string
	CashBalance decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
