// Package orders creates and persists paper orders, including multi-leg
// spread orders aggregated into a single synthetic record.
package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	domainerrors "paper-trader/internal/errors"
	"paper-trader/internal/models"
	"paper-trader/internal/quotes"
	"paper-trader/internal/store"
)

// Service executes paper orders against the data store. Execution is
// instantaneous: orders are persisted already FILLED, with no routing and no
// partial-fill state.
type Service struct {
	store    store.DataStore
	quotes   quotes.Source
	resolver quotes.InstrumentResolver
	logger   zerolog.Logger
}

// NewService creates an order service.
func NewService(s store.DataStore, src quotes.Source, resolver quotes.InstrumentResolver, logger zerolog.Logger) *Service {
	return &Service{
		store:    s,
		quotes:   src,
		resolver: resolver,
		logger:   logger,
	}
}

// CreateMultiLegOrder aggregates the legs of a spread into one synthetic
// order and persists it atomically. Quantity is the sum of leg magnitudes;
// price sums only legs that carry a price; the order type is taken from the
// first leg, a deterministic label that does not represent the strategy's
// net direction for mixed leg sets.
func (s *Service) CreateMultiLegOrder(ctx context.Context, accountID string, legs []models.OrderLeg) (*models.Order, error) {
	if err := validateLegs(legs); err != nil {
		return nil, domainerrors.Wrap(err, "failed to create multi-leg order")
	}

	quantity := 0
	price := decimal.Zero
	for _, leg := range legs {
		quantity += leg.Quantity
		if leg.Price.Valid {
			price = price.Add(leg.Price.Decimal)
		}
	}
	// The persisted schema rejects non-positive quantities; zero legs land here.
	if quantity <= 0 {
		return nil, domainerrors.Wrap(
			domainerrors.NewValidationError("quantity", quantity, "quantity must be positive"),
			"failed to create multi-leg order")
	}

	now := time.Now()
	order := &models.Order{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Symbol:    models.MultiLegSymbol(len(legs)),
		Type:      legs[0].Type,
		Quantity:  quantity,
		Price:     price,
		Status:    models.OrderStatusFilled,
		LegCount:  len(legs),
		CreatedAt: now,
		FilledAt:  now,
	}

	if err := s.store.SaveOrder(ctx, order); err != nil {
		return nil, domainerrors.Wrap(err, "failed to create multi-leg order")
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Str("symbol", order.Symbol).
		Int("legs", len(legs)).
		Int("quantity", order.Quantity).
		Str("price", order.Price.String()).
		Msg("Multi-leg order filled")

	return order, nil
}

func validateLegs(legs []models.OrderLeg) error {
	for i, leg := range legs {
		if leg.Symbol == "" {
			return domainerrors.NewValidationError(fmt.Sprintf("legs[%d].symbol", i), leg.Symbol, "symbol is required")
		}
		if leg.Quantity <= 0 {
			return domainerrors.NewValidationError(fmt.Sprintf("legs[%d].quantity", i), leg.Quantity, "quantity must be positive")
		}
		if !models.ValidOrderType(leg.Type) {
			return domainerrors.NewValidationError(fmt.Sprintf("legs[%d].type", i), leg.Type, "unknown order type")
		}
	}
	return nil
}

// CreateOrder fills a single-leg order immediately at the given limit price,
// or at the current quote when no price is given, and applies the position
// and cash effects atomically.
func (s *Service) CreateOrder(ctx context.Context, accountID, symbol string, orderType models.OrderType, quantity int, limitPrice decimal.NullDecimal) (*models.Order, error) {
	if quantity <= 0 {
		return nil, domainerrors.NewValidationError("quantity", quantity, "quantity must be positive")
	}
	if !models.ValidOrderType(orderType) {
		return nil, domainerrors.NewValidationError("type", orderType, "unknown order type")
	}

	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("fetching account: %w", err)
	}

	instrument := s.resolveInstrument(ctx, symbol)

	execPrice, err := s.executionPrice(ctx, instrument, limitPrice)
	if err != nil {
		return nil, err
	}

	multiplier := decimal.NewFromInt(int64(instrument.ContractMultiplier()))
	orderValue := execPrice.Mul(decimal.NewFromInt(int64(quantity))).Mul(multiplier)

	cash := account.CashBalance
	signedQty := quantity
	if isBuySide(orderType) {
		if cash.LessThan(orderValue) {
			return nil, domainerrors.NewOrderError("", symbol, "insufficient funds", nil)
		}
		cash = cash.Sub(orderValue)
	} else {
		cash = cash.Add(orderValue)
		signedQty = -quantity
	}

	position, err := s.applyFill(ctx, accountID, symbol, signedQty, execPrice)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order := &models.Order{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Symbol:    symbol,
		Type:      orderType,
		Quantity:  quantity,
		Price:     execPrice,
		Status:    models.OrderStatusFilled,
		CreatedAt: now,
		FilledAt:  now,
	}

	if err := s.store.SaveOrderWithFill(ctx, order, position, cash); err != nil {
		return nil, domainerrors.NewOrderError(order.ID, symbol, "persisting fill", err)
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Str("symbol", symbol).
		Str("type", string(orderType)).
		Int("quantity", quantity).
		Str("price", execPrice.String()).
		Msg("Paper order filled")

	return order, nil
}

// applyFill computes the post-fill position for a symbol.
func (s *Service) applyFill(ctx context.Context, accountID, symbol string, signedQty int, price decimal.Decimal) (*models.Position, error) {
	existing, err := s.store.GetPosition(ctx, accountID, symbol)
	if err != nil {
		if !domainerrors.Is(err, domainerrors.ErrPositionNotFound) {
			return nil, fmt.Errorf("fetching position: %w", err)
		}
		existing = &models.Position{AccountID: accountID, Symbol: symbol}
	}

	newQty := existing.Quantity + signedQty
	avg := existing.AvgPrice

	switch {
	case existing.Quantity == 0 || (existing.Quantity > 0) == (signedQty > 0):
		// Adding to a flat or same-direction position: volume-weighted average.
		oldAbs := decimal.NewFromInt(int64(abs(existing.Quantity)))
		addAbs := decimal.NewFromInt(int64(abs(signedQty)))
		totalAbs := oldAbs.Add(addAbs)
		if !totalAbs.IsZero() {
			avg = existing.AvgPrice.Mul(oldAbs).Add(price.Mul(addAbs)).Div(totalAbs)
		}
	case (existing.Quantity > 0) != (newQty > 0) && newQty != 0:
		// Position flipped through zero: cost basis restarts at the fill price.
		avg = price
	}

	return &models.Position{
		AccountID: accountID,
		Symbol:    symbol,
		Quantity:  newQty,
		AvgPrice:  avg,
	}, nil
}

func (s *Service) executionPrice(ctx context.Context, instrument models.Instrument, limitPrice decimal.NullDecimal) (decimal.Decimal, error) {
	if limitPrice.Valid {
		return limitPrice.Decimal, nil
	}

	symbol := instrument.InstrumentSymbol()
	var price decimal.NullDecimal
	if instrument.Class() == models.ClassOption {
		quote, err := s.quotes.GetOptionQuote(ctx, symbol)
		if err != nil {
			return decimal.Zero, domainerrors.NewQuoteError(symbol, err)
		}
		price = quote.Price
	} else {
		quote, err := s.quotes.GetQuote(ctx, symbol)
		if err != nil {
			return decimal.Zero, domainerrors.NewQuoteError(symbol, err)
		}
		price = quote.Price
	}
	if !price.Valid {
		return decimal.Zero, domainerrors.NewQuoteError(symbol, domainerrors.ErrQuoteUnavailable)
	}
	return price.Decimal, nil
}

func (s *Service) resolveInstrument(ctx context.Context, symbol string) models.Instrument {
	if s.resolver == nil {
		return models.Equity{Symbol: symbol}
	}
	instrument, err := s.resolver.GetInstrument(ctx, symbol)
	if err != nil {
		return models.Equity{Symbol: symbol}
	}
	return instrument
}

func isBuySide(t models.OrderType) bool {
	switch t {
	case models.OrderBuy, models.OrderBuyToOpen, models.OrderBuyToClose:
		return true
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
