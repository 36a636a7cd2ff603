package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderType represents the direction of an order. Options use the four
// open/close directions; equities use plain BUY/SELL.
type OrderType string

const (
	OrderBuy         OrderType = "BUY"
	OrderSell        OrderType = "SELL"
	OrderBuyToOpen   OrderType = "BTO"
	OrderSellToOpen  OrderType = "STO"
	OrderBuyToClose  OrderType = "BTC"
	OrderSellToClose OrderType = "STC"
)

// ValidOrderType reports whether t is one of the supported order directions.
func ValidOrderType(t OrderType) bool {
	switch t {
	case OrderBuy, OrderSell, OrderBuyToOpen, OrderSellToOpen, OrderBuyToClose, OrderSellToClose:
		return true
	}
	return false
}

// OrderStatus represents the lifecycle state of a persisted order.
type OrderStatus string

const (
	OrderStatusFilled    OrderStatus = "FILLED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRejected  OrderStatus = "REJECTED"
)

// Order represents a persisted order. Multi-leg orders are stored as a single
// synthetic order; the persisted schema rejects non-positive quantities.
type Order struct {
	ID        string
	AccountID string
	Symbol    string
	Type      OrderType
	Quantity  int
	Price     decimal.Decimal
	Status    OrderStatus
	LegCount  int // 0 or 1 for single-leg orders
	CreatedAt time.Time
	FilledAt  time.Time
}

// OrderLeg is one leg of a multi-leg order request. Quantity is always a
// positive magnitude; direction is carried by the order type.
type OrderLeg struct {
	Symbol   string
	Quantity int
	Type     OrderType
	Price    decimal.NullDecimal
}

// MultiLegSymbol returns the synthetic symbol label for an n-leg order.
// The label is not a tradable symbol.
func MultiLegSymbol(legs int) string {
	return fmt.Sprintf("MULTI_LEG_%d_LEGS", legs)
}
