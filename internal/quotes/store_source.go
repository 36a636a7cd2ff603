package quotes

import (
	"context"

	"paper-trader/internal/models"
	"paper-trader/internal/store"
)

// StoreSource serves quotes from the reference-quote tables of a DataStore.
// This backs paper trading with migrated test data instead of a live feed.
type StoreSource struct {
	store store.DataStore
}

// NewStoreSource creates a store-backed quote source.
func NewStoreSource(s store.DataStore) *StoreSource {
	return &StoreSource{store: s}
}

// GetQuote returns the latest reference quote for a symbol.
func (s *StoreSource) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	return s.store.GetLatestQuote(ctx, symbol)
}

// GetOptionQuote returns the latest reference option quote for a contract.
func (s *StoreSource) GetOptionQuote(ctx context.Context, symbol string) (*models.OptionQuote, error) {
	return s.store.GetLatestOptionQuote(ctx, symbol)
}

var _ Source = (*StoreSource)(nil)
