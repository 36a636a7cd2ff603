package quotes

import (
	"context"
	"sync"

	domainerrors "paper-trader/internal/errors"
	"paper-trader/internal/models"
)

// StaticSource is an in-memory quote source. It backs tests and seeded
// paper-trading sessions where no reference database is available.
type StaticSource struct {
	quotes       map[string]*models.Quote
	optionQuotes map[string]*models.OptionQuote
	instruments  map[string]models.Instrument

	mu sync.RWMutex
}

// NewStaticSource creates an empty in-memory quote source.
func NewStaticSource() *StaticSource {
	return &StaticSource{
		quotes:       make(map[string]*models.Quote),
		optionQuotes: make(map[string]*models.OptionQuote),
		instruments:  make(map[string]models.Instrument),
	}
}

// SetQuote registers or replaces a quote for a symbol.
func (s *StaticSource) SetQuote(quote *models.Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[quote.Symbol] = quote
}

// SetOptionQuote registers or replaces an option quote for a contract.
func (s *StaticSource) SetOptionQuote(quote *models.OptionQuote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.optionQuotes[quote.Symbol] = quote
}

// SetInstrument registers an instrument for resolution.
func (s *StaticSource) SetInstrument(instrument models.Instrument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instruments[instrument.InstrumentSymbol()] = instrument
}

// GetQuote returns the registered quote for a symbol.
func (s *StaticSource) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if q, ok := s.quotes[symbol]; ok {
		return q, nil
	}
	if oq, ok := s.optionQuotes[symbol]; ok {
		q := oq.Quote
		return &q, nil
	}
	return nil, domainerrors.ErrSymbolNotFound
}

// GetOptionQuote returns the registered option quote for a contract.
func (s *StaticSource) GetOptionQuote(ctx context.Context, symbol string) (*models.OptionQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if oq, ok := s.optionQuotes[symbol]; ok {
		return oq, nil
	}
	return nil, domainerrors.ErrSymbolNotFound
}

// GetInstrument resolves a registered instrument.
func (s *StaticSource) GetInstrument(ctx context.Context, symbol string) (models.Instrument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if inst, ok := s.instruments[symbol]; ok {
		return inst, nil
	}
	return nil, domainerrors.ErrSymbolNotFound
}

var (
	_ Source             = (*StaticSource)(nil)
	_ InstrumentResolver = (*StaticSource)(nil)
)
