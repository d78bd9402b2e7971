package stockdata

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"stock-dashboard-backend/internal/model"
)

const (
	DefaultChartDays = 30
	MaxChartDays     = 365
)

var ErrInvalidDays = errors.New("days out of range")

// MarketOptions tunes a Market.
type MarketOptions struct {
	// ChartTTL is how long a generated chart stays stable for a symbol.
	ChartTTL time.Duration
	// LookupDelay simulates a remote lookup for symbols outside the board.
	LookupDelay time.Duration
}

// Market is the live quote board plus per-symbol chart and lookup caches.
type Market struct {
	gen   *Generator
	cache CacheProvider
	opts  MarketOptions

	mu     sync.RWMutex
	stocks []model.Stock
	index  map[string]int
}

// NewMarket seeds the board with one quote per catalog entry.
func NewMarket(gen *Generator, cache CacheProvider, opts MarketOptions) *Market {
	m := &Market{gen: gen, cache: cache, opts: opts, index: make(map[string]int)}
	for i, e := range catalog {
		m.stocks = append(m.stocks, gen.BoardQuote(e))
		m.index[e.Symbol] = i
	}
	return m
}

// Stocks returns a snapshot of the board.
func (m *Market) Stocks() []model.Stock {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Stock(nil), m.stocks...)
}

// Search filters the board by keyword.
func (m *Market) Search(keyword string) []model.Stock {
	return Search(m.Stocks(), keyword)
}

// BoardQuote returns the live quote of a board symbol.
func (m *Market) BoardQuote(symbol string) (model.Stock, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.index[symbol]
	if !ok {
		return model.Stock{}, false
	}
	return m.stocks[i], true
}

// Price returns the live price of a board symbol.
func (m *Market) Price(symbol string) (float64, bool) {
	s, ok := m.BoardQuote(symbol)
	return s.Price, ok
}

// Quote returns the board quote for symbol, or looks up a generated quote
// for any other symbol after the configured delay.
func (m *Market) Quote(ctx context.Context, symbol string) (model.Stock, error) {
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return model.Stock{}, err
	}
	if s, ok := m.BoardQuote(symbol); ok {
		return s, nil
	}

	key := "quote:" + symbol
	var cached model.Stock
	if err := m.cache.Get(key, &cached); err == nil {
		return cached, nil
	}

	if m.opts.LookupDelay > 0 {
		timer := time.NewTimer(m.opts.LookupDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return model.Stock{}, ctx.Err()
		case <-timer.C:
		}
	}

	s := m.gen.LookupQuote(Describe(symbol))
	if err := m.cache.Set(key, s, m.opts.ChartTTL); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("cache quote failed")
	}
	return s, nil
}

// Chart returns the series for symbol over days. The same series is served
// until the cache entry expires.
func (m *Market) Chart(symbol string, days int) ([]model.ChartPoint, error) {
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if days < 1 || days > MaxChartDays {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDays, days)
	}

	key := fmt.Sprintf("chart:%s:%d", symbol, days)
	var cached []model.ChartPoint
	if err := m.cache.Get(key, &cached); err == nil && len(cached) == days {
		return cached, nil
	}

	series := m.gen.Chart(days)
	if err := m.cache.Set(key, series, m.opts.ChartTTL); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("cache chart failed")
	}
	return series, nil
}

// Refresh applies one tick to every board quote and returns the new board.
func (m *Market) Refresh() []model.Stock {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.stocks {
		m.stocks[i] = m.gen.Tick(s)
	}
	return append([]model.Stock(nil), m.stocks...)
}
