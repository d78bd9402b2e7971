package stockdata

import (
	"errors"
	"fmt"
	"strings"

	"stock-dashboard-backend/internal/model"
)

var ErrInvalidSymbol = errors.New("invalid symbol")

// CatalogEntry names a stock on the dashboard board.
type CatalogEntry struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Sector string `json:"sector"`
}

var catalog = []CatalogEntry{
	{Symbol: "AAPL", Name: "Apple Inc.", Sector: "Technology"},
	{Symbol: "MSFT", Name: "Microsoft Corporation", Sector: "Technology"},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", Sector: "Technology"},
	{Symbol: "AMZN", Name: "Amazon.com Inc.", Sector: "Consumer Discretionary"},
	{Symbol: "TSLA", Name: "Tesla Inc.", Sector: "Consumer Discretionary"},
	{Symbol: "NVDA", Name: "NVIDIA Corporation", Sector: "Technology"},
	{Symbol: "META", Name: "Meta Platforms Inc.", Sector: "Technology"},
	{Symbol: "NFLX", Name: "Netflix Inc.", Sector: "Communication Services"},
	{Symbol: "JPM", Name: "JPMorgan Chase & Co.", Sector: "Financial Services"},
	{Symbol: "JNJ", Name: "Johnson & Johnson", Sector: "Healthcare"},
}

// Catalog returns the board symbols in display order.
func Catalog() []CatalogEntry {
	return append([]CatalogEntry(nil), catalog...)
}

// NormalizeSymbol upper-cases and validates a ticker.
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" || len(s) > 10 {
		return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '.' && r != '-' {
			return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
		}
	}
	return s, nil
}

// Describe returns the catalog entry for symbol, or a generic one for
// symbols outside the board.
func Describe(symbol string) CatalogEntry {
	for _, e := range catalog {
		if e.Symbol == symbol {
			return e
		}
	}
	return CatalogEntry{Symbol: symbol, Name: symbol + " Corporation", Sector: "General"}
}

// Search keeps stocks whose symbol, name or sector contains keyword,
// ignoring case. An empty keyword keeps everything.
func Search(stocks []model.Stock, keyword string) []model.Stock {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return stocks
	}
	out := make([]model.Stock, 0, len(stocks))
	for _, s := range stocks {
		if strings.Contains(strings.ToLower(s.Symbol), keyword) ||
			strings.Contains(strings.ToLower(s.Name), keyword) ||
			strings.Contains(strings.ToLower(s.Sector), keyword) {
			out = append(out, s)
		}
	}
	return out
}
