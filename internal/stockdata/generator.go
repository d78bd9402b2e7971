package stockdata

import (
	"math"
	"time"

	"stock-dashboard-backend/internal/model"
)

const (
	dayMillis     = int64(24 * time.Hour / time.Millisecond)
	minChartPrice = 10.0
	minTickPrice  = 1.0
)

// Rand yields uniform values in [0, 1).
type Rand interface {
	Float64() float64
}

// Generator produces mock quotes and chart series.
type Generator struct {
	rand Rand
	now  func() time.Time
}

// NewGenerator builds a Generator. A nil now uses time.Now.
func NewGenerator(r Rand, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{rand: r, now: now}
}

// BoardQuote creates the initial quote for a board stock.
func (g *Generator) BoardQuote(e CatalogEntry) model.Stock {
	return g.quote(e, 100+g.rand.Float64()*400, (g.rand.Float64()-0.5)*10)
}

// LookupQuote creates a quote for an arbitrary searched symbol.
func (g *Generator) LookupQuote(e CatalogEntry) model.Stock {
	return g.quote(e, 50+g.rand.Float64()*300, (g.rand.Float64()-0.5)*20)
}

func (g *Generator) quote(e CatalogEntry, base, change float64) model.Stock {
	return model.Stock{
		Symbol:        e.Symbol,
		Name:          e.Name,
		Sector:        e.Sector,
		Price:         base + change,
		Change:        change,
		ChangePercent: change / base * 100,
		Volume:        int64(math.Floor(g.rand.Float64()*10_000_000)) + 1_000_000,
		MarketCap:     math.Floor(g.rand.Float64()*2_000_000_000_000) + 100_000_000_000,
		High52w:       base * (1 + g.rand.Float64()*0.3),
		Low52w:        base * (1 - g.rand.Float64()*0.3),
		PE:            g.rand.Float64()*30 + 10,
		Dividend:      g.rand.Float64() * 5,
	}
}

// Chart generates a daily random-walk series ending yesterday. Prices never
// fall below 10.
func (g *Generator) Chart(days int) []model.ChartPoint {
	if days <= 0 {
		return nil
	}
	now := g.now().UnixMilli()
	price := 100 + g.rand.Float64()*200
	out := make([]model.ChartPoint, 0, days)
	for i := 0; i < days; i++ {
		price += (g.rand.Float64() - 0.5) * 10
		out = append(out, model.ChartPoint{
			Timestamp: now - int64(days-i)*dayMillis,
			Price:     math.Max(price, minChartPrice),
			Volume:    math.Floor(g.rand.Float64()*5_000_000) + 500_000,
		})
	}
	return out
}

// Tick moves a quote by up to one unit, never below 1.
func (g *Generator) Tick(s model.Stock) model.Stock {
	newPrice := math.Max(s.Price+(g.rand.Float64()-0.5)*2, minTickPrice)
	change := newPrice - s.Price
	if s.Price != 0 {
		s.ChangePercent = change / s.Price * 100
	}
	s.Change = change
	s.Price = newPrice
	s.Volume += int64(math.Floor((g.rand.Float64() - 0.5) * 100_000))
	if s.Volume < 0 {
		s.Volume = 0
	}
	return s
}
