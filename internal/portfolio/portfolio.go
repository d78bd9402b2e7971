// Package portfolio values holdings at live prices.
package portfolio

import (
	"github.com/shopspring/decimal"

	"stock-dashboard-backend/internal/model"
)

// Holding is a position as entered by the user.
type Holding struct {
	Symbol       string  `yaml:"symbol" json:"symbol"`
	Shares       float64 `yaml:"shares" json:"shares"`
	AveragePrice float64 `yaml:"average_price" json:"averagePrice"`
}

// Definition is a named list of holdings.
type Definition struct {
	ID       string    `yaml:"id" json:"id"`
	Name     string    `yaml:"name" json:"name"`
	Holdings []Holding `yaml:"holdings" json:"holdings"`
}

// Default is the starter portfolio shown to new users.
func Default() Definition {
	return Definition{
		ID:   "1",
		Name: "My Portfolio",
		Holdings: []Holding{
			{Symbol: "AAPL", Shares: 100, AveragePrice: 150},
			{Symbol: "MSFT", Shares: 50, AveragePrice: 280},
			{Symbol: "GOOGL", Shares: 25, AveragePrice: 2100},
		},
	}
}

// PriceFunc returns the live price of symbol.
type PriceFunc func(symbol string) (float64, bool)

var hundred = decimal.NewFromInt(100)

// Value prices every holding. Holdings without a live price are valued at
// their average price. Money is rounded to cents, percentages to 2 places.
func Value(def Definition, price PriceFunc) model.Portfolio {
	out := model.Portfolio{ID: def.ID, Name: def.Name, Positions: make([]model.Position, 0, len(def.Holdings))}
	totalValue, totalCost := decimal.Zero, decimal.Zero

	for _, h := range def.Holdings {
		shares := decimal.NewFromFloat(h.Shares)
		avg := decimal.NewFromFloat(h.AveragePrice)
		current := avg
		if p, ok := price(h.Symbol); ok {
			current = decimal.NewFromFloat(p)
		}

		// totals add the cent-rounded amounts so they match the positions
		value := shares.Mul(current).Round(2)
		cost := shares.Mul(avg).Round(2)
		change := value.Sub(cost)

		out.Positions = append(out.Positions, model.Position{
			Symbol:        h.Symbol,
			Shares:        h.Shares,
			AveragePrice:  h.AveragePrice,
			CurrentPrice:  current.Round(2).InexactFloat64(),
			TotalValue:    value.InexactFloat64(),
			Change:        change.InexactFloat64(),
			ChangePercent: percent(change, cost),
		})
		totalValue = totalValue.Add(value)
		totalCost = totalCost.Add(cost)
	}

	totalChange := totalValue.Sub(totalCost)
	out.TotalValue = totalValue.Round(2).InexactFloat64()
	out.TotalChange = totalChange.Round(2).InexactFloat64()
	out.TotalChangePercent = percent(totalChange, totalCost)
	return out
}

func percent(change, cost decimal.Decimal) float64 {
	if cost.IsZero() {
		return 0
	}
	return change.Div(cost).Mul(hundred).Round(2).InexactFloat64()
}
