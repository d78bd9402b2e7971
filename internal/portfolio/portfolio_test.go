package portfolio

import (
	"testing"

	"github.com/shopspring/decimal"
)

func prices(m map[string]float64) PriceFunc {
	return func(symbol string) (float64, bool) {
		p, ok := m[symbol]
		return p, ok
	}
}

func TestValue(t *testing.T) {
	p := Value(Default(), prices(map[string]float64{"AAPL": 175.5, "MSFT": 300, "GOOGL": 2000}))

	if p.Name != "My Portfolio" || len(p.Positions) != 3 {
		t.Fatalf("unexpected portfolio: %+v", p)
	}
	tests := []struct {
		symbol  string
		value   float64
		change  float64
		percent float64
	}{
		{"AAPL", 17550, 2550, 17},
		{"MSFT", 15000, 1000, 7.14},
		{"GOOGL", 50000, -2500, -4.76},
	}
	for i, tt := range tests {
		pos := p.Positions[i]
		if pos.Symbol != tt.symbol || pos.TotalValue != tt.value || pos.Change != tt.change || pos.ChangePercent != tt.percent {
			t.Errorf("%s: got %+v", tt.symbol, pos)
		}
	}
	if p.TotalValue != 82550 || p.TotalChange != 1050 {
		t.Errorf("totals: value %v change %v", p.TotalValue, p.TotalChange)
	}
	// 1050 / 81500
	if p.TotalChangePercent != 1.29 {
		t.Errorf("total percent: got %v", p.TotalChangePercent)
	}
}

func TestValue_MissingPriceUsesCost(t *testing.T) {
	p := Value(Default(), prices(nil))
	if p.TotalChange != 0 || p.TotalChangePercent != 0 {
		t.Errorf("expected no change, got %+v", p)
	}
	if p.TotalValue != 15000+14000+52500 {
		t.Errorf("total value: got %v", p.TotalValue)
	}
}

func TestValue_Empty(t *testing.T) {
	p := Value(Definition{Name: "Empty"}, prices(nil))
	if p.TotalValue != 0 || p.TotalChangePercent != 0 || len(p.Positions) != 0 {
		t.Errorf("unexpected: %+v", p)
	}
}

func TestValue_CentRounding(t *testing.T) {
	def := Definition{Holdings: []Holding{{Symbol: "X", Shares: 3, AveragePrice: 0.1}}}
	p := Value(def, prices(map[string]float64{"X": 0.1}))
	if p.Positions[0].TotalValue != 0.3 {
		t.Errorf("expected exact 0.3, got %v", p.Positions[0].TotalValue)
	}
}

func TestValueTotalsMatchRoundedPositions(t *testing.T) {
	def := Definition{Name: "Odd cents", Holdings: []Holding{
		{Symbol: "AAA", Shares: 1, AveragePrice: 9.996},
		{Symbol: "BBB", Shares: 1, AveragePrice: 9.996},
		{Symbol: "CCC", Shares: 3, AveragePrice: 1.0049},
	}}
	p := Value(def, prices(map[string]float64{"AAA": 10.004, "BBB": 10.004, "CCC": 1.3337}))

	var sumValue, sumChange decimal.Decimal
	for _, pos := range p.Positions {
		sumValue = sumValue.Add(decimal.NewFromFloat(pos.TotalValue))
		sumChange = sumChange.Add(decimal.NewFromFloat(pos.Change))
	}
	if got := decimal.NewFromFloat(p.TotalValue); !got.Equal(sumValue) {
		t.Errorf("total value %v, sum of positions %v", got, sumValue)
	}
	if got := decimal.NewFromFloat(p.TotalChange); !got.Equal(sumChange) {
		t.Errorf("total change %v, sum of positions %v", got, sumChange)
	}
	if p.Positions[0].TotalValue != 10 || p.TotalValue != 24 {
		t.Errorf("value: position %v total %v", p.Positions[0].TotalValue, p.TotalValue)
	}
}
