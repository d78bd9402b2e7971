package indicator

import (
	"math"
	"testing"
)

func assertClose(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s: got %.10f, want %.10f", name, got, want)
	}
}

func ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestSMA(t *testing.T) {
	got := SMA([]float64{1, 2, 3, 4, 5}, 3)
	if len(got) != 5 {
		t.Fatalf("expected 5 values, got %d", len(got))
	}
	for i := 0; i < 2; i++ {
		if got[i].Valid {
			t.Errorf("index %d: expected warm-up to be undefined, got %v", i, got[i].Float64)
		}
	}
	for i, want := range map[int]float64{2: 2, 3: 3, 4: 4} {
		if !got[i].Valid {
			t.Fatalf("index %d: expected defined value", i)
		}
		assertClose(t, "sma", got[i].Float64, want)
	}
}

func TestSMA_PeriodLongerThanSeries(t *testing.T) {
	got := SMA(ramp(10, 100, 1), 20)
	for i, v := range got {
		if v.Valid {
			t.Errorf("index %d: expected undefined, got %v", i, v.Float64)
		}
	}
}

func TestSMA_InvalidPeriod(t *testing.T) {
	for _, period := range []int{0, -3} {
		got := SMA([]float64{1, 2, 3}, period)
		if len(got) != 3 {
			t.Fatalf("period %d: expected aligned output, got %d values", period, len(got))
		}
		for _, v := range got {
			if v.Valid {
				t.Errorf("period %d: expected undefined output", period)
			}
		}
	}
}

func TestEMA_SeededWithFirstPrice(t *testing.T) {
	for _, period := range []int{1, 3, 12, 26, 100} {
		got := EMA([]float64{42, 50, 61}, period)
		if !got[0].Valid || got[0].Float64 != 42 {
			t.Errorf("period %d: expected EMA[0]=42, got %+v", period, got[0])
		}
	}

	got := EMA([]float64{10, 20, 30}, 3)
	assertClose(t, "ema[1]", got[1].Float64, 15)
	assertClose(t, "ema[2]", got[2].Float64, 22.5)
}

func TestEMA_Empty(t *testing.T) {
	if got := EMA(nil, 12); len(got) != 0 {
		t.Errorf("expected empty output, got %d values", len(got))
	}
}

func TestBollingerBands(t *testing.T) {
	prices := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	b := BollingerBands(prices, 8, 2)
	last := len(prices) - 1
	assertClose(t, "middle", b.Middle[last].Float64, 5)
	// population stddev of the window is exactly 2
	assertClose(t, "upper", b.Upper[last].Float64, 9)
	assertClose(t, "lower", b.Lower[last].Float64, 1)
	for i := 0; i < last; i++ {
		if b.Upper[i].Valid || b.Lower[i].Valid || b.Middle[i].Valid {
			t.Errorf("index %d: expected warm-up to be undefined", i)
		}
	}
}

func TestBollingerBands_FlatSeriesCollapses(t *testing.T) {
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 50
	}
	b := BollingerBands(prices, 20, 2)
	for i := 19; i < 30; i++ {
		if b.Upper[i].Float64 != 50 || b.Lower[i].Float64 != 50 || b.Middle[i].Float64 != 50 {
			t.Errorf("index %d: expected collapsed bands at 50, got %v/%v/%v",
				i, b.Upper[i].Float64, b.Middle[i].Float64, b.Lower[i].Float64)
		}
	}
}

func TestRSI_WarmUp(t *testing.T) {
	got := RSI(ramp(20, 100, 1), 14)
	if len(got) != 20 {
		t.Fatalf("expected 20 values, got %d", len(got))
	}
	for i := 0; i < 14; i++ {
		if got[i].Valid {
			t.Errorf("index %d: expected undefined", i)
		}
	}
}

func TestRSI_Saturation(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		want   float64
	}{
		{"strictly rising", ramp(20, 100, 1), 100},
		{"strictly falling", ramp(20, 100, -1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RSI(tt.prices, 14)
			for i := 14; i < len(got); i++ {
				if !got[i].Valid || got[i].Float64 != tt.want {
					t.Errorf("index %d: expected %v, got %+v", i, tt.want, got[i])
				}
			}
		})
	}
}

func TestRSI_FlatWindowUndefined(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 10
	}
	for i, v := range RSI(prices, 14) {
		if v.Valid {
			t.Errorf("index %d: expected undefined for flat window, got %v", i, v.Float64)
		}
	}
}

func TestRSI_Bounded(t *testing.T) {
	prices := []float64{
		44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42, 45.84, 46.08,
		45.89, 46.03, 45.61, 46.28, 46.28, 46.00, 46.03, 46.41, 46.22, 45.64,
	}
	got := RSI(prices, 14)
	for i := 14; i < len(got); i++ {
		if !got[i].Valid {
			t.Fatalf("index %d: expected defined value", i)
		}
		if got[i].Float64 < 0 || got[i].Float64 > 100 {
			t.Errorf("index %d: RSI %v outside [0,100]", i, got[i].Float64)
		}
	}
	// first window: gains 3.24, losses 1.10 over the first 14 steps
	gains, losses := 0.0, 0.0
	for i := 1; i <= 14; i++ {
		d := prices[i] - prices[i-1]
		if d > 0 {
			gains += d
		} else {
			losses -= d
		}
	}
	want := 100 - 100/(1+gains/losses)
	assertClose(t, "rsi[14]", got[14].Float64, want)
}

func TestMACD_HistogramIdentity(t *testing.T) {
	prices := []float64{}
	for i := 0; i < 60; i++ {
		prices = append(prices, 100+10*math.Sin(float64(i)/5))
	}
	m := MACD(prices, 12, 26, 9)
	if len(m.Line) != 60 || len(m.Signal) != 60 || len(m.Histogram) != 60 {
		t.Fatalf("expected aligned outputs")
	}
	for i := range prices {
		if !m.Line[i].Valid || !m.Signal[i].Valid || !m.Histogram[i].Valid {
			t.Fatalf("index %d: expected defined values", i)
		}
		assertClose(t, "histogram", m.Histogram[i].Float64, m.Line[i].Float64-m.Signal[i].Float64)
	}
	// both EMAs are seeded with prices[0]
	if m.Line[0].Float64 != 0 || m.Signal[0].Float64 != 0 {
		t.Errorf("expected zero MACD and signal at index 0, got %v/%v", m.Line[0].Float64, m.Signal[0].Float64)
	}
}

func TestMACD_SignalIsEMAOfLine(t *testing.T) {
	prices := ramp(40, 100, 0.5)
	m := MACD(prices, 12, 26, 9)
	want := EMA(m.Line.Values(), 9)
	for i := range prices {
		assertClose(t, "signal", m.Signal[i].Float64, want[i].Float64)
	}
}

func TestCompute_Aligned(t *testing.T) {
	prices := ramp(30, 100, 1)
	o := Compute(prices)
	for name, s := range map[string]Series{
		"sma20": o.SMA20, "sma50": o.SMA50, "ema12": o.EMA12, "ema26": o.EMA26,
		"bbUpper": o.Bollinger.Upper, "rsi": o.RSI14, "macd": o.MACD.Line, "hist": o.MACD.Histogram,
	} {
		if len(s) != len(prices) {
			t.Errorf("%s: expected %d values, got %d", name, len(prices), len(s))
		}
	}
	if Last(o.SMA50).Valid {
		t.Errorf("expected sma50 undefined for 30 samples")
	}
	if !Last(o.SMA20).Valid {
		t.Errorf("expected sma20 defined for 30 samples")
	}
	if Last(nil).Valid {
		t.Errorf("expected Last of empty series to be undefined")
	}
}

func TestDeterministic(t *testing.T) {
	prices := ramp(50, 10, 0.3)
	a, b := Compute(prices), Compute(prices)
	for i := range prices {
		if a.RSI14[i] != b.RSI14[i] || a.MACD.Signal[i] != b.MACD.Signal[i] {
			t.Fatalf("index %d: expected identical outputs", i)
		}
	}
}
