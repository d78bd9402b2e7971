// Package indicator computes technical indicator series aligned to a price
// series. Every output has the input's length; positions without enough
// history hold an invalid null.Float.
package indicator

import (
	"math"

	"github.com/guregu/null/v6"
)

// Series is an indicator output aligned 1:1 with its input prices.
type Series []null.Float

// Bands holds Bollinger upper, middle and lower series.
type Bands struct {
	Upper  Series
	Middle Series
	Lower  Series
}

// MACDResult holds the MACD line, its signal line and the histogram.
type MACDResult struct {
	Line      Series
	Signal    Series
	Histogram Series
}

// Values converts defined positions back to float64, with NaN at undefined ones.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		if v.Valid {
			out[i] = v.Float64
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// Last returns the final value of s, invalid when s is empty.
func Last(s Series) null.Float {
	if len(s) == 0 {
		return null.Float{}
	}
	return s[len(s)-1]
}

func undefined(n int) Series {
	return make(Series, n)
}

// value maps NaN and infinities to an undefined entry.
func value(x float64) null.Float {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return null.Float{}
	}
	return null.FloatFrom(x)
}

// SMA is the trailing simple moving average over period samples.
func SMA(prices []float64, period int) Series {
	out := undefined(len(prices))
	if period < 1 {
		return out
	}
	for i := period - 1; i < len(prices); i++ {
		out[i] = value(mean(prices[i-period+1 : i+1]))
	}
	return out
}

// EMA is the exponential moving average seeded with the first price, so
// index 0 is always defined.
func EMA(prices []float64, period int) Series {
	out := undefined(len(prices))
	if period < 1 || len(prices) == 0 {
		return out
	}
	vals := ema(prices, period)
	for i, v := range vals {
		out[i] = value(v)
	}
	return out
}

func ema(prices []float64, period int) []float64 {
	out := make([]float64, len(prices))
	if len(prices) == 0 {
		return out
	}
	k := 2 / float64(period+1)
	out[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		out[i] = prices[i]*k + out[i-1]*(1-k)
	}
	return out
}

// BollingerBands returns SMA(period) ± mult population standard deviations.
func BollingerBands(prices []float64, period int, mult float64) Bands {
	n := len(prices)
	b := Bands{Upper: undefined(n), Middle: SMA(prices, period), Lower: undefined(n)}
	if period < 1 {
		return b
	}
	for i := period - 1; i < n; i++ {
		if !b.Middle[i].Valid {
			continue
		}
		mean := b.Middle[i].Float64
		variance := 0.0
		for _, p := range prices[i-period+1 : i+1] {
			d := p - mean
			variance += d * d
		}
		std := math.Sqrt(variance / float64(period))
		b.Upper[i] = value(mean + mult*std)
		b.Lower[i] = value(mean - mult*std)
	}
	return b
}

// RSI averages the last period gains and losses with a simple mean.
// A window with no losses saturates at 100; a perfectly flat window is
// undefined.
func RSI(prices []float64, period int) Series {
	n := len(prices)
	out := undefined(n)
	if period < 1 || n < 2 {
		return out
	}
	gains := make([]float64, n-1)
	losses := make([]float64, n-1)
	for i := 1; i < n; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains[i-1] = change
		} else {
			losses[i-1] = -change
		}
	}
	for i := period; i < n; i++ {
		avgGain := mean(gains[i-period : i])
		avgLoss := mean(losses[i-period : i])
		rs := avgGain / avgLoss
		out[i] = value(100 - 100/(1+rs))
	}
	return out
}

// MACD is EMA(fast) - EMA(slow), with the signal line computed over the
// defined MACD values and re-aligned by position.
func MACD(prices []float64, fast, slow, signal int) MACDResult {
	n := len(prices)
	res := MACDResult{Line: undefined(n), Signal: undefined(n), Histogram: undefined(n)}
	fastEMA := EMA(prices, fast)
	slowEMA := EMA(prices, slow)

	defined := make([]float64, 0, n)
	positions := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if !fastEMA[i].Valid || !slowEMA[i].Valid {
			continue
		}
		res.Line[i] = value(fastEMA[i].Float64 - slowEMA[i].Float64)
		if res.Line[i].Valid {
			defined = append(defined, res.Line[i].Float64)
			positions = append(positions, i)
		}
	}

	sig := EMA(defined, signal)
	for j, i := range positions {
		res.Signal[i] = sig[j]
		if sig[j].Valid {
			res.Histogram[i] = value(res.Line[i].Float64 - sig[j].Float64)
		}
	}
	return res
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
