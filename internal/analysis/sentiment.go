// Package analysis scores market sentiment from a price series and turns it
// into a horizon-scaled prediction.
package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/guregu/null/v6"

	"stock-dashboard-backend/internal/indicator"
	"stock-dashboard-backend/internal/model"
)

var (
	ErrInsufficientData = errors.New("analysis: at least two samples are required")
	ErrInvalidSample    = errors.New("analysis: invalid sample")
)

// Assessment is the outcome of scoring a series.
type Assessment struct {
	Trend        model.Trend `json:"trend"`
	Strength     float64     `json:"strength"`
	Factors      []string    `json:"factors"`
	BullishScore float64     `json:"bullishScore"`
	BearishScore float64     `json:"bearishScore"`
}

// Signals are the latest values the scoring rules look at.
type Signals struct {
	Price       float64
	Momentum    float64
	VolumeTrend null.Float
	RSI         null.Float
	SMA20       null.Float
	SMA50       null.Float
	MACD        null.Float
	MACDSignal  null.Float
	BBUpper     null.Float
	BBLower     null.Float
}

// Validate checks that series can be scored.
func Validate(series []model.ChartPoint) error {
	if len(series) < 2 {
		return ErrInsufficientData
	}
	for i, p := range series {
		if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) || p.Price <= 0 {
			return fmt.Errorf("%w: price %v at index %d", ErrInvalidSample, p.Price, i)
		}
		if math.IsNaN(p.Volume) || math.IsInf(p.Volume, 0) || p.Volume < 0 {
			return fmt.Errorf("%w: volume %v at index %d", ErrInvalidSample, p.Volume, i)
		}
	}
	return nil
}

// ExtractSignals evaluates the indicators at the final index of series.
func ExtractSignals(series []model.ChartPoint) (Signals, error) {
	if err := Validate(series); err != nil {
		return Signals{}, err
	}
	prices := make([]float64, len(series))
	volumes := make([]float64, len(series))
	for i, p := range series {
		prices[i] = p.Price
		volumes[i] = p.Volume
	}

	first, last := prices[0], prices[len(prices)-1]
	bands := indicator.BollingerBands(prices, indicator.BollingerPeriod, indicator.BollingerMult)
	macd := indicator.MACD(prices, indicator.FastEMAPeriod, indicator.SlowEMAPeriod, indicator.SignalPeriod)

	return Signals{
		Price:       last,
		Momentum:    (last - first) / first * 100,
		VolumeTrend: VolumeTrend(volumes),
		RSI:         indicator.Last(indicator.RSI(prices, indicator.RSIPeriod)),
		SMA20:       indicator.Last(indicator.SMA(prices, indicator.ShortSMAPeriod)),
		SMA50:       indicator.Last(indicator.SMA(prices, indicator.LongSMAPeriod)),
		MACD:        indicator.Last(macd.Line),
		MACDSignal:  indicator.Last(macd.Signal),
		BBUpper:     indicator.Last(bands.Upper),
		BBLower:     indicator.Last(bands.Lower),
	}, nil
}

// VolumeTrend compares the mean of the last five volumes with the mean of the
// up to five volumes before them, in percent. A zero older mean yields ±Inf
// when recent volume moved and is undefined when both means are zero.
func VolumeTrend(volumes []float64) null.Float {
	n := len(volumes)
	recent := volumes[max(0, n-5):]
	older := volumes[max(0, n-10):max(0, n-5)]
	if len(recent) == 0 || len(older) == 0 {
		return null.Float{}
	}
	olderAvg := average(older)
	trend := (average(recent) - olderAvg) / olderAvg * 100
	if math.IsNaN(trend) {
		return null.Float{}
	}
	return null.FloatFrom(trend)
}

// AssessSentiment scores series with the weighted rule set.
func AssessSentiment(series []model.ChartPoint) (Assessment, error) {
	sig, err := ExtractSignals(series)
	if err != nil {
		return Assessment{}, err
	}
	return Score(sig), nil
}

type tally struct {
	bull, bear float64
	factors    []string
}

func (t *tally) bullish(points float64, factor string) {
	t.bull += points
	t.factors = append(t.factors, factor)
}

func (t *tally) bearish(points float64, factor string) {
	t.bear += points
	t.factors = append(t.factors, factor)
}

func (t *tally) split(points float64) {
	t.bull += points / 2
	t.bear += points / 2
}

// Score applies the rules in order. Comparisons against undefined values
// never match.
func Score(s Signals) Assessment {
	t := &tally{factors: []string{}}

	switch {
	case s.Momentum > 5:
		t.bullish(30, "Strong positive price momentum")
	case s.Momentum < -5:
		t.bearish(30, "Negative price momentum")
	default:
		t.split(30)
	}

	switch {
	case gt(s.RSI, 70):
		t.bearish(20, "Overbought conditions (RSI > 70)")
	case lt(s.RSI, 30):
		t.bullish(20, "Oversold conditions (RSI < 30)")
	case gt(s.RSI, 50):
		t.bullish(10, "RSI above neutral level")
	default:
		t.bearish(10, "RSI below neutral level")
	}

	switch {
	case s.SMA20.Valid && s.SMA50.Valid && s.Price > s.SMA20.Float64 && s.SMA20.Float64 > s.SMA50.Float64:
		t.bullish(20, "Price above moving averages with bullish alignment")
	case s.SMA20.Valid && s.SMA50.Valid && s.Price < s.SMA20.Float64 && s.SMA20.Float64 < s.SMA50.Float64:
		t.bearish(20, "Price below moving averages with bearish alignment")
	default:
		t.split(20)
	}

	switch {
	case s.MACD.Valid && s.MACDSignal.Valid && s.MACD.Float64 > s.MACDSignal.Float64 && s.MACD.Float64 > 0:
		t.bullish(15, "MACD above signal line and positive")
	case s.MACD.Valid && s.MACDSignal.Valid && s.MACD.Float64 < s.MACDSignal.Float64 && s.MACD.Float64 < 0:
		t.bearish(15, "MACD below signal line and negative")
	default:
		t.split(15)
	}

	switch {
	case gt(s.VolumeTrend, 20):
		t.bullish(10, "Increasing volume trend")
	case lt(s.VolumeTrend, -20):
		t.bearish(10, "Decreasing volume trend")
	default:
		t.split(10)
	}

	switch {
	case s.BBUpper.Valid && s.Price > s.BBUpper.Float64:
		t.bearish(5, "Price above upper Bollinger Band")
	case s.BBLower.Valid && s.Price < s.BBLower.Float64:
		t.bullish(5, "Price below lower Bollinger Band")
	default:
		t.split(5)
	}

	a := Assessment{
		Trend:        model.TrendNeutral,
		Strength:     50,
		Factors:      t.factors,
		BullishScore: t.bull,
		BearishScore: t.bear,
	}
	switch {
	case t.bull > t.bear+20:
		a.Trend = model.TrendBullish
		a.Strength = math.Min(95, 60+(t.bull-t.bear))
	case t.bear > t.bull+20:
		a.Trend = model.TrendBearish
		a.Strength = math.Min(95, 60+(t.bear-t.bull))
	}
	return a
}

func gt(v null.Float, x float64) bool { return v.Valid && v.Float64 > x }
func lt(v null.Float, x float64) bool { return v.Valid && v.Float64 < x }

func average(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
