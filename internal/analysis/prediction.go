package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"stock-dashboard-backend/internal/model"
)

var ErrUnknownHorizon = errors.New("analysis: unknown horizon")

var horizonMultipliers = map[model.Horizon]float64{
	model.Horizon1D: 0.5,
	model.Horizon1W: 2,
	model.Horizon1M: 8,
	model.Horizon3M: 20,
}

var fallbackFactors = []string{
	"Technical analysis indicates support levels",
	"Market sentiment trending positive",
	"Volume analysis shows institutional interest",
	"Economic indicators support growth",
	"Sector rotation favoring this stock",
}

var fallbackTrends = []model.Trend{model.TrendBullish, model.TrendBearish, model.TrendNeutral}

const maxFactors = 5

// Multiplier returns the scaling factor for h.
func Multiplier(h model.Horizon) (float64, error) {
	m, ok := horizonMultipliers[h]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownHorizon, h)
	}
	return m, nil
}

// Rand yields uniform values in [0, 1).
type Rand interface {
	Float64() float64
}

// LockedRand makes a *rand.Rand safe for concurrent use.
type LockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewLockedRand seeds a PCG source. A zero seed uses a random one.
func NewLockedRand(seed uint64) *LockedRand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &LockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Float64 returns a uniform value in [0, 1).
func (l *LockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// Generator produces prediction records.
type Generator struct {
	rand Rand
	now  func() time.Time
	id   func() string
}

// NewGenerator builds a Generator. A nil now uses time.Now.
func NewGenerator(r Rand, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{rand: r, now: now, id: uuid.NewString}
}

// Generate predicts the move of symbol over horizon. It never fails: any
// error while scoring produces a record flagged as Fallback.
func (g *Generator) Generate(symbol string, horizon model.Horizon, series []model.ChartPoint) (p model.Prediction) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("symbol", symbol).Msg("prediction panicked, using fallback")
			p = g.Fallback(symbol, horizon)
		}
	}()

	p, err := g.predict(symbol, horizon, series)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Str("horizon", string(horizon)).Msg("prediction failed, using fallback")
		return g.Fallback(symbol, horizon)
	}
	return p
}

func (g *Generator) predict(symbol string, horizon model.Horizon, series []model.ChartPoint) (model.Prediction, error) {
	mult, err := Multiplier(horizon)
	if err != nil {
		return model.Prediction{}, err
	}
	assessment, err := AssessSentiment(series)
	if err != nil {
		return model.Prediction{}, err
	}

	base := (assessment.Strength - 50) * 0.02 * mult
	switch assessment.Trend {
	case model.TrendBearish:
		base = -base
	case model.TrendNeutral:
		base = 0
	}

	prices := make([]float64, len(series))
	for i, pt := range series {
		prices[i] = pt.Price
	}
	vol := Volatility(prices)

	value := base + (g.rand.Float64()-0.5)*vol*0.1
	limit := mult * 15
	value = math.Max(-limit, math.Min(limit, value))

	confidence := assessment.Strength + (g.rand.Float64()*10 - 5)
	confidence = math.Max(60, math.Min(95, confidence))

	factors := assessment.Factors
	if len(factors) > maxFactors {
		factors = factors[:maxFactors]
	}

	return model.Prediction{
		ID:          g.id(),
		Symbol:      symbol,
		Value:       value,
		Confidence:  int(math.Round(confidence)),
		Timeframe:   horizon,
		Factors:     append([]string(nil), factors...),
		Trend:       assessment.Trend,
		LastUpdated: g.now(),
	}, nil
}

// Fallback builds a randomized record used when scoring is impossible.
func (g *Generator) Fallback(symbol string, horizon model.Horizon) model.Prediction {
	value := (g.rand.Float64() - 0.5) * 10
	confidence := int(math.Floor(g.rand.Float64()*30)) + 65
	idx := int(math.Floor(g.rand.Float64() * float64(len(fallbackTrends))))
	if idx >= len(fallbackTrends) {
		idx = len(fallbackTrends) - 1
	}
	return model.Prediction{
		ID:          g.id(),
		Symbol:      symbol,
		Value:       value,
		Confidence:  confidence,
		Timeframe:   horizon,
		Factors:     append([]string(nil), fallbackFactors[:3]...),
		Trend:       fallbackTrends[idx],
		LastUpdated: g.now(),
		Fallback:    true,
	}
}
