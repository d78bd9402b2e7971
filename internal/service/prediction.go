package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"stock-dashboard-backend/internal/analysis"
	"stock-dashboard-backend/internal/history"
	"stock-dashboard-backend/internal/indicator"
	"stock-dashboard-backend/internal/metrics"
	"stock-dashboard-backend/internal/model"
	"stock-dashboard-backend/internal/stockdata"
)

// DefaultHorizon is used when a request names no timeframe.
const DefaultHorizon = model.Horizon1W

// PredictionService ties the chart source, the generator and the history
// store together.
type PredictionService struct {
	market   *stockdata.Market
	gen      *analysis.Generator
	recorder history.Recorder
	metrics  *metrics.Metrics
	delay    time.Duration
}

// NewPredictionService builds the service. delay simulates analysis time
// for each prediction.
func NewPredictionService(market *stockdata.Market, gen *analysis.Generator, rec history.Recorder, m *metrics.Metrics, delay time.Duration) *PredictionService {
	if rec == nil {
		rec = history.NewNoopRecorder()
	}
	return &PredictionService{market: market, gen: gen, recorder: rec, metrics: m, delay: delay}
}

// ParseHorizon validates h, defaulting an empty value.
func ParseHorizon(h model.Horizon) (model.Horizon, error) {
	if h == "" {
		return DefaultHorizon, nil
	}
	if _, err := analysis.Multiplier(h); err != nil {
		return "", err
	}
	return h, nil
}

// Predict generates and records a prediction for symbol over the default
// chart window.
func (s *PredictionService) Predict(ctx context.Context, symbol string, horizon model.Horizon) (model.Prediction, error) {
	symbol, err := stockdata.NormalizeSymbol(symbol)
	if err != nil {
		return model.Prediction{}, err
	}
	horizon, err = ParseHorizon(horizon)
	if err != nil {
		return model.Prediction{}, err
	}

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return model.Prediction{}, ctx.Err()
		case <-timer.C:
		}
	}

	series, err := s.market.Chart(symbol, stockdata.DefaultChartDays)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("load chart %s: %w", symbol, err)
	}

	p := s.gen.Generate(symbol, horizon, series)
	if s.metrics != nil {
		s.metrics.ObservePrediction(p)
	}
	if err := s.recorder.RecordPrediction(ctx, p); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("record prediction failed")
	}
	log.Debug().
		Str("symbol", symbol).
		Str("horizon", string(horizon)).
		Str("trend", string(p.Trend)).
		Float64("prediction", p.Value).
		Int("confidence", p.Confidence).
		Bool("fallback", p.Fallback).
		Msg("prediction generated")
	return p, nil
}

// History returns recent predictions for symbol.
func (s *PredictionService) History(ctx context.Context, symbol string, limit int) ([]model.Prediction, error) {
	symbol, err := stockdata.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	return s.recorder.Recent(ctx, symbol, limit)
}

// Indicators returns the chart for symbol with every overlay aligned to it.
func (s *PredictionService) Indicators(symbol string, days int) (model.IndicatorResponse, error) {
	series, err := s.market.Chart(symbol, days)
	if err != nil {
		return model.IndicatorResponse{}, err
	}
	prices := make([]float64, len(series))
	for i, p := range series {
		prices[i] = p.Price
	}

	start := time.Now()
	o := indicator.Compute(prices)
	if s.metrics != nil {
		s.metrics.IndicatorDuration.Observe(time.Since(start).Seconds())
	}

	points := make([]model.IndicatorPoint, len(series))
	for i, p := range series {
		points[i] = model.IndicatorPoint{
			ChartPoint: p,
			SMA20:      o.SMA20[i],
			SMA50:      o.SMA50[i],
			EMA12:      o.EMA12[i],
			EMA26:      o.EMA26[i],
			BBUpper:    o.Bollinger.Upper[i],
			BBMiddle:   o.Bollinger.Middle[i],
			BBLower:    o.Bollinger.Lower[i],
			RSI:        o.RSI14[i],
			MACD:       o.MACD.Line[i],
			MACDSignal: o.MACD.Signal[i],
			Histogram:  o.MACD.Histogram[i],
		}
	}
	normalized, _ := stockdata.NormalizeSymbol(symbol)
	return model.IndicatorResponse{Symbol: normalized, Days: days, Data: points}, nil
}
