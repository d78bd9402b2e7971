package model

import "time"

// Trend is the sentiment label attached to a prediction.
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendNeutral Trend = "neutral"
)

// Horizon is the prediction timeframe.
type Horizon string

const (
	Horizon1D Horizon = "1d"
	Horizon1W Horizon = "1w"
	Horizon1M Horizon = "1m"
	Horizon3M Horizon = "3m"
)

// PredictRequest is the body of POST /api/predict.
type PredictRequest struct {
	Symbol    string  `json:"symbol" binding:"required"`
	Timeframe Horizon `json:"timeframe"`
}

// Prediction is an immutable prediction record.
// Value is a signed percentage change; Fallback marks records produced
// without a real assessment.
type Prediction struct {
	ID          string    `json:"id"`
	Symbol      string    `json:"symbol"`
	Value       float64   `json:"prediction"`
	Confidence  int       `json:"confidence"`
	Timeframe   Horizon   `json:"timeframe"`
	Factors     []string  `json:"factors"`
	Trend       Trend     `json:"trend"`
	LastUpdated time.Time `json:"lastUpdated"`
	Fallback    bool      `json:"fallback"`
}

// PredictTaskRequest is the body of POST /api/predict/tasks.
type PredictTaskRequest struct {
	Symbols   []string `json:"symbols" binding:"required"`
	Timeframe Horizon  `json:"timeframe"`
	RequestID string   `json:"requestId"`
}
