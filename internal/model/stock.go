package model

import "github.com/guregu/null/v6"

// Stock is a live quote on the dashboard board.
type Stock struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Sector        string  `json:"sector"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Volume        int64   `json:"volume"`
	MarketCap     float64 `json:"marketCap"`
	High52w       float64 `json:"high52w"`
	Low52w        float64 `json:"low52w"`
	PE            float64 `json:"pe"`
	Dividend      float64 `json:"dividend"`
}

// ChartPoint is one sample of a price series. Timestamp is unix milliseconds.
type ChartPoint struct {
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
	Volume    float64 `json:"volume"`
}

// ChartResponse is returned by the chart endpoint.
type ChartResponse struct {
	Symbol string       `json:"symbol"`
	Days   int          `json:"days"`
	Data   []ChartPoint `json:"data"`
}

// IndicatorPoint is a chart sample with its aligned overlay values.
// Warm-up positions marshal as null.
type IndicatorPoint struct {
	ChartPoint
	SMA20      null.Float `json:"sma20"`
	SMA50      null.Float `json:"sma50"`
	EMA12      null.Float `json:"ema12"`
	EMA26      null.Float `json:"ema26"`
	BBUpper    null.Float `json:"bbUpper"`
	BBMiddle   null.Float `json:"bbMiddle"`
	BBLower    null.Float `json:"bbLower"`
	RSI        null.Float `json:"rsi"`
	MACD       null.Float `json:"macd"`
	MACDSignal null.Float `json:"macdSignal"`
	Histogram  null.Float `json:"histogram"`
}

// IndicatorResponse is returned by the indicators endpoint.
type IndicatorResponse struct {
	Symbol string           `json:"symbol"`
	Days   int              `json:"days"`
	Data   []IndicatorPoint `json:"data"`
}
