package model

// Position is one holding valued at the live price.
type Position struct {
	Symbol        string  `json:"symbol"`
	Shares        float64 `json:"shares"`
	AveragePrice  float64 `json:"averagePrice"`
	CurrentPrice  float64 `json:"currentPrice"`
	TotalValue    float64 `json:"totalValue"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

// Portfolio is a named set of positions with totals.
type Portfolio struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	TotalValue         float64    `json:"totalValue"`
	TotalChange        float64    `json:"totalChange"`
	TotalChangePercent float64    `json:"totalChangePercent"`
	Positions          []Position `json:"positions"`
}

// WatchlistResponse lists the watched symbols with their quotes.
type WatchlistResponse struct {
	Symbols []string `json:"symbols"`
	Stocks  []Stock  `json:"stocks"`
}
