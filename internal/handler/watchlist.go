package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stock-dashboard-backend/internal/model"
	"stock-dashboard-backend/internal/portfolio"
)

// GetWatchlist returns the watched symbols with the board quotes among them.
func (h *Handler) GetWatchlist(c *gin.Context) {
	symbols, err := h.Watchlist.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	stocks := make([]model.Stock, 0, len(symbols))
	for _, s := range symbols {
		if q, ok := h.Market.BoardQuote(s); ok {
			stocks = append(stocks, q)
		}
	}
	c.JSON(http.StatusOK, model.WatchlistResponse{Symbols: symbols, Stocks: stocks})
}

// ToggleWatchlist adds the symbol if absent and removes it otherwise.
func (h *Handler) ToggleWatchlist(c *gin.Context) {
	watched, symbols, err := h.Watchlist.Toggle(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"watched": watched, "symbols": symbols})
}

// RemoveFromWatchlist drops the symbol; absent symbols are not an error.
func (h *Handler) RemoveFromWatchlist(c *gin.Context) {
	symbols, err := h.Watchlist.Remove(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbols": symbols})
}

// GetPortfolio values the configured portfolio at live prices.
func (h *Handler) GetPortfolio(c *gin.Context) {
	c.JSON(http.StatusOK, portfolio.Value(h.Portfolio, h.Market.Price))
}

// QuoteStream upgrades to a websocket receiving board snapshots.
func (h *Handler) QuoteStream(c *gin.Context) {
	h.Hub.ServeWS(c.Writer, c.Request)
}
