package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stock-dashboard-backend/internal/model"
	"stock-dashboard-backend/internal/stockdata"
)

// GetStocks lists the live board, optionally filtered by keyword.
func (h *Handler) GetStocks(c *gin.Context) {
	stocks := h.Market.Search(c.Query("keyword"))
	c.JSON(http.StatusOK, gin.H{
		"data":  stocks,
		"total": len(stocks),
	})
}

// GetStock returns one quote. Symbols outside the board are looked up.
func (h *Handler) GetStock(c *gin.Context) {
	stock, err := h.Market.Quote(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stock)
}

// GetChart returns the price series of a symbol.
func (h *Handler) GetChart(c *gin.Context) {
	days, ok := intQuery(c, "days", stockdata.DefaultChartDays)
	if !ok {
		return
	}
	series, err := h.Market.Chart(c.Param("symbol"), days)
	if err != nil {
		respondError(c, err)
		return
	}
	symbol, _ := stockdata.NormalizeSymbol(c.Param("symbol"))
	c.JSON(http.StatusOK, model.ChartResponse{Symbol: symbol, Days: days, Data: series})
}

// GetIndicators returns the chart with every overlay.
func (h *Handler) GetIndicators(c *gin.Context) {
	days, ok := intQuery(c, "days", stockdata.DefaultChartDays)
	if !ok {
		return
	}
	resp, err := h.Predictions.Indicators(c.Param("symbol"), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
