package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stock-dashboard-backend/internal/model"
)

const maxHistoryLimit = 100

// Predict generates a prediction for one symbol.
func (h *Handler) Predict(c *gin.Context) {
	var req model.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	p, err := h.Predictions.Predict(c.Request.Context(), req.Symbol, req.Timeframe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GetPredictionHistory lists recent predictions of a symbol.
func (h *Handler) GetPredictionHistory(c *gin.Context) {
	limit, ok := intQuery(c, "limit", 20)
	if !ok {
		return
	}
	if limit < 1 || limit > maxHistoryLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
		return
	}
	records, err := h.Predictions.History(c.Request.Context(), c.Param("symbol"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}
