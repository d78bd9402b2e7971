package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stock-dashboard-backend/internal/model"
)

// CreatePredictTask starts a batch prediction. A repeated requestId returns
// the running task with 200 instead of 202.
func (h *Handler) CreatePredictTask(c *gin.Context) {
	var req model.PredictTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	status, created, err := h.Tasks.Create(req.Symbols, req.Timeframe, req.RequestID)
	if err != nil {
		respondError(c, err)
		return
	}
	code := http.StatusOK
	if created {
		code = http.StatusAccepted
	}
	c.JSON(code, status)
}

// GetPredictTask returns the status of a task, 404 once it has expired.
func (h *Handler) GetPredictTask(c *gin.Context) {
	status, ok := h.Tasks.Get(c.Param("task_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found or expired"})
		return
	}
	c.JSON(http.StatusOK, status)
}

// CancelPredictTask stops an unfinished task.
func (h *Handler) CancelPredictTask(c *gin.Context) {
	status, ok := h.Tasks.Cancel(c.Param("task_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found or expired"})
		return
	}
	c.JSON(http.StatusOK, status)
}
