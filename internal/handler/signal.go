package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"stock-advisor-backend/internal/model"
	"stock-advisor-backend/internal/service"
)

// TechnicalSignal RSI+OBV技术信号
func TechnicalSignal(c *gin.Context) {
	var req model.SignalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock ticker is required"})
		return
	}
	if strings.TrimSpace(req.Ticker) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock ticker is required"})
		return
	}

	resp, err := service.TechnicalSignal(c.Request.Context(), req.Ticker)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate signal: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}
