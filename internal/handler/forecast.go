package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"stock-advisor-backend/internal/model"
	"stock-advisor-backend/internal/service"
)

// Forecast 7日/14日趋势预测
func Forecast(c *gin.Context) {
	var req model.ForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock ticker is required"})
		return
	}
	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock ticker is required"})
		return
	}

	resp, err := service.Forecast(c.Request.Context(), ticker)
	if err != nil {
		writeForecastError(c, ticker, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func writeForecastError(c *gin.Context, ticker string, err error) {
	switch {
	case errors.Is(err, service.ErrForecastNoData):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Ticker '%s' not found or has no data", ticker),
		})
	case errors.Is(err, service.ErrForecastTooShort):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Prediction failed: " + err.Error()})
	}
}
