package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"stock-advisor-backend/internal/service"
)

// Analyze 个股概览，行情+公司简介
func Analyze(c *gin.Context) {
	ticker := strings.ToUpper(strings.TrimSpace(c.Query("ticker")))
	if ticker == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required query parameter: ticker."})
		return
	}
	exchange := strings.ToUpper(strings.TrimSpace(c.DefaultQuery("exchange", "NS")))

	data, err := service.AnalyzeTicker(c.Request.Context(), ticker, exchange)
	if err != nil {
		if errors.Is(err, service.ErrTickerNotFound) {
			symbol := service.ResolveSymbol(ticker, exchange)
			c.JSON(http.StatusNotFound, gin.H{
				"message": fmt.Sprintf("Ticker symbol %q not found. Check symbol accuracy.", symbol),
			})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"message": "Failed to fetch data. The external financial service may be unavailable or blocking requests.",
		})
		return
	}

	c.JSON(http.StatusOK, data)
}
