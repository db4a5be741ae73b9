package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"stock-advisor-backend/internal/model"
	"stock-advisor-backend/internal/service"
	"stock-advisor-backend/internal/store"
)

// GetHoldings 用户持仓列表加估值汇总
func GetHoldings(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	holdings, summary, err := service.HoldingsOverview(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error retrieving holdings: " + err.Error()})
		return
	}
	if len(holdings) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No holdings found", "holdings": []model.Holding{}})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"holdings": holdings,
		"summary":  summary,
	})
}

// AddHolding 添加持仓，同代码持仓合并摊平
func AddHolding(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	var req model.AddHoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Ticker, shares, and purchase_price are required and must be positive"})
		return
	}
	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" || req.Shares <= 0 || req.PurchasePrice <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Ticker, shares, and purchase_price are required and must be positive"})
		return
	}

	holding, err := service.AddHolding(userID, ticker, req.Shares, req.PurchasePrice)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error adding holding: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Holding added successfully",
		"holding": holding,
	})
}

// DeleteHolding 删除持仓
func DeleteHolding(c *gin.Context) {
	holdingID, ok := pathID(c, "holding_id")
	if !ok {
		return
	}

	if err := service.DB().DeleteHolding(holdingID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Holding not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error deleting holding: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Holding removed successfully"})
}

// PortfolioHealth 组合健康度评估
func PortfolioHealth(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	health, err := service.PortfolioHealth(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error analyzing portfolio: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, health)
}
