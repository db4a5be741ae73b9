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

// AIAnalyze AI个股分析
func AIAnalyze(c *gin.Context) {
	var req model.AIAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Ticker is required"})
		return
	}
	req.Ticker = strings.ToUpper(strings.TrimSpace(req.Ticker))
	if req.Ticker == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Ticker is required"})
		return
	}

	resp, err := service.AnalyzeStockAI(c.Request.Context(), &req)
	if err != nil {
		writeAIError(c, req.Ticker, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// AIChat AI投资顾问对话，需要登录
func AIChat(c *gin.Context) {
	userID := currentUserID(c)

	var req model.AIChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Message is required"})
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Message is required"})
		return
	}

	resp, err := service.ChatAI(c.Request.Context(), userID, &req)
	if err != nil {
		if isAPIKeyError(err) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"message": "Chat service temporarily unavailable. Please try again later.",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Chat failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func writeAIError(c *gin.Context, ticker string, err error) {
	switch {
	case isAPIKeyError(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"message": "AI service error: Invalid or missing API key. Please check configuration.",
		})
	case errors.Is(err, service.ErrStockNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"message": fmt.Sprintf("Stock %s not found. Please check the ticker symbol and exchange.", ticker),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "AI Analysis failed: " + err.Error()})
	}
}

// isAPIKeyError 上游LLM鉴权类错误的粗略识别
func isAPIKeyError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "API key") || strings.Contains(strings.ToLower(msg), "invalid")
}
