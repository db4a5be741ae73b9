package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"stock-advisor-backend/internal/model"
	"stock-advisor-backend/internal/service"
	"stock-advisor-backend/internal/store"
)

// HasWatchlist 用户是否有自选股记录
func HasWatchlist(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	has, err := service.DB().HasWatchlist(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while fetching watchlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":               userID,
		"has_watchlist_records": has,
	})
}

// GetWatchlist 用户的自选股列表
func GetWatchlist(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	items, err := service.DB().ListWatchlist(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while fetching watchlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":   userID,
		"count":     len(items),
		"watchlist": items,
	})
}

// AddToWatchlist 添加自选股，user-id从请求头取
func AddToWatchlist(c *gin.Context) {
	rawID := c.GetHeader("user-id")
	if rawID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User ID header is required"})
		return
	}
	userID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid User ID format"})
		return
	}

	if _, err := service.DB().GetUserByID(userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("User with ID %d not found", userID)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while adding to watchlist"})
		return
	}

	var req model.AddWatchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Ticker cannot be empty"})
		return
	}
	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Ticker cannot be empty"})
		return
	}

	item, err := service.DB().AddWatchlistItem(userID, ticker)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{
				"message": fmt.Sprintf("Ticker %q is already in your watchlist", ticker),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while adding to watchlist"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":        "Ticker added successfully",
		"watchlist_item": item,
	})
}

// DeleteWatchlistItem 删除自选股条目
func DeleteWatchlistItem(c *gin.Context) {
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	item, err := service.DB().DeleteWatchlistItem(itemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"message": fmt.Sprintf("Watchlist item with ID %d not found.", itemID),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete item due to a server error."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Watchlist item %d (%s) deleted successfully.", itemID, item.Ticker),
	})
}

// pathID 解析路径里的整数ID参数
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID format"})
		return 0, false
	}
	return id, true
}
