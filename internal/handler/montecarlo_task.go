package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stock-advisor-backend/internal/service"
)

// CreateMonteCarloTask 提交异步模拟任务，立即返回task_id
func CreateMonteCarloTask(c *gin.Context) {
	req, ok := bindSimulationRequest(c)
	if !ok {
		return
	}

	status, created, err := service.CreateSimulationTask(req, c.GetHeader("X-Request-ID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code := http.StatusOK
	if created {
		code = http.StatusAccepted
	}
	c.JSON(code, status)
}

// GetMonteCarloTask 查询任务状态与结果
func GetMonteCarloTask(c *gin.Context) {
	taskID := c.Param("task_id")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task_id is required"})
		return
	}

	status, err := service.GetSimulationTask(taskID)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}

// CancelMonteCarloTask 取消任务
func CancelMonteCarloTask(c *gin.Context) {
	taskID := c.Param("task_id")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task_id is required"})
		return
	}

	status, err := service.CancelSimulationTask(taskID)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}
