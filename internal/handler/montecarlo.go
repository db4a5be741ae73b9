package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stock-advisor-backend/internal/chart"
	"stock-advisor-backend/internal/model"
	"stock-advisor-backend/internal/montecarlo"
	"stock-advisor-backend/internal/service"
)

// MonteCarlo 等权组合蒙特卡洛模拟
func MonteCarlo(c *gin.Context) {
	req, ok := bindSimulationRequest(c)
	if !ok {
		return
	}

	result, err := service.Simulate(c.Request.Context(), req)
	if err != nil {
		writeSimulationError(c, err)
		return
	}

	c.JSON(http.StatusOK, service.SimulationResponseFrom(result))
}

// MonteCarloChart 跑同样的模拟，返回终值分布直方图PNG
func MonteCarloChart(c *gin.Context) {
	req, ok := bindSimulationRequest(c)
	if !ok {
		return
	}

	result, err := service.Simulate(c.Request.Context(), req)
	if err != nil {
		writeSimulationError(c, err)
		return
	}

	png, err := chart.OutcomeHistogram(result)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render chart: " + err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func bindSimulationRequest(c *gin.Context) (*model.SimulationRequest, bool) {
	var req model.SimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no stocks provided"})
		return nil, false
	}
	if len(req.Stocks) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no stocks provided"})
		return nil, false
	}
	return &req, true
}

// writeSimulationError 模拟错误到HTTP状态码的统一映射
func writeSimulationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, montecarlo.ErrNoData):
		c.JSON(http.StatusBadRequest, gin.H{"error": montecarlo.ErrNoData.Error()})
	case errors.Is(err, service.ErrBadStartDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to download data: " + err.Error()})
	}
}
