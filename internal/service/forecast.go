package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stock-advisor-backend/internal/marketdata"
	"stock-advisor-backend/internal/model"
	"stock-advisor-backend/internal/tradingday"
)

const (
	forecastLookBack  = 60
	forecastStartDate = "2015-01-01"
)

var (
	// ErrForecastNoData 代码不存在或完全没有行情
	ErrForecastNoData = errors.New("ticker not found or has no data")
	// ErrForecastTooShort 历史长度不足以拟合趋势
	ErrForecastTooShort = fmt.Errorf("Not enough data to forecast. Need at least %d days.", forecastLookBack+1)
)

// Forecast 用最近60个收盘价做线性回归，外推7和14个交易日的价格。
// 预测日期经交易日历推算，跳过周末与休市日
func Forecast(ctx context.Context, ticker string) (*model.ForecastResponse, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	start, err := time.Parse("2006-01-02", forecastStartDate)
	if err != nil {
		return nil, err
	}
	history, err := market.AdjustedClose(ctx, ticker, start)
	if err != nil {
		if errors.Is(err, marketdata.ErrNotFound) || errors.Is(err, marketdata.ErrNoData) {
			return nil, ErrForecastNoData
		}
		return nil, err
	}

	closes := history.Closes
	if len(closes) <= forecastLookBack {
		return nil, ErrForecastTooShort
	}

	lastDate, err := time.Parse("2006-01-02", history.Dates[len(history.Dates)-1])
	if err != nil {
		return nil, err
	}

	window := closes[len(closes)-forecastLookBack:]
	intercept, slope := linearFit(window)

	return &model.ForecastResponse{
		Ticker:    ticker,
		LastPrice: closes[len(closes)-1],
		LastDate:  lastDate.Format("2006-01-02"),
		Day7:      projectPoint(intercept, slope, lastDate, 7),
		Day14:     projectPoint(intercept, slope, lastDate, 14),
	}, nil
}

// projectPoint 外推第ahead个交易日的预测点
func projectPoint(intercept, slope float64, lastDate time.Time, ahead int) model.ForecastPoint {
	price := intercept + slope*float64(forecastLookBack-1+ahead)
	if price < 0 {
		price = 0
	}
	return model.ForecastPoint{
		Date:  tradingday.NextTradingDay(lastDate, ahead).Format("2006-01-02"),
		Price: price,
	}
}

// linearFit 最小二乘拟合 y = intercept + slope*x，x取0..n-1
func linearFit(data []float64) (intercept, slope float64) {
	n := len(data)
	if n < 2 {
		if n == 1 {
			return data[0], 0
		}
		return 0, 0
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range data {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	denominator := float64(n)*sumX2 - sumX*sumX
	if denominator == 0 {
		return sumY / float64(n), 0
	}
	slope = (float64(n)*sumXY - sumX*sumY) / denominator
	intercept = (sumY - slope*sumX) / float64(n)
	return intercept, slope
}
