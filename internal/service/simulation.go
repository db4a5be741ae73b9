package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"stock-advisor-backend/internal/marketdata"
	"stock-advisor-backend/internal/model"
	"stock-advisor-backend/internal/montecarlo"
)

// ErrBadStartDate start_date不是合法的YYYY-MM-DD
var ErrBadStartDate = errors.New("invalid start_date")

const (
	maxNumPaths    = 200000
	maxTradingDays = 2520
)

// Simulate 执行一次蒙特卡洛组合模拟：并发拉取各股票历史行情，
// 再交给模拟器完成对齐、估计和路径生成
func Simulate(ctx context.Context, req *model.SimulationRequest) (*montecarlo.Result, error) {
	startDate := req.StartDate
	if startDate == "" {
		startDate = defaultStartDate
	}
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, ErrBadStartDate
	}

	quotes, err := fetchQuoteSeries(ctx, req.Stocks, start)
	if err != nil {
		return nil, err
	}

	cfg := simConfig
	if req.NumPaths > 0 {
		cfg.NumPaths = clampInt(req.NumPaths, 1, maxNumPaths)
	}
	if req.TradingDays > 0 {
		cfg.TradingDays = clampInt(req.TradingDays, 1, maxTradingDays)
	}

	return montecarlo.NewSimulator(cfg).Run(ctx, quotes, req.Stocks)
}

// SimulationResponseFrom 把模拟结果转成接口响应，小数保留4位
func SimulationResponseFrom(result *montecarlo.Result) *model.SimulationResponse {
	return &model.SimulationResponse{
		Stocks:         result.Symbols,
		Weights:        result.Weights,
		ExpectedReturn: round4(result.Report.ExpectedReturn),
		Volatility:     round4(result.Report.Volatility),
		Worst5Percent:  round4(result.Report.Worst5),
		Conclusion:     result.Report.Conclusion,
	}
}

// fetchQuoteSeries 并发拉取各股票的复权收盘序列。
// 查无此股/无数据的代码留空交给对齐阶段判定，网络类错误立即上抛
func fetchQuoteSeries(ctx context.Context, symbols []string, start time.Time) (map[string]montecarlo.Series, error) {
	quotes := make(map[string]montecarlo.Series, len(symbols))
	var mu sync.Mutex
	var wg sync.WaitGroup
	errChan := make(chan error, len(symbols))

	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()

			history, err := market.AdjustedClose(ctx, symbol, start)
			if err != nil {
				errChan <- fmt.Errorf("%s: %w", symbol, err)
				return
			}

			mu.Lock()
			quotes[symbol] = montecarlo.Series{Dates: history.Dates, Closes: history.Closes}
			mu.Unlock()
		}(symbol)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if errors.Is(err, marketdata.ErrNotFound) || errors.Is(err, marketdata.ErrNoData) {
			continue
		}
		return nil, err
	}
	return quotes, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
