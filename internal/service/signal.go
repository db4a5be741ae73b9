package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stock-advisor-backend/internal/marketdata"
	"stock-advisor-backend/internal/model"
)

const (
	rsiPeriod   = 14
	obvLookback = 20
)

// TechnicalSignal 根据近一年日线计算RSI与OBV，输出买卖信号。
// RSI用14日简单均值（非指数平滑），OBV取近20日变化量定方向
func TechnicalSignal(ctx context.Context, ticker string) (*model.SignalResponse, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	start := time.Now().AddDate(-1, 0, 0)
	history, err := market.AdjustedClose(ctx, ticker, start)
	if err != nil {
		if errors.Is(err, marketdata.ErrNotFound) || errors.Is(err, marketdata.ErrNoData) {
			return nil, fmt.Errorf("Could not fetch data for ticker: %s", ticker)
		}
		return nil, err
	}

	closes, volumes := history.Closes, history.Volumes
	if len(closes) < rsiPeriod+1 || len(closes) < obvLookback {
		return nil, fmt.Errorf("not enough history for ticker: %s", ticker)
	}

	rsi := latestRSI(closes, rsiPeriod)
	obvChange := obvChange(closes, volumes, obvLookback)

	var signal, action string
	switch {
	case obvChange > 0:
		signal, action = "Bullish", "Buy or Hold"
	case obvChange < 0:
		signal, action = "Bearish", "Sell or Avoid Buying"
	default:
		signal, action = "Neutral", "Hold / Wait"
	}

	rsiLabel := "Neutral"
	if rsi <= 30 {
		rsiLabel = "Oversold"
	} else if rsi >= 70 {
		rsiLabel = "Overbought"
	}
	obvLabel := "flat"
	if obvChange > 0 {
		obvLabel = "upwards"
	} else if obvChange < 0 {
		obvLabel = "downwards"
	}

	return &model.SignalResponse{
		Ticker:          ticker,
		CurrentPrice:    closes[len(closes)-1],
		Signal:          signal,
		SuggestedAction: action,
		Commentary: fmt.Sprintf("RSI: %.2f (%s). OBV trend (%d days): %s.",
			rsi, rsiLabel, obvLookback, obvLabel),
	}, nil
}

// latestRSI 最近一期RSI，涨跌幅取period窗口内的简单均值
func latestRSI(closes []float64, period int) float64 {
	var gainSum, lossSum float64
	for i := len(closes) - period; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gainSum += delta
		} else {
			lossSum -= delta
		}
	}
	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// obvChange OBV累积量在lookback窗口上的变化
func obvChange(closes []float64, volumes []int64, lookback int) int64 {
	obv := make([]int64, len(closes))
	for i := 1; i < len(closes); i++ {
		switch {
		case closes[i] > closes[i-1]:
			obv[i] = obv[i-1] + volumeAt(volumes, i)
		case closes[i] < closes[i-1]:
			obv[i] = obv[i-1] - volumeAt(volumes, i)
		default:
			obv[i] = obv[i-1]
		}
	}
	return obv[len(obv)-1] - obv[len(obv)-lookback]
}

func volumeAt(volumes []int64, i int) int64 {
	if i < len(volumes) {
		return volumes[i]
	}
	return 0
}
