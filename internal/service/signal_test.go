package service_test

import (
	"context"
	"testing"

	"stock-advisor-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 连涨40天：14日内只有涨幅，RSI=100，OBV每日累加成交量
func TestTechnicalSignal_UptrendIsBullishOverbought(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	charts := map[string]string{
		"UP": chartBody(t, chartFixture{
			symbol: "UP", price: 139, startDate: "2021-01-04",
			closes: closes, volume: 5000,
		}),
	}
	initService(t, chartMux(charts, nil), defaultSimConfig())

	resp, err := service.TechnicalSignal(context.Background(), "up")
	require.NoError(t, err)

	assert.Equal(t, "UP", resp.Ticker)
	assert.Equal(t, 139.0, resp.CurrentPrice)
	assert.Equal(t, "Bullish", resp.Signal)
	assert.Equal(t, "Buy or Hold", resp.SuggestedAction)
	assert.Equal(t, "RSI: 100.00 (Overbought). OBV trend (20 days): upwards.", resp.Commentary)
}

func TestTechnicalSignal_DowntrendIsBearishOversold(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 139 - float64(i)
	}
	charts := map[string]string{
		"DOWN": chartBody(t, chartFixture{
			symbol: "DOWN", price: 100, startDate: "2021-01-04",
			closes: closes, volume: 5000,
		}),
	}
	initService(t, chartMux(charts, nil), defaultSimConfig())

	resp, err := service.TechnicalSignal(context.Background(), "DOWN")
	require.NoError(t, err)

	assert.Equal(t, 100.0, resp.CurrentPrice)
	assert.Equal(t, "Bearish", resp.Signal)
	assert.Equal(t, "Sell or Avoid Buying", resp.SuggestedAction)
	assert.Equal(t, "RSI: 0.00 (Oversold). OBV trend (20 days): downwards.", resp.Commentary)
}

func TestTechnicalSignal_UnknownTicker(t *testing.T) {
	initService(t, chartMux(nil, nil), defaultSimConfig())

	_, err := service.TechnicalSignal(context.Background(), "NOPE")
	require.Error(t, err)
	assert.EqualError(t, err, "Could not fetch data for ticker: NOPE")
}

func TestTechnicalSignal_HistoryTooShort(t *testing.T) {
	charts := map[string]string{
		"TINY": chartBody(t, chartFixture{
			symbol: "TINY", price: 105, startDate: "2021-01-04",
			closes: growthCloses(10, 100, 0.01), volume: 5000,
		}),
	}
	initService(t, chartMux(charts, nil), defaultSimConfig())

	_, err := service.TechnicalSignal(context.Background(), "TINY")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not enough history")
}
