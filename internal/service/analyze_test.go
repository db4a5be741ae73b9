package service_test

import (
	"context"
	"testing"

	"stock-advisor-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appleProfileBody = `{"quoteSummary":{"result":[{
  "assetProfile":{"sector":"Technology","industry":"Consumer Electronics","fullTimeEmployees":160000,"longBusinessSummary":"Designs smartphones."},
  "price":{"longName":"Apple Inc","marketCap":{"raw":2500000000000}},
  "summaryDetail":{"trailingPE":{"raw":28.5}}
}],"error":null}}`

func TestResolveSymbol_ExchangeSuffix(t *testing.T) {
	assert.Equal(t, "TCS.NS", service.ResolveSymbol("tcs", "ns"))
	assert.Equal(t, "INFY.BO", service.ResolveSymbol(" infy ", "bo"))
	// 美股和留空不加后缀
	assert.Equal(t, "AAPL", service.ResolveSymbol("AAPL", "US"))
	assert.Equal(t, "AAPL", service.ResolveSymbol("aapl", ""))
}

func TestAnalyzeTicker_MergesQuoteAndProfile(t *testing.T) {
	charts := map[string]string{
		"AAPL": chartBody(t, chartFixture{
			symbol: "AAPL", name: "Apple Inc", exchange: "NasdaqGS",
			price: 150, previousClose: 140, startDate: "2021-01-04",
			closes: []float64{148, 149, 150}, volume: 1000,
		}),
	}
	profiles := map[string]string{"AAPL": appleProfileBody}
	initService(t, chartMux(charts, profiles), defaultSimConfig())

	data, err := service.AnalyzeTicker(context.Background(), "aapl", "us")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", data["ticker"])
	assert.Equal(t, "Apple Inc", data["company_name"])
	assert.Equal(t, "NasdaqGS", data["exchange"])
	assert.Equal(t, 150.0, data["last_price"])
	assert.Equal(t, 140.0, data["previous_close"])
	// (150-140)/140*100=7.142857，保留2位
	assert.Equal(t, 7.14, data["change_percent"])
	assert.Equal(t, "Technology", data["sector"])
	assert.Equal(t, "Consumer Electronics", data["industry"])
	assert.Equal(t, int64(160000), data["employees"])
	assert.Equal(t, int64(2500000000000), data["market_cap"])
	assert.Equal(t, "Designs smartphones.", data["summary"])
}

// 概况接口被拦截时全部N/A兜底，缺失的行情字段同样N/A
func TestAnalyzeTicker_MissingFieldsBecomeNA(t *testing.T) {
	charts := map[string]string{
		"ZED": chartBody(t, chartFixture{
			symbol: "ZED", price: 10, startDate: "2021-01-04",
			closes: []float64{9, 10}, volume: 0,
		}),
	}
	initService(t, chartMux(charts, nil), defaultSimConfig())

	data, err := service.AnalyzeTicker(context.Background(), "zed", "")
	require.NoError(t, err)

	assert.Equal(t, "ZED", data["ticker"])
	assert.Equal(t, "ZED", data["company_name"])
	assert.Equal(t, 10.0, data["last_price"])
	assert.Equal(t, "N/A", data["previous_close"])
	assert.Equal(t, "N/A", data["change_percent"])
	assert.Equal(t, "N/A", data["sector"])
	assert.Equal(t, "N/A", data["market_cap"])
	assert.Equal(t, "N/A", data["volume"])
	assert.Equal(t, "N/A", data["open_price"])
}

func TestAnalyzeTicker_UnknownTicker(t *testing.T) {
	initService(t, chartMux(nil, nil), defaultSimConfig())

	_, err := service.AnalyzeTicker(context.Background(), "NOPE", "NS")
	assert.ErrorIs(t, err, service.ErrTickerNotFound)
}
