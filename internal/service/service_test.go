package service_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"testing"
	"time"

	"stock-advisor-backend/internal/marketdata"
	"stock-advisor-backend/internal/montecarlo"
	"stock-advisor-backend/internal/service"
	"stock-advisor-backend/internal/store"

	"github.com/stretchr/testify/require"
)

const notFoundBody = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

// chartFixture 生成Yahoo chart响应用的参数，时间戳从startDate起逐日递增
type chartFixture struct {
	symbol        string
	name          string
	exchange      string
	price         float64
	previousClose float64
	startDate     string
	closes        []float64
	volume        int64
}

func chartBody(t *testing.T, f chartFixture) string {
	t.Helper()

	start, err := time.Parse("2006-01-02", f.startDate)
	require.NoError(t, err)

	timestamps := make([]int64, len(f.closes))
	volumes := make([]int64, len(f.closes))
	for i := range f.closes {
		timestamps[i] = start.AddDate(0, 0, i).Unix()
		volumes[i] = f.volume
	}

	body := map[string]any{
		"chart": map[string]any{
			"result": []any{map[string]any{
				"meta": map[string]any{
					"symbol":             f.symbol,
					"longName":           f.name,
					"fullExchangeName":   f.exchange,
					"regularMarketPrice": f.price,
					"previousClose":      f.previousClose,
				},
				"timestamp": timestamps,
				"indicators": map[string]any{
					"quote":    []any{map[string]any{"close": f.closes, "volume": volumes}},
					"adjclose": []any{map[string]any{"adjclose": f.closes}},
				},
			}},
			"error": nil,
		},
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return string(raw)
}

// chartMux 按路径末段的代码分发chart和quoteSummary响应，
// 没有配置的代码按查无此股处理
func chartMux(charts, profiles map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbol := path.Base(r.URL.Path)
		if strings.Contains(r.URL.Path, "/v10/finance/quoteSummary/") {
			if body, ok := profiles[symbol]; ok {
				fmt.Fprint(w, body)
				return
			}
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if body, ok := charts[symbol]; ok {
			fmt.Fprint(w, body)
			return
		}
		fmt.Fprint(w, notFoundBody)
	}
}

// initService 注入隔离的行情客户端和内存库，备用源一律无数据
func initService(t *testing.T, yahoo http.HandlerFunc, cfg montecarlo.Config) *store.Store {
	t.Helper()
	marketdata.SetCacheProvider(nil)

	yahooSrv := httptest.NewServer(yahoo)
	t.Cleanup(yahooSrv.Close)
	stooqSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "No data")
	}))
	t.Cleanup(stooqSrv.Close)

	client := marketdata.NewClient(marketdata.Options{
		BaseURL:     yahooSrv.URL,
		FallbackURL: stooqSrv.URL,
		Timeout:     5 * time.Second,
		RatePerSec:  100,
		RateBurst:   100,
	})

	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	service.Init(client, s, cfg, "2021-01-01", "")
	return s
}

func defaultSimConfig() montecarlo.Config {
	return montecarlo.Config{TradingDays: 10, NumPaths: 200, Workers: 2, Seed: 42}
}

// growthCloses 从base起每日按rate复利的收盘价序列
func growthCloses(n int, base, rate float64) []float64 {
	closes := make([]float64, n)
	price := base
	for i := range closes {
		closes[i] = price
		price *= 1 + rate
	}
	return closes
}
