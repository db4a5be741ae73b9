package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"stock-advisor-backend/internal/handler"
	"stock-advisor-backend/internal/marketdata"
	"stock-advisor-backend/internal/montecarlo"
	"stock-advisor-backend/internal/service"
	"stock-advisor-backend/internal/store"

	"github.com/stretchr/testify/require"
)

const notFoundBody = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

// chartBody 生成Yahoo chart响应，时间戳从startDate起逐日递增
func chartBody(t *testing.T, symbol string, price float64, startDate string, closes []float64, volume int64) string {
	t.Helper()

	start, err := time.Parse("2006-01-02", startDate)
	require.NoError(t, err)

	timestamps := make([]int64, len(closes))
	volumes := make([]int64, len(closes))
	for i := range closes {
		timestamps[i] = start.AddDate(0, 0, i).Unix()
		volumes[i] = volume
	}

	body := map[string]any{
		"chart": map[string]any{
			"result": []any{map[string]any{
				"meta": map[string]any{
					"symbol":             symbol,
					"regularMarketPrice": price,
				},
				"timestamp": timestamps,
				"indicators": map[string]any{
					"quote":    []any{map[string]any{"close": closes, "volume": volumes}},
					"adjclose": []any{map[string]any{"adjclose": closes}},
				},
			}},
			"error": nil,
		},
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return string(raw)
}

func growthCloses(n int, base, rate float64) []float64 {
	closes := make([]float64, n)
	price := base
	for i := range closes {
		closes[i] = price
		price *= 1 + rate
	}
	return closes
}

func chartMux(charts map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/v10/finance/quoteSummary/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if body, ok := charts[path.Base(r.URL.Path)]; ok {
			fmt.Fprint(w, body)
			return
		}
		fmt.Fprint(w, notFoundBody)
	}
}

// newTestEnv 注入隔离的服务依赖并返回与生产同构的路由
func newTestEnv(t *testing.T, yahoo http.HandlerFunc) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
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

	cfg := montecarlo.Config{TradingDays: 10, NumPaths: 200, Workers: 2, Seed: 42}
	service.Init(client, s, cfg, "2021-01-01", "")
	return newRouter(), s
}

func newRouter() *gin.Engine {
	r := gin.New()
	api := r.Group("/api/v1")
	{
		api.POST("/montecarlo", handler.MonteCarlo)
		api.POST("/montecarlo/chart", handler.MonteCarloChart)
		api.POST("/montecarlo/task", handler.CreateMonteCarloTask)
		api.GET("/montecarlo/task/:task_id", handler.GetMonteCarloTask)
		api.POST("/montecarlo/task/:task_id/cancel", handler.CancelMonteCarloTask)

		api.GET("/analyze", handler.Analyze)
		api.POST("/technical_signal", handler.TechnicalSignal)
		api.POST("/predict", handler.Forecast)

		api.POST("/valid_user", handler.ValidUser)
		api.POST("/signup", handler.Signup)
		api.POST("/login", handler.Login)
		api.POST("/logout", handler.AuthMiddleware(), handler.Logout)

		api.GET("/has_watchlist/:user_id", handler.HasWatchlist)
		api.GET("/watchlist/:user_id", handler.GetWatchlist)
		api.POST("/watchlist/add", handler.AddToWatchlist)
		api.DELETE("/watchlist/:item_id", handler.DeleteWatchlistItem)

		api.GET("/portfolio/holdings/:user_id", handler.GetHoldings)
		api.POST("/portfolio/holdings/:user_id", handler.AddHolding)
		api.DELETE("/portfolio/holdings/:user_id/:holding_id", handler.DeleteHolding)
		api.GET("/portfolio/health/:user_id", handler.PortfolioHealth)

		api.POST("/ai/analyze", handler.AIAnalyze)
		api.POST("/ai/chat", handler.AuthMiddleware(), handler.AIChat)
	}
	return r
}

// doJSON 发送JSON请求并返回响应记录器，body为nil时不带请求体
func doJSON(t *testing.T, r *gin.Engine, method, target string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// registerUser 建一个用户并返回ID
func registerUser(t *testing.T, s *store.Store, username string) int64 {
	t.Helper()
	id, err := s.CreateUser(username, username+"@example.com", "hash")
	require.NoError(t, err)
	return id
}
