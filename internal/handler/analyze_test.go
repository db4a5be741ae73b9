package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_QuoteOnly(t *testing.T) {
	r, _ := newTestEnv(t, chartMux(map[string]string{
		"AAPL": chartBody(t, "AAPL", 150, "2021-01-04", growthCloses(5, 100, 0.01), 1000),
	}))

	w := doJSON(t, r, http.MethodGet, "/api/v1/analyze?ticker=aapl&exchange=US", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "AAPL", body["ticker"])
	assert.Equal(t, 150.0, body["last_price"])
	// 简介接口404时文本字段统一回退N/A
	assert.Equal(t, "N/A", body["sector"])
	assert.Equal(t, "N/A", body["previous_close"])
}

func TestAnalyze_MissingTicker(t *testing.T) {
	r, _ := newTestEnv(t, chartMux(nil))

	w := doJSON(t, r, http.MethodGet, "/api/v1/analyze", nil, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required query parameter: ticker.", decodeBody(t, w)["message"])
}

func TestAnalyze_UnknownTickerDefaultsToNSE(t *testing.T) {
	r, _ := newTestEnv(t, chartMux(nil))

	w := doJSON(t, r, http.MethodGet, "/api/v1/analyze?ticker=nope", nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, `Ticker symbol "NOPE.NS" not found. Check symbol accuracy.`, decodeBody(t, w)["message"])
}

func TestAnalyze_UpstreamUnavailable(t *testing.T) {
	r, _ := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	w := doJSON(t, r, http.MethodGet, "/api/v1/analyze?ticker=AAPL&exchange=US", nil, nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Failed to fetch data. The external financial service may be unavailable or blocking requests.",
		decodeBody(t, w)["message"])
}
