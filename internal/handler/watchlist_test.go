package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchlist_AddListDeleteFlow(t *testing.T) {
	r, s := newTestEnv(t, chartMux(nil))
	uid := registerUser(t, s, "walter")
	headers := map[string]string{"user-id": fmt.Sprintf("%d", uid)}

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/has_watchlist/%d", uid), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["has_watchlist_records"])

	// ticker两边的空白和小写都会被归一化
	w = doJSON(t, r, http.MethodPost, "/api/v1/watchlist/add", map[string]any{"ticker": " aapl "}, headers)
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Ticker added successfully", body["message"])
	item := body["watchlist_item"].(map[string]any)
	assert.Equal(t, "AAPL", item["ticker"])
	assert.Equal(t, float64(uid), item["user_id"])
	itemID := int64(item["id"].(float64))

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/has_watchlist/%d", uid), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["has_watchlist_records"])

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/watchlist/%d", uid), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Equal(t, float64(1), body["count"])
	list := body["watchlist"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "AAPL", list[0].(map[string]any)["ticker"])

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/watchlist/%d", itemID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, fmt.Sprintf("Watchlist item %d (AAPL) deleted successfully.", itemID), decodeBody(t, w)["message"])

	// 再删一次就没有了
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/watchlist/%d", itemID), nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, fmt.Sprintf("Watchlist item with ID %d not found.", itemID), decodeBody(t, w)["message"])
}

func TestWatchlist_AddValidation(t *testing.T) {
	r, s := newTestEnv(t, chartMux(nil))
	uid := registerUser(t, s, "vera")

	w := doJSON(t, r, http.MethodPost, "/api/v1/watchlist/add", map[string]any{"ticker": "AAPL"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User ID header is required", decodeBody(t, w)["message"])

	w = doJSON(t, r, http.MethodPost, "/api/v1/watchlist/add", map[string]any{"ticker": "AAPL"},
		map[string]string{"user-id": "abc"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid User ID format", decodeBody(t, w)["message"])

	w = doJSON(t, r, http.MethodPost, "/api/v1/watchlist/add", map[string]any{"ticker": "AAPL"},
		map[string]string{"user-id": "99999"})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User with ID 99999 not found", decodeBody(t, w)["message"])

	headers := map[string]string{"user-id": fmt.Sprintf("%d", uid)}
	w = doJSON(t, r, http.MethodPost, "/api/v1/watchlist/add", map[string]any{"ticker": "   "}, headers)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Ticker cannot be empty", decodeBody(t, w)["message"])

	w = doJSON(t, r, http.MethodPost, "/api/v1/watchlist/add", nil, headers)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Ticker cannot be empty", decodeBody(t, w)["message"])
}

func TestWatchlist_DuplicateTickerConflicts(t *testing.T) {
	r, s := newTestEnv(t, chartMux(nil))
	uid := registerUser(t, s, "dora")
	headers := map[string]string{"user-id": fmt.Sprintf("%d", uid)}

	w := doJSON(t, r, http.MethodPost, "/api/v1/watchlist/add", map[string]any{"ticker": "AAPL"}, headers)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/watchlist/add", map[string]any{"ticker": "aapl"}, headers)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, `Ticker "AAPL" is already in your watchlist`, decodeBody(t, w)["message"])
}

func TestWatchlist_BadPathIDs(t *testing.T) {
	r, _ := newTestEnv(t, chartMux(nil))

	w := doJSON(t, r, http.MethodGet, "/api/v1/has_watchlist/abc", nil, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid ID format", decodeBody(t, w)["message"])

	w = doJSON(t, r, http.MethodDelete, "/api/v1/watchlist/abc", nil, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid ID format", decodeBody(t, w)["message"])
}
