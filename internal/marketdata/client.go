package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrNotFound 数据源明确表示该代码不存在
	ErrNotFound = errors.New("symbol not found")
	// ErrNoData 数据源有响应但没有返回任何行情
	ErrNoData = errors.New("no data")
)

// History 单只股票的日线历史，收盘价为复权价
type History struct {
	Symbol  string    `json:"symbol"`
	Dates   []string  `json:"dates"` // "2006-01-02"
	Closes  []float64 `json:"closes"`
	Volumes []int64   `json:"volumes"`
}

// Quote 实时报价快照
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Exchange      string  `json:"exchange"`
	Price         float64 `json:"price"`
	PreviousClose float64 `json:"previous_close"`
	Open          float64 `json:"open"`
	DayHigh       float64 `json:"day_high"`
	DayLow        float64 `json:"day_low"`
	Volume        int64   `json:"volume"`
	Week52High    float64 `json:"week_52_high"`
	Week52Low     float64 `json:"week_52_low"`
}

// Profile 公司概况，来自quoteSummary，字段可能缺失
type Profile struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Sector    string  `json:"sector"`
	Industry  string  `json:"industry"`
	Employees int64   `json:"employees"`
	Summary   string  `json:"summary"`
	MarketCap int64   `json:"market_cap"`
	PERatio   float64 `json:"pe_ratio"`
}

// Options 客户端参数，零值字段使用默认值
type Options struct {
	BaseURL      string // Yahoo行情接口
	FallbackURL  string // stooq备用数据源
	Timeout      time.Duration
	RatePerSec   int
	RateBurst    int
	HistoryTTL   time.Duration
	QuoteTTL     time.Duration
	ProfileTTL   time.Duration
}

// Client 行情客户端，主源失败时自动切换备用源，
// 对外请求经过限速器
type Client struct {
	baseURL     string
	fallbackURL string
	http        *http.Client
	limiter     *rate.Limiter
	historyTTL  time.Duration
	quoteTTL    time.Duration
	profileTTL  time.Duration
}

// NewClient 创建行情客户端
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://query1.finance.yahoo.com"
	}
	if opts.FallbackURL == "" {
		opts.FallbackURL = "https://stooq.com"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 5
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 5
	}
	if opts.HistoryTTL <= 0 {
		opts.HistoryTTL = 5 * time.Minute
	}
	if opts.QuoteTTL <= 0 {
		opts.QuoteTTL = 30 * time.Second
	}
	if opts.ProfileTTL <= 0 {
		opts.ProfileTTL = 24 * time.Hour
	}
	return &Client{
		baseURL:     opts.BaseURL,
		fallbackURL: opts.FallbackURL,
		http:        &http.Client{Timeout: opts.Timeout},
		limiter:     rate.NewLimiter(rate.Limit(opts.RatePerSec), opts.RateBurst),
		historyTTL:  opts.HistoryTTL,
		quoteTTL:    opts.QuoteTTL,
		profileTTL:  opts.ProfileTTL,
	}
}

// AdjustedClose 获取[start, 今天)的复权日收盘价，
// 先走Yahoo，失败或无数据时尝试stooq
func (c *Client) AdjustedClose(ctx context.Context, symbol string, start time.Time) (*History, error) {
	key := cacheKey("history", symbol, start.Format("2006-01-02"))
	cached := &History{}
	if err := getCacheProvider().Get(key, cached); err == nil && len(cached.Closes) > 0 {
		return cached, nil
	}

	end := time.Now()
	history, primaryErr := c.fetchYahooHistory(ctx, symbol, start, end)
	if primaryErr == nil && len(history.Closes) > 0 {
		_ = getCacheProvider().Set(key, history, c.historyTTL)
		return history, nil
	}

	// 主源失败，尝试备用源
	history, fallbackErr := c.fetchStooqHistory(ctx, symbol, start, end)
	if fallbackErr == nil && len(history.Closes) > 0 {
		_ = getCacheProvider().Set(key, history, c.historyTTL)
		return history, nil
	}

	// 以主源的错误为准做归类，备用源只负责补数据
	if primaryErr != nil {
		return nil, primaryErr
	}
	return nil, ErrNoData
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "curl/8")
	req.Header.Set("Accept", "*/*")
	return c.http.Do(req)
}
