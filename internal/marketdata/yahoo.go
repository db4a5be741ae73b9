package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Yahoo v8 chart 接口的响应结构，缺失值以null出现，用指针承接
type yahooChartResp struct {
	Chart struct {
		Result []yahooChartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type yahooChartResult struct {
	Meta struct {
		Symbol               string  `json:"symbol"`
		Currency             string  `json:"currency"`
		ExchangeName         string  `json:"exchangeName"`
		FullExchangeName     string  `json:"fullExchangeName"`
		LongName             string  `json:"longName"`
		ShortName            string  `json:"shortName"`
		RegularMarketPrice   float64 `json:"regularMarketPrice"`
		ChartPreviousClose   float64 `json:"chartPreviousClose"`
		PreviousClose        float64 `json:"previousClose"`
		RegularMarketDayHigh float64 `json:"regularMarketDayHigh"`
		RegularMarketDayLow  float64 `json:"regularMarketDayLow"`
		RegularMarketVolume  int64   `json:"regularMarketVolume"`
		FiftyTwoWeekHigh     float64 `json:"fiftyTwoWeekHigh"`
		FiftyTwoWeekLow      float64 `json:"fiftyTwoWeekLow"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*int64   `json:"volume"`
		} `json:"quote"`
		Adjclose []struct {
			Adjclose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

func (c *Client) fetchChart(ctx context.Context, symbol string, query string) (*yahooChartResult, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), query)
	resp, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart api status %d", resp.StatusCode)
	}

	var parsed yahooChartResp
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if parsed.Chart.Error != nil {
		if parsed.Chart.Error.Code == "Not Found" {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, symbol)
		}
		return nil, fmt.Errorf("chart api: %s", parsed.Chart.Error.Description)
	}
	if len(parsed.Chart.Result) == 0 {
		return nil, ErrNoData
	}
	return &parsed.Chart.Result[0], nil
}

func (c *Client) fetchYahooHistory(ctx context.Context, symbol string, start, end time.Time) (*History, error) {
	query := fmt.Sprintf("period1=%d&period2=%d&interval=1d&events=div%%7Csplit",
		start.Unix(), end.Unix())
	result, err := c.fetchChart(ctx, symbol, query)
	if err != nil {
		return nil, err
	}

	quote := struct {
		Close  []*float64
		Volume []*int64
	}{}
	if len(result.Indicators.Quote) > 0 {
		quote.Close = result.Indicators.Quote[0].Close
		quote.Volume = result.Indicators.Quote[0].Volume
	}
	// 优先使用复权价，长度对不上时退回原始收盘价
	closes := quote.Close
	if len(result.Indicators.Adjclose) > 0 && len(result.Indicators.Adjclose[0].Adjclose) == len(result.Timestamp) {
		closes = result.Indicators.Adjclose[0].Adjclose
	}
	if len(result.Timestamp) == 0 || len(closes) != len(result.Timestamp) {
		return nil, ErrNoData
	}

	history := &History{Symbol: symbol}
	for i, ts := range result.Timestamp {
		if closes[i] == nil {
			continue
		}
		history.Dates = append(history.Dates, time.Unix(ts, 0).UTC().Format("2006-01-02"))
		history.Closes = append(history.Closes, *closes[i])
		var volume int64
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			volume = *quote.Volume[i]
		}
		history.Volumes = append(history.Volumes, volume)
	}
	if len(history.Closes) == 0 {
		return nil, ErrNoData
	}
	return history, nil
}

// GetQuote 获取报价快照，最近5个交易日的日线加当日盘口元信息
func (c *Client) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	key := cacheKey("quote", symbol)
	cached := &Quote{}
	if err := getCacheProvider().Get(key, cached); err == nil && cached.Symbol != "" {
		return cached, nil
	}

	result, err := c.fetchChart(ctx, symbol, "range=5d&interval=1d")
	if err != nil {
		return nil, err
	}

	name := result.Meta.LongName
	if name == "" {
		name = result.Meta.ShortName
	}
	exchange := result.Meta.FullExchangeName
	if exchange == "" {
		exchange = result.Meta.ExchangeName
	}
	previousClose := result.Meta.PreviousClose
	if previousClose == 0 {
		previousClose = result.Meta.ChartPreviousClose
	}

	quote := &Quote{
		Symbol:        result.Meta.Symbol,
		Name:          name,
		Exchange:      exchange,
		Price:         result.Meta.RegularMarketPrice,
		PreviousClose: previousClose,
		DayHigh:       result.Meta.RegularMarketDayHigh,
		DayLow:        result.Meta.RegularMarketDayLow,
		Volume:        result.Meta.RegularMarketVolume,
		Week52High:    result.Meta.FiftyTwoWeekHigh,
		Week52Low:     result.Meta.FiftyTwoWeekLow,
	}

	// 开盘价取最后一个有效交易日的开盘
	if len(result.Indicators.Quote) > 0 {
		opens := result.Indicators.Quote[0].Open
		for i := len(opens) - 1; i >= 0; i-- {
			if opens[i] != nil {
				quote.Open = *opens[i]
				break
			}
		}
	}

	_ = getCacheProvider().Set(key, quote, c.quoteTTL)
	return quote, nil
}
