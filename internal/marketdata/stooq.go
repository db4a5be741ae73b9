package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// stooq日线CSV备用源。美股代码需要.us后缀，其余市场原样小写后尝试
func stooqSymbol(symbol string) string {
	s := strings.ToLower(strings.TrimSpace(symbol))
	if !strings.Contains(s, ".") {
		s += ".us"
	}
	return s
}

func (c *Client) fetchStooqHistory(ctx context.Context, symbol string, start, end time.Time) (*History, error) {
	u := fmt.Sprintf("%s/q/d/l/?s=%s&d1=%s&d2=%s&i=d",
		c.fallbackURL,
		url.QueryEscape(stooqSymbol(symbol)),
		start.Format("20060102"),
		end.Format("20060102"))

	resp, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stooq status %d", resp.StatusCode)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	// 未收录的代码返回"No data"单行
	if len(records) < 2 || len(records[0]) < 5 {
		return nil, ErrNoData
	}

	history := &History{Symbol: symbol}
	for _, record := range records[1:] {
		if len(record) < 5 {
			continue
		}
		closePrice, err := strconv.ParseFloat(record[4], 64)
		if err != nil || closePrice <= 0 {
			continue
		}
		var volume int64
		if len(record) > 5 {
			if v, err := strconv.ParseFloat(record[5], 64); err == nil {
				volume = int64(v)
			}
		}
		history.Dates = append(history.Dates, record[0])
		history.Closes = append(history.Closes, closePrice)
		history.Volumes = append(history.Volumes, volume)
	}
	if len(history.Closes) == 0 {
		return nil, ErrNoData
	}
	return history, nil
}
