package service

import (
	"context"
	"errors"
	"strings"

	"stock-advisor-backend/internal/marketdata"
)

// ErrTickerNotFound 概况接口查无此代码
var ErrTickerNotFound = errors.New("ticker not found")

// ResolveSymbol 拼接交易所后缀，美股或留空不加
func ResolveSymbol(ticker, exchange string) string {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	exchange = strings.ToUpper(strings.TrimSpace(exchange))
	if exchange == "" || exchange == "US" {
		return ticker
	}
	return ticker + "." + exchange
}

// AnalyzeTicker 个股概况：报价快照加公司概况，缺失字段一律填"N/A"
func AnalyzeTicker(ctx context.Context, ticker, exchange string) (map[string]any, error) {
	symbol := ResolveSymbol(ticker, exchange)

	quote, err := market.GetQuote(ctx, symbol)
	if err != nil {
		if errors.Is(err, marketdata.ErrNotFound) || errors.Is(err, marketdata.ErrNoData) {
			return nil, ErrTickerNotFound
		}
		return nil, err
	}

	// 概况接口经常被限流，取不到就全部N/A
	profile, err := market.GetProfile(ctx, symbol)
	if err != nil {
		profile = &marketdata.Profile{}
	}

	changePercent := any("N/A")
	if quote.Price > 0 && quote.PreviousClose > 0 {
		changePercent = round2((quote.Price - quote.PreviousClose) / quote.PreviousClose * 100)
	}

	return map[string]any{
		"ticker":         naString(firstNonEmpty(quote.Symbol, symbol)),
		"company_name":   naString(firstNonEmpty(quote.Name, profile.Name, strings.ToUpper(strings.TrimSpace(ticker)))),
		"exchange":       naString(firstNonEmpty(quote.Exchange, strings.ToUpper(strings.TrimSpace(exchange)))),
		"last_price":     naFloat(quote.Price),
		"previous_close": naFloat(quote.PreviousClose),
		"open_price":     naFloat(quote.Open),
		"day_high":       naFloat(quote.DayHigh),
		"day_low":        naFloat(quote.DayLow),
		"volume":         naInt(quote.Volume),
		"change_percent": changePercent,
		"market_cap":     naInt(profile.MarketCap),
		"sector":         naString(profile.Sector),
		"industry":       naString(profile.Industry),
		"employees":      naInt(profile.Employees),
		"summary":        naString(profile.Summary),
	}, nil
}

func naString(s string) any {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func naFloat(v float64) any {
	if v == 0 {
		return "N/A"
	}
	return v
}

func naInt(v int64) any {
	if v == 0 {
		return "N/A"
	}
	return v
}
