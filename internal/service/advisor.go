package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stock-advisor-backend/internal/advisor"
	"stock-advisor-backend/internal/marketdata"
	"stock-advisor-backend/internal/model"
	"stock-advisor-backend/pkg/marketstats"
)

// ErrStockNotFound AI分析请求的代码查不到行情
var ErrStockNotFound = errors.New("stock not found")

// resolveAISymbol 印度市场的代码加交易所后缀，美股直接用原始代码
func resolveAISymbol(ticker, exchange string) string {
	switch exchange {
	case "NS", "BO":
		return ticker + "." + exchange
	default:
		return ticker
	}
}

// AnalyzeStockAI 拉取行情和公司概况喂给模型，生成个股分析
func AnalyzeStockAI(ctx context.Context, req *model.AIAnalyzeRequest) (*model.AIAnalyzeResponse, error) {
	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	exchange := strings.ToUpper(strings.TrimSpace(req.Exchange))
	if exchange == "" {
		exchange = "NS"
	}
	symbol := resolveAISymbol(ticker, exchange)

	quote, err := market.GetQuote(ctx, symbol)
	if err != nil {
		if errors.Is(err, marketdata.ErrNotFound) || errors.Is(err, marketdata.ErrNoData) {
			return nil, ErrStockNotFound
		}
		return nil, err
	}

	// 公司概况拿不到就不放进上下文
	profile, err := market.GetProfile(ctx, symbol)
	if err != nil {
		profile = &marketdata.Profile{}
	}

	sc := advisor.StockContext{
		Symbol:        quote.Symbol,
		Company:       firstNonEmpty(quote.Name, profile.Name, ticker),
		CurrentPrice:  quote.Price,
		PreviousClose: quote.PreviousClose,
		DayHigh:       quote.DayHigh,
		DayLow:        quote.DayLow,
		Volume:        quote.Volume,
		MarketCap:     profile.MarketCap,
		PERatio:       profile.PERatio,
		Sector:        profile.Sector,
		Industry:      profile.Industry,
		Week52High:    quote.Week52High,
		Week52Low:     quote.Week52Low,
	}
	if statsDBPath != "" {
		if stats, err := marketstats.QueryRecent(statsDBPath, ticker, 5); err == nil {
			sc.RecentStats = stats
		}
	}

	analysis, err := advisor.AnalyzeStock(ctx, sc, strings.TrimSpace(req.Question))
	if err != nil {
		return nil, err
	}

	return &model.AIAnalyzeResponse{
		Ticker:       ticker,
		CompanyName:  sc.Company,
		CurrentPrice: quote.Price,
		AIAnalysis:   analysis,
		StockData: model.AIStockData{
			PreviousClose: quote.PreviousClose,
			DayHigh:       quote.DayHigh,
			DayLow:        quote.DayLow,
			Volume:        quote.Volume,
			MarketCap:     profile.MarketCap,
			PERatio:       profile.PERatio,
			Sector:        profile.Sector,
		},
	}, nil
}

// ChatAI 理财对话，include_portfolio时附带当前持仓摘要
func ChatAI(ctx context.Context, userID int64, req *model.AIChatRequest) (*model.AIChatResponse, error) {
	portfolioContext := ""
	if req.IncludePortfolio {
		portfolioContext = buildPortfolioContext(ctx, userID)
	}

	response, err := advisor.Chat(ctx, req.Message, portfolioContext)
	if err != nil {
		return nil, err
	}

	return &model.AIChatResponse{
		Message:                  req.Message,
		Response:                 response,
		PortfolioContextIncluded: portfolioContext != "",
		UserID:                   userID,
	}, nil
}

// buildPortfolioContext 组合摘要文本，取不到或没有持仓时返回空串
func buildPortfolioContext(ctx context.Context, userID int64) string {
	health, err := PortfolioHealth(ctx, userID)
	if err != nil || len(health.HoldingsBreakdown) == 0 {
		return ""
	}

	gainLoss := health.TotalValue - health.TotalCost
	sign := ""
	if gainLoss >= 0 {
		sign = "+"
	}
	top := health.HoldingsBreakdown[0]

	var b strings.Builder
	b.WriteString("User's Current Portfolio:\n")
	fmt.Fprintf(&b, "- Total Portfolio Value: $%.2f\n", health.TotalValue)
	fmt.Fprintf(&b, "- Total Invested: $%.2f\n", health.TotalCost)
	fmt.Fprintf(&b, "- Portfolio Health Score: %d/10 (%s)\n", health.HealthScore, health.Rating)
	fmt.Fprintf(&b, "- Risk Level: %s\n", health.RiskLevel)
	fmt.Fprintf(&b, "- Diversification Score: %d/10\n", health.DiversificationScore)
	fmt.Fprintf(&b, "- Top Holding: %s (%.2f%% of portfolio)\n", top.Ticker, top.PctOfTotal)
	fmt.Fprintf(&b, "- Performance: %.2f%% (%s$%.2f)\n", health.TotalGainLossPct, sign, gainLoss)
	b.WriteString("\nHoldings:\n")
	for _, h := range health.HoldingsBreakdown {
		fmt.Fprintf(&b, "- %s: %g shares, Gain/Loss: %.2f%%\n", h.Ticker, h.Shares, h.GainLossPct)
	}
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
