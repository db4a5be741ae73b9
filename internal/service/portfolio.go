package service

import (
	"context"
	"math"
	"sort"
	"sync"

	"stock-advisor-backend/internal/model"
)

// PortfolioHealth 评估用户组合：并发取现价算出各持仓市值，
// 再按持仓数量、集中度和整体盈亏打分（1-10）
func PortfolioHealth(ctx context.Context, userID int64) (*model.PortfolioHealth, error) {
	holdings, err := db.ListHoldings(userID)
	if err != nil {
		return nil, err
	}
	if len(holdings) == 0 {
		return &model.PortfolioHealth{
			UserID:            userID,
			HealthScore:       0,
			Rating:            "No Portfolio",
			HoldingsBreakdown: []model.HoldingBreakdown{},
		}, nil
	}

	prices := fetchCurrentPrices(ctx, holdings)

	var totalValue, totalCost float64
	breakdown := make([]model.HoldingBreakdown, 0, len(holdings))
	for _, h := range holdings {
		price := prices[h.Ticker]
		if price <= 0 {
			price = h.PurchasePrice
		}
		value := price * h.Shares
		totalValue += value
		totalCost += h.PurchasePrice * h.Shares

		gainLossPct := 0.0
		if h.PurchasePrice > 0 {
			gainLossPct = (price - h.PurchasePrice) / h.PurchasePrice * 100
		}
		breakdown = append(breakdown, model.HoldingBreakdown{
			Ticker:       h.Ticker,
			Shares:       h.Shares,
			CurrentPrice: round2(price),
			Value:        round2(value),
			GainLossPct:  round2(gainLossPct),
		})
	}

	for i := range breakdown {
		if totalValue > 0 {
			breakdown[i].PctOfTotal = round2(breakdown[i].Value / totalValue * 100)
		}
	}
	sort.Slice(breakdown, func(i, j int) bool {
		return breakdown[i].Value > breakdown[j].Value
	})

	score := 5
	switch {
	case len(holdings) >= 5:
		score += 2
	case len(holdings) >= 3:
		score++
	default:
		score--
	}

	maxPct := 0.0
	if len(breakdown) > 0 {
		maxPct = breakdown[0].PctOfTotal
	}
	if totalValue > 0 {
		switch {
		case maxPct <= 30:
			score += 2
		case maxPct <= 50:
			score++
		default:
			score--
		}
	}

	gainLossPct := 0.0
	if totalCost > 0 {
		gainLossPct = (totalValue - totalCost) / totalCost * 100
		switch {
		case gainLossPct > 20:
			score += 2
		case gainLossPct > 0:
			score++
		case gainLossPct < -20:
			score -= 2
		default:
			score--
		}
	}

	if score < 1 {
		score = 1
	} else if score > 10 {
		score = 10
	}

	rating := "Needs Attention"
	switch {
	case score >= 8:
		rating = "Excellent"
	case score >= 6:
		rating = "Good"
	case score >= 4:
		rating = "Fair"
	}

	diversification := 3
	switch {
	case maxPct <= 20:
		diversification = 9
	case maxPct <= 35:
		diversification = 7
	case maxPct <= 50:
		diversification = 5
	}

	// 集中度越高、持仓越少风险越大
	concentrationRisk := 1
	if maxPct > 50 {
		concentrationRisk = 3
	} else if maxPct > 30 {
		concentrationRisk = 2
	}
	riskScore := concentrationRisk + (5 - len(holdings))
	if riskScore < 1 {
		riskScore = 1
	} else if riskScore > 10 {
		riskScore = 10
	}
	riskLevel := "Low Risk"
	switch {
	case riskScore >= 7:
		riskLevel = "High Risk"
	case riskScore >= 4:
		riskLevel = "Moderate Risk"
	}

	return &model.PortfolioHealth{
		UserID:               userID,
		HealthScore:          score,
		Rating:               rating,
		RiskScore:            riskScore,
		RiskLevel:            riskLevel,
		DiversificationScore: diversification,
		TotalValue:           round2(totalValue),
		TotalCost:            round2(totalCost),
		TotalGainLossPct:     round2(gainLossPct),
		HoldingsBreakdown:    breakdown,
	}, nil
}

// fetchCurrentPrices 并发取各持仓的现价，失败的代码留零，
// 调用方回退到买入价
func fetchCurrentPrices(ctx context.Context, holdings []model.Holding) map[string]float64 {
	tickers := make(map[string]struct{}, len(holdings))
	for _, h := range holdings {
		tickers[h.Ticker] = struct{}{}
	}

	prices := make(map[string]float64, len(tickers))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for ticker := range tickers {
		wg.Add(1)
		go func(ticker string) {
			defer wg.Done()

			quote, err := market.GetQuote(ctx, ticker)
			if err != nil {
				return
			}
			mu.Lock()
			prices[ticker] = quote.Price
			mu.Unlock()
		}(ticker)
	}
	wg.Wait()

	return prices
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
