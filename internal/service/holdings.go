package service

import (
	"context"
	"errors"

	"stock-advisor-backend/internal/model"
	"stock-advisor-backend/internal/store"
)

// AddHolding 添加持仓，同代码已有持仓时合并数量并摊平买入均价
func AddHolding(userID int64, ticker string, shares, purchasePrice float64) (*model.Holding, error) {
	existing, err := db.GetHoldingByTicker(userID, ticker)
	switch {
	case err == nil:
		newShares := existing.Shares + shares
		newPrice := (existing.Shares*existing.PurchasePrice + shares*purchasePrice) / newShares
		if err := db.UpdateHolding(existing.ID, newShares, newPrice); err != nil {
			return nil, err
		}
		existing.Shares = newShares
		existing.PurchasePrice = newPrice
		return existing, nil
	case errors.Is(err, store.ErrNotFound):
		return db.AddHolding(userID, ticker, shares, purchasePrice)
	default:
		return nil, err
	}
}

// HoldingsOverview 持仓列表加实时估值汇总，取价失败退回买入价
func HoldingsOverview(ctx context.Context, userID int64) ([]model.Holding, *model.HoldingsSummary, error) {
	holdings, err := db.ListHoldings(userID)
	if err != nil {
		return nil, nil, err
	}
	if len(holdings) == 0 {
		return holdings, nil, nil
	}

	prices := fetchCurrentPrices(ctx, holdings)

	var totalValue, totalInvested float64
	for _, h := range holdings {
		price := prices[h.Ticker]
		if price <= 0 {
			price = h.PurchasePrice
		}
		totalValue += h.Shares * price
		totalInvested += h.Shares * h.PurchasePrice
	}

	gainLoss := totalValue - totalInvested
	summary := &model.HoldingsSummary{
		TotalValue:    round2(totalValue),
		TotalInvested: round2(totalInvested),
		TotalGainLoss: round2(gainLoss),
	}
	if totalInvested != 0 {
		summary.TotalGainLossPercent = round2(gainLoss / totalInvested * 100)
	}
	return holdings, summary, nil
}
