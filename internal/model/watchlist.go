package model

// WatchlistItem 自选股条目
type WatchlistItem struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Ticker    string `json:"ticker"`
	CreatedAt string `json:"created_at"`
}

// AddWatchlistRequest 添加自选股请求，user_id从请求头取
type AddWatchlistRequest struct {
	Ticker string `json:"ticker"`
}

// Holding 持仓
type Holding struct {
	ID            int64   `json:"id"`
	UserID        int64   `json:"user_id"`
	Ticker        string  `json:"ticker"`
	Shares        float64 `json:"shares"`
	PurchasePrice float64 `json:"purchase_price"` // 买入均价
	CreatedAt     string  `json:"created_at"`
}

// AddHoldingRequest 添加持仓请求
type AddHoldingRequest struct {
	Ticker        string  `json:"ticker"`
	Shares        float64 `json:"shares"`
	PurchasePrice float64 `json:"purchase_price"`
}

// HoldingsSummary 持仓估值汇总
type HoldingsSummary struct {
	TotalValue           float64 `json:"total_value"`
	TotalInvested        float64 `json:"total_invested"`
	TotalGainLoss        float64 `json:"total_gain_loss"`
	TotalGainLossPercent float64 `json:"total_gain_loss_percent"`
}
