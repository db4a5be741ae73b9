package model

// AIAnalyzeRequest AI个股分析请求
type AIAnalyzeRequest struct {
	Ticker   string `json:"ticker"`
	Question string `json:"question"`
	Exchange string `json:"exchange"`
}

// AIStockData 随AI分析返回的行情摘要
type AIStockData struct {
	PreviousClose float64 `json:"previous_close"`
	DayHigh       float64 `json:"day_high"`
	DayLow        float64 `json:"day_low"`
	Volume        int64   `json:"volume"`
	MarketCap     int64   `json:"market_cap"`
	PERatio       float64 `json:"pe_ratio"`
	Sector        string  `json:"sector"`
}

// AIAnalyzeResponse AI个股分析结果
type AIAnalyzeResponse struct {
	Ticker       string      `json:"ticker"`
	CompanyName  string      `json:"company_name"`
	CurrentPrice float64     `json:"current_price"`
	AIAnalysis   string      `json:"ai_analysis"`
	StockData    AIStockData `json:"stock_data"`
}

// AIChatRequest AI对话请求
type AIChatRequest struct {
	Message          string `json:"message"`
	IncludePortfolio bool   `json:"include_portfolio"`
}

// AIChatResponse AI对话结果
type AIChatResponse struct {
	Message                  string `json:"message"`
	Response                 string `json:"response"`
	PortfolioContextIncluded bool   `json:"portfolio_context_included"`
	UserID                   int64  `json:"user_id"`
}

// HoldingBreakdown 单个持仓的估值明细
type HoldingBreakdown struct {
	Ticker       string  `json:"ticker"`
	Shares       float64 `json:"shares"`
	CurrentPrice float64 `json:"current_price"`
	Value        float64 `json:"value"`
	PctOfTotal   float64 `json:"pct_of_total"`
	GainLossPct  float64 `json:"gain_loss_pct"`
}

// PortfolioHealth 组合健康度评估
type PortfolioHealth struct {
	UserID               int64              `json:"user_id"`
	HealthScore          int                `json:"health_score"` // 1-10
	Rating               string             `json:"rating"`
	RiskScore            int                `json:"risk_score"` // 1-10
	RiskLevel            string             `json:"risk_level"` // High/Moderate/Low Risk
	DiversificationScore int                `json:"diversification_score"`
	TotalValue           float64            `json:"total_value"`
	TotalCost            float64            `json:"total_cost"`
	TotalGainLossPct     float64            `json:"total_gain_loss_pct"`
	HoldingsBreakdown    []HoldingBreakdown `json:"holdings_breakdown"` // 按市值降序
}
