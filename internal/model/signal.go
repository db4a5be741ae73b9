package model

// SignalRequest 技术信号请求
type SignalRequest struct {
	Ticker string `json:"ticker"`
}

// SignalResponse RSI+OBV技术信号
type SignalResponse struct {
	Ticker          string  `json:"ticker"`
	CurrentPrice    float64 `json:"current_price"`
	Signal          string  `json:"signal"`           // Bullish, Bearish, Neutral
	SuggestedAction string  `json:"suggested_action"` // Buy or Hold等
	Commentary      string  `json:"commentary"`
}

// ForecastRequest 趋势预测请求
type ForecastRequest struct {
	Ticker string `json:"ticker"`
}

// ForecastPoint 单个预测点
type ForecastPoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// ForecastResponse 7日/14日趋势预测
type ForecastResponse struct {
	Ticker    string        `json:"ticker"`
	LastPrice float64       `json:"last_price"`
	LastDate  string        `json:"last_date"`
	Day7      ForecastPoint `json:"day_7"`
	Day14     ForecastPoint `json:"day_14"`
}
