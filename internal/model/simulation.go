package model

import "time"

// SimulationRequest 蒙特卡洛模拟请求
type SimulationRequest struct {
	Stocks      []string `json:"stocks"`
	StartDate   string   `json:"start_date"`   // 默认2021-01-01
	NumPaths    int      `json:"num_paths"`    // 默认10000
	TradingDays int      `json:"trading_days"` // 默认252
}

// SimulationResponse 模拟结果，数值均为小数单位并保留4位
type SimulationResponse struct {
	Stocks         []string  `json:"stocks"`
	Weights        []float64 `json:"weights"`
	ExpectedReturn float64   `json:"expected_return"`
	Volatility     float64   `json:"volatility"`
	Worst5Percent  float64   `json:"worst_5_percent"`
	Conclusion     string    `json:"conclusion"`
}

// SimulationTaskStatus 异步模拟任务状态
type SimulationTaskStatus struct {
	TaskID    string              `json:"task_id"`
	Status    string              `json:"status"` // pending, running, done, failed, canceled
	Error     string              `json:"error,omitempty"`
	Result    *SimulationResponse `json:"result,omitempty"`
	ExpiresAt time.Time           `json:"expires_at"`
}
