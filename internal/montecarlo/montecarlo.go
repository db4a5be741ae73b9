package montecarlo

import (
	"context"
)

// Config 模拟参数，构造 Simulator 时显式传入，不依赖任何全局状态
type Config struct {
	TradingDays     int   // 模拟交易日数，默认252
	NumPaths        int   // 模拟路径数，默认10000
	Workers         int   // 并行worker数，默认4
	Seed            int64 // 随机种子，0表示按时间播种
	MinObservations int   // 对齐后最少收益观测数，0表示不限制
}

func (c Config) withDefaults() Config {
	if c.TradingDays <= 0 {
		c.TradingDays = 252
	}
	if c.NumPaths <= 0 {
		c.NumPaths = 10000
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	return c
}

// Simulator 组合收益分布模拟器
type Simulator struct {
	cfg Config
}

// NewSimulator 创建模拟器
func NewSimulator(cfg Config) *Simulator {
	return &Simulator{cfg: cfg.withDefaults()}
}

// Result 一次完整模拟的结果
type Result struct {
	Symbols  []string
	Weights  []float64
	Moments  Moments
	Report   Report
	Outcomes []float64 // 每条路径的期末净值倍数
}

// Run 执行完整流程：对齐收益 -> 估计矩 -> 模拟路径 -> 汇总分布
func (s *Simulator) Run(ctx context.Context, quotes map[string]Series, symbols []string) (*Result, error) {
	matrix, err := BuildReturns(quotes, symbols)
	if err != nil {
		return nil, err
	}
	if s.cfg.MinObservations > 0 && len(matrix.Rows) < s.cfg.MinObservations {
		return nil, ErrNoData
	}

	weights := EqualWeights(len(symbols))
	moments := EstimateMoments(matrix, weights)

	outcomes, err := s.SimulatePaths(ctx, moments.Drift, moments.PortfolioStddev)
	if err != nil {
		return nil, err
	}

	return &Result{
		Symbols:  symbols,
		Weights:  weights,
		Moments:  moments,
		Report:   Summarize(outcomes),
		Outcomes: outcomes,
	}, nil
}
