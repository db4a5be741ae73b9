package montecarlo

import (
	"math"
	"sort"
)

// 结论文案，按决策表顺序首条命中生效
const (
	ConclusionHigh     = "High expected profitability (with possible high risk)."
	ConclusionModerate = "Moderate profitability with managed risk."
	ConclusionNegative = "Negative expected return — reconsider your allocation."
	ConclusionLow      = "Low expected return; check if risk is worth it."
)

// Report 期末分布的汇总统计，所有数值均为小数（0.15=15%），
// 百分比换算只发生在展示层
type Report struct {
	ExpectedReturn float64 // mean(outcomes)-1
	Volatility     float64 // 期末倍数的总体标准差
	Worst5         float64 // 5%分位数-1，下行风险
	Conclusion     string
}

// Summarize 把期末倍数分布压缩为期望收益、波动率、5%分位和结论
func Summarize(outcomes []float64) Report {
	mean := 0.0
	for _, v := range outcomes {
		mean += v
	}
	mean /= float64(len(outcomes))

	// 总体标准差（除以n），度量期末财富的离散度
	variance := 0.0
	for _, v := range outcomes {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(outcomes))

	expectedReturn := mean - 1
	volatility := math.Sqrt(variance)
	worst5 := percentile(outcomes, 5) - 1

	return Report{
		ExpectedReturn: expectedReturn,
		Volatility:     volatility,
		Worst5:         worst5,
		Conclusion:     Conclude(expectedReturn, volatility),
	}
}

// Conclude 决策表，输入为小数单位的期望收益和波动率
func Conclude(expectedReturn, volatility float64) string {
	switch {
	case expectedReturn > 0.15:
		return ConclusionHigh
	case expectedReturn > 0.05 && volatility < 0.5:
		return ConclusionModerate
	case expectedReturn <= 0:
		return ConclusionNegative
	default:
		return ConclusionLow
	}
}

// percentile 线性插值分位数，p取值0~100
func percentile(values []float64, p float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
