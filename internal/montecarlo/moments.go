package montecarlo

import "math"

// Moments 组合层面的统计矩
type Moments struct {
	PortfolioMean   float64 // 加权日均对数收益
	PortfolioStddev float64 // 组合日波动率 sqrt(wᵀΣw)
	Drift           float64 // 漂移项 mean - 0.5*stddev²
}

// EqualWeights 等权重向量，各分量为1/N
func EqualWeights(n int) []float64 {
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1.0 / float64(n)
	}
	return weights
}

// EstimateMoments 由对数收益率矩阵和权重向量计算组合均值、波动率和漂移。
// 协方差使用无偏样本估计（除以n-1），权重可以是任意求和为1的向量
func EstimateMoments(m *ReturnMatrix, weights []float64) Moments {
	cols := len(m.Symbols)
	rows := len(m.Rows)

	// 各股票的日均对数收益
	means := make([]float64, cols)
	for j := 0; j < cols; j++ {
		sum := 0.0
		for i := 0; i < rows; i++ {
			sum += m.Rows[i][j]
		}
		means[j] = sum / float64(rows)
	}

	portfolioMean := 0.0
	for j := 0; j < cols; j++ {
		portfolioMean += weights[j] * means[j]
	}

	// 样本协方差矩阵，观测不足2行时视为零矩阵（退化但合法）
	variance := 0.0
	if rows >= 2 {
		cov := make([][]float64, cols)
		for j := range cov {
			cov[j] = make([]float64, cols)
		}
		for j := 0; j < cols; j++ {
			for k := j; k < cols; k++ {
				sum := 0.0
				for i := 0; i < rows; i++ {
					sum += (m.Rows[i][j] - means[j]) * (m.Rows[i][k] - means[k])
				}
				c := sum / float64(rows-1)
				cov[j][k] = c
				cov[k][j] = c
			}
		}

		// 二次型 wᵀΣw，浮点误差可能产生极小负值，截断到0
		for j := 0; j < cols; j++ {
			for k := 0; k < cols; k++ {
				variance += weights[j] * cov[j][k] * weights[k]
			}
		}
		if variance < 0 {
			variance = 0
		}
	}

	stddev := math.Sqrt(variance)
	return Moments{
		PortfolioMean:   portfolioMean,
		PortfolioStddev: stddev,
		Drift:           portfolioMean - 0.5*stddev*stddev,
	}
}
