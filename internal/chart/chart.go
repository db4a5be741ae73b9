package chart

import (
	"fmt"

	"github.com/vicanso/go-charts/v2"

	"stock-advisor-backend/internal/montecarlo"
)

const histogramBins = 20

// OutcomeHistogram 把模拟终值分桶渲染成PNG直方图，
// 横轴按百分比收益标注
func OutcomeHistogram(result *montecarlo.Result) ([]byte, error) {
	outcomes := result.Outcomes
	if len(outcomes) == 0 {
		return nil, fmt.Errorf("no outcomes to render")
	}

	minV, maxV := outcomes[0], outcomes[0]
	for _, v := range outcomes {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	bins := histogramBins
	if len(outcomes) < bins {
		bins = len(outcomes)
	}

	var counts []float64
	var labels []string
	width := (maxV - minV) / float64(bins)
	if width == 0 {
		// 终值全部相同（零波动），只有一桶
		counts = []float64{float64(len(outcomes))}
		labels = []string{fmt.Sprintf("%.1f%%", (minV-1)*100)}
	} else {
		counts = make([]float64, bins)
		labels = make([]string, bins)
		for _, v := range outcomes {
			idx := int((v - minV) / width)
			if idx >= bins {
				idx = bins - 1
			}
			counts[idx]++
		}
		for i := range labels {
			mid := minV + (float64(i)+0.5)*width
			labels[i] = fmt.Sprintf("%.1f%%", (mid-1)*100)
		}
	}

	title := fmt.Sprintf("Monte Carlo outcomes (%d paths)", len(outcomes))
	subtitle := fmt.Sprintf("Expected: %.2f%% | Volatility: %.2f%% | Worst 5%%: %.2f%%",
		result.Report.ExpectedReturn*100, result.Report.Volatility*100, result.Report.Worst5*100)

	p, err := charts.BarRender(
		[][]float64{counts},
		charts.TitleTextOptionFunc(title+"\n"+subtitle),
		charts.XAxisDataOptionFunc(labels),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(800),
		charts.HeightOptionFunc(400),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return p.Bytes()
}
