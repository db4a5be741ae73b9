package montecarlo

import (
	"errors"
	"math"
	"sort"
)

// ErrNoData 数据源有响应但没有可用的行情数据
var ErrNoData = errors.New("no data downloaded")

// Series 单只股票的复权收盘价序列，日期格式 "2006-01-02"
type Series struct {
	Dates  []string
	Closes []float64
}

// ReturnMatrix 对齐后的对数收益率矩阵，行=交易日，列=股票
type ReturnMatrix struct {
	Symbols []string
	Days    []string // 每行收益对应的交易日
	Rows    [][]float64
}

// BuildReturns 将各股票的收盘价序列按日期取交集对齐，
// 计算日简单收益率后做对数变换 ln(1+r)
func BuildReturns(quotes map[string]Series, symbols []string) (*ReturnMatrix, error) {
	if len(symbols) == 0 {
		return nil, ErrNoData
	}

	// 各股票的日期->收盘价索引，非正价格视为缺失
	closeByDate := make([]map[string]float64, len(symbols))
	for i, sym := range symbols {
		series := quotes[sym]
		m := make(map[string]float64, len(series.Closes))
		for j, date := range series.Dates {
			if j < len(series.Closes) && series.Closes[j] > 0 {
				m[date] = series.Closes[j]
			}
		}
		closeByDate[i] = m
	}

	// 严格内连接：只保留所有股票都有价格的日期
	shared := make([]string, 0, len(closeByDate[0]))
	for date := range closeByDate[0] {
		ok := true
		for i := 1; i < len(closeByDate); i++ {
			if _, found := closeByDate[i][date]; !found {
				ok = false
				break
			}
		}
		if ok {
			shared = append(shared, date)
		}
	}
	if len(shared) < 2 {
		return nil, ErrNoData
	}
	sort.Strings(shared)

	// 首行没有前一日价格，收益行数为对齐天数-1
	rows := make([][]float64, len(shared)-1)
	days := make([]string, len(shared)-1)
	for t := 1; t < len(shared); t++ {
		row := make([]float64, len(symbols))
		for i := range symbols {
			prev := closeByDate[i][shared[t-1]]
			curr := closeByDate[i][shared[t]]
			simple := curr/prev - 1
			row[i] = math.Log(1 + simple)
		}
		rows[t-1] = row
		days[t-1] = shared[t]
	}

	return &ReturnMatrix{Symbols: append([]string(nil), symbols...), Days: days, Rows: rows}, nil
}
