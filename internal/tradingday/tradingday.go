package tradingday

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

var (
	cacheMu       sync.RWMutex
	yearHolidays  = make(map[int]map[string]bool)
	customClosure = make(map[string]bool)
)

// LoadCustomClosures 从JSON文件加载临时休市日
// 文件格式：{"holidays": ["2025-01-09", ...]}
func LoadCustomClosures(filePath string) error {
	if filePath == "" {
		return nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // 文件不存在不算错误
		}
		return fmt.Errorf("读取休市配置文件失败: %v", err)
	}

	var config struct {
		Holidays []string `json:"holidays"`
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("解析休市配置文件失败: %v", err)
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()
	for _, date := range config.Holidays {
		customClosure[date] = true
	}

	log.Printf("[INFO][TradingDay] 加载临时休市配置: %d天", len(config.Holidays))
	return nil
}

// IsTradingDay 判断是否为美股交易日：非周末、非交易所假日、非临时休市
func IsTradingDay(date time.Time) bool {
	wd := date.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}

	dateStr := date.Format("2006-01-02")

	cacheMu.RLock()
	custom := customClosure[dateStr]
	cacheMu.RUnlock()
	if custom {
		return false
	}

	return !holidaysFor(date.Year())[dateStr]
}

// IsTradingDayNow 判断今天是否为交易日
func IsTradingDayNow() bool {
	return IsTradingDay(time.Now())
}

// NextTradingDay 从from起往后数第n个交易日
func NextTradingDay(from time.Time, n int) time.Time {
	d := from
	for count := 0; count < n; {
		d = d.AddDate(0, 0, 1)
		if IsTradingDay(d) {
			count++
		}
	}
	return d
}

func holidaysFor(year int) map[string]bool {
	cacheMu.RLock()
	holidays, ok := yearHolidays[year]
	cacheMu.RUnlock()
	if ok {
		return holidays
	}

	holidays = buildHolidays(year)
	cacheMu.Lock()
	yearHolidays[year] = holidays
	cacheMu.Unlock()
	return holidays
}

// buildHolidays 计算某一年的交易所假日表
func buildHolidays(year int) map[string]bool {
	holidays := make(map[string]bool)
	add := func(d time.Time) {
		holidays[d.Format("2006-01-02")] = true
	}

	// 元旦：落在周六时当年不补休
	newYear := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	switch newYear.Weekday() {
	case time.Sunday:
		add(newYear.AddDate(0, 0, 1))
	case time.Saturday:
	default:
		add(newYear)
	}

	add(nthWeekday(year, time.January, time.Monday, 3))  // 马丁·路德·金纪念日
	add(nthWeekday(year, time.February, time.Monday, 3)) // 总统日
	add(easterSunday(year).AddDate(0, 0, -2))            // 耶稣受难日
	add(lastWeekday(year, time.May, time.Monday))        // 阵亡将士纪念日
	add(observed(time.Date(year, time.June, 19, 0, 0, 0, 0, time.UTC)))
	add(observed(time.Date(year, time.July, 4, 0, 0, 0, 0, time.UTC)))
	add(nthWeekday(year, time.September, time.Monday, 1))   // 劳动节
	add(nthWeekday(year, time.November, time.Thursday, 4))  // 感恩节
	add(observed(time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC)))

	return holidays
}

// observed 周六提前到周五、周日顺延到周一
func observed(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	}
	return d
}

func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(weekday) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset+(n-1)*7)
}

func lastWeekday(year int, month time.Month, weekday time.Weekday) time.Time {
	d := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	offset := (int(d.Weekday()) - int(weekday) + 7) % 7
	return d.AddDate(0, 0, -offset)
}

// easterSunday 格里高利历复活节（Meeus算法）
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
