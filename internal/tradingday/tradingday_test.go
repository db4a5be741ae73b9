package tradingday_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"stock-advisor-backend/internal/tradingday"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestIsTradingDay_Weekends(t *testing.T) {
	assert.False(t, tradingday.IsTradingDay(day("2025-08-23"))) // 周六
	assert.False(t, tradingday.IsTradingDay(day("2025-08-24"))) // 周日
	assert.True(t, tradingday.IsTradingDay(day("2025-08-22")))  // 周五
}

func TestIsTradingDay_ExchangeHolidays(t *testing.T) {
	holidays := []string{
		"2025-01-01", // 元旦
		"2025-01-20", // 马丁·路德·金纪念日
		"2025-02-17", // 总统日
		"2025-04-18", // 耶稣受难日
		"2025-05-26", // 阵亡将士纪念日
		"2025-06-19",
		"2025-07-04",
		"2025-09-01", // 劳动节
		"2025-11-27", // 感恩节
		"2025-12-25",
	}
	for _, h := range holidays {
		assert.False(t, tradingday.IsTradingDay(day(h)), h)
	}

	assert.True(t, tradingday.IsTradingDay(day("2025-07-03")))
	assert.True(t, tradingday.IsTradingDay(day("2025-11-28")))
}

func TestIsTradingDay_ObservedShift(t *testing.T) {
	// 2021-07-04是周日，顺延到周一休市
	assert.False(t, tradingday.IsTradingDay(day("2021-07-05")))
	// 2021-12-25是周六，平安夜补休
	assert.False(t, tradingday.IsTradingDay(day("2021-12-24")))
	// 2022-01-01是周六，元旦不补休，前一个周五正常交易
	assert.True(t, tradingday.IsTradingDay(day("2021-12-31")))
}

func TestNextTradingDay_SkipsWeekendAndHoliday(t *testing.T) {
	// 2025-04-17周四，次日为耶稣受难日，再往后是周末
	next := tradingday.NextTradingDay(day("2025-04-17"), 1)
	assert.Equal(t, "2025-04-21", next.Format("2006-01-02"))

	next = tradingday.NextTradingDay(day("2025-08-22"), 3)
	assert.Equal(t, "2025-08-27", next.Format("2006-01-02"))
}

func TestLoadCustomClosures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "closures.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"holidays":["2025-08-20"]}`), 0o644))

	require.NoError(t, tradingday.LoadCustomClosures(path))
	assert.False(t, tradingday.IsTradingDay(day("2025-08-20"))) // 周三被临时休市

	// 不存在的文件不算错误
	require.NoError(t, tradingday.LoadCustomClosures(filepath.Join(t.TempDir(), "missing.json")))
}
