package statsgen

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"stock-advisor-backend/internal/marketdata"
	"stock-advisor-backend/internal/store"
	"stock-advisor-backend/internal/tradingday"
	"stock-advisor-backend/pkg/marketstats"

	_ "modernc.org/sqlite"
)

// 波动率窗口也是最长的预热窗口，首行从第21个收盘价开始
const (
	rsiPeriod     = 14
	volWindow     = 20
	minHistoryLen = volWindow
)

type Options struct {
	OutputPath       string
	Tickers          []string
	Days             int
	Daemon           bool
	RunAt            string
	RunOnStartup     bool
	RetryCount       int
	RetryIntervalMin int
	Enabled          bool
	Rebuild          bool
	Debug            bool
}

func Execute(args []string) error {
	fs := flag.NewFlagSet("stats_gen", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts Options
	var tickerList string
	fs.StringVar(&opts.OutputPath, "output", "", "")
	fs.StringVar(&tickerList, "tickers", "", "")
	fs.IntVar(&opts.Days, "days", 180, "")
	fs.BoolVar(&opts.Rebuild, "rebuild", false, "")
	fs.BoolVar(&opts.Daemon, "daemon", false, "")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts.Enabled = getEnvBool("STATS_GEN_ENABLED", true)
	if !opts.Enabled {
		statsgenInfof("disabled")
		return nil
	}

	if strings.TrimSpace(opts.OutputPath) == "" {
		opts.OutputPath = os.Getenv("MARKET_STATS_PATH")
	}
	if strings.TrimSpace(opts.OutputPath) == "" {
		opts.OutputPath = "."
	}
	opts.OutputPath = marketstats.ResolvePath(opts.OutputPath)

	if strings.TrimSpace(tickerList) == "" {
		tickerList = os.Getenv("STATS_GEN_TICKERS")
	}
	opts.Tickers = splitTickers(tickerList)

	if opts.Days == 180 {
		opts.Days = getEnvInt("STATS_GEN_DAYS", 180)
	}
	if !opts.Daemon {
		opts.Daemon = getEnvBool("STATS_GEN_DAEMON", false)
	}
	if !opts.Rebuild {
		opts.Rebuild = getEnvBool("STATS_GEN_REBUILD", false)
	}

	opts.RunAt = os.Getenv("STATS_GEN_RUN_AT")
	if strings.TrimSpace(opts.RunAt) == "" {
		opts.RunAt = "17:00"
	}
	opts.RunOnStartup = getEnvBool("STATS_GEN_ON_STARTUP", false)
	opts.RetryCount = getEnvInt("STATS_GEN_RETRY_COUNT", 3)
	opts.RetryIntervalMin = getEnvInt("STATS_GEN_RETRY_INTERVAL", 10)
	opts.Debug = getEnvBool("STATS_GEN_DEBUG", false)

	client := marketdata.NewClient(marketdata.Options{
		BaseURL: os.Getenv("MARKET_DATA_BASE_URL"),
	})

	if opts.Daemon {
		mode := "incremental"
		if opts.Rebuild {
			mode = "rebuild"
		}
		statsgenInfof("daemon mode: mode=%s, output=%s, time=%s, on_startup=%v",
			mode, opts.OutputPath, opts.RunAt, opts.RunOnStartup)
		RunDailyDaemon(client, opts)
		return nil
	}

	rows, err := GenerateOnce(client, opts)
	if err != nil {
		return err
	}
	statsgenInfof("done: output=%s, rows=%d", opts.OutputPath, rows)
	return nil
}

func RunDailyDaemon(client *marketdata.Client, opts Options) {
	hour, minute, err := parseHHMM(opts.RunAt)
	if err != nil {
		log.Fatalf("invalid STATS_GEN_RUN_AT: %v", err)
	}

	if opts.RunOnStartup {
		runWithRetry(client, opts)
	}

	for {
		now := time.Now()
		nextRun := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		if now.After(nextRun) {
			nextRun = nextRun.Add(24 * time.Hour)
		}
		for !tradingday.IsTradingDay(nextRun) {
			nextRun = nextRun.Add(24 * time.Hour)
		}
		d := nextRun.Sub(now)
		statsgenInfof("next run: %s (in %v)", nextRun.Format("2006-01-02 15:04:05"), d.Round(time.Minute))
		time.Sleep(d)
		runWithRetry(client, opts)
	}
}

func runWithRetry(client *marketdata.Client, opts Options) {
	for i := 0; i <= opts.RetryCount; i++ {
		if i > 0 {
			statsgenInfof("retry=%d", i)
		} else {
			statsgenInfof("start")
		}

		rows, err := GenerateOnce(client, opts)
		if err == nil {
			statsgenInfof("done: output=%s, rows=%d", opts.OutputPath, rows)
			return
		}
		statsgenErrorf("failed: %v", err)
		if i < opts.RetryCount {
			statsgenInfof("retry in %d min", opts.RetryIntervalMin)
			time.Sleep(time.Duration(opts.RetryIntervalMin) * time.Minute)
		}
	}
	statsgenErrorf("failed after retries=%d", opts.RetryCount)
}

func GenerateOnce(client *marketdata.Client, opts Options) (int, error) {
	if opts.Rebuild {
		return generateRebuild(client, opts)
	}
	return generateIncremental(client, opts)
}

func generateRebuild(client *marketdata.Client, opts Options) (int, error) {
	statsgenInfof("start: mode=rebuild, output=%s, tickers=%d, days=%d, debug=%v",
		opts.OutputPath, len(opts.Tickers), opts.Days, opts.Debug)
	if err := os.MkdirAll(filepath.Dir(opts.OutputPath), 0o755); err != nil {
		return 0, fmt.Errorf("创建输出目录失败: %w", err)
	}

	tmpPath := opts.OutputPath + ".tmp"
	_ = os.Remove(tmpPath)

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s", filepath.ToSlash(tmpPath)))
	if err != nil {
		return 0, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=OFF;"); err != nil {
		_ = db.Close()
		return 0, err
	}
	if _, err := db.Exec("PRAGMA synchronous=OFF;"); err != nil {
		_ = db.Close()
		return 0, err
	}
	if err := marketstats.EnsureSchema(db); err != nil {
		_ = db.Close()
		return 0, err
	}

	tx, err := db.Begin()
	if err != nil {
		_ = db.Close()
		return 0, err
	}

	stmt, err := tx.Prepare(`
INSERT OR REPLACE INTO market_stats(
  ticker, trade_date, close, return_1d, volatility_20, rsi_14, volume
) VALUES (?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		_ = tx.Rollback()
		_ = db.Close()
		return 0, err
	}
	defer stmt.Close()

	tickers, err := resolveTickers(opts)
	if err != nil {
		_ = tx.Rollback()
		_ = db.Close()
		return 0, err
	}

	written := 0
	tickersWritten := 0
	tickersSkipped := 0
	startAt := time.Now()
	ctx := context.Background()
	for idx, ticker := range tickers {
		history, err := client.AdjustedClose(ctx, ticker, fetchStart(opts.Days))
		if err != nil || len(history.Closes) < minHistoryLen+1 {
			tickersSkipped++
			statsgenDebugf(opts.Debug, "skip ticker=%s reason=insufficient_history", ticker)
			continue
		}

		end := len(history.Closes) - 1
		start := minHistoryLen
		if opts.Days > 0 {
			if cand := end - opts.Days + 1; cand > start {
				start = cand
			}
		}

		tickerStartWritten := written
		for i := start; i <= end; i++ {
			row, ok := statAt(history, i)
			if !ok {
				continue
			}
			if _, err := stmt.Exec(
				ticker,
				row.TradeDate,
				row.Close,
				row.Return1D,
				row.Volatility20,
				row.RSI14,
				row.Volume,
			); err != nil {
				_ = tx.Rollback()
				_ = db.Close()
				_ = os.Remove(tmpPath)
				return 0, err
			}
			written++
		}

		tickerWritten := written - tickerStartWritten
		if tickerWritten > 0 {
			tickersWritten++
		}
		statsgenDebugf(opts.Debug, "ticker=%s wrote=%d", ticker, tickerWritten)

		if (idx+1)%10 == 0 {
			elapsed := time.Since(startAt)
			statsgenInfof("progress: %d/%d tickers, rows=%d, elapsed=%s",
				idx+1, len(tickers), written, elapsed.Truncate(time.Second))
		}
	}

	if err := tx.Commit(); err != nil {
		_ = db.Close()
		_ = os.Remove(tmpPath)
		return 0, err
	}
	if err := db.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return 0, err
	}
	if err := os.Rename(tmpPath, opts.OutputPath); err != nil {
		_ = os.Remove(tmpPath)
		return 0, err
	}
	statsgenInfof("done: mode=rebuild, tickers=%d, tickers_written=%d, tickers_skipped=%d, rows=%d, elapsed=%s",
		len(tickers), tickersWritten, tickersSkipped, written, time.Since(startAt).Truncate(time.Second))
	return written, nil
}

func generateIncremental(client *marketdata.Client, opts Options) (int, error) {
	statsgenInfof("start: mode=incremental, output=%s, tickers=%d, days=%d, debug=%v",
		opts.OutputPath, len(opts.Tickers), opts.Days, opts.Debug)
	if err := os.MkdirAll(filepath.Dir(opts.OutputPath), 0o755); err != nil {
		return 0, fmt.Errorf("创建输出目录失败: %w", err)
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s", filepath.ToSlash(opts.OutputPath)))
	if err != nil {
		return 0, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=OFF;"); err != nil {
		_ = db.Close()
		return 0, err
	}
	if _, err := db.Exec("PRAGMA synchronous=OFF;"); err != nil {
		_ = db.Close()
		return 0, err
	}
	if err := marketstats.EnsureSchema(db); err != nil {
		_ = db.Close()
		return 0, err
	}

	tx, err := db.Begin()
	if err != nil {
		_ = db.Close()
		return 0, err
	}

	stmt, err := tx.Prepare(`
INSERT OR REPLACE INTO market_stats(
  ticker, trade_date, close, return_1d, volatility_20, rsi_14, volume
) VALUES (?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		_ = tx.Rollback()
		_ = db.Close()
		return 0, err
	}
	defer stmt.Close()

	maxDateStmt, err := tx.Prepare("SELECT MAX(trade_date) FROM market_stats WHERE ticker = ?")
	if err != nil {
		_ = tx.Rollback()
		_ = db.Close()
		return 0, err
	}
	defer maxDateStmt.Close()

	tickers, err := resolveTickers(opts)
	if err != nil {
		_ = tx.Rollback()
		_ = db.Close()
		return 0, err
	}

	firstIndexAfter := func(dates []string, d string) int {
		if strings.TrimSpace(d) == "" {
			return 0
		}
		for i := 0; i < len(dates); i++ {
			if dates[i] > d {
				return i
			}
		}
		return len(dates)
	}

	written := 0
	tickersWritten := 0
	tickersSkipped := 0
	startAt := time.Now()
	ctx := context.Background()
	for idx, ticker := range tickers {
		history, err := client.AdjustedClose(ctx, ticker, fetchStart(opts.Days))
		if err != nil || len(history.Closes) < minHistoryLen+1 {
			tickersSkipped++
			statsgenDebugf(opts.Debug, "skip ticker=%s reason=insufficient_history", ticker)
			continue
		}

		var lastDate sql.NullString
		if err := maxDateStmt.QueryRow(ticker).Scan(&lastDate); err != nil {
			_ = tx.Rollback()
			_ = db.Close()
			return 0, err
		}
		lastDateStr := ""
		if lastDate.Valid {
			lastDateStr = lastDate.String
		}

		end := len(history.Closes) - 1
		start := minHistoryLen
		if opts.Days > 0 {
			if cand := end - opts.Days + 1; cand > start {
				start = cand
			}
		}
		if lastDate.Valid {
			if cand := firstIndexAfter(history.Dates, lastDate.String); cand > start {
				start = cand
			}
		}
		if start < minHistoryLen {
			start = minHistoryLen
		}
		if start > end {
			tickersSkipped++
			statsgenDebugf(opts.Debug, "skip ticker=%s last_date=%s reason=no_new_trade_date", ticker, lastDateStr)
			continue
		}

		tickerStartWritten := written
		for i := start; i <= end; i++ {
			row, ok := statAt(history, i)
			if !ok {
				continue
			}
			if _, err := stmt.Exec(
				ticker,
				row.TradeDate,
				row.Close,
				row.Return1D,
				row.Volatility20,
				row.RSI14,
				row.Volume,
			); err != nil {
				_ = tx.Rollback()
				_ = db.Close()
				return 0, err
			}
			written++
		}

		tickerWritten := written - tickerStartWritten
		if tickerWritten > 0 {
			tickersWritten++
		}
		statsgenDebugf(opts.Debug, "ticker=%s last_date=%s wrote=%d", ticker, lastDateStr, tickerWritten)

		if (idx+1)%10 == 0 {
			elapsed := time.Since(startAt)
			statsgenInfof("progress: %d/%d tickers, rows=%d, elapsed=%s",
				idx+1, len(tickers), written, elapsed.Truncate(time.Second))
		}
	}

	if err := tx.Commit(); err != nil {
		_ = db.Close()
		return 0, err
	}
	if err := db.Close(); err != nil {
		return 0, err
	}
	statsgenInfof("done: mode=incremental, tickers=%d, tickers_written=%d, tickers_skipped=%d, rows=%d, elapsed=%s",
		len(tickers), tickersWritten, tickersSkipped, written, time.Since(startAt).Truncate(time.Second))
	return written, nil
}

// statAt 计算第i个交易日的统计行，预热不足时ok为false
func statAt(history *marketdata.History, i int) (marketstats.Stat, bool) {
	if i < minHistoryLen || i >= len(history.Closes) {
		return marketstats.Stat{}, false
	}
	closes := history.Closes
	if closes[i] <= 0 || closes[i-1] <= 0 {
		return marketstats.Stat{}, false
	}

	var volume int64
	if i < len(history.Volumes) {
		volume = history.Volumes[i]
	}

	return marketstats.Stat{
		TradeDate:    history.Dates[i],
		Close:        closes[i],
		Return1D:     (closes[i] - closes[i-1]) / closes[i-1],
		Volatility20: volatilityAt(closes, i, volWindow),
		RSI14:        rsiAt(closes, i, rsiPeriod),
		Volume:       volume,
	}, true
}

// rsiAt 截至第i天的RSI，涨跌幅取简单均值
func rsiAt(closes []float64, i, period int) float64 {
	var gains, losses float64
	for j := i - period + 1; j <= i; j++ {
		delta := closes[j] - closes[j-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// volatilityAt 截至第i天的window个对数收益的样本标准差
func volatilityAt(closes []float64, i, window int) float64 {
	rets := make([]float64, 0, window)
	for j := i - window + 1; j <= i; j++ {
		if closes[j-1] <= 0 || closes[j] <= 0 {
			return 0
		}
		rets = append(rets, math.Log(closes[j]/closes[j-1]))
	}
	var mean float64
	for _, r := range rets {
		mean += r
	}
	mean /= float64(len(rets))
	var ss float64
	for _, r := range rets {
		d := r - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(rets)-1))
}

// fetchStart 按交易日数折算取数起点，多留预热和节假日余量
func fetchStart(days int) time.Time {
	calendar := (days+minHistoryLen)*7/5 + 30
	return time.Now().AddDate(0, 0, -calendar)
}

// resolveTickers 没传-tickers时回退到全体用户的自选股
func resolveTickers(opts Options) ([]string, error) {
	if len(opts.Tickers) > 0 {
		tickers := append([]string(nil), opts.Tickers...)
		sort.Strings(tickers)
		return tickers, nil
	}

	dbPath := os.Getenv("STORE_DB_PATH")
	if dbPath == "" {
		dbPath = "finance_app.sqlite3"
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("打开用户库失败: %w", err)
	}
	defer st.Close()

	tickers, err := st.ListWatchlistTickers()
	if err != nil {
		return nil, fmt.Errorf("读取自选股失败: %w", err)
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("没有可生成的股票代码: -tickers为空且自选股为空")
	}
	return tickers, nil
}

func splitTickers(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToUpper(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func statsgenInfof(format string, args ...any) {
	log.Printf("[INFO][stats-gen] "+format, args...)
}

func statsgenErrorf(format string, args ...any) {
	log.Printf("[ERROR][stats-gen] "+format, args...)
}

func statsgenDebugf(enabled bool, format string, args ...any) {
	if !enabled {
		return
	}
	log.Printf("[DEBUG][stats-gen] "+format, args...)
}

func parseHHMM(s string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time format")
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid hour/minute")
	}
	return h, m, nil
}

func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
