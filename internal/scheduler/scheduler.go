package scheduler

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"stock-advisor-backend/internal/config"
	"stock-advisor-backend/internal/service"
	"stock-advisor-backend/internal/tradingday"
)

// Start 启动收盘后自选股行情预热任务
func Start(cfg *config.Config) {
	if !cfg.Scheduler.Enabled {
		log.Println("收盘后自选股预热任务已禁用")
		return
	}

	hour, minute := parseRunAt(cfg.Scheduler.RunAt)
	retryCount := cfg.Scheduler.RetryCount
	retryInterval := cfg.Scheduler.RetryInterval

	log.Printf("收盘后自选股预热任务已启动，执行时间: %02d:%02d，重试次数: %d，重试间隔: %v",
		hour, minute, retryCount, retryInterval)

	go func() {
		for {
			now := time.Now()

			// 计算下次执行时间
			nextRun := time.Date(now.Year(), now.Month(), now.Day(),
				hour, minute, 0, 0, now.Location())
			if now.After(nextRun) {
				nextRun = nextRun.Add(24 * time.Hour)
			}
			// 跳过周末和休市日
			for !tradingday.IsTradingDay(nextRun) {
				nextRun = nextRun.Add(24 * time.Hour)
			}

			duration := nextRun.Sub(now)
			log.Printf("下次自选股预热时间: %s（%v后）",
				nextRun.Format("2006-01-02 15:04:05"), duration.Round(time.Minute))
			time.Sleep(duration)

			RefreshWatchlist(retryCount, retryInterval)
		}
	}()
}

// RefreshWatchlist 预热全部自选股的行情缓存，失败的逐只重试
func RefreshWatchlist(retryCount int, retryInterval time.Duration) {
	tickers, err := service.DB().ListWatchlistTickers()
	if err != nil {
		log.Printf("读取自选股列表失败: %v", err)
		return
	}
	if len(tickers) == 0 {
		log.Println("没有需要预热的自选股")
		return
	}

	start := time.Now()
	log.Printf("开始预热 %d 只自选股的行情缓存...", len(tickers))

	pending := tickers
	for round := 0; round <= retryCount && len(pending) > 0; round++ {
		if round > 0 {
			log.Printf("第 %d 次重试，剩余 %d 只...", round, len(pending))
			time.Sleep(retryInterval)
		}
		pending = warmQuotes(pending)
	}

	elapsed := time.Since(start)
	if len(pending) > 0 {
		log.Printf("自选股预热完成，耗时: %v，%d 只仍然失败: %v",
			elapsed.Round(time.Second), len(pending), pending)
		return
	}
	log.Printf("自选股预热完成，耗时: %v，成功: %d", elapsed.Round(time.Second), len(tickers))
}

// warmQuotes 逐只拉取报价写入缓存，返回失败的代码
func warmQuotes(tickers []string) []string {
	var failed []string
	for _, ticker := range tickers {
		if _, err := service.Market().GetQuote(context.Background(), ticker); err != nil {
			log.Printf("预热 %s 行情失败: %v", ticker, err)
			failed = append(failed, ticker)
		}
	}
	return failed
}

func parseRunAt(s string) (int, int) {
	hour, minute := 16, 30
	parts := strings.Split(s, ":")
	if len(parts) == 2 {
		if h, err := strconv.Atoi(parts[0]); err == nil {
			hour = h
		}
		if m, err := strconv.Atoi(parts[1]); err == nil {
			minute = m
		}
	}
	return hour, minute
}
