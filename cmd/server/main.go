package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"stock-advisor-backend/internal/advisor"
	"stock-advisor-backend/internal/cache"
	"stock-advisor-backend/internal/config"
	"stock-advisor-backend/internal/handler"
	"stock-advisor-backend/internal/marketdata"
	"stock-advisor-backend/internal/montecarlo"
	"stock-advisor-backend/internal/scheduler"
	"stock-advisor-backend/internal/service"
	"stock-advisor-backend/internal/store"
	"stock-advisor-backend/internal/tradingday"
	"stock-advisor-backend/pkg/statsgen"
)

func main() {
	_ = godotenv.Load()

	// stats_gen子命令：统计库生成独立于服务进程运行
	if len(os.Args) > 1 && os.Args[1] == "stats_gen" {
		if err := statsgen.Execute(os.Args[2:]); err != nil {
			log.Fatalf("stats-gen 执行失败: %v", err)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	if path := os.Getenv("CUSTOM_HOLIDAYS_FILE"); path != "" {
		if err := tradingday.LoadCustomClosures(path); err != nil {
			log.Printf("加载自定义休市日失败: %v", err)
		}
	}

	// Redis不可用时退回进程内缓存
	if err := cache.InitRedis(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB); err != nil {
		log.Printf("Redis连接失败，使用进程内缓存: %v", err)
	}

	db, err := store.Open(cfg.Store.DBPath)
	if err != nil {
		log.Fatalf("打开数据库失败: %v", err)
	}
	defer db.Close()

	market := marketdata.NewClient(marketdata.Options{
		BaseURL:    cfg.MarketData.BaseURL,
		Timeout:    cfg.MarketData.Timeout,
		RatePerSec: cfg.MarketData.RatePerSec,
		RateBurst:  cfg.MarketData.RateBurst,
		QuoteTTL:   cfg.Cache.QuoteTTL,
		ProfileTTL: cfg.Cache.ProfileTTL,
	})

	simCfg := montecarlo.Config{
		TradingDays:     cfg.Simulation.TradingDays,
		NumPaths:        cfg.Simulation.NumPaths,
		Workers:         cfg.Simulation.Workers,
		Seed:            cfg.Simulation.Seed,
		MinObservations: cfg.Simulation.MinObservations,
	}

	service.Init(market, db, simCfg, cfg.Simulation.DefaultStartDate, cfg.Advisor.StatsDBPath)
	advisor.Init(context.Background(), cfg.Advisor.Model)
	scheduler.Start(cfg)

	r := gin.Default()

	// 配置 CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "user-id"},
		AllowCredentials: true,
	}))

	// 注册路由
	api := r.Group("/api/v1")
	{
		// 蒙特卡洛组合模拟
		api.POST("/montecarlo", handler.MonteCarlo)
		api.POST("/montecarlo/chart", handler.MonteCarloChart)
		api.POST("/montecarlo/task", handler.CreateMonteCarloTask)
		api.GET("/montecarlo/task/:task_id", handler.GetMonteCarloTask)
		api.POST("/montecarlo/task/:task_id/cancel", handler.CancelMonteCarloTask)

		// 行情与技术面
		api.GET("/analyze", handler.Analyze)
		api.POST("/technical_signal", handler.TechnicalSignal)
		api.POST("/predict", handler.Forecast)

		// 用户认证
		api.POST("/valid_user", handler.ValidUser)
		api.POST("/signup", handler.Signup)
		api.POST("/login", handler.Login)
		api.POST("/logout", handler.AuthMiddleware(), handler.Logout)

		// 自选股
		api.GET("/has_watchlist/:user_id", handler.HasWatchlist)
		api.GET("/watchlist/:user_id", handler.GetWatchlist)
		api.POST("/watchlist/add", handler.AddToWatchlist)
		api.DELETE("/watchlist/:item_id", handler.DeleteWatchlistItem)

		// 持仓与组合健康度
		api.GET("/portfolio/holdings/:user_id", handler.GetHoldings)
		api.POST("/portfolio/holdings/:user_id", handler.AddHolding)
		api.DELETE("/portfolio/holdings/:user_id/:holding_id", handler.DeleteHolding)
		api.GET("/portfolio/health/:user_id", handler.PortfolioHealth)

		// AI顾问
		api.POST("/ai/analyze", handler.AIAnalyze)
		api.POST("/ai/chat", handler.AuthMiddleware(), handler.AIChat)
	}

	port := cfg.Server.Port
	log.Printf("服务启动在端口 %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("启动服务失败: %v", err)
	}
}
