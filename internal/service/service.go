package service

import (
	"stock-advisor-backend/internal/marketdata"
	"stock-advisor-backend/internal/montecarlo"
	"stock-advisor-backend/internal/store"
)

var (
	market           *marketdata.Client
	db               *store.Store
	simConfig        montecarlo.Config
	defaultStartDate = "2021-01-01"
	statsDBPath      string
)

// Init 注入服务层依赖，启动时调用一次
func Init(m *marketdata.Client, s *store.Store, cfg montecarlo.Config, startDate, statsPath string) {
	market = m
	db = s
	simConfig = cfg
	if startDate != "" {
		defaultStartDate = startDate
	}
	statsDBPath = statsPath
}

// Market 当前行情客户端
func Market() *marketdata.Client {
	return market
}

// DB 当前存储
func DB() *store.Store {
	return db
}
