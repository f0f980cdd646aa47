package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"finance-bot/internal/backtest"
	"finance-bot/internal/config"
	"finance-bot/internal/feed"
	"finance-bot/internal/log"
	"finance-bot/internal/market"
	"finance-bot/internal/store"
	"finance-bot/internal/strategy"
)

// 一次性回测工具：拉取历史K线，对全部策略回测并输出对比报告。
func main() {
	var (
		configPath string
		symbol     string
		strategyID string
		limit      int
	)
	flag.StringVar(&configPath, "config", "", "配置文件路径，默认使用 configs/config.yaml")
	flag.StringVar(&symbol, "symbol", "", "回测标的，默认取观察列表第一个")
	flag.StringVar(&strategyID, "strategy", "", "仅回测指定策略，留空表示全部策略")
	flag.IntVar(&limit, "limit", 0, "历史K线条数，默认取 market.history_limit")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := log.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if symbol == "" {
		symbol = cfg.Market.Watchlist[0]
	}
	if limit <= 0 {
		limit = cfg.Market.HistoryLimit
	}

	sqliteStore, err := store.NewSQLite(cfg.Database)
	if err != nil {
		logger.Error("初始化数据库失败", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		_ = sqliteStore.Close()
	}()

	client, err := feed.NewClient(cfg.Market, logger)
	if err != nil {
		logger.Error("初始化行情客户端失败", zap.Error(err))
		os.Exit(1)
	}

	feedSvc, err := feed.NewService(cfg.Market, client, sqliteStore, logger)
	if err != nil {
		logger.Error("初始化行情服务失败", zap.Error(err))
		os.Exit(1)
	}

	manager := strategy.NewManager(cfg.Strategy, logger)
	engine, err := backtest.NewEngine(backtest.NewConfig(cfg.Backtest), manager, logger)
	if err != nil {
		logger.Error("初始化回测引擎失败", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bars, err := feedSvc.History(ctx, symbol, limit)
	if err != nil {
		logger.Error("获取历史K线失败",
			zap.String("symbol", symbol),
			zap.Error(err),
		)
		os.Exit(1)
	}

	var results map[string]backtest.Result
	if strategyID != "" {
		result, runErr := engine.Run(symbol, bars, strategyID, market.Range{})
		if runErr != nil {
			logger.Error("回测失败", zap.Error(runErr))
			os.Exit(1)
		}
		results = map[string]backtest.Result{strategyID: result}
	} else {
		results, err = engine.RunAll(ctx, symbol, bars)
		if err != nil {
			logger.Error("综合回测失败", zap.Error(err))
			os.Exit(1)
		}
	}

	fmt.Println(engine.Report(symbol, results))
}
