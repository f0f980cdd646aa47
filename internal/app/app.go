package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"finance-bot/internal/config"
	"finance-bot/internal/store"
)

// App 聚合核心依赖并驱动系统生命周期。
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
}

// New 创建 App 实例。
func New(cfg *config.Config, logger *zap.Logger, store *store.Store) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
		store:  store,
	}
}

// Run 启动扫描循环，直到上下文被取消。
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("信号系统已初始化",
		zap.String("environment", a.cfg.App.Environment),
		zap.String("exchange", a.cfg.Market.Exchange),
		zap.Strings("watchlist", a.cfg.Market.Watchlist),
		zap.String("timeframe", a.cfg.Market.Timeframe),
	)

	orch, err := newOrchestrator(a.cfg, a.logger, a.store)
	if err != nil {
		return err
	}

	if a.cfg.Monitor.Enabled {
		if err := startMonitorServer(ctx, orch.Monitor(), a.cfg.Monitor.Port, a.logger); err != nil {
			return err
		}
	}

	scanInterval := a.cfg.Scheduler.ScanInterval
	if scanInterval <= 0 {
		scanInterval = 5 * time.Minute
	}

	if err = orch.Tick(ctx); err != nil {
		a.logger.Error("首轮扫描失败", zap.Error(err))
	}

	ticker := time.NewTicker(scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("系统异常退出: %w", err)
			}
			a.logger.Info("系统收到退出信号，正在停止")
			return nil
		case <-ticker.C:
			if err = orch.Tick(ctx); err != nil {
				a.logger.Error("执行调度失败", zap.Error(err))
			}
		}
	}
}
