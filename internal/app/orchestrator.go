package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"finance-bot/internal/backtest"
	"finance-bot/internal/config"
	"finance-bot/internal/feed"
	"finance-bot/internal/monitor"
	"finance-bot/internal/notify"
	"finance-bot/internal/store"
	"finance-bot/internal/strategy"
)

// orchestrator 驱动每轮扫描：拉取行情、生成信号、触发提醒，
// 并按计划执行综合回测。
type orchestrator struct {
	cfg        *config.Config
	feed       *feed.Service
	strategies *strategy.Manager
	engine     *backtest.Engine
	notifier   notify.Notifier
	monitor    *monitor.Service
	logger     *zap.Logger

	mu           sync.Mutex
	lastSignals  map[string]strategy.Signal
	lastBacktest time.Time
}

func (o *orchestrator) Monitor() *monitor.Service {
	return o.monitor
}

func newOrchestrator(cfg *config.Config, logger *zap.Logger, st *store.Store) (*orchestrator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := feed.NewClient(cfg.Market, logger)
	if err != nil {
		return nil, fmt.Errorf("初始化行情客户端失败: %w", err)
	}

	feedSvc, err := feed.NewService(cfg.Market, client, st, logger)
	if err != nil {
		return nil, fmt.Errorf("初始化行情服务失败: %w", err)
	}

	monitorSvc, err := monitor.NewService(st, logger)
	if err != nil {
		return nil, fmt.Errorf("初始化监控服务失败: %w", err)
	}

	manager := strategy.NewManager(cfg.Strategy, logger)

	engine, err := backtest.NewEngine(backtest.NewConfig(cfg.Backtest), manager, logger)
	if err != nil {
		return nil, fmt.Errorf("初始化回测引擎失败: %w", err)
	}

	return &orchestrator{
		cfg:         cfg,
		feed:        feedSvc,
		strategies:  manager,
		engine:      engine,
		notifier:    notify.NewLogNotifier(logger),
		monitor:     monitorSvc,
		logger:      logger,
		lastSignals: make(map[string]strategy.Signal, len(cfg.Market.Watchlist)),
	}, nil
}

// Tick 执行一轮观察列表扫描，必要时追加一轮综合回测。
func (o *orchestrator) Tick(ctx context.Context) error {
	err := o.scanWatchlist(ctx)

	if o.backtestDue() {
		err = multierr.Append(err, o.runBacktests(ctx))
	}

	return err
}

// scanWatchlist 并发分析全部标的。单个标的的失败被记录后
// 继续其余标的。
func (o *orchestrator) scanWatchlist(ctx context.Context) error {
	var (
		mu       sync.Mutex
		failures error
	)

	group, groupCtx := errgroup.WithContext(ctx)
	for _, symbol := range o.cfg.Market.Watchlist {
		group.Go(func() error {
			if err := o.scanSymbol(groupCtx, symbol); err != nil {
				mu.Lock()
				failures = multierr.Append(failures, fmt.Errorf("%s: %w", symbol, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = group.Wait()

	return failures
}

func (o *orchestrator) scanSymbol(ctx context.Context, symbol string) error {
	snapshot, err := o.feed.GetSnapshot(ctx, symbol)
	if err != nil {
		o.monitor.RecordError(ctx, "拉取行情快照失败", err, map[string]interface{}{"symbol": symbol})
		return err
	}

	// 每轮用最新窗口重训分类器，保持模型贴近近期行情。
	o.strategies.Train(symbol, snapshot.Bars)

	analyses := o.strategies.Analyze(symbol, snapshot.Bars)
	composite, ok := analyses[strategy.CompositeID]
	if !ok {
		return fmt.Errorf("组合策略缺少分析结论")
	}

	price := snapshot.Quote.Price
	if price == 0 && len(snapshot.Bars) > 0 {
		price = snapshot.Bars[len(snapshot.Bars)-1].Close
	}

	o.logger.Debug("标的扫描完成",
		zap.String("symbol", symbol),
		zap.String("signal", string(composite.Signal)),
		zap.Float64("strength", composite.Strength),
		zap.Float64("price", price),
	)

	o.handleSignal(ctx, symbol, price, composite, analyses)
	return nil
}

// handleSignal 仅在组合信号翻转为可交易方向时触发提醒。
func (o *orchestrator) handleSignal(ctx context.Context, symbol string, price float64, composite strategy.Analysis, analyses map[string]strategy.Analysis) {
	if composite.Signal == strategy.SignalHold {
		return
	}

	o.mu.Lock()
	last := o.lastSignals[symbol]
	if composite.Signal == last {
		o.mu.Unlock()
		return
	}
	o.lastSignals[symbol] = composite.Signal
	o.mu.Unlock()

	o.monitor.RecordSignal(ctx, monitor.SignalPayload{
		Symbol:   symbol,
		Signal:   composite.Signal,
		Previous: last,
		Strategy: composite.StrategyName,
		Price:    price,
		Strength: composite.Strength,
	})

	if !o.cfg.Notify.Enabled || composite.Strength < o.cfg.Notify.MinStrength {
		return
	}

	supporting := make([]string, 0, len(analyses))
	for _, id := range o.strategies.IDs() {
		if id == strategy.CompositeID {
			continue
		}
		if analysis, ok := analyses[id]; ok && analysis.Signal == composite.Signal {
			supporting = append(supporting, id)
		}
	}

	alert := notify.Alert{
		Symbol:     symbol,
		Signal:     composite.Signal,
		Strategy:   composite.StrategyName,
		Price:      price,
		Strength:   composite.Strength,
		Supporting: supporting,
		Timestamp:  composite.Timestamp,
	}
	if err := o.notifier.SignalAlert(ctx, alert); err != nil {
		o.logger.Warn("发送信号提醒失败",
			zap.String("symbol", symbol),
			zap.Error(err),
		)
	}
}

func (o *orchestrator) backtestDue() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	interval := o.cfg.Scheduler.BacktestInterval
	if interval <= 0 {
		return false
	}
	return o.lastBacktest.IsZero() || time.Since(o.lastBacktest) >= interval
}

// runBacktests 对观察列表逐个执行综合回测并推送最优策略摘要。
func (o *orchestrator) runBacktests(ctx context.Context) error {
	var failures error

	for _, symbol := range o.cfg.Market.Watchlist {
		bars, err := o.feed.History(ctx, symbol, o.cfg.Market.HistoryLimit)
		if err != nil {
			o.monitor.RecordError(ctx, "回测取数失败", err, map[string]interface{}{"symbol": symbol})
			failures = multierr.Append(failures, fmt.Errorf("%s: %w", symbol, err))
			continue
		}

		results, err := o.engine.RunAll(ctx, symbol, bars)
		if err != nil {
			o.monitor.RecordError(ctx, "综合回测失败", err, map[string]interface{}{"symbol": symbol})
			failures = multierr.Append(failures, fmt.Errorf("%s: %w", symbol, err))
			continue
		}

		ranked := backtest.Rank(results)
		if len(ranked) == 0 {
			continue
		}
		best := ranked[0]

		o.monitor.RecordBacktest(ctx, monitor.BacktestPayload{
			Symbol:          symbol,
			BestStrategy:    best.ID,
			TotalReturn:     best.Result.TotalReturn,
			WinRate:         best.Result.WinRate,
			SignalsAccuracy: best.Result.SignalsAccuracy,
			TotalTrades:     best.Result.TotalTrades,
		})

		if o.cfg.Notify.Enabled {
			summary := notify.Summary{
				Symbol:          symbol,
				BestStrategy:    best.ID,
				TotalReturn:     best.Result.TotalReturn,
				WinRate:         best.Result.WinRate,
				SignalsAccuracy: best.Result.SignalsAccuracy,
				Timestamp:       time.Now().UTC(),
			}
			if err := o.notifier.BacktestSummary(ctx, summary); err != nil {
				o.logger.Warn("发送回测摘要失败",
					zap.String("symbol", symbol),
					zap.Error(err),
				)
			}
		}
	}

	o.mu.Lock()
	o.lastBacktest = time.Now().UTC()
	o.mu.Unlock()

	return failures
}
