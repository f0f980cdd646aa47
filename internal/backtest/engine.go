package backtest

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"finance-bot/internal/market"
	"finance-bot/internal/strategy"
)

// StrategyProvider 提供策略查找，便于在测试中注入替身。
type StrategyProvider interface {
	Get(id string) (strategy.Strategy, bool)
	IDs() []string
	Train(symbol string, bars []market.Bar)
}

// Engine 将策略信号回放为交易台账与绩效结果。
type Engine struct {
	cfg        Config
	strategies StrategyProvider
	logger     *zap.Logger
}

// NewEngine 构建回测引擎。
func NewEngine(cfg Config, strategies StrategyProvider, logger *zap.Logger) (*Engine, error) {
	if strategies == nil {
		return nil, fmt.Errorf("backtest: strategy provider 不能为空")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		cfg:        cfg.normalize(),
		strategies: strategies,
		logger:     logger,
	}, nil
}

// Run 对单个策略执行一次回测。
//
// 序列乱序/重复时间戳是唯一返回 error 的情况；数据不足或
// 策略未注册降级为规范空结果。输入不可变且策略实例未被共享时，
// 重复调用得到完全一致的结果。
func (e *Engine) Run(symbol string, bars []market.Bar, strategyID string, dateRange market.Range) (Result, error) {
	if err := market.ValidateSeries(bars); err != nil {
		return Result{}, fmt.Errorf("回测输入校验失败: %w", err)
	}

	bars = dateRange.Filter(bars)
	if len(bars) < e.cfg.WarmUpBars {
		e.logger.Warn("历史数据不足，跳过回测",
			zap.String("symbol", symbol),
			zap.String("strategy", strategyID),
			zap.Int("bars", len(bars)),
			zap.Int("warm_up_bars", e.cfg.WarmUpBars),
			zap.Error(ErrInsufficientData),
		)
		return emptyResult(strategyID, symbol), nil
	}

	strat, ok := e.strategies.Get(strategyID)
	if !ok {
		e.logger.Error("策略未注册",
			zap.String("symbol", symbol),
			zap.String("strategy", strategyID),
			zap.Error(ErrUnknownStrategy),
		)
		return emptyResult(strategyID, symbol), nil
	}

	if trainable, isTrainable := strat.(strategy.Trainable); isTrainable {
		if err := trainable.Train(bars); err != nil {
			e.logger.Warn("策略训练失败，按未训练状态回测",
				zap.String("symbol", symbol),
				zap.String("strategy", strategyID),
				zap.Error(err),
			)
		}
	}

	sim := newSimulator(e.cfg, symbol, strategyID)

	// 逐根回放：只使用截至当前K线的前缀，绝无前视。
	for i := e.cfg.WarmUpBars; i < len(bars); i++ {
		prefix := bars[:i+1]
		bar := bars[i]

		signal := strat.GenerateSignal(prefix)

		if i < len(bars)-1 {
			sim.observeSignal(signal, bar.Close, bars[i+1].Close)
		}

		sim.apply(signal, bar)
		sim.markToMarket(bar)
	}

	sim.finalize(bars[len(bars)-1])

	result := buildResult(strategyID, symbol, e.cfg, sim.trades, sim.curve, sim.signalsCorrect, sim.signalsTotal)

	e.logger.Info("回测完成",
		zap.String("symbol", symbol),
		zap.String("strategy", strategyID),
		zap.Int("total_trades", result.TotalTrades),
		zap.Float64("total_return", result.TotalReturn),
		zap.Float64("win_rate", result.WinRate),
	)

	return result, nil
}

// RunAll 对全部已注册策略并发回测同一序列。
// 单个策略的失败被替换为空结果，批次永不中断。
func (e *Engine) RunAll(ctx context.Context, symbol string, bars []market.Bar) (map[string]Result, error) {
	if err := market.ValidateSeries(bars); err != nil {
		return nil, fmt.Errorf("回测输入校验失败: %w", err)
	}

	// 先完成可训练策略的拟合，避免并发运行时训练与预测交错。
	e.strategies.Train(symbol, bars)

	var (
		mu       sync.Mutex
		failures error
	)
	results := make(map[string]Result, len(e.strategies.IDs()))

	group, _ := errgroup.WithContext(ctx)
	for _, id := range e.strategies.IDs() {
		group.Go(func() error {
			result, err := e.runIsolated(symbol, bars, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = multierr.Append(failures, fmt.Errorf("%s: %w", id, err))
				results[id] = emptyResult(id, symbol)
				return nil
			}
			results[id] = result
			return nil
		})
	}
	_ = group.Wait()

	if failures != nil {
		e.logger.Warn("部分策略回测被替换为空结果",
			zap.String("symbol", symbol),
			zap.Error(failures),
		)
	}

	return results, nil
}

// runIsolated 吸收单个策略回测的 panic，隔离批次故障。
func (e *Engine) runIsolated(symbol string, bars []market.Bar, strategyID string) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("backtest: %v", r)
		}
	}()
	return e.Run(symbol, bars, strategyID, market.Range{})
}
