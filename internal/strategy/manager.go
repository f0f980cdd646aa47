package strategy

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"finance-bot/internal/config"
	"finance-bot/internal/market"
)

// 策略注册顺序，同时决定组合成员的轮询顺序。
var baseStrategyIDs = []string{"rsi", "macd", "bb", "ma_cross", "ml", "volume"}

// CompositeID 为组合策略的注册名。
const CompositeID = "composite"

// Analysis 为单个策略对一组K线的分析结论。
type Analysis struct {
	StrategyName string    `json:"strategy_name"`
	Signal       Signal    `json:"signal"`
	Strength     float64   `json:"strength"`
	Timestamp    time.Time `json:"timestamp"`
	Error        string    `json:"error,omitempty"`
}

// Manager 持有全部已注册策略并提供统一入口。
type Manager struct {
	strategies map[string]Strategy
	order      []string
	logger     *zap.Logger
}

// NewManager 按配置初始化全部策略与组合策略。
func NewManager(cfg config.StrategyConfig, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}

	strategies := map[string]Strategy{
		"rsi":      NewRSIStrategy(cfg.RSI),
		"macd":     NewMACDStrategy(cfg.MACD),
		"bb":       NewBollingerStrategy(cfg.Bollinger),
		"ma_cross": NewMACrossStrategy(cfg.MACross),
		"ml":       NewMLStrategy(cfg.ML),
		"volume":   NewVolumeStrategy(cfg.Volume),
	}

	members := make([]Member, 0, len(baseStrategyIDs))
	for _, id := range baseStrategyIDs {
		weight := cfg.CompositeWeights[id]
		members = append(members, Member{Strategy: strategies[id], Weight: weight})
	}
	strategies[CompositeID] = NewComposite(members)

	order := append(append([]string(nil), baseStrategyIDs...), CompositeID)

	return &Manager{
		strategies: strategies,
		order:      order,
		logger:     logger,
	}
}

// Get 按注册名查找策略。
func (m *Manager) Get(id string) (Strategy, bool) {
	strat, ok := m.strategies[id]
	return strat, ok
}

// IDs 按固定顺序返回全部策略注册名。
func (m *Manager) IDs() []string {
	return append([]string(nil), m.order...)
}

// Analyze 用全部策略分析一个标的。单个策略的异常被隔离为
// HOLD/0.5 条目并记录，绝不中断其余策略。
func (m *Manager) Analyze(symbol string, bars []market.Bar) map[string]Analysis {
	results := make(map[string]Analysis, len(m.order))
	now := time.Now().UTC()

	for _, id := range m.order {
		strat := m.strategies[id]
		analysis, err := safeAnalyze(strat, bars, now)
		if err != nil {
			m.logger.Error("策略分析失败",
				zap.String("symbol", symbol),
				zap.String("strategy", id),
				zap.Error(err),
			)
		}
		results[id] = analysis
	}

	return results
}

// Train 训练所有可训练策略，失败仅记录不上抛。
func (m *Manager) Train(symbol string, bars []market.Bar) {
	for _, id := range m.order {
		trainable, ok := m.strategies[id].(Trainable)
		if !ok {
			continue
		}
		if err := trainable.Train(bars); err != nil {
			m.logger.Warn("策略训练失败",
				zap.String("symbol", symbol),
				zap.String("strategy", id),
				zap.Error(err),
			)
			continue
		}
		m.logger.Info("策略训练完成",
			zap.String("symbol", symbol),
			zap.String("strategy", id),
			zap.Int("bars", len(bars)),
		)
	}
}

// safeAnalyze 吸收单个策略可能的 panic，降级为 HOLD/0.5。
func safeAnalyze(strat Strategy, bars []market.Bar, ts time.Time) (analysis Analysis, err error) {
	analysis = Analysis{
		StrategyName: strat.Name(),
		Signal:       SignalHold,
		Strength:     neutralStrength,
		Timestamp:    ts,
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("strategy: %v", r)
			analysis.Signal = SignalHold
			analysis.Strength = neutralStrength
			analysis.Error = err.Error()
		}
	}()

	analysis.Signal = strat.GenerateSignal(bars)
	analysis.Strength = strat.SignalStrength(bars)
	return analysis, nil
}
