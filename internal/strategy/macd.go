package strategy

import (
	"fmt"

	talib "github.com/markcheno/go-talib"

	"finance-bot/internal/config"
	"finance-bot/internal/indicator"
	"finance-bot/internal/market"
)

// MACDStrategy 在MACD线与信号线交叉时发出信号。
type MACDStrategy struct {
	name   string
	fast   int
	slow   int
	signal int
}

// NewMACDStrategy 按配置构造MACD交叉策略。
func NewMACDStrategy(cfg config.MACDConfig) *MACDStrategy {
	return &MACDStrategy{
		name:   fmt.Sprintf("MACD_%d_%d_%d", cfg.Fast, cfg.Slow, cfg.Signal),
		fast:   cfg.Fast,
		slow:   cfg.Slow,
		signal: cfg.Signal,
	}
}

func (s *MACDStrategy) Name() string {
	return s.name
}

func (s *MACDStrategy) GenerateSignal(bars []market.Bar) Signal {
	// MACD 交叉需要最近两个有效的指标值。
	if len(bars) < s.slow+s.signal+1 {
		return SignalHold
	}

	macdLine, signalLine, _ := talib.Macd(market.Closes(bars), s.fast, s.slow, s.signal)

	curMACD, prevMACD := indicator.Last(macdLine), indicator.Prev(macdLine)
	curSignal, prevSignal := indicator.Last(signalLine), indicator.Prev(signalLine)

	switch {
	case curMACD > curSignal && prevMACD <= prevSignal:
		return SignalBuy
	case curMACD < curSignal && prevMACD >= prevSignal:
		return SignalSell
	default:
		return SignalHold
	}
}

func (s *MACDStrategy) SignalStrength(bars []market.Bar) float64 {
	return neutralStrength
}
