package strategy

import (
	"fmt"

	talib "github.com/markcheno/go-talib"

	"finance-bot/internal/config"
	"finance-bot/internal/indicator"
	"finance-bot/internal/market"
)

// BollingerStrategy 在收盘价突破布林带上下轨时发出信号。
type BollingerStrategy struct {
	name   string
	period int
	stdDev float64
}

// NewBollingerStrategy 按配置构造布林带突破策略。
func NewBollingerStrategy(cfg config.BollingerConfig) *BollingerStrategy {
	return &BollingerStrategy{
		name:   fmt.Sprintf("BB_%d_%g", cfg.Period, cfg.StdDev),
		period: cfg.Period,
		stdDev: cfg.StdDev,
	}
}

func (s *BollingerStrategy) Name() string {
	return s.name
}

func (s *BollingerStrategy) GenerateSignal(bars []market.Bar) Signal {
	if len(bars) < s.period {
		return SignalHold
	}

	closes := market.Closes(bars)
	upper, _, lower := talib.BBands(closes, s.period, s.stdDev, s.stdDev, talib.SMA)

	price := indicator.Last(closes)

	switch {
	case price < indicator.Last(lower):
		return SignalBuy
	case price > indicator.Last(upper):
		return SignalSell
	default:
		return SignalHold
	}
}

func (s *BollingerStrategy) SignalStrength(bars []market.Bar) float64 {
	return neutralStrength
}
