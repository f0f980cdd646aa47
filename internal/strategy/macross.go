package strategy

import (
	"fmt"

	talib "github.com/markcheno/go-talib"

	"finance-bot/internal/config"
	"finance-bot/internal/indicator"
	"finance-bot/internal/market"
)

// MACrossStrategy 在快慢均线金叉/死叉时发出信号。
type MACrossStrategy struct {
	name        string
	shortPeriod int
	longPeriod  int
}

// NewMACrossStrategy 按配置构造均线交叉策略。
func NewMACrossStrategy(cfg config.MACrossConfig) *MACrossStrategy {
	return &MACrossStrategy{
		name:        fmt.Sprintf("MA_Cross_%d_%d", cfg.ShortPeriod, cfg.LongPeriod),
		shortPeriod: cfg.ShortPeriod,
		longPeriod:  cfg.LongPeriod,
	}
}

func (s *MACrossStrategy) Name() string {
	return s.name
}

func (s *MACrossStrategy) GenerateSignal(bars []market.Bar) Signal {
	// 交叉判定需要最近两个完整的慢线取值。
	if len(bars) < s.longPeriod+1 {
		return SignalHold
	}

	closes := market.Closes(bars)
	shortMA := talib.Sma(closes, s.shortPeriod)
	longMA := talib.Sma(closes, s.longPeriod)

	curShort, prevShort := indicator.Last(shortMA), indicator.Prev(shortMA)
	curLong, prevLong := indicator.Last(longMA), indicator.Prev(longMA)

	switch {
	case curShort > curLong && prevShort <= prevLong:
		return SignalBuy
	case curShort < curLong && prevShort >= prevLong:
		return SignalSell
	default:
		return SignalHold
	}
}

func (s *MACrossStrategy) SignalStrength(bars []market.Bar) float64 {
	return neutralStrength
}
