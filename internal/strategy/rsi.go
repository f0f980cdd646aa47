package strategy

import (
	"fmt"
	"math"

	talib "github.com/markcheno/go-talib"

	"finance-bot/internal/config"
	"finance-bot/internal/indicator"
	"finance-bot/internal/market"
)

// RSIStrategy 在RSI越过超卖/超买阈值时给出反转信号。
type RSIStrategy struct {
	name       string
	period     int
	oversold   float64
	overbought float64
}

// NewRSIStrategy 按配置构造RSI阈值策略。
func NewRSIStrategy(cfg config.RSIConfig) *RSIStrategy {
	return &RSIStrategy{
		name:       fmt.Sprintf("RSI_%d", cfg.Period),
		period:     cfg.Period,
		oversold:   cfg.Oversold,
		overbought: cfg.Overbought,
	}
}

func (s *RSIStrategy) Name() string {
	return s.name
}

func (s *RSIStrategy) GenerateSignal(bars []market.Bar) Signal {
	rsi, ok := s.currentRSI(bars)
	if !ok {
		return SignalHold
	}

	switch {
	case rsi < s.oversold:
		return SignalBuy
	case rsi > s.overbought:
		return SignalSell
	default:
		return SignalHold
	}
}

func (s *RSIStrategy) SignalStrength(bars []market.Bar) float64 {
	rsi, ok := s.currentRSI(bars)
	if !ok {
		return neutralStrength
	}

	// 超出阈值越远，信号越强，线性缩放后截断到[0,1]。
	switch {
	case rsi < s.oversold:
		return clamp01((s.oversold - rsi) / s.oversold)
	case rsi > s.overbought:
		return clamp01((rsi - s.overbought) / (100 - s.overbought))
	default:
		return neutralStrength
	}
}

func (s *RSIStrategy) currentRSI(bars []market.Bar) (float64, bool) {
	if len(bars) < s.period+1 {
		return 0, false
	}

	values := talib.Rsi(market.Closes(bars), s.period)
	rsi := indicator.Last(values)
	if math.IsNaN(rsi) {
		return 0, false
	}
	return rsi, true
}
