package strategy

import (
	"time"

	"finance-bot/internal/config"
	"finance-bot/internal/market"
)

// series builds daily bars from close prices with uniform volume.
func series(closes ...float64) []market.Bar {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]market.Bar, len(closes))
	for i, c := range closes {
		bars[i] = market.Bar{
			Timestamp: base.AddDate(0, 0, i),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    100,
		}
	}
	return bars
}

func repeat(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

func ramp(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

func defaultStrategyConfig() config.StrategyConfig {
	return config.StrategyConfig{
		RSI:       config.RSIConfig{Period: 14, Oversold: 30, Overbought: 70},
		MACD:      config.MACDConfig{Fast: 12, Slow: 26, Signal: 9},
		Bollinger: config.BollingerConfig{Period: 20, StdDev: 2},
		MACross:   config.MACrossConfig{ShortPeriod: 10, LongPeriod: 30},
		Volume:    config.VolumeConfig{Period: 20, Threshold: 1.5},
		ML:        config.MLConfig{LearningRate: 0.05, Epochs: 200, MinSamples: 100},
		CompositeWeights: map[string]float64{
			"rsi": 1.0, "macd": 1.2, "bb": 0.8, "ma_cross": 1.0, "ml": 1.5, "volume": 0.7,
		},
	}
}
