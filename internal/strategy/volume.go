package strategy

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"finance-bot/internal/config"
	"finance-bot/internal/indicator"
	"finance-bot/internal/market"
)

// VolumeStrategy 在成交量显著放大且伴随价格方向变化时发出信号。
type VolumeStrategy struct {
	name      string
	period    int
	threshold float64
}

// NewVolumeStrategy 按配置构造成交量异动策略。
func NewVolumeStrategy(cfg config.VolumeConfig) *VolumeStrategy {
	return &VolumeStrategy{
		name:      fmt.Sprintf("Volume_%d", cfg.Period),
		period:    cfg.Period,
		threshold: cfg.Threshold,
	}
}

func (s *VolumeStrategy) Name() string {
	return s.name
}

func (s *VolumeStrategy) GenerateSignal(bars []market.Bar) Signal {
	if len(bars) < s.period {
		return SignalHold
	}

	last := bars[len(bars)-1]
	prevClose := last.Close
	if len(bars) > 1 {
		prevClose = bars[len(bars)-2].Close
	}

	volumes := make([]float64, len(bars))
	for i, bar := range bars {
		volumes[i] = bar.Volume
	}
	avgVolume := stat.Mean(indicator.SliceTail(volumes, s.period), nil)

	volumeRatio := 1.0
	if avgVolume > 0 {
		volumeRatio = last.Volume / avgVolume
	}

	switch {
	case volumeRatio > s.threshold && last.Close > prevClose:
		return SignalBuy
	case volumeRatio > s.threshold && last.Close < prevClose:
		return SignalSell
	default:
		return SignalHold
	}
}

func (s *VolumeStrategy) SignalStrength(bars []market.Bar) float64 {
	return neutralStrength
}
