package strategy

import "testing"

func TestVolumeStrategy_AnomalyWithDirection(t *testing.T) {
	strat := NewVolumeStrategy(defaultStrategyConfig().Volume)

	buyBars := series(append(repeat(100, 20), 105)...)
	buyBars[len(buyBars)-1].Volume = 400
	if got := strat.GenerateSignal(buyBars); got != SignalBuy {
		t.Fatalf("expected BUY on volume spike with price rise, got %s", got)
	}

	sellBars := series(append(repeat(100, 20), 95)...)
	sellBars[len(sellBars)-1].Volume = 400
	if got := strat.GenerateSignal(sellBars); got != SignalSell {
		t.Fatalf("expected SELL on volume spike with price drop, got %s", got)
	}
}

func TestVolumeStrategy_NoAnomalyHolds(t *testing.T) {
	strat := NewVolumeStrategy(defaultStrategyConfig().Volume)

	// Price moves but volume stays at the average.
	bars := series(append(repeat(100, 20), 105)...)
	if got := strat.GenerateSignal(bars); got != SignalHold {
		t.Fatalf("expected HOLD on normal volume, got %s", got)
	}

	if got := strat.GenerateSignal(series(repeat(100, 5)...)); got != SignalHold {
		t.Fatalf("expected HOLD below minimum window, got %s", got)
	}
}
