package strategy

import "testing"

func TestBollingerStrategy_Breaches(t *testing.T) {
	strat := NewBollingerStrategy(defaultStrategyConfig().Bollinger)

	cases := []struct {
		name string
		last float64
		want Signal
	}{
		{"below lower band buys", 80, SignalBuy},
		{"above upper band sells", 120, SignalSell},
		{"inside bands holds", 100, SignalHold},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			closes := append(repeat(100, 19), tc.last)
			if got := strat.GenerateSignal(series(closes...)); got != tc.want {
				t.Fatalf("close %.0f: expected %s, got %s", tc.last, tc.want, got)
			}
		})
	}
}

func TestBollingerStrategy_ShortWindowHolds(t *testing.T) {
	strat := NewBollingerStrategy(defaultStrategyConfig().Bollinger)

	if got := strat.GenerateSignal(series(repeat(100, 10)...)); got != SignalHold {
		t.Fatalf("expected HOLD below minimum window, got %s", got)
	}
}
