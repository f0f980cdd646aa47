package backtest

import (
	"context"
	"math"
	"reflect"
	"testing"
	"time"

	"finance-bot/internal/market"
	"finance-bot/internal/strategy"
)

func dailyBars(closes ...float64) []market.Bar {
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

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

// scriptStrategy replays fixed signals keyed by prefix length.
type scriptStrategy struct {
	name string
	at   map[int]strategy.Signal
}

func (s *scriptStrategy) Name() string { return s.name }

func (s *scriptStrategy) GenerateSignal(bars []market.Bar) strategy.Signal {
	if sig, ok := s.at[len(bars)]; ok {
		return sig
	}
	return strategy.SignalHold
}

func (s *scriptStrategy) SignalStrength(bars []market.Bar) float64 { return 0.5 }

type panicStrategy struct{}

func (p *panicStrategy) Name() string { return "panic" }

func (p *panicStrategy) GenerateSignal(bars []market.Bar) strategy.Signal {
	panic("boom")
}

func (p *panicStrategy) SignalStrength(bars []market.Bar) float64 { return 0.5 }

type stubProvider struct {
	strategies map[string]strategy.Strategy
	order      []string
	trainCalls int
}

func (p *stubProvider) Get(id string) (strategy.Strategy, bool) {
	s, ok := p.strategies[id]
	return s, ok
}

func (p *stubProvider) IDs() []string { return append([]string(nil), p.order...) }

func (p *stubProvider) Train(symbol string, bars []market.Bar) { p.trainCalls++ }

func newStubProvider(strategies map[string]strategy.Strategy, order ...string) *stubProvider {
	return &stubProvider{strategies: strategies, order: order}
}

func testConfig() Config {
	return Config{
		InitialCapital:  10000,
		CommissionRate:  0.001,
		CapitalFraction: 0.95,
		WarmUpBars:      5,
	}
}

func newTestEngine(t *testing.T, cfg Config, provider StrategyProvider) *Engine {
	t.Helper()
	engine, err := NewEngine(cfg, provider, nil)
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}
	return engine
}

func TestEngineRun_SingleRoundTrip(t *testing.T) {
	bars := dailyBars(100, 100, 100, 100, 100, 100, 105, 108, 110, 109, 109, 109)
	provider := newStubProvider(map[string]strategy.Strategy{
		"script": &scriptStrategy{name: "script", at: map[int]strategy.Signal{
			6: strategy.SignalBuy,
			9: strategy.SignalSell,
		}},
	}, "script")
	engine := newTestEngine(t, testConfig(), provider)

	result, err := engine.Run("AAPL", bars, "script", market.Range{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalTrades != 1 {
		t.Fatalf("expected 1 closed trade, got %d", result.TotalTrades)
	}
	trade := result.Trades[0]
	if trade.Direction != DirectionLong || trade.Status != TradeClosed {
		t.Fatalf("expected closed long trade, got %s/%s", trade.Direction, trade.Status)
	}
	if trade.Quantity != 95 {
		t.Errorf("expected quantity 95, got %d", trade.Quantity)
	}
	if !approx(trade.RealizedPnL, 930.05) {
		t.Errorf("expected realized pnl 930.05, got %v", trade.RealizedPnL)
	}
	if !approx(result.TotalFees, 19.95) {
		t.Errorf("expected total fees 19.95, got %v", result.TotalFees)
	}
	if !approx(result.NetProfit, 930.05) {
		t.Errorf("expected net profit 930.05, got %v", result.NetProfit)
	}
	if !approx(result.TotalReturn, 0.093005) {
		t.Errorf("expected total return 0.093005, got %v", result.TotalReturn)
	}
	if result.WinningTrades != 1 || result.LosingTrades != 0 {
		t.Errorf("expected 1 win and 0 losses, got %d/%d", result.WinningTrades, result.LosingTrades)
	}
	if result.WinRate != 1 {
		t.Errorf("expected win rate 1, got %v", result.WinRate)
	}
	if result.ProfitFactor != 0 {
		t.Errorf("expected profit factor 0 with no losing trades, got %v", result.ProfitFactor)
	}
	if result.SignalsAccuracy != 1 {
		t.Errorf("expected signal accuracy 1, got %v", result.SignalsAccuracy)
	}
	if len(result.EquityCurve) != 7 {
		t.Fatalf("expected 7 equity points, got %d", len(result.EquityCurve))
	}
	if !approx(result.EquityCurve[6].Equity, 1420.55) {
		t.Errorf("expected final equity 1420.55, got %v", result.EquityCurve[6].Equity)
	}
	if !approx(result.AvgTradeDuration, 3) {
		t.Errorf("expected 3 day avg duration, got %v", result.AvgTradeDuration)
	}
}

func TestEngineRun_ForcedLiquidation(t *testing.T) {
	bars := dailyBars(100, 100, 100, 100, 100, 100, 104, 108, 112, 116)
	provider := newStubProvider(map[string]strategy.Strategy{
		"script": &scriptStrategy{name: "script", at: map[int]strategy.Signal{
			6: strategy.SignalBuy,
		}},
	}, "script")
	engine := newTestEngine(t, testConfig(), provider)

	result, err := engine.Run("AAPL", bars, "script", market.Range{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalTrades != 1 {
		t.Fatalf("expected forced liquidation to close the open trade, got %d trades", result.TotalTrades)
	}
	trade := result.Trades[0]
	if trade.Status != TradeClosed {
		t.Fatalf("expected trade closed at end of series, got %s", trade.Status)
	}
	if trade.ExitPrice != 116 {
		t.Errorf("expected exit at last close 116, got %v", trade.ExitPrice)
	}
	if !trade.ExitTime.Equal(bars[len(bars)-1].Timestamp) {
		t.Errorf("expected exit at last bar timestamp, got %v", trade.ExitTime)
	}
}

func TestEngineRun_SkipsUnaffordableEntry(t *testing.T) {
	cfg := testConfig()
	cfg.InitialCapital = 50
	bars := dailyBars(100, 100, 100, 100, 100, 100, 105, 110)
	provider := newStubProvider(map[string]strategy.Strategy{
		"script": &scriptStrategy{name: "script", at: map[int]strategy.Signal{
			6: strategy.SignalBuy,
		}},
	}, "script")
	engine := newTestEngine(t, cfg, provider)

	result, err := engine.Run("AAPL", bars, "script", market.Range{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalTrades != 0 || len(result.Trades) != 0 {
		t.Fatalf("expected no trades when capital buys zero shares, got %+v", result.Trades)
	}
}

func TestEngineRun_ShortSeriesEmptyResult(t *testing.T) {
	provider := newStubProvider(map[string]strategy.Strategy{
		"script": &scriptStrategy{name: "script"},
	}, "script")
	engine := newTestEngine(t, testConfig(), provider)

	result, err := engine.Run("AAPL", dailyBars(100, 101, 102, 103), "script", market.Range{})
	if err != nil {
		t.Fatalf("short series must degrade to an empty result, got error %v", err)
	}
	if result.StrategyName != "script" || result.Symbol != "AAPL" {
		t.Errorf("empty result must carry identity, got %q/%q", result.StrategyName, result.Symbol)
	}
	if result.Trades == nil || len(result.Trades) != 0 {
		t.Errorf("expected empty non-nil trades, got %v", result.Trades)
	}
	if result.EquityCurve == nil || len(result.EquityCurve) != 0 {
		t.Errorf("expected empty non-nil equity curve, got %v", result.EquityCurve)
	}
	if result.TotalReturn != 0 || result.SharpeRatio != 0 || result.MaxDrawdown != 0 {
		t.Errorf("expected zeroed metrics, got %+v", result)
	}
}

func TestEngineRun_RangeFilterAppliesBeforeWarmUp(t *testing.T) {
	bars := dailyBars(100, 100, 100, 100, 100, 100, 105, 110)
	provider := newStubProvider(map[string]strategy.Strategy{
		"script": &scriptStrategy{name: "script", at: map[int]strategy.Signal{6: strategy.SignalBuy}},
	}, "script")
	engine := newTestEngine(t, testConfig(), provider)

	dateRange := market.Range{End: bars[2].Timestamp}
	result, err := engine.Run("AAPL", bars, "script", dateRange)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalTrades != 0 {
		t.Fatalf("expected empty result when filtered series is below warm-up, got %d trades", result.TotalTrades)
	}
}

func TestEngineRun_InvalidSeries(t *testing.T) {
	bars := dailyBars(100, 101, 102)
	bars[0], bars[2] = bars[2], bars[0]
	provider := newStubProvider(map[string]strategy.Strategy{
		"script": &scriptStrategy{name: "script"},
	}, "script")
	engine := newTestEngine(t, testConfig(), provider)

	if _, err := engine.Run("AAPL", bars, "script", market.Range{}); err == nil {
		t.Fatal("expected unsorted series to be rejected")
	}
}

func TestEngineRun_UnknownStrategy(t *testing.T) {
	provider := newStubProvider(map[string]strategy.Strategy{}, "script")
	engine := newTestEngine(t, testConfig(), provider)

	result, err := engine.Run("AAPL", dailyBars(repeatClose(100, 10)...), "nope", market.Range{})
	if err != nil {
		t.Fatalf("unknown strategy must degrade to an empty result, got error %v", err)
	}
	if result.StrategyName != "nope" || result.TotalTrades != 0 {
		t.Fatalf("expected empty result for unknown strategy, got %+v", result)
	}
}

func TestEngineRun_Deterministic(t *testing.T) {
	bars := dailyBars(100, 100, 100, 100, 100, 100, 105, 108, 110, 109, 109, 109)
	provider := newStubProvider(map[string]strategy.Strategy{
		"script": &scriptStrategy{name: "script", at: map[int]strategy.Signal{
			6: strategy.SignalBuy,
			9: strategy.SignalSell,
		}},
	}, "script")
	engine := newTestEngine(t, testConfig(), provider)

	first, err := engine.Run("AAPL", bars, "script", market.Range{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := engine.Run("AAPL", bars, "script", market.Range{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("expected identical results across repeated runs on the same input")
	}
}

func TestEngineRunAll_IsolatesFailures(t *testing.T) {
	bars := dailyBars(100, 100, 100, 100, 100, 100, 105, 108, 110, 109)
	provider := newStubProvider(map[string]strategy.Strategy{
		"good": &scriptStrategy{name: "good", at: map[int]strategy.Signal{
			6: strategy.SignalBuy,
			9: strategy.SignalSell,
		}},
		"boom": &panicStrategy{},
	}, "good", "boom")
	engine := newTestEngine(t, testConfig(), provider)

	results, err := engine.RunAll(context.Background(), "AAPL", bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.trainCalls != 1 {
		t.Errorf("expected a single up-front training pass, got %d", provider.trainCalls)
	}
	if len(results) != 2 {
		t.Fatalf("expected a result for every registered strategy, got %d", len(results))
	}
	if results["good"].TotalTrades != 1 {
		t.Errorf("expected the healthy strategy to complete, got %+v", results["good"])
	}
	boom := results["boom"]
	if boom.TotalTrades != 0 || len(boom.Trades) != 0 || boom.StrategyName != "boom" {
		t.Errorf("expected panicking strategy to degrade to an empty result, got %+v", boom)
	}
}

func repeatClose(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}
