package backtest

import (
	"testing"
	"time"
)

func curveOf(equities ...float64) []EquityPoint {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	curve := make([]EquityPoint, len(equities))
	for i, e := range equities {
		curve[i] = EquityPoint{Timestamp: base.AddDate(0, 0, i), Equity: e}
	}
	return curve
}

func closedTrade(pnl, commission float64, days int) Trade {
	entry := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return Trade{
		Symbol:      "AAPL",
		Strategy:    "script",
		Direction:   DirectionLong,
		Quantity:    10,
		EntryTime:   entry,
		ExitTime:    entry.AddDate(0, 0, days),
		RealizedPnL: pnl,
		Commission:  commission,
		Status:      TradeClosed,
	}
}

func TestMaxDrawdown(t *testing.T) {
	if dd := maxDrawdown(curveOf(100, 120, 90, 100)); !approx(dd, -0.25) {
		t.Fatalf("expected drawdown -0.25, got %v", dd)
	}
	if dd := maxDrawdown(curveOf(100, 110, 120)); dd != 0 {
		t.Fatalf("expected zero drawdown on a rising curve, got %v", dd)
	}
	if dd := maxDrawdown(nil); dd != 0 {
		t.Fatalf("expected zero drawdown on empty curve, got %v", dd)
	}
}

func TestSharpeRatio(t *testing.T) {
	if s := sharpeRatio(curveOf(100, 100, 100, 100)); s != 0 {
		t.Fatalf("expected zero sharpe on zero-variance returns, got %v", s)
	}
	if s := sharpeRatio(curveOf(100, 110)); s != 0 {
		t.Fatalf("expected zero sharpe with a single return, got %v", s)
	}
	if s := sharpeRatio(curveOf(100, 105, 108, 120, 118)); s <= 0 {
		t.Fatalf("expected positive sharpe on a mostly rising curve, got %v", s)
	}
}

func TestPeriodReturns_SkipsZeroEquity(t *testing.T) {
	returns := periodReturns(curveOf(100, 0, 110))
	if len(returns) != 1 {
		t.Fatalf("expected the zero-equity point to be skipped, got %v", returns)
	}
	if !approx(returns[0], -1) {
		t.Fatalf("expected -100%% return into the zero point, got %v", returns[0])
	}
}

func TestBuildResult_ProfitFactor(t *testing.T) {
	cfg := testConfig()
	curve := curveOf(10000, 10100, 10050)

	trades := []Trade{closedTrade(100, 1, 2), closedTrade(-50, 1, 4)}
	result := buildResult("script", "AAPL", cfg, trades, curve, 3, 4)

	if !approx(result.ProfitFactor, 2) {
		t.Errorf("expected profit factor 2, got %v", result.ProfitFactor)
	}
	if result.WinningTrades != 1 || result.LosingTrades != 1 {
		t.Errorf("expected one win and one loss, got %d/%d", result.WinningTrades, result.LosingTrades)
	}
	if !approx(result.WinRate, 0.5) {
		t.Errorf("expected win rate 0.5, got %v", result.WinRate)
	}
	if !approx(result.NetProfit, 50) {
		t.Errorf("expected net profit 50, got %v", result.NetProfit)
	}
	if !approx(result.TotalFees, 2) {
		t.Errorf("expected total fees 2, got %v", result.TotalFees)
	}
	if !approx(result.AvgTradeDuration, 3) {
		t.Errorf("expected avg duration 3 days, got %v", result.AvgTradeDuration)
	}
	if !approx(result.SignalsAccuracy, 0.75) {
		t.Errorf("expected accuracy 0.75, got %v", result.SignalsAccuracy)
	}
}

func TestBuildResult_OpenTradesExcluded(t *testing.T) {
	open := closedTrade(0, 0, 0)
	open.Status = TradeOpen
	result := buildResult("script", "AAPL", testConfig(), []Trade{open}, curveOf(10000, 10000), 0, 0)

	if result.TotalTrades != 0 || len(result.Trades) != 0 {
		t.Fatalf("expected open trades to be excluded from the canonical empty result, got %+v", result)
	}
	if len(result.EquityCurve) != 0 {
		t.Fatalf("expected canonical empty result without an equity curve, got %d points", len(result.EquityCurve))
	}
}

func TestBuildResult_ZeroLossesProfitFactor(t *testing.T) {
	trades := []Trade{closedTrade(100, 1, 1), closedTrade(30, 1, 1)}
	result := buildResult("script", "AAPL", testConfig(), trades, curveOf(10000, 10100), 0, 0)

	if result.ProfitFactor != 0 {
		t.Fatalf("expected profit factor 0 with no losing trades, got %v", result.ProfitFactor)
	}
	if result.WinRate != 1 {
		t.Fatalf("expected win rate 1, got %v", result.WinRate)
	}
}
