package backtest

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// 年化因子按一根K线约等于一个交易日折算。
const annualFactor = 252

// buildResult 从交易台账与权益曲线归并出绩效指标。
// 没有已平仓交易时返回规范空结果。
func buildResult(strategyID, symbol string, cfg Config, trades []Trade, curve []EquityPoint, correct, total int) Result {
	closed := make([]Trade, 0, len(trades))
	for _, t := range trades {
		if t.Status == TradeClosed {
			closed = append(closed, t)
		}
	}

	if len(closed) == 0 {
		return emptyResult(strategyID, symbol)
	}

	var (
		totalProfit float64
		totalLoss   float64
		winning     int
		losing      int
	)
	for _, t := range closed {
		switch {
		case t.RealizedPnL > 0:
			totalProfit += t.RealizedPnL
			winning++
		case t.RealizedPnL < 0:
			totalLoss += t.RealizedPnL
			losing++
		}
	}

	totalTrades := len(closed)
	winRate := float64(winning) / float64(totalTrades)
	netProfit := totalProfit + totalLoss
	totalReturn := netProfit / cfg.InitialCapital

	// 亏损和为0时盈亏比定义为0，绝不输出 Inf/NaN。
	profitFactor := 0.0
	if totalLoss != 0 {
		profitFactor = math.Abs(totalProfit / totalLoss)
	}

	var durations, fees float64
	for _, t := range closed {
		durations += t.ExitTime.Sub(t.EntryTime).Hours() / 24
		fees += t.Commission
	}
	avgDuration := durations / float64(totalTrades)

	accuracy := 0.0
	if total > 0 {
		accuracy = float64(correct) / float64(total)
	}

	return Result{
		StrategyName:     strategyID,
		Symbol:           symbol,
		TotalTrades:      totalTrades,
		WinningTrades:    winning,
		LosingTrades:     losing,
		WinRate:          winRate,
		TotalReturn:      totalReturn,
		SharpeRatio:      sharpeRatio(curve),
		MaxDrawdown:      maxDrawdown(curve),
		AvgTradeDuration: avgDuration,
		ProfitFactor:     profitFactor,
		TotalFees:        fees,
		NetProfit:        netProfit,
		SignalsAccuracy:  accuracy,
		Trades:           closed,
		EquityCurve:      curve,
	}
}

// sharpeRatio 以相邻权益点的收益率序列计算年化夏普比率。
// 样本不足或零方差时返回0。
func sharpeRatio(curve []EquityPoint) float64 {
	returns := periodReturns(curve)
	if len(returns) < 2 {
		return 0
	}

	mean := stat.Mean(returns, nil)
	std := stat.StdDev(returns, nil)
	if std == 0 || math.IsNaN(std) {
		return 0
	}
	return mean / std * math.Sqrt(annualFactor)
}

// periodReturns 返回相邻权益点的百分比变化，首点被丢弃。
func periodReturns(curve []EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			continue
		}
		returns = append(returns, curve[i].Equity/prev-1)
	}
	return returns
}

// maxDrawdown 返回权益相对滚动峰值的最大回撤，非正小数。
func maxDrawdown(curve []EquityPoint) float64 {
	var peak float64
	minDD := 0.0
	for _, point := range curve {
		if point.Equity > peak {
			peak = point.Equity
		}
		if peak <= 0 {
			continue
		}
		dd := (point.Equity - peak) / peak
		if dd < minDD {
			minDD = dd
		}
	}
	return minDD
}

// emptyResult 为任何不满足回测条件时返回的规范空结果。
func emptyResult(strategyID, symbol string) Result {
	return Result{
		StrategyName: strategyID,
		Symbol:       symbol,
		Trades:       []Trade{},
		EquityCurve:  []EquityPoint{},
	}
}
