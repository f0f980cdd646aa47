package backtest

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// Report 生成多策略对比的文本报告，供通知与命令行输出。
func (e *Engine) Report(symbol string, results map[string]Result) string {
	ranked := Rank(results)

	var b strings.Builder
	line := strings.Repeat("=", 80)

	fmt.Fprintf(&b, "\n%s\n", line)
	fmt.Fprintf(&b, "BACKTESTING REPORT FOR %s\n", symbol)
	fmt.Fprintf(&b, "%s\n", line)
	fmt.Fprintf(&b, "Initial Capital: $%.2f\n", e.cfg.InitialCapital)
	fmt.Fprintf(&b, "Commission: %.3f%% per trade\n", e.cfg.CommissionRate*100)
	fmt.Fprintf(&b, "Test Period: %d periods\n\n", reportPeriods(ranked))

	b.WriteString("STRATEGY PERFORMANCE COMPARISON:\n")
	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 80))

	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Strategy\tTotal Return\tWin Rate\tSignal Accuracy\tTrades\tSharpe\tMax Drawdown\tProfit Factor\tNet Profit\tAvg Duration")
	for _, entry := range ranked {
		r := entry.Result
		fmt.Fprintf(w, "%s\t%.2f%%\t%.2f%%\t%.2f%%\t%d\t%.2f\t%.2f%%\t%.2f\t$%.2f\t%.1f days\n",
			entry.ID,
			r.TotalReturn*100,
			r.WinRate*100,
			r.SignalsAccuracy*100,
			r.TotalTrades,
			r.SharpeRatio,
			r.MaxDrawdown*100,
			r.ProfitFactor,
			r.NetProfit,
			r.AvgTradeDuration,
		)
	}
	w.Flush()
	b.WriteString("\n")

	if len(ranked) > 0 {
		best := ranked[0]
		fmt.Fprintf(&b, "BEST PERFORMING STRATEGY: %s\n", best.ID)
		fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 50))
		fmt.Fprintf(&b, "Total Return: %.2f%%\n", best.Result.TotalReturn*100)
		fmt.Fprintf(&b, "Win Rate: %.2f%%\n", best.Result.WinRate*100)
		fmt.Fprintf(&b, "Signal Accuracy: %.2f%%\n", best.Result.SignalsAccuracy*100)
		fmt.Fprintf(&b, "Sharpe Ratio: %.2f\n", best.Result.SharpeRatio)
		fmt.Fprintf(&b, "Maximum Drawdown: %.2f%%\n", best.Result.MaxDrawdown*100)
		fmt.Fprintf(&b, "Profit Factor: %.2f\n", best.Result.ProfitFactor)
		fmt.Fprintf(&b, "Total Trades: %d\n", best.Result.TotalTrades)
		fmt.Fprintf(&b, "Average Trade Duration: %.1f days\n", best.Result.AvgTradeDuration)
	}

	return b.String()
}

// reportPeriods 取权益曲线最长的结果作为测试期长度。
func reportPeriods(ranked []Ranked) int {
	periods := 0
	for _, entry := range ranked {
		if n := len(entry.Result.EquityCurve); n > periods {
			periods = n
		}
	}
	return periods
}
