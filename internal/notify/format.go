package notify

import (
	"fmt"
	"strings"
	"time"

	"finance-bot/internal/strategy"
)

const strengthBarWidth = 5

// FormatSignalAlert 渲染单条信号提醒文本。
func FormatSignalAlert(alert Alert) string {
	ts := alert.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "TRADING SIGNAL [%s]\n", signalTag(alert.Signal))
	fmt.Fprintf(&b, "Symbol: %s\n", alert.Symbol)
	fmt.Fprintf(&b, "Signal: %s\n", alert.Signal)
	fmt.Fprintf(&b, "Strategy: %s\n", alert.Strategy)
	fmt.Fprintf(&b, "Price: $%.2f\n", alert.Price)
	fmt.Fprintf(&b, "Strength: %s (%.0f%%)\n", StrengthBar(alert.Strength), alert.Strength*100)
	if len(alert.Supporting) > 0 {
		fmt.Fprintf(&b, "Supported by: %s\n", strings.Join(alert.Supporting, ", "))
	}
	fmt.Fprintf(&b, "Time: %s", ts.Format("15:04:05"))
	return b.String()
}

// FormatBacktestSummary 渲染回测摘要文本。
func FormatBacktestSummary(summary Summary) string {
	ts := summary.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	var b strings.Builder
	b.WriteString("BACKTEST RESULTS\n")
	fmt.Fprintf(&b, "Symbol: %s\n", summary.Symbol)
	fmt.Fprintf(&b, "Best Strategy: %s\n", summary.BestStrategy)
	fmt.Fprintf(&b, "Total Return: %.2f%%\n", summary.TotalReturn*100)
	fmt.Fprintf(&b, "Win Rate: %.2f%%\n", summary.WinRate*100)
	fmt.Fprintf(&b, "Signal Accuracy: %.2f%%\n", summary.SignalsAccuracy*100)
	fmt.Fprintf(&b, "Time: %s", ts.Format("15:04:05"))
	return b.String()
}

// StrengthBar 将[0,1]的信号强度渲染为五格进度条。
func StrengthBar(strength float64) string {
	if strength < 0 {
		strength = 0
	}
	if strength > 1 {
		strength = 1
	}
	filled := int(strength * strengthBarWidth)
	return strings.Repeat("█", filled) + strings.Repeat("░", strengthBarWidth-filled)
}

func signalTag(signal strategy.Signal) string {
	switch signal {
	case strategy.SignalBuy:
		return "LONG"
	case strategy.SignalSell:
		return "EXIT"
	default:
		return "HOLD"
	}
}
