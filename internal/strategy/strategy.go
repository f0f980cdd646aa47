package strategy

import "finance-bot/internal/market"

// Signal 为策略输出的离散交易信号。
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// neutralStrength 为信号强度的中性默认值。
const neutralStrength = 0.5

// Strategy 定义信号生成器的能力集合。
// 实现必须保证不 panic：数据不足或内部异常一律降级为 HOLD。
type Strategy interface {
	// Name 返回策略展示名称，如 "RSI_14"。
	Name() string

	// GenerateSignal 基于截至当前的K线窗口给出信号。
	GenerateSignal(bars []market.Bar) Signal

	// SignalStrength 返回[0,1]区间的信号置信度。
	SignalStrength(bars []market.Bar) float64
}

// Trainable 为需要先训练后使用的策略扩展接口。
type Trainable interface {
	Strategy

	// Train 在给定历史窗口上拟合模型。
	Train(bars []market.Bar) error

	// Trained 报告模型是否已完成训练。
	Trained() bool
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
