package monitor

import (
	"time"

	"finance-bot/internal/strategy"
)

// EventType 表示监控事件类型。
type EventType string

const (
	EventSignal   EventType = "signal"
	EventBacktest EventType = "backtest"
	EventError    EventType = "error"
)

// Event 封装通用监控事件。
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// SignalPayload 记录一次信号翻转。
type SignalPayload struct {
	Symbol   string          `json:"symbol"`
	Signal   strategy.Signal `json:"signal"`
	Previous strategy.Signal `json:"previous"`
	Strategy string          `json:"strategy"`
	Price    float64         `json:"price"`
	Strength float64         `json:"strength"`
}

// BacktestPayload 记录一轮综合回测的结论。
type BacktestPayload struct {
	Symbol          string  `json:"symbol"`
	BestStrategy    string  `json:"best_strategy"`
	TotalReturn     float64 `json:"total_return"`
	WinRate         float64 `json:"win_rate"`
	SignalsAccuracy float64 `json:"signals_accuracy"`
	TotalTrades     int     `json:"total_trades"`
}

// ErrorPayload 记录异常。
type ErrorPayload struct {
	Message string                 `json:"message"`
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}
