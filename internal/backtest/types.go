package backtest

import "time"

// Direction 表示持仓方向。
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// TradeStatus 表示交易生命周期状态，CLOSED 后不再变更。
type TradeStatus string

const (
	TradeOpen   TradeStatus = "OPEN"
	TradeClosed TradeStatus = "CLOSED"
)

// Trade 为一次开平仓的完整记录，归属于单次回测。
type Trade struct {
	Symbol      string      `json:"symbol"`
	Strategy    string      `json:"strategy"`
	Direction   Direction   `json:"direction"`
	Quantity    int         `json:"quantity"`
	EntryTime   time.Time   `json:"entry_time"`
	EntryPrice  float64     `json:"entry_price"`
	ExitTime    time.Time   `json:"exit_time"`
	ExitPrice   float64     `json:"exit_price"`
	RealizedPnL float64     `json:"realized_pnl"`
	Commission  float64     `json:"commission"`
	Status      TradeStatus `json:"status"`
}

// EquityPoint 为权益曲线上的一个采样点。
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Equity    float64   `json:"equity"`
}

// Result 汇总一次回测的全部绩效指标，构造后不可变。
type Result struct {
	StrategyName     string        `json:"strategy_name"`
	Symbol           string        `json:"symbol"`
	TotalTrades      int           `json:"total_trades"`
	WinningTrades    int           `json:"winning_trades"`
	LosingTrades     int           `json:"losing_trades"`
	WinRate          float64       `json:"win_rate"`
	TotalReturn      float64       `json:"total_return"`
	SharpeRatio      float64       `json:"sharpe_ratio"`
	MaxDrawdown      float64       `json:"max_drawdown"`
	AvgTradeDuration float64       `json:"avg_trade_duration"`
	ProfitFactor     float64       `json:"profit_factor"`
	TotalFees        float64       `json:"total_fees"`
	NetProfit        float64       `json:"net_profit"`
	SignalsAccuracy  float64       `json:"signals_accuracy"`
	Trades           []Trade       `json:"trades"`
	EquityCurve      []EquityPoint `json:"equity_curve"`
}
