package backtest

import "errors"

var (
	// ErrInsufficientData 表示过滤后的序列不足以完成预热。
	ErrInsufficientData = errors.New("backtest: insufficient data")
	// ErrUnknownStrategy 表示策略未注册。
	ErrUnknownStrategy = errors.New("backtest: unknown strategy")
)
