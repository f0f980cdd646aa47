package feed

import "errors"

var (
	// ErrMaintenance 表示交易所处于维护状态，需要上层跳过本轮扫描。
	ErrMaintenance = errors.New("exchange on maintenance")
	// ErrNoData 表示交易所未返回任何K线。
	ErrNoData = errors.New("feed: no candle data returned")
)
