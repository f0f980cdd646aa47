package market

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsortedSeries 表示K线时间戳未按升序排列。
	ErrUnsortedSeries = errors.New("market: series not sorted by timestamp")
	// ErrDuplicateTimestamp 表示同一标的出现重复时间戳。
	ErrDuplicateTimestamp = errors.New("market: duplicate timestamp in series")
)

// ValidateSeries 校验K线序列满足时间戳严格递增的上游契约。
// 这是回测开始前唯一的致命校验，其他异常均软降级处理。
func ValidateSeries(bars []Bar) error {
	for i := 1; i < len(bars); i++ {
		prev, cur := bars[i-1].Timestamp, bars[i].Timestamp
		if cur.Equal(prev) {
			return fmt.Errorf("%w: index %d (%s)", ErrDuplicateTimestamp, i, cur.Format("2006-01-02T15:04:05Z07:00"))
		}
		if cur.Before(prev) {
			return fmt.Errorf("%w: index %d (%s < %s)", ErrUnsortedSeries, i,
				cur.Format("2006-01-02T15:04:05Z07:00"), prev.Format("2006-01-02T15:04:05Z07:00"))
		}
	}
	return nil
}
