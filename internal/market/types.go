package market

import "time"

// Bar 代表单根K线。
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Quote 表示某个标的的最新行情。
type Quote struct {
	Symbol        string
	Price         float64
	Open          float64
	High          float64
	Low           float64
	Volume        float64
	PreviousClose float64
	Timestamp     time.Time
}

// Range 表示闭区间时间过滤条件，零值边界表示不限制。
type Range struct {
	Start time.Time
	End   time.Time
}

// Filter 返回落在区间内的K线，输入保持升序时输出同样升序。
func (r Range) Filter(bars []Bar) []Bar {
	if r.Start.IsZero() && r.End.IsZero() {
		return bars
	}

	filtered := make([]Bar, 0, len(bars))
	for _, bar := range bars {
		if !r.Start.IsZero() && bar.Timestamp.Before(r.Start) {
			continue
		}
		if !r.End.IsZero() && bar.Timestamp.After(r.End) {
			continue
		}
		filtered = append(filtered, bar)
	}
	return filtered
}

// Closes 提取收盘价序列。
func Closes(bars []Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}
	return closes
}
