package strategy

import (
	"math"

	talib "github.com/markcheno/go-talib"

	"finance-bot/internal/indicator"
	"finance-bot/internal/market"
)

const rsiFeaturePeriod = 14

// featureHorizons 为多尺度回看窗口，决定特征矩阵的最小可用长度。
var featureHorizons = []int{2, 5, 10, 30, 60}

// maxHorizon 返回最长回看窗口。
func maxHorizon() int {
	max := featureHorizons[0]
	for _, h := range featureHorizons[1:] {
		if h > max {
			max = h
		}
	}
	return max
}

// buildFeatures 为每根K线构造分类特征与目标标签。
//
// 特征列依次为 close/volume/open/high/low、每个回看窗口的
// 收盘价/均值比与前移滚动趋势和、以及RSI；顺序固定，
// 模型权重按该顺序对齐。特征不完整的行返回 nil，
// 最后一行的目标为 NaN（没有下一根K线）。
func buildFeatures(bars []market.Bar) (features [][]float64, targets []float64) {
	n := len(bars)
	first := maxHorizon()
	if rsiFeaturePeriod > first {
		first = rsiFeaturePeriod
	}
	if n <= first {
		return nil, nil
	}

	series := indicator.NewSeries(bars)
	closes := series.Close

	// 目标：下一根收盘价是否更高。前缀和用于滚动趋势特征。
	targets = make([]float64, n)
	prefix := make([]float64, n+1)
	for i := 0; i < n; i++ {
		if i < n-1 {
			if closes[i+1] > closes[i] {
				targets[i] = 1
			}
		} else {
			targets[i] = math.NaN()
		}
		label := targets[i]
		if math.IsNaN(label) {
			label = 0
		}
		prefix[i+1] = prefix[i] + label
	}

	smas := make([][]float64, len(featureHorizons))
	for k, horizon := range featureHorizons {
		smas[k] = talib.Sma(closes, horizon)
	}
	rsi := talib.Rsi(closes, rsiFeaturePeriod)

	features = make([][]float64, n)
	for i := first; i < n; i++ {
		row := make([]float64, 0, 5+2*len(featureHorizons)+1)
		row = append(row, closes[i], series.Volume[i], series.Open[i], series.High[i], series.Low[i])
		for k, horizon := range featureHorizons {
			row = append(row, indicator.SafeDivide(closes[i], smas[k][i]))
			// 前移一位的滚动和：统计窗口内此前 horizon 根K线的上涨次数。
			row = append(row, prefix[i]-prefix[i-horizon])
		}
		row = append(row, rsi[i])
		features[i] = row
	}

	return features, targets
}

// latestRSIFeature 返回特征行中的RSI列取值。
func latestRSIFeature(row []float64) float64 {
	if len(row) == 0 {
		return math.NaN()
	}
	return row[len(row)-1]
}
