package strategy

import (
	"fmt"
	"math"
	"sync/atomic"

	"gonum.org/v1/gonum/stat"

	"finance-bot/internal/config"
	"finance-bot/internal/market"
)

const (
	trainSplit        = 0.8
	buyThreshold      = 0.6
	sellThreshold     = 0.4
	oversoldBoostRSI  = 30.0
	oversoldBoostRate = 1.5
)

// mlModel 为一次训练得到的不可变逻辑回归参数。
type mlModel struct {
	weights []float64
	bias    float64
	means   []float64
	stds    []float64
}

func (m *mlModel) predict(row []float64) float64 {
	if len(row) != len(m.weights) {
		return math.NaN()
	}
	z := m.bias
	for j, v := range row {
		if m.stds[j] == 0 {
			continue
		}
		z += m.weights[j] * (v - m.means[j]) / m.stds[j]
	}
	return 1 / (1 + math.Exp(-z))
}

// MLStrategy 为可训练的"下一根K线上涨"分类器。
// 训练产出的模型通过原子指针发布，读取方始终看到完整快照，
// 因此 Train 与 GenerateSignal 可以跨协程安全并用。
type MLStrategy struct {
	name  string
	cfg   config.MLConfig
	model atomic.Pointer[mlModel]
}

// NewMLStrategy 构造未训练状态的分类器策略。
func NewMLStrategy(cfg config.MLConfig) *MLStrategy {
	return &MLStrategy{
		name: "ML_Logistic",
		cfg:  cfg,
	}
}

func (s *MLStrategy) Name() string {
	return s.name
}

// Trained 报告是否已有可用模型。
func (s *MLStrategy) Trained() bool {
	return s.model.Load() != nil
}

// Train 在窗口的前80%完整特征行上拟合逻辑回归。
// 训练失败时保留旧模型（若有），调用方决定如何记录。
func (s *MLStrategy) Train(bars []market.Bar) error {
	features, targets := buildFeatures(bars)

	var (
		rows   [][]float64
		labels []float64
	)
	for i, row := range features {
		if row == nil || math.IsNaN(targets[i]) {
			continue
		}
		rows = append(rows, row)
		labels = append(labels, targets[i])
	}

	if len(rows) < s.cfg.MinSamples {
		return fmt.Errorf("strategy: 训练样本不足 (%d < %d)", len(rows), s.cfg.MinSamples)
	}

	trainSize := int(float64(len(rows)) * trainSplit)
	if trainSize < 1 {
		trainSize = 1
	}
	rows = rows[:trainSize]
	labels = labels[:trainSize]

	model := fitLogistic(rows, labels, s.cfg.LearningRate, s.cfg.Epochs)
	s.model.Store(model)
	return nil
}

func (s *MLStrategy) GenerateSignal(bars []market.Bar) Signal {
	p, row, ok := s.probability(bars)
	if !ok {
		return SignalHold
	}

	// RSI超卖时按源规则放大买入概率。
	rsi := latestRSIFeature(row)
	if !math.IsNaN(rsi) && rsi < oversoldBoostRSI {
		p = math.Min(1.0, p*oversoldBoostRate)
	}

	switch {
	case p >= buyThreshold:
		return SignalBuy
	case p <= sellThreshold:
		return SignalSell
	default:
		return SignalHold
	}
}

func (s *MLStrategy) SignalStrength(bars []market.Bar) float64 {
	p, _, ok := s.probability(bars)
	if !ok {
		return neutralStrength
	}
	return clamp01(p)
}

// probability 返回最新K线的类别1概率及其特征行，不可用时报告 false。
func (s *MLStrategy) probability(bars []market.Bar) (float64, []float64, bool) {
	model := s.model.Load()
	if model == nil {
		return 0, nil, false
	}

	features, _ := buildFeatures(bars)
	if len(features) == 0 {
		return 0, nil, false
	}
	row := features[len(features)-1]
	if row == nil {
		return 0, nil, false
	}

	p := model.predict(row)
	if math.IsNaN(p) {
		return 0, nil, false
	}
	return p, row, true
}

// fitLogistic 以批量梯度下降拟合标准化特征上的逻辑回归。
// 权重零初始化且无随机性，同样的输入得到同样的模型。
func fitLogistic(rows [][]float64, labels []float64, learningRate float64, epochs int) *mlModel {
	cols := len(rows[0])
	samples := len(rows)

	means := make([]float64, cols)
	stds := make([]float64, cols)
	column := make([]float64, samples)
	for j := 0; j < cols; j++ {
		for i := range rows {
			column[i] = rows[i][j]
		}
		means[j] = stat.Mean(column, nil)
		stds[j] = stat.StdDev(column, nil)
		if math.IsNaN(stds[j]) {
			stds[j] = 0
		}
	}

	scaled := make([][]float64, samples)
	for i, row := range rows {
		scaled[i] = make([]float64, cols)
		for j, v := range row {
			if stds[j] == 0 {
				continue
			}
			scaled[i][j] = (v - means[j]) / stds[j]
		}
	}

	weights := make([]float64, cols)
	bias := 0.0
	gradW := make([]float64, cols)
	for epoch := 0; epoch < epochs; epoch++ {
		for j := range gradW {
			gradW[j] = 0
		}
		gradB := 0.0

		for i, row := range scaled {
			z := bias
			for j, v := range row {
				z += weights[j] * v
			}
			diff := 1/(1+math.Exp(-z)) - labels[i]
			for j, v := range row {
				gradW[j] += diff * v
			}
			gradB += diff
		}

		step := learningRate / float64(samples)
		for j := range weights {
			weights[j] -= step * gradW[j]
		}
		bias -= step * gradB
	}

	return &mlModel{
		weights: weights,
		bias:    bias,
		means:   means,
		stds:    stds,
	}
}
