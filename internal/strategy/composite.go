package strategy

import "finance-bot/internal/market"

// 组合信号的加权占比需超过该阈值才形成共识。
const consensusRatio = 0.6

// Member 为组合策略中的一个带权成员。
type Member struct {
	Strategy Strategy
	Weight   float64
}

// Composite 按权重聚合多个独立策略的信号。
type Composite struct {
	name    string
	members []Member
}

// NewComposite 构造组合策略，非正权重回退为1。
func NewComposite(members []Member) *Composite {
	normalized := make([]Member, 0, len(members))
	for _, m := range members {
		if m.Strategy == nil {
			continue
		}
		if m.Weight <= 0 {
			m.Weight = 1.0
		}
		normalized = append(normalized, m)
	}
	return &Composite{
		name:    "Composite",
		members: normalized,
	}
}

func (c *Composite) Name() string {
	return c.name
}

// GenerateSignal 汇总各成员的加权信号强度并按占比阈值裁决。
func (c *Composite) GenerateSignal(bars []market.Bar) Signal {
	var buyWeight, sellWeight, holdWeight float64

	for _, member := range c.members {
		signal := member.Strategy.GenerateSignal(bars)
		weighted := member.Strategy.SignalStrength(bars) * member.Weight

		switch signal {
		case SignalBuy:
			buyWeight += weighted
		case SignalSell:
			sellWeight += weighted
		default:
			holdWeight += weighted
		}
	}

	totalWeight := buyWeight + sellWeight + holdWeight
	if totalWeight == 0 {
		return SignalHold
	}

	switch {
	case buyWeight/totalWeight > consensusRatio:
		return SignalBuy
	case sellWeight/totalWeight > consensusRatio:
		return SignalSell
	default:
		return SignalHold
	}
}

func (c *Composite) SignalStrength(bars []market.Bar) float64 {
	return neutralStrength
}
