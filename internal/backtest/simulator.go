package backtest

import (
	"time"

	"finance-bot/internal/market"
	"finance-bot/internal/strategy"
)

// position 为状态机的持仓状态。规则集只会产生 FLAT/LONG，
// SHORT 保留用于方向对称的平仓计算（见 DESIGN.md）。
type position int

const (
	positionFlat position = iota
	positionLong
	positionShort
)

// simulator 为单次回测的持仓状态机：交易台账、权益曲线与
// 信号命中统计都在这里累积，单线程使用。
type simulator struct {
	cfg        Config
	symbol     string
	strategyID string

	cash     float64
	position position
	trades   []Trade
	curve    []EquityPoint

	signalsCorrect int
	signalsTotal   int
}

func newSimulator(cfg Config, symbol, strategyID string) *simulator {
	return &simulator{
		cfg:        cfg,
		symbol:     symbol,
		strategyID: strategyID,
		cash:       cfg.InitialCapital,
		position:   positionFlat,
	}
}

// observeSignal 以下一根K线校验信号方向。HOLD 恒计为正确；
// 最后一根K线没有下一收盘价，调用方直接跳过。
func (s *simulator) observeSignal(signal strategy.Signal, currentClose, nextClose float64) {
	switch signal {
	case strategy.SignalBuy:
		if nextClose > currentClose {
			s.signalsCorrect++
		}
	case strategy.SignalSell:
		if nextClose < currentClose {
			s.signalsCorrect++
		}
	default:
		s.signalsCorrect++
	}
	s.signalsTotal++
}

// apply 按信号推进状态机。
func (s *simulator) apply(signal strategy.Signal, bar market.Bar) {
	switch {
	case signal == strategy.SignalBuy && s.position != positionLong:
		if s.position == positionShort {
			s.closeLastTrade(bar.Close, bar.Timestamp)
		}
		s.openLong(bar)

	case signal == strategy.SignalSell && s.position != positionShort:
		// 多头平仓后保持空仓，不反手做空。
		if s.position == positionLong {
			s.closeLastTrade(bar.Close, bar.Timestamp)
			s.position = positionFlat
		}
	}
}

func (s *simulator) openLong(bar market.Bar) {
	quantity := int(s.cash * s.cfg.CapitalFraction / bar.Close)
	if quantity <= 0 {
		return
	}

	s.trades = append(s.trades, Trade{
		Symbol:     s.symbol,
		Strategy:   s.strategyID,
		Direction:  DirectionLong,
		Quantity:   quantity,
		EntryTime:  bar.Timestamp,
		EntryPrice: bar.Close,
		Status:     TradeOpen,
	})
	s.position = positionLong
	s.cash -= float64(quantity) * bar.Close * (1 + s.cfg.CommissionRate)
}

// closeLastTrade 平掉最近一笔未平仓交易并将已实现盈亏计入现金。
func (s *simulator) closeLastTrade(exitPrice float64, exitTime time.Time) {
	if len(s.trades) == 0 {
		return
	}
	trade := &s.trades[len(s.trades)-1]
	if trade.Status == TradeClosed {
		return
	}
	closeTrade(trade, exitPrice, exitTime, s.cfg.CommissionRate)
	s.cash += trade.RealizedPnL
}

// markToMarket 记录当根K线的权益：现金加未平仓多头的浮动盈亏。
func (s *simulator) markToMarket(bar market.Bar) {
	equity := s.cash
	if s.position == positionLong && len(s.trades) > 0 {
		last := s.trades[len(s.trades)-1]
		equity += (bar.Close - last.EntryPrice) * float64(last.Quantity)
	}
	s.curve = append(s.curve, EquityPoint{Timestamp: bar.Timestamp, Equity: equity})
}

// finalize 在序列结束时对未平仓交易做强制平仓。
func (s *simulator) finalize(lastBar market.Bar) {
	if len(s.trades) == 0 {
		return
	}
	if s.trades[len(s.trades)-1].Status == TradeOpen {
		s.closeLastTrade(lastBar.Close, lastBar.Timestamp)
		s.position = positionFlat
	}
}

// closeTrade 结算一笔交易：方向化盈亏扣除双边佣金后落账，
// 状态置为 CLOSED 后不可再变更。
func closeTrade(t *Trade, exitPrice float64, exitTime time.Time, commissionRate float64) {
	if t.Status == TradeClosed {
		return
	}

	pnl := (exitPrice - t.EntryPrice) * float64(t.Quantity)
	if t.Direction == DirectionShort {
		pnl = -pnl
	}

	t.Commission = (t.EntryPrice + exitPrice) * float64(t.Quantity) * commissionRate
	t.RealizedPnL = pnl - t.Commission
	t.ExitPrice = exitPrice
	t.ExitTime = exitTime
	t.Status = TradeClosed
}
