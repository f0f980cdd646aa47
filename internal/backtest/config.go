package backtest

import "finance-bot/internal/config"

// Config 定义回测参数。
type Config struct {
	InitialCapital  float64 // 初始资金
	CommissionRate  float64 // 单边佣金率
	CapitalFraction float64 // 每次开仓动用的资金比例
	WarmUpBars      int     // 决策前所需的最少历史K线数
}

// NewConfig 从应用配置映射回测参数。
func NewConfig(cfg config.BacktestConfig) Config {
	return Config{
		InitialCapital:  cfg.InitialCapital,
		CommissionRate:  cfg.CommissionRate,
		CapitalFraction: cfg.CapitalFraction,
		WarmUpBars:      cfg.WarmUpBars,
	}
}

func (c Config) normalize() Config {
	cfg := c
	if cfg.InitialCapital <= 0 {
		cfg.InitialCapital = 10000
	}
	if cfg.CommissionRate < 0 {
		cfg.CommissionRate = 0.001
	}
	if cfg.CapitalFraction <= 0 || cfg.CapitalFraction > 1 {
		cfg.CapitalFraction = 0.95
	}
	if cfg.WarmUpBars <= 0 {
		cfg.WarmUpBars = 50
	}
	return cfg
}
