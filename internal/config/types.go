package config

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
)

// Config 聚合了系统运行所需的全部配置项。
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Market    MarketConfig    `mapstructure:"market"`
	Backtest  BacktestConfig  `mapstructure:"backtest"`
	Strategy  StrategyConfig  `mapstructure:"strategy"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Monitor   MonitorConfig   `mapstructure:"monitor"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// AppConfig 控制应用级参数。
type AppConfig struct {
	Environment string `mapstructure:"environment"`
}

// MarketConfig 描述行情数据源与观察列表。
type MarketConfig struct {
	Exchange     string        `mapstructure:"exchange"`
	Watchlist    []string      `mapstructure:"watchlist"`
	Timeframe    string        `mapstructure:"timeframe"`
	HistoryLimit int           `mapstructure:"history_limit"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	UseSandbox   bool          `mapstructure:"use_sandbox"`
	Retry        RetryConfig   `mapstructure:"retry"`
}

// RetryConfig 统一控制重试机制。
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	MinDelay    time.Duration `mapstructure:"min_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
}

// BacktestConfig 控制模拟撮合参数。
type BacktestConfig struct {
	InitialCapital  float64 `mapstructure:"initial_capital"`
	CommissionRate  float64 `mapstructure:"commission_rate"`
	CapitalFraction float64 `mapstructure:"capital_fraction"`
	WarmUpBars      int     `mapstructure:"warm_up_bars"`
}

// StrategyConfig 管理各策略参数与组合权重。
type StrategyConfig struct {
	RSI              RSIConfig          `mapstructure:"rsi"`
	MACD             MACDConfig         `mapstructure:"macd"`
	Bollinger        BollingerConfig    `mapstructure:"bollinger"`
	MACross          MACrossConfig      `mapstructure:"ma_cross"`
	Volume           VolumeConfig       `mapstructure:"volume"`
	ML               MLConfig           `mapstructure:"ml"`
	CompositeWeights map[string]float64 `mapstructure:"composite_weights"`
}

// RSIConfig 为RSI阈值策略参数。
type RSIConfig struct {
	Period     int     `mapstructure:"period"`
	Oversold   float64 `mapstructure:"oversold"`
	Overbought float64 `mapstructure:"overbought"`
}

// MACDConfig 为MACD交叉策略参数。
type MACDConfig struct {
	Fast   int `mapstructure:"fast"`
	Slow   int `mapstructure:"slow"`
	Signal int `mapstructure:"signal"`
}

// BollingerConfig 为布林带突破策略参数。
type BollingerConfig struct {
	Period int     `mapstructure:"period"`
	StdDev float64 `mapstructure:"std_dev"`
}

// MACrossConfig 为均线交叉策略参数。
type MACrossConfig struct {
	ShortPeriod int `mapstructure:"short_period"`
	LongPeriod  int `mapstructure:"long_period"`
}

// VolumeConfig 为成交量异动策略参数。
type VolumeConfig struct {
	Period    int     `mapstructure:"period"`
	Threshold float64 `mapstructure:"threshold"`
}

// MLConfig 为可训练分类器参数。
type MLConfig struct {
	LearningRate float64 `mapstructure:"learning_rate"`
	Epochs       int     `mapstructure:"epochs"`
	MinSamples   int     `mapstructure:"min_samples"`
}

// NotifyConfig 控制信号提醒行为。
type NotifyConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	MinStrength float64 `mapstructure:"min_strength"`
}

// SchedulerConfig 控制主循环节奏。
type SchedulerConfig struct {
	ScanInterval     time.Duration `mapstructure:"scan_interval"`
	BacktestInterval time.Duration `mapstructure:"backtest_interval"`
}

// MonitorConfig 控制监控接口。
type MonitorConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// DatabaseConfig 管理数据库连接。
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	InMemory        bool          `mapstructure:"in_memory"`
}

// LoggingConfig 控制日志输出。
type LoggingConfig struct {
	Level            string   `mapstructure:"level"`
	Encoding         string   `mapstructure:"encoding"`
	Development      bool     `mapstructure:"development"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// Validate 对配置进行基本校验。
func (c *Config) Validate() error {
	var err error

	if c.App.Environment == "" {
		err = multierr.Append(err, errors.New("app.environment 不能为空"))
	}
	if c.Market.Exchange == "" {
		err = multierr.Append(err, errors.New("market.exchange 不能为空"))
	}
	if len(c.Market.Watchlist) == 0 {
		err = multierr.Append(err, errors.New("market.watchlist 至少包含一个标的"))
	}
	if c.Market.Timeframe == "" {
		err = multierr.Append(err, errors.New("market.timeframe 不能为空"))
	}
	if c.Market.HistoryLimit <= 0 {
		err = multierr.Append(err, errors.New("market.history_limit 必须大于0"))
	}
	if c.Market.CacheTTL < 0 {
		err = multierr.Append(err, errors.New("market.cache_ttl 不能为负"))
	}
	if c.Market.Retry.MaxAttempts <= 0 {
		err = multierr.Append(err, errors.New("market.retry.max_attempts 必须大于0"))
	}
	if c.Market.Retry.MinDelay <= 0 || c.Market.Retry.MaxDelay <= 0 {
		err = multierr.Append(err, errors.New("market.retry.delay 必须为正"))
	}
	if c.Market.Retry.MinDelay > c.Market.Retry.MaxDelay {
		err = multierr.Append(err, errors.New("market.retry.min_delay 不能大于 max_delay"))
	}
	if c.Backtest.InitialCapital <= 0 {
		err = multierr.Append(err, errors.New("backtest.initial_capital 必须大于0"))
	}
	if c.Backtest.CommissionRate < 0 || c.Backtest.CommissionRate > 0.1 {
		err = multierr.Append(err, errors.New("backtest.commission_rate 应位于[0,0.1]"))
	}
	if c.Backtest.CapitalFraction <= 0 || c.Backtest.CapitalFraction > 1 {
		err = multierr.Append(err, errors.New("backtest.capital_fraction 必须位于(0,1]"))
	}
	if c.Backtest.WarmUpBars <= 0 {
		err = multierr.Append(err, errors.New("backtest.warm_up_bars 必须大于0"))
	}
	if c.Strategy.RSI.Period <= 1 {
		err = multierr.Append(err, errors.New("strategy.rsi.period 必须大于1"))
	}
	if c.Strategy.RSI.Oversold <= 0 || c.Strategy.RSI.Overbought >= 100 ||
		c.Strategy.RSI.Oversold >= c.Strategy.RSI.Overbought {
		err = multierr.Append(err, errors.New("strategy.rsi 阈值必须满足 0 < oversold < overbought < 100"))
	}
	if c.Strategy.MACD.Fast <= 0 || c.Strategy.MACD.Slow <= 0 || c.Strategy.MACD.Signal <= 0 {
		err = multierr.Append(err, errors.New("strategy.macd 周期必须为正"))
	}
	if c.Strategy.MACD.Fast >= c.Strategy.MACD.Slow {
		err = multierr.Append(err, errors.New("strategy.macd.fast 必须小于 slow"))
	}
	if c.Strategy.Bollinger.Period <= 1 || c.Strategy.Bollinger.StdDev <= 0 {
		err = multierr.Append(err, errors.New("strategy.bollinger 参数必须为正"))
	}
	if c.Strategy.MACross.ShortPeriod <= 0 || c.Strategy.MACross.LongPeriod <= 0 {
		err = multierr.Append(err, errors.New("strategy.ma_cross 周期必须为正"))
	}
	if c.Strategy.MACross.ShortPeriod >= c.Strategy.MACross.LongPeriod {
		err = multierr.Append(err, errors.New("strategy.ma_cross.short_period 必须小于 long_period"))
	}
	if c.Strategy.Volume.Period <= 1 || c.Strategy.Volume.Threshold <= 0 {
		err = multierr.Append(err, errors.New("strategy.volume 参数必须为正"))
	}
	if c.Strategy.ML.LearningRate <= 0 {
		err = multierr.Append(err, errors.New("strategy.ml.learning_rate 必须大于0"))
	}
	if c.Strategy.ML.Epochs <= 0 {
		err = multierr.Append(err, errors.New("strategy.ml.epochs 必须大于0"))
	}
	if c.Strategy.ML.MinSamples <= 0 {
		err = multierr.Append(err, errors.New("strategy.ml.min_samples 必须大于0"))
	}
	for name, weight := range c.Strategy.CompositeWeights {
		if weight <= 0 {
			err = multierr.Append(err, fmt.Errorf("strategy.composite_weights.%s 必须大于0", name))
		}
	}
	if c.Notify.MinStrength < 0 || c.Notify.MinStrength > 1 {
		err = multierr.Append(err, errors.New("notify.min_strength 必须位于[0,1]"))
	}
	if c.Scheduler.ScanInterval <= 0 {
		err = multierr.Append(err, errors.New("scheduler.scan_interval 必须大于0"))
	}
	if c.Scheduler.BacktestInterval < c.Scheduler.ScanInterval {
		err = multierr.Append(err, errors.New("scheduler.backtest_interval 不应小于 scan_interval"))
	}
	if c.Monitor.Enabled && (c.Monitor.Port <= 0 || c.Monitor.Port > 65535) {
		err = multierr.Append(err, errors.New("monitor.port 必须位于(0,65535]"))
	}
	if c.Database.Path == "" && !c.Database.InMemory {
		err = multierr.Append(err, errors.New("database.path 不能为空"))
	}
	if c.Database.MaxOpenConns <= 0 {
		err = multierr.Append(err, errors.New("database.max_open_conns 必须大于0"))
	}
	if c.Database.MaxIdleConns < 0 {
		err = multierr.Append(err, errors.New("database.max_idle_conns 不能为负"))
	}
	if c.Database.ConnMaxLifetime < 0 {
		err = multierr.Append(err, errors.New("database.conn_max_lifetime 不能为负"))
	}
	if c.Logging.Level == "" {
		err = multierr.Append(err, errors.New("logging.level 不能为空"))
	}
	if c.Logging.Encoding == "" {
		err = multierr.Append(err, errors.New("logging.encoding 不能为空"))
	}
	if len(c.Logging.OutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.output_paths 至少包含一个输出目标"))
	}
	if len(c.Logging.ErrorOutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.error_output_paths 至少包含一个输出目标"))
	}

	if err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}

	return nil
}
