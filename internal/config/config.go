package config

import (
	"errors"
	"fmt"
	"strings"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	defaultConfigPath = "configs/config.yaml"
	envPrefix         = "finbot"
)

// Load 读取配置文件并结合环境变量返回 Config。
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = defaultConfigPath
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	replacer := strings.NewReplacer(".", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("未找到配置文件 %q: %w", path, err)
		}
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.environment", "development")

	v.SetDefault("market.exchange", "binance")
	v.SetDefault("market.watchlist", []string{"BTC/USDT", "ETH/USDT"})
	v.SetDefault("market.timeframe", "1d")
	v.SetDefault("market.history_limit", 500)
	v.SetDefault("market.cache_ttl", "1h")
	v.SetDefault("market.use_sandbox", false)
	v.SetDefault("market.retry.max_attempts", 5)
	v.SetDefault("market.retry.min_delay", "500ms")
	v.SetDefault("market.retry.max_delay", "5s")

	v.SetDefault("backtest.initial_capital", 10000.0)
	v.SetDefault("backtest.commission_rate", 0.001)
	v.SetDefault("backtest.capital_fraction", 0.95)
	v.SetDefault("backtest.warm_up_bars", 50)

	v.SetDefault("strategy.rsi.period", 14)
	v.SetDefault("strategy.rsi.oversold", 30)
	v.SetDefault("strategy.rsi.overbought", 70)
	v.SetDefault("strategy.macd.fast", 12)
	v.SetDefault("strategy.macd.slow", 26)
	v.SetDefault("strategy.macd.signal", 9)
	v.SetDefault("strategy.bollinger.period", 20)
	v.SetDefault("strategy.bollinger.std_dev", 2)
	v.SetDefault("strategy.ma_cross.short_period", 10)
	v.SetDefault("strategy.ma_cross.long_period", 30)
	v.SetDefault("strategy.volume.period", 20)
	v.SetDefault("strategy.volume.threshold", 1.5)
	v.SetDefault("strategy.ml.learning_rate", 0.05)
	v.SetDefault("strategy.ml.epochs", 200)
	v.SetDefault("strategy.ml.min_samples", 100)
	v.SetDefault("strategy.composite_weights", map[string]float64{
		"rsi":      1.0,
		"macd":     1.2,
		"bb":       0.8,
		"ma_cross": 1.0,
		"ml":       1.5,
		"volume":   0.7,
	})

	v.SetDefault("notify.enabled", true)
	v.SetDefault("notify.min_strength", 0.6)

	v.SetDefault("scheduler.scan_interval", "5m")
	v.SetDefault("scheduler.backtest_interval", "24h")

	v.SetDefault("monitor.enabled", true)
	v.SetDefault("monitor.port", 8787)

	v.SetDefault("database.path", "data/finance_bot.db")
	v.SetDefault("database.max_open_conns", 4)
	v.SetDefault("database.max_idle_conns", 4)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.in_memory", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "console")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.output_paths", []string{"stdout"})
	v.SetDefault("logging.error_output_paths", []string{"stderr"})
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
