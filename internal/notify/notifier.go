package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"finance-bot/internal/strategy"
)

// Alert 描述一次可交易信号提醒。
type Alert struct {
	Symbol     string
	Signal     strategy.Signal
	Strategy   string
	Price      float64
	Strength   float64
	Supporting []string
	Timestamp  time.Time
}

// Summary 描述一次回测结果摘要。
type Summary struct {
	Symbol          string
	BestStrategy    string
	TotalReturn     float64
	WinRate         float64
	SignalsAccuracy float64
	Timestamp       time.Time
}

// Notifier 抽象消息投递通道。实际的短信/IM投递由外部系统承接，
// 本仓库内置的实现将消息写入结构化日志。
type Notifier interface {
	SignalAlert(ctx context.Context, alert Alert) error
	BacktestSummary(ctx context.Context, summary Summary) error
	SystemAlert(ctx context.Context, message string) error
}

// LogNotifier 通过 zap 输出通知内容。
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier 创建日志通知器。
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SignalAlert(ctx context.Context, alert Alert) error {
	n.logger.Info("交易信号提醒",
		zap.String("symbol", alert.Symbol),
		zap.String("signal", string(alert.Signal)),
		zap.String("strategy", alert.Strategy),
		zap.Float64("price", alert.Price),
		zap.Float64("strength", alert.Strength),
		zap.Strings("supporting", alert.Supporting),
		zap.String("message", FormatSignalAlert(alert)),
	)
	return nil
}

func (n *LogNotifier) BacktestSummary(ctx context.Context, summary Summary) error {
	n.logger.Info("回测结果摘要",
		zap.String("symbol", summary.Symbol),
		zap.String("best_strategy", summary.BestStrategy),
		zap.Float64("total_return", summary.TotalReturn),
		zap.Float64("win_rate", summary.WinRate),
		zap.String("message", FormatBacktestSummary(summary)),
	)
	return nil
}

func (n *LogNotifier) SystemAlert(ctx context.Context, message string) error {
	n.logger.Info("系统提醒", zap.String("message", message))
	return nil
}
