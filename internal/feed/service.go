package feed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"finance-bot/internal/config"
	"finance-bot/internal/market"
	"finance-bot/internal/store"
)

// Fetcher 抽象行情来源，便于在测试中注入替身。
type Fetcher interface {
	FetchCandles(ctx context.Context, symbol string, limit int) ([]market.Bar, error)
	FetchQuote(ctx context.Context, symbol string) (market.Quote, error)
}

// Snapshot 聚合一个标的的历史K线与最新行情。
type Snapshot struct {
	Symbol      string
	Bars        []market.Bar
	Quote       market.Quote
	RetrievedAt time.Time
}

// Service 在行情客户端之上提供缓存读穿与快照聚合。
type Service struct {
	cfg     config.MarketConfig
	fetcher Fetcher
	cache   *barCache
	logger  *zap.Logger
}

// NewService 创建行情服务并初始化缓存表。
func NewService(cfg config.MarketConfig, fetcher Fetcher, st *store.Store, logger *zap.Logger) (*Service, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("feed: fetcher 不能为空")
	}
	if st == nil {
		return nil, fmt.Errorf("feed: store 不能为空")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cache, err := newBarCache(st.DB(), cfg.CacheTTL)
	if err != nil {
		return nil, err
	}

	return &Service{
		cfg:     cfg,
		fetcher: fetcher,
		cache:   cache,
		logger:  logger,
	}, nil
}

// History 返回最近 limit 根K线，优先命中缓存。
func (s *Service) History(ctx context.Context, symbol string, limit int) ([]market.Bar, error) {
	if limit <= 0 {
		limit = s.cfg.HistoryLimit
	}

	cached, hit, err := s.cache.load(ctx, symbol, s.cfg.Timeframe, limit)
	if err != nil {
		s.logger.Warn("读取K线缓存失败，回退到交易所",
			zap.String("symbol", symbol),
			zap.Error(err),
		)
	}
	if hit {
		s.logger.Debug("K线缓存命中",
			zap.String("symbol", symbol),
			zap.Int("bars", len(cached)),
		)
		return cached, nil
	}

	bars, err := s.fetcher.FetchCandles(ctx, symbol, limit)
	if err != nil {
		return nil, err
	}

	if err := market.ValidateSeries(bars); err != nil {
		return nil, fmt.Errorf("feed: 交易所返回的序列无效: %w", err)
	}

	if err := s.cache.save(ctx, symbol, s.cfg.Timeframe, bars); err != nil {
		s.logger.Warn("写入K线缓存失败",
			zap.String("symbol", symbol),
			zap.Error(err),
		)
	}

	return bars, nil
}

// GetSnapshot 并发拉取历史K线与最新行情。
func (s *Service) GetSnapshot(ctx context.Context, symbol string) (Snapshot, error) {
	var (
		bars  []market.Bar
		quote market.Quote
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		data, err := s.History(groupCtx, symbol, s.cfg.HistoryLimit)
		if err != nil {
			return err
		}
		bars = data
		return nil
	})

	group.Go(func() error {
		data, err := s.fetcher.FetchQuote(groupCtx, symbol)
		if err != nil {
			return err
		}
		quote = data
		return nil
	})

	if err := group.Wait(); err != nil {
		return Snapshot{}, err
	}

	snapshot := Snapshot{
		Symbol:      symbol,
		Bars:        bars,
		Quote:       quote,
		RetrievedAt: time.Now().UTC(),
	}

	s.logger.Debug("行情快照获取完成",
		zap.String("symbol", snapshot.Symbol),
		zap.Time("retrieved_at", snapshot.RetrievedAt),
		zap.Int("bar_count", len(snapshot.Bars)),
		zap.Float64("price", snapshot.Quote.Price),
	)

	return snapshot, nil
}
