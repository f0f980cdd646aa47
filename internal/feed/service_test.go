package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"finance-bot/internal/config"
	"finance-bot/internal/market"
	"finance-bot/internal/store"
)

type stubFetcher struct {
	bars       []market.Bar
	quote      market.Quote
	candleErr  error
	quoteErr   error
	fetchCalls int
}

func (f *stubFetcher) FetchCandles(ctx context.Context, symbol string, limit int) ([]market.Bar, error) {
	f.fetchCalls++
	if f.candleErr != nil {
		return nil, f.candleErr
	}
	if limit > len(f.bars) {
		limit = len(f.bars)
	}
	return f.bars[len(f.bars)-limit:], nil
}

func (f *stubFetcher) FetchQuote(ctx context.Context, symbol string) (market.Quote, error) {
	if f.quoteErr != nil {
		return market.Quote{}, f.quoteErr
	}
	return f.quote, nil
}

func testBars(n int) []market.Bar {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]market.Bar, n)
	for i := range bars {
		c := 100 + float64(i)
		bars[i] = market.Bar{Timestamp: base.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 100}
	}
	return bars
}

func newTestService(t *testing.T, cfg config.MarketConfig, fetcher Fetcher) *Service {
	t.Helper()

	st, err := store.NewSQLite(config.DatabaseConfig{InMemory: true, MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	svc, err := NewService(cfg, fetcher, st, nil)
	if err != nil {
		t.Fatalf("failed to build feed service: %v", err)
	}
	return svc
}

func TestHistory_CacheReadThrough(t *testing.T) {
	fetcher := &stubFetcher{bars: testBars(20)}
	cfg := config.MarketConfig{Timeframe: "1d", HistoryLimit: 10, CacheTTL: time.Hour}
	svc := newTestService(t, cfg, fetcher)

	first, err := svc.History(context.Background(), "BTC/USDT", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetcher.fetchCalls != 1 {
		t.Fatalf("expected one exchange call on a cold cache, got %d", fetcher.fetchCalls)
	}

	second, err := svc.History(context.Background(), "BTC/USDT", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetcher.fetchCalls != 1 {
		t.Fatalf("expected the second read to hit the cache, got %d exchange calls", fetcher.fetchCalls)
	}
	if len(second) != len(first) {
		t.Fatalf("expected %d cached bars, got %d", len(first), len(second))
	}
	for i := range first {
		if !second[i].Timestamp.Equal(first[i].Timestamp) || second[i].Close != first[i].Close {
			t.Fatalf("cached bar %d differs: %+v vs %+v", i, second[i], first[i])
		}
	}
	if err := market.ValidateSeries(second); err != nil {
		t.Fatalf("cached series must stay sorted: %v", err)
	}
}

func TestHistory_LargerRequestBypassesCache(t *testing.T) {
	fetcher := &stubFetcher{bars: testBars(20)}
	cfg := config.MarketConfig{Timeframe: "1d", HistoryLimit: 10, CacheTTL: time.Hour}
	svc := newTestService(t, cfg, fetcher)

	if _, err := svc.History(context.Background(), "BTC/USDT", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.History(context.Background(), "BTC/USDT", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetcher.fetchCalls != 2 {
		t.Fatalf("expected a cache miss when more bars are requested, got %d exchange calls", fetcher.fetchCalls)
	}
}

func TestHistory_ZeroTTLDisablesCache(t *testing.T) {
	fetcher := &stubFetcher{bars: testBars(20)}
	cfg := config.MarketConfig{Timeframe: "1d", HistoryLimit: 10, CacheTTL: 0}
	svc := newTestService(t, cfg, fetcher)

	for i := 0; i < 2; i++ {
		if _, err := svc.History(context.Background(), "BTC/USDT", 10); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if fetcher.fetchCalls != 2 {
		t.Fatalf("expected every read to reach the exchange with caching off, got %d", fetcher.fetchCalls)
	}
}

func TestHistory_RejectsUnsortedExchangeData(t *testing.T) {
	bars := testBars(10)
	bars[3], bars[7] = bars[7], bars[3]
	fetcher := &stubFetcher{bars: bars}
	cfg := config.MarketConfig{Timeframe: "1d", HistoryLimit: 10, CacheTTL: time.Hour}
	svc := newTestService(t, cfg, fetcher)

	if _, err := svc.History(context.Background(), "BTC/USDT", 10); err == nil {
		t.Fatal("expected unsorted exchange data to be rejected")
	}
}

func TestGetSnapshot(t *testing.T) {
	fetcher := &stubFetcher{
		bars:  testBars(20),
		quote: market.Quote{Symbol: "BTC/USDT", Price: 119},
	}
	cfg := config.MarketConfig{Timeframe: "1d", HistoryLimit: 10, CacheTTL: time.Hour}
	svc := newTestService(t, cfg, fetcher)

	snapshot, err := svc.GetSnapshot(context.Background(), "BTC/USDT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapshot.Bars) != 10 {
		t.Errorf("expected 10 bars in snapshot, got %d", len(snapshot.Bars))
	}
	if snapshot.Quote.Price != 119 {
		t.Errorf("expected quote price 119, got %v", snapshot.Quote.Price)
	}
	if snapshot.RetrievedAt.IsZero() {
		t.Error("expected retrieval timestamp to be set")
	}
}

func TestGetSnapshot_QuoteFailure(t *testing.T) {
	wantErr := errors.New("ticker unavailable")
	fetcher := &stubFetcher{bars: testBars(20), quoteErr: wantErr}
	cfg := config.MarketConfig{Timeframe: "1d", HistoryLimit: 10, CacheTTL: time.Hour}
	svc := newTestService(t, cfg, fetcher)

	if _, err := svc.GetSnapshot(context.Background(), "BTC/USDT"); !errors.Is(err, wantErr) {
		t.Fatalf("expected quote failure to surface, got %v", err)
	}
}
