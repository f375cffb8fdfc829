package feed

import (
	"context"
	"testing"
	"time"

	"candlerank/internal/models"
)

type stubProvider struct {
	candles []models.Candle
	err     error
	calls   int

	gotSymbol   string
	gotInterval string
	gotRange    string
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Fetch(ctx context.Context, symbol, interval, rng string) ([]models.Candle, error) {
	s.calls++
	s.gotSymbol = symbol
	s.gotInterval = interval
	s.gotRange = rng
	return s.candles, s.err
}

type stubCache struct {
	fresh   bool
	candles []models.Candle
	saved   []models.Candle
	saveErr error

	savedSymbol    string
	savedTimeframe string
}

func (s *stubCache) Fresh(ctx context.Context, symbol, timeframe string, ttl time.Duration) (bool, error) {
	return s.fresh, nil
}

func (s *stubCache) Candles(ctx context.Context, symbol, timeframe string, from time.Time) ([]models.Candle, error) {
	out := make([]models.Candle, 0, len(s.candles))
	for _, c := range s.candles {
		if !from.IsZero() && c.Timestamp.Before(from) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *stubCache) SaveCandles(ctx context.Context, symbol, timeframe string, candles []models.Candle) error {
	s.savedSymbol = symbol
	s.savedTimeframe = timeframe
	s.saved = candles
	return s.saveErr
}

func dailyCandles(n int) []models.Candle {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, n)
	for i := range candles {
		price := 100.0 + float64(i)
		candles[i] = models.Candle{
			Timestamp: base.AddDate(0, 0, i),
			Open:      price,
			High:      price + 1,
			Low:       price - 1,
			Close:     price + 0.5,
			Volume:    1000,
		}
	}
	return candles
}

func TestServiceFetchesAndCaches(t *testing.T) {
	provider := &stubProvider{candles: dailyCandles(5)}
	cache := &stubCache{}
	svc := NewService(provider, cache, Options{AutoForexSuffix: true, CacheTTL: time.Hour})

	result, err := svc.Get(context.Background(), "EURUSD", "D1", "5d")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if provider.gotSymbol != "EURUSD=X" {
		t.Errorf("Expected resolved symbol EURUSD=X, got %q", provider.gotSymbol)
	}
	if provider.gotInterval != "1d" {
		t.Errorf("Expected interval 1d, got %q", provider.gotInterval)
	}
	if provider.gotRange != "5d" {
		t.Errorf("Expected range 5d, got %q", provider.gotRange)
	}

	if result.FromCache {
		t.Error("Cold cache should not serve the result")
	}
	if result.Symbol != "EURUSD=X" || result.Timeframe != "1d" {
		t.Errorf("Unexpected result metadata: %+v", result)
	}
	if len(result.Candles) != 5 {
		t.Errorf("Expected 5 candles, got %d", len(result.Candles))
	}

	if cache.savedSymbol != "EURUSD=X" || cache.savedTimeframe != "1d" {
		t.Errorf("Cache keyed by %q/%q", cache.savedSymbol, cache.savedTimeframe)
	}
	if len(cache.saved) != 5 {
		t.Errorf("Expected 5 candles written through, got %d", len(cache.saved))
	}
}

func TestServiceServesFreshCache(t *testing.T) {
	provider := &stubProvider{candles: dailyCandles(5)}
	cache := &stubCache{fresh: true, candles: dailyCandles(5)}
	svc := NewService(provider, cache, Options{CacheTTL: time.Hour})

	result, err := svc.Get(context.Background(), "AAPL", "1d", "max")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if !result.FromCache {
		t.Error("Fresh cache should serve the result")
	}
	if provider.calls != 0 {
		t.Errorf("Provider should not be called on cache hit, got %d calls", provider.calls)
	}
	if len(result.Candles) != 5 {
		t.Errorf("Expected 5 cached candles, got %d", len(result.Candles))
	}
}

func TestServiceNoCacheBypassesCache(t *testing.T) {
	provider := &stubProvider{candles: dailyCandles(3)}
	cache := &stubCache{fresh: true, candles: dailyCandles(5)}
	svc := NewService(provider, cache, Options{CacheTTL: time.Hour, NoCache: true})

	result, err := svc.Get(context.Background(), "AAPL", "1d", "max")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if result.FromCache {
		t.Error("NoCache should bypass the cache")
	}
	if provider.calls != 1 {
		t.Errorf("Expected 1 provider call, got %d", provider.calls)
	}
	if cache.saved != nil {
		t.Error("NoCache should not write through")
	}
}

func TestServiceStaleCacheRefetches(t *testing.T) {
	provider := &stubProvider{candles: dailyCandles(3)}
	cache := &stubCache{fresh: false, candles: dailyCandles(5)}
	svc := NewService(provider, cache, Options{CacheTTL: time.Hour})

	result, err := svc.Get(context.Background(), "AAPL", "1d", "max")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if result.FromCache {
		t.Error("Stale cache should refetch")
	}
	if provider.calls != 1 {
		t.Errorf("Expected 1 provider call, got %d", provider.calls)
	}
	if len(cache.saved) != 3 {
		t.Errorf("Expected write-through of 3 candles, got %d", len(cache.saved))
	}
}

func TestServiceResamplesFourHour(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	hourly := make([]models.Candle, 8)
	for i := range hourly {
		hourly[i] = models.Candle{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      100,
			High:      101,
			Low:       99,
			Close:     100.5,
			Volume:    10,
		}
	}
	provider := &stubProvider{candles: hourly}
	cache := &stubCache{}
	svc := NewService(provider, cache, Options{CacheTTL: time.Hour})

	result, err := svc.Get(context.Background(), "AAPL", "4h", "5d")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if provider.gotInterval != "1h" {
		t.Errorf("4h should fetch hourly bars, got %q", provider.gotInterval)
	}
	if result.Timeframe != "4h" {
		t.Errorf("Result should carry the 4h timeframe, got %q", result.Timeframe)
	}
	if len(result.Candles) != 2 {
		t.Fatalf("Expected 2 resampled bars, got %d", len(result.Candles))
	}
	if result.Candles[0].Volume != 40 {
		t.Errorf("Expected aggregated volume 40, got %d", result.Candles[0].Volume)
	}

	// The cache holds the resampled series under the 4h key
	if cache.savedTimeframe != "4h" {
		t.Errorf("Cache should key resampled bars by 4h, got %q", cache.savedTimeframe)
	}
	if len(cache.saved) != 2 {
		t.Errorf("Expected 2 bars written through, got %d", len(cache.saved))
	}
}

func TestServiceConvertsTimezone(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	provider := &stubProvider{candles: dailyCandles(2)}
	svc := NewService(provider, nil, Options{Location: msk})

	result, err := svc.Get(context.Background(), "AAPL", "1d", "5d")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	for _, c := range result.Candles {
		if c.Timestamp.Location() != msk {
			t.Errorf("Expected MSK timestamps, got %v", c.Timestamp.Location())
		}
	}
}

func TestServiceInvalidInputs(t *testing.T) {
	provider := &stubProvider{candles: dailyCandles(2)}
	svc := NewService(provider, nil, Options{})

	if _, err := svc.Get(context.Background(), "AAPL", "7h", "5d"); err == nil {
		t.Error("Expected error for bad timeframe")
	}
	if _, err := svc.Get(context.Background(), "AAPL", "1d", "tomorrow"); err == nil {
		t.Error("Expected error for bad range")
	}
	if provider.calls != 0 {
		t.Errorf("Validation failures should not hit the provider, got %d calls", provider.calls)
	}
}

func TestServiceReportsCacheWriteFailure(t *testing.T) {
	provider := &stubProvider{candles: dailyCandles(2)}
	cache := &stubCache{saveErr: context.DeadlineExceeded}
	svc := NewService(provider, cache, Options{CacheTTL: time.Hour})

	result, err := svc.Get(context.Background(), "AAPL", "1d", "5d")
	if err != nil {
		t.Fatalf("Cache write failure should not fail the fetch: %v", err)
	}
	if result.CacheErr == nil {
		t.Error("Expected cache error surfaced in the result")
	}
	if len(result.Candles) != 2 {
		t.Errorf("Expected candles despite cache failure, got %d", len(result.Candles))
	}
}
