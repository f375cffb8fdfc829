// Package feed retrieves OHLCV price series and normalizes them for
// pattern evaluation.
package feed

import (
	"context"
	"time"

	"candlerank/internal/models"
)

// Provider fetches a raw chart for a symbol at a native interval.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, symbol, interval, rng string) ([]models.Candle, error)
}

// Cache is the read-through candle store the service consults before
// hitting the network. Implementations key series by resolved symbol
// and canonical timeframe name.
type Cache interface {
	// Fresh reports whether the cached series was fetched within ttl.
	Fresh(ctx context.Context, symbol, timeframe string, ttl time.Duration) (bool, error)
	// Candles returns cached bars at or after from, chronologically.
	// A zero from means the whole series.
	Candles(ctx context.Context, symbol, timeframe string, from time.Time) ([]models.Candle, error)
	// SaveCandles upserts bars and records the fetch moment.
	SaveCandles(ctx context.Context, symbol, timeframe string, candles []models.Candle) error
}

// Options configures a Service.
type Options struct {
	Location        *time.Location
	AutoForexSuffix bool
	CacheTTL        time.Duration
	NoCache         bool
}

// Result is a normalized price series ready for evaluation.
type Result struct {
	Symbol    string
	Timeframe string
	Candles   []models.Candle
	FromCache bool
	CacheErr  error
}

// Service resolves symbols and timeframes, serves fresh series from the
// cache, and fetches and normalizes the rest.
type Service struct {
	provider Provider
	cache    Cache
	opts     Options
}

// NewService creates a feed service. cache may be nil to disable
// caching entirely.
func NewService(provider Provider, cache Cache, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Service{
		provider: provider,
		cache:    cache,
		opts:     opts,
	}
}

// Get returns the series for symbol at the given timeframe and range.
// Timestamps come back in the configured location; 4h series are
// resampled from hourly bars. Cache write failures do not fail the
// fetch and are reported through Result.CacheErr.
func (s *Service) Get(ctx context.Context, symbol, timeframe, rng string) (Result, error) {
	tf, err := ResolveTimeframe(timeframe)
	if err != nil {
		return Result{}, err
	}
	from, bounded, err := rangeStart(rng, time.Now())
	if err != nil {
		return Result{}, err
	}
	if !bounded {
		from = time.Time{}
	}

	ticker := ResolveSymbol(symbol, s.opts.AutoForexSuffix)
	result := Result{Symbol: ticker, Timeframe: tf.Name}

	if s.cacheEnabled() {
		cached, ok := s.fromCache(ctx, ticker, tf.Name, from)
		if ok {
			result.Candles = cached
			result.FromCache = true
			return result, nil
		}
	}

	candles, err := s.provider.Fetch(ctx, ticker, tf.Fetch, rng)
	if err != nil {
		return Result{}, err
	}

	for i := range candles {
		candles[i].Timestamp = candles[i].Timestamp.In(s.opts.Location)
	}
	if tf.Resample {
		candles = ResampleFourHour(candles)
	}
	result.Candles = candles

	if s.cacheEnabled() {
		result.CacheErr = s.cache.SaveCandles(ctx, ticker, tf.Name, candles)
	}
	return result, nil
}

func (s *Service) cacheEnabled() bool {
	return s.cache != nil && !s.opts.NoCache
}

// fromCache serves the cached series when it is fresh and non-empty.
func (s *Service) fromCache(ctx context.Context, symbol, timeframe string, from time.Time) ([]models.Candle, bool) {
	fresh, err := s.cache.Fresh(ctx, symbol, timeframe, s.opts.CacheTTL)
	if err != nil || !fresh {
		return nil, false
	}
	candles, err := s.cache.Candles(ctx, symbol, timeframe, from)
	if err != nil || len(candles) == 0 {
		return nil, false
	}
	for i := range candles {
		candles[i].Timestamp = candles[i].Timestamp.In(s.opts.Location)
	}
	return candles, true
}
