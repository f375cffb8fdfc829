// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"candlerank/internal/models"
)

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Candle cache
	SaveCandles(ctx context.Context, symbol, timeframe string, candles []models.Candle) error
	Candles(ctx context.Context, symbol, timeframe string, from time.Time) ([]models.Candle, error)
	Fresh(ctx context.Context, symbol, timeframe string, ttl time.Duration) (bool, error)
	LastTimestamp(ctx context.Context, symbol, timeframe string) (time.Time, error)

	// Ranking history
	SaveRankRun(ctx context.Context, run *models.RankRun) error
	RankRuns(ctx context.Context, filter RankRunFilter) ([]models.RankRun, error)
	RankRun(ctx context.Context, id string) (*models.RankRun, error)

	Close() error
}

// RankRunFilter narrows a history listing.
type RankRunFilter struct {
	Symbol    string
	Timeframe string
	Since     time.Time
	Limit     int
}
