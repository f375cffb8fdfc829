package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"candlerank/internal/errors"
	"candlerank/internal/models"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleCandles(n int) []models.Candle {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, n)
	for i := range candles {
		price := 1.1 + float64(i)*0.001
		candles[i] = models.Candle{
			Timestamp: base.AddDate(0, 0, i),
			Open:      price,
			High:      price + 0.002,
			Low:       price - 0.002,
			Close:     price + 0.001,
			Volume:    int64(1000 + i),
		}
	}
	return candles
}

func TestFreshTracksFetchLog(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	fresh, err := store.Fresh(ctx, "EURUSD=X", "1d", time.Hour)
	if err != nil {
		t.Fatalf("Fresh failed: %v", err)
	}
	if fresh {
		t.Error("Empty store should not be fresh")
	}

	if err := store.SaveCandles(ctx, "EURUSD=X", "1d", sampleCandles(3)); err != nil {
		t.Fatalf("SaveCandles failed: %v", err)
	}

	fresh, err = store.Fresh(ctx, "EURUSD=X", "1d", time.Hour)
	if err != nil {
		t.Fatalf("Fresh failed: %v", err)
	}
	if !fresh {
		t.Error("Just-saved series should be fresh within an hour")
	}

	// Zero TTL means everything is stale
	fresh, err = store.Fresh(ctx, "EURUSD=X", "1d", 0)
	if err != nil {
		t.Fatalf("Fresh failed: %v", err)
	}
	if fresh {
		t.Error("Zero TTL should report stale")
	}

	// Other keys are unaffected
	fresh, err = store.Fresh(ctx, "EURUSD=X", "1h", time.Hour)
	if err != nil {
		t.Fatalf("Fresh failed: %v", err)
	}
	if fresh {
		t.Error("Different timeframe should not be fresh")
	}
}

func TestCandlesFromCutoff(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	candles := sampleCandles(10)

	if err := store.SaveCandles(ctx, "EURUSD=X", "1d", candles); err != nil {
		t.Fatalf("SaveCandles failed: %v", err)
	}

	all, err := store.Candles(ctx, "EURUSD=X", "1d", time.Time{})
	if err != nil {
		t.Fatalf("Candles failed: %v", err)
	}
	if len(all) != 10 {
		t.Errorf("Expected 10 candles, got %d", len(all))
	}

	tail, err := store.Candles(ctx, "EURUSD=X", "1d", candles[7].Timestamp)
	if err != nil {
		t.Fatalf("Candles failed: %v", err)
	}
	if len(tail) != 3 {
		t.Errorf("Expected 3 candles from cutoff, got %d", len(tail))
	}
	if !tail[0].Timestamp.Equal(candles[7].Timestamp) {
		t.Errorf("Cutoff should be inclusive, got first %v", tail[0].Timestamp)
	}
}

func TestSaveCandlesUpserts(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	candles := sampleCandles(5)

	if err := store.SaveCandles(ctx, "EURUSD=X", "1d", candles); err != nil {
		t.Fatalf("SaveCandles failed: %v", err)
	}

	// Overwrite the last bar and extend by one
	candles[4].Close = 9.99
	extended := append(candles, models.Candle{
		Timestamp: candles[4].Timestamp.AddDate(0, 0, 1),
		Open:      1.2, High: 1.21, Low: 1.19, Close: 1.2,
		Volume: 500,
	})
	if err := store.SaveCandles(ctx, "EURUSD=X", "1d", extended); err != nil {
		t.Fatalf("SaveCandles failed: %v", err)
	}

	all, err := store.Candles(ctx, "EURUSD=X", "1d", time.Time{})
	if err != nil {
		t.Fatalf("Candles failed: %v", err)
	}
	if len(all) != 6 {
		t.Fatalf("Expected 6 candles after upsert, got %d", len(all))
	}
	if all[4].Close != 9.99 {
		t.Errorf("Expected replaced close 9.99, got %v", all[4].Close)
	}
}

func TestLastTimestamp(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	last, err := store.LastTimestamp(ctx, "EURUSD=X", "1d")
	if err != nil {
		t.Fatalf("LastTimestamp failed: %v", err)
	}
	if !last.IsZero() {
		t.Errorf("Empty store should yield zero time, got %v", last)
	}

	candles := sampleCandles(5)
	if err := store.SaveCandles(ctx, "EURUSD=X", "1d", candles); err != nil {
		t.Fatalf("SaveCandles failed: %v", err)
	}

	last, err = store.LastTimestamp(ctx, "EURUSD=X", "1d")
	if err != nil {
		t.Fatalf("LastTimestamp failed: %v", err)
	}
	if !last.Equal(candles[4].Timestamp) {
		t.Errorf("Expected %v, got %v", candles[4].Timestamp, last)
	}
}

func sampleRun(symbol string) *models.RankRun {
	return &models.RankRun{
		Symbol:    symbol,
		Timeframe: "1d",
		Range:     "1y",
		Horizon:   5,
		Bars:      250,
		Results: []models.RankResult{
			{Pattern: "ENGULFING", Direction: "signed", Hits: 12, Successes: 9, SuccessRate: 0.75, AvgReturn: 0.004},
			{Pattern: "HAMMER", Direction: "bullish", Hits: 4, Successes: 2, SuccessRate: 0.5, AvgReturn: -0.001},
			{Pattern: "DOJI", Direction: "bullish", Hits: 0},
			{Pattern: "KICKING", Direction: "signed", Err: "invalid series [KICKING]: non-finite close at index 7"},
		},
	}
}

func TestRankRunRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	run := sampleRun("EURUSD=X")
	if err := store.SaveRankRun(ctx, run); err != nil {
		t.Fatalf("SaveRankRun failed: %v", err)
	}
	if run.ID == "" {
		t.Fatal("SaveRankRun should assign an id")
	}

	loaded, err := store.RankRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("RankRun failed: %v", err)
	}

	if loaded.Symbol != "EURUSD=X" || loaded.Timeframe != "1d" || loaded.Range != "1y" {
		t.Errorf("Unexpected run metadata: %+v", loaded)
	}
	if loaded.Horizon != 5 || loaded.Bars != 250 {
		t.Errorf("Unexpected run parameters: %+v", loaded)
	}

	if len(loaded.Results) != 4 {
		t.Fatalf("Expected 4 results, got %d", len(loaded.Results))
	}

	// Ranked order survives the round trip
	order := []string{"ENGULFING", "HAMMER", "DOJI", "KICKING"}
	for i, want := range order {
		if loaded.Results[i].Pattern != want {
			t.Errorf("Position %d: expected %s, got %s", i, want, loaded.Results[i].Pattern)
		}
	}

	first := loaded.Results[0]
	if first.Hits != 12 || first.Successes != 9 || first.SuccessRate != 0.75 {
		t.Errorf("Unexpected first result: %+v", first)
	}
	if !first.HasData() {
		t.Error("First result should have data")
	}
	if loaded.Results[2].HasData() {
		t.Error("Zero-hit result should report no data")
	}
	if loaded.Results[3].Err == "" {
		t.Error("Errored result should keep its message")
	}
}

func TestRankRunPrefixLookup(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	run := sampleRun("EURUSD=X")
	if err := store.SaveRankRun(ctx, run); err != nil {
		t.Fatalf("SaveRankRun failed: %v", err)
	}

	loaded, err := store.RankRun(ctx, run.ID[:8])
	if err != nil {
		t.Fatalf("Prefix lookup failed: %v", err)
	}
	if loaded.ID != run.ID {
		t.Errorf("Expected run %s, got %s", run.ID, loaded.ID)
	}

	_, err = store.RankRun(ctx, "nosuchrun")
	if err == nil {
		t.Fatal("Expected error for unknown run")
	}
	if !errors.Is(err, errors.ErrDataNotFound) {
		t.Errorf("Expected data not found, got %v", err)
	}
}

func TestRankRunsFilter(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	for _, symbol := range []string{"EURUSD=X", "EURUSD=X", "GBPUSD=X"} {
		if err := store.SaveRankRun(ctx, sampleRun(symbol)); err != nil {
			t.Fatalf("SaveRankRun failed: %v", err)
		}
	}

	all, err := store.RankRuns(ctx, RankRunFilter{})
	if err != nil {
		t.Fatalf("RankRuns failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 runs, got %d", len(all))
	}

	eur, err := store.RankRuns(ctx, RankRunFilter{Symbol: "EURUSD=X"})
	if err != nil {
		t.Fatalf("RankRuns failed: %v", err)
	}
	if len(eur) != 2 {
		t.Errorf("Expected 2 EURUSD runs, got %d", len(eur))
	}

	limited, err := store.RankRuns(ctx, RankRunFilter{Limit: 1})
	if err != nil {
		t.Fatalf("RankRuns failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("Expected 1 run with limit, got %d", len(limited))
	}

	// Listings skip the result rows
	if len(all[0].Results) != 0 {
		t.Error("Listing should not load results")
	}
}
