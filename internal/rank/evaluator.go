// Package rank scores candlestick patterns by the forward returns that
// follow their signals.
package rank

import (
	"math"
	"sort"
	"time"

	"candlerank/internal/errors"
	"candlerank/internal/models"
	"candlerank/internal/patterns"
)

// Signal is one pattern occurrence in a series.
type Signal struct {
	Pattern   string
	Index     int
	Value     int
	Timestamp time.Time
}

// Entry is the ranking result for one pattern.
type Entry struct {
	Pattern     string
	Direction   patterns.Direction
	Hits        int
	Successes   int
	SuccessRate float64
	AvgReturn   float64
	Err         error
}

// HasData reports whether the entry carries a computed success rate.
func (e Entry) HasData() bool {
	return e.Err == nil && e.Hits > 0
}

// sortKey is the rate used for ordering only. Entries without data sink
// to the bottom and are never reported with a numeric rate.
func (e Entry) sortKey() float64 {
	if !e.HasData() {
		return math.Inf(-1)
	}
	return e.SuccessRate
}

// Evaluator runs catalog detectors over a series and aggregates forward
// returns. The computation is pure: one pass through the catalog, one
// pass through the series per pattern.
type Evaluator struct {
	catalog    *patterns.Catalog
	directions map[string]patterns.Direction
	excluded   map[string]struct{}
}

// NewEvaluator creates an evaluator over the given catalog.
// overrides maps pattern names to expected-direction rules (bullish,
// bearish, signed) and takes precedence over the catalog's direction
// table. excluded lists calendar days whose signals are skipped; pass
// nil to evaluate every signal.
func NewEvaluator(catalog *patterns.Catalog, overrides map[string]string, excluded []time.Time) *Evaluator {
	e := &Evaluator{
		catalog:    catalog,
		directions: make(map[string]patterns.Direction, len(overrides)),
		excluded:   make(map[string]struct{}, len(excluded)),
	}
	for name, dir := range overrides {
		e.directions[patterns.NormalizeName(name)] = patterns.Direction(dir)
	}
	for _, day := range excluded {
		e.excluded[day.Format("2006-01-02")] = struct{}{}
	}
	return e
}

// Catalog returns the catalog this evaluator ranks.
func (e *Evaluator) Catalog() *patterns.Catalog {
	return e.catalog
}

// Detect runs the named detector once over the whole series and returns
// the per-bar signal values, aligned one-to-one with the series.
func (e *Evaluator) Detect(series []models.Candle, name string) ([]int, error) {
	p, ok := e.catalog.Get(name)
	if !ok {
		return nil, errors.NewPatternError(name, e.catalog.Names())
	}
	return p.Detect(models.Opens(series), models.Highs(series), models.Lows(series), models.Closes(series)), nil
}

// Signals returns the non-zero signal events for the named pattern.
func (e *Evaluator) Signals(series []models.Candle, name string) ([]Signal, error) {
	p, ok := e.catalog.Get(name)
	if !ok {
		return nil, errors.NewPatternError(name, e.catalog.Names())
	}

	values, err := e.Detect(series, name)
	if err != nil {
		return nil, err
	}

	signals := make([]Signal, 0)
	for i, v := range values {
		if v == 0 {
			continue
		}
		signals = append(signals, Signal{
			Pattern:   p.Name,
			Index:     i,
			Value:     v,
			Timestamp: series[i].Timestamp,
		})
	}
	return signals, nil
}

// Evaluate computes the rank entry for one pattern. For every non-zero
// signal at index i with i+horizon inside the series, the forward
// return is (close[i+horizon] - close[i]) / close[i]; the signal counts
// as a success when the return's sign matches the expected direction.
// Signals whose window would run past the end of the series are
// excluded, not zero-filled.
func (e *Evaluator) Evaluate(series []models.Candle, name string, horizon int) (Entry, error) {
	if horizon < 1 {
		return Entry{}, errors.NewValidationError("horizon", horizon, "must be at least 1")
	}

	p, ok := e.catalog.Get(name)
	if !ok {
		return Entry{}, errors.NewPatternError(name, e.catalog.Names())
	}
	direction := e.resolveDirection(p)

	closes := models.Closes(series)
	values := p.Detect(models.Opens(series), models.Highs(series), models.Lows(series), closes)

	entry := Entry{
		Pattern:   p.Name,
		Direction: direction,
	}

	var sum float64
	for i, v := range values {
		if v == 0 {
			continue
		}
		if i+horizon >= len(series) {
			continue
		}
		if e.isExcluded(series[i].Timestamp) {
			continue
		}

		// The whole evaluation window must hold finite closes.
		for j := i; j <= i+horizon; j++ {
			if !isFinite(closes[j]) {
				return Entry{}, errors.NewSeriesError(p.Name, j, "non-finite close")
			}
		}
		if closes[i] == 0 {
			return Entry{}, errors.NewSeriesError(p.Name, i, "zero close at signal bar")
		}

		forward := (closes[i+horizon] - closes[i]) / closes[i]
		entry.Hits++
		sum += forward
		if matchesDirection(v, forward, direction) {
			entry.Successes++
		}
	}

	if entry.Hits > 0 {
		entry.SuccessRate = float64(entry.Successes) / float64(entry.Hits)
		entry.AvgReturn = sum / float64(entry.Hits)
	}
	return entry, nil
}

// RankAll evaluates every catalog pattern and orders the entries by
// success rate descending, hits descending, name ascending. A pattern
// whose evaluation fails on malformed data keeps its slot with the
// error recorded; the rest of the ranking still computes.
func (e *Evaluator) RankAll(series []models.Candle, horizon int) ([]Entry, error) {
	if horizon < 1 {
		return nil, errors.NewValidationError("horizon", horizon, "must be at least 1")
	}

	names := e.catalog.Names()
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		entry, err := e.Evaluate(series, name, horizon)
		if err != nil {
			if errors.Is(err, errors.ErrInvalidSeries) {
				entries = append(entries, Entry{Pattern: name, Err: err})
				continue
			}
			return nil, err
		}
		entries = append(entries, entry)
	}

	sortEntries(entries)
	return entries, nil
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		ri, rj := entries[i].sortKey(), entries[j].sortKey()
		if ri != rj {
			return ri > rj
		}
		if entries[i].Hits != entries[j].Hits {
			return entries[i].Hits > entries[j].Hits
		}
		return entries[i].Pattern < entries[j].Pattern
	})
}

func (e *Evaluator) resolveDirection(p patterns.Pattern) patterns.Direction {
	if dir, ok := e.directions[patterns.NormalizeName(p.Name)]; ok {
		return dir
	}
	return p.Direction
}

func (e *Evaluator) isExcluded(ts time.Time) bool {
	if len(e.excluded) == 0 {
		return false
	}
	_, ok := e.excluded[ts.Format("2006-01-02")]
	return ok
}

// matchesDirection reports whether a forward return confirms the signal.
// A flat close confirms nothing.
func matchesDirection(signal int, forward float64, direction patterns.Direction) bool {
	switch direction {
	case patterns.DirectionBullish:
		return forward > 0
	case patterns.DirectionBearish:
		return forward < 0
	default:
		if signal > 0 {
			return forward > 0
		}
		return forward < 0
	}
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
