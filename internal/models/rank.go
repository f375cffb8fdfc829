package models

import "time"

// RankRun is a completed ranking run, persisted for the history command.
type RankRun struct {
	ID        string
	Symbol    string
	Timeframe string
	Range     string
	Horizon   int
	Bars      int
	CreatedAt time.Time
	Results   []RankResult
}

// RankResult is one pattern's row in a saved ranking, in ranked order.
type RankResult struct {
	Pattern     string
	Direction   string
	Hits        int
	Successes   int
	SuccessRate float64
	AvgReturn   float64
	Err         string
}

// HasData reports whether the result carries a computed success rate.
func (r RankResult) HasData() bool {
	return r.Err == "" && r.Hits > 0
}
