package feed

import (
	"time"

	"candlerank/internal/models"
)

// ResampleFourHour aggregates hourly bars into 4-hour bars aligned on
// wall-clock boundaries (00:00, 04:00, ...) in each bar's own location:
// open = first, high = max, low = min, close = last, volume = sum.
// Partial trailing buckets are kept. Input must be chronologically
// sorted.
func ResampleFourHour(candles []models.Candle) []models.Candle {
	if len(candles) == 0 {
		return candles
	}

	out := make([]models.Candle, 0, len(candles)/4+1)
	var bucket models.Candle
	var bucketStart time.Time
	open := false

	for _, c := range candles {
		start := fourHourBucket(c.Timestamp)
		if !open || !start.Equal(bucketStart) {
			if open {
				out = append(out, bucket)
			}
			bucketStart = start
			bucket = models.Candle{
				Timestamp: start,
				Open:      c.Open,
				High:      c.High,
				Low:       c.Low,
				Close:     c.Close,
				Volume:    c.Volume,
			}
			open = true
			continue
		}

		if c.High > bucket.High {
			bucket.High = c.High
		}
		if c.Low < bucket.Low {
			bucket.Low = c.Low
		}
		bucket.Close = c.Close
		bucket.Volume += c.Volume
	}
	out = append(out, bucket)

	return out
}

func fourHourBucket(ts time.Time) time.Time {
	hour := ts.Hour() / 4 * 4
	return time.Date(ts.Year(), ts.Month(), ts.Day(), hour, 0, 0, 0, ts.Location())
}
