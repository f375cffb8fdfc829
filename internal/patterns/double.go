package patterns

// Two-candle pattern detection

// detectEngulfing flags bodies that engulf the previous opposite-color
// body. Signal lands on the engulfing candle.
func detectEngulfing(open, high, low, close []float64) []int {
	out := make([]int, len(close))
	for i := 1; i < len(close); i++ {
		prevBody := bodySize(open[i-1], close[i-1])
		currBody := bodySize(open[i], close[i])
		if currBody <= prevBody {
			continue
		}

		if isBearish(open[i-1], close[i-1]) && isBullish(open[i], close[i]) {
			if open[i] <= close[i-1] && close[i] >= open[i-1] {
				out[i] = SignalBullish
			}
		}
		if isBullish(open[i-1], close[i-1]) && isBearish(open[i], close[i]) {
			if open[i] >= close[i-1] && close[i] <= open[i-1] {
				out[i] = SignalBearish
			}
		}
	}
	return out
}

// detectHarami flags small bodies contained within the previous
// opposite-color body.
func detectHarami(open, high, low, close []float64) []int {
	out := make([]int, len(close))
	for i := 1; i < len(close); i++ {
		prevBody := bodySize(open[i-1], close[i-1])
		currBody := bodySize(open[i], close[i])
		if currBody >= prevBody {
			continue
		}

		if isBearish(open[i-1], close[i-1]) && isBullish(open[i], close[i]) {
			if open[i] >= close[i-1] && close[i] <= open[i-1] {
				out[i] = SignalBullish
			}
		}
		if isBullish(open[i-1], close[i-1]) && isBearish(open[i], close[i]) {
			if open[i] <= close[i-1] && close[i] >= open[i-1] {
				out[i] = SignalBearish
			}
		}
	}
	return out
}

// detectHaramiCross flags harami where the second candle is a doji.
// Sign follows the first candle's color reversal.
func detectHaramiCross(open, high, low, close []float64) []int {
	out := make([]int, len(close))
	for i := 1; i < len(close); i++ {
		if !isDojiBar(open[i], high[i], low[i], close[i]) {
			continue
		}

		bodyHigh := max(open[i-1], close[i-1])
		bodyLow := min(open[i-1], close[i-1])
		if open[i] < bodyLow || open[i] > bodyHigh {
			continue
		}
		if close[i] < bodyLow || close[i] > bodyHigh {
			continue
		}

		if isBearish(open[i-1], close[i-1]) {
			out[i] = SignalBullish
		} else if isBullish(open[i-1], close[i-1]) {
			out[i] = SignalBearish
		}
	}
	return out
}

// detectPiercing flags a bearish candle followed by a bullish candle
// opening below the prior low and closing above the prior body midpoint.
func detectPiercing(open, high, low, close []float64) []int {
	out := make([]int, len(close))
	for i := 1; i < len(close); i++ {
		if !isBearish(open[i-1], close[i-1]) || !isBullish(open[i], close[i]) {
			continue
		}
		if open[i] >= low[i-1] {
			continue
		}
		midpoint := (open[i-1] + close[i-1]) / 2
		if close[i] < midpoint {
			continue
		}
		if close[i] >= open[i-1] {
			continue
		}
		out[i] = SignalBullish
	}
	return out
}

// detectDarkCloudCover flags a bullish candle followed by a bearish
// candle opening above the prior high and closing below the prior body
// midpoint.
func detectDarkCloudCover(open, high, low, close []float64) []int {
	out := make([]int, len(close))
	for i := 1; i < len(close); i++ {
		if !isBullish(open[i-1], close[i-1]) || !isBearish(open[i], close[i]) {
			continue
		}
		if open[i] <= high[i-1] {
			continue
		}
		midpoint := (open[i-1] + close[i-1]) / 2
		if close[i] > midpoint {
			continue
		}
		if close[i] <= open[i-1] {
			continue
		}
		out[i] = SignalBearish
	}
	return out
}

// detectKicking flags opposite-color marubozu pairs separated by a gap.
func detectKicking(open, high, low, close []float64) []int {
	out := make([]int, len(close))
	for i := 1; i < len(close); i++ {
		if !isMarubozuBar(open[i-1], high[i-1], low[i-1], close[i-1]) {
			continue
		}
		if !isMarubozuBar(open[i], high[i], low[i], close[i]) {
			continue
		}

		if isBearish(open[i-1], close[i-1]) && isBullish(open[i], close[i]) {
			if low[i] > high[i-1] {
				out[i] = SignalBullish
			}
		}
		if isBullish(open[i-1], close[i-1]) && isBearish(open[i], close[i]) {
			if high[i] < low[i-1] {
				out[i] = SignalBearish
			}
		}
	}
	return out
}
