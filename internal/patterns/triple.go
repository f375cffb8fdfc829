package patterns

// Three-candle pattern detection

// detectMorningStar flags a long bearish candle, a small-bodied star
// gapping below it, and a long bullish candle closing above the first
// body's midpoint. Signal lands on the third candle.
func detectMorningStar(open, high, low, close []float64) []int {
	out := make([]int, len(close))
	for i := 2; i < len(close); i++ {
		firstRange := candleRange(high[i-2], low[i-2])
		if firstRange == 0 ||
			bodySize(open[i-2], close[i-2])/firstRange < longBodyThreshold ||
			!isBearish(open[i-2], close[i-2]) {
			continue
		}

		secondRange := candleRange(high[i-1], low[i-1])
		if secondRange > 0 && bodySize(open[i-1], close[i-1])/secondRange > smallBodyRatio {
			continue
		}
		// Star gaps below the first close
		if max(open[i-1], close[i-1]) >= close[i-2] {
			continue
		}

		thirdRange := candleRange(high[i], low[i])
		if thirdRange == 0 ||
			bodySize(open[i], close[i])/thirdRange < longBodyThreshold ||
			!isBullish(open[i], close[i]) {
			continue
		}
		midpoint := (open[i-2] + close[i-2]) / 2
		if close[i] < midpoint {
			continue
		}

		out[i] = SignalBullish
	}
	return out
}

// detectEveningStar flags the bearish mirror of the morning star.
func detectEveningStar(open, high, low, close []float64) []int {
	out := make([]int, len(close))
	for i := 2; i < len(close); i++ {
		firstRange := candleRange(high[i-2], low[i-2])
		if firstRange == 0 ||
			bodySize(open[i-2], close[i-2])/firstRange < longBodyThreshold ||
			!isBullish(open[i-2], close[i-2]) {
			continue
		}

		secondRange := candleRange(high[i-1], low[i-1])
		if secondRange > 0 && bodySize(open[i-1], close[i-1])/secondRange > smallBodyRatio {
			continue
		}
		// Star gaps above the first close
		if min(open[i-1], close[i-1]) <= close[i-2] {
			continue
		}

		thirdRange := candleRange(high[i], low[i])
		if thirdRange == 0 ||
			bodySize(open[i], close[i])/thirdRange < longBodyThreshold ||
			!isBearish(open[i], close[i]) {
			continue
		}
		midpoint := (open[i-2] + close[i-2]) / 2
		if close[i] > midpoint {
			continue
		}

		out[i] = SignalBearish
	}
	return out
}

// detectThreeWhiteSoldiers flags three long bullish candles, each
// opening within the prior body and closing higher.
func detectThreeWhiteSoldiers(open, high, low, close []float64) []int {
	out := make([]int, len(close))
	for i := 2; i < len(close); i++ {
		if !isBullish(open[i-2], close[i-2]) ||
			!isBullish(open[i-1], close[i-1]) ||
			!isBullish(open[i], close[i]) {
			continue
		}

		if !hasDecentBody(open[i-2], high[i-2], low[i-2], close[i-2]) ||
			!hasDecentBody(open[i-1], high[i-1], low[i-1], close[i-1]) ||
			!hasDecentBody(open[i], high[i], low[i], close[i]) {
			continue
		}

		// Each candle opens within the previous body
		if open[i-1] < open[i-2] || open[i-1] > close[i-2] {
			continue
		}
		if open[i] < open[i-1] || open[i] > close[i-1] {
			continue
		}

		// Each candle closes higher than the previous
		if close[i-1] <= close[i-2] || close[i] <= close[i-1] {
			continue
		}

		out[i] = SignalBullish
	}
	return out
}

// detectThreeBlackCrows flags three long bearish candles, each opening
// within the prior body and closing lower.
func detectThreeBlackCrows(open, high, low, close []float64) []int {
	out := make([]int, len(close))
	for i := 2; i < len(close); i++ {
		if !isBearish(open[i-2], close[i-2]) ||
			!isBearish(open[i-1], close[i-1]) ||
			!isBearish(open[i], close[i]) {
			continue
		}

		if !hasDecentBody(open[i-2], high[i-2], low[i-2], close[i-2]) ||
			!hasDecentBody(open[i-1], high[i-1], low[i-1], close[i-1]) ||
			!hasDecentBody(open[i], high[i], low[i], close[i]) {
			continue
		}

		// Each candle opens within the previous body
		if open[i-1] > open[i-2] || open[i-1] < close[i-2] {
			continue
		}
		if open[i] > open[i-1] || open[i] < close[i-1] {
			continue
		}

		// Each candle closes lower than the previous
		if close[i-1] >= close[i-2] || close[i] >= close[i-1] {
			continue
		}

		out[i] = SignalBearish
	}
	return out
}

// detectThreeInside flags a harami followed by a close confirming the
// reversal beyond the first candle's open.
func detectThreeInside(open, high, low, close []float64) []int {
	out := make([]int, len(close))
	for i := 2; i < len(close); i++ {
		prevBody := bodySize(open[i-2], close[i-2])
		midBody := bodySize(open[i-1], close[i-1])
		if midBody >= prevBody {
			continue
		}

		// Three inside up
		if isBearish(open[i-2], close[i-2]) && isBullish(open[i-1], close[i-1]) {
			if open[i-1] >= close[i-2] && close[i-1] <= open[i-2] &&
				close[i] > open[i-2] {
				out[i] = SignalBullish
				continue
			}
		}

		// Three inside down
		if isBullish(open[i-2], close[i-2]) && isBearish(open[i-1], close[i-1]) {
			if open[i-1] <= close[i-2] && close[i-1] >= open[i-2] &&
				close[i] < open[i-2] {
				out[i] = SignalBearish
			}
		}
	}
	return out
}

// hasDecentBody reports whether the body fills at least half the range.
func hasDecentBody(open, high, low, close float64) bool {
	rng := candleRange(high, low)
	if rng == 0 {
		return false
	}
	return bodySize(open, close)/rng >= 0.5
}
