package patterns

// Single-candle pattern detection

// detectDoji flags bars whose body is a small fraction of the range.
func detectDoji(open, high, low, close []float64) []int {
	out := make([]int, len(close))
	for i := range close {
		if isDojiBar(open[i], high[i], low[i], close[i]) {
			out[i] = SignalBullish
		}
	}
	return out
}

// detectDragonflyDoji flags doji bars with almost no upper shadow.
func detectDragonflyDoji(open, high, low, close []float64) []int {
	out := make([]int, len(close))
	for i := range close {
		if !isDojiBar(open[i], high[i], low[i], close[i]) {
			continue
		}
		rng := candleRange(high[i], low[i])
		if upperShadow(open[i], high[i], close[i]) <= rng*dojiThreshold {
			out[i] = SignalBullish
		}
	}
	return out
}

// detectGravestoneDoji flags doji bars with almost no lower shadow.
func detectGravestoneDoji(open, high, low, close []float64) []int {
	out := make([]int, len(close))
	for i := range close {
		if !isDojiBar(open[i], high[i], low[i], close[i]) {
			continue
		}
		rng := candleRange(high[i], low[i])
		if lowerShadow(open[i], low[i], close[i]) <= rng*dojiThreshold {
			out[i] = SignalBullish
		}
	}
	return out
}

// detectHammer flags hammer bars: long lower shadow, small upper shadow,
// small body at the top, appearing in a downtrend.
func detectHammer(open, high, low, close []float64) []int {
	out := make([]int, len(close))
	for i := range close {
		body := bodySize(open[i], close[i])
		if body == 0 {
			continue
		}
		if lowerShadow(open[i], low[i], close[i]) < body*shadowThreshold {
			continue
		}
		if upperShadow(open[i], high[i], close[i]) > body*0.5 {
			continue
		}
		if !isInDowntrend(close, i) {
			continue
		}
		out[i] = SignalBullish
	}
	return out
}

// detectInvertedHammer flags inverted hammers: long upper shadow, small
// lower shadow, small body at the bottom, appearing in a downtrend.
func detectInvertedHammer(open, high, low, close []float64) []int {
	out := make([]int, len(close))
	for i := range close {
		body := bodySize(open[i], close[i])
		if body == 0 {
			continue
		}
		if upperShadow(open[i], high[i], close[i]) < body*shadowThreshold {
			continue
		}
		if lowerShadow(open[i], low[i], close[i]) > body*0.5 {
			continue
		}
		if !isInDowntrend(close, i) {
			continue
		}
		out[i] = SignalBullish
	}
	return out
}

// detectHangingMan flags the hammer shape appearing in an uptrend.
func detectHangingMan(open, high, low, close []float64) []int {
	out := make([]int, len(close))
	for i := range close {
		body := bodySize(open[i], close[i])
		if body == 0 {
			continue
		}
		if lowerShadow(open[i], low[i], close[i]) < body*shadowThreshold {
			continue
		}
		if upperShadow(open[i], high[i], close[i]) > body*0.5 {
			continue
		}
		if !isInUptrend(close, i) {
			continue
		}
		out[i] = SignalBearish
	}
	return out
}

// detectShootingStar flags the inverted-hammer shape in an uptrend.
func detectShootingStar(open, high, low, close []float64) []int {
	out := make([]int, len(close))
	for i := range close {
		body := bodySize(open[i], close[i])
		if body == 0 {
			continue
		}
		if upperShadow(open[i], high[i], close[i]) < body*shadowThreshold {
			continue
		}
		if lowerShadow(open[i], low[i], close[i]) > body*0.5 {
			continue
		}
		if !isInUptrend(close, i) {
			continue
		}
		out[i] = SignalBearish
	}
	return out
}

// detectMarubozu flags full-body candles, signed by candle color.
func detectMarubozu(open, high, low, close []float64) []int {
	out := make([]int, len(close))
	for i := range close {
		if !isMarubozuBar(open[i], high[i], low[i], close[i]) {
			continue
		}
		if isBearish(open[i], close[i]) {
			out[i] = SignalBearish
		} else {
			out[i] = SignalBullish
		}
	}
	return out
}

// detectSpinningTop flags small bodies with significant shadows on both
// sides.
func detectSpinningTop(open, high, low, close []float64) []int {
	out := make([]int, len(close))
	for i := range close {
		rng := candleRange(high[i], low[i])
		if rng == 0 {
			continue
		}
		body := bodySize(open[i], close[i])
		bodyRatio := body / rng
		if bodyRatio > smallBodyRatio || bodyRatio < dojiThreshold {
			continue
		}
		if upperShadow(open[i], high[i], close[i]) < body ||
			lowerShadow(open[i], low[i], close[i]) < body {
			continue
		}
		out[i] = SignalBullish
	}
	return out
}

// detectBeltHold flags long bodies that open at their extreme: bullish
// with no lower shadow, bearish with no upper shadow.
func detectBeltHold(open, high, low, close []float64) []int {
	out := make([]int, len(close))
	for i := range close {
		rng := candleRange(high[i], low[i])
		if rng == 0 {
			continue
		}
		if bodySize(open[i], close[i])/rng < longBodyThreshold {
			continue
		}
		if isBullish(open[i], close[i]) &&
			lowerShadow(open[i], low[i], close[i]) <= rng*shadowFreeRatio {
			out[i] = SignalBullish
		}
		if isBearish(open[i], close[i]) &&
			upperShadow(open[i], high[i], close[i]) <= rng*shadowFreeRatio {
			out[i] = SignalBearish
		}
	}
	return out
}
