package patterns

// Detection thresholds shared by the detectors.
const (
	dojiThreshold     = 0.1 // body < 10% of range
	smallBodyRatio    = 0.3 // star body < 30% of range
	longBodyThreshold = 0.6 // body > 60% of range
	shadowThreshold   = 2.0 // shadow >= 2x body
	marubozuThreshold = 0.9 // body > 90% of range
	shadowFreeRatio   = 0.05
)

// Helper functions for candle geometry

func bodySize(open, close float64) float64 {
	return abs(close - open)
}

func candleRange(high, low float64) float64 {
	return high - low
}

func upperShadow(open, high, close float64) float64 {
	return high - max(open, close)
}

func lowerShadow(open, low, close float64) float64 {
	return min(open, close) - low
}

func isBullish(open, close float64) bool {
	return close > open
}

func isBearish(open, close float64) bool {
	return close < open
}

func isDojiBar(open, high, low, close float64) bool {
	rng := candleRange(high, low)
	if rng == 0 {
		return false
	}
	return bodySize(open, close)/rng <= dojiThreshold
}

func isMarubozuBar(open, high, low, close float64) bool {
	rng := candleRange(high, low)
	if rng == 0 {
		return false
	}
	return bodySize(open, close)/rng >= marubozuThreshold
}

// isInDowntrend checks if the three closes before idx are falling.
func isInDowntrend(close []float64, idx int) bool {
	if idx < 3 {
		return false
	}
	return close[idx-1] < close[idx-2] &&
		close[idx-2] < close[idx-3]
}

// isInUptrend checks if the three closes before idx are rising.
func isInUptrend(close []float64, idx int) bool {
	if idx < 3 {
		return false
	}
	return close[idx-1] > close[idx-2] &&
		close[idx-2] > close[idx-3]
}

// Helper functions
func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
