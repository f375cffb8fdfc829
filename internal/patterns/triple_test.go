package patterns

import (
	"testing"
)

func TestDetectMorningStar(t *testing.T) {
	// Long bearish, small star gapping down, long bullish recovery
	open, high, low, close := series(
		bar{110, 110.5, 104.5, 105},
		bar{103, 103.5, 102, 103.2},
		bar{104, 110, 103.8, 109},
	)
	out := detectMorningStar(open, high, low, close)
	if out[2] != SignalBullish {
		t.Error("Should detect Morning Star")
	}

	// Star does not gap below the first close
	open, high, low, close = series(
		bar{110, 110.5, 104.5, 105},
		bar{105.5, 106, 105, 105.8},
		bar{104, 110, 103.8, 109},
	)
	out = detectMorningStar(open, high, low, close)
	if out[2] != SignalNone {
		t.Error("Should NOT detect Morning Star without the gap")
	}

	// Third candle fails to reach the first midpoint
	open, high, low, close = series(
		bar{110, 110.5, 104.5, 105},
		bar{103, 103.5, 102, 103.2},
		bar{104, 107, 103.8, 106.5},
	)
	out = detectMorningStar(open, high, low, close)
	if out[2] != SignalNone {
		t.Error("Should NOT detect Morning Star with a weak recovery")
	}
}

func TestDetectEveningStar(t *testing.T) {
	// Long bullish, small star gapping up, long bearish decline
	open, high, low, close := series(
		bar{105, 110.5, 104.5, 110},
		bar{111, 112, 110.8, 111.2},
		bar{111, 111.2, 105, 106},
	)
	out := detectEveningStar(open, high, low, close)
	if out[2] != SignalBearish {
		t.Error("Should detect Evening Star")
	}

	// Star does not gap above the first close
	open, high, low, close = series(
		bar{105, 110.5, 104.5, 110},
		bar{109, 110, 108.5, 109.2},
		bar{111, 111.2, 105, 106},
	)
	out = detectEveningStar(open, high, low, close)
	if out[2] != SignalNone {
		t.Error("Should NOT detect Evening Star without the gap")
	}
}

func TestDetectThreeWhiteSoldiers(t *testing.T) {
	open, high, low, close := series(
		bar{100, 105.5, 99.5, 105},
		bar{102, 108.5, 101.5, 108},
		bar{105, 111.5, 104.5, 111},
	)
	out := detectThreeWhiteSoldiers(open, high, low, close)
	if out[2] != SignalBullish {
		t.Error("Should detect Three White Soldiers")
	}

	// Second candle opens above the first body
	open, high, low, close = series(
		bar{100, 105.5, 99.5, 105},
		bar{106, 108.5, 105.5, 108},
		bar{107, 111.5, 106.5, 111},
	)
	out = detectThreeWhiteSoldiers(open, high, low, close)
	if out[2] != SignalNone {
		t.Error("Should NOT detect soldiers opening outside the prior body")
	}

	// A bearish middle candle breaks the pattern
	open, high, low, close = series(
		bar{100, 105.5, 99.5, 105},
		bar{104, 104.5, 98.5, 99},
		bar{100, 111.5, 99.5, 111},
	)
	out = detectThreeWhiteSoldiers(open, high, low, close)
	if out[2] != SignalNone {
		t.Error("Should NOT detect soldiers with a bearish middle candle")
	}
}

func TestDetectThreeBlackCrows(t *testing.T) {
	open, high, low, close := series(
		bar{111, 111.5, 105.5, 106},
		bar{109, 109.5, 102.5, 103},
		bar{105, 105.5, 99.5, 100},
	)
	out := detectThreeBlackCrows(open, high, low, close)
	if out[2] != SignalBearish {
		t.Error("Should detect Three Black Crows")
	}

	// Second candle closes higher than the first
	open, high, low, close = series(
		bar{111, 111.5, 105.5, 106},
		bar{109, 109.5, 106, 107},
		bar{105, 105.5, 99.5, 100},
	)
	out = detectThreeBlackCrows(open, high, low, close)
	if out[2] != SignalNone {
		t.Error("Should NOT detect crows when the decline stalls")
	}
}

func TestDetectThreeInside(t *testing.T) {
	// Three inside up: bearish, harami, confirming close above first open
	open, high, low, close := series(
		bar{105, 106, 95, 96},
		bar{98, 100, 97, 99},
		bar{100, 107, 99, 106},
	)
	out := detectThreeInside(open, high, low, close)
	if out[2] != SignalBullish {
		t.Error("Should detect Three Inside Up")
	}

	// Three inside down: bullish, harami, confirming close below first open
	open, high, low, close = series(
		bar{96, 106, 95, 105},
		bar{102, 103, 100, 101},
		bar{100, 101, 94, 95},
	)
	out = detectThreeInside(open, high, low, close)
	if out[2] != SignalBearish {
		t.Error("Should detect Three Inside Down")
	}

	// No confirmation on the third close
	open, high, low, close = series(
		bar{105, 106, 95, 96},
		bar{98, 100, 97, 99},
		bar{100, 104, 99, 103},
	)
	out = detectThreeInside(open, high, low, close)
	if out[2] != SignalNone {
		t.Error("Should NOT detect Three Inside without confirmation")
	}
}
