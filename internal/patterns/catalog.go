// Package patterns provides candlestick pattern detection over OHLC series.
package patterns

import (
	"sort"
	"strings"
	"sync"
)

// Signal values emitted by detectors.
const (
	SignalBullish = 100
	SignalNone    = 0
	SignalBearish = -100
)

// Direction describes how a pattern's signals map to an expected move.
type Direction string

const (
	// DirectionSigned means the signal sign carries the expected direction.
	DirectionSigned Direction = "signed"
	// DirectionBullish means unsigned hits expect a positive forward return.
	DirectionBullish Direction = "bullish"
	// DirectionBearish means unsigned hits expect a negative forward return.
	DirectionBearish Direction = "bearish"
)

// DetectorFunc scans four equal-length price arrays and returns a signal
// per bar: SignalBullish, SignalBearish, or SignalNone.
type DetectorFunc func(open, high, low, close []float64) []int

// Pattern is a named candlestick detector in the catalog.
type Pattern struct {
	Name        string
	Description string
	Bars        int // window width in candles
	Direction   Direction
	Detect      DetectorFunc
}

// Catalog is a fixed registry of pattern detectors.
type Catalog struct {
	mu       sync.RWMutex
	patterns map[string]Pattern
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		patterns: make(map[string]Pattern),
	}
}

// Register adds a pattern to the catalog, replacing any existing entry
// with the same name.
func (c *Catalog) Register(p Pattern) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patterns[NormalizeName(p.Name)] = p
}

// Get returns the pattern for the given name. Names are matched
// case-insensitively, with or without the CDL prefix.
func (c *Catalog) Get(name string) (Pattern, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.patterns[NormalizeName(name)]
	return p, ok
}

// Names returns all registered pattern names in alphabetical order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.patterns))
	for name := range c.patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered patterns.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.patterns)
}

// NormalizeName canonicalizes a pattern name: upper case, CDL prefix
// stripped, surrounding space removed.
func NormalizeName(name string) string {
	n := strings.ToUpper(strings.TrimSpace(name))
	n = strings.TrimPrefix(n, "CDL")
	return n
}

// Default builds the full pattern catalog.
func Default() *Catalog {
	c := NewCatalog()

	// Single-candle patterns
	c.Register(Pattern{
		Name:        "DOJI",
		Description: "Open and close nearly equal, indecision bar",
		Bars:        1,
		Direction:   DirectionBullish,
		Detect:      detectDoji,
	})
	c.Register(Pattern{
		Name:        "DRAGONFLYDOJI",
		Description: "Doji with a long lower shadow and no upper shadow",
		Bars:        1,
		Direction:   DirectionBullish,
		Detect:      detectDragonflyDoji,
	})
	c.Register(Pattern{
		Name:        "GRAVESTONEDOJI",
		Description: "Doji with a long upper shadow and no lower shadow",
		Bars:        1,
		Direction:   DirectionBearish,
		Detect:      detectGravestoneDoji,
	})
	c.Register(Pattern{
		Name:        "HAMMER",
		Description: "Long lower shadow after a decline, bullish reversal",
		Bars:        1,
		Direction:   DirectionSigned,
		Detect:      detectHammer,
	})
	c.Register(Pattern{
		Name:        "INVERTEDHAMMER",
		Description: "Long upper shadow after a decline, bullish reversal",
		Bars:        1,
		Direction:   DirectionSigned,
		Detect:      detectInvertedHammer,
	})
	c.Register(Pattern{
		Name:        "HANGINGMAN",
		Description: "Hammer shape after an advance, bearish reversal",
		Bars:        1,
		Direction:   DirectionSigned,
		Detect:      detectHangingMan,
	})
	c.Register(Pattern{
		Name:        "SHOOTINGSTAR",
		Description: "Long upper shadow after an advance, bearish reversal",
		Bars:        1,
		Direction:   DirectionSigned,
		Detect:      detectShootingStar,
	})
	c.Register(Pattern{
		Name:        "MARUBOZU",
		Description: "Full-body candle with no meaningful shadows",
		Bars:        1,
		Direction:   DirectionSigned,
		Detect:      detectMarubozu,
	})
	c.Register(Pattern{
		Name:        "SPINNINGTOP",
		Description: "Small body with shadows on both sides, indecision",
		Bars:        1,
		Direction:   DirectionBullish,
		Detect:      detectSpinningTop,
	})
	c.Register(Pattern{
		Name:        "BELTHOLD",
		Description: "Long body opening at its extreme",
		Bars:        1,
		Direction:   DirectionSigned,
		Detect:      detectBeltHold,
	})

	// Two-candle patterns
	c.Register(Pattern{
		Name:        "ENGULFING",
		Description: "Body engulfs the previous opposite-color body",
		Bars:        2,
		Direction:   DirectionSigned,
		Detect:      detectEngulfing,
	})
	c.Register(Pattern{
		Name:        "HARAMI",
		Description: "Small body inside the previous opposite-color body",
		Bars:        2,
		Direction:   DirectionSigned,
		Detect:      detectHarami,
	})
	c.Register(Pattern{
		Name:        "HARAMICROSS",
		Description: "Harami where the second candle is a doji",
		Bars:        2,
		Direction:   DirectionSigned,
		Detect:      detectHaramiCross,
	})
	c.Register(Pattern{
		Name:        "PIERCING",
		Description: "Gap down then close above the prior body midpoint",
		Bars:        2,
		Direction:   DirectionSigned,
		Detect:      detectPiercing,
	})
	c.Register(Pattern{
		Name:        "DARKCLOUDCOVER",
		Description: "Gap up then close below the prior body midpoint",
		Bars:        2,
		Direction:   DirectionSigned,
		Detect:      detectDarkCloudCover,
	})
	c.Register(Pattern{
		Name:        "KICKING",
		Description: "Opposite-color marubozu pair separated by a gap",
		Bars:        2,
		Direction:   DirectionSigned,
		Detect:      detectKicking,
	})

	// Three-candle patterns
	c.Register(Pattern{
		Name:        "MORNINGSTAR",
		Description: "Long bearish, gapped star, long bullish close",
		Bars:        3,
		Direction:   DirectionSigned,
		Detect:      detectMorningStar,
	})
	c.Register(Pattern{
		Name:        "EVENINGSTAR",
		Description: "Long bullish, gapped star, long bearish close",
		Bars:        3,
		Direction:   DirectionSigned,
		Detect:      detectEveningStar,
	})
	c.Register(Pattern{
		Name:        "THREEWHITESOLDIERS",
		Description: "Three advancing long bullish candles",
		Bars:        3,
		Direction:   DirectionSigned,
		Detect:      detectThreeWhiteSoldiers,
	})
	c.Register(Pattern{
		Name:        "THREEBLACKCROWS",
		Description: "Three declining long bearish candles",
		Bars:        3,
		Direction:   DirectionSigned,
		Detect:      detectThreeBlackCrows,
	})
	c.Register(Pattern{
		Name:        "THREEINSIDE",
		Description: "Harami followed by a confirming close",
		Bars:        3,
		Direction:   DirectionSigned,
		Detect:      detectThreeInside,
	})

	return c
}
