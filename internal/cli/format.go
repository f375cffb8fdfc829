// Package cli provides the command-line interface for the pattern
// ranking tool.
package cli

import (
	"fmt"
	"strings"
	"time"
)

// displayLocation is the timezone used for all rendered timestamps.
// NewRootCmd sets it from the configured reporting timezone.
var displayLocation = time.UTC

// SetLocation sets the timezone used for rendered timestamps.
func SetLocation(loc *time.Location) {
	if loc != nil {
		displayLocation = loc
	}
}

// FormatPrice formats a price with decimals appropriate to its scale.
// Forex majors quote five decimals, JPY crosses three, indices two.
func FormatPrice(price float64) string {
	abs := price
	if abs < 0 {
		abs = -abs
	}
	if abs >= 1000 {
		return fmt.Sprintf("%.2f", price)
	} else if abs >= 10 {
		return fmt.Sprintf("%.3f", price)
	}
	return fmt.Sprintf("%.5f", price)
}

// FormatVolume formats volume in compact form.
func FormatVolume(volume int64) string {
	if volume >= 1000000000 {
		return fmt.Sprintf("%.2fB", float64(volume)/1000000000)
	} else if volume >= 1000000 {
		return fmt.Sprintf("%.2fM", float64(volume)/1000000)
	} else if volume >= 1000 {
		return fmt.Sprintf("%.2fK", float64(volume)/1000)
	}
	return fmt.Sprintf("%d", volume)
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatRate formats an unsigned rate in [0, 1] as a percentage.
func FormatRate(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}

// FormatChange formats a price change.
func FormatChange(change, changePct float64) string {
	sign := ""
	if change > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.5f (%s%.2f%%)", sign, change, sign, changePct)
}

// FormatTime formats a time in the reporting timezone.
func FormatTime(t time.Time) string {
	return t.In(displayLocation).Format("15:04:05")
}

// FormatDate formats a date in the reporting timezone.
func FormatDate(t time.Time) string {
	return t.In(displayLocation).Format("02-Jan-2006")
}

// FormatDateTime formats a datetime in the reporting timezone.
func FormatDateTime(t time.Time) string {
	return t.In(displayLocation).Format("02-Jan-2006 15:04")
}

// FormatDuration formats a duration in human-readable form.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	} else if d < 24*time.Hour {
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	return fmt.Sprintf("%dd %dh", days, hours)
}

// FormatOHLC formats OHLC data.
func FormatOHLC(open, high, low, close float64) string {
	return fmt.Sprintf("O: %s  H: %s  L: %s  C: %s",
		FormatPrice(open), FormatPrice(high), FormatPrice(low), FormatPrice(close))
}

// ShortID returns the first eight characters of a run id.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// TruncateString truncates a string to max length with ellipsis.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// PadRight pads a string to the right.
func PadRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

// PadLeft pads a string to the left.
func PadLeft(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return strings.Repeat(" ", length-len(s)) + s
}
