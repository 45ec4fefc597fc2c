// Package chartutil holds the small date and math primitives shared by the
// quote converters.
package chartutil

import (
	"math"
	"time"
)

// DateLayout is the 19 character UTC form the chart consumes.
const DateLayout = "2006-01-02T15:04:05"

// UTCDate converts epoch seconds to a UTC time. Fractional seconds are kept.
// Non-finite input has no meaningful instant and yields the zero time.
func UTCDate(epoch float64) time.Time {
	if math.IsNaN(epoch) || math.IsInf(epoch, 0) {
		return time.Time{}
	}
	sec, frac := math.Modf(epoch)
	return time.Unix(int64(sec), int64(math.Round(frac*1e9))).UTC()
}

// FormatDate renders t with DateLayout, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

// Lerp interpolates linearly between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
