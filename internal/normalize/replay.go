package normalize

import (
	"math"

	"chartfeed/internal/chartutil"
	"chartfeed/internal/feed"
	"chartfeed/internal/quote"
)

// Replay converts a full contract tick replay, one quote per entry in order.
// Entries without a printed tick get a price from their neighbours, see
// fillGap. ok is false for a nil list.
func Replay(ticks []feed.ReplayTick) ([]quote.Quote, bool) {
	if ticks == nil {
		return nil, false
	}
	out := make([]quote.Quote, len(ticks))
	for i, t := range ticks {
		var price float64
		if printed(t.Tick) {
			price = *t.Tick
		} else {
			price = fillGap(ticks, i)
		}
		out[i] = quote.NewTick(chartutil.UTCDate(t.Epoch), price)
	}
	return out, true
}

// fillGap synthesizes the price at i from the entries right before and after
// it. Two printed neighbours give their midpoint. Otherwise the next printed
// tick is used, then whatever the previous entry holds, even a zero. With
// nothing on either side the price is NaN.
func fillGap(ticks []feed.ReplayTick, i int) float64 {
	var prev, next *float64
	if i > 0 {
		prev = ticks[i-1].Tick
	}
	if i+1 < len(ticks) {
		next = ticks[i+1].Tick
	}
	switch {
	case printed(prev) && printed(next):
		return chartutil.Lerp(*prev, *next, 0.5)
	case printed(next):
		return *next
	case prev != nil:
		return *prev
	}
	return math.NaN()
}

// printed reports whether a tick value counts as a print: present, non-zero
// and not NaN.
func printed(v *float64) bool {
	return v != nil && *v != 0 && !math.IsNaN(*v)
}
