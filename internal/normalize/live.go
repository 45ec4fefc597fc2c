package normalize

import (
	"chartfeed/internal/chartutil"
	"chartfeed/internal/feed"
	"chartfeed/internal/quote"
)

// Live converts one streamed update. The source record is attached to the
// quote as is. ok is false for KindUnknown.
func Live(u feed.LiveUpdate) (quote.Quote, bool) {
	switch u.Kind {
	case feed.KindTick:
		var t quote.Tick
		if u.Tick != nil {
			t = *u.Tick
		}
		q := quote.NewTick(chartutil.UTCDate(t.Epoch.Float()), t.Quote.Float())
		q.Tick = u.Tick
		return q, true
	case feed.KindOHLC:
		var o quote.OHLC
		if u.OHLC != nil {
			o = *u.OHLC
		}
		q := quote.NewBar(
			chartutil.UTCDate(o.OpenTime.Float()),
			o.Open.Float(), o.High.Float(), o.Low.Float(), o.Close.Float(),
		)
		q.OHLC = u.OHLC
		return q, true
	}
	return quote.Quote{}, false
}
