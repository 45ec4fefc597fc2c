// Package normalize turns upstream feed payloads into canonical quotes.
//
// Every converter is a pure function over its input. Numbers are parsed
// without validation: malformed text becomes NaN in the output and is left for
// the renderer to deal with.
package normalize

import (
	"chartfeed/internal/chartutil"
	"chartfeed/internal/feed"
	"chartfeed/internal/quote"
)

// History converts a bulk history response. A non-empty tick history takes
// priority over candles. ok is false when the response has no tick history
// and no candles key.
func History(resp feed.HistoryResponse) ([]quote.Quote, bool) {
	if len(resp.History) > 0 {
		out := make([]quote.Quote, len(resp.History))
		for i, t := range resp.History {
			out[i] = quote.NewTick(chartutil.UTCDate(t.Epoch.Float()), t.Quote.Float())
		}
		return out, true
	}
	if resp.Candles != nil {
		out := make([]quote.Quote, len(resp.Candles))
		for i, c := range resp.Candles {
			out[i] = quote.NewBar(
				chartutil.UTCDate(c.Epoch.Float()),
				c.Open.Float(), c.High.Float(), c.Low.Float(), c.Close.Float(),
			)
		}
		return out, true
	}
	return nil, false
}
