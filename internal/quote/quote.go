// Package quote defines the canonical quote handed to the chart and the raw
// upstream records it may carry along.
package quote

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"chartfeed/internal/chartutil"
)

// Quote is the normalized shape produced by every converter.
//
// Close is always set. Bar is nil for tick quotes; for bar quotes it carries
// Open, High and Low together. Tick and OHLC hold the upstream record the
// quote was built from, when the converter keeps one.
type Quote struct {
	Date  time.Time
	Close float64
	Bar   *Bar
	Tick  *Tick
	OHLC  *OHLC
}

// Bar holds the range fields of a bar quote.
type Bar struct {
	Open float64
	High float64
	Low  float64
}

// NewTick returns a tick quote.
func NewTick(date time.Time, close float64) Quote {
	return Quote{Date: date, Close: close}
}

// NewBar returns a bar quote.
func NewBar(date time.Time, open, high, low, close float64) Quote {
	return Quote{Date: date, Close: close, Bar: &Bar{Open: open, High: high, Low: low}}
}

// IsBar reports whether q is a bar quote.
func (q Quote) IsBar() bool { return q.Bar != nil }

// MarshalJSON renders the chart's field names. NaN and Inf become null.
func (q Quote) MarshalJSON() ([]byte, error) {
	out := struct {
		Date  string     `json:"Date"`
		Open  *jsonFloat `json:"Open,omitempty"`
		High  *jsonFloat `json:"High,omitempty"`
		Low   *jsonFloat `json:"Low,omitempty"`
		Close jsonFloat  `json:"Close"`
		Tick  *Tick      `json:"tick,omitempty"`
		OHLC  *OHLC      `json:"ohlc,omitempty"`
	}{
		Date:  chartutil.FormatDate(q.Date),
		Close: jsonFloat(q.Close),
		Tick:  q.Tick,
		OHLC:  q.OHLC,
	}
	if q.Bar != nil {
		o, h, l := jsonFloat(q.Bar.Open), jsonFloat(q.Bar.High), jsonFloat(q.Bar.Low)
		out.Open, out.High, out.Low = &o, &h, &l
	}
	return json.Marshal(out)
}

type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'f', -1, 64), nil
}
