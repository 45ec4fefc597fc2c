package quote

import (
	"bytes"
	"encoding/json"
)

// Tick is a streamed tick record. When decoded from JSON it remembers the exact
// input bytes and marshals back to them, so fields this type does not model
// (id, ask/bid extras, anything added upstream later) survive untouched.
type Tick struct {
	Epoch   Numeric `json:"epoch"`
	Quote   Numeric `json:"quote"`
	Ask     Numeric `json:"ask"`
	Bid     Numeric `json:"bid"`
	Symbol  string  `json:"symbol"`
	PipSize Numeric `json:"pip_size"`

	raw json.RawMessage
}

// NewContractTick builds the tick descriptor attached to open-contract quotes.
func NewContractTick(epoch, price float64, symbol string, pipSize int) *Tick {
	return &Tick{
		Epoch:   NumericFloat(epoch),
		Quote:   NumericFloat(price),
		Symbol:  symbol,
		PipSize: NumericFloat(float64(pipSize)),
	}
}

// Raw returns the bytes the tick was decoded from, or nil for built ticks.
func (t *Tick) Raw() json.RawMessage { return t.raw }

func (t *Tick) UnmarshalJSON(b []byte) error {
	type plain Tick
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*t = Tick(p)
	t.raw = keepRaw(b)
	return nil
}

func (t Tick) MarshalJSON() ([]byte, error) {
	if len(t.raw) > 0 {
		return t.raw, nil
	}
	return json.Marshal(struct {
		Epoch   Numeric `json:"epoch"`
		Quote   Numeric `json:"quote"`
		Symbol  string  `json:"symbol"`
		PipSize Numeric `json:"pip_size"`
	}{t.Epoch, t.Quote, t.Symbol, t.PipSize})
}

// OHLC is a streamed bar record, passed through the same way as Tick.
type OHLC struct {
	OpenTime    Numeric `json:"open_time"`
	Open        Numeric `json:"open"`
	High        Numeric `json:"high"`
	Low         Numeric `json:"low"`
	Close       Numeric `json:"close"`
	Epoch       Numeric `json:"epoch"`
	Granularity Numeric `json:"granularity"`
	Symbol      string  `json:"symbol"`

	raw json.RawMessage
}

// Raw returns the bytes the bar was decoded from, or nil for built bars.
func (o *OHLC) Raw() json.RawMessage { return o.raw }

func (o *OHLC) UnmarshalJSON(b []byte) error {
	type plain OHLC
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*o = OHLC(p)
	o.raw = keepRaw(b)
	return nil
}

func (o OHLC) MarshalJSON() ([]byte, error) {
	if len(o.raw) > 0 {
		return o.raw, nil
	}
	type plain OHLC
	return json.Marshal(plain(o))
}

func keepRaw(b []byte) json.RawMessage {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	return append(json.RawMessage(nil), b...)
}
