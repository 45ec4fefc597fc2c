// Package feed describes the payloads an upstream market-data feed delivers
// and the boundary that decodes them.
package feed

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"chartfeed/internal/quote"
)

// ErrInvalidPayload is returned when a payload is not decodable JSON of the
// expected overall shape.
var ErrInvalidPayload = errors.New("feed: invalid payload")

// HistoryTick is one entry of a tick history.
type HistoryTick struct {
	Epoch quote.Numeric `json:"epoch"`
	Ask   quote.Numeric `json:"ask"`
	Bid   quote.Numeric `json:"bid"`
	Quote quote.Numeric `json:"quote"`
}

// Candle is one entry of a candle history.
type Candle struct {
	Epoch quote.Numeric `json:"epoch"`
	Open  quote.Numeric `json:"open"`
	High  quote.Numeric `json:"high"`
	Low   quote.Numeric `json:"low"`
	Close quote.Numeric `json:"close"`
}

// HistoryResponse is a bulk history answer. A nil Candles means the key was
// absent; an empty non-nil Candles means the feed sent an empty list.
type HistoryResponse struct {
	History []HistoryTick `json:"history,omitempty"`
	Candles []Candle      `json:"candles,omitempty"`
}

// ReplayTick is one entry of a full contract tick replay. A nil Tick, or a
// zero one, means no price was printed at that epoch.
type ReplayTick struct {
	Epoch            float64  `json:"epoch"`
	Tick             *float64 `json:"tick,omitempty"`
	TickDisplayValue string   `json:"tick_display_value,omitempty"`
}

// ContractTick is one entry of an open contract's tick stream.
type ContractTick struct {
	Epoch            float64  `json:"epoch"`
	Tick             *float64 `json:"tick,omitempty"`
	TickDisplayValue *string  `json:"tick_display_value,omitempty"`
}

// OpenContract is the subset of an open-contract update the converters read.
type OpenContract struct {
	ContractID int64          `json:"contract_id,omitempty"`
	Underlying string         `json:"underlying"`
	TickStream []ContractTick `json:"tick_stream"`
}

// Style selects ticks or candles in a history request.
type Style string

const (
	StyleTicks   Style = "ticks"
	StyleCandles Style = "candles"
)

// IsAvailable reports whether s is a known style.
func (s Style) IsAvailable() bool {
	switch s {
	case StyleTicks, StyleCandles:
		return true
	}
	return false
}

// HistoryRequest asks for the recent history of one symbol.
type HistoryRequest struct {
	Symbol      string
	Style       Style
	Count       int
	Granularity int   // seconds per candle, candles only
	Start       int64 // epoch seconds, 0 for none
	End         int64 // epoch seconds, 0 for latest
}

// Key identifies the request for caching.
func (r HistoryRequest) Key() string {
	return r.Symbol + "|" + string(r.Style) + "|" +
		strconv.Itoa(r.Count) + "|" + strconv.Itoa(r.Granularity) + "|" +
		strconv.FormatInt(r.Start, 10) + "|" + strconv.FormatInt(r.End, 10)
}

// Validate checks the fields a feed needs to answer the request.
func (r HistoryRequest) Validate() error {
	if r.Symbol == "" {
		return fmt.Errorf("feed: history request: empty symbol")
	}
	if !r.Style.IsAvailable() {
		return fmt.Errorf("feed: history request: unknown style %q", r.Style)
	}
	if r.Style == StyleCandles && r.Granularity <= 0 {
		return fmt.Errorf("feed: history request: candles need a positive granularity")
	}
	return nil
}

// HistorySource fetches bulk history from somewhere.
type HistorySource interface {
	Name() string
	History(ctx context.Context, req HistoryRequest) (HistoryResponse, error)
}
