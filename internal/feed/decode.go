package feed

import (
	"bytes"
	"encoding/json"
	"fmt"

	"chartfeed/internal/quote"
)

// Kind tags a live update.
type Kind int

const (
	KindUnknown Kind = iota
	KindTick
	KindOHLC
)

func (k Kind) String() string {
	switch k {
	case KindTick:
		return "tick"
	case KindOHLC:
		return "ohlc"
	}
	return "unknown"
}

// LiveUpdate is a single streamed update, already resolved to one kind.
// Tick is set for KindTick, OHLC for KindOHLC.
type LiveUpdate struct {
	Kind Kind
	Tick *quote.Tick
	OHLC *quote.OHLC
}

// TickUpdate wraps a tick as a live update.
func TickUpdate(t *quote.Tick) LiveUpdate { return LiveUpdate{Kind: KindTick, Tick: t} }

// OHLCUpdate wraps a bar as a live update.
func OHLCUpdate(o *quote.OHLC) LiveUpdate { return LiveUpdate{Kind: KindOHLC, OHLC: o} }

// DecodeLiveUpdate resolves a streamed message into a LiveUpdate by key
// presence. A "tick" key wins over an "ohlc" key when both are present. A
// message with neither key decodes to KindUnknown without error.
func DecodeLiveUpdate(b []byte) (LiveUpdate, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(b, &top); err != nil {
		return LiveUpdate{}, fmt.Errorf("%w: live update: %v", ErrInvalidPayload, err)
	}
	if raw, ok := top["tick"]; ok {
		t := &quote.Tick{}
		if err := decodeMember(raw, t); err != nil {
			return LiveUpdate{}, fmt.Errorf("%w: tick: %v", ErrInvalidPayload, err)
		}
		return TickUpdate(t), nil
	}
	if raw, ok := top["ohlc"]; ok {
		o := &quote.OHLC{}
		if err := decodeMember(raw, o); err != nil {
			return LiveUpdate{}, fmt.Errorf("%w: ohlc: %v", ErrInvalidPayload, err)
		}
		return OHLCUpdate(o), nil
	}
	return LiveUpdate{}, nil
}

// DecodeHistory decodes a bulk history response.
func DecodeHistory(b []byte) (HistoryResponse, error) {
	var resp HistoryResponse
	if err := json.Unmarshal(b, &resp); err != nil {
		return HistoryResponse{}, fmt.Errorf("%w: history: %v", ErrInvalidPayload, err)
	}
	return resp, nil
}

// DecodeReplay decodes a replay list. JSON null decodes to a nil slice.
func DecodeReplay(b []byte) ([]ReplayTick, error) {
	var ticks []ReplayTick
	if err := json.Unmarshal(b, &ticks); err != nil {
		return nil, fmt.Errorf("%w: replay: %v", ErrInvalidPayload, err)
	}
	return ticks, nil
}

// DecodeOpenContract decodes either a bare contract object or a message that
// wraps it under "proposal_open_contract". JSON null yields a nil contract.
func DecodeOpenContract(b []byte) (*OpenContract, error) {
	var envelope struct {
		Contract json.RawMessage `json:"proposal_open_contract"`
	}
	if err := json.Unmarshal(b, &envelope); err != nil {
		return nil, fmt.Errorf("%w: contract: %v", ErrInvalidPayload, err)
	}
	if len(envelope.Contract) > 0 {
		b = envelope.Contract
	}
	var c *OpenContract
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("%w: contract: %v", ErrInvalidPayload, err)
	}
	return c, nil
}

// decodeMember decodes one member of a message. A null member leaves v at its
// zero value.
func decodeMember(raw json.RawMessage, v any) error {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	return json.Unmarshal(raw, v)
}
