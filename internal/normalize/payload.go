package normalize

import (
	"errors"
	"fmt"

	"chartfeed/internal/feed"
	"chartfeed/internal/quote"
)

// ErrUnknownKind is returned by Payload for a kind it does not handle.
var ErrUnknownKind = errors.New("normalize: unknown payload kind")

// Kind names a payload shape accepted by Payload.
type Kind string

const (
	KindHistory  Kind = "history"
	KindTick     Kind = "tick"
	KindReplay   Kind = "replay"
	KindContract Kind = "contract"
)

// Kinds lists every kind Payload accepts.
var Kinds = []Kind{KindHistory, KindTick, KindReplay, KindContract}

// IsAvailable reports whether k is handled by Payload.
func (k Kind) IsAvailable() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Status tells the caller which of the "nothing" outcomes, if any, happened.
type Status int

const (
	// StatusOK means Quotes holds the result, possibly empty.
	StatusOK Status = iota
	// StatusAbsent means the payload had nothing recognizable to convert.
	StatusAbsent
	// StatusIncomplete means a contract lacked its tick stream or underlying.
	StatusIncomplete
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusAbsent:
		return "absent"
	case StatusIncomplete:
		return "incomplete"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Outcome is the result of Payload.
type Outcome struct {
	Quotes []quote.Quote
	Status Status
}

// Payload decodes raw as a payload of the given kind and runs the matching
// converter. Errors are limited to undecodable input and unknown kinds.
func Payload(kind Kind, raw []byte) (Outcome, error) {
	switch kind {
	case KindHistory:
		resp, err := feed.DecodeHistory(raw)
		if err != nil {
			return Outcome{}, err
		}
		return fromList(History(resp)), nil
	case KindTick:
		u, err := feed.DecodeLiveUpdate(raw)
		if err != nil {
			return Outcome{}, err
		}
		q, ok := Live(u)
		if !ok {
			return Outcome{Status: StatusAbsent}, nil
		}
		return Outcome{Quotes: []quote.Quote{q}}, nil
	case KindReplay:
		ticks, err := feed.DecodeReplay(raw)
		if err != nil {
			return Outcome{}, err
		}
		return fromList(Replay(ticks)), nil
	case KindContract:
		c, err := feed.DecodeOpenContract(raw)
		if err != nil {
			return Outcome{}, err
		}
		quotes, err := ContractStream(c)
		if errors.Is(err, ErrIncompleteContract) {
			return Outcome{Status: StatusIncomplete}, nil
		}
		return Outcome{Quotes: quotes}, err
	}
	return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

func fromList(quotes []quote.Quote, ok bool) Outcome {
	if !ok {
		return Outcome{Status: StatusAbsent}
	}
	return Outcome{Quotes: quotes}
}
