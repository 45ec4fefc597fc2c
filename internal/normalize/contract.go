package normalize

import (
	"errors"
	"strings"
	"unicode/utf8"

	"chartfeed/internal/chartutil"
	"chartfeed/internal/feed"
	"chartfeed/internal/quote"
)

// ErrIncompleteContract reports a contract with no tick stream or no
// underlying symbol. It is an expected outcome, not a failure.
var ErrIncompleteContract = errors.New("normalize: contract has no tick stream or underlying")

// ContractStream converts an open contract's tick stream. Each quote carries a
// tick descriptor with the contract's underlying symbol and the pip size read
// from the entry's display value. A nil contract counts as incomplete.
func ContractStream(c *feed.OpenContract) ([]quote.Quote, error) {
	if c == nil || len(c.TickStream) == 0 || c.Underlying == "" {
		return nil, ErrIncompleteContract
	}
	out := make([]quote.Quote, len(c.TickStream))
	for i, e := range c.TickStream {
		var price float64
		if printed(e.Tick) {
			price = *e.Tick
		}
		var display string
		if e.TickDisplayValue != nil {
			display = *e.TickDisplayValue
		}
		q := quote.NewTick(chartutil.UTCDate(e.Epoch), price)
		q.Tick = quote.NewContractTick(e.Epoch, price, c.Underlying, PipSize(display))
		out[i] = q
	}
	return out, nil
}

// PipSize counts the characters between the first and second dot of a display
// price, which for any well-formed price is its fractional part. It works on
// the text so trailing zeros count.
func PipSize(display string) int {
	parts := strings.Split(display, ".")
	if len(parts) < 2 {
		return 0
	}
	return utf8.RuneCountInString(parts[1])
}
