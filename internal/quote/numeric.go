package quote

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Numeric is a number exactly as it arrived on the wire. Upstream feeds send
// prices both as JSON strings and as bare JSON numbers; Numeric accepts either
// and keeps the original text so it can be re-emitted unchanged.
//
// Numeric does not validate. Float is the single place text becomes a number.
type Numeric struct {
	text   string
	quoted bool
	set    bool
}

// NumericString wraps s as if it had been received as a JSON string.
func NumericString(s string) Numeric {
	return Numeric{text: s, quoted: true, set: true}
}

// NumericFloat wraps f as a bare JSON number. NaN and Inf have no JSON form and
// produce an unset Numeric, which still reads back as NaN.
func NumericFloat(f float64) Numeric {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Numeric{}
	}
	return Numeric{text: strconv.FormatFloat(f, 'f', -1, 64), set: true}
}

// IsSet reports whether the field was present and not null.
func (n Numeric) IsSet() bool { return n.set }

// String returns the raw text.
func (n Numeric) String() string { return n.text }

// Float parses the raw text with the rules of a numeric string literal:
// decimal with optional sign, fraction and exponent, the words Infinity and
// -Infinity, or an unsigned 0x/0o/0b integer. Absent or malformed input yields
// NaN, and blank text yields 0. Out-of-range decimals saturate to +/-Inf.
func (n Numeric) Float() float64 {
	if !n.set {
		return math.NaN()
	}
	s := strings.TrimSpace(n.text)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			return parseRadix(s[2:], 16)
		case 'o', 'O':
			return parseRadix(s[2:], 8)
		case 'b', 'B':
			return parseRadix(s[2:], 2)
		}
	}
	if !decimalLiteral.MatchString(s) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return f
		}
		return math.NaN()
	}
	return f
}

var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// parseRadix reads digits in base as an unsigned integer of any length.
func parseRadix(digits string, base int) float64 {
	var f float64
	for _, r := range digits {
		d := -1
		switch {
		case r >= '0' && r <= '9':
			d = int(r - '0')
		case r >= 'a' && r <= 'f':
			d = int(r-'a') + 10
		case r >= 'A' && r <= 'F':
			d = int(r-'A') + 10
		}
		if d < 0 || d >= base {
			return math.NaN()
		}
		f = f*float64(base) + float64(d)
	}
	return f
}

func (n *Numeric) UnmarshalJSON(b []byte) error {
	b = []byte(strings.TrimSpace(string(b)))
	switch {
	case len(b) == 0 || string(b) == "null":
		*n = Numeric{}
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = NumericString(s)
	default:
		*n = Numeric{text: string(b), set: true}
	}
	return nil
}

func (n Numeric) MarshalJSON() ([]byte, error) {
	switch {
	case !n.set:
		return []byte("null"), nil
	case n.quoted:
		return json.Marshal(n.text)
	default:
		return []byte(n.text), nil
	}
}
