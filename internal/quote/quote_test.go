package quote

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumeric_Float(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input string
		want  float64
		isNaN bool
	}{
		{name: "quoted decimal", input: `"1234.56"`, want: 1234.56},
		{name: "bare number", input: `1700000000`, want: 1700000000},
		{name: "padded text", input: `" 42 "`, want: 42},
		{name: "blank text reads as zero", input: `""`, want: 0},
		{name: "exponent", input: `"1e3"`, want: 1000},
		{name: "malformed text", input: `"12abc"`, isNaN: true},
		{name: "null", input: `null`, isNaN: true},
		{name: "boolean", input: `true`, isNaN: true},
		{name: "trailing dot", input: `"1."`, want: 1},
		{name: "leading dot", input: `"-.5"`, want: -0.5},
		{name: "overflow saturates", input: `"1e400"`, want: math.Inf(1)},
		{name: "infinity word", input: `"Infinity"`, want: math.Inf(1)},
		{name: "negative infinity word", input: `"-Infinity"`, want: math.Inf(-1)},
		{name: "lowercase inf", input: `"inf"`, isNaN: true},
		{name: "lowercase infinity", input: `"infinity"`, isNaN: true},
		{name: "NaN word", input: `"NaN"`, isNaN: true},
		{name: "hex float", input: `"0x1p-2"`, isNaN: true},
		{name: "hex integer", input: `"0x1A"`, want: 26},
		{name: "octal integer", input: `"0o17"`, want: 15},
		{name: "binary integer", input: `"0b101"`, want: 5},
		{name: "signed hex", input: `"-0x1A"`, isNaN: true},
		{name: "bare prefix", input: `"0x"`, isNaN: true},
		{name: "digit separators", input: `"1_000"`, isNaN: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var n Numeric
			require.NoError(t, json.Unmarshal([]byte(tc.input), &n))

			got := n.Float()
			if tc.isNaN {
				assert.True(t, math.IsNaN(got), "want NaN, got %v", got)
				return
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNumeric_AbsentFieldIsNaN(t *testing.T) {
	var v struct {
		Quote Numeric `json:"quote"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &v))
	assert.False(t, v.Quote.IsSet())
	assert.True(t, math.IsNaN(v.Quote.Float()))
}

func TestNumeric_MarshalKeepsWireForm(t *testing.T) {
	var v struct {
		A Numeric `json:"a"`
		B Numeric `json:"b"`
		C Numeric `json:"c"`
	}
	in := `{"a":"1.50","b":2.25,"c":null}`
	require.NoError(t, json.Unmarshal([]byte(in), &v))

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))

	assert.False(t, NumericFloat(math.NaN()).IsSet())
	assert.Equal(t, "0.1", NumericFloat(0.1).String())
}

func TestTick_PassthroughIsVerbatim(t *testing.T) {
	in := `{"ask":"1.1","bid":"1.0","epoch":1700000000,"id":"abc-123","pip_size":2,"quote":"1.05","symbol":"R_100","extra":{"x":1}}`

	var tick Tick
	require.NoError(t, json.Unmarshal([]byte(in), &tick))
	assert.Equal(t, "R_100", tick.Symbol)
	assert.Equal(t, 1.05, tick.Quote.Float())
	assert.Equal(t, float64(2), tick.PipSize.Float())

	out, err := json.Marshal(tick)
	require.NoError(t, err)
	assert.Equal(t, in, string(out))
	assert.Equal(t, in, string(tick.Raw()))
}

func TestOHLC_PassthroughIsVerbatim(t *testing.T) {
	in := `{"open_time":1700000000,"open":"10","high":"12","low":"9","close":"11","granularity":60,"id":"x"}`

	var bar OHLC
	require.NoError(t, json.Unmarshal([]byte(in), &bar))
	assert.Equal(t, float64(12), bar.High.Float())

	out, err := json.Marshal(&bar)
	require.NoError(t, err)
	assert.Equal(t, in, string(out))
}

func TestNewContractTick_MarshalsDescriptor(t *testing.T) {
	tick := NewContractTick(1700000000, 123.45, "R_50", 2)
	assert.Nil(t, tick.Raw())

	out, err := json.Marshal(tick)
	require.NoError(t, err)
	assert.JSONEq(t, `{"epoch":1700000000,"quote":123.45,"symbol":"R_50","pip_size":2}`, string(out))
}

func TestQuote_MarshalJSON(t *testing.T) {
	date := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("tick quote omits range", func(t *testing.T) {
		out, err := json.Marshal(NewTick(date, 10.5))
		require.NoError(t, err)
		assert.JSONEq(t, `{"Date":"2024-01-02T03:04:05","Close":10.5}`, string(out))
	})

	t.Run("bar quote carries all four fields", func(t *testing.T) {
		q := NewBar(date, 1, 3, 0.5, 2)
		assert.True(t, q.IsBar())
		out, err := json.Marshal(q)
		require.NoError(t, err)
		assert.JSONEq(t, `{"Date":"2024-01-02T03:04:05","Open":1,"High":3,"Low":0.5,"Close":2}`, string(out))
	})

	t.Run("NaN close renders as null", func(t *testing.T) {
		out, err := json.Marshal(NewTick(date, math.NaN()))
		require.NoError(t, err)
		assert.JSONEq(t, `{"Date":"2024-01-02T03:04:05","Close":null}`, string(out))
	})

	t.Run("raw tick rides along", func(t *testing.T) {
		q := NewTick(date, 1)
		q.Tick = NewContractTick(1704164645, 1, "R_10", 0)
		out, err := json.Marshal(q)
		require.NoError(t, err)
		assert.JSONEq(t, `{"Date":"2024-01-02T03:04:05","Close":1,"tick":{"epoch":1704164645,"quote":1,"symbol":"R_10","pip_size":0}}`, string(out))
	})
}
