package main

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chartfeed/internal/feed"
	"chartfeed/internal/logger"
	"chartfeed/internal/quote"
)

type fakeHistory struct {
	mu   sync.Mutex
	reqs []feed.HistoryRequest
	fail string
}

func (f *fakeHistory) Name() string { return "fake" }

func (f *fakeHistory) History(_ context.Context, req feed.HistoryRequest) (feed.HistoryResponse, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	if req.Symbol == f.fail {
		return feed.HistoryResponse{}, errors.New("market closed")
	}
	if req.Symbol == "EMPTY" {
		return feed.HistoryResponse{}, nil
	}
	return feed.HistoryResponse{History: []feed.HistoryTick{{Epoch: quote.NumericFloat(1), Quote: quote.NumericString("2.5")}}}, nil
}

type fakeContracts struct{ c *feed.OpenContract }

func (f fakeContracts) OpenContract(context.Context, int64) (*feed.OpenContract, error) {
	return f.c, nil
}

func TestFetchHistory(t *testing.T) {
	src := &fakeHistory{}
	opts := options{symbols: []string{"R_10", "EMPTY"}, style: feed.StyleCandles, count: 5, granularity: 60}

	got, err := fetchHistory(t.Context(), src, opts, logger.NewNop())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "R_10", got[0].Symbol)
	assert.Equal(t, "ok", got[0].Status)
	require.Len(t, got[0].Quotes, 1)
	assert.Equal(t, 2.5, got[0].Quotes[0].Close)
	assert.Equal(t, "absent", got[1].Status)
	for _, req := range src.reqs {
		assert.Equal(t, 60, req.Granularity)
		assert.Equal(t, 5, req.Count)
	}
}

func TestFetchHistory_Errors(t *testing.T) {
	_, err := fetchHistory(t.Context(), &fakeHistory{}, options{}, logger.NewNop())
	require.EqualError(t, err, "no symbols provided")

	_, err = fetchHistory(t.Context(), &fakeHistory{fail: "R_50"}, options{symbols: []string{"R_50"}, style: feed.StyleTicks}, logger.NewNop())
	require.EqualError(t, err, "R_50: market closed")
}

func TestFetchContract(t *testing.T) {
	tick := 10.5
	display := "10.50"
	src := fakeContracts{c: &feed.OpenContract{
		Underlying: "R_100",
		TickStream: []feed.ContractTick{{Epoch: 1, Tick: &tick, TickDisplayValue: &display}},
	}}

	got, err := fetchContract(t.Context(), src, 7)
	require.NoError(t, err)
	assert.Equal(t, "R_100", got.Symbol)
	require.Len(t, got.Quotes, 1)

	got, err = fetchContract(t.Context(), fakeContracts{}, 7)
	require.NoError(t, err)
	assert.Equal(t, "incomplete", got.Status)
}

func TestTrim_KeepsNewest(t *testing.T) {
	quotes := []quote.Quote{
		quote.NewTick(time.Unix(1, 0), 1),
		quote.NewTick(time.Unix(2, 0), 2),
		quote.NewTick(time.Unix(3, 0), 3),
	}

	got := trim(symbolQuotes{Quotes: quotes}, 2)
	assert.Equal(t, quotes[1:], got.Quotes)

	assert.Len(t, trim(symbolQuotes{Quotes: quotes}, 0).Quotes, 3)
	assert.NotNil(t, trim(symbolQuotes{}, 5).Quotes)
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, trim(symbolQuotes{Symbol: "R_10", Status: "absent"}, 0)))
	assert.JSONEq(t, `{"symbol":"R_10","status":"absent","quotes":[]}`, buf.String())
}
