package ratelimit

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chartfeed/internal/feed"
)

type countingSource struct{ calls atomic.Int32 }

func (c *countingSource) Name() string { return "counting" }

func (c *countingSource) History(context.Context, feed.HistoryRequest) (feed.HistoryResponse, error) {
	c.calls.Add(1)
	return feed.HistoryResponse{Candles: []feed.Candle{}}, nil
}

func ticks(symbol string) feed.HistoryRequest {
	return feed.HistoryRequest{Symbol: symbol, Style: feed.StyleTicks}
}

func TestTokenBucket_BurstThenBlocks(t *testing.T) {
	src := &countingSource{}
	s := &Source{S: src, Global: NewTokenBucket(0.001, 2)}

	for _, sym := range []string{"R_10", "R_25"} {
		_, err := s.History(t.Context(), ticks(sym))
		require.NoError(t, err)
	}

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	_, err := s.History(ctx, ticks("R_50"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(2), src.calls.Load())
	assert.Equal(t, "counting", s.Name())
}

func TestInterval_SpacesCallsForSameSymbol(t *testing.T) {
	src := &countingSource{}
	s := Wrap(src, 0, 0, 30*time.Millisecond)

	start := time.Now()
	for i := 0; i < 2; i++ {
		_, err := s.History(t.Context(), ticks("R_100"))
		require.NoError(t, err)
	}

	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestInterval_OtherSymbolsDoNotWait(t *testing.T) {
	src := &countingSource{}
	s := Wrap(src, 0, 0, time.Hour)

	ctx, cancel := context.WithTimeout(t.Context(), time.Second)
	defer cancel()
	for _, sym := range []string{"R_10", "R_25", "R_50"} {
		_, err := s.History(ctx, ticks(sym))
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), src.calls.Load())
}

func TestInterval_CancelWhileWaiting(t *testing.T) {
	src := &countingSource{}
	s := Wrap(src, 0, 0, time.Hour)

	_, err := s.History(t.Context(), ticks("R_100"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	_, err = s.History(ctx, ticks("R_100"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestWrap(t *testing.T) {
	src := &countingSource{}

	both, ok := Wrap(src, 60, 1, time.Second).(*Source)
	require.True(t, ok)
	assert.IsType(t, &TokenBucket{}, both.Global)
	assert.NotNil(t, both.PerSymbol)

	perSymbol, ok := Wrap(src, 0, 1, time.Second).(*Source)
	require.True(t, ok)
	assert.Nil(t, perSymbol.Global)

	assert.Same(t, src, Wrap(src, 0, 0, 0))
}
