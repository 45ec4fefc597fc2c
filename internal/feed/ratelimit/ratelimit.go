package ratelimit

import (
	"context"
	"sync"
	"time"

	"chartfeed/internal/feed"
)

// Limiter blocks until the caller may proceed or ctx ends.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Interval spaces callers at least Every apart. Each Wait reserves the next
// free slot, so concurrent callers queue in arrival order.
type Interval struct {
	Every time.Duration

	mu   sync.Mutex
	next time.Time
}

func NewInterval(every time.Duration) *Interval { return &Interval{Every: every} }

func (iv *Interval) Wait(ctx context.Context) error {
	iv.mu.Lock()
	now := time.Now()
	at := iv.next
	if at.Before(now) {
		at = now
	}
	iv.next = at.Add(iv.Every)
	iv.mu.Unlock()

	wait := time.Until(at)
	if wait <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Source gates history calls. Global applies to every call; the limiter built
// by PerSymbol applies to calls for one symbol, so polling one symbol hard
// does not starve the others. Either may be nil.
type Source struct {
	S         feed.HistorySource
	Global    Limiter
	PerSymbol func() Limiter

	mu       sync.Mutex
	bySymbol map[string]Limiter
}

func (s *Source) Name() string { return s.S.Name() }

func (s *Source) History(ctx context.Context, req feed.HistoryRequest) (feed.HistoryResponse, error) {
	if s.Global != nil {
		if err := s.Global.Wait(ctx); err != nil {
			return feed.HistoryResponse{}, err
		}
	}
	if l := s.symbolLimiter(req.Symbol); l != nil {
		if err := l.Wait(ctx); err != nil {
			return feed.HistoryResponse{}, err
		}
	}
	return s.S.History(ctx, req)
}

func (s *Source) symbolLimiter(symbol string) Limiter {
	if s.PerSymbol == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bySymbol == nil {
		s.bySymbol = make(map[string]Limiter)
	}
	l, ok := s.bySymbol[symbol]
	if !ok {
		l = s.PerSymbol()
		s.bySymbol[symbol] = l
	}
	return l
}

// Wrap applies the configured limits to s: a token bucket of rpm requests per
// minute across all symbols, and a minimum interval between calls for the same
// symbol. Zero disables either; with both off s is returned as is.
func Wrap(s feed.HistorySource, rpm, burst int, minInterval time.Duration) feed.HistorySource {
	if rpm <= 0 && minInterval <= 0 {
		return s
	}
	src := &Source{S: s}
	if rpm > 0 {
		src.Global = NewTokenBucket(float64(rpm)/60.0, burst)
	}
	if minInterval > 0 {
		src.PerSymbol = func() Limiter { return NewInterval(minInterval) }
	}
	return src
}
