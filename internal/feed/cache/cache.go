package cache

import (
	"context"
	"sync"
	"time"

	"github.com/marstr/collection/v2"
	"golang.org/x/sync/singleflight"

	"chartfeed/internal/feed"
)

const (
	defaultMaxItems     = 1000
	defaultFetchTimeout = 30 * time.Second
)

// entry stores one cached history response with its expiry.
type entry struct {
	expiresAt time.Time
	resp      feed.HistoryResponse
}

// Source caches history responses per request for a TTL. The least recently
// used request is evicted once MaxItems is reached. Concurrent misses for the
// same request share a single upstream call, which is detached from any one
// caller's cancellation and bounded by FetchTimeout instead.
type Source struct {
	S            feed.HistorySource
	TTL          time.Duration
	MaxItems     int
	FetchTimeout time.Duration

	once  sync.Once
	mu    sync.Mutex
	items *collection.LRUCache[string, entry]
	group singleflight.Group
}

func (c *Source) Name() string { return c.S.Name() }

func (c *Source) init() {
	c.once.Do(func() {
		size := c.MaxItems
		if size <= 0 {
			size = defaultMaxItems
		}
		c.items = collection.NewLRUCache[string, entry](uint(size))
	})
}

// History returns a cached response when it is still fresh, or fetches and
// stores one. Errors are not cached.
func (c *Source) History(ctx context.Context, req feed.HistoryRequest) (feed.HistoryResponse, error) {
	if c.TTL <= 0 {
		return c.S.History(ctx, req)
	}
	c.init()
	key := req.Key()

	c.mu.Lock()
	e, ok := c.items.Get(key)
	c.mu.Unlock()
	if ok && time.Now().Before(e.expiresAt) {
		return e.resp, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		timeout := c.FetchTimeout
		if timeout <= 0 {
			timeout = defaultFetchTimeout
		}
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		resp, err := c.S.History(fctx, req)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.items.Put(key, entry{expiresAt: time.Now().Add(c.TTL), resp: resp})
		c.mu.Unlock()
		return resp, nil
	})
	select {
	case <-ctx.Done():
		return feed.HistoryResponse{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return feed.HistoryResponse{}, res.Err
		}
		return res.Val.(feed.HistoryResponse), nil
	}
}
