// Package publish fans canonical live quotes out over Redis pub/sub, one
// channel per symbol.
package publish

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"chartfeed/internal/errors"
	"chartfeed/internal/quote"
)

// Redis is the subset of redis.Cmdable the publisher needs.
type Redis interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type Publisher struct {
	rdb    Redis
	prefix string
}

func New(rdb Redis, prefix string) *Publisher {
	return &Publisher{rdb: rdb, prefix: prefix}
}

// Channel is the pub/sub channel quotes for symbol go to.
func (p *Publisher) Channel(symbol string) string {
	return p.prefix + symbol
}

// Publish sends q as JSON to the symbol's channel and returns the number of
// subscribers that received it.
func (p *Publisher) Publish(ctx context.Context, symbol string, q quote.Quote) (int64, error) {
	payload, err := json.Marshal(q)
	if err != nil {
		return 0, errors.NewTracer("publish: encode quote").Wrap(err)
	}
	n, err := p.rdb.Publish(ctx, p.Channel(symbol), payload).Result()
	if err != nil {
		return 0, errors.NewTracer("publish: " + p.Channel(symbol)).Wrap(err)
	}
	return n, nil
}
