package main

import (
	"context"

	"golang.org/x/sync/errgroup"

	"chartfeed/internal/feed"
	"chartfeed/internal/feed/deriv"
	"chartfeed/internal/logger"
	"chartfeed/internal/metrics"
	"chartfeed/internal/normalize"
	"chartfeed/internal/quote"
)

type subscriber interface {
	Subscribe(ctx context.Context, req feed.HistoryRequest, h deriv.Handlers) error
}

type publisher interface {
	Publish(ctx context.Context, symbol string, q quote.Quote) (int64, error)
}

// streamer keeps one subscription per symbol and publishes every live update
// as a canonical quote.
type streamer struct {
	sub     subscriber
	pub     publisher
	metrics *metrics.Metrics
	log     logger.Interface

	style       feed.Style
	count       int
	granularity int
}

// run streams all symbols until ctx ends or one subscription fails, which
// stops the rest.
func (s *streamer) run(ctx context.Context, symbols []string) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, sym := range symbols {
		g.Go(func() error { return s.stream(gctx, sym) })
	}
	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (s *streamer) stream(ctx context.Context, symbol string) error {
	req := feed.HistoryRequest{Symbol: symbol, Style: s.style, Count: s.count}
	if s.style == feed.StyleCandles {
		req.Granularity = s.granularity
	}
	log := s.log.With(logger.NewField("symbol", symbol))
	log.Info("subscribing", logger.NewField("style", string(s.style)))

	err := s.sub.Subscribe(ctx, req, deriv.Handlers{
		History: func(resp feed.HistoryResponse) {
			quotes, ok := normalize.History(resp)
			status := normalize.StatusOK
			if !ok {
				status = normalize.StatusAbsent
			}
			s.metrics.ObserveQuotes(string(normalize.KindHistory), status.String(), quotes)
			log.Info("initial history", logger.NewField("quotes", len(quotes)))
		},
		Update: func(u feed.LiveUpdate) {
			s.publish(ctx, log, symbol, u)
		},
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (s *streamer) publish(ctx context.Context, log logger.Interface, symbol string, u feed.LiveUpdate) {
	q, ok := normalize.Live(u)
	if !ok {
		s.metrics.ObserveQuotes(string(normalize.KindTick), normalize.StatusAbsent.String(), nil)
		return
	}
	s.metrics.ObserveQuotes(string(normalize.KindTick), normalize.StatusOK.String(), []quote.Quote{q})
	if _, err := s.pub.Publish(ctx, symbol, q); err != nil {
		s.metrics.PublishFailures.Inc()
		log.Error(err, logger.NewField("kind", u.Kind.String()))
		return
	}
	s.metrics.PublishedTotal.Inc()
}
