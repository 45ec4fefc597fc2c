package deriv

import (
	"context"
	"time"

	"chartfeed/internal/feed"
)

// Handlers receive what a subscription delivers. Nil handlers are skipped.
type Handlers struct {
	// History gets the initial history the feed sends before streaming.
	History func(feed.HistoryResponse)
	// Update gets every streamed tick or bar.
	Update func(feed.LiveUpdate)
}

// Subscribe asks for req's history and then streams updates for the same
// symbol into h until ctx ends or the connection fails. It returns ctx.Err()
// after cancellation. Lost connections are not retried.
func (c *Client) Subscribe(ctx context.Context, req feed.HistoryRequest, h Handlers) (err error) {
	if err := req.Validate(); err != nil {
		return err
	}
	start := time.Now()
	defer func() { c.observe("subscribe", start, err) }()

	s, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	payload := c.historyPayload(req, true)
	reqID := payload["req_id"].(int64)
	if err := s.conn.WriteJSON(payload); err != nil {
		return fail(ctx, "write subscribe", err)
	}
	for {
		msg, env, err := s.next(ctx, "subscribe", reqID)
		if err != nil {
			return err
		}
		switch env.MsgType {
		case "history", "candles":
			resp, err := feed.DecodeHistory(msg)
			if err != nil {
				return err
			}
			if h.History != nil {
				h.History(resp)
			}
		case "tick", "ohlc":
			u, err := feed.DecodeLiveUpdate(msg)
			if err != nil {
				return err
			}
			if h.Update != nil {
				h.Update(u)
			}
		}
	}
}
