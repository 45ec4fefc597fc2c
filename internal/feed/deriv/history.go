package deriv

import (
	"context"

	"chartfeed/internal/feed"
)

// History fetches a tick or candle history. It implements feed.HistorySource.
func (c *Client) History(ctx context.Context, req feed.HistoryRequest) (feed.HistoryResponse, error) {
	if err := req.Validate(); err != nil {
		return feed.HistoryResponse{}, err
	}
	raw, err := c.call(ctx, "history", c.historyPayload(req, false), "history", "candles")
	if err != nil {
		return feed.HistoryResponse{}, err
	}
	return feed.DecodeHistory(raw)
}

// OpenContract fetches the current state of an open contract.
func (c *Client) OpenContract(ctx context.Context, contractID int64) (*feed.OpenContract, error) {
	payload := map[string]any{
		"proposal_open_contract": 1,
		"contract_id":            contractID,
		"req_id":                 c.nextReqID(),
	}
	raw, err := c.call(ctx, "open_contract", payload, "proposal_open_contract")
	if err != nil {
		return nil, err
	}
	return feed.DecodeOpenContract(raw)
}

func (c *Client) historyPayload(req feed.HistoryRequest, subscribe bool) map[string]any {
	p := map[string]any{
		"ticks_history":     req.Symbol,
		"style":             string(req.Style),
		"adjust_start_time": 1,
		"end":               "latest",
		"req_id":            c.nextReqID(),
	}
	if req.End > 0 {
		p["end"] = req.End
	}
	if req.Start > 0 {
		p["start"] = req.Start
	}
	if req.Count > 0 {
		p["count"] = req.Count
	}
	if req.Style == feed.StyleCandles {
		p["granularity"] = req.Granularity
	}
	if subscribe {
		p["subscribe"] = 1
	}
	return p
}
