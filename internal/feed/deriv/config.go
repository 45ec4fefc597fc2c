package deriv

import (
	"time"

	"chartfeed/internal/config"
	"chartfeed/internal/wsx"
)

// NewClientFromConfig builds a client for the configured feed. Extra options
// are applied last.
func NewClientFromConfig(cfg config.Feed, options ...ClientOption) *Client {
	ws := wsx.New(time.Duration(cfg.DialTimeoutSec) * time.Second)
	if cfg.Origin != "" {
		ws.Headers = map[string]string{"Origin": cfg.Origin}
	}
	base := []ClientOption{WithWSX(ws)}
	if cfg.Endpoint != "" {
		base = append(base, WithEndpoint(cfg.Endpoint))
	}
	if cfg.AppID > 0 {
		base = append(base, WithAppID(cfg.AppID))
	}
	if cfg.Language != "" {
		base = append(base, WithLanguage(cfg.Language))
	}
	return NewClient(append(base, options...)...)
}
