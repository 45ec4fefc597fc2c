package wsx

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Client is a small wrapper around websocket.Dialer with sane defaults.
type Client struct {
	Dialer    *websocket.Dialer
	UserAgent string
	Headers   map[string]string
}

func New(handshakeTimeout time.Duration) *Client {
	if handshakeTimeout <= 0 {
		handshakeTimeout = 5 * time.Second
	}
	dialer := &websocket.Dialer{
		Proxy:             http.ProxyFromEnvironment,
		NetDialContext:    (&net.Dialer{Timeout: 3 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		HandshakeTimeout:  handshakeTimeout,
		ReadBufferSize:    16 << 10,
		WriteBufferSize:   4 << 10,
		EnableCompression: true,
	}
	return &Client{Dialer: dialer, UserAgent: "chartfeed/1.0"}
}

// Dial opens a websocket connection to url, adding the client's user agent
// and headers.
func (c *Client) Dial(ctx context.Context, url string) (*websocket.Conn, error) {
	h := http.Header{}
	if c.UserAgent != "" {
		h.Set("User-Agent", c.UserAgent)
	}
	for k, v := range c.Headers {
		h.Set(k, v)
	}
	conn, resp, err := c.Dialer.DialContext(ctx, url, h)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial %s: %w (status %d)", url, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("websocket dial %s: %w", url, err)
	}
	return conn, nil
}
