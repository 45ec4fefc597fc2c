// Package deriv is a client for a Deriv-style websocket market-data API.
package deriv

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"chartfeed/internal/errors"
	"chartfeed/internal/feed"
	"chartfeed/internal/wsx"
)

const defaultEndpoint = "wss://ws.derivws.com/websockets/v3"

// Conn is the part of a websocket connection the client uses.
//
//go:generate mockgen -package=deriv_test -destination=mock_conn_test.go -source=client.go Conn,Dialer
type Conn interface {
	WriteJSON(v any) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// Dialer opens connections to the feed.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// APIError is an error reported by the feed in a response envelope.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return "deriv: " + e.Code + ": " + e.Message
}

// Client talks to a Deriv-style websocket API. Every call runs on its own
// connection, closed when the call returns or its context ends.
type Client struct {
	// endpoint is the websocket URL without query parameters.
	endpoint string
	// appID and language are sent as query parameters.
	appID    int
	language string
	// name is returned by Name.
	name string
	// dialer opens connections.
	dialer Dialer
	// observe is called once per finished call.
	observe func(op string, start time.Time, err error)

	reqID atomic.Int64
}

// ClientOption is a configuration option for the client.
type ClientOption func(*Client)

// WithEndpoint sets the websocket URL.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithAppID sets the application id sent with every connection.
func WithAppID(appID int) ClientOption {
	return func(c *Client) {
		c.appID = appID
	}
}

// WithLanguage sets the language sent with every connection.
func WithLanguage(language string) ClientOption {
	return func(c *Client) {
		c.language = language
	}
}

// WithDialer sets the dialer used to open connections.
func WithDialer(dialer Dialer) ClientOption {
	return func(c *Client) {
		c.dialer = dialer
	}
}

// WithWSX dials through a wsx client.
func WithWSX(ws *wsx.Client) ClientOption {
	return WithDialer(wsxDialer{ws})
}

// WithName sets the source name.
func WithName(name string) ClientOption {
	return func(c *Client) {
		c.name = name
	}
}

// WithObserver registers a hook called after every call with its operation
// name, start time and result.
func WithObserver(observe func(op string, start time.Time, err error)) ClientOption {
	return func(c *Client) {
		c.observe = observe
	}
}

// NewClient creates a new client.
func NewClient(options ...ClientOption) *Client {
	c := &Client{
		endpoint: defaultEndpoint,
		appID:    1089,
		language: "EN",
		name:     "deriv",
		observe:  func(string, time.Time, error) {},
	}
	for _, option := range options {
		option(c)
	}
	if c.dialer == nil {
		c.dialer = wsxDialer{wsx.New(0)}
	}
	return c
}

// Name implements feed.HistorySource.
func (c *Client) Name() string { return c.name }

func (c *Client) url() (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("deriv: endpoint: %w", err)
	}
	q := u.Query()
	if c.appID > 0 {
		q.Set("app_id", strconv.Itoa(c.appID))
	}
	if c.language != "" {
		q.Set("l", c.language)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) nextReqID() int64 { return c.reqID.Add(1) }

// envelope holds the fields every response carries.
type envelope struct {
	MsgType string    `json:"msg_type"`
	ReqID   int64     `json:"req_id"`
	Error   *APIError `json:"error"`
}

// session is one connection tied to a context.
type session struct {
	conn     Conn
	closeNow func()
	done     chan struct{}
}

func (c *Client) open(ctx context.Context) (*session, error) {
	u, err := c.url()
	if err != nil {
		return nil, err
	}
	conn, err := c.dialer.Dial(ctx, u)
	if err != nil {
		return nil, fail(ctx, "dial", err)
	}
	s := &session{
		conn:     conn,
		closeNow: sync.OnceFunc(func() { _ = conn.Close() }),
		done:     make(chan struct{}),
	}
	go func() {
		select {
		case <-ctx.Done():
			s.closeNow()
		case <-s.done:
		}
	}()
	return s, nil
}

func (s *session) close() {
	close(s.done)
	s.closeNow()
}

// next reads until a message answering reqID arrives and returns it with its
// envelope. Feed errors come back as *APIError.
func (s *session) next(ctx context.Context, op string, reqID int64) ([]byte, envelope, error) {
	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			return nil, envelope{}, fail(ctx, "read "+op, err)
		}
		var env envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			return nil, envelope{}, fail(ctx, "read "+op, fmt.Errorf("%w: %v", feed.ErrInvalidPayload, err))
		}
		if env.ReqID != 0 && env.ReqID != reqID {
			continue
		}
		if env.Error != nil {
			return nil, env, env.Error
		}
		return msg, env, nil
	}
}

// call sends payload and returns the first answer whose msg_type is in want.
func (c *Client) call(ctx context.Context, op string, payload map[string]any, want ...string) (raw []byte, err error) {
	start := time.Now()
	defer func() { c.observe(op, start, err) }()

	s, err := c.open(ctx)
	if err != nil {
		return nil, err
	}
	defer s.close()

	reqID := payload["req_id"].(int64)
	if err := s.conn.WriteJSON(payload); err != nil {
		return nil, fail(ctx, "write "+op, err)
	}
	for {
		msg, env, err := s.next(ctx, op, reqID)
		if err != nil {
			return nil, err
		}
		if slices.Contains(want, env.MsgType) {
			return msg, nil
		}
	}
}

// fail prefers the context's error, since a cancelled call surfaces as a
// closed connection.
func fail(ctx context.Context, what string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return errors.NewTracer("deriv: " + what).Wrap(err)
}

type wsxDialer struct{ ws *wsx.Client }

func (d wsxDialer) Dial(ctx context.Context, url string) (Conn, error) {
	conn, err := d.ws.Dial(ctx, url)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
