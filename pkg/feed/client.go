// Package feed is a websocket client for an upstream equipment status
// feed. It keeps one connection alive with ping heartbeats, reconnects
// with capped exponential backoff and re-sends its subscription after
// every reconnect.
package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

// connectionState represents the WebSocket connection status
type connectionState int

const (
	stateDisconnected connectionState = iota
	stateConnecting
	stateConnected
	stateReconnecting
)

func (s connectionState) String() string {
	switch s {
	case stateConnecting:
		return "connecting"
	case stateConnected:
		return "connected"
	case stateReconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}

// Handler receives every text message of the feed.
type Handler func(ctx context.Context, msg []byte)

type Options struct {
	URL   string
	Token string // sent as a Bearer token when set

	DialTimeout          time.Duration
	HeartbeatInterval    time.Duration
	HeartbeatTimeout     time.Duration
	ReconnectInterval    time.Duration
	MaxReconnectInterval time.Duration
}

func (o *Options) setDefaults() {
	if o.DialTimeout <= 0 {
		o.DialTimeout = 10 * time.Second
	}
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = 20 * time.Second
	}
	if o.HeartbeatTimeout <= 0 {
		o.HeartbeatTimeout = 5 * time.Second
	}
	if o.ReconnectInterval <= 0 {
		o.ReconnectInterval = 500 * time.Millisecond
	}
	if o.MaxReconnectInterval <= 0 {
		o.MaxReconnectInterval = 30 * time.Second
	}
}

// Client is the upstream feed WebSocket client
type Client struct {
	opts   Options
	logger *zap.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	state  connectionState
	topics []string
}

func NewClient(opts Options, logger *zap.Logger) *Client {
	opts.setDefaults()
	return &Client{opts: opts, logger: logger, state: stateDisconnected}
}

// IsAlive reports whether a session is currently connected.
func (c *Client) IsAlive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateConnected && c.conn != nil
}

func (c *Client) setState(s connectionState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Run connects and dispatches messages to handler until ctx is done. It
// always returns a non-nil error, ctx.Err() on cancellation.
func (c *Client) Run(ctx context.Context, handler Handler) error {
	backoff := c.opts.ReconnectInterval
	for {
		connected, err := c.session(ctx, handler)
		if ctx.Err() != nil {
			c.setState(stateDisconnected)
			return ctx.Err()
		}
		if connected {
			backoff = c.opts.ReconnectInterval
		}
		c.setState(stateReconnecting)
		c.logger.Warn("feed session ended", zap.Error(err), zap.Duration("retry_in", backoff))

		select {
		case <-ctx.Done():
			c.setState(stateDisconnected)
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, c.opts.MaxReconnectInterval)
	}
}

// session runs one connection. connected reports whether the dial
// succeeded, which resets the backoff.
func (c *Client) session(ctx context.Context, handler Handler) (connected bool, err error) {
	c.setState(stateConnecting)
	conn, err := c.dialServer(ctx)
	if err != nil {
		return false, err
	}
	defer conn.CloseNow()

	sessCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
	}()

	c.mu.Lock()
	c.conn = conn
	c.state = stateConnected
	c.mu.Unlock()
	c.logger.Info("feed connected", zap.String("url", c.opts.URL))

	if err := c.resubscribeAll(sessCtx); err != nil {
		return true, err
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		c.heartbeatLoop(sessCtx, conn)
	}()

	for {
		typ, data, err := conn.Read(sessCtx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return true, errors.New("feed closed by server")
			}
			return true, fmt.Errorf("read: %w", err)
		}
		if typ != websocket.MessageText {
			continue
		}
		handler(sessCtx, data)
	}
}

// dialServer connects to the WebSocket server
func (c *Client) dialServer(ctx context.Context) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.opts.DialTimeout)
	defer cancel()

	var opts *websocket.DialOptions
	if c.opts.Token != "" {
		opts = &websocket.DialOptions{HTTPHeader: http.Header{"Authorization": []string{"Bearer " + c.opts.Token}}}
	}
	conn, _, err := websocket.Dial(dialCtx, c.opts.URL, opts)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.opts.URL, err)
	}
	return conn, nil
}
