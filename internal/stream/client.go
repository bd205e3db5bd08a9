package stream

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/thelogbook/logbook/internal/retry"
)

// Handler receives inventory change notifications. It runs on the read
// goroutine, in delivery order.
type Handler func(action string, data json.RawMessage)

// Client maintains a single auto-reconnecting WebSocket subscription to
// the inventory stream.
//
// Reconnect policy: any close other than the terminal codes schedules
// exactly one retry after policy.Delay(retryCount), then increments
// retryCount. A successful open resets retryCount to 0. Disabling the
// client cancels any pending retry and closes a live socket with code
// 1000, which suppresses reconnection.
type Client struct {
	endpoint string
	header   http.Header
	policy   retry.Policy
	handler  Handler
	dialer   *websocket.Dialer

	mu         sync.Mutex
	enabled    bool
	conn       *websocket.Conn
	retryCount int
	retryTimer *time.Timer
	gen        int // invalidates stale read loops and timers
}

// NewClient creates a stream client. The session cookie travels in the
// handshake header; payloads and the URL stay credential-free.
func NewClient(baseURL, sessionCookie string, policy retry.Policy, handler Handler) (*Client, error) {
	endpoint, err := Endpoint(baseURL)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	if sessionCookie != "" {
		header.Set("Cookie", sessionCookie)
	}
	return &Client{
		endpoint: endpoint,
		header:   header,
		policy:   policy,
		handler:  handler,
		dialer:   &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}, nil
}

// Enable starts the client. Calling Enable on an enabled client is a
// no-op; there is never more than one live socket per client.
func (c *Client) Enable() {
	c.mu.Lock()
	if c.enabled {
		c.mu.Unlock()
		return
	}
	c.enabled = true
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	go c.connect(gen)
}

// Disable stops the client: pending retries are cancelled and a live
// socket is closed with the normal code so the server sees a clean
// shutdown.
func (c *Client) Disable() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.enabled = false
	c.gen++
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	if c.conn != nil {
		msg := websocket.FormatCloseMessage(CloseCodeNormal, "client disabled")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_ = c.conn.Close()
		c.conn = nil
	}
}

// Connected reports whether a socket is currently open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// RetryCount returns the current reconnect attempt counter.
func (c *Client) RetryCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retryCount
}

// RetryPending reports whether a reconnect timer is armed.
func (c *Client) RetryPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retryTimer != nil
}

func (c *Client) connect(gen int) {
	c.mu.Lock()
	if !c.enabled || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.retryTimer = nil
	endpoint, header := c.endpoint, c.header
	c.mu.Unlock()

	conn, resp, err := c.dialer.Dial(endpoint, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		slog.Debug("Stream dial failed", "endpoint", endpoint, "error", err)
		c.scheduleRetry(gen)
		return
	}

	c.mu.Lock()
	if !c.enabled || gen != c.gen {
		c.mu.Unlock()
		_ = conn.Close()
		return
	}
	c.conn = conn
	c.retryCount = 0 // successful open resets the backoff schedule
	c.mu.Unlock()

	slog.Debug("Stream connected", "endpoint", endpoint)
	c.readLoop(conn, gen)
}

// readLoop consumes frames until the socket dies, then decides whether
// the close was terminal.
func (c *Client) readLoop(conn *websocket.Conn, gen int) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			if c.conn == conn {
				c.conn = nil
			}
			stale := gen != c.gen
			c.mu.Unlock()
			_ = conn.Close()

			if stale || isTerminalClose(err) {
				slog.Debug("Stream closed, not reconnecting", "error", err)
				return
			}
			c.scheduleRetry(gen)
			return
		}
		c.dispatch(payload)
	}
}

// dispatch parses one frame. Malformed payloads are dropped without
// surfacing an error; that is the stream's contract, not an oversight.
func (c *Client) dispatch(payload []byte) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		slog.Debug("Dropping malformed stream payload", "bytes", len(payload))
		return
	}
	if env.Type != EventInventoryChanged {
		return
	}
	if c.handler != nil {
		c.handler(env.Action, env.Data)
	}
}

func (c *Client) scheduleRetry(gen int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled || gen != c.gen || c.retryTimer != nil {
		return
	}
	delay := c.policy.Delay(c.retryCount)
	c.retryCount++
	slog.Debug("Stream reconnect scheduled", "delay", delay, "retry_count", c.retryCount)
	c.retryTimer = time.AfterFunc(delay, func() { c.connect(gen) })
}

// isTerminalClose reports whether the connection ended in a way that
// forbids reconnection: a clean close or an authentication rejection.
func isTerminalClose(err error) bool {
	return websocket.IsCloseError(err, CloseCodeNormal, CloseCodeAuthFailure, CloseCodeForbidden)
}
