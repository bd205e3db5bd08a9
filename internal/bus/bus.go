// Package bus wraps the NATS connection used as the internal change bus.
package bus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Publisher is the producing side of the bus.
type Publisher interface {
	Publish(ctx context.Context, data []byte) error
}

// Conn manages one NATS connection bound to a single subject.
type Conn struct {
	nc      *nats.Conn
	subject string
}

// Connect establishes the NATS connection. The bus reconnects on its own;
// a failed initial dial is an error because the service cannot announce
// inventory changes without it.
func Connect(url, subject string) (*Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("logbook"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	slog.Info("Change bus connected", "url", url, "subject", subject)
	return &Conn{nc: nc, subject: subject}, nil
}

// Publish sends one message on the bus subject.
func (c *Conn) Publish(_ context.Context, data []byte) error {
	if err := c.nc.Publish(c.subject, data); err != nil {
		return fmt.Errorf("failed to publish change: %w", err)
	}
	return nil
}

// Subscribe registers a handler for bus messages and returns an
// unsubscribe function. Handlers run on the NATS delivery goroutine in
// arrival order.
func (c *Conn) Subscribe(handler func(data []byte)) (func(), error) {
	sub, err := c.nc.Subscribe(c.subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", c.subject, err)
	}
	return func() {
		if err := sub.Unsubscribe(); err != nil {
			slog.Warn("Bus unsubscribe failed", "error", err)
		}
	}, nil
}

// Healthy reports whether the connection is currently up.
func (c *Conn) Healthy() bool {
	return c.nc != nil && c.nc.IsConnected()
}

// Close drains and closes the connection.
func (c *Conn) Close() {
	if c.nc != nil {
		c.nc.Close()
	}
}
