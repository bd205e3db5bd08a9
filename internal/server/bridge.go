package server

import (
	"context"
	"log/slog"

	"github.com/thelogbook/logbook/internal/bus"
	"github.com/thelogbook/logbook/internal/metrics"
	"github.com/thelogbook/logbook/internal/stream"
)

// Bridge forwards change envelopes from the bus to the stream hub, so
// every server instance fans out changes regardless of which instance
// persisted them.
type Bridge struct {
	conn     *bus.Conn
	hub      *stream.Hub
	recorder metrics.Recorder
	unsub    func()
}

// NewBridge creates a bus-to-hub bridge.
func NewBridge(conn *bus.Conn, hub *stream.Hub, recorder metrics.Recorder) *Bridge {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Bridge{conn: conn, hub: hub, recorder: recorder}
}

// Start subscribes to the change subject.
func (b *Bridge) Start(ctx context.Context) error {
	unsub, err := b.conn.Subscribe(func(data []byte) {
		b.hub.Broadcast(data)
		b.recorder.IncStreamBroadcast()
		b.recorder.SetStreamSubscribers(b.hub.SubscriberCount())
	})
	if err != nil {
		return err
	}
	b.unsub = unsub
	slog.Info("Change stream bridge started")
	return nil
}

// Stop unsubscribes from the bus.
func (b *Bridge) Stop() {
	if b.unsub != nil {
		b.unsub()
	}
}
