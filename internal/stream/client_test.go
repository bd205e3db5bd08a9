package stream

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thelogbook/logbook/internal/config"
	"github.com/thelogbook/logbook/internal/retry"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func fastPolicy() retry.Policy {
	return retry.NewPolicy(config.RetryBackoffFixed, 10*time.Millisecond, 100*time.Millisecond, 10)
}

// slowPolicy keeps a scheduled retry armed long enough to observe it.
func slowPolicy() retry.Policy {
	return retry.NewPolicy(config.RetryBackoffFixed, time.Hour, time.Hour, 10)
}

type wsServer struct {
	*httptest.Server
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns []*websocket.Conn
	dials int
	serve func(n int, conn *websocket.Conn)
}

// newWSServer runs serve(n, conn) for the n-th accepted socket (1-based).
func newWSServer(t *testing.T, serve func(n int, conn *websocket.Conn)) *wsServer {
	t.Helper()
	s := &wsServer{serve: serve}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.mu.Lock()
		s.dials++
		n := s.dials
		s.conns = append(s.conns, conn)
		s.mu.Unlock()
		s.serve(n, conn)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *wsServer) dialCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dials
}

func sendClose(conn *websocket.Conn, code int) {
	msg := websocket.FormatCloseMessage(code, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	_ = conn.Close()
}

func TestEndpointSchemeDerivation(t *testing.T) {
	got, err := Endpoint("http://station.example.org:8080")
	require.NoError(t, err)
	assert.Equal(t, "ws://station.example.org:8080/api/v1/inventory/ws", got)

	got, err = Endpoint("https://station.example.org")
	require.NoError(t, err)
	assert.Equal(t, "wss://station.example.org/api/v1/inventory/ws", got)

	_, err = Endpoint("ftp://station.example.org")
	assert.Error(t, err)
}

func TestOnlyInventoryChangedDispatched(t *testing.T) {
	srv := newWSServer(t, func(n int, conn *websocket.Conn) {
		payload, _ := Marshal("member_changed", "updated", map[string]string{"id": "m-1"})
		_ = conn.WriteMessage(websocket.TextMessage, payload)
		payload, _ = Marshal(EventInventoryChanged, "updated", map[string]string{"id": "i-1"})
		_ = conn.WriteMessage(websocket.TextMessage, payload)
	})

	var mu sync.Mutex
	var actions []string
	client, err := NewClient(srv.URL, "logbook_session=abc", fastPolicy(), func(action string, _ json.RawMessage) {
		mu.Lock()
		actions = append(actions, action)
		mu.Unlock()
	})
	require.NoError(t, err)
	client.Enable()
	defer client.Disable()

	waitFor(t, "dispatch", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(actions) == 1
	})
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"updated"}, actions)
}

func TestMalformedPayloadsAreDropped(t *testing.T) {
	srv := newWSServer(t, func(n int, conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte("{not json"))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`[1,2,3]`))
		good, _ := Marshal(EventInventoryChanged, "created", map[string]string{"id": "i-2"})
		_ = conn.WriteMessage(websocket.TextMessage, good)
	})

	var mu sync.Mutex
	calls := 0
	client, err := NewClient(srv.URL, "", fastPolicy(), func(string, json.RawMessage) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	require.NoError(t, err)
	client.Enable()
	defer client.Disable()

	waitFor(t, "good frame", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 1
	})
	// Nothing further arrives for the malformed frames.
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestTerminalCloseCodesSuppressReconnect(t *testing.T) {
	for _, code := range []int{CloseCodeNormal, CloseCodeAuthFailure, CloseCodeForbidden} {
		srv := newWSServer(t, func(n int, conn *websocket.Conn) {
			sendClose(conn, code)
		})

		client, err := NewClient(srv.URL, "", slowPolicy(), nil)
		require.NoError(t, err)
		client.Enable()

		waitFor(t, "first dial", func() bool { return srv.dialCount() == 1 })
		waitFor(t, "socket closed", func() bool { return !client.Connected() })
		time.Sleep(50 * time.Millisecond)

		assert.False(t, client.RetryPending(), "close code %d must not schedule a retry", code)
		assert.Equal(t, 1, srv.dialCount(), "close code %d must not redial", code)
		client.Disable()
	}
}

func TestAbnormalCloseSchedulesExactlyOneRetry(t *testing.T) {
	srv := newWSServer(t, func(n int, conn *websocket.Conn) {
		// Drop the TCP connection without a close frame.
		_ = conn.Close()
	})

	client, err := NewClient(srv.URL, "", slowPolicy(), nil)
	require.NoError(t, err)
	client.Enable()
	defer client.Disable()

	waitFor(t, "retry armed", client.RetryPending)
	assert.Equal(t, 1, client.RetryCount())
	assert.False(t, client.Connected())

	// Still exactly one timer after a settling period.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, client.RetryCount())
}

func TestRetryCountResetsOnSuccessfulOpen(t *testing.T) {
	stay := make(chan struct{})
	srv := newWSServer(t, func(n int, conn *websocket.Conn) {
		if n == 1 {
			_ = conn.Close() // force one reconnect cycle
			return
		}
		<-stay
	})
	defer close(stay)

	client, err := NewClient(srv.URL, "", fastPolicy(), nil)
	require.NoError(t, err)
	client.Enable()
	defer client.Disable()

	waitFor(t, "reconnect", func() bool { return srv.dialCount() >= 2 && client.Connected() })
	assert.Equal(t, 0, client.RetryCount())
}

func TestDisableCancelsPendingRetry(t *testing.T) {
	srv := newWSServer(t, func(n int, conn *websocket.Conn) {
		_ = conn.Close()
	})

	client, err := NewClient(srv.URL, "", slowPolicy(), nil)
	require.NoError(t, err)
	client.Enable()

	waitFor(t, "retry armed", client.RetryPending)
	client.Disable()

	assert.False(t, client.RetryPending())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, srv.dialCount(), "no dial may happen after Disable")
}

func TestEnableIsIdempotent(t *testing.T) {
	stay := make(chan struct{})
	srv := newWSServer(t, func(n int, conn *websocket.Conn) {
		<-stay
	})
	defer close(stay)

	client, err := NewClient(srv.URL, "", fastPolicy(), nil)
	require.NoError(t, err)
	client.Enable()
	client.Enable()
	defer client.Disable()

	waitFor(t, "connect", client.Connected)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, srv.dialCount())
}
