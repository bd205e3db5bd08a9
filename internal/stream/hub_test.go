package stream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, url string, cookie string) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	if cookie != "" {
		header.Set("Cookie", cookie)
	}
	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http"), header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHubBroadcastReachesSubscribers(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dialHub(t, srv.URL, "")
	waitFor(t, "registration", func() bool { return hub.SubscriberCount() == 1 })

	payload, err := Marshal(EventInventoryChanged, "created", map[string]string{"id": "i-1"})
	require.NoError(t, err)
	hub.Broadcast(payload)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), string(data))
}

func TestHubRejectsUnauthenticatedWithAuthCode(t *testing.T) {
	hub := NewHub(func(r *http.Request) bool {
		_, err := r.Cookie("logbook_session")
		return err == nil
	})
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dialHub(t, srv.URL, "")
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, CloseCodeAuthFailure), "expected close 4001, got %v", err)
	assert.Equal(t, 0, hub.SubscriberCount())
}

func TestHubAcceptsSessionCookie(t *testing.T) {
	hub := NewHub(func(r *http.Request) bool {
		c, err := r.Cookie("logbook_session")
		return err == nil && c.Value != ""
	})
	srv := httptest.NewServer(hub)
	defer srv.Close()

	dialHub(t, srv.URL, "logbook_session=tok-1")
	waitFor(t, "registration", func() bool { return hub.SubscriberCount() == 1 })
}

func TestHubOriginPolicy(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	// Same-origin browser handshake.
	header := http.Header{}
	header.Set("Origin", srv.URL)
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	_ = conn.Close()

	// Cross-origin handshake is refused before the upgrade.
	header = http.Header{}
	header.Set("Origin", "http://evil.example")
	_, resp, err = websocket.DefaultDialer.Dial(wsURL, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestHubShutdownClosesCleanly(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dialHub(t, srv.URL, "")
	waitFor(t, "registration", func() bool { return hub.SubscriberCount() == 1 })

	hub.Shutdown()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, CloseCodeNormal), "expected close 1000, got %v", err)
}

func TestHubDropsDeadSubscribers(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dialHub(t, srv.URL, "")
	waitFor(t, "registration", func() bool { return hub.SubscriberCount() == 1 })
	_ = conn.Close()

	waitFor(t, "deregistration", func() bool { return hub.SubscriberCount() == 0 })
}
