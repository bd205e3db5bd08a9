package stream

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Authorizer decides whether an upgrade request carries a valid session.
// The server wires this to the cookie session manager.
type Authorizer func(r *http.Request) bool

// Hub fans inventory change messages out to every connected socket.
type Hub struct {
	authorize Authorizer
	upgrader  websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewHub creates a hub guarded by the given authorizer.
func NewHub(authorize Authorizer) *Hub {
	return &Hub{
		authorize: authorize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Same-origin handshakes only; the intranet has no
			// cross-origin consumers.
			CheckOrigin: sameOrigin,
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// sameOrigin accepts handshakes with no Origin header (non-browser
// clients send none) and browser handshakes from the intranet's own
// host. Everything else is refused before the upgrade.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// ServeHTTP upgrades the request and registers the socket. Requests
// without a valid session are upgraded and immediately closed with the
// application auth code so clients can tell "denied" from "flaky".
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	authorized := h.authorize == nil || h.authorize(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Stream upgrade failed", "error", err)
		return
	}

	if !authorized {
		msg := websocket.FormatCloseMessage(CloseCodeAuthFailure, "authentication required")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_ = conn.Close()
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	count := len(h.conns)
	h.mu.Unlock()
	slog.Debug("Stream subscriber connected", "subscribers", count)

	go h.readLoop(conn)
}

// readLoop discards inbound frames; the stream is one-way. Its real job
// is detecting the close so the socket gets unregistered.
func (h *Hub) readLoop(conn *websocket.Conn) {
	defer h.drop(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast writes one message to every registered socket. Sockets that
// fail the write are dropped; their clients will reconnect on their own.
func (h *Hub) Broadcast(data []byte) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		_ = c.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			slog.Debug("Dropping stream subscriber after failed write", "error", err)
			h.drop(c)
		}
	}
}

// SubscriberCount returns the number of live sockets.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Shutdown closes every socket with the normal code.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.conns = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()

	msg := websocket.FormatCloseMessage(CloseCodeNormal, "server shutting down")
	for _, c := range conns {
		_ = c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_ = c.Close()
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	_ = conn.Close()
}
