// Package stream implements the inventory change stream: the WebSocket
// hub the server exposes at /api/v1/inventory/ws and the reconnecting
// client that consumes it.
package stream

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// EventInventoryChanged is the only envelope type the client acts on.
const EventInventoryChanged = "inventory_changed"

// Application close codes with defined meaning. 1000 and both auth codes
// are terminal: the client must not reconnect after seeing them.
const (
	CloseCodeNormal      = 1000
	CloseCodeAuthFailure = 4001
	CloseCodeForbidden   = 4003
)

// Envelope is the tagged wire format for stream messages.
type Envelope struct {
	Type   string          `json:"type"`
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Marshal renders an envelope for the bus and the socket.
func Marshal(eventType, action string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope data: %w", err)
	}
	return json.Marshal(Envelope{Type: eventType, Action: action, Data: raw})
}

// Endpoint derives the WebSocket URL for the inventory stream from the
// API base URL: http becomes ws, https becomes wss. Credentials ride on
// the session cookie during the handshake, never in the URL.
func Endpoint(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
		// already a socket scheme
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = "/api/v1/inventory/ws"
	u.RawQuery = ""
	return u.String(), nil
}
