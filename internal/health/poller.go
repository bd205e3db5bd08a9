package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/thelogbook/logbook/internal/retry"
)

// ErrNotReady is the terminal error after the poll budget is spent; the
// caller surfaces it and the user retries manually.
var ErrNotReady = fmt.Errorf("services did not become ready")

// Poller repeatedly queries the health endpoint until the service is
// ready. Network errors and failure responses take the same retry path.
type Poller struct {
	url    string
	client *http.Client
	policy retry.Policy
}

// NewPoller creates a poller against baseURL. client may be nil.
func NewPoller(baseURL string, client *http.Client, policy retry.Policy) *Poller {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Poller{url: baseURL + "/api/v1/health", client: client, policy: policy}
}

// Check performs one probe. A reachable endpoint returns the document
// regardless of HTTP status; only transport or decode failures error.
func (p *Poller) Check(ctx context.Context) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build health request: %w", err)
	}
	httpResp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	defer httpResp.Body.Close()

	var resp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode health response: %w", err)
	}
	return &resp, nil
}

// WaitReady polls until the mandatory dependency reports connected,
// the retry budget is exhausted, or ctx is cancelled. The final
// document is returned alongside ErrNotReady so callers can show which
// dependency held things up.
func (p *Poller) WaitReady(ctx context.Context) (*Response, error) {
	var last *Response

	for attempt := 0; ; attempt++ {
		resp, err := p.Check(ctx)
		if err == nil {
			last = resp
			if resp.Ready() {
				slog.Debug("Services ready", "status", resp.Status, "redis", resp.Checks.Redis)
				return resp, nil
			}
		} else {
			slog.Debug("Health probe failed", "attempt", attempt+1, "error", err)
		}

		// attempt is 0-based; the budget counts probes, not delays.
		if p.policy.Exhausted(attempt + 1) {
			return last, ErrNotReady
		}

		delay := p.policy.Delay(attempt)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return last, ctx.Err()
		case <-timer.C:
		}
	}
}
