// Package health produces and consumes the service health document.
//
// The wire format is fixed:
//
//	{"version":"...","status":"healthy|degraded|unhealthy",
//	 "checks":{"database":"connected|disconnected|<error>","redis":...}}
//
// The database check is mandatory for readiness; the redis check is
// advisory and never gates anything.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/thelogbook/logbook/internal/version"
)

// Status represents the overall health of the service.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Check values for individual dependencies. Anything other than these
// two constants is an error string describing the failure.
const (
	CheckConnected    = "connected"
	CheckDisconnected = "disconnected"
)

// Checks holds per-dependency connectivity results.
type Checks struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// Response is the complete health document.
type Response struct {
	Version string `json:"version"`
	Status  Status `json:"status"`
	Checks  Checks `json:"checks"`
}

// Ready reports whether the document satisfies the readiness contract:
// the database must be connected; redis never gates readiness.
func (r *Response) Ready() bool {
	return r != nil && r.Checks.Database == CheckConnected
}

// DatabasePinger is satisfied by *sql.DB.
type DatabasePinger interface {
	PingContext(ctx context.Context) error
}

// CacheChecker reports cache connectivity. The cache package provides
// one; deployments without redis report disconnected.
type CacheChecker interface {
	Healthy(ctx context.Context) bool
}

// Checker assembles the health document from live dependencies.
type Checker struct {
	db    DatabasePinger
	cache CacheChecker
}

// NewChecker creates a health checker. cache may be nil.
func NewChecker(db DatabasePinger, cache CacheChecker) *Checker {
	return &Checker{db: db, cache: cache}
}

// Check probes every dependency and derives the overall status: a dead
// database makes the service unhealthy, a dead cache only degrades it.
func (c *Checker) Check(ctx context.Context) *Response {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	resp := &Response{Version: version.Version, Status: StatusHealthy}

	if c.db == nil {
		resp.Checks.Database = CheckDisconnected
	} else if err := c.db.PingContext(ctx); err != nil {
		resp.Checks.Database = err.Error()
	} else {
		resp.Checks.Database = CheckConnected
	}

	if c.cache != nil && c.cache.Healthy(ctx) {
		resp.Checks.Redis = CheckConnected
	} else {
		resp.Checks.Redis = CheckDisconnected
	}

	switch {
	case resp.Checks.Database != CheckConnected:
		resp.Status = StatusUnhealthy
	case resp.Checks.Redis != CheckConnected:
		resp.Status = StatusDegraded
	}
	return resp
}

// Handler serves the health document. Healthy and degraded both answer
// 200; only an unhealthy service answers 503.
func (c *Checker) Handler(w http.ResponseWriter, r *http.Request) {
	resp := c.Check(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	if resp.Status == StatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(resp)
}
