package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopRecorderIsSafe(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveRequestDuration("/api/v1/members", "GET", 200, time.Millisecond)
	r.SetStreamSubscribers(3)
	r.IncStreamBroadcast()
	r.IncBusPublish(true)
	r.IncReadinessProbe(false)
	r.IncReminderSent()
	r.IncAuditAppend("inventory_item")
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var p *PrometheusRecorder
	p.ObserveRequestDuration("/", "GET", 200, time.Millisecond)
	p.SetStreamSubscribers(0)
	p.IncStreamBroadcast()
	p.IncBusPublish(false)
	p.IncReadinessProbe(true)
	p.IncReminderSent()
	p.IncAuditAppend("minutes")
}

func TestPrometheusRecorderExposesMetrics(t *testing.T) {
	reg := prom.NewRegistry()
	p := NewPrometheusRecorder(reg)

	p.ObserveRequestDuration("/api/v1/inventory", "POST", 201, 5*time.Millisecond)
	p.SetStreamSubscribers(2)
	p.IncStreamBroadcast()
	p.IncBusPublish(true)
	p.IncReadinessProbe(true)
	p.IncReminderSent()
	p.IncAuditAppend("inventory_item")

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, name := range []string{
		"logbook_request_duration_seconds",
		"logbook_stream_subscribers",
		"logbook_stream_broadcasts_total",
		"logbook_bus_publishes_total",
		"logbook_readiness_probes_total",
		"logbook_event_reminders_sent_total",
		"logbook_audit_appends_total",
	} {
		assert.True(t, strings.Contains(body, name), "missing metric %s", name)
	}
}
