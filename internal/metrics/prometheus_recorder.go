package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once              sync.Once
	requestDuration   *prom.HistogramVec
	streamSubscribers prom.Gauge
	streamBroadcasts  prom.Counter
	busPublishes      *prom.CounterVec
	readinessProbes   *prom.CounterVec
	remindersSent     prom.Counter
	auditAppends      *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.requestDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "logbook",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   prom.DefBuckets,
		}, []string{"route", "method", "status"})
		pr.streamSubscribers = prom.NewGauge(prom.GaugeOpts{
			Namespace: "logbook",
			Name:      "stream_subscribers",
			Help:      "Connected inventory stream subscribers",
		})
		pr.streamBroadcasts = prom.NewCounter(prom.CounterOpts{
			Namespace: "logbook",
			Name:      "stream_broadcasts_total",
			Help:      "Inventory change envelopes fanned out to subscribers",
		})
		pr.busPublishes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "logbook",
			Name:      "bus_publishes_total",
			Help:      "Change bus publish attempts by result",
		}, []string{"result"})
		pr.readinessProbes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "logbook",
			Name:      "readiness_probes_total",
			Help:      "Health endpoint probes by readiness verdict",
		}, []string{"ready"})
		pr.remindersSent = prom.NewCounter(prom.CounterOpts{
			Namespace: "logbook",
			Name:      "event_reminders_sent_total",
			Help:      "Event reminders delivered by the sweep",
		})
		pr.auditAppends = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "logbook",
			Name:      "audit_appends_total",
			Help:      "Audit trail appends by entity type",
		}, []string{"entity_type"})
		reg.MustRegister(pr.requestDuration, pr.streamSubscribers, pr.streamBroadcasts,
			pr.busPublishes, pr.readinessProbes, pr.remindersSent, pr.auditAppends)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveRequestDuration(route, method string, status int, d time.Duration) {
	if p == nil || p.requestDuration == nil {
		return
	}
	p.requestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetStreamSubscribers(n int) {
	if p == nil || p.streamSubscribers == nil {
		return
	}
	p.streamSubscribers.Set(float64(n))
}

func (p *PrometheusRecorder) IncStreamBroadcast() {
	if p == nil || p.streamBroadcasts == nil {
		return
	}
	p.streamBroadcasts.Inc()
}

func (p *PrometheusRecorder) IncBusPublish(success bool) {
	if p == nil || p.busPublishes == nil {
		return
	}
	p.busPublishes.WithLabelValues(resultLabel(success)).Inc()
}

func (p *PrometheusRecorder) IncReadinessProbe(ready bool) {
	if p == nil || p.readinessProbes == nil {
		return
	}
	p.readinessProbes.WithLabelValues(strconv.FormatBool(ready)).Inc()
}

func (p *PrometheusRecorder) IncReminderSent() {
	if p == nil || p.remindersSent == nil {
		return
	}
	p.remindersSent.Inc()
}

func (p *PrometheusRecorder) IncAuditAppend(entityType string) {
	if p == nil || p.auditAppends == nil {
		return
	}
	p.auditAppends.WithLabelValues(entityType).Inc()
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// HTTPHandler returns an http.Handler serving the registry's metrics.
func HTTPHandler(reg *prom.Registry) http.Handler {
	if reg == nil {
		reg = prom.DefaultRegisterer.(*prom.Registry)
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
