package metrics

import "time"

// Recorder defines observability hooks for the HTTP surface, the change
// stream and background jobs. Implementations may forward to Prometheus,
// OpenTelemetry, etc. All methods must be safe on the NoopRecorder so
// injection stays optional.
type Recorder interface {
	ObserveRequestDuration(route, method string, status int, d time.Duration)
	SetStreamSubscribers(n int)
	IncStreamBroadcast()
	IncBusPublish(success bool)
	IncReadinessProbe(ready bool)
	IncReminderSent()
	IncAuditAppend(entityType string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRequestDuration(string, string, int, time.Duration) {}
func (NoopRecorder) SetStreamSubscribers(int)                                  {}
func (NoopRecorder) IncStreamBroadcast()                                       {}
func (NoopRecorder) IncBusPublish(bool)                                        {}
func (NoopRecorder) IncReadinessProbe(bool)                                    {}
func (NoopRecorder) IncReminderSent()                                          {}
func (NoopRecorder) IncAuditAppend(string)                                     {}
