// Package metrics provides observability hooks for the HTTP surface,
// the inventory change stream and background jobs.
//
// The package implements the Null Object pattern: components receive a
// Recorder through dependency injection and default to NoopRecorder, so
// metrics stay optional without nil checks at every call site. The
// Prometheus recorder registers everything under the "logbook"
// namespace and is exposed at /metrics.
package metrics
