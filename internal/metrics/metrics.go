package metrics

import (
	"net/http"
	"time"
)

// Metrics interface for dependency injection
type Metrics interface {
	RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration)
	RecordFeedFetch(source, status string, attempts int)
	RecordAlertProcessed(source, status string)
	RecordSyncRun(agency string, duration time.Duration)
	RecordGapAnalysis(analyzer, outcome string)
	SetDBConnectionsActive(count float64)
	RecordDBQuery(operation, status string)
	Handler() http.Handler
}

// NoOpMetrics provides a no-op implementation
type NoOpMetrics struct{}

func (m *NoOpMetrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
}
func (m *NoOpMetrics) RecordFeedFetch(source, status string, attempts int)  {}
func (m *NoOpMetrics) RecordAlertProcessed(source, status string)           {}
func (m *NoOpMetrics) RecordSyncRun(agency string, duration time.Duration)  {}
func (m *NoOpMetrics) RecordGapAnalysis(analyzer, outcome string)           {}
func (m *NoOpMetrics) SetDBConnectionsActive(count float64)                 {}
func (m *NoOpMetrics) RecordDBQuery(operation, status string)               {}
func (m *NoOpMetrics) Handler() http.Handler                                { return http.NotFoundHandler() }

// Global metrics instance
var globalMetrics Metrics = &NoOpMetrics{}

// Init initializes metrics (no-op for now, can be extended with Prometheus)
func Init() {
	// For now, keep using no-op metrics
}

// Handler returns the metrics handler
func Handler() http.Handler {
	return globalMetrics.Handler()
}

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	globalMetrics.RecordHTTPRequest(method, endpoint, statusCode, duration)
}

// RecordFeedFetch records a feed fetch outcome and attempt count
func RecordFeedFetch(source, status string, attempts int) {
	globalMetrics.RecordFeedFetch(source, status, attempts)
}

// RecordAlertProcessed records alert processing metrics
func RecordAlertProcessed(source, status string) {
	globalMetrics.RecordAlertProcessed(source, status)
}

// RecordSyncRun records a sync invocation duration per agency
func RecordSyncRun(agency string, duration time.Duration) {
	globalMetrics.RecordSyncRun(agency, duration)
}

// RecordGapAnalysis records a gap-detector analyzer outcome
func RecordGapAnalysis(analyzer, outcome string) {
	globalMetrics.RecordGapAnalysis(analyzer, outcome)
}

// SetDBConnectionsActive sets the number of active database connections
func SetDBConnectionsActive(count float64) {
	globalMetrics.SetDBConnectionsActive(count)
}

// RecordDBQuery records database query metrics
func RecordDBQuery(operation, status string) {
	globalMetrics.RecordDBQuery(operation, status)
}
