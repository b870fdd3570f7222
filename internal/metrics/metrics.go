package metrics

import (
	"net/http"
	"time"
)

// Metrics interface for dependency injection
type Metrics interface {
	RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration)
	RecordParse(category, severity string)
	RecordPatternOp(operation, status string)
	RecordDBQuery(operation, status string)
	SetDBConnectionsActive(count float64)
	Handler() http.Handler
}

// NoOpMetrics provides a no-op implementation
type NoOpMetrics struct{}

func (m *NoOpMetrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
}
func (m *NoOpMetrics) RecordParse(category, severity string)  {}
func (m *NoOpMetrics) RecordPatternOp(operation, status string) {}
func (m *NoOpMetrics) RecordDBQuery(operation, status string)   {}
func (m *NoOpMetrics) SetDBConnectionsActive(count float64)     {}
func (m *NoOpMetrics) Handler() http.Handler                    { return http.NotFoundHandler() }

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

// RecordParse records a classifier invocation by resulting category and severity
func RecordParse(category, severity string) {
	globalMetrics.RecordParse(category, severity)
}

// RecordPatternOp records a pattern-store operation (learn, defaults, suggestions)
func RecordPatternOp(operation, status string) {
	globalMetrics.RecordPatternOp(operation, status)
}

// RecordDBQuery records database query metrics
func RecordDBQuery(operation, status string) {
	globalMetrics.RecordDBQuery(operation, status)
}

// SetDBConnectionsActive sets the number of active database connections
func SetDBConnectionsActive(count float64) {
	globalMetrics.SetDBConnectionsActive(count)
}
