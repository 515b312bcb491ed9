// Package metrics tracks process-wide interview session counters and
// exports them in Prometheus text format. It is a read-only, fire-and-forget
// surface: core session logic increments counters and never branches on
// their values.
package metrics

import (
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
)

// Metrics tracks interview session execution statistics.
type Metrics struct {
	SessionsStarted  int64
	SessionsFinished int64
	TurnsProcessed   int64

	GatewayCallsTotal   int64
	GatewayRetriesTotal int64
	GatewayErrorsTotal  int64

	StopCommandsObserved int64

	PromptTokensTotal     int64
	CompletionTokensTotal int64
	TotalTokensTotal      int64
}

// TokenMetrics is a point-in-time snapshot of accumulated LM token usage,
// suitable for embedding in a session's detailed log.
type TokenMetrics struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// AddTokenUsage accumulates one completion's token usage. Backends that
// don't report usage simply never call this, leaving the totals at zero.
func (m *Metrics) AddTokenUsage(prompt, completion, total int) {
	atomic.AddInt64(&m.PromptTokensTotal, int64(prompt))
	atomic.AddInt64(&m.CompletionTokensTotal, int64(completion))
	atomic.AddInt64(&m.TotalTokensTotal, int64(total))
}

// TokenSnapshot returns the current accumulated token usage.
func (m *Metrics) TokenSnapshot() TokenMetrics {
	return TokenMetrics{
		PromptTokens:     atomic.LoadInt64(&m.PromptTokensTotal),
		CompletionTokens: atomic.LoadInt64(&m.CompletionTokensTotal),
		TotalTokens:      atomic.LoadInt64(&m.TotalTokensTotal),
	}
}

// IncSessionsStarted records a new session.
func (m *Metrics) IncSessionsStarted() { atomic.AddInt64(&m.SessionsStarted, 1) }

// IncSessionsFinished records a session reaching Finish().
func (m *Metrics) IncSessionsFinished() { atomic.AddInt64(&m.SessionsFinished, 1) }

// IncTurnsProcessed records one turn of process().
func (m *Metrics) IncTurnsProcessed() { atomic.AddInt64(&m.TurnsProcessed, 1) }

// IncGatewayCall records one LM Gateway call attempt.
func (m *Metrics) IncGatewayCall() { atomic.AddInt64(&m.GatewayCallsTotal, 1) }

// IncGatewayRetry records one gateway-level retry.
func (m *Metrics) IncGatewayRetry() { atomic.AddInt64(&m.GatewayRetriesTotal, 1) }

// IncGatewayError records one non-retryable (or retries-exhausted) gateway
// error.
func (m *Metrics) IncGatewayError() { atomic.AddInt64(&m.GatewayErrorsTotal, 1) }

// IncStopCommandObserved records a candidate stop-command.
func (m *Metrics) IncStopCommandObserved() { atomic.AddInt64(&m.StopCommandsObserved, 1) }

// PrometheusExporter exports metrics in Prometheus text format.
type PrometheusExporter struct {
	metrics *Metrics
}

// NewPrometheusExporter creates a new Prometheus exporter.
func NewPrometheusExporter(m *Metrics) *PrometheusExporter {
	return &PrometheusExporter{metrics: m}
}

// Export returns metrics in Prometheus text format.
func (e *PrometheusExporter) Export() string {
	var b strings.Builder

	sessionsStarted := atomic.LoadInt64(&e.metrics.SessionsStarted)
	sessionsFinished := atomic.LoadInt64(&e.metrics.SessionsFinished)
	turnsProcessed := atomic.LoadInt64(&e.metrics.TurnsProcessed)
	gatewayCalls := atomic.LoadInt64(&e.metrics.GatewayCallsTotal)
	gatewayRetries := atomic.LoadInt64(&e.metrics.GatewayRetriesTotal)
	gatewayErrors := atomic.LoadInt64(&e.metrics.GatewayErrorsTotal)
	stopCommands := atomic.LoadInt64(&e.metrics.StopCommandsObserved)

	fmt.Fprintf(&b, "interviewcoach_sessions_started_total %d\n", sessionsStarted)
	fmt.Fprintf(&b, "interviewcoach_sessions_finished_total %d\n", sessionsFinished)
	fmt.Fprintf(&b, "interviewcoach_turns_processed_total %d\n", turnsProcessed)

	fmt.Fprintf(&b, "interviewcoach_gateway_calls_total %d\n", gatewayCalls)
	fmt.Fprintf(&b, "interviewcoach_gateway_retries_total %d\n", gatewayRetries)
	fmt.Fprintf(&b, "interviewcoach_gateway_errors_total %d\n", gatewayErrors)

	var errorRate float64
	if gatewayCalls > 0 {
		errorRate = float64(gatewayErrors) / float64(gatewayCalls)
	}
	fmt.Fprintf(&b, "interviewcoach_gateway_error_rate %s\n", formatFloat(errorRate))

	fmt.Fprintf(&b, "interviewcoach_stop_commands_observed_total %d\n", stopCommands)

	tok := e.metrics.TokenSnapshot()
	fmt.Fprintf(&b, "interviewcoach_prompt_tokens_total %d\n", tok.PromptTokens)
	fmt.Fprintf(&b, "interviewcoach_completion_tokens_total %d\n", tok.CompletionTokens)
	fmt.Fprintf(&b, "interviewcoach_tokens_total %d\n", tok.TotalTokens)

	return b.String()
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (e *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, e.Export())
	})
}

// formatFloat formats a float64 for Prometheus (removes trailing zeros).
func formatFloat(f float64) string {
	if f == 0.0 {
		return "0"
	}
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
