package metrics

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPrometheusExporter_Export(t *testing.T) {
	m := &Metrics{
		SessionsStarted:      10,
		SessionsFinished:     8,
		TurnsProcessed:       120,
		GatewayCallsTotal:    500,
		GatewayRetriesTotal:  30,
		GatewayErrorsTotal:   75,
		StopCommandsObserved: 3,
	}

	exporter := NewPrometheusExporter(m)
	output := exporter.Export()

	expectedLines := []string{
		"interviewcoach_sessions_started_total 10",
		"interviewcoach_sessions_finished_total 8",
		"interviewcoach_turns_processed_total 120",
		"interviewcoach_gateway_calls_total 500",
		"interviewcoach_gateway_retries_total 30",
		"interviewcoach_gateway_errors_total 75",
		"interviewcoach_gateway_error_rate 0.15",
		"interviewcoach_stop_commands_observed_total 3",
	}

	for _, expected := range expectedLines {
		if !strings.Contains(output, expected) {
			t.Errorf("Export() missing expected line: %s\nGot:\n%s", expected, output)
		}
	}
}

func TestPrometheusExporter_Handler(t *testing.T) {
	m := &Metrics{GatewayCallsTotal: 200, GatewayErrorsTotal: 30}
	exporter := NewPrometheusExporter(m)

	handler := exporter.Handler()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Handler() status = %d, want %d", rec.Code, http.StatusOK)
	}

	contentType := rec.Header().Get("Content-Type")
	expectedContentType := "text/plain; version=0.0.4; charset=utf-8"
	if contentType != expectedContentType {
		t.Errorf("Handler() Content-Type = %s, want %s", contentType, expectedContentType)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "interviewcoach_gateway_calls_total 200") {
		t.Errorf("Handler() body missing expected metric:\nGot:\n%s", body)
	}
	if !strings.Contains(body, "interviewcoach_gateway_error_rate") {
		t.Errorf("Handler() body missing error rate metric:\nGot:\n%s", body)
	}
}

func TestPrometheusExporter_GatewayErrorRate(t *testing.T) {
	tests := []struct {
		name     string
		calls    int64
		errors   int64
		wantRate float64
	}{
		{name: "15% error rate", calls: 100, errors: 15, wantRate: 0.15},
		{name: "zero calls", calls: 0, errors: 0, wantRate: 0.0},
		{name: "100% errors", calls: 50, errors: 50, wantRate: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Metrics{GatewayCallsTotal: tt.calls, GatewayErrorsTotal: tt.errors}
			exporter := NewPrometheusExporter(m)
			output := exporter.Export()

			rateStr := formatFloatTest(tt.wantRate)
			expectedLine := "interviewcoach_gateway_error_rate " + rateStr
			if !strings.Contains(output, expectedLine) {
				t.Errorf("Export() error rate = want %s in output:\n%s", expectedLine, output)
			}
		})
	}
}

func TestMetrics_AtomicIncrements(t *testing.T) {
	m := &Metrics{}
	m.IncSessionsStarted()
	m.IncSessionsFinished()
	m.IncTurnsProcessed()
	m.IncGatewayCall()
	m.IncGatewayRetry()
	m.IncGatewayError()
	m.IncStopCommandObserved()

	if m.SessionsStarted != 1 || m.SessionsFinished != 1 || m.TurnsProcessed != 1 {
		t.Errorf("session/turn counters not incremented: %+v", m)
	}
	if m.GatewayCallsTotal != 1 || m.GatewayRetriesTotal != 1 || m.GatewayErrorsTotal != 1 {
		t.Errorf("gateway counters not incremented: %+v", m)
	}
	if m.StopCommandsObserved != 1 {
		t.Errorf("stop command counter not incremented: %+v", m)
	}
}

func TestMetrics_AddTokenUsage(t *testing.T) {
	m := &Metrics{}
	m.AddTokenUsage(100, 50, 150)
	m.AddTokenUsage(20, 10, 30)

	snap := m.TokenSnapshot()
	if snap.PromptTokens != 120 || snap.CompletionTokens != 60 || snap.TotalTokens != 180 {
		t.Errorf("TokenSnapshot() = %+v, want {120 60 180}", snap)
	}

	exporter := NewPrometheusExporter(m)
	output := exporter.Export()
	for _, expected := range []string{
		"interviewcoach_prompt_tokens_total 120",
		"interviewcoach_completion_tokens_total 60",
		"interviewcoach_tokens_total 180",
	} {
		if !strings.Contains(output, expected) {
			t.Errorf("Export() missing expected line: %s\nGot:\n%s", expected, output)
		}
	}
}

func formatFloatTest(f float64) string {
	if f == 0.0 {
		return "0"
	}
	s := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", f), "0"), ".")
	return s
}
