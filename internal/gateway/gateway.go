// Package gateway is the single entry point for LM calls: retries, backoff,
// the JSON-mode capability probe, error taxonomy, and a pluggable backend.
package gateway

import (
	"context"
	"time"

	"github.com/praetorian-inc/interviewcoach/pkg/metrics"
	"github.com/praetorian-inc/interviewcoach/pkg/parser"
	"github.com/praetorian-inc/interviewcoach/pkg/retry"
)

// Gateway wraps a Backend with uniform retry/backoff and the JSON-mode
// capability probe. A Gateway belongs to exactly one session; its
// jsonModeSupported flag is read/written only from that session's task (see
// the concurrency model), so it needs no synchronization.
type Gateway struct {
	backend           Backend
	retryCfg          retry.Config
	jsonModeSupported bool
	metrics           *metrics.Metrics
}

// New constructs a Gateway. maxRetries is the number of additional attempts
// beyond the first (so maxRetries=2 means up to 3 total attempts), with
// delay between attempt k and k+1 equal to min(0.5*2^k, 30s).
func New(backend Backend, maxRetries int) *Gateway {
	return &Gateway{
		backend: backend,
		retryCfg: retry.Config{
			MaxAttempts:   maxRetries + 1,
			InitialDelay:  500 * time.Millisecond,
			Multiplier:    2.0,
			MaxDelay:      30 * time.Second,
			Jitter:        0,
			RetryableFunc: IsRetryable,
		},
		jsonModeSupported: true,
	}
}

// SetMetrics attaches a counters sink; nil (the default) disables counting.
func (g *Gateway) SetMetrics(m *metrics.Metrics) { g.metrics = m }

// Complete sends req and returns the raw text content, retrying transport
// failures per the gateway's backoff policy. Non-retryable errors
// (GatewayError with a non-retryable status) fail immediately.
func (g *Gateway) Complete(ctx context.Context, req ChatRequest) (string, error) {
	var resp ChatResponse
	attempt := 0
	err := retry.Do(ctx, g.retryCfg, func() error {
		if g.metrics != nil {
			if attempt == 0 {
				g.metrics.IncGatewayCall()
			} else {
				g.metrics.IncGatewayRetry()
			}
		}
		attempt++
		r, err := g.backend.Complete(ctx, req)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		if g.metrics != nil {
			g.metrics.IncGatewayError()
		}
		return "", err
	}
	if g.metrics != nil && resp.HasUsage {
		g.metrics.AddTokenUsage(resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens)
	}
	return resp.Content, nil
}

// CompleteJSON sends req asking for structured JSON output when the backend
// is believed to support it, and falls back to Response Parser extraction
// from plain text otherwise. On a capability-probe failure (HTTP 400
// indicating an unsupported response_format) the gateway permanently flips
// jsonModeSupported to false for its remaining lifetime and retries once in
// text mode.
func (g *Gateway) CompleteJSON(ctx context.Context, req ChatRequest, schemaName string, schema []byte) (map[string]any, error) {
	if g.jsonModeSupported {
		jsonReq := req
		jsonReq.ResponseFormat = &ResponseFormat{Name: schemaName, Schema: schema}

		text, err := g.Complete(ctx, jsonReq)
		if err == nil {
			return parser.ExtractJSON(text)
		}
		if !IsUnsupportedResponseFormat(err) {
			return nil, err
		}
		g.jsonModeSupported = false
	}

	text, err := g.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	return parser.ExtractJSON(text)
}

// SupportsJSONMode reports the gateway's current capability-probe state,
// primarily for tests and diagnostics.
func (g *Gateway) SupportsJSONMode() bool { return g.jsonModeSupported }

// BackendName returns the name of the wrapped backend.
func (g *Gateway) BackendName() string { return g.backend.Name() }
