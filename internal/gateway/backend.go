package gateway

import "context"

// Backend is the pluggable LM transport the Gateway wraps with a single
// retry/backoff/error-taxonomy layer. Every concrete backend translates its
// own native errors into *GatewayError so that layer stays backend-agnostic.
type Backend interface {
	Complete(ctx context.Context, req ChatRequest) (ChatResponse, error)
	Name() string
}
