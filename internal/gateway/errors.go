package gateway

import (
	"fmt"
	"strings"
)

// GatewayError is the gateway's error taxonomy for network/HTTP/shape
// failures, distinct from pkg/parser.ParseError which covers content shape.
// StatusCode is 0 for transport-level failures (timeout, connection reset)
// that never reached an HTTP response.
type GatewayError struct {
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	body := e.Body
	if len(body) > 500 {
		body = body[:500]
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("gateway: transport error: %s", body)
	}
	return fmt.Sprintf("gateway: HTTP %d: %s", e.StatusCode, body)
}

// retryableStatus is the set of HTTP statuses that trigger a gateway retry.
var retryableStatus = map[int]bool{
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// IsRetryable reports whether err should trigger another gateway attempt:
// transport failures (StatusCode == 0) and the retryable HTTP status set.
func IsRetryable(err error) bool {
	gerr, ok := err.(*GatewayError)
	if !ok {
		return false
	}
	return gerr.StatusCode == 0 || retryableStatus[gerr.StatusCode]
}

// IsUnsupportedResponseFormat reports whether err is the specific HTTP 400
// the capability probe looks for: a response_format the backend rejects.
func IsUnsupportedResponseFormat(err error) bool {
	gerr, ok := err.(*GatewayError)
	if !ok || gerr.StatusCode != 400 {
		return false
	}
	lower := strings.ToLower(gerr.Body)
	return strings.Contains(lower, "response_format") || strings.Contains(lower, "json_schema")
}
