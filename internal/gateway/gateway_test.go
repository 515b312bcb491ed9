package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	name      string
	responses []ChatResponse
	errs      []error
	calls     int
	lastReq   ChatRequest
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Complete(_ context.Context, req ChatRequest) (ChatResponse, error) {
	f.lastReq = req
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var resp ChatResponse
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	return resp, err
}

func TestGatewayCompleteReturnsContent(t *testing.T) {
	backend := &fakeBackend{name: "fake", responses: []ChatResponse{{Content: "hello"}}}
	gw := New(backend, 2)

	got, err := gw.Complete(context.Background(), ChatRequest{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
	assert.Equal(t, 1, backend.calls)
}

func TestGatewayRetriesTransportErrorThenSucceeds(t *testing.T) {
	backend := &fakeBackend{
		name: "fake",
		errs: []error{&GatewayError{StatusCode: 0, Body: "connection reset"}},
		responses: []ChatResponse{
			{},
			{Content: "recovered"},
		},
	}
	gw := New(backend, 2)
	gw.retryCfg.InitialDelay = 0
	gw.retryCfg.MaxDelay = 0

	got, err := gw.Complete(context.Background(), ChatRequest{})
	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
	assert.Equal(t, 2, backend.calls)
}

func TestGatewayDoesNotRetryNonRetryableStatus(t *testing.T) {
	backend := &fakeBackend{
		name: "fake",
		errs: []error{&GatewayError{StatusCode: 401, Body: "bad key"}},
	}
	gw := New(backend, 3)

	_, err := gw.Complete(context.Background(), ChatRequest{})
	require.Error(t, err)
	assert.Equal(t, 1, backend.calls)
}

func TestCompleteJSONFallsBackOnUnsupportedResponseFormat(t *testing.T) {
	backend := &fakeBackend{
		name: "fake",
		errs: []error{&GatewayError{StatusCode: 400, Body: "response_format not supported by this model"}, nil},
		responses: []ChatResponse{
			{},
			{Content: `<r>{"ok": true}</r>`},
		},
	}
	gw := New(backend, 0)

	got, err := gw.CompleteJSON(context.Background(), ChatRequest{}, "analysis", []byte(`{"type":"object"}`))
	require.NoError(t, err)
	assert.Equal(t, true, got["ok"])
	assert.False(t, gw.SupportsJSONMode(), "capability flag should flip permanently after the probe failure")
}

func TestCompleteJSONUsesStructuredOutputWhenSupported(t *testing.T) {
	backend := &fakeBackend{
		name:      "fake",
		responses: []ChatResponse{{Content: `{"ok": true}`}},
	}
	gw := New(backend, 0)

	got, err := gw.CompleteJSON(context.Background(), ChatRequest{}, "analysis", []byte(`{"type":"object"}`))
	require.NoError(t, err)
	assert.Equal(t, true, got["ok"])
	require.NotNil(t, backend.lastReq.ResponseFormat)
	assert.Equal(t, "analysis", backend.lastReq.ResponseFormat.Name)
}

func TestGatewayPropagatesNonCapabilityErrors(t *testing.T) {
	backend := &fakeBackend{
		name: "fake",
		errs: []error{&GatewayError{StatusCode: 401, Body: "bad key"}},
	}
	gw := New(backend, 0)

	_, err := gw.CompleteJSON(context.Background(), ChatRequest{}, "analysis", []byte(`{}`))
	require.Error(t, err)
	assert.True(t, gw.SupportsJSONMode(), "capability flag must not flip on unrelated errors")
}
