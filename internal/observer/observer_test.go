package observer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praetorian-inc/interviewcoach/internal/gateway"
	"github.com/praetorian-inc/interviewcoach/pkg/interview"
)

type fakeBackend struct {
	responses []gateway.ChatResponse
	errs      []error
	calls     int
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Complete(_ context.Context, _ gateway.ChatRequest) (gateway.ChatResponse, error) {
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var resp gateway.ChatResponse
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	return resp, err
}

func TestAnalyzeParsesGibberishResponse(t *testing.T) {
	backend := &fakeBackend{responses: []gateway.ChatResponse{{Content: `<r>{
		"response_type": "off_topic",
		"quality": "wrong",
		"is_factually_correct": false,
		"is_gibberish": true,
		"answered_last_question": true,
		"detected_topics": [],
		"recommendation": "repeat",
		"should_simplify": false,
		"should_increase_difficulty": false,
		"thoughts": "gibberish"
	}</r>`}}}
	gw := gateway.New(backend, 0)
	a := New(gw, Config{Temperature: 0.2, MaxTokens: 512, GenerationRetries: 1})

	state := interview.New(interview.GradeJunior)
	analysis, err := a.Analyze(context.Background(), state, "asdfgh", "Explain indexes.")
	require.NoError(t, err)

	analysis.Normalize()
	assert.True(t, analysis.IsGibberish)
	assert.False(t, analysis.AnsweredLastQuestion, "gibberish must force answered_last_question false even though the LM said true")
}

func TestAnalyzeFallsBackToHeuristicAfterRetriesExhausted(t *testing.T) {
	backend := &fakeBackend{errs: []error{
		assertErr{"bad json"},
		assertErr{"bad json"},
	}}
	gw := gateway.New(backend, 0)
	a := New(gw, Config{Temperature: 0.2, MaxTokens: 512, GenerationRetries: 1})

	state := interview.New(interview.GradeJunior)
	analysis, err := a.Analyze(context.Background(), state, "what is your tech stack?", "Explain GIL.")
	require.NoError(t, err)
	assert.Equal(t, interview.ResponseQuestion, analysis.ResponseType)
	assert.False(t, analysis.AnsweredLastQuestion)
}

func TestAnalyzePropagatesGatewayErrorsUnchanged(t *testing.T) {
	backend := &fakeBackend{errs: []error{&gateway.GatewayError{StatusCode: 401, Body: "bad key"}}}
	gw := gateway.New(backend, 0)
	a := New(gw, Config{Temperature: 0.2, MaxTokens: 512, GenerationRetries: 2})

	state := interview.New(interview.GradeJunior)
	_, err := a.Analyze(context.Background(), state, "hi", "Explain GIL.")
	require.Error(t, err)
	_, isGatewayErr := err.(*gateway.GatewayError)
	assert.True(t, isGatewayErr)
}

func TestResolveAnsweredLastQuestionFallsBackOnMissingBoolean(t *testing.T) {
	raw := map[string]any{"response_type": "excellent"}
	got := resolveAnsweredLastQuestion(raw, interview.ResponseExcellent, false)
	assert.True(t, got, "excellent is not in the unanswered set, so it should default to true")
}

type assertErr struct{ msg string }

func (e assertErr) Error() string { return e.msg }
