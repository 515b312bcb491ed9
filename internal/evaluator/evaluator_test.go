package evaluator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praetorian-inc/interviewcoach/internal/gateway"
	"github.com/praetorian-inc/interviewcoach/pkg/feedback"
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

type assertErr struct{ msg string }

func (e assertErr) Error() string { return e.msg }

func TestEvaluateParsesFullReport(t *testing.T) {
	backend := &fakeBackend{responses: []gateway.ChatResponse{{Content: `<r>{
		"verdict": {"grade": "Middle", "hiring_recommendation": "Hire", "confidence_score": 120},
		"technical_review": {
			"confirmed_skills": [{"topic": "Go", "is_confirmed": true, "details": "solid"}],
			"knowledge_gaps": [{"topic": "SQL", "is_confirmed": false, "details": "weak", "correct_answer": "use indexes"}]
		},
		"soft_skills_review": {"clarity": "Good", "clarity_details": "clear", "honesty": "honest", "honesty_details": "", "engagement": "high", "engagement_details": ""},
		"roadmap": {"items": [{"topic": "SQL", "priority": 1, "reason": "weak area", "resources": ["book"]}], "summary": "Focus on SQL"},
		"general_comments": "Good candidate overall."
	}</r>`}}}
	gw := gateway.New(backend, 0)
	r := New(gw, Config{Temperature: 0.3, MaxTokens: 1500, GenerationRetries: 1})

	state := interview.New(interview.GradeMiddle)
	fb, err := r.Evaluate(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, feedback.AssessedMiddle, fb.Verdict.Grade)
	assert.Equal(t, feedback.Hire, fb.Verdict.HiringRecommendation)
	assert.Equal(t, 100, fb.Verdict.ConfidenceScore, "confidence must be clamped to 100")
	require.Len(t, fb.TechnicalReview.ConfirmedSkills, 1)
	assert.Equal(t, "Go", fb.TechnicalReview.ConfirmedSkills[0].Topic)
	require.Len(t, fb.Roadmap.Items, 1)
	assert.Equal(t, "Good candidate overall.", fb.GeneralComments)
}

func TestEvaluatePropagatesGatewayErrorsUnchanged(t *testing.T) {
	backend := &fakeBackend{errs: []error{&gateway.GatewayError{StatusCode: 500, Body: "down"}}}
	gw := gateway.New(backend, 0)
	r := New(gw, Config{Temperature: 0.3, MaxTokens: 1500, GenerationRetries: 2})

	state := interview.New(interview.GradeMiddle)
	_, err := r.Evaluate(context.Background(), state)
	require.Error(t, err)
	_, isGatewayErr := err.(*gateway.GatewayError)
	assert.True(t, isGatewayErr)
}

func TestEvaluateReturnsLastParseErrorAfterRetriesExhausted(t *testing.T) {
	backend := &fakeBackend{errs: []error{assertErr{"bad json 1"}, assertErr{"bad json 2"}}}
	gw := gateway.New(backend, 0)
	r := New(gw, Config{Temperature: 0.3, MaxTokens: 1500, GenerationRetries: 1})

	state := interview.New(interview.GradeMiddle)
	_, err := r.Evaluate(context.Background(), state)
	require.Error(t, err)
	assert.Equal(t, "bad json 2", err.Error())
}

func TestParseFeedbackTreatsExplicitNullAsEmptyObject(t *testing.T) {
	raw := map[string]any{
		"verdict":            nil,
		"technical_review":   nil,
		"soft_skills_review": nil,
		"roadmap":            nil,
	}
	fb := parseFeedback(raw)
	assert.Equal(t, feedback.AssessedJunior, fb.Verdict.Grade)
	assert.Equal(t, feedback.NoHire, fb.Verdict.HiringRecommendation)
	assert.Equal(t, 50, fb.Verdict.ConfidenceScore)
	assert.Empty(t, fb.TechnicalReview.ConfirmedSkills)
	assert.Equal(t, "No development plan was produced", fb.Roadmap.Summary)
}
