// Package evaluator implements the Evaluator role: a single end-of-session
// LM call that turns the full transcript into a structured report.
package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/praetorian-inc/interviewcoach/internal/agentcore"
	"github.com/praetorian-inc/interviewcoach/internal/gateway"
	"github.com/praetorian-inc/interviewcoach/internal/prompts"
	"github.com/praetorian-inc/interviewcoach/pkg/feedback"
	"github.com/praetorian-inc/interviewcoach/pkg/interview"
)

const jsonSchemaName = "interview_feedback"

var feedbackSchema = []byte(`{
  "type": "object",
  "properties": {
    "verdict": {
      "type": "object",
      "properties": {
        "grade": {"type": "string"},
        "hiring_recommendation": {"type": "string"},
        "confidence_score": {"type": "integer"}
      }
    },
    "technical_review": {
      "type": "object",
      "properties": {
        "confirmed_skills": {"type": "array"},
        "knowledge_gaps": {"type": "array"}
      }
    },
    "soft_skills_review": {
      "type": "object",
      "properties": {
        "clarity": {"type": "string"},
        "clarity_details": {"type": "string"},
        "honesty": {"type": "string"},
        "honesty_details": {"type": "string"},
        "engagement": {"type": "string"},
        "engagement_details": {"type": "string"}
      }
    },
    "roadmap": {
      "type": "object",
      "properties": {
        "items": {"type": "array"},
        "summary": {"type": "string"}
      }
    },
    "general_comments": {"type": "string"}
  },
  "required": ["verdict", "technical_review", "soft_skills_review", "roadmap"]
}`)

// Config carries the Evaluator's per-call generation parameters.
type Config struct {
	Temperature       float64
	MaxTokens         int
	GenerationRetries int
}

// Reporter runs the Evaluator role against a configured gateway.
type Reporter struct {
	gw  *gateway.Gateway
	cfg Config
}

// New constructs a Reporter bound to the given gateway and config.
func New(gw *gateway.Gateway, cfg Config) *Reporter {
	return &Reporter{gw: gw, cfg: cfg}
}

// Evaluate generates the final structured report for a completed session.
// Gateway errors (network/auth/rate-limit) are returned immediately without
// retry; a parse failure is retried up to GenerationRetries times, and the
// last parse error is returned once all attempts are exhausted.
func (r *Reporter) Evaluate(ctx context.Context, state *interview.InterviewState) (feedback.Feedback, error) {
	ctxStr := buildEvaluationContext(state)
	messages := agentcore.BuildMessages(prompts.Evaluator, ctxStr, nil)

	var lastErr error
	for attempt := 0; attempt <= r.cfg.GenerationRetries; attempt++ {
		raw, err := r.gw.CompleteJSON(ctx, gateway.ChatRequest{
			Messages:    messages,
			Temperature: r.cfg.Temperature,
			MaxTokens:   r.cfg.MaxTokens,
		}, jsonSchemaName, feedbackSchema)
		if err != nil {
			if _, isGatewayErr := err.(*gateway.GatewayError); isGatewayErr {
				return feedback.Feedback{}, err
			}
			lastErr = err
			if attempt < r.cfg.GenerationRetries {
				slog.Warn("evaluator generation parsing failed, retrying",
					"attempt", attempt+1, "max_attempts", r.cfg.GenerationRetries+1, "error", err)
				continue
			}
			break
		}
		return parseFeedback(raw), nil
	}

	slog.Error("evaluator generation failed after all attempts", "error", lastErr)
	return feedback.Feedback{}, lastErr
}

func buildEvaluationContext(state *interview.InterviewState) string {
	conversation := formatConversation(state)
	skillsSummary := formatSkillsSummary(state)

	candidateParts := []string{fmt.Sprintf("Name: %s", valueOr(state.ParticipantName, "Unknown"))}
	if state.Candidate.Position != "" {
		candidateParts = append(candidateParts, "Position: "+state.Candidate.Position)
	}
	if state.Candidate.HasTargetGrade() {
		candidateParts = append(candidateParts, "Declared grade: "+string(state.Candidate.TargetGrade))
	}
	if state.Candidate.Experience != "" {
		candidateParts = append(candidateParts, "Declared experience: "+state.Candidate.Experience)
	}

	jobBlock := ""
	if state.HasJobDesc && state.JobDescription != "" {
		jobBlock = "\nJOB DESCRIPTION:\n" + state.JobDescription + "\n"
	}

	return fmt.Sprintf(`CANDIDATE INFORMATION:
%s

INTERVIEW STATISTICS:
Total turns: %d
Final difficulty: %s
%s
CONVERSATION HISTORY:
%s

PRELIMINARY SKILLS SUMMARY:
%s

Produce a detailed interview report. Follow the output_format instructions:
1. Write your reasoning in <reasoning>...</reasoning>.
2. Emit the JSON in <r>...</r>.

Take into account:
1. Whether the declared grade matches the demonstrated level
2. Whether there were hallucinations or factual errors
3. How the candidate handled harder questions
4. Whether there were meaningless messages (junk, keyboard tests)
5. Soft skills: honesty, clarity, engagement
6. Concrete development recommendations
7. If a job description is present, assess fit against it`,
		strings.Join(candidateParts, "\n"),
		len(state.Turns),
		state.CurrentDifficulty.String(),
		jobBlock,
		conversation,
		skillsSummary,
	)
}

func formatConversation(state *interview.InterviewState) string {
	var lines []string
	for i := range state.Turns {
		t := &state.Turns[i]
		lines = append(lines, "[Interviewer]: "+t.AgentMessage)
		if t.HasUserMessage() {
			lines = append(lines, "[Candidate]: "+t.UserMessage)
		}
		if len(t.InternalThoughts) > 0 {
			var thoughts []string
			for _, th := range t.InternalThoughts {
				thoughts = append(thoughts, th.Content)
			}
			lines = append(lines, "[Internal thoughts]: "+strings.Join(thoughts, "; "))
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func formatSkillsSummary(state *interview.InterviewState) string {
	var lines []string

	if skills := state.ConfirmedSkills.Items(); len(skills) > 0 {
		lines = append(lines, "Confirmed skills:")
		for _, skill := range skills {
			lines = append(lines, "  [ok] "+skill)
		}
	}

	if len(state.KnowledgeGaps) > 0 {
		lines = append(lines, "Detected gaps:")
		for _, gap := range state.KnowledgeGaps {
			topic := valueOr(gap.Topic, "unknown")
			lines = append(lines, "  [gap] "+topic)
			if gap.CorrectAnswer != "" {
				lines = append(lines, "     Correct answer: "+gap.CorrectAnswer)
			}
		}
	}

	if topics := state.CoveredTopics.Items(); len(topics) > 0 {
		lines = append(lines, "Topics covered: "+strings.Join(topics, ", "))
	}

	if len(lines) == 0 {
		return "No data available"
	}
	return strings.Join(lines, "\n")
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// parseFeedback converts the parsed JSON response into a feedback.Feedback.
// Every nested object lookup treats a missing key and an explicit JSON null
// identically ("empty object"), matching the source's defensive
// response.get(key) or {} pattern rather than a plain default-on-missing-key
// lookup, which would not catch an explicit null.
func parseFeedback(response map[string]any) feedback.Feedback {
	verdictData := objectOrEmpty(response["verdict"])
	v := feedback.Verdict{
		Grade:                feedback.ParseAssessedGrade(stringFieldDefault(verdictData, "grade", "Junior")),
		HiringRecommendation: feedback.ParseHiringRecommendation(stringFieldDefault(verdictData, "hiring_recommendation", "No Hire")),
		ConfidenceScore:      intFieldDefault(verdictData, "confidence_score", 50),
	}
	v.ClampConfidence()

	techData := objectOrEmpty(response["technical_review"])
	technicalReview := feedback.TechnicalReview{
		ConfirmedSkills: parseSkillAssessments(techData["confirmed_skills"]),
		KnowledgeGaps:   parseSkillAssessments(techData["knowledge_gaps"]),
	}

	softData := objectOrEmpty(response["soft_skills_review"])
	softSkillsReview := feedback.SoftSkillsReview{
		Clarity:           feedback.ParseClarityLevel(stringFieldDefault(softData, "clarity", "Average")),
		ClarityDetails:    stringFieldDefault(softData, "clarity_details", ""),
		Honesty:           stringFieldDefault(softData, "honesty", "Not determined"),
		HonestyDetails:    stringFieldDefault(softData, "honesty_details", ""),
		Engagement:        stringFieldDefault(softData, "engagement", "Not determined"),
		EngagementDetails: stringFieldDefault(softData, "engagement_details", ""),
	}

	roadmapData := objectOrEmpty(response["roadmap"])
	roadmap := feedback.PersonalRoadmap{
		Items:   parseRoadmapItems(roadmapData["items"]),
		Summary: stringFieldDefault(roadmapData, "summary", "No development plan was produced"),
	}

	return feedback.Feedback{
		Verdict:          v,
		TechnicalReview:  technicalReview,
		SoftSkillsReview: softSkillsReview,
		Roadmap:          roadmap,
		GeneralComments:  stringFieldDefault(response, "general_comments", ""),
	}
}

func parseSkillAssessments(raw any) []feedback.SkillAssessment {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	var out []feedback.SkillAssessment
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, feedback.SkillAssessment{
			Topic:         stringFieldDefault(m, "topic", ""),
			IsConfirmed:   boolFieldDefault(m, "is_confirmed", false),
			Details:       stringFieldDefault(m, "details", ""),
			CorrectAnswer: stringFieldDefault(m, "correct_answer", ""),
		})
	}
	return out
}

func parseRoadmapItems(raw any) []feedback.RoadmapItem {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	var out []feedback.RoadmapItem
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, feedback.RoadmapItem{
			Topic:     stringFieldDefault(m, "topic", ""),
			Priority:  intFieldDefault(m, "priority", 3),
			Reason:    stringFieldDefault(m, "reason", ""),
			Resources: stringSliceField(m, "resources"),
		})
	}
	return out
}

// objectOrEmpty returns v as a map[string]any, treating a missing key,
// explicit JSON null, or any non-object value as an empty object.
func objectOrEmpty(v any) map[string]any {
	m, ok := v.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return m
}

func stringFieldDefault(m map[string]any, key, fallback string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func boolFieldDefault(m map[string]any, key string, fallback bool) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return fallback
}

func intFieldDefault(m map[string]any, key string, fallback int) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}

func stringSliceField(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
