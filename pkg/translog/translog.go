// Package translog persists a completed interview session to disk: a
// human-facing summary log and a detailed log carrying the full structured
// feedback and internal agent reasoning.
package translog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/praetorian-inc/interviewcoach/pkg/feedback"
	"github.com/praetorian-inc/interviewcoach/pkg/interview"
)

// Logger writes session artifacts under a configured directory.
type Logger struct {
	dir string
}

// New returns a Logger that writes under dir, creating it if necessary.
func New(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create interview log dir: %w", err)
	}
	return &Logger{dir: dir}, nil
}

type turnLogEntry struct {
	TurnID              int    `json:"turn_id"`
	AgentVisibleMessage string `json:"agent_visible_message"`
	UserMessage         string `json:"user_message,omitempty"`
	InternalThoughts    string `json:"internal_thoughts"`
}

type summaryLog struct {
	ParticipantName string         `json:"participant_name"`
	Turns           []turnLogEntry `json:"turns"`
	FinalFeedback   *string        `json:"final_feedback"`
}

// SaveSession writes the summary log and returns its path. feedback may be
// nil if the session ended before evaluation completed.
func (l *Logger) SaveSession(state *interview.InterviewState, fb *feedback.Feedback, now time.Time) (string, error) {
	filename := fmt.Sprintf("interview_log_%s.json", now.Format("20060102_150405"))
	path := filepath.Join(l.dir, filename)

	turns := make([]turnLogEntry, 0, len(state.Turns))
	for i := range state.Turns {
		t := &state.Turns[i]
		turns = append(turns, turnLogEntry{
			TurnID:              t.TurnID,
			AgentVisibleMessage: t.AgentMessage,
			UserMessage:         t.UserMessage,
			InternalThoughts:    formatThoughts(t.InternalThoughts),
		})
	}

	var finalFeedback *string
	if fb != nil {
		s := fb.FormattedString()
		finalFeedback = &s
	}

	data := summaryLog{
		ParticipantName: state.ParticipantName,
		Turns:           turns,
		FinalFeedback:   finalFeedback,
	}
	if err := writeJSON(path, data); err != nil {
		return "", err
	}
	return path, nil
}

type candidateInfoLog struct {
	Name         string   `json:"name"`
	Position     string   `json:"position"`
	TargetGrade  *string  `json:"target_grade"`
	Experience   string   `json:"experience"`
	Technologies []string `json:"technologies"`
}

type interviewStatsLog struct {
	TotalTurns      int      `json:"total_turns"`
	FinalDifficulty string   `json:"final_difficulty"`
	ConfirmedSkills []string `json:"confirmed_skills"`
	KnowledgeGaps   []interview.KnowledgeGap `json:"knowledge_gaps"`
	CoveredTopics   []string `json:"covered_topics"`
}

type detailedTurnEntry struct {
	TurnID              int                       `json:"turn_id"`
	AgentVisibleMessage string                    `json:"agent_visible_message"`
	UserMessage         string                    `json:"user_message,omitempty"`
	InternalThoughts    []interview.InternalThought `json:"internal_thoughts"`
	CreatedAt           time.Time                 `json:"created_at"`
}

type detailedLog struct {
	ParticipantName string            `json:"participant_name"`
	CandidateInfo   candidateInfoLog  `json:"candidate_info"`
	InterviewStats  interviewStatsLog `json:"interview_stats"`
	Turns           []detailedTurnEntry `json:"turns"`
	FinalFeedback   any               `json:"final_feedback"`
	TokenMetrics    any               `json:"token_metrics,omitempty"`
}

// SaveRawLog writes the detailed log and returns its path.
func (l *Logger) SaveRawLog(state *interview.InterviewState, fb *feedback.Feedback, tokenMetrics any, now time.Time) (string, error) {
	filename := fmt.Sprintf("interview_detailed_%s.json", now.Format("20060102_150405"))
	path := filepath.Join(l.dir, filename)

	var targetGrade *string
	if state.Candidate.HasTargetGrade() {
		s := string(state.Candidate.TargetGrade)
		targetGrade = &s
	}

	turns := make([]detailedTurnEntry, 0, len(state.Turns))
	for i := range state.Turns {
		t := &state.Turns[i]
		turns = append(turns, detailedTurnEntry{
			TurnID:              t.TurnID,
			AgentVisibleMessage: t.AgentMessage,
			UserMessage:         t.UserMessage,
			InternalThoughts:    t.InternalThoughts,
			CreatedAt:           t.CreatedAt,
		})
	}

	var finalFeedback any
	if fb != nil {
		finalFeedback = fb
	}

	data := detailedLog{
		ParticipantName: state.ParticipantName,
		CandidateInfo: candidateInfoLog{
			Name:         state.Candidate.Name,
			Position:     state.Candidate.Position,
			TargetGrade:  targetGrade,
			Experience:   state.Candidate.Experience,
			Technologies: state.Candidate.Technologies.Items(),
		},
		InterviewStats: interviewStatsLog{
			TotalTurns:      len(state.Turns),
			FinalDifficulty: state.CurrentDifficulty.String(),
			ConfirmedSkills: state.ConfirmedSkills.Items(),
			KnowledgeGaps:   state.KnowledgeGaps,
			CoveredTopics:   state.CoveredTopics.Items(),
		},
		Turns:         turns,
		FinalFeedback: finalFeedback,
		TokenMetrics:  tokenMetrics,
	}
	if err := writeJSON(path, data); err != nil {
		return "", err
	}
	return path, nil
}

func formatThoughts(thoughts []interview.InternalThought) string {
	if len(thoughts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(thoughts))
	for _, t := range thoughts {
		parts = append(parts, fmt.Sprintf("[%s]: %s", t.FromAgent, t.Content))
	}
	return strings.Join(parts, " ")
}

func writeJSON(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create log file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode log: %w", err)
	}
	return nil
}
