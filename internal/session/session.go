// Package session implements the Session Orchestrator: the turn-level state
// machine that drives Observer, Interviewer, and Evaluator calls against one
// InterviewState, enforcing atomic commit-only-on-success semantics.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/praetorian-inc/interviewcoach/internal/evaluator"
	"github.com/praetorian-inc/interviewcoach/internal/interviewer"
	"github.com/praetorian-inc/interviewcoach/internal/observer"
	"github.com/praetorian-inc/interviewcoach/pkg/feedback"
	"github.com/praetorian-inc/interviewcoach/pkg/interview"
	"github.com/praetorian-inc/interviewcoach/pkg/metrics"
	"github.com/praetorian-inc/interviewcoach/pkg/observability"
	"github.com/praetorian-inc/interviewcoach/pkg/translog"
)

// genericErrorMessage is returned to the candidate when a stage fails; it
// never leaks internal error detail into the transcript.
const genericErrorMessage = "Something went wrong while processing your answer. Could you try again?"

// Dependencies bundles the session's collaborators. All fields are required
// except Sink and Metrics, which default to no-ops when nil.
type Dependencies struct {
	Observer    *observer.Analyzer
	Interviewer *interviewer.Planner
	Evaluator   *evaluator.Reporter
	Logger      *translog.Logger
	Sink        observability.Sink
	Metrics     *metrics.Metrics
	MaxTurns    int
	SessionID   string
}

// Session coordinates one interview's lifecycle: Start, Process, Finish,
// Close. All mutation happens on the caller's goroutine between suspension
// points (LM calls); a Session must not be used from more than one goroutine
// concurrently.
type Session struct {
	deps  Dependencies
	state *interview.InterviewState
	trace observability.Trace

	lastAgentMessage string
}

// New constructs a Session with empty state; call Start before Process.
func New(deps Dependencies) *Session {
	if deps.Sink == nil {
		deps.Sink = observability.NoopSink{}
	}
	if deps.MaxTurns <= 0 {
		deps.MaxTurns = 20
	}
	return &Session{deps: deps}
}

// State exposes the current InterviewState for read-only inspection (e.g.
// by a batch runner reporting progress). Returns nil before Start.
func (s *Session) State() *interview.InterviewState { return s.state }

// IsActive reports whether the session accepts further turns.
func (s *Session) IsActive() bool { return s.state != nil && s.state.IsActive }

// Start initializes state, asks the Interviewer for an opening greeting, and
// appends the bootstrap turn.
func (s *Session) Start(ctx context.Context, declaredGrade interview.Grade, jobDescription string) (string, error) {
	s.state = interview.New(declaredGrade)
	if jobDescription != "" {
		s.state.JobDescription = jobDescription
		s.state.HasJobDesc = true
	}

	s.trace = s.deps.Sink.CreateTrace("interview_session", s.deps.SessionID, "", nil)
	if s.deps.Metrics != nil {
		s.deps.Metrics.IncSessionsStarted()
	}

	greeting, err := s.deps.Interviewer.Greet(ctx, s.state)
	if err != nil {
		return "", fmt.Errorf("generate greeting: %w", err)
	}

	s.lastAgentMessage = greeting
	s.state.AppendTurn(interview.NewTurn(0, greeting, time.Now()))
	return greeting, nil
}

// Process runs the full turn pipeline for one candidate message: attach,
// Observer call, candidate-info accretion, stop-command early exit,
// snapshot, difficulty adjustment, Interviewer call with rollback on
// failure, commit, termination check.
func (s *Session) Process(ctx context.Context, userMessage string) (string, bool, error) {
	if s.state == nil {
		return "", false, fmt.Errorf("session not started")
	}
	if !s.state.IsActive {
		return "The interview has ended.", true, nil
	}
	if s.deps.Metrics != nil {
		s.deps.Metrics.IncTurnsProcessed()
	}

	// Stage 1: attach the candidate's reply to the tail turn.
	if tail := s.state.TailTurn(); tail != nil {
		tail.SetUserMessage(userMessage)
	}

	// Stage 2: Observer call.
	analysis, err := s.deps.Observer.Analyze(ctx, s.state, userMessage, s.lastAgentMessage)
	if err != nil {
		slog.Warn("observer call failed", "error", err)
		return genericErrorMessage, false, nil
	}
	analysis.Normalize()

	// Stage 3: idempotent candidate-info accretion.
	if analysis.HasExtractedInfo {
		s.accreteCandidateInfo(analysis.ExtractedInfo)
	}

	// Stage 4: stop-command early exit.
	if analysis.ResponseType == interview.ResponseStopCommand {
		if tail := s.state.TailTurn(); tail != nil {
			tail.AppendThoughts(toInternalThoughts("Observer", "Interviewer", analysis.Thoughts)...)
		}
		s.state.IsActive = false
		if s.deps.Metrics != nil {
			s.deps.Metrics.IncStopCommandObserved()
		}
		return "Ending the interview and preparing feedback...", true, nil
	}

	// Stage 5: snapshot difficulty state for rollback.
	snapshot := s.state.Snapshot()

	// Stage 6: difficulty adjustment, only if the candidate answered.
	if analysis.AnsweredLastQuestion {
		oldDifficulty := s.state.CurrentDifficulty
		s.state.AdjustDifficulty(&analysis)
		if oldDifficulty != s.state.CurrentDifficulty {
			slog.Info("difficulty changed",
				"from", oldDifficulty.String(), "to", s.state.CurrentDifficulty.String(),
				"good_streak", s.state.ConsecutiveGoodAnswers, "bad_streak", s.state.ConsecutiveBadAnswers)
		}
	}

	if analysis.HasDemonstratedLevel && s.state.Candidate.HasTargetGrade() {
		slog.Info("demonstrated level differs from declared grade",
			"declared", s.state.Candidate.TargetGrade, "demonstrated", analysis.DemonstratedLevel)
	}

	// Stage 7: Interviewer call; roll back the snapshot on failure.
	utterance, thoughts, err := s.deps.Interviewer.PlanAndSpeak(ctx, s.state, &analysis, userMessage)
	if err != nil {
		s.state.Restore(snapshot)
		slog.Warn("interviewer call failed", "error", err)
		return genericErrorMessage, false, nil
	}

	// Stage 8: commit phase.
	if tail := s.state.TailTurn(); tail != nil {
		tail.AppendThoughts(toInternalThoughts("Observer", "Interviewer", thoughts)...)
	}
	s.lastAgentMessage = utterance
	s.state.AppendTurn(interview.NewTurn(0, utterance, time.Now()))
	s.commitKnowledgeAccounting(&analysis, userMessage)

	// Stage 9: termination check.
	if s.state.CurrentTurn() >= s.deps.MaxTurns {
		s.state.IsActive = false
		return utterance + "\n\n[Question limit reached. Preparing feedback...]", true, nil
	}

	return utterance, false, nil
}

func (s *Session) accreteCandidateInfo(info interview.ExtractedInfo) {
	hadName := s.state.Candidate.HasName()
	s.state.Candidate.Accrete(info)
	if !hadName && s.state.Candidate.HasName() {
		s.state.ParticipantName = s.state.Candidate.Name
	}
}

func (s *Session) commitKnowledgeAccounting(analysis *interview.Analysis, userMessage string) {
	topics := analysis.DetectedTopics.Items()
	s.state.CoveredTopics.AddAll(topics)

	if !analysis.AnsweredLastQuestion {
		return
	}

	goodQuality := analysis.Quality == interview.QualityExcellent || analysis.Quality == interview.QualityGood
	if analysis.IsFactuallyCorrect && goodQuality {
		s.state.ConfirmedSkills.AddAll(topics)
	}

	if !analysis.IsFactuallyCorrect || analysis.Quality == interview.QualityWrong {
		topic := joinOrDefault(topics, "General")
		s.state.KnowledgeGaps = append(s.state.KnowledgeGaps, interview.KnowledgeGap{
			Topic:         topic,
			UserAnswer:    truncate(userMessage, 200),
			CorrectAnswer: analysis.CorrectAnswer,
		})
	}
}

// Finish runs the Evaluator, persists the summary and detailed logs, flushes
// the observability sink, and returns the feedback plus both log paths.
func (s *Session) Finish(ctx context.Context) (feedback.Feedback, string, string, error) {
	if s.state == nil {
		return feedback.Feedback{}, "", "", fmt.Errorf("session not started")
	}

	fb, err := s.deps.Evaluator.Evaluate(ctx, s.state)
	if err != nil {
		return feedback.Feedback{}, "", "", fmt.Errorf("evaluate session: %w", err)
	}

	now := time.Now()
	summaryPath, err := s.deps.Logger.SaveSession(s.state, &fb, now)
	if err != nil {
		return feedback.Feedback{}, "", "", fmt.Errorf("save summary log: %w", err)
	}
	var tokenMetrics any
	if s.deps.Metrics != nil {
		tokenMetrics = s.deps.Metrics.TokenSnapshot()
	}
	detailedPath, err := s.deps.Logger.SaveRawLog(s.state, &fb, tokenMetrics, now)
	if err != nil {
		return feedback.Feedback{}, "", "", fmt.Errorf("save detailed log: %w", err)
	}

	s.deps.Sink.ScoreTrace(s.trace, "hiring_recommendation_confidence", float64(fb.Verdict.ConfidenceScore), string(fb.Verdict.HiringRecommendation))
	s.deps.Sink.Flush()
	if s.deps.Metrics != nil {
		s.deps.Metrics.IncSessionsFinished()
	}

	return fb, summaryPath, detailedPath, nil
}

// Close releases any session-scoped resources. The gateway's backend, if it
// holds a connection pool, is owned by the caller and closed separately.
func (s *Session) Close(ctx context.Context) error {
	s.deps.Sink.Flush()
	return nil
}

func toInternalThoughts(from, to string, contents []string) []interview.InternalThought {
	if len(contents) == 0 {
		return nil
	}
	now := time.Now()
	out := make([]interview.InternalThought, 0, len(contents))
	for _, c := range contents {
		out = append(out, interview.InternalThought{FromAgent: from, ToAgent: to, Content: c, CreatedAt: now})
	}
	return out
}

func joinOrDefault(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	out := items[0]
	for _, item := range items[1:] {
		out += ", " + item
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
