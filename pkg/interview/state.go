package interview

// KnowledgeGap records one confirmed gap: a topic the candidate attempted
// but answered incorrectly.
type KnowledgeGap struct {
	Topic         string
	UserAnswer    string
	CorrectAnswer string
}

// HistoryMessage is one alternating assistant/user message in a bounded
// history window, suitable for feeding directly into an LM request.
type HistoryMessage struct {
	IsAssistant bool
	Content     string
}

// InterviewState is the full mutable aggregate for one session. Every field
// here is owned exclusively by the Session Orchestrator's write path (see
// internal/session); this package only provides pure read/derive helpers and
// the AdjustDifficulty state transition.
type InterviewState struct {
	ParticipantName string
	Candidate       CandidateInfo
	JobDescription  string
	HasJobDesc      bool

	Turns []Turn

	CurrentDifficulty Difficulty
	CoveredTopics     *OrderedSet
	ConfirmedSkills   *OrderedSet
	KnowledgeGaps     []KnowledgeGap

	IsActive bool

	ConsecutiveGoodAnswers int
	ConsecutiveBadAnswers  int
}

// New constructs an empty, active InterviewState seeded with the starting
// difficulty derived from the candidate's declared grade.
func New(declaredGrade Grade) *InterviewState {
	return &InterviewState{
		Candidate:         NewCandidateInfo(),
		CurrentDifficulty: InitialDifficulty(declaredGrade),
		CoveredTopics:     NewOrderedSet(),
		ConfirmedSkills:   NewOrderedSet(),
		IsActive:          true,
	}
}

// CurrentTurn is the number of turns recorded so far, equal to len(Turns) by
// Invariant 1.
func (s *InterviewState) CurrentTurn() int { return len(s.Turns) }

// TailTurn returns a pointer to the most recently appended turn, or nil if
// there are none yet.
func (s *InterviewState) TailTurn() *Turn {
	if len(s.Turns) == 0 {
		return nil
	}
	return &s.Turns[len(s.Turns)-1]
}

// ActiveAnchor returns the active question anchor: the agent_message of the
// most recent turn. It is intentionally derived rather than stored, per the
// anchor-drift-prevention design (§9 Design Notes).
func (s *InterviewState) ActiveAnchor() string {
	t := s.TailTurn()
	if t == nil {
		return ""
	}
	return t.AgentMessage
}

// AppendTurn appends a new agent-only turn, enforcing the monotonic turn_id
// sequence (Invariant 1). It is the orchestrator's sole append path and must
// only be called when IsActive (Invariant 5).
func (s *InterviewState) AppendTurn(t Turn) {
	t.TurnID = len(s.Turns) + 1
	s.Turns = append(s.Turns, t)
}

// DifficultySnapshot captures the difficulty-related counters for rollback.
type DifficultySnapshot struct {
	Difficulty  Difficulty
	GoodStreak  int
	BadStreak   int
}

// Snapshot captures the pre-turn difficulty state (§4.7 step 5).
func (s *InterviewState) Snapshot() DifficultySnapshot {
	return DifficultySnapshot{
		Difficulty: s.CurrentDifficulty,
		GoodStreak: s.ConsecutiveGoodAnswers,
		BadStreak:  s.ConsecutiveBadAnswers,
	}
}

// Restore rolls the difficulty-related counters back to a prior snapshot
// (§4.7 step 7 rollback on Interviewer failure).
func (s *InterviewState) Restore(snap DifficultySnapshot) {
	s.CurrentDifficulty = snap.Difficulty
	s.ConsecutiveGoodAnswers = snap.GoodStreak
	s.ConsecutiveBadAnswers = snap.BadStreak
}

// AdjustDifficulty applies the streak-based difficulty transition (§4.6).
// Both should_increase_difficulty and should_simplify are read from an
// already-normalized Analysis (see Analysis.Normalize); when both would
// somehow be true, should_increase_difficulty takes precedence and
// should_simplify is ignored for this turn — the source's if/elif
// precedence, reproduced here rather than independent checks.
func (s *InterviewState) AdjustDifficulty(a *Analysis) {
	switch {
	case a.ShouldIncreaseDifficulty:
		s.ConsecutiveGoodAnswers++
		s.ConsecutiveBadAnswers = 0
		if s.ConsecutiveGoodAnswers >= 2 && s.CurrentDifficulty < DifficultyExpert {
			s.CurrentDifficulty++
			s.ConsecutiveGoodAnswers = 0
		}
	case a.ShouldSimplify:
		s.ConsecutiveBadAnswers++
		s.ConsecutiveGoodAnswers = 0
		if s.ConsecutiveBadAnswers >= 2 && s.CurrentDifficulty > DifficultyBasic {
			s.CurrentDifficulty--
			s.ConsecutiveBadAnswers = 0
		}
	default:
		s.ConsecutiveGoodAnswers = 0
		s.ConsecutiveBadAnswers = 0
	}
}

// HistoryWindow returns the trailing maxTurns turns as alternating
// assistant/user messages, skipping user messages that are absent (e.g. the
// bootstrap greeting turn, or the tail turn before the candidate has
// replied).
func (s *InterviewState) HistoryWindow(maxTurns int) []HistoryMessage {
	if maxTurns <= 0 || len(s.Turns) == 0 {
		return nil
	}
	start := 0
	if len(s.Turns) > maxTurns {
		start = len(s.Turns) - maxTurns
	}
	window := make([]HistoryMessage, 0, 2*(len(s.Turns)-start))
	for i := start; i < len(s.Turns); i++ {
		t := &s.Turns[i]
		window = append(window, HistoryMessage{IsAssistant: true, Content: t.AgentMessage})
		if t.HasUserMessage() {
			window = append(window, HistoryMessage{IsAssistant: false, Content: t.UserMessage})
		}
	}
	return window
}
