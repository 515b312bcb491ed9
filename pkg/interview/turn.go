package interview

import "time"

// InternalThought records one piece of reasoning exchanged between agents
// during a turn (e.g. Observer -> Interviewer), kept for the detailed log and
// never shown to the candidate.
type InternalThought struct {
	FromAgent string
	ToAgent   string
	Content   string
	CreatedAt time.Time
}

// Turn is one round of the interview: the agent's visible message, the
// candidate's reply (filled in retroactively), and any internal thoughts
// produced while processing that reply. Everything but UserMessage and
// InternalThoughts is immutable once constructed.
type Turn struct {
	TurnID          int
	AgentMessage    string
	UserMessage     string
	userMessageSet  bool
	InternalThoughts []InternalThought
	CreatedAt       time.Time
}

// NewTurn constructs an agent-only turn (no user message yet).
func NewTurn(turnID int, agentMessage string, createdAt time.Time) Turn {
	return Turn{
		TurnID:       turnID,
		AgentMessage: agentMessage,
		CreatedAt:    createdAt,
	}
}

// HasUserMessage reports whether the candidate has replied to this turn yet.
func (t *Turn) HasUserMessage() bool { return t.userMessageSet }

// SetUserMessage attaches the candidate's reply. It is a no-op if a user
// message is already attached (Invariant 2: at most one, immutable once set).
func (t *Turn) SetUserMessage(msg string) {
	if t.userMessageSet {
		return
	}
	t.UserMessage = msg
	t.userMessageSet = true
}

// AppendThoughts records internal reasoning on this turn. Intended to be
// called exactly once per turn by the orchestrator's commit phase.
func (t *Turn) AppendThoughts(thoughts ...InternalThought) {
	t.InternalThoughts = append(t.InternalThoughts, thoughts...)
}
