package interview

import (
	"testing"
	"time"
)

func TestAdjustDifficultyRequiresTwoStreaks(t *testing.T) {
	s := New(GradeMiddle) // Intermediate
	if s.CurrentDifficulty != DifficultyIntermediate {
		t.Fatalf("expected Intermediate seed, got %v", s.CurrentDifficulty)
	}

	a := NewAnalysis()
	a.AnsweredLastQuestion = true
	a.ShouldIncreaseDifficulty = true

	s.AdjustDifficulty(&a)
	if s.CurrentDifficulty != DifficultyIntermediate {
		t.Fatalf("difficulty should not move on first streak entry, got %v", s.CurrentDifficulty)
	}
	if s.ConsecutiveGoodAnswers != 1 {
		t.Fatalf("expected good streak 1, got %d", s.ConsecutiveGoodAnswers)
	}

	s.AdjustDifficulty(&a)
	if s.CurrentDifficulty != DifficultyAdvanced {
		t.Fatalf("expected promotion to Advanced after 2 streaks, got %v", s.CurrentDifficulty)
	}
	if s.ConsecutiveGoodAnswers != 0 {
		t.Fatalf("expected streak reset after promotion, got %d", s.ConsecutiveGoodAnswers)
	}
}

func TestAdjustDifficultyIncreasePrecedesSimplify(t *testing.T) {
	s := New(GradeJunior) // Basic
	s.CurrentDifficulty = DifficultyIntermediate
	s.ConsecutiveBadAnswers = 1

	a := NewAnalysis()
	a.AnsweredLastQuestion = true
	a.ShouldIncreaseDifficulty = true
	a.ShouldSimplify = true // both true: increase must win, simplify ignored

	s.AdjustDifficulty(&a)
	if s.ConsecutiveBadAnswers != 0 {
		t.Fatalf("expected bad streak reset when increase wins, got %d", s.ConsecutiveBadAnswers)
	}
	if s.ConsecutiveGoodAnswers != 1 {
		t.Fatalf("expected good streak incremented, got %d", s.ConsecutiveGoodAnswers)
	}
}

func TestAdjustDifficultyNeverExceedsExpert(t *testing.T) {
	s := New(GradeLead) // Expert already
	a := NewAnalysis()
	a.AnsweredLastQuestion = true
	a.ShouldIncreaseDifficulty = true
	s.AdjustDifficulty(&a)
	s.AdjustDifficulty(&a)
	if s.CurrentDifficulty != DifficultyExpert {
		t.Fatalf("expected to stay at Expert, got %v", s.CurrentDifficulty)
	}
}

func TestAdjustDifficultyNeverBelowBasic(t *testing.T) {
	s := New(GradeIntern) // Basic already
	a := NewAnalysis()
	a.AnsweredLastQuestion = true
	a.ShouldSimplify = true
	s.AdjustDifficulty(&a)
	s.AdjustDifficulty(&a)
	if s.CurrentDifficulty != DifficultyBasic {
		t.Fatalf("expected to stay at Basic, got %v", s.CurrentDifficulty)
	}
}

func TestCounterRollback(t *testing.T) {
	s := New(GradeJunior)
	snap := s.Snapshot()

	a := NewAnalysis()
	a.AnsweredLastQuestion = true
	a.ShouldIncreaseDifficulty = true
	s.AdjustDifficulty(&a)
	s.AdjustDifficulty(&a)

	if s.CurrentDifficulty == snap.Difficulty && s.ConsecutiveGoodAnswers == snap.GoodStreak {
		t.Fatalf("expected state to have changed before rollback")
	}
	s.Restore(snap)
	if s.CurrentDifficulty != snap.Difficulty || s.ConsecutiveGoodAnswers != snap.GoodStreak || s.ConsecutiveBadAnswers != snap.BadStreak {
		t.Fatalf("restore did not fully revert counters")
	}
}

func TestHistoryWindowSkipsMissingUserMessage(t *testing.T) {
	s := New(GradeJunior)
	s.AppendTurn(NewTurn(0, "Welcome! What's your name?", time.Time{}))
	tail := s.TailTurn()
	tail.SetUserMessage("Alice")
	s.AppendTurn(NewTurn(0, "What is a pointer?", time.Time{}))

	window := s.HistoryWindow(10)
	if len(window) != 3 {
		t.Fatalf("expected 3 history messages (assistant,user,assistant), got %d", len(window))
	}
	if window[2].IsAssistant != true || window[2].Content != "What is a pointer?" {
		t.Fatalf("unexpected tail history message: %+v", window[2])
	}
}

func TestHistoryWindowBounded(t *testing.T) {
	s := New(GradeJunior)
	for i := 0; i < 5; i++ {
		s.AppendTurn(NewTurn(0, "q", time.Time{}))
		s.TailTurn().SetUserMessage("a")
	}
	window := s.HistoryWindow(2)
	if len(window) != 4 {
		t.Fatalf("expected window bounded to last 2 turns (4 messages), got %d", len(window))
	}
}

func TestCandidateInfoAccretionIsAccretiveOnly(t *testing.T) {
	c := NewCandidateInfo()
	c.Accrete(ExtractedInfo{Name: "Alice", Technologies: []string{"Go"}})
	c.Accrete(ExtractedInfo{Name: "Bob", Technologies: []string{"Go", "Rust"}})

	if c.Name != "Alice" {
		t.Fatalf("name should not be overwritten once set, got %q", c.Name)
	}
	if c.Technologies.Len() != 2 {
		t.Fatalf("expected de-duplicated technologies, got %v", c.Technologies.Items())
	}
}

func TestResponseTypeParsingDefaultsUnknown(t *testing.T) {
	if ParseResponseType("bogus") != ResponseNormal {
		t.Fatalf("expected unknown response type to default to Normal")
	}
	if ParseResponseType("Hallucination") != ResponseHallucination {
		t.Fatalf("expected case-insensitive match")
	}
}

