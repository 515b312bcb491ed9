package agentcore

import (
	"testing"

	"github.com/praetorian-inc/interviewcoach/internal/gateway"
	"github.com/praetorian-inc/interviewcoach/pkg/interview"
)

func TestBuildMessagesNoHistory(t *testing.T) {
	got := BuildMessages("sys", "hello", nil)
	want := []gateway.Message{
		{Role: gateway.RoleSystem, Content: "sys"},
		{Role: gateway.RoleUser, Content: "hello"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d messages, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestBuildMessagesDropsTrailingUser(t *testing.T) {
	history := []interview.HistoryMessage{
		{IsAssistant: true, Content: "Q1"},
		{IsAssistant: false, Content: "A1"},
	}
	got := BuildMessages("sys", "A1-revised", history)
	if len(got) != 4 {
		t.Fatalf("got %d messages, want 4", len(got))
	}
	if got[2].Role != gateway.RoleAssistant || got[2].Content != "Q1" {
		t.Errorf("message 2 = %+v, want assistant Q1", got[2])
	}
	if got[3].Content != "A1-revised" {
		t.Errorf("message 3 content = %q, want A1-revised", got[3].Content)
	}
}

func TestBuildMessagesInsertsSyntheticLeadingUser(t *testing.T) {
	history := []interview.HistoryMessage{
		{IsAssistant: true, Content: "Q1"},
	}
	got := BuildMessages("sys", "next", history)
	if len(got) != 4 {
		t.Fatalf("got %d messages, want 4: %+v", len(got), got)
	}
	if got[1].Role != gateway.RoleUser {
		t.Errorf("message 1 role = %v, want user (synthetic)", got[1].Role)
	}
	if got[2].Role != gateway.RoleAssistant || got[2].Content != "Q1" {
		t.Errorf("message 2 = %+v, want assistant Q1", got[2])
	}
	if got[3].Content != "next" {
		t.Errorf("message 3 content = %q, want next", got[3].Content)
	}
}
