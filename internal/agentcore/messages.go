// Package agentcore holds the message-assembly logic shared by the three LM
// roles (Observer, Interviewer, Evaluator): turning a system prompt, a
// bounded history window, and the current turn's content into a strictly
// alternating system/user/assistant/user/... message list.
package agentcore

import (
	"github.com/praetorian-inc/interviewcoach/internal/gateway"
	"github.com/praetorian-inc/interviewcoach/pkg/interview"
)

// BuildMessages assembles the message list for one LM call: a system
// message, then the history window (dropping a trailing user message since
// userContent replaces it, and inserting a synthetic opening user turn if
// the window starts with an assistant message so system->user->assistant
// alternation is never violated), then userContent as the final user
// message.
func BuildMessages(systemPrompt string, userContent string, history []interview.HistoryMessage) []gateway.Message {
	messages := make([]gateway.Message, 0, len(history)+2)
	messages = append(messages, gateway.Message{Role: gateway.RoleSystem, Content: systemPrompt})

	filtered := history
	if len(filtered) > 0 && !filtered[len(filtered)-1].IsAssistant {
		filtered = filtered[:len(filtered)-1]
	}

	if len(filtered) > 0 && filtered[0].IsAssistant {
		messages = append(messages, gateway.Message{Role: gateway.RoleUser, Content: "Let's start the interview."})
	}

	for _, h := range filtered {
		role := gateway.RoleUser
		if h.IsAssistant {
			role = gateway.RoleAssistant
		}
		messages = append(messages, gateway.Message{Role: role, Content: h.Content})
	}

	messages = append(messages, gateway.Message{Role: gateway.RoleUser, Content: userContent})
	return messages
}
