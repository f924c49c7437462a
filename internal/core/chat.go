package core

import (
	"context"
	"fmt"

	"case-simulator/internal/llm"
	"case-simulator/pkg"
)

// chatTemperature is the sampling temperature for case role-play turns.
const chatTemperature = 0.7

// ChatService orchestrates the role-played case conversation. It assembles
// the message sequence for each completion call: one system message (global
// role-play instructions plus the case narrative), the prior transcript, and
// the new user message.
type ChatService struct {
	LLM llm.Client
}

// NewChatService constructs a ChatService with the given LLM client.
func NewChatService(client llm.Client) *ChatService {
	return &ChatService{LLM: client}
}

// PresentCase asks the model for the opening presentation of a case. Failures
// are hard: the caller surfaces them to the user.
func (s *ChatService) PresentCase(ctx context.Context, caseContent string) (string, error) {
	messages := []llm.Message{
		{Role: "system", Content: SystemPrompt + "\n\n" + caseContent},
		{Role: "user", Content: PresentCasePrompt},
	}
	resp, err := s.LLM.Complete(ctx, messages, chatTemperature)
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	return resp, nil
}

// ChatTurn generates the assistant's reply to one user message. History is
// the transcript prior to the new message; system or otherwise foreign roles
// are filtered out before submission.
func (s *ChatService) ChatTurn(ctx context.Context, caseContent string, history []pkg.ChatMessage, userMessage string) (string, error) {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: SystemPrompt + "\n\n" + caseContent})
	for _, m := range history {
		if m.Role != pkg.RoleUser && m.Role != pkg.RoleAssistant {
			continue
		}
		messages = append(messages, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	messages = append(messages, llm.Message{Role: "user", Content: userMessage})

	resp, err := s.LLM.Complete(ctx, messages, chatTemperature)
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	return resp, nil
}
