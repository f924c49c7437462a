package core

import (
	"context"
	"fmt"
	"strings"

	"case-simulator/internal/llm"
	"case-simulator/pkg"
)

// summaryTemperature is lower than the chat temperature so repeated
// summarizations of the same transcript stay close to deterministic.
const summaryTemperature = 0.3

// Summarizer condenses a case transcript into a Markdown status block. Unlike
// the chat path, summarization never hard-fails: an error becomes an inline
// placeholder so a flaky summary cannot break a chat turn.
type Summarizer struct {
	LLM llm.Client
}

// NewSummarizer constructs a Summarizer with the given LLM client.
func NewSummarizer(client llm.Client) *Summarizer {
	return &Summarizer{LLM: client}
}

// Summarize produces the running summary for a transcript. An empty
// transcript yields a fixed placeholder without any external call.
func (s *Summarizer) Summarize(ctx context.Context, history []pkg.ChatMessage) string {
	if len(history) == 0 {
		return EmptySummaryPlaceholder
	}

	formatted := make([]string, 0, len(history))
	for _, m := range history {
		var label string
		switch m.Role {
		case pkg.RoleUser:
			label = "Student/Resident (User)"
		case pkg.RoleAssistant:
			label = "Attending (AI)"
		default:
			continue
		}
		formatted = append(formatted, label+": "+m.Content)
	}

	messages := []llm.Message{
		{Role: "system", Content: SummarySystemPrompt},
		{Role: "user", Content: "Please summarize the following case interaction transcript:\n\n" + strings.Join(formatted, "\n")},
	}

	resp, err := s.LLM.Complete(ctx, messages, summaryTemperature)
	if err != nil {
		return fmt.Sprintf("Could not generate summary at this time. Error: %s...", truncate(err.Error(), 100))
	}
	return resp
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
