package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"case-simulator/internal/llm"
	"case-simulator/pkg"
)

// fakeClient records every Complete call and replays scripted responses.
type fakeClient struct {
	calls    []fakeCall
	response string
	err      error
}

type fakeCall struct {
	messages    []llm.Message
	temperature float32
}

func (f *fakeClient) Complete(_ context.Context, messages []llm.Message, temperature float32) (string, error) {
	f.calls = append(f.calls, fakeCall{messages: messages, temperature: temperature})
	return f.response, f.err
}

func TestPresentCase(t *testing.T) {
	client := &fakeClient{response: "Nurse: there is a patient here"}
	svc := NewChatService(client)

	got, err := svc.PresentCase(context.Background(), "case narrative")
	if err != nil {
		t.Fatalf("PresentCase failed: %v", err)
	}
	if got != client.response {
		t.Errorf("Expected %q, got %q", client.response, got)
	}

	if len(client.calls) != 1 {
		t.Fatalf("Expected 1 completion call, got %d", len(client.calls))
	}
	call := client.calls[0]
	if call.temperature != 0.7 {
		t.Errorf("Expected temperature 0.7, got %v", call.temperature)
	}
	if len(call.messages) != 2 {
		t.Fatalf("Expected system + user messages, got %d", len(call.messages))
	}
	if call.messages[0].Role != "system" || !strings.HasSuffix(call.messages[0].Content, "case narrative") {
		t.Errorf("System message should end with the case narrative, got %q", call.messages[0].Content)
	}
	if !strings.HasPrefix(call.messages[0].Content, SystemPrompt) {
		t.Error("System message should start with the role-play prompt")
	}
	if call.messages[1].Role != "user" || call.messages[1].Content != PresentCasePrompt {
		t.Errorf("Unexpected user message: %+v", call.messages[1])
	}
}

func TestPresentCaseError(t *testing.T) {
	client := &fakeClient{err: errors.New("rate limited")}
	svc := NewChatService(client)

	_, err := svc.PresentCase(context.Background(), "case narrative")
	if err == nil {
		t.Fatal("Expected an error")
	}
	if !strings.Contains(err.Error(), "completion failed") {
		t.Errorf("Expected wrapped completion error, got %v", err)
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("Expected original cause in error, got %v", err)
	}
}

func TestChatTurnMessageAssembly(t *testing.T) {
	client := &fakeClient{response: "Attending: proceed"}
	svc := NewChatService(client)

	history := []pkg.ChatMessage{
		{Role: pkg.RoleAssistant, Content: "opening"},
		{Role: pkg.RoleUser, Content: "question"},
		{Role: pkg.MessageRole("system"), Content: "should be filtered"},
		{Role: pkg.RoleAssistant, Content: "answer"},
	}

	got, err := svc.ChatTurn(context.Background(), "case narrative", history, "What are the vitals?")
	if err != nil {
		t.Fatalf("ChatTurn failed: %v", err)
	}
	if got != client.response {
		t.Errorf("Expected %q, got %q", client.response, got)
	}

	call := client.calls[0]
	want := []llm.Message{
		{Role: "system", Content: SystemPrompt + "\n\ncase narrative"},
		{Role: "assistant", Content: "opening"},
		{Role: "user", Content: "question"},
		{Role: "assistant", Content: "answer"},
		{Role: "user", Content: "What are the vitals?"},
	}
	if len(call.messages) != len(want) {
		t.Fatalf("Expected %d messages, got %d", len(want), len(call.messages))
	}
	for i, w := range want {
		if call.messages[i] != w {
			t.Errorf("Message %d: expected %+v, got %+v", i, w, call.messages[i])
		}
	}
}
