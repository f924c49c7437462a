package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"case-simulator/internal/auth"
	"case-simulator/internal/cases"
	"case-simulator/internal/core"
	"case-simulator/internal/llm"
	"case-simulator/internal/session"
	"case-simulator/pkg"
)

// fakeLLM answers chat calls and summary calls with distinct canned text so
// tests can tell them apart.
type fakeLLM struct {
	chatCalls    int
	summaryCalls int
	err          error
}

func (f *fakeLLM) Complete(_ context.Context, messages []llm.Message, _ float32) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if len(messages) > 0 && messages[0].Content == core.SummarySystemPrompt {
		f.summaryCalls++
		return fmt.Sprintf("summary %d", f.summaryCalls), nil
	}
	f.chatCalls++
	return fmt.Sprintf("reply %d", f.chatCalls), nil
}

type fakeUploader struct {
	filenames []string
	contents  []string
	err       error
}

func (f *fakeUploader) Upload(_ context.Context, filename, content string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.filenames = append(f.filenames, filename)
	f.contents = append(f.contents, content)
	return "https://drive.google.com/file/d/fake/view", nil
}

func newTestServer(t *testing.T) (http.Handler, *fakeLLM, *fakeUploader) {
	t.Helper()
	catalog := cases.NewCatalog()
	client := &fakeLLM{}
	uploader := &fakeUploader{}
	srv := NewServer(
		auth.NewGate([]string{"test_user"}),
		catalog,
		session.NewMemoryStore(catalog),
		core.NewChatService(client),
		core.NewSummarizer(client),
		uploader,
	)
	return NewRouter(srv), client, uploader
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		r = bytes.NewReader(data)
	} else {
		r = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return v
}

func login(t *testing.T, h http.Handler, userID string) {
	t.Helper()
	w := do(t, h, http.MethodPost, "/api/auth/login", pkg.LoginRequest{UserID: userID})
	if w.Code != http.StatusOK {
		t.Fatalf("Login failed with status %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	h, _, _ := newTestServer(t)
	w := do(t, h, http.MethodPost, "/api/auth/login", pkg.LoginRequest{UserID: "stranger"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}
}

func TestLoginTrimsWhitespace(t *testing.T) {
	h, _, _ := newTestServer(t)
	w := do(t, h, http.MethodPost, "/api/auth/login", pkg.LoginRequest{UserID: "  test_user  "})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	resp := decode[pkg.LoginResponse](t, w)
	if !resp.Success || resp.UserID != "test_user" {
		t.Errorf("Unexpected login response: %+v", resp)
	}
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	h, _, _ := newTestServer(t)
	paths := []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, "/api/cases/case_1/start/stranger", nil},
		{http.MethodPost, "/api/cases/case_1/chat/stranger", pkg.ChatRequest{Message: "hi"}},
		{http.MethodPost, "/api/cases/case_1/complete/stranger", pkg.CaseCompleteRequest{Action: "admit"}},
		{http.MethodGet, "/api/summary/stranger", nil},
		{http.MethodPost, "/api/survey/submit/stranger", pkg.SurveySubmitRequest{}},
		{http.MethodGet, "/api/next-case/stranger", nil},
	}
	for _, p := range paths {
		w := do(t, h, p.method, p.path, p.body)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", p.method, p.path, w.Code)
		}
	}
}

func TestListCases(t *testing.T) {
	h, _, _ := newTestServer(t)
	w := do(t, h, http.MethodGet, "/api/cases", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	resp := decode[pkg.CaseListResponse](t, w)
	if len(resp.Cases) != 3 {
		t.Fatalf("Expected 3 cases, got %d", len(resp.Cases))
	}
	if resp.Cases[0].ID != "case_1" || resp.Cases[2].ID != "case_3" {
		t.Errorf("Cases out of catalog order: %+v", resp.Cases)
	}
	for _, c := range resp.Cases {
		if c.Title == "" || c.Description == "" {
			t.Errorf("Case %s missing title or description", c.ID)
		}
	}
}

func TestStartUnknownCase(t *testing.T) {
	h, _, _ := newTestServer(t)
	login(t, h, "test_user")
	w := do(t, h, http.MethodPost, "/api/cases/case_99/start/test_user", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

// TestFullScenario walks the whole flow: login, start a case, chat, complete
// with admit, check next case, submit survey.
func TestFullScenario(t *testing.T) {
	h, client, uploader := newTestServer(t)
	login(t, h, "test_user")

	// Start case_1.
	w := do(t, h, http.MethodPost, "/api/cases/case_1/start/test_user", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Start failed with status %d: %s", w.Code, w.Body.String())
	}
	start := decode[pkg.CaseStartResponse](t, w)
	if !start.Success || start.InitialMessage == "" || start.Summary == "" {
		t.Fatalf("Unexpected start response: %+v", start)
	}

	// One chat turn.
	w = do(t, h, http.MethodPost, "/api/cases/case_1/chat/test_user", pkg.ChatRequest{Message: "What are the vitals?"})
	if w.Code != http.StatusOK {
		t.Fatalf("Chat failed with status %d: %s", w.Code, w.Body.String())
	}
	chat := decode[pkg.ChatResponse](t, w)
	if chat.Message == "" || chat.Summary == "" {
		t.Fatalf("Unexpected chat response: %+v", chat)
	}
	if chat.Summary == start.Summary {
		t.Error("Expected the summary to be regenerated after the chat turn")
	}
	if client.chatCalls != 2 {
		t.Errorf("Expected 2 chat completions (presentation + turn), got %d", client.chatCalls)
	}

	// Complete with admit; transcript is exported.
	w = do(t, h, http.MethodPost, "/api/cases/case_1/complete/test_user", pkg.CaseCompleteRequest{Action: "admit"})
	if w.Code != http.StatusOK {
		t.Fatalf("Complete failed with status %d: %s", w.Code, w.Body.String())
	}
	complete := decode[pkg.CaseCompleteResponse](t, w)
	if !complete.Success || !strings.Contains(complete.Message, "admit") {
		t.Errorf("Unexpected complete response: %+v", complete)
	}
	if len(uploader.filenames) != 1 {
		t.Fatalf("Expected 1 exported file, got %d", len(uploader.filenames))
	}
	pattern := regexp.MustCompile(`^test_user_case_1_Case_1_chat_log_\d{8}_\d{6}\.csv$`)
	if !pattern.MatchString(uploader.filenames[0]) {
		t.Errorf("Export filename %q does not match convention", uploader.filenames[0])
	}
	if !strings.Contains(uploader.contents[0], "What are the vitals?") {
		t.Error("Exported CSV should contain the transcript")
	}

	// Completing again is idempotent (it does re-export the transcript).
	w = do(t, h, http.MethodPost, "/api/cases/case_1/complete/test_user", pkg.CaseCompleteRequest{Action: "admit"})
	if w.Code != http.StatusOK {
		t.Fatalf("Second complete failed with status %d", w.Code)
	}

	// Next case is case_2.
	w = do(t, h, http.MethodGet, "/api/next-case/test_user", nil)
	next := decode[pkg.NextCaseResponse](t, w)
	if !next.HasNext || next.CaseID != "case_2" {
		t.Errorf("Expected next case case_2, got %+v", next)
	}

	// Final summary lists case_1 exactly once.
	w = do(t, h, http.MethodGet, "/api/summary/test_user", nil)
	summary := decode[pkg.FinalSummaryResponse](t, w)
	if len(summary.CompletedCases) != 1 || summary.CompletedCases[0].CaseID != "case_1" {
		t.Errorf("Expected exactly [case_1] completed, got %+v", summary.CompletedCases)
	}
	if len(summary.CompletedCases[0].ChatMessages) != 3 {
		t.Errorf("Expected 3 transcript messages, got %d", len(summary.CompletedCases[0].ChatMessages))
	}
	if len(summary.SurveyQuestions) != 4 {
		t.Errorf("Expected 4 survey questions, got %d", len(summary.SurveyQuestions))
	}

	// Submit a survey; the response set is exported.
	w = do(t, h, http.MethodPost, "/api/survey/submit/test_user", pkg.SurveySubmitRequest{
		Responses: []pkg.SurveyResponse{{CaseID: "case_1", QuestionIndex: 0, Rating: 4}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Survey submit failed with status %d: %s", w.Code, w.Body.String())
	}
	surveyFile := uploader.filenames[len(uploader.filenames)-1]
	if !regexp.MustCompile(`^test_user_survey_responses_\d{8}_\d{6}\.csv$`).MatchString(surveyFile) {
		t.Errorf("Survey filename %q does not match convention", surveyFile)
	}
}

func TestInvalidActionDoesNotComplete(t *testing.T) {
	h, _, _ := newTestServer(t)
	login(t, h, "test_user")

	w := do(t, h, http.MethodPost, "/api/cases/case_1/start/test_user", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Start failed with status %d", w.Code)
	}

	w = do(t, h, http.MethodPost, "/api/cases/case_1/complete/test_user", pkg.CaseCompleteRequest{Action: "maybe"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid action, got %d", w.Code)
	}

	// case_1 must still be the next case.
	w = do(t, h, http.MethodGet, "/api/next-case/test_user", nil)
	next := decode[pkg.NextCaseResponse](t, w)
	if !next.HasNext || next.CaseID != "case_1" {
		t.Errorf("Invalid action must not mutate completed cases, got %+v", next)
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	h, _, _ := newTestServer(t)
	login(t, h, "test_user")
	w := do(t, h, http.MethodPost, "/api/cases/case_1/chat/test_user", pkg.ChatRequest{Message: "   "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for empty message, got %d", w.Code)
	}
}

func TestSurveyValidation(t *testing.T) {
	h, _, _ := newTestServer(t)
	login(t, h, "test_user")

	bad := []pkg.SurveyResponse{
		{CaseID: "case_1", QuestionIndex: 4, Rating: 3},
		{CaseID: "case_1", QuestionIndex: 0, Rating: 9},
		{CaseID: "case_1", QuestionIndex: -1, Rating: 1},
		{CaseID: "case_1", QuestionIndex: 0, Rating: 0},
	}
	for _, resp := range bad {
		w := do(t, h, http.MethodPost, "/api/survey/submit/test_user", pkg.SurveySubmitRequest{Responses: []pkg.SurveyResponse{resp}})
		if w.Code != http.StatusBadRequest {
			t.Errorf("Response %+v: expected 400, got %d", resp, w.Code)
		}
	}
}

func TestSurveyOverwrite(t *testing.T) {
	h, _, _ := newTestServer(t)
	login(t, h, "test_user")

	for _, rating := range []int{3, 5} {
		w := do(t, h, http.MethodPost, "/api/survey/submit/test_user", pkg.SurveySubmitRequest{
			Responses: []pkg.SurveyResponse{{CaseID: "case_1", QuestionIndex: 1, Rating: rating}},
		})
		if w.Code != http.StatusOK {
			t.Fatalf("Survey submit failed with status %d", w.Code)
		}
	}

	w := do(t, h, http.MethodGet, "/api/summary/test_user", nil)
	summary := decode[pkg.FinalSummaryResponse](t, w)
	if got := summary.ExistingResponses["case_1"][1]; got != 5 {
		t.Errorf("Expected latest rating 5, got %d", got)
	}
}

func TestCompletionFailureKeepsUserTurn(t *testing.T) {
	h, client, _ := newTestServer(t)
	login(t, h, "test_user")

	w := do(t, h, http.MethodPost, "/api/cases/case_1/start/test_user", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Start failed with status %d", w.Code)
	}

	client.err = fmt.Errorf("upstream unavailable")
	w = do(t, h, http.MethodPost, "/api/cases/case_1/chat/test_user", pkg.ChatRequest{Message: "dangling"})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500 on completion failure, got %d", w.Code)
	}

	// The user message was recorded before the failed call; completing the
	// case exports a transcript that still contains it.
	client.err = nil
	w = do(t, h, http.MethodGet, "/api/summary/test_user", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Summary failed with status %d", w.Code)
	}
	do(t, h, http.MethodPost, "/api/cases/case_1/complete/test_user", pkg.CaseCompleteRequest{Action: "discharge"})
	w = do(t, h, http.MethodGet, "/api/summary/test_user", nil)
	summary := decode[pkg.FinalSummaryResponse](t, w)
	if len(summary.CompletedCases) != 1 {
		t.Fatalf("Expected 1 completed case, got %d", len(summary.CompletedCases))
	}
	messages := summary.CompletedCases[0].ChatMessages
	last := messages[len(messages)-1]
	if last.Role != pkg.RoleUser || last.Content != "dangling" {
		t.Errorf("Expected dangling user turn at the end, got %+v", last)
	}
}

func TestExportFailureIsNonFatal(t *testing.T) {
	h, _, uploader := newTestServer(t)
	login(t, h, "test_user")

	do(t, h, http.MethodPost, "/api/cases/case_1/start/test_user", nil)
	uploader.err = fmt.Errorf("storage down")

	w := do(t, h, http.MethodPost, "/api/cases/case_1/complete/test_user", pkg.CaseCompleteRequest{Action: "admit"})
	if w.Code != http.StatusOK {
		t.Errorf("Export failure must not fail the request, got %d", w.Code)
	}
	complete := decode[pkg.CaseCompleteResponse](t, w)
	if !complete.Success {
		t.Errorf("Expected success despite export failure: %+v", complete)
	}
}

func TestHealth(t *testing.T) {
	h, _, _ := newTestServer(t)
	w := do(t, h, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}
