package pkg

import "time"

// Case is a static scripted patient scenario. Content is the full case
// narrative (vitals, labs, imaging) handed verbatim to the LLM as context and
// is never exposed through the API.
type Case struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"-"`
}

// MessageRole describes who authored a chat message. Only the user (the
// trainee) and the assistant (the simulated attending/patient) appear in a
// transcript.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ChatMessage is a single turn in a case transcript. Messages are immutable
// once created and ordered by insertion.
type ChatMessage struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// Session tracks one user's progress across cases. Sessions are ephemeral:
// the default store keeps them in memory and they do not survive a restart.
type Session struct {
	ID              string                   `json:"id"`
	UserID          string                   `json:"user_id"`
	CurrentCase     string                   `json:"current_case,omitempty"`
	CompletedCases  []string                 `json:"completed_cases"`
	ChatHistory     map[string][]ChatMessage `json:"chat_history"`
	SurveyResponses map[string]map[int]int   `json:"survey_responses"`
	StartedAt       time.Time                `json:"started_at"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	UserID string `json:"user_id"`
}

// LoginResponse acknowledges a successful login.
type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// CaseInfo is the public view of a case, without the narrative content.
type CaseInfo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CaseListResponse lists the available cases in catalog order.
type CaseListResponse struct {
	Cases []CaseInfo `json:"cases"`
}

// CaseStartResponse carries the AI's opening presentation of a case plus the
// initial running summary.
type CaseStartResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	InitialMessage string `json:"initial_message"`
	Summary        string `json:"summary"`
}

// ChatRequest is the body of a chat turn.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse contains the assistant's reply and the regenerated summary.
type ChatResponse struct {
	Message string `json:"message"`
	Summary string `json:"summary"`
}

// CaseCompleteRequest carries the disposition decision for a case. Action
// must be "admit" or "discharge".
type CaseCompleteRequest struct {
	Action string `json:"action"`
}

// CaseCompleteResponse acknowledges case completion.
type CaseCompleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SurveyResponse is a single Likert rating for one question about one case.
type SurveyResponse struct {
	CaseID        string `json:"case_id"`
	QuestionIndex int    `json:"question_index"`
	Rating        int    `json:"rating"`
}

// SurveySubmitRequest is the body of POST /api/survey/submit/{userID}.
type SurveySubmitRequest struct {
	Responses []SurveyResponse `json:"responses"`
}

// SurveySubmitResponse acknowledges survey submission.
type SurveySubmitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CaseSummaryData bundles one completed case with its full transcript for the
// final summary page.
type CaseSummaryData struct {
	CaseID       string        `json:"case_id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	ChatMessages []ChatMessage `json:"chat_messages"`
}

// FinalSummaryResponse is the payload of GET /api/summary/{userID}.
type FinalSummaryResponse struct {
	CompletedCases    []CaseSummaryData      `json:"completed_cases"`
	SurveyQuestions   []string               `json:"survey_questions"`
	ExistingResponses map[string]map[int]int `json:"existing_responses"`
}

// NextCaseResponse reports the first case the user has not completed yet.
type NextCaseResponse struct {
	HasNext     bool   `json:"has_next"`
	CaseID      string `json:"case_id,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Message     string `json:"message,omitempty"`
}
