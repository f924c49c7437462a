package http

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"case-simulator/internal/auth"
	"case-simulator/internal/cases"
	"case-simulator/internal/core"
	"case-simulator/internal/export"
	"case-simulator/internal/session"
	"case-simulator/pkg"
)

// Server bundles together the dependencies required by the HTTP handlers.
type Server struct {
	Gate       *auth.Gate
	Catalog    *cases.Catalog
	Sessions   session.Store
	Chat       *core.ChatService
	Summarizer *core.Summarizer
	// Uploader may be nil, in which case exports degrade to a log line.
	Uploader export.Uploader

	mu       sync.Mutex
	loggedIn map[string]bool
}

// NewServer constructs a Server.
func NewServer(gate *auth.Gate, catalog *cases.Catalog, sessions session.Store, chat *core.ChatService, summarizer *core.Summarizer, uploader export.Uploader) *Server {
	return &Server{
		Gate:       gate,
		Catalog:    catalog,
		Sessions:   sessions,
		Chat:       chat,
		Summarizer: summarizer,
		Uploader:   uploader,
		loggedIn:   make(map[string]bool),
	}
}

// handleLogin authenticates a user id against the allow-list and creates the
// session. There are no credentials beyond the id itself.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req pkg.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if !s.Gate.Validate(userID) {
		http.Error(w, "Invalid user ID", http.StatusUnauthorized)
		return
	}

	s.mu.Lock()
	s.loggedIn[userID] = true
	s.mu.Unlock()

	if _, err := s.Sessions.GetOrCreate(r.Context(), userID); err != nil {
		log.Printf("Error creating session for user %s: %v", userID, err)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, pkg.LoginResponse{
		Success: true,
		Message: "Login successful",
		UserID:  userID,
	})
}

// handleListCases returns the catalog without the case narratives.
func (s *Server) handleListCases(w http.ResponseWriter, r *http.Request) {
	all := s.Catalog.List()
	infos := make([]pkg.CaseInfo, 0, len(all))
	for _, c := range all {
		infos = append(infos, pkg.CaseInfo{ID: c.ID, Title: c.Title, Description: c.Description})
	}
	writeJSON(w, http.StatusOK, pkg.CaseListResponse{Cases: infos})
}

// handleStartCase begins (or resumes) a case: the model presents the case,
// the presentation is recorded as the first assistant turn, and an initial
// summary is generated.
func (s *Server) handleStartCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID := chi.URLParam(r, "caseID")
	userID := chi.URLParam(r, "userID")
	if !s.requireUser(w, userID) {
		return
	}
	cse, ok := s.Catalog.Get(caseID)
	if !ok {
		http.Error(w, "Case not found", http.StatusNotFound)
		return
	}

	if err := s.Sessions.StartCase(ctx, userID, caseID); err != nil {
		log.Printf("Error starting case %s for user %s: %v", caseID, userID, err)
		http.Error(w, "Failed to start case", http.StatusInternalServerError)
		return
	}

	initial, err := s.Chat.PresentCase(ctx, cse.Content)
	if err != nil {
		log.Printf("Error presenting case %s for user %s: %v", caseID, userID, err)
		http.Error(w, "Error starting case: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := s.Sessions.AddMessage(ctx, userID, caseID, pkg.RoleAssistant, initial); err != nil {
		log.Printf("Error recording case presentation for user %s: %v", userID, err)
		http.Error(w, "Failed to record message", http.StatusInternalServerError)
		return
	}

	history, err := s.Sessions.History(ctx, userID, caseID)
	if err != nil {
		log.Printf("Error loading history for user %s, case %s: %v", userID, caseID, err)
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, pkg.CaseStartResponse{
		Success:        true,
		Message:        "Case started successfully",
		InitialMessage: initial,
		Summary:        s.Summarizer.Summarize(ctx, history),
	})
}

// handleChat processes one chat turn: record the user message, get the
// assistant's reply, record it, and regenerate the running summary. The user
// message is recorded before the completion call, so a failed completion
// leaves a dangling unanswered turn in the transcript.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID := chi.URLParam(r, "caseID")
	userID := chi.URLParam(r, "userID")
	if !s.requireUser(w, userID) {
		return
	}
	cse, ok := s.Catalog.Get(caseID)
	if !ok {
		http.Error(w, "Case not found", http.StatusNotFound)
		return
	}

	var req pkg.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "Message cannot be empty", http.StatusBadRequest)
		return
	}

	history, err := s.Sessions.History(ctx, userID, caseID)
	if err != nil {
		log.Printf("Error loading history for user %s, case %s: %v", userID, caseID, err)
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}
	if err := s.Sessions.AddMessage(ctx, userID, caseID, pkg.RoleUser, req.Message); err != nil {
		log.Printf("Error recording user message for %s: %v", userID, err)
		http.Error(w, "Failed to record message", http.StatusInternalServerError)
		return
	}

	reply, err := s.Chat.ChatTurn(ctx, cse.Content, history, req.Message)
	if err != nil {
		log.Printf("Error generating reply for user %s, case %s: %v", userID, caseID, err)
		http.Error(w, "Error processing chat: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := s.Sessions.AddMessage(ctx, userID, caseID, pkg.RoleAssistant, reply); err != nil {
		log.Printf("Error recording assistant message for %s: %v", userID, err)
		http.Error(w, "Failed to record message", http.StatusInternalServerError)
		return
	}

	updated, err := s.Sessions.History(ctx, userID, caseID)
	if err != nil {
		log.Printf("Error reloading history for user %s, case %s: %v", userID, caseID, err)
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, pkg.ChatResponse{
		Message: reply,
		Summary: s.Summarizer.Summarize(ctx, updated),
	})
}

// handleCompleteCase marks a case complete with an admit/discharge decision
// and exports the transcript. The explicit action call is the only completion
// input: replies are never parsed for "done" or a narrative disposition.
func (s *Server) handleCompleteCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID := chi.URLParam(r, "caseID")
	userID := chi.URLParam(r, "userID")
	if !s.requireUser(w, userID) {
		return
	}
	cse, ok := s.Catalog.Get(caseID)
	if !ok {
		http.Error(w, "Case not found", http.StatusNotFound)
		return
	}

	var req pkg.CaseCompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Action != "admit" && req.Action != "discharge" {
		http.Error(w, "Invalid action. Must be 'admit' or 'discharge'", http.StatusBadRequest)
		return
	}

	if err := s.Sessions.CompleteCase(ctx, userID, caseID, req.Action); err != nil {
		log.Printf("Error completing case %s for user %s: %v", caseID, userID, err)
		http.Error(w, "Failed to complete case", http.StatusInternalServerError)
		return
	}

	s.exportChatLog(r, userID, cse)

	writeJSON(w, http.StatusOK, pkg.CaseCompleteResponse{
		Success: true,
		Message: fmt.Sprintf("Case completed with action: %s", req.Action),
	})
}

// exportChatLog ships the transcript CSV to storage. Failures are logged and
// swallowed: export is never fatal to the user-facing flow.
func (s *Server) exportChatLog(r *http.Request, userID string, cse pkg.Case) {
	ctx := r.Context()
	if s.Uploader == nil {
		log.Printf("Warning: export storage not available, chat log for %s/%s not saved", userID, cse.ID)
		return
	}
	history, err := s.Sessions.History(ctx, userID, cse.ID)
	if err != nil || len(history) == 0 {
		if err != nil {
			log.Printf("Warning: could not load transcript for export (%s/%s): %v", userID, cse.ID, err)
		}
		return
	}
	content, err := export.ChatLogCSV(history)
	if err != nil {
		log.Printf("Warning: could not render chat log CSV for %s/%s: %v", userID, cse.ID, err)
		return
	}
	filename := export.ChatLogFilename(userID, cse.ID, cse.Title, time.Now())
	if _, err := s.Uploader.Upload(ctx, filename, content); err != nil {
		log.Printf("Warning: chat log upload failed for %s/%s: %v", userID, cse.ID, err)
	}
}

// handleFinalSummary returns completed-case transcripts plus the survey
// questions and any prior ratings.
func (s *Server) handleFinalSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	if !s.requireUser(w, userID) {
		return
	}

	completedIDs, err := s.Sessions.CompletedCases(ctx, userID)
	if err != nil {
		log.Printf("Error loading completed cases for user %s: %v", userID, err)
		http.Error(w, "Failed to load completed cases", http.StatusInternalServerError)
		return
	}

	completed := make([]pkg.CaseSummaryData, 0, len(completedIDs))
	for _, caseID := range completedIDs {
		cse, ok := s.Catalog.Get(caseID)
		if !ok {
			continue
		}
		history, err := s.Sessions.History(ctx, userID, caseID)
		if err != nil {
			log.Printf("Error loading history for user %s, case %s: %v", userID, caseID, err)
			http.Error(w, "Failed to load history", http.StatusInternalServerError)
			return
		}
		completed = append(completed, pkg.CaseSummaryData{
			CaseID:       caseID,
			Title:        cse.Title,
			Description:  cse.Description,
			ChatMessages: history,
		})
	}

	responses, err := s.Sessions.SurveyResponses(ctx, userID)
	if err != nil {
		log.Printf("Error loading survey responses for user %s: %v", userID, err)
		http.Error(w, "Failed to load survey responses", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, pkg.FinalSummaryResponse{
		CompletedCases:    completed,
		SurveyQuestions:   cases.SurveyQuestions,
		ExistingResponses: responses,
	})
}

// handleSubmitSurvey validates and records a batch of ratings, then exports
// the full response set. Validation happens before any rating is stored.
func (s *Server) handleSubmitSurvey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	if !s.requireUser(w, userID) {
		return
	}

	var req pkg.SurveySubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	for _, resp := range req.Responses {
		if resp.QuestionIndex < 0 || resp.QuestionIndex >= len(cases.SurveyQuestions) {
			http.Error(w, fmt.Sprintf("Invalid question index: %d", resp.QuestionIndex), http.StatusBadRequest)
			return
		}
		if resp.Rating < 1 || resp.Rating > 5 {
			http.Error(w, fmt.Sprintf("Invalid rating: %d", resp.Rating), http.StatusBadRequest)
			return
		}
	}

	for _, resp := range req.Responses {
		if err := s.Sessions.AddSurveyResponse(ctx, userID, resp.CaseID, resp.QuestionIndex, resp.Rating); err != nil {
			log.Printf("Error recording survey response for user %s: %v", userID, err)
			http.Error(w, "Failed to record survey response", http.StatusInternalServerError)
			return
		}
	}

	s.exportSurvey(r, userID)

	writeJSON(w, http.StatusOK, pkg.SurveySubmitResponse{
		Success: true,
		Message: "Survey responses submitted successfully",
	})
}

func (s *Server) exportSurvey(r *http.Request, userID string) {
	ctx := r.Context()
	if s.Uploader == nil {
		log.Printf("Warning: export storage not available, survey responses for %s not saved", userID)
		return
	}
	responses, err := s.Sessions.SurveyResponses(ctx, userID)
	if err != nil || len(responses) == 0 {
		if err != nil {
			log.Printf("Warning: could not load survey responses for export (%s): %v", userID, err)
		}
		return
	}
	now := time.Now()
	content, err := export.SurveyCSV(userID, responses, now)
	if err != nil {
		log.Printf("Warning: could not render survey CSV for %s: %v", userID, err)
		return
	}
	if _, err := s.Uploader.Upload(ctx, export.SurveyFilename(userID, now), content); err != nil {
		log.Printf("Warning: survey upload failed for %s: %v", userID, err)
	}
}

// handleNextCase returns the first catalog-order case the user has not
// completed.
func (s *Server) handleNextCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	if !s.requireUser(w, userID) {
		return
	}

	caseID, ok, err := s.Sessions.NextCase(ctx, userID)
	if err != nil {
		log.Printf("Error finding next case for user %s: %v", userID, err)
		http.Error(w, "Failed to find next case", http.StatusInternalServerError)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, pkg.NextCaseResponse{HasNext: false, Message: "All cases completed"})
		return
	}
	cse, _ := s.Catalog.Get(caseID)
	writeJSON(w, http.StatusOK, pkg.NextCaseResponse{
		HasNext:     true,
		CaseID:      caseID,
		Title:       cse.Title,
		Description: cse.Description,
	})
}

// requireUser rejects requests from users who never logged in. Login is the
// only place the allow-list is consulted; afterwards the logged-in set is
// authoritative.
func (s *Server) requireUser(w http.ResponseWriter, userID string) bool {
	s.mu.Lock()
	ok := s.loggedIn[userID]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "User not authenticated", http.StatusUnauthorized)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
