// Package session owns all per-user session state: the current case, the
// per-case transcripts, completed cases and survey ratings. The default
// implementation is an in-memory map (sessions are ephemeral by design); a
// Postgres-backed implementation exists behind the same contract.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"case-simulator/internal/cases"
	"case-simulator/pkg"
)

var (
	// ErrSessionNotFound means no session exists for the user id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrUnknownCase means the case id is not in the catalog.
	ErrUnknownCase = errors.New("unknown case")
)

// Store is the session repository contract. All mutation goes through it; no
// other component holds a session reference beyond a single request.
type Store interface {
	// GetOrCreate returns the user's session, creating an empty one if
	// needed.
	GetOrCreate(ctx context.Context, userID string) (*pkg.Session, error)
	// StartCase sets the current case and ensures a transcript slot exists.
	// A pre-existing transcript is kept, so resuming a partially played case
	// retains prior turns.
	StartCase(ctx context.Context, userID, caseID string) error
	// AddMessage appends a timestamped message to the case transcript.
	AddMessage(ctx context.Context, userID, caseID string, role pkg.MessageRole, content string) error
	// History returns the transcript for one user/case pair in insertion
	// order.
	History(ctx context.Context, userID, caseID string) ([]pkg.ChatMessage, error)
	// CompleteCase idempotently marks the case completed and clears the
	// current case if it matches. The action value is recorded, not
	// validated; validation is the handler's job.
	CompleteCase(ctx context.Context, userID, caseID, action string) error
	// AddSurveyResponse records a rating; a later submission for the same
	// (case, question) pair overwrites the earlier one.
	AddSurveyResponse(ctx context.Context, userID, caseID string, questionIndex, rating int) error
	// SurveyResponses returns all ratings keyed by case id then question
	// index.
	SurveyResponses(ctx context.Context, userID string) (map[string]map[int]int, error)
	// CompletedCases returns completed case ids in completion order.
	CompletedCases(ctx context.Context, userID string) ([]string, error)
	// NextCase returns the first catalog-order case the user has not
	// completed. ok is false once all cases are done.
	NextCase(ctx context.Context, userID string) (caseID string, ok bool, err error)
	// Clear removes the session entirely.
	Clear(ctx context.Context, userID string) error
}

// MemoryStore keeps sessions in a process-wide map. The mutex guards the map
// and the session structs themselves; two simultaneous turns for the same
// user may still interleave their appends, which is accepted.
type MemoryStore struct {
	catalog *cases.Catalog

	mu       sync.RWMutex
	sessions map[string]*pkg.Session
}

// NewMemoryStore constructs an empty in-memory store over the given catalog.
func NewMemoryStore(catalog *cases.Catalog) *MemoryStore {
	return &MemoryStore{
		catalog:  catalog,
		sessions: make(map[string]*pkg.Session),
	}
}

func (s *MemoryStore) GetOrCreate(_ context.Context, userID string) (*pkg.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &pkg.Session{
			ID:              uuid.NewString(),
			UserID:          userID,
			ChatHistory:     make(map[string][]pkg.ChatMessage),
			SurveyResponses: make(map[string]map[int]int),
			StartedAt:       time.Now(),
		}
		s.sessions[userID] = sess
	}
	return copySession(sess), nil
}

func (s *MemoryStore) StartCase(_ context.Context, userID, caseID string) error {
	if _, ok := s.catalog.Get(caseID); !ok {
		return ErrUnknownCase
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.getOrCreateLocked(userID)
	sess.CurrentCase = caseID
	if _, ok := sess.ChatHistory[caseID]; !ok {
		sess.ChatHistory[caseID] = nil
	}
	return nil
}

func (s *MemoryStore) AddMessage(_ context.Context, userID, caseID string, role pkg.MessageRole, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return ErrSessionNotFound
	}
	sess.ChatHistory[caseID] = append(sess.ChatHistory[caseID], pkg.ChatMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	return nil
}

func (s *MemoryStore) History(_ context.Context, userID, caseID string) ([]pkg.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, nil
	}
	history := sess.ChatHistory[caseID]
	out := make([]pkg.ChatMessage, len(history))
	copy(out, history)
	return out, nil
}

func (s *MemoryStore) CompleteCase(_ context.Context, userID, caseID, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return ErrSessionNotFound
	}
	if !contains(sess.CompletedCases, caseID) {
		sess.CompletedCases = append(sess.CompletedCases, caseID)
	}
	if sess.CurrentCase == caseID {
		sess.CurrentCase = ""
	}
	return nil
}

func (s *MemoryStore) AddSurveyResponse(_ context.Context, userID, caseID string, questionIndex, rating int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return ErrSessionNotFound
	}
	if sess.SurveyResponses[caseID] == nil {
		sess.SurveyResponses[caseID] = make(map[int]int)
	}
	sess.SurveyResponses[caseID][questionIndex] = rating
	return nil
}

func (s *MemoryStore) SurveyResponses(_ context.Context, userID string) (map[string]map[int]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return map[string]map[int]int{}, nil
	}
	out := make(map[string]map[int]int, len(sess.SurveyResponses))
	for caseID, ratings := range sess.SurveyResponses {
		m := make(map[int]int, len(ratings))
		for q, r := range ratings {
			m[q] = r
		}
		out[caseID] = m
	}
	return out, nil
}

func (s *MemoryStore) CompletedCases(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, nil
	}
	out := make([]string, len(sess.CompletedCases))
	copy(out, sess.CompletedCases)
	return out, nil
}

func (s *MemoryStore) NextCase(ctx context.Context, userID string) (string, bool, error) {
	completed, err := s.CompletedCases(ctx, userID)
	if err != nil {
		return "", false, err
	}
	for _, caseID := range s.catalog.IDs() {
		if !contains(completed, caseID) {
			return caseID, true, nil
		}
	}
	return "", false, nil
}

func (s *MemoryStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[userID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, userID)
	return nil
}

func (s *MemoryStore) getOrCreateLocked(userID string) *pkg.Session {
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &pkg.Session{
			ID:              uuid.NewString(),
			UserID:          userID,
			ChatHistory:     make(map[string][]pkg.ChatMessage),
			SurveyResponses: make(map[string]map[int]int),
			StartedAt:       time.Now(),
		}
		s.sessions[userID] = sess
	}
	return sess
}

// copySession returns a deep copy so callers cannot mutate stored state
// behind the store's back.
func copySession(sess *pkg.Session) *pkg.Session {
	out := &pkg.Session{
		ID:              sess.ID,
		UserID:          sess.UserID,
		CurrentCase:     sess.CurrentCase,
		CompletedCases:  append([]string(nil), sess.CompletedCases...),
		ChatHistory:     make(map[string][]pkg.ChatMessage, len(sess.ChatHistory)),
		SurveyResponses: make(map[string]map[int]int, len(sess.SurveyResponses)),
		StartedAt:       sess.StartedAt,
	}
	for caseID, history := range sess.ChatHistory {
		out.ChatHistory[caseID] = append([]pkg.ChatMessage(nil), history...)
	}
	for caseID, ratings := range sess.SurveyResponses {
		m := make(map[int]int, len(ratings))
		for q, r := range ratings {
			m[q] = r
		}
		out.SurveyResponses[caseID] = m
	}
	return out
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
