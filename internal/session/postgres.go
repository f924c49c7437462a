package session

import (
	"context"
	"database/sql"
	"errors"

	_ "embed"

	"github.com/google/uuid"

	"case-simulator/internal/cases"
	"case-simulator/pkg"
)

//go:embed schema.sql
var schemaSQL string

// PostgresStore implements Store over Postgres, for deployments that want
// sessions to survive a restart. Same contract as MemoryStore.
type PostgresStore struct {
	db      *sql.DB
	catalog *cases.Catalog
}

// NewPostgresStore applies the schema and returns a store backed by the
// given connection. The caller owns the connection lifecycle.
func NewPostgresStore(ctx context.Context, db *sql.DB, catalog *cases.Catalog) (*PostgresStore, error) {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db, catalog: catalog}, nil
}

func (s *PostgresStore) GetOrCreate(ctx context.Context, userID string) (*pkg.Session, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id) VALUES ($1, $2)
         ON CONFLICT (user_id) DO NOTHING`,
		uuid.NewString(), userID,
	)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, userID)
}

func (s *PostgresStore) load(ctx context.Context, userID string) (*pkg.Session, error) {
	sess := &pkg.Session{
		UserID:          userID,
		ChatHistory:     make(map[string][]pkg.ChatMessage),
		SurveyResponses: make(map[string]map[int]int),
	}
	var currentCase sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, current_case, started_at FROM sessions WHERE user_id = $1`,
		userID,
	).Scan(&sess.ID, &currentCase, &sess.StartedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	sess.CurrentCase = currentCase.String

	completed, err := s.CompletedCases(ctx, userID)
	if err != nil {
		return nil, err
	}
	sess.CompletedCases = completed

	rows, err := s.db.QueryContext(ctx,
		`SELECT case_id, role, content, created_at FROM messages
         WHERE user_id = $1 ORDER BY id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var caseID string
		var m pkg.ChatMessage
		if err := rows.Scan(&caseID, &m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, err
		}
		sess.ChatHistory[caseID] = append(sess.ChatHistory[caseID], m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	responses, err := s.SurveyResponses(ctx, userID)
	if err != nil {
		return nil, err
	}
	sess.SurveyResponses = responses
	return sess, nil
}

func (s *PostgresStore) StartCase(ctx context.Context, userID, caseID string) error {
	if _, ok := s.catalog.Get(caseID); !ok {
		return ErrUnknownCase
	}
	if _, err := s.GetOrCreate(ctx, userID); err != nil {
		return err
	}
	// Existing messages for the case are kept: resuming retains prior turns.
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET current_case = $1 WHERE user_id = $2`, caseID, userID)
	return err
}

func (s *PostgresStore) AddMessage(ctx context.Context, userID, caseID string, role pkg.MessageRole, content string) error {
	if err := s.requireSession(ctx, userID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (user_id, case_id, role, content) VALUES ($1, $2, $3, $4)`,
		userID, caseID, role, content)
	return err
}

func (s *PostgresStore) History(ctx context.Context, userID, caseID string) ([]pkg.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, created_at FROM messages
         WHERE user_id = $1 AND case_id = $2 ORDER BY id ASC`,
		userID, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var history []pkg.ChatMessage
	for rows.Next() {
		var m pkg.ChatMessage
		if err := rows.Scan(&m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, err
		}
		history = append(history, m)
	}
	return history, rows.Err()
}

func (s *PostgresStore) CompleteCase(ctx context.Context, userID, caseID, action string) error {
	if err := s.requireSession(ctx, userID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO completed_cases (user_id, case_id, action) VALUES ($1, $2, $3)
         ON CONFLICT (user_id, case_id) DO NOTHING`,
		userID, caseID, action); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET current_case = NULL
         WHERE user_id = $1 AND current_case = $2`,
		userID, caseID)
	return err
}

func (s *PostgresStore) AddSurveyResponse(ctx context.Context, userID, caseID string, questionIndex, rating int) error {
	if err := s.requireSession(ctx, userID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO survey_responses (user_id, case_id, question_index, rating)
         VALUES ($1, $2, $3, $4)
         ON CONFLICT (user_id, case_id, question_index)
         DO UPDATE SET rating = EXCLUDED.rating, updated_at = NOW()`,
		userID, caseID, questionIndex, rating)
	return err
}

func (s *PostgresStore) SurveyResponses(ctx context.Context, userID string) (map[string]map[int]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT case_id, question_index, rating FROM survey_responses WHERE user_id = $1`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]map[int]int)
	for rows.Next() {
		var caseID string
		var q, r int
		if err := rows.Scan(&caseID, &q, &r); err != nil {
			return nil, err
		}
		if out[caseID] == nil {
			out[caseID] = make(map[int]int)
		}
		out[caseID][q] = r
	}
	return out, rows.Err()
}

func (s *PostgresStore) CompletedCases(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT case_id FROM completed_cases WHERE user_id = $1 ORDER BY completed_at ASC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var caseID string
		if err := rows.Scan(&caseID); err != nil {
			return nil, err
		}
		out = append(out, caseID)
	}
	return out, rows.Err()
}

func (s *PostgresStore) NextCase(ctx context.Context, userID string) (string, bool, error) {
	completed, err := s.CompletedCases(ctx, userID)
	if err != nil {
		return "", false, err
	}
	done := make(map[string]struct{}, len(completed))
	for _, id := range completed {
		done[id] = struct{}{}
	}
	for _, caseID := range s.catalog.IDs() {
		if _, ok := done[caseID]; !ok {
			return caseID, true, nil
		}
	}
	return "", false, nil
}

func (s *PostgresStore) Clear(ctx context.Context, userID string) error {
	if err := s.requireSession(ctx, userID); err != nil {
		return err
	}
	for _, stmt := range []string{
		`DELETE FROM messages WHERE user_id = $1`,
		`DELETE FROM completed_cases WHERE user_id = $1`,
		`DELETE FROM survey_responses WHERE user_id = $1`,
		`DELETE FROM sessions WHERE user_id = $1`,
	} {
		if _, err := s.db.ExecContext(ctx, stmt, userID); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) requireSession(ctx context.Context, userID string) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM sessions WHERE user_id = $1)`, userID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrSessionNotFound
	}
	return nil
}
