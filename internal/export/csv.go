// Package export serializes transcripts and survey ratings to CSV and ships
// them to Google Drive. Export is best-effort: callers on the request path
// downgrade failures to a log line.
package export

import (
	"encoding/csv"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"case-simulator/pkg"
)

// ErrNoRows means there was nothing to export.
var ErrNoRows = errors.New("no rows to export")

// ChatLogCSV renders a transcript as CSV with role, content, timestamp
// columns.
func ChatLogCSV(messages []pkg.ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", ErrNoRows
	}
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write([]string{"role", "content", "timestamp"}); err != nil {
		return "", err
	}
	for _, m := range messages {
		if err := w.Write([]string{string(m.Role), m.Content, m.Timestamp.Format(time.RFC3339)}); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return b.String(), nil
}

// SurveyCSV renders all of a user's ratings as CSV, one row per (case,
// question) pair with the user id and submission timestamp injected into
// every row. Rows are ordered by case id then question index so repeated
// exports of the same data are identical.
func SurveyCSV(userID string, responses map[string]map[int]int, submittedAt time.Time) (string, error) {
	if len(responses) == 0 {
		return "", ErrNoRows
	}
	caseIDs := make([]string, 0, len(responses))
	for caseID := range responses {
		caseIDs = append(caseIDs, caseID)
	}
	sort.Strings(caseIDs)

	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write([]string{"user_id", "case_id", "question_index", "rating", "timestamp"}); err != nil {
		return "", err
	}
	ts := submittedAt.Format(time.RFC3339)
	for _, caseID := range caseIDs {
		ratings := responses[caseID]
		indexes := make([]int, 0, len(ratings))
		for q := range ratings {
			indexes = append(indexes, q)
		}
		sort.Ints(indexes)
		for _, q := range indexes {
			row := []string{userID, caseID, strconv.Itoa(q), strconv.Itoa(ratings[q]), ts}
			if err := w.Write(row); err != nil {
				return "", err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return b.String(), nil
}

// ChatLogFilename builds the export name for a case transcript:
// {user}_{case}_{sanitized-title}_chat_log_{YYYYMMDD_HHMMSS}.csv
func ChatLogFilename(userID, caseID, caseTitle string, t time.Time) string {
	return userID + "_" + caseID + "_" + sanitizeTitle(caseTitle) + "_chat_log_" + t.Format("20060102_150405") + ".csv"
}

// SurveyFilename builds the export name for a survey-response set:
// {user}_survey_responses_{YYYYMMDD_HHMMSS}.csv
func SurveyFilename(userID string, t time.Time) string {
	return userID + "_survey_responses_" + t.Format("20060102_150405") + ".csv"
}

func sanitizeTitle(title string) string {
	r := strings.NewReplacer(":", "", " ", "_", "/", "_")
	return r.Replace(title)
}
