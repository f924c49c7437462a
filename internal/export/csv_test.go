package export

import (
	"strings"
	"testing"
	"time"

	"case-simulator/pkg"
)

func TestChatLogCSV(t *testing.T) {
	ts := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)
	messages := []pkg.ChatMessage{
		{Role: pkg.RoleAssistant, Content: "Nurse: patient here", Timestamp: ts},
		{Role: pkg.RoleUser, Content: "order a CBC, please", Timestamp: ts.Add(time.Minute)},
	}

	got, err := ChatLogCSV(messages)
	if err != nil {
		t.Fatalf("ChatLogCSV failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "role,content,timestamp" {
		t.Errorf("Unexpected header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "assistant,Nurse: patient here,") {
		t.Errorf("Unexpected first row: %q", lines[1])
	}
	if !strings.Contains(lines[2], "2025-06-01T14:31:00Z") {
		t.Errorf("Expected RFC3339 timestamp in row: %q", lines[2])
	}
}

func TestChatLogCSVEmpty(t *testing.T) {
	if _, err := ChatLogCSV(nil); err != ErrNoRows {
		t.Errorf("Expected ErrNoRows, got %v", err)
	}
}

func TestSurveyCSV(t *testing.T) {
	responses := map[string]map[int]int{
		"case_2": {1: 4},
		"case_1": {2: 5, 0: 3},
	}
	now := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)

	got, err := SurveyCSV("test_user", responses, now)
	if err != nil {
		t.Fatalf("SurveyCSV failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(got), "\n")
	want := []string{
		"user_id,case_id,question_index,rating,timestamp",
		"test_user,case_1,0,3,2025-06-01T14:30:00Z",
		"test_user,case_1,2,5,2025-06-01T14:30:00Z",
		"test_user,case_2,1,4,2025-06-01T14:30:00Z",
	}
	if len(lines) != len(want) {
		t.Fatalf("Expected %d lines, got %d", len(want), len(lines))
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("Line %d: expected %q, got %q", i, w, lines[i])
		}
	}
}

func TestSurveyCSVEmpty(t *testing.T) {
	if _, err := SurveyCSV("test_user", nil, time.Now()); err != ErrNoRows {
		t.Errorf("Expected ErrNoRows, got %v", err)
	}
}

func TestChatLogFilename(t *testing.T) {
	ts := time.Date(2025, 6, 1, 14, 30, 5, 0, time.UTC)
	got := ChatLogFilename("test_user", "case_1", "Case 1: The Embolism/Redux", ts)
	want := "test_user_case_1_Case_1_The_Embolism_Redux_chat_log_20250601_143005.csv"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestSurveyFilename(t *testing.T) {
	ts := time.Date(2025, 6, 1, 14, 30, 5, 0, time.UTC)
	got := SurveyFilename("test_user", ts)
	want := "test_user_survey_responses_20250601_143005.csv"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
