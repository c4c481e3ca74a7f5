// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-plan/auth"
	"github.com/danielhkuo/quickly-plan/cliparse"
	"github.com/danielhkuo/quickly-plan/db"
	"github.com/danielhkuo/quickly-plan/models"
)

// SetupTestDB creates a fresh SQLite database file with the full schema.
// The file lives in t.TempDir and is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "quickly-plan-test.db")
	conn, err := db.Open("sqlite", path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                3318,
		DatabaseURL:         "file:test.db",
		DatabaseType:        "sqlite",
		AdminKeySalt:        "test-admin-salt",
		EventSink:           cliparse.SinkLog,
		OutboxInterval:      time.Second,
		ExpirySweepInterval: 0,
	}
}

// CreateTestPlan inserts a deciding plan with the creator and members on its
// roster and returns the plan ID
func CreateTestPlan(t *testing.T, db *sql.DB, creatorID string, members ...string) string {
	t.Helper()

	planID := auth.NewID()
	now := time.Now().UTC()
	_, err := db.Exec(`
		INSERT INTO plan (id, title, description, creator_id, status, created_at)
		VALUES ($1, 'Test Plan', 'A test plan', $2, $3, $4)
	`, planID, creatorID, string(models.PlanDeciding), now)
	if err != nil {
		t.Fatalf("Failed to create test plan: %v", err)
	}

	AddTestParticipant(t, db, planID, creatorID, models.RoleCreator)
	for _, m := range members {
		AddTestParticipant(t, db, planID, m, models.RoleMember)
	}

	return planID
}

// AddTestParticipant puts a user on a plan roster
func AddTestParticipant(t *testing.T, db *sql.DB, planID, userID, role string) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO plan_participant (plan_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
	`, planID, userID, role, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to add test participant: %v", err)
	}
}

// PollSettings controls CreateTestPoll. Zero values fall back to defaults.
type PollSettings struct {
	Status          models.PollStatus
	Threshold       float64
	MinParticipants int
	Deadline        *time.Time
	DenyAddOptions  bool
}

// CreateTestPoll inserts a poll for a plan, marks it the plan's active poll
// and returns its ID
func CreateTestPoll(t *testing.T, db *sql.DB, planID string, s PollSettings) string {
	t.Helper()

	if s.Status == "" {
		s.Status = models.StatusActive
	}
	if s.Threshold == 0 {
		s.Threshold = models.DefaultThreshold
	}
	if s.MinParticipants == 0 {
		s.MinParticipants = models.DefaultMinParticipants
	}

	var creatorID string
	if err := db.QueryRow(`SELECT creator_id FROM plan WHERE id = $1`, planID).Scan(&creatorID); err != nil {
		t.Fatalf("Failed to read test plan: %v", err)
	}

	var deadline sql.NullTime
	if s.Deadline != nil {
		deadline = sql.NullTime{Time: s.Deadline.UTC(), Valid: true}
	}

	pollID := auth.NewID()
	_, err := db.Exec(`
		INSERT INTO poll (id, plan_id, title, description, status, threshold, min_participants,
		                  deadline, allow_add_options, creator_id, created_at)
		VALUES ($1, $2, 'Where should we go?', '', $3, $4, $5, $6, $7, $8, $9)
	`, pollID, planID, string(s.Status), s.Threshold, s.MinParticipants, deadline, !s.DenyAddOptions, creatorID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	if _, err := db.Exec(`UPDATE plan SET active_poll_id = $1 WHERE id = $2`, pollID, planID); err != nil {
		t.Fatalf("Failed to link test poll: %v", err)
	}

	return pollID
}

// AddTestOption appends an option to a poll and returns the option ID
func AddTestOption(t *testing.T, db *sql.DB, pollID, title string) string {
	t.Helper()

	var position int
	err := db.QueryRow(`SELECT COALESCE(MAX(position), 0) + 1 FROM option WHERE poll_id = $1`, pollID).Scan(&position)
	if err != nil {
		t.Fatalf("Failed to compute option position: %v", err)
	}

	optionID := auth.NewID()
	_, err = db.Exec(`
		INSERT INTO option (id, poll_id, kind, title, description, location, position, created_at)
		VALUES ($1, $2, 'place', $3, '', $4, $5, $6)
	`, optionID, pollID, title, title+" street", position, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test option: %v", err)
	}

	return optionID
}

// AddTestVote records a vote row directly, bypassing the engine
func AddTestVote(t *testing.T, db *sql.DB, pollID, optionID, userID string) string {
	t.Helper()

	voteID := auth.NewID()
	_, err := db.Exec(`
		INSERT INTO vote (id, poll_id, option_id, user_id, preferred, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, voteID, pollID, optionID, userID, false, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}

	return voteID
}

// PollStatus reads the stored status of a poll
func PollStatus(t *testing.T, db *sql.DB, pollID string) models.PollStatus {
	t.Helper()

	var status string
	if err := db.QueryRow(`SELECT status FROM poll WHERE id = $1`, pollID).Scan(&status); err != nil {
		t.Fatalf("Failed to read poll status: %v", err)
	}
	return models.PollStatus(status)
}

// CountOutbox counts outbox rows of an event type for an aggregate
func CountOutbox(t *testing.T, db *sql.DB, aggregateID, eventType string) int {
	t.Helper()

	var n int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM outbox WHERE aggregate_id = $1 AND event_type = $2
	`, aggregateID, eventType).Scan(&n)
	if err != nil {
		t.Fatalf("Failed to count outbox rows: %v", err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
