// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-plan/models"
	"github.com/danielhkuo/quickly-plan/testutil"
)

func TestGetPollView(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewResultsHandler(newTestEngine(db))

	planID := testutil.CreateTestPlan(t, db, "alice", "bob", "carol", "dave")
	deadline := time.Now().Add(48 * time.Hour)
	pollID := testutil.CreateTestPoll(t, db, planID, testutil.PollSettings{Threshold: 75, Deadline: &deadline})
	opt1 := testutil.AddTestOption(t, db, pollID, "Ramen Bar")
	opt2 := testutil.AddTestOption(t, db, pollID, "Taco Place")
	testutil.AddTestVote(t, db, pollID, opt1, "alice")
	testutil.AddTestVote(t, db, pollID, opt1, "bob")
	testutil.AddTestVote(t, db, pollID, opt2, "bob")

	req := testutil.MakeRequest("GET", "/polls/"+pollID, nil, nil)
	req.SetPathValue("id", pollID)
	w := httptest.NewRecorder()

	handler.GetPoll(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var view models.PollView
	testutil.AssertJSON(t, w, &view)

	if view.Poll.Status != models.StatusActive {
		t.Errorf("Expected active, got %s", view.Poll.Status)
	}
	if len(view.Options) != 2 {
		t.Fatalf("Expected 2 options, got %d", len(view.Options))
	}
	if view.Options[0].ID != opt1 || view.Options[0].VoteCount != 2 || view.Options[0].Percentage != 50 {
		t.Errorf("Unexpected first option result: %+v", view.Options[0])
	}
	if view.Progress.LeadingOptionID == nil || *view.Progress.LeadingOptionID != opt1 {
		t.Errorf("Expected leading option %s", opt1)
	}
	if view.Progress.DistinctVoters != 2 || view.Progress.RosterSize != 4 {
		t.Errorf("Unexpected progress: %+v", view.Progress)
	}
	if strings.Join(view.NonVoters, ",") != "carol,dave" {
		t.Errorf("Expected non-voters carol,dave, got %v", view.NonVoters)
	}
	if !strings.HasSuffix(view.DeadlineHuman, "from now") {
		t.Errorf("Expected a future humanized deadline, got %q", view.DeadlineHuman)
	}
}

func TestGetPollViewLapsedDeadline(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewResultsHandler(newTestEngine(db))

	planID := testutil.CreateTestPlan(t, db, "alice", "bob")
	deadline := time.Now().Add(-time.Hour)
	pollID := testutil.CreateTestPoll(t, db, planID, testutil.PollSettings{Deadline: &deadline})

	req := testutil.MakeRequest("GET", "/polls/"+pollID, nil, nil)
	req.SetPathValue("id", pollID)
	w := httptest.NewRecorder()

	handler.GetPoll(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var view models.PollView
	testutil.AssertJSON(t, w, &view)
	if view.Poll.Status != models.StatusExpired {
		t.Errorf("Expected effective status expired, got %s", view.Poll.Status)
	}
	// Reads never persist the transition
	if status := testutil.PollStatus(t, db, pollID); status != models.StatusActive {
		t.Errorf("Expected stored status active, got %s", status)
	}
}

func TestGetPollViewNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewResultsHandler(newTestEngine(db))

	req := testutil.MakeRequest("GET", "/polls/missing", nil, nil)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()

	handler.GetPoll(w, req)

	testutil.AssertStatus(t, w, http.StatusNotFound)
}
