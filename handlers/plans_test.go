// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/quickly-plan/auth"
	"github.com/danielhkuo/quickly-plan/engine"
	"github.com/danielhkuo/quickly-plan/models"
	"github.com/danielhkuo/quickly-plan/store"
	"github.com/danielhkuo/quickly-plan/testutil"
)

func newTestEngine(db *sql.DB) *engine.Service {
	return engine.New(store.New(db))
}

func adminHeaders(planID string) map[string]string {
	cfg := testutil.GetTestConfig()
	return map[string]string{"X-Admin-Key": auth.GenerateAdminKey(planID, cfg.AdminKeySalt)}
}

func TestCreatePlan(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewPlanHandler(newTestEngine(db), cfg)

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "valid plan",
			body: models.CreatePlanRequest{
				Title:        "Friday dinner",
				CreatorID:    "alice",
				Participants: []string{"bob", "carol"},
				Options: []models.OptionInput{
					{Kind: models.KindPlace, Title: "Ramen Bar"},
					{Kind: models.KindPlace, Title: "Taco Place"},
				},
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "missing title",
			body: models.CreatePlanRequest{
				CreatorID: "alice",
				Options:   []models.OptionInput{{Title: "A"}, {Title: "B"}},
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "invalid_input",
		},
		{
			name: "threshold out of range",
			body: models.CreatePlanRequest{
				Title:     "Friday dinner",
				CreatorID: "alice",
				Threshold: 120,
				Options:   []models.OptionInput{{Title: "A"}, {Title: "B"}},
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "invalid_input",
		},
		{
			name: "too few options",
			body: models.CreatePlanRequest{
				Title:     "Friday dinner",
				CreatorID: "alice",
				Options:   []models.OptionInput{{Title: "A"}},
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "invalid_input",
		},
		{
			name:           "invalid JSON",
			body:           "not an object",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/plans", tt.body, nil)
			w := httptest.NewRecorder()

			handler.CreatePlan(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated {
				var resp models.CreatePlanResponse
				testutil.AssertJSON(t, w, &resp)

				if resp.PlanID == "" || resp.PollID == "" {
					t.Error("Expected plan_id and poll_id in response")
				}
				if len(resp.OptionIDs) != 2 {
					t.Errorf("Expected 2 option ids, got %d", len(resp.OptionIDs))
				}
				if err := auth.ValidateAdminKey(resp.PlanID, resp.AdminKey, cfg.AdminKeySalt); err != nil {
					t.Errorf("Expected a valid admin key for the plan: %v", err)
				}
				return
			}

			if tt.expectedCode != "" {
				var resp models.ErrorResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.Code != tt.expectedCode {
					t.Errorf("Expected code %q, got %q", tt.expectedCode, resp.Code)
				}
			}
		})
	}
}

func TestGetPlan(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewPlanHandler(newTestEngine(db), cfg)

	planID := testutil.CreateTestPlan(t, db, "alice", "bob")

	t.Run("existing plan", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/plans/"+planID, nil, nil)
		req.SetPathValue("id", planID)
		w := httptest.NewRecorder()

		handler.GetPlan(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var plan models.Plan
		testutil.AssertJSON(t, w, &plan)
		if plan.Status != models.PlanDeciding {
			t.Errorf("Expected status deciding, got %s", plan.Status)
		}
		if len(plan.ParticipantIDs) != 2 {
			t.Errorf("Expected 2 participants, got %v", plan.ParticipantIDs)
		}
	})

	t.Run("unknown plan", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/plans/missing", nil, nil)
		req.SetPathValue("id", "missing")
		w := httptest.NewRecorder()

		handler.GetPlan(w, req)

		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}
