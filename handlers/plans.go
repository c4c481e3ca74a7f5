// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/quickly-plan/auth"
	"github.com/danielhkuo/quickly-plan/cliparse"
	"github.com/danielhkuo/quickly-plan/engine"
	"github.com/danielhkuo/quickly-plan/middleware"
	"github.com/danielhkuo/quickly-plan/models"
)

type PlanHandler struct {
	engine *engine.Service
	cfg    cliparse.Config
}

func NewPlanHandler(e *engine.Service, cfg cliparse.Config) *PlanHandler {
	return &PlanHandler{engine: e, cfg: cfg}
}

// CreatePlan handles POST /plans
func (h *PlanHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePlanRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	created, err := h.engine.CreatePlan(r.Context(), req)
	if err != nil {
		writeEngineError(w, r, "create plan", err)
		return
	}

	optionIDs := make([]string, 0, len(created.Options))
	for _, opt := range created.Options {
		optionIDs = append(optionIDs, opt.ID)
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePlanResponse{
		PlanID:    created.Plan.ID,
		PollID:    created.Poll.ID,
		OptionIDs: optionIDs,
		AdminKey:  auth.GenerateAdminKey(created.Plan.ID, h.cfg.AdminKeySalt),
	})
}

// GetPlan handles GET /plans/{id}
func (h *PlanHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	planID := r.PathValue("id")
	if planID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "plan_id is required")
		return
	}

	plan, err := h.engine.GetPlan(r.Context(), planID)
	if err != nil {
		writeEngineError(w, r, "get plan", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, plan)
}
