// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/danielhkuo/quickly-plan/auth"
	"github.com/danielhkuo/quickly-plan/cliparse"
	"github.com/danielhkuo/quickly-plan/engine"
	"github.com/danielhkuo/quickly-plan/middleware"
	"github.com/danielhkuo/quickly-plan/models"
)

// PollHandler serves the creator's poll operations. Every route requires the
// plan's admin key in X-Admin-Key.
type PollHandler struct {
	engine *engine.Service
	cfg    cliparse.Config
}

func NewPollHandler(e *engine.Service, cfg cliparse.Config) *PollHandler {
	return &PollHandler{engine: e, cfg: cfg}
}

// authorize resolves the poll and checks the admin key against its plan.
// It writes the error response and returns false when the caller must stop.
func (h *PollHandler) authorize(w http.ResponseWriter, r *http.Request) (string, bool) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return "", false
	}

	poll, err := h.engine.GetPoll(r.Context(), pollID)
	if err != nil {
		writeEngineError(w, r, "get poll", err)
		return "", false
	}

	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(poll.PlanID, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return "", false
	}
	return pollID, true
}

// AddOption handles POST /polls/{id}/options
func (h *PollHandler) AddOption(w http.ResponseWriter, r *http.Request) {
	pollID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req models.OptionInput
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	opt, err := h.engine.AddOption(r.Context(), pollID, req)
	if err != nil {
		writeEngineError(w, r, "add option", err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.AddOptionResponse{OptionID: opt.ID})
}

// ExtendDeadline handles POST /polls/{id}/deadline
func (h *PollHandler) ExtendDeadline(w http.ResponseWriter, r *http.Request) {
	pollID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req models.ExtendDeadlineRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	poll, err := h.engine.ExtendDeadline(r.Context(), pollID, req.Deadline)
	if err != nil {
		writeEngineError(w, r, "extend deadline", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}

// ClosePoll handles POST /polls/{id}/close
func (h *PollHandler) ClosePoll(w http.ResponseWriter, r *http.Request) {
	pollID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	poll, err := h.engine.ClosePoll(r.Context(), pollID)
	if err != nil {
		writeEngineError(w, r, "close poll", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}

// Finalize handles POST /polls/{id}/finalize. The body is optional when the
// poll already reached consensus.
func (h *PollHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	pollID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req models.FinalizeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	projected, err := h.engine.Finalize(r.Context(), pollID, req.WinningOptionID)
	if err != nil {
		writeEngineError(w, r, "finalize poll", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, projected)
}
