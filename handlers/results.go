// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/quickly-plan/engine"
	"github.com/danielhkuo/quickly-plan/middleware"
)

type ResultsHandler struct {
	engine *engine.Service
}

func NewResultsHandler(e *engine.Service) *ResultsHandler {
	return &ResultsHandler{engine: e}
}

// GetPoll handles GET /polls/{id}: the poll with live tallies, consensus
// progress and who has not voted yet
func (h *ResultsHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	view, err := h.engine.GetPollView(r.Context(), pollID)
	if err != nil {
		writeEngineError(w, r, "get poll view", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, view)
}
