// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-plan/engine"
	"github.com/danielhkuo/quickly-plan/middleware"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{engine.ErrUnknownPoll, http.StatusNotFound},
	{engine.ErrUnknownPlan, http.StatusNotFound},
	{engine.ErrUnknownOption, http.StatusBadRequest},
	{engine.ErrInvalidInput, http.StatusBadRequest},
	{engine.ErrNotAParticipant, http.StatusForbidden},
	{engine.ErrInvalidState, http.StatusConflict},
	{engine.ErrAlreadyFinalized, http.StatusConflict},
	{engine.ErrBelowQuorum, http.StatusUnprocessableEntity},
}

// writeEngineError maps a domain error to its HTTP status. Anything
// unrecognised is logged and reported as a 500 without detail.
func writeEngineError(w http.ResponseWriter, r *http.Request, op string, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			middleware.ErrorCodeResponse(w, e.status, engine.Code(err), err.Error())
			return
		}
	}

	slog.Error(op+" failed", "error", err, "path", r.URL.Path)
	middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
}
