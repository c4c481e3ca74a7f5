// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/quickly-plan/engine"
	"github.com/danielhkuo/quickly-plan/middleware"
	"github.com/danielhkuo/quickly-plan/models"
)

type VotingHandler struct {
	engine *engine.Service
}

func NewVotingHandler(e *engine.Service) *VotingHandler {
	return &VotingHandler{engine: e}
}

func parseVote(w http.ResponseWriter, r *http.Request) (string, models.VoteRequest, bool) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return "", models.VoteRequest{}, false
	}

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return "", models.VoteRequest{}, false
	}
	if req.UserID == "" || req.OptionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_id and option_id are required")
		return "", models.VoteRequest{}, false
	}
	return pollID, req, true
}

// CastVote handles POST /polls/{id}/votes. Voting twice for the same option
// withdraws the vote.
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	pollID, req, ok := parseVote(w, r)
	if !ok {
		return
	}

	res, err := h.engine.CastVote(r.Context(), engine.CastVoteInput{
		PollID:    pollID,
		UserID:    req.UserID,
		OptionID:  req.OptionID,
		Preferred: req.Preferred,
	})
	if err != nil {
		writeEngineError(w, r, "cast vote", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, res)
}

// RemoveVote handles DELETE /polls/{id}/votes
func (h *VotingHandler) RemoveVote(w http.ResponseWriter, r *http.Request) {
	pollID, req, ok := parseVote(w, r)
	if !ok {
		return
	}

	res, err := h.engine.RemoveVote(r.Context(), engine.RemoveVoteInput{
		PollID:   pollID,
		UserID:   req.UserID,
		OptionID: req.OptionID,
	})
	if err != nil {
		writeEngineError(w, r, "remove vote", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, res)
}

// ListVotes handles GET /polls/{id}/votes
func (h *VotingHandler) ListVotes(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	votes, err := h.engine.GetVotesForPoll(r.Context(), pollID)
	if err != nil {
		writeEngineError(w, r, "list votes", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VotesResponse{PollID: pollID, Votes: votes})
}
