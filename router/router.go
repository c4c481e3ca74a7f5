// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/quickly-plan/cliparse"
	"github.com/danielhkuo/quickly-plan/engine"
	"github.com/danielhkuo/quickly-plan/handlers"
	"github.com/danielhkuo/quickly-plan/middleware"
)

func NewRouter(svc *engine.Service, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	planHandler := handlers.NewPlanHandler(svc, cfg)
	pollHandler := handlers.NewPollHandler(svc, cfg)
	votingHandler := handlers.NewVotingHandler(svc)
	resultsHandler := handlers.NewResultsHandler(svc)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Plans
	mux.HandleFunc("POST /plans", middleware.WithLogging(planHandler.CreatePlan))
	mux.HandleFunc("GET /plans/{id}", middleware.WithLogging(planHandler.GetPlan))

	// Poll management (creator, requires X-Admin-Key)
	mux.HandleFunc("POST /polls/{id}/options", middleware.WithLogging(pollHandler.AddOption))
	mux.HandleFunc("POST /polls/{id}/deadline", middleware.WithLogging(pollHandler.ExtendDeadline))
	mux.HandleFunc("POST /polls/{id}/close", middleware.WithLogging(pollHandler.ClosePoll))
	mux.HandleFunc("POST /polls/{id}/finalize", middleware.WithLogging(pollHandler.Finalize))

	// Voting (roster members)
	mux.HandleFunc("POST /polls/{id}/votes", middleware.WithLogging(votingHandler.CastVote))
	mux.HandleFunc("DELETE /polls/{id}/votes", middleware.WithLogging(votingHandler.RemoveVote))
	mux.HandleFunc("GET /polls/{id}/votes", middleware.WithLogging(votingHandler.ListVotes))

	// Poll view
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(resultsHandler.GetPoll))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickly-plan API v1"))
	})

	return mux
}
