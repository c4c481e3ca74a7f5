// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Plan API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(svc, cfg)

# Endpoints

Health:

	GET /health

Plans:

	POST /plans      - Create plan, roster, poll and options
	GET  /plans/{id} - Plan with status and confirmed fields

Poll management (creator, requires X-Admin-Key):

	POST /polls/{id}/options  - Add option
	POST /polls/{id}/deadline - Move or clear the deadline
	POST /polls/{id}/close    - Stop voting
	POST /polls/{id}/finalize - Confirm the winner onto the plan

Voting (roster members):

	POST   /polls/{id}/votes - Cast or toggle a vote
	DELETE /polls/{id}/votes - Withdraw a vote
	GET    /polls/{id}/votes - List votes

Poll view:

	GET /polls/{id} - Tallies, consensus progress, non-voters

All handlers share one engine.Service.
*/
package router
