// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Plan API.

# Handler Types

Each handler is a struct with engine and config dependencies:

  - PlanHandler: plan creation and lookup
  - PollHandler: creator operations (options, deadline, close, finalize)
  - VotingHandler: casting, withdrawing and listing votes
  - ResultsHandler: the live poll view

Handlers are created via constructor functions that accept the engine and Config:

	pollHandler := handlers.NewPollHandler(svc, cfg)

# Poll Lifecycle

A poll moves forward only: active → consensus_reached | expired → finalized

	POST /plans                 → CreatePlan (returns admin_key)
	POST /polls/{id}/options    → AddOption (active, additions allowed)
	POST /polls/{id}/deadline   → ExtendDeadline (active only)
	POST /polls/{id}/close      → ClosePoll
	POST /polls/{id}/finalize   → Finalize (copies the winner onto the plan)

Creator operations require the X-Admin-Key header issued for the plan.

# Voting

	POST   /polls/{id}/votes → CastVote (toggles)
	DELETE /polls/{id}/votes → RemoveVote
	GET    /polls/{id}/votes → ListVotes

Only users on the plan roster may vote.

# Errors

Domain errors map to status codes and carry a machine-readable code:

	unknown_poll, unknown_plan    404
	unknown_option, invalid_input 400
	not_a_participant             403
	invalid_state                 409
	already_finalized             409
	below_quorum                  422
*/
package handlers
