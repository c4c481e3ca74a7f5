// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreatePlanRequest: plan, roster, poll rules and initial options
  - OptionInput: one proposed option (kind, title, location, time, price, url)
  - VoteRequest: user_id, option_id, preferred
  - ExtendDeadlineRequest: deadline (null clears it)
  - FinalizeRequest: winning_option_id (optional)

# Response Types

  - CreatePlanResponse: plan_id, poll_id, option_ids, admin_key
  - AddOptionResponse: option_id
  - VoteResult: updated tally for the voted option and poll status
  - ProjectedPlan: confirmed plan after finalize
  - PollView: options with vote counts, percentages and consensus progress
  - ErrorResponse: error, code, message

# Domain Types

  - Plan: the hangout; deciding until a poll is finalized
  - Participant: roster entry used as the vote denominator
  - Poll: consensus rules and lifecycle state
  - Option: fixed optional-field proposal, ordered by Position
  - Vote: one row per (user, option)

# Constants

Poll status values:

	StatusActive           = "active"
	StatusConsensusReached = "consensus_reached"
	StatusExpired          = "expired"
	StatusFinalized        = "finalized"

Plan status values:

	PlanDeciding  = "deciding"
	PlanConfirmed = "confirmed"

Option kinds:

	KindGeneral, KindTime, KindPlace, KindActivity
*/
package models
