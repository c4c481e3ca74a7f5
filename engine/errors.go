// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import "errors"

// Domain errors. Callers match with errors.Is; messages may carry detail.
var (
	ErrInvalidState     = errors.New("operation not allowed in current poll state")
	ErrNotAParticipant  = errors.New("user is not a participant of this plan")
	ErrUnknownOption    = errors.New("option does not belong to this poll")
	ErrUnknownPoll      = errors.New("poll not found")
	ErrUnknownPlan      = errors.New("plan not found")
	ErrAlreadyFinalized = errors.New("poll is already finalized")
	ErrBelowQuorum      = errors.New("no option reached consensus; choose a winning option")
	ErrInvalidInput     = errors.New("invalid input")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrInvalidState, "invalid_state"},
	{ErrNotAParticipant, "not_a_participant"},
	{ErrUnknownOption, "unknown_option"},
	{ErrUnknownPoll, "unknown_poll"},
	{ErrUnknownPlan, "unknown_plan"},
	{ErrAlreadyFinalized, "already_finalized"},
	{ErrBelowQuorum, "below_quorum"},
	{ErrInvalidInput, "invalid_input"},
}

// Code returns the stable machine-readable code for a domain error, or ""
// for anything else.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}
