// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package consensus computes vote tallies and consensus for a poll.

Everything here is a pure function of its inputs. The engine loads options,
votes and the roster inside its transaction and calls Evaluate after every
vote mutation:

	res := consensus.Evaluate(consensus.Input{
		Options:         options,
		Votes:           votes,
		Roster:          roster,
		Threshold:       60,
		MinParticipants: 2,
	})

# Rules

  - percentage = votes for the option / roster size * 100
  - the leading option has the most votes; ties go to the earliest option
  - consensus needs percentage >= threshold and at least MinParticipants
    distinct voters

Users on the roster who have not voted still count toward the denominator,
so silence holds consensus back. VotesCastShare divides by votes cast instead
and is only meant for progress bars.

# Lifecycle

EffectiveStatus folds lazy deadline expiry into the stored status and is the
only place that comparison happens. CanTransition encodes the forward-only
state table:

	active → consensus_reached → finalized
	active → expired           → finalized

The engine checks it before every status write.
*/
package consensus
