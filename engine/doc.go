// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package engine is the group-consensus polling engine: the vote ledger, the
// poll state machine and the plan projector.
//
// Every mutation of a poll runs as one unit: an in-process lock keyed by
// poll id, then a database transaction whose first statement bumps the
// poll's version row. Inside that unit the engine applies the change,
// re-evaluates consensus and performs any status transition with a
// conditional update, so two concurrent votes can never record two winners.
//
// Poll status only moves forward:
//
//	active -> consensus_reached -> finalized
//	active -> expired           -> finalized
//
// Expiry is lazy. Readers see a lapsed deadline as expired through
// consensus.EffectiveStatus; mutating paths persist it, and ExpireDue sweeps
// the rest on an interval.
//
// Events (vote.cast, poll.consensus_reached, poll.expired, plan.confirmed)
// are written to the outbox in the same transaction and delivered by
// events.Relay after commit.
package engine
