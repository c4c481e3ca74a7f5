// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package consensus

import (
	"time"

	"github.com/danielhkuo/quickly-plan/models"
)

// EffectiveStatus is the status every reader must use. A stored active poll
// whose deadline has passed reads as expired even before anything persists
// the transition.
func EffectiveStatus(poll models.Poll, now time.Time) models.PollStatus {
	if poll.Status == models.StatusActive && poll.Deadline != nil && !now.Before(*poll.Deadline) {
		return models.StatusExpired
	}
	return poll.Status
}

var transitions = map[models.PollStatus][]models.PollStatus{
	models.StatusActive:           {models.StatusConsensusReached, models.StatusExpired},
	models.StatusConsensusReached: {models.StatusFinalized},
	models.StatusExpired:          {models.StatusFinalized},
}

// CanTransition reports whether from → to is a legal forward step.
// Status only ever moves forward; finalized is terminal.
func CanTransition(from, to models.PollStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
