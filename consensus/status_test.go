// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package consensus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/danielhkuo/quickly-plan/models"
)

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	tests := []struct {
		name     string
		status   models.PollStatus
		deadline *time.Time
		want     models.PollStatus
	}{
		{"active without deadline", models.StatusActive, nil, models.StatusActive},
		{"active before deadline", models.StatusActive, &future, models.StatusActive},
		{"active at deadline", models.StatusActive, &now, models.StatusExpired},
		{"active after deadline", models.StatusActive, &past, models.StatusExpired},
		{"consensus survives deadline", models.StatusConsensusReached, &past, models.StatusConsensusReached},
		{"finalized survives deadline", models.StatusFinalized, &past, models.StatusFinalized},
		{"stored expired", models.StatusExpired, nil, models.StatusExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			poll := models.Poll{Status: tt.status, Deadline: tt.deadline}
			assert.Equal(t, tt.want, EffectiveStatus(poll, now))
		})
	}
}

func TestCanTransition(t *testing.T) {
	all := []models.PollStatus{
		models.StatusActive,
		models.StatusConsensusReached,
		models.StatusExpired,
		models.StatusFinalized,
	}
	allowed := map[[2]models.PollStatus]bool{
		{models.StatusActive, models.StatusConsensusReached}:    true,
		{models.StatusActive, models.StatusExpired}:             true,
		{models.StatusConsensusReached, models.StatusFinalized}: true,
		{models.StatusExpired, models.StatusFinalized}:          true,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]models.PollStatus{from, to}]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}
