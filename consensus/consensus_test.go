// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package consensus

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/quickly-plan/models"
)

func opts(ids ...string) []models.Option {
	out := make([]models.Option, len(ids))
	for i, id := range ids {
		out[i] = models.Option{ID: id, PollID: "p1", Title: id, Position: i + 1}
	}
	return out
}

func vote(user, option string) models.Vote {
	return models.Vote{ID: user + "-" + option, PollID: "p1", UserID: user, OptionID: option}
}

func roster(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("u%d", i+1)
	}
	return out
}

func TestEvaluate_ThresholdBoundary(t *testing.T) {
	tests := []struct {
		name            string
		votes           int
		minParticipants int
		wantConsensus   bool
		wantPercent     float64
	}{
		{"exactly at threshold", 3, 3, true, 60},
		{"below threshold", 2, 1, false, 40},
		{"above threshold", 4, 1, true, 80},
		{"at threshold but under quorum", 3, 4, false, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var votes []models.Vote
			for i := 1; i <= tt.votes; i++ {
				votes = append(votes, vote(fmt.Sprintf("u%d", i), "o1"))
			}

			res := Evaluate(Input{
				Options:         opts("o1", "o2"),
				Votes:           votes,
				Roster:          roster(5),
				Threshold:       60,
				MinParticipants: tt.minParticipants,
			})

			assert.Equal(t, tt.wantConsensus, res.ConsensusReached)
			require.NotNil(t, res.Leading)
			assert.Equal(t, "o1", res.Leading.OptionID)
			assert.Equal(t, tt.wantPercent, res.Leading.Percentage)
		})
	}
}

func TestEvaluate_ScenarioA(t *testing.T) {
	res := Evaluate(Input{
		Options:         opts("O1", "O2"),
		Votes:           []models.Vote{vote("u1", "O1"), vote("u2", "O1")},
		Roster:          []string{"u1", "u2", "u3"},
		Threshold:       60,
		MinParticipants: 2,
	})

	assert.True(t, res.ConsensusReached)
	require.NotNil(t, res.Leading)
	assert.Equal(t, "O1", res.Leading.OptionID)
	assert.InDelta(t, 66.67, res.Leading.Percentage, 0.01)
	assert.Equal(t, 2, res.DistinctVoters)
	assert.Equal(t, []string{"u3"}, res.NonVoters)
}

func TestEvaluate_ScenarioB(t *testing.T) {
	res := Evaluate(Input{
		Options:         opts("O1", "O2"),
		Votes:           []models.Vote{vote("u1", "O1"), vote("u2", "O2")},
		Roster:          []string{"u1", "u2", "u3"},
		Threshold:       60,
		MinParticipants: 2,
	})

	assert.False(t, res.ConsensusReached)
	for _, tally := range res.Options {
		assert.Equal(t, 1, tally.VoteCount)
		assert.Less(t, tally.Percentage, 60.0)
		assert.Equal(t, 50.0, tally.VotesCastShare)
	}
}

func TestEvaluate_TieBreakByCreationOrder(t *testing.T) {
	options := []models.Option{
		{ID: "late", Position: 3},
		{ID: "early", Position: 1},
		{ID: "middle", Position: 2},
	}
	res := Evaluate(Input{
		Options: options,
		Votes: []models.Vote{
			vote("u1", "late"), vote("u2", "late"),
			vote("u3", "middle"), vote("u4", "middle"),
			vote("u5", "early"),
		},
		Roster:          roster(5),
		Threshold:       60,
		MinParticipants: 1,
	})

	require.NotNil(t, res.Leading)
	assert.Equal(t, "middle", res.Leading.OptionID)
	assert.Equal(t, []string{"early", "middle", "late"}, []string{
		res.Options[0].OptionID, res.Options[1].OptionID, res.Options[2].OptionID,
	})

	// Repeated evaluation picks the same winner
	for i := 0; i < 10; i++ {
		again := Evaluate(Input{Options: options, Votes: []models.Vote{
			vote("u1", "late"), vote("u3", "middle"),
		}, Roster: roster(5), Threshold: 60, MinParticipants: 1})
		assert.Equal(t, "middle", again.Leading.OptionID)
	}
}

func TestEvaluate_NonVotersSuppressConsensus(t *testing.T) {
	// 100% of votes cast, but only 2 of 5 roster members voted
	res := Evaluate(Input{
		Options:         opts("o1", "o2"),
		Votes:           []models.Vote{vote("u1", "o1"), vote("u2", "o1")},
		Roster:          roster(5),
		Threshold:       60,
		MinParticipants: 1,
	})

	assert.False(t, res.ConsensusReached)
	assert.Equal(t, 40.0, res.Leading.Percentage)
	assert.Equal(t, 100.0, res.Leading.VotesCastShare)
	assert.Equal(t, []string{"u3", "u4", "u5"}, res.NonVoters)
}

func TestEvaluate_MultiSelectCountsVoterOnce(t *testing.T) {
	res := Evaluate(Input{
		Options: opts("o1", "o2"),
		Votes: []models.Vote{
			vote("u1", "o1"), vote("u1", "o2"),
			vote("u2", "o1"),
		},
		Roster:          roster(3),
		Threshold:       60,
		MinParticipants: 3,
	})

	assert.Equal(t, 2, res.DistinctVoters)
	assert.False(t, res.ConsensusReached, "quorum counts distinct voters, not votes")
}

func TestEvaluate_IgnoresForeignVotes(t *testing.T) {
	res := Evaluate(Input{
		Options: opts("o1", "o2"),
		Votes: []models.Vote{
			vote("outsider", "o1"),
			vote("u1", "other-poll-option"),
			vote("u1", "o1"),
			vote("u1", "o1"), // duplicate row
		},
		Roster:          roster(2),
		Threshold:       50,
		MinParticipants: 1,
	})

	assert.Equal(t, 1, res.Tally("o1").VoteCount)
	assert.Equal(t, 1, res.DistinctVoters)
	assert.True(t, res.ConsensusReached)

	total := 0
	for _, tally := range res.Options {
		total += tally.VoteCount
	}
	assert.LessOrEqual(t, total, 4)
}

func TestEvaluate_DegenerateInputs(t *testing.T) {
	tests := []struct {
		name string
		in   Input
	}{
		{"no options", Input{Roster: roster(3), Threshold: 60, MinParticipants: 1}},
		{"empty roster", Input{Options: opts("o1", "o2"), Votes: []models.Vote{vote("u1", "o1")}, Threshold: 60, MinParticipants: 1}},
		{"no votes", Input{Options: opts("o1", "o2"), Roster: roster(3), Threshold: 60, MinParticipants: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Evaluate(tt.in)
			assert.False(t, res.ConsensusReached)
			assert.Nil(t, res.Leading)
		})
	}
}

func TestEvaluate_PreferredCount(t *testing.T) {
	v := vote("u1", "o1")
	v.Preferred = true
	res := Evaluate(Input{
		Options:         opts("o1", "o2"),
		Votes:           []models.Vote{v, vote("u2", "o1")},
		Roster:          roster(2),
		Threshold:       60,
		MinParticipants: 1,
	})

	assert.Equal(t, 1, res.Tally("o1").PreferredCount)
	assert.Equal(t, 2, res.Tally("o1").VoteCount)
	assert.Equal(t, 0, res.Tally("missing").VoteCount)
}
