// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/quickly-plan/consensus"
	"github.com/danielhkuo/quickly-plan/models"
	"github.com/danielhkuo/quickly-plan/store"
)

// GetPlan returns a plan with its roster
func (s *Service) GetPlan(ctx context.Context, planID string) (models.Plan, error) {
	plan, err := s.store.GetPlan(ctx, planID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Plan{}, ErrUnknownPlan
	}
	if err != nil {
		return models.Plan{}, err
	}

	roster, err := s.roster.GetRoster(ctx, planID)
	if err != nil {
		return models.Plan{}, fmt.Errorf("failed to read roster: %w", err)
	}
	plan.ParticipantIDs = roster
	return plan, nil
}

// GetPoll returns a poll with its effective status
func (s *Service) GetPoll(ctx context.Context, pollID string) (models.Poll, error) {
	poll, err := s.loadPoll(ctx, pollID)
	if err != nil {
		return models.Poll{}, err
	}
	poll.Status = consensus.EffectiveStatus(poll, s.clock())
	return poll, nil
}

// GetPollView reports a poll with its effective status and live tallies.
// It never writes; a lapsed deadline shows as expired without persisting.
func (s *Service) GetPollView(ctx context.Context, pollID string) (models.PollView, error) {
	poll, err := s.loadPoll(ctx, pollID)
	if err != nil {
		return models.PollView{}, err
	}
	roster, err := s.roster.GetRoster(ctx, poll.PlanID)
	if err != nil {
		return models.PollView{}, fmt.Errorf("failed to read roster: %w", err)
	}
	options, err := s.store.ListOptions(ctx, pollID)
	if err != nil {
		return models.PollView{}, err
	}
	votes, err := s.store.ListVotes(ctx, pollID)
	if err != nil {
		return models.PollView{}, err
	}

	now := s.clock()
	poll.Status = consensus.EffectiveStatus(poll, now)
	res := consensus.Evaluate(consensus.Input{
		Options:         options,
		Votes:           votes,
		Roster:          roster,
		Threshold:       poll.Threshold,
		MinParticipants: poll.MinParticipants,
	})

	view := models.PollView{
		Poll:      poll,
		Options:   make([]models.OptionResult, 0, len(options)),
		NonVoters: res.NonVoters,
		Progress: models.ConsensusProgress{
			Threshold:        poll.Threshold,
			MinParticipants:  poll.MinParticipants,
			RosterSize:       res.RosterSize,
			DistinctVoters:   res.DistinctVoters,
			ConsensusReached: poll.Status == models.StatusConsensusReached || (poll.Status == models.StatusFinalized && poll.ConsensusAt != nil),
		},
	}
	if view.NonVoters == nil {
		view.NonVoters = []string{}
	}
	if res.Leading != nil {
		id := res.Leading.OptionID
		view.Progress.LeadingOptionID = &id
		view.Progress.LeadingPercent = res.Leading.Percentage
	}

	byID := make(map[string]models.Option, len(options))
	for _, opt := range options {
		byID[opt.ID] = opt
	}
	for _, t := range res.Options {
		view.Options = append(view.Options, models.OptionResult{
			Option:         byID[t.OptionID],
			VoteCount:      t.VoteCount,
			Percentage:     t.Percentage,
			VotesCastShare: t.VotesCastShare,
			PreferredCount: t.PreferredCount,
		})
	}

	if poll.Deadline != nil {
		view.DeadlineHuman = humanize.RelTime(*poll.Deadline, now, "ago", "from now")
	}
	return view, nil
}
