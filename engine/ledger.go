// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/quickly-plan/consensus"
	"github.com/danielhkuo/quickly-plan/events"
	"github.com/danielhkuo/quickly-plan/models"
	"github.com/danielhkuo/quickly-plan/store"
)

type CastVoteInput struct {
	PollID    string
	UserID    string
	OptionID  string
	Preferred bool
}

type RemoveVoteInput struct {
	PollID   string
	UserID   string
	OptionID string
}

// CastVote toggles the user's approval of an option: an existing vote is
// withdrawn, otherwise one is recorded. The evaluator runs in the same
// transaction, so the returned status already reflects any transition.
func (s *Service) CastVote(ctx context.Context, in CastVoteInput) (models.VoteResult, error) {
	return s.mutateVote(ctx, in.PollID, in.UserID, in.OptionID, func(ctx context.Context, tx *store.Store, now time.Time) (bool, bool, error) {
		existing, found, err := tx.FindVote(ctx, in.OptionID, in.UserID)
		if err != nil {
			return false, false, err
		}
		if found {
			return false, true, tx.DeleteVote(ctx, existing.ID)
		}
		return true, true, tx.InsertVote(ctx, models.Vote{
			ID:        s.newID(),
			PollID:    in.PollID,
			OptionID:  in.OptionID,
			UserID:    in.UserID,
			Preferred: in.Preferred,
			CreatedAt: now,
		})
	})
}

// RemoveVote withdraws a vote. Removing a vote that does not exist is a
// no-op and emits nothing.
func (s *Service) RemoveVote(ctx context.Context, in RemoveVoteInput) (models.VoteResult, error) {
	return s.mutateVote(ctx, in.PollID, in.UserID, in.OptionID, func(ctx context.Context, tx *store.Store, now time.Time) (bool, bool, error) {
		existing, found, err := tx.FindVote(ctx, in.OptionID, in.UserID)
		if err != nil || !found {
			return false, false, err
		}
		return false, true, tx.DeleteVote(ctx, existing.ID)
	})
}

// voteChange applies one ledger change and reports (added, changed)
type voteChange func(ctx context.Context, tx *store.Store, now time.Time) (bool, bool, error)

func (s *Service) mutateVote(ctx context.Context, pollID, userID, optionID string, change voteChange) (models.VoteResult, error) {
	if pollID == "" || userID == "" || optionID == "" {
		return models.VoteResult{}, fmt.Errorf("%w: poll_id, user_id and option_id are required", ErrInvalidInput)
	}

	unlock := s.locks.Lock(pollID)
	defer unlock()

	poll, err := s.loadPoll(ctx, pollID)
	if err != nil {
		return models.VoteResult{}, err
	}
	roster, err := s.roster.GetRoster(ctx, poll.PlanID)
	if err != nil {
		return models.VoteResult{}, fmt.Errorf("failed to read roster: %w", err)
	}
	member, err := s.roster.IsParticipant(ctx, poll.PlanID, userID)
	if err != nil {
		return models.VoteResult{}, fmt.Errorf("failed to check participant: %w", err)
	}

	var (
		result  models.VoteResult
		changed bool
		expired bool
	)
	err = s.store.WithTx(ctx, func(tx *store.Store) error {
		now := s.clock()
		poll, err := lockPoll(ctx, tx, pollID)
		if err != nil {
			return err
		}

		if expired, err = s.settleExpiry(ctx, tx, &poll, now, false); err != nil || expired {
			return err
		}
		if poll.Status != models.StatusActive {
			return fmt.Errorf("%w: poll is %s", ErrInvalidState, poll.Status)
		}
		if !member {
			return ErrNotAParticipant
		}

		opt, err := tx.GetOption(ctx, optionID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && opt.PollID != pollID) {
			return ErrUnknownOption
		}
		if err != nil {
			return err
		}

		added, didChange, err := change(ctx, tx, now)
		if err != nil {
			return err
		}
		changed = didChange
		if changed {
			err = s.emit(ctx, tx, events.TypeVoteCast, pollID, now, events.VoteCast{
				PollID:   pollID,
				UserID:   userID,
				OptionID: optionID,
				Added:    added,
			})
			if err != nil {
				return err
			}
		}

		res, err := s.evaluate(ctx, tx, &poll, roster, now)
		if err != nil {
			return err
		}
		result = voteResult(poll, res, userID, optionID, added)
		return nil
	})
	if expired {
		s.notify()
		return models.VoteResult{}, fmt.Errorf("%w: poll deadline has passed", ErrInvalidState)
	}
	if err != nil {
		return models.VoteResult{}, err
	}

	if changed {
		s.notify()
		s.logger.Info("vote recorded",
			"poll_id", pollID,
			"user_id", userID,
			"option_id", optionID,
			"added", result.Added,
			"status", result.Status,
		)
	}
	return result, nil
}

func voteResult(poll models.Poll, res consensus.Result, userID, optionID string, added bool) models.VoteResult {
	tally := res.Tally(optionID)
	return models.VoteResult{
		PollID:           poll.ID,
		OptionID:         optionID,
		UserID:           userID,
		Added:            added,
		VoteCount:        tally.VoteCount,
		Percentage:       tally.Percentage,
		Status:           poll.Status,
		ConsensusReached: poll.Status == models.StatusConsensusReached,
		WinningOptionID:  poll.WinningOptionID,
	}
}

// GetVotesForPoll lists every vote on a poll in the order it was cast
func (s *Service) GetVotesForPoll(ctx context.Context, pollID string) ([]models.Vote, error) {
	if _, err := s.loadPoll(ctx, pollID); err != nil {
		return nil, err
	}
	return s.store.ListVotes(ctx, pollID)
}
