// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielhkuo/quickly-plan/events"
	"github.com/danielhkuo/quickly-plan/models"
	"github.com/danielhkuo/quickly-plan/store"
)

// Finalize copies the winning option onto the plan, confirms the plan and
// moves the poll to finalized. A poll that reached consensus finalizes with
// its recorded winner; an expired poll needs the creator to name one.
// Exactly one plan.confirmed event is written per poll.
func (s *Service) Finalize(ctx context.Context, pollID, winningOptionID string) (models.ProjectedPlan, error) {
	unlock := s.locks.Lock(pollID)
	defer unlock()

	var projected models.ProjectedPlan
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		now := s.clock()
		poll, err := lockPoll(ctx, tx, pollID)
		if err != nil {
			return err
		}
		if _, err := s.settleExpiry(ctx, tx, &poll, now, false); err != nil {
			return err
		}

		var winner string
		switch poll.Status {
		case models.StatusFinalized:
			return ErrAlreadyFinalized
		case models.StatusActive:
			return fmt.Errorf("%w: poll is still open", ErrInvalidState)
		case models.StatusConsensusReached:
			if poll.WinningOptionID == nil {
				return fmt.Errorf("%w: consensus poll has no recorded winner", ErrInvalidState)
			}
			winner = *poll.WinningOptionID
			if winningOptionID != "" && winningOptionID != winner {
				return fmt.Errorf("%w: poll already reached consensus on another option", ErrInvalidState)
			}
		case models.StatusExpired:
			if winningOptionID == "" {
				return ErrBelowQuorum
			}
			winner = winningOptionID
		default:
			return fmt.Errorf("%w: unknown status %q", ErrInvalidState, poll.Status)
		}

		opt, err := tx.GetOption(ctx, winner)
		if errors.Is(err, store.ErrNotFound) || (err == nil && opt.PollID != pollID) {
			return ErrUnknownOption
		}
		if err != nil {
			return err
		}

		if err := checkTransition(poll, models.StatusFinalized); err != nil {
			return err
		}
		ok, err := tx.MarkFinalized(ctx, pollID, poll.Status, winner, now)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: poll changed while finalizing", ErrInvalidState)
		}

		fields := project(opt)
		if err := tx.ConfirmPlan(ctx, poll.PlanID, fields, now); err != nil {
			return err
		}
		err = s.emit(ctx, tx, events.TypePlanConfirmed, pollID, now, events.PlanConfirmed{
			PlanID:          poll.PlanID,
			PollID:          pollID,
			WinningOptionID: winner,
			ConfirmedFields: fields,
		})
		if err != nil {
			return err
		}

		plan, err := tx.GetPlan(ctx, poll.PlanID)
		if err != nil {
			return err
		}
		projected = models.ProjectedPlan{
			Plan:            plan,
			PollID:          pollID,
			WinningOptionID: winner,
			ConfirmedFields: fields,
		}
		return nil
	})
	if err != nil {
		return models.ProjectedPlan{}, err
	}

	s.notify()
	s.logger.Info("plan confirmed",
		"plan_id", projected.Plan.ID,
		"poll_id", pollID,
		"winning_option_id", projected.WinningOptionID,
	)
	return projected, nil
}

// project picks the option fields that carry onto the plan
func project(opt models.Option) models.ConfirmedFields {
	title := opt.Title
	return models.ConfirmedFields{
		Title:    &title,
		Location: opt.Location,
		StartsAt: opt.StartsAt,
		Price:    opt.Price,
		URL:      opt.URL,
	}
}
