// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/danielhkuo/quickly-plan/consensus"
	"github.com/danielhkuo/quickly-plan/models"
	"github.com/danielhkuo/quickly-plan/store"
)

const (
	maxTitleLength   = 200
	minPollOptions   = 2
	maxPollOptions   = 50
	maxRosterInvites = 200
)

// CreatedPlan is everything CreatePlan wrote
type CreatedPlan struct {
	Plan    models.Plan
	Poll    models.Poll
	Options []models.Option
}

// CreatePlan creates a deciding plan, its roster, an active poll and the
// poll's initial options in one transaction
func (s *Service) CreatePlan(ctx context.Context, req models.CreatePlanRequest) (CreatedPlan, error) {
	if err := validateCreatePlan(&req, s.clock()); err != nil {
		return CreatedPlan{}, err
	}

	now := s.clock()
	plan := models.Plan{
		ID:          s.newID(),
		Title:       req.Title,
		Description: req.Description,
		CreatorID:   req.CreatorID,
		Status:      models.PlanDeciding,
		CreatedAt:   now,
	}
	allowAdd := true
	if req.AllowAddOptions != nil {
		allowAdd = *req.AllowAddOptions
	}
	poll := models.Poll{
		ID:              s.newID(),
		PlanID:          plan.ID,
		Title:           req.PollTitle,
		Description:     req.Description,
		Status:          models.StatusActive,
		Threshold:       req.Threshold,
		MinParticipants: req.MinParticipants,
		Deadline:        utcPtr(req.Deadline),
		AllowAddOptions: allowAdd,
		CreatorID:       req.CreatorID,
		CreatedAt:       now,
	}

	var options []models.Option
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		if err := tx.InsertPlan(ctx, plan); err != nil {
			return err
		}
		if err := tx.AddParticipant(ctx, plan.ID, req.CreatorID, models.RoleCreator, now); err != nil {
			return err
		}
		for _, userID := range req.Participants {
			if userID == req.CreatorID {
				continue
			}
			if err := tx.AddParticipant(ctx, plan.ID, userID, models.RoleMember, now); err != nil {
				return err
			}
		}

		if err := tx.InsertPoll(ctx, poll); err != nil {
			return err
		}
		for i, in := range req.Options {
			opt := newOption(s.newID(), poll.ID, in, i+1, now)
			if err := tx.InsertOption(ctx, opt); err != nil {
				return err
			}
			options = append(options, opt)
		}
		return tx.SetActivePoll(ctx, plan.ID, poll.ID)
	})
	if err != nil {
		return CreatedPlan{}, err
	}

	plan.ActivePollID = &poll.ID
	s.logger.Info("plan created",
		"plan_id", plan.ID,
		"poll_id", poll.ID,
		"creator_id", plan.CreatorID,
		"options", len(options),
		"threshold", poll.Threshold,
	)
	return CreatedPlan{Plan: plan, Poll: poll, Options: options}, nil
}

func validateCreatePlan(req *models.CreatePlanRequest, now time.Time) error {
	req.Title = strings.TrimSpace(req.Title)
	req.CreatorID = strings.TrimSpace(req.CreatorID)
	if req.Title == "" || req.CreatorID == "" {
		return fmt.Errorf("%w: title and creator_id are required", ErrInvalidInput)
	}
	if len(req.Title) > maxTitleLength {
		return fmt.Errorf("%w: title must be %d characters or less", ErrInvalidInput, maxTitleLength)
	}
	if req.PollTitle = strings.TrimSpace(req.PollTitle); req.PollTitle == "" {
		req.PollTitle = req.Title
	}

	if req.Threshold == 0 {
		req.Threshold = models.DefaultThreshold
	}
	if req.Threshold <= 0 || req.Threshold > 100 {
		return fmt.Errorf("%w: threshold must be in (0, 100]", ErrInvalidInput)
	}
	if req.MinParticipants == 0 {
		req.MinParticipants = models.DefaultMinParticipants
	}
	if req.MinParticipants < 1 {
		return fmt.Errorf("%w: min_participants must be at least 1", ErrInvalidInput)
	}
	if req.Deadline != nil && !req.Deadline.After(now) {
		return fmt.Errorf("%w: deadline must be in the future", ErrInvalidInput)
	}

	if len(req.Participants) > maxRosterInvites {
		return fmt.Errorf("%w: at most %d participants", ErrInvalidInput, maxRosterInvites)
	}
	seen := map[string]bool{req.CreatorID: true}
	participants := make([]string, 0, len(req.Participants))
	for _, p := range req.Participants {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		participants = append(participants, p)
	}
	req.Participants = participants

	if len(req.Options) < minPollOptions || len(req.Options) > maxPollOptions {
		return fmt.Errorf("%w: a poll needs between %d and %d options", ErrInvalidInput, minPollOptions, maxPollOptions)
	}
	for i := range req.Options {
		if err := validateOption(&req.Options[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateOption(in *models.OptionInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return fmt.Errorf("%w: option title is required", ErrInvalidInput)
	}
	if len(in.Title) > maxTitleLength {
		return fmt.Errorf("%w: option title must be %d characters or less", ErrInvalidInput, maxTitleLength)
	}
	switch in.Kind {
	case "":
		in.Kind = models.KindGeneral
	case models.KindGeneral, models.KindTime, models.KindPlace, models.KindActivity:
	default:
		return fmt.Errorf("%w: unknown option kind %q", ErrInvalidInput, in.Kind)
	}
	if in.Price != nil && *in.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
	}
	return nil
}

func newOption(id, pollID string, in models.OptionInput, position int, now time.Time) models.Option {
	return models.Option{
		ID:          id,
		PollID:      pollID,
		Kind:        in.Kind,
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		StartsAt:    utcPtr(in.StartsAt),
		Price:       in.Price,
		URL:         in.URL,
		Position:    position,
		CreatedAt:   now,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// AddOption appends an option to an active poll that allows additions.
// Existing votes are untouched.
func (s *Service) AddOption(ctx context.Context, pollID string, in models.OptionInput) (models.Option, error) {
	if err := validateOption(&in); err != nil {
		return models.Option{}, err
	}

	unlock := s.locks.Lock(pollID)
	defer unlock()

	var opt models.Option
	err := s.activePollTx(ctx, pollID, func(tx *store.Store, poll models.Poll, now time.Time) error {
		if !poll.AllowAddOptions {
			return fmt.Errorf("%w: poll does not accept new options", ErrInvalidState)
		}
		position, err := tx.NextOptionPosition(ctx, pollID)
		if err != nil {
			return err
		}
		opt = newOption(s.newID(), pollID, in, position, now)
		return tx.InsertOption(ctx, opt)
	})
	if err != nil {
		return models.Option{}, err
	}

	s.logger.Info("option added", "poll_id", pollID, "option_id", opt.ID, "position", opt.Position)
	return opt, nil
}

// ExtendDeadline moves or clears the deadline of an active poll. A nil
// deadline removes it. A poll whose deadline already lapsed stays expired.
func (s *Service) ExtendDeadline(ctx context.Context, pollID string, deadline *time.Time) (models.Poll, error) {
	unlock := s.locks.Lock(pollID)
	defer unlock()

	var updated models.Poll
	err := s.activePollTx(ctx, pollID, func(tx *store.Store, poll models.Poll, now time.Time) error {
		if deadline != nil && !deadline.After(now) {
			return fmt.Errorf("%w: deadline must be in the future", ErrInvalidInput)
		}
		d := utcPtr(deadline)
		if err := tx.UpdateDeadline(ctx, pollID, d); err != nil {
			return err
		}
		poll.Deadline = d
		updated = poll
		return nil
	})
	if err != nil {
		return models.Poll{}, err
	}

	s.logger.Info("poll deadline changed", "poll_id", pollID, "deadline", updated.Deadline)
	return updated, nil
}

// ClosePoll ends voting early. The poll expires unless the evaluator
// already reports consensus, in which case consensus is recorded instead.
func (s *Service) ClosePoll(ctx context.Context, pollID string) (models.Poll, error) {
	unlock := s.locks.Lock(pollID)
	defer unlock()

	current, err := s.loadPoll(ctx, pollID)
	if err != nil {
		return models.Poll{}, err
	}
	roster, err := s.roster.GetRoster(ctx, current.PlanID)
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to read roster: %w", err)
	}

	var closed models.Poll
	err = s.activePollTx(ctx, pollID, func(tx *store.Store, poll models.Poll, now time.Time) error {
		if _, err := s.evaluate(ctx, tx, &poll, roster, now); err != nil {
			return err
		}
		if poll.Status == models.StatusActive {
			if err := s.markExpired(ctx, tx, &poll, now, true); err != nil {
				return err
			}
		}
		closed = poll
		return nil
	})
	if err != nil {
		return models.Poll{}, err
	}

	s.notify()
	s.logger.Info("poll closed", "poll_id", pollID, "status", closed.Status)
	return closed, nil
}

// activePollTx locks the poll and runs fn only while it is active. A lapsed
// deadline is persisted first and reported as ErrInvalidState.
func (s *Service) activePollTx(ctx context.Context, pollID string, fn func(tx *store.Store, poll models.Poll, now time.Time) error) error {
	var expired bool
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
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
		return fn(tx, poll, now)
	})
	if expired {
		s.notify()
		return fmt.Errorf("%w: poll deadline has passed", ErrInvalidState)
	}
	return err
}

// ExpireDue persists expiry for every active poll whose deadline has passed
// and returns how many polls it expired
func (s *Service) ExpireDue(ctx context.Context) (int, error) {
	polls, err := s.store.ListActivePollsWithDeadline(ctx)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, candidate := range polls {
		if consensus.EffectiveStatus(candidate, s.clock()) != models.StatusExpired {
			continue
		}
		ok, err := s.expireOne(ctx, candidate.ID)
		if err != nil {
			return expired, fmt.Errorf("failed to expire poll %s: %w", candidate.ID, err)
		}
		if ok {
			expired++
		}
	}

	if expired > 0 {
		s.notify()
		s.logger.Info("expiry sweep completed", "expired", expired)
	}
	return expired, nil
}

func (s *Service) expireOne(ctx context.Context, pollID string) (bool, error) {
	unlock := s.locks.Lock(pollID)
	defer unlock()

	var expired bool
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		poll, err := lockPoll(ctx, tx, pollID)
		if err != nil {
			return err
		}
		expired, err = s.settleExpiry(ctx, tx, &poll, s.clock(), false)
		return err
	})
	return expired, err
}

// RunExpirySweeper calls ExpireDue on every tick until ctx is cancelled
func (s *Service) RunExpirySweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.ExpireDue(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("expiry sweep failed", "error", err)
			}
		}
	}
}
