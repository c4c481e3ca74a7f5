// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/danielhkuo/quickly-plan/auth"
	"github.com/danielhkuo/quickly-plan/consensus"
	"github.com/danielhkuo/quickly-plan/events"
	"github.com/danielhkuo/quickly-plan/models"
	"github.com/danielhkuo/quickly-plan/store"
)

// Roster answers who belongs to a plan. Membership is owned outside the
// polling engine; the store's plan_participant table is the default source.
type Roster interface {
	GetRoster(ctx context.Context, planID string) ([]string, error)
	IsParticipant(ctx context.Context, planID, userID string) (bool, error)
}

// Notifier is told after a commit that new outbox rows are waiting
type Notifier interface {
	Nudge()
}

// Service runs every poll mutation as one serializable unit per poll
type Service struct {
	store    *store.Store
	roster   Roster
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
	locks    *keyedMutex
}

// Option configures a Service
type Option func(*Service)

func WithRoster(r Roster) Option { return func(s *Service) { s.roster = r } }

func WithNotifier(n Notifier) Option { return func(s *Service) { s.notifier = n } }

func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithIDGenerator(newID func() string) Option { return func(s *Service) { s.newID = newID } }

func New(st *store.Store, opts ...Option) *Service {
	s := &Service{
		store: st,
		now:   time.Now,
		newID: auth.NewID,
		locks: newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.roster == nil {
		s.roster = st
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

func (s *Service) notify() {
	if s.notifier != nil {
		s.notifier.Nudge()
	}
}

// emit appends an event to the outbox inside tx
func (s *Service) emit(ctx context.Context, tx *store.Store, eventType, aggregateID string, at time.Time, payload any) error {
	env, err := events.NewEnvelope(s.newID(), eventType, aggregateID, at, payload)
	if err != nil {
		return err
	}
	rec, err := env.Record()
	if err != nil {
		return err
	}
	return tx.AppendOutbox(ctx, rec)
}

// loadPoll reads a poll outside any transaction
func (s *Service) loadPoll(ctx context.Context, pollID string) (models.Poll, error) {
	poll, err := s.store.GetPoll(ctx, pollID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Poll{}, ErrUnknownPoll
	}
	if err != nil {
		return models.Poll{}, err
	}
	return poll, nil
}

// lockPoll takes the database lock on a poll inside tx
func lockPoll(ctx context.Context, tx *store.Store, pollID string) (models.Poll, error) {
	poll, err := tx.LockPoll(ctx, pollID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Poll{}, ErrUnknownPoll
	}
	return poll, err
}

// settleExpiry persists a lapsed deadline. It reports whether the poll was
// active but lazily expired and is now stored as expired.
func (s *Service) settleExpiry(ctx context.Context, tx *store.Store, poll *models.Poll, now time.Time, byCreator bool) (bool, error) {
	if poll.Status != models.StatusActive || consensus.EffectiveStatus(*poll, now) != models.StatusExpired {
		return false, nil
	}
	if err := s.markExpired(ctx, tx, poll, now, byCreator); err != nil {
		return false, err
	}
	return true, nil
}

// checkTransition refuses any step outside the forward-only status table
func checkTransition(poll models.Poll, to models.PollStatus) error {
	if !consensus.CanTransition(poll.Status, to) {
		return fmt.Errorf("%w: poll cannot move from %s to %s", ErrInvalidState, poll.Status, to)
	}
	return nil
}

func (s *Service) markExpired(ctx context.Context, tx *store.Store, poll *models.Poll, now time.Time, byCreator bool) error {
	if err := checkTransition(*poll, models.StatusExpired); err != nil {
		return err
	}
	ok, err := tx.MarkExpired(ctx, poll.ID, now)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: poll is no longer active", ErrInvalidState)
	}
	poll.Status = models.StatusExpired
	poll.ClosedAt = &now
	s.logger.Info("poll expired", "poll_id", poll.ID, "plan_id", poll.PlanID, "closed_by_creator", byCreator)
	return s.emit(ctx, tx, events.TypePollExpired, poll.ID, now, events.PollExpired{
		PlanID:          poll.PlanID,
		PollID:          poll.ID,
		ClosedByCreator: byCreator,
	})
}

// evaluate re-runs the evaluator against the transaction's view of the poll
// and moves an active poll to consensus_reached when it qualifies
func (s *Service) evaluate(ctx context.Context, tx *store.Store, poll *models.Poll, roster []string, now time.Time) (consensus.Result, error) {
	options, err := tx.ListOptions(ctx, poll.ID)
	if err != nil {
		return consensus.Result{}, err
	}
	votes, err := tx.ListVotes(ctx, poll.ID)
	if err != nil {
		return consensus.Result{}, err
	}

	res := consensus.Evaluate(consensus.Input{
		Options:         options,
		Votes:           votes,
		Roster:          roster,
		Threshold:       poll.Threshold,
		MinParticipants: poll.MinParticipants,
	})
	if poll.Status != models.StatusActive || !res.ConsensusReached {
		return res, nil
	}

	if err := checkTransition(*poll, models.StatusConsensusReached); err != nil {
		return consensus.Result{}, err
	}
	winner := res.Leading.OptionID
	ok, err := tx.MarkConsensus(ctx, poll.ID, winner, now)
	if err != nil {
		return consensus.Result{}, err
	}
	if !ok {
		return res, nil
	}
	poll.Status = models.StatusConsensusReached
	poll.WinningOptionID = &winner
	poll.ConsensusAt = &now

	s.logger.Info("consensus reached",
		"poll_id", poll.ID,
		"plan_id", poll.PlanID,
		"winning_option_id", winner,
		"percentage", res.Leading.Percentage,
	)
	err = s.emit(ctx, tx, events.TypeConsensusReached, poll.ID, now, events.ConsensusReached{
		PlanID:          poll.PlanID,
		PollID:          poll.ID,
		WinningOptionID: winner,
		Percentage:      res.Leading.Percentage,
		DistinctVoters:  res.DistinctVoters,
	})
	return res, err
}

// keyedMutex serializes work per key and forgets keys nobody holds
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock blocks until key is free and returns the matching unlock
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
