// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/quickly-plan/models"
)

const pollColumns = `id, plan_id, title, description, status, threshold, min_participants,
		       deadline, allow_add_options, creator_id, winning_option_id,
		       consensus_at, closed_at, finalized_at, created_at`

func (s *Store) InsertPoll(ctx context.Context, poll models.Poll) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO poll (id, plan_id, title, description, status, threshold, min_participants,
		                  deadline, allow_add_options, creator_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, poll.ID, poll.PlanID, poll.Title, poll.Description, string(poll.Status), poll.Threshold,
		poll.MinParticipants, nullTime(poll.Deadline), poll.AllowAddOptions, poll.CreatorID, poll.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert poll: %w", err)
	}
	return nil
}

func scanPoll(row interface{ Scan(...any) error }) (models.Poll, error) {
	var (
		poll        models.Poll
		status      string
		deadline    sql.NullTime
		winner      sql.NullString
		consensusAt sql.NullTime
		closedAt    sql.NullTime
		finalizedAt sql.NullTime
	)
	err := row.Scan(
		&poll.ID, &poll.PlanID, &poll.Title, &poll.Description, &status, &poll.Threshold,
		&poll.MinParticipants, &deadline, &poll.AllowAddOptions, &poll.CreatorID, &winner,
		&consensusAt, &closedAt, &finalizedAt, &poll.CreatedAt,
	)
	if err != nil {
		return models.Poll{}, err
	}

	poll.Status = models.PollStatus(status)
	poll.Deadline = timePtr(deadline)
	poll.WinningOptionID = stringPtr(winner)
	poll.ConsensusAt = timePtr(consensusAt)
	poll.ClosedAt = timePtr(closedAt)
	poll.FinalizedAt = timePtr(finalizedAt)
	poll.CreatedAt = poll.CreatedAt.UTC()
	return poll, nil
}

func (s *Store) GetPoll(ctx context.Context, pollID string) (models.Poll, error) {
	poll, err := scanPoll(s.q.QueryRowContext(ctx, `
		SELECT `+pollColumns+`
		FROM poll
		WHERE id = $1
	`, pollID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Poll{}, ErrNotFound
	}
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to query poll: %w", err)
	}
	return poll, nil
}

// LockPoll bumps the poll version, which takes the row lock on PostgreSQL and
// the write lock on SQLite, then reads the poll. Call it first in a
// transaction so concurrent writers on the same poll queue up behind it.
func (s *Store) LockPoll(ctx context.Context, pollID string) (models.Poll, error) {
	res, err := s.q.ExecContext(ctx, `
		UPDATE poll SET version = version + 1 WHERE id = $1
	`, pollID)
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to lock poll: %w", err)
	}
	if ok, err := affected(res); err != nil {
		return models.Poll{}, err
	} else if !ok {
		return models.Poll{}, ErrNotFound
	}
	return s.GetPoll(ctx, pollID)
}

// MarkConsensus moves an active poll to consensus_reached and records the
// winner. It reports false if the poll was no longer active.
func (s *Store) MarkConsensus(ctx context.Context, pollID, winningOptionID string, at time.Time) (bool, error) {
	res, err := s.q.ExecContext(ctx, `
		UPDATE poll
		SET status = $1, winning_option_id = $2, consensus_at = $3
		WHERE id = $4 AND status = $5
	`, string(models.StatusConsensusReached), winningOptionID, at.UTC(), pollID, string(models.StatusActive))
	if err != nil {
		return false, fmt.Errorf("failed to mark consensus: %w", err)
	}
	return affected(res)
}

// MarkExpired moves an active poll to expired
func (s *Store) MarkExpired(ctx context.Context, pollID string, at time.Time) (bool, error) {
	res, err := s.q.ExecContext(ctx, `
		UPDATE poll
		SET status = $1, closed_at = $2
		WHERE id = $3 AND status = $4
	`, string(models.StatusExpired), at.UTC(), pollID, string(models.StatusActive))
	if err != nil {
		return false, fmt.Errorf("failed to mark poll expired: %w", err)
	}
	return affected(res)
}

// MarkFinalized moves a poll from the given status to finalized
func (s *Store) MarkFinalized(ctx context.Context, pollID string, from models.PollStatus, winningOptionID string, at time.Time) (bool, error) {
	res, err := s.q.ExecContext(ctx, `
		UPDATE poll
		SET status = $1, winning_option_id = $2, finalized_at = $3
		WHERE id = $4 AND status = $5
	`, string(models.StatusFinalized), winningOptionID, at.UTC(), pollID, string(from))
	if err != nil {
		return false, fmt.Errorf("failed to finalize poll: %w", err)
	}
	return affected(res)
}

func (s *Store) UpdateDeadline(ctx context.Context, pollID string, deadline *time.Time) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE poll SET deadline = $1 WHERE id = $2
	`, nullTime(deadline), pollID)
	if err != nil {
		return fmt.Errorf("failed to update deadline: %w", err)
	}
	if ok, err := affected(res); err != nil {
		return err
	} else if !ok {
		return ErrNotFound
	}
	return nil
}

// ListActivePollsWithDeadline returns stored-active polls that have a deadline.
// Callers decide expiry with consensus.EffectiveStatus.
func (s *Store) ListActivePollsWithDeadline(ctx context.Context) ([]models.Poll, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+pollColumns+`
		FROM poll
		WHERE status = $1 AND deadline IS NOT NULL
		ORDER BY deadline
	`, string(models.StatusActive))
	if err != nil {
		return nil, fmt.Errorf("failed to query active polls: %w", err)
	}
	defer rows.Close()

	polls := []models.Poll{}
	for rows.Next() {
		poll, err := scanPoll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, poll)
	}
	return polls, rows.Err()
}
