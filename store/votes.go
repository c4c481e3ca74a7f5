// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/quickly-plan/models"
)

// FindVote looks up the vote row for a (user, option) pair
func (s *Store) FindVote(ctx context.Context, optionID, userID string) (models.Vote, bool, error) {
	var v models.Vote
	err := s.q.QueryRowContext(ctx, `
		SELECT id, poll_id, option_id, user_id, preferred, created_at
		FROM vote
		WHERE option_id = $1 AND user_id = $2
	`, optionID, userID).Scan(&v.ID, &v.PollID, &v.OptionID, &v.UserID, &v.Preferred, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Vote{}, false, nil
	}
	if err != nil {
		return models.Vote{}, false, fmt.Errorf("failed to query vote: %w", err)
	}
	v.CreatedAt = v.CreatedAt.UTC()
	return v, true, nil
}

func (s *Store) InsertVote(ctx context.Context, v models.Vote) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO vote (id, poll_id, option_id, user_id, preferred, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, v.ID, v.PollID, v.OptionID, v.UserID, v.Preferred, v.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}
	return nil
}

func (s *Store) DeleteVote(ctx context.Context, voteID string) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM vote WHERE id = $1`, voteID)
	if err != nil {
		return fmt.Errorf("failed to delete vote: %w", err)
	}
	return nil
}

func (s *Store) ListVotes(ctx context.Context, pollID string) ([]models.Vote, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, poll_id, option_id, user_id, preferred, created_at
		FROM vote
		WHERE poll_id = $1
		ORDER BY created_at, id
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.ID, &v.PollID, &v.OptionID, &v.UserID, &v.Preferred, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		v.CreatedAt = v.CreatedAt.UTC()
		votes = append(votes, v)
	}
	return votes, rows.Err()
}
