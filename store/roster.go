// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/danielhkuo/quickly-plan/models"
)

// AddParticipant adds a user to a plan roster. Re-adding is a no-op.
func (s *Store) AddParticipant(ctx context.Context, planID, userID, role string, at time.Time) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO plan_participant (plan_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (plan_id, user_id) DO NOTHING
	`, planID, userID, role, at.UTC())
	if err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}
	return nil
}

func (s *Store) ListParticipants(ctx context.Context, planID string) ([]models.Participant, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT plan_id, user_id, role, joined_at
		FROM plan_participant
		WHERE plan_id = $1
		ORDER BY joined_at, user_id
	`, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	participants := []models.Participant{}
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.PlanID, &p.UserID, &p.Role, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// GetRoster returns the user ids on a plan's roster
func (s *Store) GetRoster(ctx context.Context, planID string) ([]string, error) {
	participants, err := s.ListParticipants(ctx, planID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(participants))
	for i, p := range participants {
		ids[i] = p.UserID
	}
	return ids, nil
}

func (s *Store) IsParticipant(ctx context.Context, planID, userID string) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM plan_participant
			WHERE plan_id = $1 AND user_id = $2
		)
	`, planID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check participant: %w", err)
	}
	return exists, nil
}
