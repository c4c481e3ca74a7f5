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

func (s *Store) InsertPlan(ctx context.Context, plan models.Plan) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO plan (id, title, description, creator_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, plan.ID, plan.Title, plan.Description, plan.CreatorID, string(plan.Status), plan.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert plan: %w", err)
	}
	return nil
}

func (s *Store) GetPlan(ctx context.Context, planID string) (models.Plan, error) {
	var (
		plan         models.Plan
		status       string
		activePollID sql.NullString
		title        sql.NullString
		location     sql.NullString
		startsAt     sql.NullTime
		price        sql.NullFloat64
		url          sql.NullString
		confirmedAt  sql.NullTime
	)
	err := s.q.QueryRowContext(ctx, `
		SELECT id, title, description, creator_id, status, active_poll_id,
		       confirmed_title, location, starts_at, price, url, confirmed_at, created_at
		FROM plan
		WHERE id = $1
	`, planID).Scan(
		&plan.ID, &plan.Title, &plan.Description, &plan.CreatorID, &status, &activePollID,
		&title, &location, &startsAt, &price, &url, &confirmedAt, &plan.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Plan{}, ErrNotFound
	}
	if err != nil {
		return models.Plan{}, fmt.Errorf("failed to query plan: %w", err)
	}

	plan.Status = models.PlanStatus(status)
	plan.ActivePollID = stringPtr(activePollID)
	plan.Confirmed = models.ConfirmedFields{
		Title:    stringPtr(title),
		Location: stringPtr(location),
		StartsAt: timePtr(startsAt),
		Price:    floatPtr(price),
		URL:      stringPtr(url),
	}
	plan.ConfirmedAt = timePtr(confirmedAt)
	plan.CreatedAt = plan.CreatedAt.UTC()
	return plan, nil
}

func (s *Store) SetActivePoll(ctx context.Context, planID, pollID string) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE plan SET active_poll_id = $1 WHERE id = $2
	`, pollID, planID)
	if err != nil {
		return fmt.Errorf("failed to set active poll: %w", err)
	}
	if ok, err := affected(res); err != nil {
		return err
	} else if !ok {
		return ErrNotFound
	}
	return nil
}

// ConfirmPlan copies the winning fields onto the plan and flips it to confirmed
func (s *Store) ConfirmPlan(ctx context.Context, planID string, fields models.ConfirmedFields, at time.Time) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE plan
		SET status = $1, confirmed_title = $2, location = $3, starts_at = $4,
		    price = $5, url = $6, confirmed_at = $7
		WHERE id = $8
	`, string(models.PlanConfirmed), nullString(fields.Title), nullString(fields.Location),
		nullTime(fields.StartsAt), nullFloat(fields.Price), nullString(fields.URL), at.UTC(), planID)
	if err != nil {
		return fmt.Errorf("failed to confirm plan: %w", err)
	}
	if ok, err := affected(res); err != nil {
		return err
	} else if !ok {
		return ErrNotFound
	}
	return nil
}
