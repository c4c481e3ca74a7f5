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

const optionColumns = `id, poll_id, kind, title, description, location, starts_at, price, url, position, created_at`

func (s *Store) InsertOption(ctx context.Context, opt models.Option) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO option (id, poll_id, kind, title, description, location, starts_at, price, url, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, opt.ID, opt.PollID, string(opt.Kind), opt.Title, opt.Description, nullString(opt.Location),
		nullTime(opt.StartsAt), nullFloat(opt.Price), nullString(opt.URL), opt.Position, opt.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert option: %w", err)
	}
	return nil
}

// NextOptionPosition returns the creation-order slot for a new option
func (s *Store) NextOptionPosition(ctx context.Context, pollID string) (int, error) {
	var next int
	err := s.q.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(position), 0) + 1 FROM option WHERE poll_id = $1
	`, pollID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to compute option position: %w", err)
	}
	return next, nil
}

func scanOption(row interface{ Scan(...any) error }) (models.Option, error) {
	var (
		opt      models.Option
		kind     string
		location sql.NullString
		startsAt sql.NullTime
		price    sql.NullFloat64
		url      sql.NullString
	)
	err := row.Scan(&opt.ID, &opt.PollID, &kind, &opt.Title, &opt.Description, &location,
		&startsAt, &price, &url, &opt.Position, &opt.CreatedAt)
	if err != nil {
		return models.Option{}, err
	}
	opt.Kind = models.OptionKind(kind)
	opt.Location = stringPtr(location)
	opt.StartsAt = timePtr(startsAt)
	opt.Price = floatPtr(price)
	opt.URL = stringPtr(url)
	opt.CreatedAt = opt.CreatedAt.UTC()
	return opt, nil
}

func (s *Store) GetOption(ctx context.Context, optionID string) (models.Option, error) {
	opt, err := scanOption(s.q.QueryRowContext(ctx, `
		SELECT `+optionColumns+`
		FROM option
		WHERE id = $1
	`, optionID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Option{}, ErrNotFound
	}
	if err != nil {
		return models.Option{}, fmt.Errorf("failed to query option: %w", err)
	}
	return opt, nil
}

// ListOptions returns a poll's options in creation order
func (s *Store) ListOptions(ctx context.Context, pollID string) ([]models.Option, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+optionColumns+`
		FROM option
		WHERE poll_id = $1
		ORDER BY position
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	options := []models.Option{}
	for rows.Next() {
		opt, err := scanOption(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, opt)
	}
	return options, rows.Err()
}
