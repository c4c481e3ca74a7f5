// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// OutboxRecord is an event persisted in the same transaction as the state
// change it describes
type OutboxRecord struct {
	ID          string
	EventType   string
	AggregateID string
	Payload     []byte
	CreatedAt   time.Time
	PublishedAt *time.Time
	Attempts    int
	LastError   *string
}

var (
	seqMu   sync.Mutex
	lastSeq int64
)

// nextSeq is strictly increasing within the process so rows written in one
// transaction keep their order.
func nextSeq(now time.Time) int64 {
	seqMu.Lock()
	defer seqMu.Unlock()
	seq := now.UnixNano()
	if seq <= lastSeq {
		seq = lastSeq + 1
	}
	lastSeq = seq
	return seq
}

func (s *Store) AppendOutbox(ctx context.Context, rec OutboxRecord) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO outbox (id, event_type, aggregate_id, payload, created_at, seq)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rec.ID, rec.EventType, rec.AggregateID, string(rec.Payload), rec.CreatedAt.UTC(), nextSeq(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to append outbox event: %w", err)
	}
	return nil
}

// ListPendingOutbox returns unpublished rows, oldest first
func (s *Store) ListPendingOutbox(ctx context.Context, limit int) ([]OutboxRecord, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, event_type, aggregate_id, payload, created_at, attempts, last_error
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY seq
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer rows.Close()

	records := []OutboxRecord{}
	for rows.Next() {
		var (
			rec     OutboxRecord
			payload string
			lastErr sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.EventType, &rec.AggregateID, &payload, &rec.CreatedAt, &rec.Attempts, &lastErr); err != nil {
			return nil, fmt.Errorf("failed to scan outbox row: %w", err)
		}
		rec.Payload = []byte(payload)
		rec.CreatedAt = rec.CreatedAt.UTC()
		rec.LastError = stringPtr(lastErr)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListOutboxByAggregate returns every row for an aggregate, published or not
func (s *Store) ListOutboxByAggregate(ctx context.Context, aggregateID string) ([]OutboxRecord, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, event_type, aggregate_id, payload, created_at, published_at, attempts
		FROM outbox
		WHERE aggregate_id = $1
		ORDER BY seq
	`, aggregateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer rows.Close()

	records := []OutboxRecord{}
	for rows.Next() {
		var (
			rec         OutboxRecord
			payload     string
			publishedAt sql.NullTime
		)
		if err := rows.Scan(&rec.ID, &rec.EventType, &rec.AggregateID, &payload, &rec.CreatedAt, &publishedAt, &rec.Attempts); err != nil {
			return nil, fmt.Errorf("failed to scan outbox row: %w", err)
		}
		rec.Payload = []byte(payload)
		rec.CreatedAt = rec.CreatedAt.UTC()
		rec.PublishedAt = timePtr(publishedAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) MarkOutboxPublished(ctx context.Context, id string, at time.Time) error {
	_, err := s.q.ExecContext(ctx, `
		UPDATE outbox SET published_at = $1, attempts = attempts + 1, last_error = NULL WHERE id = $2
	`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox published: %w", err)
	}
	return nil
}

func (s *Store) MarkOutboxFailed(ctx context.Context, id string, reason string) error {
	_, err := s.q.ExecContext(ctx, `
		UPDATE outbox SET attempts = attempts + 1, last_error = $1 WHERE id = $2
	`, reason, id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox failure: %w", err)
	}
	return nil
}
