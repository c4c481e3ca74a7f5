// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/danielhkuo/quickly-plan/store"
)

// Publisher delivers an event to downstream collaborators
type Publisher interface {
	Publish(ctx context.Context, event Envelope) error
}

// OutboxRepository is the slice of the store the relay needs
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]store.OutboxRecord, error)
	MarkOutboxPublished(ctx context.Context, id string, at time.Time) error
	MarkOutboxFailed(ctx context.Context, id string, reason string) error
}

// Relay publishes persisted outbox rows after their transaction committed
type Relay struct {
	outbox    OutboxRepository
	publisher Publisher
	logger    *slog.Logger
	batchSize int
	interval  time.Duration
	now       func() time.Time
	nudge     chan struct{}
}

func NewRelay(outbox OutboxRepository, publisher Publisher, interval time.Duration, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Relay{
		outbox:    outbox,
		publisher: publisher,
		logger:    logger,
		batchSize: 100,
		interval:  interval,
		now:       time.Now,
		nudge:     make(chan struct{}, 1),
	}
}

// Nudge asks the relay to run soon. It never blocks.
func (r *Relay) Nudge() {
	select {
	case r.nudge <- struct{}{}:
	default:
	}
}

// Run relays on every tick or nudge until ctx is cancelled
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-r.nudge:
		}
		if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
			r.logger.Warn("outbox relay cycle failed", "error", err)
		}
	}
}

// RunOnce publishes a bounded batch of pending rows in order and marks each
// row published only after the publisher accepted it. It stops at the first
// failure so the next cycle retries from that row.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	pending, err := r.outbox.ListPendingOutbox(ctx, r.batchSize)
	if err != nil {
		r.logger.Error("outbox list failed", "error", err)
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	published := 0
	for _, row := range pending {
		var event Envelope
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			r.logger.Error("outbox decode failed", "outbox_id", row.ID, "error", err)
			r.markFailed(ctx, row.ID, err)
			return published, err
		}

		if err := r.publisher.Publish(ctx, event); err != nil {
			r.logger.Error("outbox publish failed",
				"outbox_id", row.ID,
				"event_type", event.EventType,
				"attempts", row.Attempts+1,
				"error", err,
			)
			r.markFailed(ctx, row.ID, err)
			return published, err
		}

		if err := r.outbox.MarkOutboxPublished(ctx, row.ID, r.now()); err != nil {
			r.logger.Error("outbox mark published failed", "outbox_id", row.ID, "error", err)
			return published, err
		}
		published++
	}

	r.logger.Debug("outbox relay cycle completed", "published_count", published)
	return published, nil
}

func (r *Relay) markFailed(ctx context.Context, id string, cause error) {
	if err := r.outbox.MarkOutboxFailed(ctx, id, cause.Error()); err != nil {
		r.logger.Warn("outbox mark failed failed", "outbox_id", id, "error", err)
	}
}
