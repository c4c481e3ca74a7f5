// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielhkuo/quickly-plan/models"
	"github.com/danielhkuo/quickly-plan/store"
)

// Event types
const (
	TypeVoteCast         = "vote.cast"
	TypeConsensusReached = "poll.consensus_reached"
	TypePollExpired      = "poll.expired"
	TypePlanConfirmed    = "plan.confirmed"
)

const sourceService = "quickly-plan"

// Envelope is the wire shape of every event. Consumers dedupe on EventID
// because delivery is at-least-once.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateID   string          `json:"aggregate_id"`
	SourceService string          `json:"source_service"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// VoteCast is emitted on every successful vote toggle or removal
type VoteCast struct {
	PollID   string `json:"poll_id"`
	UserID   string `json:"user_id"`
	OptionID string `json:"option_id"`
	Added    bool   `json:"added"`
}

// ConsensusReached is emitted once when a poll crosses its threshold
type ConsensusReached struct {
	PlanID          string  `json:"plan_id"`
	PollID          string  `json:"poll_id"`
	WinningOptionID string  `json:"winning_option_id"`
	Percentage      float64 `json:"percentage"`
	DistinctVoters  int     `json:"distinct_voters"`
}

// PollExpired is emitted when voting closes without consensus
type PollExpired struct {
	PlanID          string `json:"plan_id"`
	PollID          string `json:"poll_id"`
	ClosedByCreator bool   `json:"closed_by_creator"`
}

// PlanConfirmed is emitted once per finalized poll. Notification and RSVP
// seeding subscribe to it.
type PlanConfirmed struct {
	PlanID          string                 `json:"plan_id"`
	PollID          string                 `json:"poll_id"`
	WinningOptionID string                 `json:"winning_option_id"`
	ConfirmedFields models.ConfirmedFields `json:"confirmed_fields"`
}

// NewEnvelope wraps payload in an envelope
func NewEnvelope(eventID, eventType, aggregateID string, occurredAt time.Time, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:       eventID,
		EventType:     eventType,
		AggregateID:   aggregateID,
		SourceService: sourceService,
		OccurredAt:    occurredAt.UTC(),
		Payload:       data,
	}, nil
}

// Record converts the envelope to an outbox row
func (e Envelope) Record() (store.OutboxRecord, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return store.OutboxRecord{}, fmt.Errorf("failed to encode envelope: %w", err)
	}
	return store.OutboxRecord{
		ID:          e.EventID,
		EventType:   e.EventType,
		AggregateID: e.AggregateID,
		Payload:     body,
		CreatedAt:   e.OccurredAt,
	}, nil
}

// Decode reads the typed payload out of an envelope
func (e Envelope) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}
