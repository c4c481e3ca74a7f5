// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package events defines the domain events emitted by the polling engine and
// delivers them to downstream collaborators.
//
// Events are written to the outbox table in the same transaction as the
// state change they describe. A Relay reads committed rows in order and hands
// them to a Publisher, marking each row published only after the publisher
// accepted it. Delivery is therefore at-least-once; consumers dedupe on
// Envelope.EventID.
//
// Publishers:
//
//   - LogPublisher: structured log lines, the default for local development
//   - KafkaPublisher: one topic, keyed by aggregate id
//   - RedisPublisher: pub/sub, one channel per event type
package events
