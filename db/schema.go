// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The DDL sticks to the subset shared by PostgreSQL and SQLite.
func CreateSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(context.Background(), stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// Tables lists every table in drop order (children first)
var Tables = []string{"outbox", "vote", "option", "poll", "plan_participant", "plan"}

var schema = []string{
	// Plans
	`CREATE TABLE IF NOT EXISTS plan (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    creator_id TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'deciding' CHECK (status IN ('deciding', 'confirmed')),
    active_poll_id TEXT,
    confirmed_title TEXT,
    location TEXT,
    starts_at TIMESTAMP,
    price DOUBLE PRECISION,
    url TEXT,
    confirmed_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,

	// Roster
	`CREATE TABLE IF NOT EXISTS plan_participant (
    plan_id TEXT NOT NULL REFERENCES plan(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'member' CHECK (role IN ('creator', 'member')),
    joined_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (plan_id, user_id)
)`,

	// Polls
	`CREATE TABLE IF NOT EXISTS poll (
    id TEXT PRIMARY KEY,
    plan_id TEXT NOT NULL REFERENCES plan(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'consensus_reached', 'expired', 'finalized')),
    threshold DOUBLE PRECISION NOT NULL DEFAULT 60 CHECK (threshold > 0 AND threshold <= 100),
    min_participants INTEGER NOT NULL DEFAULT 1 CHECK (min_participants >= 1),
    deadline TIMESTAMP,
    allow_add_options BOOLEAN NOT NULL DEFAULT TRUE,
    creator_id TEXT NOT NULL,
    winning_option_id TEXT,
    consensus_at TIMESTAMP,
    closed_at TIMESTAMP,
    finalized_at TIMESTAMP,
    version INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE INDEX IF NOT EXISTS idx_poll_plan_id ON poll(plan_id)`,
	`CREATE INDEX IF NOT EXISTS idx_poll_status ON poll(status)`,
	// One open poll per plan
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_poll_one_active_per_plan ON poll(plan_id) WHERE status = 'active'`,

	// Options
	`CREATE TABLE IF NOT EXISTS option (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    kind TEXT NOT NULL DEFAULT 'general' CHECK (kind IN ('general', 'time', 'place', 'activity')),
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    location TEXT,
    starts_at TIMESTAMP,
    price DOUBLE PRECISION,
    url TEXT,
    position INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (poll_id, position)
)`,
	`CREATE INDEX IF NOT EXISTS idx_option_poll_id ON option(poll_id)`,

	// Votes
	`CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    option_id TEXT NOT NULL REFERENCES option(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    preferred BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (option_id, user_id)
)`,
	`CREATE INDEX IF NOT EXISTS idx_vote_poll_id ON vote(poll_id)`,

	// Transactional outbox
	`CREATE TABLE IF NOT EXISTS outbox (
    id TEXT PRIMARY KEY,
    event_type TEXT NOT NULL,
    aggregate_id TEXT NOT NULL,
    payload TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    seq BIGINT NOT NULL,
    published_at TIMESTAMP,
    attempts INTEGER NOT NULL DEFAULT 0,
    last_error TEXT
)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox(published_at, seq)`,
}
