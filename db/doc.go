// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Connecting

Open picks the driver from the configured database type:

	conn, err := db.Open("postgres", "postgres://...")
	conn, err := db.Open("sqlite", "file:quickly-plan.db")

PostgreSQL uses github.com/lib/pq. SQLite uses modernc.org/sqlite with
foreign keys enabled and a single open connection.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
Statements only use DDL understood by both PostgreSQL and SQLite.

# Tables

  - plan: The hangout being organized; deciding until confirmed
  - plan_participant: Roster of invited users with their role
  - poll: Consensus poll for a plan, with threshold and deadline
  - option: Candidate time/place/activity proposals
  - vote: One row per (user, option)
  - outbox: Events written with state changes, relayed after commit

# Relationships

	plan 1──* plan_participant
	plan 1──* poll
	poll 1──* option
	option 1──* vote
	poll 1──* vote

All foreign keys use ON DELETE CASCADE.

# Constraints

  - poll(plan_id) is unique among rows with status 'active'
  - option(poll_id, position) is unique; position is creation order
  - vote(option_id, user_id) is unique
*/
package db
