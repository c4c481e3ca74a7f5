// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Plan API server.

Quickly Plan is the group-consensus engine behind hangout planning: a plan
opens a poll, its participants approve any number of options, and the poll
closes itself once one option is backed by a threshold share of the roster.
The creator then finalizes the winner onto the plan.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	ADMIN_KEY_SALT=... DATABASE_URL=quickly-plan.db go run .

Or against PostgreSQL:

	go run . -t postgres -d "postgres://..." -admin-salt ...

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite path or PostgreSQL connection string
  - ADMIN_KEY_SALT (-admin-salt): Secret for admin key HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - EVENT_SINK (-sink): log, kafka or redis (default: log)

See package cliparse for the full list.

# Architecture

  - consensus: pure tally and threshold evaluation, lazy expiry
  - engine: vote ledger, poll state machine, plan projector
  - store: SQL persistence shared by sqlite and postgres
  - events: outbox relay and Kafka / Redis / log publishers
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response and domain types
  - auth: IDs and admin keys
  - db: Connection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
