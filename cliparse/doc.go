// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Before reading the environment it loads an optional dotenv file (-env,
default ".env"). Variables already set in the environment are not
overridden by the file.

# CLI Flags and Environment Variables

CLI flags take precedence over environment variables:

	-p               PORT                   Server port (default 3318)
	-d               DATABASE_URL           Database URL or sqlite path (required)
	-t               DATABASE_TYPE          sqlite (default) or postgres
	-admin-salt      ADMIN_KEY_SALT         Secret for admin key HMAC (required)
	-sink            EVENT_SINK             log (default), kafka or redis
	-kafka-brokers   KAFKA_BROKERS          Comma separated brokers (kafka sink)
	-kafka-topic     KAFKA_TOPIC            Default plan-events
	-redis-addr      REDIS_ADDR             Default localhost:6379
	-redis-prefix    REDIS_CHANNEL_PREFIX   Default quickly-plan
	-outbox-interval OUTBOX_INTERVAL        Relay poll interval (default 2s)
	-sweep-interval  EXPIRY_SWEEP_INTERVAL  Deadline sweep (default 1m, 0 disables)

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing
  - DATABASE_TYPE is not sqlite or postgres
  - ADMIN_KEY_SALT is missing
  - EVENT_SINK is unknown, or kafka is chosen without brokers
*/
package cliparse
