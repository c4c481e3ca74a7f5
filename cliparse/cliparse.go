package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Event sinks understood by the outbox relay
const (
	SinkLog   = "log"
	SinkKafka = "kafka"
	SinkRedis = "redis"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	AdminKeySalt string

	EventSink          string
	KafkaBrokers       []string
	KafkaTopic         string
	RedisAddr          string
	RedisChannelPrefix string

	OutboxInterval      time.Duration
	ExpirySweepInterval time.Duration
}

// ParseFlags validates flags and sets port number
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile, brokers string

	fs := flag.NewFlagSet("quickly-plan", flag.ContinueOnError)

	fs.StringVar(&envFile, "env", ".env", "Optional dotenv file")

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")

	// Event delivery
	fs.StringVar(&cfg.EventSink, "sink", "", "Event sink (log, kafka or redis)")
	fs.StringVar(&brokers, "kafka-brokers", "", "Comma separated Kafka brokers")
	fs.StringVar(&cfg.KafkaTopic, "kafka-topic", "", "Kafka topic for plan events")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", "", "Redis address")
	fs.StringVar(&cfg.RedisChannelPrefix, "redis-prefix", "", "Redis pub/sub channel prefix")
	fs.DurationVar(&cfg.OutboxInterval, "outbox-interval", 0, "Outbox relay poll interval")
	fs.DurationVar(&cfg.ExpirySweepInterval, "sweep-interval", -1, "Deadline sweep interval (0 disables)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Existing env always wins over the dotenv file
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	if cfg.EventSink == "" {
		cfg.EventSink = envOr("EVENT_SINK", SinkLog)
	}
	if brokers == "" {
		brokers = os.Getenv("KAFKA_BROKERS")
	}
	cfg.KafkaBrokers = splitList(brokers)
	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = envOr("KAFKA_TOPIC", "plan-events")
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = envOr("REDIS_ADDR", "localhost:6379")
	}
	if cfg.RedisChannelPrefix == "" {
		cfg.RedisChannelPrefix = envOr("REDIS_CHANNEL_PREFIX", "quickly-plan")
	}

	switch cfg.EventSink {
	case SinkLog, SinkRedis:
	case SinkKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return Config{}, errors.New("KAFKA_BROKERS required for kafka sink")
		}
	default:
		return Config{}, fmt.Errorf("unknown event sink %q", cfg.EventSink)
	}

	if cfg.OutboxInterval == 0 {
		d, err := envDuration("OUTBOX_INTERVAL", 2*time.Second)
		if err != nil {
			return Config{}, err
		}
		cfg.OutboxInterval = d
	}
	if cfg.ExpirySweepInterval < 0 {
		d, err := envDuration("EXPIRY_SWEEP_INTERVAL", time.Minute)
		if err != nil {
			return Config{}, err
		}
		cfg.ExpirySweepInterval = d
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
