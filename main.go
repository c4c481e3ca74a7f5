package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/danielhkuo/quickly-plan/cliparse"
	"github.com/danielhkuo/quickly-plan/db"
	"github.com/danielhkuo/quickly-plan/engine"
	"github.com/danielhkuo/quickly-plan/events"
	"github.com/danielhkuo/quickly-plan/middleware"
	"github.com/danielhkuo/quickly-plan/router"
	"github.com/danielhkuo/quickly-plan/store"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect and verify
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := store.New(dbConn)

	publisher, closePublisher := newPublisher(cfg)
	defer closePublisher()

	relay := events.NewRelay(st, publisher, cfg.OutboxInterval, slog.Default())
	go relay.Run(ctx)

	svc := engine.New(st, engine.WithNotifier(relay), engine.WithLogger(slog.Default()))
	if cfg.ExpirySweepInterval > 0 {
		go svc.RunExpirySweeper(ctx, cfg.ExpirySweepInterval)
	}

	// Create router
	mux := router.NewRouter(svc, cfg)

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		server.Shutdown(shutdownCtx)
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "event_sink", cfg.EventSink)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

// newPublisher builds the configured event sink and its cleanup
func newPublisher(cfg cliparse.Config) (events.Publisher, func()) {
	switch cfg.EventSink {
	case cliparse.SinkKafka:
		p := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		slog.Info("publishing events to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
		return p, func() {
			if err := p.Close(); err != nil {
				slog.Warn("kafka writer close failed", "error", err)
			}
		}
	case cliparse.SinkRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		slog.Info("publishing events to redis", "addr", cfg.RedisAddr, "prefix", cfg.RedisChannelPrefix)
		return events.NewRedisPublisher(client, cfg.RedisChannelPrefix), func() {
			if err := client.Close(); err != nil {
				slog.Warn("redis client close failed", "error", err)
			}
		}
	default:
		return events.NewLogPublisher(slog.Default()), func() {}
	}
}
