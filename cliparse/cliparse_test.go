// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseFlags_EnvVars(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("ADMIN_KEY_SALT", "test-salt")
	t.Setenv("OUTBOX_INTERVAL", "5s")

	cfg, err := ParseFlags([]string{"-env", filepath.Join(t.TempDir(), "missing.env")})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected postgres, got %s", cfg.DatabaseType)
	}
	if cfg.OutboxInterval != 5*time.Second {
		t.Errorf("expected outbox interval 5s, got %s", cfg.OutboxInterval)
	}
	if cfg.EventSink != SinkLog {
		t.Errorf("expected default sink %q, got %q", SinkLog, cfg.EventSink)
	}
	if cfg.ExpirySweepInterval != time.Minute {
		t.Errorf("expected default sweep interval 1m, got %s", cfg.ExpirySweepInterval)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("PORT", "9000")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-admin-salt", "s1", "-sweep-interval", "0"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected sqlite default, got %s", cfg.DatabaseType)
	}
	if cfg.ExpirySweepInterval != 0 {
		t.Errorf("expected sweep disabled, got %s", cfg.ExpirySweepInterval)
	}
}

func TestParseFlags_DotEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	content := "DATABASE_URL=file:dotenv.db\nADMIN_KEY_SALT=from-file\nKAFKA_BROKERS=a:9092, b:9092\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("DATABASE_URL")
		os.Unsetenv("ADMIN_KEY_SALT")
		os.Unsetenv("KAFKA_BROKERS")
	})

	cfg, err := ParseFlags([]string{"-env", envFile, "-sink", "kafka"})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.DatabaseURL != "file:dotenv.db" {
		t.Errorf("expected database url from dotenv, got %q", cfg.DatabaseURL)
	}
	if cfg.AdminKeySalt != "from-file" {
		t.Errorf("expected salt from dotenv, got %q", cfg.AdminKeySalt)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "b:9092" {
		t.Errorf("unexpected brokers %v", cfg.KafkaBrokers)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")

	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"missing database url", map[string]string{"ADMIN_KEY_SALT": "s"}, nil},
		{"missing salt", map[string]string{"DATABASE_URL": "file:x.db"}, nil},
		{"bad database type", map[string]string{"DATABASE_URL": "x", "ADMIN_KEY_SALT": "s"}, []string{"-t", "mysql"}},
		{"kafka without brokers", map[string]string{"DATABASE_URL": "x", "ADMIN_KEY_SALT": "s"}, []string{"-sink", "kafka"}},
		{"unknown sink", map[string]string{"DATABASE_URL": "x", "ADMIN_KEY_SALT": "s"}, []string{"-sink", "carrier-pigeon"}},
		{"bad port", map[string]string{"DATABASE_URL": "x", "ADMIN_KEY_SALT": "s", "PORT": "abc"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"PORT", "DATABASE_URL", "ADMIN_KEY_SALT", "KAFKA_BROKERS", "EVENT_SINK"} {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			args := append([]string{"-env", missing}, tt.args...)
			if _, err := ParseFlags(args); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
