package config

import (
	"os"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		unset := []string{
			"CAMPUS_HTTP_PORT",
			"CAMPUS_SQLITE_DSN",
			"CAMPUS_SESSION_TTL",
			"CAMPUS_SHUTDOWN_TIMEOUT",
			"CAMPUS_HISTORY_LIMIT",
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:campus.db?_foreign_keys=on" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionTTL != 24*time.Hour {
			t.Fatalf("expected default session TTL 24h, got %s", cfg.SessionTTL)
		}
		if cfg.HistoryLimit != 50 {
			t.Fatalf("expected default history limit 50, got %d", cfg.HistoryLimit)
		}
	})

	t.Run("errors when values are malformed", func(t *testing.T) {
		t.Setenv("CAMPUS_HTTP_PORT", "not-a-port")
		t.Setenv("CAMPUS_SESSION_TTL", "-1h")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for malformed values")
		}
		expected := "invalid environment variable values: CAMPUS_HTTP_PORT, CAMPUS_SESSION_TTL"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		t.Setenv("CAMPUS_HTTP_PORT", "9090")
		t.Setenv("CAMPUS_SQLITE_DSN", "file:/tmp/campus.db")
		t.Setenv("CAMPUS_SESSION_TTL", "12h")
		t.Setenv("CAMPUS_SHUTDOWN_TIMEOUT", "30s")
		t.Setenv("CAMPUS_HISTORY_LIMIT", "100")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:/tmp/campus.db" {
			t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionTTL != 12*time.Hour {
			t.Fatalf("expected session TTL 12h, got %s", cfg.SessionTTL)
		}
		if cfg.ShutdownTimeout != 30*time.Second {
			t.Fatalf("expected shutdown timeout 30s, got %s", cfg.ShutdownTimeout)
		}
		if cfg.HistoryLimit != 100 {
			t.Fatalf("expected history limit 100, got %d", cfg.HistoryLimit)
		}
	})
}
