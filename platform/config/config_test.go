package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/byabshik")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GetCourierBaseURL() != defaultCourierBaseURL {
		t.Errorf("expected default courier base url, got %q", cfg.GetCourierBaseURL())
	}
	if cfg.GetCourierTimeout() != 15*time.Second {
		t.Errorf("expected 15s courier timeout, got %s", cfg.GetCourierTimeout())
	}
	if cfg.GetCourierSyncConcurrency() != 4 {
		t.Errorf("expected sync concurrency 4, got %d", cfg.GetCourierSyncConcurrency())
	}
	if cfg.IsMinIOEnabled() {
		t.Error("expected minio disabled without endpoint")
	}
}

func TestLoadTrimsCourierBaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("COURIER_BASE_URL", "https://sandbox.example.com/api/v1/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GetCourierBaseURL() != "https://sandbox.example.com/api/v1" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.GetCourierBaseURL())
	}
}

func TestLoadRejectsMissingSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/byabshik")
	t.Setenv("JWT_ACCESS_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_ACCESS_SECRET is empty")
	}
}

func TestLoadRejectsWildcardCORSWithCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CORS_ORIGINS", "*")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "true")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for wildcard origins with credentials")
	}
}

func TestLoadRejectsShortAdminPassword(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_PASSWORD", "short")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for short bootstrap password")
	}
}

func TestLoadRejectsInvertedPoolBounds(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_MAX_CONNS", "2")
	t.Setenv("DB_MIN_CONNS", "5")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DB_MIN_CONNS exceeds DB_MAX_CONNS")
	}
}
