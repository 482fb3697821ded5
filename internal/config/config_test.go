package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/boddenberg/statement-ledger-go/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Port != 3333 {
		t.Errorf("expected port 3333, got %d", cfg.Port)
	}
	if cfg.IdentityMode != config.IdentityModeHeader {
		t.Errorf("expected header mode, got %q", cfg.IdentityMode)
	}
	if cfg.IdentityHeader != "cpf" {
		t.Errorf("expected identity header 'cpf', got %q", cfg.IdentityHeader)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("expected cache ttl 5m, got %s", cfg.CacheTTL)
	}
	if len(cfg.WebhookURLs) != 0 {
		t.Errorf("expected no webhooks, got %v", cfg.WebhookURLs)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("WEBHOOK_URLS", "http://a.local/hook,http://b.local/hook")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if len(cfg.WebhookURLs) != 2 {
		t.Errorf("expected 2 webhooks, got %v", cfg.WebhookURLs)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.RPS != 2.5 {
		t.Errorf("unexpected rate limit config: %+v", cfg.RateLimit)
	}
}

func TestLoad_BearerModeRequiresSecret(t *testing.T) {
	t.Setenv("IDENTITY_MODE", "bearer")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for bearer mode without JWT_SECRET")
	}

	t.Setenv("JWT_SECRET", "s3cret")
	if _, err := config.Load(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestLoad_UnknownIdentityMode(t *testing.T) {
	t.Setenv("IDENTITY_MODE", "mtls")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for unknown identity mode")
	}
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nLEDGER_TEST_A=\"from-file\"\nexport LEDGER_TEST_B=file-b\nbroken line\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	t.Setenv("LEDGER_TEST_B", "from-env")
	os.Unsetenv("LEDGER_TEST_A")
	t.Cleanup(func() { os.Unsetenv("LEDGER_TEST_A") })

	if err := config.LoadDotEnv(path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got := os.Getenv("LEDGER_TEST_A"); got != "from-file" {
		t.Errorf("expected 'from-file', got %q", got)
	}
	if got := os.Getenv("LEDGER_TEST_B"); got != "from-env" {
		t.Errorf("expected 'from-env', got %q", got)
	}
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	if err := config.LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
