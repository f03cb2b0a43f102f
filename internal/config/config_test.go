package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	unsetEnvWithCleanup(t, "SERVER_PORT")
	unsetEnvWithCleanup(t, "PORT")
	unsetEnvWithCleanup(t, "SWIFT_DATA_FILE")
	unsetEnvWithCleanup(t, "VERIFY_ACCOUNT_RATE_LIMIT_PER_MINUTE")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ServerPort != "5001" {
		t.Fatalf("expected default server port 5001, got %q", cfg.ServerPort)
	}
	if cfg.SwiftDataFile != "AllCountries_v3.json" {
		t.Fatalf("expected default swift dataset file, got %q", cfg.SwiftDataFile)
	}
	if cfg.VerifyAccountRateLimitPerMinute != 60 {
		t.Fatalf("expected default account-check limit 60, got %d", cfg.VerifyAccountRateLimitPerMinute)
	}
	if cfg.PaymentCreatedQueue != "payments_review.payment_created" {
		t.Fatalf("expected default ingest queue name, got %q", cfg.PaymentCreatedQueue)
	}
}

func TestLoadConfig_UsesAuthJWKSURLAlias(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	unsetEnvWithCleanup(t, "JWKS_URL")
	setEnvWithCleanup(t, "AUTH_JWKS_URL", "https://auth.example.com/.well-known/jwks.json")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.JWKSURL != "https://auth.example.com/.well-known/jwks.json" {
		t.Fatalf("expected JWKSURL from alias env var, got %q", cfg.JWKSURL)
	}
}

func TestLoadConfig_JWKSURLTakesPrecedenceOverAlias(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "JWKS_URL", "https://primary.example.com/jwks.json")
	setEnvWithCleanup(t, "AUTH_JWKS_URL", "https://alias.example.com/jwks.json")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.JWKSURL != "https://primary.example.com/jwks.json" {
		t.Fatalf("expected JWKSURL to prioritize JWKS_URL, got %q", cfg.JWKSURL)
	}
}

func TestLoadConfig_NegativeRateLimitDisablesLimiting(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "VERIFY_SWIFT_RATE_LIMIT_PER_MINUTE", "-5")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.VerifySwiftRateLimitPerMinute != 0 {
		t.Fatalf("expected negative swift-check limit coerced to 0, got %d", cfg.VerifySwiftRateLimitPerMinute)
	}
}

func setEnvWithCleanup(t *testing.T, key string, value string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set env %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadPrev {
			_ = os.Setenv(key, prev)
			return
		}
		_ = os.Unsetenv(key)
	})
}

func unsetEnvWithCleanup(t *testing.T, key string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset env %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadPrev {
			_ = os.Setenv(key, prev)
			return
		}
		_ = os.Unsetenv(key)
	})
}
