package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}
	if !cfg.App.IsProd() {
		t.Fatal("expected IsProd to be true")
	}

	if cfg.ShopAPI.BaseURL != "https://api.aurelia.example" {
		t.Fatalf("unexpected shop api base url: %q", cfg.ShopAPI.BaseURL)
	}
	if cfg.ShopAPI.Timeout != 0 {
		t.Fatalf("expected zero default timeout, got %v", cfg.ShopAPI.Timeout)
	}

	if cfg.State.Path != "storefront.db" {
		t.Fatalf("unexpected state path: %q", cfg.State.Path)
	}

	if cfg.Redis.Enabled() {
		t.Fatal("redis should be disabled when no URL is set")
	}

	if cfg.Catalog.CacheTTL != 5*time.Minute {
		t.Fatalf("expected catalog cache ttl 5m, got %v", cfg.Catalog.CacheTTL)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestRedisEnabled(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if !cfg.Redis.Enabled() {
		t.Fatal("expected redis to be enabled")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvPort, "8081")
	t.Setenv(EnvShopAPIURL, "https://api.aurelia.example")
	t.Setenv(EnvRedisURL, "")
}
