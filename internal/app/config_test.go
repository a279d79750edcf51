package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNormalizeDefaults(t *testing.T) {
	cfg := &Config{}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Catalog.Source != CatalogMemory || cfg.Session.Store != StoreMemory {
		t.Fatalf("sources = %q/%q", cfg.Catalog.Source, cfg.Session.Store)
	}
	if cfg.Session.TTL != defaultSessionTTL || cfg.Session.SweepEvery != defaultSweepEvery {
		t.Fatalf("session timings = %v/%v", cfg.Session.TTL, cfg.Session.SweepEvery)
	}
	if cfg.Sender.Workers != defaultSenderWorker {
		t.Fatalf("workers = %d", cfg.Sender.Workers)
	}
	if cfg.Catalog.CacheTTL != defaultCatalogTTL {
		t.Fatalf("cache ttl = %v", cfg.Catalog.CacheTTL)
	}
}

func TestNormalizeNegativeTTLDisablesExpiry(t *testing.T) {
	cfg := &Config{
		Session: SessionConfig{TTL: -time.Second},
		Catalog: CatalogConfig{CacheTTL: -time.Second},
	}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Session.TTL != 0 || cfg.Catalog.CacheTTL != 0 {
		t.Fatalf("ttl = %v/%v, want 0", cfg.Session.TTL, cfg.Catalog.CacheTTL)
	}
}

func TestNormalizePostgres(t *testing.T) {
	cfg := &Config{Catalog: CatalogConfig{Source: " Postgres "}}
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected missing database error")
	}
	cfg.Database.Host = "db"
	cfg.Database.Name = "fitbot"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Catalog.Source != CatalogPostgres || cfg.Database.Port != "5432" || cfg.Database.SSLMode != "disable" {
		t.Fatalf("database defaults not applied: %+v", cfg.Database)
	}
}

func TestNormalizeRedis(t *testing.T) {
	cfg := &Config{Session: SessionConfig{Store: "redis"}}
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected missing addr error")
	}
	cfg.Session.Redis.Addr = "localhost:6379"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Session.Redis.Prefix != defaultRedisPrefix {
		t.Fatalf("prefix = %q", cfg.Session.Redis.Prefix)
	}
}

func TestNormalizeRejectsUnknown(t *testing.T) {
	for name, cfg := range map[string]*Config{
		"catalog": {Catalog: CatalogConfig{Source: "sqlite"}},
		"store":   {Session: SessionConfig{Store: "memcached"}},
		"retries": {Sender: SenderConfig{MaxRetries: -1}},
	} {
		if err := Normalize(cfg); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `telegram:
  token: abc
  admin_id: 42
session:
  ttl: 10m
  redis:
    addr: redis:6379
catalog:
  source: memory
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("SESSION_STORE", "redis")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "abc" || cfg.Telegram.AdminID != 42 {
		t.Fatalf("core section = %+v", cfg.Telegram)
	}
	if cfg.Session.Store != StoreRedis || cfg.Session.TTL != 10*time.Minute || cfg.Session.Redis.Addr != "redis:6379" {
		t.Fatalf("session section = %+v", cfg.Session)
	}
	if cfg.CoreConfig() != &cfg.Config {
		t.Fatal("CoreConfig should expose the embedded core config")
	}
}
