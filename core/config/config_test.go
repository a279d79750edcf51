package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeDefaults(t *testing.T) {
	cfg := &Config{Telegram: TelegramConfig{Token: "t", RunMode: " Polling "}}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q", cfg.Telegram.RunMode)
	}
}

func TestNormalizeErrors(t *testing.T) {
	cases := map[string]Config{
		"no token":      {},
		"bad mode":      {Telegram: TelegramConfig{Token: "t", RunMode: "push"}},
		"webhook url":   {Telegram: TelegramConfig{Token: "t", RunMode: RunModeWebhook}},
		"webhook port":  {Telegram: TelegramConfig{Token: "t", RunMode: RunModeWebhook}, Webhook: WebhookConfig{URL: "https://x", Listen: ":0"}},
		"bad exclude":   {Telegram: TelegramConfig{Token: "t"}, RateLimit: RateLimitConfig{ExcludeUpdates: []string{"poll"}}},
		"negative poll": {Telegram: TelegramConfig{Token: "t", LongPollTimeoutSeconds: -1}},
	}
	for name, cfg := range cases {
		cfg := cfg
		if err := Normalize(&cfg); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if err := Normalize(nil); err == nil {
		t.Fatal("nil config: expected error")
	}
}

func TestNormalizeExcludeUpdates(t *testing.T) {
	cfg := &Config{
		Telegram:  TelegramConfig{Token: "t"},
		RateLimit: RateLimitConfig{ExcludeUpdates: []string{" Message ", ""}},
	}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.RateLimit.ExcludeUpdates[0] != UpdateMessage {
		t.Fatalf("exclude = %v", cfg.RateLimit.ExcludeUpdates)
	}
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := "telegram:\n  token: from-yaml\n  admin_id: 5\nlogging:\n  level: info\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("BOT_TOKEN", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "from-env" {
		t.Fatalf("token = %q", cfg.Telegram.Token)
	}
	if cfg.Telegram.AdminID != 5 || cfg.Logging.Level != "info" {
		t.Fatalf("yaml values lost: %+v", cfg)
	}
	if cfg.CoreConfig() != cfg {
		t.Fatal("CoreConfig should return the receiver")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected read error")
	}
}

func TestNormalizeDropsBlankExcludes(t *testing.T) {
	cfg := &Config{
		Telegram:  TelegramConfig{Token: "t"},
		RateLimit: RateLimitConfig{ExcludeUpdates: []string{"", "CALLBACK", " "}},
	}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(cfg.RateLimit.ExcludeUpdates) != 1 || cfg.RateLimit.ExcludeUpdates[0] != UpdateCallback {
		t.Fatalf("exclude = %v", cfg.RateLimit.ExcludeUpdates)
	}
	cfg.RateLimit.IntervalMS = -1
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected negative interval error")
	}
}

func TestLoadLoggingEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("telegram:\n  token: x\nlogging:\n  level: info\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("level = %q", cfg.Logging.Level)
	}
}
