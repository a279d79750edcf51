package app

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/fitbot/core/config"
	coredatabase "github.com/m3rciful/fitbot/core/database"
)

const (
	CatalogMemory   = "memory"
	CatalogPostgres = "postgres"

	StoreMemory = "memory"
	StoreRedis  = "redis"

	defaultCatalogTTL   = 10 * time.Minute
	defaultSessionTTL   = 30 * time.Minute
	defaultSweepEvery   = time.Minute
	defaultRedisPrefix  = "fitbot:session:"
	defaultSenderWorker = 4
)

// CatalogConfig selects where program records come from.
type CatalogConfig struct {
	Source string `yaml:"source" envconfig:"CATALOG_SOURCE"`
	// File overrides the builtin YAML catalog; also used to seed postgres.
	File string `yaml:"file" envconfig:"CATALOG_FILE"`
	Seed bool   `yaml:"seed" envconfig:"CATALOG_SEED"`
	// CacheTTL keeps postgres records in memory; negative disables the cache.
	CacheTTL time.Duration `yaml:"cache_ttl" envconfig:"CATALOG_CACHE_TTL"`
}

// RedisConfig holds connection settings for the redis session store.
type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB"`
	Prefix   string `yaml:"prefix" envconfig:"REDIS_PREFIX"`
}

// SessionConfig controls dialog session retention.
type SessionConfig struct {
	Store string `yaml:"store" envconfig:"SESSION_STORE"`
	// TTL drops dialogs idle for longer than this; negative disables expiry.
	TTL        time.Duration `yaml:"ttl" envconfig:"SESSION_TTL"`
	SweepEvery time.Duration `yaml:"sweep_every" envconfig:"SESSION_SWEEP_EVERY"`
	Redis      RedisConfig   `yaml:"redis"`
}

// SenderConfig tunes the outbound message dispatcher.
type SenderConfig struct {
	Workers    int `yaml:"workers" envconfig:"SENDER_WORKERS"`
	QueueSize  int `yaml:"queue_size" envconfig:"SENDER_QUEUE_SIZE"`
	MaxRetries int `yaml:"max_retries" envconfig:"SENDER_MAX_RETRIES"`
}

// Config is the bot configuration: the shared core plus fitbot sections.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Catalog  CatalogConfig       `yaml:"catalog"`
	Database coredatabase.Config `yaml:"database"`
	Session  SessionConfig       `yaml:"session"`
	Sender   SenderConfig        `yaml:"sender"`
}

// LoadConfig reads and validates the bot configuration.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates fitbot sections and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	src := strings.ToLower(strings.TrimSpace(cfg.Catalog.Source))
	if src == "" {
		src = CatalogMemory
	}
	switch src {
	case CatalogMemory:
	case CatalogPostgres:
		if strings.TrimSpace(cfg.Database.Host) == "" || strings.TrimSpace(cfg.Database.Name) == "" {
			return fmt.Errorf("database.host and database.name are required when catalog.source is 'postgres'")
		}
		if cfg.Database.SSLMode == "" {
			cfg.Database.SSLMode = "disable"
		}
		if cfg.Database.Port == "" {
			cfg.Database.Port = "5432"
		}
	default:
		return fmt.Errorf("invalid catalog.source %q; allowed: memory, postgres", cfg.Catalog.Source)
	}
	cfg.Catalog.Source = src
	switch {
	case cfg.Catalog.CacheTTL == 0:
		cfg.Catalog.CacheTTL = defaultCatalogTTL
	case cfg.Catalog.CacheTTL < 0:
		cfg.Catalog.CacheTTL = 0
	}

	store := strings.ToLower(strings.TrimSpace(cfg.Session.Store))
	if store == "" {
		store = StoreMemory
	}
	switch store {
	case StoreMemory:
	case StoreRedis:
		if strings.TrimSpace(cfg.Session.Redis.Addr) == "" {
			return fmt.Errorf("session.redis.addr is required when session.store is 'redis'")
		}
		if cfg.Session.Redis.Prefix == "" {
			cfg.Session.Redis.Prefix = defaultRedisPrefix
		}
	default:
		return fmt.Errorf("invalid session.store %q; allowed: memory, redis", cfg.Session.Store)
	}
	cfg.Session.Store = store

	switch {
	case cfg.Session.TTL == 0:
		cfg.Session.TTL = defaultSessionTTL
	case cfg.Session.TTL < 0:
		cfg.Session.TTL = 0
	}
	if cfg.Session.SweepEvery <= 0 {
		cfg.Session.SweepEvery = defaultSweepEvery
	}

	if cfg.Sender.Workers <= 0 {
		cfg.Sender.Workers = defaultSenderWorker
	}
	if cfg.Sender.MaxRetries < 0 {
		return fmt.Errorf("sender.max_retries must be >= 0")
	}
	return nil
}
