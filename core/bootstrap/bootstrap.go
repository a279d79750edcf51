// Package bootstrap brings up shared infrastructure in a fixed order:
// logger, database, migrations, seeders, services.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/fitbot/core/config"
	coredatabase "github.com/m3rciful/fitbot/core/database"
	"github.com/m3rciful/fitbot/core/logger"
)

// Options control the bootstrap pipeline.
type Options struct {
	Config *coreconfig.Config
	// Database is optional; nil skips connect and migrations and hands
	// seeders and services a nil db.
	Database *coredatabase.Config
	// Migrations is used when Database.MigrationsPath is empty.
	Migrations fs.FS

	// Overrides for tests; nil selects the real implementation.
	LoggerInit func(*coreconfig.Config) error
	Connect    func(context.Context, coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(context.Context, coredatabase.Config, fs.FS) error

	Modules Modules
}

// Result exposes what the pipeline initialized.
type Result struct {
	DB       *sqlx.DB
	Services any
}

// Run executes the pipeline. On failure anything already opened is closed.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, errors.New("bootstrap: nil config provided")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	opts = opts.withDefaults()

	if err := opts.LoggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init: %w", err)
	}

	res := &Result{}
	if opts.Database != nil {
		db, err := opts.Connect(ctx, *opts.Database)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: database: %w", err)
		}
		res.DB = db
		if err := opts.Migrate(ctx, *opts.Database, opts.Migrations); err != nil {
			res.close()
			return nil, fmt.Errorf("bootstrap: migrations: %w", err)
		}
	}

	for i, s := range opts.Modules.Seeders {
		if s == nil {
			continue
		}
		if err := s.Seed(ctx, res.DB); err != nil {
			res.close()
			return nil, fmt.Errorf("bootstrap: seeder %d: %w", i, err)
		}
	}

	if opts.Modules.Services != nil {
		svc, err := opts.Modules.Services.Provide(ctx, res.DB)
		if err != nil {
			res.close()
			return nil, fmt.Errorf("bootstrap: services: %w", err)
		}
		res.Services = svc
	}
	return res, nil
}

func (o Options) withDefaults() Options {
	if o.LoggerInit == nil {
		o.LoggerInit = logger.InitLogger
	}
	if o.Connect == nil {
		o.Connect = coredatabase.Connect
	}
	if o.Migrate == nil {
		o.Migrate = coredatabase.Migrate
	}
	return o
}

func (r *Result) close() {
	if r.DB != nil {
		_ = r.DB.Close()
		r.DB = nil
	}
}
