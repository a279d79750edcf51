// Package app wires configuration, storage and Telegram routes for fitbot.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/fitbot/core/bootstrap"
	corecmd "github.com/m3rciful/fitbot/core/cmd"
	"github.com/m3rciful/fitbot/core/logger"
	coretelegram "github.com/m3rciful/fitbot/core/telegram"
	"github.com/m3rciful/fitbot/core/telegram/router"
	tgsender "github.com/m3rciful/fitbot/core/telegram/sender"
	"github.com/m3rciful/fitbot/core/telegram/state"
	"github.com/m3rciful/fitbot/internal/bot"
	"github.com/m3rciful/fitbot/internal/dialog"
	"github.com/m3rciful/fitbot/internal/program"
	"github.com/m3rciful/fitbot/migrations"
)

// App holds the wired services.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	store    state.Store
	catalog  program.Catalog
	handlers *bot.Handlers
}

// services is what the bootstrap service provider hands back.
type services struct {
	store   state.Store
	catalog program.Catalog
}

// LoadConfigCarrier adapts LoadConfig to cmd.Options.LoadConfig.
func LoadConfigCarrier(path string) (corecmd.ConfigCarrier, error) {
	return LoadConfig(path)
}

// Bootstrap satisfies cmd.Options.Bootstrap.
func Bootstrap(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}
	return New(context.Background(), cfg)
}

// New runs the bootstrap pipeline and wires dialog handlers.
func New(ctx context.Context, cfg *Config) (*App, error) {
	opts := bootstrap.Options{
		Config: &cfg.Config,
		Modules: bootstrap.Modules{
			Services: bootstrap.ServiceProviderFunc(func(ctx context.Context, db *sqlx.DB) (any, error) {
				return provideServices(ctx, cfg, db)
			}),
		},
	}
	if cfg.Catalog.Source == CatalogPostgres {
		db := cfg.Database
		opts.Database = &db
		opts.Migrations = migrations.FS
		if cfg.Catalog.Seed {
			opts.Modules.Seeders = append(opts.Modules.Seeders, catalogSeeder(cfg.Catalog.File))
		}
	}

	res, err := bootstrap.Run(ctx, opts)
	if err != nil {
		return nil, err
	}
	svc, ok := res.Services.(*services)
	if !ok {
		return nil, fmt.Errorf("app: service provider returned %T", res.Services)
	}

	machine := dialog.NewMachine(svc.store, svc.catalog)
	return &App{
		cfg:      cfg,
		db:       res.DB,
		store:    svc.store,
		catalog:  svc.catalog,
		handlers: bot.NewHandlers(machine),
	}, nil
}

func catalogSeeder(file string) bootstrap.Seeder {
	return bootstrap.SeederFunc(func(ctx context.Context, db *sqlx.DB) error {
		if db == nil {
			return errors.New("catalog seeder: database required")
		}
		src, err := program.LoadFile(file)
		if err != nil {
			return err
		}
		return program.Seed(ctx, db, src.Entries())
	})
}

func provideServices(ctx context.Context, cfg *Config, db *sqlx.DB) (*services, error) {
	catalog, err := buildCatalog(cfg, db)
	if err != nil {
		return nil, err
	}
	missing, err := program.Missing(ctx, catalog)
	if err != nil {
		return nil, fmt.Errorf("catalog check: %w", err)
	}
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, k := range missing {
			names = append(names, k.String())
		}
		preview, truncated := logger.SummarizeStrings(names, 6)
		logger.SVCCatalog.Warn("catalog incomplete",
			slog.String("event", "catalog.check"),
			slog.Int("count", len(missing)),
			slog.String("key", preview),
			slog.Bool("truncated", truncated),
		)
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.TWire.Info("services wired",
		slog.String("event", "services"),
		slog.String("catalog", cfg.Catalog.Source),
		slog.String("store", cfg.Session.Store),
		slog.Duration("session_ttl", cfg.Session.TTL),
	)
	return &services{store: store, catalog: catalog}, nil
}

func buildCatalog(cfg *Config, db *sqlx.DB) (program.Catalog, error) {
	if cfg.Catalog.Source == CatalogPostgres {
		if db == nil {
			return nil, errors.New("postgres catalog: database not initialized")
		}
		return program.NewCachedCatalog(program.NewPostgresCatalog(db), cfg.Catalog.CacheTTL), nil
	}
	return program.LoadFile(cfg.Catalog.File)
}

func buildStore(ctx context.Context, cfg *Config) (state.Store, error) {
	if cfg.Session.Store == StoreRedis {
		r := cfg.Session.Redis
		return state.NewRedisStore(ctx, state.RedisOptions{
			Addr:     r.Addr,
			Password: r.Password,
			DB:       r.DB,
			Prefix:   r.Prefix,
			TTL:      cfg.Session.TTL,
		})
	}
	return state.NewMemoryStore(cfg.Session.TTL), nil
}

// Registry builds the command registry.
func (a *App) Registry() *coretelegram.Registry {
	reg := coretelegram.NewRegistry()
	reg.RegisterCommand("/start", coretelegram.Command{
		Handler:     a.handlers.Start,
		Description: "Приветствие",
	})
	reg.RegisterCommand("/create", coretelegram.Command{
		Handler:     a.handlers.Create,
		Description: "Подобрать программу тренировок",
	})
	reg.RegisterCommand("/cancel", coretelegram.Command{
		Handler:     a.handlers.Cancel,
		Description: "Отменить подбор",
	})
	if a.cfg.Telegram.AdminID != 0 {
		reg.RegisterCommand("/sessions", coretelegram.Command{
			Handler:     a.handlers.Sessions,
			Description: "Активные диалоги",
			AdminOnly:   true,
			Hidden:      true,
		})
	}
	return reg
}

// TelegramRunOptions satisfies cmd.TelegramApp.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := a.Registry()

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
	})
	routes = append(routes, router.TextRoutes(a.handlers, reg)...)

	janitorCtx, stopJanitor := context.WithCancel(context.Background())

	return coretelegram.RunOptions{
		Config:   &a.cfg.Config,
		Registry: reg,
		DispatcherOptions: tgsender.Options{
			Workers:    a.cfg.Sender.Workers,
			QueueSize:  a.cfg.Sender.QueueSize,
			MaxRetries: a.cfg.Sender.MaxRetries,
		},
		Middlewares: coretelegram.DefaultMiddlewares(&a.cfg.Config, nil),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			if mem, ok := a.store.(*state.MemoryStore); ok {
				go mem.RunJanitor(janitorCtx, a.cfg.Session.SweepEvery)
			}
			return nil
		},
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			stopJanitor()
			return a.Close()
		},
	}, nil
}

// Close releases storage connections.
func (a *App) Close() error {
	var errs []error
	if closer, ok := a.store.(interface{ Close() error }); ok {
		errs = append(errs, closer.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
