package bootstrap

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/fitbot/core/config"
	coredatabase "github.com/m3rciful/fitbot/core/database"
)

func noLogger(*coreconfig.Config) error { return nil }

func TestRunWithoutDatabase(t *testing.T) {
	var steps []string
	res, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		LoggerInit: func(*coreconfig.Config) error { steps = append(steps, "logger"); return nil },
		Connect: func(context.Context, coredatabase.Config) (*sqlx.DB, error) {
			t.Fatal("connect must not run without database config")
			return nil, nil
		},
		Modules: Modules{
			Seeders: []Seeder{
				nil,
				SeederFunc(func(_ context.Context, db *sqlx.DB) error {
					if db != nil {
						t.Fatal("expected nil db")
					}
					steps = append(steps, "seed")
					return nil
				}),
			},
			Services: ServiceProviderFunc(func(context.Context, *sqlx.DB) (any, error) {
				steps = append(steps, "services")
				return "svc", nil
			}),
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Services != "svc" || res.DB != nil {
		t.Fatalf("result = %+v", res)
	}
	if len(steps) != 3 || steps[0] != "logger" || steps[1] != "seed" || steps[2] != "services" {
		t.Fatalf("steps = %v", steps)
	}
}

func TestRunErrors(t *testing.T) {
	boom := errors.New("boom")
	if _, err := Run(context.Background(), Options{}); err == nil {
		t.Fatal("expected nil config error")
	}

	_, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		LoggerInit: func(*coreconfig.Config) error { return boom },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("logger err = %v", err)
	}

	_, err = Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		Database:   &coredatabase.Config{},
		LoggerInit: noLogger,
		Connect: func(context.Context, coredatabase.Config) (*sqlx.DB, error) {
			return nil, boom
		},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("connect err = %v", err)
	}

	_, err = Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		Modules: Modules{
			Seeders: []Seeder{SeederFunc(func(context.Context, *sqlx.DB) error { return boom })},
			Services: ServiceProviderFunc(func(context.Context, *sqlx.DB) (any, error) {
				t.Fatal("services must not run after seeder failure")
				return nil, nil
			}),
		},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("seeder err = %v", err)
	}
}

func TestRunPassesMigrations(t *testing.T) {
	var gotFS fs.FS
	want := fs.FS(emptyFS{})
	_, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		Database:   &coredatabase.Config{Name: "fit"},
		Migrations: want,
		LoggerInit: noLogger,
		Connect: func(context.Context, coredatabase.Config) (*sqlx.DB, error) {
			return nil, nil
		},
		Migrate: func(_ context.Context, cfg coredatabase.Config, fsys fs.FS) error {
			if cfg.Name != "fit" {
				t.Fatalf("cfg = %+v", cfg)
			}
			gotFS = fsys
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if gotFS != want {
		t.Fatal("migrations fs not forwarded")
	}
}

type emptyFS struct{}

func (emptyFS) Open(string) (fs.File, error) { return nil, fs.ErrNotExist }
