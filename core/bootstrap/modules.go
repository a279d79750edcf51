package bootstrap

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Seeder loads reference data once migrations have run. db is nil when no
// database is configured.
type Seeder interface {
	Seed(ctx context.Context, db *sqlx.DB) error
}

// SeederFunc adapts a function to Seeder.
type SeederFunc func(ctx context.Context, db *sqlx.DB) error

// Seed calls f.
func (f SeederFunc) Seed(ctx context.Context, db *sqlx.DB) error { return f(ctx, db) }

// ServiceProvider builds the application services on top of the
// initialized infrastructure.
type ServiceProvider interface {
	Provide(ctx context.Context, db *sqlx.DB) (any, error)
}

// ServiceProviderFunc adapts a function to ServiceProvider.
type ServiceProviderFunc func(ctx context.Context, db *sqlx.DB) (any, error)

// Provide calls f.
func (f ServiceProviderFunc) Provide(ctx context.Context, db *sqlx.DB) (any, error) {
	return f(ctx, db)
}

// Modules groups the optional hooks run after infrastructure is up.
type Modules struct {
	Seeders  []Seeder
	Services ServiceProvider
}
