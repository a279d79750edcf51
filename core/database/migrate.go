package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/m3rciful/fitbot/core/logger"
)

// Migrate applies all up migrations. Files come from cfg.MigrationsPath
// when set, otherwise from embedded.
func Migrate(ctx context.Context, cfg Config, embedded fs.FS) error {
	start := time.Now()
	m, files, err := newMigrator(cfg, embedded)
	if err != nil {
		logger.MIG.Error("init failed",
			slog.String("event", "db.migrate"),
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("migrations init: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	stop := context.AfterFunc(ctx, func() {
		select {
		case m.GracefulStop <- true:
		default:
		}
	})
	defer stop()

	from, _, _ := m.Version()
	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		logger.MIG.Error("migration failed",
			slog.String("event", "db.migrate"),
			slog.String("status", "fail"),
			slog.Uint64("from_ver", uint64(from)),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", upErr.Error()),
		)
		return fmt.Errorf("migrations up: %w", upErr)
	}
	to, _, _ := m.Version()

	applied := appliedBetween(files, uint64(from), uint64(to))
	preview, truncated := logger.SummarizeStrings(applied, 6)
	logger.MIG.Info("migrations summary",
		slog.String("event", "db.migrate"),
		slog.String("status", "ok"),
		slog.Uint64("from_ver", uint64(from)),
		slog.Uint64("to_ver", uint64(to)),
		slog.Int("count", len(applied)),
		slog.String("files", preview),
		slog.Bool("truncated", truncated),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

func newMigrator(cfg Config, embedded fs.FS) (*migrate.Migrate, []string, error) {
	if dir := strings.TrimSpace(cfg.MigrationsPath); dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, nil, err
		}
		files, err := upFiles(os.DirFS(abs))
		if err != nil {
			return nil, nil, err
		}
		m, err := migrate.New("file://"+abs, cfg.URL())
		return m, files, err
	}
	if embedded == nil {
		return nil, nil, errors.New("no migrations_path and no embedded migrations")
	}
	files, err := upFiles(embedded)
	if err != nil {
		return nil, nil, err
	}
	src, err := iofs.New(embedded, ".")
	if err != nil {
		return nil, nil, err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.URL())
	return m, files, err
}

// upFiles lists *.up.sql files at the root of fsys, sorted.
func upFiles(fsys fs.FS) ([]string, error) {
	names, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return nil, err
	}
	slices.Sort(names)
	return names, nil
}

// appliedBetween returns the files whose version is in (from, to].
func appliedBetween(files []string, from, to uint64) []string {
	var out []string
	for _, f := range files {
		if v := fileVersion(f); v > from && v <= to {
			out = append(out, f)
		}
	}
	return out
}

func fileVersion(name string) uint64 {
	prefix, _, _ := strings.Cut(name, "_")
	v, _ := strconv.ParseUint(prefix, 10, 64)
	return v
}
