package program

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/fitbot/core/logger"
)

const (
	selectProgramSQL = `
SELECT title, description, features, schedule, nutrition, water, tip
FROM programs
WHERE goal = $1 AND level = $2`

	upsertProgramSQL = `
INSERT INTO programs (goal, level, title, description, features, schedule, nutrition, water, tip)
VALUES (:goal, :level, :title, :description, :features, :schedule, :nutrition, :water, :tip)
ON CONFLICT (goal, level) DO UPDATE SET
	title = EXCLUDED.title,
	description = EXCLUDED.description,
	features = EXCLUDED.features,
	schedule = EXCLUDED.schedule,
	nutrition = EXCLUDED.nutrition,
	water = EXCLUDED.water,
	tip = EXCLUDED.tip,
	updated_at = NOW()`
)

// programRow mirrors the programs table. JSONB columns travel as text.
type programRow struct {
	Goal        string `db:"goal"`
	Level       string `db:"level"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Features    string `db:"features"`
	Schedule    string `db:"schedule"`
	Nutrition   string `db:"nutrition"`
	Water       string `db:"water"`
	Tip         string `db:"tip"`
}

func (r programRow) record() (Record, error) {
	rec := Record{
		Title:       r.Title,
		Description: r.Description,
		Nutrition:   r.Nutrition,
		Water:       r.Water,
		Tip:         r.Tip,
	}
	if len(r.Features) > 0 {
		if err := json.Unmarshal([]byte(r.Features), &rec.Features); err != nil {
			return Record{}, fmt.Errorf("decode features: %w", err)
		}
	}
	if len(r.Schedule) > 0 {
		if err := json.Unmarshal([]byte(r.Schedule), &rec.Schedule); err != nil {
			return Record{}, fmt.Errorf("decode schedule: %w", err)
		}
	}
	return rec, nil
}

func rowFromEntry(e Entry) (programRow, error) {
	if _, err := e.Key(); err != nil {
		return programRow{}, err
	}
	features, err := json.Marshal(nonNil(e.Features))
	if err != nil {
		return programRow{}, err
	}
	schedule, err := json.Marshal(nonNilDays(e.Schedule))
	if err != nil {
		return programRow{}, err
	}
	return programRow{
		Goal:        e.Goal,
		Level:       e.Level,
		Title:       e.Title,
		Description: e.Description,
		Features:    string(features),
		Schedule:    string(schedule),
		Nutrition:   e.Nutrition,
		Water:       e.Water,
		Tip:         e.Tip,
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilDays(s []DayPlan) []DayPlan {
	if s == nil {
		return []DayPlan{}
	}
	return s
}

// PostgresCatalog serves records from the programs table.
type PostgresCatalog struct {
	db *sqlx.DB
}

// NewPostgresCatalog wraps an open connection pool.
func NewPostgresCatalog(db *sqlx.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

// Lookup implements Catalog.
func (c *PostgresCatalog) Lookup(ctx context.Context, goal Goal, level Level) (Record, error) {
	key := Key{Goal: goal, Level: level}
	if !goal.Valid() || !level.Valid() {
		return Record{}, &NotFoundError{Key: key}
	}

	start := time.Now()
	var row programRow
	err := c.db.GetContext(ctx, &row, selectProgramSQL, goal.ID(), level.ID())
	if errors.Is(err, sql.ErrNoRows) {
		logger.Warn(ctx, "service.catalog", "catalog.lookup",
			slog.String("status", "skip"),
			slog.String("key", key.String()),
			slog.Duration("duration", logger.Took(start)),
		)
		return Record{}, &NotFoundError{Key: key}
	}
	if err != nil {
		logger.Error(ctx, "service.catalog", "catalog.lookup",
			slog.String("status", "fail"),
			slog.String("key", key.String()),
			slog.String("err", err.Error()),
		)
		return Record{}, fmt.Errorf("catalog lookup %s: %w", key, err)
	}

	rec, err := row.record()
	if err != nil {
		return Record{}, fmt.Errorf("catalog lookup %s: %w", key, err)
	}
	logger.Debug(ctx, "service.catalog", "catalog.lookup",
		slog.String("status", "ok"),
		slog.String("key", key.String()),
		slog.Duration("duration", logger.Took(start)),
	)
	return rec, nil
}

// Seed upserts entries into the programs table in a single transaction.
func Seed(ctx context.Context, db *sqlx.DB, entries []Entry) error {
	start := time.Now()
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed programs: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, e := range entries {
		row, err := rowFromEntry(e)
		if err != nil {
			return fmt.Errorf("seed programs %s/%s: %w", e.Goal, e.Level, err)
		}
		if _, err := tx.NamedExecContext(ctx, upsertProgramSQL, row); err != nil {
			return fmt.Errorf("seed programs %s/%s: %w", e.Goal, e.Level, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed programs: commit: %w", err)
	}

	logger.SEED.Info("programs seeded",
		slog.String("event", "seed.programs"),
		slog.String("status", "ok"),
		slog.Int("count", len(entries)),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}
