package program

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrNotFound is returned by a Catalog when no record exists for a goal/level pair.
var ErrNotFound = errors.New("program: not found")

// DayPlan is one line of the weekly schedule.
type DayPlan struct {
	Day     string `yaml:"day" json:"day"`
	Workout string `yaml:"workout" json:"workout"`
}

// Record is the pre-authored program for one goal/level pair.
type Record struct {
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Features    []string  `yaml:"features"`
	Schedule    []DayPlan `yaml:"schedule"`
	Nutrition   string    `yaml:"nutrition"`
	Water       string    `yaml:"water"`
	Tip         string    `yaml:"tip"`
}

// Catalog resolves program records. Implementations must be safe for concurrent use.
type Catalog interface {
	Lookup(ctx context.Context, goal Goal, level Level) (Record, error)
}

// Key identifies a record in a catalog.
type Key struct {
	Goal  Goal
	Level Level
}

func (k Key) String() string {
	return k.Goal.String() + "/" + k.Level.String()
}

// NotFoundError carries the missing key and matches ErrNotFound.
type NotFoundError struct {
	Key Key
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("program: no record for %s", e.Key)
}

// Is makes errors.Is(err, ErrNotFound) hold.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Code is picked up by handler summaries as err_code.
func (e *NotFoundError) Code() string { return "catalog_miss" }

// Missing lists the goal/level pairs a catalog cannot serve, in catalog
// order. Lookups run concurrently.
func Missing(ctx context.Context, c Catalog) ([]Key, error) {
	var keys []Key
	for _, g := range Goals() {
		for _, l := range Levels() {
			keys = append(keys, Key{Goal: g, Level: l})
		}
	}

	absent := make([]bool, len(keys))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(4)
	for i, k := range keys {
		i, k := i, k
		eg.Go(func() error {
			_, err := c.Lookup(ctx, k.Goal, k.Level)
			switch {
			case err == nil:
			case errors.Is(err, ErrNotFound):
				absent[i] = true
			default:
				return err
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var out []Key
	for i, k := range keys {
		if absent[i] {
			out = append(out, k)
		}
	}
	return out, nil
}
