package program

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuiltinCoversAllCombinations(t *testing.T) {
	c, err := Builtin()
	if err != nil {
		t.Fatalf("builtin: %v", err)
	}
	if c.Len() != 12 {
		t.Fatalf("builtin has %d records, want 12", c.Len())
	}
	missing, err := Missing(context.Background(), c)
	if err != nil {
		t.Fatalf("missing: %v", err)
	}
	if len(missing) != 0 {
		t.Fatalf("missing keys: %v", missing)
	}
	for _, g := range Goals() {
		for _, l := range Levels() {
			rec, err := c.Lookup(context.Background(), g, l)
			if err != nil {
				t.Fatalf("lookup %s/%s: %v", g, l, err)
			}
			if rec.Title == "" || rec.Description == "" || len(rec.Features) == 0 || len(rec.Schedule) == 0 {
				t.Fatalf("record %s/%s is incomplete: %+v", g, l, rec)
			}
			if rec.Nutrition == "" || rec.Water == "" {
				t.Fatalf("record %s/%s lacks nutrition or water", g, l)
			}
		}
	}
}

func TestLookupNotFound(t *testing.T) {
	c, err := NewMemoryCatalog([]Entry{{Goal: "strength", Level: "beginner", Record: Record{Title: "x"}}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, err = c.Lookup(context.Background(), GoalStrength, LevelAdvanced)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Key != (Key{Goal: GoalStrength, Level: LevelAdvanced}) {
		t.Fatalf("unexpected error detail: %v", err)
	}
	if nf.Code() != "catalog_miss" {
		t.Fatalf("code = %q", nf.Code())
	}
	if !strings.Contains(err.Error(), "strength/advanced") {
		t.Fatalf("error text %q lacks key", err.Error())
	}

	missing, err := Missing(context.Background(), c)
	if err != nil {
		t.Fatalf("missing: %v", err)
	}
	if len(missing) != 11 {
		t.Fatalf("missing = %d, want 11", len(missing))
	}
}

func TestNewMemoryCatalogRejectsBadEntries(t *testing.T) {
	if _, err := NewMemoryCatalog([]Entry{{Goal: "yoga", Level: "beginner"}}); err == nil {
		t.Fatal("expected unknown goal error")
	}
	if _, err := NewMemoryCatalog([]Entry{{Goal: "strength", Level: "pro"}}); err == nil {
		t.Fatal("expected unknown level error")
	}
	dup := []Entry{
		{Goal: "strength", Level: "beginner"},
		{Goal: "strength", Level: "beginner"},
	}
	if _, err := NewMemoryCatalog(dup); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestEntriesPreserveOrderAndContent(t *testing.T) {
	c, err := Builtin()
	if err != nil {
		t.Fatalf("builtin: %v", err)
	}
	entries := c.Entries()
	if len(entries) != 12 {
		t.Fatalf("entries = %d", len(entries))
	}
	if entries[0].Goal != "weight_loss" || entries[0].Level != "beginner" {
		t.Fatalf("first entry = %s/%s", entries[0].Goal, entries[0].Level)
	}
	last := entries[len(entries)-1]
	if last.Goal != "endurance" || last.Level != "advanced" {
		t.Fatalf("last entry = %s/%s", last.Goal, last.Level)
	}
	first, _ := c.Lookup(context.Background(), GoalWeightLoss, LevelBeginner)
	if first.Schedule[0].Day != "Понедельник" {
		t.Fatalf("schedule order lost: %+v", first.Schedule)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	doc := `programs:
  - goal: endurance
    level: beginner
    title: "Бег"
    description: "desc"
    features: ["a", "b"]
    schedule:
      - day: "Пн"
        workout: "5 км"
    nutrition: "n"
    water: "w"
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	rec, err := c.Lookup(context.Background(), GoalEndurance, LevelBeginner)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if rec.Title != "Бег" || len(rec.Features) != 2 || rec.Schedule[0].Workout != "5 км" || rec.Tip != "" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	if _, err := LoadFile(filepath.Join(dir, "absent.yaml")); err == nil {
		t.Fatal("expected read error")
	}
	empty, err := LoadFile("")
	if err != nil || empty.Len() != 12 {
		t.Fatalf("empty path should load builtin: %v", err)
	}
}

func TestPostgresRowConversion(t *testing.T) {
	e := Entry{
		Goal:  "muscle_gain",
		Level: "intermediate",
		Record: Record{
			Title:     "Масса",
			Features:  []string{"f1"},
			Schedule:  []DayPlan{{Day: "Вт", Workout: "Спина"}},
			Nutrition: "n",
		},
	}
	row, err := rowFromEntry(e)
	if err != nil {
		t.Fatalf("row: %v", err)
	}
	if row.Goal != "muscle_gain" || row.Level != "intermediate" {
		t.Fatalf("row keys = %s/%s", row.Goal, row.Level)
	}
	rec, err := row.record()
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if rec.Title != "Масса" || rec.Features[0] != "f1" || rec.Schedule[0].Workout != "Спина" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	empty, err := rowFromEntry(Entry{Goal: "strength", Level: "beginner"})
	if err != nil {
		t.Fatalf("empty row: %v", err)
	}
	if empty.Features != "[]" || empty.Schedule != "[]" {
		t.Fatalf("empty arrays encoded as %q / %q", empty.Features, empty.Schedule)
	}
	if _, err := rowFromEntry(Entry{Goal: "x", Level: "beginner"}); err == nil {
		t.Fatal("expected key error")
	}
}

type lookupFunc func(ctx context.Context, g Goal, l Level) (Record, error)

func (f lookupFunc) Lookup(ctx context.Context, g Goal, l Level) (Record, error) { return f(ctx, g, l) }

func TestMissingKeepsCatalogOrder(t *testing.T) {
	c := lookupFunc(func(_ context.Context, g Goal, l Level) (Record, error) {
		if l == LevelAdvanced {
			return Record{}, &NotFoundError{Key: Key{Goal: g, Level: l}}
		}
		return Record{Title: "x"}, nil
	})
	missing, err := Missing(context.Background(), c)
	if err != nil {
		t.Fatalf("missing: %v", err)
	}
	goals := Goals()
	if len(missing) != len(goals) {
		t.Fatalf("missing = %v", missing)
	}
	for i, k := range missing {
		if k.Goal != goals[i] || k.Level != LevelAdvanced {
			t.Fatalf("missing[%d] = %v", i, k)
		}
	}
}

func TestMissingStopsOnFault(t *testing.T) {
	fault := errors.New("db down")
	c := lookupFunc(func(context.Context, Goal, Level) (Record, error) {
		return Record{}, fault
	})
	if _, err := Missing(context.Background(), c); !errors.Is(err, fault) {
		t.Fatalf("err = %v, want fault", err)
	}
}
