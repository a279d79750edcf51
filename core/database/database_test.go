package database

import (
	"context"
	"testing"
	"testing/fstest"
	"time"
)

func TestConfigStrings(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "u", Password: "p", Name: "fit", SSLMode: "disable"}
	if got := cfg.DSN(); got != "user=u password=p host=db port=5432 dbname=fit sslmode=disable" {
		t.Fatalf("DSN = %s", got)
	}
	if got := cfg.URL(); got != "postgres://u:p@db:5432/fit?sslmode=disable" {
		t.Fatalf("URL = %s", got)
	}
	if cfg.poolSize() != defaultMaxConnections || cfg.connectTimeout() != defaultConnectTimeout {
		t.Fatal("defaults not applied")
	}
	cfg.MaxConnections, cfg.ConnectTimeout = 9, time.Second
	if cfg.poolSize() != 9 || cfg.connectTimeout() != time.Second {
		t.Fatal("explicit values ignored")
	}
}

func TestUpFilesAndApplied(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_b.up.sql":   {},
		"000001_a.up.sql":   {},
		"000001_a.down.sql": {},
		"000003_c.up.sql":   {},
		"README.md":         {},
	}
	files, err := upFiles(fsys)
	if err != nil {
		t.Fatalf("upFiles: %v", err)
	}
	if len(files) != 3 || files[0] != "000001_a.up.sql" || files[2] != "000003_c.up.sql" {
		t.Fatalf("files = %v", files)
	}
	got := appliedBetween(files, 1, 3)
	if len(got) != 2 || got[0] != "000002_b.up.sql" {
		t.Fatalf("applied = %v", got)
	}
	if appliedBetween(files, 3, 3) != nil {
		t.Fatal("no change should apply nothing")
	}
	if fileVersion("junk.sql") != 0 {
		t.Fatal("unversioned file should be 0")
	}
}

func TestMigrateWithoutSource(t *testing.T) {
	if err := Migrate(context.Background(), Config{}, nil); err == nil {
		t.Fatal("expected error without migrations")
	}
}

func TestConnectGivesUp(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Connect(ctx, Config{Host: "127.0.0.1", Port: "1", Name: "x", SSLMode: "disable", ConnectTimeout: time.Second})
	if err == nil {
		t.Fatal("expected connect error")
	}
}
