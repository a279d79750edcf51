package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/fitbot/core/buildinfo"
	coreconfig "github.com/m3rciful/fitbot/core/config"
)

var (
	initOnce sync.Once
	closeMu  sync.Mutex
	closed   bool

	writers []*asyncWriter
	files   []io.Closer

	levelVar     slog.LevelVar
	debugSampler = newSampler(1, 50)

	// L is the root logger. Before InitLogger it discards everything.
	L = discard()

	// Component loggers; each carries a fixed component attribute.
	DB         = L
	TG         = L
	MIG        = L
	TWire      = L
	SEED       = L
	SVCCatalog = L
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(100)}))
}

func wireComponents(root *slog.Logger) {
	L = root
	DB = root.With("component", "db")
	TG = root.With("component", "tg")
	MIG = root.With("component", "db.migrate")
	TWire = root.With("component", "tg.wire")
	SEED = root.With("component", "db.seed")
	SVCCatalog = root.With("component", "service.catalog")
}

// InitLogger configures the global structured logger. Calls after the
// first are no-ops.
func InitLogger(cfg *coreconfig.Config) error {
	var initErr error
	initOnce.Do(func() {
		var lc coreconfig.LoggingConfig
		if cfg != nil {
			lc = cfg.Logging
		}
		levelVar.Set(parseLevel(lc.Level))
		debugSampler.Set(parseRatio(orDefault(lc.DebugSample, "1/50")))

		sinks, err := openSinks(lc)
		if err != nil {
			initErr = err
			return
		}
		root := slog.New(newStructuredHandler(handlerConfig{
			level:    &levelVar,
			sinks:    sinks,
			format:   parseFormat(lc),
			keyOrder: parseKeyOrder(lc.KeysOrder),
		}))
		slog.SetDefault(root)
		wireComponents(root)

		L.Info("startup",
			slog.String("component", "app"),
			slog.String("go_version", runtime.Version()),
			slog.String("build_version", buildinfo.Version),
			slog.String("build_commit", buildinfo.Commit),
			slog.String("build_time", buildinfo.Date),
			slog.String("cfg_profile", profile(lc)),
		)
	})
	return initErr
}

// openSinks always writes to stdout. bot_file gets every line and
// errors_file only ERROR lines; both live under dir.
func openSinks(lc coreconfig.LoggingConfig) ([]sink, error) {
	out := []sink{{w: track(newAsyncWriter(os.Stdout, 0)), min: slog.LevelDebug}}
	dir := strings.TrimSpace(lc.Dir)
	if dir == "" {
		return out, nil
	}
	for _, f := range []struct {
		name string
		min  slog.Level
	}{
		{lc.BotFile, slog.LevelDebug},
		{lc.ErrorsFile, slog.LevelError},
	} {
		name := strings.TrimSpace(f.name)
		if name == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("logger: create dir %s: %w", dir, err)
		}
		path := filepath.Join(dir, name)
		fh, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("logger: open %s: %w", path, err)
		}
		files = append(files, fh)
		out = append(out, sink{w: track(newAsyncWriter(fh, 0)), min: f.min})
	}
	return out, nil
}

func track(w *asyncWriter) *asyncWriter {
	writers = append(writers, w)
	return w
}

// Shutdown flushes pending lines and closes log files.
func Shutdown() error {
	closeMu.Lock()
	defer closeMu.Unlock()
	if closed {
		return nil
	}
	closed = true

	var errs []error
	for _, w := range writers {
		errs = append(errs, w.Close())
	}
	for _, f := range files {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}

func parseFormat(lc coreconfig.LoggingConfig) logFormat {
	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		return formatKV
	case "json":
		return formatJSON
	}
	switch profile(lc) {
	case "debug", "dev":
		return formatKV
	}
	return formatJSON
}

func parseKeyOrder(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "default" {
		return nil
	}
	var order []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			order = append(order, p)
		}
	}
	return order
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func profile(lc coreconfig.LoggingConfig) string {
	return strings.ToLower(orDefault(lc.Profile, "prod"))
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

// Component returns L scoped to name.
func Component(name string) *slog.Logger {
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With("component", name)
}

// Event logs event at level under component. Meta stored in ctx is added
// by the handler.
func Event(ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	log := L
	if component = strings.TrimSpace(component); component != "" {
		log = log.With("component", component)
	} else {
		log = FromContext(ctx)
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	log.LogAttrs(ctx, level, event, attrs...)
}

// Debug logs event at debug level.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

// Info logs event at info level.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

// Warn logs event at warn level.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

// Error logs event at error level.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}

// ShouldSampleDebug reports whether a high volume debug line should be
// written. The ratio comes from logging.debug_sample.
func ShouldSampleDebug() bool {
	return debugSampler.Allow()
}
