package logger

import (
	"context"
	"fmt"
	"log/slog"
)

type ctxKey int

const (
	keyMeta ctxKey = iota
	keyLogger
)

// Meta identifies the update a log line belongs to.
type Meta struct {
	RID      string
	UpdateID int
	UserID   int64
	ChatID   int64
	Handler  string
}

// BuildRID returns a correlation identifier in the form updateID:chatID:userID.
func BuildRID(updateID int, chatID, userID int64) string {
	return fmt.Sprintf("%d:%d:%d", updateID, chatID, userID)
}

// WithMeta stores m in ctx. An empty RID is derived from the identifiers.
func WithMeta(ctx context.Context, m Meta) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if m.RID == "" && (m.UpdateID != 0 || m.ChatID != 0 || m.UserID != 0) {
		m.RID = BuildRID(m.UpdateID, m.ChatID, m.UserID)
	}
	return context.WithValue(ctx, keyMeta, m)
}

// MetaFrom returns the Meta stored in ctx, if any.
func MetaFrom(ctx context.Context) Meta {
	if ctx == nil {
		return Meta{}
	}
	m, _ := ctx.Value(keyMeta).(Meta)
	return m
}

// WithHandler copies the current Meta with the handler name set.
func WithHandler(ctx context.Context, handler string) context.Context {
	if handler == "" {
		return ctx
	}
	m := MetaFrom(ctx)
	m.Handler = handler
	return WithMeta(ctx, m)
}

// RIDFrom returns the correlation id stored in ctx.
func RIDFrom(ctx context.Context) string { return MetaFrom(ctx).RID }

// UserIDFrom returns the Telegram user id stored in ctx.
func UserIDFrom(ctx context.Context) int64 { return MetaFrom(ctx).UserID }

// ChatIDFrom returns the chat id stored in ctx.
func ChatIDFrom(ctx context.Context) int64 { return MetaFrom(ctx).ChatID }

// WithLogger stores log in ctx for later retrieval by FromContext.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		return ctx
	}
	return context.WithValue(ctx, keyLogger, log)
}

// FromContext returns the logger stored in ctx or the global one.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(keyLogger).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return L
}

func metaFields(ctx context.Context, fields map[string]any) {
	m := MetaFrom(ctx)
	setMissing(fields, "rid", m.RID, m.RID != "")
	setMissing(fields, "update_id", m.UpdateID, m.UpdateID != 0)
	setMissing(fields, "user_id", m.UserID, m.UserID != 0)
	setMissing(fields, "chat_id", m.ChatID, m.ChatID != 0)
	setMissing(fields, "handler", m.Handler, m.Handler != "")
}

func setMissing(fields map[string]any, key string, val any, ok bool) {
	if !ok {
		return
	}
	if _, exists := fields[key]; !exists {
		fields[key] = val
	}
}
