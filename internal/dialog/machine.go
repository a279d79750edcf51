package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/fitbot/core/logger"
	"github.com/m3rciful/fitbot/core/telegram/state"
	"github.com/m3rciful/fitbot/internal/program"
)

const dataGoal = "goal"

// Machine runs Step against sessions kept in a state.Store. Events for
// one session id are applied one at a time; telebot runs handlers
// concurrently, so load, step and persist happen under a per-user lock.
type Machine struct {
	store   state.Store
	catalog program.Catalog
	locks   *userLocks
}

// NewMachine wires a store and a catalog.
func NewMachine(store state.Store, catalog program.Catalog) *Machine {
	return &Machine{store: store, catalog: catalog, locks: newUserLocks()}
}

// Handle loads the user's session, applies ev and persists the result.
func (m *Machine) Handle(ctx context.Context, ev Event) ([]Intent, error) {
	start := time.Now()
	unlock := m.locks.lock(ev.SessionID)
	defer unlock()

	stored, found, err := m.store.Get(ctx, ev.SessionID)
	if err != nil {
		return nil, fmt.Errorf("dialog: load session: %w", err)
	}
	cur := idle
	if found {
		cur = fromStored(stored)
	}

	res, err := Step(ctx, m.catalog, cur, ev)
	if err != nil {
		logger.Error(ctx, "service.dialog", "dialog.step",
			slog.String("status", "fail"),
			slog.String("op", ev.Trigger.String()),
			slog.String("state", string(cur.State)),
			slog.String("err", err.Error()),
			slog.Duration("duration", logger.Took(start)),
		)
		return nil, err
	}

	switch {
	case res.Session.State != StateIdle:
		if err := m.store.Put(ctx, ev.SessionID, toStored(res.Session)); err != nil {
			return nil, fmt.Errorf("dialog: save session: %w", err)
		}
	case found:
		if err := m.store.Delete(ctx, ev.SessionID); err != nil {
			return nil, fmt.Errorf("dialog: clear session: %w", err)
		}
	}

	status := "ok"
	if res.Outcome == OutcomeIgnored {
		status = "skip"
	}
	logger.Debug(ctx, "service.dialog", "dialog.step",
		slog.String("status", status),
		slog.String("op", ev.Trigger.String()),
		slog.String("from", string(cur.State)),
		slog.String("to", string(res.Session.State)),
		slog.String("result", string(res.Outcome)),
		slog.Int("count", len(res.Intents)),
		slog.Duration("duration", logger.Took(start)),
	)
	return res.Intents, nil
}

// Session returns the current dialog session for a user.
func (m *Machine) Session(ctx context.Context, userID int64) (Session, error) {
	stored, found, err := m.store.Get(ctx, userID)
	if err != nil {
		return Session{}, err
	}
	if !found {
		return idle, nil
	}
	return fromStored(stored), nil
}

// InProgress reports whether the user is in the middle of a dialog.
// Store errors are treated as "not in progress".
func (m *Machine) InProgress(ctx context.Context, userID int64) bool {
	s, err := m.Session(ctx, userID)
	return err == nil && s.State != StateIdle
}

// Active returns the number of open dialogs.
func (m *Machine) Active(ctx context.Context) (int, error) {
	return m.store.Count(ctx)
}

func toStored(s Session) state.Session {
	out := state.Session{State: s.State}
	if s.State == StateAwaitLevel && s.Goal.Valid() {
		out.Data = map[string]string{dataGoal: s.Goal.ID()}
	}
	return out
}

// fromStored restores a Session, falling back to idle when the stored data
// breaks the goal invariant.
func fromStored(ss state.Session) Session {
	switch ss.State {
	case StateAwaitGoal:
		return Session{State: StateAwaitGoal}
	case StateAwaitLevel:
		goal, ok := program.GoalFromID(ss.Data[dataGoal])
		if !ok {
			return idle
		}
		return Session{State: StateAwaitLevel, Goal: goal}
	}
	return idle
}
