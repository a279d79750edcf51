package dialog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/m3rciful/fitbot/core/telegram/state"
	"github.com/m3rciful/fitbot/internal/program"
)

func newMachine(t *testing.T) (*Machine, *state.MemoryStore) {
	t.Helper()
	store := state.NewMemoryStore(0)
	return NewMachine(store, builtin(t)), store
}

func handle(t *testing.T, m *Machine, id int64, trig Trigger, text string) []Intent {
	t.Helper()
	intents, err := m.Handle(context.Background(), Event{SessionID: id, Trigger: trig, Text: text})
	if err != nil {
		t.Fatalf("handle %s %q: %v", trig, text, err)
	}
	return intents
}

func TestMachinePersistsProgress(t *testing.T) {
	ctx := context.Background()
	m, store := newMachine(t)

	handle(t, m, 5, TriggerBegin, "")
	if !m.InProgress(ctx, 5) {
		t.Fatal("dialog should be in progress after begin")
	}
	handle(t, m, 5, TriggerText, "Набор массы")

	stored, ok, _ := store.Get(ctx, 5)
	if !ok || stored.State != StateAwaitLevel || stored.Data["goal"] != "muscle_gain" {
		t.Fatalf("stored session = %+v ok=%v", stored, ok)
	}
	s, err := m.Session(ctx, 5)
	if err != nil || s.Goal != program.GoalMuscleGain {
		t.Fatalf("session = %+v err=%v", s, err)
	}

	intents := handle(t, m, 5, TriggerText, "Продвинутый")
	if _, ok := intents[0].(ProgramDelivered); !ok {
		t.Fatalf("intents = %#v", intents)
	}
	if _, ok, _ := store.Get(ctx, 5); ok {
		t.Fatal("completed dialog should be removed from the store")
	}
	if m.InProgress(ctx, 5) {
		t.Fatal("dialog still in progress after delivery")
	}
}

func TestMachineSessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	m, _ := newMachine(t)

	handle(t, m, 1, TriggerBegin, "")
	handle(t, m, 2, TriggerBegin, "")
	handle(t, m, 1, TriggerText, "Сила")

	s1, _ := m.Session(ctx, 1)
	s2, _ := m.Session(ctx, 2)
	if s1.State != StateAwaitLevel || s2.State != StateAwaitGoal || s2.Goal.Valid() {
		t.Fatalf("sessions leaked: %+v %+v", s1, s2)
	}
	if n, _ := m.Active(ctx); n != 2 {
		t.Fatalf("active = %d, want 2", n)
	}

	handle(t, m, 2, TriggerCancel, "")
	if n, _ := m.Active(ctx); n != 1 {
		t.Fatalf("active after cancel = %d, want 1", n)
	}
}

func TestMachineRejectionKeepsState(t *testing.T) {
	ctx := context.Background()
	m, _ := newMachine(t)
	handle(t, m, 3, TriggerBegin, "")
	intents := handle(t, m, 3, TriggerText, "Sжигание жира")
	if n, ok := intents[0].(Notice); !ok || n.Text != msgRejectGoal {
		t.Fatalf("intents = %#v", intents)
	}
	s, _ := m.Session(ctx, 3)
	if s != (Session{State: StateAwaitGoal}) {
		t.Fatalf("session = %+v", s)
	}
}

func TestMachineCorruptSessionFallsBackToIdle(t *testing.T) {
	ctx := context.Background()
	m, store := newMachine(t)
	_ = store.Put(ctx, 9, state.Session{State: StateAwaitLevel, Data: map[string]string{"goal": "yoga"}})

	s, err := m.Session(ctx, 9)
	if err != nil || s != idle {
		t.Fatalf("session = %+v err=%v", s, err)
	}
	intents := handle(t, m, 9, TriggerText, "Новичок")
	if len(intents) != 0 {
		t.Fatalf("corrupt session produced intents: %#v", intents)
	}
	if _, ok, _ := store.Get(ctx, 9); ok {
		t.Fatal("corrupt session should be cleared")
	}
}

func TestMachineFaultKeepsSession(t *testing.T) {
	ctx := context.Background()
	store := state.NewMemoryStore(0)
	boom := errors.New("db down")
	m := NewMachine(store, failingCatalog{err: boom})

	handle(t, m, 4, TriggerBegin, "")
	handle(t, m, 4, TriggerText, "Выносливость")
	_, err := m.Handle(ctx, Event{SessionID: 4, Trigger: TriggerText, Text: "Средний"})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	s, _ := m.Session(ctx, 4)
	if s.State != StateAwaitLevel || s.Goal != program.GoalEndurance {
		t.Fatalf("session after fault = %+v", s)
	}
}

type brokenStore struct{ state.Store }

func (brokenStore) Get(context.Context, int64) (state.Session, bool, error) {
	return state.Session{}, false, errors.New("store offline")
}

func TestMachineStoreErrors(t *testing.T) {
	m := NewMachine(brokenStore{}, builtin(t))
	if _, err := m.Handle(context.Background(), Event{SessionID: 1, Trigger: TriggerBegin}); err == nil {
		t.Fatal("expected load error")
	}
	if m.InProgress(context.Background(), 1) {
		t.Fatal("store errors must read as not in progress")
	}
}

// gatedCatalog parks every lookup until release is closed.
type gatedCatalog struct {
	inner   program.Catalog
	entered chan struct{}
	release chan struct{}
}

func (g *gatedCatalog) Lookup(ctx context.Context, goal program.Goal, level program.Level) (program.Record, error) {
	g.entered <- struct{}{}
	<-g.release
	return g.inner.Lookup(ctx, goal, level)
}

func TestMachineSerializesEventsPerUser(t *testing.T) {
	ctx := context.Background()
	cat := &gatedCatalog{inner: builtin(t), entered: make(chan struct{}, 1), release: make(chan struct{})}
	m := NewMachine(state.NewMemoryStore(0), cat)

	handle(t, m, 7, TriggerBegin, "")
	handle(t, m, 7, TriggerText, "Сила")

	var wg sync.WaitGroup
	var levelIntents []Intent
	wg.Add(1)
	go func() {
		defer wg.Done()
		levelIntents, _ = m.Handle(ctx, Event{SessionID: 7, Trigger: TriggerText, Text: "Новичок"})
	}()
	<-cat.entered

	restarted := make(chan struct{})
	go func() {
		defer close(restarted)
		_, _ = m.Handle(ctx, Event{SessionID: 7, Trigger: TriggerBegin})
	}()
	select {
	case <-restarted:
		t.Fatal("second event ran while the first was still stepping")
	case <-time.After(50 * time.Millisecond):
	}

	// another user is not held up
	handle(t, m, 8, TriggerBegin, "")

	close(cat.release)
	wg.Wait()
	<-restarted

	if len(levelIntents) == 0 {
		t.Fatal("level selection produced no intents")
	}
	if _, ok := levelIntents[0].(ProgramDelivered); !ok {
		t.Fatalf("level intents = %#v", levelIntents)
	}
	s, _ := m.Session(ctx, 7)
	if s != (Session{State: StateAwaitGoal}) {
		t.Fatalf("session after /create = %+v, want await_goal", s)
	}
	if n := m.locks.len(); n != 0 {
		t.Fatalf("locks left = %d", n)
	}
}

func TestMachineOnRedisStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	store, err := state.NewRedisStore(ctx, state.RedisOptions{Addr: mr.Addr(), Prefix: "fitbot:", TTL: time.Hour})
	if err != nil {
		t.Fatalf("redis store: %v", err)
	}
	defer store.Close()
	m := NewMachine(store, builtin(t))

	handle(t, m, 11, TriggerBegin, "")
	handle(t, m, 11, TriggerText, "Сжигание жира")
	s, err := m.Session(ctx, 11)
	if err != nil || s.State != StateAwaitLevel || s.Goal != program.GoalWeightLoss {
		t.Fatalf("session = %+v err=%v", s, err)
	}
	if n, _ := m.Active(ctx); n != 1 {
		t.Fatalf("active = %d, want 1", n)
	}

	intents := handle(t, m, 11, TriggerText, "Средний")
	if _, ok := intents[0].(ProgramDelivered); !ok {
		t.Fatalf("intents = %#v", intents)
	}
	if mr.Exists("fitbot:11") {
		t.Fatal("finished dialog left a redis key")
	}
}
