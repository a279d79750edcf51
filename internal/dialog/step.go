// Package dialog implements the two-step program selection conversation.
//
// Step is a pure transition function over a Session; Machine binds it to a
// session store. Neither touches the transport: both produce Intents that the
// Telegram layer renders.
package dialog

import (
	"context"
	"errors"
	"fmt"

	"github.com/m3rciful/fitbot/core/telegram/state"
	"github.com/m3rciful/fitbot/internal/present"
	"github.com/m3rciful/fitbot/internal/program"
)

// Dialog states.
const (
	StateIdle       state.State = state.StateIdle
	StateAwaitGoal  state.State = "await_goal"
	StateAwaitLevel state.State = "await_level"
)

// Trigger is the kind of inbound event.
type Trigger int

const (
	// TriggerText is a free-text reply, usually a keyboard label.
	TriggerText Trigger = iota
	// TriggerStart greets the user.
	TriggerStart
	// TriggerBegin opens a new selection dialog.
	TriggerBegin
	// TriggerCancel abandons the current dialog.
	TriggerCancel
)

func (t Trigger) String() string {
	switch t {
	case TriggerText:
		return "text"
	case TriggerStart:
		return "start"
	case TriggerBegin:
		return "begin"
	case TriggerCancel:
		return "cancel"
	}
	return fmt.Sprintf("trigger(%d)", int(t))
}

// Event is one inbound user message.
type Event struct {
	SessionID int64
	Trigger   Trigger
	Text      string
}

// Session is the per-user dialog progress. Goal is set only in StateAwaitLevel.
type Session struct {
	State state.State
	Goal  program.Goal
}

// Outcome summarises what a step did.
type Outcome string

const (
	OutcomeWelcomed    Outcome = "welcomed"
	OutcomePrompted    Outcome = "prompted"
	OutcomeAdvanced    Outcome = "advanced"
	OutcomeRejected    Outcome = "rejected"
	OutcomeDelivered   Outcome = "delivered"
	OutcomeCancelled   Outcome = "cancelled"
	OutcomeCatalogMiss Outcome = "catalog_miss"
	OutcomeIgnored     Outcome = "ignored"
)

// Result is the output of a transition.
type Result struct {
	Session Session
	Intents []Intent
	Outcome Outcome
}

var idle = Session{State: StateIdle}

// Step applies ev to s. Validation failures and catalog misses are reported as
// outcomes; only a catalog fault other than program.ErrNotFound is returned as
// an error, in which case s is returned unchanged.
func Step(ctx context.Context, catalog program.Catalog, s Session, ev Event) (Result, error) {
	if s.State == "" {
		s.State = StateIdle
	}

	switch ev.Trigger {
	case TriggerStart:
		return Result{Session: s, Intents: []Intent{Notice{Text: msgWelcome}}, Outcome: OutcomeWelcomed}, nil

	case TriggerBegin:
		return Result{
			Session: Session{State: StateAwaitGoal},
			Intents: []Intent{goalPrompt()},
			Outcome: OutcomePrompted,
		}, nil

	case TriggerCancel:
		if s.State == StateIdle {
			return Result{Session: idle, Outcome: OutcomeIgnored}, nil
		}
		return Result{
			Session: idle,
			Intents: []Intent{Notice{Text: msgCancelled}, ClearOptions{}},
			Outcome: OutcomeCancelled,
		}, nil

	case TriggerText:
		switch s.State {
		case StateAwaitGoal:
			return onGoal(s, ev.Text), nil
		case StateAwaitLevel:
			return onLevel(ctx, catalog, s, ev.Text)
		}
	}
	return Result{Session: s, Outcome: OutcomeIgnored}, nil
}

func onGoal(s Session, text string) Result {
	goal, err := program.ParseGoal(text)
	if err != nil {
		return Result{Session: s, Intents: []Intent{Notice{Text: msgRejectGoal}}, Outcome: OutcomeRejected}
	}
	return Result{
		Session: Session{State: StateAwaitLevel, Goal: goal},
		Intents: []Intent{levelPrompt()},
		Outcome: OutcomeAdvanced,
	}
}

func onLevel(ctx context.Context, catalog program.Catalog, s Session, text string) (Result, error) {
	level, err := program.ParseLevel(text)
	if err != nil {
		return Result{Session: s, Intents: []Intent{Notice{Text: msgRejectLevel}}, Outcome: OutcomeRejected}, nil
	}

	rec, err := catalog.Lookup(ctx, s.Goal, level)
	switch {
	case errors.Is(err, program.ErrNotFound):
		return Result{
			Session: idle,
			Intents: []Intent{Notice{Text: msgCatalogMiss}, ClearOptions{}},
			Outcome: OutcomeCatalogMiss,
		}, nil
	case err != nil:
		return Result{Session: s}, fmt.Errorf("dialog: catalog lookup: %w", err)
	}

	return Result{
		Session: idle,
		Intents: []Intent{
			ProgramDelivered{Text: present.Program(rec)},
			Notice{Text: msgClosing},
			ClearOptions{},
		},
		Outcome: OutcomeDelivered,
	}, nil
}

// Pending returns the prompt a session is waiting on. Idle sessions have none.
func Pending(s Session) (ShowOptions, bool) {
	switch s.State {
	case StateAwaitGoal:
		return goalPrompt(), true
	case StateAwaitLevel:
		return levelPrompt(), true
	}
	return ShowOptions{}, false
}

func goalPrompt() ShowOptions {
	return ShowOptions{Prompt: msgAskGoal, Options: present.GoalOptions(), SingleChoice: true}
}

func levelPrompt() ShowOptions {
	return ShowOptions{Prompt: msgAskLevel, Options: present.LevelOptions(), SingleChoice: true}
}
