package state

import (
	"context"
	"time"
)

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Session stores conversation state and scratch data for a user.
type Session struct {
	State     State             `json:"state"`
	Data      map[string]string `json:"data,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Idle reports whether the session has no active conversation.
func (s Session) Idle() bool {
	return s.State == "" || s.State == StateIdle
}

// Clone returns a deep copy so callers never share the Data map with a store.
func (s Session) Clone() Session {
	out := s
	if s.Data != nil {
		out.Data = make(map[string]string, len(s.Data))
		for k, v := range s.Data {
			out.Data[k] = v
		}
	}
	return out
}

// Store keeps one session per user. A missing session is reported with ok=false.
// dialog.Machine serializes access per user; the store only guards its own structure.
type Store interface {
	Get(ctx context.Context, userID int64) (Session, bool, error)
	Put(ctx context.Context, userID int64, s Session) error
	Delete(ctx context.Context, userID int64) error
	// Count returns the number of live sessions.
	Count(ctx context.Context) (int, error)
}
