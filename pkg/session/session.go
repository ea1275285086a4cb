// Package session keeps interactive chart views alive across requests.
//
// A [Session] records which gallery chart someone is looking at and the
// view state they have reached. Sessions are persisted through a [Store]:
//   - memory: in-process storage for a single server and tests
//   - file: JSON files, so one server keeps sessions across restarts
//   - redis: shared storage for several server replicas
//
// # Usage
//
// The [Manager] pairs a stored session with a live chart and its
// interaction controller:
//
//	m := session.NewManager(store, open, session.DefaultTTL, logger)
//	live, err := m.Create(ctx, "revenue")
//	err = m.Dispatch(ctx, live.ID(), view.Select{Control: "metric", Value: "profit"})
//
// A session whose chart is no longer live (after a restart, or on another
// replica) is rebuilt from its stored state on first access.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/vizlab/pkg/view"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("expired")
)

// Session is one viewer's state of a gallery chart.
type Session struct {
	ID        string     `json:"id"`
	Chart     string     `json:"chart"`
	State     view.State `json:"state"`
	Events    int        `json:"events"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch records an applied event and extends the session by ttl.
func (s *Session) Touch(state view.State, ttl time.Duration) {
	now := time.Now()
	s.State = state
	s.Events++
	s.UpdatedAt = now
	s.ExpiresAt = now.Add(ttl)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns ErrNotFound if the session doesn't exist and ErrExpired if it
	// exists but has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, s *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions (optional, may be no-op for Redis).
	Cleanup(ctx context.Context) error

	Close() error
}

// DefaultTTL is the default session duration.
const DefaultTTL = 2 * time.Hour

// New creates a session for chart at state.
func New(chart string, state view.State, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Chart:     chart,
		State:     state,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ValidID reports whether id has the form of a session ID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
