package session

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vizlab/pkg/chart"
	"github.com/matzehuels/vizlab/pkg/errors"
	"github.com/matzehuels/vizlab/pkg/interact"
	"github.com/matzehuels/vizlab/pkg/view"
)

// Opener builds the gallery chart called name and updates it for state, or
// for its defaults when state is nil. It returns the state shown.
type Opener func(ctx context.Context, name string, state *view.State) (chart.Chart, view.State, error)

// Live is a session with its chart built and ready for events.
type Live struct {
	mu    sync.Mutex
	sess  Session
	chart chart.Chart
	ctrl  *interact.Controller
}

// ID returns the session ID.
func (l *Live) ID() string { return l.sess.ID }

// Session returns a copy of the session record.
func (l *Live) Session() Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sess
}

// View runs fn with the chart and its current state. Events wait until fn
// returns, so fn can render the scene safely.
func (l *Live) View(fn func(c chart.Chart, s view.State) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(l.chart, l.ctrl.State())
}

// Manager owns the live sessions of a process and persists their state.
type Manager struct {
	store  Store
	open   Opener
	ttl    time.Duration
	logger *log.Logger

	mu   sync.Mutex
	live map[string]*Live
}

// NewManager returns a manager persisting to store. A ttl <= 0 uses
// DefaultTTL.
func NewManager(store Store, open Opener, ttl time.Duration, logger *log.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		store:  store,
		open:   open,
		ttl:    ttl,
		logger: logger,
		live:   make(map[string]*Live),
	}
}

// Create opens a new session on the gallery chart called name.
func (m *Manager) Create(ctx context.Context, name string) (*Live, error) {
	c, state, err := m.open(ctx, name, nil)
	if err != nil {
		return nil, err
	}
	sess := New(name, state, m.ttl)
	l, err := m.attach(sess, c, state)
	if err != nil {
		return nil, err
	}
	if err := m.store.Set(ctx, sess); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "save session")
	}
	m.logger.Debug("session created", "id", sess.ID, "chart", name)
	return l, nil
}

// Get returns the live session id, rebuilding its chart from the stored
// state when it is not live in this process.
func (m *Manager) Get(ctx context.Context, id string) (*Live, error) {
	m.mu.Lock()
	l, ok := m.live[id]
	m.mu.Unlock()
	if ok {
		if l.Session().IsExpired() {
			m.forget(id)
			return nil, errors.New(errors.ErrCodeSessionNotFound, "session %s expired", id)
		}
		return l, nil
	}

	sess, err := m.store.Get(ctx, id)
	switch {
	case err == ErrNotFound:
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %s not found", id)
	case err == ErrExpired:
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %s expired", id)
	case err != nil:
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load session %s", id)
	}

	c, state, err := m.open(ctx, sess.Chart, &sess.State)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("session resumed", "id", id, "chart", sess.Chart, "events", sess.Events)
	return m.attach(sess, c, state)
}

func (m *Manager) attach(sess *Session, c chart.Chart, state view.State) (*Live, error) {
	ctrl, err := interact.New(c, state, interact.WithLogger(m.logger))
	if err != nil {
		return nil, err
	}
	l := &Live{sess: *sess, chart: c, ctrl: ctrl}

	m.mu.Lock()
	defer m.mu.Unlock()
	// A concurrent Get may have resumed the same session first.
	if prev, ok := m.live[sess.ID]; ok {
		return prev, nil
	}
	m.live[sess.ID] = l
	return l, nil
}

// Dispatch applies msg to session id and persists the new state.
func (m *Manager) Dispatch(ctx context.Context, id string, msg view.Msg) (view.State, error) {
	l, err := m.Get(ctx, id)
	if err != nil {
		return view.State{}, err
	}

	l.mu.Lock()
	if err := l.ctrl.Dispatch(msg); err != nil {
		l.mu.Unlock()
		return view.State{}, err
	}
	state := l.ctrl.State()
	l.sess.Touch(state, m.ttl)
	sess := l.sess
	l.mu.Unlock()

	if err := m.store.Set(ctx, &sess); err != nil {
		return state, errors.Wrap(errors.ErrCodeInternal, err, "save session")
	}
	return state, nil
}

// Delete ends session id.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.forget(id)
	if err := m.store.Delete(ctx, id); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete session")
	}
	return nil
}

func (m *Manager) forget(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.live, id)
}

// Sweep drops expired live sessions and cleans up the store. It returns
// how many live sessions were dropped.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	m.mu.Lock()
	dropped := 0
	for id, l := range m.live {
		if l.Session().IsExpired() {
			delete(m.live, id)
			dropped++
		}
	}
	m.mu.Unlock()

	if err := m.store.Cleanup(ctx); err != nil {
		return dropped, errors.Wrap(errors.ErrCodeInternal, err, "clean up sessions")
	}
	return dropped, nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}
