// Package interact dispatches interaction messages into a chart.
//
// A [Controller] is the single writer of a chart's view state: every
// message, whether from a terminal key, an HTTP request or a playback
// [Timer], is reduced into the state and the chart is updated
// synchronously before the next message is handled. Concurrent senders
// either call [Controller.Dispatch], which serialises on a mutex, or feed
// a channel drained by [Controller.Run].
package interact

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vizlab/pkg/view"
)

// Target is a chart driven by view state.
type Target interface {
	Update(s view.State) error
}

// Syncer is implemented by charts with linked controls. Sync returns the
// programmatic messages that mirror a user message onto the other control,
// e.g. a slider range onto the brush.
type Syncer interface {
	Sync(msg view.Msg, s view.State) []view.Msg
}

// Controller owns a target's view state.
type Controller struct {
	mu       sync.Mutex
	target   Target
	state    view.State
	logger   *log.Logger
	watchers []func(view.State)
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger for dropped messages.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// OnChange registers fn to run after every successful update.
func OnChange(fn func(view.State)) Option {
	return func(c *Controller) { c.watchers = append(c.watchers, fn) }
}

// New returns a controller starting at initial. It renders the target once
// with the initial state.
func New(target Target, initial view.State, opts ...Option) (*Controller, error) {
	c := &Controller{target: target, state: initial, logger: log.Default()}
	for _, opt := range opts {
		opt(c)
	}
	if err := target.Update(initial); err != nil {
		return nil, err
	}
	return c, nil
}

// State returns a copy of the current state.
func (c *Controller) State() view.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dispatch reduces msg into the state and updates the target. User
// messages to a Syncer target are followed by their mirrored messages.
// On error the state is left unchanged.
func (c *Controller) Dispatch(msg view.Msg) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.apply(msg); err != nil {
		return err
	}
	if s, ok := c.target.(Syncer); ok && sourceOf(msg) == view.User {
		for _, follow := range s.Sync(msg, c.state) {
			if sourceOf(follow) == view.User {
				continue
			}
			if err := c.apply(follow); err != nil {
				return err
			}
		}
	}
	for _, fn := range c.watchers {
		fn(c.state)
	}
	return nil
}

func (c *Controller) apply(msg view.Msg) error {
	next, err := view.Reduce(c.state, msg)
	if err != nil {
		return err
	}
	if err := c.target.Update(next); err != nil {
		return err
	}
	c.state = next
	return nil
}

// sourceOf reports who caused msg; only range and brush changes can be
// mirrored.
func sourceOf(msg view.Msg) view.Source {
	switch m := msg.(type) {
	case view.SetRange:
		return m.Source
	case view.Brush:
		return m.Source
	}
	return view.User
}

// Run dispatches messages from msgs until the channel closes or ctx is
// done. Failed messages are logged and dropped.
func (c *Controller) Run(ctx context.Context, msgs <-chan view.Msg) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := c.Dispatch(msg); err != nil {
				c.logger.Warn("dropped message", "type", msg.Type(), "error", err)
			}
		}
	}
}
