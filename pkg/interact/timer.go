package interact

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/vizlab/pkg/view"
)

// Timer sends a Tick on a fixed interval while started. Stopping only
// stops the ticker: a tick already handed to the channel is still
// delivered.
type Timer struct {
	interval time.Duration
	out      chan<- view.Msg

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTimer returns a stopped timer sending to out.
func NewTimer(interval time.Duration, out chan<- view.Msg) *Timer {
	return &Timer{interval: interval, out: out}
}

// Start begins ticking until Stop or ctx is done. Starting a running timer
// is a no-op.
func (t *Timer) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	go t.loop(ctx, t.done)
}

func (t *Timer) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			select {
			case t.out <- view.Tick{}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Stop halts the ticker and waits for its goroutine to exit.
func (t *Timer) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the timer is started.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

// Interval returns the tick interval.
func (t *Timer) Interval() time.Duration { return t.interval }
