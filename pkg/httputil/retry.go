package httputil

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"
)

// Backoff is the retry policy of a [Fetcher]. Only failures marked with
// [Transient] are retried. The delay doubles per attempt up to Max, unless
// the server asked for a specific wait with Retry-After.
type Backoff struct {
	Attempts int
	Delay    time.Duration
	Max      time.Duration
}

// DefaultBackoff tries a download three times, starting at one second.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second, Max: 10 * time.Second}

// TransientError marks a failed download that may succeed when repeated.
type TransientError struct {
	Err error
	// After is the wait requested by the server, or zero.
	After time.Duration
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Transient marks err as retryable.
func Transient(err error) error { return &TransientError{Err: err} }

// Do calls fn until it succeeds, fails permanently or the attempts run out.
// It returns the last error, or ctx.Err() when cancelled while waiting.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	delay := b.Delay
	var err error
	for i := range max(b.Attempts, 1) {
		if err = fn(); err == nil {
			return nil
		}
		var te *TransientError
		if !stderrors.As(err, &te) {
			return err
		}
		if i == max(b.Attempts, 1)-1 {
			break
		}
		wait := delay
		if te.After > 0 {
			wait = te.After
		}
		if b.Max > 0 {
			wait = min(wait, b.Max)
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
	return err
}

// retryAfter reads a Retry-After header given in seconds.
func retryAfter(h http.Header) time.Duration {
	s, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || s <= 0 {
		return 0
	}
	return time.Duration(s) * time.Second
}
