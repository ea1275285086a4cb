// Package schedule runs periodic gallery jobs on cron schedules.
//
// Specs use the standard five cron fields or descriptors such as
// "@hourly" and "@every 30m". Jobs receive the scheduler's context and
// never overlap with themselves: a run that is still busy when the next
// one fires makes that run skip.
package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/matzehuels/vizlab/pkg/errors"
)

// Job is a scheduled task.
type Job func(ctx context.Context) error

// Validate checks a cron spec.
func Validate(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid schedule %q", spec)
	}
	return nil
}

// Scheduler manages named cron jobs.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	logger *log.Logger

	mu   sync.Mutex
	jobs map[string]entry
}

type entry struct {
	id   cron.EntryID
	spec string
	run  func()
}

// New returns a stopped scheduler. Jobs run with ctx.
func New(ctx context.Context, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.Default()
	}
	cl := cronLogger{logger}
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		ctx:    ctx,
		logger: logger,
		jobs:   make(map[string]entry),
	}
}

// Add registers job under name. Names are unique.
func (s *Scheduler) Add(name, spec string, job Job) error {
	if err := Validate(spec); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[name]; ok {
		return errors.New(errors.ErrCodeInvalidInput, "job %q is already scheduled", name)
	}

	run := func() {
		start := time.Now()
		s.logger.Info("running job", "job", name)
		if err := job(s.ctx); err != nil {
			s.logger.Error("job failed", "job", name, "error", err)
			return
		}
		s.logger.Info("job done", "job", name, "duration", time.Since(start))
	}
	id, err := s.cron.AddFunc(spec, run)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "register job %q", name)
	}
	s.jobs[name] = entry{id: id, spec: spec, run: run}
	return nil
}

// RunNow executes job name immediately in the calling goroutine.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	e, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "no job named %q", name)
	}
	e.run()
	return nil
}

// Next returns the next run time of job name.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	s.mu.Lock()
	e, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	sched, err := cron.ParseStandard(e.spec)
	if err != nil {
		return time.Time{}, false
	}
	return sched.Next(time.Now()), true
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.jobs))
}

// Stop stops the scheduler and waits for running jobs to finish or ctx to
// be done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	s.logger.Info("scheduler stopped")
}

// cronLogger adapts a charmbracelet logger to cron.Logger.
type cronLogger struct{ l *log.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
