package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fortuna/gridiron/internal/roster"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Refresher rebuilds the cached roster.
type Refresher interface {
	Refresh(ctx context.Context) ([]roster.Player, error)
}

// Status reports warmer activity.
type Status struct {
	Schedule  string    `json:"schedule"`
	Runs      int64     `json:"runs"`
	Failures  int64     `json:"failures"`
	LastRun   time.Time `json:"last_run,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	NextRun   time.Time `json:"next_run,omitempty"`
}

// Warmer refreshes the roster cache on a cron schedule so requests rarely
// pay for a cold build.
type Warmer struct {
	refresher Refresher
	cron      *cron.Cron
	schedule  string
	entryID   cron.EntryID
	log       logrus.FieldLogger

	runs     atomic.Int64
	failures atomic.Int64

	mu        sync.Mutex
	lastRun   time.Time
	lastError string
	started   bool
}

// NewWarmer creates a warmer. Overlapping runs are skipped.
func NewWarmer(refresher Refresher, log logrus.FieldLogger) *Warmer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "warmer")

	cronLogger := cron.VerbosePrintfLogger(log)
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	return &Warmer{
		refresher: refresher,
		cron:      c,
		log:       log,
	}
}

// Start schedules the warm-up job and starts the cron scheduler.
func (w *Warmer) Start(schedule string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return fmt.Errorf("warmer is already running")
	}

	id, err := w.cron.AddFunc(schedule, func() {
		w.RunNow(context.Background())
	})
	if err != nil {
		return fmt.Errorf("invalid warm schedule %q: %w", schedule, err)
	}

	w.entryID = id
	w.schedule = schedule
	w.started = true
	w.cron.Start()

	w.log.WithField("schedule", schedule).Info("Roster warmer started")
	return nil
}

// RunNow refreshes the roster once. The refresher bounds its own build.
func (w *Warmer) RunNow(ctx context.Context) error {
	start := time.Now()
	players, err := w.refresher.Refresh(ctx)
	w.runs.Add(1)

	w.mu.Lock()
	w.lastRun = start
	if err != nil {
		w.lastError = err.Error()
	} else {
		w.lastError = ""
	}
	w.mu.Unlock()

	if err != nil {
		w.failures.Add(1)
		w.log.WithError(err).Warn("Roster warm-up failed")
		return err
	}

	w.log.WithFields(logrus.Fields{
		"players":     len(players),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Roster warmed")
	return nil
}

// Status returns a snapshot of warmer activity.
func (w *Warmer) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := Status{
		Schedule:  w.schedule,
		Runs:      w.runs.Load(),
		Failures:  w.failures.Load(),
		LastRun:   w.lastRun,
		LastError: w.lastError,
	}
	if w.started {
		s.NextRun = w.cron.Entry(w.entryID).Next
	}
	return s
}

// Stop stops the scheduler and waits for a running job to finish or ctx
// to expire.
func (w *Warmer) Stop(ctx context.Context) {
	w.mu.Lock()
	started := w.started
	w.started = false
	w.mu.Unlock()

	if !started {
		return
	}

	select {
	case <-w.cron.Stop().Done():
	case <-ctx.Done():
	}
	w.log.Info("Roster warmer stopped")
}
