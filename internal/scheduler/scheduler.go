// Package scheduler runs the periodic maintenance jobs of the ledger.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Expirer is satisfied by service.PaymentService.
type Expirer interface {
	ExpireStale(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron       *cron.Cron
	expirer    Expirer
	jobTimeout time.Duration
	logger     *slog.Logger
}

// New registers the expiry sweep on a seconds-enabled cron spec. Runs never
// overlap; a tick that finds the previous sweep still going is skipped.
func New(expirySpec string, expirer Expirer, jobTimeout time.Duration, logger *slog.Logger) (*Scheduler, error) {
	cl := cronLogger{logger: logger}
	s := &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		expirer:    expirer,
		jobTimeout: jobTimeout,
		logger:     logger,
	}

	if _, err := s.cron.AddFunc(expirySpec, func() { s.RunExpiry(context.Background()) }); err != nil {
		return nil, fmt.Errorf("schedule expiry job %q: %w", expirySpec, err)
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop halts the cron loop and waits for a running job, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out with a job still running")
	}
}

// RunExpiry performs one expiry sweep and reports how many rows changed.
func (s *Scheduler) RunExpiry(ctx context.Context) int64 {
	if s.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.jobTimeout)
		defer cancel()
	}

	start := time.Now()
	n, err := s.expirer.ExpireStale(ctx)
	if err != nil {
		s.logger.Error("expiry sweep failed", "error", err)
		return 0
	}

	s.logger.Debug("expiry sweep finished", "expired", n, "duration", time.Since(start))
	return n
}

// cronLogger routes cron's own messages into slog. Info is demoted to debug
// since cron reports every wake-up.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
