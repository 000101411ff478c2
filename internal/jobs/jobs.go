// Package jobs runs periodic calendar housekeeping.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

type Repository interface {
	CompletePast(ctx context.Context, now time.Time) (int64, error)
	CancelStalePending(ctx context.Context, createdBefore, now time.Time) (int64, error)
}

type Config struct {
	CompleteSpec string
	PurgeSpec    string
	PendingTTL   time.Duration
	// Timeout bounds a single run.
	Timeout  time.Duration
	Location *time.Location
}

type Runner struct {
	cron *cron.Cron
	repo Repository
	cfg  Config
	log  *slog.Logger
	now  func() time.Time
}

func New(repo Repository, cfg Config, log *slog.Logger) (*Runner, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "jobs"))
	if cfg.CompleteSpec == "" {
		cfg.CompleteSpec = "@every 15m"
	}
	if cfg.PurgeSpec == "" {
		cfg.PurgeSpec = "@hourly"
	}
	if cfg.PendingTTL <= 0 {
		cfg.PendingTTL = 72 * time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	clog := cronLogger{log: log}
	r := &Runner{
		cron: cron.New(
			cron.WithLocation(cfg.Location),
			cron.WithLogger(clog),
			cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
		),
		repo: repo,
		cfg:  cfg,
		log:  log,
		now:  time.Now,
	}

	if _, err := r.cron.AddFunc(cfg.CompleteSpec, r.wrap("complete-past-events", r.CompletePastEvents)); err != nil {
		return nil, fmt.Errorf("complete-past-events schedule %q: %w", cfg.CompleteSpec, err)
	}
	if _, err := r.cron.AddFunc(cfg.PurgeSpec, r.wrap("purge-stale-pending", r.PurgeStalePending)); err != nil {
		return nil, fmt.Errorf("purge-stale-pending schedule %q: %w", cfg.PurgeSpec, err)
	}
	return r, nil
}

func (r *Runner) Start() {
	r.cron.Start()
}

// Stop prevents new runs and waits for running ones until ctx is done.
func (r *Runner) Stop(ctx context.Context) error {
	done := r.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) wrap(name string, fn func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.cfg.Timeout)
		defer cancel()
		start := time.Now()
		if err := fn(ctx); err != nil {
			r.log.Error("job failed", slog.String("job", name), slog.Any("err", err))
			return
		}
		r.log.Debug("job finished", slog.String("job", name), slog.Duration("took", time.Since(start)))
	}
}

// CompletePastEvents marks confirmed events that already ended as completed.
func (r *Runner) CompletePastEvents(ctx context.Context) error {
	n, err := r.repo.CompletePast(ctx, r.now().UTC())
	if err != nil {
		return fmt.Errorf("complete past events: %w", err)
	}
	if n > 0 {
		r.log.Info("events completed", slog.Int64("count", n))
	}
	return nil
}

// PurgeStalePending cancels pending requests nobody confirmed before their
// start and that are older than the pending TTL.
func (r *Runner) PurgeStalePending(ctx context.Context) error {
	now := r.now().UTC()
	n, err := r.repo.CancelStalePending(ctx, now.Add(-r.cfg.PendingTTL), now)
	if err != nil {
		return fmt.Errorf("purge stale pending: %w", err)
	}
	if n > 0 {
		r.log.Info("stale pending bookings cancelled", slog.Int64("count", n))
	}
	return nil
}

type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append([]any{slog.Any("err", err)}, keysAndValues...)...)
}
