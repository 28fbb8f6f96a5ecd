// Package worker runs background maintenance for the booking service.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// SessionExpirer removes sessions idle since a point in time.
type SessionExpirer interface {
	ExpireSessions(ctx context.Context, idleSince time.Time) int
}

// Config holds worker configuration
type Config struct {
	// WorkerID uniquely identifies this worker instance
	WorkerID string

	// PollInterval is how often idle sessions are swept
	PollInterval time.Duration

	// IdleTTL is how long a session may go unused before it is removed
	IdleTTL time.Duration
}

// Worker sweeps idle booking sessions out of memory.
type Worker struct {
	config   Config
	sessions SessionExpirer
	logger   *slog.Logger
	now      func() time.Time
}

// NewWorker creates a new session sweeper
func NewWorker(sessions SessionExpirer, config Config, logger *slog.Logger) *Worker {
	if config.WorkerID == "" {
		config.WorkerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}
	if config.PollInterval == 0 {
		config.PollInterval = time.Minute
	}
	if config.IdleTTL == 0 {
		config.IdleTTL = 30 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Worker{
		config:   config,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

// Start sweeps on every tick until the context is cancelled
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("worker starting",
		"worker_id", w.config.WorkerID,
		"poll_interval", w.config.PollInterval,
		"idle_ttl", w.config.IdleTTL,
	)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker shutting down", "worker_id", w.config.WorkerID)
			return ctx.Err()

		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep removes sessions idle longer than IdleTTL and returns how many
// were removed.
func (w *Worker) Sweep(ctx context.Context) int {
	removed := w.sessions.ExpireSessions(ctx, w.now().Add(-w.config.IdleTTL))
	if removed > 0 {
		w.logger.Info("idle sessions expired",
			"worker_id", w.config.WorkerID,
			"removed", removed,
		)
	}
	return removed
}
