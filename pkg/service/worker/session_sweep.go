package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hlpreview/pkg/domain/interfaces"
	"github.com/secmon-lab/hlpreview/pkg/utils/logging"
)

// SessionSweepWorker periodically deletes expired review sessions from a
// store that keeps them after expiry
//
// Runs on a single server instance; concurrent sweeps from several instances
// are harmless but redundant.
type SessionSweepWorker struct {
	sweeper  interfaces.SessionSweeper
	interval time.Duration
	clock    func() time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
}

type Option func(*SessionSweepWorker)

func WithClock(clock func() time.Time) Option {
	return func(w *SessionSweepWorker) {
		w.clock = clock
	}
}

// NewSessionSweepWorker creates a new worker for deleting expired sessions
func NewSessionSweepWorker(sweeper interfaces.SessionSweeper, interval time.Duration, opts ...Option) *SessionSweepWorker {
	w := &SessionSweepWorker{
		sweeper:  sweeper,
		interval: interval,
		clock:    time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins the background sweep loop without blocking
func (w *SessionSweepWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return goerr.New("sweep interval must be positive", goerr.V("interval", w.interval))
	}

	logging.Default().Info("Session sweep worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *SessionSweepWorker) Stop() {
	logging.Default().Info("Session sweep worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Session sweep worker stopped")
}

func (w *SessionSweepWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.Sweep(ctx); err != nil {
				logging.Default().Error("Session sweep failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("Session sweep worker context cancelled")
			return
		}
	}
}

// Sweep performs a single sweep cycle
func (w *SessionSweepWorker) Sweep(ctx context.Context) error {
	startTime := w.clock()

	deleted, err := w.sweeper.DeleteExpired(ctx, startTime)
	if err != nil {
		return goerr.Wrap(err, "failed to delete expired sessions", goerr.V("deleted", deleted))
	}

	if deleted > 0 {
		logging.Default().Info("Expired sessions deleted",
			"count", deleted,
			"duration", time.Since(startTime).String())
	}
	return nil
}
