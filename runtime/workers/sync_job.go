package workers

import (
	"context"
	"homecloud/contract"
	"homecloud/domain"
	"homecloud/errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// SyncJobWorker starts a sync session on every tick.
// At most one session runs at a time; a tick landing on a running session
// is skipped. A failed session is simply retried on the next tick.
type SyncJobWorker struct {
	log       *slog.Logger
	clock     clockwork.Clock
	interval  time.Duration
	params    domain.ConnectionParams
	runner    contract.SessionRunner
	refresher contract.IndexRefresher
	results   chan<- domain.SessionResult
	busy      atomic.Bool
	skipped   atomic.Uint64
}

type SyncJobOption func(*SyncJobWorker)

// WithIndexRefresher rescans the media root before every session.
func WithIndexRefresher(refresher contract.IndexRefresher) SyncJobOption {
	return func(w *SyncJobWorker) {
		w.refresher = refresher
	}
}

// WithResults publishes every session result. Sends never block.
func WithResults(results chan<- domain.SessionResult) SyncJobOption {
	return func(w *SyncJobWorker) {
		w.results = results
	}
}

func NewSyncJobWorker(
	log *slog.Logger,
	clock clockwork.Clock,
	interval time.Duration,
	params domain.ConnectionParams,
	runner contract.SessionRunner,
	opts ...SyncJobOption,
) *SyncJobWorker {
	w := &SyncJobWorker{
		log:      log,
		clock:    clock,
		interval: interval,
		params:   params,
		runner:   runner,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *SyncJobWorker) Run(ctx context.Context) error {
	ticker := w.clock.NewTicker(w.interval)
	defer ticker.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	w.log.Info("Sync job started", "interval", w.interval, "address", w.params.Address())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			// A tick and a cancellation can be ready together.
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !w.busy.CompareAndSwap(false, true) {
				w.skipped.Add(1)
				w.log.Info("Sync already running, tick skipped")
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer w.busy.Store(false)
				w.sync(ctx)
			}()
		}
	}
}

// Skipped reports how many ticks landed on a running session.
func (w *SyncJobWorker) Skipped() uint64 {
	return w.skipped.Load()
}

// RunOnce triggers one session and waits for its result.
func (w *SyncJobWorker) RunOnce(ctx context.Context) (domain.SessionResult, error) {
	if !w.busy.CompareAndSwap(false, true) {
		return domain.SessionResult{}, errors.ErrSessionBusy
	}
	defer w.busy.Store(false)
	return w.sync(ctx), nil
}

func (w *SyncJobWorker) sync(ctx context.Context) domain.SessionResult {
	if w.refresher != nil {
		stats, err := w.refresher.Refresh(ctx)
		if err != nil {
			w.log.Warn("Media index refresh failed, syncing with the current index", "error", err)
		} else {
			w.log.Info("Media index refreshed",
				"indexed", stats.FilesIndexed,
				"unchanged", stats.Unchanged,
				"dirs", stats.DirsScanned,
				"errors", stats.Errors)
		}
	}

	// The session honors ctx itself; waiting here keeps sessions strictly serial.
	result := <-w.runner.Start(ctx, w.params)

	if w.results != nil {
		select {
		case w.results <- result:
		default:
			w.log.Warn("Session result dropped, nobody listening", "session_id", result.SessionID)
		}
	}
	return result
}
