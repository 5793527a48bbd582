package workers

import (
	"context"
	"homecloud/contract"
	"homecloud/errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const defaultRestartDelay = 200 * time.Millisecond

// Supervisor runs a fixed set of workers until they all return.
// A worker returning nil is done for good. A worker returning an error or
// panicking is restarted after restartDelay, unless the context is gone.
type Supervisor struct {
	Cancel       context.CancelFunc
	wg           *sync.WaitGroup
	log          *slog.Logger
	clock        clockwork.Clock
	restartDelay time.Duration
	workers      []contract.Worker
}

type SupervisorOption func(*Supervisor)

func WithClock(clock clockwork.Clock) SupervisorOption {
	return func(s *Supervisor) {
		s.clock = clock
	}
}

func WithRestartDelay(d time.Duration) SupervisorOption {
	return func(s *Supervisor) {
		s.restartDelay = d
	}
}

func NewSupervisor(log *slog.Logger, opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		wg:           &sync.WaitGroup{},
		log:          log,
		clock:        clockwork.NewRealClock(),
		restartDelay: defaultRestartDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run blocks until every worker has returned for good.
// Canceling the parent ctx or calling Stop cancels all workers.
func (s *Supervisor) Run(ctx context.Context) {
	supervisedCtx, cancel := context.WithCancel(ctx)
	s.Cancel = cancel
	defer cancel()

	for _, worker := range s.workers {
		s.Start(supervisedCtx, worker)
	}
	s.wg.Wait()
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.workers = append(s.workers, worker...)
	return s
}

// Start runs one worker on its own goroutine under supervision.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	name := contract.GetWorkerName(worker)

	go func() {
		defer s.wg.Done()

		for attempt := 1; ; attempt++ {
			if ctx.Err() != nil {
				s.log.Debug("Worker not started, context done", "name", name)
				return
			}

			err := s.runSafely(worker)(ctx)
			if err == nil {
				s.log.Debug("Worker finished", "name", name)
				return
			}
			if ctx.Err() != nil {
				s.log.Debug("Worker stopped", "name", name, "reason", ctx.Err())
				return
			}

			s.log.Warn("Worker crashed, restarting", "name", name, "attempt", attempt, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-s.clock.After(s.restartDelay):
			}
		}
	}()
}

func (s *Supervisor) runSafely(worker contract.Worker) func(ctx context.Context) error {
	return func(ctx context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("Worker panicked", "name", contract.GetWorkerName(worker), "panic", r)
				err = errors.ErrWorkerPanic
			}
		}()
		return worker.Run(ctx)
	}
}

func (s *Supervisor) Stop() {
	if s.Cancel != nil {
		s.Cancel()
	}
}
