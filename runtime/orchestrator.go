// Package runtime assembles the long-running client: the media indexer,
// the periodic sync job and the notifier that renders session progress.
// It wires components together without holding any protocol logic.
package runtime

import (
	"context"
	"homecloud/contract"
	"homecloud/domain/event"
	"homecloud/runtime/workers"
	"log/slog"
	"sync"
)

type Orchestrator struct {
	mu         sync.Mutex
	log        *slog.Logger
	supervisor contract.ISupervisor
	events     <-chan event.Event
	handlers   []event.Handler
	syncJob    contract.Worker
}

func NewOrchestrator(
	log *slog.Logger,
	supervisor contract.ISupervisor,
	events <-chan event.Event,
	syncJob contract.Worker,
) *Orchestrator {
	return &Orchestrator{
		log:        log,
		supervisor: supervisor,
		events:     events,
		syncJob:    syncJob,
	}
}

// Add registers handlers fed by the notifier. Must be called before Start.
func (o *Orchestrator) Add(handlers ...event.Handler) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.handlers = append(o.handlers, handlers...)
}

// Start blocks until ctx is canceled or Stop is called.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	notifier := workers.NewNotifierWorker(o.log, o.events, o.handlers...)
	o.supervisor.Add(notifier, o.syncJob)
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers")
	o.supervisor.Run(ctx)
	return nil
}

func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
