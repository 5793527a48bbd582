package workers

import (
	"context"
	"homecloud/domain/event"
	"log/slog"
)

// NotifierWorker replays session events to every handler, in order.
type NotifierWorker struct {
	log      *slog.Logger
	events   <-chan event.Event
	handlers []event.Handler
}

func NewNotifierWorker(log *slog.Logger, events <-chan event.Event, handlers ...event.Handler) *NotifierWorker {
	return &NotifierWorker{log: log, events: events, handlers: handlers}
}

// Run returns nil once the event channel is closed and drained.
func (w *NotifierWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case evt, ok := <-w.events:
			if !ok {
				return nil
			}
			w.dispatch(evt)
		}
	}
}

// drain flushes what is already buffered so the last outcome is not lost on shutdown.
func (w *NotifierWorker) drain() {
	for {
		select {
		case evt, ok := <-w.events:
			if !ok {
				return
			}
			w.dispatch(evt)
		default:
			return
		}
	}
}

func (w *NotifierWorker) dispatch(evt event.Event) {
	w.log.Debug("Dispatching event", "type", evt.Type)
	for _, h := range w.handlers {
		h.Handle(evt)
	}
}
