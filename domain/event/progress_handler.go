package event

import (
	"homecloud/contract"
	"homecloud/errors"
	"log/slog"
)

// ProgressHandler replays channel events onto a ProgressReporter,
// typically the console or a notification sink.
type ProgressHandler struct {
	log      *slog.Logger
	reporter contract.ProgressReporter
}

func NewProgressHandler(log *slog.Logger, reporter contract.ProgressReporter) *ProgressHandler {
	return &ProgressHandler{log: log, reporter: reporter}
}

func (h ProgressHandler) Handle(event Event) {
	switch event.Type {
	case ProgressType:
		payload, ok := event.Payload.(Progress)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error(), "type", event.Type)
			return
		}
		h.reporter.OnProgress(payload.Current, payload.Total)
	case CompletedType:
		h.reporter.OnCompleted()
	case FailedType:
		payload, ok := event.Payload.(Failed)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error(), "type", event.Type)
			return
		}
		h.reporter.OnFailed(payload.Reason)
	}
}
