package event

import "homecloud/domain"

type Type string

const (
	ProgressType  Type = "SYNC_PROGRESS"
	CompletedType Type = "SYNC_COMPLETED"
	FailedType    Type = "SYNC_FAILED"
)

// Event is what travels on the progress channel between a session and
// whatever renders its progress.
type Event struct {
	Type    Type
	Payload any
}

type Progress struct {
	Current int
	Total   int
}

type Completed struct{}

type Failed struct {
	Reason domain.FailureReason
}

func NewProgress(current, total int) Event {
	return Event{Type: ProgressType, Payload: Progress{Current: current, Total: total}}
}

func NewCompleted() Event {
	return Event{Type: CompletedType, Payload: Completed{}}
}

func NewFailed(reason domain.FailureReason) Event {
	return Event{Type: FailedType, Payload: Failed{Reason: reason}}
}
