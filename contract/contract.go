//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"homecloud/domain"
	"net"
	"reflect"
	"time"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker
// for logging during supervision.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Dialer opens the session connection. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// MediaIndex is the local catalogue of media files, one bucket per category.
type MediaIndex interface {
	Paths(ctx context.Context, category domain.Category) ([]string, error)
}

// Enumerator lists the files modified strictly after a cutoff.
type Enumerator interface {
	ListNewerThan(ctx context.Context, since time.Time, category domain.Category) ([]domain.CandidateFile, error)
}

// ProgressReporter receives session progress. Implementations must not
// block for long; a misbehaving reporter never aborts a transfer.
type ProgressReporter interface {
	OnProgress(current, total int)
	OnCompleted()
	OnFailed(reason domain.FailureReason)
}

// SessionRunner starts one transfer session on its own goroutine.
type SessionRunner interface {
	Start(ctx context.Context, params domain.ConnectionParams) <-chan domain.SessionResult
}

// IndexRefresher rebuilds the media index before a session.
type IndexRefresher interface {
	Refresh(ctx context.Context) (domain.ScanStats, error)
}
