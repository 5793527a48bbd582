package errors

import "fmt"

var (
	ErrWorkerPanic    = fmt.Errorf("worker panic")
	ErrInvalidPayload = fmt.Errorf("invalid event payload")
	ErrInvalidParams  = fmt.Errorf("invalid connection parameters")
	ErrInvalidConfig  = fmt.Errorf("invalid configuration")
	ErrSessionBusy    = fmt.Errorf("a sync session is already running")
	ErrInvalidEntry   = fmt.Errorf("invalid media index entry")

	// ErrConnection covers a refused or unreachable peer.
	ErrConnection = fmt.Errorf("connection error")
	// ErrProtocol covers a malformed handshake response.
	ErrProtocol = fmt.Errorf("protocol error")
	// ErrTransferIO covers any local read or socket write failure mid-session.
	ErrTransferIO = fmt.Errorf("transfer i/o error")

	ErrStringTooLong  = fmt.Errorf("string exceeds 65535 encoded bytes")
	ErrDigestConsumed = fmt.Errorf("digest already consumed")
)
