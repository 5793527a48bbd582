package domain

import "time"

// SessionResult is what one trigger gets back from a transfer session.
// Partial progress is informational only: a session either fully succeeds
// or is a single failure with a reason.
type SessionResult struct {
	SessionID  string
	Success    bool
	Reason     FailureReason
	Err        error
	FilesTotal int
	FilesSent  int
	Sent       []SentFile
	StartedAt  time.Time
	EndedAt    time.Time
}

type SentFile struct {
	Name   string
	Size   int64
	Digest string
}

// ScanStats summarises one pass of the media scanner.
type ScanStats struct {
	FilesIndexed uint64
	Unchanged    uint64
	DirsScanned  uint64
	Bytes        uint64
	Errors       uint64
	Skipped      uint64
}
