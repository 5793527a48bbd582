// Package progress holds the sinks a transfer session reports to.
package progress

import (
	"fmt"
	"homecloud/contract"
	"homecloud/domain"
	"log/slog"
)

// Nop discards every event.
type Nop struct{}

func (Nop) OnProgress(int, int)           {}
func (Nop) OnCompleted()                  {}
func (Nop) OnFailed(domain.FailureReason) {}

// Safe shields the caller from a reporter that panics.
// Delivering progress must never abort a transfer.
func Safe(next contract.ProgressReporter, log *slog.Logger) contract.ProgressReporter {
	if next == nil {
		return Nop{}
	}
	if s, ok := next.(safeReporter); ok {
		return s
	}
	return safeReporter{next: next, log: log}
}

type safeReporter struct {
	next contract.ProgressReporter
	log  *slog.Logger
}

func (s safeReporter) OnProgress(current, total int) {
	defer s.recover("progress")
	s.next.OnProgress(current, total)
}

func (s safeReporter) OnCompleted() {
	defer s.recover("completed")
	s.next.OnCompleted()
}

func (s safeReporter) OnFailed(reason domain.FailureReason) {
	defer s.recover("failed")
	s.next.OnFailed(reason)
}

func (s safeReporter) recover(event string) {
	if r := recover(); r != nil {
		s.log.Warn("Progress reporter failed", "event", event, "panic", fmt.Sprint(r))
	}
}

// Multi fans every event out to each reporter in order.
type Multi []contract.ProgressReporter

func (m Multi) OnProgress(current, total int) {
	for _, r := range m {
		r.OnProgress(current, total)
	}
}

func (m Multi) OnCompleted() {
	for _, r := range m {
		r.OnCompleted()
	}
}

func (m Multi) OnFailed(reason domain.FailureReason) {
	for _, r := range m {
		r.OnFailed(reason)
	}
}

// LogReporter writes progress to the structured log.
type LogReporter struct {
	log *slog.Logger
}

func NewLogReporter(log *slog.Logger) *LogReporter {
	return &LogReporter{log: log}
}

func (l LogReporter) OnProgress(current, total int) {
	l.log.Info("Sync progress", "current", current, "total", total)
}

func (l LogReporter) OnCompleted() {
	l.log.Info("Sync completed")
}

func (l LogReporter) OnFailed(reason domain.FailureReason) {
	l.log.Warn("Sync failed", "reason", string(reason))
}
