package progress

import (
	"homecloud/domain"
	"homecloud/domain/event"
	"sync/atomic"
	"time"
)

// terminalWait bounds how long a Completed or Failed event waits for room.
const terminalWait = time.Second

// ChannelReporter publishes events for an asynchronous consumer.
// Progress sends never block: when the channel is full the event is dropped and counted.
// Terminal events wait up to terminalWait before being dropped.
type ChannelReporter struct {
	events       chan<- event.Event
	terminalWait time.Duration
	dropped      atomic.Uint64
}

func NewChannelReporter(events chan<- event.Event) *ChannelReporter {
	return &ChannelReporter{events: events, terminalWait: terminalWait}
}

func (c *ChannelReporter) OnProgress(current, total int) {
	select {
	case c.events <- event.NewProgress(current, total):
	default:
		c.dropped.Add(1)
	}
}

func (c *ChannelReporter) OnCompleted() {
	c.publishTerminal(event.NewCompleted())
}

func (c *ChannelReporter) OnFailed(reason domain.FailureReason) {
	c.publishTerminal(event.NewFailed(reason))
}

// Dropped returns how many events could not be queued.
func (c *ChannelReporter) Dropped() uint64 {
	return c.dropped.Load()
}

func (c *ChannelReporter) publishTerminal(e event.Event) {
	timer := time.NewTimer(c.terminalWait)
	defer timer.Stop()
	select {
	case c.events <- e:
	case <-timer.C:
		c.dropped.Add(1)
	}
}
