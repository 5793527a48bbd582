package progress

import (
	"fmt"
	"homecloud/domain"
	"io"
	"strings"

	"github.com/gookit/color"
)

const barWidth = 30

// Terminal messages shown once a session ends.
const (
	MsgCompleted       = "Synchronization completed"
	MsgConnectionError = "Connection error, check the server address"
	MsgGenericError    = "Error communicating with the server"
)

// ConsoleReporter draws a determinate progress bar while files are sent and a
// final message for the outcome.
type ConsoleReporter struct {
	out   io.Writer
	drawn bool
}

func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

func (c *ConsoleReporter) OnProgress(current, total int) {
	if total <= 0 {
		return
	}
	filled := current * barWidth / total
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", barWidth-filled)
	fmt.Fprintf(c.out, "\r%s [%s] %d/%d", color.Cyan.Sprint("Syncing"), bar, current, total)
	c.drawn = true
}

func (c *ConsoleReporter) OnCompleted() {
	c.finish(color.Green.Sprint(MsgCompleted))
}

func (c *ConsoleReporter) OnFailed(reason domain.FailureReason) {
	switch reason {
	case domain.ReasonConnectionRefused:
		c.finish(color.Red.Sprint(MsgConnectionError))
	default:
		c.finish(color.Red.Sprint(MsgGenericError))
	}
}

func (c *ConsoleReporter) finish(msg string) {
	if c.drawn {
		fmt.Fprintln(c.out)
		c.drawn = false
	}
	fmt.Fprintln(c.out, msg)
}
