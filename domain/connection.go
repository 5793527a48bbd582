package domain

import (
	"net"
	"strconv"
)

// ConnectionParams is supplied once per session and never mutated.
type ConnectionParams struct {
	Host     string `validate:"required,max=253"`
	Port     int    `validate:"min=1,max=65535"`
	ClientID string `validate:"required,max=1024"`
}

// Address returns the dialable host:port form.
func (p ConnectionParams) Address() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

type FailureReason string

const (
	ReasonNone                 FailureReason = ""
	ReasonConnectionRefused    FailureReason = "connection-refused"
	ReasonGenericTransferError FailureReason = "generic-transfer-error"
)

const KB = 1024
const MB = KB * KB
