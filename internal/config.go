package internal

import (
	"fmt"
	"homecloud/domain"
	"homecloud/errors"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Host     string `env:"HOST,default=127.0.0.1" validate:"required,max=253"`
	Port     int    `env:"PORT,default=3999" validate:"min=1,max=65535"`
	ClientID string `env:"CLIENT_ID,default=anonymous" validate:"required,max=1024"`
	LogLevel string `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR debug info warn error"`

	MediaRoot      string `env:"MEDIA_ROOT,required=true" validate:"required"`
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true" validate:"required"`

	SyncInterval time.Duration `env:"SYNC_INTERVAL,default=15m" validate:"min=1s"`
	DialTimeout  time.Duration `env:"DIAL_TIMEOUT,default=10s" validate:"min=0s"`
	IOTimeout    time.Duration `env:"IO_TIMEOUT,default=0s" validate:"min=0s"`

	ScannerWorkerNb                  int `env:"SCANNER_WORKER_NB,default=2" validate:"min=1,max=64"`
	BufferSize                       int `env:"BUFFER_SIZE,default=256" validate:"min=1"`
	ScannerBackpressureLowThreshold  int `env:"SCANNER_BACKPRESSURE_LOW_THRESHOLD_PERCENT,default=70" validate:"min=0,max=100"`
	ScannerBackpressureHardThreshold int `env:"SCANNER_BACKPRESSURE_HARD_THRESHOLD_PERCENT,default=90" validate:"min=0,max=100,gtefield=ScannerBackpressureLowThreshold"`
	EventBufferSize                  int `env:"EVENT_BUFFER_SIZE,default=64" validate:"min=1"`
}

// Validate checks ranges go-env cannot express.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err)
	}
	return nil
}

// ConnectionParams is the immutable triple handed to every session.
func (c Config) ConnectionParams() domain.ConnectionParams {
	return domain.ConnectionParams{
		Host:     c.Host,
		Port:     c.Port,
		ClientID: c.ClientID,
	}
}
