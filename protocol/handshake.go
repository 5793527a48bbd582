package protocol

import (
	"fmt"
	"homecloud/errors"
	"time"
)

// ReadBufferSize reads the negotiated transfer buffer size.
// Zero or negative sizes are protocol violations.
func (r *Reader) ReadBufferSize() (int, error) {
	size, err := r.ReadInt32()
	if err != nil {
		return 0, fmt.Errorf("%w: reading buffer size: %w", errors.ErrTransferIO, err)
	}
	if size <= 0 {
		return 0, fmt.Errorf("%w: buffer size must be positive, got %d", errors.ErrProtocol, size)
	}
	return int(size), nil
}

// ReadLastSyncDate reads the server's last sync timestamp.
func (r *Reader) ReadLastSyncDate() (time.Time, error) {
	raw, err := r.ReadUTF()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: reading last sync date: %w", errors.ErrTransferIO, err)
	}
	date, err := ParseSyncDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: last sync date %q: %w", errors.ErrProtocol, raw, err)
	}
	return date, nil
}
