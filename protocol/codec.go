// Package protocol implements the framing shared by client and server:
// big-endian integers and strings prefixed by a 2-byte unsigned length.
// There is no self-describing framing beyond field order.
package protocol

import (
	"encoding/binary"
	"fmt"
	"homecloud/errors"
	"io"
	"math"
	"time"
)

// SyncDateLayout is yyyy-MM-dd HH:mm:ss, local time, no zone marker.
const SyncDateLayout = "2006-01-02 15:04:05"

type Writer struct {
	w   io.Writer
	buf [8]byte
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteUTF writes len(s) as uint16 followed by the UTF-8 bytes of s.
func (w *Writer) WriteUTF(s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("%w: %d bytes", errors.ErrStringTooLong, len(s))
	}
	binary.BigEndian.PutUint16(w.buf[:2], uint16(len(s)))
	if _, err := w.w.Write(w.buf[:2]); err != nil {
		return err
	}
	_, err := io.WriteString(w.w, s)
	return err
}

func (w *Writer) WriteInt32(v int32) error {
	binary.BigEndian.PutUint32(w.buf[:4], uint32(v))
	_, err := w.w.Write(w.buf[:4])
	return err
}

func (w *Writer) WriteInt64(v int64) error {
	binary.BigEndian.PutUint64(w.buf[:8], uint64(v))
	_, err := w.w.Write(w.buf[:8])
	return err
}

// Write passes raw file bytes through untouched.
func (w *Writer) Write(p []byte) (int, error) {
	return w.w.Write(p)
}

type Reader struct {
	r   io.Reader
	buf [8]byte
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

func (r *Reader) ReadUTF() (string, error) {
	if _, err := io.ReadFull(r.r, r.buf[:2]); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint16(r.buf[:2])
	if n == 0 {
		return "", nil
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r.r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *Reader) ReadInt32() (int32, error) {
	if _, err := io.ReadFull(r.r, r.buf[:4]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(r.buf[:4])), nil
}

func (r *Reader) ReadInt64() (int64, error) {
	if _, err := io.ReadFull(r.r, r.buf[:8]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(r.buf[:8])), nil
}

// Read exposes the underlying stream for raw file bodies.
func (r *Reader) Read(p []byte) (int, error) {
	return r.r.Read(p)
}

func ParseSyncDate(s string) (time.Time, error) {
	return time.ParseInLocation(SyncDateLayout, s, time.Local)
}

func FormatSyncDate(t time.Time) string {
	return t.In(time.Local).Format(SyncDateLayout)
}
