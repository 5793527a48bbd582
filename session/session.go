// Package session drives one synchronization over one TCP connection:
// handshake, manifest, then name/length/bytes/digest for every file.
package session

import (
	"bufio"
	"context"
	stdErrors "errors"
	"fmt"
	"homecloud/checksum"
	"homecloud/contract"
	"homecloud/domain"
	"homecloud/errors"
	"homecloud/media"
	"homecloud/progress"
	"homecloud/protocol"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// maxChunkSize caps the write and read buffers whatever the server negotiates.
// Chunks stay no larger than the negotiated size.
const maxChunkSize = 4 * domain.MB

// State is owned by a single run and discarded when it ends.
type State struct {
	BufferSize   int
	LastSyncDate time.Time
	FilesTotal   int
	FilesSent    int
}

type Session struct {
	log        *slog.Logger
	dialer     contract.Dialer
	enumerator contract.Enumerator
	fs         afero.Fs
	reporter   contract.ProgressReporter
	validator  *validator.Validate
	ioTimeout  time.Duration
}

type Option func(*Session)

// WithIOTimeout bounds every blocking socket operation.
func WithIOTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.ioTimeout = d
	}
}

func New(
	log *slog.Logger,
	dialer contract.Dialer,
	enumerator contract.Enumerator,
	fs afero.Fs,
	reporter contract.ProgressReporter,
	opts ...Option,
) *Session {
	s := &Session{
		log:        log,
		dialer:     dialer,
		enumerator: enumerator,
		fs:         fs,
		reporter:   progress.Safe(reporter, log),
		validator:  validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs the session on its own goroutine so blocking socket and file I/O
// never stalls the caller. The result is delivered once, then the channel closes.
func (s *Session) Start(ctx context.Context, params domain.ConnectionParams) <-chan domain.SessionResult {
	out := make(chan domain.SessionResult, 1)
	go func() {
		defer close(out)
		out <- s.Run(ctx, params)
	}()
	return out
}

// Run performs one full session. It never retries: on any failure the
// connection is closed and the reason is reported to the caller.
func (s *Session) Run(ctx context.Context, params domain.ConnectionParams) domain.SessionResult {
	result := domain.SessionResult{
		SessionID: uuid.NewString(),
		StartedAt: time.Now(),
	}
	log := s.log.With("session_id", result.SessionID)

	err := s.run(ctx, log, params, &result)
	result.EndedAt = time.Now()

	if err != nil {
		result.Reason = ReasonFor(err)
		result.Err = err
		log.Error("Sync session failed",
			"reason", string(result.Reason),
			"files_sent", result.FilesSent,
			"files_total", result.FilesTotal,
			"error", err)
		s.reporter.OnFailed(result.Reason)
		return result
	}

	result.Success = true
	log.Info("Sync session completed",
		"files_sent", result.FilesSent,
		"duration", result.EndedAt.Sub(result.StartedAt))
	s.reporter.OnCompleted()
	return result
}

// ReasonFor maps an error onto the reason code shown to the user.
func ReasonFor(err error) domain.FailureReason {
	switch {
	case err == nil:
		return domain.ReasonNone
	case stdErrors.Is(err, errors.ErrConnection):
		return domain.ReasonConnectionRefused
	default:
		return domain.ReasonGenericTransferError
	}
}

func (s *Session) run(ctx context.Context, log *slog.Logger, params domain.ConnectionParams, result *domain.SessionResult) error {
	if err := s.validator.Struct(params); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidParams, err)
	}

	address := params.Address()
	log.Debug("Establishing connection", "address", address)
	conn, err := s.dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("%w: dialing %s: %w", errors.ErrConnection, address, err)
	}
	// Close errors are only logged: on success every byte was already flushed.
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Warn("Closing connection failed", "error", cerr)
		}
	}()
	log.Debug("Connection established", "address", address)

	state, err := s.handshake(conn, params.ClientID)
	if err != nil {
		return err
	}
	log.Debug("Handshake done", "buffer_size", state.BufferSize, "last_sync_date", state.LastSyncDate)

	manifest, err := media.BuildManifest(ctx, s.enumerator, state.LastSyncDate)
	if err != nil {
		return fmt.Errorf("building manifest: %w", err)
	}
	state.FilesTotal = len(manifest)
	result.FilesTotal = state.FilesTotal
	log.Info("Sending manifest", "files", state.FilesTotal)

	chunkSize := min(state.BufferSize, maxChunkSize)
	bw := bufio.NewWriterSize(conn, chunkSize)
	w := protocol.NewWriter(bw)
	if err := s.extendDeadline(conn); err != nil {
		return err
	}
	if err := w.WriteInt32(int32(state.FilesTotal)); err != nil {
		return ioError("writing file count", err)
	}

	buf := make([]byte, chunkSize)
	for i, file := range manifest {
		if err := ctx.Err(); err != nil {
			return ioError("session canceled", err)
		}
		digest, err := s.sendFile(conn, bw, w, file, buf)
		if err != nil {
			return err
		}
		state.FilesSent++
		result.FilesSent = state.FilesSent
		result.Sent = append(result.Sent, domain.SentFile{
			Name:   file.Name(),
			Size:   file.Size,
			Digest: digest.String(),
		})
		log.Debug("File sent", "file", file.Name(), "size", file.Size, "md5", digest.String())
		s.reporter.OnProgress(i+1, state.FilesTotal)
	}

	if err := bw.Flush(); err != nil {
		return ioError("flushing connection", err)
	}
	return nil
}

// handshake sends the client id then reads the buffer size and last sync date.
func (s *Session) handshake(conn net.Conn, clientID string) (*State, error) {
	if err := s.extendDeadline(conn); err != nil {
		return nil, err
	}
	hw := bufio.NewWriter(conn)
	if err := protocol.NewWriter(hw).WriteUTF(clientID); err != nil {
		return nil, ioError("sending client id", err)
	}
	if err := hw.Flush(); err != nil {
		return nil, ioError("sending client id", err)
	}

	r := protocol.NewReader(conn)
	bufferSize, err := r.ReadBufferSize()
	if err != nil {
		return nil, err
	}
	lastSync, err := r.ReadLastSyncDate()
	if err != nil {
		return nil, err
	}
	return &State{BufferSize: bufferSize, LastSyncDate: lastSync}, nil
}

// sendFile streams exactly file.Size bytes, the length captured at
// enumeration time. A file that shrank fails the session; a file that grew is
// cut at the declared length. The digest covers exactly the bytes written.
func (s *Session) sendFile(conn net.Conn, bw *bufio.Writer, w *protocol.Writer, file domain.CandidateFile, buf []byte) (checksum.Digest, error) {
	var digest checksum.Digest

	f, err := s.fs.Open(file.AbsolutePath)
	if err != nil {
		return digest, ioError("opening "+file.AbsolutePath, err)
	}
	defer f.Close()

	if err := s.extendDeadline(conn); err != nil {
		return digest, err
	}
	if err := w.WriteUTF(file.Name()); err != nil {
		return digest, ioError("writing file name", err)
	}
	if err := w.WriteInt64(file.Size); err != nil {
		return digest, ioError("writing file length", err)
	}

	acc := checksum.New()
	remaining := file.Size
	for remaining > 0 {
		chunk := buf[:min(int64(len(buf)), remaining)]
		n, err := io.ReadFull(f, chunk)
		if err != nil {
			if stdErrors.Is(err, io.EOF) || stdErrors.Is(err, io.ErrUnexpectedEOF) {
				return digest, ioError("reading "+file.AbsolutePath,
					fmt.Errorf("file shrank, %d of %d bytes missing", remaining-int64(n), file.Size))
			}
			return digest, ioError("reading "+file.AbsolutePath, err)
		}
		if err := s.extendDeadline(conn); err != nil {
			return digest, err
		}
		if _, err := w.Write(chunk); err != nil {
			return digest, ioError("writing file bytes", err)
		}
		acc.Update(chunk)
		remaining -= int64(n)
	}

	digest, err = acc.Finish()
	if err != nil {
		return digest, ioError("finishing digest", err)
	}
	if err := w.WriteUTF(digest.String()); err != nil {
		return digest, ioError("writing digest", err)
	}
	if err := bw.Flush(); err != nil {
		return digest, ioError("flushing file", err)
	}
	return digest, nil
}

func (s *Session) extendDeadline(conn net.Conn) error {
	if s.ioTimeout <= 0 {
		return nil
	}
	if err := conn.SetDeadline(time.Now().Add(s.ioTimeout)); err != nil {
		return ioError("setting deadline", err)
	}
	return nil
}

func ioError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", errors.ErrTransferIO, op, err)
}
