package session

import (
	"context"
	"crypto/md5"
	"fmt"
	"homecloud/domain"
	"homecloud/errors"
	"homecloud/media"
	"homecloud/mocks"
	"homecloud/protocol"
	"io"
	"log/slog"
	"math"
	"net"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const lastSync = "2023-01-01 00:00:00"

var (
	params  = domain.ConnectionParams{Host: "127.0.0.1", Port: 3999, ClientID: "pixel-7"}
	newTime = time.Date(2023, 6, 1, 12, 0, 0, 0, time.Local)
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingConn counts Close calls on the client end of the pipe.
type recordingConn struct {
	net.Conn
	closed atomic.Int32
}

func (c *recordingConn) Close() error {
	c.closed.Add(1)
	return c.Conn.Close()
}

// trackingFs records every Open and how many handles are still open.
type trackingFs struct {
	afero.Fs
	mu     sync.Mutex
	opened []string
	open   int
}

func (t *trackingFs) Open(name string) (afero.File, error) {
	f, err := t.Fs.Open(name)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.opened = append(t.opened, name)
	if err != nil {
		return nil, err
	}
	t.open++
	return &trackingFile{File: f, fs: t}, nil
}

func (t *trackingFs) stillOpen() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open
}

type trackingFile struct {
	afero.File
	fs   *trackingFs
	once sync.Once
}

func (f *trackingFile) Close() error {
	f.once.Do(func() {
		f.fs.mu.Lock()
		f.fs.open--
		f.fs.mu.Unlock()
	})
	return f.File.Close()
}

type receivedFile struct {
	Name   string
	Length int64
	Body   []byte
	Digest string
}

type transcript struct {
	ClientID  string
	FileCount int32
	Files     []receivedFile
}

type peerResult struct {
	transcript transcript
	err        error
}

// servePeer plays the server side of one session.
func servePeer(conn net.Conn, bufferSize int32, syncDate string) (transcript, error) {
	defer conn.Close()
	var tr transcript
	r := protocol.NewReader(conn)
	w := protocol.NewWriter(conn)

	id, err := r.ReadUTF()
	if err != nil {
		return tr, fmt.Errorf("client id: %w", err)
	}
	tr.ClientID = id
	if err := w.WriteInt32(bufferSize); err != nil {
		return tr, err
	}
	if err := w.WriteUTF(syncDate); err != nil {
		return tr, err
	}

	count, err := r.ReadInt32()
	if err != nil {
		return tr, fmt.Errorf("file count: %w", err)
	}
	tr.FileCount = count

	for i := int32(0); i < count; i++ {
		var f receivedFile
		if f.Name, err = r.ReadUTF(); err != nil {
			return tr, fmt.Errorf("file %d name: %w", i, err)
		}
		if f.Length, err = r.ReadInt64(); err != nil {
			return tr, fmt.Errorf("file %d length: %w", i, err)
		}
		f.Body = make([]byte, f.Length)
		if _, err = io.ReadFull(r, f.Body); err != nil {
			return tr, fmt.Errorf("file %d body: %w", i, err)
		}
		if f.Digest, err = r.ReadUTF(); err != nil {
			return tr, fmt.Errorf("file %d digest: %w", i, err)
		}
		tr.Files = append(tr.Files, f)
	}
	return tr, nil
}

func startPeer(bufferSize int32, syncDate string) (*recordingConn, <-chan peerResult) {
	client, server := net.Pipe()
	done := make(chan peerResult, 1)
	go func() {
		tr, err := servePeer(server, bufferSize, syncDate)
		done <- peerResult{transcript: tr, err: err}
	}()
	return &recordingConn{Conn: client}, done
}

func waitPeer(t *testing.T, done <-chan peerResult) peerResult {
	t.Helper()
	select {
	case res := <-done:
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("peer did not finish")
		return peerResult{}
	}
}

func writeMedia(t *testing.T, fs afero.Fs, path string, content []byte) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, content, 0644))
	require.NoError(t, fs.Chtimes(path, newTime, newTime))
}

func md5Hex(b []byte) string {
	return strings.ToUpper(fmt.Sprintf("%x", md5.Sum(b)))
}

type fixture struct {
	ctrl     *gomock.Controller
	fs       *trackingFs
	index    *mocks.MockMediaIndex
	dialer   *mocks.MockDialer
	reporter *mocks.MockProgressReporter
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	return &fixture{
		ctrl:     ctrl,
		fs:       &trackingFs{Fs: afero.NewMemMapFs()},
		index:    mocks.NewMockMediaIndex(ctrl),
		dialer:   mocks.NewMockDialer(ctrl),
		reporter: mocks.NewMockProgressReporter(ctrl),
	}
}

func (f *fixture) session(opts ...Option) *Session {
	log := discardLogger()
	enumerator := media.NewEnumerator(log, f.index, f.fs)
	return New(log, f.dialer, enumerator, f.fs, f.reporter, opts...)
}

func TestSession_Run_TwoFiles(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	defer f.ctrl.Finish()

	image := []byte("0123456789")
	video := []byte("abcdefghijklmnopqrst")
	writeMedia(t, f.fs, "/sdcard/DCIM/IMG_1.jpg", image)
	writeMedia(t, f.fs, "/sdcard/Movies/VID_1.mp4", video)

	conn, done := startPeer(4096, lastSync)
	f.dialer.EXPECT().DialContext(gomock.Any(), "tcp", "127.0.0.1:3999").Return(conn, nil)
	f.index.EXPECT().Paths(gomock.Any(), domain.Images).Return([]string{"/sdcard/DCIM/IMG_1.jpg"}, nil)
	f.index.EXPECT().Paths(gomock.Any(), domain.Video).Return([]string{"/sdcard/Movies/VID_1.mp4"}, nil)
	gomock.InOrder(
		f.reporter.EXPECT().OnProgress(1, 2),
		f.reporter.EXPECT().OnProgress(2, 2),
		f.reporter.EXPECT().OnCompleted(),
	)

	result := f.session().Run(context.Background(), params)
	peer := waitPeer(t, done)

	req.True(result.Success)
	req.Equal(domain.ReasonNone, result.Reason)
	req.NoError(result.Err)
	req.Equal(2, result.FilesTotal)
	req.Equal(2, result.FilesSent)
	req.NotEmpty(result.SessionID)

	req.NoError(peer.err)
	tr := peer.transcript
	req.Equal("pixel-7", tr.ClientID)
	req.Equal(int32(2), tr.FileCount)
	req.Equal(receivedFile{Name: "IMG_1.jpg", Length: 10, Body: image, Digest: md5Hex(image)}, tr.Files[0])
	req.Equal(receivedFile{Name: "VID_1.mp4", Length: 20, Body: video, Digest: md5Hex(video)}, tr.Files[1])

	req.Equal([]domain.SentFile{
		{Name: "IMG_1.jpg", Size: 10, Digest: md5Hex(image)},
		{Name: "VID_1.mp4", Size: 20, Digest: md5Hex(video)},
	}, result.Sent)

	req.Equal(int32(1), conn.closed.Load())
	req.Zero(f.fs.stillOpen())
}

func TestSession_Run_EmptyManifest(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	defer f.ctrl.Finish()

	// An old file that does not qualify
	require.NoError(t, afero.WriteFile(f.fs, "/sdcard/DCIM/old.jpg", []byte("x"), 0644))
	old := time.Date(2022, 12, 31, 23, 59, 59, 0, time.Local)
	require.NoError(t, f.fs.Chtimes("/sdcard/DCIM/old.jpg", old, old))

	conn, done := startPeer(4096, lastSync)
	f.dialer.EXPECT().DialContext(gomock.Any(), "tcp", gomock.Any()).Return(conn, nil)
	f.index.EXPECT().Paths(gomock.Any(), domain.Images).Return([]string{"/sdcard/DCIM/old.jpg"}, nil)
	f.index.EXPECT().Paths(gomock.Any(), domain.Video).Return(nil, nil)
	// No OnProgress expectation: any per-file event fails the test
	f.reporter.EXPECT().OnCompleted()

	result := f.session().Run(context.Background(), params)
	peer := waitPeer(t, done)

	req.True(result.Success)
	req.NoError(peer.err)
	req.Equal(int32(0), peer.transcript.FileCount)
	req.Empty(peer.transcript.Files)
	req.Equal(int32(1), conn.closed.Load())
}

func TestSession_Run_ConnectionRefused(t *testing.T) {
	t.Run("Dial error is reported as connection-refused", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t)
		defer f.ctrl.Finish()

		f.dialer.EXPECT().DialContext(gomock.Any(), "tcp", "127.0.0.1:3999").
			Return(nil, &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED})
		// The index must not be queried: no handshake happened
		f.reporter.EXPECT().OnFailed(domain.ReasonConnectionRefused)

		result := f.session().Run(context.Background(), params)

		req.False(result.Success)
		req.Equal(domain.ReasonConnectionRefused, result.Reason)
		req.ErrorIs(result.Err, errors.ErrConnection)
		req.ErrorIs(result.Err, syscall.ECONNREFUSED)
		req.Zero(result.FilesTotal)
	})

	t.Run("Real refused port", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		req.NoError(err)
		port := listener.Addr().(*net.TCPAddr).Port
		req.NoError(listener.Close())

		log := discardLogger()
		s := New(log, &net.Dialer{Timeout: time.Second},
			media.NewEnumerator(log, mocks.NewMockMediaIndex(ctrl), afero.NewMemMapFs()),
			afero.NewMemMapFs(), nil)

		result := s.Run(context.Background(), domain.ConnectionParams{Host: "127.0.0.1", Port: port, ClientID: "id"})
		req.False(result.Success)
		req.Equal(domain.ReasonConnectionRefused, result.Reason)
	})
}

func TestSession_Run_FileDeletedBeforeRead(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	defer f.ctrl.Finish()

	writeMedia(t, f.fs, "/sdcard/DCIM/gone.jpg", []byte("soon deleted"))
	writeMedia(t, f.fs, "/sdcard/DCIM/next.jpg", []byte("never sent"))

	conn, done := startPeer(4096, lastSync)
	f.dialer.EXPECT().DialContext(gomock.Any(), "tcp", gomock.Any()).Return(conn, nil)
	f.index.EXPECT().Paths(gomock.Any(), domain.Images).
		Return([]string{"/sdcard/DCIM/gone.jpg", "/sdcard/DCIM/next.jpg"}, nil)
	f.index.EXPECT().Paths(gomock.Any(), domain.Video).
		DoAndReturn(func(context.Context, domain.Category) ([]string, error) {
			// Deleted after enumeration, before the read step
			req.NoError(f.fs.Remove("/sdcard/DCIM/gone.jpg"))
			return nil, nil
		})
	f.reporter.EXPECT().OnFailed(domain.ReasonGenericTransferError)

	result := f.session().Run(context.Background(), params)
	peer := waitPeer(t, done)

	req.False(result.Success)
	req.Equal(domain.ReasonGenericTransferError, result.Reason)
	req.ErrorIs(result.Err, errors.ErrTransferIO)
	req.Equal(2, result.FilesTotal)
	req.Zero(result.FilesSent)

	req.Equal([]string{"/sdcard/DCIM/gone.jpg"}, f.fs.opened, "no further files are attempted")
	req.Error(peer.err, "server sees a truncated transcript")
	req.Empty(peer.transcript.Files)
	req.Equal(int32(1), conn.closed.Load())
	req.Zero(f.fs.stillOpen())
}

func TestSession_Run_ProtocolErrors(t *testing.T) {
	tests := []struct {
		name       string
		bufferSize int32
		syncDate   string
	}{
		{"Zero buffer size", 0, lastSync},
		{"Negative buffer size", -4096, lastSync},
		{"Unparsable sync date", 4096, "01/01/2023"},
		{"Empty sync date", 4096, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			f := newFixture(t)
			defer f.ctrl.Finish()

			conn, done := startPeer(tt.bufferSize, tt.syncDate)
			f.dialer.EXPECT().DialContext(gomock.Any(), "tcp", gomock.Any()).Return(conn, nil)
			f.reporter.EXPECT().OnFailed(domain.ReasonGenericTransferError)

			result := f.session().Run(context.Background(), params)
			waitPeer(t, done)

			req.False(result.Success)
			req.Equal(domain.ReasonGenericTransferError, result.Reason)
			req.ErrorIs(result.Err, errors.ErrProtocol)
			req.Equal(int32(1), conn.closed.Load())
		})
	}
}

func TestSession_Run_SocketErrorMidTransfer(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	defer f.ctrl.Finish()

	writeMedia(t, f.fs, "/sdcard/DCIM/big.jpg", make([]byte, 64*1024))

	client, server := net.Pipe()
	conn := &recordingConn{Conn: client}
	go func() {
		r := protocol.NewReader(server)
		w := protocol.NewWriter(server)
		_, _ = r.ReadUTF()
		_ = w.WriteInt32(1024)
		_ = w.WriteUTF(lastSync)
		_, _ = r.ReadInt32()
		// Hang up in the middle of the file
		buf := make([]byte, 100)
		_, _ = io.ReadFull(r, buf)
		_ = server.Close()
	}()

	f.dialer.EXPECT().DialContext(gomock.Any(), "tcp", gomock.Any()).Return(conn, nil)
	f.index.EXPECT().Paths(gomock.Any(), domain.Images).Return([]string{"/sdcard/DCIM/big.jpg"}, nil)
	f.index.EXPECT().Paths(gomock.Any(), domain.Video).Return(nil, nil)
	f.reporter.EXPECT().OnFailed(domain.ReasonGenericTransferError)

	result := f.session().Run(context.Background(), params)

	req.False(result.Success)
	req.Equal(domain.ReasonGenericTransferError, result.Reason)
	req.ErrorIs(result.Err, errors.ErrTransferIO)
	req.Equal(int32(1), conn.closed.Load())
	req.Zero(f.fs.stillOpen())
}

func TestSession_Run_DeclaredLength(t *testing.T) {
	t.Run("Small buffer still yields the right digest", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t)
		defer f.ctrl.Finish()

		content := []byte("chunked in threes, ten")
		writeMedia(t, f.fs, "/sdcard/DCIM/a.jpg", content)

		conn, done := startPeer(3, lastSync)
		f.dialer.EXPECT().DialContext(gomock.Any(), "tcp", gomock.Any()).Return(conn, nil)
		f.index.EXPECT().Paths(gomock.Any(), domain.Images).Return([]string{"/sdcard/DCIM/a.jpg"}, nil)
		f.index.EXPECT().Paths(gomock.Any(), domain.Video).Return(nil, nil)
		f.reporter.EXPECT().OnProgress(1, 1)
		f.reporter.EXPECT().OnCompleted()

		result := f.session().Run(context.Background(), params)
		peer := waitPeer(t, done)

		req.True(result.Success)
		req.NoError(peer.err)
		req.Equal(content, peer.transcript.Files[0].Body)
		req.Equal(md5Hex(content), peer.transcript.Files[0].Digest)
	})

	t.Run("A file that grew is cut at the declared length", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t)
		defer f.ctrl.Finish()

		writeMedia(t, f.fs, "/sdcard/DCIM/live.jpg", []byte("0123456789"))

		conn, done := startPeer(4096, lastSync)
		f.dialer.EXPECT().DialContext(gomock.Any(), "tcp", gomock.Any()).Return(conn, nil)
		f.index.EXPECT().Paths(gomock.Any(), domain.Images).Return([]string{"/sdcard/DCIM/live.jpg"}, nil)
		f.index.EXPECT().Paths(gomock.Any(), domain.Video).
			DoAndReturn(func(context.Context, domain.Category) ([]string, error) {
				req.NoError(afero.WriteFile(f.fs, "/sdcard/DCIM/live.jpg", []byte("0123456789ABCDEF"), 0644))
				return nil, nil
			})
		f.reporter.EXPECT().OnProgress(1, 1)
		f.reporter.EXPECT().OnCompleted()

		result := f.session().Run(context.Background(), params)
		peer := waitPeer(t, done)

		req.True(result.Success)
		req.NoError(peer.err)
		got := peer.transcript.Files[0]
		req.Equal(int64(10), got.Length)
		req.Equal([]byte("0123456789"), got.Body)
		req.Equal(md5Hex([]byte("0123456789")), got.Digest)
	})

	t.Run("A file that shrank fails the session", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t)
		defer f.ctrl.Finish()

		writeMedia(t, f.fs, "/sdcard/DCIM/live.jpg", []byte("0123456789"))

		conn, done := startPeer(4096, lastSync)
		f.dialer.EXPECT().DialContext(gomock.Any(), "tcp", gomock.Any()).Return(conn, nil)
		f.index.EXPECT().Paths(gomock.Any(), domain.Images).Return([]string{"/sdcard/DCIM/live.jpg"}, nil)
		f.index.EXPECT().Paths(gomock.Any(), domain.Video).
			DoAndReturn(func(context.Context, domain.Category) ([]string, error) {
				req.NoError(afero.WriteFile(f.fs, "/sdcard/DCIM/live.jpg", []byte("0123"), 0644))
				return nil, nil
			})
		f.reporter.EXPECT().OnFailed(domain.ReasonGenericTransferError)

		result := f.session().Run(context.Background(), params)
		waitPeer(t, done)

		req.False(result.Success)
		req.ErrorIs(result.Err, errors.ErrTransferIO)
		req.ErrorContains(result.Err, "file shrank")
		req.Zero(f.fs.stillOpen())
	})
}

func TestSession_Run_InvalidParams(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	defer f.ctrl.Finish()

	f.reporter.EXPECT().OnFailed(domain.ReasonGenericTransferError)

	result := f.session().Run(context.Background(), domain.ConnectionParams{Host: "10.0.0.2", Port: 0, ClientID: "id"})
	req.False(result.Success)
	req.ErrorIs(result.Err, errors.ErrInvalidParams)
}

func TestSession_Run_IOTimeout(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	defer f.ctrl.Finish()

	client, server := net.Pipe()
	conn := &recordingConn{Conn: client}
	go func() {
		defer server.Close()
		// Read the client id and never answer
		_, _ = protocol.NewReader(server).ReadUTF()
		_, _ = io.Copy(io.Discard, server)
	}()

	f.dialer.EXPECT().DialContext(gomock.Any(), "tcp", gomock.Any()).Return(conn, nil)
	f.reporter.EXPECT().OnFailed(domain.ReasonGenericTransferError)

	result := f.session(WithIOTimeout(50 * time.Millisecond)).Run(context.Background(), params)

	req.False(result.Success)
	req.ErrorIs(result.Err, errors.ErrTransferIO)
	req.Equal(int32(1), conn.closed.Load())
}

type panickingReporter struct{}

func (panickingReporter) OnProgress(int, int)           { panic("notification channel gone") }
func (panickingReporter) OnCompleted()                  { panic("notification channel gone") }
func (panickingReporter) OnFailed(domain.FailureReason) { panic("notification channel gone") }

func TestSession_Run_ReporterFailureNeverAborts(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fs := afero.NewMemMapFs()
	writeMedia(t, fs, "/sdcard/DCIM/a.jpg", []byte("a"))
	writeMedia(t, fs, "/sdcard/DCIM/b.jpg", []byte("b"))

	index := mocks.NewMockMediaIndex(ctrl)
	index.EXPECT().Paths(gomock.Any(), domain.Images).Return([]string{"/sdcard/DCIM/a.jpg", "/sdcard/DCIM/b.jpg"}, nil)
	index.EXPECT().Paths(gomock.Any(), domain.Video).Return(nil, nil)

	conn, done := startPeer(4096, lastSync)
	dialer := mocks.NewMockDialer(ctrl)
	dialer.EXPECT().DialContext(gomock.Any(), "tcp", gomock.Any()).Return(conn, nil)

	log := discardLogger()
	s := New(log, dialer, media.NewEnumerator(log, index, fs), fs, panickingReporter{})

	result := s.Run(context.Background(), params)
	peer := waitPeer(t, done)

	req.True(result.Success)
	req.NoError(peer.err)
	req.Len(peer.transcript.Files, 2)
}

func TestSession_Start_DeliversResultOnChannel(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	defer f.ctrl.Finish()

	conn, done := startPeer(4096, lastSync)
	f.dialer.EXPECT().DialContext(gomock.Any(), "tcp", gomock.Any()).Return(conn, nil)
	f.index.EXPECT().Paths(gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)
	f.reporter.EXPECT().OnCompleted()

	results := f.session().Start(context.Background(), params)

	select {
	case result := <-results:
		req.True(result.Success)
	case <-time.After(5 * time.Second):
		t.Fatal("no result delivered")
	}
	_, open := <-results
	req.False(open, "result channel is closed after delivery")
	req.NoError(waitPeer(t, done).err)
}

func TestReasonFor(t *testing.T) {
	req := require.New(t)
	req.Equal(domain.ReasonNone, ReasonFor(nil))
	req.Equal(domain.ReasonConnectionRefused, ReasonFor(fmt.Errorf("x: %w", errors.ErrConnection)))
	req.Equal(domain.ReasonGenericTransferError, ReasonFor(fmt.Errorf("x: %w", errors.ErrProtocol)))
	req.Equal(domain.ReasonGenericTransferError, ReasonFor(fmt.Errorf("x: %w", errors.ErrTransferIO)))
	req.Equal(domain.ReasonGenericTransferError, ReasonFor(io.EOF))
}

func TestSession_Run_HugeBufferSizeStaysBounded(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	defer f.ctrl.Finish()

	writeMedia(t, f.fs, "/sdcard/DCIM/a.jpg", []byte("bounded"))

	conn, done := startPeer(math.MaxInt32, lastSync)
	f.dialer.EXPECT().DialContext(gomock.Any(), "tcp", gomock.Any()).Return(conn, nil)
	f.index.EXPECT().Paths(gomock.Any(), domain.Images).Return([]string{"/sdcard/DCIM/a.jpg"}, nil)
	f.index.EXPECT().Paths(gomock.Any(), domain.Video).Return(nil, nil)
	f.reporter.EXPECT().OnProgress(1, 1)
	f.reporter.EXPECT().OnCompleted()

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	result := f.session().Run(context.Background(), params)
	runtime.ReadMemStats(&after)
	peer := waitPeer(t, done)

	req.True(result.Success)
	req.NoError(peer.err)
	req.Equal([]byte("bounded"), peer.transcript.Files[0].Body)
	// Write and read buffers are both capped at maxChunkSize
	req.Less(after.TotalAlloc-before.TotalAlloc, uint64(4*maxChunkSize))
}

// failingCloseConn reports an error on Close after a complete transcript.
type failingCloseConn struct {
	*recordingConn
}

func (c failingCloseConn) Close() error {
	_ = c.recordingConn.Close()
	return fmt.Errorf("close: connection reset by peer")
}

func TestSession_Run_CloseErrorAfterCompleteTranscript(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	defer f.ctrl.Finish()

	writeMedia(t, f.fs, "/sdcard/DCIM/a.jpg", []byte("abc"))

	conn, done := startPeer(4096, lastSync)
	f.dialer.EXPECT().DialContext(gomock.Any(), "tcp", gomock.Any()).Return(failingCloseConn{conn}, nil)
	f.index.EXPECT().Paths(gomock.Any(), domain.Images).Return([]string{"/sdcard/DCIM/a.jpg"}, nil)
	f.index.EXPECT().Paths(gomock.Any(), domain.Video).Return(nil, nil)
	f.reporter.EXPECT().OnProgress(1, 1)
	f.reporter.EXPECT().OnCompleted()

	result := f.session().Run(context.Background(), params)
	peer := waitPeer(t, done)

	req.True(result.Success)
	req.NoError(result.Err)
	req.NoError(peer.err)
	req.Equal(int32(1), conn.closed.Load())
}
