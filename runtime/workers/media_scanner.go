package workers

import (
	"context"
	"homecloud/domain"
	"homecloud/domain/mimetypes"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
)

// MediaScannerWorker walks the media root in parallel with its siblings.
// Subdirectories go back into the shared dirChan; image and video files
// are sniffed and pushed as index entries on entryChan.
type MediaScannerWorker struct {
	log     *slog.Logger
	fs      afero.Fs
	counter *domain.ScanCounter
	// dirChan is shared by all scanner workers of one refresh.
	dirChan   chan string
	entryChan chan *domain.MediaEntry
	scanWG    *sync.WaitGroup
	workersWG *sync.WaitGroup
	// Percentages of entryChan capacity above which the scan slows down.
	backpressureLowThreshold  int
	backpressureHardThreshold int
}

func NewMediaScannerWorker(
	log *slog.Logger,
	fs afero.Fs,
	counter *domain.ScanCounter,
	dirChan chan string,
	entryChan chan *domain.MediaEntry,
	scanWG *sync.WaitGroup,
	workersWG *sync.WaitGroup,
	backpressureLowThreshold int,
	backpressureHardThreshold int,
) *MediaScannerWorker {
	return &MediaScannerWorker{
		log:                       log,
		fs:                        fs,
		counter:                   counter,
		dirChan:                   dirChan,
		entryChan:                 entryChan,
		scanWG:                    scanWG,
		workersWG:                 workersWG,
		backpressureLowThreshold:  backpressureLowThreshold,
		backpressureHardThreshold: backpressureHardThreshold,
	}
}

// Run consumes directories until dirChan is closed or ctx is done.
// workersWG is released only on those two exits so a restarted worker
// keeps the accounting straight.
func (w *MediaScannerWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.workersWG.Done()
			return ctx.Err()
		case dir, ok := <-w.dirChan:
			if !ok {
				w.workersWG.Done()
				return nil
			}
			if err := w.throttle(ctx); err != nil {
				w.scanWG.Done()
				w.workersWG.Done()
				return err
			}
			w.handleDirectory(ctx, dir)
		}
	}
}

// throttle pauses when the indexer falls behind.
func (w *MediaScannerWorker) throttle(ctx context.Context) error {
	usage := len(w.entryChan)
	softLimit := backpressureLimit(cap(w.entryChan), w.backpressureLowThreshold)
	hardLimit := backpressureLimit(cap(w.entryChan), w.backpressureHardThreshold)

	var pause time.Duration
	switch {
	case usage > hardLimit:
		pause = 200 * time.Millisecond
	case usage > softLimit:
		pause = 20 * time.Millisecond
	}

	if pause > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pause):
		}
	}
	return nil
}

func backpressureLimit(capacity, percent int) int {
	return int(float64(capacity) * float64(percent) / 100.0)
}

func (w *MediaScannerWorker) handleDirectory(ctx context.Context, dir string) {
	defer w.scanWG.Done()

	infos, err := afero.ReadDir(w.fs, dir)
	if err != nil {
		w.counter.IncrErrorCount()
		w.log.Debug("Unreadable directory", "path", dir, "error", err)
		return
	}
	w.counter.IncrDirsScanned()

	for _, info := range infos {
		if ctx.Err() != nil {
			return
		}
		if info.Mode()&os.ModeSymlink != 0 {
			w.counter.IncrSkippedItems()
			continue
		}
		path := filepath.Join(dir, info.Name())
		if info.IsDir() {
			w.enqueueDirectory(ctx, path)
			continue
		}
		if !info.Mode().IsRegular() {
			w.counter.IncrSkippedItems()
			continue
		}
		w.processFile(ctx, path, info)
	}
}

// enqueueDirectory never blocks the caller on a full dirChan: every worker
// could otherwise be stuck pushing while nobody reads.
func (w *MediaScannerWorker) enqueueDirectory(ctx context.Context, path string) {
	w.scanWG.Add(1)
	select {
	case w.dirChan <- path:
		return
	default:
	}
	go func() {
		select {
		case <-ctx.Done():
			w.scanWG.Done()
		case w.dirChan <- path:
		}
	}()
}

// processFile sniffs the magic bytes and keeps only image and video files.
func (w *MediaScannerWorker) processFile(ctx context.Context, path string, info os.FileInfo) {
	f, err := w.fs.Open(path)
	if err != nil {
		w.counter.IncrErrorCount()
		w.log.Debug("Unreadable file", "path", path, "error", err)
		return
	}
	detected, err := mimetype.DetectReader(f)
	f.Close()
	if err != nil {
		w.counter.IncrErrorCount()
		w.log.Debug("MIME detection failed", "path", path, "error", err)
		return
	}

	category, ok := mimetypes.CategoryOf(detected.String())
	if !ok {
		w.counter.IncrSkippedItems()
		return
	}

	entry := &domain.MediaEntry{
		Path:      path,
		Category:  category,
		MimeType:  detected.String(),
		Size:      uint64(info.Size()),
		IndexedAt: time.Now(),
	}

	select {
	case <-ctx.Done():
	case w.entryChan <- entry:
		w.counter.IncrBytes(entry.Size)
	}
}
