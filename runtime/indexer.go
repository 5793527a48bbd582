package runtime

import (
	"context"
	"fmt"
	"homecloud/contract"
	"homecloud/domain"
	"homecloud/infrastructure/storage"
	"homecloud/runtime/workers"
	"log/slog"
	"sync"

	"github.com/spf13/afero"
)

type IndexerConfig struct {
	Root                      string
	ScannerWorkerNb           int
	BufferSize                int
	BackpressureLowThreshold  int
	BackpressureHardThreshold int
}

// Indexer rebuilds the media index with one full pass over the media root.
// It stands in for the platform media store the sessions enumerate from.
type Indexer struct {
	mu   sync.Mutex
	log  *slog.Logger
	fs   afero.Fs
	repo storage.IMediaIndexRepository
	cfg  IndexerConfig
}

var _ contract.IndexRefresher = (*Indexer)(nil)

func NewIndexer(log *slog.Logger, fs afero.Fs, repo storage.IMediaIndexRepository, cfg IndexerConfig) *Indexer {
	if cfg.ScannerWorkerNb < 1 {
		cfg.ScannerWorkerNb = 1
	}
	if cfg.BufferSize < 1 {
		cfg.BufferSize = 1
	}
	return &Indexer{log: log, fs: fs, repo: repo, cfg: cfg}
}

// Refresh runs the scanner workers and one indexer worker under a dedicated
// supervisor and returns once the whole tree has been walked.
func (i *Indexer) Refresh(ctx context.Context) (domain.ScanStats, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return domain.ScanStats{}, fmt.Errorf("media scan interrupted: %w", err)
	}
	info, err := i.fs.Stat(i.cfg.Root)
	if err != nil {
		return domain.ScanStats{}, fmt.Errorf("media root %s: %w", i.cfg.Root, err)
	}
	if !info.IsDir() {
		return domain.ScanStats{}, fmt.Errorf("media root %s is not a directory", i.cfg.Root)
	}

	counter := domain.NewScanCounter()
	dirChan := make(chan string, i.cfg.BufferSize)
	entryChan := make(chan *domain.MediaEntry, i.cfg.BufferSize)

	var scanWG sync.WaitGroup
	var workersWG sync.WaitGroup
	scanWG.Add(1)
	dirChan <- i.cfg.Root

	supervisor := workers.NewSupervisor(i.log)
	for n := 0; n < i.cfg.ScannerWorkerNb; n++ {
		workersWG.Add(1)
		supervisor.Add(workers.NewMediaScannerWorker(
			i.log, i.fs, counter,
			dirChan, entryChan,
			&scanWG, &workersWG,
			i.cfg.BackpressureLowThreshold,
			i.cfg.BackpressureHardThreshold,
		))
	}
	supervisor.Add(workers.NewMediaIndexerWorker(i.log, i.repo, counter, entryChan))

	go func() {
		// No directory left to walk
		scanWG.Wait()
		close(dirChan)
		// Every scanner is gone, nobody writes entries anymore
		workersWG.Wait()
		close(entryChan)
	}()

	i.log.Debug("Media scan started", "root", i.cfg.Root, "workers", i.cfg.ScannerWorkerNb)
	supervisor.Run(ctx)

	stats := counter.Snapshot()
	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("media scan interrupted: %w", err)
	}
	i.log.Info("Media scan done",
		"indexed", stats.FilesIndexed,
		"unchanged", stats.Unchanged,
		"dirs", stats.DirsScanned,
		"bytes", stats.Bytes,
		"errors", stats.Errors,
		"skipped", stats.Skipped)
	return stats, nil
}
