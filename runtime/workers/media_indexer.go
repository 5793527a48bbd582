package workers

import (
	"context"
	"homecloud/domain"
	"homecloud/infrastructure/storage"
	"log/slog"
)

// MediaIndexerWorker drains scan results into the media index.
// Entries whose size and MIME type did not change are left alone.
type MediaIndexerWorker struct {
	log       *slog.Logger
	repo      storage.IMediaIndexRepository
	counter   *domain.ScanCounter
	entryChan chan *domain.MediaEntry
}

func NewMediaIndexerWorker(
	log *slog.Logger,
	repo storage.IMediaIndexRepository,
	counter *domain.ScanCounter,
	entryChan chan *domain.MediaEntry,
) *MediaIndexerWorker {
	return &MediaIndexerWorker{
		log:       log,
		repo:      repo,
		counter:   counter,
		entryChan: entryChan,
	}
}

func (w *MediaIndexerWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case entry, ok := <-w.entryChan:
			if !ok {
				w.log.Debug("Scan results channel closed")
				return nil
			}
			w.index(entry)
		}
	}
}

func (w *MediaIndexerWorker) index(entry *domain.MediaEntry) {
	existing, found, err := w.repo.Lookup(entry.Category, entry.Path)
	if err != nil {
		w.counter.IncrErrorCount()
		w.log.Warn("Media index lookup failed", "path", entry.Path, "error", err)
		return
	}
	if found && existing.Size == entry.Size && existing.MimeType == entry.MimeType {
		w.counter.IncrUnchanged()
		return
	}
	if err := w.repo.Upsert(*entry); err != nil {
		w.counter.IncrErrorCount()
		w.log.Warn("Media index upsert failed", "path", entry.Path, "error", err)
		return
	}
	w.counter.IncrFilesIndexed()
	w.log.Debug("Media indexed", "path", entry.Path, "category", entry.Category.String(), "mime_type", entry.MimeType)
}
