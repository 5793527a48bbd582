// Package media selects the local files that qualify for a sync session.
package media

import (
	"context"
	"fmt"
	"homecloud/contract"
	"homecloud/domain"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/afero"
)

// Enumerator asks the media index for a category's paths and keeps the files
// whose current modification time is strictly after the cutoff.
type Enumerator struct {
	log   *slog.Logger
	index contract.MediaIndex
	fs    afero.Fs
}

func NewEnumerator(log *slog.Logger, index contract.MediaIndex, fs afero.Fs) *Enumerator {
	return &Enumerator{
		log:   log,
		index: index,
		fs:    fs,
	}
}

// ListNewerThan keeps the index order and never sorts. Entries that cannot be
// stat'ed (deleted since indexing) are skipped, as are directories.
// A path listed twice by the index is returned once.
func (e *Enumerator) ListNewerThan(ctx context.Context, since time.Time, category domain.Category) ([]domain.CandidateFile, error) {
	paths, err := e.index.Paths(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("querying %s index: %w", category, err)
	}

	files := make([]domain.CandidateFile, 0, len(paths))
	for _, path := range lo.Uniq(paths) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := e.fs.Stat(path)
		if err != nil {
			e.log.Debug("Indexed media no longer readable", "path", path, "error", err)
			continue
		}
		if info.IsDir() || !info.ModTime().After(since) {
			continue
		}
		files = append(files, domain.CandidateFile{
			AbsolutePath: path,
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
	}

	e.log.Debug("Media enumerated",
		"category", category.String(),
		"indexed", len(paths),
		"qualifying", len(files),
		"since", since)
	return files, nil
}

// BuildManifest concatenates each category's files in domain.Categories order.
// No de-duplication happens across categories.
func BuildManifest(ctx context.Context, enumerator contract.Enumerator, since time.Time) (domain.Manifest, error) {
	var manifest domain.Manifest
	for _, category := range domain.Categories() {
		files, err := enumerator.ListNewerThan(ctx, since, category)
		if err != nil {
			return nil, err
		}
		manifest = append(manifest, files...)
	}
	return manifest, nil
}
