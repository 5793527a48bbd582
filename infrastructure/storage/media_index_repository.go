//go:generate go run go.uber.org/mock/mockgen -source=media_index_repository.go -destination=../../mocks/mock_media_index_repository.go -package=mocks
package storage

import (
	"context"
	stdErrors "errors"
	"fmt"
	"homecloud/domain"
	"homecloud/errors"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-playground/validator/v10"
	"google.golang.org/protobuf/encoding/protowire"
)

const mediaKeyPrefix = "media:"

// Field numbers of the encoded MediaEntry value.
const (
	fieldPath      protowire.Number = 1
	fieldCategory  protowire.Number = 2
	fieldMimeType  protowire.Number = 3
	fieldSize      protowire.Number = 4
	fieldIndexedAt protowire.Number = 5
)

type IMediaIndexRepository interface {
	Upsert(entry domain.MediaEntry) error
	Lookup(category domain.Category, path string) (domain.MediaEntry, bool, error)
	Paths(ctx context.Context, category domain.Category) ([]string, error)
	Count(category domain.Category) (int, error)
}

// MediaIndexRepository keeps one Badger key per (category, path).
// Iteration follows Badger key order, which is the order the enumerator sees.
type MediaIndexRepository struct {
	db        *badger.DB
	log       *slog.Logger
	validator *validator.Validate
}

func NewMediaIndexRepository(db *badger.DB, log *slog.Logger) *MediaIndexRepository {
	return &MediaIndexRepository{
		db:        db,
		log:       log,
		validator: validator.New(),
	}
}

func categoryPrefix(category domain.Category) []byte {
	return []byte(fmt.Sprintf("%s%s:", mediaKeyPrefix, category))
}

func mediaKey(category domain.Category, path string) []byte {
	return append(categoryPrefix(category), path...)
}

// Upsert stores or refreshes an index entry.
func (r MediaIndexRepository) Upsert(entry domain.MediaEntry) error {
	if err := r.validator.Struct(entry); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidEntry, err)
	}
	data := encodeMediaEntry(entry)
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(mediaKey(entry.Category, entry.Path), data)
	})
}

// Lookup returns the stored entry for path, if any.
func (r MediaIndexRepository) Lookup(category domain.Category, path string) (domain.MediaEntry, bool, error) {
	var entry domain.MediaEntry
	found := false
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(mediaKey(category, path))
		if stdErrors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			decoded, err := decodeMediaEntry(v)
			if err != nil {
				return fmt.Errorf("failed to decode media entry: %w", err)
			}
			entry, found = decoded, true
			return nil
		})
	})
	return entry, found, err
}

// Paths returns every indexed path of a category in key order.
func (r MediaIndexRepository) Paths(ctx context.Context, category domain.Category) ([]string, error) {
	var paths []string
	prefix := categoryPrefix(category)

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // keys carry the path
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := string(it.Item().Key())
			paths = append(paths, strings.TrimPrefix(key, string(prefix)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error during media index scan: %w", err)
	}

	r.log.Debug("Media index read", "category", category.String(), "entries", len(paths))
	return paths, nil
}

// Entries decodes every entry of a category in key order.
func (r MediaIndexRepository) Entries(category domain.Category) ([]domain.MediaEntry, error) {
	var entries []domain.MediaEntry
	prefix := categoryPrefix(category)

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(v []byte) error {
				entry, err := decodeMediaEntry(v)
				if err != nil {
					return err
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to decode %s: %w", it.Item().Key(), err)
			}
		}
		return nil
	})
	return entries, err
}

func (r MediaIndexRepository) Count(category domain.Category) (int, error) {
	paths, err := r.Paths(context.Background(), category)
	if err != nil {
		return 0, err
	}
	return len(paths), nil
}

func encodeMediaEntry(e domain.MediaEntry) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldPath, protowire.BytesType)
	b = protowire.AppendString(b, e.Path)
	b = protowire.AppendTag(b, fieldCategory, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(e.Category))
	b = protowire.AppendTag(b, fieldMimeType, protowire.BytesType)
	b = protowire.AppendString(b, e.MimeType)
	b = protowire.AppendTag(b, fieldSize, protowire.VarintType)
	b = protowire.AppendVarint(b, e.Size)
	b = protowire.AppendTag(b, fieldIndexedAt, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(e.IndexedAt.UnixNano()))
	return b
}

func decodeMediaEntry(b []byte) (domain.MediaEntry, error) {
	var e domain.MediaEntry
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return e, protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case num == fieldPath && typ == protowire.BytesType:
			e.Path, n = protowire.ConsumeString(b)
		case num == fieldMimeType && typ == protowire.BytesType:
			e.MimeType, n = protowire.ConsumeString(b)
		case num == fieldCategory && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			e.Category = domain.Category(v)
		case num == fieldSize && typ == protowire.VarintType:
			e.Size, n = protowire.ConsumeVarint(b)
		case num == fieldIndexedAt && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			e.IndexedAt = time.Unix(0, int64(v))
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return e, protowire.ParseError(n)
		}
		b = b[n:]
	}
	return e, nil
}
