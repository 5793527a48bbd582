package domain

import (
	"path/filepath"
	"time"
)

type Category int

const (
	Images Category = iota + 1
	Video
)

// Categories returns the fixed order in which categories enter a manifest.
func Categories() []Category {
	return []Category{Images, Video}
}

func (c Category) String() string {
	switch c {
	case Images:
		return "images"
	case Video:
		return "video"
	default:
		return "unknown"
	}
}

// CandidateFile is a local media file eligible for transmission.
// Size and LastModified are captured at enumeration time.
type CandidateFile struct {
	AbsolutePath string
	Size         int64
	LastModified time.Time
}

// Name is the base name sent on the wire.
func (f CandidateFile) Name() string {
	return filepath.Base(f.AbsolutePath)
}

// Manifest is the ordered list of files selected for one session.
type Manifest []CandidateFile

// MediaEntry is one row of the local media index.
type MediaEntry struct {
	Path      string `validate:"required,max=4096"`
	Category  Category
	MimeType  string
	Size      uint64
	IndexedAt time.Time
}
