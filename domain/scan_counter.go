package domain

import "sync/atomic"

// ScanCounter is shared by every scanner and indexer worker of one refresh.
type ScanCounter struct {
	FilesIndexed uint64
	Unchanged    uint64
	DirsScanned  uint64
	Bytes        uint64
	ErrorCount   uint64
	SkippedItems uint64
}

func NewScanCounter() *ScanCounter {
	return &ScanCounter{}
}

func (c *ScanCounter) IncrFilesIndexed() {
	atomic.AddUint64(&c.FilesIndexed, 1)
}

func (c *ScanCounter) IncrUnchanged() {
	atomic.AddUint64(&c.Unchanged, 1)
}

func (c *ScanCounter) IncrDirsScanned() {
	atomic.AddUint64(&c.DirsScanned, 1)
}

func (c *ScanCounter) IncrBytes(size uint64) {
	atomic.AddUint64(&c.Bytes, size)
}

func (c *ScanCounter) IncrErrorCount() {
	atomic.AddUint64(&c.ErrorCount, 1)
}

func (c *ScanCounter) IncrSkippedItems() {
	atomic.AddUint64(&c.SkippedItems, 1)
}

// Snapshot reads every counter atomically, one at a time.
func (c *ScanCounter) Snapshot() ScanStats {
	return ScanStats{
		FilesIndexed: atomic.LoadUint64(&c.FilesIndexed),
		Unchanged:    atomic.LoadUint64(&c.Unchanged),
		DirsScanned:  atomic.LoadUint64(&c.DirsScanned),
		Bytes:        atomic.LoadUint64(&c.Bytes),
		Errors:       atomic.LoadUint64(&c.ErrorCount),
		Skipped:      atomic.LoadUint64(&c.SkippedItems),
	}
}
