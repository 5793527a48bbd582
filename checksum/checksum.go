// Package checksum computes the per-file MD5 digest sent after each file body.
package checksum

import (
	"crypto/md5"
	"encoding/hex"
	"hash"
	"homecloud/errors"
	"strings"
)

const Size = md5.Size

// Digest is the 16-byte MD5 of one file's contents.
type Digest [Size]byte

// String renders the digest as 32 uppercase hex characters.
func (d Digest) String() string {
	return strings.ToUpper(hex.EncodeToString(d[:]))
}

// Sum hashes b in one shot.
func Sum(b []byte) Digest {
	return md5.Sum(b)
}

// Accumulator hashes a file incrementally, chunk by chunk.
// A fresh Accumulator must be used per file.
type Accumulator struct {
	h        hash.Hash
	finished bool
}

func New() *Accumulator {
	return &Accumulator{h: md5.New()}
}

// Update feeds a chunk. Chunks fed after Finish are ignored.
func (a *Accumulator) Update(p []byte) {
	if a.finished {
		return
	}
	// hash.Hash.Write never returns an error
	_, _ = a.h.Write(p)
}

// Write lets the accumulator sit behind an io.MultiWriter or io.TeeReader.
func (a *Accumulator) Write(p []byte) (int, error) {
	if a.finished {
		return 0, errors.ErrDigestConsumed
	}
	a.Update(p)
	return len(p), nil
}

// Finish returns the digest. It can be consumed exactly once.
func (a *Accumulator) Finish() (Digest, error) {
	var d Digest
	if a.finished {
		return d, errors.ErrDigestConsumed
	}
	a.finished = true
	copy(d[:], a.h.Sum(nil))
	return d, nil
}
