// Package hash wraps xxHash64 for checksumming byte regions.
package hash

import (
	"io"

	"github.com/cespare/xxhash/v2"
)

// Sum64 computes the xxHash64 of data.
func Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Digest accumulates an xxHash64 over a sequence of writes.
type Digest struct {
	d *xxhash.Digest
	n int64
}

// NewDigest returns an empty Digest.
func NewDigest() *Digest {
	return &Digest{d: xxhash.New()}
}

// Write adds p to the running hash. It never fails.
func (d *Digest) Write(p []byte) (int, error) {
	n, _ := d.d.Write(p)
	d.n += int64(n)

	return n, nil
}

// Sum64 returns the hash of everything written so far.
func (d *Digest) Sum64() uint64 {
	return d.d.Sum64()
}

// Len returns the number of bytes hashed.
func (d *Digest) Len() int64 {
	return d.n
}

// Reset clears the digest.
func (d *Digest) Reset() {
	d.d.Reset()
	d.n = 0
}

// Consume hashes r until io.EOF, using buf as the copy chunk.
func (d *Digest) Consume(r io.Reader, buf []byte) (int64, error) {
	return io.CopyBuffer(struct{ io.Writer }{d}, r, buf)
}
