package bitio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/uio/errs"
)

// Reader extracts bit fields from an io.ByteReader.
//
// The low bitCount bits of bitBuf are valid; higher bits are stale.
type Reader struct {
	src      io.ByteReader
	bitBuf   uint32
	bitCount int
	position int64
}

// NewReader creates a Reader over src.
func NewReader(src io.ByteReader) *Reader {
	return &Reader{src: src}
}

// NewBytesReader creates a seekable Reader over b.
func NewBytesReader(b []byte) *Reader {
	return NewReader(bytes.NewReader(b))
}

// Reset discards buffered bits and switches to src.
func (r *Reader) Reset(src io.ByteReader) {
	r.src = src
	r.bitBuf = 0
	r.bitCount = 0
	r.position = 0
}

// ValidBits returns the number of buffered, unconsumed bits.
func (r *Reader) ValidBits() int {
	return r.bitCount
}

// Position returns the number of bytes pulled from the source.
func (r *Reader) Position() int64 {
	return r.position
}

// BitPosition returns the number of bits consumed so far.
func (r *Reader) BitPosition() int64 {
	return r.position*8 - int64(r.bitCount)
}

// PeekBits returns the next n bits without consuming them.
//
// When the source ends while fewer than n bits are buffered, the buffered
// bits are returned in the high part of the n-bit field with the missing
// low bits set to zero. The bits keep the place a complete field would give
// them; they are not right-aligned as a k-bit number. Callers that want the
// leftover bits as a number shift the result right by n-k, where k is
// ValidBits() after the peek. errs.ErrEndOfSource is returned only when no
// bit is left. Panics if n is outside [0, MaxBits].
func (r *Reader) PeekBits(n int) (uint32, error) {
	checkBits(n)
	if n == 0 {
		return 0, nil
	}

	for r.bitCount < n {
		b, err := r.src.ReadByte()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return 0, err
			}
			if r.bitCount == 0 {
				return 0, errs.ErrEndOfSource
			}

			return (r.bitBuf & Mask[r.bitCount]) << (n - r.bitCount), nil
		}

		r.bitBuf = r.bitBuf<<8 | uint32(b)
		r.bitCount += 8
		r.position++
	}

	return (r.bitBuf >> (r.bitCount - n)) & Mask[n], nil
}

// Get returns the next n bits and consumes them. At the end of the source
// it consumes whatever was left; see PeekBits.
func (r *Reader) Get(n int) (uint32, error) {
	v, err := r.PeekBits(n)
	if err != nil {
		return 0, err
	}
	r.Drop(n)

	return v, nil
}

// Drop discards up to n buffered bits.
func (r *Reader) Drop(n int) {
	r.bitCount -= min(max(n, 0), r.bitCount)
}

// PushBack puts the low n bits of v back in front of the buffered bits, so
// the next read returns them first. Panics if the accumulator cannot hold
// them.
func (r *Reader) PushBack(n int, v uint32) {
	if n <= 0 {
		return
	}
	if n > 31-r.bitCount {
		panic(fmt.Sprintf("bitio: cannot push back %d bits with %d buffered", n, r.bitCount))
	}

	r.bitBuf = (v&Mask[n])<<r.bitCount | r.bitBuf&Mask[r.bitCount]
	r.bitCount += n
}

// SkipToByteBoundary drops the bits left over from a partially consumed byte.
func (r *Reader) SkipToByteBoundary() {
	r.Drop(r.bitCount % 8)
}

// SeekBit moves to byte pos of the source and skips bitOffset bits of it.
// The source must implement io.Seeker.
func (r *Reader) SeekBit(pos int64, bitOffset int) error {
	s, ok := r.src.(io.Seeker)
	if !ok {
		return fmt.Errorf("%w: source %T is not seekable", errs.ErrUnsupported, r.src)
	}
	if bitOffset < 0 || bitOffset > 7 {
		return fmt.Errorf("%w: bit offset %d", errs.ErrIllegalArgument, bitOffset)
	}
	if _, err := s.Seek(pos, io.SeekStart); err != nil {
		return err
	}

	r.bitBuf = 0
	r.bitCount = 0
	r.position = pos
	if bitOffset > 0 {
		if _, err := r.Get(bitOffset); err != nil {
			return err
		}
	}

	return nil
}
