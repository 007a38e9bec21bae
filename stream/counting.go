package stream

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/arloliu/uio/errs"
)

// CountingReader counts the bytes read from an io.Reader and lets callers
// push bytes back in front of the stream.
//
// Count goes down by the number of bytes unread, so it always reports the
// position of the next byte Read would return.
type CountingReader struct {
	r        io.Reader
	pushback []byte // read from the end
	count    int64
}

var (
	_ io.Reader     = (*CountingReader)(nil)
	_ io.ByteReader = (*CountingReader)(nil)
)

// NewCountingReader wraps r with a count of 0.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{r: r}
}

// NewCountingReaderAt wraps r and starts counting from start, for readers
// that are already positioned inside a larger stream.
func NewCountingReaderAt(r io.Reader, start int64) *CountingReader {
	return &CountingReader{r: r, count: start}
}

// Count returns the number of bytes consumed.
func (c *CountingReader) Count() int64 {
	return c.count
}

func (c *CountingReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	n := 0
	for n < len(p) && len(c.pushback) > 0 {
		last := len(c.pushback) - 1
		p[n] = c.pushback[last]
		c.pushback = c.pushback[:last]
		n++
	}
	if n > 0 {
		c.count += int64(n)
		return n, nil
	}

	n, err := c.r.Read(p)
	c.count += int64(n)

	return n, err
}

func (c *CountingReader) ReadByte() (byte, error) {
	if last := len(c.pushback) - 1; last >= 0 {
		b := c.pushback[last]
		c.pushback = c.pushback[:last]
		c.count++

		return b, nil
	}

	if br, ok := c.r.(io.ByteReader); ok {
		b, err := br.ReadByte()
		if err == nil {
			c.count++
		}

		return b, err
	}

	var one [1]byte
	if _, err := io.ReadFull(c.r, one[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			err = io.EOF
		}

		return 0, err
	}
	c.count++

	return one[0], nil
}

// Unread pushes p back so that the next reads return p in order.
// It fails when more bytes would be unread than were counted.
func (c *CountingReader) Unread(p []byte) error {
	if int64(len(p)) > c.count {
		return fmt.Errorf("%w: unread %d bytes at position %d", errs.ErrIllegalArgument, len(p), c.count)
	}

	for i := len(p) - 1; i >= 0; i-- {
		c.pushback = append(c.pushback, p[i])
	}
	c.count -= int64(len(p))

	return nil
}

// Skip discards up to n bytes and returns the number discarded.
// Reaching the end of the stream is not an error.
func (c *CountingReader) Skip(n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}

	skipped, err := io.CopyN(io.Discard, c, n)
	if errors.Is(err, io.EOF) {
		err = nil
	}

	return skipped, err
}

// Available returns the number of pushed-back bytes plus the estimate of
// the wrapped reader, if it offers one.
func (c *CountingReader) Available() int {
	n := len(c.pushback)
	if a, ok := c.r.(availabler); ok {
		n += max(a.Available(), 0)
	}

	return min(n, math.MaxInt32)
}
