package stream

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/spf13/afero"

	"github.com/arloliu/uio/errs"
)

// OpenFunc opens a fresh reader positioned at the start of the source.
type OpenFunc func() (io.ReadCloser, error)

// ReopenableReader is a forward-only source that can move backwards by
// reopening itself and skipping forward again.
//
// Seeking ahead of the current position discards bytes; seeking behind it
// closes the current reader, opens a new one and skips to the target.
type ReopenableReader struct {
	open    OpenFunc
	in      io.ReadCloser
	length  int64
	count   int64
	reopens int
	closed  bool
}

var _ io.ReadSeekCloser = (*ReopenableReader)(nil)

// NewReopenableReader opens the source once. length is the total size of
// the source and is used by Available and io.SeekEnd.
func NewReopenableReader(open OpenFunc, length int64) (*ReopenableReader, error) {
	if open == nil {
		return nil, fmt.Errorf("%w: nil open function", errs.ErrIllegalArgument)
	}
	if length < 0 {
		return nil, fmt.Errorf("%w: negative length %d", errs.ErrIllegalArgument, length)
	}

	in, err := open()
	if err != nil {
		return nil, err
	}

	return &ReopenableReader{open: open, in: in, length: length}, nil
}

// OpenFile creates a ReopenableReader over a file of fs.
func OpenFile(fs afero.Fs, name string) (*ReopenableReader, error) {
	info, err := fs.Stat(name)
	if err != nil {
		return nil, err
	}

	return NewReopenableReader(func() (io.ReadCloser, error) {
		return fs.Open(name)
	}, info.Size())
}

// Reopen closes the current reader and opens the source again at position 0.
func (r *ReopenableReader) Reopen() error {
	if r.closed {
		return errs.ErrClosed
	}

	closeErr := r.in.Close()
	in, err := r.open()
	if err != nil {
		return errors.Join(err, closeErr)
	}
	r.in = in
	r.count = 0
	r.reopens++

	return nil
}

// Reopens returns how many times the source has been reopened.
func (r *ReopenableReader) Reopens() int {
	return r.reopens
}

func (r *ReopenableReader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, errs.ErrClosed
	}

	n, err := r.in.Read(p)
	r.count += int64(n)

	return n, err
}

// Skip discards up to n bytes. Reaching the end of the source is not an error.
func (r *ReopenableReader) Skip(n int64) (int64, error) {
	if r.closed {
		return 0, errs.ErrClosed
	}
	if n <= 0 {
		return 0, nil
	}

	skipped, err := io.CopyN(io.Discard, r.in, n)
	r.count += skipped
	if errors.Is(err, io.EOF) {
		err = nil
	}

	return skipped, err
}

// Position returns the number of bytes consumed since the last reopen.
func (r *ReopenableReader) Position() int64 {
	return r.count
}

// Length returns the size given at construction.
func (r *ReopenableReader) Length() int64 {
	return r.length
}

// Seek moves to the target position and returns the position reached,
// which is short of the target only when the source ends first.
func (r *ReopenableReader) Seek(offset int64, whence int) (int64, error) {
	if r.closed {
		return 0, errs.ErrClosed
	}

	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = r.count + offset
	case io.SeekEnd:
		target = r.length + offset
	default:
		return 0, fmt.Errorf("%w: whence %d", errs.ErrIllegalArgument, whence)
	}
	if target < 0 {
		return 0, fmt.Errorf("%w: negative position %d", errs.ErrIllegalArgument, target)
	}

	if target < r.count {
		if err := r.Reopen(); err != nil {
			return 0, err
		}
	}
	if _, err := r.Skip(target - r.count); err != nil {
		return r.count, err
	}

	return r.count, nil
}

// Available estimates the remaining bytes from the source length.
func (r *ReopenableReader) Available() int {
	if r.closed {
		return 0
	}

	return int(min(max(r.length-r.count, 0), math.MaxInt32))
}

// IsClosed reports whether Close has been called.
func (r *ReopenableReader) IsClosed() bool {
	return r.closed
}

// Close closes the current reader. Close is idempotent.
func (r *ReopenableReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	return r.in.Close()
}
