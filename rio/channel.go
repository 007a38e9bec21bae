package rio

import (
	"fmt"
	"io"

	"github.com/arloliu/uio/errs"
)

// SeekableChannel exposes a region of an Input as an io.ReadSeekCloser.
//
// The region starts at offset and spans length bytes, or runs to the end of
// the input when length is 0. Positions are relative to offset.
type SeekableChannel struct {
	in     Input
	stream Stream
	offset int64
	size   int64
	closed bool
}

var _ io.ReadSeekCloser = (*SeekableChannel)(nil)

// NewSeekableChannel creates a channel over in starting at offset.
func NewSeekableChannel(in Input, offset, length int64) (*SeekableChannel, error) {
	var (
		s   Stream
		err error
	)
	if length > 0 {
		s, err = in.InputStreamN(offset, length)
	} else {
		s, err = in.InputStream(offset)
	}
	if err != nil {
		return nil, err
	}

	return &SeekableChannel{in: in, stream: s, offset: offset, size: length}, nil
}

func (c *SeekableChannel) Read(p []byte) (int, error) {
	return c.stream.Read(p)
}

// Write always fails with errs.ErrUnsupported.
func (c *SeekableChannel) Write([]byte) (int, error) {
	return 0, errs.ErrUnsupported
}

// Position returns the current position relative to the channel origin.
func (c *SeekableChannel) Position() (int64, error) {
	return c.in.ChildPosition(c.stream)
}

// SetPosition moves the channel to pos.
func (c *SeekableChannel) SetPosition(pos int64) error {
	return c.in.SetChildPosition(c.stream, pos)
}

func (c *SeekableChannel) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		pos, err := c.Position()
		if err != nil {
			return 0, err
		}
		base = pos
	case io.SeekEnd:
		size, err := c.Size()
		if err != nil {
			return 0, err
		}
		base = size
	default:
		return 0, fmt.Errorf("%w: whence %d", errs.ErrIllegalArgument, whence)
	}

	if err := c.SetPosition(base + offset); err != nil {
		return 0, err
	}

	return c.Position()
}

// Size returns the region length: the bound given at construction, or the
// input length minus the origin.
func (c *SeekableChannel) Size() (int64, error) {
	if c.size > 0 {
		return c.size, nil
	}

	n, err := c.in.Length()
	if err != nil {
		return 0, err
	}

	return max(n-c.offset, 0), nil
}

// Truncate sets the length of the underlying input when it is an Output
// and fails with errs.ErrUnsupported otherwise.
func (c *SeekableChannel) Truncate(size int64) error {
	out, ok := c.in.(Output)
	if !ok {
		return errs.ErrUnsupported
	}

	return out.SetLength(size)
}

// IsOpen reports whether Close has not been called.
func (c *SeekableChannel) IsOpen() bool {
	return !c.closed
}

// Close closes the channel's stream. The input stays open.
func (c *SeekableChannel) Close() error {
	c.closed = true
	return c.stream.Close()
}
