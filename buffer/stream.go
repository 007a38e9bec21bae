package buffer

import (
	"fmt"
	"io"
	"math"

	"github.com/arloliu/uio/errs"
)

// Positioner is implemented by every stream produced by this module. It
// exposes the stream's absolute origin and its window-relative position,
// which plain io.Reader and io.Writer handles do not carry.
type Positioner interface {
	// Offset returns the absolute offset of the stream origin.
	Offset() int64
	// Position returns the current position relative to Offset.
	Position() int64
	// SetPosition moves the stream to pos, relative to Offset.
	SetPosition(pos int64) error
}

// InputStream reads a Buffer from a fixed origin, optionally bounded in length.
type InputStream struct {
	buf    Buffer
	pos    *Position
	offset int
	closed bool
}

var (
	_ io.ReadSeekCloser = (*InputStream)(nil)
	_ io.ByteReader     = (*InputStream)(nil)
	_ Positioner        = (*InputStream)(nil)
)

// NewInputStream creates a reader over buf starting at offset, limited to
// length bytes (math.MaxInt for no limit).
func NewInputStream(buf Buffer, offset, length int) *InputStream {
	return newInputStream(buf, offset, length)
}

func newInputStream(buf Buffer, offset, length int) *InputStream {
	offset = max(offset, 0)
	return &InputStream{
		buf:    buf,
		pos:    &Position{Pos: offset, Size: limitOf(offset, length)},
		offset: offset,
	}
}

// limitOf returns offset+length saturated at math.MaxInt.
func limitOf(offset, length int) int {
	if length < 0 || length > math.MaxInt-offset {
		return math.MaxInt
	}

	return offset + length
}

func (s *InputStream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, errs.ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	n := s.buf.Read(p, s.pos)
	if err := Failure(s.buf); err != nil {
		s.pos.Pos -= max(n, 0)
		return 0, err
	}
	if n == NoData {
		return 0, io.EOF
	}

	return n, nil
}

func (s *InputStream) ReadByte() (byte, error) {
	if s.closed {
		return 0, errs.ErrClosed
	}

	b, ok := s.buf.Get(s.pos)
	if err := Failure(s.buf); err != nil {
		if ok {
			s.pos.Pos--
		}

		return 0, err
	}
	if !ok {
		return 0, io.EOF
	}

	return b, nil
}

// Available returns the number of bytes readable without reaching the end.
func (s *InputStream) Available() int {
	return s.buf.AvailableForReading(s.pos)
}

// Skip advances up to n bytes and returns the amount skipped.
func (s *InputStream) Skip(n int64) int64 {
	return s.buf.Skip(n, s.pos)
}

// Seek positions the stream relative to its origin. io.SeekEnd is relative
// to the readable end of the stream.
func (s *InputStream) Seek(offset int64, whence int) (int64, error) {
	if s.closed {
		return 0, errs.ErrClosed
	}

	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = int64(s.pos.Pos - s.offset)
	case io.SeekEnd:
		base = int64(min(s.buf.Count(), s.pos.Size) - s.offset)
	default:
		return 0, fmt.Errorf("%w: whence %d", errs.ErrIllegalArgument, whence)
	}

	if err := s.SetPosition(base + offset); err != nil {
		return 0, err
	}

	return s.Position(), nil
}

func (s *InputStream) Offset() int64 {
	return int64(s.offset)
}

func (s *InputStream) Position() int64 {
	return int64(s.pos.Pos - s.offset)
}

// SetPosition moves the stream; positions past the bound are clamped to it.
func (s *InputStream) SetPosition(pos int64) error {
	if pos < 0 {
		return fmt.Errorf("%w: negative position %d", errs.ErrIllegalArgument, pos)
	}
	if pos > int64(math.MaxInt-s.offset) {
		return fmt.Errorf("%w: 0x%x", errs.ErrOffsetTooLarge, pos)
	}
	s.pos.Set(s.offset + int(pos))

	return nil
}

// Close marks the stream closed. The underlying buffer is not affected.
func (s *InputStream) Close() error {
	s.closed = true
	return nil
}

// OutputStream writes into a Buffer from a fixed origin.
type OutputStream struct {
	buf    Buffer
	pos    *Position
	offset int
	closed bool
}

var (
	_ io.WriteSeeker = (*OutputStream)(nil)
	_ io.ByteWriter  = (*OutputStream)(nil)
	_ io.Closer      = (*OutputStream)(nil)
	_ Positioner     = (*OutputStream)(nil)
)

// NewOutputStream creates a writer over buf starting at offset.
func NewOutputStream(buf Buffer, offset int) *OutputStream {
	return newOutputStream(buf, offset)
}

func newOutputStream(buf Buffer, offset int) *OutputStream {
	offset = max(offset, 0)
	pos := buf.NewPosition()
	pos.Set(offset)

	return &OutputStream{buf: buf, pos: pos, offset: pos.Pos}
}

// Write writes p, returning io.ErrShortWrite when the buffer runs out of room.
func (s *OutputStream) Write(p []byte) (int, error) {
	if s.closed {
		return 0, errs.ErrClosed
	}

	n := s.buf.Write(p, s.pos)
	if err := Failure(s.buf); err != nil {
		return n, err
	}
	if n < len(p) {
		return n, io.ErrShortWrite
	}

	return n, nil
}

func (s *OutputStream) WriteByte(c byte) error {
	if s.closed {
		return errs.ErrClosed
	}
	ok := s.buf.Put(c, s.pos)
	if err := Failure(s.buf); err != nil {
		return err
	}
	if !ok {
		return io.ErrShortWrite
	}

	return nil
}

func (s *OutputStream) Seek(offset int64, whence int) (int64, error) {
	if s.closed {
		return 0, errs.ErrClosed
	}

	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = int64(s.pos.Pos - s.offset)
	case io.SeekEnd:
		base = int64(s.buf.Count() - s.offset)
	default:
		return 0, fmt.Errorf("%w: whence %d", errs.ErrIllegalArgument, whence)
	}

	if err := s.SetPosition(base + offset); err != nil {
		return 0, err
	}

	return s.Position(), nil
}

func (s *OutputStream) Offset() int64 {
	return int64(s.offset)
}

func (s *OutputStream) Position() int64 {
	return int64(s.pos.Pos - s.offset)
}

func (s *OutputStream) SetPosition(pos int64) error {
	if pos < 0 {
		return fmt.Errorf("%w: negative position %d", errs.ErrIllegalArgument, pos)
	}
	if pos > int64(s.pos.Size-s.offset) {
		return fmt.Errorf("%w: 0x%x", errs.ErrOffsetTooLarge, pos)
	}
	s.pos.Set(s.offset + int(pos))

	return nil
}

func (s *OutputStream) Close() error {
	s.closed = true
	return nil
}
