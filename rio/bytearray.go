package rio

import (
	"fmt"
	"io"
	"math"
	"sync/atomic"

	"github.com/arloliu/uio/buffer"
	"github.com/arloliu/uio/endian"
	"github.com/arloliu/uio/errs"
	"github.com/arloliu/uio/internal/options"
)

// MaxOffset is the largest absolute offset a ByteArrayIO can address.
const MaxOffset = math.MaxInt32

// storage is the buffer behind a root window and its shared children.
// It is released when the last window closes, but only if it was
// allocated by this package.
type storage struct {
	buf   buffer.Storage
	refs  atomic.Int32
	owned bool
}

func newStorage(buf buffer.Storage, owned bool) *storage {
	s := &storage{buf: buf, owned: owned}
	s.refs.Store(1)

	return s
}

func (s *storage) acquire() *storage {
	s.refs.Add(1)
	return s
}

func (s *storage) release() {
	if s.refs.Add(-1) == 0 && s.owned {
		s.buf.Release()
	}
}

// ByteArrayIO is an IO window over a buffer.Storage, normally an in-memory
// paged buffer. When the storage is a buffer.Failer, its failures are
// returned by the read or write that hit them.
//
// A window addresses [offset, offset+length) of its buffer, or everything
// from offset on when length is 0. FilePointer and Seek are relative to the
// window origin.
type ByteArrayIO struct {
	Codec

	store  *storage
	pos    *buffer.Position
	offset int
	length int
	child  bool
	closed bool
}

var _ IO = (*ByteArrayIO)(nil)

// NewByteArrayIO creates an empty, growable window.
func NewByteArrayIO(opts ...Option) (*ByteArrayIO, error) {
	return NewByteArrayIOFrom(nil, opts...)
}

// NewByteArrayIOFrom creates a window over a copy of data.
func NewByteArrayIOFrom(data []byte, opts ...Option) (*ByteArrayIO, error) {
	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	buf, err := buffer.NewPagedBufferFrom(data, cfg.BufferOptions...)
	if err != nil {
		return nil, err
	}

	return newWindow(newStorage(buf, true), 0, 0, cfg.ByteOrder, false), nil
}

// NewByteArrayIOWindow creates a root window over caller-owned storage.
// Closing the window never releases buf.
func NewByteArrayIOWindow(buf buffer.Storage, offset, length int64, opts ...Option) (*ByteArrayIO, error) {
	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	off, n, err := checkWindow(offset, length)
	if err != nil {
		return nil, err
	}

	return newWindow(newStorage(buf, false), off, n, cfg.ByteOrder, false), nil
}

func newWindow(store *storage, offset, length int, order endian.ByteOrder, child bool) *ByteArrayIO {
	size := math.MaxInt
	if length > 0 {
		size = offset + length
	}

	w := &ByteArrayIO{
		store:  store,
		pos:    &buffer.Position{Pos: offset, Size: size},
		offset: offset,
		length: length,
		child:  child,
	}
	w.bind(w, w, order)

	return w
}

// checkWindow validates an absolute window origin and length.
func checkWindow(offset, length int64) (int, int, error) {
	if offset < 0 || length < 0 {
		return 0, 0, fmt.Errorf("%w: window (%d, %d)", errs.ErrIllegalArgument, offset, length)
	}
	if offset > MaxOffset || length > MaxOffset-offset {
		return 0, 0, fmt.Errorf("%w: 0x%x", errs.ErrOffsetTooLarge, offset+length)
	}

	return int(offset), int(length), nil
}

func (w *ByteArrayIO) check() error {
	if w.closed {
		return errs.ErrClosed
	}

	return nil
}

func (w *ByteArrayIO) checkWrite() error {
	if err := w.check(); err != nil {
		return err
	}
	if !w.store.buf.Writable() {
		return fmt.Errorf("%w: read-only storage", errs.ErrUnsupported)
	}

	return nil
}

// Buffer returns the underlying storage.
func (w *ByteArrayIO) Buffer() buffer.Storage {
	return w.store.buf
}

// Offset returns the absolute origin of the window.
func (w *ByteArrayIO) Offset() int64 {
	return int64(w.offset)
}

func (w *ByteArrayIO) IsChild() bool {
	return w.child
}

func (w *ByteArrayIO) Read(p []byte) (int, error) {
	if err := w.check(); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}

	n := w.store.buf.Read(p, w.pos)
	if err := buffer.Failure(w.store.buf); err != nil {
		w.pos.Pos -= max(n, 0)
		return 0, err
	}
	if n == buffer.NoData {
		return 0, io.EOF
	}

	return n, nil
}

func (w *ByteArrayIO) ReadByte() (byte, error) {
	if err := w.check(); err != nil {
		return 0, err
	}

	b, ok := w.store.buf.Get(w.pos)
	if err := buffer.Failure(w.store.buf); err != nil {
		if ok {
			w.pos.Pos--
		}

		return 0, err
	}
	if !ok {
		return 0, io.EOF
	}

	return b, nil
}

// UnreadByte steps back one byte, never before the window origin.
func (w *ByteArrayIO) UnreadByte() error {
	if err := w.check(); err != nil {
		return err
	}
	if w.pos.Pos <= w.offset {
		return fmt.Errorf("%w: unread at window origin", errs.ErrIllegalArgument)
	}
	w.pos.Pos--

	return nil
}

func (w *ByteArrayIO) Skip(n int64) (int64, error) {
	if err := w.check(); err != nil {
		return 0, err
	}

	return w.store.buf.Skip(n, w.pos), nil
}

// Seek moves the cursor relative to the window origin. Offsets that would
// address past MaxOffset fail with errs.ErrOffsetTooLarge; on a bounded
// window the cursor is clamped to the window end.
func (w *ByteArrayIO) Seek(offset int64, whence int) (int64, error) {
	if err := w.check(); err != nil {
		return 0, err
	}

	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = int64(w.pos.Pos - w.offset)
	case io.SeekEnd:
		base, _ = w.Length()
	default:
		return 0, fmt.Errorf("%w: whence %d", errs.ErrIllegalArgument, whence)
	}

	target := base + offset
	if target < 0 {
		return 0, fmt.Errorf("%w: negative position %d", errs.ErrIllegalArgument, target)
	}
	if target > MaxOffset-int64(w.offset) {
		return 0, fmt.Errorf("%w: 0x%x", errs.ErrOffsetTooLarge, target)
	}
	w.pos.Set(w.offset + int(target))

	return int64(w.pos.Pos - w.offset), nil
}

// Length returns min(length, Count-offset) for bounded windows and
// Count-offset otherwise.
func (w *ByteArrayIO) Length() (int64, error) {
	n := max(w.store.buf.Count()-w.offset, 0)
	if w.length > 0 {
		n = min(n, w.length)
	}

	return int64(n), nil
}

// SetLength truncates or extends the content to offset+n bytes.
func (w *ByteArrayIO) SetLength(n int64) error {
	if err := w.checkWrite(); err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("%w: negative length %d", errs.ErrIllegalArgument, n)
	}
	if n > MaxOffset-int64(w.offset) {
		return fmt.Errorf("%w: 0x%x", errs.ErrOffsetTooLarge, n)
	}

	end := w.offset + int(n)
	buf := w.store.buf
	if end < buf.Count() {
		buf.Truncate(end)
	} else {
		buf.SetCount(end)
	}

	return nil
}

func (w *ByteArrayIO) FilePointer() (int64, error) {
	return int64(w.pos.Pos - w.offset), nil
}

// Write writes p at the cursor. A bounded window returns io.ErrShortWrite
// when p does not fit; read-only storage returns errs.ErrUnsupported.
func (w *ByteArrayIO) Write(p []byte) (int, error) {
	if err := w.checkWrite(); err != nil {
		return 0, err
	}

	n := w.store.buf.Write(p, w.pos)
	if err := buffer.Failure(w.store.buf); err != nil {
		return n, err
	}
	if n < len(p) {
		return n, io.ErrShortWrite
	}

	return n, nil
}

func (w *ByteArrayIO) WriteByte(c byte) error {
	if err := w.checkWrite(); err != nil {
		return err
	}
	ok := w.store.buf.Put(c, w.pos)
	if err := buffer.Failure(w.store.buf); err != nil {
		return err
	}
	if !ok {
		return io.ErrShortWrite
	}

	return nil
}

// ReadTo copies up to n bytes from the cursor into dst through the
// buffer's locked bulk transfer. A negative n copies to the end of the window.
func (w *ByteArrayIO) ReadTo(dst io.Writer, n int64) (int64, error) {
	if err := w.check(); err != nil {
		return 0, err
	}

	return buffer.ReadInto(w.store.buf, dst, n, w.pos)
}

// WriteFrom copies up to n bytes from src to the cursor through the
// buffer's locked bulk transfer. A negative n copies until src is exhausted.
func (w *ByteArrayIO) WriteFrom(src io.Reader, n int64) (int64, error) {
	if err := w.checkWrite(); err != nil {
		return 0, err
	}

	return buffer.WriteFrom(w.store.buf, src, n, w.pos)
}

// ToBytes returns a copy of the window content. The cursor does not move.
func (w *ByteArrayIO) ToBytes() ([]byte, error) {
	n, _ := w.Length()
	out := make([]byte, n)
	w.store.buf.ReadAt(out, w.offset)

	return out, nil
}

// streamBounds converts a window-relative stream origin into absolute
// offset and remaining window length.
func (w *ByteArrayIO) streamBounds(offset int64) (int, int, error) {
	if offset < 0 {
		return 0, 0, fmt.Errorf("%w: negative offset %d", errs.ErrIllegalArgument, offset)
	}
	if offset > MaxOffset-int64(w.offset) {
		return 0, 0, fmt.Errorf("%w: 0x%x", errs.ErrOffsetTooLarge, offset)
	}

	abs := w.offset + int(offset)
	length := math.MaxInt
	if w.length > 0 {
		length = max(w.length-int(offset), 0)
	}

	return abs, length, nil
}

func (w *ByteArrayIO) InputStream(offset int64) (Stream, error) {
	abs, length, err := w.streamBounds(offset)
	if err != nil {
		return nil, err
	}

	return buffer.NewInputStream(w.store.buf, abs, length), nil
}

func (w *ByteArrayIO) InputStreamN(offset, length int64) (Stream, error) {
	abs, limit, err := w.streamBounds(offset)
	if err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, fmt.Errorf("%w: negative length %d", errs.ErrIllegalArgument, length)
	}

	return buffer.NewInputStream(w.store.buf, abs, int(min(length, int64(limit)))), nil
}

func (w *ByteArrayIO) OutputStream(offset int64) (OutStream, error) {
	abs, _, err := w.streamBounds(offset)
	if err != nil {
		return nil, err
	}

	return buffer.NewOutputStream(w.store.buf, abs), nil
}

func (w *ByteArrayIO) ChildPosition(s io.Reader) (int64, error) {
	return ChildPosition(s)
}

func (w *ByteArrayIO) SetChildPosition(s io.Reader, pos int64) error {
	return SetChildPosition(s, pos)
}

func (w *ByteArrayIO) ChildOffset(s io.Reader) (int64, error) {
	return ChildOffset(s)
}

// SharedChild creates a child window that shares this window's storage.
// Writes through either window are visible to the other as soon as the
// writing call returns; each window keeps its own cursor. A child of a
// bounded window never extends past the parent's end.
func (w *ByteArrayIO) SharedChild(offset, length int64, order endian.ByteOrder) (*ByteArrayIO, error) {
	abs, n, err := w.childBounds(offset, length, order)
	if err != nil {
		return nil, err
	}

	return newWindow(w.store.acquire(), abs, n, order, true), nil
}

// IsolatedChild creates a child window over a snapshot copy of this
// window's storage. Later writes on either side are not visible to the other.
func (w *ByteArrayIO) IsolatedChild(offset, length int64, order endian.ByteOrder) (*ByteArrayIO, error) {
	abs, n, err := w.childBounds(offset, length, order)
	if err != nil {
		return nil, err
	}

	return newWindow(newStorage(w.store.buf.Snapshot(), true), abs, n, order, true), nil
}

func (w *ByteArrayIO) childBounds(offset, length int64, order endian.ByteOrder) (int, int, error) {
	if err := w.check(); err != nil {
		return 0, 0, err
	}
	if !order.Valid() {
		return 0, 0, errs.ErrInvalidByteOrder
	}
	if offset < 0 {
		return 0, 0, fmt.Errorf("%w: negative offset %d", errs.ErrIllegalArgument, offset)
	}

	if w.length > 0 {
		// a child of a bounded window ends where its parent does
		if offset >= int64(w.length) {
			return 0, 0, fmt.Errorf("%w: child offset %d past window length %d",
				errs.ErrIllegalArgument, offset, w.length)
		}
		if rest := int64(w.length) - offset; length == 0 || length > rest {
			length = rest
		}
	}

	return checkWindow(int64(w.offset)+offset, length)
}

// IOChild creates a SharedChild when syncPointer is true and an
// IsolatedChild otherwise.
func (w *ByteArrayIO) IOChild(offset, length int64, order endian.ByteOrder, syncPointer bool) (IO, error) {
	var (
		child *ByteArrayIO
		err   error
	)
	if syncPointer {
		child, err = w.SharedChild(offset, length, order)
	} else {
		child, err = w.IsolatedChild(offset, length, order)
	}
	if err != nil {
		return nil, err
	}

	return child, nil
}

func (w *ByteArrayIO) InputChild(offset, length int64, order endian.ByteOrder, syncPointer bool) (Input, error) {
	return w.IOChild(offset, length, order, syncPointer)
}

func (w *ByteArrayIO) OutputChild(offset int64, order endian.ByteOrder, syncPointer bool) (Output, error) {
	return w.IOChild(offset, 0, order, syncPointer)
}

// Close detaches the window from its storage. Storage allocated by this
// package is released once its last window is closed. Close is idempotent.
func (w *ByteArrayIO) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.store.release()

	return nil
}
