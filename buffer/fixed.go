package buffer

import (
	"io"
	"sync"
)

// FixedSizeBuffer is a Buffer over a single byte slice whose capacity never changes.
type FixedSizeBuffer struct {
	mu    sync.Mutex
	buf   []byte
	count int
}

var _ Buffer = (*FixedSizeBuffer)(nil)

// NewFixedSizeBuffer creates an empty buffer (Count 0) using buf as storage.
func NewFixedSizeBuffer(buf []byte) *FixedSizeBuffer {
	return &FixedSizeBuffer{buf: buf}
}

// WrapFixedSizeBuffer creates a buffer whose content is buf (Count len(buf)).
func WrapFixedSizeBuffer(buf []byte) *FixedSizeBuffer {
	return &FixedSizeBuffer{buf: buf, count: len(buf)}
}

func (b *FixedSizeBuffer) Lock()   { b.mu.Lock() }
func (b *FixedSizeBuffer) Unlock() { b.mu.Unlock() }

// Cap returns the fixed capacity.
func (b *FixedSizeBuffer) Cap() int {
	return len(b.buf)
}

func (b *FixedSizeBuffer) Count() int {
	return b.count
}

// SetCount sets the logical length, clamped into [0, Cap].
func (b *FixedSizeBuffer) SetCount(n int) {
	b.count = min(max(n, 0), len(b.buf))
}

func (b *FixedSizeBuffer) NewPosition() *Position {
	return NewPosition(len(b.buf))
}

func (b *FixedSizeBuffer) AvailableForReading(p *Position) int {
	return availableForReading(b.count, p)
}

// AvailableForWriting is bounded by both the capacity and the view size.
func (b *FixedSizeBuffer) AvailableForWriting(p *Position) int {
	if avail := min(len(b.buf), p.Size) - p.Pos; avail > 0 {
		return avail
	}

	return 0
}

func (b *FixedSizeBuffer) Get(p *Position) (byte, bool) {
	if b.AvailableForReading(p) == 0 {
		return 0, false
	}

	v := b.buf[p.Pos]
	p.Pos++

	return v, true
}

func (b *FixedSizeBuffer) Read(dst []byte, p *Position) int {
	if len(dst) == 0 {
		return 0
	}

	n := min(len(dst), b.AvailableForReading(p))
	if n == 0 {
		return NoData
	}

	copy(dst, b.buf[p.Pos:p.Pos+n])
	p.Pos += n

	return n
}

func (b *FixedSizeBuffer) Put(v byte, p *Position) bool {
	if b.AvailableForWriting(p) == 0 {
		return false
	}

	b.buf[p.Pos] = v
	p.Pos++
	b.count = max(b.count, p.Pos)

	return true
}

func (b *FixedSizeBuffer) Write(src []byte, p *Position) int {
	n := min(len(src), b.AvailableForWriting(p))
	if n == 0 {
		return 0
	}

	copy(b.buf[p.Pos:], src[:n])
	p.Pos += n
	b.count = max(b.count, p.Pos)

	return n
}

func (b *FixedSizeBuffer) Skip(n int64, p *Position) int64 {
	skipped := max(0, min(int64(b.AvailableForReading(p)), n))
	p.Pos += int(skipped)

	return skipped
}

func (b *FixedSizeBuffer) WriteBuffer(w io.Writer, whole bool) error {
	data := b.buf[:b.count]
	if whole {
		data = b.buf
	}
	_, err := w.Write(data)

	return err
}

// Bytes returns the first Count bytes of the storage without copying.
func (b *FixedSizeBuffer) Bytes() []byte {
	return b.buf[:b.count]
}
