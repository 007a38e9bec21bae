package pool

import (
	"io"
	"sync"
)

const (
	// TransferSize is the size of the scratch chunk used by bulk transfers.
	TransferSize = 8 << 10 // 8KiB

	// ByteBufferDefaultSize is the default capacity of pooled ByteBuffers.
	ByteBufferDefaultSize = 1 << 10 // 1KiB
	// ByteBufferMaxThreshold is the largest ByteBuffer the default pool retains.
	ByteBufferMaxThreshold = 64 << 10 // 64KiB
)

// ByteBuffer is a growable byte slice used to assemble encoded values
// (modified UTF-8 strings, bit-packed output) before they are written.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer but keeps its capacity.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Grow ensures the buffer can hold requiredBytes more bytes without reallocating.
//
// Small buffers grow by ByteBufferDefaultSize; once past 4x that, they grow by 25%
// of their capacity.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := ByteBufferDefaultSize
	if cap(bb.B) > 4*ByteBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}
	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Write appends data to the buffer. It never fails.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteByte appends a single byte. It never fails.
func (bb *ByteBuffer) WriteByte(c byte) error {
	bb.B = append(bb.B, c)
	return nil
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool is a sync.Pool of ByteBuffers.
//
// Buffers grown past maxThreshold are dropped on Put instead of being retained.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool whose buffers start with defaultSize capacity.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves an empty ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

// PagePool pools fixed-size pages. Pages returned by Get are zeroed.
type PagePool struct {
	pool sync.Pool
	size int
}

// NewPagePool creates a pool of pages of the given size.
// Panics if size is not positive.
func NewPagePool(size int) *PagePool {
	if size <= 0 {
		panic("pool: page size must be positive")
	}

	p := &PagePool{size: size}
	p.pool.New = func() any {
		b := make([]byte, p.size)
		return &b
	}

	return p
}

// Size returns the page size served by the pool.
func (p *PagePool) Size() int {
	return p.size
}

// Get returns a zeroed page.
func (p *PagePool) Get() []byte {
	ptr, _ := p.pool.Get().(*[]byte)
	page := *ptr
	clear(page)

	return page
}

// Put returns a page to the pool. Pages of a foreign size are dropped.
func (p *PagePool) Put(page []byte) {
	if cap(page) != p.size {
		return
	}
	page = page[:p.size]
	p.pool.Put(&page)
}

var (
	byteBufferDefaultPool = NewByteBufferPool(ByteBufferDefaultSize, ByteBufferMaxThreshold)
	transferPool          = NewPagePool(TransferSize)

	pagePoolsMu sync.Mutex
	pagePools   = map[int]*PagePool{}
)

// GetByteBuffer retrieves a ByteBuffer from the default pool.
func GetByteBuffer() *ByteBuffer {
	return byteBufferDefaultPool.Get()
}

// PutByteBuffer returns a ByteBuffer to the default pool.
func PutByteBuffer(bb *ByteBuffer) {
	byteBufferDefaultPool.Put(bb)
}

// GetTransferBuffer returns an 8KiB scratch chunk for bulk transfers.
func GetTransferBuffer() []byte {
	return transferPool.Get()
}

// PutTransferBuffer returns a scratch chunk obtained from GetTransferBuffer.
func PutTransferBuffer(b []byte) {
	transferPool.Put(b)
}

// Pages returns the shared PagePool for the given page size, creating it on first use.
func Pages(size int) *PagePool {
	pagePoolsMu.Lock()
	defer pagePoolsMu.Unlock()

	p, ok := pagePools[size]
	if !ok {
		p = NewPagePool(size)
		pagePools[size] = p
	}

	return p
}
