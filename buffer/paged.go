package buffer

import (
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/arloliu/uio/errs"
	"github.com/arloliu/uio/internal/options"
	"github.com/arloliu/uio/internal/pool"
)

// DefaultPageSize is the page size used when WithPageSize is not given.
const DefaultPageSize = 4 << 10 // 4KiB

// PageIndex addresses a byte inside a PagedBuffer as (page, offset within page).
type PageIndex struct {
	Page   int
	Offset int
}

// Compare orders indexes by page, then by offset. It returns -1, 0 or +1.
func (i PageIndex) Compare(other PageIndex) int {
	switch {
	case i.Page < other.Page:
		return -1
	case i.Page > other.Page:
		return 1
	case i.Offset < other.Offset:
		return -1
	case i.Offset > other.Offset:
		return 1
	default:
		return 0
	}
}

// Less reports whether i comes before other.
func (i PageIndex) Less(other PageIndex) bool {
	return i.Compare(other) < 0
}

func (i PageIndex) String() string {
	return fmt.Sprintf("%d:%d", i.Page, i.Offset)
}

// PagedBufferConfig holds the construction parameters of a PagedBuffer.
type PagedBufferConfig struct {
	PageSize int
}

// PagedBufferOption configures a PagedBuffer.
type PagedBufferOption = options.Option[*PagedBufferConfig]

// WithPageSize sets the page size in bytes. It must be positive.
func WithPageSize(size int) PagedBufferOption {
	return options.New(func(c *PagedBufferConfig) error {
		if size <= 0 {
			return fmt.Errorf("%w: page size %d", errs.ErrIllegalArgument, size)
		}
		c.PageSize = size

		return nil
	})
}

// PagedBuffer is a growable Buffer stored as a list of fixed-size pages.
//
// A page is appended the first time a write reaches past the current
// capacity. Existing pages are never resized, moved or copied, so slices
// returned by Page stay valid until Release.
//
// PagedBuffer is not safe for concurrent mutation; see the package
// documentation for the locking done by bulk transfers.
type PagedBuffer struct {
	mu       sync.Mutex
	pages    [][]byte
	pageSize int
	count    int
	pool     *pool.PagePool
}

var _ Storage = (*PagedBuffer)(nil)

// NewPagedBuffer creates an empty paged buffer.
func NewPagedBuffer(opts ...PagedBufferOption) (*PagedBuffer, error) {
	cfg := &PagedBufferConfig{PageSize: DefaultPageSize}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return &PagedBuffer{
		pageSize: cfg.PageSize,
		pool:     pool.Pages(cfg.PageSize),
	}, nil
}

// NewPagedBufferFrom creates a paged buffer holding a copy of data.
func NewPagedBufferFrom(data []byte, opts ...PagedBufferOption) (*PagedBuffer, error) {
	b, err := NewPagedBuffer(opts...)
	if err != nil {
		return nil, err
	}
	b.Write(data, b.NewPosition())

	return b, nil
}

func (b *PagedBuffer) Lock()   { b.mu.Lock() }
func (b *PagedBuffer) Unlock() { b.mu.Unlock() }

// PageSize returns the size of every page.
func (b *PagedBuffer) PageSize() int {
	return b.pageSize
}

// PageCount returns the number of allocated pages.
func (b *PagedBuffer) PageCount() int {
	return len(b.pages)
}

// Page returns the storage of page i. Panics if i is out of range.
func (b *PagedBuffer) Page(i int) []byte {
	return b.pages[i]
}

// Capacity returns the number of bytes addressable without allocating.
func (b *PagedBuffer) Capacity() int {
	return len(b.pages) * b.pageSize
}

// Index decomposes an absolute offset into a PageIndex.
func (b *PagedBuffer) Index(offset int) PageIndex {
	return PageIndex{Page: offset / b.pageSize, Offset: offset % b.pageSize}
}

// Offset converts a PageIndex back into an absolute offset.
func (b *PagedBuffer) Offset(i PageIndex) int {
	return i.Page*b.pageSize + i.Offset
}

func (b *PagedBuffer) Count() int {
	return b.count
}

// SetCount sets the logical length. Shrinking keeps the pages allocated;
// growing exposes whatever the pages hold (zero for fresh pages).
func (b *PagedBuffer) SetCount(n int) {
	if n < 0 {
		n = 0
	}
	b.ensure(n)
	b.count = n
}

// Truncate shrinks the logical length to n and releases pages beyond it.
func (b *PagedBuffer) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n >= b.count {
		return
	}

	keep := (n + b.pageSize - 1) / b.pageSize
	for i := keep; i < len(b.pages); i++ {
		b.pool.Put(b.pages[i])
		b.pages[i] = nil
	}
	b.pages = b.pages[:keep]
	if keep > 0 {
		// bytes past n on the last page must read back as zero after regrowth
		clear(b.pages[keep-1][n-(keep-1)*b.pageSize:])
	}
	b.count = n
}

// NewPosition returns an unbounded cursor at offset 0.
func (b *PagedBuffer) NewPosition() *Position {
	return NewPosition(math.MaxInt)
}

func (b *PagedBuffer) AvailableForReading(p *Position) int {
	return availableForReading(b.count, p)
}

// AvailableForWriting is bounded only by the view size.
func (b *PagedBuffer) AvailableForWriting(p *Position) int {
	if avail := p.Size - p.Pos; avail > 0 {
		return avail
	}

	return 0
}

// ensure allocates pages until size bytes are addressable.
func (b *PagedBuffer) ensure(size int) {
	for len(b.pages)*b.pageSize < size {
		b.pages = append(b.pages, b.pool.Get())
	}
}

func (b *PagedBuffer) Get(p *Position) (byte, bool) {
	if b.AvailableForReading(p) == 0 {
		return 0, false
	}

	idx := b.Index(p.Pos)
	p.Pos++

	return b.pages[idx.Page][idx.Offset], true
}

func (b *PagedBuffer) Read(dst []byte, p *Position) int {
	if len(dst) == 0 {
		return 0
	}

	n := min(len(dst), b.AvailableForReading(p))
	if n == 0 {
		return NoData
	}

	b.copyOut(dst[:n], p.Pos)
	p.Pos += n

	return n
}

func (b *PagedBuffer) Put(v byte, p *Position) bool {
	if b.AvailableForWriting(p) == 0 {
		return false
	}

	b.ensure(p.Pos + 1)
	idx := b.Index(p.Pos)
	b.pages[idx.Page][idx.Offset] = v
	p.Pos++
	b.count = max(b.count, p.Pos)

	return true
}

func (b *PagedBuffer) Write(src []byte, p *Position) int {
	n := min(len(src), b.AvailableForWriting(p))
	if n == 0 {
		return 0
	}

	b.ensure(p.Pos + n)
	b.copyIn(src[:n], p.Pos)
	p.Pos += n
	b.count = max(b.count, p.Pos)

	return n
}

func (b *PagedBuffer) Skip(n int64, p *Position) int64 {
	skipped := max(0, min(int64(b.AvailableForReading(p)), n))
	p.Pos += int(skipped)

	return skipped
}

// ReadAt copies bytes starting at absolute offset off without a cursor.
// It returns the number of bytes copied, which is short only at Count.
func (b *PagedBuffer) ReadAt(dst []byte, off int) int {
	if off < 0 || off >= b.count {
		return 0
	}
	n := min(len(dst), b.count-off)
	b.copyOut(dst[:n], off)

	return n
}

func (b *PagedBuffer) copyOut(dst []byte, off int) {
	for len(dst) > 0 {
		idx := b.Index(off)
		c := copy(dst, b.pages[idx.Page][idx.Offset:])
		dst = dst[c:]
		off += c
	}
}

func (b *PagedBuffer) copyIn(src []byte, off int) {
	for len(src) > 0 {
		idx := b.Index(off)
		c := copy(b.pages[idx.Page][idx.Offset:], src)
		src = src[c:]
		off += c
	}
}

// WriteBuffer writes Count bytes, or every allocated page when whole is true.
func (b *PagedBuffer) WriteBuffer(w io.Writer, whole bool) error {
	remaining := b.count
	if whole {
		remaining = b.Capacity()
	}

	for _, page := range b.pages {
		if remaining <= 0 {
			break
		}
		n := min(len(page), remaining)
		if _, err := w.Write(page[:n]); err != nil {
			return err
		}
		remaining -= n
	}

	return nil
}

// Bytes returns a copy of the first Count bytes.
func (b *PagedBuffer) Bytes() []byte {
	out := make([]byte, b.count)
	b.copyOut(out, 0)

	return out
}

// Clone returns an independent buffer with the same page size and content.
func (b *PagedBuffer) Clone() *PagedBuffer {
	c := &PagedBuffer{
		pageSize: b.pageSize,
		pool:     b.pool,
		count:    b.count,
		pages:    make([][]byte, len(b.pages)),
	}
	for i, page := range b.pages {
		c.pages[i] = c.pool.Get()
		copy(c.pages[i], page)
	}

	return c
}

// Snapshot is Clone.
func (b *PagedBuffer) Snapshot() *PagedBuffer {
	return b.Clone()
}

// Writable always returns true.
func (b *PagedBuffer) Writable() bool {
	return true
}

// Release returns all pages to the pool and empties the buffer.
// The buffer may be reused afterwards.
func (b *PagedBuffer) Release() {
	for i, page := range b.pages {
		b.pool.Put(page)
		b.pages[i] = nil
	}
	b.pages = nil
	b.count = 0
}

// InputStream returns a reader over [offset, Count).
func (b *PagedBuffer) InputStream(offset int) *InputStream {
	return newInputStream(b, offset, math.MaxInt)
}

// InputStreamN returns a reader over at most length bytes starting at offset.
func (b *PagedBuffer) InputStreamN(offset, length int) *InputStream {
	return newInputStream(b, offset, length)
}

// OutputStream returns a writer starting at offset.
func (b *PagedBuffer) OutputStream(offset int) *OutputStream {
	return newOutputStream(b, offset)
}
