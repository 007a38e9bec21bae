package content

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/arloliu/uio/buffer"
	"github.com/arloliu/uio/errs"
	"github.com/arloliu/uio/internal/pool"
	"github.com/arloliu/uio/internal/ring"
	"github.com/arloliu/uio/rio"
)

type page struct {
	data  []byte
	dirty bool
}

// PageCache is a buffer.Storage that keeps part of a Content in memory.
//
// Pages are loaded on first access. Residency is a fixed ring of page
// indexes: loading a page when the ring is full evicts the page loaded
// longest ago, saving it first if it was written to. Count starts at the
// content length estimate. It grows with writes and with pages that turn out
// longer than expected, and drops to the real end when a load reaches the
// end of the content before the estimate does.
//
// Buffer methods cannot return errors, so load and save failures are kept
// and reported by Err, which makes PageCache a buffer.Failer. A page whose
// load failed is not kept, so the next access loads it again.
type PageCache struct {
	mu       sync.Mutex
	content  Content
	pageSize int
	pages    map[int]*page
	resident *ring.Ring[int]
	pool     *pool.PagePool
	count    int
	shrunk   bool
	extended bool
	err      error
	logger   zerolog.Logger
}

var (
	_ buffer.Storage = (*PageCache)(nil)
	_ buffer.Failer  = (*PageCache)(nil)
)

// NewPageCache creates a cache over c using the page size, page limit and
// logger of opts.
func NewPageCache(c Content, opts ...Option) (*PageCache, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return newPageCache(c, cfg)
}

func newPageCache(c Content, cfg *Config) (*PageCache, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil content", errs.ErrIllegalArgument)
	}

	length, err := c.Length()
	if err != nil {
		return nil, err
	}
	if length > rio.MaxOffset {
		return nil, fmt.Errorf("%w: content length 0x%x", errs.ErrOffsetTooLarge, length)
	}

	return &PageCache{
		content:  c,
		pageSize: cfg.PageSize,
		pages:    make(map[int]*page, cfg.MaxPages),
		resident: ring.New[int](cfg.MaxPages),
		pool:     pool.Pages(cfg.PageSize),
		count:    int(length),
		logger:   cfg.Logger,
	}, nil
}

func (pc *PageCache) Lock()   { pc.mu.Lock() }
func (pc *PageCache) Unlock() { pc.mu.Unlock() }

func (pc *PageCache) PageSize() int {
	return pc.pageSize
}

// MaxPages returns the number of pages that can be resident at once.
func (pc *PageCache) MaxPages() int {
	return pc.resident.Cap()
}

// Resident returns the indexes of the resident pages, oldest first.
func (pc *PageCache) Resident() []int {
	out := make([]int, 0, pc.resident.Len())
	pc.resident.Each(func(idx int) {
		if _, ok := pc.pages[idx]; ok {
			out = append(out, idx)
		}
	})

	return out
}

// Err returns and clears the first load or save failure since the last call.
func (pc *PageCache) Err() error {
	err := pc.err
	pc.err = nil

	return err
}

func (pc *PageCache) fail(err error) {
	if pc.err == nil {
		pc.err = err
	}
}

// page returns the resident page idx, loading it and evicting the oldest
// page when needed.
func (pc *PageCache) page(idx int) *page {
	if pg, ok := pc.pages[idx]; ok {
		return pg
	}

	pg := &page{data: pc.pool.Get()}
	if !pc.load(idx, pg) {
		return pg
	}
	pc.pages[idx] = pg

	if old, evicted := pc.resident.Add(idx); evicted {
		pc.evict(old)
	}

	return pg
}

// load fills pg from the content and reports whether it succeeded.
func (pc *PageCache) load(idx int, pg *page) bool {
	off := idx * pc.pageSize
	filled := 0
	ended := false
	for filled < len(pg.data) {
		n, err := pc.content.Load(int64(off+filled), filled, pg.data)
		if n > 0 {
			filled += n
		}
		if err != nil {
			if !errors.Is(err, errs.ErrEndOfSource) {
				pc.fail(err)
				pc.logger.Warn().Err(err).Int("page", idx).Msg("page load failed")

				return false
			}
			ended = true

			break
		}
		if n <= 0 {
			ended = true
			break
		}
	}

	end := off + filled
	switch {
	case pc.shrunk:
		// bytes past a truncation must not come back from the content
		if keep := pc.count - off; keep < filled {
			clear(pg.data[max(keep, 0):filled])
		}
	case ended && end < pc.count && !pc.extended:
		pc.logger.Debug().Int("estimate", pc.count).Int("end", end).Msg("content ended early")
		pc.count = end
	default:
		pc.count = max(pc.count, end)
	}

	return true
}

func (pc *PageCache) evict(idx int) {
	pg, ok := pc.pages[idx]
	if !ok {
		return
	}
	if pg.dirty {
		pc.logger.Debug().Int("page", idx).Msg("writing back evicted page")
		_ = pc.save(idx, pg)
	}
	delete(pc.pages, idx)
	pc.pool.Put(pg.data)
}

func (pc *PageCache) save(idx int, pg *page) error {
	off := idx * pc.pageSize
	n := min(pc.pageSize, pc.count-off)
	if n > 0 {
		if err := pc.content.Save(int64(off), 0, pg.data, n); err != nil {
			pc.fail(err)
			pc.logger.Warn().Err(err).Int("page", idx).Msg("page save failed")

			return err
		}
	}
	pg.dirty = false

	return nil
}

// probe loads the page holding pos when it is not resident, in case the
// content has grown past Count. It reports whether pos became readable.
func (pc *PageCache) probe(pos int) bool {
	if pc.shrunk || pos < 0 || pos >= rio.MaxOffset {
		return false
	}
	if _, ok := pc.pages[pos/pc.pageSize]; ok {
		return false
	}
	pc.page(pos / pc.pageSize)

	return pos < pc.count
}

func (pc *PageCache) Count() int {
	return pc.count
}

// SetCount sets the logical length. Shrinking behaves like Truncate
// without zeroing.
func (pc *PageCache) SetCount(n int) {
	n = max(n, 0)
	switch {
	case n < pc.count:
		pc.shrunk = true
	case n > pc.count:
		pc.extended = true
	}
	pc.count = n
}

// Truncate shrinks the logical length to n and zeroes resident bytes past
// it. The content is shortened on the next Flush when it supports it.
func (pc *PageCache) Truncate(n int) {
	n = max(n, 0)
	if n >= pc.count {
		return
	}

	for idx, pg := range pc.pages {
		off := idx * pc.pageSize
		switch {
		case off >= n:
			clear(pg.data)
			pg.dirty = false
		case off+pc.pageSize > n:
			clear(pg.data[n-off:])
		}
	}
	pc.count = n
	pc.shrunk = true
}

// NewPosition returns a cursor bounded by the addressable range.
func (pc *PageCache) NewPosition() *buffer.Position {
	return buffer.NewPosition(rio.MaxOffset)
}

func (pc *PageCache) AvailableForReading(p *buffer.Position) int {
	if avail := min(pc.count, p.Size) - p.Pos; avail > 0 {
		return avail
	}

	return 0
}

// AvailableForWriting is 0 for read-only content.
func (pc *PageCache) AvailableForWriting(p *buffer.Position) int {
	if !pc.content.Writable() {
		return 0
	}
	if avail := p.Size - p.Pos; avail > 0 {
		return avail
	}

	return 0
}

func (pc *PageCache) Get(p *buffer.Position) (byte, bool) {
	if pc.AvailableForReading(p) == 0 && (p.Pos >= p.Size || !pc.probe(p.Pos)) {
		return 0, false
	}

	pg := pc.page(p.Pos / pc.pageSize)
	if p.Pos >= pc.count {
		// the content ended before its length estimate
		return 0, false
	}
	b := pg.data[p.Pos%pc.pageSize]
	p.Pos++

	return b, true
}

func (pc *PageCache) Read(dst []byte, p *buffer.Position) int {
	if len(dst) == 0 {
		return 0
	}

	n := min(len(dst), pc.AvailableForReading(p))
	if n == 0 {
		if p.Pos >= p.Size || !pc.probe(p.Pos) {
			return buffer.NoData
		}
		n = min(len(dst), pc.AvailableForReading(p))
	}

	pc.copyOut(dst[:n], p.Pos)
	if rest := pc.count - p.Pos; rest < n {
		// the content ended before its length estimate
		if rest <= 0 {
			return buffer.NoData
		}
		n = rest
	}
	p.Pos += n

	return n
}

func (pc *PageCache) Put(v byte, p *buffer.Position) bool {
	if pc.AvailableForWriting(p) == 0 {
		return false
	}

	pg := pc.page(p.Pos / pc.pageSize)
	pg.data[p.Pos%pc.pageSize] = v
	pg.dirty = true
	p.Pos++
	pc.grow(p.Pos)

	return true
}

func (pc *PageCache) Write(src []byte, p *buffer.Position) int {
	n := min(len(src), pc.AvailableForWriting(p))
	if n == 0 {
		return 0
	}

	off := p.Pos
	for rest := src[:n]; len(rest) > 0; {
		pg := pc.page(off / pc.pageSize)
		c := copy(pg.data[off%pc.pageSize:], rest)
		pg.dirty = true
		rest = rest[c:]
		off += c
	}
	p.Pos += n
	pc.grow(p.Pos)

	return n
}

// grow extends Count to n after a write. Once written past the content's
// end, Count is never lowered by a short load.
func (pc *PageCache) grow(n int) {
	if n > pc.count {
		pc.count = n
		pc.extended = true
	}
}

func (pc *PageCache) Skip(n int64, p *buffer.Position) int64 {
	skipped := max(0, min(int64(pc.AvailableForReading(p)), n))
	p.Pos += int(skipped)

	return skipped
}

// ReadAt copies bytes at off without a cursor, up to Count.
func (pc *PageCache) ReadAt(dst []byte, off int) int {
	if off < 0 || off >= pc.count {
		return 0
	}

	n := min(len(dst), pc.count-off)
	pc.copyOut(dst[:n], off)

	return max(min(n, pc.count-off), 0)
}

func (pc *PageCache) copyOut(dst []byte, off int) {
	for len(dst) > 0 {
		pg := pc.page(off / pc.pageSize)
		c := copy(dst, pg.data[off%pc.pageSize:])
		dst = dst[c:]
		off += c
	}
}

// WriteBuffer writes Count bytes, or Count rounded up to whole pages.
// Count can drop while pages load when the content ends early.
func (pc *PageCache) WriteBuffer(w io.Writer, whole bool) error {
	size := func() int {
		if whole {
			return (pc.count + pc.pageSize - 1) / pc.pageSize * pc.pageSize
		}

		return pc.count
	}

	for off := 0; off < size(); {
		pg := pc.page(off / pc.pageSize)
		end := min(pc.pageSize, size()-off)
		if end <= 0 {
			break
		}
		if _, err := w.Write(pg.data[:end]); err != nil {
			return err
		}
		off += end
	}

	return nil
}

// Bytes returns a copy of the first Count bytes.
func (pc *PageCache) Bytes() []byte {
	out := make([]byte, pc.count)

	return out[:pc.ReadAt(out, 0)]
}

// Writable reports whether the content accepts saves.
func (pc *PageCache) Writable() bool {
	return pc.content.Writable()
}

// Snapshot copies the content into an in-memory paged buffer.
func (pc *PageCache) Snapshot() *buffer.PagedBuffer {
	b, err := buffer.NewPagedBufferFrom(pc.Bytes(), buffer.WithPageSize(pc.pageSize))
	if err != nil {
		panic(err) // page size was validated by the cache options
	}

	return b
}

// Flush saves every dirty page, oldest first, and shortens the content
// after a truncation when the content supports it.
func (pc *PageCache) Flush() error {
	var errList []error
	pc.resident.Each(func(idx int) {
		if pg, ok := pc.pages[idx]; ok && pg.dirty {
			if err := pc.save(idx, pg); err != nil {
				errList = append(errList, err)
			}
		}
	})

	if pc.shrunk {
		if t, ok := pc.content.(truncater); ok && pc.content.Writable() {
			if err := t.Truncate(int64(pc.count)); err != nil {
				errList = append(errList, err)
			} else {
				pc.shrunk = false
			}
		}
	}

	return errors.Join(errList...)
}

// Release drops every resident page without saving it.
func (pc *PageCache) Release() {
	for idx, pg := range pc.pages {
		pc.pool.Put(pg.data)
		delete(pc.pages, idx)
	}
	pc.resident.Reset()
}
