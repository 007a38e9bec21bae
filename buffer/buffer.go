// Package buffer provides the byte storage engine of uio: a cursor type,
// the Buffer contract, a fixed-size implementation and a growable paged
// implementation with positioned stream views.
//
// A Buffer owns storage and a logical length (Count) but no cursor. Every
// view carries its own *Position, so any number of views can address one
// Buffer independently:
//
//	buf := buffer.NewPagedBuffer()
//	w := buf.NewPosition()
//	buf.Write([]byte("hello"), w)
//
//	r := buf.NewPosition()
//	dst := make([]byte, 5)
//	n := buf.Read(dst, r) // n == 5, r.Pos == 5
//
// # Short reads
//
// Read copies as many bytes as are available and returns -1 only when none
// are. A short positive count is a valid result; callers that need an exact
// amount loop until satisfied.
//
// # Thread Safety
//
// Single-byte and slice operations are not synchronized. Bulk transfers
// through ReadInto and WriteFrom hold the buffer's lock for the whole
// transfer, so concurrent bulk transfers on one buffer are serialized.
package buffer

import (
	"errors"
	"io"
	"sync"

	"github.com/arloliu/uio/errs"
	"github.com/arloliu/uio/internal/pool"
)

// NoData is returned by Read when no byte is available at the position.
const NoData = -1

// Buffer is the backing storage contract shared by every uio window.
//
// The embedded sync.Locker is the transfer lock taken by ReadInto and WriteFrom.
type Buffer interface {
	sync.Locker

	// Get reads one byte and advances p. ok is false when nothing is available.
	Get(p *Position) (b byte, ok bool)
	// Read copies up to len(dst) bytes and advances p by the amount copied.
	// It returns NoData when no byte is available.
	Read(dst []byte, p *Position) int
	// Put writes one byte at p, advances p and extends Count to at least p.Pos.
	// It returns false when the buffer has no room at p.
	Put(b byte, p *Position) bool
	// Write copies as much of src as fits at p and returns the amount written.
	Write(src []byte, p *Position) int
	// Skip advances p by at most n bytes, clamped to AvailableForReading.
	Skip(n int64, p *Position) int64

	AvailableForReading(p *Position) int
	AvailableForWriting(p *Position) int

	// Count returns the logical length (high-water mark of writes).
	Count() int
	// NewPosition creates a cursor spanning the addressable range of the buffer.
	NewPosition() *Position
	// WriteBuffer writes the whole storage (whole == true) or Count bytes to w.
	WriteBuffer(w io.Writer, whole bool) error
}

// Storage is a Buffer whose logical length can be set directly. It is the
// backing a random-access window needs.
type Storage interface {
	Buffer

	// SetCount sets Count, growing the storage when n is larger.
	SetCount(n int)
	// Truncate shrinks Count to n and zeroes the bytes past it.
	Truncate(n int)
	// ReadAt copies bytes at off without a cursor and returns the amount copied.
	ReadAt(dst []byte, off int) int
	PageSize() int
	// Writable reports whether Put and Write can store bytes at all.
	Writable() bool
	// Snapshot returns an independent in-memory copy of the content.
	Snapshot() *PagedBuffer
	// Release drops the storage's pages.
	Release()
}

// Failer is implemented by buffers that load or save bytes elsewhere and can
// fail doing so. Err returns and clears the first failure since the last call.
type Failer interface {
	Err() error
}

// Failure returns the pending failure of b, or nil when b cannot fail.
func Failure(b Buffer) error {
	if f, ok := b.(Failer); ok {
		return f.Err()
	}

	return nil
}

// availableForReading implements max(0, min(count, p.Size) - p.Pos).
func availableForReading(count int, p *Position) int {
	limit := min(count, p.Size)
	if avail := limit - p.Pos; avail > 0 {
		return avail
	}

	return 0
}

// ReadInto copies up to n bytes from b at p into dst, chunked through a
// pooled 8KiB scratch buffer. A negative n copies until b has no more data.
//
// The transfer holds b's lock. It returns errs.ErrEndOfSource when n != 0
// and no byte was available, and the failure of a Failer buffer as soon as
// one is pending. On a dst write error the position is rewound
// to just past the last byte dst accepted.
func ReadInto(b Buffer, dst io.Writer, n int64, p *Position) (int64, error) {
	if n == 0 {
		return 0, nil
	}

	b.Lock()
	defer b.Unlock()

	chunk := pool.GetTransferBuffer()
	defer pool.PutTransferBuffer(chunk)

	var total int64
	for n < 0 || total < n {
		want := len(chunk)
		if n >= 0 && n-total < int64(want) {
			want = int(n - total)
		}

		r := b.Read(chunk[:want], p)
		if err := Failure(b); err != nil {
			p.Pos -= max(r, 0)
			return total, err
		}
		if r <= 0 {
			break
		}

		w, err := dst.Write(chunk[:r])
		total += int64(w)
		if err != nil {
			p.Pos -= r - w
			return total, err
		}
		if w < r {
			p.Pos -= r - w
			return total, io.ErrShortWrite
		}
	}

	if total == 0 {
		return 0, errs.ErrEndOfSource
	}

	return total, nil
}

// WriteFrom copies up to n bytes from src into b at p, chunked through a
// pooled 8KiB scratch buffer. A negative n copies until src reports io.EOF.
//
// The transfer holds b's lock. io.EOF from src ends the transfer without
// error; io.ErrShortWrite is returned when b runs out of room.
func WriteFrom(b Buffer, src io.Reader, n int64, p *Position) (int64, error) {
	if n == 0 {
		return 0, nil
	}

	b.Lock()
	defer b.Unlock()

	chunk := pool.GetTransferBuffer()
	defer pool.PutTransferBuffer(chunk)

	var total int64
	for n < 0 || total < n {
		want := len(chunk)
		if n >= 0 && n-total < int64(want) {
			want = int(n - total)
		}

		r, rerr := src.Read(chunk[:want])
		if r > 0 {
			w := b.Write(chunk[:r], p)
			total += int64(w)
			if err := Failure(b); err != nil {
				return total, err
			}
			if w < r {
				return total, io.ErrShortWrite
			}
		}

		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				break
			}

			return total, rerr
		}
	}

	return total, nil
}
