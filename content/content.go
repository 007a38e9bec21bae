// Package content adapts files, memory mapped files, reopenable streams and
// forward-only streams to one load/save contract, and presents any of them
// as a paged random-access window.
//
// # Content
//
// A Content is addressed by logical offset. Load fills buf[bpos:] from an
// offset and returns how many bytes it placed; a short count is a valid
// result and (0, errs.ErrEndOfSource) means the offset is past the end.
// Save writes buf[bpos:bpos+length] at an offset. Close is best-effort: it
// always returns nil and reports failures through the configured logger.
//
// # Spanning
//
// SpannedContent joins disjoint Spans of a file or window into one logical
// address space:
//
//	spans := []content.Span{{Offset: 0, Length: 10}, {Offset: 20, Length: 5}}
//	c, _ := content.NewSpannedFileContent(f, spans)
//	off, _ := c.Translate(12) // 22
//
// # Windows
//
// NewIO loads a Content page by page into a rio.IO window. At most
// MaxPages pages are resident; the oldest page is evicted first, and dirty
// pages are saved back before they are dropped.
package content

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/arloliu/uio/errs"
)

// Content is a byte source addressed by logical offset.
type Content interface {
	// Load fills buf[bpos:] starting at offset and returns the number of
	// bytes placed. It returns errs.ErrEndOfSource when nothing is
	// available at offset.
	Load(offset int64, bpos int, buf []byte) (int, error)
	// Save writes buf[bpos:bpos+length] at offset.
	Save(offset int64, bpos int, buf []byte, length int) error
	// Length returns the logical length, which may be an estimate.
	Length() (int64, error)
	// Writable reports whether Save is supported.
	Writable() bool
	// CanReload reports whether Load may be called again for an offset
	// that was already loaded.
	CanReload() bool
	IsOpen() bool
	// Close releases the content. It always returns nil.
	Close() error
}

// truncater is implemented by contents whose length can be reduced.
type truncater interface {
	Truncate(size int64) error
}

// availabler is implemented by readers that can estimate how many bytes
// can be read without blocking.
type availabler interface {
	Available() int
}

// Span is one contiguous byte range of a backing source.
type Span struct {
	Offset int64
	Length int64
}

// End returns the offset just past the span.
func (s Span) End() int64 {
	return s.Offset + s.Length
}

func (s Span) String() string {
	return fmt.Sprintf("[%d, %d)", s.Offset, s.End())
}

func checkLoad(offset int64, bpos int, buf []byte) error {
	if offset < 0 {
		return fmt.Errorf("%w: negative offset %d", errs.ErrIllegalArgument, offset)
	}
	if bpos < 0 || bpos > len(buf) {
		return fmt.Errorf("%w: buffer offset %d out of [0, %d]", errs.ErrIllegalArgument, bpos, len(buf))
	}

	return nil
}

func checkSave(offset int64, bpos int, buf []byte, length int) error {
	if offset < 0 {
		return fmt.Errorf("%w: negative offset %d", errs.ErrIllegalArgument, offset)
	}
	if bpos < 0 || length < 0 || bpos > len(buf)-length {
		return fmt.Errorf("%w: range (%d, %d) outside buffer of %d", errs.ErrIllegalArgument, bpos, length, len(buf))
	}

	return nil
}

// closeQuietly closes c and logs a failure instead of returning it.
func closeQuietly(logger zerolog.Logger, c io.Closer, what string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logger.Warn().Err(err).Str("content", what).Msg("close failed")
	}
}
