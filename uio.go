// Package uio provides byte-addressable random-access I/O over memory,
// files, memory-mapped files, file spans and re-openable streams.
//
// Every source is exposed through the same window interfaces (rio.Input,
// rio.Output and rio.IO): a cursor, a byte order and the primitive codec
// (fixed-width integers, floats, UTF-16 chars, modified UTF-8 strings and
// lines). Windows hand out bounded streams and child windows that either
// share the parent's cursor storage or work on an isolated snapshot.
//
// # Core Features
//
//   - Big- and little-endian primitives with per-call byte order overrides
//   - Growable paged in-memory storage with shared or isolated children
//   - Page-cached windows over files, mmap regions, spans and streams
//   - Bit-level readers and writers for fields of up to 24 bits
//   - Counting and re-openable stream adapters
//
// # Basic Usage
//
// Writing and reading an in-memory window:
//
//	w, _ := uio.NewIO()
//	_ = w.WriteUint32(0xCAFEBABE)
//	_ = w.WriteUTF("hello")
//	_, _ = w.Seek(0, io.SeekStart)
//	magic, _ := w.ReadUint32()
//	s, _ := w.ReadUTF()
//
// Random access over a file, paged through a bounded cache:
//
//	f, _ := uio.OpenFile("data.bin", false, content.WithMaxPages(8))
//	defer f.Close()
//	_, _ = f.Seek(1024, io.SeekStart)
//	v, _ := f.ReadFloat64Order(endian.LittleEndian)
//
// # Package Structure
//
// This package holds thin wrappers around the sub-packages for the common
// cases. Use rio, content, buffer, bitio and stream directly for full
// control.
package uio

import (
	"io"

	"github.com/arloliu/uio/bitio"
	"github.com/arloliu/uio/content"
	"github.com/arloliu/uio/rio"
	"github.com/arloliu/uio/stream"
)

// Window interfaces, re-exported for callers that only import uio.
type (
	Input  = rio.Input
	Output = rio.Output
	IO     = rio.IO
)

// NewIO creates an empty, growable in-memory window.
//
// Example:
//
//	w, err := uio.NewIO(rio.WithByteOrder(endian.LittleEndian), rio.WithPageSize(4096))
func NewIO(opts ...rio.Option) (*rio.ByteArrayIO, error) {
	return rio.NewByteArrayIO(opts...)
}

// NewIOFrom creates an in-memory window holding a copy of data, with the
// cursor at 0.
func NewIOFrom(data []byte, opts ...rio.Option) (*rio.ByteArrayIO, error) {
	return rio.NewByteArrayIOFrom(data, opts...)
}

// OpenFile opens name as a page-cached window.
//
// A writable file is created when missing, and dirty pages are written back
// on Flush, on eviction and on Close. A read-only window rejects writes with
// errs.ErrUnsupported.
//
// Parameters:
//   - name: The file path, resolved on the filesystem set by content.WithFs
//   - writable: Whether the window accepts writes
//   - opts: Cache and content options (see content.Option)
//
// Returns:
//   - *content.IO: The window. Closing it closes the file.
//   - error: An error if the file cannot be opened or an option is invalid.
func OpenFile(name string, writable bool, opts ...content.Option) (*content.IO, error) {
	c, err := content.OpenFile(name, writable, opts...)
	if err != nil {
		return nil, err
	}

	return openContent(c, opts)
}

// OpenMappedFile opens name read-only through a memory mapping.
func OpenMappedFile(name string, opts ...content.Option) (*content.IO, error) {
	c, err := content.OpenMappedFile(name, opts...)
	if err != nil {
		return nil, err
	}

	return openContent(c, opts)
}

// OpenSpannedFile opens the concatenation of spans of name as one window.
// Offset 0 of the window is the first byte of the first span.
//
// Example:
//
//	// bytes [0,10) followed by bytes [20,25) of the file
//	w, err := uio.OpenSpannedFile("data.bin", []content.Span{{0, 10}, {20, 5}})
func OpenSpannedFile(name string, spans []content.Span, opts ...content.Option) (*content.IO, error) {
	c, err := content.OpenSpannedFile(name, spans, opts...)
	if err != nil {
		return nil, err
	}

	return openContent(c, opts)
}

// OpenStream opens a read-only window over a stream of known length that
// open can produce again from the start. Seeking backwards re-opens the
// stream and skips forward.
func OpenStream(open stream.OpenFunc, length int64, opts ...content.Option) (*content.IO, error) {
	r, err := stream.NewReopenableReader(open, length)
	if err != nil {
		return nil, err
	}

	c, err := content.NewReaderContent(r, opts...)
	if err != nil {
		_ = r.Close()
		return nil, err
	}

	return openContent(c, opts)
}

// CacheReader opens a read-only window over a one-shot reader. Bytes are
// copied to a temporary file as they are first reached; the file is
// removed on Close.
func CacheReader(r io.Reader, opts ...content.Option) (*content.IO, error) {
	c, err := content.NewFileCachedStreamContent(r, opts...)
	if err != nil {
		return nil, err
	}

	return openContent(c, opts)
}

func openContent(c content.Content, opts []content.Option) (*content.IO, error) {
	w, err := content.NewIO(c, opts...)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	return w, nil
}

// NewBitReader creates an MSB-first bit reader over src.
func NewBitReader(src io.ByteReader) *bitio.Reader {
	return bitio.NewReader(src)
}

// NewBitWriter creates an MSB-first bit writer over dst.
//
// Available options:
//   - bitio.WithFillByte(b)
//   - bitio.WithInvertBitOrder(true|false)
//   - bitio.WithBitsPerWrite(n)
func NewBitWriter(dst io.ByteWriter, opts ...bitio.WriterOption) (*bitio.Writer, error) {
	return bitio.NewWriter(dst, opts...)
}
