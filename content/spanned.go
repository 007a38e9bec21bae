package content

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arloliu/uio/errs"
	"github.com/arloliu/uio/rio"
)

// SpannedContent joins disjoint spans of a backing source into one
// logical address space. Logical offset 0 is the start of the first span.
type SpannedContent struct {
	backing  io.ReadWriteSeeker
	closer   io.Closer
	spans    []Span
	length   int64
	writable bool
	closed   bool
	logger   zerolog.Logger
}

var _ Content = (*SpannedContent)(nil)

// OpenSpannedFile opens name on the configured filesystem read-write, or
// read-only when it cannot be opened for writing.
func OpenSpannedFile(name string, spans []Span, opts ...Option) (*SpannedContent, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	writable := true
	f, err := cfg.Fs.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		writable = false
		if f, err = cfg.Fs.Open(name); err != nil {
			return nil, err
		}
	}

	c, err := spannedFile(f, spans, writable, cfg)
	if err != nil {
		closeQuietly(cfg.Logger, f, name)
		return nil, err
	}

	return c, nil
}

// NewSpannedFileContent creates a spanned content over an open file. The
// content owns f and closes it on Close.
func NewSpannedFileContent(f afero.File, spans []Span, opts ...Option) (*SpannedContent, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return spannedFile(f, spans, true, cfg)
}

func spannedFile(f afero.File, spans []Span, writable bool, cfg *Config) (*SpannedContent, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	return newSpanned(f, f, info.Size(), spans, writable, cfg)
}

// NewSpannedIOContent creates a spanned content over a window. The content
// owns w and closes it on Close.
func NewSpannedIOContent(w rio.IO, spans []Span, opts ...Option) (*SpannedContent, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	n, err := w.Length()
	if err != nil {
		return nil, err
	}

	return newSpanned(w, w, n, spans, true, cfg)
}

func newSpanned(backing io.ReadWriteSeeker, closer io.Closer, backingLen int64, spans []Span, writable bool, cfg *Config) (*SpannedContent, error) {
	if err := ValidateSpans(spans, backingLen); err != nil {
		return nil, err
	}

	var total int64
	for _, s := range spans {
		total += s.Length
	}

	return &SpannedContent{
		backing:  backing,
		closer:   closer,
		spans:    slices.Clone(spans),
		length:   total,
		writable: writable,
		logger:   cfg.Logger,
	}, nil
}

// ValidateSpans checks that every span is non-negative and ends at or
// before backingLen.
func ValidateSpans(spans []Span, backingLen int64) error {
	for i, s := range spans {
		if s.Offset < 0 || s.Length < 0 || s.Offset > backingLen || s.Length > backingLen-s.Offset {
			return fmt.Errorf("%w: span %d %s outside backing length %d", errs.ErrIllegalSpan, i, s, backingLen)
		}
	}

	return nil
}

// Spans returns a copy of the span list.
func (c *SpannedContent) Spans() []Span {
	return slices.Clone(c.spans)
}

// locate finds the span holding a logical offset and the offset inside it.
func (c *SpannedContent) locate(offset int64) (Span, int64, error) {
	if offset < 0 {
		return Span{}, 0, fmt.Errorf("%w: negative offset %d", errs.ErrIllegalArgument, offset)
	}

	rest := offset
	for _, s := range c.spans {
		if rest < s.Length {
			return s, rest, nil
		}
		rest -= s.Length
	}

	return Span{}, 0, errs.ErrEndOfSource
}

// Translate maps a logical offset to its backing offset.
func (c *SpannedContent) Translate(offset int64) (int64, error) {
	s, within, err := c.locate(offset)
	if err != nil {
		return 0, err
	}

	return s.Offset + within, nil
}

// seek positions the backing at a logical offset and returns the number
// of bytes left in the span.
func (c *SpannedContent) seek(offset int64) (int64, error) {
	s, within, err := c.locate(offset)
	if err != nil {
		return 0, err
	}
	if _, err := c.backing.Seek(s.Offset+within, io.SeekStart); err != nil {
		return 0, err
	}

	return s.Length - within, nil
}

// Load reads across span boundaries until buf is full or the content
// ends. A failure after some bytes were read ends the loop and the partial
// count is returned without the error.
func (c *SpannedContent) Load(offset int64, bpos int, buf []byte) (int, error) {
	if c.closed {
		return 0, errs.ErrClosed
	}
	if err := checkLoad(offset, bpos, buf); err != nil {
		return 0, err
	}

	read := 0
	for bpos+read < len(buf) {
		avail, err := c.seek(offset + int64(read))
		if err != nil {
			if read == 0 {
				return 0, err
			}

			break
		}

		dst := buf[bpos+read:]
		n := int(min(avail, int64(len(dst))))
		r, err := io.ReadFull(c.backing, dst[:n])
		read += r
		if err != nil {
			if read == 0 {
				return 0, err
			}

			break
		}
	}

	return read, nil
}

// Save writes across span boundaries. Running out of spans fails with an
// *errs.UnexpectedEOFError carrying the bytes written.
func (c *SpannedContent) Save(offset int64, bpos int, buf []byte, length int) error {
	if c.closed {
		return errs.ErrClosed
	}
	if !c.writable {
		return fmt.Errorf("%w: spanned content is read-only", errs.ErrUnsupported)
	}
	if err := checkSave(offset, bpos, buf, length); err != nil {
		return err
	}

	written := 0
	for written < length {
		avail, err := c.seek(offset + int64(written))
		if err != nil {
			return fmt.Errorf("save at %d: %w", offset, errs.NewUnexpectedEOF(int64(written)))
		}

		n := int(min(avail, int64(length-written)))
		w, err := c.backing.Write(buf[bpos+written : bpos+written+n])
		written += w
		if err != nil {
			return fmt.Errorf("save at %d: %w: %w", offset, err, errs.NewUnexpectedEOF(int64(written)))
		}
	}

	return nil
}

func (c *SpannedContent) Length() (int64, error) {
	return c.length, nil
}

func (c *SpannedContent) Writable() bool  { return c.writable }
func (c *SpannedContent) CanReload() bool { return true }
func (c *SpannedContent) IsOpen() bool    { return !c.closed }

func (c *SpannedContent) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	closeQuietly(c.logger, c.closer, "spanned")

	return nil
}
