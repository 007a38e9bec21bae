package content

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/arloliu/uio/errs"
	"github.com/arloliu/uio/stream"
)

// ReaderContent is a read-only Content over a reopenable forward-only
// source. Loading behind the current position reopens the source.
type ReaderContent struct {
	r      *stream.ReopenableReader
	closed bool
	logger zerolog.Logger
}

var _ Content = (*ReaderContent)(nil)

// NewReaderContent wraps r. The content owns r and closes it on Close.
func NewReaderContent(r *stream.ReopenableReader, opts ...Option) (*ReaderContent, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil reader", errs.ErrIllegalArgument)
	}

	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return &ReaderContent{r: r, logger: cfg.Logger}, nil
}

func (c *ReaderContent) Load(offset int64, bpos int, buf []byte) (int, error) {
	if c.closed {
		return 0, errs.ErrClosed
	}
	if err := checkLoad(offset, bpos, buf); err != nil {
		return 0, err
	}
	if bpos == len(buf) {
		return 0, nil
	}

	if offset < c.r.Position() {
		c.logger.Debug().Int64("from", c.r.Position()).Int64("to", offset).Msg("reopening source")
	}

	pos, err := c.r.Seek(offset, io.SeekStart)
	if err != nil {
		return 0, err
	}
	if pos < offset {
		return 0, errs.ErrEndOfSource
	}

	n, err := io.ReadFull(c.r, buf[bpos:])
	if n > 0 {
		return n, nil
	}
	if errors.Is(err, io.EOF) {
		return 0, errs.ErrEndOfSource
	}

	return 0, err
}

func (c *ReaderContent) Save(int64, int, []byte, int) error {
	return fmt.Errorf("%w: stream content is read-only", errs.ErrUnsupported)
}

func (c *ReaderContent) Length() (int64, error) {
	if c.closed {
		return 0, errs.ErrClosed
	}

	return c.r.Length(), nil
}

func (c *ReaderContent) Writable() bool  { return false }
func (c *ReaderContent) CanReload() bool { return true }
func (c *ReaderContent) IsOpen() bool    { return !c.closed }

func (c *ReaderContent) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	closeQuietly(c.logger, c.r, "reader")

	return nil
}
