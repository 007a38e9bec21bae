package content

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arloliu/uio/errs"
)

// FileCachedStreamContent makes a forward-only reader randomly
// addressable by copying it into a temp file as far as loads require.
//
// The temp file only grows by appending. Until the upstream reader is
// exhausted, Length is an estimate.
type FileCachedStreamContent struct {
	upstream  io.Reader
	fs        afero.Fs
	tmp       afero.File
	cached    int64
	exhausted bool
	closed    bool
	logger    zerolog.Logger
}

var _ Content = (*FileCachedStreamContent)(nil)

// NewFileCachedStreamContent creates the temp file on the configured
// filesystem. If r implements io.Closer it is closed with the content.
func NewFileCachedStreamContent(r io.Reader, opts ...Option) (*FileCachedStreamContent, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil reader", errs.ErrIllegalArgument)
	}

	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	tmp, err := afero.TempFile(cfg.Fs, cfg.TempDir, "uio-cache-*")
	if err != nil {
		return nil, err
	}
	cfg.Logger.Debug().Str("path", tmp.Name()).Msg("created stream cache")

	return &FileCachedStreamContent{
		upstream: r,
		fs:       cfg.Fs,
		tmp:      tmp,
		logger:   cfg.Logger,
	}, nil
}

// Cached returns the number of bytes copied to the temp file so far.
func (c *FileCachedStreamContent) Cached() int64 {
	return c.cached
}

// Exhausted reports whether the upstream reader has ended.
func (c *FileCachedStreamContent) Exhausted() bool {
	return c.exhausted
}

// TempName returns the path of the temp file.
func (c *FileCachedStreamContent) TempName() string {
	return c.tmp.Name()
}

// fill copies upstream bytes to the temp file until it holds end bytes
// or the upstream ends.
func (c *FileCachedStreamContent) fill(end int64) error {
	if c.exhausted || c.cached >= end {
		return nil
	}

	if _, err := c.tmp.Seek(c.cached, io.SeekStart); err != nil {
		return err
	}

	n, err := io.CopyN(c.tmp, c.upstream, end-c.cached)
	c.cached += n
	if errors.Is(err, io.EOF) {
		c.exhausted = true
		return nil
	}

	return err
}

func (c *FileCachedStreamContent) Load(offset int64, bpos int, buf []byte) (int, error) {
	if c.closed {
		return 0, errs.ErrClosed
	}
	if err := checkLoad(offset, bpos, buf); err != nil {
		return 0, err
	}
	if bpos == len(buf) {
		return 0, nil
	}

	if err := c.fill(offset + int64(len(buf)-bpos)); err != nil {
		return 0, err
	}
	if offset >= c.cached {
		return 0, errs.ErrEndOfSource
	}

	n := int(min(c.cached-offset, int64(len(buf)-bpos)))
	r, err := c.tmp.ReadAt(buf[bpos:bpos+n], offset)
	if r < n {
		return r, err
	}

	return r, nil
}

func (c *FileCachedStreamContent) Save(int64, int, []byte, int) error {
	return fmt.Errorf("%w: cached stream content is read-only", errs.ErrUnsupported)
}

// Length returns the exact length once the upstream is exhausted, and the
// cached size plus the upstream's Available estimate before that.
func (c *FileCachedStreamContent) Length() (int64, error) {
	if c.closed {
		return 0, errs.ErrClosed
	}
	if c.exhausted {
		return c.cached, nil
	}

	n := c.cached
	if a, ok := c.upstream.(availabler); ok {
		n += int64(max(a.Available(), 0))
	}

	return n, nil
}

func (c *FileCachedStreamContent) Writable() bool  { return false }
func (c *FileCachedStreamContent) CanReload() bool { return true }
func (c *FileCachedStreamContent) IsOpen() bool    { return !c.closed }

// Close closes the upstream reader and removes the temp file.
func (c *FileCachedStreamContent) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	if closer, ok := c.upstream.(io.Closer); ok {
		closeQuietly(c.logger, closer, "upstream")
	}

	name := c.tmp.Name()
	closeQuietly(c.logger, c.tmp, name)
	if err := c.fs.Remove(name); err != nil {
		c.logger.Warn().Err(err).Str("path", name).Msg("remove stream cache failed")
	} else {
		c.logger.Debug().Str("path", name).Msg("removed stream cache")
	}

	return nil
}
