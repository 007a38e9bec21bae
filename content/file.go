package content

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arloliu/uio/errs"
)

// FileContent is a Content over an afero file, addressed by file offset.
type FileContent struct {
	f        afero.File
	writable bool
	closed   bool
	logger   zerolog.Logger
}

var _ Content = (*FileContent)(nil)

// OpenFile opens name on the configured filesystem. A writable content is
// opened read-write and created if missing.
func OpenFile(name string, writable bool, opts ...Option) (*FileContent, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	flag := os.O_RDONLY
	if writable {
		flag = os.O_RDWR | os.O_CREATE
	}

	f, err := cfg.Fs.OpenFile(name, flag, 0o644)
	if err != nil {
		return nil, err
	}

	return &FileContent{f: f, writable: writable, logger: cfg.Logger}, nil
}

// NewFileContent wraps an open file. writable must match the mode f was
// opened with.
func NewFileContent(f afero.File, writable bool, opts ...Option) (*FileContent, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return &FileContent{f: f, writable: writable, logger: cfg.Logger}, nil
}

// Name returns the file name.
func (c *FileContent) Name() string {
	return c.f.Name()
}

func (c *FileContent) Load(offset int64, bpos int, buf []byte) (int, error) {
	if c.closed {
		return 0, errs.ErrClosed
	}
	if err := checkLoad(offset, bpos, buf); err != nil {
		return 0, err
	}
	if bpos == len(buf) {
		return 0, nil
	}

	n, err := c.f.ReadAt(buf[bpos:], offset)
	if n > 0 {
		return n, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return 0, errs.ErrEndOfSource
	}

	return 0, err
}

func (c *FileContent) Save(offset int64, bpos int, buf []byte, length int) error {
	if c.closed {
		return errs.ErrClosed
	}
	if !c.writable {
		return fmt.Errorf("%w: %s is read-only", errs.ErrUnsupported, c.f.Name())
	}
	if err := checkSave(offset, bpos, buf, length); err != nil {
		return err
	}

	_, err := c.f.WriteAt(buf[bpos:bpos+length], offset)

	return err
}

func (c *FileContent) Length() (int64, error) {
	if c.closed {
		return 0, errs.ErrClosed
	}

	info, err := c.f.Stat()
	if err != nil {
		return 0, err
	}

	return info.Size(), nil
}

// Truncate changes the file size.
func (c *FileContent) Truncate(size int64) error {
	if !c.writable {
		return fmt.Errorf("%w: %s is read-only", errs.ErrUnsupported, c.f.Name())
	}

	return c.f.Truncate(size)
}

// Sync commits the file to stable storage.
func (c *FileContent) Sync() error {
	return c.f.Sync()
}

func (c *FileContent) Writable() bool  { return c.writable }
func (c *FileContent) CanReload() bool { return true }
func (c *FileContent) IsOpen() bool    { return !c.closed }

func (c *FileContent) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	closeQuietly(c.logger, c.f, c.f.Name())

	return nil
}
