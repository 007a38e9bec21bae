package content

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/rs/zerolog"

	"github.com/arloliu/uio/errs"
)

// MappedFileContent is a read-only Content over a memory mapped file.
//
// Mapping needs a real descriptor, so the file is opened from the OS
// filesystem regardless of WithFs.
type MappedFileContent struct {
	f      *os.File
	data   mmap.MMap
	closed bool
	logger zerolog.Logger
}

var _ Content = (*MappedFileContent)(nil)

// OpenMappedFile maps name read-only. An empty file is valid and has no
// mapping.
func OpenMappedFile(name string, opts ...Option) (*MappedFileContent, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	c := &MappedFileContent{f: f, logger: cfg.Logger}
	if st.Size() == 0 {
		return c, nil
	}

	c.data, err = mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("map %s: %w", name, err)
	}

	return c, nil
}

// Bytes returns the mapping. It is valid until Close.
func (c *MappedFileContent) Bytes() []byte {
	return c.data
}

func (c *MappedFileContent) Load(offset int64, bpos int, buf []byte) (int, error) {
	if c.closed {
		return 0, errs.ErrClosed
	}
	if err := checkLoad(offset, bpos, buf); err != nil {
		return 0, err
	}
	if bpos == len(buf) {
		return 0, nil
	}
	if offset >= int64(len(c.data)) {
		return 0, errs.ErrEndOfSource
	}

	return copy(buf[bpos:], c.data[offset:]), nil
}

func (c *MappedFileContent) Save(int64, int, []byte, int) error {
	return fmt.Errorf("%w: mapped content is read-only", errs.ErrUnsupported)
}

func (c *MappedFileContent) Length() (int64, error) {
	if c.closed {
		return 0, errs.ErrClosed
	}

	return int64(len(c.data)), nil
}

func (c *MappedFileContent) Writable() bool  { return false }
func (c *MappedFileContent) CanReload() bool { return true }
func (c *MappedFileContent) IsOpen() bool    { return !c.closed }

func (c *MappedFileContent) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	if c.data != nil {
		if err := c.data.Unmap(); err != nil {
			c.logger.Warn().Err(err).Str("content", c.f.Name()).Msg("unmap failed")
		}
		c.data = nil
	}
	closeQuietly(c.logger, c.f, c.f.Name())

	return nil
}
