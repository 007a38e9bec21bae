package content

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arloliu/uio/buffer"
	"github.com/arloliu/uio/endian"
	"github.com/arloliu/uio/errs"
	"github.com/arloliu/uio/internal/options"
)

// DefaultMaxPages is the default number of resident pages of an IO.
const DefaultMaxPages = 16

// Config holds the settings shared by the content constructors and NewIO.
type Config struct {
	// Logger receives close failures, reloads and page write-backs.
	Logger zerolog.Logger
	// PageSize is the page size of an IO.
	PageSize int
	// MaxPages is the number of pages an IO keeps resident.
	MaxPages int
	// Fs is the filesystem used to open files and create temp files.
	Fs afero.Fs
	// TempDir is the directory of stream cache files. Empty means the
	// system default.
	TempDir string
	// ByteOrder is the default byte order of an IO.
	ByteOrder endian.ByteOrder
}

// Option configures a content constructor or NewIO.
type Option = options.Option[*Config]

func defaultConfig() *Config {
	return &Config{
		Logger:    zerolog.Nop(),
		PageSize:  buffer.DefaultPageSize,
		MaxPages:  DefaultMaxPages,
		Fs:        afero.NewOsFs(),
		ByteOrder: endian.BigEndian,
	}
}

func newConfig(opts []Option) (*Config, error) {
	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Options bundles opts into a single Option that applies them in order and
// stops at the first one that fails.
func Options(opts ...Option) Option {
	return options.Group(opts...)
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return options.NoError(func(c *Config) {
		c.Logger = logger
	})
}

// WithPageSize sets the page size of an IO.
func WithPageSize(size int) Option {
	return options.New(func(c *Config) error {
		if size <= 0 {
			return fmt.Errorf("%w: page size %d", errs.ErrIllegalArgument, size)
		}
		c.PageSize = size

		return nil
	})
}

// WithMaxPages sets how many pages an IO keeps resident.
func WithMaxPages(n int) Option {
	return options.New(func(c *Config) error {
		if n <= 0 {
			return fmt.Errorf("%w: max pages %d", errs.ErrIllegalArgument, n)
		}
		c.MaxPages = n

		return nil
	})
}

// WithFs sets the filesystem. The default is the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return options.New(func(c *Config) error {
		if fs == nil {
			return fmt.Errorf("%w: nil filesystem", errs.ErrIllegalArgument)
		}
		c.Fs = fs

		return nil
	})
}

// WithTempDir sets the directory of stream cache files.
func WithTempDir(dir string) Option {
	return options.NoError(func(c *Config) {
		c.TempDir = dir
	})
}

// WithByteOrder sets the default byte order of an IO.
func WithByteOrder(order endian.ByteOrder) Option {
	return options.New(func(c *Config) error {
		if !order.Valid() {
			return fmt.Errorf("%w: %s", errs.ErrInvalidByteOrder, order)
		}
		c.ByteOrder = order

		return nil
	})
}
