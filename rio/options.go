package rio

import (
	"github.com/arloliu/uio/buffer"
	"github.com/arloliu/uio/endian"
	"github.com/arloliu/uio/errs"
	"github.com/arloliu/uio/internal/options"
)

// Config holds the construction parameters of a window.
type Config struct {
	ByteOrder endian.ByteOrder
	// BufferOptions configure the storage allocated by NewByteArrayIO
	// and NewByteArrayIOFrom.
	BufferOptions []buffer.PagedBufferOption
}

// Option configures a window.
type Option = options.Option[*Config]

func defaultConfig() *Config {
	return &Config{ByteOrder: endian.BigEndian}
}

// WithByteOrder sets the default byte order. It is big-endian unless set.
func WithByteOrder(order endian.ByteOrder) Option {
	return options.New(func(c *Config) error {
		if !order.Valid() {
			return errs.ErrInvalidByteOrder
		}
		c.ByteOrder = order

		return nil
	})
}

// WithPageSize sets the page size of newly allocated storage.
func WithPageSize(size int) Option {
	return options.NoError(func(c *Config) {
		c.BufferOptions = append(c.BufferOptions, buffer.WithPageSize(size))
	})
}
