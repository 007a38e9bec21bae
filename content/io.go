package content

import (
	"github.com/rs/zerolog"

	"github.com/arloliu/uio/rio"
)

// IO is a random-access window over a Content, backed by a PageCache.
//
// Children created from an IO share its cache. Closing the IO flushes the
// cache, closes the content and invalidates the children. Content failures
// hit while loading or saving pages are returned by the call that hit them,
// including the primitive decoders and streams.
type IO struct {
	*rio.ByteArrayIO

	cache   *PageCache
	content Content
	closed  bool
	logger  zerolog.Logger
}

var _ rio.IO = (*IO)(nil)

// NewIO opens a window over c. The IO owns c and closes it on Close.
func NewIO(c Content, opts ...Option) (*IO, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	cache, err := newPageCache(c, cfg)
	if err != nil {
		return nil, err
	}

	w, err := rio.NewByteArrayIOWindow(cache, 0, 0, rio.WithByteOrder(cfg.ByteOrder))
	if err != nil {
		return nil, err
	}

	return &IO{
		ByteArrayIO: w,
		cache:       cache,
		content:     c,
		logger:      cfg.Logger,
	}, nil
}

// Cache returns the page cache behind the window.
func (w *IO) Cache() *PageCache {
	return w.cache
}

// Content returns the content behind the window.
func (w *IO) Content() Content {
	return w.content
}

// Flush saves every dirty page to the content.
func (w *IO) Flush() error {
	return w.cache.Flush()
}

// Close flushes the cache and closes the content. Failures are logged and
// Close always returns nil.
func (w *IO) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.cache.Flush(); err != nil {
		w.logger.Warn().Err(err).Msg("flush on close failed")
	}
	_ = w.ByteArrayIO.Close()
	w.cache.Release()
	closeQuietly(w.logger, w.content, "io")

	return nil
}
