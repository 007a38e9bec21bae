package content

import (
	"errors"
	"io"

	"github.com/arloliu/uio/errs"
	"github.com/arloliu/uio/internal/hash"
	"github.com/arloliu/uio/internal/pool"
)

// Sum64 returns the xxHash64 of the whole content. Mapped files are hashed
// in place; other contents are loaded in 8KiB chunks.
func Sum64(c Content) (uint64, error) {
	if m, ok := c.(*MappedFileContent); ok {
		if m.closed {
			return 0, errs.ErrClosed
		}

		return hash.Sum64(m.Bytes()), nil
	}

	chunk := pool.GetTransferBuffer()
	defer pool.PutTransferBuffer(chunk)

	d := hash.NewDigest()
	if _, err := d.Consume(&loader{c: c}, chunk); err != nil {
		return 0, err
	}

	return d.Sum64(), nil
}

// loader reads a Content front to back through Load.
type loader struct {
	c   Content
	off int64
}

func (l *loader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	n, err := l.c.Load(l.off, 0, p)
	n = max(n, 0)
	l.off += int64(n)
	switch {
	case err != nil && !errors.Is(err, errs.ErrEndOfSource):
		return n, err
	case n > 0:
		return n, nil
	default:
		return 0, io.EOF
	}
}
