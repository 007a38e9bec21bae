package rio

import (
	"fmt"
	"io"

	"github.com/arloliu/uio/buffer"
	"github.com/arloliu/uio/errs"
)

func positioner(s io.Reader) (buffer.Positioner, error) {
	p, ok := s.(buffer.Positioner)
	if !ok {
		return nil, fmt.Errorf("%w: stream %T has no position", errs.ErrUnsupported, s)
	}

	return p, nil
}

// ChildPosition returns the window-relative position of a stream produced
// by this module.
func ChildPosition(s io.Reader) (int64, error) {
	p, err := positioner(s)
	if err != nil {
		return -1, err
	}

	return p.Position(), nil
}

// SetChildPosition moves a stream produced by this module.
func SetChildPosition(s io.Reader, pos int64) error {
	p, err := positioner(s)
	if err != nil {
		return err
	}

	return p.SetPosition(pos)
}

// ChildOffset returns the origin of a stream produced by this module.
func ChildOffset(s io.Reader) (int64, error) {
	p, err := positioner(s)
	if err != nil {
		return -1, err
	}

	return p.Offset(), nil
}
