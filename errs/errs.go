// Package errs defines the error taxonomy shared by all uio packages.
//
// Errors fall into four families:
//   - end-of-source: a required byte or region is permanently unavailable
//     (ErrEndOfSource, also matches io.EOF)
//   - unexpected end with partial count: a "fully" operation made progress
//     before failing (*UnexpectedEOFError, matches ErrUnexpectedEOF and
//     io.ErrUnexpectedEOF)
//   - illegal argument: invalid byte order, malformed span list, offset
//     beyond the addressable range (all match ErrIllegalArgument)
//   - unsupported operation: write against read-only content or window
//
// Callers should test with errors.Is / errors.As rather than comparing
// values directly, since most errors are wrapped with context.
package errs

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrEndOfSource reports that the source has no more bytes at the requested offset.
	ErrEndOfSource = &eofError{msg: "end of source"}

	// ErrUnexpectedEOF is the sentinel matched by every *UnexpectedEOFError.
	ErrUnexpectedEOF = errors.New("unexpected end of source")

	ErrIllegalArgument  = errors.New("illegal argument")
	ErrInvalidByteOrder = fmt.Errorf("%w: invalid byte order", ErrIllegalArgument)
	ErrIllegalSpan      = fmt.Errorf("%w: illegal span", ErrIllegalArgument)
	ErrOffsetTooLarge   = fmt.Errorf("%w: offset too large", ErrIllegalArgument)
	ErrMalformedUTF     = fmt.Errorf("%w: malformed modified UTF-8", ErrIllegalArgument)

	// ErrUnsupported reports an operation the receiver cannot perform,
	// typically a write against read-only content.
	ErrUnsupported = errors.New("unsupported operation")

	// ErrClosed reports use of a content or stream after Close.
	ErrClosed = errors.New("use of closed source")
)

// eofError is an end-of-source error that also satisfies errors.Is(err, io.EOF).
type eofError struct {
	msg string
}

func (e *eofError) Error() string { return e.msg }

func (e *eofError) Is(target error) bool {
	return target == io.EOF
}

// UnexpectedEOFError is returned when an operation that must transfer an
// exact number of bytes stops early. N holds the number of bytes that were
// transferred before the source ran out, so callers can recover partial
// frames or report precisely.
type UnexpectedEOFError struct {
	N int64
}

// NewUnexpectedEOF returns an *UnexpectedEOFError carrying n transferred bytes.
func NewUnexpectedEOF(n int64) *UnexpectedEOFError {
	return &UnexpectedEOFError{N: n}
}

func (e *UnexpectedEOFError) Error() string {
	return fmt.Sprintf("unexpected end of source after %d bytes", e.N)
}

// Is reports whether target is ErrUnexpectedEOF or io.ErrUnexpectedEOF.
func (e *UnexpectedEOFError) Is(target error) bool {
	return target == ErrUnexpectedEOF || target == io.ErrUnexpectedEOF
}

// PartialCount extracts the transferred byte count from an error chain
// containing an *UnexpectedEOFError. ok is false when there is none.
func PartialCount(err error) (n int64, ok bool) {
	var ue *UnexpectedEOFError
	if errors.As(err, &ue) {
		return ue.N, true
	}

	return 0, false
}
