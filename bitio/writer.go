package bitio

import (
	"fmt"
	"io"

	"github.com/arloliu/uio/errs"
	"github.com/arloliu/uio/internal/options"
)

// WriterConfig holds the settings of a Writer.
type WriterConfig struct {
	FillByte       byte
	InvertBitOrder bool
	BitsPerWrite   int
}

// WriterOption configures a Writer.
type WriterOption = options.Option[*WriterConfig]

// WithFillByte sets the byte whose leading bits pad the last partial byte
// on Flush and SkipToByteBoundary. Default 0.
func WithFillByte(b byte) WriterOption {
	return options.NoError(func(c *WriterConfig) {
		c.FillByte = b
	})
}

// WithInvertBitOrder reverses the bit order of every emitted byte, for
// formats that store bits least-significant first.
func WithInvertBitOrder(invert bool) WriterOption {
	return options.NoError(func(c *WriterConfig) {
		c.InvertBitOrder = invert
	})
}

// WithBitsPerWrite sets how many bits WriteByte writes. Default 8.
func WithBitsPerWrite(n int) WriterOption {
	return options.New(func(c *WriterConfig) error {
		if n < 1 || n > MaxBits {
			return fmt.Errorf("%w: bits per write %d", errs.ErrIllegalArgument, n)
		}
		c.BitsPerWrite = n

		return nil
	})
}

// flusher is implemented by sinks that buffer output.
type flusher interface {
	Flush() error
}

// Writer packs bit fields into bytes written to an io.ByteWriter.
//
// A complete byte stays buffered until the next bit arrives, so Flush must
// be called after the last field.
type Writer struct {
	dst      io.ByteWriter
	bitBuf   uint32
	bitCount int
	written  int64
	cfg      WriterConfig
}

var (
	_ io.ByteWriter = (*Writer)(nil)
	_ io.Writer     = (*Writer)(nil)
)

// NewWriter creates a Writer over dst.
func NewWriter(dst io.ByteWriter, opts ...WriterOption) (*Writer, error) {
	cfg := WriterConfig{BitsPerWrite: 8}
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	return &Writer{dst: dst, cfg: cfg}, nil
}

// WriteBits appends the low n bits of v. Panics if n is outside [0, MaxBits].
func (w *Writer) WriteBits(v uint32, n int) error {
	checkBits(n)
	if n == 0 {
		return nil
	}

	w.bitBuf = w.bitBuf<<n | v&Mask[n]
	w.bitCount += n

	return w.emit()
}

// WriteByte writes the low BitsPerWrite bits of c.
func (w *Writer) WriteByte(c byte) error {
	return w.WriteBits(uint32(c), w.cfg.BitsPerWrite)
}

// Write writes every byte of p through WriteByte.
func (w *Writer) Write(p []byte) (int, error) {
	for i, c := range p {
		if err := w.WriteByte(c); err != nil {
			return i, err
		}
	}

	return len(p), nil
}

// emit writes every complete byte while more than 8 bits are buffered.
func (w *Writer) emit() error {
	for w.bitCount > 8 {
		c := byte(w.bitBuf << (32 - w.bitCount) >> 24)
		w.bitCount -= 8
		if w.cfg.InvertBitOrder {
			c = flipTable[c]
		}
		if err := w.dst.WriteByte(c); err != nil {
			return err
		}
		w.written++
	}

	return nil
}

// SkipToByteBoundary pads the pending partial byte with the fill byte,
// writes it, and clears the accumulator.
func (w *Writer) SkipToByteBoundary() error {
	if err := w.emit(); err != nil {
		return err
	}

	var err error
	if w.bitCount > 0 {
		err = w.WriteBits(uint32(w.cfg.FillByte), 8)
	}
	w.bitBuf = 0
	w.bitCount = 0

	return err
}

// Flush behaves like SkipToByteBoundary and then flushes the sink if it
// has a Flush method.
func (w *Writer) Flush() error {
	if err := w.SkipToByteBoundary(); err != nil {
		return err
	}
	if f, ok := w.dst.(flusher); ok {
		return f.Flush()
	}

	return nil
}

// BitCount returns the number of buffered bits not yet written.
func (w *Writer) BitCount() int {
	return w.bitCount
}

// BytesWritten returns the number of bytes emitted to the sink.
func (w *Writer) BytesWritten() int64 {
	return w.written
}

// FillByte returns the padding byte.
func (w *Writer) FillByte() byte {
	return w.cfg.FillByte
}
