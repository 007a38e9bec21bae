// Package dump prints fixed-width hexadecimal values and canonical hex
// dumps of byte regions.
package dump

import (
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/uio/internal/pool"
)

// DefaultWidth is the number of bytes per Region line.
const DefaultWidth = 16

const hexDigits = "0123456789abcdef"

// Printer writes zero-padded hexadecimal values. The first write error is
// kept and later calls do nothing.
type Printer struct {
	w   io.Writer
	err error
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Err returns the first write error.
func (p *Printer) Err() error {
	return p.err
}

func (p *Printer) hex(v uint64, digits int) {
	if p.err != nil {
		return
	}

	var b [16]byte
	for i := digits - 1; i >= 0; i-- {
		b[i] = hexDigits[v&0xF]
		v >>= 4
	}
	_, p.err = p.w.Write(b[:digits])
}

// Hex8 writes v as 2 hex digits. Hex16, Hex32 and Hex64 write 4, 8 and 16.
func (p *Printer) Hex8(v uint8) { p.hex(uint64(v), 2) }

func (p *Printer) Hex16(v uint16) { p.hex(uint64(v), 4) }

func (p *Printer) Hex32(v uint32) { p.hex(uint64(v), 8) }

func (p *Printer) Hex64(v uint64) { p.hex(v, 16) }

// Newline ends the current line.
func (p *Printer) Newline() {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, "\n")
}

// Region reads r to the end and writes one line per width bytes: the
// offset (starting at base), the bytes in hex and their printable ASCII
// form. It returns the number of bytes dumped.
//
//	00000010  48 65 6c 6c 6f 2c 20 77  6f 72 6c 64 21 0a       |Hello, world!.|
func Region(w io.Writer, r io.Reader, base int64, width int) (int64, error) {
	if width <= 0 {
		width = DefaultWidth
	}

	line := make([]byte, width)
	bb := pool.GetByteBuffer()
	defer pool.PutByteBuffer(bb)

	var total int64
	for {
		n, err := io.ReadFull(r, line)
		if n > 0 {
			bb.Reset()
			formatLine(bb, base+total, line[:n], width)
			if _, werr := bb.WriteTo(w); werr != nil {
				return total, werr
			}
			total += int64(n)
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return total, nil
			}

			return total, err
		}
	}
}

func formatLine(bb *pool.ByteBuffer, offset int64, data []byte, width int) {
	bb.Grow(10 + 3*width + width/8 + width + 4)
	_, _ = fmt.Fprintf(bb, "%08x ", offset)

	for i := range width {
		if i%8 == 0 {
			_ = bb.WriteByte(' ')
		}
		if i < len(data) {
			_ = bb.WriteByte(hexDigits[data[i]>>4])
			_ = bb.WriteByte(hexDigits[data[i]&0xF])
			_ = bb.WriteByte(' ')
		} else {
			_, _ = bb.Write([]byte("   "))
		}
	}

	_ = bb.WriteByte('|')
	for _, c := range data {
		if c < 0x20 || c > 0x7E {
			c = '.'
		}
		_ = bb.WriteByte(c)
	}
	_, _ = bb.Write([]byte("|\n"))
}
