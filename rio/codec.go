package rio

import (
	"errors"
	"io"
	"math"
	"unicode/utf16"
	"unsafe"

	"github.com/arloliu/uio/endian"
	"github.com/arloliu/uio/errs"
	"github.com/arloliu/uio/internal/pool"
)

// Unsigned is the set of fixed-width integers handled by Decode and Encode.
type Unsigned interface {
	~uint16 | ~uint32 | ~uint64
}

// Source is the minimal input a Codec decodes from.
type Source interface {
	io.Reader
	io.ByteReader
}

// Sink is the minimal output a Codec encodes into.
type Sink interface {
	io.Writer
	io.ByteWriter
}

// endOfSource maps a byte-level end condition to errs.ErrEndOfSource and
// passes any other failure through.
func endOfSource(err error) error {
	if errors.Is(err, io.EOF) {
		return errs.ErrEndOfSource
	}

	return err
}

// Decode reads one T from src using only ReadByte.
//
// Every constituent byte is read before the value is assembled, so a
// missing byte fails the whole call with errs.ErrEndOfSource and no partial
// value is ever returned.
func Decode[T Unsigned](src io.ByteReader, order endian.ByteOrder) (T, error) {
	var (
		zero T
		raw  [8]byte
	)
	size := int(unsafe.Sizeof(zero))

	for i := range size {
		b, err := src.ReadByte()
		if err != nil {
			return zero, endOfSource(err)
		}
		raw[i] = b
	}

	var v uint64
	if order.IsBigEndian() {
		for i := range size {
			v = v<<8 | uint64(raw[i])
		}
	} else {
		for i := size - 1; i >= 0; i-- {
			v = v<<8 | uint64(raw[i])
		}
	}

	return T(v), nil
}

// Encode writes v to dst using only WriteByte.
func Encode[T Unsigned](dst io.ByteWriter, v T, order endian.ByteOrder) error {
	size := int(unsafe.Sizeof(v))
	u := uint64(v)

	for i := range size {
		shift := 8 * i
		if order.IsBigEndian() {
			shift = 8 * (size - 1 - i)
		}
		if err := dst.WriteByte(byte(u >> shift)); err != nil {
			return err
		}
	}

	return nil
}

// ReadFully reads exactly len(p) bytes from src, looping over short reads.
// If src runs dry it returns *errs.UnexpectedEOFError with the number of
// bytes obtained.
func ReadFully(src io.Reader, p []byte) error {
	n := 0
	for n < len(p) {
		c, err := src.Read(p[n:])
		n += c
		if n == len(p) {
			return nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return errs.NewUnexpectedEOF(int64(n))
			}

			return err
		}
		if c <= 0 {
			return errs.NewUnexpectedEOF(int64(n))
		}
	}

	return nil
}

// Codec implements the primitive decoders and encoders on top of a Source
// and a Sink. Windows embed a Codec bound to themselves, so the endianness
// arithmetic lives here and storage access lives in the window.
//
// Either side may be nil; calling a method of the missing side panics.
type Codec struct {
	src   Source
	dst   Sink
	order endian.ByteOrder
}

// NewCodec creates a codec with the given default byte order.
// An invalid order falls back to big-endian.
func NewCodec(src Source, dst Sink, order endian.ByteOrder) *Codec {
	c := &Codec{}
	c.bind(src, dst, order)

	return c
}

func (c *Codec) bind(src Source, dst Sink, order endian.ByteOrder) {
	if !order.Valid() {
		order = endian.BigEndian
	}
	c.src, c.dst, c.order = src, dst, order
}

// ByteOrder returns the default byte order.
func (c *Codec) ByteOrder() endian.ByteOrder {
	return c.order
}

// SetByteOrder changes the default byte order.
func (c *Codec) SetByteOrder(order endian.ByteOrder) error {
	if !order.Valid() {
		return errs.ErrInvalidByteOrder
	}
	c.order = order

	return nil
}

func (c *Codec) ReadFully(p []byte) error {
	return ReadFully(c.src, p)
}

// ReadN reads exactly n bytes.
func (c *Codec) ReadN(n int) ([]byte, error) {
	p := make([]byte, n)
	if err := c.ReadFully(p); err != nil {
		return nil, err
	}

	return p, nil
}

func (c *Codec) ReadBool() (bool, error) {
	b, err := c.ReadUint8()
	return b != 0, err
}

func (c *Codec) ReadUint8() (uint8, error) {
	b, err := c.src.ReadByte()
	if err != nil {
		return 0, endOfSource(err)
	}

	return b, nil
}

func (c *Codec) ReadInt8() (int8, error) {
	b, err := c.ReadUint8()
	return int8(b), err //nolint:gosec
}

func (c *Codec) ReadUint16() (uint16, error) {
	return Decode[uint16](c.src, c.order)
}

func (c *Codec) ReadUint16Order(order endian.ByteOrder) (uint16, error) {
	return Decode[uint16](c.src, order)
}

func (c *Codec) ReadInt16() (int16, error) {
	v, err := Decode[uint16](c.src, c.order)
	return int16(v), err //nolint:gosec
}

func (c *Codec) ReadInt16Order(order endian.ByteOrder) (int16, error) {
	v, err := Decode[uint16](c.src, order)
	return int16(v), err //nolint:gosec
}

// ReadChar reads one UTF-16 code unit.
func (c *Codec) ReadChar() (uint16, error) {
	return Decode[uint16](c.src, c.order)
}

func (c *Codec) ReadCharOrder(order endian.ByteOrder) (uint16, error) {
	return Decode[uint16](c.src, order)
}

func (c *Codec) ReadUint32() (uint32, error) {
	return Decode[uint32](c.src, c.order)
}

func (c *Codec) ReadUint32Order(order endian.ByteOrder) (uint32, error) {
	return Decode[uint32](c.src, order)
}

func (c *Codec) ReadInt32() (int32, error) {
	v, err := Decode[uint32](c.src, c.order)
	return int32(v), err //nolint:gosec
}

func (c *Codec) ReadInt32Order(order endian.ByteOrder) (int32, error) {
	v, err := Decode[uint32](c.src, order)
	return int32(v), err //nolint:gosec
}

func (c *Codec) ReadUint64() (uint64, error) {
	return Decode[uint64](c.src, c.order)
}

func (c *Codec) ReadUint64Order(order endian.ByteOrder) (uint64, error) {
	return Decode[uint64](c.src, order)
}

func (c *Codec) ReadInt64() (int64, error) {
	v, err := Decode[uint64](c.src, c.order)
	return int64(v), err //nolint:gosec
}

func (c *Codec) ReadInt64Order(order endian.ByteOrder) (int64, error) {
	v, err := Decode[uint64](c.src, order)
	return int64(v), err //nolint:gosec
}

func (c *Codec) ReadFloat32() (float32, error) {
	return c.ReadFloat32Order(c.order)
}

func (c *Codec) ReadFloat32Order(order endian.ByteOrder) (float32, error) {
	v, err := Decode[uint32](c.src, order)
	return math.Float32frombits(v), err
}

func (c *Codec) ReadFloat64() (float64, error) {
	return c.ReadFloat64Order(c.order)
}

func (c *Codec) ReadFloat64Order(order endian.ByteOrder) (float64, error) {
	v, err := Decode[uint64](c.src, order)
	return math.Float64frombits(v), err
}

// readValues fills dst with size-byte values read in a single transfer and
// decoded by get. A short source reports the bytes of the whole values read.
func readValues[T Unsigned](c *Codec, dst []T, size int, get func([]byte) T) error {
	bb := pool.GetByteBuffer()
	defer pool.PutByteBuffer(bb)

	n := len(dst) * size
	bb.Grow(n)
	raw := bb.B[:n]
	if err := c.ReadFully(raw); err != nil {
		if got, ok := errs.PartialCount(err); ok {
			return errs.NewUnexpectedEOF(got / int64(size) * int64(size))
		}

		return err
	}

	for i := range dst {
		dst[i] = get(raw[i*size:])
	}

	return nil
}

// writeValues encodes src with put into one buffer and writes it at once.
func writeValues[T Unsigned](c *Codec, src []T, put func([]byte, T) []byte) error {
	bb := pool.GetByteBuffer()
	defer pool.PutByteBuffer(bb)

	for _, v := range src {
		bb.B = put(bb.B, v)
	}

	n, err := c.dst.Write(bb.B)
	if err != nil {
		return err
	}
	if n < len(bb.B) {
		return io.ErrShortWrite
	}

	return nil
}

func (c *Codec) ReadUint16s(dst []uint16) error {
	return readValues(c, dst, 2, c.order.Engine().Uint16)
}

func (c *Codec) ReadUint32s(dst []uint32) error {
	return readValues(c, dst, 4, c.order.Engine().Uint32)
}

func (c *Codec) ReadUint64s(dst []uint64) error {
	return readValues(c, dst, 8, c.order.Engine().Uint64)
}

// ReadByteOrderMarker reads a two-byte "MM" or "II" marker and makes the
// order it names the default. Any other value fails with
// errs.ErrInvalidByteOrder and leaves the default unchanged.
func (c *Codec) ReadByteOrderMarker() (endian.ByteOrder, error) {
	// both markers read the same in either order
	v, err := Decode[uint16](c.src, endian.BigEndian)
	if err != nil {
		return 0, err
	}

	order, err := endian.FromMarker(int(v))
	if err != nil {
		return 0, err
	}
	c.order = order

	return order, nil
}

// ReadUTF reads a string written by WriteUTF: an unsigned 16-bit length in
// the default byte order followed by that many bytes of modified UTF-8.
func (c *Codec) ReadUTF() (string, error) {
	n, err := c.ReadUint16()
	if err != nil {
		return "", err
	}

	return c.ReadUTFN(int(n))
}

// ReadUTFN decodes exactly n bytes of modified UTF-8.
func (c *Codec) ReadUTFN(n int) (string, error) {
	bb := pool.GetByteBuffer()
	defer pool.PutByteBuffer(bb)

	bb.Grow(n)
	data := bb.B[:n]
	if err := c.ReadFully(data); err != nil {
		return "", err
	}

	return DecodeModifiedUTF8(data)
}

// ReadLine reads bytes up to a line terminator ("\n", "\r" or "\r\n") and
// returns them without the terminator. It returns errs.ErrEndOfSource only
// when the source is already exhausted.
func (c *Codec) ReadLine() (string, error) {
	bb := pool.GetByteBuffer()
	defer pool.PutByteBuffer(bb)

	read := 0
	for {
		b, err := c.src.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if read == 0 {
					return "", errs.ErrEndOfSource
				}

				return string(bb.B), nil
			}

			return "", err
		}
		read++

		switch b {
		case '\n':
			return string(bb.B), nil
		case '\r':
			c.skipLineFeed()
			return string(bb.B), nil
		default:
			_ = bb.WriteByte(b)
		}
	}
}

// skipLineFeed consumes a '\n' following '\r' when the source can put a
// byte back.
func (c *Codec) skipLineFeed() {
	s, ok := c.src.(io.ByteScanner)
	if !ok {
		return
	}

	b, err := s.ReadByte()
	if err == nil && b != '\n' {
		_ = s.UnreadByte()
	}
}

func (c *Codec) WriteBool(v bool) error {
	if v {
		return c.dst.WriteByte(1)
	}

	return c.dst.WriteByte(0)
}

func (c *Codec) WriteUint8(v uint8) error {
	return c.dst.WriteByte(v)
}

func (c *Codec) WriteInt8(v int8) error {
	return c.dst.WriteByte(byte(v))
}

func (c *Codec) WriteUint16(v uint16) error {
	return Encode(c.dst, v, c.order)
}

func (c *Codec) WriteUint16Order(v uint16, order endian.ByteOrder) error {
	return Encode(c.dst, v, order)
}

func (c *Codec) WriteInt16(v int16) error {
	return Encode(c.dst, uint16(v), c.order) //nolint:gosec
}

func (c *Codec) WriteInt16Order(v int16, order endian.ByteOrder) error {
	return Encode(c.dst, uint16(v), order) //nolint:gosec
}

// WriteChar writes one UTF-16 code unit.
func (c *Codec) WriteChar(v uint16) error {
	return Encode(c.dst, v, c.order)
}

func (c *Codec) WriteCharOrder(v uint16, order endian.ByteOrder) error {
	return Encode(c.dst, v, order)
}

func (c *Codec) WriteUint32(v uint32) error {
	return Encode(c.dst, v, c.order)
}

func (c *Codec) WriteUint32Order(v uint32, order endian.ByteOrder) error {
	return Encode(c.dst, v, order)
}

func (c *Codec) WriteInt32(v int32) error {
	return Encode(c.dst, uint32(v), c.order) //nolint:gosec
}

func (c *Codec) WriteInt32Order(v int32, order endian.ByteOrder) error {
	return Encode(c.dst, uint32(v), order) //nolint:gosec
}

func (c *Codec) WriteUint64(v uint64) error {
	return Encode(c.dst, v, c.order)
}

func (c *Codec) WriteUint64Order(v uint64, order endian.ByteOrder) error {
	return Encode(c.dst, v, order)
}

func (c *Codec) WriteInt64(v int64) error {
	return Encode(c.dst, uint64(v), c.order) //nolint:gosec
}

func (c *Codec) WriteInt64Order(v int64, order endian.ByteOrder) error {
	return Encode(c.dst, uint64(v), order) //nolint:gosec
}

func (c *Codec) WriteFloat32(v float32) error {
	return Encode(c.dst, math.Float32bits(v), c.order)
}

func (c *Codec) WriteFloat32Order(v float32, order endian.ByteOrder) error {
	return Encode(c.dst, math.Float32bits(v), order)
}

func (c *Codec) WriteFloat64(v float64) error {
	return Encode(c.dst, math.Float64bits(v), c.order)
}

func (c *Codec) WriteFloat64Order(v float64, order endian.ByteOrder) error {
	return Encode(c.dst, math.Float64bits(v), order)
}

func (c *Codec) WriteUint16s(src []uint16) error {
	return writeValues(c, src, c.order.Engine().AppendUint16)
}

func (c *Codec) WriteUint32s(src []uint32) error {
	return writeValues(c, src, c.order.Engine().AppendUint32)
}

func (c *Codec) WriteUint64s(src []uint64) error {
	return writeValues(c, src, c.order.Engine().AppendUint64)
}

// WriteByteOrderMarker writes the marker of the default byte order.
func (c *Codec) WriteByteOrderMarker() error {
	return Encode(c.dst, uint16(c.order), endian.BigEndian)
}

// WriteChars writes s as UTF-16 code units in the default byte order.
func (c *Codec) WriteChars(s string) error {
	for _, u := range utf16.Encode([]rune(s)) {
		if err := Encode(c.dst, u, c.order); err != nil {
			return err
		}
	}

	return nil
}

// WriteUTF writes s as a 16-bit length followed by modified UTF-8.
// Strings whose encoding exceeds 65535 bytes are rejected.
func (c *Codec) WriteUTF(s string) error {
	bb := pool.GetByteBuffer()
	defer pool.PutByteBuffer(bb)

	bb.B = AppendModifiedUTF8(bb.B, s)
	if bb.Len() > math.MaxUint16 {
		return errs.ErrIllegalArgument
	}

	if err := c.WriteUint16(uint16(bb.Len())); err != nil { //nolint:gosec
		return err
	}

	n, err := c.dst.Write(bb.B)
	if err == nil && n < bb.Len() {
		err = io.ErrShortWrite
	}

	return err
}
