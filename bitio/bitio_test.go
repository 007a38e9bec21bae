package bitio

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"math/rand"
	"testing"

	"github.com/arloliu/uio/errs"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Table Tests
// =============================================================================

func TestMask(t *testing.T) {
	require.Equal(t, uint32(0), Mask[0])
	require.Equal(t, uint32(1), Mask[1])
	require.Equal(t, uint32(0xFF), Mask[8])
	require.Equal(t, uint32(0xFFFFFF), Mask[24])
	require.Equal(t, uint32(0xFFFFFFFF), Mask[32])
}

func TestReverse(t *testing.T) {
	require.Equal(t, byte(0x80), Reverse(0x01))
	require.Equal(t, byte(0x0F), Reverse(0xF0))
	require.Equal(t, byte(0b0011_0101), Reverse(0b1010_1100))
}

// =============================================================================
// Round Trip Tests
// =============================================================================

func TestRoundTrip_AllWidths(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for n := 1; n <= MaxBits; n++ {
		var out bytes.Buffer
		w, err := NewWriter(&out)
		require.NoError(t, err)

		values := make([]uint32, 8) // 8*n bits is always byte aligned
		for i := range values {
			values[i] = rng.Uint32()
			require.NoError(t, w.WriteBits(values[i], n))
		}
		require.NoError(t, w.Flush())
		require.Equal(t, n, out.Len())

		r := NewBytesReader(out.Bytes())
		for i, v := range values {
			got, err := r.Get(n)
			require.NoError(t, err)
			require.Equal(t, v&Mask[n], got, "n=%d i=%d", n, i)
		}

		_, err = r.Get(1)
		require.ErrorIs(t, err, errs.ErrEndOfSource)
	}
}

func TestRoundTrip_MixedWidths(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	type field struct {
		v uint32
		n int
	}
	var fields []field
	total := 0
	for total < 4000 {
		n := rng.Intn(MaxBits) + 1
		fields = append(fields, field{rng.Uint32() & Mask[n], n})
		total += n
	}

	var out bytes.Buffer
	w, err := NewWriter(&out)
	require.NoError(t, err)
	for _, f := range fields {
		require.NoError(t, w.WriteBits(f.v, f.n))
	}
	require.NoError(t, w.Flush())
	require.Equal(t, (total+7)/8, out.Len())

	r := NewReader(bytes.NewReader(out.Bytes()))
	for _, f := range fields {
		got, err := r.Get(f.n)
		require.NoError(t, err)
		require.Equal(t, f.v, got)
	}
}

// =============================================================================
// Writer Tests
// =============================================================================

func TestWriter_MSBFirst(t *testing.T) {
	var out bytes.Buffer
	w, err := NewWriter(&out)
	require.NoError(t, err)

	require.NoError(t, w.WriteBits(0b101, 3))
	require.NoError(t, w.WriteBits(0b11111, 5))
	require.Zero(t, out.Len(), "a complete byte waits for the next bit")
	require.Equal(t, 8, w.BitCount())

	require.NoError(t, w.WriteBits(1, 1))
	require.Equal(t, []byte{0b1011_1111}, out.Bytes())
	require.Equal(t, int64(1), w.BytesWritten())
}

func TestWriter_FillByte(t *testing.T) {
	var out bytes.Buffer
	w, err := NewWriter(&out, WithFillByte(0xFF))
	require.NoError(t, err)
	require.Equal(t, byte(0xFF), w.FillByte())

	require.NoError(t, w.WriteBits(0, 3))
	require.NoError(t, w.SkipToByteBoundary())
	require.Equal(t, []byte{0b0001_1111}, out.Bytes())
	require.Zero(t, w.BitCount())

	// nothing pending: no padding byte
	require.NoError(t, w.Flush())
	require.Equal(t, 1, out.Len())
}

func TestWriter_InvertBitOrder(t *testing.T) {
	var out bytes.Buffer
	w, err := NewWriter(&out, WithInvertBitOrder(true))
	require.NoError(t, err)

	require.NoError(t, w.WriteBits(0b1100_0001, 8))
	require.NoError(t, w.Flush())
	require.Equal(t, []byte{0b1000_0011}, out.Bytes())
}

func TestWriter_BitsPerWrite(t *testing.T) {
	var out bytes.Buffer
	w, err := NewWriter(&out, WithBitsPerWrite(4))
	require.NoError(t, err)

	n, err := w.Write([]byte{0x0A, 0x0B, 0x0C, 0x0D})
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.NoError(t, w.Flush())
	require.Equal(t, []byte{0xAB, 0xCD}, out.Bytes())

	_, err = NewWriter(&out, WithBitsPerWrite(0))
	require.ErrorIs(t, err, errs.ErrIllegalArgument)
	_, err = NewWriter(&out, WithBitsPerWrite(25))
	require.ErrorIs(t, err, errs.ErrIllegalArgument)
}

func TestWriter_FlushesSink(t *testing.T) {
	var out bytes.Buffer
	bw := bufio.NewWriter(&out)
	w, err := NewWriter(bw)
	require.NoError(t, err)

	require.NoError(t, w.WriteBits(0x3, 2))
	require.NoError(t, w.Flush())
	require.Equal(t, []byte{0xC0}, out.Bytes())
}

type failingSink struct{}

func (failingSink) WriteByte(byte) error { return errors.New("sink closed") }

func TestWriter_SinkError(t *testing.T) {
	w, err := NewWriter(failingSink{})
	require.NoError(t, err)

	require.NoError(t, w.WriteBits(0xFF, 8))
	require.EqualError(t, w.WriteBits(1, 1), "sink closed")
}

func TestWriter_PanicsOnInvalidWidth(t *testing.T) {
	w, err := NewWriter(&bytes.Buffer{})
	require.NoError(t, err)

	require.Panics(t, func() { _ = w.WriteBits(0, 25) })
	require.Panics(t, func() { _ = w.WriteBits(0, -1) })
	require.NoError(t, w.WriteBits(0, 0))
}

// =============================================================================
// Reader Tests
// =============================================================================

func TestReader_PeekDoesNotConsume(t *testing.T) {
	r := NewBytesReader([]byte{0xA5})

	v, err := r.PeekBits(4)
	require.NoError(t, err)
	require.Equal(t, uint32(0xA), v)

	v, err = r.PeekBits(4)
	require.NoError(t, err)
	require.Equal(t, uint32(0xA), v)
	require.Equal(t, 8, r.ValidBits())

	v, _ = r.Get(4)
	require.Equal(t, uint32(0xA), v)
	v, _ = r.Get(4)
	require.Equal(t, uint32(0x5), v)
	require.Equal(t, int64(1), r.Position())
	require.Equal(t, int64(8), r.BitPosition())
}

func TestReader_ShortReadAtEnd(t *testing.T) {
	r := NewBytesReader([]byte{0xAB})

	_, err := r.Get(4)
	require.NoError(t, err)

	// 4 bits left, 8 requested: returned left-aligned, missing bits zero.
	// A right-aligned reading would be 0xB; shifting by 8-4 recovers it.
	v, err := r.PeekBits(8)
	require.NoError(t, err)
	require.Equal(t, uint32(0xB0), v)
	require.Equal(t, 4, r.ValidBits())
	require.Equal(t, uint32(0xB), v>>(8-r.ValidBits()))

	v, err = r.Get(8)
	require.NoError(t, err)
	require.Equal(t, uint32(0xB0), v)
	require.Zero(t, r.ValidBits())

	_, err = r.Get(1)
	require.ErrorIs(t, err, errs.ErrEndOfSource)
	require.ErrorIs(t, err, io.EOF)
}

func TestReader_EmptySource(t *testing.T) {
	r := NewBytesReader(nil)
	_, err := r.PeekBits(3)
	require.ErrorIs(t, err, errs.ErrEndOfSource)

	v, err := r.PeekBits(0)
	require.NoError(t, err)
	require.Zero(t, v)
}

type brokenSource struct{}

func (brokenSource) ReadByte() (byte, error) { return 0, errors.New("read failed") }

func TestReader_SourceError(t *testing.T) {
	r := NewReader(brokenSource{})
	_, err := r.Get(1)
	require.EqualError(t, err, "read failed")
}

func TestReader_PushBack(t *testing.T) {
	r := NewBytesReader([]byte{0xF0, 0x0F})

	v, err := r.Get(6)
	require.NoError(t, err)
	require.Equal(t, uint32(0b111100), v)

	r.PushBack(6, v)
	require.Equal(t, 8, r.ValidBits())

	v, err = r.Get(8)
	require.NoError(t, err)
	require.Equal(t, uint32(0xF0), v)

	r.PushBack(3, 0b101)
	v, err = r.Get(3)
	require.NoError(t, err)
	require.Equal(t, uint32(0b101), v)

	v, err = r.Get(8)
	require.NoError(t, err)
	require.Equal(t, uint32(0x0F), v)

	r.PushBack(0, 0xFF)
	require.Zero(t, r.ValidBits())
	require.Panics(t, func() { r.PushBack(32, 0) })
}

func TestReader_SkipToByteBoundary(t *testing.T) {
	r := NewBytesReader([]byte{0xFF, 0x42})

	_, _ = r.Get(3)
	r.SkipToByteBoundary()
	require.Zero(t, r.ValidBits()%8)

	v, err := r.Get(8)
	require.NoError(t, err)
	require.Equal(t, uint32(0x42), v)
}

func TestReader_Drop(t *testing.T) {
	r := NewBytesReader([]byte{0x12, 0x34})
	_, _ = r.PeekBits(16)

	r.Drop(4)
	v, _ := r.Get(8)
	require.Equal(t, uint32(0x23), v)

	r.Drop(100)
	require.Zero(t, r.ValidBits())
}

func TestReader_Seek(t *testing.T) {
	r := NewBytesReader([]byte{0x00, 0xAB, 0xCD})

	require.NoError(t, r.SeekBit(1, 4))
	v, err := r.Get(8)
	require.NoError(t, err)
	require.Equal(t, uint32(0xBC), v)
	require.Equal(t, int64(20), r.BitPosition())

	require.NoError(t, r.SeekBit(0, 0))
	v, _ = r.Get(8)
	require.Equal(t, uint32(0x00), v)

	require.ErrorIs(t, r.SeekBit(0, 8), errs.ErrIllegalArgument)

	nr := NewReader(bufio.NewReader(bytes.NewReader(nil)))
	require.ErrorIs(t, nr.SeekBit(0, 0), errs.ErrUnsupported)
}

func TestReader_Reset(t *testing.T) {
	r := NewBytesReader([]byte{0xFF})
	_, _ = r.Get(3)

	r.Reset(bytes.NewReader([]byte{0x81}))
	require.Zero(t, r.ValidBits())
	require.Zero(t, r.Position())

	v, _ := r.Get(8)
	require.Equal(t, uint32(0x81), v)
}

func TestReader_PanicsOnInvalidWidth(t *testing.T) {
	r := NewBytesReader([]byte{0, 0, 0, 0})
	require.Panics(t, func() { _, _ = r.PeekBits(MaxBits + 1) })
	require.Panics(t, func() { _, _ = r.Get(-1) })
}
