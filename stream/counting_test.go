package stream

import (
	"bytes"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/uio/errs"
)

func TestCountingReader_Read(t *testing.T) {
	c := NewCountingReader(bytes.NewReader([]byte("hello world")))

	buf := make([]byte, 5)
	n, err := c.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, int64(5), c.Count())

	b, err := c.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(' '), b)
	require.Equal(t, int64(6), c.Count())

	rest, err := io.ReadAll(c)
	require.NoError(t, err)
	require.Equal(t, "world", string(rest))
	require.Equal(t, int64(11), c.Count())

	_, err = c.ReadByte()
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, int64(11), c.Count())
}

func TestCountingReader_Unread(t *testing.T) {
	c := NewCountingReader(bytes.NewReader([]byte("abcdef")))

	head := make([]byte, 3)
	_, err := io.ReadFull(c, head)
	require.NoError(t, err)

	require.NoError(t, c.Unread([]byte("bc")))
	require.Equal(t, int64(1), c.Count())
	require.Equal(t, 2, c.Available())

	b, err := c.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte('b'), b)

	rest, err := io.ReadAll(c)
	require.NoError(t, err)
	require.Equal(t, "cdef", string(rest))
	require.Equal(t, int64(6), c.Count())

	err = NewCountingReader(bytes.NewReader(nil)).Unread([]byte{1})
	require.ErrorIs(t, err, errs.ErrIllegalArgument)
}

func TestCountingReader_StartOffset(t *testing.T) {
	c := NewCountingReaderAt(bytes.NewReader([]byte{1, 2}), 100)
	_, _ = c.ReadByte()
	require.Equal(t, int64(101), c.Count())
}

func TestCountingReader_Skip(t *testing.T) {
	c := NewCountingReader(bytes.NewReader(make([]byte, 10)))

	n, err := c.Skip(4)
	require.NoError(t, err)
	require.Equal(t, int64(4), n)

	n, err = c.Skip(100)
	require.NoError(t, err)
	require.Equal(t, int64(6), n)
	require.Equal(t, int64(10), c.Count())

	n, err = c.Skip(-1)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestCountingReader_NonByteReader(t *testing.T) {
	c := NewCountingReader(iotest.OneByteReader(bytes.NewReader([]byte{7, 8})))

	b, err := c.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(7), b)
	b, err = c.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(8), b)

	_, err = c.ReadByte()
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, int64(2), c.Count())
}

func TestCountingReader_PropagatesErrors(t *testing.T) {
	c := NewCountingReader(iotest.ErrReader(io.ErrClosedPipe))
	_, err := c.Read(make([]byte, 4))
	require.ErrorIs(t, err, io.ErrClosedPipe)
	require.Zero(t, c.Count())
}
