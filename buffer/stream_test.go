package buffer

import (
	"io"
	"testing"

	"github.com/arloliu/uio/errs"
	"github.com/stretchr/testify/require"
)

func TestInputStream(t *testing.T) {
	b, err := NewPagedBufferFrom([]byte("0123456789"), WithPageSize(3))
	require.NoError(t, err)

	s := b.InputStream(4)
	require.Equal(t, int64(4), s.Offset())
	require.Equal(t, int64(0), s.Position())
	require.Equal(t, 6, s.Available())

	got, err := io.ReadAll(s)
	require.NoError(t, err)
	require.Equal(t, "456789", string(got))
	require.Equal(t, int64(6), s.Position())

	_, err = s.ReadByte()
	require.ErrorIs(t, err, io.EOF)
}

func TestInputStreamN(t *testing.T) {
	b, err := NewPagedBufferFrom([]byte("0123456789"))
	require.NoError(t, err)

	s := b.InputStreamN(2, 3)
	got, err := io.ReadAll(s)
	require.NoError(t, err)
	require.Equal(t, "234", string(got))

	require.NoError(t, s.SetPosition(1))
	c, err := s.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte('3'), c)

	// positions past the bound clamp to it
	require.NoError(t, s.SetPosition(100))
	require.Equal(t, int64(3), s.Position())
}

func TestInputStream_Seek(t *testing.T) {
	b, err := NewPagedBufferFrom([]byte("0123456789"))
	require.NoError(t, err)
	s := b.InputStream(2)

	pos, err := s.Seek(3, io.SeekStart)
	require.NoError(t, err)
	require.Equal(t, int64(3), pos)

	pos, err = s.Seek(1, io.SeekCurrent)
	require.NoError(t, err)
	require.Equal(t, int64(4), pos)

	pos, err = s.Seek(-2, io.SeekEnd)
	require.NoError(t, err)
	require.Equal(t, int64(6), pos)
	c, _ := s.ReadByte()
	require.Equal(t, byte('8'), c)

	_, err = s.Seek(-1, io.SeekStart)
	require.ErrorIs(t, err, errs.ErrIllegalArgument)

	_, err = s.Seek(0, 42)
	require.ErrorIs(t, err, errs.ErrIllegalArgument)
}

func TestInputStream_Skip(t *testing.T) {
	b := WrapFixedSizeBuffer([]byte("abcdef"))
	s := NewInputStream(b, 1, 3)

	require.Equal(t, int64(2), s.Skip(2))
	require.Equal(t, int64(1), s.Skip(10))
	require.Equal(t, int64(3), s.Position())
}

func TestInputStream_Closed(t *testing.T) {
	b := WrapFixedSizeBuffer([]byte("abc"))
	s := NewInputStream(b, 0, 3)
	require.NoError(t, s.Close())

	_, err := s.Read(make([]byte, 1))
	require.ErrorIs(t, err, errs.ErrClosed)
	_, err = s.ReadByte()
	require.ErrorIs(t, err, errs.ErrClosed)
	_, err = s.Seek(0, io.SeekStart)
	require.ErrorIs(t, err, errs.ErrClosed)
}

func TestOutputStream(t *testing.T) {
	b, err := NewPagedBuffer(WithPageSize(4))
	require.NoError(t, err)

	out := b.OutputStream(2)
	n, err := out.Write([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.NoError(t, out.WriteByte('!'))

	require.Equal(t, int64(2), out.Offset())
	require.Equal(t, int64(6), out.Position())
	require.Equal(t, []byte{0, 0, 'h', 'e', 'l', 'l', 'o', '!'}, b.Bytes())

	pos, err := out.Seek(0, io.SeekStart)
	require.NoError(t, err)
	require.Zero(t, pos)
	_, err = out.Write([]byte("J"))
	require.NoError(t, err)
	require.Equal(t, "Jello!", string(b.Bytes()[2:]))

	pos, err = out.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	require.Equal(t, int64(6), pos)

	require.NoError(t, out.Close())
	require.ErrorIs(t, out.WriteByte('x'), errs.ErrClosed)
}

func TestOutputStream_FixedBufferFull(t *testing.T) {
	b := NewFixedSizeBuffer(make([]byte, 3))
	out := NewOutputStream(b, 1)

	n, err := out.Write([]byte("abc"))
	require.ErrorIs(t, err, io.ErrShortWrite)
	require.Equal(t, 2, n)
	require.ErrorIs(t, out.WriteByte('z'), io.ErrShortWrite)

	require.ErrorIs(t, out.SetPosition(10), errs.ErrOffsetTooLarge)
}

func TestStreams_ImplementPositioner(t *testing.T) {
	b := WrapFixedSizeBuffer([]byte("abc"))

	var p Positioner = NewInputStream(b, 1, 2)
	require.Equal(t, int64(1), p.Offset())

	p = NewOutputStream(b, 2)
	require.Equal(t, int64(2), p.Offset())
}
