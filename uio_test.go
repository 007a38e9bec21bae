package uio

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/uio/bitio"
	"github.com/arloliu/uio/content"
	"github.com/arloliu/uio/endian"
	"github.com/arloliu/uio/errs"
	"github.com/arloliu/uio/rio"
)

// TestNewIO verifies primitives written to a fresh window read back in order
func TestNewIO(t *testing.T) {
	w, err := NewIO(rio.WithByteOrder(endian.LittleEndian))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.WriteUint32(0xCAFEBABE))
	require.NoError(t, w.WriteUTF("hello"))
	require.NoError(t, w.WriteFloat64Order(1.5, endian.BigEndian))

	_, err = w.Seek(0, io.SeekStart)
	require.NoError(t, err)

	magic, err := w.ReadUint32()
	require.NoError(t, err)
	require.Equal(t, uint32(0xCAFEBABE), magic)

	s, err := w.ReadUTF()
	require.NoError(t, err)
	require.Equal(t, "hello", s)

	f, err := w.ReadFloat64Order(endian.BigEndian)
	require.NoError(t, err)
	require.InDelta(t, 1.5, f, 0)
}

// TestNewIOFrom verifies the window starts at 0 over a copy of the input
func TestNewIOFrom(t *testing.T) {
	data := []byte{0x00, 0x01, 0x02, 0x03}
	w, err := NewIOFrom(data)
	require.NoError(t, err)
	defer w.Close()

	data[0] = 0xFF
	v, err := w.ReadUint16()
	require.NoError(t, err)
	require.Equal(t, uint16(0x0001), v)

	var in Input = w
	n, err := in.Length()
	require.NoError(t, err)
	require.Equal(t, int64(4), n)
}

// TestOpenFile verifies writes reach the file once the window is closed
func TestOpenFile(t *testing.T) {
	fs := afero.NewMemMapFs()

	w, err := OpenFile("/data.bin", true, content.WithFs(fs), content.WithPageSize(16))
	require.NoError(t, err)
	for i := range 10 {
		require.NoError(t, w.WriteUint32(uint32(i)))
	}
	require.NoError(t, w.Close())

	data, err := afero.ReadFile(fs, "/data.bin")
	require.NoError(t, err)
	require.Len(t, data, 40)
	require.Equal(t, []byte{0, 0, 0, 9}, data[36:])

	r, err := OpenFile("/data.bin", false, content.WithFs(fs))
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Seek(36, io.SeekStart)
	require.NoError(t, err)
	v, err := r.ReadUint32()
	require.NoError(t, err)
	require.Equal(t, uint32(9), v)

	require.ErrorIs(t, r.WriteByte(1), errs.ErrUnsupported)
}

func TestOpenFile_Invalid(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := OpenFile("/missing", false, content.WithFs(fs))
	require.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/a", []byte("x"), 0o600))
	_, err = OpenFile("/a", false, content.WithFs(fs), content.WithMaxPages(0))
	require.ErrorIs(t, err, errs.ErrIllegalArgument)
}

func TestOpenMappedFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "mapped.bin")
	require.NoError(t, os.WriteFile(name, []byte("line one\nline two\n"), 0o600))

	w, err := OpenMappedFile(name)
	require.NoError(t, err)
	defer w.Close()

	first, err := w.ReadLine()
	require.NoError(t, err)
	require.Equal(t, "line one", first)

	second, err := w.ReadLine()
	require.NoError(t, err)
	require.Equal(t, "line two", second)

	_, err = w.ReadLine()
	require.ErrorIs(t, err, errs.ErrEndOfSource)
}

// TestOpenSpannedFile verifies spans are addressed as one contiguous window
func TestOpenSpannedFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/s.bin", []byte("0123456789abcdefghijklmnopqrstuvwxyz"), 0o600))

	w, err := OpenSpannedFile("/s.bin", []content.Span{{Offset: 0, Length: 10}, {Offset: 20, Length: 5}}, content.WithFs(fs))
	require.NoError(t, err)
	defer w.Close()

	got, err := io.ReadAll(w)
	require.NoError(t, err)
	require.Equal(t, "0123456789klmno", string(got))

	_, err = OpenSpannedFile("/s.bin", []content.Span{{Offset: 30, Length: 10}}, content.WithFs(fs))
	require.ErrorIs(t, err, errs.ErrIllegalSpan)
}

// TestOpenStream verifies a backward seek re-opens the stream
func TestOpenStream(t *testing.T) {
	data := bytes.Repeat([]byte{1, 2, 3, 4}, 64)
	opens := 0
	open := func() (io.ReadCloser, error) {
		opens++
		return io.NopCloser(bytes.NewReader(data)), nil
	}

	w, err := OpenStream(open, int64(len(data)), content.WithPageSize(32), content.WithMaxPages(1))
	require.NoError(t, err)
	defer w.Close()

	_, err = w.Seek(200, io.SeekStart)
	require.NoError(t, err)
	v, err := w.ReadUint32()
	require.NoError(t, err)
	require.Equal(t, uint32(0x01020304), v)

	_, err = w.Seek(0, io.SeekStart)
	require.NoError(t, err)
	b, err := w.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(1), b)
	require.Equal(t, 2, opens)

	_, err = OpenStream(nil, 10)
	require.ErrorIs(t, err, errs.ErrIllegalArgument)
}

type sizedReader struct {
	*bytes.Reader
}

func (r sizedReader) Available() int { return r.Len() }

func TestCacheReader(t *testing.T) {
	fs := afero.NewMemMapFs()
	data := []byte("streamed once, read many times")

	w, err := CacheReader(sizedReader{bytes.NewReader(data)}, content.WithFs(fs), content.WithTempDir("/tmp"))
	require.NoError(t, err)

	_, err = w.Seek(7, io.SeekStart)
	require.NoError(t, err)
	word, err := w.ReadN(4)
	require.NoError(t, err)
	require.Equal(t, "once", string(word))

	_, err = w.Seek(0, io.SeekStart)
	require.NoError(t, err)
	all, err := io.ReadAll(w)
	require.NoError(t, err)
	require.Equal(t, data, all)

	require.NoError(t, w.Close())
	entries, err := afero.ReadDir(fs, "/tmp")
	require.NoError(t, err)
	require.Empty(t, entries, "the cache file is removed on close")
}

// TestBitReaderWriter verifies bit fields written through the wrappers read back
func TestBitReaderWriter(t *testing.T) {
	w, err := NewIO()
	require.NoError(t, err)
	defer w.Close()

	bw, err := NewBitWriter(w, bitio.WithFillByte(0xFF))
	require.NoError(t, err)
	require.NoError(t, bw.WriteBits(5, 3))
	require.NoError(t, bw.WriteBits(0x1234, 16))
	require.NoError(t, bw.Flush())

	n, err := w.Length()
	require.NoError(t, err)
	require.Equal(t, int64(3), n)

	_, err = w.Seek(0, io.SeekStart)
	require.NoError(t, err)

	br := NewBitReader(w)
	v, err := br.Get(3)
	require.NoError(t, err)
	require.Equal(t, uint32(5), v)
	v, err = br.Get(16)
	require.NoError(t, err)
	require.Equal(t, uint32(0x1234), v)
	v, err = br.Get(5)
	require.NoError(t, err)
	require.Equal(t, uint32(0x1F), v, "padding comes from the fill byte")
}
