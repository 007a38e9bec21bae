package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/uio/errs"
)

// =============================================================================
// FileContent Tests
// =============================================================================

func TestFileContent_LoadSave(t *testing.T) {
	c, fs := openMem(t, []byte("0123456789"), true)

	buf := make([]byte, 6)
	n, err := c.Load(3, 2, buf)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, "3456", string(buf[2:]))

	require.NoError(t, c.Save(8, 1, []byte("xABCx"), 3))
	got, err := afero.ReadFile(fs, "/content.bin")
	require.NoError(t, err)
	require.Equal(t, "01234567ABC", string(got))

	length, err := c.Length()
	require.NoError(t, err)
	require.Equal(t, int64(11), length)

	require.True(t, c.Writable())
	require.True(t, c.CanReload())
	require.Equal(t, "/content.bin", c.Name())
}

func TestFileContent_ShortAndPastEnd(t *testing.T) {
	c, _ := openMem(t, []byte("abc"), false)

	buf := make([]byte, 8)
	n, err := c.Load(1, 0, buf)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	_, err = c.Load(3, 0, buf)
	require.ErrorIs(t, err, errs.ErrEndOfSource)

	n, err = c.Load(0, len(buf), buf)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestFileContent_InvalidArguments(t *testing.T) {
	c, _ := openMem(t, []byte("abc"), true)

	_, err := c.Load(-1, 0, make([]byte, 1))
	require.ErrorIs(t, err, errs.ErrIllegalArgument)
	_, err = c.Load(0, 2, make([]byte, 1))
	require.ErrorIs(t, err, errs.ErrIllegalArgument)

	require.ErrorIs(t, c.Save(0, 1, make([]byte, 2), 2), errs.ErrIllegalArgument)
	require.ErrorIs(t, c.Save(0, 0, nil, -1), errs.ErrIllegalArgument)
}

func TestFileContent_ReadOnly(t *testing.T) {
	c, _ := openMem(t, []byte("abc"), false)

	require.False(t, c.Writable())
	require.ErrorIs(t, c.Save(0, 0, []byte("x"), 1), errs.ErrUnsupported)
	require.ErrorIs(t, c.Truncate(1), errs.ErrUnsupported)
}

func TestFileContent_Truncate(t *testing.T) {
	c, fs := openMem(t, []byte("0123456789"), true)

	require.NoError(t, c.Truncate(4))
	got, err := afero.ReadFile(fs, "/content.bin")
	require.NoError(t, err)
	require.Equal(t, "0123", string(got))
}

func TestFileContent_Close(t *testing.T) {
	c, _ := openMem(t, []byte("abc"), true)

	require.True(t, c.IsOpen())
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	require.False(t, c.IsOpen())

	_, err := c.Load(0, 0, make([]byte, 1))
	require.ErrorIs(t, err, errs.ErrClosed)
	require.ErrorIs(t, c.Save(0, 0, []byte("x"), 1), errs.ErrClosed)
	_, err = c.Length()
	require.ErrorIs(t, err, errs.ErrClosed)
}

func TestOpenFile_CreatesWritable(t *testing.T) {
	fs := afero.NewMemMapFs()

	c, err := OpenFile("/new.bin", true, WithFs(fs))
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Save(0, 0, []byte("hi"), 2))
	ok, err := afero.Exists(fs, "/new.bin")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = OpenFile("/missing.bin", false, WithFs(fs))
	require.Error(t, err)

	_, err = OpenFile("/new.bin", false, WithFs(nil))
	require.ErrorIs(t, err, errs.ErrIllegalArgument)
}

func TestNewFileContent(t *testing.T) {
	fs := afero.NewMemMapFs()
	memFile(t, fs, "/f", []byte("data"))
	f, err := fs.Open("/f")
	require.NoError(t, err)

	c, err := NewFileContent(f, false)
	require.NoError(t, err)
	defer c.Close()

	buf := make([]byte, 4)
	n, err := c.Load(0, 0, buf)
	require.NoError(t, err)
	require.Equal(t, "data", string(buf[:n]))
}

// =============================================================================
// MappedFileContent Tests
// =============================================================================

func TestMappedFileContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapped.bin")
	data := sequence(10_000)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	c, err := OpenMappedFile(path)
	require.NoError(t, err)

	length, err := c.Length()
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), length)
	require.Equal(t, data, c.Bytes())

	buf := make([]byte, 100)
	n, err := c.Load(9_950, 10, buf)
	require.NoError(t, err)
	require.Equal(t, 50, n)
	require.Equal(t, data[9_950:], buf[10:60])

	_, err = c.Load(10_000, 0, buf)
	require.ErrorIs(t, err, errs.ErrEndOfSource)

	require.False(t, c.Writable())
	require.ErrorIs(t, c.Save(0, 0, buf, 1), errs.ErrUnsupported)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	require.False(t, c.IsOpen())
	_, err = c.Load(0, 0, buf)
	require.ErrorIs(t, err, errs.ErrClosed)
}

func TestMappedFileContent_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	c, err := OpenMappedFile(path)
	require.NoError(t, err)
	defer c.Close()

	length, err := c.Length()
	require.NoError(t, err)
	require.Zero(t, length)

	_, err = c.Load(0, 0, make([]byte, 4))
	require.ErrorIs(t, err, errs.ErrEndOfSource)

	_, err = OpenMappedFile(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
