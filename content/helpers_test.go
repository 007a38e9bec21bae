package content

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// sequence returns n bytes where byte i is i mod 251.
func sequence(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}

	return b
}

func memFile(t *testing.T, fs afero.Fs, name string, data []byte) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, name, data, 0o644))
}

func openMem(t *testing.T, data []byte, writable bool) (*FileContent, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	memFile(t, fs, "/content.bin", data)

	c, err := OpenFile("/content.bin", writable, WithFs(fs))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c, fs
}

// failingContent fails every load and save with err.
type failingContent struct {
	length int64
	err    error
}

func (c *failingContent) Load(int64, int, []byte) (int, error) { return 0, c.err }
func (c *failingContent) Save(int64, int, []byte, int) error   { return c.err }
func (c *failingContent) Length() (int64, error)              { return c.length, nil }
func (c *failingContent) Writable() bool                      { return true }
func (c *failingContent) CanReload() bool                     { return true }
func (c *failingContent) IsOpen() bool                        { return true }
func (c *failingContent) Close() error                        { return nil }

// overEstimatingReader claims extra more bytes than it will deliver.
type overEstimatingReader struct {
	*bytes.Reader
	extra int
}

func (r *overEstimatingReader) Available() int { return r.Len() + r.extra }
