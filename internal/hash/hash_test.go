package hash

import (
	"bytes"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum64(t *testing.T) {
	tests := []struct {
		name string
		data string
		sum  uint64
	}{
		{"empty string", "", 0xef46db3751d8e999},
		{"short string", "test", 0x4fdcca5ddb678139},
		{"long string", "this is a longer test string to hash", 0x69275f7f7ee59dbd},
		{"another string", "another test string", 0x212a22f593810bec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.sum, Sum64([]byte(tt.data)))
		})
	}
}

func TestDigest(t *testing.T) {
	data := []byte(randString(5000))

	d := NewDigest()
	for i := 0; i < len(data); i += 333 {
		end := min(i+333, len(data))
		n, err := d.Write(data[i:end])
		require.NoError(t, err)
		require.Equal(t, end-i, n)
	}
	require.Equal(t, Sum64(data), d.Sum64())
	require.Equal(t, int64(len(data)), d.Len())

	d.Reset()
	require.Equal(t, Sum64(nil), d.Sum64())
	require.Zero(t, d.Len())

	n, err := d.Consume(bytes.NewReader(data), make([]byte, 64))
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), n)
	require.Equal(t, Sum64(data), d.Sum64())
}

func randString(n int) string {
	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	b := make([]byte, n)
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := range b {
		b[i] = letters[seededRand.Intn(len(letters))]
	}

	return string(b)
}

func BenchmarkSum64(b *testing.B) {
	data := []byte(randString(4096))
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for b.Loop() {
		Sum64(data)
	}
}
