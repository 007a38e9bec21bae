package buffer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFixedSizeBuffer_RoundTrip(t *testing.T) {
	b := NewFixedSizeBuffer(make([]byte, 16))
	require.Zero(t, b.Count())
	require.Equal(t, 16, b.Cap())

	w := b.NewPosition()
	w.Set(3)
	require.Equal(t, 5, b.Write([]byte("hello"), w))
	require.Equal(t, 8, w.Pos)
	require.Equal(t, 8, b.Count())

	r := b.NewPosition()
	r.Set(3)
	dst := make([]byte, 5)
	require.Equal(t, 5, b.Read(dst, r))
	require.Equal(t, []byte("hello"), dst)
}

func TestFixedSizeBuffer_Availability(t *testing.T) {
	b := WrapFixedSizeBuffer([]byte{1, 2, 3, 4, 5, 6})

	tests := []struct {
		name      string
		pos       Position
		wantRead  int
		wantWrite int
	}{
		{"start", Position{Pos: 0, Size: 6}, 6, 6},
		{"middle", Position{Pos: 4, Size: 6}, 2, 2},
		{"view smaller than count", Position{Pos: 1, Size: 3}, 2, 2},
		{"at end", Position{Pos: 6, Size: 6}, 0, 0},
		{"past view", Position{Pos: 5, Size: 2}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.pos
			require.Equal(t, tt.wantRead, b.AvailableForReading(&p))
			require.Equal(t, tt.wantWrite, b.AvailableForWriting(&p))
		})
	}
}

func TestFixedSizeBuffer_WriteStopsAtViewSize(t *testing.T) {
	b := NewFixedSizeBuffer(make([]byte, 10))
	p := &Position{Size: 4}

	require.Equal(t, 4, b.Write([]byte("abcdefgh"), p))
	require.Equal(t, 4, p.Pos)
	require.Equal(t, 4, b.Count())
	require.False(t, b.Put('x', p))
	require.Equal(t, 4, p.Pos)
}

func TestFixedSizeBuffer_ReadShortAndNoData(t *testing.T) {
	b := WrapFixedSizeBuffer([]byte{1, 2, 3})
	p := b.NewPosition()

	dst := make([]byte, 10)
	require.Equal(t, 3, b.Read(dst, p), "short positive read is a valid result")
	require.Equal(t, NoData, b.Read(dst, p))
	require.Equal(t, 0, b.Read(nil, p))

	_, ok := b.Get(p)
	require.False(t, ok)
}

func TestFixedSizeBuffer_Put(t *testing.T) {
	b := NewFixedSizeBuffer(make([]byte, 4))
	p := b.NewPosition()

	p.Set(2)
	require.True(t, b.Put(7, p))
	require.Equal(t, 3, b.Count())

	// writing before the high-water mark never shrinks Count
	p.Set(0)
	require.True(t, b.Put(9, p))
	require.Equal(t, 3, b.Count())

	p.Set(4)
	require.False(t, b.Put(1, p))
	require.Equal(t, []byte{9, 0, 7}, b.Bytes())
}

func TestFixedSizeBuffer_WriteBeyondCapacity(t *testing.T) {
	b := NewFixedSizeBuffer(make([]byte, 4))
	p := b.NewPosition()
	p.Set(2)

	require.Equal(t, 2, b.Write([]byte{1, 2, 3, 4}, p))
	require.Equal(t, 0, b.Write([]byte{5}, p))
	require.Equal(t, 4, b.Count())
}

func TestFixedSizeBuffer_Skip(t *testing.T) {
	b := WrapFixedSizeBuffer(make([]byte, 10))
	p := b.NewPosition()

	require.Equal(t, int64(4), b.Skip(4, p))
	require.Equal(t, int64(6), b.Skip(100, p))
	require.Equal(t, 10, p.Pos)
	require.Equal(t, int64(0), b.Skip(1, p))

	p.Set(5)
	require.Equal(t, int64(0), b.Skip(-3, p))
	require.Equal(t, 5, p.Pos)
}

func TestFixedSizeBuffer_SetCount(t *testing.T) {
	b := NewFixedSizeBuffer(make([]byte, 8))
	b.SetCount(20)
	require.Equal(t, 8, b.Count())
	b.SetCount(-1)
	require.Equal(t, 0, b.Count())
	b.SetCount(5)
	require.Equal(t, 5, b.Count())
}

func TestFixedSizeBuffer_WriteBuffer(t *testing.T) {
	b := NewFixedSizeBuffer(make([]byte, 6))
	b.Write([]byte("abc"), b.NewPosition())

	var out bytes.Buffer
	require.NoError(t, b.WriteBuffer(&out, false))
	require.Equal(t, "abc", out.String())

	out.Reset()
	require.NoError(t, b.WriteBuffer(&out, true))
	require.Equal(t, []byte{'a', 'b', 'c', 0, 0, 0}, out.Bytes())
}

func TestPosition_Set(t *testing.T) {
	p := NewPosition(10)
	p.Set(-5)
	require.Equal(t, 0, p.Pos)
	p.Set(50)
	require.Equal(t, 10, p.Pos)
	p.Set(4)
	require.Equal(t, 4, p.Pos)
	require.Equal(t, 6, p.Remaining())

	require.Equal(t, 0, NewPosition(-1).Size)
}
