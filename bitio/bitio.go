// Package bitio reads and writes bit fields of 0 to 24 bits over byte
// streams, most-significant bit first.
//
// Both sides keep a 32-bit accumulator. The reader refills it one source
// byte at a time and hands out the top bits; the writer shifts new bits in
// at the bottom and emits complete bytes from the top. Requesting more bits
// than MaxBits, or pushing back more bits than the accumulator can hold,
// is a programming error and panics.
//
//	w, _ := bitio.NewWriter(&out)
//	w.WriteBits(0b101, 3)
//	w.WriteBits(0x1F, 5)
//	w.Flush()
//
//	r := bitio.NewBytesReader(out.Bytes())
//	v, _ := r.Get(3) // 0b101
package bitio

import "math/bits"

// MaxBits is the widest field a single PeekBits, Get or WriteBits may transfer.
const MaxBits = 24

// Mask holds (1<<i)-1 for i in [0, 32].
var Mask = createMask()

// flipTable maps a byte to its bit-reversed value.
var flipTable = createFlipTable()

func createMask() [33]uint32 {
	var m [33]uint32
	for i := range m {
		m[i] = uint32((uint64(1) << i) - 1)
	}

	return m
}

func createFlipTable() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = bits.Reverse8(byte(i))
	}

	return t
}

// Reverse returns b with its bit order reversed.
func Reverse(b byte) byte {
	return flipTable[b]
}

func checkBits(n int) {
	if n < 0 || n > MaxBits {
		panic("bitio: bit count out of range [0, 24]")
	}
}
