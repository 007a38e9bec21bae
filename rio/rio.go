// Package rio provides random-access input and output over byte storage
// with endian-aware primitive codecs.
//
// The Input, Output and IO interfaces are the seam other packages program
// against. Every window decodes and encodes multi-byte primitives through
// an embedded Codec that only ever calls the window's single-byte
// ReadByte and WriteByte, so storage access and byte order arithmetic are
// kept apart.
//
// Each multi-byte primitive uses the window's default byte order, settable
// with WithByteOrder or SetByteOrder, and has an *Order variant taking an
// explicit override:
//
//	w, _ := rio.NewByteArrayIOFrom([]byte{0x00, 0x00, 0x01, 0x00})
//	v, _ := w.ReadInt32() // 256, big-endian default
//	w.Seek(0, io.SeekStart)
//	v, _ = w.ReadInt32Order(endian.LittleEndian) // 65536
//
// # Windows and children
//
// A window is an (offset, length) view over a buffer. Children are created
// relative to the parent's origin and report positions relative to their
// own origin. A child either shares the parent's storage (writes are
// visible to both once the call returns) or works on an isolated snapshot.
// Neither variant is safe for concurrent writers without external locking.
//
// # Errors
//
// Primitive decoders fail atomically with errs.ErrEndOfSource. ReadFully
// returns *errs.UnexpectedEOFError carrying the bytes obtained. Read and
// ReadByte follow io conventions and return io.EOF.
package rio

import (
	"io"

	"github.com/arloliu/uio/buffer"
	"github.com/arloliu/uio/endian"
)

// Decoder is the primitive read surface shared by every input window.
type Decoder interface {
	ByteOrder() endian.ByteOrder
	SetByteOrder(order endian.ByteOrder) error

	ReadFully(p []byte) error
	ReadN(n int) ([]byte, error)
	ReadBool() (bool, error)
	ReadInt8() (int8, error)
	ReadUint8() (uint8, error)
	ReadInt16() (int16, error)
	ReadInt16Order(order endian.ByteOrder) (int16, error)
	ReadUint16() (uint16, error)
	ReadUint16Order(order endian.ByteOrder) (uint16, error)
	ReadChar() (uint16, error)
	ReadCharOrder(order endian.ByteOrder) (uint16, error)
	ReadInt32() (int32, error)
	ReadInt32Order(order endian.ByteOrder) (int32, error)
	ReadUint32() (uint32, error)
	ReadUint32Order(order endian.ByteOrder) (uint32, error)
	ReadInt64() (int64, error)
	ReadInt64Order(order endian.ByteOrder) (int64, error)
	ReadUint64() (uint64, error)
	ReadUint64Order(order endian.ByteOrder) (uint64, error)
	ReadFloat32() (float32, error)
	ReadFloat32Order(order endian.ByteOrder) (float32, error)
	ReadFloat64() (float64, error)
	ReadFloat64Order(order endian.ByteOrder) (float64, error)
	ReadUint16s(dst []uint16) error
	ReadUint32s(dst []uint32) error
	ReadUint64s(dst []uint64) error
	ReadUTF() (string, error)
	ReadUTFN(n int) (string, error)
	ReadLine() (string, error)
}

// Encoder is the primitive write surface shared by every output window.
type Encoder interface {
	ByteOrder() endian.ByteOrder
	SetByteOrder(order endian.ByteOrder) error

	WriteBool(v bool) error
	WriteInt8(v int8) error
	WriteUint8(v uint8) error
	WriteInt16(v int16) error
	WriteInt16Order(v int16, order endian.ByteOrder) error
	WriteUint16(v uint16) error
	WriteUint16Order(v uint16, order endian.ByteOrder) error
	WriteChar(v uint16) error
	WriteCharOrder(v uint16, order endian.ByteOrder) error
	WriteInt32(v int32) error
	WriteInt32Order(v int32, order endian.ByteOrder) error
	WriteUint32(v uint32) error
	WriteUint32Order(v uint32, order endian.ByteOrder) error
	WriteInt64(v int64) error
	WriteInt64Order(v int64, order endian.ByteOrder) error
	WriteUint64(v uint64) error
	WriteUint64Order(v uint64, order endian.ByteOrder) error
	WriteFloat32(v float32) error
	WriteFloat32Order(v float32, order endian.ByteOrder) error
	WriteFloat64(v float64) error
	WriteFloat64Order(v float64, order endian.ByteOrder) error
	WriteUint16s(src []uint16) error
	WriteUint32s(src []uint32) error
	WriteUint64s(src []uint64) error
	WriteChars(s string) error
	WriteUTF(s string) error
}

// Stream is a positioned reader handed out by Input.InputStream.
type Stream interface {
	io.ReadSeekCloser
	io.ByteReader
	buffer.Positioner
}

// OutStream is a positioned writer handed out by Output.OutputStream.
type OutStream interface {
	io.WriteSeeker
	io.ByteWriter
	io.Closer
	buffer.Positioner
}

// Input is a random-access source.
type Input interface {
	io.Reader
	io.ByteReader
	io.Seeker
	io.Closer
	Decoder

	// Skip advances up to n bytes and returns the amount skipped.
	Skip(n int64) (int64, error)
	// Length returns the number of bytes addressable through the window.
	Length() (int64, error)
	// FilePointer returns the cursor relative to the window origin.
	FilePointer() (int64, error)
	IsChild() bool

	// InputStream returns a reader starting at the window-relative offset.
	InputStream(offset int64) (Stream, error)
	// InputStreamN is InputStream limited to length bytes.
	InputStreamN(offset, length int64) (Stream, error)
	// ChildPosition returns the position of a stream from InputStream.
	ChildPosition(s io.Reader) (int64, error)
	// SetChildPosition moves a stream from InputStream.
	SetChildPosition(s io.Reader, pos int64) error
	// ChildOffset returns the origin of a stream from InputStream.
	ChildOffset(s io.Reader) (int64, error)

	// InputChild creates a child window at offset, relative to this window.
	// A length of 0 leaves the child unbounded.
	InputChild(offset, length int64, order endian.ByteOrder, syncPointer bool) (Input, error)
}

// Output is a random-access sink.
type Output interface {
	io.Writer
	io.ByteWriter
	io.Seeker
	io.Closer
	Encoder

	Length() (int64, error)
	// SetLength truncates or extends the window's content.
	SetLength(n int64) error
	FilePointer() (int64, error)
	IsChild() bool

	// OutputStream returns a writer starting at the window-relative offset.
	OutputStream(offset int64) (OutStream, error)
	// OutputChild creates a child window at offset, bounded only by this
	// window's own end.
	OutputChild(offset int64, order endian.ByteOrder, syncPointer bool) (Output, error)
}

// IO is both an Input and an Output.
type IO interface {
	Input
	Output

	IOChild(offset, length int64, order endian.ByteOrder, syncPointer bool) (IO, error)
}
