// Package endian provides the byte order enumeration used throughout uio and
// the engines that implement it.
//
// ByteOrder is a two-valued enumeration (BigEndian, LittleEndian). Its
// numeric values are the TIFF-style markers 0x4D4D ("MM") and 0x4949 ("II")
// so that a byte order read from a file header can be validated directly:
//
//	order, err := endian.FromMarker(int(marker))
//	if err != nil {
//	    return err // errs.ErrInvalidByteOrder
//	}
//
// Every multi-byte primitive in the rio package accepts a ByteOrder override;
// instances carry a default set through rio.WithByteOrder or SetByteOrder.
//
// EndianEngine combines binary.ByteOrder and binary.AppendByteOrder so that
// bulk encoders can use the standard library's fast paths:
//
//	engine := endian.BigEndian.Engine()
//	buf = engine.AppendUint32(buf, value)
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// ByteOrder values and the returned engines are immutable.
package endian

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unsafe"

	"github.com/arloliu/uio/errs"
)

// ByteOrder selects the order of bytes in multi-byte primitives.
type ByteOrder uint16

const (
	// BigEndian stores the most-significant byte first.
	BigEndian ByteOrder = 0x4D4D
	// LittleEndian stores the least-significant byte first.
	LittleEndian ByteOrder = 0x4949
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// FromMarker validates a raw byte order marker (0x4D4D or 0x4949).
func FromMarker(marker int) (ByteOrder, error) {
	switch ByteOrder(marker) { //nolint:gosec
	case BigEndian:
		return BigEndian, nil
	case LittleEndian:
		return LittleEndian, nil
	default:
		return 0, fmt.Errorf("%w: 0x%x", errs.ErrInvalidByteOrder, marker)
	}
}

// Parse converts a textual byte order ("big", "be", "MM", "little", "le",
// "II", "native"; case-insensitive) into a ByteOrder.
func Parse(s string) (ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "big", "be", "bigendian", "big-endian", "mm":
		return BigEndian, nil
	case "little", "le", "littleendian", "little-endian", "ii":
		return LittleEndian, nil
	case "native":
		return Native(), nil
	default:
		return 0, fmt.Errorf("%w: %q", errs.ErrInvalidByteOrder, s)
	}
}

// Valid reports whether o is one of the two defined byte orders.
func (o ByteOrder) Valid() bool {
	return o == BigEndian || o == LittleEndian
}

// IsBigEndian reports whether o is BigEndian.
func (o ByteOrder) IsBigEndian() bool {
	return o == BigEndian
}

// Engine returns the encoding/binary engine for o.
// Invalid values fall back to the big-endian engine, the uio default.
func (o ByteOrder) Engine() EndianEngine {
	if o == LittleEndian {
		return binary.LittleEndian
	}

	return binary.BigEndian
}

// Swap returns the opposite byte order.
func (o ByteOrder) Swap() ByteOrder {
	if o == LittleEndian {
		return BigEndian
	}

	return LittleEndian
}

func (o ByteOrder) String() string {
	switch o {
	case BigEndian:
		return "BigEndian"
	case LittleEndian:
		return "LittleEndian"
	default:
		return fmt.Sprintf("ByteOrder(0x%x)", uint16(o))
	}
}

// Native returns the host's byte order.
func Native() ByteOrder {
	if CheckEndianness() == binary.BigEndian {
		return BigEndian
	}

	return LittleEndian
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100: a little-endian host stores the low byte (0x00) first.
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))

	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}
