package rio

import (
	"fmt"
	"unicode/utf16"

	"github.com/arloliu/uio/errs"
)

// AppendModifiedUTF8 appends s to dst in the modified UTF-8 form used by
// Java's DataOutput: NUL is written as two bytes and supplementary
// characters as two 3-byte surrogate sequences.
func AppendModifiedUTF8(dst []byte, s string) []byte {
	for _, u := range utf16.Encode([]rune(s)) {
		switch {
		case u >= 0x01 && u <= 0x7F:
			dst = append(dst, byte(u))
		case u <= 0x7FF:
			dst = append(dst,
				0xC0|byte(u>>6),
				0x80|byte(u&0x3F))
		default:
			dst = append(dst,
				0xE0|byte(u>>12),
				0x80|byte(u>>6&0x3F),
				0x80|byte(u&0x3F))
		}
	}

	return dst
}

// ModifiedUTF8Len returns the encoded length of s without encoding it.
func ModifiedUTF8Len(s string) int {
	n := 0
	for _, u := range utf16.Encode([]rune(s)) {
		switch {
		case u >= 0x01 && u <= 0x7F:
			n++
		case u <= 0x7FF:
			n += 2
		default:
			n += 3
		}
	}

	return n
}

// DecodeModifiedUTF8 decodes data into a string. Stray continuation bytes
// and 4-byte lead bytes are skipped; a sequence cut short by the end of
// data fails with errs.ErrMalformedUTF.
func DecodeModifiedUTF8(data []byte) (string, error) {
	units := make([]uint16, 0, len(data))

	for i := 0; i < len(data); {
		c := data[i]
		i++

		switch c >> 4 {
		case 0, 1, 2, 3, 4, 5, 6, 7:
			units = append(units, uint16(c))
		case 12, 13:
			if i+1 > len(data) {
				return "", fmt.Errorf("%w: truncated 2-byte sequence at %d", errs.ErrMalformedUTF, i-1)
			}
			units = append(units, uint16(c&0x1F)<<6|uint16(data[i]&0x3F))
			i++
		case 14:
			if i+2 > len(data) {
				return "", fmt.Errorf("%w: truncated 3-byte sequence at %d", errs.ErrMalformedUTF, i-1)
			}
			units = append(units, uint16(c&0x0F)<<12|uint16(data[i]&0x3F)<<6|uint16(data[i+1]&0x3F))
			i += 2
		default:
			continue
		}
	}

	return string(utf16.Decode(units)), nil
}
