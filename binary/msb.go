// Package binary provides big-endian helpers and a bounds-checked read cursor.
package binary

import (
	"encoding/binary"
	"errors"
)

// ErrTruncated is returned when fewer bytes remain than a read requires.
var ErrTruncated = errors.New("truncated input")

// Msb is the MRT and BGP byte order (network, most significant byte first)
var Msb = msb{
	binary.BigEndian,
	binary.BigEndian,
}

type msb struct {
	binary.ByteOrder
	binary.AppendByteOrder
}

// UintN reads a 2- or 4-byte unsigned integer from buf, depending on len(buf)
func (msb) UintN(buf []byte) uint32 {
	switch len(buf) {
	case 2:
		return uint32(binary.BigEndian.Uint16(buf))
	case 4:
		return binary.BigEndian.Uint32(buf)
	default:
		return 0
	}
}

// AppendUintN appends v as a 4-byte value if wide is true, or a 2-byte value otherwise
func (msb) AppendUintN(dst []byte, v uint32, wide bool) []byte {
	if wide {
		return binary.BigEndian.AppendUint32(dst, v)
	}
	return binary.BigEndian.AppendUint16(dst, uint16(v))
}
