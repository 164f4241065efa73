// Package nlri reads and writes IP prefixes in their BGP wire encoding:
// a prefix length in bits followed by the minimal number of address bytes.
package nlri

import (
	"errors"
	"fmt"
	"net/netip"

	"github.com/bgpfix/ribdump/binary"
)

// ErrPrefixLength is returned for prefix lengths wider than the address family
var ErrPrefixLength = errors.New("invalid prefix length")

// Size returns the number of address bytes needed for a prefix of l bits
func Size(l int) int {
	return (l + 7) / 8
}

// ReadBits reads ceil(l/8) address bytes from c for an l-bit prefix,
// zero-padding to the full address width. Host bits are masked.
func ReadBits(c *binary.Cursor, l int, ipv6 bool) (netip.Prefix, error) {
	maxl := 32
	if ipv6 {
		maxl = 128
	}
	if l < 0 || l > maxl {
		return netip.Prefix{}, fmt.Errorf("%w: /%d", ErrPrefixLength, l)
	}

	buf, err := c.Bytes(Size(l))
	if err != nil {
		return netip.Prefix{}, err
	}

	// copy what's defined, zero the rest
	var tmp [16]byte
	copy(tmp[:], buf)
	var addr netip.Addr
	if ipv6 {
		addr = netip.AddrFrom16(tmp)
	} else {
		addr = netip.AddrFrom4([4]byte(tmp[:4]))
	}
	return addr.Prefix(l)
}

// Read reads a length byte followed by the prefix bytes
func Read(c *binary.Cursor, ipv6 bool) (netip.Prefix, error) {
	l, err := c.Uint8()
	if err != nil {
		return netip.Prefix{}, err
	}
	return ReadBits(c, int(l), ipv6)
}

// ReadAll reads prefixes from c until it is exhausted, appending to dst
func ReadAll(dst []netip.Prefix, c *binary.Cursor, ipv6 bool) ([]netip.Prefix, error) {
	for c.Len() > 0 {
		p, err := Read(c, ipv6)
		if err != nil {
			return dst, err
		}
		dst = append(dst, p)
	}
	return dst, nil
}

// Append appends the wire form of p (length byte + address bytes) to dst
func Append(dst []byte, p netip.Prefix) []byte {
	l := p.Bits()
	if l <= 0 {
		return append(dst, 0) // write 0-length prefix
	}
	dst = append(dst, byte(l))
	return append(dst, p.Addr().AsSlice()[:Size(l)]...)
}
