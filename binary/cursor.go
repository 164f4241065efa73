package binary

import (
	"fmt"
	"net/netip"
)

// Cursor reads big-endian values from an immutable byte buffer.
// Every read checks the remaining length first: a failed read returns
// ErrTruncated and leaves the cursor where it was.
type Cursor struct {
	buf []byte
	off int
}

// NewCursor returns a Cursor positioned at the start of buf
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Len returns the number of bytes not read yet
func (c *Cursor) Len() int {
	return len(c.buf) - c.off
}

// Off returns the number of bytes read so far
func (c *Cursor) Off() int {
	return c.off
}

// Rest returns the unread part of the buffer, without advancing
func (c *Cursor) Rest() []byte {
	return c.buf[c.off:]
}

func (c *Cursor) need(n int) error {
	if n < 0 || n > c.Len() {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			ErrTruncated, n, c.off, c.Len())
	}
	return nil
}

// Uint8 reads 1 byte
func (c *Cursor) Uint8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := c.buf[c.off]
	c.off++
	return v, nil
}

// Uint16 reads 2 bytes
func (c *Cursor) Uint16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := Msb.Uint16(c.buf[c.off:])
	c.off += 2
	return v, nil
}

// Uint32 reads 4 bytes
func (c *Cursor) Uint32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := Msb.Uint32(c.buf[c.off:])
	c.off += 4
	return v, nil
}

// UintN reads a 4-byte value if wide is true, or a 2-byte value otherwise
func (c *Cursor) UintN(wide bool) (uint32, error) {
	if wide {
		return c.Uint32()
	}
	v, err := c.Uint16()
	return uint32(v), err
}

// Bytes returns the next n bytes as a sub-slice of the buffer (no copy).
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	v := c.buf[c.off : c.off+n : c.off+n]
	c.off += n
	return v, nil
}

// Copy is like Bytes, but returns an owned copy
func (c *Cursor) Copy(n int) ([]byte, error) {
	v, err := c.Bytes(n)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), v...), nil
}

// Skip advances the cursor by n bytes
func (c *Cursor) Skip(n int) error {
	if err := c.need(n); err != nil {
		return err
	}
	c.off += n
	return nil
}

// Sub returns a new Cursor bounded to the next n bytes, and advances c past them.
func (c *Cursor) Sub(n int) (*Cursor, error) {
	v, err := c.Bytes(n)
	if err != nil {
		return nil, err
	}
	return NewCursor(v), nil
}

// Addr4 reads an IPv4 address
func (c *Cursor) Addr4() (netip.Addr, error) {
	v, err := c.Bytes(4)
	if err != nil {
		return netip.Addr{}, err
	}
	return netip.AddrFrom4([4]byte(v)), nil
}

// Addr6 reads an IPv6 address
func (c *Cursor) Addr6() (netip.Addr, error) {
	v, err := c.Bytes(16)
	if err != nil {
		return netip.Addr{}, err
	}
	return netip.AddrFrom16([16]byte(v)), nil
}

// Addr reads an IPv6 address if ipv6 is true, or an IPv4 address otherwise
func (c *Cursor) Addr(ipv6 bool) (netip.Addr, error) {
	if ipv6 {
		return c.Addr6()
	}
	return c.Addr4()
}
