package mrt

import (
	"fmt"
	"io"
	"time"

	"github.com/bgpfix/ribdump/json"
)

// Header is the MRT common header (RFC6396/2)
type Header struct {
	Timestamp uint32 // seconds since the epoch
	Micro     uint32 // microseconds, for Extended Timestamp types only
	Type      Type   // message type
	Sub       Sub    // message subtype
	Length    uint32 // message length after the header, including Micro if present
}

// FromBytes parses the header in raw. Does not parse the microseconds field.
func (h *Header) FromBytes(raw []byte) error {
	// enough bytes for header?
	if len(raw) < HEADLEN {
		return fmt.Errorf("header: %w", ErrTruncated)
	}

	h.Timestamp = msb.Uint32(raw[0:4])
	h.Type = Type(msb.Uint16(raw[4:6]))
	h.Sub = Sub(msb.Uint16(raw[6:8]))
	h.Length = msb.Uint32(raw[8:12])
	h.Micro = 0
	return nil
}

// AppendTo appends the wire representation of h to dst
func (h *Header) AppendTo(dst []byte) []byte {
	dst = msb.AppendUint32(dst, h.Timestamp)
	dst = msb.AppendUint16(dst, uint16(h.Type))
	dst = msb.AppendUint16(dst, uint16(h.Sub))
	return msb.AppendUint32(dst, h.Length)
}

// Time returns the header timestamp, including microseconds if set
func (h *Header) Time() time.Time {
	return time.Unix(int64(h.Timestamp), int64(h.Micro)*1000).UTC()
}

// String returns eg. "TABLE_DUMP_V2/RIB_IPV4_UNICAST"
func (h *Header) String() string {
	return h.Type.String() + "/" + SubString(h.Type, h.Sub)
}

// Head returns h, satisfying the Record interface for embedding types
func (h *Header) Head() *Header {
	return h
}

// toJSON appends the header fields as JSON keys, without braces
func (h *Header) toJSON(dst []byte) []byte {
	dst = json.Key(dst, "time", true)
	dst = append(dst, '"')
	dst = h.Time().AppendFormat(dst, time.RFC3339Nano)
	dst = append(dst, '"')
	dst = json.Key(dst, "type", false)
	dst = json.Str(dst, h.Type.String())
	dst = json.Key(dst, "sub", false)
	dst = json.Str(dst, SubString(h.Type, h.Sub))
	return dst
}

// ReadHeader reads a header from r.
// Returns io.EOF if r is at its end, or ErrTruncated wrapped if r ends within the header.
func ReadHeader(r io.Reader, h *Header) error {
	var raw [HEADLEN]byte
	n, err := io.ReadFull(r, raw[:])
	switch {
	case err == nil:
		return h.FromBytes(raw[:])
	case err == io.EOF: // n == 0
		return io.EOF
	case err == io.ErrUnexpectedEOF:
		return fmt.Errorf("header: %w: got %d of %d bytes", ErrTruncated, n, HEADLEN)
	default:
		return err
	}
}
