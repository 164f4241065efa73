// Package attrs represents BGP path attributes.
//
// Attrs keeps the attributes of a route in wire order, including duplicates,
// and reads/writes them using implementations of the Attr interface.
package attrs

import (
	"fmt"
	"net/netip"

	"github.com/bgpfix/ribdump/binary"
	"github.com/bgpfix/ribdump/json"
)

var msb = binary.Msb

// Attrs is an ordered list of BGP path attributes, as found on the wire.
type Attrs []Attr

// Unmarshal reads attributes from buf until it is exhausted, appending to ats.
// On error, ats holds the attributes read so far.
func (ats *Attrs) Unmarshal(buf []byte, ctx Ctx) error {
	c := binary.NewCursor(buf)
	for c.Len() > 0 {
		off := c.Off()

		// flags, code
		af, err := c.Uint8()
		if err != nil {
			return err
		}
		ac, err := c.Uint8()
		if err != nil {
			return fmt.Errorf("attribute at %d: %w", off, err)
		}

		// length
		var l int
		if Flags(af)&ATTR_EXTENDED != 0 {
			v, err := c.Uint16()
			if err != nil {
				return fmt.Errorf("%s at %d: %w", Code(ac), off, err)
			}
			l = int(v)
		} else {
			v, err := c.Uint8()
			if err != nil {
				return fmt.Errorf("%s at %d: %w", Code(ac), off, err)
			}
			l = int(v)
		}

		// value
		val, err := c.Bytes(l)
		if err != nil {
			return fmt.Errorf("%s at %d: %w", Code(ac), off, err)
		}

		at := NewAttr(Code(ac), Flags(af))
		if err := at.Unmarshal(val, ctx); err != nil {
			return fmt.Errorf("%s at %d: %w", Code(ac), off, err)
		}
		*ats = append(*ats, at)
	}

	return nil
}

// Marshal appends the wire representation of all attributes to dst
func (ats Attrs) Marshal(dst []byte, ctx Ctx) []byte {
	for _, at := range ats {
		dst = at.Marshal(dst, ctx)
	}
	return dst
}

// Find returns the first attribute with given code, or nil
func (ats Attrs) Find(ac Code) Attr {
	for _, at := range ats {
		if at.Code() == ac {
			return at
		}
	}
	return nil
}

// Has returns true iff ats has an attribute with given code
func (ats Attrs) Has(ac Code) bool {
	return ats.Find(ac) != nil
}

// Aspath returns the first AS_PATH, or nil
func (ats Attrs) Aspath() *Aspath {
	ap, _ := ats.Find(ATTR_ASPATH).(*Aspath)
	return ap
}

// Community returns the first COMMUNITY, or nil
func (ats Attrs) Community() *Community {
	com, _ := ats.Find(ATTR_COMMUNITY).(*Community)
	return com
}

// Origin returns the ORIGIN value, or -1 if not present
func (ats Attrs) Origin() int {
	if o, ok := ats.Find(ATTR_ORIGIN).(*Origin); ok {
		return int(o.Origin)
	}
	return -1
}

// U32 returns the value of the first uint32 attribute with given code (eg. ATTR_MED)
func (ats Attrs) U32(ac Code) (uint32, bool) {
	if u, ok := ats.Find(ac).(*U32); ok {
		return u.Val, true
	}
	return 0, false
}

// NextHop returns the NEXT_HOP address, falling back to the MP_REACH next hop
func (ats Attrs) NextHop() netip.Addr {
	if ip, ok := ats.Find(ATTR_NEXTHOP).(*IP); ok {
		return ip.Addr
	}
	if mp, ok := ats.Find(ATTR_MP_REACH).(*MP); ok {
		return mp.NextHop
	}
	return netip.Addr{}
}

func (ats Attrs) MarshalJSON() ([]byte, error) {
	return ats.ToJSON(nil), nil
}

// ToJSON appends a JSON array of {"code","flags","value"} objects to dst
func (ats Attrs) ToJSON(dst []byte) []byte {
	dst = append(dst, '[')
	for i, at := range ats {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = append(dst, `{"code":`...)
		dst = at.Code().ToJSON(dst)
		dst = append(dst, `,"flags":`...)
		dst = at.Flags().ToJSON(dst)
		dst = append(dst, `,"value":`...)
		dst = at.ToJSON(dst)
		dst = append(dst, '}')
	}
	return append(dst, ']')
}

// String returns ats in JSON
func (ats Attrs) String() string {
	return json.S(ats.ToJSON(nil))
}
