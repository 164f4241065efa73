package attrs

import (
	"fmt"
	"strconv"

	"github.com/bgpfix/ribdump/json"
)

// Community represents ATTR_COMMUNITY
type Community struct {
	CodeFlags
	ASN   []uint16
	Value []uint16
}

func NewCommunity(at CodeFlags) Attr {
	return &Community{CodeFlags: at}
}

func (a *Community) Len() int {
	if a != nil {
		return len(a.ASN)
	} else {
		return 0
	}
}

func (a *Community) Unmarshal(buf []byte, ctx Ctx) error {
	if len(buf)%4 != 0 {
		return fmt.Errorf("%w: %d bytes left after last community", ErrTruncated, len(buf)%4)
	}

	exp := len(buf) / 4
	a.ASN = make([]uint16, 0, exp)
	a.Value = make([]uint16, 0, exp)
	for len(buf) > 0 {
		a.Add(msb.Uint16(buf[0:2]), msb.Uint16(buf[2:4]))
		buf = buf[4:]
	}
	return nil
}

// Add appends asn:value
func (a *Community) Add(asn uint16, value uint16) {
	a.ASN = append(a.ASN, asn)
	a.Value = append(a.Value, value)
}

// Has returns true iff a contains asn:value
func (a *Community) Has(asn uint16, value uint16) bool {
	for i := range a.ASN {
		if a.ASN[i] == asn && a.Value[i] == value {
			return true
		}
	}
	return false
}

func (a *Community) Marshal(dst []byte, ctx Ctx) []byte {
	dst = a.CodeFlags.MarshalLen(dst, 4*len(a.ASN))
	for i := range a.ASN {
		dst = msb.AppendUint16(dst, a.ASN[i])
		dst = msb.AppendUint16(dst, a.Value[i])
	}
	return dst
}

func (a *Community) ToJSON(dst []byte) []byte {
	dst = append(dst, '[')
	for i := range a.ASN {
		if i > 0 {
			dst = append(dst, `,"`...)
		} else {
			dst = append(dst, `"`...)
		}
		dst = strconv.AppendUint(dst, uint64(a.ASN[i]), 10)
		dst = append(dst, ':')
		dst = strconv.AppendUint(dst, uint64(a.Value[i]), 10)
		dst = append(dst, '"')
	}
	return append(dst, ']')
}

// ExtCom represents ATTR_EXT_COMMUNITY, kept as opaque bytes
type ExtCom struct {
	CodeFlags
	Raw []byte
}

func NewExtCom(at CodeFlags) Attr {
	return &ExtCom{CodeFlags: at}
}

func (a *ExtCom) Unmarshal(buf []byte, ctx Ctx) error {
	a.Raw = append(a.Raw[:0], buf...)
	return nil
}

func (a *ExtCom) Marshal(dst []byte, ctx Ctx) []byte {
	dst = a.CodeFlags.MarshalLen(dst, len(a.Raw))
	return append(dst, a.Raw...)
}

// Values returns the 8-byte communities in a, ignoring a trailing partial value
func (a *ExtCom) Values() []uint64 {
	vals := make([]uint64, 0, len(a.Raw)/8)
	for buf := a.Raw; len(buf) >= 8; buf = buf[8:] {
		vals = append(vals, msb.Uint64(buf))
	}
	return vals
}

// ToJSON writes a list of 8-byte hex values
func (a *ExtCom) ToJSON(dst []byte) []byte {
	dst = append(dst, '[')
	for i, buf := 0, a.Raw; len(buf) > 0; i++ {
		n := min(8, len(buf))
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = json.Hex(dst, buf[:n])
		buf = buf[n:]
	}
	return append(dst, ']')
}
