package attrs

import (
	"fmt"
	"net/netip"
	"strconv"

	"github.com/bgpfix/ribdump/json"
)

// Raw represents an attribute not interpreted by this package
type Raw struct {
	CodeFlags
	Raw []byte
}

func NewRaw(at CodeFlags) Attr {
	return &Raw{CodeFlags: at}
}

func (a *Raw) Unmarshal(buf []byte, ctx Ctx) error {
	a.Raw = append(a.Raw[:0], buf...) // copy
	return nil
}

func (a *Raw) Marshal(dst []byte, ctx Ctx) []byte {
	dst = a.CodeFlags.MarshalLen(dst, len(a.Raw))
	return append(dst, a.Raw...)
}

func (a *Raw) ToJSON(dst []byte) []byte {
	if len(a.Raw) > 0 {
		dst = json.Hex(dst, a.Raw)
	} else {
		dst = append(dst, json.True...)
	}
	return dst
}

// ORIGIN values
const (
	ORIGIN_IGP        = 0
	ORIGIN_EGP        = 1
	ORIGIN_INCOMPLETE = 2
)

// Origin represents ATTR_ORIGIN
type Origin struct {
	CodeFlags
	Origin byte
}

func NewOrigin(at CodeFlags) Attr {
	return &Origin{CodeFlags: at}
}

func (a *Origin) Unmarshal(buf []byte, ctx Ctx) error {
	if len(buf) != 1 {
		return ErrLength
	}

	a.Origin = buf[0]
	return nil
}

func (a *Origin) Marshal(dst []byte, ctx Ctx) []byte {
	dst = a.CodeFlags.MarshalLen(dst, 1)
	return append(dst, a.Origin)
}

// String returns IGP, EGP, INCOMPLETE, or the numeric value
func (a *Origin) String() string {
	switch a.Origin {
	case ORIGIN_IGP:
		return "IGP"
	case ORIGIN_EGP:
		return "EGP"
	case ORIGIN_INCOMPLETE:
		return "INCOMPLETE"
	default:
		return strconv.Itoa(int(a.Origin))
	}
}

func (a *Origin) ToJSON(dst []byte) []byte {
	if a.Origin > ORIGIN_INCOMPLETE {
		return json.Byte(dst, a.Origin)
	}
	dst = append(dst, '"')
	dst = append(dst, a.String()...)
	return append(dst, '"')
}

// U32 represents uint32 valued attributes, eg. ATTR_MED / ATTR_LOCALPREF
type U32 struct {
	CodeFlags
	Val uint32
}

func NewU32(at CodeFlags) Attr {
	return &U32{CodeFlags: at}
}

func (a *U32) Unmarshal(buf []byte, ctx Ctx) error {
	if len(buf) != 4 {
		return ErrLength
	}

	a.Val = msb.Uint32(buf)
	return nil
}

func (a *U32) Marshal(dst []byte, ctx Ctx) []byte {
	dst = a.CodeFlags.MarshalLen(dst, 4)
	return msb.AppendUint32(dst, a.Val)
}

func (a *U32) ToJSON(dst []byte) []byte {
	return json.Uint32(dst, a.Val)
}

// Atomic represents ATTR_AGGREGATE (ATOMIC_AGGREGATE), which has no value
type Atomic struct {
	CodeFlags
}

func NewAtomic(at CodeFlags) Attr {
	return &Atomic{CodeFlags: at}
}

func (a *Atomic) Unmarshal(buf []byte, ctx Ctx) error {
	if len(buf) != 0 {
		return ErrLength
	}
	return nil
}

func (a *Atomic) Marshal(dst []byte, ctx Ctx) []byte {
	return a.CodeFlags.MarshalLen(dst, 0)
}

func (a *Atomic) ToJSON(dst []byte) []byte {
	return append(dst, json.True...)
}

// Aggregator represents ATTR_AGGREGATOR.
// The AS number width follows the attribute length: 6 bytes for 2-byte ASNs, 8 for 4-byte.
type Aggregator struct {
	CodeFlags
	AS4  bool
	ASN  uint32
	Addr netip.Addr
}

func NewAggregator(at CodeFlags) Attr {
	return &Aggregator{CodeFlags: at}
}

func (a *Aggregator) Unmarshal(buf []byte, ctx Ctx) error {
	switch len(buf) {
	case 6:
		a.AS4 = false
	case 8:
		a.AS4 = true
	default:
		return fmt.Errorf("%w: %d", ErrLength, len(buf))
	}

	asnlen := len(buf) - 4
	a.ASN = msb.UintN(buf[:asnlen])
	a.Addr = netip.AddrFrom4([4]byte(buf[asnlen:]))
	return nil
}

func (a *Aggregator) Marshal(dst []byte, ctx Ctx) []byte {
	if a.AS4 {
		dst = a.CodeFlags.MarshalLen(dst, 8)
	} else {
		dst = a.CodeFlags.MarshalLen(dst, 6)
	}
	dst = msb.AppendUintN(dst, a.ASN, a.AS4)
	return append(dst, a.Addr.AsSlice()...)
}

func (a *Aggregator) ToJSON(dst []byte) []byte {
	dst = append(dst, `{"asn":`...)
	dst = strconv.AppendUint(dst, uint64(a.ASN), 10)
	dst = append(dst, `,"addr":`...)
	dst = json.Addr(dst, a.Addr)
	return append(dst, '}')
}

// IP represents the ATTR_NEXTHOP IPv4 address
type IP struct {
	CodeFlags
	Addr netip.Addr
}

func NewIP(at CodeFlags) Attr {
	return &IP{CodeFlags: at}
}

func (a *IP) Unmarshal(buf []byte, ctx Ctx) error {
	if len(buf) != 4 {
		return fmt.Errorf("%w: %d", ErrLength, len(buf))
	}
	a.Addr = netip.AddrFrom4([4]byte(buf))
	return nil
}

func (a *IP) Marshal(dst []byte, ctx Ctx) []byte {
	addr := a.Addr.AsSlice()
	dst = a.CodeFlags.MarshalLen(dst, len(addr))
	return append(dst, addr...)
}

func (a *IP) ToJSON(dst []byte) []byte {
	return json.Addr(dst, a.Addr)
}
