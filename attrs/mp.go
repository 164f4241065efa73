package attrs

import (
	"fmt"
	"net/netip"

	"github.com/bgpfix/ribdump/afi"
	"github.com/bgpfix/ribdump/binary"
	"github.com/bgpfix/ribdump/json"
	"github.com/bgpfix/ribdump/nlri"
)

// MP represents ATTR_MP_REACH.
//
// In MRT RIB entries, the attribute is usually abbreviated to the next hop
// length and value only (RFC6396 4.3.4); Short is true in that case.
type MP struct {
	CodeFlags
	AS    afi.AS // AFI/SAFI, may be set by the caller if Short
	Short bool   // abbreviated RIB form: next hop only

	NH        []byte     // raw next hop
	NextHop   netip.Addr // interpreted NH, if possible
	LinkLocal netip.Addr // IPv6 link-local NH, if present
	Reserved  byte       // the reserved byte after NH

	Prefixes []netip.Prefix // reachable prefixes, for IPv4/IPv6 unicast
	Data     []byte         // raw NLRI for other AFI/SAFI
}

func NewMP(at CodeFlags) Attr {
	return &MP{CodeFlags: at}
}

// ParseNH is best-effort parser for Next Hop value in buf
func ParseNH(buf []byte) (addr, ll netip.Addr, ok bool) {
	switch len(buf) {
	case 4:
		ok = true
		addr = netip.AddrFrom4([4]byte(buf))
	case 12: // RD + IPv4
		ok = true
		addr = netip.AddrFrom4([4]byte(buf[8:12]))
	case 16:
		ok = true
		addr = netip.AddrFrom16([16]byte(buf))
	case 24: // RD + IPv6
		ok = true
		addr = netip.AddrFrom16([16]byte(buf[8:24]))
	case 32:
		ok = true
		addr = netip.AddrFrom16([16]byte(buf[0:16]))
		ll = netip.AddrFrom16([16]byte(buf[16:32]))
	case 48: // RD + IPv6, RD + link-local
		ok = true
		addr = netip.AddrFrom16([16]byte(buf[8:24]))
		ll = netip.AddrFrom16([16]byte(buf[32:48]))
	}
	return
}

func (mp *MP) Unmarshal(buf []byte, ctx Ctx) error {
	mp.NH, mp.Data, mp.Prefixes = nil, nil, nil

	// abbreviated form?
	if ctx.RIB && len(buf) > 0 && int(buf[0]) == len(buf)-1 {
		mp.Short = true
		mp.NH = append([]byte(nil), buf[1:]...)
		mp.NextHop, mp.LinkLocal, _ = ParseNH(mp.NH)
		return nil
	}
	mp.Short = false

	c := binary.NewCursor(buf)

	// afi + safi
	afs, err := c.Bytes(3)
	if err != nil {
		return fmt.Errorf("AFI/SAFI: %w", err)
	}
	mp.AS = afi.NewASBytes(afs)

	// nexthop
	nhl, err := c.Uint8()
	if err != nil {
		return fmt.Errorf("next hop: %w", err)
	}
	if mp.NH, err = c.Copy(int(nhl)); err != nil {
		return fmt.Errorf("next hop: %w", err)
	}
	mp.NextHop, mp.LinkLocal, _ = ParseNH(mp.NH)

	if mp.Reserved, err = c.Uint8(); err != nil {
		return err
	}

	// nlri
	if mp.AS.IsUnicastIP() {
		mp.Prefixes, err = nlri.ReadAll(nil, c, mp.AS.Afi() == afi.AFI_IPV6)
		return err
	}
	mp.Data = append([]byte(nil), c.Rest()...)
	return nil
}

func (mp *MP) Marshal(dst []byte, ctx Ctx) []byte {
	if mp.Short {
		dst = mp.CodeFlags.MarshalLen(dst, 1+len(mp.NH))
		dst = append(dst, byte(len(mp.NH)))
		return append(dst, mp.NH...)
	}

	data := mp.Data
	if mp.AS.IsUnicastIP() {
		data = nil
		for _, p := range mp.Prefixes {
			data = nlri.Append(data, p)
		}
	}

	tl := 3 + 1 + len(mp.NH) + 1 + len(data) // afi + safi + nh len + nh + reserved + nlri
	dst = mp.CodeFlags.MarshalLen(dst, tl)
	dst = mp.AS.Marshal3(dst)
	dst = append(dst, byte(len(mp.NH)))
	dst = append(dst, mp.NH...)
	dst = append(dst, mp.Reserved)
	return append(dst, data...)
}

func (mp *MP) ToJSON(dst []byte) []byte {
	dst = append(dst, '{')
	dst = json.Key(dst, "af", true)
	dst = mp.AS.ToJSON(dst)

	if mp.NextHop.IsValid() {
		dst = json.Key(dst, "nexthop", false)
		dst = json.Addr(dst, mp.NextHop)
		if mp.LinkLocal.IsValid() {
			dst = json.Key(dst, "link-local", false)
			dst = json.Addr(dst, mp.LinkLocal)
		}
	} else if len(mp.NH) > 0 {
		dst = json.Key(dst, "nh", false)
		dst = json.Hex(dst, mp.NH)
	}

	switch {
	case mp.Short:
		// no NLRI
	case mp.AS.IsUnicastIP():
		dst = json.Key(dst, "prefixes", false)
		dst = json.Prefixes(dst, mp.Prefixes)
	default:
		dst = json.Key(dst, "data", false)
		dst = json.Hex(dst, mp.Data)
	}
	return append(dst, '}')
}
