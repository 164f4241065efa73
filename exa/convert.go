package exa

import (
	"fmt"
	"iter"
	"net/netip"
	"strconv"
	"strings"

	"github.com/bgpfix/ribdump/afi"
	"github.com/bgpfix/ribdump/attrs"
	"github.com/bgpfix/ribdump/mrt"
)

// ToRoute converts an announce line x to route rt.
// The route has no peer index; its Peer holds the neighbor address, if given.
func (x *Exa) ToRoute(rt *mrt.Route) error {
	if x.Action != "announce" {
		return ErrInvalidAction
	}

	prefix, err := netip.ParsePrefix(x.Prefix)
	if err != nil {
		return ErrInvalidPrefix
	}

	*rt = mrt.Route{
		Prefix:    prefix.Masked(),
		PeerIndex: -1,
	}

	if x.Neighbor != "" {
		addr, err := netip.ParseAddr(x.Neighbor)
		if err != nil {
			return ErrInvalidNeighbor
		}
		rt.Peer = &mrt.Peer{Addr: addr}
		if addr.Is6() {
			rt.Peer.Type |= mrt.PEER_IPV6
		}
	}

	return x.writeAttrs(rt)
}

// writeAttrs creates the BGP attributes from Exa fields, in wire order
func (x *Exa) writeAttrs(rt *mrt.Route) error {
	ats := &rt.Attrs

	// Origin attribute
	if x.Origin != "" {
		orig := attrs.NewAttr(attrs.ATTR_ORIGIN, attrs.ATTR_TRANSITIVE).(*attrs.Origin)
		switch strings.ToUpper(x.Origin) {
		case "IGP":
			orig.Origin = attrs.ORIGIN_IGP
		case "EGP":
			orig.Origin = attrs.ORIGIN_EGP
		case "INCOMPLETE":
			orig.Origin = attrs.ORIGIN_INCOMPLETE
		default:
			return ErrInvalidOrigin
		}
		*ats = append(*ats, orig)
	}

	// AS path
	if len(x.ASPath) > 0 || len(x.ASSet) > 0 {
		ap := attrs.NewAttr(attrs.ATTR_ASPATH, attrs.ATTR_TRANSITIVE).(*attrs.Aspath)
		if len(x.ASPath) > 0 {
			ap.Segments = append(ap.Segments, attrs.AspathSegment{Type: attrs.AS_SEQUENCE, List: x.ASPath})
		}
		if len(x.ASSet) > 0 {
			ap.Segments = append(ap.Segments, attrs.AspathSegment{Type: attrs.AS_SET, List: x.ASSet})
		}
		*ats = append(*ats, ap)
	}

	// Next hop: IPv4 in NEXT_HOP, IPv6 in MP_REACH
	if x.NextHop != "" && x.NextHop != "self" {
		addr, err := netip.ParseAddr(x.NextHop)
		if err != nil {
			return ErrInvalidNextHop
		}

		if addr.Is4() {
			nh := attrs.NewAttr(attrs.ATTR_NEXTHOP, attrs.ATTR_TRANSITIVE).(*attrs.IP)
			nh.Addr = addr
			*ats = append(*ats, nh)
		} else if rt.Prefix.Addr().Is6() {
			mp := attrs.NewAttr(attrs.ATTR_MP_REACH, attrs.ATTR_OPTIONAL).(*attrs.MP)
			mp.AS = afi.AS_IPV6_UNICAST
			mp.NH = addr.AsSlice()
			mp.NextHop = addr
			mp.Prefixes = []netip.Prefix{rt.Prefix}
			*ats = append(*ats, mp)
		} else {
			return ErrInvalidNextHop // IPv6 next hop for IPv4 prefix
		}
	} else if x.NextHop == "self" {
		return ErrInvalidNextHop // no session to resolve it against
	}

	// MED
	if x.MED != nil {
		med := attrs.NewAttr(attrs.ATTR_MED, attrs.ATTR_OPTIONAL).(*attrs.U32)
		med.Val = *x.MED
		*ats = append(*ats, med)
	}

	// Local preference
	if x.LocalPref != nil {
		lp := attrs.NewAttr(attrs.ATTR_LOCALPREF, attrs.ATTR_TRANSITIVE).(*attrs.U32)
		lp.Val = *x.LocalPref
		*ats = append(*ats, lp)
	}

	// Communities
	if len(x.Community) > 0 {
		comm := attrs.NewAttr(attrs.ATTR_COMMUNITY, attrs.ATTR_OPTIONAL|attrs.ATTR_TRANSITIVE).(*attrs.Community)
		if err := x.writeCommunity(comm); err != nil {
			return err
		}
		*ats = append(*ats, comm)
	}

	return nil
}

// writeCommunity fills the COMMUNITY attribute
func (x *Exa) writeCommunity(comm *attrs.Community) error {
	for _, c := range x.Community {
		switch c {
		case "no-export":
			comm.Add(0xFFFF, 0xFF01)
		case "no-advertise":
			comm.Add(0xFFFF, 0xFF02)
		case "no-export-subconfed":
			comm.Add(0xFFFF, 0xFF03)
		case "no-peer":
			comm.Add(0xFFFF, 0xFF04)
		case "blackhole":
			comm.Add(0xFFFF, 0x029A)
		default:
			// Parse AS:value format
			parts := strings.Split(c, ":")
			if len(parts) == 2 {
				as, err1 := strconv.ParseUint(parts[0], 0, 16)
				val, err2 := strconv.ParseUint(parts[1], 0, 16)
				if err1 == nil && err2 == nil {
					comm.Add(uint16(as), uint16(val))
				} else {
					return ErrInvalidCommunity
				}
			} else {
				return ErrInvalidCommunity
			}
		}
	}

	return nil
}

// FromRoute sets x to an announce line for route rt
func (x *Exa) FromRoute(rt *mrt.Route) {
	x.Reset()
	x.Action = "announce"
	x.Prefix = rt.Prefix.String()
	if rt.Peer != nil && rt.Peer.Addr.IsValid() {
		x.Neighbor = rt.Peer.Addr.String()
	}
	x.readAttrs(rt.Attrs)
}

// IterRecord returns an iterator that converts MRT RIB records to Exa lines,
// resolving peers in pt (may be nil). For each route, it yields x after updating it.
// Records other than RibEntries and TableDump yield nothing.
func (x *Exa) IterRecord(rec mrt.Record, pt *mrt.PeerIndexTable) iter.Seq2[*Exa, error] {
	return func(yield func(*Exa, error) bool) {
		var routes []mrt.Route
		switch r := rec.(type) {
		case *mrt.RibEntries:
			var err error
			routes, err = r.Routes(pt)
			if err != nil {
				yield(nil, fmt.Errorf("%s prefix %s: %w", r.Head(), r.Prefix, err))
				return
			}
		case *mrt.TableDump:
			routes = []mrt.Route{r.Route()}
		default:
			return
		}

		for i := range routes {
			x.FromRoute(&routes[i])
			if !yield(x, nil) {
				return
			}
		}
	}
}

// readAttrs extracts BGP attributes into Exa
func (x *Exa) readAttrs(ats attrs.Attrs) {
	// no attributes defined?
	if len(ats) == 0 {
		return
	}

	// Next hop, from NEXT_HOP or MP_REACH
	if nh := ats.NextHop(); nh.IsValid() {
		x.NextHop = nh.String()
	}

	// Origin
	if orig, ok := ats.Find(attrs.ATTR_ORIGIN).(*attrs.Origin); ok {
		switch orig.Origin {
		case attrs.ORIGIN_IGP:
			x.Origin = "IGP"
		case attrs.ORIGIN_EGP:
			x.Origin = "EGP"
		case attrs.ORIGIN_INCOMPLETE:
			x.Origin = "INCOMPLETE"
		}
	}

	// AS path: sequences in order, the last set kept apart; confederations skipped
	if aspath := ats.Aspath(); aspath != nil {
		for i, seg := range aspath.Segments {
			switch {
			case seg.Type == attrs.AS_SEQUENCE:
				x.ASPath = append(x.ASPath, seg.List...)
			case seg.Type == attrs.AS_SET && i == len(aspath.Segments)-1:
				x.ASSet = seg.List
			case seg.Type == attrs.AS_SET:
				x.ASPath = append(x.ASPath, seg.List...)
			}
		}
	}

	// MED
	if med, ok := ats.Find(attrs.ATTR_MED).(*attrs.U32); ok {
		x.MED = &med.Val
	}

	// Local preference
	if lp, ok := ats.Find(attrs.ATTR_LOCALPREF).(*attrs.U32); ok {
		x.LocalPref = &lp.Val
	}

	// Communities
	if comm := ats.Community(); comm.Len() > 0 {
		var communities []string

		for i := 0; i < comm.Len(); i++ {
			as := comm.ASN[i]
			val := comm.Value[i]
			if as == 0xFFFF {
				switch val {
				case 0xFF01:
					communities = append(communities, "no-export")
				case 0xFF02:
					communities = append(communities, "no-advertise")
				case 0xFF03:
					communities = append(communities, "no-export-subconfed")
				case 0xFF04:
					communities = append(communities, "no-peer")
				case 0x029A:
					communities = append(communities, "blackhole")
				default:
					communities = append(communities, fmt.Sprintf("%d:%d", as, val))
				}
			} else {
				communities = append(communities, fmt.Sprintf("%d:%d", as, val))
			}
		}

		x.Community = communities
	}
}
