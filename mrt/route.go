package mrt

import (
	"net/netip"
	"time"

	"github.com/bgpfix/ribdump/afi"
	"github.com/bgpfix/ribdump/attrs"
	"github.com/bgpfix/ribdump/json"
)

// Route is a single RIB route, flattened from RibEntries or TableDump
type Route struct {
	Time       time.Time    // dump time
	Prefix     netip.Prefix // destination
	PeerIndex  int          // index in the peer table, or -1 for TABLE_DUMP
	Peer       *Peer        // peer that sent the route, if known
	Originated time.Time    // when the route was received
	Attrs      attrs.Attrs  // path attributes
}

// Afi returns the address family of the route prefix
func (rt *Route) Afi() afi.AFI {
	if rt.Prefix.Addr().Is4() {
		return afi.AFI_IPV4
	}
	return afi.AFI_IPV6
}

// Routes flattens r into routes, one per entry, resolving peers in pt.
// If pt is nil, Peer is left nil. Fails with ErrPeerIndex on an index not in pt.
func (r *RibEntries) Routes(pt *PeerIndexTable) ([]Route, error) {
	out := make([]Route, 0, len(r.Entries))
	for i := range r.Entries {
		e := &r.Entries[i]
		rt := Route{
			Time:       r.Time(),
			Prefix:     r.Prefix,
			PeerIndex:  int(e.PeerIndex),
			Originated: time.Unix(int64(e.Originated), 0).UTC(),
			Attrs:      e.Attrs,
		}
		if pt != nil {
			p, err := pt.Peer(e.PeerIndex)
			if err != nil {
				return out, err
			}
			rt.Peer = p
		}
		out = append(out, rt)
	}
	return out, nil
}

// Route returns td as a Route
func (td *TableDump) Route() Route {
	typ := PeerType(0)
	if td.PeerIP.Is6() {
		typ |= PEER_IPV6
	}
	return Route{
		Time:       td.Time(),
		Prefix:     td.Prefix,
		PeerIndex:  -1,
		Peer:       &Peer{Type: typ, Addr: td.PeerIP, AS: td.PeerAS},
		Originated: time.Unix(int64(td.Originated), 0).UTC(),
		Attrs:      td.Attrs,
	}
}

func (rt *Route) ToJSON(dst []byte) []byte {
	dst = append(dst, '{')
	dst = json.Key(dst, "time", true)
	dst = append(dst, '"')
	dst = rt.Time.AppendFormat(dst, time.RFC3339)
	dst = append(dst, '"')
	dst = json.Key(dst, "prefix", false)
	dst = json.Prefix(dst, rt.Prefix)
	if rt.PeerIndex >= 0 {
		dst = json.Key(dst, "peer_index", false)
		dst = json.Uint32(dst, uint32(rt.PeerIndex))
	}
	if rt.Peer != nil {
		dst = json.Key(dst, "peer_ip", false)
		dst = json.Addr(dst, rt.Peer.Addr)
		dst = json.Key(dst, "peer_as", false)
		dst = json.Uint32(dst, rt.Peer.AS)
	}
	dst = json.Key(dst, "originated", false)
	dst = append(dst, '"')
	dst = rt.Originated.AppendFormat(dst, time.RFC3339)
	dst = append(dst, '"')
	dst = json.Key(dst, "attrs", false)
	dst = rt.Attrs.ToJSON(dst)
	return append(dst, '}')
}
