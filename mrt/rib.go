package mrt

import (
	"fmt"
	"net/netip"

	"github.com/bgpfix/ribdump/afi"
	"github.com/bgpfix/ribdump/attrs"
	"github.com/bgpfix/ribdump/binary"
	"github.com/bgpfix/ribdump/json"
	"github.com/bgpfix/ribdump/nlri"
)

// RibEntry is a single route to the prefix of its parent RibEntries
type RibEntry struct {
	PeerIndex  uint16      // index into PeerIndexTable.Peers, not resolved
	Originated uint32      // time the route was received, seconds since the epoch
	Attrs      attrs.Attrs // BGP path attributes, in wire order
}

// RibEntries is the TABLE_DUMP_V2 RIB_IPV4_UNICAST or RIB_IPV6_UNICAST record (RFC6396/4.3.2)
type RibEntries struct {
	Header
	Afi      afi.AFI
	Sequence uint32
	Prefix   netip.Prefix
	Entries  []RibEntry
}

// AS numbers in TABLE_DUMP_V2 RIB attributes are always 4 bytes (RFC6396/4.3.4)
var ribCtx = attrs.Ctx{AS4: true, RIB: true}

func (r *RibEntries) unmarshal(c *binary.Cursor) (err error) {
	ipv6 := r.Afi == afi.AFI_IPV6

	if r.Sequence, err = c.Uint32(); err != nil {
		return fmt.Errorf("sequence: %w", err)
	}
	if r.Prefix, err = nlri.Read(c, ipv6); err != nil {
		return fmt.Errorf("prefix: %w", err)
	}

	count, err := c.Uint16()
	if err != nil {
		return fmt.Errorf("entry count: %w", err)
	}

	// min. entry length is 8 bytes
	r.Entries = make([]RibEntry, 0, min(int(count), c.Len()/8))
	for i := range int(count) {
		var e RibEntry
		if err := e.unmarshal(c, r.Afi); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		r.Entries = append(r.Entries, e)
	}

	return nil
}

func (e *RibEntry) unmarshal(c *binary.Cursor, af afi.AFI) (err error) {
	if e.PeerIndex, err = c.Uint16(); err != nil {
		return err
	}
	if e.Originated, err = c.Uint32(); err != nil {
		return err
	}

	al, err := c.Uint16()
	if err != nil {
		return err
	}
	buf, err := c.Bytes(int(al))
	if err != nil {
		return fmt.Errorf("attributes: %w", err)
	}
	if err := e.Attrs.Unmarshal(buf, ribCtx); err != nil {
		return fmt.Errorf("attributes: %w", err)
	}

	// abbreviated MP_REACH does not say its family
	for _, at := range e.Attrs {
		if mp, ok := at.(*attrs.MP); ok && mp.Short {
			mp.AS = afi.NewAS(af, afi.SAFI_UNICAST)
		}
	}

	return nil
}

// Validate checks all peer indexes in r against pt
func (r *RibEntries) Validate(pt *PeerIndexTable) error {
	for i := range r.Entries {
		if _, err := pt.Peer(r.Entries[i].PeerIndex); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return nil
}

// Origins returns the sorted, de-duplicated origin AS numbers over all entries,
// ignoring bogon ASNs. See attrs.Aspath.Origins.
func (r *RibEntries) Origins() ([]uint32, error) {
	var out []uint32
	for i := range r.Entries {
		ap := r.Entries[i].Attrs.Aspath()
		if ap == nil {
			continue
		}

		var err error
		out, err = ap.Origins(out)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return attrs.SortUnique(out), nil
}

func (e *RibEntry) ToJSON(dst []byte) []byte {
	dst = append(dst, '{')
	dst = json.Key(dst, "peer", true)
	dst = json.Uint16(dst, e.PeerIndex)
	dst = json.Key(dst, "originated", false)
	dst = json.Uint32(dst, e.Originated)
	dst = json.Key(dst, "attrs", false)
	dst = e.Attrs.ToJSON(dst)
	return append(dst, '}')
}

func (r *RibEntries) ToJSON(dst []byte) []byte {
	dst = append(dst, '{')
	dst = r.Header.toJSON(dst)
	dst = json.Key(dst, "seq", false)
	dst = json.Uint32(dst, r.Sequence)
	dst = json.Key(dst, "prefix", false)
	dst = json.Prefix(dst, r.Prefix)
	dst = json.Key(dst, "entries", false)
	dst = append(dst, '[')
	for i := range r.Entries {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = r.Entries[i].ToJSON(dst)
	}
	return append(dst, "]}"...)
}
