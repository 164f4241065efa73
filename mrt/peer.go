package mrt

import (
	"fmt"
	"net/netip"
	"unicode/utf8"

	"github.com/bgpfix/ribdump/binary"
	"github.com/bgpfix/ribdump/json"
)

// PeerType holds the peer entry flags
type PeerType uint8

const (
	PEER_IPV6 PeerType = 0b00000001 // peer address is IPv6
	PEER_AS4  PeerType = 0b00000010 // peer AS number is 4 bytes
)

// Peer is a PEER_INDEX_TABLE entry
type Peer struct {
	Type  PeerType
	BgpId netip.Addr // BGP identifier
	Addr  netip.Addr // peer address
	AS    uint32     // peer AS number
}

// PeerIndexTable is the TABLE_DUMP_V2 PEER_INDEX_TABLE record (RFC6396/4.3.1).
// Position in Peers is the index referenced by RibEntry.PeerIndex.
type PeerIndexTable struct {
	Header
	CollectorId netip.Addr
	ViewName    string
	Peers       []Peer
}

func (pt *PeerIndexTable) unmarshal(c *binary.Cursor) (err error) {
	// collector BGP id
	if pt.CollectorId, err = c.Addr4(); err != nil {
		return fmt.Errorf("collector id: %w", err)
	}

	// view name
	vl, err := c.Uint16()
	if err != nil {
		return fmt.Errorf("view name length: %w", err)
	}
	vn, err := c.Bytes(int(vl))
	if err != nil {
		return fmt.Errorf("view name: %w", err)
	}
	if !utf8.Valid(vn) {
		return fmt.Errorf("view name: %w: not UTF-8", ErrEncoding)
	}
	pt.ViewName = string(vn)

	// peers
	count, err := c.Uint16()
	if err != nil {
		return fmt.Errorf("peer count: %w", err)
	}
	pt.Peers = make([]Peer, 0, min(int(count), c.Len()/11))
	for i := range int(count) {
		var p Peer
		if err := p.unmarshal(c); err != nil {
			return fmt.Errorf("peer %d: %w", i, err)
		}
		pt.Peers = append(pt.Peers, p)
	}

	return nil
}

func (p *Peer) unmarshal(c *binary.Cursor) error {
	typ, err := c.Uint8()
	if err != nil {
		return err
	}
	p.Type = PeerType(typ)

	if p.BgpId, err = c.Addr4(); err != nil {
		return err
	}
	if p.Addr, err = c.Addr(p.Type&PEER_IPV6 != 0); err != nil {
		return err
	}
	if p.AS, err = c.UintN(p.Type&PEER_AS4 != 0); err != nil {
		return err
	}
	return nil
}

// Peer returns the peer at index idx, or ErrPeerIndex if out of range
func (pt *PeerIndexTable) Peer(idx uint16) (*Peer, error) {
	if pt == nil {
		return nil, ErrNoPeers
	}
	if int(idx) >= len(pt.Peers) {
		return nil, fmt.Errorf("%w: %d not below %d", ErrPeerIndex, idx, len(pt.Peers))
	}
	return &pt.Peers[idx], nil
}

func (p *Peer) ToJSON(dst []byte) []byte {
	dst = append(dst, '{')
	dst = json.Key(dst, "bgp_id", true)
	dst = json.Addr(dst, p.BgpId)
	dst = json.Key(dst, "addr", false)
	dst = json.Addr(dst, p.Addr)
	dst = json.Key(dst, "as", false)
	dst = json.Uint32(dst, p.AS)
	dst = json.Key(dst, "as4", false)
	dst = json.Bool(dst, p.Type&PEER_AS4 != 0)
	return append(dst, '}')
}

func (p *Peer) FromJSON(src []byte) error {
	return json.ObjectEach(src, func(key string, val []byte, typ json.Type) (err error) {
		switch key {
		case "bgp_id":
			p.BgpId, err = json.UnAddr(val)
		case "addr":
			p.Addr, err = json.UnAddr(val)
			if err == nil && p.Addr.Is6() {
				p.Type |= PEER_IPV6
			}
		case "as":
			p.AS, err = json.UnUint32(val)
		case "as4":
			if json.SQ(val) == "true" {
				p.Type |= PEER_AS4
			}
		}
		return err
	})
}

func (pt *PeerIndexTable) ToJSON(dst []byte) []byte {
	dst = append(dst, '{')
	dst = pt.Header.toJSON(dst)
	dst = json.Key(dst, "collector", false)
	dst = json.Addr(dst, pt.CollectorId)
	dst = json.Key(dst, "view", false)
	dst = json.Str(dst, pt.ViewName)
	dst = json.Key(dst, "peers", false)
	dst = append(dst, '[')
	for i := range pt.Peers {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = pt.Peers[i].ToJSON(dst)
	}
	return append(dst, "]}"...)
}

// FromJSON reads a peer table previously written by ToJSON, eg. a saved sidecar file
// for RIB dumps split from their PEER_INDEX_TABLE.
func (pt *PeerIndexTable) FromJSON(src []byte) error {
	pt.Header = Header{Type: TABLE_DUMP2, Sub: PEER_INDEX_TABLE}
	pt.Peers = pt.Peers[:0]

	return json.ObjectEach(src, func(key string, val []byte, typ json.Type) (err error) {
		switch key {
		case "collector":
			pt.CollectorId, err = json.UnAddr(val)
		case "view":
			pt.ViewName, err = json.UnStr(val)
		case "peers":
			err = json.ArrayEach(val, func(_ int, pval []byte, _ json.Type) error {
				var p Peer
				if err := p.FromJSON(pval); err != nil {
					return err
				}
				pt.Peers = append(pt.Peers, p)
				return nil
			})
		}
		return err
	})
}
