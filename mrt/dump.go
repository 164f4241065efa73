package mrt

import (
	"fmt"
	"net/netip"

	"github.com/bgpfix/ribdump/attrs"
	"github.com/bgpfix/ribdump/binary"
	"github.com/bgpfix/ribdump/json"
)

// TableDump is the legacy TABLE_DUMP record (RFC6396/4.2): one route per record
type TableDump struct {
	Header
	View       uint16
	Sequence   uint16
	Prefix     netip.Prefix
	Status     uint8
	Originated uint32
	PeerIP     netip.Addr
	PeerAS     uint32
	Attrs      attrs.Attrs
}

// AS numbers in TABLE_DUMP attributes are 2 bytes
var dumpCtx = attrs.Ctx{}

func (td *TableDump) unmarshal(c *binary.Cursor, ipv6 bool) (err error) {
	if td.View, err = c.Uint16(); err != nil {
		return fmt.Errorf("view: %w", err)
	}
	if td.Sequence, err = c.Uint16(); err != nil {
		return fmt.Errorf("sequence: %w", err)
	}

	// prefix: full address, then its length
	addr, err := c.Addr(ipv6)
	if err != nil {
		return fmt.Errorf("prefix: %w", err)
	}
	pl, err := c.Uint8()
	if err != nil {
		return fmt.Errorf("prefix length: %w", err)
	}
	if int(pl) > addr.BitLen() {
		return fmt.Errorf("prefix: %w: /%d", ErrPrefixLength, pl)
	}
	if td.Prefix, err = addr.Prefix(int(pl)); err != nil {
		return fmt.Errorf("prefix: %w", err)
	}

	if td.Status, err = c.Uint8(); err != nil {
		return fmt.Errorf("status: %w", err)
	}
	if td.Originated, err = c.Uint32(); err != nil {
		return fmt.Errorf("originated: %w", err)
	}
	if td.PeerIP, err = c.Addr(ipv6); err != nil {
		return fmt.Errorf("peer address: %w", err)
	}
	if td.PeerAS, err = c.UintN(false); err != nil {
		return fmt.Errorf("peer AS: %w", err)
	}

	al, err := c.Uint16()
	if err != nil {
		return fmt.Errorf("attribute length: %w", err)
	}
	buf, err := c.Bytes(int(al))
	if err != nil {
		return fmt.Errorf("attributes: %w", err)
	}
	if err := td.Attrs.Unmarshal(buf, dumpCtx); err != nil {
		return fmt.Errorf("attributes: %w", err)
	}

	return nil
}

// Origins returns the sorted origin AS numbers of td, ignoring bogon ASNs
func (td *TableDump) Origins() ([]uint32, error) {
	ap := td.Attrs.Aspath()
	if ap == nil {
		return nil, nil
	}
	out, err := ap.Origins(nil)
	if err != nil {
		return nil, err
	}
	return attrs.SortUnique(out), nil
}

func (td *TableDump) ToJSON(dst []byte) []byte {
	dst = append(dst, '{')
	dst = td.Header.toJSON(dst)
	dst = json.Key(dst, "view", false)
	dst = json.Uint16(dst, td.View)
	dst = json.Key(dst, "seq", false)
	dst = json.Uint16(dst, td.Sequence)
	dst = json.Key(dst, "prefix", false)
	dst = json.Prefix(dst, td.Prefix)
	dst = json.Key(dst, "status", false)
	dst = json.Byte(dst, td.Status)
	dst = json.Key(dst, "originated", false)
	dst = json.Uint32(dst, td.Originated)
	dst = json.Key(dst, "peer_ip", false)
	dst = json.Addr(dst, td.PeerIP)
	dst = json.Key(dst, "peer_as", false)
	dst = json.Uint32(dst, td.PeerAS)
	dst = json.Key(dst, "attrs", false)
	dst = td.Attrs.ToJSON(dst)
	return append(dst, '}')
}
