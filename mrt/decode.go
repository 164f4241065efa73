package mrt

import (
	"github.com/bgpfix/ribdump/afi"
	"github.com/bgpfix/ribdump/binary"
)

// Decode decodes the body of an MRT message with header h.
//
// body must hold exactly h.Length bytes, starting with the microseconds
// field for Extended Timestamp types, which is copied to Header.Micro when
// present. Bytes left after a successful decode are ignored. Decode does not keep references to body, and is safe for
// concurrent use.
//
// Types and subtypes not decoded by this package return *Unsupported.
func Decode(h Header, body []byte) (Record, error) {
	c := binary.NewCursor(body)

	// extended timestamp? none of the ET types is decoded, so a short body is not an error
	if h.Type.IsET() && len(body) >= 4 {
		h.Micro = msb.Uint32(body)
	}

	switch {
	case h.Type == TABLE_DUMP && (h.Sub == AFI_IPv4 || h.Sub == AFI_IPv6):
		td := &TableDump{Header: h}
		if err := td.unmarshal(c, h.Sub == AFI_IPv6); err != nil {
			return nil, err
		}
		return td, nil

	case h.Type == TABLE_DUMP2 && h.Sub == PEER_INDEX_TABLE:
		pt := &PeerIndexTable{Header: h}
		if err := pt.unmarshal(c); err != nil {
			return nil, err
		}
		return pt, nil

	case h.Type == TABLE_DUMP2 && (h.Sub == RIB_IPV4_UNICAST || h.Sub == RIB_IPV6_UNICAST):
		r := &RibEntries{Header: h, Afi: afi.AFI_IPV4}
		if h.Sub == RIB_IPV6_UNICAST {
			r.Afi = afi.AFI_IPV6
		}
		if err := r.unmarshal(c); err != nil {
			return nil, err
		}
		return r, nil

	default:
		return &Unsupported{
			Header: h,
			Data:   append([]byte{}, body...),
		}, nil
	}
}
