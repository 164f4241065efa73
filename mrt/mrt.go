// Package mrt decodes routing table dumps in MRT format (RFC6396).
//
// Supported are TABLE_DUMP (AFI_IPv4 and AFI_IPv6) and the TABLE_DUMP_V2
// PEER_INDEX_TABLE, RIB_IPV4_UNICAST and RIB_IPV6_UNICAST subtypes.
// Everything else is returned as Unsupported, which is not an error.
package mrt

import (
	"strconv"

	"github.com/bgpfix/ribdump/binary"
)

// MRT message type, see https://www.iana.org/assignments/mrt/mrt.xhtml
type Type uint16

const (
	INVALID Type = 0

	OSPF2    Type = 11
	OSPF3    Type = 48
	OSPF3_ET Type = 49

	TABLE_DUMP  Type = 12
	TABLE_DUMP2 Type = 13

	BGP4MP    Type = 16
	BGP4MP_ET Type = 17

	ISIS    Type = 32
	ISIS_ET Type = 33
)

var typeNames = map[Type]string{
	OSPF2:       "OSPF2",
	OSPF3:       "OSPF3",
	OSPF3_ET:    "OSPF3_ET",
	TABLE_DUMP:  "TABLE_DUMP",
	TABLE_DUMP2: "TABLE_DUMP_V2",
	BGP4MP:      "BGP4MP",
	BGP4MP_ET:   "BGP4MP_ET",
	ISIS:        "ISIS",
	ISIS_ET:     "ISIS_ET",
}

// IsET returns true iff t is of Extended Timestamp type
func (t Type) IsET() bool {
	switch t {
	case BGP4MP_ET, OSPF3_ET, ISIS_ET:
		return true
	default:
		return false
	}
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return strconv.Itoa(int(t))
}

// MRT message subtype, see https://www.iana.org/assignments/mrt/mrt.xhtml
type Sub uint16

// TABLE_DUMP subtypes
const (
	AFI_IPv4 Sub = 1
	AFI_IPv6 Sub = 2
)

// TABLE_DUMP_V2 subtypes
const (
	PEER_INDEX_TABLE           Sub = 1
	RIB_IPV4_UNICAST           Sub = 2
	RIB_IPV4_MULTICAST         Sub = 3
	RIB_IPV6_UNICAST           Sub = 4
	RIB_IPV6_MULTICAST         Sub = 5
	RIB_GENERIC                Sub = 6
	GEO_PEER_TABLE             Sub = 7
	RIB_IPV4_UNICAST_ADDPATH   Sub = 8
	RIB_IPV4_MULTICAST_ADDPATH Sub = 9
	RIB_IPV6_UNICAST_ADDPATH   Sub = 10
	RIB_IPV6_MULTICAST_ADDPATH Sub = 11
	RIB_GENERIC_ADDPATH        Sub = 12
)

var subNames = map[Type]map[Sub]string{
	TABLE_DUMP: {
		AFI_IPv4: "AFI_IPv4",
		AFI_IPv6: "AFI_IPv6",
	},
	TABLE_DUMP2: {
		PEER_INDEX_TABLE:           "PEER_INDEX_TABLE",
		RIB_IPV4_UNICAST:           "RIB_IPV4_UNICAST",
		RIB_IPV4_MULTICAST:         "RIB_IPV4_MULTICAST",
		RIB_IPV6_UNICAST:           "RIB_IPV6_UNICAST",
		RIB_IPV6_MULTICAST:         "RIB_IPV6_MULTICAST",
		RIB_GENERIC:                "RIB_GENERIC",
		GEO_PEER_TABLE:             "GEO_PEER_TABLE",
		RIB_IPV4_UNICAST_ADDPATH:   "RIB_IPV4_UNICAST_ADDPATH",
		RIB_IPV4_MULTICAST_ADDPATH: "RIB_IPV4_MULTICAST_ADDPATH",
		RIB_IPV6_UNICAST_ADDPATH:   "RIB_IPV6_UNICAST_ADDPATH",
		RIB_IPV6_MULTICAST_ADDPATH: "RIB_IPV6_MULTICAST_ADDPATH",
		RIB_GENERIC_ADDPATH:        "RIB_GENERIC_ADDPATH",
	},
}

// SubString returns the name of subtype sub under type typ
func SubString(typ Type, sub Sub) string {
	if s, ok := subNames[typ][sub]; ok {
		return s
	}
	return strconv.Itoa(int(sub))
}

const (
	// MRT header length
	HEADLEN = 12 // = timestamp(4) + type(2) + subtype (2) + length (4)

	// extended timestamp length, counted in the header length
	ETLEN = 4
)

var (
	msb = binary.Msb
)
