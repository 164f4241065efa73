package afi

import (
	"strings"

	"github.com/bgpfix/ribdump/binary"
	"github.com/bgpfix/ribdump/json"
)

var msb = binary.Msb

// AS represents AFI+SAFI as afi(16) + 0(8) + safi(8)
type AS uint32

// common AFI + SAFI combinations
var (
	AS_INVALID = NewAS(AFI_INVALID, SAFI_INVALID)

	AS_IPV4_UNICAST   = NewAS(AFI_IPV4, SAFI_UNICAST)
	AS_IPV4_MULTICAST = NewAS(AFI_IPV4, SAFI_MULTICAST)

	AS_IPV6_UNICAST   = NewAS(AFI_IPV6, SAFI_UNICAST)
	AS_IPV6_MULTICAST = NewAS(AFI_IPV6, SAFI_MULTICAST)
)

// NewAS returns AS for given Afi and Safi
func NewAS(afi AFI, safi SAFI) AS {
	return AS(uint32(afi)<<16 | uint32(safi))
}

// NewASBytes reads AS from its 3-byte wire representation in buf
func NewASBytes(buf []byte) AS {
	if len(buf) < 3 {
		return 0
	}
	return AS(uint32(msb.Uint16(buf[0:2]))<<16 | uint32(buf[2]))
}

// Marshal3 marshals AS as 3 bytes
func (as AS) Marshal3(dst []byte) []byte {
	dst = msb.AppendUint16(dst, uint16(as.Afi()))
	return append(dst, byte(as.Safi()))
}

func (as AS) Afi() AFI {
	return AFI(as >> 16)
}

func (as AS) Safi() SAFI {
	return SAFI(as)
}

// IsUnicastIP returns true for IPv4 or IPv6 unicast
func (as AS) IsUnicastIP() bool {
	return as == AS_IPV4_UNICAST || as == AS_IPV6_UNICAST
}

func (as AS) String() string {
	return as.Afi().String() + "/" + as.Safi().String()
}

func (as AS) ToJSON(dst []byte) []byte {
	dst = append(dst, '"')
	dst = append(dst, as.String()...)
	return append(dst, '"')
}

// FromJSON parses "AFI/SAFI" in src
func (as *AS) FromJSON(src []byte) error {
	s1, s2, ok := strings.Cut(json.SQ(src), "/")
	if !ok {
		return json.ErrValue
	}

	afi, err := AFIString(s1)
	if err != nil {
		return err
	}

	safi, err := SAFIString(s2)
	if err != nil {
		return err
	}

	*as = NewAS(afi, safi)
	return nil
}
