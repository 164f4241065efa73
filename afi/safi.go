package afi

import (
	"fmt"
	"strconv"
	"strings"
)

// SAFI is the Subsequent Address Family Identifier (RFC4760)
type SAFI uint8

const (
	SAFI_INVALID   SAFI = 0
	SAFI_UNICAST   SAFI = 1
	SAFI_MULTICAST SAFI = 2
	SAFI_MPLS      SAFI = 4
	SAFI_MPLS_VPN  SAFI = 128
	SAFI_FLOWSPEC  SAFI = 133
)

var safiNames = map[SAFI]string{
	SAFI_INVALID:   "INVALID",
	SAFI_UNICAST:   "UNICAST",
	SAFI_MULTICAST: "MULTICAST",
	SAFI_MPLS:      "MPLS",
	SAFI_MPLS_VPN:  "MPLS_VPN",
	SAFI_FLOWSPEC:  "FLOWSPEC",
}

func (s SAFI) String() string {
	if name, ok := safiNames[s]; ok {
		return name
	}
	return "SAFI(" + strconv.Itoa(int(s)) + ")"
}

// SAFIString parses s (case-insensitive) into SAFI
func SAFIString(s string) (SAFI, error) {
	s = strings.ToUpper(s)
	for v, name := range safiNames {
		if name == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%s does not belong to SAFI values", s)
}
