// Package afi implements Address Family Identifiers, SAFIs, and their combinations
package afi

import (
	"fmt"
	"strconv"
	"strings"
)

// AFI is the Address Family Identifier (RFC4760)
type AFI uint16

const (
	AFI_INVALID AFI = 0
	AFI_IPV4    AFI = 1
	AFI_IPV6    AFI = 2
	AFI_L2VPN   AFI = 25
	AFI_LS      AFI = 16388
)

var afiNames = map[AFI]string{
	AFI_INVALID: "INVALID",
	AFI_IPV4:    "IPV4",
	AFI_IPV6:    "IPV6",
	AFI_L2VPN:   "L2VPN",
	AFI_LS:      "LS",
}

// NewAFIBytes reads AFI from wire representation in buf
func NewAFIBytes(buf []byte) AFI {
	if len(buf) >= 2 {
		return AFI(msb.Uint16(buf))
	} else {
		return 0
	}
}

// IsIP returns true for IPv4 and IPv6
func (a AFI) IsIP() bool {
	return a == AFI_IPV4 || a == AFI_IPV6
}

// Bits returns the address width in bits, or 0 for non-IP families
func (a AFI) Bits() int {
	switch a {
	case AFI_IPV4:
		return 32
	case AFI_IPV6:
		return 128
	default:
		return 0
	}
}

func (a AFI) String() string {
	if s, ok := afiNames[a]; ok {
		return s
	}
	return "AFI(" + strconv.Itoa(int(a)) + ")"
}

// AFIString parses s (case-insensitive) into AFI
func AFIString(s string) (AFI, error) {
	s = strings.ToUpper(s)
	for v, name := range afiNames {
		if name == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%s does not belong to AFI values", s)
}
