package attrs

import (
	"fmt"
	"slices"
)

// IsBogonASN returns true for AS numbers that should never originate routes:
// 0, the documentation and private ranges 64496-131071, and anything above
// 1000000, which is far beyond what the RIRs have allocated.
func IsBogonASN(asn uint32) bool {
	return asn == 0 || (asn >= 64496 && asn <= 131071) || asn > 1_000_000
}

// Origins appends to dst the origin AS numbers of a, skipping bogons.
//
// Segments are walked from the end. For an AS_SEQUENCE, the last non-bogon ASN
// is the origin; if there is none, the walk continues with the previous segment.
// For an AS_SET, all non-bogon members are origins and the walk stops.
// Confederation and unknown segments are errors.
func (a *Aspath) Origins(dst []uint32) ([]uint32, error) {
	if a == nil {
		return dst, ErrNoOrigin
	}

	for i := len(a.Segments) - 1; i >= 0; i-- {
		seg := &a.Segments[i]
		switch seg.Type {
		case AS_SEQUENCE:
			for j := len(seg.List) - 1; j >= 0; j-- {
				if !IsBogonASN(seg.List[j]) {
					return append(dst, seg.List[j]), nil
				}
			}
		case AS_SET:
			for _, asn := range seg.List {
				if !IsBogonASN(asn) {
					dst = append(dst, asn)
				}
			}
			return dst, nil
		default:
			return dst, fmt.Errorf("%w: %s", ErrSegType, seg.Type)
		}
	}

	return dst, ErrNoOrigin
}

// SortUnique sorts asns and removes duplicates
func SortUnique(asns []uint32) []uint32 {
	slices.Sort(asns)
	return slices.Compact(asns)
}
