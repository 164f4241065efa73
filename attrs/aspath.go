package attrs

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/bgpfix/ribdump/binary"
	"github.com/bgpfix/ribdump/json"
)

// SegType is the AS_PATH segment type
type SegType byte

const (
	AS_SET             SegType = 1
	AS_SEQUENCE        SegType = 2
	AS_CONFED_SEQUENCE SegType = 3
	AS_CONFED_SET      SegType = 4
)

func (st SegType) String() string {
	switch st {
	case AS_SET:
		return "set"
	case AS_SEQUENCE:
		return "seq"
	case AS_CONFED_SEQUENCE:
		return "confed_seq"
	case AS_CONFED_SET:
		return "confed_set"
	default:
		return "seg" + strconv.Itoa(int(st))
	}
}

// Aspath represents ATTR_ASPATH
type Aspath struct {
	CodeFlags
	Segments []AspathSegment
}

// AspathSegment represents an AS_PATH segment
type AspathSegment struct {
	Type SegType  // segment type, kept even if unknown
	List []uint32 // list of AS numbers
}

// IsSet returns true iff seg is an AS_SET or AS_CONFED_SET
func (seg *AspathSegment) IsSet() bool {
	return seg.Type == AS_SET || seg.Type == AS_CONFED_SET
}

func NewAspath(at CodeFlags) Attr {
	return &Aspath{CodeFlags: at}
}

// Unmarshal reads AS_PATH segments; the ASN width comes from ctx.AS4
func (a *Aspath) Unmarshal(buf []byte, ctx Ctx) error {
	a.Segments = a.Segments[:0]

	c := binary.NewCursor(buf)
	for c.Len() > 0 {
		typ, err := c.Uint8()
		if err != nil {
			return err
		}
		count, err := c.Uint8()
		if err != nil {
			return fmt.Errorf("segment %d: %w", len(a.Segments), err)
		}

		seg := AspathSegment{
			Type: SegType(typ),
			List: make([]uint32, 0, count),
		}
		for range count {
			asn, err := c.UintN(ctx.AS4)
			if err != nil {
				return fmt.Errorf("segment %d: %w", len(a.Segments), err)
			}
			seg.List = append(seg.List, asn)
		}

		a.Segments = append(a.Segments, seg)
	}

	return nil
}

func (a *Aspath) Marshal(dst []byte, ctx Ctx) []byte {
	asnlen := 2
	if ctx.AS4 {
		asnlen = 4
	}

	// total length
	l := 0
	for _, seg := range a.Segments {
		l += 1 + 1 + asnlen*len(seg.List)
	}

	// attr flags, code, length
	dst = a.CodeFlags.MarshalLen(dst, l)

	// attr value
	for _, seg := range a.Segments {
		dst = append(dst, byte(seg.Type), byte(len(seg.List)))
		for _, hop := range seg.List {
			dst = msb.AppendUintN(dst, hop, ctx.AS4)
		}
	}

	return dst
}

// ToJSON writes AS_SEQUENCE members inline and AS_SETs as nested arrays.
// Confederation and unknown segments become {"type":[...]} objects.
func (a *Aspath) ToJSON(dst []byte) []byte {
	dst = append(dst, '[')
	first := true
	for i := range a.Segments {
		seg := &a.Segments[i]
		switch seg.Type {
		case AS_SEQUENCE:
			for _, asn := range seg.List {
				if !first {
					dst = append(dst, ',')
				}
				first = false
				dst = strconv.AppendUint(dst, uint64(asn), 10)
			}
			continue
		}

		if !first {
			dst = append(dst, ',')
		}
		first = false

		if seg.Type == AS_SET {
			dst = json.Uint32s(dst, seg.List)
		} else {
			dst = append(dst, `{"`...)
			dst = append(dst, seg.Type.String()...)
			dst = append(dst, `":`...)
			dst = json.Uint32s(dst, seg.List)
			dst = append(dst, '}')
		}
	}
	return append(dst, ']')
}

func (a *Aspath) String() string {
	if a != nil {
		return string(a.ToJSON(nil))
	} else {
		return "(nil)"
	}
}

// Len returns the path length as used in BGP best path selection:
// sequence members count one each, a set counts as one, confederations do not count.
func (a *Aspath) Len() (l int) {
	if a == nil {
		return 0
	}
	for i := range a.Segments {
		switch a.Segments[i].Type {
		case AS_SEQUENCE:
			l += len(a.Segments[i].List)
		case AS_SET:
			l++
		}
	}
	return l
}

// HasAsn returns true if a has given asn anywhere in AS_PATH
func (a *Aspath) HasAsn(asn uint32) bool {
	if a == nil {
		return false
	}
	for si := range a.Segments {
		if slices.Contains(a.Segments[si].List, asn) {
			return true
		}
	}
	return false
}

// HasOrigin returns true iff a has given asn at the origin.
// In case of origin AS sets, asn must be one of the set elements.
func (a *Aspath) HasOrigin(asn uint32) bool {
	if a == nil {
		return false
	}
	lastseg := len(a.Segments) - 1
	if lastseg < 0 {
		return false // no segments?
	}

	seg := &a.Segments[lastseg]
	if sl := len(seg.List); sl == 0 {
		return false // no ASes in the last segment?!
	} else if seg.IsSet() {
		return slices.Contains(seg.List, asn)
	} else {
		return seg.List[sl-1] == asn
	}
}

// Origin returns the last AS in AS_PATH, or 0 on error.
// It treats AS_SET origins as errors.
func (a *Aspath) Origin() uint32 {
	if a == nil {
		return 0
	}

	lastseg := len(a.Segments) - 1
	if lastseg < 0 {
		return 0 // no segments?
	}

	seg := &a.Segments[lastseg]
	if sl := len(seg.List); sl == 0 {
		return 0 // no ASes in the last segment?!
	} else if seg.IsSet() {
		return 0 // treat as error
	} else {
		return seg.List[sl-1]
	}
}

// First returns the first AS in AS_PATH (the neighbor AS), or 0 if not possible
func (a *Aspath) First() uint32 {
	if a == nil || len(a.Segments) == 0 {
		return 0
	}
	seg := &a.Segments[0]
	if len(seg.List) == 0 || seg.IsSet() {
		return 0
	}
	return seg.List[0]
}

// Hops returns the path as a list of hops, each with one or more ASNs.
// A sequence gives one hop per ASN, a set gives one hop with all members.
// Confederation segments are skipped.
func (a *Aspath) Hops() (hops [][]uint32) {
	if a == nil {
		return nil
	}
	for i := range a.Segments {
		seg := &a.Segments[i]
		switch seg.Type {
		case AS_SEQUENCE:
			for j := range seg.List {
				hops = append(hops, seg.List[j:j+1])
			}
		case AS_SET:
			if len(seg.List) > 0 {
				hops = append(hops, seg.List)
			}
		}
	}
	return hops
}

// Hop returns the ASNs at hop index, counted from the end if negative
// (-1 is the origin). Returns nil if out of range.
func (a *Aspath) Hop(index int) []uint32 {
	hops := a.Hops()
	if index < 0 {
		index += len(hops)
	}
	if index < 0 || index >= len(hops) {
		return nil
	}
	return hops[index]
}
