package attrs

import (
	"strconv"
)

// Attr represents a particular BGP path attribute
type Attr interface {
	// Code returns attribute code
	Code() Code

	// Flags returns attribute flags, exactly as read from the wire
	Flags() Flags

	// Unmarshal parses the attribute value in buf
	Unmarshal(buf []byte, ctx Ctx) error

	// Marshal appends wire representation to dst: flags(8), code(8), length(8/16), and value
	Marshal(dst []byte, ctx Ctx) []byte

	// ToJSON appends JSON representation of the value to dst
	ToJSON(dst []byte) []byte
}

// Ctx carries what the attribute bytes do not describe themselves
type Ctx struct {
	AS4 bool // AS numbers are 4 bytes wide
	RIB bool // inside an MRT RIB entry: MP_REACH_NLRI may be abbreviated
}

type (
	// Flags holds attribute flags
	Flags byte

	// Code holds attribute type code
	Code byte

	// CodeFlags holds attribute flags (MSB) and type code (LSB)
	CodeFlags uint16
)

const (
	// attribute flags
	ATTR_OPTIONAL   Flags = 0b10000000
	ATTR_TRANSITIVE Flags = 0b01000000
	ATTR_PARTIAL    Flags = 0b00100000
	ATTR_EXTENDED   Flags = 0b00010000
	ATTR_UNUSED     Flags = 0b00001111

	// attribute codes
	ATTR_UNSPECIFIED   Code = 0
	ATTR_ORIGIN        Code = 1
	ATTR_ASPATH        Code = 2
	ATTR_NEXTHOP       Code = 3
	ATTR_MED           Code = 4
	ATTR_LOCALPREF     Code = 5
	ATTR_AGGREGATE     Code = 6
	ATTR_AGGREGATOR    Code = 7
	ATTR_COMMUNITY     Code = 8
	ATTR_MP_REACH      Code = 14
	ATTR_EXT_COMMUNITY Code = 16
)

var codeNames = map[Code]string{
	ATTR_ORIGIN:        "ORIGIN",
	ATTR_ASPATH:        "ASPATH",
	ATTR_NEXTHOP:       "NEXTHOP",
	ATTR_MED:           "MED",
	ATTR_LOCALPREF:     "LOCALPREF",
	ATTR_AGGREGATE:     "AGGREGATE",
	ATTR_AGGREGATOR:    "AGGREGATOR",
	ATTR_COMMUNITY:     "COMMUNITY",
	ATTR_MP_REACH:      "MP_REACH",
	ATTR_EXT_COMMUNITY: "EXT_COMMUNITY",
}

// NewFunc returns new Attr for given code and flags
type NewFunc func(cf CodeFlags) Attr

// NewFuncs maps attribute codes to their NewFunc
var NewFuncs = map[Code]NewFunc{
	ATTR_ORIGIN:        NewOrigin,
	ATTR_ASPATH:        NewAspath,
	ATTR_NEXTHOP:       NewIP,
	ATTR_MED:           NewU32,
	ATTR_LOCALPREF:     NewU32,
	ATTR_AGGREGATE:     NewAtomic,
	ATTR_AGGREGATOR:    NewAggregator,
	ATTR_COMMUNITY:     NewCommunity,
	ATTR_MP_REACH:      NewMP,
	ATTR_EXT_COMMUNITY: NewExtCom,
}

// NewAttr returns a new Attr instance for given code and flags.
// Codes not in NewFuncs get a Raw attribute.
func NewAttr(ac Code, af Flags) Attr {
	newfunc, ok := NewFuncs[ac]
	if !ok {
		newfunc = NewRaw
	}
	return newfunc(CodeFlags(af)<<8 | CodeFlags(ac))
}

// Code returns cf code (eg. ATTR_NEXTHOP)
func (cf CodeFlags) Code() Code {
	return Code(cf)
}

// Flags returns cf flags (eg. ATTR_TRANSITIVE)
func (cf CodeFlags) Flags() Flags {
	return Flags(cf >> 8)
}

// HasFlags returns true iff cf has (at least one of) flags set
func (cf CodeFlags) HasFlags(af Flags) bool {
	return Flags(cf>>8)&af != 0
}

// MarshalLen appends to dst attribute flags, code, and length.
// The length is 2 bytes if the original flags said so, or if it does not fit in 1 byte.
func (cf CodeFlags) MarshalLen(dst []byte, length int) []byte {
	flags := cf.Flags()
	if length > 0xff {
		flags |= ATTR_EXTENDED
	}
	dst = append(dst, byte(flags), byte(cf.Code()))
	if flags&ATTR_EXTENDED != 0 {
		dst = msb.AppendUint16(dst, uint16(length))
	} else {
		dst = append(dst, byte(length))
	}
	return dst
}

func (ac Code) String() string {
	if name, ok := codeNames[ac]; ok {
		return name
	}
	return "ATTR_" + strconv.Itoa(int(ac))
}

// ToJSON appends ac name as a JSON string to dst
func (ac Code) ToJSON(dst []byte) []byte {
	dst = append(dst, '"')
	dst = append(dst, ac.String()...)
	return append(dst, '"')
}

func (af Flags) ToJSON(dst []byte) []byte {
	dst = append(dst, '"')
	if af&ATTR_OPTIONAL != 0 {
		dst = append(dst, 'O')
	}
	if af&ATTR_TRANSITIVE != 0 {
		dst = append(dst, 'T')
	}
	if af&ATTR_PARTIAL != 0 {
		dst = append(dst, 'P')
	}
	if af&ATTR_EXTENDED != 0 {
		dst = append(dst, 'X')
	}
	if v := af & ATTR_UNUSED; v != 0 {
		dst = strconv.AppendUint(dst, uint64(v), 10)
	}
	return append(dst, '"')
}
