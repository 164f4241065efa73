package mrt

import (
	"github.com/bgpfix/ribdump/json"
)

// Record is a decoded MRT message: one of *PeerIndexTable, *RibEntries,
// *TableDump, or *Unsupported.
type Record interface {
	// Head returns the MRT header of the record
	Head() *Header

	// ToJSON appends JSON representation of the record to dst
	ToJSON(dst []byte) []byte

	record()
}

func (*PeerIndexTable) record() {}
func (*RibEntries) record()     {}
func (*TableDump) record()      {}
func (*Unsupported) record()    {}

// Unsupported is a record of a type or subtype this package does not decode
type Unsupported struct {
	Header
	Data []byte // raw body, owned; includes the ET microseconds field
}

func (u *Unsupported) ToJSON(dst []byte) []byte {
	dst = append(dst, '{')
	dst = u.Header.toJSON(dst)
	dst = json.Key(dst, "data", false)
	dst = json.Hex(dst, u.Data)
	return append(dst, '}')
}
