package mrt

import (
	"errors"
	"fmt"

	"github.com/bgpfix/ribdump/binary"
	"github.com/bgpfix/ribdump/nlri"
)

var (
	ErrTruncated    = binary.ErrTruncated  // fewer bytes than declared or needed
	ErrPrefixLength = nlri.ErrPrefixLength // prefix wider than its address family
	ErrEncoding     = errors.New("invalid encoding")
	ErrPeerIndex    = errors.New("invalid peer index")
	ErrNoPeers      = errors.New("no peer index table")
)

// RecordError reports a record that could not be decoded.
// The reader has skipped its body and can continue with the next record.
type RecordError struct {
	Header Header // header of the failed record
	Offset int64  // stream offset of the header
	Err    error  // the cause
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("MRT %s at offset %d: %v", e.Header.String(), e.Offset, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
