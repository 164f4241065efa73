package attrs

import (
	"errors"

	"github.com/bgpfix/ribdump/binary"
)

var (
	ErrLength   = errors.New("invalid length")
	ErrValue    = errors.New("invalid value")
	ErrSegType  = errors.New("invalid ASPATH segment type")
	ErrNoOrigin = errors.New("no origin AS")

	// ErrTruncated aliases binary.ErrTruncated
	ErrTruncated = binary.ErrTruncated
)
