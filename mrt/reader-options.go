package mrt

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Default MRT reader options
var DefaultReaderOptions = ReaderOptions{
	Logger: &log.Logger,
}

// MRT Reader options
type ReaderOptions struct {
	Logger *zerolog.Logger // if nil logging is disabled
	Stats  *ReaderStats    // if nil a new one is created; may be shared by many readers
}
