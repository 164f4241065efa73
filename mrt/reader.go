package mrt

import (
	"bytes"
	"fmt"
	"io"
	"iter"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
)

// Reader reads MRT records from an io.Reader, one at a time.
// Must not be used concurrently; see Parallel for concurrent decoding.
type Reader struct {
	zerolog.Logger

	Options ReaderOptions // options; do not modify after first use
	Stats   *ReaderStats  // our stats

	rd   io.Reader    // byte source
	buf  bytes.Buffer // body of the last record
	off  int64        // stream offset of the next header
	done bool         // true after a fatal error
}

// ReaderStats counts what readers have seen. Safe for concurrent use.
type ReaderStats struct {
	Parsed      *xsync.Counter // records read (total)
	PeerTables  *xsync.Counter // PEER_INDEX_TABLE records decoded
	Ribs        *xsync.Counter // RIB_IPV4_UNICAST / RIB_IPV6_UNICAST records decoded
	Dumps       *xsync.Counter // TABLE_DUMP records decoded
	Unsupported *xsync.Counter // records of other types
	Garbled     *xsync.Counter // records that failed to decode
	Bytes       *xsync.Counter // bytes read
}

// NewReaderStats returns zeroed ReaderStats
func NewReaderStats() *ReaderStats {
	return &ReaderStats{
		Parsed:      xsync.NewCounter(),
		PeerTables:  xsync.NewCounter(),
		Ribs:        xsync.NewCounter(),
		Dumps:       xsync.NewCounter(),
		Unsupported: xsync.NewCounter(),
		Garbled:     xsync.NewCounter(),
		Bytes:       xsync.NewCounter(),
	}
}

// count updates s after a decode of rec with err
func (s *ReaderStats) count(rec Record, err error) {
	if err != nil {
		s.Garbled.Inc()
		return
	}
	switch rec.(type) {
	case *PeerIndexTable:
		s.PeerTables.Inc()
	case *RibEntries:
		s.Ribs.Inc()
	case *TableDump:
		s.Dumps.Inc()
	default:
		s.Unsupported.Inc()
	}
}

// NewReader returns a new Reader for rd, using opts if not nil.
func NewReader(rd io.Reader, opts *ReaderOptions) *Reader {
	r := &Reader{rd: rd}

	if opts != nil {
		r.Options = *opts
	} else {
		r.Options = DefaultReaderOptions
	}

	if l := r.Options.Logger; l != nil {
		r.Logger = *l
	} else {
		r.Logger = zerolog.Nop()
	}

	if r.Options.Stats != nil {
		r.Stats = r.Options.Stats
	} else {
		r.Stats = NewReaderStats()
	}

	return r
}

// Offset returns the stream offset of the next record header
func (r *Reader) Offset() int64 {
	return r.off
}

// NextRaw reads the next MRT header and its body, without decoding.
// The returned body is valid until the next call.
//
// It returns io.EOF at a clean end of input. If the input ends within
// a header or a body, it returns an error wrapping ErrTruncated, and io.EOF
// on any subsequent call: record boundaries are lost at that point.
func (r *Reader) NextRaw() (h Header, body []byte, err error) {
	if r.done {
		return h, nil, io.EOF
	}
	off := r.off

	// header
	if err := ReadHeader(r.rd, &h); err != nil {
		r.done = true
		if err == io.EOF {
			return h, nil, io.EOF
		}
		r.Stats.Garbled.Inc()
		return h, nil, fmt.Errorf("MRT at offset %d: %w", off, err)
	}
	r.off += HEADLEN
	r.Stats.Bytes.Add(HEADLEN)

	// body
	r.buf.Reset()
	n, err := io.CopyN(&r.buf, r.rd, int64(h.Length))
	r.off += n
	r.Stats.Bytes.Add(n)
	if err != nil {
		r.done = true
		r.Stats.Garbled.Inc()
		if err == io.EOF {
			err = fmt.Errorf("%w: got %d of %d bytes", ErrTruncated, n, h.Length)
		}
		return h, nil, fmt.Errorf("MRT %s at offset %d: body: %w", h.String(), off, err)
	}

	r.Stats.Parsed.Inc()
	return h, r.buf.Bytes(), nil
}

// Next reads and decodes the next record.
//
// It returns io.EOF at the end of input. A record that fails to decode
// returns a *RecordError; the reader has consumed its body, so the caller
// may log it and call Next again. Other errors are fatal and followed by io.EOF.
func (r *Reader) Next() (Record, error) {
	off := r.off
	h, body, err := r.NextRaw()
	if err != nil {
		return nil, err
	}

	rec, err := Decode(h, body)
	r.Stats.count(rec, err)
	if err != nil {
		rerr := &RecordError{Header: h, Offset: off, Err: err}
		r.Warn().Err(rerr).Msg("garbled record")
		return nil, rerr
	}

	if u, ok := rec.(*Unsupported); ok {
		r.Debug().Stringer("type", u.Type).Uint16("sub", uint16(u.Sub)).Int64("offset", off).Msg("unsupported record")
	}

	return rec, nil
}

// All returns an iterator over the remaining records, for use in range loops.
// Per-record errors are yielded together with a nil Record; the iteration
// stops at the end of input or after a fatal error.
func (r *Reader) All() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for {
			rec, err := r.Next()
			if err == io.EOF {
				return
			}
			if !yield(rec, err) {
				return
			}
		}
	}
}
