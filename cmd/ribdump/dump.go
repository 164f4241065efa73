package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/bgpfix/ribdump/attrs"
	"github.com/bgpfix/ribdump/config"
	"github.com/bgpfix/ribdump/exa"
	"github.com/bgpfix/ribdump/filter"
	"github.com/bgpfix/ribdump/metrics"
	"github.com/bgpfix/ribdump/mrt"
	"github.com/bgpfix/ribdump/util"
	"github.com/rs/zerolog"
)

// dumper writes records and routes read from MRT files to out
type dumper struct {
	zerolog.Logger

	cfg   *config.Config
	stats *mrt.ReaderStats
	out   *bufio.Writer

	filter  *filter.Filter      // route filter, may be nil
	ev      *filter.Eval        // evaluates filter
	origins map[uint32]struct{} // allowed origin ASNs, nil means any
	peers   *mrt.PeerIndexTable // last peer table seen or loaded
	exa     *exa.Exa            // for exa output
	buf     []byte              // output buffer
}

func newDumper(cfg *config.Config, stats *mrt.ReaderStats, out io.Writer, log zerolog.Logger) (*dumper, error) {
	d := &dumper{
		Logger: log,
		cfg:    cfg,
		stats:  stats,
		out:    bufio.NewWriterSize(out, 1024*1024),
		ev:     filter.NewEval(true),
		exa:    exa.NewExa(),
	}

	if s := cfg.Output.Filter; s != "" {
		f, err := filter.NewFilter(s)
		if err != nil {
			return nil, err
		}
		d.filter = f
	}

	if len(cfg.Output.OriginASNs) > 0 {
		d.origins = make(map[uint32]struct{}, len(cfg.Output.OriginASNs))
		for _, asn := range cfg.Output.OriginASNs {
			d.origins[asn] = struct{}{}
		}
	}

	if path := cfg.Decode.Peers; path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("peers: %w", err)
		}
		d.peers = &mrt.PeerIndexTable{}
		if err := d.peers.FromJSON(buf); err != nil {
			return nil, fmt.Errorf("peers %s: %w", path, err)
		}
		d.Debug().Int("peers", len(d.peers.Peers)).Str("path", path).Msg("loaded peer table")
	}

	return d, nil
}

// file dumps the MRT file at path
func (d *dumper) file(ctx context.Context, path string) error {
	rc, err := util.OpenPath(path)
	if err != nil {
		metrics.FilesTotal.WithLabelValues("failed").Inc()
		return err
	}
	defer rc.Close()

	err = d.read(ctx, rc)
	if err != nil {
		metrics.FilesTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("%s: %w", path, err)
	}
	metrics.FilesTotal.WithLabelValues("ok").Inc()
	return nil
}

// read dumps all records in rd
func (d *dumper) read(ctx context.Context, rd io.Reader) error {
	opts := mrt.DefaultReaderOptions
	opts.Logger = &d.Logger
	opts.Stats = d.stats
	r := mrt.NewReader(rd, &opts)

	if workers := d.cfg.Decode.Workers; workers > 0 {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		results, _ := mrt.Parallel(ctx, r, workers)
		for res := range results {
			var rerr *mrt.RecordError
			if errors.As(res.Err, &rerr) {
				d.Warn().Err(rerr).Msg("garbled record")
			}
			if err := d.record(res.Record, res.Err); err != nil {
				return err
			}
		}
		return ctx.Err()
	}

	for rec, err := range r.All() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.record(rec, err); err != nil {
			return err
		}
	}
	return nil
}

// record handles a single result from the reader
func (d *dumper) record(rec mrt.Record, err error) error {
	if err != nil {
		var rerr *mrt.RecordError
		if errors.As(err, &rerr) && !d.cfg.Decode.Strict {
			return nil // already logged
		}
		return err
	}

	metrics.LastRecordTimestamp.Set(float64(rec.Head().Timestamp))

	switch r := rec.(type) {
	case *mrt.PeerIndexTable:
		d.peers = r
		d.Debug().Int("peers", len(r.Peers)).Str("view", r.ViewName).Msg("peer table")
		if d.cfg.Output.Format == "json" {
			d.writeJSON(r)
		}

	case *mrt.RibEntries:
		routes, err := r.Routes(d.peers)
		if err != nil {
			d.Warn().Err(err).Stringer("prefix", r.Prefix).Msg("RIB record skipped")
			return nil
		}
		if d.cfg.Output.Format == "json" {
			d.ribJSON(r, routes)
			break
		}
		for i := range routes {
			if d.match(&routes[i]) {
				d.route(&routes[i])
			}
		}

	case *mrt.TableDump:
		rt := r.Route()
		if !d.match(&rt) {
			break
		}
		if d.cfg.Output.Format == "json" {
			d.writeJSON(r)
		} else {
			d.route(&rt)
		}

	case *mrt.Unsupported:
		if d.cfg.Output.Format == "json" && d.filter == nil && d.origins == nil {
			d.writeJSON(r)
		}
	}

	return nil
}

// match returns true iff rt passes the filter and the origin list
func (d *dumper) match(rt *mrt.Route) (pass bool) {
	defer func() {
		result := "filtered"
		if pass {
			result = "passed"
		}
		metrics.RoutesTotal.WithLabelValues(rt.Afi().String(), result).Inc()
	}()

	d.ev.SetRoute(rt)
	if d.filter != nil && !d.ev.Run(d.filter) {
		return false
	}

	if d.origins != nil {
		origins, _ := d.ev.Origins()
		for _, asn := range origins {
			if _, ok := d.origins[asn]; ok {
				return true
			}
		}
		return false
	}

	return true
}

// ribJSON writes r with the entries whose routes match
func (d *dumper) ribJSON(r *mrt.RibEntries, routes []mrt.Route) {
	out := *r
	out.Entries = nil
	for i := range routes {
		if d.match(&routes[i]) {
			out.Entries = append(out.Entries, r.Entries[i])
		}
	}
	if len(out.Entries) > 0 || len(r.Entries) == 0 {
		d.writeJSON(&out)
	}
}

func (d *dumper) writeJSON(rec mrt.Record) {
	d.buf = rec.ToJSON(d.buf[:0])
	d.buf = append(d.buf, '\n')
	d.out.Write(d.buf)
}

// route writes rt in the exa or origins format
func (d *dumper) route(rt *mrt.Route) {
	switch d.cfg.Output.Format {
	case "exa":
		d.exa.FromRoute(rt)
		d.out.WriteString(d.exa.String())
		d.out.WriteByte('\n')

	case "origins":
		origins, err := d.ev.Origins()
		if err != nil {
			d.Debug().Err(err).Stringer("prefix", rt.Prefix).Msg("no origin")
			return
		} else if len(origins) == 0 {
			return
		}
		d.buf = rt.Prefix.AppendTo(d.buf[:0])
		for _, asn := range attrs.SortUnique(origins) {
			d.buf = append(d.buf, ' ')
			d.buf = strconv.AppendUint(d.buf, uint64(asn), 10)
		}
		d.buf = append(d.buf, '\n')
		d.out.Write(d.buf)
	}
}

func (d *dumper) Flush() error {
	return d.out.Flush()
}
