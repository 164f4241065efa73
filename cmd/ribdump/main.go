/*
 * ribdump: print MRT routing table dumps as JSON, ExaBGP commands, or prefix origins
 */
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/bgpfix/ribdump/config"
	"github.com/bgpfix/ribdump/metrics"
	"github.com/bgpfix/ribdump/mrt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	opt_config  = flag.String("config", "", "YAML config file (RIBDUMP_* env overrides it)")
	opt_format  = flag.String("format", "json", "output format: json, exa, or origins")
	opt_filter  = flag.String("filter", "", "route filter, eg. 'ipv4 && as_origin == 13335'")
	opt_peers   = flag.String("peers", "", "PEER_INDEX_TABLE JSON sidecar, for RIB-only files")
	opt_workers = flag.Int("workers", 0, "decode in parallel on N goroutines (0: sequential)")
	opt_metrics = flag.String("metrics", "", "serve Prometheus metrics on this address, eg. :9090")
	opt_log     = flag.String("log", "info", "log level (trace, debug, info, warn, error)")
	opt_strict  = flag.Bool("strict", false, "stop on the first garbled record")
)

func main() {
	// parse flags
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: ribdump [OPTIONS] <file>...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	// config: file, env, then flags
	cfg, err := config.Load(*opt_config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ribdump: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "ribdump: %v\n", err)
		os.Exit(1)
	}

	// logging
	var log zerolog.Logger
	if cfg.Log.Console {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"})
	} else {
		log = zerolog.New(os.Stderr)
	}
	log = log.Level(cfg.Level()).With().Timestamp().Logger()

	// metrics
	stats := mrt.NewReaderStats()
	if addr := cfg.Metrics.Listen; addr != "" {
		reg := prometheus.NewRegistry()
		if err := metrics.Register(reg, stats); err != nil {
			log.Fatal().Err(err).Msg("could not register metrics")
		}
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			log.Info().Str("addr", addr).Msg("serving metrics")
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	d, err := newDumper(cfg, stats, os.Stdout, log)
	if err != nil {
		log.Fatal().Err(err).Msg("could not start")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// dump all files
	failed := 0
	for _, path := range flag.Args() {
		if err := d.file(ctx, path); err != nil {
			log.Error().Err(err).Msg("dump failed")
			failed++
			if ctx.Err() != nil {
				break
			}
		}
	}
	if err := d.Flush(); err != nil {
		log.Error().Err(err).Msg("could not write output")
		failed++
	}

	log.Info().
		Int64("records", stats.Parsed.Value()).
		Int64("ribs", stats.Ribs.Value()).
		Int64("dumps", stats.Dumps.Value()).
		Int64("unsupported", stats.Unsupported.Value()).
		Int64("garbled", stats.Garbled.Value()).
		Int64("bytes", stats.Bytes.Value()).
		Msg("done")

	if failed > 0 {
		os.Exit(1)
	}
}

// applyFlags overrides cfg with flags given on the command line
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			cfg.Output.Format = *opt_format
		case "filter":
			cfg.Output.Filter = *opt_filter
		case "peers":
			cfg.Decode.Peers = *opt_peers
		case "workers":
			cfg.Decode.Workers = *opt_workers
		case "metrics":
			cfg.Metrics.Listen = *opt_metrics
		case "log":
			cfg.Log.Level = *opt_log
		case "strict":
			cfg.Decode.Strict = *opt_strict
		}
	})
}
