// Package metrics exposes ribdump counters to Prometheus.
package metrics

import (
	"errors"

	"github.com/bgpfix/ribdump/mrt"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RoutesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ribdump_routes_total",
			Help: "Routes seen in RIB records, by filter result.",
		},
		[]string{"afi", "result"},
	)

	FilesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ribdump_files_total",
			Help: "Input files processed.",
		},
		[]string{"status"},
	)

	LastRecordTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ribdump_last_record_timestamp_seconds",
			Help: "MRT timestamp of the last decoded record.",
		},
	)
)

// StatsCollector exposes mrt.ReaderStats as Prometheus counters
type StatsCollector struct {
	stats   *mrt.ReaderStats
	records *prometheus.Desc
	bytes   *prometheus.Desc
}

// NewStatsCollector returns a collector reading from stats on each scrape
func NewStatsCollector(stats *mrt.ReaderStats) *StatsCollector {
	return &StatsCollector{
		stats: stats,
		records: prometheus.NewDesc(
			"ribdump_records_total",
			"MRT records read, by kind.",
			[]string{"kind"}, nil,
		),
		bytes: prometheus.NewDesc(
			"ribdump_read_bytes_total",
			"MRT bytes read, after decompression.",
			nil, nil,
		),
	}
}

func (c *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.records
	ch <- c.bytes
}

func (c *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats
	for _, kv := range []struct {
		kind string
		val  int64
	}{
		{"parsed", s.Parsed.Value()},
		{"peer_table", s.PeerTables.Value()},
		{"rib", s.Ribs.Value()},
		{"table_dump", s.Dumps.Value()},
		{"unsupported", s.Unsupported.Value()},
		{"garbled", s.Garbled.Value()},
	} {
		ch <- prometheus.MustNewConstMetric(c.records, prometheus.CounterValue, float64(kv.val), kv.kind)
	}
	ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.CounterValue, float64(s.Bytes.Value()))
}

// Register registers the package metrics and a StatsCollector for stats in reg
func Register(reg prometheus.Registerer, stats *mrt.ReaderStats) error {
	return errors.Join(
		reg.Register(RoutesTotal),
		reg.Register(FilesTotal),
		reg.Register(LastRecordTimestamp),
		reg.Register(NewStatsCollector(stats)),
	)
}
