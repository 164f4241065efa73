package metrics

import (
	"strings"
	"testing"

	"github.com/bgpfix/ribdump/mrt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestStatsCollector(t *testing.T) {
	stats := mrt.NewReaderStats()
	stats.Parsed.Add(10)
	stats.PeerTables.Inc()
	stats.Ribs.Add(7)
	stats.Unsupported.Inc()
	stats.Garbled.Inc()
	stats.Bytes.Add(4096)

	expected := `
# HELP ribdump_read_bytes_total MRT bytes read, after decompression.
# TYPE ribdump_read_bytes_total counter
ribdump_read_bytes_total 4096
# HELP ribdump_records_total MRT records read, by kind.
# TYPE ribdump_records_total counter
ribdump_records_total{kind="garbled"} 1
ribdump_records_total{kind="parsed"} 10
ribdump_records_total{kind="peer_table"} 1
ribdump_records_total{kind="rib"} 7
ribdump_records_total{kind="table_dump"} 0
ribdump_records_total{kind="unsupported"} 1
`
	c := NewStatsCollector(stats)
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected)))

	// live values
	stats.Dumps.Add(3)
	require.Equal(t, 7, testutil.CollectAndCount(c)) // 6 kinds + bytes
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(`
# HELP ribdump_records_total MRT records read, by kind.
# TYPE ribdump_records_total counter
ribdump_records_total{kind="garbled"} 1
ribdump_records_total{kind="parsed"} 10
ribdump_records_total{kind="peer_table"} 1
ribdump_records_total{kind="rib"} 7
ribdump_records_total{kind="table_dump"} 3
ribdump_records_total{kind="unsupported"} 1
`), "ribdump_records_total"))
}

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg, mrt.NewReaderStats()))

	// twice is an error
	require.Error(t, Register(reg, mrt.NewReaderStats()))

	RoutesTotal.WithLabelValues("IPV4", "passed").Add(2)
	require.Equal(t, 2.0, testutil.ToFloat64(RoutesTotal.WithLabelValues("IPV4", "passed")))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	require.True(t, names["ribdump_records_total"])
	require.True(t, names["ribdump_routes_total"])
}
