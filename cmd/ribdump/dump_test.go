package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/bgpfix/ribdump/config"
	"github.com/bgpfix/ribdump/mrt"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func u16(dst []byte, v uint16) []byte {
	return append(dst, byte(v>>8), byte(v))
}

func u32(dst []byte, v uint32) []byte {
	return append(dst, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func record(ts uint32, typ mrt.Type, sub mrt.Sub, body []byte) []byte {
	buf := u32(nil, ts)
	buf = u16(buf, uint16(typ))
	buf = u16(buf, uint16(sub))
	buf = u32(buf, uint32(len(body)))
	return append(buf, body...)
}

// peer table with 10.0.0.1 AS65000 (index 0) and 10.0.0.2 AS65001 (index 1)
func peerTable() []byte {
	buf := u32(nil, 0x0a000001)
	buf = u16(buf, 0)
	buf = u16(buf, 2)
	for i, asn := range []uint32{65000, 65001} {
		buf = append(buf, byte(mrt.PEER_AS4))
		buf = u32(buf, 0x0a000001+uint32(i))
		buf = append(buf, 10, 0, 0, byte(1+i))
		buf = u32(buf, asn)
	}
	return record(1, mrt.TABLE_DUMP2, mrt.PEER_INDEX_TABLE, buf)
}

// RIB_IPV4_UNICAST for a /24, one entry per path, peer i for path i
func rib(seq uint32, pfx [3]byte, paths ...[]uint32) []byte {
	buf := u32(nil, seq)
	buf = append(buf, 24, pfx[0], pfx[1], pfx[2])
	buf = u16(buf, uint16(len(paths)))
	for i, path := range paths {
		ats := []byte{0x40, 0x01, 0x01, 0x00}
		ats = append(ats, 0x40, 0x02, byte(2+4*len(path)), 0x02, byte(len(path)))
		for _, asn := range path {
			ats = u32(ats, asn)
		}
		ats = append(ats, 0x40, 0x03, 0x04, 10, 0, 0, byte(1+i))

		buf = u16(buf, uint16(i))
		buf = u32(buf, 1000)
		buf = u16(buf, uint16(len(ats)))
		buf = append(buf, ats...)
	}
	return record(2, mrt.TABLE_DUMP2, mrt.RIB_IPV4_UNICAST, buf)
}

func stream(garbled bool) []byte {
	var buf []byte
	buf = append(buf, peerTable()...)
	buf = append(buf, rib(0, [3]byte{192, 0, 2}, []uint32{3356, 13335}, []uint32{174, 13335})...)
	if garbled {
		bad := u32(nil, 1)
		bad = append(bad, 33) // invalid IPv4 prefix length
		buf = append(buf, record(2, mrt.TABLE_DUMP2, mrt.RIB_IPV4_UNICAST, bad)...)
	}
	buf = append(buf, rib(2, [3]byte{198, 51, 100}, []uint32{6939, 15169})...)
	return buf
}

func run(t *testing.T, cfg *config.Config, input []byte) (string, error) {
	t.Helper()
	var out bytes.Buffer
	d, err := newDumper(cfg, mrt.NewReaderStats(), &out, zerolog.Nop())
	require.NoError(t, err)
	err = d.read(context.Background(), bytes.NewReader(input))
	require.NoError(t, d.Flush())
	return out.String(), err
}

func TestDump_Origins(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Format = "origins"

	out, err := run(t, cfg, stream(false))
	require.NoError(t, err)
	require.Equal(t, "192.0.2.0/24 13335\n192.0.2.0/24 13335\n198.51.100.0/24 15169\n", out)

	cfg.Output.OriginASNs = []uint32{15169}
	out, err = run(t, cfg, stream(false))
	require.NoError(t, err)
	require.Equal(t, "198.51.100.0/24 15169\n", out)
}

func TestDump_Exa(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Format = "exa"
	cfg.Output.Filter = "peer_as == 65001"

	out, err := run(t, cfg, stream(false))
	require.NoError(t, err)
	require.Equal(t,
		"neighbor 10.0.0.2 announce route 192.0.2.0/24 next-hop 10.0.0.2 origin IGP as-path [ 174 13335 ]\n",
		out)
}

func TestDump_JSON(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Filter = "aspath[0] == 3356"

	out, err := run(t, cfg, stream(false))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2) // peer table + the matching RIB
	require.Contains(t, lines[0], "PEER_INDEX_TABLE")
	require.Contains(t, lines[1], "192.0.2.0/24")
	require.Contains(t, lines[1], "3356")
	require.NotContains(t, lines[1], "174")
}

func TestDump_Garbled(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Format = "origins"

	out, err := run(t, cfg, stream(true))
	require.NoError(t, err)
	require.Contains(t, out, "198.51.100.0/24 15169\n")

	cfg.Decode.Strict = true
	out, err = run(t, cfg, stream(true))
	var rerr *mrt.RecordError
	require.ErrorAs(t, err, &rerr)
	require.ErrorIs(t, err, mrt.ErrPrefixLength)
	require.NotContains(t, out, "198.51.100.0/24")
}

func TestDump_Workers(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Format = "origins"
	seq, err := run(t, cfg, stream(true))
	require.NoError(t, err)

	cfg.Decode.Workers = 4
	par, err := run(t, cfg, stream(true))
	require.NoError(t, err)
	require.Equal(t, seq, par)
}

func TestDump_PeersSidecar(t *testing.T) {
	// RIB-only input resolves peers from the sidecar
	rec, err := mrt.Decode(mrt.Header{Type: mrt.TABLE_DUMP2, Sub: mrt.PEER_INDEX_TABLE}, peerTable()[mrt.HEADLEN:])
	require.NoError(t, err)
	path := t.TempDir() + "/peers.json"
	require.NoError(t, os.WriteFile(path, rec.ToJSON(nil), 0o644))

	cfg := config.Default()
	cfg.Output.Format = "exa"
	cfg.Decode.Peers = path
	out, err := run(t, cfg, rib(0, [3]byte{192, 0, 2}, []uint32{3356, 13335}))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "neighbor 10.0.0.1 announce route 192.0.2.0/24"))
}
