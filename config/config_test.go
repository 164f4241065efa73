package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "json", cfg.Output.Format)
	require.Equal(t, zerolog.InfoLevel, cfg.Level())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
		{"workers", func(c *Config) { c.Decode.Workers = -1 }},
		{"format", func(c *Config) { c.Output.Format = "xml" }},
		{"metrics path", func(c *Config) { c.Metrics.Listen = ":9090"; c.Metrics.Path = "metrics" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mod(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ribdump.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
  console: false
decode:
  workers: 4
  peers: /tmp/peers.json
output:
  format: exa
  filter: "ipv4 && as_origin == 13335"
  origin_asns: [13335, 15169]
metrics:
  listen: ":9090"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, zerolog.DebugLevel, cfg.Level())
	require.False(t, cfg.Log.Console)
	require.Equal(t, 4, cfg.Decode.Workers)
	require.Equal(t, "/tmp/peers.json", cfg.Decode.Peers)
	require.Equal(t, "exa", cfg.Output.Format)
	require.Equal(t, "ipv4 && as_origin == 13335", cfg.Output.Filter)
	require.Equal(t, []uint32{13335, 15169}, cfg.Output.OriginASNs)
	require.Equal(t, ":9090", cfg.Metrics.Listen)
	require.Equal(t, "/metrics", cfg.Metrics.Path) // default kept
}

func TestLoad_Env(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ribdump.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: exa\n"), 0o644))

	t.Setenv("RIBDUMP_OUTPUT__FORMAT", "origins")
	t.Setenv("RIBDUMP_OUTPUT__ORIGIN_ASNS", "AS13335, 64512")
	t.Setenv("RIBDUMP_DECODE__WORKERS", "8")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "origins", cfg.Output.Format)
	require.Equal(t, []uint32{13335, 64512}, cfg.Output.OriginASNs)
	require.Equal(t, 8, cfg.Decode.Workers)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	t.Setenv("RIBDUMP_OUTPUT__FORMAT", "xml")
	_, err = Load("")
	require.Error(t, err)
}

func TestParseASNs(t *testing.T) {
	asns, err := ParseASNs("1,2 3")
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 2, 3}, asns)

	asns, err = ParseASNs([]any{1, "2", int64(4200000000)})
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 2, 4200000000}, asns)

	_, err = ParseASNs("1,x")
	require.Error(t, err)
	_, err = ParseASNs([]any{-1})
	require.Error(t, err)
}
