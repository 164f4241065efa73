// Package config loads ribdump settings from a YAML file and RIBDUMP_ environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"
)

const EnvPrefix = "RIBDUMP_"

type Config struct {
	Log     LogConfig     `koanf:"log"`
	Decode  DecodeConfig  `koanf:"decode"`
	Output  OutputConfig  `koanf:"output"`
	Metrics MetricsConfig `koanf:"metrics"`
}

type LogConfig struct {
	Level   string `koanf:"level"`
	Console bool   `koanf:"console"` // human-friendly output on stderr
}

type DecodeConfig struct {
	Workers int    `koanf:"workers"` // 0 decodes sequentially
	Peers   string `koanf:"peers"`   // PEER_INDEX_TABLE sidecar, for RIB-only files
	Strict  bool   `koanf:"strict"`  // stop on the first garbled record
}

type OutputConfig struct {
	Format     string   `koanf:"format"` // json, exa or origins
	Filter     string   `koanf:"filter"` // route filter expression
	OriginASNs []uint32 `koanf:"-"`      // keep only routes from these origins, see Load
}

type MetricsConfig struct {
	Listen string `koanf:"listen"` // eg. ":9090"; empty disables
	Path   string `koanf:"path"`
}

// Default returns the built-in defaults
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:   "info",
			Console: true,
		},
		Output: OutputConfig{
			Format: "json",
		},
		Metrics: MetricsConfig{
			Path: "/metrics",
		},
	}
}

// Load reads the YAML file at path (if not empty), overlays environment variables,
// and validates the result. Env example: RIBDUMP_OUTPUT__FORMAT → output.format
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Load YAML file first.
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// Overlay environment variables
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ToLower(s)
		s = strings.ReplaceAll(s, "__", ".")
		return s
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env config: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// a YAML list, or a comma-separated env string
	if v := k.Get("output.origin_asns"); v != nil {
		asns, err := ParseASNs(v)
		if err != nil {
			return nil, fmt.Errorf("config: output.origin_asns: %w", err)
		}
		cfg.Output.OriginASNs = asns
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseASNs converts v (a list, or a string of comma or space separated values) to ASNs
func ParseASNs(v any) ([]uint32, error) {
	var items []any
	switch v := v.(type) {
	case string:
		for _, s := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' }) {
			items = append(items, strings.TrimPrefix(strings.ToUpper(s), "AS"))
		}
	default:
		var err error
		if items, err = cast.ToSliceE(v); err != nil {
			return nil, err
		}
	}

	asns := make([]uint32, 0, len(items))
	for _, item := range items {
		asn, err := cast.ToUint32E(item)
		if err != nil {
			return nil, fmt.Errorf("invalid ASN %v: %w", item, err)
		}
		asns = append(asns, asn)
	}
	return asns, nil
}

// Level returns the zerolog level for c.Log.Level
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level is invalid: %w", err)
	}
	if c.Decode.Workers < 0 {
		return fmt.Errorf("config: decode.workers must be >= 0 (got %d)", c.Decode.Workers)
	}
	switch c.Output.Format {
	case "json", "exa", "origins":
	default:
		return fmt.Errorf("config: output.format must be json, exa or origins (got %q)", c.Output.Format)
	}
	if c.Metrics.Listen != "" && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("config: metrics.path must start with / (got %q)", c.Metrics.Path)
	}
	return nil
}
