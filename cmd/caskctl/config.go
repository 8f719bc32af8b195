// Configuration loading for caskctl. Grounded on calvinalkan-agent-task's
// config.go: a JSONC config file (comments and trailing commas allowed)
// parsed with tailscale/hujson, with CLI flags overriding file values.
package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/tailscale/hujson"

	"github.com/jpl-au/caskdb"
)

// cliConfig mirrors caskdb.Options for the subset a config file or flag
// can reasonably set.
type cliConfig struct {
	CompactionThreshold int64  `json:"compaction_threshold,omitempty"`
	SyncWrites          bool   `json:"sync_writes,omitempty"`
	PoolSize            int    `json:"pool_size,omitempty"`
	CompressValues      bool   `json:"compress_values,omitempty"`
}

// defaultCliConfig returns the zero cliConfig, which OpenWithOptions fills
// in with caskdb's own defaults.
func defaultCliConfig() cliConfig {
	return cliConfig{}
}

// loadConfigFile reads and parses a JSONC config file at path. A missing
// path is not an error; the caller gets defaultCliConfig.
func loadConfigFile(path string) (cliConfig, error) {
	cfg := defaultCliConfig()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("caskctl: read config %s: %w", path, err)
	}

	standard, err := hujson.Standardize(raw)
	if err != nil {
		return cfg, fmt.Errorf("caskctl: parse config %s: %w", path, err)
	}
	if err := json.Unmarshal(standard, &cfg); err != nil {
		return cfg, fmt.Errorf("caskctl: decode config %s: %w", path, err)
	}
	return cfg, nil
}

// toOptions converts cliConfig into caskdb.Options, leaving any unset field
// at its zero value so OpenWithOptions applies caskdb's own defaults.
func (c cliConfig) toOptions() caskdb.Options {
	return caskdb.Options{
		CompactionThreshold: c.CompactionThreshold,
		SyncWrites:          c.SyncWrites,
		PoolSize:            c.PoolSize,
		CompressValues:      c.CompressValues,
	}
}
