package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Config is the scan configuration. It is read from an optional YAML file
// and then overridden by command line flags.
type Config struct {
	// Suffix selects the dump files in the directory.
	Suffix string `yaml:"suffix"`
	// Recursive descends into subdirectories.
	Recursive bool `yaml:"recursive"`
	// Exclude drops files matching any of these doublestar patterns.
	Exclude []string `yaml:"exclude"`
	// Signature is the name of the bug signature to look for.
	Signature string `yaml:"signature"`
	// Workers bounds the number of files scanned at once.
	Workers int `yaml:"workers"`
	// Strict aborts the run on the first malformed line or unreadable file.
	Strict bool `yaml:"strict"`
	// Cache reuses results for files that did not change since the last run.
	Cache bool `yaml:"cache"`
	// UplinkVLANs are the VLAN ids the uplink signature does not treat as local.
	UplinkVLANs []string `yaml:"uplink_vlans"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Suffix:      ".log",
		Signature:   "nexthop",
		Workers:     runtime.NumCPU(),
		Cache:       true,
		UplinkVLANs: append([]string(nil), defaultUplinkVLANs...),
	}
}

// LoadConfig loads configuration from a YAML file at the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration before a run.
func (c *Config) Validate() error {
	if c.Suffix == "" {
		return fmt.Errorf("suffix must not be empty")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	for _, p := range c.Exclude {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return nil
}

// cacheParams identifies the settings cached results depend on
func (c *Config) cacheParams() string {
	if c.Signature == "uplink" {
		return "uplink_vlans=" + strings.Join(c.UplinkVLANs, ",")
	}
	return ""
}
