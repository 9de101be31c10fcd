// Package config loads tool configuration from an optional
// .tokensmith.yaml file. Everything has a sensible default so the tool
// runs unconfigured; the file exists to make the split policy explicit
// rather than hidden behavior.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the working directory when no explicit
// config path is given
const DefaultFileName = ".tokensmith.yaml"

// Config carries the split policy and tool-wide settings
type Config struct {
	// SetOrder is the canonical priority list for tokenSetOrder:
	// foundation sets first, component sets last. Groups not listed keep
	// their source-document order after these.
	SetOrder []string `yaml:"setOrder"`

	// GroupMapping maps a canonical top-level group name to the token
	// set that should own it. Groups without a mapping become sets of
	// their own name; see ResidualSet for everything else.
	GroupMapping map[string]string `yaml:"groupMapping"`

	// ResidualSet collects top-level groups the policy does not match,
	// so nothing is ever dropped during a split
	ResidualSet string `yaml:"residualSet"`

	// SourceSet is the foundation set themes are expected to mark as
	// "source"
	SourceSet string `yaml:"sourceSet"`

	// RecommendedSets are warned about when absent, never errors
	RecommendedSets []string `yaml:"recommendedSets"`

	// BackupDir is where operation backups live
	BackupDir string `yaml:"backupDir"`

	// BackupKeep bounds how many backups are retained (oldest pruned)
	BackupKeep int `yaml:"backupKeep"`

	// LogDir is where the operation log is written
	LogDir string `yaml:"logDir"`

	// HopLimit bounds reference chains during resolution
	HopLimit int `yaml:"hopLimit"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		SetOrder:        []string{"core", "global", "semantic", "brand", "components"},
		GroupMapping:    map[string]string{},
		ResidualSet:     "misc",
		SourceSet:       "core",
		RecommendedSets: []string{"global"},
		BackupDir:       ".tokensmith/backups",
		BackupKeep:      10,
		LogDir:          ".tokensmith/logs",
		HopLimit:        32,
	}
}

// Load reads the config file at path. A missing file yields defaults;
// a malformed file is an error (silently ignoring a config the user
// wrote would hide mistakes).
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if len(c.SetOrder) == 0 {
		c.SetOrder = d.SetOrder
	}
	if c.GroupMapping == nil {
		c.GroupMapping = map[string]string{}
	}
	if c.ResidualSet == "" {
		c.ResidualSet = d.ResidualSet
	}
	if c.SourceSet == "" {
		c.SourceSet = d.SourceSet
	}
	if c.BackupDir == "" {
		c.BackupDir = d.BackupDir
	}
	if c.BackupKeep <= 0 {
		c.BackupKeep = d.BackupKeep
	}
	if c.LogDir == "" {
		c.LogDir = d.LogDir
	}
	if c.HopLimit <= 0 {
		c.HopLimit = d.HopLimit
	}
}
