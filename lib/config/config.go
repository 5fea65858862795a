// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/docketworks/docket/lib/fileindex"
)

const (
	// RootDirName is the issue root directory created by `docket init`
	// and discovered by FindRoot.
	RootDirName = ".docket"

	configFileName = "config.yaml"
)

// ErrNoRoot reports that no issue root exists at or above the
// starting directory.
var ErrNoRoot = errors.New("config: no issue root found")

// Config is the per-root configuration for Docket.
type Config struct {
	// Index configures the file index.
	Index IndexConfig `yaml:"index"`
}

// IndexConfig configures the file index.
type IndexConfig struct {
	// HashLength is the shard hash length in hex characters. The index
	// clamps it to the range it supports; changing it re-shards the
	// index on the next open when AutoMigrate is set.
	HashLength int `yaml:"hash_length"`

	// AutoMigrate re-shards the index on open when HashLength no
	// longer matches the shards on disk. When false, commands that
	// need the index refuse to run until `docket migrate` is invoked.
	AutoMigrate bool `yaml:"auto_migrate"`
}

// Default returns the stock configuration. These values apply to
// roots without a config.yaml and serve as the base that a config
// file is merged over.
func Default() *Config {
	return &Config{
		Index: IndexConfig{
			HashLength:  fileindex.DefaultHashLength,
			AutoMigrate: true,
		},
	}
}

// Load reads <root>/config.yaml, merged over Default values. A
// missing file is not an error: the defaults stand.
func Load(root string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(root, configFileName))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to <root>/config.yaml.
func (c *Config) Save(root string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(root, configFileName), data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks the configuration for errors. Out-of-range (but
// positive) hash lengths are not errors here: the index clamps them.
func (c *Config) Validate() error {
	var errs []error

	if c.Index.HashLength < 0 {
		errs = append(errs, fmt.Errorf("index.hash_length must not be negative: %d", c.Index.HashLength))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// FindRoot walks up from startDir looking for a directory named
// .docket and returns its path. Returns an error wrapping ErrNoRoot
// when the walk reaches the filesystem root without a match.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", startDir, err)
	}

	for {
		candidate := filepath.Join(dir, RootDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s at or above %s: %w", RootDirName, startDir, ErrNoRoot)
		}
		dir = parent
	}
}
