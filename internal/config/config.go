// Package config holds the load-run configuration: how many rows and columns
// to write, how to batch them, and how large a cluster to boot. Defaults are
// compiled in; a YAML file can override them. Cluster endpoints and the
// working directory are always set programmatically, never from the file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Table and ColumnFamily name the schema the run writes into.
	Table        string `yaml:"table"`
	ColumnFamily string `yaml:"columnFamily"`

	// Rows and ColumnsPerRow size the dataset; ValueSize is the byte length
	// of every cell value.
	Rows          int `yaml:"rows"`
	ColumnsPerRow int `yaml:"columnsPerRow"`
	ValueSize     int `yaml:"valueSize"`

	// BatchSize is the number of rows buffered before a batched mutation is
	// submitted. ProgressEvery controls how often cumulative progress is
	// logged, in entries.
	BatchSize     int `yaml:"batchSize"`
	ProgressEvery int `yaml:"progressEvery"`

	// Nodes is the storage node count of the embedded cluster.
	Nodes int `yaml:"nodes"`
}

// Default returns the configuration of the canonical load run: one million
// rows of ten 50-byte columns, batched 1000 rows at a time, on a two-node
// cluster.
func Default() *Config {
	return &Config{
		Table:         "test",
		ColumnFamily:  "cf",
		Rows:          1_000_000,
		ColumnsPerRow: 10,
		ValueSize:     50,
		BatchSize:     1000,
		ProgressEvery: 50_000,
		Nodes:         2,
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults untouched; a path that cannot be read is an error, so a typo'd
// path never falls back to the full-scale defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errGrp []error
	if c.Table == "" {
		errGrp = append(errGrp, errors.New("table is required"))
	}
	if c.ColumnFamily == "" {
		errGrp = append(errGrp, errors.New("columnFamily is required"))
	}
	if c.Rows <= 0 {
		errGrp = append(errGrp, errors.New("rows must be positive"))
	}
	if c.ColumnsPerRow <= 0 {
		errGrp = append(errGrp, errors.New("columnsPerRow must be positive"))
	}
	if c.ValueSize <= 0 {
		errGrp = append(errGrp, errors.New("valueSize must be positive"))
	}
	if c.BatchSize <= 0 {
		errGrp = append(errGrp, errors.New("batchSize must be positive"))
	}
	if c.ProgressEvery <= 0 {
		errGrp = append(errGrp, errors.New("progressEvery must be positive"))
	}
	return errors.Join(errGrp...)
}
