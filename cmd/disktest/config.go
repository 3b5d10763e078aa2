package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

var errConfigFileRead = errors.New("cannot read config file")

// fileConfig is the subset of run parameters an operator can check into a HuJSON config file
// (JSON with comments and trailing commas), so a seed and its rationale can live alongside the
// command that uses it instead of only in shell history.
type fileConfig struct {
	Seed        string `json:"seed,omitempty"`
	Workers     int    `json:"workers,omitempty"`
	Generator   string `json:"generator,omitempty"`
	DirectIO    *bool  `json:"direct_io,omitempty"` //nolint:tagliatelle
	MetricsAddr string `json:"metrics_addr,omitempty"`
}

// loadFileConfig reads and parses a HuJSON config file. An empty path is not an error: it
// simply yields a zero-valued fileConfig, so config files are always optional. A non-empty
// path that cannot be read returns an error wrapping errConfigFileRead.
func loadFileConfig(path string) (fileConfig, error) {
	if path == "" {
		return fileConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("%w: %s: %w", errConfigFileRead, path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSONC in %s: %w", path, err)
	}

	var cfg fileConfig
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	return cfg, nil
}
