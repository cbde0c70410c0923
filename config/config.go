// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config reads extractcheck configuration files.
//
// A configuration file is a YAML document such as
//
//	format: plain
//	color: true
//	verbose: false
//	workers: 4
//	initial_errors: warn
//	scope:
//	  - ./...
//
// Every field is optional.  Command line flags override the values in the
// file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/godoctor/extractcheck/refactoring"
	"gopkg.in/yaml.v3"
)

// Names of the configuration files searched for, in order, when no file is
// given explicitly.
var defaultNames = []string{
	".extractcheck.yml",
	".extractcheck.yaml",
}

// Config represents the configuration for extractcheck.
type Config struct {
	// Output format: "plain", "table", or "json"
	Format string `yaml:"format"`
	// Colorize plain output
	Color bool `yaml:"color"`
	// Report the analysis of extractable selections
	Verbose bool `yaml:"verbose"`
	// Maximum number of selections analyzed at once; 0 means GOMAXPROCS
	Workers int `yaml:"workers"`
	// Reporting of errors present before analysis: "error", "warn", or
	// "ignore"
	InitialErrors string `yaml:"initial_errors"`
	// Packages to load; empty means the package of the selected file
	Scope []string `yaml:"scope,omitempty"`

	// The file this configuration was read from, if any
	Path string `yaml:"-"`
}

// Default returns the configuration used when there is no file.
func Default() *Config {
	return &Config{
		Format:        "plain",
		Color:         true,
		InitialErrors: "error",
	}
}

// Load reads the configuration file at path.  If path is empty, the default
// configuration file names are searched for in dir; if none exists, the
// default configuration is returned.
func Load(path, dir string) (*Config, error) {
	if path == "" {
		path = find(dir)
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse reads a configuration from r, starting with the defaults.  Unknown
// fields are errors.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func find(dir string) string {
	for _, name := range defaultNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Format {
	case "plain", "table", "json":
	default:
		return fmt.Errorf("invalid output format: %s (valid: plain, table, json)", c.Format)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	if _, err := refactoring.ParseErrorPolicy(c.InitialErrors); err != nil {
		return err
	}
	return nil
}

// ErrorPolicy returns the policy named by InitialErrors.
func (c *Config) ErrorPolicy() refactoring.ErrorPolicy {
	p, _ := refactoring.ParseErrorPolicy(c.InitialErrors)
	return p
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
