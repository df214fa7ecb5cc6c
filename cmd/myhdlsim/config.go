// Copyright 2026 Christopher Felton
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// testbench holds the run parameters. Fields absent from the config file
// keep their command line (or default) values.
type testbench struct {
	Duration   int64  `yaml:"duration"`
	HalfPeriod int64  `yaml:"halfPeriod"`
	MaxDeltas  int    `yaml:"maxDeltas"`
	LogLevel   string `yaml:"logLevel"`
}

func loadConfig(path string, tb *testbench) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, tb); err != nil {
		return errors.Wrapf(err, "parse config %s", path)
	}
	if tb.Duration <= 0 {
		return errors.Errorf("config %s: duration must be positive, got %d", path, tb.Duration)
	}
	if tb.HalfPeriod <= 0 {
		return errors.Errorf("config %s: halfPeriod must be positive, got %d", path, tb.HalfPeriod)
	}
	return nil
}
