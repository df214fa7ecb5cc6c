// Copyright 2026 Christopher Felton
// Licensed under the MIT license. See license text in the LICENSE file.

// myhdlsim runs a small demonstration testbench: a clock driving a rising
// edge counter, with every committed count change logged at debug level.
package main

import (
	"os"

	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"

	"github.com/cfelton/myhdl"
	"github.com/cfelton/myhdl/simlib"
)

type options struct {
	Config     string `short:"c" long:"config" description:"testbench config file (YAML)"`
	Duration   int64  `short:"d" long:"duration" default:"100" description:"ticks to simulate"`
	HalfPeriod int64  `long:"half-period" default:"10" description:"clock half period in ticks"`
	MaxDeltas  int    `long:"max-deltas" description:"delta cycle bound per time step (0 = kernel default)"`
	LogLevel   string `long:"log-level" default:"info" description:"log level"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}

	tb := testbench{
		Duration:   opts.Duration,
		HalfPeriod: opts.HalfPeriod,
		MaxDeltas:  opts.MaxDeltas,
		LogLevel:   opts.LogLevel,
	}
	if opts.Config != "" {
		if err := loadConfig(opts.Config, &tb); err != nil {
			log.WithError(err).Fatal("failed to load config")
		}
	}

	lvl, err := log.ParseLevel(tb.LogLevel)
	if err != nil {
		log.WithError(err).Fatal("invalid log level")
	}
	log.SetLevel(lvl)

	sim := myhdl.New(myhdl.Config{MaxDeltas: tb.MaxDeltas, Logger: log.StandardLogger()})
	defer sim.Dispose()

	clk := myhdl.NewSignal(sim, false).Named("clk")
	count := myhdl.NewSignal(sim, 0).Named("count")

	err = sim.Build(
		simlib.Clock(clk, tb.HalfPeriod),
		simlib.RisingCounter(clk, count),
		simlib.Probe("count probe", count, func(t int64, v int) {
			log.WithFields(log.Fields{"time": t, "count": v}).Debug("count changed")
		}),
	)
	if err != nil {
		log.WithError(err).Fatal("failed to build model")
	}

	res, err := sim.Run(tb.Duration)
	if err != nil {
		log.WithError(err).Fatal("simulation failed")
	}
	log.WithFields(log.Fields{
		"elapsed": res.Elapsed,
		"reason":  res.Reason.String(),
		"count":   count.Read(),
	}).Info("simulation complete")
}
