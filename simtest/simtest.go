// Copyright 2026 Christopher Felton
// Licensed under the MIT license. See license text in the LICENSE file.

// Package simtest provides utility functions for testing simulation models.
//
package simtest

import (
	"testing"

	"github.com/cfelton/myhdl"
)

// A Model builds a fresh copy of a design against sim. It returns the top
// instance to register and a summary function that captures the observable
// outcome of a run (typically recorded traces and final signal values).
//
type Model func(sim *myhdl.Simulation) (top myhdl.Instance, summary func() string)

// Run builds and runs m for the given duration, failing t on any error. It
// returns the run result and the model's summary.
//
func Run(t *testing.T, m Model, duration int64) (myhdl.Result, string) {
	t.Helper()
	sim := myhdl.New(myhdl.Config{})
	t.Cleanup(sim.Dispose)
	top, summary := m(sim)
	if err := sim.Build(top); err != nil {
		t.Fatal(err)
	}
	res, err := sim.Run(duration)
	if err != nil {
		t.Fatal(err)
	}
	return res, summary()
}

// CheckReplay runs m twice for the given duration and fails t unless both
// runs stop for the same reason at the same time with identical summaries.
// A model free of external nondeterminism must replay exactly.
//
func CheckReplay(t *testing.T, m Model, duration int64) {
	t.Helper()
	res1, sum1 := Run(t, m, duration)
	res2, sum2 := Run(t, m, duration)
	if res1 != res2 {
		t.Errorf("replay result mismatch: %+v vs %+v", res1, res2)
	}
	if sum1 != sum2 {
		t.Errorf("replay trace mismatch:\nfirst:  %s\nsecond: %s", sum1, sum2)
	}
}
