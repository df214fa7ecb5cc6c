// Copyright 2026 Christopher Felton
// Licensed under the MIT license. See license text in the LICENSE file.

package simlib

import (
	"github.com/cfelton/myhdl"
)

// Probe calls fn with the simulation time and the new value after every
// committed change of sig.
//
func Probe[T comparable](name string, sig *myhdl.Signal[T], fn func(t int64, v T)) myhdl.Instance {
	return myhdl.NewProcess(name, func(p *myhdl.Process) error {
		for {
			p.Wait(sig.Changed())
			fn(p.Now(), sig.Read())
		}
	})
}

// OnPosedge calls fn at every rising edge of clk.
//
func OnPosedge(name string, clk *myhdl.Signal[bool], fn func(t int64)) myhdl.Instance {
	return myhdl.NewProcess(name, func(p *myhdl.Process) error {
		for {
			p.Wait(myhdl.Posedge(clk))
			fn(p.Now())
		}
	})
}

// A Sample is one recorded observation of a signal.
type Sample[T comparable] struct {
	Time  int64
	Value T
}

// A Recorder accumulates the committed values of a signal over a run.
// It must only be inspected between runs.
//
type Recorder[T comparable] struct {
	samples []Sample[T]
}

// Samples returns the recorded samples in commit order.
//
func (r *Recorder[T]) Samples() []Sample[T] { return r.samples }

// Times returns the times of the recorded samples.
//
func (r *Recorder[T]) Times() []int64 {
	ts := make([]int64, len(r.samples))
	for i, s := range r.samples {
		ts[i] = s.Time
	}
	return ts
}

// Record attaches a fresh Recorder to sig and returns it together with the
// probe instance to register with the simulation.
//
func Record[T comparable](sig *myhdl.Signal[T]) (*Recorder[T], myhdl.Instance) {
	r := &Recorder[T]{}
	probe := Probe("recorder", sig, func(t int64, v T) {
		r.samples = append(r.samples, Sample[T]{Time: t, Value: v})
	})
	return r, probe
}
