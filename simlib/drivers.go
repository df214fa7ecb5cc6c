// Copyright 2026 Christopher Felton
// Licensed under the MIT license. See license text in the LICENSE file.

// Package simlib provides a library of reusable behaviors for myhdl models:
// clock and stimulus drivers, probes and recorders.
//
package simlib

import (
	"github.com/cfelton/myhdl"
)

// Clock drives sig with a square wave, toggling it every half ticks. The
// first toggle happens half ticks after time 0, so a signal initialized to
// false shows rising edges at half, 3*half, 5*half, ...
//
func Clock(sig *myhdl.Signal[bool], half int64) myhdl.Instance {
	return myhdl.NewProcess("clock", func(p *myhdl.Process) error {
		for {
			p.Wait(myhdl.After(half))
			sig.SetNext(!sig.Read())
		}
	})
}

// A Step is one element of a stimulus sequence: wait Delay ticks, then
// assign Value. A zero Delay applies the value in the next delta cycle.
type Step[T comparable] struct {
	Delay int64
	Value T
}

// Stimulus applies steps to sig in order and terminates. A terminated
// stimulus leaves the rest of the model running.
//
func Stimulus[T comparable](name string, sig *myhdl.Signal[T], steps []Step[T]) myhdl.Instance {
	return myhdl.NewProcess(name, func(p *myhdl.Process) error {
		for _, st := range steps {
			p.Wait(myhdl.After(st.Delay))
			sig.SetNext(st.Value)
		}
		return nil
	})
}

// RisingCounter increments count at every rising edge of clk.
//
func RisingCounter(clk *myhdl.Signal[bool], count *myhdl.Signal[int]) myhdl.Instance {
	return myhdl.NewProcess("rising counter", func(p *myhdl.Process) error {
		for {
			p.Wait(myhdl.Posedge(clk))
			count.SetNext(count.Read() + 1)
		}
	})
}
