// Copyright 2026 Christopher Felton
// Licensed under the MIT license. See license text in the LICENSE file.

package myhdl

import (
	"sync"

	"github.com/pkg/errors"
)

// A Behavior is the body of a process. It runs cooperatively: it may read
// and assign signals and must suspend itself with Wait between actions.
// Returning nil terminates the process; returning an error or panicking
// aborts the whole run.
//
type Behavior func(p *Process) error

// process status
const (
	statusWaiting = iota
	statusRunnable
	statusFinished
)

// A Process is a cooperatively scheduled unit of behavior. Each process runs
// on its own goroutine, but the scheduler is the sole driver of resumption:
// exactly one process executes at any time, between two rendezvous with the
// scheduler.
//
type Process struct {
	name string
	fn   Behavior

	sim    *Simulation
	id     int    // registration order, assigned by Build
	gen    uint64 // wake generation, invalidates stale registrations
	status int

	resume chan struct{}
	yield  chan yieldMsg
}

// A yieldMsg is what a process hands back to the scheduler when it stops
// running: its next wait condition, or its termination.
type yieldMsg struct {
	cond Cond
	err  error
	done bool
}

// killToken unwinds a process goroutine when its simulation is disposed.
type killToken struct{}

// NewProcess declares a leaf process with the given name and behavior. The
// process is inert until registered with a Simulation through Build, which
// activates it once, unconditionally, at time 0.
//
func NewProcess(name string, fn Behavior) *Process {
	if fn == nil {
		panic(errors.Errorf("nil behavior for process %q", name))
	}
	return &Process{
		name:   name,
		fn:     fn,
		resume: make(chan struct{}),
		yield:  make(chan yieldMsg),
	}
}

// Name returns the process name.
//
func (p *Process) Name() string { return p.name }

// Now returns the current simulation time. It may only be called from within
// the process's behavior.
//
func (p *Process) Now() int64 { return p.sim.now }

// Wait suspends the process until c is satisfied. It may only be called from
// within the process's behavior.
//
// Wait panics with ErrInvalidCond if c is nil; a malformed condition built
// inside a behavior aborts the run as a ProcessError.
//
func (p *Process) Wait(c Cond) {
	if c == nil {
		panic(errors.Wrap(ErrInvalidCond, "nil condition"))
	}
	p.yield <- yieldMsg{cond: c}
	if _, ok := <-p.resume; !ok {
		panic(killToken{})
	}
}

// start launches the process goroutine. The goroutine parks immediately and
// runs only between a scheduler send on resume and the next send on yield.
func (p *Process) start(wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, ok := <-p.resume; !ok {
			// disposed before initial activation
			return
		}
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if _, ok := r.(killToken); ok {
				return
			}
			err, ok := r.(error)
			if !ok {
				err = errors.Errorf("panic: %v", r)
			}
			p.yield <- yieldMsg{done: true, err: err}
		}()
		err := p.fn(p)
		p.yield <- yieldMsg{done: true, err: err}
	}()
}
