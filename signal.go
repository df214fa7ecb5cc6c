// Copyright 2026 Christopher Felton
// Licensed under the MIT license. See license text in the LICENSE file.

package myhdl

// signal is the untyped core of a Signal. It is owned by its Simulation:
// processes request next values through setNext, but only the scheduler's
// update phase writes current.
type signal struct {
	sim        *Simulation
	id         int
	name       string
	current    any
	pending    any
	hasPending bool
	queued     bool // already listed in sim.touched

	// subscriber lists, in wait registration order
	changeSubs []sub
	posSubs    []sub
	negSubs    []sub
}

// A sub is a one-shot wake-up registration. It is live only while gen
// matches the process's current wake generation; waking a process through
// any of its registrations invalidates all the others.
type sub struct {
	p   *Process
	gen uint64
}

func (s *signal) setNext(v any) {
	s.pending = v
	s.hasPending = true
	if !s.queued {
		s.queued = true
		s.sim.touched = append(s.sim.touched, s)
	}
}

// Sig is the untyped view of a signal. It is implemented by *Signal[T] for
// every value type and lets signals of different types share a change list.
//
type Sig interface {
	core() *signal
}

// A Signal is a shared, versioned state cell connecting processes. Reads
// always observe the committed value; writes request a next value that the
// scheduler commits between delta cycles, so that every process runnable in
// a given cycle observes the same state.
//
// A Signal belongs to the Simulation it was created against and lives for
// the whole run.
//
type Signal[T comparable] struct {
	c *signal
}

// NewSignal creates a signal with the given initial value, owned by sim.
//
func NewSignal[T comparable](sim *Simulation, initial T) *Signal[T] {
	return &Signal[T]{c: sim.newSignal(initial)}
}

func (s *Signal[T]) core() *signal { return s.c }

// Named sets the signal's name, used in diagnostics, and returns s.
//
func (s *Signal[T]) Named(name string) *Signal[T] {
	s.c.name = name
	return s
}

// Name returns the signal's name. Unnamed signals get "s0", "s1", ... in
// creation order.
//
func (s *Signal[T]) Name() string { return s.c.name }

// Read returns the committed value. It never observes a pending assignment.
//
func (s *Signal[T]) Read() T { return s.c.current.(T) }

// SetNext requests v as the signal's next value, committed at the end of the
// current delta cycle. Several assignments before the commit are legal and
// the last one wins; two processes assigning the same signal in the same
// cycle therefore race on resumption order, which is stable (registration
// order) but a hazard the model author should avoid.
//
func (s *Signal[T]) SetNext(v T) { s.c.setNext(v) }

// Changed returns a condition satisfied when s commits a new value.
//
func (s *Signal[T]) Changed() Cond {
	return changeCond{sigs: []*signal{s.c}}
}
