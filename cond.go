// Copyright 2026 Christopher Felton
// Licensed under the MIT license. See license text in the LICENSE file.

package myhdl

import "github.com/pkg/errors"

// A Cond describes what a suspended process is waiting for: a delay, an edge
// or value change on one or more signals, or any combination thereof.
// Conditions are inert values; nothing is registered with the scheduler
// until a process actually waits on one.
//
// Cond is a closed set: After, Posedge, Negedge, OnChange, AnyOf and
// Signal.Changed are the only constructors.
//
type Cond interface {
	isCond()
}

type delayCond struct{ ticks int64 }

type edgeCond struct {
	s      *signal
	rising bool
}

type changeCond struct{ sigs []*signal }

type anyCond struct{ members []Cond }

func (delayCond) isCond()  {}
func (edgeCond) isCond()   {}
func (changeCond) isCond() {}
func (anyCond) isCond()    {}

// After returns a condition satisfied once the given number of simulated
// ticks has elapsed. After(0) resumes the waiting process within the same
// time step, but only after the current delta cycle's signal updates have
// committed.
//
// After panics with ErrInvalidCond if ticks is negative.
//
func After(ticks int64) Cond {
	if ticks < 0 {
		panic(errors.Wrapf(ErrInvalidCond, "negative delay %d", ticks))
	}
	return delayCond{ticks: ticks}
}

// Posedge returns a condition satisfied when s commits a false to true
// transition.
//
func Posedge(s *Signal[bool]) Cond {
	return edgeCond{s: s.c, rising: true}
}

// Negedge returns a condition satisfied when s commits a true to false
// transition.
//
func Negedge(s *Signal[bool]) Cond {
	return edgeCond{s: s.c, rising: false}
}

// OnChange returns a condition satisfied when any of the given signals
// commits a new value. Assigning a signal its current value is not a change.
//
// OnChange panics with ErrInvalidCond if the signal list is empty or
// contains a nil signal.
//
func OnChange(sigs ...Sig) Cond {
	if len(sigs) == 0 {
		panic(errors.Wrap(ErrInvalidCond, "empty change list"))
	}
	cs := make([]*signal, len(sigs))
	for i, s := range sigs {
		if s == nil {
			panic(errors.Wrap(ErrInvalidCond, "nil signal in change list"))
		}
		cs[i] = s.core()
	}
	return changeCond{sigs: cs}
}

// AnyOf combines conditions with "or" semantics: the waiting process resumes
// as soon as any member condition is satisfied, and the remaining members
// are discarded.
//
// AnyOf panics with ErrInvalidCond if the condition list is empty or
// contains a nil condition.
//
func AnyOf(conds ...Cond) Cond {
	if len(conds) == 0 {
		panic(errors.Wrap(ErrInvalidCond, "empty composite condition"))
	}
	for _, c := range conds {
		if c == nil {
			panic(errors.Wrap(ErrInvalidCond, "nil member in composite condition"))
		}
	}
	return anyCond{members: conds}
}
