// Copyright 2026 Christopher Felton
// Licensed under the MIT license. See license text in the LICENSE file.

package myhdl

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kernel error values. A simulation run either completes or aborts with one
// of these; the kernel never retries and never silently absorbs a failure.
var (
	// ErrInvalidCond reports a malformed wait condition: a negative delay,
	// an empty change list or composite, a nil member, or a signal that
	// belongs to another simulation.
	ErrInvalidCond = errors.New("invalid wait condition")

	// ErrDuplicateProcess reports that the same process instance appears
	// more than once in the hierarchy passed to Build.
	ErrDuplicateProcess = errors.New("duplicate process registration")

	// ErrInvalidDuration reports a non-positive duration passed to Run.
	ErrInvalidDuration = errors.New("run duration must be positive")
)

// A RunawayError aborts a run when a time step fails to reach a fixed point
// within the configured delta cycle bound. This is the signature of a
// combinational feedback loop in the model.
//
type RunawayError struct {
	Time    int64    // time step that never settled
	Signals []string // signals still toggling in the last delta cycle
}

func (e *RunawayError) Error() string {
	if len(e.Signals) == 0 {
		return fmt.Sprintf("delta cycle limit exceeded at t=%d", e.Time)
	}
	return fmt.Sprintf("delta cycle limit exceeded at t=%d, still toggling: %s",
		e.Time, strings.Join(e.Signals, ", "))
}

// A ProcessError aborts a run when an error escapes a process body, either
// as a returned error or as a recovered panic.
//
type ProcessError struct {
	Process string // name of the failed process
	Time    int64  // simulation time of the failure
	Err     error  // underlying cause
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("process %q failed at t=%d: %v", e.Process, e.Time, e.Err)
}

func (e *ProcessError) Unwrap() error { return e.Err }
