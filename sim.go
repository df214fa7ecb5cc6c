// Copyright 2026 Christopher Felton
// Licensed under the MIT license. See license text in the LICENSE file.

package myhdl

import (
	"io"
	"sort"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/cfelton/myhdl/internal/agenda"
)

// DefaultMaxDeltas is the delta cycle bound applied when Config.MaxDeltas is
// zero. A well formed model settles within a handful of delta cycles; a time
// step still toggling after this many is a combinational feedback loop.
const DefaultMaxDeltas = 1000

// Config carries the simulation parameters. The zero value is usable.
//
type Config struct {
	// MaxDeltas bounds the number of delta cycles within a single time
	// step before the run aborts with a RunawayError. Zero selects
	// DefaultMaxDeltas.
	MaxDeltas int

	// Logger receives kernel diagnostics (process termination, run
	// outcomes) at debug level. If nil, diagnostics are discarded.
	Logger logrus.FieldLogger
}

// A StopReason tells why a run stopped advancing time.
type StopReason int

const (
	// DurationReached: the requested duration elapsed with events still
	// scheduled.
	DurationReached StopReason = iota
	// Quiescent: no process is runnable and no future event is scheduled.
	Quiescent
)

func (r StopReason) String() string {
	switch r {
	case DurationReached:
		return "duration reached"
	case Quiescent:
		return "quiescent"
	}
	return "unknown"
}

// A Result reports the outcome of a completed run.
//
type Result struct {
	Elapsed int64 // simulated ticks actually run, never more than requested
	Reason  StopReason
}

// A Simulation owns a model: its signals, its process table, its agenda and
// its clock. Simulations are independent of each other; any number can
// coexist. Typical use:
//
//	sim := myhdl.New(myhdl.Config{})
//	defer sim.Dispose()
//	clk := myhdl.NewSignal(sim, false).Named("clk")
//	err := sim.Build(
//		myhdl.NewProcess("driver", func(p *myhdl.Process) error {
//			for {
//				p.Wait(myhdl.After(10))
//				clk.SetNext(!clk.Read())
//			}
//		}),
//	)
//	...
//	res, err := sim.Run(100)
//
// A Simulation is not safe for concurrent use: Build, Run and all signal
// access must happen from a single goroutine (model behaviors run strictly
// interleaved with the scheduler and count as that same goroutine).
//
type Simulation struct {
	maxDeltas int
	log       logrus.FieldLogger

	now      int64
	seq      uint64
	built    bool
	disposed bool
	failed   error // sticky fatal error, a failed run stays failed

	signals []*signal
	procs   []*Process
	agenda  agenda.Agenda

	nextDelta   []*Process // processes woken for the next delta cycle
	touched     []*signal  // signals with a pending value, in touch order
	lastChanged []string   // signals that changed in the last update phase

	wg sync.WaitGroup
}

// New creates an empty simulation.
//
func New(cfg Config) *Simulation {
	md := cfg.MaxDeltas
	if md <= 0 {
		md = DefaultMaxDeltas
	}
	lg := cfg.Logger
	if lg == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		lg = l
	}
	return &Simulation{maxDeltas: md, log: lg}
}

// Now returns the current simulation time. Time is monotonic: it only moves
// forward, and only between calls to Run.
//
func (s *Simulation) Now() int64 { return s.now }

func (s *Simulation) newSignal(initial any) *signal {
	sig := &signal{
		sim:     s,
		id:      len(s.signals),
		name:    "s" + strconv.Itoa(len(s.signals)),
		current: initial,
	}
	s.signals = append(s.signals, sig)
	return sig
}

// Build flattens the instance hierarchy into the simulation's process table
// and starts the process goroutines. Every process is scheduled for its
// initial activation, which runs at time 0 in the first delta cycle of the
// first Run.
//
// Build must be called exactly once, with at least one instance. Passing
// the same process twice, directly or through nested groups, fails with
// ErrDuplicateProcess.
//
func (s *Simulation) Build(instances ...Instance) error {
	if s.disposed {
		return errors.New("simulation disposed")
	}
	if s.built {
		return errors.New("model already built")
	}
	if len(instances) == 0 {
		return errors.New("empty instance list")
	}
	var flat []*Process
	for _, in := range instances {
		if in == nil {
			return errors.New("nil instance")
		}
		flat = in.flatten(flat)
	}
	seen := make(map[*Process]bool, len(flat))
	for _, p := range flat {
		if p == nil {
			return errors.New("nil instance")
		}
		if p.sim != nil {
			return errors.Errorf("process %q already registered with a simulation", p.name)
		}
		if seen[p] {
			return errors.Wrap(ErrDuplicateProcess, p.name)
		}
		seen[p] = true
	}
	for i, p := range flat {
		p.sim = s
		p.id = i
		p.status = statusRunnable
		p.start(&s.wg)
		s.nextDelta = append(s.nextDelta, p)
	}
	s.procs = flat
	s.built = true
	s.log.WithField("processes", len(flat)).Debug("model built")
	return nil
}

// Run advances the simulation by at most duration ticks, stopping early if
// the model goes quiescent. A run that aborts (runaway delta cycles, process
// failure) leaves the simulation unusable: subsequent calls return the same
// error.
//
// Run fails with ErrInvalidDuration if duration is not positive.
//
func (s *Simulation) Run(duration int64) (Result, error) {
	if s.disposed {
		return Result{}, errors.New("simulation disposed")
	}
	if !s.built {
		return Result{}, errors.New("Run called before Build")
	}
	if s.failed != nil {
		return Result{}, s.failed
	}
	if duration <= 0 {
		return Result{}, errors.Wrapf(ErrInvalidDuration, "requested %d", duration)
	}

	start := s.now
	limit := s.now + duration
	for {
		if err := s.settle(); err != nil {
			s.failed = err
			return Result{}, err
		}
		t, ok := s.nextEventTime()
		if !ok {
			res := Result{Elapsed: s.now - start, Reason: Quiescent}
			s.logRun(res)
			return res, nil
		}
		if t > limit {
			s.now = limit
			res := Result{Elapsed: duration, Reason: DurationReached}
			s.logRun(res)
			return res, nil
		}
		s.now = t
		s.wakeDue(t)
	}
}

func (s *Simulation) logRun(res Result) {
	s.log.WithFields(logrus.Fields{
		"time":    s.now,
		"elapsed": res.Elapsed,
		"reason":  res.Reason.String(),
	}).Debug("run complete")
}

// settle runs delta cycles at the current time until a fixed point is
// reached: no process runnable, no signal pending. Each cycle has two
// strictly ordered phases: every runnable process is resumed (in
// registration order), then all pending signal values are committed at once.
// Processes woken by the commits run in the next cycle, so no process ever
// observes a same-cycle assignment.
func (s *Simulation) settle() error {
	for delta := 0; ; delta++ {
		if len(s.nextDelta) == 0 && len(s.touched) == 0 {
			return nil
		}
		if delta >= s.maxDeltas {
			return &RunawayError{
				Time:    s.now,
				Signals: append([]string(nil), s.lastChanged...),
			}
		}
		run := s.nextDelta
		s.nextDelta = nil
		sort.Slice(run, func(i, j int) bool { return run[i].id < run[j].id })
		for _, p := range run {
			if err := s.resumeProcess(p); err != nil {
				return err
			}
		}
		s.commit()
	}
}

// resumeProcess hands control to p until it waits again or terminates.
func (s *Simulation) resumeProcess(p *Process) error {
	p.resume <- struct{}{}
	msg := <-p.yield
	if msg.done {
		p.status = statusFinished
		if msg.err != nil {
			return &ProcessError{Process: p.name, Time: s.now, Err: msg.err}
		}
		// termination of a model process is notable, not an error
		s.log.WithFields(logrus.Fields{
			"process": p.name,
			"time":    s.now,
		}).Debug("process terminated")
		return nil
	}
	p.status = statusWaiting
	wake, err := s.register(p, msg.cond)
	if err != nil {
		return &ProcessError{Process: p.name, Time: s.now, Err: err}
	}
	if wake {
		s.wake(p)
	}
	return nil
}

// register records p's wait condition with the relevant signals or the
// agenda, stamping every registration with p's current wake generation. It
// reports whether p must instead be woken for the next delta cycle (a zero
// delay); the caller wakes p only after all members are registered so that
// the generation bump invalidates them all.
func (s *Simulation) register(p *Process, c Cond) (wake bool, err error) {
	switch c := c.(type) {
	case delayCond:
		if c.ticks == 0 {
			return true, nil
		}
		s.seq++
		s.agenda.Push(agenda.Entry{Time: s.now + c.ticks, Seq: s.seq, Pid: p.id, Gen: p.gen})
	case edgeCond:
		if c.s.sim != s {
			return false, errors.Wrapf(ErrInvalidCond,
				"signal %q belongs to another simulation", c.s.name)
		}
		if c.rising {
			c.s.posSubs = append(c.s.posSubs, sub{p: p, gen: p.gen})
		} else {
			c.s.negSubs = append(c.s.negSubs, sub{p: p, gen: p.gen})
		}
	case changeCond:
		for _, sg := range c.sigs {
			if sg.sim != s {
				return false, errors.Wrapf(ErrInvalidCond,
					"signal %q belongs to another simulation", sg.name)
			}
			sg.changeSubs = append(sg.changeSubs, sub{p: p, gen: p.gen})
		}
	case anyCond:
		for _, m := range c.members {
			w, err := s.register(p, m)
			if err != nil {
				return false, err
			}
			wake = wake || w
		}
		return wake, nil
	default:
		return false, errors.Wrapf(ErrInvalidCond, "unknown condition type %T", c)
	}
	return wake, nil
}

// wake makes p runnable in the next delta cycle and invalidates all its
// outstanding registrations.
func (s *Simulation) wake(p *Process) {
	if p.status == statusRunnable || p.status == statusFinished {
		return
	}
	p.gen++
	p.status = statusRunnable
	s.nextDelta = append(s.nextDelta, p)
}

// commit is the update phase: every touched signal's pending value becomes
// current, logically all at once (no commit reads another signal, and woken
// processes only run in the next delta cycle, so sequential application is
// indistinguishable from simultaneous). Committing a value equal to the
// current one is not a change and wakes nobody.
func (s *Simulation) commit() {
	s.lastChanged = s.lastChanged[:0]
	for _, sig := range s.touched {
		sig.queued = false
		if !sig.hasPending {
			continue
		}
		old, next := sig.current, sig.pending
		sig.current = next
		sig.pending = nil
		sig.hasPending = false
		if old == next {
			continue
		}
		s.lastChanged = append(s.lastChanged, sig.name)
		sig.changeSubs = s.fire(sig.changeSubs)
		ob, isBit := old.(bool)
		if !isBit {
			continue
		}
		if nb := next.(bool); !ob && nb {
			sig.posSubs = s.fire(sig.posSubs)
		} else if ob && !nb {
			sig.negSubs = s.fire(sig.negSubs)
		}
	}
	s.touched = s.touched[:0]
}

// fire wakes every live subscriber and empties the list: fired entries are
// consumed and stale ones (the process was already woken through another
// registration) are dropped.
func (s *Simulation) fire(subs []sub) []sub {
	for _, e := range subs {
		if e.gen == e.p.gen {
			s.wake(e.p)
		}
	}
	return subs[:0]
}

// nextEventTime returns the time of the earliest live agenda entry,
// discarding stale ones.
func (s *Simulation) nextEventTime() (int64, bool) {
	for {
		e, ok := s.agenda.Min()
		if !ok {
			return 0, false
		}
		p := s.procs[e.Pid]
		if e.Gen != p.gen || p.status == statusFinished {
			s.agenda.Pop()
			continue
		}
		return e.Time, true
	}
}

// wakeDue wakes every process whose delay expires at time t.
func (s *Simulation) wakeDue(t int64) {
	for {
		e, ok := s.agenda.Min()
		if !ok || e.Time != t {
			return
		}
		s.agenda.Pop()
		p := s.procs[e.Pid]
		if e.Gen != p.gen || p.status == statusFinished {
			continue
		}
		s.wake(p)
	}
}

// Dispose stops all process goroutines and releases the simulation's
// resources. The simulation must not be used afterwards.
//
func (s *Simulation) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	for _, p := range s.procs {
		close(p.resume)
	}
	s.wg.Wait()
}
