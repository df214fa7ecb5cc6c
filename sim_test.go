// Copyright 2026 Christopher Felton
// Licensed under the MIT license. See license text in the LICENSE file.

package myhdl_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cfelton/myhdl"
)

func newSim(t *testing.T, cfg myhdl.Config) *myhdl.Simulation {
	t.Helper()
	sim := myhdl.New(cfg)
	t.Cleanup(sim.Dispose)
	return sim
}

func toggler(clk *myhdl.Signal[bool], every int64) *myhdl.Process {
	return myhdl.NewProcess("toggler", func(p *myhdl.Process) error {
		for {
			p.Wait(myhdl.After(every))
			clk.SetNext(!clk.Read())
		}
	})
}

func Test_toggler_watcher(t *testing.T) {
	sim := newSim(t, myhdl.Config{})
	clk := myhdl.NewSignal(sim, false).Named("clk")
	var events []int64
	watcher := myhdl.NewProcess("watcher", func(p *myhdl.Process) error {
		for {
			p.Wait(myhdl.Posedge(clk))
			events = append(events, p.Now())
		}
	})
	if err := sim.Build(toggler(clk, 10), watcher); err != nil {
		t.Fatal(err)
	}
	res, err := sim.Run(50)
	if err != nil {
		t.Fatal(err)
	}
	if res.Reason != myhdl.DurationReached || res.Elapsed != 50 {
		t.Fatalf("got %+v, want 50 ticks, duration reached", res)
	}
	want := []int64{10, 30, 50}
	if fmt.Sprint(events) != fmt.Sprint(want) {
		t.Fatalf("rising edges seen at %v, want %v", events, want)
	}
}

func Test_monotonic_time(t *testing.T) {
	sim := newSim(t, myhdl.Config{})
	clk := myhdl.NewSignal(sim, false)
	if err := sim.Build(toggler(clk, 7)); err != nil {
		t.Fatal(err)
	}
	prev := sim.Now()
	if prev != 0 {
		t.Fatalf("fresh simulation at t=%d, want 0", prev)
	}
	for _, d := range []int64{5, 1, 30, 13} {
		res, err := sim.Run(d)
		if err != nil {
			t.Fatal(err)
		}
		if sim.Now() < prev {
			t.Fatalf("time went backwards: %d -> %d", prev, sim.Now())
		}
		if sim.Now()-prev > d {
			t.Fatalf("run(%d) advanced time by %d", d, sim.Now()-prev)
		}
		if res.Elapsed != sim.Now()-prev {
			t.Fatalf("run(%d) reported %d elapsed, time advanced by %d", d, res.Elapsed, sim.Now()-prev)
		}
		prev = sim.Now()
	}
}

func Test_quiescence(t *testing.T) {
	sim := newSim(t, myhdl.Config{})
	s := myhdl.NewSignal(sim, 0)
	driver := myhdl.NewProcess("driver", func(p *myhdl.Process) error {
		p.Wait(myhdl.After(2))
		s.SetNext(1)
		p.Wait(myhdl.After(4))
		s.SetNext(2)
		return nil
	})
	watcher := myhdl.NewProcess("watcher", func(p *myhdl.Process) error {
		for {
			p.Wait(s.Changed())
		}
	})
	if err := sim.Build(driver, watcher); err != nil {
		t.Fatal(err)
	}
	res, err := sim.Run(100)
	if err != nil {
		t.Fatal(err)
	}
	// the watcher still waits on s, but no event will ever fire again
	if res.Reason != myhdl.Quiescent || res.Elapsed != 6 {
		t.Fatalf("got %+v, want quiescent after 6 ticks", res)
	}
	if sim.Now() != 6 {
		t.Fatalf("time advanced to %d past quiescence, want 6", sim.Now())
	}
	res, err = sim.Run(100)
	if err != nil {
		t.Fatal(err)
	}
	if res.Reason != myhdl.Quiescent || res.Elapsed != 0 {
		t.Fatalf("quiescent model ran again: %+v", res)
	}
}

func Test_invalid_duration(t *testing.T) {
	sim := newSim(t, myhdl.Config{})
	clk := myhdl.NewSignal(sim, false)
	if err := sim.Build(toggler(clk, 10)); err != nil {
		t.Fatal(err)
	}
	for _, d := range []int64{0, -5} {
		if _, err := sim.Run(d); !errors.Is(err, myhdl.ErrInvalidDuration) {
			t.Fatalf("Run(%d) = %v, want ErrInvalidDuration", d, err)
		}
	}
	// rejected runs must not poison the simulation
	if _, err := sim.Run(10); err != nil {
		t.Fatal(err)
	}
}

func Test_runaway_delta_cycle(t *testing.T) {
	sim := newSim(t, myhdl.Config{MaxDeltas: 8})
	x := myhdl.NewSignal(sim, false).Named("x")
	feedback := myhdl.NewProcess("feedback", func(p *myhdl.Process) error {
		for {
			x.SetNext(!x.Read())
			p.Wait(x.Changed())
		}
	})
	if err := sim.Build(feedback); err != nil {
		t.Fatal(err)
	}
	_, err := sim.Run(10)
	var rw *myhdl.RunawayError
	if !errors.As(err, &rw) {
		t.Fatalf("got %v, want RunawayError", err)
	}
	if rw.Time != 0 {
		t.Errorf("runaway reported at t=%d, want 0", rw.Time)
	}
	if len(rw.Signals) != 1 || rw.Signals[0] != "x" {
		t.Errorf("toggling signals %v, want [x]", rw.Signals)
	}
	// a failed run stays failed
	if _, err2 := sim.Run(10); !errors.As(err2, &rw) {
		t.Errorf("second Run after abort = %v, want the stored RunawayError", err2)
	}
}

func Test_process_failure(t *testing.T) {
	t.Run("returned error", func(t *testing.T) {
		sim := newSim(t, myhdl.Config{})
		boom := myhdl.NewProcess("boom", func(p *myhdl.Process) error {
			p.Wait(myhdl.After(3))
			return errors.New("bad state")
		})
		if err := sim.Build(boom); err != nil {
			t.Fatal(err)
		}
		_, err := sim.Run(10)
		var pe *myhdl.ProcessError
		if !errors.As(err, &pe) {
			t.Fatalf("got %v, want ProcessError", err)
		}
		if pe.Process != "boom" || pe.Time != 3 {
			t.Errorf("failure reported as %q at t=%d, want boom at t=3", pe.Process, pe.Time)
		}
	})

	t.Run("panic", func(t *testing.T) {
		sim := newSim(t, myhdl.Config{})
		boom := myhdl.NewProcess("boom", func(p *myhdl.Process) error {
			p.Wait(myhdl.After(1))
			panic("oops")
		})
		if err := sim.Build(boom); err != nil {
			t.Fatal(err)
		}
		_, err := sim.Run(10)
		var pe *myhdl.ProcessError
		if !errors.As(err, &pe) {
			t.Fatalf("got %v, want ProcessError", err)
		}
	})

	t.Run("normal termination is not an error", func(t *testing.T) {
		sim := newSim(t, myhdl.Config{})
		done := myhdl.NewProcess("done", func(p *myhdl.Process) error {
			p.Wait(myhdl.After(1))
			return nil
		})
		if err := sim.Build(done); err != nil {
			t.Fatal(err)
		}
		res, err := sim.Run(10)
		if err != nil {
			t.Fatal(err)
		}
		if res.Reason != myhdl.Quiescent {
			t.Fatalf("got %+v, want quiescent", res)
		}
	})
}

func Test_build_errors(t *testing.T) {
	nop := func(p *myhdl.Process) error {
		p.Wait(myhdl.After(1))
		return nil
	}

	t.Run("duplicate process", func(t *testing.T) {
		sim := newSim(t, myhdl.Config{})
		a := myhdl.NewProcess("a", nop)
		err := sim.Build(a, myhdl.Group(myhdl.NewProcess("b", nop), a))
		if !errors.Is(err, myhdl.ErrDuplicateProcess) {
			t.Fatalf("got %v, want ErrDuplicateProcess", err)
		}
	})

	t.Run("empty instance list", func(t *testing.T) {
		sim := newSim(t, myhdl.Config{})
		if err := sim.Build(); err == nil {
			t.Fatal("Build() with no instances succeeded")
		}
	})

	t.Run("nil instance", func(t *testing.T) {
		sim := newSim(t, myhdl.Config{})
		if err := sim.Build(myhdl.Group(myhdl.NewProcess("a", nop), nil)); err == nil {
			t.Fatal("Build with nil instance succeeded")
		}
	})

	t.Run("double build", func(t *testing.T) {
		sim := newSim(t, myhdl.Config{})
		if err := sim.Build(myhdl.NewProcess("a", nop)); err != nil {
			t.Fatal(err)
		}
		if err := sim.Build(myhdl.NewProcess("b", nop)); err == nil {
			t.Fatal("second Build succeeded")
		}
	})

	t.Run("run before build", func(t *testing.T) {
		sim := newSim(t, myhdl.Config{})
		if _, err := sim.Run(10); err == nil {
			t.Fatal("Run before Build succeeded")
		}
	})
}

// Processes are activated in depth-first hierarchy order, which also fixes
// the resumption order among concurrently triggered processes.
func Test_flatten_order(t *testing.T) {
	sim := newSim(t, myhdl.Config{})
	var order []string
	mk := func(name string) *myhdl.Process {
		return myhdl.NewProcess(name, func(p *myhdl.Process) error {
			order = append(order, name)
			p.Wait(myhdl.After(1))
			return nil
		})
	}
	err := sim.Build(
		mk("a"),
		myhdl.Group(mk("b"), myhdl.Group(mk("c"), mk("d"))),
		mk("e"),
	)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sim.Run(1); err != nil {
		t.Fatal(err)
	}
	if got, want := fmt.Sprint(order), fmt.Sprint([]string{"a", "b", "c", "d", "e"}); got != want {
		t.Fatalf("activation order %s, want %s", got, want)
	}
}

func Test_anyof_first_wins(t *testing.T) {
	sim := newSim(t, myhdl.Config{})
	clk := myhdl.NewSignal(sim, false).Named("clk")
	driver := myhdl.NewProcess("driver", func(p *myhdl.Process) error {
		p.Wait(myhdl.After(10))
		clk.SetNext(true)
		return nil
	})
	var wakes []int64
	waiter := myhdl.NewProcess("waiter", func(p *myhdl.Process) error {
		for i := 0; i < 2; i++ {
			p.Wait(myhdl.AnyOf(myhdl.Posedge(clk), myhdl.After(25)))
			wakes = append(wakes, p.Now())
		}
		return nil
	})
	if err := sim.Build(driver, waiter); err != nil {
		t.Fatal(err)
	}
	res, err := sim.Run(100)
	if err != nil {
		t.Fatal(err)
	}
	// first wait: edge at 10 beats the 25 tick timeout, whose stale agenda
	// entry must not fire; second wait: no more edges, timeout at 10+25
	want := []int64{10, 35}
	if fmt.Sprint(wakes) != fmt.Sprint(want) {
		t.Fatalf("wakes at %v, want %v", wakes, want)
	}
	if res.Reason != myhdl.Quiescent || sim.Now() != 35 {
		t.Fatalf("got %+v at t=%d, want quiescent at 35", res, sim.Now())
	}
}

func Test_deterministic_replay(t *testing.T) {
	run := func() (string, int64) {
		sim := newSim(t, myhdl.Config{})
		clk := myhdl.NewSignal(sim, false).Named("clk")
		count := myhdl.NewSignal(sim, 0).Named("count")
		var trace []string
		counter := myhdl.NewProcess("counter", func(p *myhdl.Process) error {
			for {
				p.Wait(myhdl.Posedge(clk))
				count.SetNext(count.Read() + 1)
			}
		})
		probe := myhdl.NewProcess("probe", func(p *myhdl.Process) error {
			for {
				p.Wait(myhdl.OnChange(clk, count))
				trace = append(trace, fmt.Sprintf("%d:%v:%d", p.Now(), clk.Read(), count.Read()))
			}
		})
		if err := sim.Build(toggler(clk, 5), counter, probe); err != nil {
			t.Fatal(err)
		}
		if _, err := sim.Run(42); err != nil {
			t.Fatal(err)
		}
		return fmt.Sprint(trace), sim.Now()
	}
	t1, now1 := run()
	t2, now2 := run()
	if t1 != t2 {
		t.Errorf("trace mismatch:\nfirst:  %s\nsecond: %s", t1, t2)
	}
	if now1 != now2 {
		t.Errorf("final time mismatch: %d vs %d", now1, now2)
	}
}
