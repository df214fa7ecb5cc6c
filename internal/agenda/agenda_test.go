// Copyright 2026 Christopher Felton
// Licensed under the MIT license. See license text in the LICENSE file.

package agenda

import "testing"

func TestAgendaOrdering(t *testing.T) {
	var a Agenda
	if _, ok := a.Min(); ok {
		t.Fatal("empty agenda has a minimum")
	}
	for _, e := range []Entry{
		{Time: 30, Seq: 1, Pid: 0},
		{Time: 10, Seq: 2, Pid: 1},
		{Time: 20, Seq: 3, Pid: 2},
		{Time: 10, Seq: 4, Pid: 3},
		{Time: 10, Seq: 0, Pid: 4},
	} {
		a.Push(e)
	}
	if a.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", a.Len())
	}

	// equal times pop in insertion sequence order
	want := []int{4, 1, 3, 2, 0}
	for i, pid := range want {
		min, ok := a.Min()
		if !ok {
			t.Fatalf("agenda empty after %d pops", i)
		}
		e := a.Pop()
		if e != min {
			t.Fatalf("Pop() = %+v, Min() = %+v", e, min)
		}
		if e.Pid != pid {
			t.Fatalf("pop %d: got pid %d, want %d", i, e.Pid, pid)
		}
	}
	if a.Len() != 0 {
		t.Fatalf("Len() = %d after draining", a.Len())
	}
}
