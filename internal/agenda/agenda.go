// Copyright 2026 Christopher Felton
// Licensed under the MIT license. See license text in the LICENSE file.

// Package agenda implements the time-ordered wake-up queue of a simulation.
//
package agenda

import "container/heap"

// An Entry schedules the wake-up of a process at a given simulation time.
// Entries at equal times are ordered by insertion sequence so that the
// agenda is fully deterministic.
//
type Entry struct {
	Time int64
	Seq  uint64 // insertion order, breaks ties at equal times
	Pid  int    // index into the simulation's process table
	Gen  uint64 // process wake generation at scheduling time
}

// An Agenda is a min-heap of entries keyed by (Time, Seq). The zero value is
// an empty agenda ready for use.
//
type Agenda struct {
	h entryHeap
}

// Len returns the number of entries, including stale ones not yet popped.
//
func (a *Agenda) Len() int { return len(a.h) }

// Push adds an entry.
//
func (a *Agenda) Push(e Entry) { heap.Push(&a.h, e) }

// Min returns the earliest entry without removing it. The second return
// value is false if the agenda is empty.
//
func (a *Agenda) Min() (Entry, bool) {
	if len(a.h) == 0 {
		return Entry{}, false
	}
	return a.h[0], true
}

// Pop removes and returns the earliest entry. It panics on an empty agenda.
//
func (a *Agenda) Pop() Entry { return heap.Pop(&a.h).(Entry) }

type entryHeap []Entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	return h[i].Seq < h[j].Seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(Entry)) }

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}
