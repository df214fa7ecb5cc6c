/*
Package myhdl provides a discrete-event simulation kernel with deterministic
signal communication, in the spirit of VHDL and Verilog simulators.

A model is a set of concurrently running processes communicating through
shared signals. Concurrency is simulated, not executed: exactly one process
runs at a time and suspends itself on explicit wait conditions (a delay, a
signal edge, a value change, or any combination). Signal assignment is
non-blocking: a process requests a next value, and the scheduler commits all
requests between delta cycles, so that every process evaluated at a given
instant observes the same committed state regardless of execution order.

The simlib package provides reusable model behaviors (clocks, stimuli,
probes) built on this API, and simtest provides helpers for testing models.

*/
package myhdl
