// Copyright 2026 Christopher Felton
// Licensed under the MIT license. See license text in the LICENSE file.

package myhdl

// An Instance is a node of the model hierarchy: either a single leaf
// *Process or an ordered group of instances built with Group. Build resolves
// the hierarchy once into a flat process table; registration order is the
// depth-first, left-to-right order of the hierarchy and fixes the stable
// resumption order among concurrently triggered processes.
//
type Instance interface {
	flatten(dst []*Process) []*Process
}

func (p *Process) flatten(dst []*Process) []*Process {
	return append(dst, p)
}

type group []Instance

// Group collects instances into a single composite instance.
//
func Group(instances ...Instance) Instance {
	return group(instances)
}

func (g group) flatten(dst []*Process) []*Process {
	for _, in := range g {
		if in == nil {
			// caught by Build's nil check
			dst = append(dst, nil)
			continue
		}
		dst = in.flatten(dst)
	}
	return dst
}
