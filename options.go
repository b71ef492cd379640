/*
 * options.go, part of gosieve
 *
 * Copyright 2026 Raul Mera A. (raulpuntomeraatusachpuntocl)
 *
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU Lesser General Public License as published by
    the Free Software Foundation, either version 2.1 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU Lesser General Public License
    along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 *
*/

package sieve

import (
	"runtime"
	"sync"
)

// Options for the descriptor calculations.
type Options struct {
	cpus   int
	masses MassTable
}

// DefaultOptions returns an Options with the default options.
func DefaultOptions() *Options {
	ret := new(Options)
	ret.cpus = runtime.NumCPU()
	ret.masses = StandardMasses
	return ret
}

// Cpus returns the current value of the Cpus option (the maximum number of
// gorutines used to process the frames of a batch) and sets it, if
// a valid value is given
func (o *Options) Cpus(cpus ...int) int {
	ret := o.cpus
	if len(cpus) > 0 && cpus[0] > 0 {
		o.cpus = cpus[0]
	}
	return ret
}

// Masses returns the mass table in use, and sets it, if a non-nil one is given.
func (o *Options) Masses(table ...MassTable) MassTable {
	ret := o.masses
	if len(table) > 0 && table[0] != nil {
		o.masses = table[0]
	}
	return ret
}

// getOptions returns the first non-nil element of options, or
// the default options.
func getOptions(options []*Options) *Options {
	if len(options) > 0 && options[0] != nil {
		return options[0]
	}
	return DefaultOptions()
}

// perFrame calls f for each frame index in [0,nframes), using up to cpus
// goroutines, each of which takes a contiguous range of frames. f must only
// write to the per-frame positions of its outputs, so the order of the results is the
// order of the frames. If several frames fail, the error for the first of them is returned.
func perFrame(nframes, cpus int, f func(frame int) error) error {
	if cpus > nframes {
		cpus = nframes
	}
	if cpus <= 1 {
		for i := 0; i < nframes; i++ {
			if err := f(i); err != nil {
				return err
			}
		}
		return nil
	}
	errs := make([]error, cpus)
	chunk := (nframes + cpus - 1) / cpus
	var wg sync.WaitGroup
	for w := 0; w < cpus; w++ {
		start := w * chunk
		end := start + chunk
		if end > nframes {
			end = nframes
		}
		if start >= end {
			break
		}
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				if err := f(i); err != nil {
					errs[w] = err
					return
				}
			}
		}(w, start, end)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
