/*
 * coords.go, part of gosieve.
 *
 *
 * Copyright 2026 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

package sieve

import (
	"fmt"
	"math"

	v3 "github.com/rmera/gosieve/v3"
)

// Coords is a batch of frames sharing the same atoms, in the same order.
// A Coords built from a single frame behaves as a batch of one
// frame, but remembers that it came from a single frame, so
// Criteria can return scalar results for it.
type Coords struct {
	frames []*v3.Matrix
	single bool
}

// Frame returns a Coords with the single frame f.
func Frame(f *v3.Matrix) *Coords {
	return &Coords{frames: []*v3.Matrix{f}, single: true}
}

// Batch returns a Coords with the given frames, in that order.
// The frames are not copied.
func Batch(frames ...*v3.Matrix) *Coords {
	return &Coords{frames: frames}
}

// NewCoords builds a Coords from row-major data and a shape, which can be
// (natoms, 3) for a single frame, or (nframes, natoms, 3) for a batch.
// The frames are views of data.
func NewCoords(data []float64, shape ...int) (*Coords, error) {
	var nframes, natoms int
	single := false
	switch len(shape) {
	case 2:
		nframes, natoms, single = 1, shape[0], true
	case 3:
		nframes, natoms = shape[0], shape[1]
	default:
		return nil, newError(ErrShapeMismatch, fmt.Sprintf("coordinates need 2 or 3 axes, got %d", len(shape)), "NewCoords")
	}
	if shape[len(shape)-1] != 3 {
		return nil, newError(ErrShapeMismatch, fmt.Sprintf("the last axis of the coordinates must be 3, got %d", shape[len(shape)-1]), "NewCoords")
	}
	if nframes <= 0 || natoms <= 0 {
		return nil, newError(ErrShapeMismatch, fmt.Sprintf("empty coordinates with shape %v", shape), "NewCoords")
	}
	if len(data) != nframes*natoms*3 {
		return nil, newError(ErrShapeMismatch, fmt.Sprintf("%d values can't have shape %v", len(data), shape), "NewCoords")
	}
	C := &Coords{frames: make([]*v3.Matrix, nframes), single: single}
	stride := natoms * 3
	for i := range C.frames {
		f, err := v3.NewMatrix(data[i*stride : (i+1)*stride : (i+1)*stride])
		if err != nil {
			return nil, newError(ErrShapeMismatch, err.Error(), "NewCoords")
		}
		C.frames[i] = f
	}
	return C, nil
}

// Len returns the number of frames.
func (C *Coords) Len() int {
	return len(C.frames)
}

// NAtoms returns the number of atoms per frame, or 0 if there are no frames.
func (C *Coords) NAtoms() int {
	if len(C.frames) == 0 || C.frames[0] == nil {
		return 0
	}
	return C.frames[0].NVecs()
}

// Single returns true if C was built from a single frame.
func (C *Coords) Single() bool {
	return C.single
}

// Frame returns the ith frame of C.
func (C *Coords) Frame(i int) *v3.Matrix {
	return C.frames[i]
}

// Frames returns the frames in C. The slice is a copy, but the frames
// themselves are not.
func (C *Coords) Frames() []*v3.Matrix {
	ret := make([]*v3.Matrix, len(C.frames))
	copy(ret, C.frames)
	return ret
}

// Shape returns the shape of C, as (natoms,3) for single-frame Coords
// and as (nframes,natoms,3) otherwise.
func (C *Coords) Shape() []int {
	if C.single {
		return []int{C.NAtoms(), 3}
	}
	return []int{len(C.frames), C.NAtoms(), 3}
}

// Flat returns a copy of the coordinates as a flat, row-major slice.
func (C *Coords) Flat() []float64 {
	n := C.NAtoms()
	ret := make([]float64, 0, len(C.frames)*n*3)
	for _, f := range C.frames {
		for i := 0; i < n; i++ {
			ret = append(ret, f.Vec(i)...)
		}
	}
	return ret
}

// batch checks that R is a well-formed batch of frames, with one atom for each
// element of Z, and only finite coordinates. It is the check shared by every descriptor and by Criteria.
func batch(Z []int, R *Coords) error {
	if R == nil || len(R.frames) == 0 {
		return newError(ErrShapeMismatch, "no frames given", "batch")
	}
	if len(Z) == 0 {
		return newError(ErrShapeMismatch, "no atomic numbers given", "batch")
	}
	for i, f := range R.frames {
		if f == nil {
			return newError(ErrShapeMismatch, fmt.Sprintf("frame %d is nil", i), "batch")
		}
		r, c := f.Dims()
		if c != 3 {
			return newError(ErrShapeMismatch, fmt.Sprintf("frame %d has %d columns, not 3", i, c), "batch")
		}
		if r != len(Z) {
			return newError(ErrShapeMismatch, fmt.Sprintf("%d atomic numbers, but frame %d has %d atoms", len(Z), i, r), "batch")
		}
		for j := 0; j < r; j++ {
			for _, v := range f.Vec(j) {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return newError(ErrInvalidArgument, fmt.Sprintf("frame %d: atom %d has a non-finite coordinate %v", i, j, v), "batch")
				}
			}
		}
	}
	return nil
}
