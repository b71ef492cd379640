/*
 * criteria.go, part of gosieve.
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
	"sort"
	"strings"

	v3 "github.com/rmera/gosieve/v3"
)

// Args are keyword arguments for a Descriptor, in addition to the atomic
// numbers and the coordinates.
type Args map[string]any

// Param describes one keyword argument accepted by a Descriptor.
type Param struct {
	Name     string
	Required bool
}

// Descriptor is a scalar, per-frame, structural descriptor that can be used in a Criteria.
type Descriptor interface {
	//The name of the descriptor, as used in configuration files.
	Name() string

	//The keyword arguments accepted by Compute
	Params() []Param

	//Compute returns one value per frame in R. args has already been checked against Params.
	Compute(Z []int, R *Coords, args Args, o *Options) ([]float64, error)
}

// Names for the descriptors implemented in this package.
const (
	MaxAtomPairDistName = "max_atom_pair_dist"
	COMDistanceSumName  = "com_distance_sum"
	EntityIDsArg        = "entity_ids"
)

// MaxPairDistance is the Descriptor for MaxAtomPairDist.
type MaxPairDistance struct{}

func (MaxPairDistance) Name() string { return MaxAtomPairDistName }

func (MaxPairDistance) Params() []Param { return nil }

func (MaxPairDistance) Compute(Z []int, R *Coords, _ Args, o *Options) ([]float64, error) {
	return MaxAtomPairDist(Z, R, o)
}

// EntityDistanceSum is the Descriptor for COMDistanceSum. It requires
// the "entity_ids" argument, as a []int.
type EntityDistanceSum struct{}

func (EntityDistanceSum) Name() string { return COMDistanceSumName }

func (EntityDistanceSum) Params() []Param {
	return []Param{{Name: EntityIDsArg, Required: true}}
}

func (EntityDistanceSum) Compute(Z []int, R *Coords, args Args, o *Options) ([]float64, error) {
	ids, ok := args[EntityIDsArg].([]int)
	if !ok {
		return nil, newError(ErrInvalidArgument, fmt.Sprintf("%s must be a []int, not %T", EntityIDsArg, args[EntityIDsArg]), "EntityDistanceSum.Compute")
	}
	return COMDistanceSum(Z, R, ids, o)
}

var descriptors = map[string]Descriptor{
	MaxAtomPairDistName: MaxPairDistance{},
	COMDistanceSumName:  EntityDistanceSum{},
}

// DescriptorByName returns the descriptor with the given name.
func DescriptorByName(name string) (Descriptor, error) {
	d, ok := descriptors[name]
	if !ok {
		return nil, newError(ErrInvalidArgument, fmt.Sprintf("unknown descriptor %q (available: %s)", name, strings.Join(DescriptorNames(), ", ")), "DescriptorByName")
	}
	return d, nil
}

// DescriptorNames returns the names of the available descriptors, sorted.
func DescriptorNames() []string {
	ret := make([]string, 0, len(descriptors))
	for k := range descriptors {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// Criteria accepts or rejects structures depending on whether a descriptor
// is below a cutoff. A Criteria is not modified after creation, and can be
// used concurrently.
type Criteria struct {
	desc   Descriptor
	fixed  Args
	cutoff float64
	opts   Options
}

// NewCriteria returns a Criteria for the descriptor d, which will always be called with
// the arguments in fixed (which can be nil), and the given cutoff.
// The fixed arguments are copied (shallowly).
func NewCriteria(d Descriptor, fixed Args, cutoff float64, options ...*Options) (*Criteria, error) {
	if d == nil {
		return nil, newError(ErrInvalidArgument, "nil descriptor", "NewCriteria")
	}
	if math.IsNaN(cutoff) {
		return nil, newError(ErrInvalidArgument, "the cutoff can't be NaN", "NewCriteria")
	}
	C := &Criteria{desc: d, cutoff: cutoff, fixed: make(Args, len(fixed))}
	for k, v := range fixed {
		if !hasParam(d, k) {
			return nil, newError(ErrInvalidArgument, fmt.Sprintf("descriptor %s takes no argument %q", d.Name(), k), "NewCriteria")
		}
		C.fixed[k] = v
	}
	C.opts = *getOptions(options)
	return C, nil
}

// Descriptor returns the descriptor used by C.
func (C *Criteria) Descriptor() Descriptor { return C.desc }

// Cutoff returns the cutoff of C.
func (C *Criteria) Cutoff() float64 { return C.cutoff }

// Result is the outcome of evaluating a Criteria on a set of frames.
type Result struct {
	Accepted []bool    //one per frame, in the order of the frames
	Values   []float64 //the descriptor value for each frame
	Single   bool      //true if the coordinates were a single frame
}

// Scalar returns the decision and descriptor value for the first frame. It is meant for
// results where Single is true. Panics if the result is empty.
func (r Result) Scalar() (bool, float64) {
	return r.Accepted[0], r.Values[0]
}

// Accept evaluates the descriptor on each frame in R and accepts the frames for which it
// is strictly smaller than the cutoff. extra contains further arguments for the descriptor,
// and can be nil. Passing an argument that was already fixed in the Criteria is an error.
// Either all frames are evaluated or an error is returned.
func (C *Criteria) Accept(Z []int, R *Coords, extra Args) (Result, error) {
	var ret Result
	if err := batch(Z, R); err != nil {
		return ret, errDecorate(err, "Criteria.Accept")
	}
	args, err := C.args(extra)
	if err != nil {
		return ret, errDecorate(err, "Criteria.Accept")
	}
	opts := C.opts
	values, err := C.desc.Compute(Z, R, args, &opts)
	if err != nil {
		return ret, errDecorate(err, "Criteria.Accept")
	}
	if len(values) != R.Len() {
		return ret, newError(ErrShapeMismatch, fmt.Sprintf("descriptor %s returned %d values for %d frames", C.desc.Name(), len(values), R.Len()), "Criteria.Accept")
	}
	ret.Values = values
	ret.Accepted = make([]bool, len(values))
	for i, v := range values {
		ret.Accepted[i] = v < C.cutoff
	}
	ret.Single = R.Single()
	return ret, nil
}

// AcceptFrame is like Accept, for one frame. It returns whether the frame
// is accepted, and the value of the descriptor.
func (C *Criteria) AcceptFrame(Z []int, frame *v3.Matrix, extra Args) (bool, float64, error) {
	r, err := C.Accept(Z, Frame(frame), extra)
	if err != nil {
		return false, 0, errDecorate(err, "Criteria.AcceptFrame")
	}
	acc, val := r.Scalar()
	return acc, val, nil
}

// args merges the fixed and extra arguments, and checks them against the descriptor's
// parameters.
func (C *Criteria) args(extra Args) (Args, error) {
	args := make(Args, len(C.fixed)+len(extra))
	for k, v := range C.fixed {
		args[k] = v
	}
	for k, v := range extra {
		if _, ok := C.fixed[k]; ok {
			return nil, newError(ErrDuplicateArgument, fmt.Sprintf("argument %q is already fixed in the %s criteria", k, C.desc.Name()), "Criteria.args")
		}
		if !hasParam(C.desc, k) {
			return nil, newError(ErrInvalidArgument, fmt.Sprintf("descriptor %s takes no argument %q", C.desc.Name(), k), "Criteria.args")
		}
		args[k] = v
	}
	for _, p := range C.desc.Params() {
		if _, ok := args[p.Name]; p.Required && !ok {
			return nil, newError(ErrInvalidArgument, fmt.Sprintf("descriptor %s requires argument %q", C.desc.Name(), p.Name), "Criteria.args")
		}
	}
	return args, nil
}

func hasParam(d Descriptor, name string) bool {
	for _, p := range d.Params() {
		if p.Name == name {
			return true
		}
	}
	return false
}
