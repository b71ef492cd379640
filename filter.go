/*
 * filter.go, part of gosieve
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
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	v3 "github.com/rmera/gosieve/v3"
)

// DefaultBatch is the number of frames evaluated together by a Filter if no other value is given.
const DefaultBatch = 128

// FrameResult is the evaluation of all the criteria of a Filter on one frame.
type FrameResult struct {
	Index    int        //index of the frame in the trajectory, starting from 0
	Coords   *v3.Matrix //the frame. Only valid during the callback
	Values   []float64  //the descriptor value for each criteria, in the order of the Filter's criteria
	Accepted bool       //true if every criteria accepted the frame
}

// Stats counts the frames processed by a Filter.
type Stats struct {
	Read     int
	Accepted int
}

// Filter reads the frames of a trajectory and keeps those accepted by all
// of its criteria.
type Filter struct {
	Z        []int
	Criteria []*Criteria
	Args     []Args //call-time arguments for each criteria. Can be nil.
	Batch    int    //frames evaluated at once
	Center   bool   //if true, frames are written and passed to the callback with their center of mass at the origin
	Options  *Options
	Log      logr.Logger
}

// NewFilter returns a Filter for the atoms in Z with the given criteria and default settings.
func NewFilter(Z []int, criteria ...*Criteria) *Filter {
	return &Filter{Z: Z, Criteria: criteria, Batch: DefaultBatch, Log: logr.Discard()}
}

// Run reads frames from traj until the last one, and writes the accepted ones to out, in the order
// they were read. out can be nil, in which case the frames are only evaluated. If onFrame is not nil,
// it is called, in order, for every frame read, accepted or not.
// The context is checked between batches.
func (F *Filter) Run(ctx context.Context, traj Traj, out TrajWriter, onFrame func(FrameResult) error) (Stats, error) {
	var st Stats
	if len(F.Criteria) == 0 {
		return st, newError(ErrInvalidArgument, "no criteria given", "Filter.Run")
	}
	if F.Args != nil && len(F.Args) != len(F.Criteria) {
		return st, newError(ErrShapeMismatch, fmt.Sprintf("%d argument sets for %d criteria", len(F.Args), len(F.Criteria)), "Filter.Run")
	}
	if traj.Len() != len(F.Z) {
		return st, newError(ErrShapeMismatch, fmt.Sprintf("trajectory has %d atoms, but %d atomic numbers were given", traj.Len(), len(F.Z)), "Filter.Run")
	}
	if out != nil && out.Len() != len(F.Z) {
		return st, newError(ErrShapeMismatch, fmt.Sprintf("output takes %d atoms, but %d atomic numbers were given", out.Len(), len(F.Z)), "Filter.Run")
	}
	nbatch := F.Batch
	if nbatch <= 0 {
		nbatch = DefaultBatch
	}
	frames := make([]*v3.Matrix, nbatch)
	for i := range frames {
		frames[i] = v3.Zeros(len(F.Z))
	}
	values := make([][]float64, len(F.Criteria))
	log := F.Log
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	log.V(1).Info("starting filter", "atoms", len(F.Z), "criteria", len(F.Criteria), "batch", nbatch)
	for last := false; !last; {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		n := 0
		for ; n < nbatch; n++ {
			err := traj.Next(frames[n])
			if err == nil {
				continue
			}
			var lf LastFrameError
			if errors.As(err, &lf) {
				last = true
				break
			}
			return st, errDecorate(err, fmt.Sprintf("Filter.Run: frame %d", st.Read+n))
		}
		if n == 0 {
			break
		}
		R := Batch(frames[:n]...)
		accepted := make([]bool, n)
		for i := range accepted {
			accepted[i] = true
		}
		for j, C := range F.Criteria {
			var extra Args
			if F.Args != nil {
				extra = F.Args[j]
			}
			res, err := C.Accept(F.Z, R, extra)
			if err != nil {
				return st, errDecorate(err, fmt.Sprintf("Filter.Run: frames %d-%d", st.Read, st.Read+n-1))
			}
			values[j] = res.Values
			for i, a := range res.Accepted {
				accepted[i] = accepted[i] && a
			}
		}
		if F.Center {
			R, err := CenterStructures(F.Z, R, F.Options)
			if err != nil {
				return st, errDecorate(err, "Filter.Run")
			}
			copy(frames, R.frames)
		}
		nacc := 0
		for i := 0; i < n; i++ {
			if accepted[i] {
				nacc++
				if out != nil {
					if err := out.WNext(frames[i]); err != nil {
						return st, fmt.Errorf("writing frame %d: %w", st.Read+i, err)
					}
				}
			}
			if onFrame != nil {
				fv := make([]float64, len(values))
				for j := range values {
					fv[j] = values[j][i]
				}
				r := FrameResult{Index: st.Read + i, Coords: frames[i], Values: fv, Accepted: accepted[i]}
				if err := onFrame(r); err != nil {
					return st, fmt.Errorf("processing frame %d: %w", st.Read+i, err)
				}
			}
		}
		log.V(2).Info("batch done", "first", st.Read, "frames", n, "accepted", nacc)
		st.Read += n
		st.Accepted += nacc
		if F.Center {
			//the centered frames replaced the reading buffers.
			for i := 0; i < n; i++ {
				frames[i] = v3.Zeros(len(F.Z))
			}
		}
	}
	log.V(1).Info("filter finished", "read", st.Read, "accepted", st.Accepted)
	return st, nil
}
