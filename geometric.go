/*
 * geometric.go, part of gosieve.
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

	v3 "github.com/rmera/gosieve/v3"
	"gonum.org/v1/gonum/floats"
)

// CenterOfMass returns the center of mass of each frame in R, as the
// vectors of a matrix with one vector per frame. Z contains the atomic numbers of the atoms.
func CenterOfMass(Z []int, R *Coords, options ...*Options) (*v3.Matrix, error) {
	if err := batch(Z, R); err != nil {
		return nil, errDecorate(err, "CenterOfMass")
	}
	o := getOptions(options)
	mass, err := masses(Z, o.Masses())
	if err != nil {
		return nil, errDecorate(err, "CenterOfMass")
	}
	ret := v3.Zeros(R.Len())
	err = perFrame(R.Len(), o.Cpus(), func(i int) error {
		centerOfMass(R.Frame(i), mass, ret.Vec(i))
		return nil
	})
	return ret, err
}

// centerOfMass puts in dst the average of the vectors in coord, weighted by mass.
func centerOfMass(coord *v3.Matrix, mass []float64, dst []float64) {
	dst[0], dst[1], dst[2] = 0, 0, 0
	for i, m := range mass {
		floats.AddScaled(dst, m, coord.Vec(i))
	}
	total := floats.Sum(mass)
	for i := range dst {
		dst[i] /= total
	}
}

// CenterStructures returns a new Coords where each frame of R has been
// translated so its center of mass lies at the origin. R is not modified.
func CenterStructures(Z []int, R *Coords, options ...*Options) (*Coords, error) {
	com, err := CenterOfMass(Z, R, options...)
	if err != nil {
		return nil, errDecorate(err, "CenterStructures")
	}
	ret := &Coords{frames: make([]*v3.Matrix, R.Len()), single: R.single}
	for i, f := range R.frames {
		c := f.Clone()
		c.SubVec(c, com.VecView(i))
		ret.frames[i] = c
	}
	return ret, nil
}

// MaxAtomPairDist returns, for each frame in R, the largest distance between any 2 atoms
// in the frame. For a frame with only one atom, the distance is 0.
func MaxAtomPairDist(Z []int, R *Coords, options ...*Options) ([]float64, error) {
	if err := batch(Z, R); err != nil {
		return nil, errDecorate(err, "MaxAtomPairDist")
	}
	o := getOptions(options)
	ret := make([]float64, R.Len())
	err := perFrame(R.Len(), o.Cpus(), func(i int) error {
		ret[i] = maxPairDist(R.Frame(i))
		return nil
	})
	return ret, err
}

// maxPairDist goes through all the i<j pairs of atoms
// without building the distance matrix.
func maxPairDist(coord *v3.Matrix) float64 {
	n := coord.NVecs()
	var max2 float64
	for i := 0; i < n; i++ {
		ri := coord.Vec(i)
		for j := i + 1; j < n; j++ {
			rj := coord.Vec(j)
			dx := ri[0] - rj[0]
			dy := ri[1] - rj[1]
			dz := ri[2] - rj[2]
			if d2 := dx*dx + dy*dy + dz*dz; d2 > max2 {
				max2 = d2
			}
		}
	}
	return math.Sqrt(max2)
}

// COMDistanceSum returns, for each frame in R, the sum over all entities of the distance
// between the center of mass of the entity and the center of mass of the whole structure:
//
//	L = Σ_i ‖CM_i − CM‖
//
// entityIDs assigns each atom to an entity (e.g. a molecule in a cluster). It must
// have one element per atom, but the atoms of an entity don't need to be contiguous.
// For example, a water and a methanol molecule could be [0, 0, 0, 1, 1, 1, 1, 1, 1].
func COMDistanceSum(Z []int, R *Coords, entityIDs []int, options ...*Options) ([]float64, error) {
	if err := batch(Z, R); err != nil {
		return nil, errDecorate(err, "COMDistanceSum")
	}
	if len(entityIDs) != len(Z) {
		return nil, newError(ErrShapeMismatch, fmt.Sprintf("%d entity ids for %d atoms", len(entityIDs), len(Z)), "COMDistanceSum")
	}
	o := getOptions(options)
	mass, err := masses(Z, o.Masses())
	if err != nil {
		return nil, errDecorate(err, "COMDistanceSum")
	}
	groups, err := entityGroups(entityIDs, nil, mass)
	if err != nil {
		return nil, errDecorate(err, "COMDistanceSum")
	}
	ret := make([]float64, R.Len())
	err = perFrame(R.Len(), o.Cpus(), func(i int) error {
		frame := R.Frame(i)
		var total, ent [3]float64
		centerOfMass(frame, mass, total[:])
		for _, g := range groups {
			g.center(frame, ent[:])
			ret[i] += floats.Distance(ent[:], total[:], 2)
		}
		return nil
	})
	return ret, err
}

// EntityCenters returns, for each frame in R, a matrix with the centers of mass of the entities
// with the given ids, in the order given. If ids is nil, all the entities in entityIDs are used,
// in ascending order. Requesting an id that no atom has is an error.
func EntityCenters(Z []int, R *Coords, entityIDs, ids []int, options ...*Options) ([]*v3.Matrix, error) {
	if err := batch(Z, R); err != nil {
		return nil, errDecorate(err, "EntityCenters")
	}
	if len(entityIDs) != len(Z) {
		return nil, newError(ErrShapeMismatch, fmt.Sprintf("%d entity ids for %d atoms", len(entityIDs), len(Z)), "EntityCenters")
	}
	o := getOptions(options)
	mass, err := masses(Z, o.Masses())
	if err != nil {
		return nil, errDecorate(err, "EntityCenters")
	}
	groups, err := entityGroups(entityIDs, ids, mass)
	if err != nil {
		return nil, errDecorate(err, "EntityCenters")
	}
	ret := make([]*v3.Matrix, R.Len())
	err = perFrame(R.Len(), o.Cpus(), func(i int) error {
		ret[i] = v3.Zeros(len(groups))
		for j, g := range groups {
			g.center(R.Frame(i), ret[i].Vec(j))
		}
		return nil
	})
	return ret, err
}

// entity is a group of atoms, with their masses.
type entity struct {
	id     int
	atoms  []int
	masses []float64
}

// center puts in dst the center of mass of the atoms of E in frame.
func (E *entity) center(frame *v3.Matrix, dst []float64) {
	sub := v3.Zeros(len(E.atoms))
	sub.SomeVecs(frame, E.atoms)
	centerOfMass(sub, E.masses, dst)
}

// entityGroups groups the atoms by entity id. If ids is nil the entities are
// returned sorted by id, so sums over them are always carried out in the same order.
// Otherwise, the entities are returned in the order of ids.
func entityGroups(entityIDs, ids []int, mass []float64) ([]*entity, error) {
	byID := make(map[int]*entity)
	for i, id := range entityIDs {
		e, ok := byID[id]
		if !ok {
			e = &entity{id: id}
			byID[id] = e
		}
		e.atoms = append(e.atoms, i)
		e.masses = append(e.masses, mass[i])
	}
	if ids == nil {
		ids = make([]int, 0, len(byID))
		for id := range byID {
			ids = append(ids, id)
		}
		sort.Ints(ids)
	}
	ret := make([]*entity, 0, len(ids))
	for _, id := range ids {
		e, ok := byID[id]
		if !ok {
			return nil, newError(ErrEmptyEntityGroup, fmt.Sprintf("no atom belongs to entity %d", id), "entityGroups")
		}
		ret = append(ret, e)
	}
	return ret, nil
}
