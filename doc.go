/*
 * doc.go, part of gosieve.
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
 */

/*
Package sieve computes structural descriptors for molecular geometries and
decides, by comparing them with a cutoff, which structures to keep.

A structure is given by the atomic numbers of its atoms (Z) and one or more
frames of Cartesian coordinates (a Coords). Coords built with Frame come from a
single structure, and Coords built with Batch or NewCoords contain several frames
of the same atoms. All descriptors work on batches and return one value per frame.

	Descriptors

	CenterOfMass: The mass-weighted average position of the atoms.
	MaxAtomPairDist: The largest distance between two atoms of a frame.
	COMDistanceSum: The sum of the distances between the center of mass of each
	entity (e.g. each molecule of a cluster) and the center of mass of the structure.

A Criteria wraps a Descriptor (MaxPairDistance or EntityDistanceSum), some fixed
arguments for it and a cutoff. A frame is accepted if its descriptor value is strictly
smaller than the cutoff.

A Filter applies several Criteria to the frames read from a trajectory (an XYZ
file, or the stf format in the traj/stf package) and writes the accepted ones.

Errors returned by the package wrap one of the error kinds ErrUnknownElement, ErrShapeMismatch,
ErrDuplicateArgument, ErrEmptyEntityGroup or ErrInvalidArgument, which can be
checked with errors.Is.

Distances are in the units of the coordinates. Masses are in atomic mass units.
*/
package sieve
