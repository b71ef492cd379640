/*
 * coords_test.go, part of gosieve.
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

package sieve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoords(Te *testing.T) {
	data := []float64{0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2}
	single, err := NewCoords(data[:6], 2, 3)
	require.NoError(Te, err)
	assert.True(Te, single.Single())
	assert.Equal(Te, []int{2, 3}, single.Shape())
	assert.Equal(Te, 1, single.Len())

	b, err := NewCoords(data, 2, 2, 3)
	require.NoError(Te, err)
	assert.False(Te, b.Single())
	assert.Equal(Te, []int{2, 2, 3}, b.Shape())
	assert.Equal(Te, 2, b.NAtoms())
	assert.Equal(Te, []float64{2, 2, 2}, b.Frame(1).Vec(1))
	assert.Equal(Te, data, b.Flat())

	//the frames are views of the data
	data[0] = 9
	assert.Equal(Te, 9.0, b.Frame(0).At(0, 0))

	for _, shape := range [][]int{{12}, {4, 3, 1, 1}, {2, 6}, {2, 2, 4}, {0, 3}, {3, 2, 3}} {
		_, err := NewCoords(data, shape...)
		assert.ErrorIs(Te, err, ErrShapeMismatch, "shape %v", shape)
	}
}

func TestBatchCheck(Te *testing.T) {
	f := mustFrame(Te, 0, 0, 0, 1, 1, 1)
	assert.NoError(Te, batch([]int{1, 1}, Frame(f)))
	assert.NoError(Te, batch([]int{1, 1}, Batch(f, f.Clone())))
	assert.ErrorIs(Te, batch([]int{1, 1}, nil), ErrShapeMismatch)
	assert.ErrorIs(Te, batch([]int{1, 1}, Batch()), ErrShapeMismatch)
	assert.ErrorIs(Te, batch(nil, Frame(f)), ErrShapeMismatch)
	assert.ErrorIs(Te, batch([]int{1, 1}, Batch(f, nil)), ErrShapeMismatch)
	assert.ErrorIs(Te, batch([]int{1}, Frame(f)), ErrShapeMismatch)
	g := mustFrame(Te, 0, 0, 0)
	assert.ErrorIs(Te, batch([]int{1, 1}, Batch(f, g)), ErrShapeMismatch, "frames with different numbers of atoms")
}

func TestFramesCopy(Te *testing.T) {
	f := mustFrame(Te, 0, 0, 0)
	C := Batch(f)
	fr := C.Frames()
	fr[0] = nil
	assert.NotNil(Te, C.Frame(0))
}
