/*
 * atomicdata_test.go, part of gosieve.
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

func TestMasses(Te *testing.T) {
	m, err := Mass(1)
	require.NoError(Te, err)
	assert.InDelta(Te, 1.008, m, 1e-6)
	m, err = Mass(86)
	require.NoError(Te, err)
	assert.InDelta(Te, 222, m, 1e-6)
	for _, z := range []int{-1, 0, 87} {
		_, err = Mass(z)
		assert.ErrorIs(Te, err, ErrUnknownElement, "Z=%d", z)
	}
	for z := 2; z < len(elements); z++ {
		assert.Greater(Te, elements[z].mass, elements[1].mass, "Z=%d", z)
	}

	ms, err := masses([]int{8, 1, 1}, nil)
	require.NoError(Te, err)
	assert.InDeltaSlice(Te, []float64{15.999, 1.008, 1.008}, ms, 1e-9)
	_, err = masses([]int{8, 1, 300}, StandardMasses)
	assert.ErrorIs(Te, err, ErrUnknownElement)
}

func TestSymbols(Te *testing.T) {
	for _, tc := range []struct {
		symbol string
		z      int
	}{{"H", 1}, {"c", 6}, {"CL", 17}, {" Fe ", 26}, {"Rn", 86}} {
		z, err := AtomicNumber(tc.symbol)
		require.NoError(Te, err)
		assert.Equal(Te, tc.z, z)
	}
	_, err := AtomicNumber("Xx")
	assert.ErrorIs(Te, err, ErrUnknownElement)
	s, err := Symbol(8)
	require.NoError(Te, err)
	assert.Equal(Te, "O", s)
	_, err = Symbol(0)
	assert.ErrorIs(Te, err, ErrUnknownElement)
}

func TestMapMasses(Te *testing.T) {
	M := MapMasses{1: 2.014}
	m, err := M.Mass(1)
	require.NoError(Te, err)
	assert.Equal(Te, 2.014, m)
	_, err = M.Mass(6)
	assert.ErrorIs(Te, err, ErrUnknownElement)
}
