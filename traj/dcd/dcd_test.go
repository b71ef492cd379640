/*
 * dcd_test.go, part of gosieve.
 *
 * Copyright 2026 Raul Mera <rauldotmeraatusachdotcl>
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
 */

package dcd

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	sieve "github.com/rmera/gosieve"
	v3 "github.com/rmera/gosieve/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frames(Te *testing.T, n, natoms int) []*v3.Matrix {
	Te.Helper()
	ret := make([]*v3.Matrix, n)
	for i := range ret {
		data := make([]float64, natoms*3)
		for j := range data {
			data[j] = float64(i) + float64(j)*0.125 - 1.5
		}
		m, err := v3.NewMatrix(data)
		require.NoError(Te, err)
		ret[i] = m
	}
	return ret
}

func readAll(Te *testing.T, R *Reader, box []float64) []*v3.Matrix {
	Te.Helper()
	var ret []*v3.Matrix
	for {
		c := v3.Zeros(R.Len())
		err := R.Next(c, box)
		if err != nil {
			var last sieve.LastFrameError
			require.True(Te, errors.As(err, &last), err.Error())
			assert.False(Te, R.Readable())
			return ret
		}
		ret = append(ret, c)
	}
}

func TestRoundTrip(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "t.dcd")
	in := frames(Te, 4, 5)
	W, err := NewWriter(name, 5)
	require.NoError(Te, err)
	for _, f := range in {
		require.NoError(Te, W.WNext(f))
	}
	assert.Equal(Te, 4, W.Frames())
	require.NoError(Te, W.Close())
	require.NoError(Te, W.Close(), "closing twice is harmless")
	assert.Error(Te, W.WNext(in[0]))

	R, err := New(name)
	require.NoError(Te, err)
	defer R.Close()
	assert.Equal(Te, 5, R.Len())
	assert.Equal(Te, 4, R.Frames())
	out := readAll(Te, R, nil)
	require.Len(Te, out, len(in))
	for i := range in {
		//the values used are exact in single precision.
		assert.Equal(Te, in[i].RawMatrix().Data, out[i].RawMatrix().Data)
	}
	assert.Error(Te, R.Next(nil), "no more frames")
}

func TestDiscardFrames(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "t.dcd")
	in := frames(Te, 3, 2)
	W, err := NewWriter(name, 2)
	require.NoError(Te, err)
	for _, f := range in {
		require.NoError(Te, W.WNext(f))
	}
	require.NoError(Te, W.Close())
	R, err := New(name)
	require.NoError(Te, err)
	defer R.Close()
	require.NoError(Te, R.Next(nil))
	require.NoError(Te, R.Next(nil))
	c := v3.Zeros(2)
	require.NoError(Te, R.Next(c))
	assert.Equal(Te, in[2].RawMatrix().Data, c.RawMatrix().Data)
}

// rawDCD builds a CHARMM trajectory with unit cells and 4D coordinates, in the given byte order.
func rawDCD(Te *testing.T, order binary.ByteOrder, coords [][3][]float32, cell [6]float64) []byte {
	Te.Helper()
	b := new(bytes.Buffer)
	record := func(size int32, data any) {
		require.NoError(Te, binary.Write(b, order, size))
		require.NoError(Te, binary.Write(b, order, data))
		require.NoError(Te, binary.Write(b, order, size))
	}
	record(headerSize, &header{
		Magic:    [4]byte{'C', 'O', 'R', 'D'},
		NSet:     int32(len(coords)),
		UnitCell: 1,
		FourDim:  1,
		Version:  37,
	})
	record(4+2*titleLen, struct {
		N     int32
		Title [2 * titleLen]byte
	}{N: 2})
	natoms := len(coords[0][0])
	record(4, int32(natoms))
	for i, c := range coords {
		record(48, cell)
		for _, f := range c {
			record(int32(4*natoms), f)
		}
		//the last frame has no 4th dimension
		if i < len(coords)-1 {
			record(int32(4*natoms), make([]float32, natoms))
		}
	}
	return b.Bytes()
}

func TestCharmmCells(Te *testing.T) {
	coords := [][3][]float32{
		{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}},
		{{-1, -2, -3}, {-4, -5, -6}, {-7, -8, -9}},
	}
	for name, order := range map[string]binary.ByteOrder{"little": binary.LittleEndian, "big": binary.BigEndian} {
		for _, cell := range [][6]float64{
			{10, 90, 20, 90, 90, 30},
			{10, 0, 20, 0, 0, 30},
		} {
			path := filepath.Join(Te.TempDir(), name+".dcd")
			require.NoError(Te, os.WriteFile(path, rawDCD(Te, order, coords, cell), 0o644))
			R, err := New(path)
			require.NoError(Te, err, name)
			assert.Equal(Te, 3, R.Len())
			box := make([]float64, 9)
			out := readAll(Te, R, box)
			require.Len(Te, out, 2, name)
			assert.Equal(Te, []float64{1, 4, 7, 2, 5, 8, 3, 6, 9}, out[0].RawMatrix().Data)
			assert.Equal(Te, []float64{-1, -4, -7, -2, -5, -8, -3, -6, -9}, out[1].RawMatrix().Data)
			assert.InDeltaSlice(Te, []float64{10, 0, 0, 0, 20, 0, 0, 0, 30}, box, 1e-9, name)
			require.NoError(Te, R.Close())
		}
	}
}

// With 12 atoms, a cell record has the same size as a coordinate record.
func TestCharmmCells12Atoms(Te *testing.T) {
	var coords [][3][]float32
	for f := 0; f < 2; f++ {
		var c [3][]float32
		for k := range c {
			c[k] = make([]float32, 12)
			for i := range c[k] {
				c[k][i] = float32(100*f + 10*k + i)
			}
		}
		coords = append(coords, c)
	}
	path := filepath.Join(Te.TempDir(), "twelve.dcd")
	require.NoError(Te, os.WriteFile(path, rawDCD(Te, binary.LittleEndian, coords, [6]float64{10, 90, 20, 90, 90, 30}), 0o644))
	R, err := New(path)
	require.NoError(Te, err)
	defer R.Close()
	assert.Equal(Te, 12, R.Len())
	box := make([]float64, 9)
	out := readAll(Te, R, box)
	require.Len(Te, out, 2)
	for f, m := range out {
		for i := 0; i < 12; i++ {
			assert.Equal(Te, []float64{float64(100*f + i), float64(100*f + 10 + i), float64(100*f + 20 + i)}, m.Vec(i))
		}
	}
	assert.InDeltaSlice(Te, []float64{10, 0, 0, 0, 20, 0, 0, 0, 30}, box, 1e-9)
}

func TestCellVectors(Te *testing.T) {
	box := make([]float64, 9)
	//a rhombohedral cell, all angles 60 degrees.
	cellVectors([6]float64{2, 60, 2, 60, 60, 2}, box)
	a, b, c := box[0:3], box[3:6], box[6:9]
	for _, v := range [][]float64{a, b, c} {
		assert.InDelta(Te, 2.0, math.Sqrt(v[0]*v[0]+v[1]*v[1]+v[2]*v[2]), 1e-9)
	}
	dot := func(x, y []float64) float64 { return x[0]*y[0] + x[1]*y[1] + x[2]*y[2] }
	for _, p := range [][2][]float64{{a, b}, {a, c}, {b, c}} {
		assert.InDelta(Te, 2.0, dot(p[0], p[1]), 1e-9, "cos(60)*2*2")
	}
}

func TestErrors(Te *testing.T) {
	dir := Te.TempDir()
	_, err := New(filepath.Join(dir, "missing.dcd"))
	assert.Error(Te, err)

	junk := filepath.Join(dir, "junk.dcd")
	require.NoError(Te, os.WriteFile(junk, []byte("this is not a trajectory at all, not even close"), 0o644))
	_, err = New(junk)
	var terr sieve.TrajError
	require.True(Te, errors.As(err, &terr))
	assert.Equal(Te, "dcd", terr.Format())
	assert.Equal(Te, junk, terr.FileName())

	_, err = NewWriter(filepath.Join(dir, "empty.dcd"), 0)
	assert.Error(Te, err)

	name := filepath.Join(dir, "t.dcd")
	W, err := NewWriter(name, 3)
	require.NoError(Te, err)
	assert.Error(Te, W.WNext(nil))
	assert.Error(Te, W.WNext(v3.Zeros(2)))
	require.NoError(Te, W.WNext(v3.Zeros(3)))
	require.NoError(Te, W.Close())

	R, err := New(name)
	require.NoError(Te, err)
	assert.Error(Te, R.Next(v3.Zeros(4)), "wrong number of atoms")
	require.NoError(Te, R.Close())

	//a truncated frame is an error, not the end of the trajectory.
	data, err := os.ReadFile(name)
	require.NoError(Te, err)
	truncated := filepath.Join(dir, "truncated.dcd")
	require.NoError(Te, os.WriteFile(truncated, data[:len(data)-6], 0o644))
	R, err = New(truncated)
	require.NoError(Te, err)
	defer R.Close()
	err = R.Next(nil)
	require.Error(Te, err)
	var last sieve.LastFrameError
	assert.False(Te, errors.As(err, &last))
}
