/*
 * stf_test.go, part of gosieve.
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

package stf

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
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
			data[j] = float64(i) + float64(j)*0.123 - 1.5
		}
		m, err := v3.NewMatrix(data)
		require.NoError(Te, err)
		ret[i] = m
	}
	return ret
}

func TestRoundTrip(Te *testing.T) {
	dir := Te.TempDir()
	for _, name := range []string{"t.stf", "t.stl", "t.stz", "t.str"} {
		name = filepath.Join(dir, name)
		in := frames(Te, 5, 4)
		k, v := HeaderAtomicNumbers([]int{8, 1, 1, 6})
		W, err := NewWriter(name, 4, map[string]string{k: v, "run": "test"})
		require.NoError(Te, err)
		box := []float64{10, 0, 0, 0, 10, 0, 0, 0, 12.5}
		for i, f := range in {
			if i == 2 {
				require.NoError(Te, W.WNext(f, box))
				continue
			}
			require.NoError(Te, W.WNext(f))
		}
		assert.Equal(Te, 5, W.Frames())
		require.NoError(Te, W.Close())
		require.NoError(Te, W.Close(), "closing twice is harmless")

		R, header, err := New(name)
		require.NoError(Te, err, name)
		assert.Equal(Te, "2", header[PrecKey])
		assert.Equal(Te, "test", header["run"])
		Z, err := AtomicNumbers(header)
		require.NoError(Te, err)
		assert.Equal(Te, []int{8, 1, 1, 6}, Z)
		assert.Equal(Te, 4, R.Len())
		out := v3.Zeros(4)
		readbox := make([]float64, 9)
		for i := 0; ; i++ {
			err := R.Next(out, readbox)
			if err != nil {
				var lf sieve.LastFrameError
				require.True(Te, errors.As(err, &lf), "unexpected error %v", err)
				assert.Equal(Te, 5, i)
				break
			}
			for j := 0; j < 4; j++ {
				assert.InDeltaSlice(Te, in[i].Vec(j), out.Vec(j), 0.005+1e-9, "%s frame %d", name, i)
			}
			if i == 2 {
				assert.Equal(Te, box, readbox)
			} else {
				assert.Equal(Te, make([]float64, 9), readbox)
			}
		}
		assert.False(Te, R.Readable())
		assert.Error(Te, R.Next(nil))
	}
}

func TestPrecision(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "p.stf")
	W, err := NewWriter(name, 1, map[string]string{PrecKey: "4"})
	require.NoError(Te, err)
	m, err := v3.NewMatrix([]float64{1.23456, -0.00012, 7})
	require.NoError(Te, err)
	require.NoError(Te, W.WNext(m))
	require.NoError(Te, W.Close())
	R, header, err := New(name)
	require.NoError(Te, err)
	defer R.Close()
	assert.Equal(Te, "4", header[PrecKey])
	out := v3.Zeros(1)
	require.NoError(Te, R.Next(out))
	assert.InDeltaSlice(Te, []float64{1.2346, -0.0001, 7}, out.Vec(0), 1e-9)
}

func TestErrors(Te *testing.T) {
	dir := Te.TempDir()
	_, err := NewWriter(filepath.Join(dir, "a.stf"), 2, map[string]string{PrecKey: "x"})
	assert.Error(Te, err)
	for _, p := range []string{"0", "-1", "13", "20"} {
		_, err = NewWriter(filepath.Join(dir, "p.stf"), 2, map[string]string{PrecKey: p})
		assert.Error(Te, err, "precision %s", p)
	}
	W12, err := NewWriter(filepath.Join(dir, "p12.stf"), 1, map[string]string{PrecKey: strconv.Itoa(MaxPrec)})
	require.NoError(Te, err)
	big, err := v3.NewMatrix([]float64{1e8, 0, 0})
	require.NoError(Te, err)
	assert.Error(Te, W12.WNext(big), "1e8*1e12 doesn't fit in an int")
	ok, err := v3.NewMatrix([]float64{1.5, -2.25, 0})
	require.NoError(Te, err)
	require.NoError(Te, W12.WNext(ok))
	require.NoError(Te, W12.Close())
	R12, _, err := New(filepath.Join(dir, "p12.stf"))
	require.NoError(Te, err)
	c := v3.Zeros(1)
	require.NoError(Te, R12.Next(c))
	assert.Equal(Te, []float64{1.5, -2.25, 0}, c.Vec(0))
	var last sieve.LastFrameError
	assert.True(Te, errors.As(R12.Next(c), &last), "the rejected frame was not written")
	require.NoError(Te, R12.Close())
	_, err = NewWriter(filepath.Join(dir, "b.stf"), 0, nil)
	assert.Error(Te, err)
	_, err = NewWriter(filepath.Join(dir, "c.stf"), 2, map[string]string{"a=b": "c"})
	assert.Error(Te, err)
	_, err = os.Stat(filepath.Join(dir, "c.stf"))
	assert.True(Te, os.IsNotExist(err), "a failed writer should not leave a file")

	name := filepath.Join(dir, "d.stf")
	W, err := NewWriter(name, 2, nil)
	require.NoError(Te, err)
	assert.Error(Te, W.WNext(v3.Zeros(3)))
	assert.Error(Te, W.WNext(nil))
	require.NoError(Te, W.Close())
	assert.Error(Te, W.WNext(v3.Zeros(2)))

	R, header, err := New(name)
	require.NoError(Te, err)
	_, err = AtomicNumbers(header)
	assert.Error(Te, err)
	assert.Error(Te, R.Next(v3.Zeros(5)))
	R.Close()

	_, _, err = New(filepath.Join(dir, "missing.stf"))
	assert.Error(Te, err)
}
