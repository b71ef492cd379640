/*
 * files_test.go, part of gosieve.
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
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	v3 "github.com/rmera/gosieve/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waters = `3
first water
O   0.000  0.000  0.000
H   0.757  0.586  0.000
H  -0.757  0.586  0.000

3
second water
8   0.000  0.000  1.000
1   0.757  0.586  1.000
1  -0.757  0.586  1.000
`

func TestReadXYZ(Te *testing.T) {
	Z, R, comments, err := ReadXYZ(strings.NewReader(waters))
	require.NoError(Te, err)
	assert.Equal(Te, []int{8, 1, 1}, Z)
	assert.Equal(Te, 2, R.Len())
	assert.False(Te, R.Single())
	assert.Equal(Te, []string{"first water", "second water"}, comments)
	assert.Equal(Te, []float64{-0.757, 0.586, 1.0}, R.Frame(1).Vec(2))
}

func TestXYZRoundTrip(Te *testing.T) {
	Z, R, comments, err := ReadXYZ(strings.NewReader(waters))
	require.NoError(Te, err)
	var buf bytes.Buffer
	require.NoError(Te, WriteXYZ(&buf, Z, R, comments, 6))
	Z2, R2, comments2, err := ReadXYZ(&buf)
	require.NoError(Te, err)
	assert.Equal(Te, Z, Z2)
	assert.Equal(Te, comments, comments2)
	assert.InDeltaSlice(Te, R.Flat(), R2.Flat(), 1e-9)
}

func TestXYZReaderFile(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "w.xyz")
	require.NoError(Te, os.WriteFile(name, []byte(waters), 0o644))
	X, err := XYZFileRead(name)
	require.NoError(Te, err)
	assert.Equal(Te, 3, X.Len())
	n := 0
	for {
		err := X.Next(nil)
		if err != nil {
			var lf LastFrameError
			require.True(Te, errors.As(err, &lf), "unexpected error %v", err)
			assert.Equal(Te, name, lf.FileName())
			break
		}
		n++
	}
	assert.Equal(Te, 2, n)
	assert.False(Te, X.Readable())
	assert.Error(Te, X.Next(nil))
}

func TestXYZErrors(Te *testing.T) {
	for name, data := range map[string]string{
		"empty":     "",
		"no number": "water\n",
		"short":     "3\ncomment\nO 0 0 0\nH 1 0 0\n",
		"element":   "1\n\nQq 0 0 0\n",
		"coord":     "1\n\nH 0 x 0\n",
	} {
		_, _, _, err := ReadXYZ(strings.NewReader(data))
		assert.Error(Te, err, name)
	}
	_, _, _, err := ReadXYZ(strings.NewReader("2\n\nH 0 0 0\nH 0 0 1\n1\n\nH 0 0 0\n"))
	assert.ErrorIs(Te, err, ErrShapeMismatch)
	_, _, _, err = ReadXYZ(strings.NewReader("2\n\nH 0 0 0\nH 0 0 1\n2\n\nH 0 0 0\nO 0 0 1\n"))
	assert.Error(Te, err, "elements can't change between frames")
}

func TestXYZWriter(Te *testing.T) {
	var buf bytes.Buffer
	_, err := NewXYZWriter(&buf, []int{1, 0}, 3)
	assert.ErrorIs(Te, err, ErrUnknownElement)
	W, err := NewXYZWriter(&buf, []int{1, 1}, 3)
	require.NoError(Te, err)
	assert.ErrorIs(Te, W.WNext(v3.Zeros(3)), ErrShapeMismatch)
	require.NoError(Te, W.WNext(mustFrame(Te, 0, 0, 0, 0, 0, 0.74)))
	assert.Equal(Te, "2\n\nH   0.000  0.000  0.000\nH   0.000  0.000  0.740\n", buf.String())
}
