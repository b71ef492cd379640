/*
 * sieveplot_test.go, part of gosieve
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

package sieveplot

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogram(Te *testing.T) {
	dir := Te.TempDir()
	values := []float64{1.2, 3.4, 2.2, 5.5, 4.1, 3.3, 2.9, 6.0, 1.0}
	for _, name := range []string{"h.png", "h.svg"} {
		name = filepath.Join(dir, name)
		require.NoError(Te, Histogram(values, 3.5, 10, "Max pair distance", "d (A)", name))
		st, err := os.Stat(name)
		require.NoError(Te, err)
		assert.Greater(Te, st.Size(), int64(0))
	}
	//all values equal, and no cutoff
	require.NoError(Te, Histogram([]float64{2, 2, 2}, math.Inf(1), 5, "", "", filepath.Join(dir, "flat.png")))
	assert.Error(Te, Histogram(nil, 1, 10, "", "", filepath.Join(dir, "x.png")))
	assert.Error(Te, Histogram(values, 1, 0, "", "", filepath.Join(dir, "x.png")))
}

func TestTrace(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "t.png")
	values := [][]float64{{1, 2, 3, 4}, {4, 3, 2, 1}}
	require.NoError(Te, Trace(values, []float64{2.5, 3.5}, []string{"a", "b"}, "trace", name))
	_, err := os.Stat(name)
	assert.NoError(Te, err)
	assert.Error(Te, Trace(values, []float64{1}, []string{"a", "b"}, "", name))
}

func TestColors(Te *testing.T) {
	r, g, b := iHVS2RGB(0, 1, 1)
	assert.Equal(Te, [3]uint8{255, 0, 0}, [3]uint8{r, g, b})
	r, g, b = iHVS2RGB(120, 1, 1)
	assert.Equal(Te, [3]uint8{0, 255, 0}, [3]uint8{r, g, b})
	r1, g1, b1 := colors(0, 3)
	r2, g2, b2 := colors(2, 3)
	assert.NotEqual(Te, [3]uint8{r1, g1, b1}, [3]uint8{r2, g2, b2})
}
