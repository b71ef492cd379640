/*
 * sieveplot.go, part of gosieve
 *
 * Copyright 2026 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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

// Package sieveplot draws the distribution of the descriptor values computed
// while filtering structures, together with the cutoffs used.
package sieveplot

import (
	"fmt"
	"image/color"
	"math"

	"github.com/rmera/gosieve/histo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	acceptedColor = color.RGBA{R: 40, G: 160, B: 60, A: 255}
	rejectedColor = color.RGBA{R: 200, G: 50, B: 40, A: 255}
)

func basicPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

// Histogram plots a histogram of values with the given number of bins, with the values
// below the cutoff (the accepted ones) and the rest in different colors, and a vertical line at the cutoff.
// The format is given by the extension of filename (png, svg, pdf, eps...).
func Histogram(values []float64, cutoff float64, bins int, title, xlabel, filename string) error {
	if len(values) == 0 {
		return fmt.Errorf("goSieve/sieveplot.Histogram: no values to plot")
	}
	if bins < 1 {
		return fmt.Errorf("goSieve/sieveplot.Histogram: invalid number of bins %d", bins)
	}
	min, max := floats.Min(values), floats.Max(values)
	if !math.IsInf(cutoff, 0) {
		min = math.Min(min, cutoff)
		max = math.Max(max, cutoff)
	}
	if max == min {
		min -= 0.5
		max += 0.5
	}
	//the last divider is excluded by the histogram, so the range is widened a bit.
	max = math.Nextafter(max, math.Inf(1))
	div := histo.Dividers(min, max, bins)
	acc := histo.NewData(div, nil)
	rej := histo.NewData(div, nil)
	for _, v := range values {
		if v < cutoff {
			acc.AddData(v)
		} else {
			rej.AddData(v)
		}
	}
	p := basicPlot(title, xlabel, "Frames")
	ha := histogram(acc, acceptedColor)
	hr := histogram(rej, rejectedColor)
	p.Add(ha, hr)
	p.Legend.Add(fmt.Sprintf("accepted (%d)", acc.Total()), ha)
	p.Legend.Add(fmt.Sprintf("rejected (%d)", rej.Total()), hr)
	if !math.IsInf(cutoff, 0) {
		top := floats.Max(acc.View())
		top = math.Max(top, floats.Max(rej.View()))
		l, err := plotter.NewLine(plotter.XYs{{X: cutoff, Y: 0}, {X: cutoff, Y: top * 1.05}})
		if err != nil {
			return err
		}
		l.LineStyle.Width = vg.Points(1.5)
		l.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(l)
		p.Legend.Add(fmt.Sprintf("cutoff %.3g", cutoff), l)
	}
	return p.Save(5*vg.Inch, 4*vg.Inch, filename)
}

// histogram turns a histo.Data into a plotter.Histogram.
func histogram(D *histo.Data, c color.Color) *plotter.Histogram {
	div := D.CopyDividers()
	h := &plotter.Histogram{
		Bins:      make([]plotter.HistogramBin, len(div)-1),
		Width:     div[len(div)-1] - div[0],
		FillColor: c,
	}
	h.LineStyle = plotter.DefaultLineStyle
	for i, w := range D.View() {
		h.Bins[i] = plotter.HistogramBin{Min: div[i], Max: div[i+1], Weight: w}
	}
	return h
}

// Trace plots the descriptor value of each frame against the frame index, for one or more
// descriptors, each with its name and cutoff. Frames rejected by a descriptor are drawn
// with a different glyph. values, cutoffs and names must have the same length.
func Trace(values [][]float64, cutoffs []float64, names []string, title, filename string) error {
	if len(values) == 0 || len(cutoffs) != len(values) || len(names) != len(values) {
		return fmt.Errorf("goSieve/sieveplot.Trace: %d series, %d cutoffs and %d names given", len(values), len(cutoffs), len(names))
	}
	p := basicPlot(title, "Frame", "Value")
	for key, val := range values {
		r, g, b := colors(key, len(values))
		col := color.RGBA{R: r, G: g, B: b, A: 255}
		var acc, rej plotter.XYs
		for i, v := range val {
			if v < cutoffs[key] {
				acc = append(acc, plotter.XY{X: float64(i), Y: v})
			} else {
				rej = append(rej, plotter.XY{X: float64(i), Y: v})
			}
		}
		for j, pts := range []plotter.XYs{acc, rej} {
			if len(pts) == 0 {
				continue
			}
			s, err := plotter.NewScatter(pts)
			if err != nil {
				return err
			}
			s.GlyphStyle.Color = col
			s.GlyphStyle.Shape = getShape(j)
			p.Add(s)
			if j == 0 {
				p.Legend.Add(names[key], s)
			}
		}
		if math.IsInf(cutoffs[key], 0) || len(val) == 0 {
			continue
		}
		l, err := plotter.NewLine(plotter.XYs{{X: 0, Y: cutoffs[key]}, {X: float64(len(val) - 1), Y: cutoffs[key]}})
		if err != nil {
			return err
		}
		l.LineStyle.Color = col
		l.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(l)
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, filename)
}

func getShape(tagged int) draw.GlyphDrawer {
	switch tagged {
	case 0:
		return draw.CircleGlyph{}
	case 1:
		return draw.CrossGlyph{}
	case 2:
		return draw.SquareGlyph{}
	default:
		return draw.PyramidGlyph{}
	}
}

// takes hue (0-360), v and s (0-1), returns r,g,b (0-255)
func iHVS2RGB(h, v, s float64) (uint8, uint8, uint8) {
	var i, f, p, q, t float64
	var r, g, b float64
	maxcolor := 255.0
	conversion := maxcolor * v
	if s == 0.0 {
		return uint8(conversion), uint8(conversion), uint8(conversion)
	}
	h = h / 60
	i = math.Floor(h)
	f = h - i
	p = v * (1 - s)
	q = v * (1 - s*f)
	t = v * (1 - s*(1-f))
	switch int(i) {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default: //case 5
		r, g, b = v, p, q
	}
	return uint8(r * maxcolor), uint8(g * maxcolor), uint8(b * maxcolor)
}

// colors returns a color for the key-th of steps series, going from red to violet.
func colors(key, steps int) (r, g, b uint8) {
	norm := 260.0 / float64(steps)
	hp := float64(key)*norm + 20.0
	h := hp + 20.0
	if hp < 55 {
		h = hp - 20.0
	}
	return iHVS2RGB(h, 0.9, 1.0)
}
