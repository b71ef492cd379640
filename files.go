/*
 * files.go, part of gosieve.
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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	v3 "github.com/rmera/gosieve/v3"
)

// XYZReader reads multi-frame XYZ files. It implements Traj.
// All frames must have the same atoms, in the same order, as the first one.
type XYZReader struct {
	r        *bufio.Reader
	f        *os.File
	filename string
	z        []int
	pending  *v3.Matrix //the first frame, read by the constructor
	comment  string
	line     int
	readable bool
}

// NewXYZReader returns a reader for the XYZ data in r. It reads the first frame
// to obtain the atomic numbers. name is only used in error messages.
func NewXYZReader(r io.Reader, name string) (*XYZReader, error) {
	X := &XYZReader{r: bufio.NewReader(r), filename: name}
	natoms, err := X.readNatoms()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, X.err("no frames found", "NewXYZReader")
		}
		return nil, errDecorate(err, "NewXYZReader")
	}
	X.z = make([]int, natoms)
	X.pending = v3.Zeros(natoms)
	if err := X.readBody(X.pending, true); err != nil {
		return nil, errDecorate(err, "NewXYZReader")
	}
	X.readable = true
	return X, nil
}

// XYZFileRead opens the XYZ file name and returns a reader for it. The
// file is closed when the last frame is read, or when Close is called.
func XYZFileRead(name string) (*XYZReader, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	X, err := NewXYZReader(f, name)
	if err != nil {
		f.Close()
		return nil, err
	}
	X.f = f
	return X, nil
}

// AtomicNumbers returns a copy of the atomic numbers of the atoms in the file.
func (X *XYZReader) AtomicNumbers() []int {
	ret := make([]int, len(X.z))
	copy(ret, X.z)
	return ret
}

// Comment returns the comment line of the last frame read.
func (X *XYZReader) Comment() string {
	return X.comment
}

// Len returns the number of atoms per frame.
func (X *XYZReader) Len() int {
	return len(X.z)
}

// Readable returns true if there could be more frames to read.
func (X *XYZReader) Readable() bool {
	return X.readable
}

// Next puts the next frame in output, or discards it if output is nil.
// When no frames are left, it returns an error implementing LastFrameError.
func (X *XYZReader) Next(output *v3.Matrix, box ...[]float64) error {
	if !X.readable {
		return X.err("reader is not readable", "XYZReader.Next")
	}
	if X.pending != nil {
		if output != nil {
			output.Copy(X.pending)
		}
		X.pending = nil
		return nil
	}
	natoms, err := X.readNatoms()
	if errors.Is(err, io.EOF) {
		X.Close()
		return newLastFrameError(X.filename, "xyz", "XYZReader.Next")
	}
	if err != nil {
		return errDecorate(err, "XYZReader.Next")
	}
	if natoms != len(X.z) {
		return newError(ErrShapeMismatch, fmt.Sprintf("%s line %d: frame with %d atoms, expected %d", X.filename, X.line, natoms, len(X.z)), "XYZReader.Next")
	}
	if output == nil {
		output = v3.Zeros(natoms)
	}
	return errDecorate(X.readBody(output, false), "XYZReader.Next")
}

// Close closes the underlying file, if it was opened by XYZFileRead, and
// marks the reader as not readable.
func (X *XYZReader) Close() error {
	X.readable = false
	if X.f != nil {
		f := X.f
		X.f = nil
		return f.Close()
	}
	return nil
}

// readNatoms reads the atom-number line, skipping blank lines.
// It returns io.EOF if there is nothing else to read.
func (X *XYZReader) readNatoms() (int, error) {
	for {
		line, err := X.r.ReadString('\n')
		X.line++
		if t := strings.TrimSpace(line); t != "" {
			n, cerr := strconv.Atoi(t)
			if cerr != nil || n <= 0 {
				return 0, X.err(fmt.Sprintf("line %d: invalid number of atoms %q", X.line, t), "readNatoms")
			}
			return n, nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// readBody reads the comment line and the atoms of a frame into coord. If first is true
// the atomic numbers are stored, otherwise they are checked against the stored ones.
func (X *XYZReader) readBody(coord *v3.Matrix, first bool) error {
	comment, err := X.r.ReadString('\n')
	X.line++
	if err != nil {
		return X.err(fmt.Sprintf("line %d: missing comment line", X.line), "readBody")
	}
	X.comment = strings.TrimRight(comment, "\r\n")
	for i := range X.z {
		line, err := X.r.ReadString('\n')
		X.line++
		fields := strings.Fields(line)
		if len(fields) < 4 {
			if err != nil {
				return X.err(fmt.Sprintf("line %d: unexpected end of file", X.line), "readBody")
			}
			return X.err(fmt.Sprintf("line %d: ill-formed atom line %q", X.line, strings.TrimSpace(line)), "readBody")
		}
		z, err := xyzElement(fields[0])
		if err != nil {
			return errDecorate(err, fmt.Sprintf("readBody: line %d", X.line))
		}
		if first {
			X.z[i] = z
		} else if z != X.z[i] {
			return X.err(fmt.Sprintf("line %d: atom %d changed from Z=%d to Z=%d", X.line, i, X.z[i], z), "readBody")
		}
		for j := 0; j < 3; j++ {
			v, err := strconv.ParseFloat(fields[j+1], 64)
			if err != nil {
				return X.err(fmt.Sprintf("line %d: can't parse coordinate %q", X.line, fields[j+1]), "readBody")
			}
			coord.Set(i, j, v)
		}
	}
	return nil
}

func (X *XYZReader) err(msg, caller string) error {
	return newError(nil, X.filename+": "+msg, caller)
}

// xyzElement accepts either an element symbol or an atomic number.
func xyzElement(field string) (int, error) {
	if z, err := strconv.Atoi(field); err == nil {
		if _, err := Symbol(z); err != nil {
			return 0, err
		}
		return z, nil
	}
	return AtomicNumber(field)
}

// ReadXYZ reads all the frames in the XYZ data from r. It returns the atomic numbers,
// the coordinates (always as a batch, even if there is only one frame) and the comment line of each frame.
func ReadXYZ(r io.Reader) ([]int, *Coords, []string, error) {
	X, err := NewXYZReader(r, "xyz")
	if err != nil {
		return nil, nil, nil, errDecorate(err, "ReadXYZ")
	}
	var frames []*v3.Matrix
	var comments []string
	for {
		c := v3.Zeros(X.Len())
		err := X.Next(c)
		if err != nil {
			var lf LastFrameError
			if errors.As(err, &lf) {
				break
			}
			return nil, nil, nil, errDecorate(err, "ReadXYZ")
		}
		frames = append(frames, c)
		comments = append(comments, X.Comment())
	}
	return X.AtomicNumbers(), Batch(frames...), comments, nil
}

// XYZWriter writes frames in XYZ format. It implements TrajWriter.
type XYZWriter struct {
	w       io.Writer
	symbols []string
	prec    int
}

// NewXYZWriter returns a writer of XYZ frames for the atoms in Z, with prec decimal
// places for the coordinates (10 if prec is not positive).
func NewXYZWriter(w io.Writer, Z []int, prec int) (*XYZWriter, error) {
	if prec <= 0 {
		prec = 10
	}
	X := &XYZWriter{w: w, symbols: make([]string, len(Z)), prec: prec}
	var err error
	for i, z := range Z {
		X.symbols[i], err = Symbol(z)
		if err != nil {
			return nil, errDecorate(err, "NewXYZWriter")
		}
	}
	return X, nil
}

// Len returns the number of atoms per frame.
func (X *XYZWriter) Len() int {
	return len(X.symbols)
}

// WNext writes coord as a new frame with an empty comment. The box, if given, is ignored.
func (X *XYZWriter) WNext(coord *v3.Matrix, box ...[]float64) error {
	return X.WNextComment(coord, "")
}

// WNextComment writes coord as a new frame with the given comment.
func (X *XYZWriter) WNextComment(coord *v3.Matrix, comment string) error {
	if coord == nil {
		return newError(ErrShapeMismatch, "nil coordinates", "XYZWriter.WNextComment")
	}
	if coord.NVecs() != len(X.symbols) {
		return newError(ErrShapeMismatch, fmt.Sprintf("%d coordinates given, but %d expected", coord.NVecs(), len(X.symbols)), "XYZWriter.WNextComment")
	}
	b := new(strings.Builder)
	fmt.Fprintf(b, "%d\n%s\n", len(X.symbols), strings.ReplaceAll(comment, "\n", " "))
	for i, s := range X.symbols {
		c := coord.Vec(i)
		fmt.Fprintf(b, "%-2s  %.*f  %.*f  %.*f\n", s, X.prec, c[0], X.prec, c[1], X.prec, c[2])
	}
	_, err := io.WriteString(X.w, b.String())
	return err
}

// WriteXYZ writes all frames of R to w, with the given comments (which can be nil)
// and precision.
func WriteXYZ(w io.Writer, Z []int, R *Coords, comments []string, prec int) error {
	if err := batch(Z, R); err != nil {
		return errDecorate(err, "WriteXYZ")
	}
	if comments != nil && len(comments) != R.Len() {
		return newError(ErrShapeMismatch, fmt.Sprintf("%d comments for %d frames", len(comments), R.Len()), "WriteXYZ")
	}
	X, err := NewXYZWriter(w, Z, prec)
	if err != nil {
		return errDecorate(err, "WriteXYZ")
	}
	for i := 0; i < R.Len(); i++ {
		c := ""
		if comments != nil {
			c = comments[i]
		}
		if err := X.WNextComment(R.Frame(i), c); err != nil {
			return errDecorate(err, "WriteXYZ")
		}
	}
	return nil
}

// lastFrameError implements LastFrameError
type lastFrameError struct {
	deco     []string
	fileName string
	format   string
}

// NormalLastFrameTermination does nothing
func (E *lastFrameError) NormalLastFrameTermination() {}

func (E *lastFrameError) FileName() string { return E.fileName }

func (E *lastFrameError) Error() string { return "EOF" }

func (E *lastFrameError) Critical() bool { return false }

func (E *lastFrameError) Format() string { return E.format }

func (E *lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newLastFrameError(filename, format, caller string) *lastFrameError {
	return &lastFrameError{fileName: filename, format: format, deco: []string{caller}}
}
