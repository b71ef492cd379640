/*
 * stf.go, part of gosieve.
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
 *
 */

package stf

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/lzw"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	sieve "github.com/rmera/gosieve"
	v3 "github.com/rmera/gosieve/v3"
)

const (
	lzwLitwidth int = 8

	// DefaultPrec is the number of decimal places stored if the header doesn't give any.
	DefaultPrec = 2

	// MaxPrec is the largest precision accepted. Coordinates are stored as integers
	// scaled by 10^prec, which must fit in an int for any reasonable coordinate.
	MaxPrec = 12

	// PrecKey is the header key for the precision.
	PrecKey = "prec"

	// AtomicNumbersKey is the header key for the comma-separated atomic numbers of the atoms.
	AtomicNumbersKey = "atomic_numbers"
)

// Writer writes stf trajectories. It implements sieve.TrajWriter.
type Writer struct {
	f         *os.File
	h         io.WriteCloser
	b         *bufio.Writer
	natoms    int
	filename  string
	writeable bool
	prec      int
	frames    int
}

// NewWriter creates the file name and returns a Writer for frames of natoms atoms. The header
// can be nil. The compression is chosen by the last letter of name: 'l' for lzw, 'z' for gzip, 'r' for
// raw deflate, and zstd for anything else (i.e. ".stf"). The compression level, if given, is
// the one of the respective package (for zstd, the levels are those of the zstd C library).
func NewWriter(name string, natoms int, header map[string]string, compressionLevel ...int) (*Writer, error) {
	if natoms <= 0 {
		return nil, Error{fmt.Sprintf("can't write frames with %d atoms", natoms), name, []string{"NewWriter"}, true}
	}
	S := &Writer{natoms: natoms, filename: name, prec: DefaultPrec}
	if p, ok := header[PrecKey]; ok {
		prec, err := strconv.Atoi(p)
		if err != nil || prec <= 0 || prec > MaxPrec {
			return nil, Error{fmt.Sprintf("invalid precision %q, it must be between 1 and %d", p, MaxPrec), name, []string{"NewWriter"}, true}
		}
		S.prec = prec
	}
	wrapper, err := compressedWriter(name, compressionLevel...)
	if err != nil {
		return nil, Error{"can't create compressor: " + err.Error(), name, []string{"NewWriter"}, true}
	}
	S.f, err = os.Create(name)
	if err != nil {
		return nil, err
	}
	S.h, err = wrapper(S.f)
	if err != nil {
		S.f.Close()
		return nil, Error{"can't create compressor: " + err.Error(), name, []string{"NewWriter"}, true}
	}
	S.b = bufio.NewWriter(S.h)
	//the keys are sorted so the same header always gives the same file.
	keys := make([]string, 0, len(header)+1)
	for k := range header {
		if strings.ContainsAny(k, "=\n") || strings.Contains(header[k], "\n") || strings.HasPrefix(k, "**") {
			S.abort()
			return nil, Error{fmt.Sprintf("invalid header entry %q", k), name, []string{"NewWriter"}, true}
		}
		if k != PrecKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	fmt.Fprintf(S.b, "%s=%d\n", PrecKey, S.prec)
	for _, k := range keys {
		fmt.Fprintf(S.b, "%s=%s\n", k, header[k])
	}
	fmt.Fprintf(S.b, "** %d\n", S.natoms)
	S.writeable = true
	return S, nil
}

func compressedWriter(name string, level ...int) (func(io.Writer) (io.WriteCloser, error), error) {
	format := byte('f')
	if name != "" {
		format = strings.ToLower(name)[len(name)-1]
	}
	switch format {
	case 'l':
		return func(a io.Writer) (io.WriteCloser, error) { return lzw.NewWriter(a, lzw.MSB, lzwLitwidth), nil }, nil
	case 'z':
		l := gzip.BestCompression
		if len(level) > 0 {
			l = level[0]
		}
		return func(a io.Writer) (io.WriteCloser, error) { return gzip.NewWriterLevel(a, l) }, nil
	case 'r':
		l := flate.BestCompression
		if len(level) > 0 {
			l = level[0]
		}
		return func(a io.Writer) (io.WriteCloser, error) { return flate.NewWriter(a, l) }, nil
	default:
		l := zstd.SpeedBestCompression
		if len(level) > 0 {
			l = zstd.EncoderLevelFromZstd(level[0])
		}
		return func(a io.Writer) (io.WriteCloser, error) { return zstd.NewWriter(a, zstd.WithEncoderLevel(l)) }, nil
	}
}

// abort closes and removes a file that couldn't be initialized.
func (S *Writer) abort() {
	S.h.Close()
	S.f.Close()
	os.Remove(S.filename)
}

// Len returns the number of atoms per frame.
func (S *Writer) Len() int {
	return S.natoms
}

// Frames returns the number of frames written so far.
func (S *Writer) Frames() int {
	return S.frames
}

// WNext writes coord as the next frame, with the box vectors, if a box with at least 9 elements is given.
func (S *Writer) WNext(coord *v3.Matrix, box ...[]float64) error {
	if !S.writeable {
		return Error{TrajUnIniWrite, S.filename, []string{"WNext"}, true}
	}
	if coord == nil {
		return Error{NilCoordinates, S.filename, []string{"WNext"}, true}
	}
	if v := coord.NVecs(); v != S.natoms {
		return Error{fmt.Sprintf("%d coordinates given, but %d expected", v, S.natoms), S.filename, []string{"WNext"}, true}
	}
	var temp [3]int
	//the whole frame is checked first, so a bad frame is not written in part.
	scale := math.Pow(10.0, float64(S.prec))
	for i := 0; i < S.natoms; i++ {
		for _, v := range coord.Vec(i) {
			if s := math.Abs(math.RoundToEven(v * scale)); math.IsNaN(s) || s >= math.MaxInt64 {
				return Error{fmt.Sprintf("coordinate %g of atom %d can't be stored with precision %d", v, i, S.prec), S.filename, []string{"WNext"}, true}
			}
		}
	}
	for i := 0; i < S.natoms; i++ {
		coordsEncode(S.b, coord.Vec(i), temp, S.prec)
	}
	var err error
	if len(box) > 0 && len(box[0]) >= 9 {
		b := box[0]
		_, err = fmt.Fprintf(S.b, "* %g %g %g %g %g %g %g %g %g\n", b[0], b[1], b[2], b[3], b[4], b[5], b[6], b[7], b[8])
	} else {
		_, err = S.b.WriteString("*\n")
	}
	if err != nil {
		return Error{"can't write frame: " + err.Error(), S.filename, []string{"WNext"}, true}
	}
	S.frames++
	return nil
}

// Close flushes the data and closes the file. The Writer can't be used after this call.
func (S *Writer) Close() error {
	if S == nil || !S.writeable {
		return nil
	}
	S.writeable = false
	err := S.b.Flush()
	if err2 := S.h.Close(); err == nil {
		err = err2
	}
	if err2 := S.f.Close(); err == nil {
		err = err2
	}
	if err != nil {
		return Error{"can't close trajectory: " + err.Error(), S.filename, []string{"Close"}, true}
	}
	return nil
}

func coordsEncode(w *bufio.Writer, f []float64, temp [3]int, prec int) {
	p := 100.0
	if prec != 2 {
		p = math.Pow(10.0, float64(prec))
	}
	for i, v := range f[:3] {
		temp[i] = int(math.RoundToEven(v * p))
	}
	fmt.Fprintf(w, "%d %d %d\n", temp[0], temp[1], temp[2])
}

// Reader reads stf trajectories. It implements sieve.Traj.
type Reader struct {
	f        *os.File
	dec      io.ReadCloser
	h        *bufio.Reader
	natoms   int
	filename string
	prec     int
	readable bool
}

// zstd.Decoder's Close doesn't return an error, so it can't be an io.ReadCloser by itself.
type zstdCloser struct {
	*zstd.Decoder
}

func (s zstdCloser) Close() error {
	s.Decoder.Close()
	return nil
}

// New opens a stf trajectory for reading, and returns a pointer
// to the handle, a map with the header (which always contains at least the
// precision) and error or nil.
func New(name string) (*Reader, map[string]string, error) {
	S := &Reader{filename: name, prec: DefaultPrec}
	var err error
	S.f, err = os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	var decompressor func(io.Reader) (io.ReadCloser, error)
	switch strings.ToLower(name)[len(name)-1] {
	case 'l':
		decompressor = func(a io.Reader) (io.ReadCloser, error) { return lzw.NewReader(a, lzw.MSB, lzwLitwidth), nil }
	case 'z':
		decompressor = func(a io.Reader) (io.ReadCloser, error) { return gzip.NewReader(a) }
	case 'r':
		decompressor = func(a io.Reader) (io.ReadCloser, error) { return flate.NewReader(a), nil }
	default:
		decompressor = func(a io.Reader) (io.ReadCloser, error) {
			r, err := zstd.NewReader(a)
			if err != nil {
				return nil, err
			}
			return zstdCloser{r}, nil
		}
	}
	S.dec, err = decompressor(bufio.NewReader(S.f))
	if err != nil {
		S.f.Close()
		return nil, nil, Error{"can't read header: " + err.Error(), name, []string{"New"}, true}
	}
	S.h = bufio.NewReader(S.dec)
	m := make(map[string]string)
	for {
		str, err := S.h.ReadString('\n')
		if err != nil {
			S.close()
			return nil, nil, Error{"can't read header: " + err.Error(), name, []string{"New"}, true}
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			nat := strings.Fields(str)
			if len(nat) < 2 {
				S.close()
				return nil, nil, Error{fmt.Sprintf("can't read atom number from '%s'", str), name, []string{"New"}, true}
			}
			S.natoms, err = strconv.Atoi(nat[1])
			if err != nil || S.natoms <= 0 {
				S.close()
				return nil, nil, Error{fmt.Sprintf("can't read atom number from '%s'", nat[1]), name, []string{"New"}, true}
			}
			break
		}
		k, v, ok := strings.Cut(str, "=")
		if !ok {
			S.close()
			return nil, nil, Error{fmt.Sprintf("malformed header line '%s'", str), name, []string{"New"}, true}
		}
		m[k] = v
	}
	if p, ok := m[PrecKey]; ok {
		prec, err := strconv.Atoi(p)
		if err != nil || prec <= 0 || prec > MaxPrec {
			S.close()
			return nil, nil, Error{fmt.Sprintf("invalid precision %q", p), name, []string{"New"}, true}
		}
		S.prec = prec
	} else {
		m[PrecKey] = strconv.Itoa(S.prec)
	}
	S.readable = true
	return S, m, nil
}

// Readable returns true if the handle is readable (if it is possible to call Next on it)
func (S *Reader) Readable() bool {
	return S.readable
}

// Len returns the number of atoms in each frame of the trajectory.
func (S *Reader) Len() int {
	return S.natoms
}

func coordsDecode(str string, temp *[3]float64, prec int) error {
	p := 100.0
	if prec != 2 {
		p = math.Pow(10.0, float64(prec))
	}
	s := strings.Fields(str)
	if len(s) != 3 {
		return fmt.Errorf("ill-formed coordinates line %q: %d fields", str, len(s))
	}
	for i, v := range s {
		f, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("can't parse coordinate %d (%s): %w", i, v, err)
		}
		temp[i] = float64(f) / p
	}
	return nil
}

// Next puts in the given matrix (c) the coordinates for the next frame of the trajectory
// and, if given and the information is present, puts the box vectors in box.
// If c is nil, the frame is read, checked and discarded.
// When no frames are left, it returns an error implementing sieve.LastFrameError.
func (S *Reader) Next(c *v3.Matrix, box ...[]float64) error {
	if !S.readable {
		return Error{TrajUnIniRead, S.filename, []string{"Next"}, true}
	}
	if c != nil && c.NVecs() != S.natoms {
		return Error{fmt.Sprintf("a matrix for %d atoms was given, but frames have %d", c.NVecs(), S.natoms), S.filename, []string{"Next"}, true}
	}
	var temp [3]float64
	for i := 0; i < S.natoms; i++ {
		b, err := S.h.ReadString('\n')
		if err != nil {
			//EOF before the first atom is just the end of the trajectory
			if errors.Is(err, io.EOF) && i == 0 && b == "" {
				S.close()
				return newLastFrameError(S.filename, "Next")
			}
			return Error{fmt.Sprintf("%s: %s", ReadError, err.Error()), S.filename, []string{"Next"}, true}
		}
		if strings.HasPrefix(b, "*") {
			return Error{fmt.Sprintf("%s: frame with %d atoms, %d expected", WrongFormat, i, S.natoms), S.filename, []string{"Next"}, true}
		}
		if err := coordsDecode(strings.TrimSuffix(b, "\n"), &temp, S.prec); err != nil {
			return Error{err.Error(), S.filename, []string{"Next"}, true}
		}
		if c == nil {
			continue
		}
		c.Set(i, 0, temp[0])
		c.Set(i, 1, temp[1])
		c.Set(i, 2, temp[2])
	}
	s, err := S.h.ReadString('\n')
	if err != nil && s == "" {
		return Error{"can't read the frame termination mark: " + err.Error(), S.filename, []string{"Next"}, true}
	}
	if !strings.HasPrefix(s, "*") {
		return Error{fmt.Sprintf("%s: frame with more than %d atoms", WrongFormat, S.natoms), S.filename, []string{"Next"}, true}
	}
	if len(box) == 0 || len(box[0]) < 9 {
		return nil
	}
	fields := strings.Fields(s)
	if len(fields) < 10 {
		//no box in this frame
		for i := range box[0] {
			box[0][i] = 0
		}
		return nil
	}
	for j, v := range fields[1:10] {
		box[0][j], err = strconv.ParseFloat(v, 64)
		if err != nil {
			return Error{fmt.Sprintf("can't parse box vector element %q", v), S.filename, []string{"Next"}, true}
		}
	}
	return nil
}

// close releases the decompressor and the file, and marks the reader as unreadable.
func (S *Reader) close() error {
	S.readable = false
	var err error
	if S.dec != nil {
		err = S.dec.Close()
		S.dec = nil
	}
	if S.f != nil {
		if err2 := S.f.Close(); err == nil {
			err = err2
		}
		S.f = nil
	}
	return err
}

// Close closes the object, and marks it as unreadable. It can be called several times.
func (S *Reader) Close() error {
	return S.close()
}

// AtomicNumbers returns the atomic numbers stored in the header m, if any.
func AtomicNumbers(m map[string]string) ([]int, error) {
	s, ok := m[AtomicNumbersKey]
	if !ok {
		return nil, fmt.Errorf("no %s entry in the header", AtomicNumbersKey)
	}
	fields := strings.Split(s, ",")
	ret := make([]int, len(fields))
	for i, v := range fields {
		z, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("invalid atomic number %q: %w", v, err)
		}
		ret[i] = z
	}
	return ret, nil
}

// HeaderAtomicNumbers returns a header entry with the atomic numbers Z, which can be read back with AtomicNumbers.
func HeaderAtomicNumbers(Z []int) (key, value string) {
	s := make([]string, len(Z))
	for i, z := range Z {
		s[i] = strconv.Itoa(z)
	}
	return AtomicNumbersKey, strings.Join(s, ",")
}

//Errors

// Error is the general structure for stf trajectory errors. It fullfills sieve.TrajError
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("stf file %s error: %s", err.filename, err.message)
}

// Decorate Adds new information to the error
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// FileName returns the file to which the failing trajectory was associated
func (err Error) FileName() string { return err.filename }

// Format returns the format of the file (always "stf") associated to the error
func (err Error) Format() string { return "stf" }

// Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIniRead  = "Traj object uninitialized to read"
	TrajUnIniWrite = "Traj object uninitialized to write"
	ReadError      = "Error reading frame"
	NilCoordinates = "Given nil coordinates"
	WrongFormat    = "Wrong format in the STF file or frame"
)

// lastFrameError implements sieve.LastFrameError
type lastFrameError struct {
	deco     []string
	fileName string
}

// NormalLastFrameTermination does nothing
func (E *lastFrameError) NormalLastFrameTermination() {}

func (E *lastFrameError) FileName() string { return E.fileName }

func (E *lastFrameError) Error() string { return "EOF" }

func (E *lastFrameError) Critical() bool { return false }

func (E *lastFrameError) Format() string { return "stf" }

func (E *lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newLastFrameError(filename string, caller string) *lastFrameError {
	return &lastFrameError{fileName: filename, deco: []string{caller}}
}

// compile-time checks
var (
	_ sieve.Traj           = (*Reader)(nil)
	_ sieve.TrajWriter     = (*Writer)(nil)
	_ sieve.LastFrameError = (*lastFrameError)(nil)
	_ sieve.TrajError      = Error{}
)
