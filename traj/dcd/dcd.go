/*
 * dcd.go, part of gosieve.
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

package dcd

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	sieve "github.com/rmera/gosieve"
	v3 "github.com/rmera/gosieve/v3"
)

const (
	titleLen = 80

	// charmmVersion is the CHARMM version written in the header of new files.
	charmmVersion = 24
)

// header is the first record of a DCD file, after its leading size marker.
type header struct {
	Magic    [4]byte
	NSet     int32 //number of frames
	IStart   int32
	NSavc    int32
	_        [5]int32
	NAMNF    int32 //number of fixed atoms
	Delta    float32
	UnitCell int32 //1 if each frame has a unit cell record
	FourDim  int32 //1 if each frame has a fourth coordinate
	_        [7]int32
	Version  int32 //0 for X-PLOR files
}

const (
	headerSize = 84
	cellSize   = 48 //6 doubles
)

// Reader reads CHARMM/NAMD binary trajectories. It implements sieve.Traj.
// Both byte orders are supported. Files with fixed atoms are not.
type Reader struct {
	f        *os.File
	r        *bufio.Reader
	order    binary.ByteOrder
	filename string
	natoms   int
	nset     int
	unitCell bool
	fourDim  bool
	readable bool
	fields   [3][]float32
	cell     [6]float64
}

// New opens the DCD trajectory name for reading.
func New(name string) (*Reader, error) {
	D := &Reader{filename: name}
	var err error
	D.f, err = os.Open(name)
	if err != nil {
		return nil, err
	}
	D.r = bufio.NewReader(D.f)
	if err := D.readHeader(); err != nil {
		D.f.Close()
		return nil, err
	}
	for i := range D.fields {
		D.fields[i] = make([]float32, D.natoms)
	}
	D.readable = true
	return D, nil
}

func (D *Reader) err(message, caller string) Error {
	return Error{message, D.filename, []string{caller}, true}
}

func (D *Reader) readHeader() error {
	var first [4]byte
	if _, err := io.ReadFull(D.r, first[:]); err != nil {
		return D.err("can't read header: "+err.Error(), "readHeader")
	}
	//the first record always takes 84 bytes, which tells us the byte order.
	switch {
	case binary.LittleEndian.Uint32(first[:]) == headerSize:
		D.order = binary.LittleEndian
	case binary.BigEndian.Uint32(first[:]) == headerSize:
		D.order = binary.BigEndian
	default:
		return D.err(WrongFormat, "readHeader")
	}
	var h header
	if err := binary.Read(D.r, D.order, &h); err != nil {
		return D.err("can't read header: "+err.Error(), "readHeader")
	}
	if string(h.Magic[:]) != "CORD" {
		return D.err("wrong magic number "+string(h.Magic[:]), "readHeader")
	}
	if err := D.closeRecord(headerSize, "readHeader"); err != nil {
		return err
	}
	if h.NAMNF != 0 {
		return D.err("fixed atoms not supported", "readHeader")
	}
	//X-PLOR files have neither unit cells nor 4D coordinates, and a double delta.
	if h.Version != 0 {
		D.unitCell = h.UnitCell == 1
		D.fourDim = h.FourDim == 1
	}
	D.nset = int(h.NSet)

	//title
	size, err := D.marker()
	if err != nil {
		return D.err("can't read title: "+err.Error(), "readHeader")
	}
	var ntitle int32
	if err := binary.Read(D.r, D.order, &ntitle); err != nil {
		return D.err("can't read title: "+err.Error(), "readHeader")
	}
	if ntitle < 0 || size != 4+titleLen*ntitle {
		return D.err(WrongFormat, "readHeader")
	}
	if _, err := D.r.Discard(int(titleLen * ntitle)); err != nil {
		return D.err("can't read title: "+err.Error(), "readHeader")
	}
	if err := D.closeRecord(size, "readHeader"); err != nil {
		return err
	}

	//number of atoms
	if size, err = D.marker(); err != nil || size != 4 {
		return D.err(WrongFormat, "readHeader")
	}
	var natoms int32
	if err := binary.Read(D.r, D.order, &natoms); err != nil {
		return D.err("can't read the number of atoms: "+err.Error(), "readHeader")
	}
	if natoms <= 0 {
		return D.err(fmt.Sprintf("invalid number of atoms %d", natoms), "readHeader")
	}
	D.natoms = int(natoms)
	return D.closeRecord(4, "readHeader")
}

// marker reads the size of the next record.
func (D *Reader) marker() (int32, error) {
	var size int32
	err := binary.Read(D.r, D.order, &size)
	return size, err
}

// closeRecord reads the marker that ends a record, which must repeat its size.
func (D *Reader) closeRecord(size int32, caller string) error {
	end, err := D.marker()
	if err != nil {
		return D.err("can't read record end: "+err.Error(), caller)
	}
	if end != size {
		return D.err(fmt.Sprintf("record of %d bytes ends with %d", size, end), caller)
	}
	return nil
}

// Readable returns true if the trajectory is ready to be read from.
func (D *Reader) Readable() bool {
	return D.readable
}

// Len returns the number of atoms per frame.
func (D *Reader) Len() int {
	return D.natoms
}

// Frames returns the number of frames declared in the header, which some programs don't update.
func (D *Reader) Frames() int {
	return D.nset
}

// Next reads the next frame into coord, or discards it if coord is nil. If a box with at least 9
// elements is given and the trajectory has unit cells, the box is filled with the cell vectors.
// After the last frame, it returns an error implementing sieve.LastFrameError.
func (D *Reader) Next(coord *v3.Matrix, box ...[]float64) error {
	if !D.readable {
		return D.err(TrajUnIniRead, "Next")
	}
	if coord != nil && coord.NVecs() != D.natoms {
		return D.err(fmt.Sprintf("%d coordinates given, but the trajectory has %d atoms", coord.NVecs(), D.natoms), "Next")
	}
	size, err := D.marker()
	if errors.Is(err, io.EOF) {
		D.readable = false
		return newLastFrameError(D.filename, "Next")
	}
	if err != nil {
		return D.err(ReadError+": "+err.Error(), "Next")
	}
	cell := false
	//some programs only write the unit cell in some frames. A record that doesn't
	//match the coordinates is a cell, and so is one of 48 bytes, even if it matches (12 atoms).
	if D.unitCell && (size == cellSize || size != 4*int32(D.natoms)) {
		if err := D.readCell(size); err != nil {
			return err
		}
		cell = true
		if size, err = D.marker(); err != nil {
			return D.err(ReadError+": "+err.Error(), "Next")
		}
	}
	for i := range D.fields {
		if i > 0 {
			if size, err = D.marker(); err != nil {
				return D.err(ReadError+": "+err.Error(), "Next")
			}
		}
		if size != 4*int32(D.natoms) {
			return D.err(fmt.Sprintf("coordinate record of %d bytes for %d atoms", size, D.natoms), "Next")
		}
		if err := binary.Read(D.r, D.order, D.fields[i]); err != nil {
			return D.err(ReadError+": "+err.Error(), "Next")
		}
		if err := D.closeRecord(size, "Next"); err != nil {
			return err
		}
	}
	if D.fourDim {
		//the 4th dimension is not present in the last frame of some files.
		size, err = D.marker()
		switch {
		case errors.Is(err, io.EOF):
		case err != nil:
			return D.err(ReadError+": "+err.Error(), "Next")
		default:
			if _, err := D.r.Discard(int(size)); err != nil {
				return D.err(ReadError+": "+err.Error(), "Next")
			}
			if err := D.closeRecord(size, "Next"); err != nil {
				return err
			}
		}
	}
	if coord != nil {
		for i := 0; i < D.natoms; i++ {
			coord.Set(i, 0, float64(D.fields[0][i]))
			coord.Set(i, 1, float64(D.fields[1][i]))
			coord.Set(i, 2, float64(D.fields[2][i]))
		}
	}
	if cell && len(box) > 0 && len(box[0]) >= 9 {
		cellVectors(D.cell, box[0])
	}
	return nil
}

// readCell reads a unit cell record, stored as a, gamma, b, beta, alpha, c.
func (D *Reader) readCell(size int32) error {
	if size != cellSize {
		return D.err(fmt.Sprintf("unit cell record of %d bytes", size), "readCell")
	}
	if err := binary.Read(D.r, D.order, D.cell[:]); err != nil {
		return D.err(ReadError+": "+err.Error(), "readCell")
	}
	return D.closeRecord(size, "readCell")
}

// cellVectors puts in box the 3 vectors of the unit cell c. The angles
// in c can be in degrees, or given as their cosines.
func cellVectors(c [6]float64, box []float64) {
	a, b, cc := c[0], c[2], c[5]
	angle := func(v float64) float64 {
		if v >= -1 && v <= 1 {
			return math.Acos(v)
		}
		return v * math.Pi / 180
	}
	alpha, beta, gamma := angle(c[4]), angle(c[3]), angle(c[1])
	for i := range box[:9] {
		box[i] = 0
	}
	box[0] = a
	box[3] = b * math.Cos(gamma)
	box[4] = b * math.Sin(gamma)
	box[6] = cc * math.Cos(beta)
	box[7] = cc * (math.Cos(alpha) - math.Cos(beta)*math.Cos(gamma)) / math.Sin(gamma)
	box[8] = math.Sqrt(cc*cc - box[6]*box[6] - box[7]*box[7])
}

// Close closes the file. It is safe to call it more than once.
func (D *Reader) Close() error {
	if D.f == nil {
		return nil
	}
	D.readable = false
	err := D.f.Close()
	D.f = nil
	return err
}

// Writer writes CHARMM trajectories, in little-endian byte order and without unit cells.
// It implements sieve.TrajWriter.
type Writer struct {
	f         *os.File
	w         *bufio.Writer
	filename  string
	natoms    int
	frames    int
	writeable bool
	fields    [3][]float32
}

// NewWriter creates the file name and returns a Writer for frames of natoms atoms.
func NewWriter(name string, natoms int) (*Writer, error) {
	if natoms <= 0 {
		return nil, Error{fmt.Sprintf("can't write frames with %d atoms", natoms), name, []string{"NewWriter"}, true}
	}
	D := &Writer{filename: name, natoms: natoms}
	var err error
	D.f, err = os.Create(name)
	if err != nil {
		return nil, err
	}
	D.w = bufio.NewWriter(D.f)
	if err := D.writeHeader(); err != nil {
		D.f.Close()
		os.Remove(name)
		return nil, Error{"can't write header: " + err.Error(), name, []string{"NewWriter"}, true}
	}
	for i := range D.fields {
		D.fields[i] = make([]float32, natoms)
	}
	D.writeable = true
	return D, nil
}

// record writes data as a record, between its size markers.
func (D *Writer) record(size int32, data any) error {
	if err := binary.Write(D.w, binary.LittleEndian, size); err != nil {
		return err
	}
	if err := binary.Write(D.w, binary.LittleEndian, data); err != nil {
		return err
	}
	return binary.Write(D.w, binary.LittleEndian, size)
}

func (D *Writer) writeHeader() error {
	h := header{
		Magic:   [4]byte{'C', 'O', 'R', 'D'},
		NSavc:   1,
		Delta:   1,
		Version: charmmVersion,
	}
	if err := D.record(headerSize, &h); err != nil {
		return err
	}
	t := struct {
		N     int32
		Title [titleLen]byte
	}{N: 1}
	n := copy(t.Title[:], "Created by goSieve")
	for i := n; i < titleLen; i++ {
		t.Title[i] = ' '
	}
	if err := D.record(4+titleLen, &t); err != nil {
		return err
	}
	return D.record(4, int32(D.natoms))
}

// Len returns the number of atoms per frame.
func (D *Writer) Len() int {
	return D.natoms
}

// Frames returns the number of frames written so far.
func (D *Writer) Frames() int {
	return D.frames
}

// WNext writes coord as the next frame. The coordinates are stored in single precision. The box is ignored.
func (D *Writer) WNext(coord *v3.Matrix, box ...[]float64) error {
	if !D.writeable {
		return Error{TrajUnIniWrite, D.filename, []string{"WNext"}, true}
	}
	if coord == nil {
		return Error{NilCoordinates, D.filename, []string{"WNext"}, true}
	}
	if v := coord.NVecs(); v != D.natoms {
		return Error{fmt.Sprintf("%d coordinates given, but %d expected", v, D.natoms), D.filename, []string{"WNext"}, true}
	}
	for i := 0; i < D.natoms; i++ {
		D.fields[0][i] = float32(coord.At(i, 0))
		D.fields[1][i] = float32(coord.At(i, 1))
		D.fields[2][i] = float32(coord.At(i, 2))
	}
	for _, f := range D.fields {
		if err := D.record(4*int32(D.natoms), f); err != nil {
			return Error{"can't write frame: " + err.Error(), D.filename, []string{"WNext"}, true}
		}
	}
	D.frames++
	return nil
}

// Close flushes the data, writes the number of frames in the header, and closes the file.
// The Writer can't be used after this call.
func (D *Writer) Close() error {
	if D == nil || !D.writeable {
		return nil
	}
	D.writeable = false
	err := D.w.Flush()
	if err == nil {
		//the frame count follows the record size and the magic number.
		var n [4]byte
		binary.LittleEndian.PutUint32(n[:], uint32(D.frames))
		_, err = D.f.WriteAt(n[:], 8)
	}
	if err2 := D.f.Close(); err == nil {
		err = err2
	}
	if err != nil {
		return Error{"can't close trajectory: " + err.Error(), D.filename, []string{"Close"}, true}
	}
	return nil
}

//Errors

// Error is the general structure for DCD trajectory errors. It fullfills sieve.TrajError
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("dcd file %s error: %s", err.filename, err.message)
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

// Format returns the format of the file (always "dcd") associated to the error
func (err Error) Format() string { return "dcd" }

// Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIniRead  = "Traj object uninitialized to read"
	TrajUnIniWrite = "Traj object uninitialized to write"
	ReadError      = "Error reading frame"
	NilCoordinates = "Given nil coordinates"
	WrongFormat    = "Wrong format in the DCD file"
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

func (E *lastFrameError) Format() string { return "dcd" }

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
