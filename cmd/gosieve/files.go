/*
 * files.go, part of gosieve
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

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	sieve "github.com/rmera/gosieve"
	"github.com/rmera/gosieve/traj/dcd"
	"github.com/rmera/gosieve/traj/stf"
)

// trajReader is a trajectory that must be closed after use.
type trajReader interface {
	sieve.Traj
	Close() error
}

// trajWriter is a trajectory writer that must be closed after use.
type trajWriter interface {
	sieve.TrajWriter
	Close() error
}

func isDCD(name string) bool {
	return strings.ToLower(filepath.Ext(name)) == ".dcd"
}

func isSTF(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".stf", ".stz", ".stl", ".str":
		return true
	}
	return false
}

// openTraj opens the trajectory in name, an XYZ, stf or DCD file, and returns
// it with its atomic numbers. The atomic numbers in an stf header take precedence
// over Z, which is only needed for files that don't store them.
func openTraj(name string, Z []int) (trajReader, []int, error) {
	if isDCD(name) {
		if len(Z) == 0 {
			return nil, nil, fmt.Errorf("%s: DCD files don't store atomic numbers, they must be given", name)
		}
		r, err := dcd.New(name)
		if err != nil {
			return nil, nil, err
		}
		if r.Len() != len(Z) {
			r.Close()
			return nil, nil, fmt.Errorf("%s: %d atomic numbers for %d atoms", name, len(Z), r.Len())
		}
		return r, Z, nil
	}
	if !isSTF(name) {
		r, err := sieve.XYZFileRead(name)
		if err != nil {
			return nil, nil, err
		}
		if len(Z) > 0 && !slices.Equal(Z, r.AtomicNumbers()) {
			r.Close()
			return nil, nil, fmt.Errorf("%s: the atomic numbers in the file and in the configuration differ", name)
		}
		return r, r.AtomicNumbers(), nil
	}
	r, header, err := stf.New(name)
	if err != nil {
		return nil, nil, err
	}
	hz, err := stf.AtomicNumbers(header)
	switch {
	case err == nil:
		Z = hz
	case len(Z) == 0:
		r.Close()
		return nil, nil, fmt.Errorf("%s: no atomic numbers in the file or the configuration: %w", name, err)
	}
	if len(Z) != r.Len() {
		r.Close()
		return nil, nil, fmt.Errorf("%s: %d atomic numbers for %d atoms", name, len(Z), r.Len())
	}
	return r, Z, nil
}

// xyzFileWriter closes the underlying file of an XYZWriter.
type xyzFileWriter struct {
	*sieve.XYZWriter
	io.Closer
}

// createTraj creates the trajectory name, in stf or DCD format if the extension is
// one of theirs, and in XYZ format otherwise. prec is the number of decimal places,
// which DCD files ignore.
func createTraj(name string, Z []int, prec int) (trajWriter, error) {
	if isDCD(name) {
		return dcd.NewWriter(name, len(Z))
	}
	if isSTF(name) {
		k, v := stf.HeaderAtomicNumbers(Z)
		return stf.NewWriter(name, len(Z), map[string]string{k: v, stf.PrecKey: strconv.Itoa(prec)})
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	w, err := sieve.NewXYZWriter(f, Z, prec)
	if err != nil {
		f.Close()
		return nil, err
	}
	return xyzFileWriter{w, f}, nil
}
