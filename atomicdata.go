/*
 * atomicdata.go, part of gosieve.
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
	"fmt"
	"strings"
)

type element struct {
	symbol string
	mass   float64
}

// Standard atomic weights (IUPAC conventional values), indexed by atomic number.
// Elements without stable isotopes get the mass number of their longest-lived one.
var elements = [...]element{
	{"", 0},
	{"H", 1.008}, {"He", 4.0026},
	{"Li", 6.94}, {"Be", 9.0122}, {"B", 10.81}, {"C", 12.011}, {"N", 14.007}, {"O", 15.999}, {"F", 18.998}, {"Ne", 20.180},
	{"Na", 22.990}, {"Mg", 24.305}, {"Al", 26.982}, {"Si", 28.085}, {"P", 30.974}, {"S", 32.06}, {"Cl", 35.45}, {"Ar", 39.948},
	{"K", 39.098}, {"Ca", 40.078}, {"Sc", 44.956}, {"Ti", 47.867}, {"V", 50.942}, {"Cr", 51.996}, {"Mn", 54.938}, {"Fe", 55.845},
	{"Co", 58.933}, {"Ni", 58.693}, {"Cu", 63.546}, {"Zn", 65.38}, {"Ga", 69.723}, {"Ge", 72.630}, {"As", 74.922}, {"Se", 78.971},
	{"Br", 79.904}, {"Kr", 83.798},
	{"Rb", 85.468}, {"Sr", 87.62}, {"Y", 88.906}, {"Zr", 91.224}, {"Nb", 92.906}, {"Mo", 95.95}, {"Tc", 98}, {"Ru", 101.07},
	{"Rh", 102.91}, {"Pd", 106.42}, {"Ag", 107.87}, {"Cd", 112.41}, {"In", 114.82}, {"Sn", 118.71}, {"Sb", 121.76}, {"Te", 127.60},
	{"I", 126.90}, {"Xe", 131.29},
	{"Cs", 132.91}, {"Ba", 137.33}, {"La", 138.91}, {"Ce", 140.12}, {"Pr", 140.91}, {"Nd", 144.24}, {"Pm", 145}, {"Sm", 150.36},
	{"Eu", 151.96}, {"Gd", 157.25}, {"Tb", 158.93}, {"Dy", 162.50}, {"Ho", 164.93}, {"Er", 167.26}, {"Tm", 168.93}, {"Yb", 173.05},
	{"Lu", 174.97}, {"Hf", 178.49}, {"Ta", 180.95}, {"W", 183.84}, {"Re", 186.21}, {"Os", 190.23}, {"Ir", 192.22}, {"Pt", 195.08},
	{"Au", 196.97}, {"Hg", 200.59}, {"Tl", 204.38}, {"Pb", 207.2}, {"Bi", 208.98}, {"Po", 209}, {"At", 210}, {"Rn", 222},
}

// symbolZ maps lowercase element symbols to atomic numbers.
var symbolZ = func() map[string]int {
	m := make(map[string]int, len(elements))
	for z, e := range elements[1:] {
		m[strings.ToLower(e.symbol)] = z + 1
	}
	return m
}()

// MassTable gives the mass of an element given its atomic number.
type MassTable interface {
	Mass(z int) (float64, error)
}

type standardMasses struct{}

// Mass returns the standard atomic weight of the element with atomic number z.
func (standardMasses) Mass(z int) (float64, error) {
	if z <= 0 || z >= len(elements) {
		return 0, newError(ErrUnknownElement, fmt.Sprintf("no mass for atomic number %d", z), "Mass")
	}
	return elements[z].mass, nil
}

// StandardMasses is the default, read-only, mass table.
var StandardMasses MassTable = standardMasses{}

// MapMasses is a MassTable backed by a map. Useful for tests or for
// isotopically-labeled systems.
type MapMasses map[int]float64

// Mass returns the mass stored for z, or an error wrapping ErrUnknownElement.
func (M MapMasses) Mass(z int) (float64, error) {
	m, ok := M[z]
	if !ok || m <= 0 {
		return 0, newError(ErrUnknownElement, fmt.Sprintf("no mass for atomic number %d", z), "MapMasses.Mass")
	}
	return m, nil
}

// Mass returns the standard atomic weight for the atomic number z.
func Mass(z int) (float64, error) {
	return StandardMasses.Mass(z)
}

// Symbol returns the element symbol for the atomic number z.
func Symbol(z int) (string, error) {
	if z <= 0 || z >= len(elements) {
		return "", newError(ErrUnknownElement, fmt.Sprintf("no symbol for atomic number %d", z), "Symbol")
	}
	return elements[z].symbol, nil
}

// AtomicNumber returns the atomic number for an element symbol. The
// comparison is case-insensitive.
func AtomicNumber(symbol string) (int, error) {
	z, ok := symbolZ[strings.ToLower(strings.TrimSpace(symbol))]
	if !ok {
		return 0, newError(ErrUnknownElement, fmt.Sprintf("unknown element symbol %q", symbol), "AtomicNumber")
	}
	return z, nil
}

// masses returns the mass of each atom in Z.
func masses(Z []int, table MassTable) ([]float64, error) {
	if table == nil {
		table = StandardMasses
	}
	ret := make([]float64, len(Z))
	var err error
	for i, z := range Z {
		ret[i], err = table.Mass(z)
		if err != nil {
			return nil, errDecorate(err, fmt.Sprintf("masses: atom %d", i))
		}
	}
	return ret, nil
}
