// Package dcd reads and writes the binary trajectories of CHARMM and NAMD.
//
// A DCD file is a sequence of Fortran records, each preceded and followed by its size in bytes:
// a header with the number of frames and the format flags, a title, the number of atoms, and then,
// for each frame, an optional unit cell followed by the x, y and z coordinates as single-precision
// floats. The byte order is detected from the first record.
package dcd
