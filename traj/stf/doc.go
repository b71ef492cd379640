/*
 * doc.go, part of gosieve.
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

/*
Package stf implements the simple trajectory format, a compressed, line-based
trajectory format that is easy to read and write from any language. goSieve uses
it to store the structures accepted by a filter.

An stf file may only contain ASCII symbols. It has a header, starting in the first line
and ending with a line that starts with the characters "**" followed by one or more
spaces and the number of atoms per frame.

Each line of the header is a key=value pair. The precision (an integer greater than 0) is
always written, with the key "prec". If the atomic numbers of the atoms are known, they are
stored under the key "atomic_numbers", separated by commas. For example:

	prec=2
	atomic_numbers=8,1,1
	** 3

After the header, the file has one line per atom, per frame. Each line contains 3 integers,
the x, y and z Cartesian coordinates multiplied by 10 to the power of the precision, and
rounded.

Each frame ends with a line starting with the character "*", optionally followed by one or more
whitespace and the 9 floating-point numbers of the vectors defining the simulation box.

The "**" sequence is only used as a header termination.

The file is compressed with Z-standard, unless its name ends with "l" (lzw), "z" (gzip) or
"r" (raw deflate). The compression level can be given to the writer.
*/
package stf
