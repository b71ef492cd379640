/*
 * errors.go, part of gosieve.
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
	"errors"
	"strings"
)

// The kinds of error returned by this package. Use errors.Is to check for them.
var (
	// An atomic number has no entry in the mass table.
	ErrUnknownElement = errors.New("unknown element")
	// The atomic numbers, coordinates or entity ids don't agree in size.
	ErrShapeMismatch = errors.New("shape mismatch")
	// A call-time argument collides with one fixed in a Criteria.
	ErrDuplicateArgument = errors.New("duplicate argument")
	// An entity id was requested, but no atom belongs to it.
	ErrEmptyEntityGroup = errors.New("empty entity group")
	// An argument is not in the descriptor's schema, is missing or has the wrong type.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Error is the error type returned by goSieve. It satisfies the Error interface
// and unwraps to one of the error kinds above (or to nil, for errors without a kind).
type Error struct {
	message  string
	kind     error
	deco     []string
	critical bool
}

func newError(kind error, message string, caller string) *Error {
	return &Error{message: message, kind: kind, deco: []string{caller}, critical: true}
}

// Error returns a string with an error message.
func (err *Error) Error() string {
	if err.kind == nil {
		return "goSieve: " + err.message
	}
	return "goSieve: " + err.kind.Error() + ": " + err.message
}

// Unwrap returns the kind of the error.
func (err *Error) Unwrap() error { return err.kind }

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice. If dec is empty, it just returns the current slice.
func (err *Error) Decorate(dec string) []string {
	if dec == "" {
		return err.deco
	}
	err.deco = append(err.deco, dec)
	return err.deco
}

// Critical returns whether the error is critical or it can be ignored
func (err *Error) Critical() bool { return err.critical }

// Trace returns the decoration of the error, innermost call first.
func (err *Error) Trace() string {
	return strings.Join(err.deco, " <- ")
}

// errDecorate decorates err with the caller's name if it is a goSieve
// error, and returns it. Other errors are returned unchanged.
func errDecorate(err error, caller string) error {
	var e *Error
	if errors.As(err, &e) {
		e.Decorate(caller)
	}
	return err
}
