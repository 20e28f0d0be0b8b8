// Copyright 2025 The Ridge Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package pgcode

// Code is a wrapper around a SQLSTATE five-character code. Boxing the
// string in a struct keeps call sites from accidentally passing an
// arbitrary message string where a code is expected.
type Code struct {
	code string
}

// MakeCode converts a 5-character SQLSTATE string into a Code.
func MakeCode(code string) Code {
	return Code{code: code}
}

// String returns the SQLSTATE string.
func (c Code) String() string {
	return c.code
}

// SafeValue implements the redact.SafeValue interface. SQLSTATE codes
// are never user-controlled.
func (c Code) SafeValue() {}

// The subset of SQLSTATE codes used by this subsystem.
var (
	// Uncategorized is used for errors that carry no better code.
	Uncategorized = MakeCode("XXUUU")

	// InsufficientPrivilege: the principal is not superuser nor owner
	// of the current database.
	InsufficientPrivilege = MakeCode("42501")
	// DuplicateObject: the (command, name) pair is already registered.
	DuplicateObject = MakeCode("42710")
	// UndefinedObject: the referenced trigger does not exist.
	UndefinedObject = MakeCode("42704")
	// UndefinedFunction: no function matches either accepted signature.
	UndefinedFunction = MakeCode("42883")
	// InvalidObjectDefinition: the function's return type does not
	// match the requested firing mode.
	InvalidObjectDefinition = MakeCode("42P17")
	// FeatureNotSupported: the requested firing mode conflicts with an
	// existing trigger family on the same command tag.
	FeatureNotSupported = MakeCode("0A000")
	// OutOfMemory: a dispatch batch exceeded its memory budget.
	OutOfMemory = MakeCode("53200")
	// Internal: catalog bookkeeping is inconsistent; unrecoverable.
	Internal = MakeCode("XX000")
)
