// Copyright 2025 The Ridge Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package ctrigdesc contains the descriptor for one command trigger:
// a user-defined hook bound to a DDL command tag that fires before,
// after, or instead of the command it binds to.
package ctrigdesc

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ridgedb/ridge/pkg/sql/catalog/descpb"
)

// AnyCommandTag is the reserved wildcard tag. A trigger registered
// against it applies to every command tag in addition to the
// tag-specific triggers.
const AnyCommandTag = "ANY"

// FiringMode determines when a trigger runs relative to the command
// it binds to.
type FiringMode int

const (
	// FiringModeUnknown is the zero value and never valid in a
	// descriptor.
	FiringModeUnknown FiringMode = iota
	// FiringModeBefore runs the trigger before the command; the
	// trigger may abort the command by returning false.
	FiringModeBefore
	// FiringModeAfter runs the trigger after the command has executed
	// successfully; its return value is ignored.
	FiringModeAfter
	// FiringModeInsteadOf replaces the command's execution entirely.
	FiringModeInsteadOf
)

// String implements fmt.Stringer, using the SQL keyword spelling.
func (m FiringMode) String() string {
	switch m {
	case FiringModeBefore:
		return "BEFORE"
	case FiringModeAfter:
		return "AFTER"
	case FiringModeInsteadOf:
		return "INSTEAD OF"
	}
	return "UNKNOWN"
}

// SafeValue implements the redact.SafeValue interface.
func (m FiringMode) SafeValue() {}

// ParseFiringMode maps the statement's firing keyword to a concrete
// mode. Matching is case-insensitive, the way the grammar hands
// keywords over.
func ParseFiringMode(keyword string) (FiringMode, error) {
	switch strings.ToUpper(strings.TrimSpace(keyword)) {
	case "BEFORE":
		return FiringModeBefore, nil
	case "AFTER":
		return FiringModeAfter, nil
	case "INSTEAD OF", "INSTEAD_OF":
		return FiringModeInsteadOf, nil
	}
	return FiringModeUnknown, errors.Newf("unknown firing mode %q", keyword)
}

// EnabledState is the firing configuration of a trigger. Only
// StateDisabled is interpreted by the dispatch path today; the
// replication-role-sensitive states are accepted and persisted but
// not yet differentiated.
type EnabledState int

const (
	// StateEnabled fires in the default replication role.
	StateEnabled EnabledState = iota
	// StateDisabled never fires.
	StateDisabled
	// StateReplicaOnly is meant to fire only on replicas.
	StateReplicaOnly
	// StateAlways is meant to fire regardless of replication role.
	StateAlways
)

// String implements fmt.Stringer.
func (s EnabledState) String() string {
	switch s {
	case StateEnabled:
		return "ENABLED"
	case StateDisabled:
		return "DISABLED"
	case StateReplicaOnly:
		return "REPLICA ONLY"
	case StateAlways:
		return "ALWAYS"
	}
	return "UNKNOWN"
}

// SafeValue implements the redact.SafeValue interface.
func (s EnabledState) SafeValue() {}

// Descriptor is one command trigger catalog row. (Command, Name) is
// the natural key; ID is assigned at creation and used for dependency
// edges and direct deletion during cascades.
type Descriptor struct {
	ID descpb.ID
	// Command is the DDL command tag the trigger binds to.
	// Case-sensitive; AnyCommandTag matches every command.
	Command string
	// Name is unique within Command.
	Name string
	// FuncID references the registered function the trigger calls.
	// The trigger's lifetime depends on it: dropping the function
	// cascades to this row.
	FuncID descpb.ID
	Mode   FiringMode
	State  EnabledState
}

// IsDisabled reports whether the dispatch path must skip the trigger.
func (d *Descriptor) IsDisabled() bool {
	return d.State == StateDisabled
}

// Validate checks structural invariants that hold for every persisted
// descriptor, independent of the registry-wide invariants the admin
// surface enforces.
func (d *Descriptor) Validate() error {
	if d.Command == "" {
		return errors.AssertionFailedf("command trigger %q has empty command tag", d.Name)
	}
	if d.Name == "" {
		return errors.AssertionFailedf("command trigger on %q has empty name", d.Command)
	}
	if d.FuncID == descpb.InvalidID {
		return errors.AssertionFailedf("command trigger %q has no function", d.Name)
	}
	switch d.Mode {
	case FiringModeBefore, FiringModeAfter, FiringModeInsteadOf:
	default:
		return errors.AssertionFailedf("command trigger %q has invalid firing mode %d", d.Name, int(d.Mode))
	}
	return nil
}
