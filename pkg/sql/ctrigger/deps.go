// Copyright 2025 The Ridge Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package ctrigger

import (
	"context"

	"github.com/lib/pq/oid"
	"github.com/ridgedb/ridge/pkg/sql/catalog/descpb"
)

// Principal identifies the session user on whose behalf an admin
// operation runs.
type Principal string

// AuthChecker is the permission service consulted by the admin
// surface. Managing command triggers requires superuser or ownership
// of the current database.
type AuthChecker interface {
	IsSuperuser(ctx context.Context, p Principal) (bool, error)
	IsDatabaseOwner(ctx context.Context, p Principal) (bool, error)
}

// Language is a trigger function's implementation language as
// reported by the function registry. The invocation adapter only
// distinguishes the native extension language, which is the one
// calling convention that accepts the raw command representation.
type Language int

const (
	// LanguageUnknown is the zero value.
	LanguageUnknown Language = iota
	// LanguageNative functions receive five positional arguments,
	// the raw command representation last.
	LanguageNative
	// LanguageProcedural covers the higher-level procedural
	// languages; their functions receive the four leading arguments
	// only.
	LanguageProcedural
)

// Trigger function signatures accepted at creation time. Resolution
// tries the native one first.
var (
	NativeTriggerArgTypes = []oid.Oid{
		oid.T_text, oid.T_oid, oid.T_text, oid.T_text, oid.T_internal,
	}
	ProceduralTriggerArgTypes = []oid.Oid{
		oid.T_text, oid.T_oid, oid.T_text, oid.T_text,
	}
)

// Arg is one positional argument to a trigger function. An absent
// command context field is passed as an explicit null. Exactly one of
// the value fields is meaningful, matching the position's declared
// type.
type Arg struct {
	Null bool
	// Text holds the tag, schema name, and object name arguments.
	Text string
	// ID holds the target object id argument.
	ID descpb.ID
	// Raw holds the raw command representation, forwarded
	// uninterpreted; only native-language functions receive it.
	Raw interface{}
}

// Result is the tagged outcome of one trigger function call: either a
// boolean value or no value at all. Only BEFORE triggers declare a
// boolean return; for them a false value aborts the statement and a
// missing value counts as true.
type Result struct {
	HasValue bool
	Bool     bool
}

// TriggerFunc is the callable handle for a resolved trigger function.
// It is arbitrary user code: it may block and it may fail.
type TriggerFunc func(ctx context.Context, args []Arg) (Result, error)

// ResolvedFunction is the function registry's handle for one
// registered function.
type ResolvedFunction struct {
	ID         descpb.ID
	Name       string
	Language   Language
	ReturnType oid.Oid
	Call       TriggerFunc
}

// FunctionRegistry resolves named, signature-typed procedures to
// callable handles.
type FunctionRegistry interface {
	// ResolveFunction looks name up against the given argument
	// signature. When no such function exists it returns (nil, nil)
	// if allowMissing, an error otherwise.
	ResolveFunction(
		ctx context.Context, name string, argTypes []oid.Oid, allowMissing bool,
	) (*ResolvedFunction, error)

	// LookupFunction returns the handle for a function previously
	// referenced by ID from a trigger row.
	LookupFunction(ctx context.Context, id descpb.ID) (*ResolvedFunction, error)
}

// DropBehavior controls cascading during DROP.
type DropBehavior int

const (
	// DropDefault lets the dependency tracker apply its default.
	DropDefault DropBehavior = iota
	// DropRestrict refuses to drop when dependent objects exist.
	DropRestrict
	// DropCascade drops dependent objects along with the target.
	DropCascade
)

// DependencyTracker records object dependency edges and performs
// cascading deletion. Dropping a trigger goes through the tracker,
// which calls back into Registry.DeleteByID for the physical row
// removal; dropping a function a trigger depends on cascades the same
// way.
type DependencyTracker interface {
	RecordDependency(ctx context.Context, dependent, referenced descpb.ID) error
	DropObject(ctx context.Context, id descpb.ID, behavior DropBehavior) error
}
