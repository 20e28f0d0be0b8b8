// Copyright 2025 The Ridge Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package ctrigger implements the command trigger registry: the
// catalog of user-defined hooks on DDL commands, and the dispatch
// engine that decides which hooks fire for a given statement, in what
// order, and with what effect on the statement's execution.
package ctrigger

import (
	"context"

	"github.com/ridgedb/ridge/pkg/sql/catalog/ctrigcat"
	"github.com/ridgedb/ridge/pkg/sql/catalog/ctrigdesc"
	"github.com/ridgedb/ridge/pkg/sql/catalog/descpb"
	"github.com/ridgedb/ridge/pkg/sql/mon"
	"github.com/ridgedb/ridge/pkg/util/log"
	"github.com/ridgedb/ridge/pkg/util/syncutil"
)

// Config carries the registry's collaborators.
type Config struct {
	Functions FunctionRegistry
	Auth      AuthChecker
	Deps      DependencyTracker

	// Monitor accounts for transient allocations made while
	// marshalling arguments during dispatch. Optional; an unlimited
	// monitor is used when nil.
	Monitor *mon.BytesMonitor

	// BufferClientNotice delivers non-fatal notices to the client
	// (e.g. DROP ... with missing_ok on an absent trigger). Optional;
	// defaults to the log.
	BufferClientNotice func(ctx context.Context, notice string)

	// FirstID seeds trigger row ID allocation. Optional.
	FirstID descpb.ID
}

// Registry is the shared command trigger catalog of one database.
// Multiple sessions read and mutate it concurrently: admin operations
// serialize on adminMu across their whole check-then-act sequence,
// resolution takes a shared hold on mu, and no hold is ever kept
// across a trigger function invocation.
type Registry struct {
	cfg Config

	// adminMu serializes the admin operations (create, drop,
	// configure, rename) end to end. Dropping spans a dependency
	// tracker call that reenters DeleteByID, so its check-then-act
	// cannot run under mu alone; adminMu is what keeps two sessions
	// from resolving the same row. Acquired before mu, never inside
	// it.
	adminMu syncutil.Mutex

	mu struct {
		syncutil.RWMutex
		triggers *ctrigcat.Collection
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg Config) *Registry {
	if cfg.Monitor == nil {
		cfg.Monitor = mon.NewUnlimitedMonitor("command-triggers")
	}
	if cfg.BufferClientNotice == nil {
		cfg.BufferClientNotice = func(ctx context.Context, notice string) {
			log.Infof(ctx, "notice: %s", notice)
		}
	}
	r := &Registry{cfg: cfg}
	r.mu.triggers = ctrigcat.NewCollection(cfg.FirstID)
	return r
}

// DeleteByID physically removes one trigger row. It is the callback
// the dependency tracker uses while cascading a deletion; the row is
// expected to exist.
func (r *Registry) DeleteByID(ctx context.Context, id descpb.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mu.triggers.DeleteByID(id)
}

// FindCommandTrigger returns a copy of the trigger with the given
// natural key, if any.
func (r *Registry) FindCommandTrigger(
	ctx context.Context, command, name string,
) (ctrigdesc.Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d := r.mu.triggers.GetByName(command, name); d != nil {
		return *d, true
	}
	return ctrigdesc.Descriptor{}, false
}

// Triggers returns a snapshot of all live triggers in (command, name)
// order. This backs the SHOW COMMAND TRIGGERS surface.
func (r *Registry) Triggers(ctx context.Context) []ctrigdesc.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]ctrigdesc.Descriptor, 0, r.mu.triggers.Len())
	_ = r.mu.triggers.ForEach(func(d *ctrigdesc.Descriptor) error {
		res = append(res, *d)
		return nil
	})
	return res
}

// resolveLocked returns the functions of the enabled triggers on
// (command, mode), ordered by trigger name. The order is a documented
// contract: it is the natural order of the (command, name) index.
func (r *Registry) resolveLocked(command string, mode ctrigdesc.FiringMode) []descpb.ID {
	r.mu.AssertRHeld()
	res := []descpb.ID{}
	for _, d := range r.mu.triggers.ScanCommand(command) {
		// TODO: differentiate REPLICA ONLY and ALWAYS once the session
		// replication role is plumbed through; only DISABLED filters
		// today.
		if d.Mode != mode || d.IsDisabled() {
			continue
		}
		res = append(res, d.FuncID)
	}
	return res
}

// resolveWithWildcardLocked is resolveLocked plus the wildcard: if
// any enabled ANY trigger exists for the mode, the first one (in the
// ANY group's own name order) is appended as a single final entry.
// Additional ANY triggers are not consulted on this path.
func (r *Registry) resolveWithWildcardLocked(
	command string, mode ctrigdesc.FiringMode,
) []descpb.ID {
	res := r.resolveLocked(command, mode)
	if command == ctrigdesc.AnyCommandTag {
		return res
	}
	if any := r.resolveLocked(ctrigdesc.AnyCommandTag, mode); len(any) > 0 {
		res = append(res, any[0])
	}
	return res
}

// ResolveTriggerFunctions returns the ordered functions eligible for
// (command, mode), without the wildcard entry. The result is empty,
// never nil, when nothing matches.
func (r *Registry) ResolveTriggerFunctions(
	ctx context.Context, command string, mode ctrigdesc.FiringMode,
) []descpb.ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolveLocked(command, mode)
}

// ResolveTriggerFunctionsWithWildcard is ResolveTriggerFunctions with
// the single trailing ANY entry appended when one exists.
func (r *Registry) ResolveTriggerFunctionsWithWildcard(
	ctx context.Context, command string, mode ctrigdesc.FiringMode,
) []descpb.ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolveWithWildcardLocked(command, mode)
}
