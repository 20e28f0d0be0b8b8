// Copyright 2025 The Ridge Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package ctrigger

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/lib/pq/oid"
	"github.com/ridgedb/ridge/pkg/sql/catalog/ctrigdesc"
	"github.com/ridgedb/ridge/pkg/sql/catalog/descpb"
	"github.com/ridgedb/ridge/pkg/sql/pgwire/pgcode"
	"github.com/ridgedb/ridge/pkg/sql/pgwire/pgerror"
	"github.com/ridgedb/ridge/pkg/util/log"
)

// The admin surface: the statement-time path that creates, drops,
// reconfigures, and renames command triggers. Every operation checks
// permissions first and then holds adminMu across its whole
// check-then-act sequence, so no other session can interleave a
// conflicting definition or deletion between a check and the write it
// guards; drops keep adminMu held across the dependency tracker's
// cascade, which reenters DeleteByID under mu only. None of these
// operations ever calls into a trigger function.

func (r *Registry) checkAuth(ctx context.Context, p Principal) error {
	if ok, err := r.cfg.Auth.IsSuperuser(ctx, p); err != nil {
		return err
	} else if ok {
		return nil
	}
	if ok, err := r.cfg.Auth.IsDatabaseOwner(ctx, p); err != nil {
		return err
	} else if ok {
		return nil
	}
	return pgerror.Newf(pgcode.InsufficientPrivilege,
		"must be superuser or owner of the current database to manage command triggers")
}

// CreateCommandTrigger registers trigger name against each of the
// given command tags, bound to the named function. A single statement
// may list several tags; each produces its own trigger row. Rows
// inserted for earlier tags are not removed when a later tag fails —
// undoing them is the enclosing transaction's business.
func (r *Registry) CreateCommandTrigger(
	ctx context.Context,
	p Principal,
	commandTags []string,
	name string,
	funcName string,
	mode ctrigdesc.FiringMode,
) error {
	if err := r.checkAuth(ctx, p); err != nil {
		return err
	}

	// Resolve the function against the native five-argument signature
	// first, then the procedural four-argument one.
	fn, err := r.cfg.Functions.ResolveFunction(ctx, funcName, NativeTriggerArgTypes, true /* allowMissing */)
	if err != nil {
		return err
	}
	if fn == nil {
		fn, err = r.cfg.Functions.ResolveFunction(ctx, funcName, ProceduralTriggerArgTypes, true /* allowMissing */)
		if err != nil {
			return err
		}
	}
	if fn == nil {
		return pgerror.Newf(pgcode.UndefinedFunction,
			"function %s() does not exist", funcName)
	}

	r.adminMu.Lock()
	defer r.adminMu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tag := range commandTags {
		if err := r.createOneLocked(ctx, tag, name, fn, mode); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) createOneLocked(
	ctx context.Context, tag, name string, fn *ResolvedFunction, mode ctrigdesc.FiringMode,
) error {
	r.mu.AssertHeld()
	if existing := r.mu.triggers.GetByName(tag, name); existing != nil {
		return pgerror.Newf(pgcode.DuplicateObject,
			"command trigger %q for command %q already exists", name, tag)
	}
	if err := r.checkModeExclusivityLocked(tag, mode); err != nil {
		return err
	}
	if err := checkReturnType(fn, mode); err != nil {
		return err
	}
	d := &ctrigdesc.Descriptor{
		Command: tag,
		Name:    name,
		FuncID:  fn.ID,
		Mode:    mode,
		State:   ctrigdesc.StateEnabled,
	}
	id, err := r.mu.triggers.Insert(d)
	if err != nil {
		return err
	}
	// The trigger's lifetime follows its function: the recorded edge
	// makes dropping the function cascade to this row. A row without
	// the edge would outlive its function, so undo the insert when
	// recording fails.
	if err := r.cfg.Deps.RecordDependency(ctx, id, fn.ID); err != nil {
		if delErr := r.mu.triggers.DeleteByID(id); delErr != nil {
			return errors.CombineErrors(err, delErr)
		}
		return err
	}
	log.Infof(ctx, "created %v command trigger %s on %s", mode, name, tag)
	return nil
}

// checkModeExclusivityLocked enforces that a command tag has either
// BEFORE/AFTER triggers or INSTEAD OF triggers, never both families.
func (r *Registry) checkModeExclusivityLocked(tag string, mode ctrigdesc.FiringMode) error {
	r.mu.AssertHeld()
	for _, d := range r.mu.triggers.ScanCommand(tag) {
		switch {
		case mode == ctrigdesc.FiringModeInsteadOf && d.Mode != ctrigdesc.FiringModeInsteadOf:
			return pgerror.Newf(pgcode.FeatureNotSupported,
				"command %q already has %v triggers, cannot add an INSTEAD OF trigger",
				tag, d.Mode)
		case mode != ctrigdesc.FiringModeInsteadOf && d.Mode == ctrigdesc.FiringModeInsteadOf:
			return pgerror.Newf(pgcode.FeatureNotSupported,
				"command %q already has INSTEAD OF triggers, cannot add a %v trigger",
				tag, mode)
		}
	}
	return nil
}

// checkReturnType enforces the return-type contract: boolean for
// BEFORE (the value is the continue/abort vote), no value for AFTER
// and INSTEAD OF.
func checkReturnType(fn *ResolvedFunction, mode ctrigdesc.FiringMode) error {
	if mode == ctrigdesc.FiringModeBefore {
		if fn.ReturnType != oid.T_bool {
			return pgerror.Newf(pgcode.InvalidObjectDefinition,
				"function %s must return type bool", fn.Name)
		}
		return nil
	}
	if fn.ReturnType != oid.T_void {
		return pgerror.Newf(pgcode.InvalidObjectDefinition,
			"function %s must return type void", fn.Name)
	}
	return nil
}

// DropCommandTriggers drops trigger name from each of the given
// command tags via a cascading object deletion through the dependency
// tracker. With missingOK, an absent (tag, name) produces a client
// notice and ends processing: the remaining tags in the list are not
// visited. Without it, an absent pair is an error.
func (r *Registry) DropCommandTriggers(
	ctx context.Context,
	p Principal,
	commandTags []string,
	name string,
	missingOK bool,
	behavior DropBehavior,
) error {
	if err := r.checkAuth(ctx, p); err != nil {
		return err
	}
	// adminMu stays held across the lookup and the cascade below:
	// without it a second session could drop the same row between the
	// two, and this session's cascade would then fail an assertion on
	// a row that legitimately vanished.
	r.adminMu.Lock()
	defer r.adminMu.Unlock()
	for _, tag := range commandTags {
		r.mu.RLock()
		var id descpb.ID
		if d := r.mu.triggers.GetByName(tag, name); d != nil {
			id = d.ID
		}
		r.mu.RUnlock()
		if id == descpb.InvalidID {
			if missingOK {
				r.cfg.BufferClientNotice(ctx, fmt.Sprintf(
					"command trigger %q for command %q does not exist, skipping", name, tag))
				return nil
			}
			return pgerror.Newf(pgcode.UndefinedObject,
				"command trigger %q for command %q does not exist", name, tag)
		}
		// The tracker deletes the object graph rooted at the trigger
		// and calls back into DeleteByID for the physical row.
		if err := r.cfg.Deps.DropObject(ctx, id, behavior); err != nil {
			return err
		}
	}
	return nil
}

// SetCommandTriggerEnabled reconfigures when (and whether) an
// existing trigger fires. Disabling an already-disabled trigger is
// not an error.
func (r *Registry) SetCommandTriggerEnabled(
	ctx context.Context,
	p Principal,
	commandTag string,
	name string,
	state ctrigdesc.EnabledState,
) error {
	if err := r.checkAuth(ctx, p); err != nil {
		return err
	}
	r.adminMu.Lock()
	defer r.adminMu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mu.triggers.SetEnabledState(commandTag, name, state)
}

// RenameCommandTrigger renames (commandTag, oldName) to newName in
// place; the trigger keeps its identity, function, and firing mode.
func (r *Registry) RenameCommandTrigger(
	ctx context.Context,
	p Principal,
	commandTag string,
	oldName string,
	newName string,
) error {
	if err := r.checkAuth(ctx, p); err != nil {
		return err
	}
	r.adminMu.Lock()
	defer r.adminMu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	if d := r.mu.triggers.GetByName(commandTag, newName); d != nil {
		return pgerror.Newf(pgcode.DuplicateObject,
			"command trigger %q for command %q already exists", newName, commandTag)
	}
	return r.mu.triggers.Rename(commandTag, oldName, newName)
}
