// Copyright 2025 The Ridge Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package ctrigger

import (
	"context"

	"github.com/cockroachdb/logtags"
	"github.com/ridgedb/ridge/pkg/sql/catalog/ctrigdesc"
	"github.com/ridgedb/ridge/pkg/sql/catalog/descpb"
)

// The dispatch surface. Statement handlers call BeforeOrInsteadOf
// (and, per their semantics, BeforeOrInsteadOfAny) before performing
// the underlying operation, and After/AfterAny once it has executed
// successfully.
//
// Eligible trigger lists are snapshotted under a shared hold and the
// hold is released before any function runs: trigger functions are
// arbitrary user code and may block indefinitely.

// BeforeOrInsteadOf fires the BEFORE or INSTEAD OF triggers for the
// context's command tag, including the single trailing ANY entry.
// stop=true means the statement must not execute: either a BEFORE
// trigger returned false, or INSTEAD OF triggers ran in place of the
// command. The two families cannot coexist on one tag; creation
// enforces that, so dispatch does not re-check it.
func (r *Registry) BeforeOrInsteadOf(
	ctx context.Context, cmd *CommandContext,
) (stop bool, err error) {
	r.mu.RLock()
	before := r.resolveWithWildcardLocked(cmd.Tag, ctrigdesc.FiringModeBefore)
	var instead []descpb.ID
	if len(before) == 0 {
		instead = r.resolveWithWildcardLocked(cmd.Tag, ctrigdesc.FiringModeInsteadOf)
	}
	r.mu.RUnlock()
	return r.runBeforeOrInsteadOf(ctx, cmd, before, instead)
}

// BeforeOrInsteadOfAny performs the same protocol using only the ANY
// wildcard triggers. Call sites combine it with BeforeOrInsteadOf
// according to their own semantics; the tag-specific family fires
// first in the reference combination.
func (r *Registry) BeforeOrInsteadOfAny(
	ctx context.Context, cmd *CommandContext,
) (stop bool, err error) {
	r.mu.RLock()
	before := r.resolveLocked(ctrigdesc.AnyCommandTag, ctrigdesc.FiringModeBefore)
	var instead []descpb.ID
	if len(before) == 0 {
		instead = r.resolveLocked(ctrigdesc.AnyCommandTag, ctrigdesc.FiringModeInsteadOf)
	}
	r.mu.RUnlock()
	return r.runBeforeOrInsteadOf(ctx, cmd, before, instead)
}

// After fires the AFTER triggers for the context's command tag,
// including the single trailing ANY entry. It never stops anything:
// the command has already executed, and its outcome is not observed
// here.
func (r *Registry) After(ctx context.Context, cmd *CommandContext) error {
	r.mu.RLock()
	fns := r.resolveWithWildcardLocked(cmd.Tag, ctrigdesc.FiringModeAfter)
	r.mu.RUnlock()
	return r.runAfter(ctx, cmd, fns)
}

// AfterAny fires only the ANY wildcard AFTER triggers.
func (r *Registry) AfterAny(ctx context.Context, cmd *CommandContext) error {
	r.mu.RLock()
	fns := r.resolveLocked(ctrigdesc.AnyCommandTag, ctrigdesc.FiringModeAfter)
	r.mu.RUnlock()
	return r.runAfter(ctx, cmd, fns)
}

func (r *Registry) runBeforeOrInsteadOf(
	ctx context.Context, cmd *CommandContext, before, instead []descpb.ID,
) (stop bool, err error) {
	// The common case is a command with no triggers at all: it must
	// cost the failed lookups above and nothing more.
	if len(before) == 0 && len(instead) == 0 {
		return false, nil
	}
	ctx = logtags.AddTag(ctx, "cmdtrigger", cmd.Tag)
	acct := r.cfg.Monitor.MakeBoundAccount()
	defer acct.Close(ctx)

	if len(before) > 0 {
		for _, fnID := range before {
			cont, err := r.invoke(ctx, cmd, fnID, ctrigdesc.FiringModeBefore, &acct)
			if err != nil {
				return false, err
			}
			if !cont {
				// Deliberate abort. The remaining BEFORE triggers of
				// this batch are not called.
				return true, nil
			}
		}
		return false, nil
	}

	// INSTEAD OF has no abort signal: every eligible trigger runs,
	// and the statement is replaced whenever at least one did.
	for _, fnID := range instead {
		if _, err := r.invoke(ctx, cmd, fnID, ctrigdesc.FiringModeInsteadOf, &acct); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (r *Registry) runAfter(
	ctx context.Context, cmd *CommandContext, fns []descpb.ID,
) error {
	if len(fns) == 0 {
		return nil
	}
	ctx = logtags.AddTag(ctx, "cmdtrigger", cmd.Tag)
	acct := r.cfg.Monitor.MakeBoundAccount()
	defer acct.Close(ctx)

	for _, fnID := range fns {
		if _, err := r.invoke(ctx, cmd, fnID, ctrigdesc.FiringModeAfter, &acct); err != nil {
			return err
		}
	}
	return nil
}
