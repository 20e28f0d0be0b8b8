// Copyright 2025 The Ridge Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package ctrigger

import (
	"context"

	"github.com/ridgedb/ridge/pkg/sql/catalog/ctrigdesc"
	"github.com/ridgedb/ridge/pkg/sql/catalog/descpb"
	"github.com/ridgedb/ridge/pkg/sql/mon"
)

// Approximate footprint of one marshalled argument, charged to the
// batch's memory account on top of any string payload.
const argOverhead = 48

// invoke calls one trigger function with the command context and
// interprets its outcome for the given firing mode. The returned
// cont is false only when a BEFORE trigger votes to abort. Errors
// raised by the function itself propagate untouched.
func (r *Registry) invoke(
	ctx context.Context,
	cmd *CommandContext,
	fnID descpb.ID,
	mode ctrigdesc.FiringMode,
	acct *mon.BoundAccount,
) (cont bool, err error) {
	fn, err := r.cfg.Functions.LookupFunction(ctx, fnID)
	if err != nil {
		return false, err
	}
	args, err := marshalArgs(ctx, cmd, fn.Language, acct)
	if err != nil {
		return false, err
	}
	res, err := fn.Call(ctx, args)
	if err != nil {
		return false, err
	}
	if mode != ctrigdesc.FiringModeBefore {
		// AFTER and INSTEAD OF functions are registered as returning
		// no value; whatever came back is ignored.
		return true, nil
	}
	if !res.HasValue {
		// A null result counts as "continue".
		return true, nil
	}
	return res.Bool, nil
}

// marshalArgs builds the positional argument list for one invocation.
// Native-language functions get five arguments, the raw command
// representation last; every other language gets the leading four.
// Absent context fields become explicit nulls.
func marshalArgs(
	ctx context.Context, cmd *CommandContext, lang Language, acct *mon.BoundAccount,
) ([]Arg, error) {
	n := 4
	if lang == LanguageNative {
		n = 5
	}
	if err := acct.Grow(ctx, argsFootprint(cmd, n)); err != nil {
		return nil, err
	}
	args := make([]Arg, n)
	args[0] = textArg(cmd.Tag)
	args[1] = idArg(cmd.ObjectID)
	args[2] = textArg(cmd.SchemaName)
	args[3] = textArg(cmd.ObjectName)
	if lang == LanguageNative {
		args[4] = rawArg(cmd.Raw)
	}
	return args, nil
}

func argsFootprint(cmd *CommandContext, n int) int64 {
	return int64(n)*argOverhead +
		int64(len(cmd.Tag)) + int64(len(cmd.SchemaName)) + int64(len(cmd.ObjectName))
}

func textArg(s string) Arg {
	if s == "" {
		return Arg{Null: true}
	}
	return Arg{Text: s}
}

func idArg(id descpb.ID) Arg {
	if id == descpb.InvalidID {
		return Arg{Null: true}
	}
	return Arg{ID: id}
}

func rawArg(raw interface{}) Arg {
	if raw == nil {
		return Arg{Null: true}
	}
	return Arg{Raw: raw}
}
