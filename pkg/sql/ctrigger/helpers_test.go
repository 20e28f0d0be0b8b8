// Copyright 2025 The Ridge Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package ctrigger_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/lib/pq/oid"
	"github.com/ridgedb/ridge/pkg/sql/catalog/descpb"
	"github.com/ridgedb/ridge/pkg/sql/ctrigger"
	"github.com/ridgedb/ridge/pkg/sql/mon"
)

const (
	admin    = ctrigger.Principal("admin")
	dbOwner  = ctrigger.Principal("owner")
	ordinary = ctrigger.Principal("bob")
)

// fakeAuth grants superuser to "admin" and database ownership to
// "owner".
type fakeAuth struct{}

func (fakeAuth) IsSuperuser(_ context.Context, p ctrigger.Principal) (bool, error) {
	return p == admin, nil
}

func (fakeAuth) IsDatabaseOwner(_ context.Context, p ctrigger.Principal) (bool, error) {
	return p == dbOwner, nil
}

// fakeFuncRegistry registers trigger functions by name. A function
// resolves only under the signature its language implies: five
// arguments for native, four for procedural.
type fakeFuncRegistry struct {
	nextID descpb.ID
	byName map[string]*ctrigger.ResolvedFunction
	byID   map[descpb.ID]*ctrigger.ResolvedFunction
}

func newFakeFuncRegistry() *fakeFuncRegistry {
	return &fakeFuncRegistry{
		nextID: 10000,
		byName: make(map[string]*ctrigger.ResolvedFunction),
		byID:   make(map[descpb.ID]*ctrigger.ResolvedFunction),
	}
}

func (f *fakeFuncRegistry) register(
	name string, lang ctrigger.Language, retType oid.Oid, call ctrigger.TriggerFunc,
) *ctrigger.ResolvedFunction {
	fn := &ctrigger.ResolvedFunction{
		ID:         f.nextID,
		Name:       name,
		Language:   lang,
		ReturnType: retType,
		Call:       call,
	}
	f.nextID++
	f.byName[name] = fn
	f.byID[fn.ID] = fn
	return fn
}

func (f *fakeFuncRegistry) ResolveFunction(
	_ context.Context, name string, argTypes []oid.Oid, allowMissing bool,
) (*ctrigger.ResolvedFunction, error) {
	fn, ok := f.byName[name]
	if ok {
		switch fn.Language {
		case ctrigger.LanguageNative:
			ok = len(argTypes) == 5
		default:
			ok = len(argTypes) == 4
		}
	}
	if !ok {
		if allowMissing {
			return nil, nil
		}
		return nil, errors.Newf("function %s does not exist", name)
	}
	return fn, nil
}

func (f *fakeFuncRegistry) LookupFunction(
	_ context.Context, id descpb.ID,
) (*ctrigger.ResolvedFunction, error) {
	if fn, ok := f.byID[id]; ok {
		return fn, nil
	}
	return nil, errors.Newf("function %d does not exist", id)
}

// fakeDeps records dependency edges and implements cascading drops by
// calling back into the registry, the way the real tracker does.
type fakeDeps struct {
	r *ctrigger.Registry
	// edges maps dependent -> referenced.
	edges map[descpb.ID]descpb.ID
	// recordErr, when set, fails every RecordDependency call.
	recordErr error
	// onDropObject, when set, runs at the top of DropObject.
	onDropObject func(id descpb.ID)
}

func newFakeDeps() *fakeDeps {
	return &fakeDeps{edges: make(map[descpb.ID]descpb.ID)}
}

func (f *fakeDeps) RecordDependency(_ context.Context, dependent, referenced descpb.ID) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.edges[dependent] = referenced
	return nil
}

func (f *fakeDeps) DropObject(
	ctx context.Context, id descpb.ID, _ ctrigger.DropBehavior,
) error {
	if f.onDropObject != nil {
		f.onDropObject(id)
	}
	// Objects depending on id go first (a function drop cascades to
	// its triggers), then id itself if it is a trigger row.
	for dep, ref := range f.edges {
		if ref == id {
			delete(f.edges, dep)
			if err := f.r.DeleteByID(ctx, dep); err != nil {
				return err
			}
		}
	}
	if _, ok := f.edges[id]; ok {
		delete(f.edges, id)
		return f.r.DeleteByID(ctx, id)
	}
	return nil
}

// testEnv wires a registry with fakes and a record of trigger
// function invocations.
type testEnv struct {
	registry *ctrigger.Registry
	funcs    *fakeFuncRegistry
	deps     *fakeDeps
	monitor  *mon.BytesMonitor
	notices  []string
	// calls records trigger function invocations by function name.
	calls []string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithMonitor(t, mon.NewUnlimitedMonitor("test"))
}

func newTestEnvWithMonitor(t *testing.T, monitor *mon.BytesMonitor) *testEnv {
	t.Helper()
	env := &testEnv{
		funcs:   newFakeFuncRegistry(),
		deps:    newFakeDeps(),
		monitor: monitor,
	}
	env.registry = ctrigger.NewRegistry(ctrigger.Config{
		Functions: env.funcs,
		Auth:      fakeAuth{},
		Deps:      env.deps,
		Monitor:   env.monitor,
		BufferClientNotice: func(_ context.Context, notice string) {
			env.notices = append(env.notices, notice)
		},
	})
	env.deps.r = env.registry
	return env
}

// boolFunc registers a procedural bool-returning function suitable
// for BEFORE triggers; ret is the continue/abort vote.
func (env *testEnv) boolFunc(name string, ret bool) *ctrigger.ResolvedFunction {
	return env.funcs.register(name, ctrigger.LanguageProcedural, oid.T_bool,
		func(_ context.Context, _ []ctrigger.Arg) (ctrigger.Result, error) {
			env.calls = append(env.calls, name)
			return ctrigger.Result{HasValue: true, Bool: ret}, nil
		})
}

// voidFunc registers a procedural void function suitable for AFTER
// and INSTEAD OF triggers.
func (env *testEnv) voidFunc(name string) *ctrigger.ResolvedFunction {
	return env.funcs.register(name, ctrigger.LanguageProcedural, oid.T_void,
		func(_ context.Context, _ []ctrigger.Arg) (ctrigger.Result, error) {
			env.calls = append(env.calls, name)
			return ctrigger.Result{}, nil
		})
}

// errFunc registers a procedural void function that fails.
func (env *testEnv) errFunc(name string, err error) *ctrigger.ResolvedFunction {
	return env.funcs.register(name, ctrigger.LanguageProcedural, oid.T_void,
		func(_ context.Context, _ []ctrigger.Arg) (ctrigger.Result, error) {
			env.calls = append(env.calls, name)
			return ctrigger.Result{}, err
		})
}
