// Copyright 2025 The Ridge Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package mon provides lightweight memory accounting for transient
// per-batch allocations. A trigger dispatch batch opens a BoundAccount
// against the session's monitor, grows it while marshalling arguments,
// and clears it when the batch completes, normally or by error. This
// bounds memory growth across triggers firing repeatedly within one
// long session.
package mon

import (
	"context"

	"github.com/ridgedb/ridge/pkg/sql/pgwire/pgcode"
	"github.com/ridgedb/ridge/pkg/sql/pgwire/pgerror"
	"github.com/ridgedb/ridge/pkg/util/log"
	"github.com/ridgedb/ridge/pkg/util/syncutil"
)

// BytesMonitor tracks the aggregate transient memory registered by
// all accounts bound to it and enforces a budget.
type BytesMonitor struct {
	name string

	mu struct {
		syncutil.Mutex
		curAllocated int64
		maxAllocated int64
		numAccounts  int
	}

	// limit caps the sum of all bound allocations; zero or negative
	// means unlimited.
	limit int64
}

// NewMonitor creates a BytesMonitor with the given budget.
func NewMonitor(name string, limit int64) *BytesMonitor {
	return &BytesMonitor{name: name, limit: limit}
}

// NewUnlimitedMonitor creates a BytesMonitor without a budget. Used
// when the embedding engine does its own accounting.
func NewUnlimitedMonitor(name string) *BytesMonitor {
	return NewMonitor(name, 0)
}

// AllocBytes returns the current aggregate allocation.
func (mm *BytesMonitor) AllocBytes() int64 {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	return mm.mu.curAllocated
}

// MaximumBytes returns the high-water mark of the aggregate
// allocation.
func (mm *BytesMonitor) MaximumBytes() int64 {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	return mm.mu.maxAllocated
}

// Stop asserts that all accounts bound to the monitor were closed.
func (mm *BytesMonitor) Stop(ctx context.Context) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	if mm.mu.numAccounts != 0 {
		log.Fatalf(ctx, "%s monitor stopped with %d open account(s)", mm.name, mm.mu.numAccounts)
	}
	if mm.mu.curAllocated != 0 {
		log.Fatalf(ctx, "%s monitor stopped with %d byte(s) still allocated", mm.name, mm.mu.curAllocated)
	}
}

func (mm *BytesMonitor) reserve(n int64) error {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	if mm.limit > 0 && mm.mu.curAllocated+n > mm.limit {
		return pgerror.Newf(pgcode.OutOfMemory,
			"%s: memory budget exceeded: %d bytes requested, %d currently allocated, %d bytes in budget",
			mm.name, n, mm.mu.curAllocated, mm.limit)
	}
	mm.mu.curAllocated += n
	if mm.mu.curAllocated > mm.mu.maxAllocated {
		mm.mu.maxAllocated = mm.mu.curAllocated
	}
	return nil
}

func (mm *BytesMonitor) release(n int64) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.mu.curAllocated -= n
}

// BoundAccount tracks the transient allocations of one batch of work
// against a monitor.
type BoundAccount struct {
	used int64
	mon  *BytesMonitor
}

// MakeBoundAccount creates a BoundAccount connected to the monitor.
func (mm *BytesMonitor) MakeBoundAccount() BoundAccount {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.mu.numAccounts++
	return BoundAccount{mon: mm}
}

// Used returns the number of bytes currently registered.
func (b *BoundAccount) Used() int64 {
	return b.used
}

// Grow registers n more bytes with the account's monitor.
func (b *BoundAccount) Grow(ctx context.Context, n int64) error {
	if b.mon == nil {
		return nil
	}
	if err := b.mon.reserve(n); err != nil {
		return err
	}
	b.used += n
	return nil
}

// Shrink releases n bytes back to the monitor. Releasing more than
// was registered indicates an accounting bug and is fatal.
func (b *BoundAccount) Shrink(ctx context.Context, n int64) {
	if b.mon == nil {
		return
	}
	if n > b.used {
		log.Fatalf(ctx, "%s: shrinking by %d bytes, only %d registered", b.mon.name, n, b.used)
	}
	b.mon.release(n)
	b.used -= n
}

// Clear releases everything registered with the account. The account
// remains usable. Safe to call in a defer on every exit path.
func (b *BoundAccount) Clear(ctx context.Context) {
	if b.mon == nil {
		return
	}
	b.mon.release(b.used)
	b.used = 0
}

// Close releases everything and detaches the account from its
// monitor. The account must not be used afterwards.
func (b *BoundAccount) Close(ctx context.Context) {
	if b.mon == nil {
		return
	}
	b.Clear(ctx)
	b.mon.mu.Lock()
	b.mon.mu.numAccounts--
	b.mon.mu.Unlock()
	b.mon = nil
}
