// Copyright 2025 The Ridge Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package ctrigcat implements the catalog row store for command
// triggers: an ordered (command, name) index plus a by-ID index over
// ctrigdesc descriptors.
package ctrigcat

import (
	"github.com/cockroachdb/errors"
	"github.com/google/btree"
	"github.com/ridgedb/ridge/pkg/sql/catalog/ctrigdesc"
	"github.com/ridgedb/ridge/pkg/sql/catalog/descpb"
	"github.com/ridgedb/ridge/pkg/sql/pgwire/pgcode"
	"github.com/ridgedb/ridge/pkg/sql/pgwire/pgerror"
)

const degree = 8

// byNameLess orders descriptors by (command, name). Name order within
// a command is the resolution order contract: triggers fire in the
// order their names sort, the way the underlying index stores them.
func byNameLess(a, b *ctrigdesc.Descriptor) bool {
	if a.Command != b.Command {
		return a.Command < b.Command
	}
	return a.Name < b.Name
}

// Collection is a lookup structure for command trigger descriptors,
// indexed by natural key (command, name) and by ID. It is not
// synchronized; the registry that owns it serializes access.
type Collection struct {
	byName *btree.BTreeG[*ctrigdesc.Descriptor]
	byID   map[descpb.ID]*ctrigdesc.Descriptor
	nextID descpb.ID
}

// NewCollection creates an empty Collection. IDs for inserted rows
// are drawn from a counter starting at firstID.
func NewCollection(firstID descpb.ID) *Collection {
	if firstID == descpb.InvalidID {
		firstID = 1
	}
	return &Collection{
		byName: btree.NewG(degree, byNameLess),
		byID:   make(map[descpb.ID]*ctrigdesc.Descriptor),
		nextID: firstID,
	}
}

// Len returns the number of live trigger rows.
func (c *Collection) Len() int {
	return c.byName.Len()
}

// Insert adds one trigger row, assigning and returning its ID. The
// uniqueness of (command, name) has normally been checked by the
// caller already; the index rejects a duplicate regardless.
func (c *Collection) Insert(d *ctrigdesc.Descriptor) (descpb.ID, error) {
	if err := d.Validate(); err != nil {
		return descpb.InvalidID, err
	}
	if _, ok := c.byName.Get(d); ok {
		return descpb.InvalidID, pgerror.Newf(pgcode.DuplicateObject,
			"command trigger %q for command %q already exists", d.Name, d.Command)
	}
	d.ID = c.nextID
	c.nextID++
	c.byName.ReplaceOrInsert(d)
	c.byID[d.ID] = d
	return d.ID, nil
}

// GetByName returns the descriptor with the given natural key, or nil.
// The returned descriptor is the stored row; it must not be mutated
// except through Collection methods.
func (c *Collection) GetByName(command, name string) *ctrigdesc.Descriptor {
	key := &ctrigdesc.Descriptor{Command: command, Name: name}
	if d, ok := c.byName.Get(key); ok {
		return d
	}
	return nil
}

// GetByID returns the descriptor with the given ID, or nil.
func (c *Collection) GetByID(id descpb.ID) *ctrigdesc.Descriptor {
	return c.byID[id]
}

// DeleteByID removes the row with the given ID. The ID comes from
// dependency bookkeeping; not finding the row means that bookkeeping
// is broken, which is unrecoverable.
func (c *Collection) DeleteByID(id descpb.ID) error {
	d, ok := c.byID[id]
	if !ok {
		return errors.AssertionFailedf("could not find tuple for command trigger %d", id)
	}
	c.byName.Delete(d)
	delete(c.byID, id)
	return nil
}

// SetEnabledState updates the firing configuration of the row with
// the given natural key.
func (c *Collection) SetEnabledState(
	command, name string, state ctrigdesc.EnabledState,
) error {
	d := c.GetByName(command, name)
	if d == nil {
		return pgerror.Newf(pgcode.UndefinedObject,
			"command trigger %q for command %q does not exist", name, command)
	}
	d.State = state
	return nil
}

// Rename changes the name of the row with key (command, oldName). The
// caller must have verified that (command, newName) is free. Renaming
// changes the row's index position, so the row is removed and
// reinserted.
func (c *Collection) Rename(command, oldName, newName string) error {
	d := c.GetByName(command, oldName)
	if d == nil {
		return pgerror.Newf(pgcode.UndefinedObject,
			"command trigger %q for command %q does not exist", oldName, command)
	}
	c.byName.Delete(d)
	d.Name = newName
	c.byName.ReplaceOrInsert(d)
	return nil
}

// ScanCommand returns all rows for one command tag in name order.
func (c *Collection) ScanCommand(command string) []*ctrigdesc.Descriptor {
	var res []*ctrigdesc.Descriptor
	pivot := &ctrigdesc.Descriptor{Command: command}
	c.byName.AscendGreaterOrEqual(pivot, func(d *ctrigdesc.Descriptor) bool {
		if d.Command != command {
			return false
		}
		res = append(res, d)
		return true
	})
	return res
}

// ForEach visits every row in (command, name) order.
func (c *Collection) ForEach(fn func(d *ctrigdesc.Descriptor) error) error {
	var err error
	c.byName.Ascend(func(d *ctrigdesc.Descriptor) bool {
		err = fn(d)
		return err == nil
	})
	return err
}
