// Copyright 2025 The Ridge Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package descpb

import "strconv"

// ID is the type of a catalog object identifier. Trigger rows, the
// functions they reference, and the objects a DDL statement targets
// are all identified by IDs from the same space.
type ID uint32

// InvalidID is the zero ID, used as the "unknown object" sentinel in
// command contexts and never assigned to a catalog row.
const InvalidID ID = 0

// String implements fmt.Stringer.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// SafeValue implements the redact.SafeValue interface.
func (id ID) SafeValue() {}
