// Copyright 2025 The Ridge Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package ctrigger

import "github.com/ridgedb/ridge/pkg/sql/catalog/descpb"

// CommandContext describes the DDL statement a dispatch call is
// processing. Statement handlers build one per statement and pass it
// explicitly through the dispatch chain; nothing here is persisted or
// shared across statements.
type CommandContext struct {
	// Tag is the command tag ("CREATE TABLE", ...). Empty when the
	// call site has none to supply.
	Tag string
	// ObjectID identifies the target object if it already exists;
	// descpb.InvalidID otherwise.
	ObjectID descpb.ID
	// SchemaName and ObjectName are empty when unknown.
	SchemaName string
	ObjectName string
	// Raw is the statement's internal representation. The dispatch
	// path never interprets it; it is forwarded as-is to
	// native-language trigger functions.
	Raw interface{}
}
