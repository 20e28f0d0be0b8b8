// Copyright 2025 The Ridge Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package log provides context-aware structured logging. Messages are
// prefixed with the logtags carried by the context, and formatting
// goes through redact so that user-controlled values (object names,
// trigger names) are marked for redaction in collected logs.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
)

// Severity of a log entry.
type Severity int

const (
	// SeverityInfo is for informational messages.
	SeverityInfo Severity = iota
	// SeverityWarning is for unexpected but recoverable situations.
	SeverityWarning
	// SeverityError is for errors that the caller also reports.
	SeverityError
	// SeverityFatal terminates the process.
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "I"
	case SeverityWarning:
		return "W"
	case SeverityError:
		return "E"
	case SeverityFatal:
		return "F"
	}
	return "?"
}

var logging struct {
	mu sync.Mutex
	w  io.Writer
	// exitFunc is overridden in tests of Fatalf.
	exitFunc func(int)
}

func init() {
	logging.w = os.Stderr
	logging.exitFunc = os.Exit
}

// SetOutput redirects log output, returning the previous writer. Used
// by tests that assert on emitted entries.
func SetOutput(w io.Writer) io.Writer {
	logging.mu.Lock()
	defer logging.mu.Unlock()
	prev := logging.w
	logging.w = w
	return prev
}

func output(ctx context.Context, sev Severity, format string, args ...interface{}) {
	var buf redact.StringBuilder
	if tags := logtags.FromContext(ctx); tags != nil {
		buf.Printf("[%v] ", tags.String())
	}
	buf.Printf(format, args...)
	logging.mu.Lock()
	defer logging.mu.Unlock()
	fmt.Fprintf(logging.w, "%s %s\n", sev, buf.RedactableString().StripMarkers())
}

// Infof logs an informational message.
func Infof(ctx context.Context, format string, args ...interface{}) {
	output(ctx, SeverityInfo, format, args...)
}

// Warningf logs a warning.
func Warningf(ctx context.Context, format string, args ...interface{}) {
	output(ctx, SeverityWarning, format, args...)
}

// Errorf logs an error.
func Errorf(ctx context.Context, format string, args ...interface{}) {
	output(ctx, SeverityError, format, args...)
}

// Fatalf logs and terminates the process. It is reserved for internal
// inconsistencies from which no recovery is possible.
func Fatalf(ctx context.Context, format string, args ...interface{}) {
	output(ctx, SeverityFatal, format, args...)
	logging.mu.Lock()
	exit := logging.exitFunc
	logging.mu.Unlock()
	exit(2)
}
