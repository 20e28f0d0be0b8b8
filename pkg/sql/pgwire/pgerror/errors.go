// Copyright 2025 The Ridge Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package pgerror

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/ridgedb/ridge/pkg/sql/pgwire/pgcode"
)

// withCode decorates an error with a SQLSTATE code. The decoration
// survives wrapping; GetPGCode finds the innermost code in the chain.
type withCode struct {
	cause error
	code  pgcode.Code
}

var _ error = (*withCode)(nil)
var _ fmt.Formatter = (*withCode)(nil)

func (w *withCode) Error() string { return w.cause.Error() }
func (w *withCode) Cause() error  { return w.cause }
func (w *withCode) Unwrap() error { return w.cause }

func (w *withCode) Format(s fmt.State, verb rune) { errors.FormatError(w, s, verb) }

// FormatError implements errors.Formatter.
func (w *withCode) FormatError(p errors.Printer) (next error) {
	if p.Detail() {
		p.Printf("code: %s", w.code)
	}
	return w.cause
}

// New creates an error with a pg code.
func New(code pgcode.Code, msg string) error {
	return WithCandidateCode(errors.NewWithDepth(1, msg), code)
}

// Newf creates an error with a pg code and a formatted message.
func Newf(code pgcode.Code, format string, args ...interface{}) error {
	return WithCandidateCode(errors.NewWithDepthf(1, format, args...), code)
}

// Wrapf wraps an error, adding a prefix and a pg code. The code is
// only a candidate: if the cause already carries a code, that one
// wins.
func Wrapf(err error, code pgcode.Code, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return WithCandidateCode(errors.WrapWithDepthf(1, err, format, args...), code)
}

// WithCandidateCode decorates err with a pg code.
func WithCandidateCode(err error, code pgcode.Code) error {
	if err == nil {
		return nil
	}
	return &withCode{cause: err, code: code}
}

// GetPGCode extracts the SQLSTATE code from an error chain. Codes
// attached closer to the original error take precedence over codes
// added by wrapping. Assertion failures always report XX000. Errors
// without a code report Uncategorized.
func GetPGCode(err error) pgcode.Code {
	if err == nil {
		return pgcode.Uncategorized
	}
	if errors.HasAssertionFailure(err) {
		return pgcode.Internal
	}
	code := pgcode.Uncategorized
	for c := err; c != nil; c = errors.UnwrapOnce(c) {
		if w, ok := c.(*withCode); ok {
			code = w.code
		}
	}
	return code
}

// HasCode returns true iff the error chain carries the given code.
func HasCode(err error, code pgcode.Code) bool {
	return GetPGCode(err) == code
}
