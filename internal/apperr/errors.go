// Package apperr defines the error taxonomy shared by every rewrite pass.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedDocument = errors.New("malformed document")
	ErrSchemaViolation   = errors.New("schema violation")
	ErrIOFailure         = errors.New("io failure")
	ErrInvalidPackage    = errors.New("invalid package")
	ErrInvalidArgument   = errors.New("invalid argument")
)

// PartError reports a failure while processing a single package part.
// errors.Is matches both the Kind sentinel and the underlying cause.
type PartError struct {
	Path string // part path relative to the package root
	Op   string // pass name, e.g. "theme"
	Kind error
	Err  error
}

func (e *PartError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PartError) Unwrap() []error {
	switch {
	case e.Err == nil:
		return []error{e.Kind}
	case e.Kind == nil:
		return []error{e.Err}
	}
	return []error{e.Kind, e.Err}
}

// NewPartError wraps err for the part at path, classifying it by the
// taxonomy sentinel already in its chain.
func NewPartError(op, path string, err error) *PartError {
	return &PartError{Path: path, Op: op, Kind: KindOf(err), Err: err}
}

// Malformed wraps err as an ErrMalformedDocument.
func Malformed(err error) error {
	return fmt.Errorf("%w: %w", ErrMalformedDocument, err)
}

// SchemaViolation builds an ErrSchemaViolation describing the missing structure.
func SchemaViolation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSchemaViolation, fmt.Sprintf(format, args...))
}

// IO wraps err as an ErrIOFailure.
func IO(err error) error {
	return fmt.Errorf("%w: %w", ErrIOFailure, err)
}

// KindOf returns the taxonomy sentinel carried by err, or nil.
func KindOf(err error) error {
	for _, k := range []error{ErrMalformedDocument, ErrSchemaViolation, ErrIOFailure, ErrInvalidPackage, ErrInvalidArgument} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
