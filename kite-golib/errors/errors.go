package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Errorf is re-exported from fmt
var Errorf = fmt.Errorf

// New is an alias to Errorf
var New = Errorf

// WrapfOrNil annotates err with a message, returning nil when err is nil.
func WrapfOrNil(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.WithMessage(err, fmt.Sprintf(format, args...))
}

// Wrapf is WrapfOrNil if err != nil, and Errorf otherwise: it never returns nil
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return Errorf(format, args...)
	}
	return WrapfOrNil(err, format, args...)
}

// WithStack is re-exported from github.com/pkg/errors
var WithStack = errors.WithStack

// Cause is re-exported from github.com/pkg/errors
var Cause = errors.Cause

// Kind classifies failures that callers are expected to handle differently
// from plain I/O or collaborator errors.
type Kind int

const (
	// KindConfig marks a configuration that cannot produce a meaningful run.
	KindConfig Kind = iota + 1
	// KindShape marks sequences whose lengths disagree.
	KindShape
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "configuration error"
	case KindShape:
		return "shape error"
	default:
		return "error"
	}
}

type kindError struct {
	kind Kind
	msg  string
}

func (e *kindError) Error() string {
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

// ConfigErrorf returns a configuration error.
func ConfigErrorf(format string, args ...interface{}) error {
	return errors.WithStack(&kindError{kind: KindConfig, msg: fmt.Sprintf(format, args...)})
}

// ShapeErrorf returns a shape (length mismatch) error.
func ShapeErrorf(format string, args ...interface{}) error {
	return errors.WithStack(&kindError{kind: KindShape, msg: fmt.Sprintf(format, args...)})
}

// KindOf returns the Kind of err after unwrapping, or 0 if err carries none.
func KindOf(err error) Kind {
	if ke, ok := errors.Cause(err).(*kindError); ok {
		return ke.kind
	}
	return 0
}

// IsConfig reports whether err is (or wraps) a configuration error.
func IsConfig(err error) bool {
	return KindOf(err) == KindConfig
}

// IsShape reports whether err is (or wraps) a shape error.
func IsShape(err error) bool {
	return KindOf(err) == KindShape
}
