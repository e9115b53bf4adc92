package pkg

// Sentinel errors shared by the yaak-tmpl packages that sit outside the
// template language itself (loading, encoding, key storage, CLI).
// These errors can be tested using errors.Is.

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Error represents a chain of errors, innermost first.
type Error []error

// ErrReadInput is returned when reading input fails.
//
// This error should be wrapped with the underlying I/O error
// to preserve the error chain.
var ErrReadInput = MakeErrorf("failed to read input")

// ErrWriteOutput is returned when writing output fails.
var ErrWriteOutput = MakeErrorf("failed to write output")

// ErrJSONMarshal is returned when JSON encoding or decoding fails.
var ErrJSONMarshal = MakeErrorf("JSON marshal error")

// ErrYAMLMarshal is returned when YAML encoding or decoding fails.
var ErrYAMLMarshal = MakeErrorf("YAML marshal error")

// ErrInvalidFormat is returned when an invalid format is specified.
//
// This error should be wrapped with additional context that specifies the
// invalid format along with a list of valid formats.
var ErrInvalidFormat = MakeErrorf("invalid format")

// ErrUnknownModel is returned when a document declares a model kind that
// cannot be loaded.
var ErrUnknownModel = MakeErrorf("unknown model")

// ErrNotFormatted is returned by format checks when the input differs from
// its formatted form.
var ErrNotFormatted = MakeErrorf("input is not formatted")

// MakeError constructs an Error from the given errors.
// The errors are stored in the order they are provided:
// the first argument is the innermost error in the chain.
// Nil is returned if no errors are provided.
func MakeError(errs ...error) Error {
	var e Error

	for _, err := range errs {
		if err != nil {
			e = append(e, UnwrapErrors(err)...)
		}
	}

	return e
}

// MakeErrorf constructs an Error from a formatted error message.
func MakeErrorf(format string, args ...any) Error {
	return MakeError(fmt.Errorf(format, args...))
}

// Error returns a concatenated string representation of the outermost
// message of each link in the chain, separated by ": ".
func (e Error) Error() string {
	var sb strings.Builder

	for i, err := range e.links() {
		if i > 0 {
			sb.WriteString(": ")
		}

		sb.WriteString(err.Error())
	}

	return sb.String()
}

// links drops errors that are already wrapped by a later element, so that a
// wrapped cause is not printed twice.
func (e Error) links() []error {
	out := make([]error, 0, len(e))

	for i, err := range e {
		if i+1 < len(e) && wraps(e[i+1], err) {
			continue
		}

		out = append(out, err)
	}

	return out
}

func wraps(outer, inner error) bool {
	u, ok := outer.(interface{ Unwrap() error })

	return ok && equal(u.Unwrap(), inner)
}

// Wrap appends one or more errors to the receiver and returns the result.
func (e Error) Wrap(err ...error) Error {
	return append(slices.Clone(e), MakeError(err...)...)
}

// Wrapf appends a formatted error to the receiver and returns the result.
func (e Error) Wrapf(format string, args ...any) Error {
	return append(slices.Clone(e), fmt.Errorf(format, args...))
}

// Unwrap returns the slice of errors contained in the receiver.
func (e Error) Unwrap() []error {
	return e
}

// Is reports whether every error of target also appears in e. An Error
// derived from a sentinel with [Error.Wrap] or [Error.Wrapf] matches that
// sentinel.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok || len(t) == 0 {
		return false
	}

	for _, want := range t {
		if !slices.ContainsFunc(e, func(err error) bool { return equal(err, want) }) {
			return false
		}
	}

	return true
}

func equal(a, b error) bool {
	if a == nil || b == nil {
		return a == b
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)

	return ta == tb && ta.Comparable() && a == b
}

// UnwrapErrors recursively unwraps an error chain and returns a slice
// containing all errors in the chain, starting from the innermost error.
// Errors that wrap several errors are replaced by their contents.
func UnwrapErrors(err error) Error {
	if err == nil {
		return nil
	}

	if e, ok := err.(interface{ Unwrap() []error }); ok {
		var chain Error

		for _, wrapped := range e.Unwrap() {
			chain = append(chain, UnwrapErrors(wrapped)...)
		}

		return chain
	}

	var chain Error

	if e, ok := err.(interface{ Unwrap() error }); ok {
		chain = UnwrapErrors(e.Unwrap())
	}

	return append(chain, err)
}
