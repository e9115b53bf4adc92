package template

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrParse            = NewError("parse error")
	ErrVariableNotFound = NewError("variable not found")
	ErrVariableCycle    = NewError("variable references itself")
	ErrFunctionNotFound = NewError("function not found")
	ErrFunctionFailed   = NewError("function failed")
	ErrInvalidUTF8      = NewError("invalid UTF-8 payload")
	ErrMissingContext   = NewError("missing required context")
	ErrMaxDepthExceeded = NewError("maximum render depth exceeded")
	ErrUnsupportedValue = NewError("unsupported value type")
	ErrNoCallback       = NewError("no function callback")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
//
// Errors derived from a sentinel with [Error.Wrap] or [Error.With] still
// match that sentinel with [errors.Is].
type Error struct {
	root  *Error
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.root = e

	return e
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	var ee *Error
	if errors.As(err, &ee) {
		return ee
	}

	e := &Error{err: err}
	e.root = e

	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether e was derived from the same sentinel as target.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}

	return e.root != nil && e.root == t.root
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Attrs returns a copy of the structured attributes attached to e.
func (e *Error) Attrs() []slog.Attr {
	return append([]slog.Attr(nil), e.attrs...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		root:  e.root,
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		root:  e.root,
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// Position identifies a location in template source.
// Line and Column are 1-based; Offset is a 0-based byte index.
type Position struct {
	Offset int
	Line   int
	Column int
}

// ParseError reports malformed template source.
type ParseError struct {
	Pos    Position
	Reason string
	Source string // The original source input
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Source == "" {
		return "parse error: " + e.Reason
	}

	return e.formatWithContext()
}

// Unwrap returns [ErrParse] so callers can match any parse failure.
func (e *ParseError) Unwrap() error { return ErrParse }

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrParse.msg),
		slog.String("reason", e.Reason),
		slog.Int("line", e.Pos.Line),
		slog.Int("column", e.Pos.Column),
	)
}

// formatWithContext formats the parse error with source code context.
func (e *ParseError) formatWithContext() string {
	lines := strings.Split(e.Source, "\n")

	var buf strings.Builder

	buf.WriteString("parse error at line ")
	buf.WriteString(strconv.Itoa(e.Pos.Line))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(e.Pos.Column))
	buf.WriteString(": ")
	buf.WriteString(e.Reason)
	buf.WriteString("\n")

	if e.Pos.Line > 0 && e.Pos.Line <= len(lines) {
		line := lines[e.Pos.Line-1]

		buf.WriteString("  ")
		buf.WriteString(strconv.Itoa(e.Pos.Line))
		buf.WriteString(" | ")
		buf.WriteString(line)
		buf.WriteRune('\n')

		// +5 accounts for: 2 leading spaces + " | " (3 chars)
		padding := strings.Repeat(" ", len(strconv.Itoa(e.Pos.Line))+5)
		if e.Pos.Column > 0 {
			padding += strings.Repeat(" ", e.Pos.Column-1)
		}

		buf.WriteString(padding + "^")
	}

	return buf.String()
}
